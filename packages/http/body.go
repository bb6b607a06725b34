package http

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ContentType is the body encoding strategy selected from the Content-Type header.
type ContentType int

const (
	ContentRaw ContentType = iota
	ContentJSON
	ContentForm
	ContentMultipart
)

func (c ContentType) String() string {
	switch c {
	case ContentJSON:
		return "json"
	case ContentForm:
		return "form"
	case ContentMultipart:
		return "multipart"
	default:
		return "raw"
	}
}

// ClassifyContentType maps a Content-Type value onto a strategy by substring,
// so parameters like charset do not affect the choice.
func ClassifyContentType(value string) ContentType {
	switch {
	case strings.Contains(value, "application/json"):
		return ContentJSON
	case strings.Contains(value, "application/x-www-form-urlencoded"):
		return ContentForm
	case strings.Contains(value, "multipart/form-data"):
		return ContentMultipart
	default:
		return ContentRaw
	}
}

// Body is an encoded request payload. Payload is nil for a JSON request
// sent without a body; Part is set only for multipart.
type Body struct {
	Type    ContentType
	Payload []byte
	Part    *Part
}

// Empty reports whether the request is sent without a body.
func (b *Body) Empty() bool {
	return b.Payload == nil && b.Part == nil
}

// EncodeBody encodes raw according to ct. Only JSON accepts an empty input.
func EncodeBody(ct ContentType, raw, baseDir string) (*Body, error) {
	if raw == "" && ct != ContentJSON {
		return nil, newError(KindEmptyBody, ct.String(), nil)
	}

	switch ct {
	case ContentJSON:
		if raw == "" {
			return &Body{Type: ct}, nil
		}
		payload, err := encodeJSON(raw)
		if err != nil {
			return nil, err
		}
		return &Body{Type: ct, Payload: payload}, nil

	case ContentForm:
		params, err := ParseParams(raw)
		if err != nil {
			return nil, err
		}
		if len(params) == 0 {
			return nil, newError(KindEmptyBody, ct.String(), nil)
		}
		return &Body{Type: ct, Payload: []byte(params.Encode())}, nil

	case ContentMultipart:
		spec, err := ParseMultipartSpec(raw)
		if err != nil {
			return nil, err
		}
		part, err := LoadAttachment(spec, baseDir)
		if err != nil {
			return nil, err
		}
		return &Body{Type: ct, Part: part}, nil

	default:
		return &Body{Type: ContentRaw, Payload: []byte(raw)}, nil
	}
}

// encodeJSON parses raw as exactly one JSON value and marshals it back.
// Numbers are decoded as json.Number so large integers survive unchanged.
func encodeJSON(raw string) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, newError(KindInvalidJSON, "", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(KindInvalidJSON, "unexpected data after top-level value", nil)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, newError(KindInvalidJSON, "", err)
	}
	return payload, nil
}
