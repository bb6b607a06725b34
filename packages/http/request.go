package http

import (
	neturl "net/url"
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodDelete Method = "DELETE"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
)

// ParseMethod accepts the five supported methods, matched exactly.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodGet, MethodDelete, MethodPost, MethodPut, MethodPatch:
		return m, nil
	default:
		return "", newError(KindUnsupportedMethod, s, nil)
	}
}

// HasBody reports whether the method carries its input as a request body
// rather than as query parameters.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// Intent describes one request exactly as the user typed it.
type Intent struct {
	Method     string
	URL        string
	RawHeaders string
	RawBody    string
}

// Request is an Intent after parsing and encoding, ready to send.
type Request struct {
	Method  Method
	URL     string
	Headers HeaderMap
	Body    *Body
}

// BuildRequest parses and encodes intent without touching the network.
// Every input error is reported here, before anything is sent.
func BuildRequest(intent Intent, baseDir string) (*Request, error) {
	method, err := ParseMethod(intent.Method)
	if err != nil {
		return nil, err
	}

	if err := ValidateURL(intent.URL); err != nil {
		return nil, err
	}

	headers, err := ParseHeaders(intent.RawHeaders)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  method,
		URL:     intent.URL,
		Headers: headers,
	}

	if !method.HasBody() {
		if intent.RawBody != "" {
			params, err := ParseParams(intent.RawBody)
			if err != nil {
				return nil, err
			}
			if req.URL, err = BuildURL(req.URL, params); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	contentType, ok := headers.ContentType()
	if !ok {
		return nil, newError(KindMissingContentType, "", nil)
	}

	body, err := EncodeBody(ClassifyContentType(contentType), intent.RawBody, baseDir)
	if err != nil {
		return nil, err
	}
	req.Body = body

	// The transport writes its own boundary-bearing Content-Type.
	if body.Type == ContentMultipart {
		req.Headers = headers.Without("Content-Type")
	}

	return req, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return newError(KindInvalidURL, rawURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return newError(KindInvalidURL, "unsupported URL scheme "+quote(u.Scheme)+" (only http and https are allowed)", nil)
	}

	if u.Host == "" {
		return newError(KindInvalidURL, "URL must have a host", nil)
	}

	return nil
}
