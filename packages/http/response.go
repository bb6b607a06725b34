package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// Normalize turns a transport outcome into a Response or a classified
// *Error. Any status code counts as success; only transport failures do not.
func Normalize(resp *resty.Response, err error) (*Response, error) {
	if err != nil {
		return nil, classifyTransportError(err)
	}

	headers := make(map[string]string)
	for k := range resp.Header() {
		headers[k] = resp.Header().Get(k)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Headers:    headers,
		Body:       resp.Body(),
		Duration:   resp.Time(),
	}, nil
}

func classifyTransportError(err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newError(KindConnect, "", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return newError(KindConnect, "", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, "", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, "", err)
	}

	return newError(KindOther, "", err)
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// BodyJSON decodes the body keeping numbers as json.Number.
func (r *Response) BodyJSON() (any, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}

// Extract evaluates a gjson path against the body. It reports false when
// the body is not JSON or the path matches nothing.
func (r *Response) Extract(path string) (gjson.Result, bool) {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}, false
	}
	result := gjson.GetBytes(r.Body, path)
	return result, result.Exists()
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
