package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every dispatched request
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
)

// Dispatcher issues one request per call. It holds only settings fixed at
// construction; each call builds its own transport, so it is safe for
// concurrent use.
type Dispatcher struct {
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	baseDir        string
	defaultHeaders map[string]string
	logger         *zap.Logger
}

type Option func(*Dispatcher)

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

func WithFollowRedirects(follow bool) Option {
	return func(d *Dispatcher) {
		d.followRedirect = follow
	}
}

func WithMaxRedirects(max int) Option {
	return func(d *Dispatcher) {
		d.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) Option {
	return func(d *Dispatcher) {
		d.defaultHeaders[http.CanonicalHeaderKey(key)] = value
	}
}

// WithDefaultHeaders sets headers sent with every request unless the
// request's own header block overrides them
func WithDefaultHeaders(headers map[string]string) Option {
	return func(d *Dispatcher) {
		for k, v := range headers {
			d.defaultHeaders[http.CanonicalHeaderKey(k)] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) Option {
	return func(d *Dispatcher) {
		d.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) Option {
	return func(d *Dispatcher) {
		d.proxyURL = proxyURL
	}
}

// WithBaseDir sets the directory relative attachment paths resolve against.
// Attachments may not escape it.
func WithBaseDir(dir string) Option {
	return func(d *Dispatcher) {
		d.baseDir = dir
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Timeout returns the per-request deadline.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Dispatch builds and sends the request described by intent. The returned
// error, if any, is always an *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent) (*Response, error) {
	log := d.logger.With(zap.String("request_id", uuid.NewString()))

	req, err := BuildRequest(intent, d.baseDir)
	if err != nil {
		log.Warn("request rejected",
			zap.String("method", intent.Method),
			zap.String("url", intent.URL),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("dispatching request",
		zap.String("method", string(req.Method)),
		zap.String("url", req.URL),
		zap.Int("headers", len(req.Headers)),
	)

	resp, err := d.send(ctx, req, log)
	if err != nil {
		log.Warn("request failed",
			zap.String("method", string(req.Method)),
			zap.String("url", req.URL),
			zap.Stringer("kind", KindOf(err)),
			zap.NamedError("cause", errors.Unwrap(err)),
		)
		return nil, err
	}

	log.Debug("request completed",
		zap.String("status", resp.Status),
		zap.Duration("duration", resp.Duration),
		zap.Int("bytes", len(resp.Body)),
	)
	return resp, nil
}

// DoRequest is the plain string boundary used by command hosts: it returns
// the response body text whatever the status code.
func (d *Dispatcher) DoRequest(ctx context.Context, method, url, header, input string) (string, error) {
	resp, err := d.Dispatch(ctx, Intent{
		Method:     method,
		URL:        url,
		RawHeaders: header,
		RawBody:    input,
	})
	if err != nil {
		return "", err
	}
	return resp.BodyString(), nil
}

// DoRequest dispatches with default settings.
func DoRequest(ctx context.Context, method, url, header, input string) (string, error) {
	return NewDispatcher().DoRequest(ctx, method, url, header, input)
}

func (d *Dispatcher) send(ctx context.Context, req *Request, log *zap.Logger) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	r := d.newTransport(log).R().SetContext(ctx)

	multipart := req.Body != nil && req.Body.Type == ContentMultipart
	for k, v := range d.defaultHeaders {
		if multipart && k == "Content-Type" {
			continue
		}
		r.SetHeader(k, v)
	}
	r.SetHeaders(req.Headers)

	if req.Body != nil {
		switch {
		case req.Body.Part != nil:
			r.SetFileReader(req.Body.Part.FieldName, req.Body.Part.FileName, bytes.NewReader(req.Body.Part.Content))
		case req.Body.Payload != nil:
			r.SetBody(req.Body.Payload)
		}
	}

	return Normalize(r.Execute(string(req.Method), req.URL))
}

// newTransport builds a fresh resty client for a single call so no
// connection, cookie or redirect state leaks between calls.
func (d *Dispatcher) newTransport(log *zap.Logger) *resty.Client {
	c := resty.New().
		SetTimeout(d.timeout).
		SetCloseConnection(true).
		SetLogger(log.Sugar())

	c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if !d.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= d.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}))

	if !d.validateSSL {
		c.SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})
	}

	if d.proxyURL != "" {
		c.SetProxy(d.proxyURL)
	}

	return c
}
