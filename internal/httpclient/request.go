package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// DefaultContentType is sent with a body when no Content-Type header is set.
const DefaultContentType = "application/json"

// HeaderError reports a header string that cannot be used.
type HeaderError struct {
	Entry  string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid header %q: %s", e.Entry, e.Reason)
}

// ParseMethod normalizes a method string to upper case and checks it is a
// valid HTTP method token.
func ParseMethod(method string) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "", errors.New("HTTP method is required")
	}
	// A method is an RFC 7230 token, the same grammar as a header field name.
	if !httpguts.ValidHeaderFieldName(method) {
		return "", fmt.Errorf("invalid HTTP method: %q", method)
	}
	return method, nil
}

// ParseHeaders parses "Name: Value" strings. Names and values are trimmed,
// names are case-insensitive and a later entry replaces an earlier one with
// the same name.
func ParseHeaders(entries []string) (http.Header, error) {
	headers := make(http.Header, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, &HeaderError{Entry: entry, Reason: "expected 'Name: Value'"}
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			return nil, &HeaderError{Entry: entry, Reason: "header name cannot be empty"}
		}
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, &HeaderError{Entry: entry, Reason: fmt.Sprintf("invalid header name %q", name)}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, &HeaderError{Entry: entry, Reason: "invalid header value"}
		}
		headers.Set(name, value)
	}
	return headers, nil
}

// RequestTemplate produces identical requests for a benchmark run.
type RequestTemplate struct {
	method  string
	target  string
	headers http.Header
	body    BodySource
	hasBody bool
}

// NewRequestTemplate validates the request parameters. body may be nil.
func NewRequestTemplate(target, method string, headers []string, body BodySource) (*RequestTemplate, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("target URL is required")
	}

	parsedMethod, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}

	header, err := ParseHeaders(headers)
	if err != nil {
		return nil, err
	}

	hasBody := body != nil
	if !hasBody {
		body = emptyBodySource{}
	}
	if hasBody && header.Get("Content-Type") == "" {
		header.Set("Content-Type", DefaultContentType)
	}

	// Surface URL problems now instead of as a failure on every request.
	if _, err := http.NewRequest(parsedMethod, target, nil); err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	return &RequestTemplate{
		method:  parsedMethod,
		target:  target,
		headers: header,
		body:    body,
		hasBody: hasBody,
	}, nil
}

// Method returns the normalized HTTP method.
func (t *RequestTemplate) Method() string { return t.method }

// URL returns the target URL exactly as configured.
func (t *RequestTemplate) URL() string { return t.target }

// Header returns a copy of the header set sent with every request.
func (t *RequestTemplate) Header() http.Header { return t.headers.Clone() }

// Build returns a new request bound to ctx.
func (t *RequestTemplate) Build(ctx context.Context) (*http.Request, error) {
	if t == nil {
		return nil, errors.New("request template cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := t.body.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, t.method, t.target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	req.Header = t.headers.Clone()
	if length, ok := t.body.ContentLength(); ok {
		req.ContentLength = length
	}
	if t.hasBody {
		req.GetBody = func() (io.ReadCloser, error) {
			return t.body.NewReader()
		}
	}

	return req, nil
}
