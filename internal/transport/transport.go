package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hast-app/hastauth/middleware"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// Config configures one Transport.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// JSON, when non-nil, is marshaled as the request body.
	JSON any
	// File, when non-nil, is sent as a single-part multipart form.
	File *File
}

// File is a multipart upload part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Response is a completed 2xx exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport sends requests to a single backend.
type Transport struct {
	base    *url.URL
	client  *http.Client
	headers http.Header
}

// New builds a Transport over rt (http.DefaultTransport when nil). rt is
// usually a middleware chain.
func New(cfg Config, rt http.RoundTripper) (*Transport, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", cfg.BaseURL)
	}
	if rt == nil {
		rt = http.DefaultTransport
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		headers.Set("User-Agent", cfg.UserAgent)
	}
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	return &Transport{
		base:    base,
		client:  &http.Client{Transport: rt, Timeout: cfg.Timeout},
		headers: headers,
	}, nil
}

// BaseURL returns the configured base URL.
func (t *Transport) BaseURL() string {
	return t.base.String()
}

// Do sends req. Every failure is returned as *Error: KindStatus for a
// non-2xx answer, KindNetwork when no answer arrived, KindRequest when the
// request could not be built or sent.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := t.build(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Err: err}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, middleware.ErrTokenUnavailable) {
			return nil, &Error{Kind: KindRequest, Err: err}
		}
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, Status: resp.StatusCode, Body: body}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (t *Transport) build(ctx context.Context, req Request) (*http.Request, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	// req.Path is already escaped by the caller.
	u, err := url.Parse(t.base.String() + "/" + strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.File != nil:
		buf, ct, err := encodeMultipart(req.File)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range t.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeMultipart(f *File) (*bytes.Buffer, string, error) {
	if f.Content == nil {
		return nil, "", errors.New("multipart file has no content")
	}
	field := f.Field
	if field == "" {
		field = "file"
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return nil, "", fmt.Errorf("read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
