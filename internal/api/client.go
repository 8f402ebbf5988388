// Package api is the transport boundary to the marketplace backend.
// Every request carries the session bearer token and a request id; every
// failure is normalized into *Error. Nothing here retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://threadswap-backend-production.up.railway.app/api/v1"
	DefaultTimeout = 30 * time.Second
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// Client issues JSON and multipart requests against the backend.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

// NewClient builds a Client for baseURL. tokens may be nil.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newClient(&http.Client{Timeout: timeout}, baseURL, tokens)
}

// newClient lets tests inject an httptest client.
func newClient(httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, out)
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return normalize(0, nil, fmt.Errorf("encode multipart body: %w", err))
	}
	return c.do(ctx, http.MethodPost, path, nil, contentType, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return normalize(0, nil, fmt.Errorf("encode json body: %w", err))
	}
	return c.do(ctx, method, path, nil, "application/json", bytes.NewReader(b), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return normalize(0, nil, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return normalize(0, nil, err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "err", closeErr)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return normalize(0, nil, fmt.Errorf("read body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		slog.Debug("backend request failed", "method", method, "path", path, "status", res.StatusCode)
		return normalize(res.StatusCode, raw, fmt.Errorf("Request failed with status code %d", res.StatusCode))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return normalize(res.StatusCode, raw, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// Form is a multipart body under construction. Field order is preserved.
type Form struct {
	parts []formPart
}

type formPart struct {
	name        string
	value       string
	fileName    string
	contentType string
	data        []byte
}

func NewForm() *Form { return &Form{} }

// Field appends a text field.
func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// File appends a file part with an explicit content type.
func (f *Form) File(name, fileName, contentType string, data []byte) *Form {
	f.parts = append(f.parts, formPart{name: name, fileName: fileName, contentType: contentType, data: data})
	return f
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.fileName == "" {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.name, p.fileName))
		ct := p.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
