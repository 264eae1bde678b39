package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/survey-admin/model"
)

// APIKeyHeader is only attached when a development key is configured.
// In production a reverse proxy injects it.
const APIKeyHeader = "x-api-key"

// RequestError is returned for non-2xx responses.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Payload is a parsed JSON response body.
type Payload map[string]any

func (p Payload) Status() string {
	s, _ := p["status"].(string)
	return s
}

func (p Payload) Message() string {
	s, _ := p["message"].(string)
	return s
}

func (p Payload) Data() any {
	return p["data"]
}

// Object returns data as a single row, or nil if it is not an object.
func (p Payload) Object() model.Row {
	obj, ok := p.Data().(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// Rows returns data as a list of rows. Besides a bare array, data may wrap
// the list under "items" or "rows". Non-object elements are skipped.
func (p Payload) Rows() []model.Row {
	var list []any
	switch d := p.Data().(type) {
	case []any:
		list = d
	case map[string]any:
		for _, k := range []string{"items", "rows"} {
			if l, ok := d[k].([]any); ok {
				list = l
				break
			}
		}
	}

	rows := make([]model.Row, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, obj)
		}
	}
	return rows
}

type RequestOptions struct {
	Params map[string]any
	Body   any
}

type Client struct {
	base      string
	devAPIKey string
	http      *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func NewClient(base, devAPIKey string, opts ...ClientOption) *Client {
	c := &Client{
		base:      strings.TrimSuffix(base, "/"),
		devAPIKey: devAPIKey,
		// no cookie jar: credentials are never sent
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (Payload, error) {
	return c.Do(ctx, http.MethodGet, path, opts)
}

func (c *Client) Post(ctx context.Context, path string, body any) (Payload, error) {
	return c.Do(ctx, http.MethodPost, path, RequestOptions{Body: body})
}

func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions) (Payload, error) {
	u, err := c.buildURL(path, opts.Params)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if model.Truthy(opts.Body) {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.devAPIKey != "" {
		req.Header.Set(APIKeyHeader, c.devAPIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	payload := parsePayload(text, resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := payload.Message()
		if msg == "" {
			msg = "HTTP " + strconv.Itoa(resp.StatusCode)
		}
		return nil, &RequestError{Status: resp.StatusCode, Message: msg}
	}
	return payload, nil
}

func (c *Client) buildURL(path string, params map[string]any) (string, error) {
	u, err := url.Parse(c.base + path)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			if v == nil {
				continue
			}
			s := model.String(v)
			if s == "" {
				continue
			}
			q.Set(k, s)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func parsePayload(text []byte, resp *http.Response) Payload {
	var v any
	if err := json.Unmarshal(text, &v); err != nil {
		msg := string(text)
		if msg == "" {
			msg = statusText(resp)
		}
		return Payload{"status": "error", "message": msg}
	}
	if obj, ok := v.(map[string]any); ok {
		return obj
	}
	return Payload{"status": "success", "data": v}
}

// statusText returns the reason phrase the server sent, without the code.
func statusText(resp *http.Response) string {
	_, reason, ok := strings.Cut(resp.Status, " ")
	if !ok || reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}
