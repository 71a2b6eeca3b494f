// Package portal is the JSON client of the portal REST API. Every screen of the console reads and
// writes through it; it authenticates with the bearer token of the logged in user.
package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/micportal/core"
)

// TokenSource provides the bearer token sent with each request; an empty token sends none.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed bearer token, e.g. the one of the request being served.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Observer is told about every request, for metrics.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.rest.HTTPClient = hc }
}

type Client struct {
	baseURL  string
	rest     *rest.Client
	tokens   TokenSource
	observer Observer
}

func New(conf *core.Config, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(conf.Portal.BaseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Portal.Timeout}},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client authenticating with tokens.
func (c *Client) WithToken(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

type call struct {
	method  rest.Method
	route   string // path template, used as metrics label
	args    []string
	query   map[string]string
	headers map[string]string
	in      interface{}
	out     interface{}
}

// path fills the {placeholders} of the route with the escaped args, in order.
func (cl call) path() string {
	var b strings.Builder
	route, args := cl.route, cl.args
	for {
		start := strings.IndexByte(route, '{')
		end := strings.IndexByte(route, '}')
		if start < 0 || end < start || len(args) == 0 {
			b.WriteString(route)
			return b.String()
		}
		b.WriteString(route[:start])
		b.WriteString(url.PathEscape(args[0]))
		route, args = route[end+1:], args[1:]
	}
}

func (c *Client) do(ctx context.Context, cl call) error {
	path := cl.path()
	req := rest.Request{
		Method:      cl.method,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: cl.query,
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Headers["Authorization"] = "Bearer " + token
		}
	}
	for k, v := range cl.headers {
		req.Headers[k] = v
	}
	if cl.in != nil {
		body, err := json.Marshal(cl.in)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s", cl.method, path)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	start := time.Now()
	resp, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		c.observe(cl, 0, start)
		return errors.Wrapf(core.ErrUnreachable, "%s %s: %v", cl.method, path, err)
	}
	c.observe(cl, resp.StatusCode, start)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Wrapf(core.ErrUnauthenticated, "%s %s", cl.method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &core.APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if cl.out == nil || strings.TrimSpace(resp.Body) == "" {
		return nil
	}
	return errors.Wrapf(json.Unmarshal([]byte(resp.Body), cl.out), "decoding %s %s", cl.method, path)
}

func (c *Client) observe(cl call, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(string(cl.method), cl.route, status, time.Since(start))
	}
}

// errorMessage extracts the message of an error body: {"error": ...}, {"message": ...} or plain text.
func errorMessage(body string) string {
	body = strings.TrimSpace(body)
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	const maxLen = 200
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return body
}

func (c *Client) get(ctx context.Context, route string, out interface{}, args ...string) error {
	return c.do(ctx, call{method: rest.Get, route: route, args: args, out: out})
}

func (c *Client) send(ctx context.Context, method rest.Method, route string, in interface{}, args ...string) error {
	return c.do(ctx, call{method: method, route: route, args: args, in: in})
}
