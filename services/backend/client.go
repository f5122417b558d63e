package backendsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/akademik/core"
)

const (
	HeaderRequestID = "X-Request-ID"

	defaultTimeout = 15 * time.Second
)

type Options struct {
	BaseURL    string
	Token      string        // sent as a bearer token when set
	Timeout    time.Duration // per request; defaults to 15s
	HTTPClient *http.Client
}

// Client is a core.APIClient speaking JSON to the backend.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	rest    *rest.Client
}

var _ core.APIClient = (*Client)(nil)

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		timeout: timeout,
		rest:    &rest.Client{HTTPClient: httpClient},
	}
}

// NewClientFromConfig returns a client for the configured API.
func NewClientFromConfig(conf *core.Config) *Client {
	return NewClient(Options{
		BaseURL: conf.API.BaseURL,
		Token:   conf.API.Token,
		Timeout: conf.API.Timeout,
	})
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.send(ctx, rest.Get, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, rest.Post, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, rest.Put, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.send(ctx, rest.Delete, path, nil, nil)
}

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"Accept":        "application/json",
		"Content-Type":  "application/json",
		HeaderRequestID: uuid.New().String(),
	}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, body, out interface{}) error {
	newErr := func(code int, err error) error {
		return &core.RequestError{Method: string(method), Path: path, StatusCode: code, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: c.headers(),
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = data
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return newErr(0, err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return newErr(res.StatusCode, nil) // failure bodies are not parsed
	}
	if out != nil && strings.TrimSpace(res.Body) != "" {
		if err := json.Unmarshal([]byte(res.Body), out); err != nil {
			return newErr(res.StatusCode, errors.Wrap(err, "decoding response body"))
		}
	}
	return nil
}
