// Package client is the Go SDK for the taskdeck API: typed RPC calls, file
// uploads and an optimistic command queue for board edits.
package client

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/pkg/connectjson"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	opts       []connect.ClientOption
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithToken authenticates every call with a bearer JWT.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithClientOptions(opts ...connect.ClientOption) Option {
	return func(c *Client) { c.opts = append(c.opts, opts...) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.opts = append([]connect.ClientOption{connectjson.WithCodec()}, c.opts...)
	if c.token != "" {
		c.opts = append(c.opts, connect.WithInterceptors(&bearerInterceptor{token: c.token}))
	}
	return c
}

func unary[Req, Res any](ctx context.Context, c *Client, procedure string, msg *Req) (*Res, error) {
	rpc := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)
	resp, err := rpc.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

type bearerInterceptor struct {
	token string
}

func (i *bearerInterceptor) header() string {
	return "Bearer " + i.token
}

func (i *bearerInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		req.Header().Set("Authorization", i.header())
		return next(ctx, req)
	}
}

func (i *bearerInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		conn.RequestHeader().Set("Authorization", i.header())
		return conn
	}
}

func (i *bearerInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
