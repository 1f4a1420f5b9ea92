package cerr

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/sourcegraph/conc/panics"
)

type convertConnectErrorInterceptor struct{}

// NewConvertConnectErrorInterceptor turns handler errors into connect errors
// carrying the cerr code and details, and records the cause on the request
// log. A panicking handler answers Internal with the panic stack logged.
func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return &convertConnectErrorInterceptor{}
}

func (i *convertConnectErrorInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		var (
			catcher panics.Catcher
			resp    connect.AnyResponse
			err     error
		)
		catcher.Try(func() {
			resp, err = next(ctx, req)
		})
		if r := catcher.Recovered(); r != nil {
			return nil, ExtractConnectError(ctx, recoveredError(r))
		}
		return resp, ExtractConnectError(ctx, err)
	}
}

func (i *convertConnectErrorInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *convertConnectErrorInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = next(ctx, conn)
		})
		if r := catcher.Recovered(); r != nil {
			err = recoveredError(r)
		}
		return ExtractConnectError(ctx, err)
	}
}

func recoveredError(r *panics.Recovered) *Error {
	e := NewError(Internal, "server error", fmt.Errorf("panic: %v", r.Value))
	e.Stack = string(r.Stack)
	return e
}
