package auth

import (
	"context"

	"google.golang.org/grpc"
)

// UnaryServerInterceptor resolves the requesting identity of unary calls.
// If authenticator is nil, requests pass through as Anonymous.
func UnaryServerInterceptor(authenticator Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if authenticator == nil {
			return handler(WithIdentity(ctx, Anonymous), req)
		}
		ctx, err := authenticate(ctx, authenticator)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor resolves the requesting identity of streaming calls.
// If authenticator is nil, requests pass through as Anonymous.
func StreamServerInterceptor(authenticator Authenticator) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := WithIdentity(ss.Context(), Anonymous)
		if authenticator != nil {
			var err error
			if ctx, err = authenticate(ss.Context(), authenticator); err != nil {
				return err
			}
		}
		return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
	}
}

// identityStream overrides the context of a grpc.ServerStream.
type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context {
	return s.ctx
}
