package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a new context carrying identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored in ctx, or "" if none.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// RequestingIdentity returns the identity stored in ctx, or Anonymous.
func RequestingIdentity(ctx context.Context) string {
	if identity := IdentityFromContext(ctx); identity != "" {
		return identity
	}
	return Anonymous
}

// TokenFromAuthorizationHeader extracts the token of a "Bearer <token>" header.
func TokenFromAuthorizationHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimPrefix(header, prefix)
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// authenticate resolves the identity of an incoming gRPC request.
// Requests without an authorization header are rejected.
func authenticate(ctx context.Context, authenticator Authenticator) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	headers := md.Get("authorization")
	if len(headers) == 0 {
		return ctx, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	token, err := TokenFromAuthorizationHeader(headers[0])
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, err.Error())
	}

	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil || identity == "" {
		return ctx, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return WithIdentity(ctx, identity), nil
}
