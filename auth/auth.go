// Package auth resolves the requesting identity a catalog is opened for.
//
// The host resolves a bearer token once per request (see the gRPC
// interceptors) and stores the identity in the request context. Catalog code
// reads it back with RequestingIdentity, which is also the identity that
// scopes cached index listings.
package auth

import (
	"context"
	"errors"
)

// Anonymous is the identity of requests that carry no credentials.
const Anonymous = "anonymous"

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when the bearer token is empty.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when authentication fails.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates bearer tokens and returns the user identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate validates token and returns the identity it belongs to.
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (string, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// NoAuth returns an Authenticator that maps every request to Anonymous.
// Useful for development/testing. DO NOT use in production.
func NoAuth() Authenticator {
	return AuthenticatorFunc(func(context.Context, string) (string, error) {
		return Anonymous, nil
	})
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	authenticator := auth.BearerAuth(func(token string) (string, error) {
//	    user, err := lookupToken(token)
//	    if err != nil {
//	        return "", auth.ErrUnauthenticated
//	    }
//	    return user.Name, nil
//	})
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return AuthenticatorFunc(func(_ context.Context, token string) (string, error) {
		return validate(token)
	})
}

// StaticTokens returns an Authenticator backed by a fixed token table.
// The map is copied.
func StaticTokens(tokens map[string]string) Authenticator {
	table := make(map[string]string, len(tokens))
	for token, identity := range tokens {
		table[token] = identity
	}
	return AuthenticatorFunc(func(_ context.Context, token string) (string, error) {
		identity, ok := table[token]
		if !ok || identity == "" {
			return "", ErrUnauthenticated
		}
		return identity, nil
	})
}
