// Package directory lists and deletes the indexes of a Splunk deployment.
//
// A Connector opens an authenticated Conn on behalf of a requesting
// identity. Connect validates connectivity and credentials up front, so a
// Conn that is returned is known to have worked at least once.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hugr-lab/airport-splunk/cache"
)

var (
	// ErrUnreachable is returned when the management endpoint cannot be reached.
	ErrUnreachable = errors.New("splunk endpoint unreachable")

	// ErrUnauthorized is returned when the endpoint rejects the credentials.
	ErrUnauthorized = errors.New("splunk rejected credentials")

	// ErrInvalidIndexName is returned for names that cannot address a
	// single index.
	ErrInvalidIndexName = errors.New("invalid index name")
)

// ValidateIndexName checks that name addresses exactly one index endpoint.
func ValidateIndexName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidIndexName, name)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidIndexName, name)
	}
	return nil
}

// Connector opens connections to the remote directory.
// Implementations MUST be goroutine-safe.
type Connector interface {
	// Connect establishes and validates a connection for identity.
	// Errors wrap ErrUnreachable or ErrUnauthorized where the cause is known.
	Connect(ctx context.Context, identity string) (Conn, error)
}

// Conn is an authenticated connection to the remote directory.
type Conn interface {
	// ListIndexes returns the names of the indexes currently visible.
	ListIndexes(ctx context.Context) (cache.IndexSet, error)

	// DeleteIndex asks the remote system to delete an index.
	// The remote system does not report whether the delete took effect,
	// so there is no result. Callers re-list to observe the outcome.
	DeleteIndex(ctx context.Context, name string)
}

// Credentials authenticate against the management API.
// Token takes precedence over Username/Password when set.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// IsZero reports whether no credential is set.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == "" && c.Token == ""
}
