// Package recovery turns panics raised by collaborators (directory
// connectors, scan functions, writer constructors) into errors so a faulty
// plugin fails one request instead of the host process.
package recovery

import (
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Do runs fn and converts a panic into a codes.Internal status error.
func Do(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(logger, operation, r)
		}
	}()
	return fn()
}

// Value runs fn and converts a panic into the zero value and a
// codes.Internal status error.
func Value[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = recovered(logger, operation, r)
		}
	}()
	return fn()
}

func recovered(logger *slog.Logger, operation string, r any) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
	return status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
}
