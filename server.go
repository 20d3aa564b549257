package splunk

import (
	"google.golang.org/grpc"

	"github.com/hugr-lab/airport-splunk/auth"
)

// ServerConfig holds the gRPC settings of a host serving splunk catalogs.
type ServerConfig struct {
	// Auth resolves the requesting identity from the authorization
	// metadata. OPTIONAL: Without it every request runs as auth.Anonymous.
	Auth auth.Authenticator

	// MaxMessageSize is the maximum gRPC message size. OPTIONAL.
	MaxMessageSize int
}

// ServerOptions returns gRPC server options that put the requesting identity
// into each request context, where Plugin.Schemas and Manager.Open read it.
//
// Example:
//
//	opts := splunk.ServerOptions(splunk.ServerConfig{
//	    Auth: auth.StaticTokens(tokens),
//	})
//	grpcServer := grpc.NewServer(opts...)
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)),
		grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth)),
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}
