package splunk

import (
	"testing"

	"github.com/hugr-lab/airport-splunk/auth"
)

func TestServerOptions(t *testing.T) {
	tests := []struct {
		name   string
		config ServerConfig
		want   int
	}{
		{name: "anonymous", config: ServerConfig{}, want: 2},
		{name: "with auth", config: ServerConfig{Auth: auth.NoAuth()}, want: 2},
		{name: "with message size", config: ServerConfig{Auth: auth.NoAuth(), MaxMessageSize: 16 << 20}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(ServerOptions(tt.config)); got != tt.want {
				t.Errorf("len(ServerOptions()) = %d, want %d", got, tt.want)
			}
		})
	}
}
