package splunk

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/drone/envsubst"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/hugr-lab/airport-splunk/cache"
	"github.com/hugr-lab/airport-splunk/directory"
)

// TypeName is the catalog type reported to the host.
const TypeName = "splunk"

// Defaults applied to every Config before user values.
const (
	DefaultScheme          = "https"
	DefaultPort            = 8089
	DefaultEarliestTime    = "-14d"
	DefaultLatestTime      = "now"
	DefaultMaxCacheSize    = 10000
	DefaultCacheExpiration = 1024 // minutes
)

// ErrInvalidConfig indicates Config validation failed.
var ErrInvalidConfig = errors.New("invalid catalog config")

// Config describes one Splunk deployment exposed as a catalog.
type Config struct {
	// Name of the catalog. REQUIRED.
	Name string `yaml:"name"`

	// Scheme, Hostname and Port locate the management API.
	// Hostname is REQUIRED; Scheme defaults to https, Port to 8089.
	Scheme   string `yaml:"scheme"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`

	// Shared credentials. Token takes precedence over Username/Password.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`

	// UserCredentials maps a requesting identity to its own Splunk
	// credentials. OPTIONAL.
	UserCredentials map[string]directory.Credentials `yaml:"user_credentials"`

	// App and Owner select the Splunk namespace. OPTIONAL.
	App   string `yaml:"app"`
	Owner string `yaml:"owner"`

	ValidateCertificates bool `yaml:"validate_certificates"`

	// EarliestTime and LatestTime are the default search window of scans.
	EarliestTime string `yaml:"earliest_time"`
	LatestTime   string `yaml:"latest_time"`

	// ReconnectRetries re-attempts an unreachable connectivity check.
	ReconnectRetries int `yaml:"reconnect_retries"`

	// Timeout bounds each request to the management API. 0 disables it.
	Timeout time.Duration `yaml:"timeout"`

	// Writable allows CREATE TABLE. Nil and false both mean read-only.
	Writable *bool `yaml:"writable"`

	// CacheExpiration is how many minutes an index listing stays cached
	// without being read. Negative disables the cache.
	CacheExpiration int `yaml:"cache_expiration"`

	// MaxCacheSize bounds the number of cached listings.
	MaxCacheSize int `yaml:"max_cache_size"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Scheme:          DefaultScheme,
		Port:            DefaultPort,
		EarliestTime:    DefaultEarliestTime,
		LatestTime:      DefaultLatestTime,
		MaxCacheSize:    DefaultMaxCacheSize,
		CacheExpiration: DefaultCacheExpiration,
	}
}

// UnmarshalYAML decodes a Config on top of DefaultConfig.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	*c = DefaultConfig()
	return value.Decode((*plain)(c))
}

// IsWritable reports whether the catalog accepts new tables.
func (c *Config) IsWritable() bool {
	return c.Writable != nil && *c.Writable
}

// CacheEnabled reports whether index listings are cached.
func (c *Config) CacheEnabled() bool {
	return c.CacheExpiration >= 0
}

// BaseURL returns the management API root.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Hostname, c.Port)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Hostname == "" {
		return fmt.Errorf("%w: %s: hostname is required", ErrInvalidConfig, c.Name)
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidConfig, c.Name, c.Scheme)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %s: port %d out of range", ErrInvalidConfig, c.Name, c.Port)
	}
	if c.Token == "" && c.Username == "" && len(c.UserCredentials) == 0 {
		return fmt.Errorf("%w: %s: a token, a username or user credentials are required", ErrInvalidConfig, c.Name)
	}
	if c.ReconnectRetries < 0 {
		return fmt.Errorf("%w: %s: reconnect_retries must not be negative", ErrInvalidConfig, c.Name)
	}
	return nil
}

// DirectoryConfig derives the settings of the HTTP directory connector.
func (c *Config) DirectoryConfig(logger *slog.Logger) directory.HTTPConfig {
	return directory.HTTPConfig{
		BaseURL: c.BaseURL(),
		Credentials: directory.Credentials{
			Username: c.Username,
			Password: c.Password,
			Token:    c.Token,
		},
		UserCredentials:      c.UserCredentials,
		App:                  c.App,
		Owner:                c.Owner,
		ValidateCertificates: c.ValidateCertificates,
		Timeout:              c.Timeout,
		ReconnectRetries:     c.ReconnectRetries,
		Logger:               logger,
	}
}

// CacheConfig derives the settings of the index listing cache.
func (c *Config) CacheConfig(reg prometheus.Registerer) cache.Config {
	return cache.Config{
		Expiration: time.Duration(c.CacheExpiration) * time.Minute,
		MaxEntries: c.MaxCacheSize,
		Name:       c.Name,
		Registerer: reg,
	}
}

// Redacted returns a copy without credentials, safe to log or print.
func (c *Config) Redacted() *Config {
	r := *c
	r.Password = ""
	r.Token = ""
	r.UserCredentials = nil
	return &r
}

// configFile is the on-disk layout read by LoadConfigs.
type configFile struct {
	Catalogs []Config `yaml:"catalogs"`
}

// LoadConfigs reads catalog definitions from a YAML file. ${VAR} references
// are expanded from the environment before parsing.
//
// Example:
//
//	catalogs:
//	  - name: prod
//	    hostname: splunk.internal
//	    token: ${SPLUNK_TOKEN}
//	    cache_expiration: 60
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfigs(data)
}

// ParseConfigs is LoadConfigs for in-memory data.
func ParseConfigs(data []byte) ([]Config, error) {
	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to expand environment: %v", ErrInvalidConfig, err)
	}

	var file configFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(file.Catalogs))
	for i := range file.Catalogs {
		cfg := &file.Catalogs[i]
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("%w: duplicate catalog name %s", ErrInvalidConfig, cfg.Name)
		}
		seen[cfg.Name] = true
	}
	return file.Catalogs, nil
}
