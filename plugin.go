package splunk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/hugr-lab/airport-splunk/auth"
	"github.com/hugr-lab/airport-splunk/cache"
	"github.com/hugr-lab/airport-splunk/catalog"
	"github.com/hugr-lab/airport-splunk/directory"
	"github.com/hugr-lab/airport-splunk/internal/recovery"
)

// PluginConfig holds everything needed to serve one Splunk catalog.
type PluginConfig struct {
	// Config describes the catalog. REQUIRED.
	Config Config

	// Connector reaches the remote directory.
	// OPTIONAL: If nil, an HTTP connector is built from Config.
	Connector directory.Connector

	// Cache stores index listings. It may be shared between plugins.
	// OPTIONAL: If nil, a cache is built from Config. Ignored when
	// Config.CacheExpiration is negative.
	Cache *cache.IndexCache

	// Scan executes table scans. OPTIONAL: Scans fail with
	// ErrScanUnavailable if nil.
	Scan ScanFunc

	// NewWriter builds writers. OPTIONAL: Defaults to NewIndexWriter.
	NewWriter WriterConstructor

	// Registerer receives the metrics of a cache built from Config. OPTIONAL.
	Registerer prometheus.Registerer

	// Logger for catalog events. OPTIONAL: Uses slog.Default if nil.
	Logger *slog.Logger
}

// Plugin serves one configured Splunk catalog. It owns the listing cache
// and opens a Session per requesting identity.
type Plugin struct {
	config    *Config
	connector directory.Connector
	cache     *cache.IndexCache // nil when caching is disabled
	scan      ScanFunc
	newWriter WriterConstructor
	logger    *slog.Logger

	// collapses concurrent listings for the same identity
	group singleflight.Group
}

// NewPlugin validates cfg and creates a Plugin.
func NewPlugin(cfg PluginConfig) (*Plugin, error) {
	config := cfg.Config
	if config.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("catalog", config.Name)

	connector := cfg.Connector
	if connector == nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		httpConnector, err := directory.NewHTTPConnector(config.DirectoryConfig(logger))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, config.Name, err)
		}
		connector = httpConnector
	}

	p := &Plugin{
		config:    &config,
		connector: connector,
		scan:      cfg.Scan,
		newWriter: cfg.NewWriter,
		logger:    logger,
	}

	if config.CacheEnabled() {
		p.cache = cfg.Cache
		if p.cache == nil {
			p.cache = cache.New(config.CacheConfig(cfg.Registerer))
			logger.Info("Index cache created",
				"expiration_minutes", config.CacheExpiration,
				"max_entries", config.MaxCacheSize,
			)
		}
	} else {
		logger.Info("Index cache disabled")
	}

	return p, nil
}

// Name returns the catalog name.
func (p *Plugin) Name() string {
	return p.config.Name
}

// Config returns a copy of the catalog configuration.
func (p *Plugin) Config() Config {
	return *p.config
}

// Cache returns the listing cache, or nil when caching is disabled.
func (p *Plugin) Cache() *cache.IndexCache {
	return p.cache
}

// Open connects on behalf of identity and builds its table registry from the
// cached listing, fetching it from Splunk on a miss. A connection failure is
// returned as *ConnectionError and no session is created.
func (p *Plugin) Open(ctx context.Context, identity string) (*Session, error) {
	if identity == "" {
		identity = auth.Anonymous
	}

	conn, err := p.connect(ctx, identity)
	if err != nil {
		return nil, err
	}

	indexes, err := p.indexes(ctx, identity, conn)
	if err != nil {
		return nil, err
	}

	return newSession(p, identity, indexes), nil
}

func (p *Plugin) connect(ctx context.Context, identity string) (directory.Conn, error) {
	conn, err := recovery.Value(p.logger, "connect", func() (directory.Conn, error) {
		return p.connector.Connect(ctx, identity)
	})
	if err != nil {
		return nil, &ConnectionError{Catalog: p.config.Name, Err: err}
	}
	return conn, nil
}

func (p *Plugin) key(identity string) cache.Key {
	return cache.Key{Identity: identity, Catalog: p.config.Name}
}

func (p *Plugin) indexes(ctx context.Context, identity string, conn directory.Conn) (cache.IndexSet, error) {
	if p.cache == nil {
		return p.list(ctx, conn)
	}

	key := p.key(identity)
	if indexes, ok := p.cache.Get(key); ok {
		return indexes, nil
	}
	p.logger.Debug("Index cache miss", "identity", identity)

	// The shared listing outlives any single caller; each caller waits on
	// its own context.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(identity, func() (any, error) {
		indexes, err := p.list(shared, conn)
		if err != nil {
			return nil, err
		}
		p.cache.Put(key, indexes)
		return indexes, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to list indexes of %s: %w", p.config.Name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// shared between collapsed callers
		return res.Val.(cache.IndexSet).Clone(), nil
	}
}

func (p *Plugin) list(ctx context.Context, conn directory.Conn) (cache.IndexSet, error) {
	indexes, err := recovery.Value(p.logger, "list indexes", func() (cache.IndexSet, error) {
		return conn.ListIndexes(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %s: %w", p.config.Name, err)
	}
	return indexes, nil
}

func (p *Plugin) invalidate(identity string) {
	if p.cache != nil {
		p.cache.Invalidate(p.key(identity))
	}
}

// Schemas opens a session for the identity in ctx and returns its schema.
func (p *Plugin) Schemas(ctx context.Context) ([]catalog.Schema, error) {
	s, err := p.Open(ctx, auth.RequestingIdentity(ctx))
	if err != nil {
		return nil, err
	}
	return []catalog.Schema{s.Schema()}, nil
}

// Schema returns the catalog's only schema, named after the catalog.
// Returns (nil, nil) for any other name.
func (p *Plugin) Schema(ctx context.Context, name string) (catalog.Schema, error) {
	if name != p.config.Name {
		return nil, nil
	}
	s, err := p.Open(ctx, auth.RequestingIdentity(ctx))
	if err != nil {
		return nil, err
	}
	return s.Schema(), nil
}

// IsConnectionError reports whether err came from a failed connection.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

var _ catalog.NamedCatalog = (*Plugin)(nil)
