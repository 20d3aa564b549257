package splunk

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hugr-lab/airport-splunk/auth"
	"github.com/hugr-lab/airport-splunk/catalog"
)

// Manager serves several Splunk catalogs side by side, routed by name.
// Plugins can be added and removed at runtime.
type Manager struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewManager creates a Manager holding plugins.
// Returns error if a plugin is nil or two plugins share a name.
//
// Example:
//
//	prod, _ := splunk.NewPlugin(splunk.PluginConfig{Config: prodConfig})
//	audit, _ := splunk.NewPlugin(splunk.PluginConfig{Config: auditConfig})
//	m, err := splunk.NewManager(prod, audit)
func NewManager(plugins ...*Plugin) (*Manager, error) {
	m := &Manager{plugins: make(map[string]*Plugin, len(plugins))}
	for _, p := range plugins {
		if err := m.Add(p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return m, nil
}

// NewManagerFromConfigs builds one plugin per config. Fields of base other
// than Config apply to every plugin.
func NewManagerFromConfigs(configs []Config, base PluginConfig) (*Manager, error) {
	seen := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		if _, exists := seen[cfg.Name]; exists {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrDuplicateCatalog{Name: cfg.Name})
		}
		seen[cfg.Name] = struct{}{}
	}

	plugins := make([]*Plugin, 0, len(configs))
	for _, cfg := range configs {
		pc := base
		pc.Config = cfg
		p, err := NewPlugin(pc)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return NewManager(plugins...)
}

// Add registers a plugin.
func (m *Manager) Add(p *Plugin) error {
	if p == nil {
		return ErrNilPlugin
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[p.Name()]; exists {
		return ErrDuplicateCatalog{Name: p.Name()}
	}
	m.plugins[p.Name()] = p
	return nil
}

// Remove unregisters the named plugin and drops its cached listings.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.plugins[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	if p.cache != nil {
		p.cache.InvalidateCatalog(name)
	}
	delete(m.plugins, name)
	return nil
}

// Plugin returns the named plugin.
func (m *Manager) Plugin(name string) (*Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[name]
	return p, ok
}

// Names returns the registered catalog names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.plugins))
}

// Open opens the named catalog for the identity in ctx.
func (m *Manager) Open(ctx context.Context, name string) (*Session, error) {
	p, ok := m.Plugin(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	return p.Open(ctx, auth.RequestingIdentity(ctx))
}

// Schemas returns one schema per catalog, in name order. A catalog that
// cannot be opened fails the whole call.
func (m *Manager) Schemas(ctx context.Context) ([]catalog.Schema, error) {
	names := m.Names()
	schemas := make([]catalog.Schema, 0, len(names))
	for _, name := range names {
		s, err := m.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s.Schema())
	}
	return schemas, nil
}

// Schema returns the schema of the named catalog, or (nil, nil).
func (m *Manager) Schema(ctx context.Context, name string) (catalog.Schema, error) {
	p, ok := m.Plugin(name)
	if !ok {
		return nil, nil
	}
	return p.Schema(ctx, name)
}

var _ catalog.Catalog = (*Manager)(nil)
