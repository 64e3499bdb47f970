package auth

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries process configuration down to provider factories.
// AuthInfo is the configured default auth_info string for callers that
// have no per-call value; Settings holds provider-specific keys from
// the auth.settings config section (key paths, TTLs).
type Options struct {
	AuthInfo string
	Settings map[string]string
}

// Setting returns the named provider setting or def when unset.
func (o Options) Setting(key, def string) string {
	if v, ok := o.Settings[key]; ok {
		return v
	}
	return def
}

// Factory builds a Plugin from process configuration. Factories must
// fail rather than return a half-usable plugin; the context treats a
// factory error as "provider not loaded" and will retry on a later
// Init.
type Factory func(opts Options) (Plugin, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider selectable by name. It is called from
// provider package init and panics on duplicate registration, which is
// always a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("auth: Register with nil factory")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("auth: provider %q registered twice", name))
	}
	registry[name] = factory
}

// Resolve loads the named provider. It returns ErrUnknownProvider when
// no factory is registered under name.
func Resolve(name string, opts Options) (Plugin, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	plugin, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("load provider %q: %w", name, err)
	}
	return plugin, nil
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
