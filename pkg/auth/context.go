package auth

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/canopyhq/canopy/internal/logger"
)

// Context tracks the process's loaded authentication provider. It
// holds zero or one Plugin: nil until the first successful Init, the
// loaded plugin until Fini, then nil again.
//
// The context publishes the loaded plugin through an atomic pointer so
// dispatch calls never take the mutex on the hot path. The mutex
// serializes only load and unload. A dispatch call racing with Fini
// either obtains the still-valid plugin or observes nil and reports
// ErrNoProvider; it can never observe a torn-down provider, because
// Fini unpublishes the pointer before releasing provider resources.
type Context struct {
	mu  sync.Mutex
	cur atomic.Pointer[loaded]

	defaultType string
	opts        Options
}

// loaded wraps the active plugin so the published state is a single
// pointer swap.
type loaded struct {
	plugin Plugin
}

// NewContext returns an unloaded context. defaultType is the provider
// selected when Init is called without an explicit override; opts are
// forwarded to the provider factory and to dispatch calls that take an
// auth_info string.
func NewContext(defaultType string, opts Options) *Context {
	return &Context{defaultType: defaultType, opts: opts}
}

// Init loads the authentication provider if none is loaded yet.
//
// An explicit non-empty override takes precedence over the context's
// configured default type. Once a provider is loaded, Init is a no-op
// regardless of override: the provider is fixed for the lifetime of
// the context (or until Fini).
//
// On loader failure the context is left unloaded so a later Init can
// retry; concurrent callers racing through the slow path agree on a
// single load.
func (c *Context) Init(override string) error {
	// Fast path: already loaded, no lock.
	if c.cur.Load() != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another caller may have loaded between
	// our fast-path check and acquiring the mutex.
	if c.cur.Load() != nil {
		return nil
	}

	name := c.defaultType
	if override != "" {
		name = override
	}
	if name == "" {
		return fmt.Errorf("%w: no provider type configured", ErrNoProvider)
	}

	plugin, err := Resolve(name, c.opts)
	if err != nil {
		logger.Error("cannot load authentication provider", "type", name, "error", err)
		return fmt.Errorf("%w: %v", ErrNoProvider, err)
	}

	c.cur.Store(&loaded{plugin: plugin})
	logger.Debug("authentication provider loaded", "type", plugin.Type(), "id", plugin.ID())
	return nil
}

// Fini unloads the provider and releases its resources. Calling Fini
// on an unloaded context is a no-op. After Fini returns, dispatch
// operations fail with ErrNoProvider until a subsequent Init.
//
// Resource release is best effort: a provider Close failure is
// reported but the context still ends up unloaded.
func (c *Context) Fini() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.cur.Load()
	if s == nil {
		return nil
	}

	// Unpublish before touching provider resources so racing dispatch
	// calls see "not initialized" rather than a half-torn-down plugin.
	c.cur.Store(nil)

	if closer, ok := s.plugin.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("provider close failed", "type", s.plugin.Type(), "error", err)
			return fmt.Errorf("close provider %q: %w", s.plugin.Type(), err)
		}
	}
	return nil
}

// Loaded reports whether a provider is currently loaded, and its type
// name if so.
func (c *Context) Loaded() (string, bool) {
	if s := c.cur.Load(); s != nil {
		return s.plugin.Type(), true
	}
	return "", false
}

// current returns the loaded plugin, lazily initializing the context
// with the configured default type. Every dispatch operation funnels
// through here.
func (c *Context) current() (Plugin, error) {
	if s := c.cur.Load(); s != nil {
		return s.plugin, nil
	}
	if err := c.Init(""); err != nil {
		return nil, err
	}
	s := c.cur.Load()
	if s == nil {
		// Init succeeded but a concurrent Fini raced us; treat it the
		// same as an unloaded context.
		return nil, ErrNoProvider
	}
	return s.plugin, nil
}
