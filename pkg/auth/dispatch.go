package auth

import (
	"bytes"
	"fmt"
	"io"

	"github.com/canopyhq/canopy/internal/logger"
	"github.com/canopyhq/canopy/pkg/auth/wire"
	"github.com/canopyhq/canopy/pkg/metrics"
)

// The dispatch facade: one method per provider capability. Every
// method lazily initializes the context and forwards to the loaded
// plugin; when no provider can be loaded, the operation's defined
// unavailable sentinel comes back instead (nil credential, zero ids,
// ErrNoProvider). Callers never see the raw Plugin.

// Create mints a credential for the calling process.
func (c *Context) Create(authInfo string) (Credential, error) {
	p, err := c.current()
	if err != nil {
		metrics.ObserveDispatch("create", err)
		return nil, err
	}
	cred, err := p.Create(authInfo)
	metrics.ObserveDispatch("create", err)
	return cred, err
}

// Destroy releases a credential obtained from Create or Unpack.
func (c *Context) Destroy(cred Credential) error {
	p, err := c.current()
	if err != nil {
		return err
	}
	return p.Destroy(cred)
}

// Verify checks a credential's authenticity with the active provider.
func (c *Context) Verify(cred Credential, authInfo string) error {
	p, err := c.current()
	if err != nil {
		metrics.ObserveDispatch("verify", err)
		return err
	}
	err = p.Verify(cred, authInfo)
	metrics.ObserveDispatch("verify", err)
	return err
}

// UID returns the uid of the principal the credential identifies.
func (c *Context) UID(cred Credential, authInfo string) (uint32, error) {
	p, err := c.current()
	if err != nil {
		return 0, err
	}
	return p.UID(cred, authInfo)
}

// GID returns the primary gid of the principal.
func (c *Context) GID(cred Credential, authInfo string) (uint32, error) {
	p, err := c.current()
	if err != nil {
		return 0, err
	}
	return p.GID(cred, authInfo)
}

// Host returns the hostname the credential was minted on.
func (c *Context) Host(cred Credential, authInfo string) (string, error) {
	p, err := c.current()
	if err != nil {
		return "", err
	}
	return p.Host(cred, authInfo)
}

// Print writes a human-readable rendering of the credential to w.
func (c *Context) Print(cred Credential, w io.Writer) error {
	p, err := c.current()
	if err != nil {
		return err
	}
	return p.Print(cred, w)
}

// Errno returns the last provider-internal error code recorded on the
// credential. When no provider is loaded it returns ErrnoNoProvider.
func (c *Context) Errno(cred Credential) Errno {
	p, err := c.current()
	if err != nil {
		return ErrnoNoProvider
	}
	return p.Errno(cred)
}

// Errstr describes an authentication error code.
//
// The lookup order is a contract: context initialization status first
// (a fixed message when no provider can be loaded), then the generic
// table, then the provider's own Errstr. Generic codes are never
// misreported by a provider-specific string.
func (c *Context) Errstr(code Errno) string {
	p, err := c.current()
	if err != nil {
		return errstrInit
	}
	if msg, ok := GenericErrstr(code); ok {
		return msg
	}
	return p.Errstr(code)
}

// Pack encodes a credential for transmission at the given protocol
// version.
//
// ID-tagged versions write the provider's numeric plugin id before the
// provider body; type-tagged versions write the provider's type name
// and a reserved zero word. Versions below wire.VersionMin fail with
// wire.ErrVersionTooOld and write nothing.
func (c *Context) Pack(cred Credential, buf *wire.Buffer, version uint16) error {
	p, err := c.current()
	if err != nil {
		metrics.ObserveDispatch("pack", err)
		return err
	}

	switch {
	case version >= wire.VersionIDTag:
		buf.WriteUint32(p.ID())
		err = p.Pack(cred, buf, version)
	case version >= wire.VersionMin:
		buf.WriteString(p.Type())
		// Receivers historically packed a plugin version here and never
		// checked it on unpack; a literal zero keeps old decoders happy.
		buf.WriteUint32(0)
		err = p.Pack(cred, buf, version)
	default:
		err = fmt.Errorf("%w: %#04x", wire.ErrVersionTooOld, version)
		logger.Error("cannot pack credential", "version", version, "error", err)
	}
	metrics.ObserveDispatch("pack", err)
	return err
}

// Unpack decodes a credential produced by a compatible peer.
//
// The embedded identity tag is validated against the active provider
// before the provider's own decoder ever sees the body: ID-tagged
// records must carry the provider's plugin id, type-tagged records its
// exact type name. A mismatch fails with ErrPluginMismatch and leaves
// the body undecoded. The credential returned on success must be
// released with Destroy.
func (c *Context) Unpack(buf *wire.Buffer, version uint16) (Credential, error) {
	p, err := c.current()
	if err != nil {
		metrics.ObserveDispatch("unpack", err)
		return nil, err
	}

	cred, err := c.unpackWith(p, buf, version)
	metrics.ObserveDispatch("unpack", err)
	return cred, err
}

func (c *Context) unpackWith(p Plugin, buf *wire.Buffer, version uint16) (Credential, error) {
	switch {
	case version >= wire.VersionIDTag:
		id, err := buf.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("unpack plugin id: %w", err)
		}
		if id != p.ID() {
			logger.Error("credential from foreign provider", "remote_id", id, "local_id", p.ID())
			return nil, fmt.Errorf("%w: remote plugin id %d, local %d", ErrPluginMismatch, id, p.ID())
		}
		return p.Unpack(buf, version)

	case version >= wire.VersionMin:
		typ, err := buf.ReadString()
		if err != nil {
			return nil, fmt.Errorf("unpack plugin type: %w", err)
		}
		if typ != p.Type() {
			logger.Error("credential from foreign provider", "remote_type", typ, "local_type", p.Type())
			return nil, fmt.Errorf("%w: remote plugin type %q, local %q", ErrPluginMismatch, typ, p.Type())
		}
		// Reserved word: packed by old senders, never validated.
		if _, err := buf.ReadUint32(); err != nil {
			return nil, fmt.Errorf("unpack reserved field: %w", err)
		}
		return p.Unpack(buf, version)

	default:
		err := fmt.Errorf("%w: %#04x", wire.ErrVersionTooOld, version)
		logger.Error("cannot unpack credential", "version", version, "error", err)
		return nil, err
	}
}

// Sprint renders a credential to a string using the provider's Print.
// Convenience for logging and the CLI.
func (c *Context) Sprint(cred Credential) (string, error) {
	var b bytes.Buffer
	if err := c.Print(cred, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
