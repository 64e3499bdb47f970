package auth

import (
	"io"

	"github.com/canopyhq/canopy/pkg/auth/wire"
)

// Credential is an opaque authentication token produced and owned by a
// Plugin. The dispatch layer never inspects its layout; it only passes
// it between the caller, the codec, and the provider that minted it.
//
// A credential obtained from Create or Unpack must eventually be
// released with Destroy.
type Credential interface{}

// Plugin is the capability table an authentication provider implements.
//
// Exactly one Plugin is active per process, selected once by
// Context.Init. Implementations must be safe for concurrent per-call
// use on distinct credentials; the dispatch layer serializes nothing
// beyond load and unload.
//
// A provider that also implements io.Closer has Close called during
// Context.Fini to release long-lived resources (key material, cached
// lookups).
type Plugin interface {
	// ID returns the provider's stable numeric plugin id. It tags
	// credentials on the wire for ID-tagged protocol versions and must
	// never be reused across providers.
	ID() uint32

	// Type returns the provider's type name ("none", "jwt"). It tags
	// credentials on the wire for type-tagged protocol versions.
	Type() string

	// Create mints a credential for the calling process. The authInfo
	// string carries provider-specific options and may be empty.
	Create(authInfo string) (Credential, error)

	// Destroy releases a credential obtained from Create or Unpack.
	Destroy(cred Credential) error

	// Verify checks the credential's authenticity. Identity accessors
	// may require a prior successful Verify.
	Verify(cred Credential, authInfo string) error

	// UID returns the uid of the principal the credential identifies.
	UID(cred Credential, authInfo string) (uint32, error)

	// GID returns the primary gid of the principal.
	GID(cred Credential, authInfo string) (uint32, error)

	// Host returns the hostname the credential was minted on, or ""
	// if the provider does not track origin hosts.
	Host(cred Credential, authInfo string) (string, error)

	// Pack appends the provider-specific credential body to buf. The
	// dispatch layer has already written the identity tag.
	Pack(cred Credential, buf *wire.Buffer, version uint16) error

	// Unpack decodes a credential body from buf. The dispatch layer
	// has already consumed and validated the identity tag.
	Unpack(buf *wire.Buffer, version uint16) (Credential, error)

	// Print writes a human-readable rendering of the credential to w.
	Print(cred Credential, w io.Writer) error

	// Errno returns the last provider-internal error code recorded on
	// the credential, or Success.
	Errno(cred Credential) Errno

	// Errstr describes a provider-internal error code. The dispatch
	// layer consults the generic table first, so Errstr only sees
	// codes the generic table does not cover.
	Errstr(code Errno) string
}
