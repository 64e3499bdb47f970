// Package none implements the null authentication provider.
//
// Credentials carry the calling process's uid, gid, and hostname with
// no cryptographic protection; verification trusts the peer outright.
// It exists for single-tenant test clusters and for development, where
// standing up real key material is not worth the friction. Production
// clusters select a real provider.
package none

import (
	"fmt"
	"io"
	"os"

	"github.com/canopyhq/canopy/pkg/auth"
	"github.com/canopyhq/canopy/pkg/auth/wire"
)

// PluginID is the null provider's stable numeric plugin id.
const PluginID uint32 = 100

// PluginType is the null provider's wire type name.
const PluginType = "none"

func init() {
	auth.Register(PluginType, New)
}

// Plugin is the null provider. It is stateless; one instance serves
// the whole process.
type Plugin struct{}

// New builds the null provider. It never fails.
func New(opts auth.Options) (auth.Plugin, error) {
	return &Plugin{}, nil
}

// credential is the null provider's token: the identity the sender
// claims, taken at face value.
type credential struct {
	uid  uint32
	gid  uint32
	host string
}

// ID returns PluginID.
func (p *Plugin) ID() uint32 { return PluginID }

// Type returns PluginType.
func (p *Plugin) Type() string { return PluginType }

// Create mints a credential carrying the calling process's identity.
func (p *Plugin) Create(authInfo string) (auth.Credential, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("resolve hostname: %w", err)
	}
	return &credential{
		uid:  uint32(os.Getuid()),
		gid:  uint32(os.Getgid()),
		host: host,
	}, nil
}

// Destroy releases a credential. The null provider holds no resources.
func (p *Plugin) Destroy(cred auth.Credential) error {
	_, err := p.cred(cred)
	return err
}

// Verify accepts every well-formed credential.
func (p *Plugin) Verify(cred auth.Credential, authInfo string) error {
	_, err := p.cred(cred)
	return err
}

// UID returns the uid the sender claimed.
func (p *Plugin) UID(cred auth.Credential, authInfo string) (uint32, error) {
	c, err := p.cred(cred)
	if err != nil {
		return 0, err
	}
	return c.uid, nil
}

// GID returns the gid the sender claimed.
func (p *Plugin) GID(cred auth.Credential, authInfo string) (uint32, error) {
	c, err := p.cred(cred)
	if err != nil {
		return 0, err
	}
	return c.gid, nil
}

// Host returns the hostname the credential was minted on.
func (p *Plugin) Host(cred auth.Credential, authInfo string) (string, error) {
	c, err := p.cred(cred)
	if err != nil {
		return "", err
	}
	return c.host, nil
}

// Pack appends the credential body: [uid][gid][host].
func (p *Plugin) Pack(cred auth.Credential, buf *wire.Buffer, version uint16) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}
	buf.WriteUint32(c.uid)
	buf.WriteUint32(c.gid)
	buf.WriteString(c.host)
	return nil
}

// Unpack decodes a credential body produced by Pack.
func (p *Plugin) Unpack(buf *wire.Buffer, version uint16) (auth.Credential, error) {
	var c credential
	var err error

	if c.uid, err = buf.ReadUint32(); err != nil {
		return nil, fmt.Errorf("unpack uid: %w", err)
	}
	if c.gid, err = buf.ReadUint32(); err != nil {
		return nil, fmt.Errorf("unpack gid: %w", err)
	}
	if c.host, err = buf.ReadString(); err != nil {
		return nil, fmt.Errorf("unpack host: %w", err)
	}
	return &c, nil
}

// Print writes a one-line rendering of the credential.
func (p *Plugin) Print(cred auth.Credential, w io.Writer) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "type=%s uid=%d gid=%d host=%s\n", PluginType, c.uid, c.gid, c.host)
	return err
}

// Errno reports Success for every valid credential; the null provider
// has no internal failure modes.
func (p *Plugin) Errno(cred auth.Credential) auth.Errno {
	if _, err := p.cred(cred); err != nil {
		return auth.ErrnoBadArg
	}
	return auth.Success
}

// Errstr has no provider-specific codes to describe.
func (p *Plugin) Errstr(code auth.Errno) string {
	return fmt.Sprintf("unknown error %d", code)
}

func (p *Plugin) cred(cred auth.Credential) (*credential, error) {
	c, ok := cred.(*credential)
	if !ok {
		return nil, fmt.Errorf("%w: %T", auth.ErrBadCredential, cred)
	}
	return c, nil
}
