package auth

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/canopyhq/canopy/pkg/auth/wire"
)

// stubPlugin is a scriptable in-memory provider for dispatch and codec
// tests. Its wire body is [uid][gid][host], mirroring a minimal real
// provider.
type stubPlugin struct {
	id  uint32
	typ string

	verifyErr   error
	lastErrno   Errno
	closeErr    error
	closed      atomic.Bool
	unpackCalls atomic.Int32
}

type stubCred struct {
	uid, gid uint32
	host     string
	verified bool
}

func (p *stubPlugin) ID() uint32   { return p.id }
func (p *stubPlugin) Type() string { return p.typ }

func (p *stubPlugin) Create(authInfo string) (Credential, error) {
	return &stubCred{uid: 1000, gid: 1000, host: "node0"}, nil
}

func (p *stubPlugin) Destroy(cred Credential) error { return nil }

func (p *stubPlugin) Verify(cred Credential, authInfo string) error {
	if p.verifyErr != nil {
		return p.verifyErr
	}
	cred.(*stubCred).verified = true
	return nil
}

func (p *stubPlugin) UID(cred Credential, authInfo string) (uint32, error) {
	return cred.(*stubCred).uid, nil
}

func (p *stubPlugin) GID(cred Credential, authInfo string) (uint32, error) {
	return cred.(*stubCred).gid, nil
}

func (p *stubPlugin) Host(cred Credential, authInfo string) (string, error) {
	return cred.(*stubCred).host, nil
}

func (p *stubPlugin) Pack(cred Credential, buf *wire.Buffer, version uint16) error {
	c := cred.(*stubCred)
	buf.WriteUint32(c.uid)
	buf.WriteUint32(c.gid)
	buf.WriteString(c.host)
	return nil
}

func (p *stubPlugin) Unpack(buf *wire.Buffer, version uint16) (Credential, error) {
	p.unpackCalls.Add(1)
	var c stubCred
	var err error
	if c.uid, err = buf.ReadUint32(); err != nil {
		return nil, err
	}
	if c.gid, err = buf.ReadUint32(); err != nil {
		return nil, err
	}
	if c.host, err = buf.ReadString(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *stubPlugin) Print(cred Credential, w io.Writer) error {
	c := cred.(*stubCred)
	_, err := fmt.Fprintf(w, "type=%s uid=%d gid=%d host=%s\n", p.typ, c.uid, c.gid, c.host)
	return err
}

func (p *stubPlugin) Errno(cred Credential) Errno { return p.lastErrno }

func (p *stubPlugin) Errstr(code Errno) string {
	return fmt.Sprintf("stub error %d", code)
}

func (p *stubPlugin) Close() error {
	p.closed.Store(true)
	return p.closeErr
}

// Provider names registered once for the whole test binary. The
// registry is process-global, so per-test state lives in these shared
// variables instead of per-test factories.
var (
	slowLoads   atomic.Int32
	brokenLoads atomic.Int32
	brokenOK    atomic.Bool // when set, the "broken" factory succeeds
)

func init() {
	// id=101 type="munge" matches the canonical provider identity used
	// throughout the codec tests.
	Register("munge", func(opts Options) (Plugin, error) {
		return &stubPlugin{id: 101, typ: "munge"}, nil
	})
	Register("other", func(opts Options) (Plugin, error) {
		return &stubPlugin{id: 202, typ: "other"}, nil
	})
	Register("slow", func(opts Options) (Plugin, error) {
		time.Sleep(50 * time.Millisecond)
		slowLoads.Add(1)
		return &stubPlugin{id: 103, typ: "slow"}, nil
	})
	Register("broken", func(opts Options) (Plugin, error) {
		brokenLoads.Add(1)
		if brokenOK.Load() {
			return &stubPlugin{id: 104, typ: "broken"}, nil
		}
		return nil, fmt.Errorf("load failure injected")
	})
}
