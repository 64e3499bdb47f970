package none

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/canopyhq/canopy/pkg/auth"
	"github.com/canopyhq/canopy/pkg/auth/wire"
)

func newPlugin(t *testing.T) auth.Plugin {
	t.Helper()
	p, err := New(auth.Options{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return p
}

func TestIdentityFields(t *testing.T) {
	p := newPlugin(t)
	if p.ID() != 100 {
		t.Errorf("ID() = %d, want 100", p.ID())
	}
	if p.Type() != "none" {
		t.Errorf("Type() = %q, want none", p.Type())
	}
}

func TestCreateCarriesProcessIdentity(t *testing.T) {
	p := newPlugin(t)

	cred, err := p.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer p.Destroy(cred)

	if err := p.Verify(cred, ""); err != nil {
		t.Errorf("Verify() = %v, want nil (null provider trusts everything)", err)
	}

	uid, err := p.UID(cred, "")
	if err != nil || uid != uint32(os.Getuid()) {
		t.Errorf("UID() = (%d, %v), want (%d, nil)", uid, err, os.Getuid())
	}
	gid, err := p.GID(cred, "")
	if err != nil || gid != uint32(os.Getgid()) {
		t.Errorf("GID() = (%d, %v), want (%d, nil)", gid, err, os.Getgid())
	}

	wantHost, _ := os.Hostname()
	host, err := p.Host(cred, "")
	if err != nil || host != wantHost {
		t.Errorf("Host() = (%q, %v), want (%q, nil)", host, err, wantHost)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	p := newPlugin(t)
	cred, err := p.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer p.Destroy(cred)

	var buf wire.Buffer
	if err := p.Pack(cred, &buf, wire.VersionIDTag); err != nil {
		t.Fatalf("Pack() = %v", err)
	}

	got, err := p.Unpack(wire.NewBuffer(buf.Bytes()), wire.VersionIDTag)
	if err != nil {
		t.Fatalf("Unpack() = %v", err)
	}
	defer p.Destroy(got)

	wantUID, _ := p.UID(cred, "")
	gotUID, _ := p.UID(got, "")
	if wantUID != gotUID {
		t.Errorf("uid = %d after round trip, want %d", gotUID, wantUID)
	}
	wantHost, _ := p.Host(cred, "")
	gotHost, _ := p.Host(got, "")
	if wantHost != gotHost {
		t.Errorf("host = %q after round trip, want %q", gotHost, wantHost)
	}
}

func TestUnpackTruncated(t *testing.T) {
	p := newPlugin(t)
	got, err := p.Unpack(wire.NewBuffer([]byte{0, 0}), wire.VersionIDTag)
	if got != nil || err == nil {
		t.Errorf("Unpack(truncated) = (%v, %v), want (nil, error)", got, err)
	}
}

func TestPrint(t *testing.T) {
	p := newPlugin(t)
	cred, err := p.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer p.Destroy(cred)

	var b bytes.Buffer
	if err := p.Print(cred, &b); err != nil {
		t.Fatalf("Print() = %v", err)
	}
	if !strings.Contains(b.String(), "type=none") {
		t.Errorf("Print() = %q, missing type field", b.String())
	}
}

func TestForeignCredentialRejected(t *testing.T) {
	p := newPlugin(t)

	type otherCred struct{}
	if err := p.Verify(&otherCred{}, ""); !errors.Is(err, auth.ErrBadCredential) {
		t.Errorf("Verify(foreign) = %v, want ErrBadCredential", err)
	}
	if got := p.Errno(&otherCred{}); got != auth.ErrnoBadArg {
		t.Errorf("Errno(foreign) = %d, want ErrnoBadArg", got)
	}
}
