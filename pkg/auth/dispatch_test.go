package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestDispatchForwardsToProvider(t *testing.T) {
	ctx := NewContext("munge", Options{})

	cred, err := ctx.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer ctx.Destroy(cred)

	if err := ctx.Verify(cred, ""); err != nil {
		t.Errorf("Verify() = %v", err)
	}

	uid, err := ctx.UID(cred, "")
	if err != nil || uid != 1000 {
		t.Errorf("UID() = (%d, %v), want (1000, nil)", uid, err)
	}
	gid, err := ctx.GID(cred, "")
	if err != nil || gid != 1000 {
		t.Errorf("GID() = (%d, %v), want (1000, nil)", gid, err)
	}
	host, err := ctx.Host(cred, "")
	if err != nil || host != "node0" {
		t.Errorf("Host() = (%q, %v), want (node0, nil)", host, err)
	}
}

func TestDispatchLazyInit(t *testing.T) {
	ctx := NewContext("munge", Options{})

	// No explicit Init: the first operation loads the provider.
	if _, ok := ctx.Loaded(); ok {
		t.Fatal("context loaded before first dispatch")
	}
	cred, err := ctx.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer ctx.Destroy(cred)

	if typ, ok := ctx.Loaded(); !ok || typ != "munge" {
		t.Errorf("Loaded() after dispatch = (%q, %v), want (munge, true)", typ, ok)
	}
}

func TestSprintRendersCredential(t *testing.T) {
	ctx := NewContext("munge", Options{})
	cred, err := ctx.Create("")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer ctx.Destroy(cred)

	out, err := ctx.Sprint(cred)
	if err != nil {
		t.Fatalf("Sprint() = %v", err)
	}
	if !strings.Contains(out, "uid=1000") || !strings.Contains(out, "host=node0") {
		t.Errorf("Sprint() = %q, missing identity fields", out)
	}
}

func TestErrstrOrdering(t *testing.T) {
	ctx := NewContext("munge", Options{})
	if err := ctx.Init(""); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	tests := []struct {
		name string
		code Errno
		want string
	}{
		// Generic codes come from the fixed table, never the provider.
		{"success", Success, "no error"},
		{"mismatch", ErrnoPluginMismatch, "authentication type mismatch"},
		{"version", ErrnoVersionTooOld, "authentication version too old"},
		{"no such user", ErrnoNoSuchUser, "no such user"},
		// Non-generic codes fall through to the provider.
		{"provider code", ErrnoProviderBase + 7, "stub error 1007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ctx.Errstr(tt.code); got != tt.want {
				t.Errorf("Errstr(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrstrWithoutProvider(t *testing.T) {
	ctx := NewContext("no-such-provider", Options{})

	// Even generic codes report the initialization failure when no
	// provider can load.
	if got := ctx.Errstr(Success); got != "authentication initialization failure" {
		t.Errorf("Errstr() = %q, want init failure message", got)
	}
}

func TestDispatchVerifyError(t *testing.T) {
	brokenOK.Store(true)
	ctx := NewContext("broken", Options{})
	if err := ctx.Init(""); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	p := ctx.cur.Load().plugin.(*stubPlugin)
	p.verifyErr = errors.New("bad credential")

	if err := ctx.Verify(&stubCred{}, ""); err == nil {
		t.Error("Verify() = nil, want provider error forwarded")
	}
}
