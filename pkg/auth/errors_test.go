package auth

import "testing"

func TestGenericErrstr(t *testing.T) {
	tests := []struct {
		code   Errno
		want   string
		wantOK bool
	}{
		{Success, "no error", true},
		{Failure, "unknown error", true},
		{ErrnoNoProvider, "no authentication provider installed", true},
		{ErrnoBadArg, "bad argument to provider function", true},
		{ErrnoMemory, "memory management error", true},
		{ErrnoNoSuchUser, "no such user", true},
		{ErrnoInvalidCred, "authentication credential invalid", true},
		{ErrnoPluginMismatch, "authentication type mismatch", true},
		{ErrnoVersionTooOld, "authentication version too old", true},
		{ErrnoProviderBase, "", false},
		{ErrnoProviderBase + 42, "", false},
		{Errno(-7), "", false},
	}

	for _, tt := range tests {
		got, ok := GenericErrstr(tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("GenericErrstr(%d) = (%q, %v), want (%q, %v)", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

// The generic table answers the same regardless of provider state:
// code lookups are pure data, independent of what is loaded.
func TestGenericErrstrIndependentOfContext(t *testing.T) {
	want := "authentication type mismatch"
	if got, _ := GenericErrstr(ErrnoPluginMismatch); got != want {
		t.Fatalf("GenericErrstr = %q, want %q", got, want)
	}

	ctx := NewContext("munge", Options{})
	if err := ctx.Init(""); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if got := ctx.Errstr(ErrnoPluginMismatch); got != want {
		t.Errorf("Errstr with provider loaded = %q, want %q", got, want)
	}
}
