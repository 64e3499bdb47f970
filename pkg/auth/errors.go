package auth

import "errors"

// Errno is a numeric authentication error code. Codes below 1000 are
// generic and described by the table in this file; providers define
// their own codes at ErrnoProviderBase and up and describe them through
// Plugin.Errstr.
type Errno int

// Generic codes shared by every provider.
const (
	Success Errno = 0
	Failure Errno = 1
)

// Generic authentication failure codes. Values are wire-stable; new
// codes go at the end.
const (
	ErrnoNoProvider Errno = iota + 100
	ErrnoBadArg
	ErrnoMemory
	ErrnoNoSuchUser
	ErrnoInvalidCred
	ErrnoPluginMismatch
	ErrnoVersionTooOld
)

// ErrnoProviderBase is the first code available for provider-internal
// errors.
const ErrnoProviderBase Errno = 1000

// Sentinel errors returned by the dispatch facade.
var (
	// ErrNoProvider indicates no authentication provider is loaded and
	// lazy initialization could not load one.
	ErrNoProvider = errors.New("no authentication provider loaded")

	// ErrUnknownProvider indicates the configured provider name is not
	// registered.
	ErrUnknownProvider = errors.New("unknown authentication provider")

	// ErrBadCredential indicates a credential that does not belong to
	// the active provider was passed to a dispatch operation.
	ErrBadCredential = errors.New("credential does not belong to active provider")

	// ErrPluginMismatch indicates a wire record minted by a different
	// provider than the one loaded locally.
	ErrPluginMismatch = errors.New("authentication provider mismatch")
)

// errstrInit is returned by Context.Errstr when no provider can be
// loaded; it must stay useful with zero providers available.
const errstrInit = "authentication initialization failure"

// genericErrstrTable maps the universally-defined codes to fixed
// strings. Order matters only in that lookup takes the first match;
// codes are unique so the table is effectively a map kept as a slice
// for stable iteration.
var genericErrstrTable = []struct {
	code Errno
	msg  string
}{
	{Success, "no error"},
	{Failure, "unknown error"},
	{ErrnoNoProvider, "no authentication provider installed"},
	{ErrnoBadArg, "bad argument to provider function"},
	{ErrnoMemory, "memory management error"},
	{ErrnoNoSuchUser, "no such user"},
	{ErrnoInvalidCred, "authentication credential invalid"},
	{ErrnoPluginMismatch, "authentication type mismatch"},
	{ErrnoVersionTooOld, "authentication version too old"},
}

// GenericErrstr describes a generic error code. The second return is
// false when code is not one of the universally-defined codes, in
// which case the caller falls through to the provider's own Errstr.
func GenericErrstr(code Errno) (string, bool) {
	for _, e := range genericErrstrTable {
		if e.code == code {
			return e.msg, true
		}
	}
	return "", false
}
