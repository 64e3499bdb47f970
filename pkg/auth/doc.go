// Package auth is the pluggable authentication dispatch layer for
// canopy.
//
// Every canopy process authenticates its peers through exactly one
// authentication provider, selected by name at startup and never
// swapped afterwards. This package owns the pieces that are provider
// independent:
//
//   - Plugin: the fixed capability contract every provider implements
//   - the provider registry (Register / Resolve)
//   - Context: the process-wide singleton holding the loaded provider
//   - the dispatch facade on Context, which lazily loads the provider
//     and forwards each operation to it
//   - the versioned credential codec (Context.Pack / Context.Unpack)
//   - the generic error code table shared by all providers
//
// Concrete providers live in sub-packages (none, authjwt) and register
// themselves from init, so importing a provider package is what makes
// it selectable:
//
//	import (
//	    "github.com/canopyhq/canopy/pkg/auth"
//	    _ "github.com/canopyhq/canopy/pkg/auth/none"
//	)
//
//	ctx := auth.NewContext("none", auth.Options{})
//	cred, err := ctx.Create("")
//
// Thread safety: all Context methods are safe for concurrent use. The
// context mutex guards only load/unload transitions; per-call provider
// operations run without it.
package auth
