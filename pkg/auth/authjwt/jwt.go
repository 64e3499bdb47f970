// Package authjwt implements the JWT authentication provider.
//
// Credentials are HS256-signed tokens carrying the minting user as the
// subject claim. All processes in the cluster share the signing key,
// distributed out of band (typically a root-owned key file pushed by
// the deployment tooling).
//
// Provider settings (config auth.settings):
//
//	key_file  path to the shared signing key (preferred)
//	key       literal signing key (tests only)
//	ttl       token lifetime, Go duration syntax (default 10m)
//	issuer    optional issuer claim stamped on minted tokens
package authjwt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canopyhq/canopy/pkg/auth"
	"github.com/canopyhq/canopy/pkg/auth/wire"
)

// PluginID is the JWT provider's stable numeric plugin id.
const PluginID uint32 = 102

// PluginType is the JWT provider's wire type name.
const PluginType = "jwt"

// DefaultTTL is the token lifetime when no ttl setting is given.
const DefaultTTL = 10 * time.Minute

// Provider-internal error codes, described by Errstr.
const (
	ErrnoExpired auth.Errno = auth.ErrnoProviderBase + iota
	ErrnoBadSignature
	ErrnoMalformed
)

// ErrNoKey indicates the provider was configured without signing key
// material.
var ErrNoKey = errors.New("jwt provider requires key_file or key setting")

// ErrUnknownSubject indicates the token subject has no local account
// on this host.
var ErrUnknownSubject = errors.New("unknown token subject")

func init() {
	auth.Register(PluginType, New)
}

// claims is the token payload. Subject identifies the minting user;
// Host records the origin machine so receivers can report it without
// another lookup.
type claims struct {
	jwt.RegisteredClaims
	Host string `json:"host,omitempty"`
}

// credential wraps a token. The parsed claims appear after a
// successful Verify; identity accessors require them.
type credential struct {
	token    string
	claims   *claims
	verified bool
	errno    auth.Errno
}

// Plugin signs and verifies HS256 tokens with a shared key.
type Plugin struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

// New builds the JWT provider from its settings. Missing key material
// is a load failure: a half-configured provider must never load.
func New(opts auth.Options) (auth.Plugin, error) {
	p := &Plugin{ttl: DefaultTTL}

	if path := opts.Setting("key_file", ""); path != "" {
		key, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read jwt key file: %w", err)
		}
		p.key = key
	} else if key := opts.Setting("key", ""); key != "" {
		p.key = []byte(key)
	} else {
		return nil, ErrNoKey
	}

	if ttl := opts.Setting("ttl", ""); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parse jwt ttl: %w", err)
		}
		p.ttl = d
	}
	p.issuer = opts.Setting("issuer", "")

	return p, nil
}

// ID returns PluginID.
func (p *Plugin) ID() uint32 { return PluginID }

// Type returns PluginType.
func (p *Plugin) Type() string { return PluginType }

// Create signs a fresh token for the calling user.
func (p *Plugin) Create(authInfo string) (auth.Credential, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("resolve hostname: %w", err)
	}

	now := time.Now()
	cl := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    p.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		Host: host,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(p.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	// Locally minted tokens are born verified; the claims are ours.
	return &credential{token: token, claims: cl, verified: true}, nil
}

// Destroy releases a credential.
func (p *Plugin) Destroy(cred auth.Credential) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}
	c.claims = nil
	c.verified = false
	return nil
}

// Verify parses the token and validates its signature and expiry. On
// success the claims become available to the identity accessors.
func (p *Plugin) Verify(cred auth.Credential, authInfo string) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}

	var cl claims
	_, err = jwt.ParseWithClaims(c.token, &cl,
		func(t *jwt.Token) (interface{}, error) { return p.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			c.errno = ErrnoExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			c.errno = ErrnoBadSignature
		default:
			c.errno = ErrnoMalformed
		}
		return fmt.Errorf("verify token: %w", err)
	}

	c.claims = &cl
	c.verified = true
	c.errno = auth.Success
	return nil
}

// UID resolves the token subject to a local uid. The credential must
// have been verified. An unknown subject fails with ErrUnknownSubject
// and records ErrnoNoSuchUser on the credential.
func (p *Plugin) UID(cred auth.Credential, authInfo string) (uint32, error) {
	c, err := p.verified(cred)
	if err != nil {
		return 0, err
	}
	u, err := p.lookup(c)
	if err != nil {
		return 0, err
	}
	return parseID(u.Uid)
}

// GID resolves the token subject's primary gid.
func (p *Plugin) GID(cred auth.Credential, authInfo string) (uint32, error) {
	c, err := p.verified(cred)
	if err != nil {
		return 0, err
	}
	u, err := p.lookup(c)
	if err != nil {
		return 0, err
	}
	return parseID(u.Gid)
}

// Host returns the host claim stamped at mint time.
func (p *Plugin) Host(cred auth.Credential, authInfo string) (string, error) {
	c, err := p.verified(cred)
	if err != nil {
		return "", err
	}
	return c.claims.Host, nil
}

// Pack appends the credential body: the serialized token.
func (p *Plugin) Pack(cred auth.Credential, buf *wire.Buffer, version uint16) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}
	buf.WriteString(c.token)
	return nil
}

// Unpack decodes a credential body produced by Pack. The returned
// credential is unverified; callers must Verify before trusting it.
func (p *Plugin) Unpack(buf *wire.Buffer, version uint16) (auth.Credential, error) {
	token, err := buf.ReadString()
	if err != nil {
		return nil, fmt.Errorf("unpack token: %w", err)
	}
	return &credential{token: token}, nil
}

// Print writes a short rendering of the credential. The raw token is
// never printed; it is a bearer secret.
func (p *Plugin) Print(cred auth.Credential, w io.Writer) error {
	c, err := p.cred(cred)
	if err != nil {
		return err
	}
	if !c.verified {
		_, err = fmt.Fprintf(w, "type=%s unverified\n", PluginType)
		return err
	}
	_, err = fmt.Fprintf(w, "type=%s subject=%s host=%s expires=%s\n",
		PluginType, c.claims.Subject, c.claims.Host, c.claims.ExpiresAt.Time.Format(time.RFC3339))
	return err
}

// Errno returns the last verification error code recorded on the
// credential.
func (p *Plugin) Errno(cred auth.Credential) auth.Errno {
	c, ok := cred.(*credential)
	if !ok {
		return auth.ErrnoBadArg
	}
	return c.errno
}

// Errstr describes the provider-internal error codes.
func (p *Plugin) Errstr(code auth.Errno) string {
	switch code {
	case ErrnoExpired:
		return "token expired"
	case ErrnoBadSignature:
		return "token signature invalid"
	case ErrnoMalformed:
		return "token malformed"
	default:
		return fmt.Sprintf("unknown error %d", code)
	}
}

// Close zeroes the shared key. Called by the context during teardown.
func (p *Plugin) Close() error {
	for i := range p.key {
		p.key[i] = 0
	}
	p.key = nil
	return nil
}

func (p *Plugin) cred(cred auth.Credential) (*credential, error) {
	c, ok := cred.(*credential)
	if !ok {
		return nil, fmt.Errorf("%w: %T", auth.ErrBadCredential, cred)
	}
	return c, nil
}

func (p *Plugin) verified(cred auth.Credential) (*credential, error) {
	c, err := p.cred(cred)
	if err != nil {
		return nil, err
	}
	if !c.verified || c.claims == nil {
		return nil, errors.New("credential not verified")
	}
	return c, nil
}

// lookup resolves the credential's subject to a local account,
// recording ErrnoNoSuchUser on the credential when the subject does
// not exist so Errno/Errstr surface the generic "no such user" string.
func (p *Plugin) lookup(c *credential) (*user.User, error) {
	u, err := user.Lookup(c.claims.Subject)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			c.errno = auth.ErrnoNoSuchUser
			return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, c.claims.Subject)
		}
		return nil, fmt.Errorf("lookup user %q: %w", c.claims.Subject, err)
	}
	return u, nil
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	return uint32(id), nil
}
