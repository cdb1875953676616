package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "staffhub"

// DefaultTokenTTL is the fixed validity window for issued tokens.
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken indicates the token failed validation. Callers never
	// learn which sub-check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret is returned when a Codec is constructed without a
	// signing secret. This is a startup failure, not a per-call condition.
	ErrMissingSecret = errors.New("auth secret is not configured")
)

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject   string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// wireClaims is the on-the-wire claim set. The roles claim is omitted
// entirely for an empty role set; decode tolerates its absence.
type wireClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a symmetric HS256 key. The
// key is immutable after construction; rotating it requires a restart.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTTL overrides the token validity window.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec derives the signing key from the startup secret. An empty secret
// fails here so a misconfigured process never reaches serving traffic.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		key: []byte(secret),
		ttl: DefaultTokenTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the validity window applied to issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the subject carrying the given role set. Expiry is
// always issued-at plus the fixed validity window.
func (c *Codec) Issue(subject string, roles []Role) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := c.now().UTC()
	claims := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	if len(roles) > 0 {
		claims.Roles = RoleNames(roles)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and required claims, then reconstructs the
// Claims. Signature checks run before any claim is trusted; malformed input,
// a wrong algorithm, a bad signature or an elapsed expiry all fail closed
// with ErrInvalidToken.
func (c *Codec) Decode(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &wireClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.key, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithIssuer(issuer))
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	wire, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(wire.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	if wire.IssuedAt == nil || wire.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Subject:   wire.Subject,
		Roles:     ParseRoles(wire.Roles),
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
	}, nil
}

// Validate reports whether the token decodes cleanly, names exactly the
// expected subject (case-sensitive) and has not expired.
func (c *Codec) Validate(token, expectedSubject string) bool {
	claims, err := c.Decode(token)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return c.now().Before(claims.ExpiresAt)
}
