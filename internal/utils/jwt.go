package utils // package utils provides token signing and password hashing helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of an identity token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Verification failures. Callers compare with errors.Is.
var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// Claims is the payload of an identity token: subject (user id), email,
// role, jti, iat and exp.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified content of a token.
type Identity struct {
	UserID    uint64
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Token is a signed token together with its id and absolute expiry.
type Token struct {
	Token string
	ID    string
	Exp   time.Time
}

// TokenCodec signs and verifies HS256 identity tokens with a symmetric key.
// It performs no I/O; revocation is layered on by the caller.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec. A zero ttl means DefaultTokenTTL and a nil
// clock means time.Now.
func NewTokenCodec(secret string, ttl time.Duration, now func() time.Time) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the given identity. exp is issuance + ttl, where
// issuance is truncated to whole seconds to match the encoded NumericDate.
func (c *TokenCodec) Issue(userID uint64, email, role string) (Token, error) {
	issued := c.now().UTC().Truncate(time.Second)
	exp := issued.Add(c.ttl)
	id := uuid.NewString()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ID: id, Exp: exp}, nil
}

// Verify checks the signature and expiry of raw. The token is expired when
// the current time is at or after exp. Expiry is evaluated here rather than
// by the jwt library so the boundary is inclusive and driven by c.now.
func (c *TokenCodec) Verify(raw string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Identity{}, ErrTokenBadSignature
		}
		return Identity{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		return Identity{}, ErrTokenMalformed
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return Identity{}, ErrTokenMalformed
	}
	exp := claims.ExpiresAt.Time
	if !c.now().Before(exp) {
		return Identity{}, ErrTokenExpired
	}
	return Identity{
		UserID:    uid,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: exp,
	}, nil
}
