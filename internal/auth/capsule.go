package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultCapsuleTTL is how long a signed capsule stays valid.
const DefaultCapsuleTTL = 24 * time.Hour

type capsuleClaims struct {
	Session Session `json:"session"`
	jwt.RegisteredClaims
}

// CapsuleCodec signs and verifies session capsules (HS256 JWTs).
type CapsuleCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCapsuleCodec creates a codec. A zero ttl uses DefaultCapsuleTTL.
func NewCapsuleCodec(secret string, ttl time.Duration) (*CapsuleCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultCapsuleTTL
	}
	return &CapsuleCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the capsule lifetime.
func (c *CapsuleCodec) TTL() time.Duration {
	return c.ttl
}

// Encode signs the session into a new capsule. Every call issues a fresh
// capsule with its own expiry.
func (c *CapsuleCodec) Encode(s Session) (string, error) {
	now := c.now()
	claims := capsuleClaims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing capsule: %w", err)
	}
	return signed, nil
}

// Decode verifies a capsule and returns its session.
// Returns ErrInvalidCapsule on bad signature, wrong algorithm or expiry.
func (c *CapsuleCodec) Decode(capsule string) (Session, error) {
	var claims capsuleClaims
	_, err := jwt.ParseWithClaims(capsule, &claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidCapsule, err)
	}
	return claims.Session, nil
}
