// Package worldtoken issues the opaque world_id tokens handed to clients.
//
// A token is an HS256 JWT whose subject is the internal world ID. Clients
// treat it as an opaque string; the service verifies the signature before
// looking a world up, so guessed or tampered IDs are rejected early.
package worldtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "wumpus"

// ErrInvalid is returned for tokens that fail verification.
var ErrInvalid = errors.New("invalid world token")

// Issuer signs and verifies world tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using secret. A zero ttl issues tokens that
// never expire.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for worldID.
func (i *Issuer) Issue(worldID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  worldID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign world token: %w", err)
	}
	return ss, nil
}

// WorldID verifies token and returns the world ID it names.
func (i *Issuer) WorldID(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalid)
	}
	return claims.Subject, nil
}
