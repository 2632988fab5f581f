// Package auth provides stateless bearer authentication using JWT.
// Actors are identified by the token subject; nothing is stored server side.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/agencms/adapters/clock"
	"github.com/artpar/agencms/adapters/idgen"
	"github.com/artpar/agencms/ports"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// DefaultIssuer is used when none is configured.
const DefaultIssuer = "agencms"

// Claims represents the JWT claims of an admin UI session.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the actor the claims identify.
func (c *Claims) Actor() ports.Actor {
	return ports.Actor{ID: c.Subject, Email: c.Email}
}

// TokenService issues and validates tokens.
// Thread-safe and suitable for concurrent use.
type TokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	clock      ports.Clock
	ids        ports.IDGenerator
}

// NewTokenService creates a new JWT token service.
// If secret is empty, a random 32-byte secret is generated, so tokens do not
// survive a restart.
func NewTokenService(secret, issuer string, expiration time.Duration) *TokenService {
	var secretBytes []byte
	if secret == "" {
		secretBytes = make([]byte, 32)
		rand.Read(secretBytes)
	} else {
		secretBytes = []byte(secret)
	}

	if issuer == "" {
		issuer = DefaultIssuer
	}
	if expiration == 0 {
		expiration = 24 * time.Hour
	}

	return &TokenService{
		secret:     secretBytes,
		issuer:     issuer,
		expiration: expiration,
		clock:      clock.System{},
		ids:        idgen.UUID{},
	}
}

// WithClock replaces the time source used to issue and validate tokens.
func (s *TokenService) WithClock(c ports.Clock) *TokenService {
	s.clock = c
	return s
}

// WithIDs replaces the generator of token IDs.
func (s *TokenService) WithIDs(g ports.IDGenerator) *TokenService {
	s.ids = g
	return s
}

// GenerateToken creates a token for actor. Each token carries a unique ID.
func (s *TokenService) GenerateToken(actor ports.Actor) (string, time.Time, error) {
	if actor.IsZero() {
		return "", time.Time{}, errors.New("generate token: actor id is required")
	}

	now := s.clock.Now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		Email: actor.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ids.New(),
			Issuer:    s.issuer,
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken validates a token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateSecret generates a random secret suitable for JWT signing.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
