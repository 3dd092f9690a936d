// internal/store/token.go
//
// Stateless Store: the whole session travels inside the frame state string
// as an HS256 JWT. The server keeps nothing between requests; a token is
// trusted only if it carries our signature and has not expired.

package store

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/rps-frame/internal/game"
)

const keyInfo = "rps-frame state token v1"

// stateClaims is the JWT payload. The session ID rides in the "jti" claim.
type stateClaims struct {
	State game.State `json:"st"`
	jwt.RegisteredClaims
}

// Token is a Store that signs state into the token itself.
type Token struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenStore derives a signing key from secret and returns a Store whose
// tokens stay valid for ttl.
func NewTokenStore(secret string, ttl time.Duration) (*Token, error) {
	if secret == "" {
		return nil, errors.New("token store: empty secret")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token store: ttl must be positive, got %s", ttl)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return &Token{key: key, ttl: ttl, now: time.Now}, nil
}

// Save signs s into a new token.
func (t *Token) Save(ctx context.Context, s *Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := t.now()
	claims := stateClaims{
		State: s.State,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign state token: %w", err)
	}
	return ss, nil
}

// Update verifies token, applies fn to the embedded state and signs the
// result under the same session ID.
func (t *Token) Update(ctx context.Context, token string, fn TransitionFunc) (*Session, string, error) {
	s, err := t.load(token)
	if err != nil {
		return nil, "", err
	}
	next, err := fn(s.State)
	if err != nil {
		return nil, "", err
	}
	s.State = next
	out, err := t.Save(ctx, s)
	if err != nil {
		return nil, "", err
	}
	return s, out, nil
}

// load parses and verifies token. Every failure is reported as ErrNotFound
// with the parser error attached for logging.
func (t *Token) load(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrNotFound)
	}
	return &Session{ID: claims.ID, State: claims.State.Normalize()}, nil
}
