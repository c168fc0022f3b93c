// Package auth issues and verifies admin sessions. It replaces the old
// demo localStorage flag with real credential issuance: a login checks
// configured admin credentials and returns a signed HS256 token; every
// admin request carries it as a bearer token.
package auth

import (
	"crypto/subtle"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Session is a verified authentication capability.
type Session interface {
	Authenticated() bool
	PrincipalID() string
	ExpiresAt() time.Time
}

// Anonymous is the session of an unauthenticated request.
type Anonymous struct{}

func (Anonymous) Authenticated() bool  { return false }
func (Anonymous) PrincipalID() string  { return "" }
func (Anonymous) ExpiresAt() time.Time { return time.Time{} }

type tokenSession struct {
	subject string
	expires time.Time
}

func (s tokenSession) Authenticated() bool  { return true }
func (s tokenSession) PrincipalID() string  { return s.subject }
func (s tokenSession) ExpiresAt() time.Time { return s.expires }

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a token for the given principal, valid for the manager's
// session TTL.
func (m *Manager) Issue(principalID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   principalID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, returning the session it
// represents. Expired or malformed tokens yield ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return tokenSession{subject: claims.Subject, expires: claims.ExpiresAt.Time}, nil
}

// CheckCredentials compares the presented credentials against the
// configured admin login in constant time.
func CheckCredentials(email, password, wantEmail, wantPassword string) bool {
	if wantEmail == "" || wantPassword == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(wantEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1
	return emailOK && passOK
}
