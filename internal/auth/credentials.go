// Package auth keeps the session credential. The credential is opaque to the
// rest of the program and is sent to the API exactly as stored.
package auth

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/idilsaglam/taskmgr/internal/store/jsonstore"
)

const credFileName = "credentials.json"

// Token sources.
const (
	SourceEnv  = "env"
	SourceFile = "file"
)

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

// Store reads and writes the credential under Dir. Override, when non-empty,
// wins over the file (it comes from TASKMGR_TOKEN or the config file).
type Store struct {
	Dir      string
	Override string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir, override string) *Store {
	return &Store{Dir: dir, Override: override}
}

// Path is the credentials file location.
func (s *Store) Path() string { return filepath.Join(s.Dir, credFileName) }

// Get returns the current credential, or nil when not logged in.
func (s *Store) Get() (*TokenInfo, error) {
	// 1) env override
	if env := strings.TrimSpace(s.Override); env != "" {
		return &TokenInfo{Token: env, Source: SourceEnv, ExpiresAt: Expiry(env)}, nil
	}

	// 2) file
	var ti TokenInfo
	found, err := jsonstore.Read(s.Path(), &ti)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	if !found || strings.TrimSpace(ti.Token) == "" {
		return nil, nil // not logged in
	}
	return &ti, nil
}

// Set stores token. When expires is nil and the token is a JWT carrying an
// exp claim, that expiry is recorded.
func (s *Store) Set(token string, expires *time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	if expires == nil {
		expires = Expiry(token)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    SourceFile,
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	// owner-only
	return jsonstore.Write(s.Path(), ti, 0o600)
}

// Delete forgets the stored credential.
func (s *Store) Delete() error {
	return jsonstore.Remove(s.Path())
}

// Claims decodes a JWT payload without verifying its signature. Opaque
// tokens return an error.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(stripBearer(token), claims); err != nil {
		return nil, fmt.Errorf("not a JWT: %w", err)
	}
	return claims, nil
}

// Expiry returns the exp claim of a JWT, or nil.
func Expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
