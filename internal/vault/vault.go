// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault holds released artifacts in memory behind signed, expiring
// download tokens. It is the releaser behind the HTTP server: the reference
// handed to the user is a download path carrying an HS256 JWT whose ID keys
// the stored payload.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

const (
	issuer = "pdfdesk"

	// MinKeyLength is the shortest signing key accepted.
	MinKeyLength = 32

	// DefaultPrefix is prepended to tokens to form download references.
	DefaultPrefix = "/downloads/"
)

var (
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrExpired is returned for tokens past their expiry.
	ErrExpired = errors.New("download link has expired")
	// ErrGone is returned when the token is valid but the payload was swept.
	ErrGone = errors.New("download is no longer available")
)

// Claims are the JWT claims of a download token.
type Claims struct {
	FileName string `json:"file_name"`
	jwt.RegisteredClaims
}

type entry struct {
	artifact types.PendingArtifact
	expires  time.Time
}

// Vault stores artifacts until their token expires. Safe for concurrent use.
type Vault struct {
	key    []byte
	ttl    time.Duration
	prefix string
	now    func() time.Time

	mu    sync.Mutex
	items map[string]entry
}

// Option configures a Vault.
type Option func(*Vault)

// WithPrefix changes the path prepended to tokens.
func WithPrefix(p string) Option {
	return func(v *Vault) { v.prefix = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// New creates a vault signing with key. Tokens live for ttl.
func New(key []byte, ttl time.Duration, opts ...Option) (*Vault, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("download signing key must be at least %d bytes, got %d", MinKeyLength, len(key))
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	v := &Vault{
		key:    key,
		ttl:    ttl,
		prefix: DefaultPrefix,
		now:    time.Now,
		items:  make(map[string]entry),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Release stores a and returns its download reference.
func (v *Vault) Release(ctx context.Context, a types.PendingArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := v.now()
	id := uuid.NewString()
	claims := Claims{
		FileName: a.FileName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("signing download token: %w", err)
	}

	v.mu.Lock()
	v.items[id] = entry{artifact: a, expires: now.Add(v.ttl)}
	v.mu.Unlock()
	return v.prefix + token, nil
}

// Redeem verifies token and returns the stored artifact. A token may be
// redeemed any number of times until it expires.
func (v *Vault) Redeem(token string) (types.PendingArtifact, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return types.PendingArtifact{}, ErrExpired
	case err != nil:
		return types.PendingArtifact{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.items[claims.ID]
	if !ok {
		return types.PendingArtifact{}, ErrGone
	}
	if !v.now().Before(e.expires) {
		delete(v.items, claims.ID)
		return types.PendingArtifact{}, ErrExpired
	}
	return e.artifact, nil
}

// Sweep drops expired payloads and returns how many were removed.
func (v *Vault) Sweep() int {
	now := v.now()
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for id, e := range v.items {
		if !now.Before(e.expires) {
			delete(v.items, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored payloads.
func (v *Vault) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}

// Run sweeps every interval until ctx is done.
func (v *Vault) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			v.Sweep()
		}
	}
}
