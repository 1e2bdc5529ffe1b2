// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestVault(t *testing.T) (*Vault, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	v, err := New(testKey, 10*time.Minute, WithClock(c.now))
	require.NoError(t, err)
	return v, c
}

func token(t *testing.T, ref string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(ref, DefaultPrefix), ref)
	return strings.TrimPrefix(ref, DefaultPrefix)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New([]byte("short"), time.Minute)
	assert.Error(t, err)
}

func TestReleaseAndRedeem(t *testing.T) {
	v, c := newTestVault(t)
	a := types.PendingArtifact{FileName: "merged_document_1.pdf", Payload: []byte("%PDF"), ToolID: types.ToolMerge}

	ref, err := v.Release(context.Background(), a)
	require.NoError(t, err)

	c.advance(9 * time.Minute)
	got, err := v.Redeem(token(t, ref))
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, err = v.Redeem(token(t, ref))
	require.NoError(t, err, "redeemable more than once")
	assert.Equal(t, a.FileName, got.FileName)
}

func TestRedeemExpired(t *testing.T) {
	v, c := newTestVault(t)
	ref, err := v.Release(context.Background(), types.PendingArtifact{FileName: "a.pdf"})
	require.NoError(t, err)

	c.advance(11 * time.Minute)
	_, err = v.Redeem(token(t, ref))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRedeemTampered(t *testing.T) {
	v, _ := newTestVault(t)
	ref, err := v.Release(context.Background(), types.PendingArtifact{FileName: "a.pdf"})
	require.NoError(t, err)
	tok := token(t, ref)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"bad signature", tok[:len(tok)-2] + "xx"},
		{"other key", signWith(t, []byte("ffffffffffffffffffffffffffffffff"))},
		{"alg none", noneToken(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Redeem(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func signWith(t *testing.T, key []byte) string {
	t.Helper()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID: "x", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
	}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func noneToken(t *testing.T) string {
	t.Helper()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: issuer}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func TestRedeemSwept(t *testing.T) {
	v, _ := newTestVault(t)
	ref, err := v.Release(context.Background(), types.PendingArtifact{FileName: "a.pdf"})
	require.NoError(t, err)

	v.mu.Lock()
	v.items = map[string]entry{}
	v.mu.Unlock()

	_, err = v.Redeem(token(t, ref))
	assert.ErrorIs(t, err, ErrGone)
}

func TestSweep(t *testing.T) {
	v, c := newTestVault(t)
	_, err := v.Release(context.Background(), types.PendingArtifact{FileName: "old.pdf"})
	require.NoError(t, err)
	c.advance(5 * time.Minute)
	_, err = v.Release(context.Background(), types.PendingArtifact{FileName: "new.pdf"})
	require.NoError(t, err)

	c.advance(6 * time.Minute)
	assert.Equal(t, 1, v.Sweep())
	assert.Equal(t, 1, v.Len())
}
