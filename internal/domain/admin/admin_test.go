package admin

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[string]*Account)}
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.Username] = &cp
	return nil
}

func (r *memRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.LastLogin = &at
			a.LoginCount++
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewService(repo, Config{Secret: "test-secret", TokenTTL: time.Hour, Cost: bcrypt.MinCost}, nil)
	_, err := svc.EnsureAccount(context.Background(), "Admin", "s3cret-pass", "admin@example.dev")
	require.NoError(t, err)
	return svc, repo
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)

	first := repo.accounts["admin"]
	require.NotNil(t, first)
	assert.True(t, strings.HasPrefix(first.ID, "adm_"))
	assert.NotEqual(t, "s3cret-pass", first.PasswordHash)

	again, err := svc.EnsureAccount(context.Background(), "admin", "other", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, repo.accounts, 1)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, repo := newTestService(t)

	tok, err := svc.Login(context.Background(), Credentials{Username: "ADMIN", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, 3600, tok.ExpiresIn)
	assert.Equal(t, 1, tok.Admin.LoginCount)
	assert.Equal(t, 1, repo.accounts["admin"].LoginCount)

	claims, err := svc.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, tok.Admin.ID, claims.Subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, Credentials{Username: "admin", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, Credentials{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.accounts["admin"].Active = false
	_, err = svc.Login(ctx, Credentials{Username: "admin", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInactive)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc, _ := newTestService(t)

	other := NewService(newMemRepo(), Config{Secret: "different"}, nil)
	foreign, err := other.issue(&Account{ID: "adm_x", Username: "admin"}, time.Now())
	require.NoError(t, err)

	expired, err := svc.issue(&Account{ID: "adm_x", Username: "admin"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	none, err := jwtgo.NewWithClaims(jwtgo.SigningMethodNone, Claims{
		Username:         "admin",
		RegisteredClaims: jwtgo.RegisteredClaims{Issuer: issuer, Subject: "adm_x"},
	}).SignedString(jwtgo.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       expired,
		"unsigned none": none,
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
