package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	users map[string]*models.User
	err   error
}

func (f *fakeFinder) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func newResolver(t *testing.T) (*Resolver, *TokenIssuer, *fakeFinder) {
	t.Helper()
	issuer := newIssuer(t, "resolver-secret")
	finder := &fakeFinder{users: map[string]*models.User{
		"alice": {ID: 1, Username: "alice"},
		"carol": {ID: 3, Username: "carol", Disabled: true},
	}}
	return NewResolver(issuer, finder, logging.Nop{}), issuer, finder
}

func mustIssue(t *testing.T, i *TokenIssuer, sub string, p Purpose, ttl time.Duration) string {
	t.Helper()
	tok, err := i.Issue(sub, p, ttl)
	require.NoError(t, err)
	return tok
}

func TestResolve_States(t *testing.T) {
	r, issuer, _ := newResolver(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		token      string
		wantKind   error
		wantDetail string
		wantUserID int64
	}{
		{name: "absent", token: "", wantKind: common.ErrorUnauthenticated, wantDetail: "Not authenticated"},
		{name: "garbage", token: "abc", wantKind: common.ErrorUnauthenticated, wantDetail: "Could not validate credentials"},
		{name: "expired", token: mustIssue(t, issuer, "alice", PurposeLogin, -time.Minute), wantKind: common.ErrorUnauthenticated},
		{name: "wrong purpose", token: mustIssue(t, issuer, "alice", PurposeResetPassword, time.Hour), wantKind: common.ErrorUnauthenticated},
		{name: "unknown subject", token: mustIssue(t, issuer, "mallory", PurposeLogin, time.Hour), wantKind: common.ErrorUnauthenticated},
		{name: "disabled", token: mustIssue(t, issuer, "carol", PurposeLogin, time.Hour), wantKind: common.ErrorInactive, wantDetail: "Inactive user"},
		{name: "ok", token: mustIssue(t, issuer, "alice", PurposeLogin, time.Hour), wantUserID: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := r.Resolve(ctx, tt.token)
			if tt.wantKind != nil {
				require.ErrorIs(t, err, tt.wantKind)
				assert.Nil(t, u)
				if tt.wantDetail != "" {
					assert.Equal(t, tt.wantDetail, common.Detail(err, ""))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, u.ID)
		})
	}
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	r, issuer, finder := newResolver(t)
	finder.err = errors.New("db down")

	_, err := r.Resolve(context.Background(), mustIssue(t, issuer, "alice", PurposeLogin, time.Hour))
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorUnauthenticated))
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(req), "cookie wins over header")

	basic := httptest.NewRequest(http.MethodGet, "/", nil)
	basic.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	assert.Empty(t, TokenFromRequest(basic))
}

func TestResolveRequestAndOptional(t *testing.T) {
	r, issuer, finder := newResolver(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: mustIssue(t, issuer, "alice", PurposeLogin, time.Hour)})

	u, err := r.ResolveRequest(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, int64(1), r.ResolveOptional(req).ID)

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = r.ResolveRequest(anon)
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)
	assert.Nil(t, r.ResolveOptional(anon))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "forged"})
	assert.Nil(t, r.ResolveOptional(bad))

	finder.err = errors.New("db down")
	assert.Nil(t, r.ResolveOptional(req), "store errors collapse to anonymous")
}
