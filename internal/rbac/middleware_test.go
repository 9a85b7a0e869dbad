package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/shared"
)

type stubUsers map[int64]shared.Principal

func (s stubUsers) LoadPrincipal(_ context.Context, id int64) (shared.Principal, error) {
	if id == 500 {
		return shared.Principal{}, errors.New("db down")
	}
	p, ok := s[id]
	if !ok {
		return shared.Principal{}, shared.ErrNotFound
	}
	return p, nil
}

var users = stubUsers{
	1: {UserID: 1, Username: "admin", IsAdmin: true},
	2: {UserID: 2, Username: "clerk"},
}

func requestAs(t *testing.T, path, userID string) (*http.Request, *shared.Session) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "sid", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func serve(mw Middleware, guard func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *shared.Principal) {
	var seen *shared.Principal
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := shared.PrincipalFromContext(r.Context()); ok {
			seen = &p
		}
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	mw.LoadPrincipal(guard(final)).ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	req, _ := requestAs(t, "/dashboard", "")
	rec, _ := serve(Middleware{Users: users}, Middleware{Users: users}.RequireUser, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRequireUserAPIAnswers401(t *testing.T) {
	req, _ := requestAs(t, "/api/sales", "")
	mw := Middleware{Users: users}
	rec, _ := serve(mw, mw.RequireUser, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRequireUserPassesPrincipal(t *testing.T) {
	req, _ := requestAs(t, "/dashboard", "2")
	mw := Middleware{Users: users}
	rec, seen := serve(mw, mw.RequireUser, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "clerk", seen.Username)
}

func TestRequireAdmin(t *testing.T) {
	mw := Middleware{Users: users}

	req, _ := requestAs(t, "/users", "2")
	rec, _ := serve(mw, mw.RequireAdmin, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, _ = requestAs(t, "/users", "1")
	rec, _ = serve(mw, mw.RequireAdmin, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoadPrincipalClearsDeletedUser(t *testing.T) {
	req, sess := requestAs(t, "/dashboard", "42")
	mw := Middleware{Users: users}
	rec, _ := serve(mw, mw.RequireUser, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, sess.User())
}

func TestLoadPrincipalStoreFailure(t *testing.T) {
	req, _ := requestAs(t, "/dashboard", "500")
	mw := Middleware{Users: users}
	rec, _ := serve(mw, mw.RequireUser, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
