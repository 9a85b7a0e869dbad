package view

import (
	"context"
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

func newSession(t *testing.T, r *http.Request) (*shared.Session, *http.Request) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "sid", time.Hour, false)
	sess, err := sm.Load(context.Background(), r)
	require.NoError(t, err)
	return sess, r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestPageDataPopsFlashAndSetsPrincipal(t *testing.T) {
	sess, req := newSession(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Sale added successfully"})
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 3, Username: "ana"}))

	td := PageData(req, shared.NewCSRFManager("k"), "Dashboard", nil)

	require.NotNil(t, td.Flash)
	assert.Equal(t, "Sale added successfully", td.Flash.Message)
	assert.Nil(t, sess.PopFlash())
	require.NotNil(t, td.Principal)
	assert.Equal(t, "ana", td.Principal.Username)
	assert.NotEmpty(t, td.CSRFToken)
	assert.Equal(t, "/dashboard", td.CurrentPath)
}

func TestRedirectWithFlash(t *testing.T) {
	sess, req := newSession(t, httptest.NewRequest(http.MethodPost, "/sales", nil))
	rec := httptest.NewRecorder()

	RedirectWithFlash(rec, req, "/dashboard", "error", "Invalid product")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
}
