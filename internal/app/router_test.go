package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/auth"
	"github.com/stockdesk/stockdesk/internal/dashboard"
	"github.com/stockdesk/stockdesk/internal/observability"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
	testkit "github.com/stockdesk/stockdesk/testing"
)

type noUsers struct{}

func (noUsers) FindByUsername(context.Context, string) (auth.User, error) {
	return auth.User{}, shared.ErrNotFound
}
func (noUsers) CreateSession(context.Context, string, int64, time.Time, string, string) error {
	return nil
}
func (noUsers) DeleteSession(context.Context, string) error { return nil }

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates, err := view.NewEngine()
	require.NoError(t, err)
	sessions := testkit.Sessions(t)
	csrf := shared.NewCSRFManager("csrf")
	mw := rbac.Middleware{Logger: logger}
	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		SessionManager:   sessions,
		CSRFManager:      csrf,
		RBACMiddleware:   mw,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(noUsers{}), templates, sessions, csrf),
		DashboardHandler: dashboard.NewHandler(logger, nil, nil, nil, templates, csrf, mw),
		Metrics:          observability.NewMetrics(),
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStaticAssetsCached(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestLoginPageSetsSessionAndSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "stockdesk_test=")
	assert.Regexp(t, csrfInput, rec.Body.String())
}

func TestDashboardRequiresLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=a&password=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostWithSessionTokenPassesCSRF(t *testing.T) {
	router := newTestRouter(t)

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	match := csrfInput.FindStringSubmatch(getRec.Body.String())
	require.Len(t, match, 2)
	cookies := getRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{"username": {"ghost"}, "password": {"whatever"}, "csrf_token": {match[1]}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockdesk_http_requests_total{code="200",route="/auth/login"} 1`)
}
