package testing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	stdtesting "testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// Sessions starts a miniredis instance and returns a session manager bound to it.
func Sessions(t stdtesting.TB) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "stockdesk_test", time.Hour, false)
}

// Request builds a request with a fresh session in its context. Form values
// are sent url-encoded; a non-nil principal is attached as the logged in user.
func Request(t stdtesting.TB, method, target string, form url.Values, principal *shared.Principal) (*http.Request, *shared.Session) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	sess, err := Sessions(t).Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	if principal != nil {
		ctx = shared.ContextWithPrincipal(ctx, *principal)
	}
	return req.WithContext(ctx), sess
}

// WithURLParams attaches chi route parameters to the request.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
