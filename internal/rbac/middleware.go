package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// PrincipalLoader resolves the principal for a stored user id.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID int64) (shared.Principal, error)
}

// Middleware wires authentication and authorization helpers for HTTP handlers.
type Middleware struct {
	Users  PrincipalLoader
	Logger *slog.Logger
}

// LoadPrincipal resolves the session user into a Principal on the request
// context. Sessions that reference a deleted user are cleared.
func (m Middleware) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok || m.Users == nil {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := m.Users.LoadPrincipal(r.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.SetUser("")
				}
				next.ServeHTTP(w, r)
				return
			}
			m.logError("rbac load principal", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireUser sends anonymous visitors to the login page.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			m.deny(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows only administrators through.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			m.deny(w, r)
			return
		}
		if !p.IsAdmin {
			if isAPI(r) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "administrator role required")
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
