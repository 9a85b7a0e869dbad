package view

import (
	"net/http"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// PageData assembles the per-request template fields shared by every page:
// the CSRF token, the pending flash message and the current principal.
func PageData(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if csrf != nil {
		td.CSRFToken = csrf.EnsureToken(sess)
	}
	if sess != nil {
		td.Flash = sess.PopFlash()
	}
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		td.Principal = &p
	}
	return td
}

// RedirectWithFlash queues a flash message and redirects with 303.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
