package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mdshared "github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

const msgInvalidLogin = "Invalid username or password"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      mdshared.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	data := view.PageData(r, h.csrfManager, "Log in", loginForm{})
	if err := h.templates.Render(w, "pages/login.html", data); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := mdshared.Validate(h.validator, form); err != nil {
		h.loginFailed(w, r, form)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate", slog.Any("error", err))
		}
		h.loginFailed(w, r, form)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.sessionManager.Renew(sess)
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.logger.Info("user logged in", slog.String("username", user.Username))
	view.RedirectWithFlash(w, r, "/dashboard", "success", "Login successful")
}

func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, form loginForm) {
	form.Password = ""
	data := view.PageData(r, h.csrfManager, "Log in", form)
	data.Flash = &shared.FlashMessage{Kind: "error", Message: msgInvalidLogin}
	if err := h.templates.RenderStatus(w, http.StatusBadRequest, "pages/login.html", data); err != nil {
		h.logger.Error("render login invalid", slog.Any("error", err))
	}
}

// handleLogout drops the user from the session and rotates its id so the
// old cookie value is dead server side. The fresh session carries the flash.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		sess.SetUser("")
		sess.Delete(shared.CSRFSessionKey)
		h.sessionManager.Renew(sess)
	}
	view.RedirectWithFlash(w, r, "/", "success", "Logged out successfully")
}
