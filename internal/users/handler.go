package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mdshared "github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers user routes. All of them are admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireUser, h.rbac.RequireAdmin)
	r.Get("/", h.listUsers)
	r.Get("/new", h.showCreateUserForm)
	r.Post("/", h.createUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users_list.html", map[string]any{"Users": users}, http.StatusOK)
}

func (h *Handler) showCreateUserForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/user_form.html", map[string]any{
		"Form":   Form{},
		"Errors": mdshared.FieldErrors{},
	}, http.StatusOK)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := Form{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		IsAdmin:  r.PostFormValue("is_admin") != "",
	}

	created, err := h.service.CreateUser(r.Context(), form)
	if err != nil {
		fields := mdshared.FieldErrors{"general": "Could not create user"}
		if errors.Is(err, mdshared.ErrValidation) {
			fields = mdshared.AsFieldErrors(err)
		} else {
			h.logger.Error("create user failed", slog.Any("error", err))
		}
		form.Password = ""
		h.render(w, r, "pages/user_form.html", map[string]any{"Form": form, "Errors": fields}, http.StatusBadRequest)
		return
	}

	h.logger.Info("user created", slog.String("username", created.Username), slog.Bool("is_admin", created.IsAdmin))
	view.RedirectWithFlash(w, r, "/users", "success", "User created successfully")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, "Users", data)
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
