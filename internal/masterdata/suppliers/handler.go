package suppliers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/rbac"
	internalShared "github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

// Handler serves the supplier CRUD pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *internalShared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds a supplier Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *internalShared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := internalShared.PageFromQuery(r.URL.Query(), shared.DefaultLimit)
	filters := shared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("q"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}

	suppliers, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list suppliers failed", slog.Any("error", err))
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/suppliers_list.html", map[string]any{
		"Suppliers":  suppliers,
		"Filters":    filters,
		"Pagination": internalShared.NewPagination(page, limit, total),
	}, http.StatusOK)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	supplier, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/supplier_detail.html", map[string]any{
		"Supplier": supplier,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Form":   Form{},
		"Errors": shared.FieldErrors{},
		"Action": "/suppliers",
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.renderFormError(w, r, form, "/suppliers", false, err)
		return
	}

	view.RedirectWithFlash(w, r, "/suppliers/"+strconv.FormatInt(created.ID, 10), "success", "Supplier added successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	supplier, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Form":   FormFromSupplier(supplier),
		"Errors": shared.FieldErrors{},
		"Action": "/suppliers/" + strconv.FormatInt(supplier.ID, 10) + "/edit",
		"IsEdit": true,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, form); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Supplier not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, form, "/suppliers/"+strconv.FormatInt(id, 10)+"/edit", true, err)
		return
	}

	view.RedirectWithFlash(w, r, "/suppliers/"+strconv.FormatInt(id, 10), "success", "Supplier updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		msg := "Failed to delete supplier"
		switch {
		case errors.Is(err, shared.ErrInUse):
			msg = "Supplier still has products and cannot be deleted"
		case errors.Is(err, shared.ErrNotFound):
			msg = "Supplier not found"
		default:
			h.logger.Error("delete supplier failed", slog.Any("error", err), slog.Int64("id", id))
		}
		view.RedirectWithFlash(w, r, "/suppliers/"+strconv.FormatInt(id, 10), "error", msg)
		return
	}

	view.RedirectWithFlash(w, r, "/suppliers", "success", "Supplier deleted successfully")
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Supplier, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return Supplier{}, false
	}
	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get supplier failed", slog.Any("error", err), slog.Int64("id", id))
		}
		http.Error(w, "Supplier not found", http.StatusNotFound)
		return Supplier{}, false
	}
	return supplier, true
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, form Form, action string, edit bool, err error) {
	fields := shared.FieldErrors{"general": "Could not save supplier"}
	if errors.Is(err, shared.ErrValidation) {
		fields = shared.AsFieldErrors(err)
	} else {
		h.logger.Error("save supplier failed", slog.Any("error", err))
	}
	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Form":   form,
		"Errors": fields,
		"Action": action,
		"IsEdit": edit,
	}, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, "Suppliers", data)
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) (Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return Form{}, false
	}
	return Form{
		CompanyName: r.PostFormValue("company_name"),
		Phone:       r.PostFormValue("phone"),
		Address:     r.PostFormValue("address"),
		TaxID:       r.PostFormValue("tax_id"),
	}, true
}
