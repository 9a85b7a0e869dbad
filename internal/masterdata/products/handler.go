package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/rbac"
	internalShared "github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

// Handler serves the product CRUD pages.
type Handler struct {
	logger          *slog.Logger
	service         *Service
	supplierService *suppliers.Service
	templates       *view.Engine
	csrf            *internalShared.CSRFManager
	rbac            rbac.Middleware
}

// NewHandler builds a product Handler.
func NewHandler(
	logger *slog.Logger,
	service *Service,
	supplierService *suppliers.Service,
	templates *view.Engine,
	csrf *internalShared.CSRFManager,
	rbac rbac.Middleware,
) *Handler {
	return &Handler{
		logger:          logger,
		service:         service,
		supplierService: supplierService,
		templates:       templates,
		csrf:            csrf,
		rbac:            rbac,
	}
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

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/products_list.html", map[string]any{
		"Products":   products,
		"Filters":    filters,
		"Pagination": internalShared.NewPagination(page, limit, total),
	}, http.StatusOK)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	product, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/product_detail.html", map[string]any{
		"Product": product,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, Form{Stock: "0", Quantity: "0"}, shared.FieldErrors{}, "/products", false, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.renderFormError(w, r, form, "/products", false, err)
		return
	}

	view.RedirectWithFlash(w, r, "/products/"+strconv.FormatInt(created.ID, 10), "success", "Product added successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	product, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, FormFromProduct(product), shared.FieldErrors{}, "/products/"+strconv.FormatInt(product.ID, 10)+"/edit", true, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, form); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, form, "/products/"+strconv.FormatInt(id, 10)+"/edit", true, err)
		return
	}

	view.RedirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "success", "Product updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("delete product failed", slog.Any("error", err), slog.Int64("id", id))
		}
		view.RedirectWithFlash(w, r, "/products", "error", "Failed to delete product")
		return
	}

	view.RedirectWithFlash(w, r, "/products", "success", "Product deleted successfully")
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Product, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return Product{}, false
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get product failed", slog.Any("error", err), slog.Int64("id", id))
		}
		http.Error(w, "Product not found", http.StatusNotFound)
		return Product{}, false
	}
	return product, true
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, form Form, action string, edit bool, err error) {
	fields := shared.FieldErrors{"general": "Could not save product"}
	if errors.Is(err, shared.ErrValidation) {
		fields = shared.AsFieldErrors(err)
	} else {
		h.logger.Error("save product failed", slog.Any("error", err))
	}
	h.renderForm(w, r, form, fields, action, edit, http.StatusBadRequest)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form Form, errs shared.FieldErrors, action string, edit bool, status int) {
	sups, err := h.supplierService.All(r.Context())
	if err != nil {
		h.logger.Error("list suppliers failed", slog.Any("error", err))
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/product_form.html", map[string]any{
		"Form":      form,
		"Errors":    errs,
		"Suppliers": sups,
		"Action":    action,
		"IsEdit":    edit,
	}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, "Products", data)
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
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		CostPrice:   r.PostFormValue("cost_price"),
		SalePrice:   r.PostFormValue("sale_price"),
		Stock:       r.PostFormValue("stock"),
		Quantity:    r.PostFormValue("quantity"),
		SupplierID:  r.PostFormValue("supplier_id"),
	}, true
}
