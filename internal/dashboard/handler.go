// Package dashboard serves the landing page and the per-role dashboard.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/sales"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

const recentSalesLimit = 10

// ProductSource lists products for the sale form and the low-stock report.
type ProductSource interface {
	All(ctx context.Context) ([]products.Product, error)
	LowStock(ctx context.Context) ([]products.Product, error)
}

// SupplierSource lists suppliers.
type SupplierSource interface {
	All(ctx context.Context) ([]suppliers.Supplier, error)
}

// SalesSource returns the most recent sales.
type SalesSource interface {
	RecentSales(ctx context.Context, limit int) ([]sales.Sale, error)
}

// Handler renders the landing page and the role-dependent dashboard.
type Handler struct {
	logger    *slog.Logger
	products  ProductSource
	suppliers SupplierSource
	sales     SalesSource
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds a dashboard Handler.
func NewHandler(logger *slog.Logger, products ProductSource, suppliers SupplierSource, sales SalesSource, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		products:  products,
		suppliers: suppliers,
		sales:     sales,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
	}
}

// MountRoutes registers the landing page and the dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Landing)
	r.With(h.rbac.RequireUser).Get("/dashboard", h.Dashboard)
}

// Landing shows the public page, or forwards a logged in user to the dashboard.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/landing.html", "Stockdesk", nil)
}

type dashboardData struct {
	IsAdmin     bool
	Products    []products.Product
	LowStock    []products.Product
	Suppliers   []suppliers.Supplier
	RecentSales []sales.Sale
}

// Dashboard loads the sale form options and low-stock report for every
// user, plus the catalogue and recent sales for administrators.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	data := dashboardData{IsAdmin: principal.IsAdmin}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Products, err = h.products.All(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.LowStock, err = h.products.LowStock(ctx)
		return err
	})
	if principal.IsAdmin {
		g.Go(func() (err error) {
			data.Suppliers, err = h.suppliers.All(ctx)
			return err
		})
		g.Go(func() (err error) {
			data.RecentSales, err = h.sales.RecentSales(ctx, recentSalesLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/dashboard.html", "Dashboard", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := h.templates.Render(w, name, view.PageData(r, h.csrf, title, data)); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}
