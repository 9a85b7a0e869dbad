package sales

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

const defaultPageSize = 25

// Handler manages sales endpoints.
type Handler struct {
	logger    *slog.Logger
	processor *Processor
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(
	logger *slog.Logger,
	processor *Processor,
	templates *view.Engine,
	csrf *shared.CSRFManager,
	rbac rbac.Middleware,
) *Handler {
	return &Handler{
		logger:    logger,
		processor: processor,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
	}
}

// MountRoutes registers the HTML sales routes under /sales.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireUser)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/export.csv", h.export)
}

// MountAPIRoutes registers the JSON sales routes under /api/sales.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Use(h.rbac.RequireUser)
	r.Post("/", h.createJSON)
}

// saleFlash maps a processing result to the flash shown on the dashboard.
func saleFlash(err error) (kind, message string) {
	switch {
	case err == nil:
		return "success", "Sale added successfully"
	case errors.Is(err, ErrInvalidProduct):
		return "error", "Invalid product"
	case errors.Is(err, ErrInsufficientStock):
		return "error", "Insufficient stock"
	case errors.Is(err, ErrInvalidQuantity):
		return "error", "Invalid quantity"
	default:
		return "error", "The sale could not be saved, please try again"
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	productID, err := strconv.ParseInt(r.PostFormValue("product"), 10, 64)
	if err != nil {
		redirectSale(w, r, ErrInvalidProduct)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		redirectSale(w, r, ErrInvalidQuantity)
		return
	}

	_, err = h.processor.ProcessSale(r.Context(), productID, quantity)
	redirectSale(w, r, err)
}

func redirectSale(w http.ResponseWriter, r *http.Request, err error) {
	kind, message := saleFlash(err)
	view.RedirectWithFlash(w, r, "/dashboard", kind, message)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageFromQuery(r.URL.Query(), defaultPageSize)
	pagination := shared.NewPagination(page, limit, 0)
	sales, total, err := h.processor.ListSales(r.Context(), limit, pagination.Offset())
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		http.Error(w, "Failed to load sales", http.StatusInternalServerError)
		return
	}

	viewData := view.PageData(r, h.csrf, "Sales", map[string]any{
		"Sales":      sales,
		"Pagination": shared.NewPagination(page, limit, total),
	})
	if err := h.templates.Render(w, "pages/sales_list.html", viewData); err != nil {
		h.logger.Error("render sales list", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

var csvHeader = []string{"id", "sale_date", "product_name", "supplier_name", "quantity", "selling_price", "total_price", "cost_price", "total_profit"}

// csvText quotes values a spreadsheet would evaluate as a formula.
func csvText(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	exportID := uuid.NewString()
	filename := "sales-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Export-ID", exportID)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		h.logger.Error("export sales header", slog.String("export_id", exportID), slog.Any("error", err))
		return
	}
	rows := 0
	err := h.processor.EachSale(r.Context(), func(s Sale) error {
		rows++
		return cw.Write([]string{
			strconv.FormatInt(s.ID, 10),
			s.SaleDate.Format("2006-01-02"),
			csvText(s.ProductName),
			csvText(s.SupplierName),
			strconv.Itoa(s.Quantity),
			s.SellingPrice.StringFixed(2),
			s.TotalPrice.StringFixed(2),
			s.CostPrice.StringFixed(2),
			s.TotalProfit.StringFixed(2),
		})
	})
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		h.logger.Error("export sales", slog.String("export_id", exportID), slog.Any("error", err))
		return
	}
	h.logger.Info("sales exported", slog.String("export_id", exportID), slog.Int("rows", rows))
}
