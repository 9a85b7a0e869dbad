package analytichttp

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stockdesk/stockdesk/internal/analytics"
	"github.com/stockdesk/stockdesk/internal/analytics/svg"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

const requestTimeout = 2 * time.Second

// AnalyticsService defines the chart data contract used by the handler.
type AnalyticsService interface {
	SupplierSummaries(ctx context.Context) ([]analytics.SupplierSummary, error)
	RevenueTrend(ctx context.Context, days int) ([]analytics.DailyRevenue, error)
}

// Handler serves the server-rendered chart pages.
type Handler struct {
	logger    *slog.Logger
	service   AnalyticsService
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	limit     int
}

// NewHandler constructs the analytics HTTP handler. limit caps chart
// requests per user per minute.
func NewHandler(logger *slog.Logger, service AnalyticsService, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, limit int) *Handler {
	if limit <= 0 {
		limit = 30
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, limit: limit}
}

type chartSet struct {
	units   bool
	profit  bool
	revenue bool
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Charts", chartSet{units: true, profit: true, revenue: true})
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Units sold", chartSet{units: true})
}

func (h *Handler) handleProfits(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Profit", chartSet{profit: true})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, title string, set chartSet) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.service.SupplierSummaries(ctx)
	if err != nil {
		h.fail(w, "load supplier summaries", err)
		return
	}

	data := map[string]any{"Summary": summary, "TrendDays": analytics.TrendWindowDays}
	labels := make([]string, len(summary))
	units := make([]float64, len(summary))
	profits := make([]float64, len(summary))
	for i, s := range summary {
		labels[i] = s.SupplierName
		units[i] = float64(s.UnitsSold)
		profits[i] = s.Profit.InexactFloat64()
	}

	if len(summary) > 0 {
		if set.units {
			chart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, units, labels, svg.BarOpts{
				Title:       "Units sold by supplier",
				Description: "Total quantity sold per supplier",
				ValueFormat: func(v float64) string { return strconv.Itoa(int(v)) },
			})
			if err != nil {
				h.fail(w, "render units chart", err)
				return
			}
			data["UnitsChart"] = chart
		}
		if set.profit {
			chart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, profits, labels, svg.BarOpts{
				Title:       "Profit by supplier",
				Description: "Total profit per supplier",
				Color:       "#2f9e44",
				ValueFormat: func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
			})
			if err != nil {
				h.fail(w, "render profit chart", err)
				return
			}
			data["ProfitChart"] = chart
		}
	}

	if set.revenue {
		chart, err := h.revenueChart(ctx)
		if err != nil {
			h.fail(w, "render revenue chart", err)
			return
		}
		data["RevenueChart"] = chart
	}

	page := view.PageData(r, h.csrf, title, data)
	if err := h.templates.Render(w, "pages/charts.html", page); err != nil {
		h.logger.Error("render charts", slog.Any("error", err))
	}
}

func (h *Handler) revenueChart(ctx context.Context) (template.HTML, error) {
	trend, err := h.service.RevenueTrend(ctx, analytics.TrendWindowDays)
	if err != nil || len(trend) == 0 {
		return "", err
	}
	series := make([]float64, len(trend))
	labels := make([]string, len(trend))
	for i, p := range trend {
		series[i] = p.Revenue.InexactFloat64()
		labels[i] = p.Day.Format("02 Jan")
	}
	return svg.Line(svg.DefaultWidth, svg.DefaultHeight, series, labels, svg.LineOpts{
		Title:       "Daily revenue",
		Description: "Sum of sale totals per day",
		ShowDots:    true,
		LabelEvery:  5,
	})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, "Failed to load charts", http.StatusInternalServerError)
}
