package sales

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
	testkit "github.com/stockdesk/stockdesk/testing"
)

var clerk = &shared.Principal{UserID: 2, Username: "clerk"}

func newHandler(t *testing.T, repo *memoryRepo) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, newProcessor(repo, ProcessorConfig{}), templates, shared.NewCSRFManager("k"), rbac.Middleware{})
}

func TestCreateFormFlashes(t *testing.T) {
	cases := []struct {
		name     string
		product  string
		quantity string
		kind     string
		message  string
	}{
		{"success", "1", "4", "success", "Sale added successfully"},
		{"unknown product", "9999", "1", "error", "Invalid product"},
		{"malformed product", "abc", "1", "error", "Invalid product"},
		{"too many", "1", "11", "error", "Insufficient stock"},
		{"zero", "1", "0", "error", "Invalid quantity"},
		{"malformed quantity", "1", "two", "error", "Invalid quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(t, newMemoryRepo(hammer(10)))
			form := url.Values{"product": {tc.product}, "quantity": {tc.quantity}}
			req, sess := testkit.Request(t, http.MethodPost, "/sales", form, clerk)
			rec := httptest.NewRecorder()

			h.create(rec, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
			flash := sess.PopFlash()
			require.NotNil(t, flash)
			assert.Equal(t, tc.kind, flash.Kind)
			assert.Equal(t, tc.message, flash.Message)
		})
	}
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := testkit.Request(t, http.MethodPost, "/api/sales", nil, clerk)
	req.Body = io.NopCloser(strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.createJSON(rec, req)
	return rec
}

func TestCreateJSON(t *testing.T) {
	h := newHandler(t, newMemoryRepo(hammer(10)))

	rec := postJSON(t, h, `{"product_id": 1, "quantity": 4}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "80.00", body["total_price"])
	assert.Equal(t, "48.00", body["cost_price"])
	assert.Equal(t, "32.00", body["total_profit"])
	assert.Equal(t, "Acme Tools", body["supplier_name"])
	assert.Equal(t, "2026-03-14", body["sale_date"])
}

func TestCreateJSONErrorStatuses(t *testing.T) {
	cases := map[string]struct {
		body   string
		status int
		title  string
	}{
		"unknown product":    {`{"product_id": 9999, "quantity": 1}`, http.StatusNotFound, "Invalid Product"},
		"zero product id":    {`{"product_id": 0, "quantity": 1}`, http.StatusNotFound, "Invalid Product"},
		"missing product id": {`{"quantity": 1}`, http.StatusNotFound, "Invalid Product"},
		"insufficient stock": {`{"product_id": 1, "quantity": 11}`, http.StatusConflict, "Insufficient Stock"},
		"zero quantity":      {`{"product_id": 1, "quantity": 0}`, http.StatusBadRequest, "Invalid Quantity"},
		"missing quantity":   {`{"product_id": 1}`, http.StatusBadRequest, "Invalid Request"},
		"unknown field":      {`{"product_id": 1, "quantity": 1, "price": 1}`, http.StatusBadRequest, "Invalid Request"},
		"not json":           {`product=1`, http.StatusBadRequest, "Invalid Request"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHandler(t, newMemoryRepo(hammer(10)))
			rec := postJSON(t, h, tc.body)

			assert.Equal(t, tc.status, rec.Code)
			var problem httpx.ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.title, problem.Title)
		})
	}
}

func TestCreateJSONPersistenceIs500(t *testing.T) {
	repo := newMemoryRepo(hammer(10))
	repo.failInsert = io.ErrUnexpectedEOF
	h := newHandler(t, repo)

	rec := postJSON(t, h, `{"product_id": 1, "quantity": 1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unexpected EOF")
}

func TestListAndExport(t *testing.T) {
	repo := newMemoryRepo(hammer(10))
	h := newHandler(t, repo)
	_, err := h.processor.ProcessSale(t.Context(), 1, 2)
	require.NoError(t, err)
	_, err = h.processor.ProcessSale(t.Context(), 1, 3)
	require.NoError(t, err)

	req, _ := testkit.Request(t, http.MethodGet, "/sales", nil, clerk)
	rec := httptest.NewRecorder()
	h.list(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hammer")
	assert.Contains(t, rec.Body.String(), "60.00")

	req, _ = testkit.Request(t, http.MethodGet, "/sales/export.csv", nil, clerk)
	rec = httptest.NewRecorder()
	h.export(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Export-ID"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2", "2026-03-14", "Hammer", "Acme Tools", "3", "20.00", "60.00", "36.00", "24.00"}, records[1])
}

func TestExportQuotesFormulaCells(t *testing.T) {
	product := hammer(10)
	product.Name = "=HYPERLINK(\"http://x\")"
	product.SupplierName = "@Acme"
	h := newHandler(t, newMemoryRepo(product))
	_, err := h.processor.ProcessSale(t.Context(), 1, 1)
	require.NoError(t, err)

	req, _ := testkit.Request(t, http.MethodGet, "/sales/export.csv", nil, clerk)
	rec := httptest.NewRecorder()
	h.export(rec, req)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "'=HYPERLINK(\"http://x\")", records[1][2])
	assert.Equal(t, "'@Acme", records[1][3])
}

func TestCSVText(t *testing.T) {
	cases := map[string]string{
		"Hammer":   "Hammer",
		"":         "",
		"+1 555":   "'+1 555",
		"-10%":     "'-10%",
		"Acme=Co":  "Acme=Co",
		"\tindent": "'\tindent",
	}
	for in, want := range cases {
		assert.Equal(t, want, csvText(in), in)
	}
}
