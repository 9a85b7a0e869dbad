package sales

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

type createSaleRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity" validate:"required"`
}

type saleResponse struct {
	ID           int64     `json:"id"`
	SaleDate     string    `json:"sale_date"`
	ProductName  string    `json:"product_name"`
	SupplierName string    `json:"supplier_name"`
	Quantity     int       `json:"quantity"`
	SellingPrice string    `json:"selling_price"`
	TotalPrice   string    `json:"total_price"`
	CostPrice    string    `json:"cost_price"`
	TotalProfit  string    `json:"total_profit"`
	CreatedAt    time.Time `json:"created_at"`
}

func newSaleResponse(s Sale) saleResponse {
	return saleResponse{
		ID:           s.ID,
		SaleDate:     s.SaleDate.Format("2006-01-02"),
		ProductName:  s.ProductName,
		SupplierName: s.SupplierName,
		Quantity:     s.Quantity,
		SellingPrice: s.SellingPrice.StringFixed(2),
		TotalPrice:   s.TotalPrice.StringFixed(2),
		CostPrice:    s.CostPrice.StringFixed(2),
		TotalProfit:  s.TotalProfit.StringFixed(2),
		CreatedAt:    s.CreatedAt,
	}
}

var (
	apiValidator = validator.New()

	saleErrorMappings = []httpx.Mapping{
		{Err: ErrInvalidProduct, Status: http.StatusNotFound, Title: "Invalid Product"},
		{Err: ErrInsufficientStock, Status: http.StatusConflict, Title: "Insufficient Stock"},
		{Err: ErrInvalidQuantity, Status: http.StatusBadRequest, Title: "Invalid Quantity"},
	}
)

func (h *Handler) createJSON(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON with product_id and quantity")
		return
	}
	if err := apiValidator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	sale, err := h.processor.ProcessSale(r.Context(), req.ProductID, *req.Quantity)
	if err != nil {
		httpx.RespondError(w, err, saleErrorMappings...)
		return
	}
	httpx.JSON(w, http.StatusCreated, newSaleResponse(sale))
}
