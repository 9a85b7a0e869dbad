package products

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item with its on-hand stock.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Stock        int             `json:"stock"`
	Quantity     int             `json:"quantity"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsLowStock reports whether stock has fallen to 90% of the reference
// quantity or below.
func (p Product) IsLowStock() bool {
	return IsLowStock(p.Stock, p.Quantity)
}

// IsLowStock applies the reorder threshold stock <= 0.9 * quantity using
// integer arithmetic.
func IsLowStock(stock, quantity int) bool {
	return stock*10 <= quantity*9
}

// Form carries raw product input from the HTML form.
type Form struct {
	Name        string `form:"name" validate:"required,max=50"`
	Description string `form:"description" validate:"required,max=200"`
	CostPrice   string `form:"cost_price" validate:"required"`
	SalePrice   string `form:"sale_price" validate:"required"`
	Stock       string `form:"stock" validate:"required"`
	Quantity    string `form:"quantity" validate:"required"`
	SupplierID  string `form:"supplier_id" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		CostPrice:   strings.TrimSpace(f.CostPrice),
		SalePrice:   strings.TrimSpace(f.SalePrice),
		Stock:       strings.TrimSpace(f.Stock),
		Quantity:    strings.TrimSpace(f.Quantity),
		SupplierID:  strings.TrimSpace(f.SupplierID),
	}
}

// FormFromProduct prefills the edit form.
func FormFromProduct(p Product) Form {
	return Form{
		Name:        p.Name,
		Description: p.Description,
		CostPrice:   p.CostPrice.StringFixed(2),
		SalePrice:   p.SalePrice.StringFixed(2),
		Stock:       strconv.Itoa(p.Stock),
		Quantity:    strconv.Itoa(p.Quantity),
		SupplierID:  strconv.FormatInt(p.SupplierID, 10),
	}
}
