package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidProduct indicates the requested product does not exist.
	ErrInvalidProduct = errors.New("sales: invalid product")
	// ErrInsufficientStock indicates the product has fewer units than requested.
	ErrInsufficientStock = errors.New("sales: insufficient stock")
	// ErrInvalidQuantity indicates a zero or negative quantity.
	ErrInvalidQuantity = errors.New("sales: invalid quantity")
	// ErrPersistence wraps storage failures. Nothing was committed.
	ErrPersistence = errors.New("sales: persistence failure")
)

// Sale is an immutable record of a completed sale. Product and supplier
// names and prices are snapshots taken when the sale was processed.
type Sale struct {
	ID           int64
	SaleDate     time.Time
	ProductName  string
	SupplierName string
	Quantity     int
	SellingPrice decimal.Decimal
	TotalPrice   decimal.Decimal
	// CostPrice is the total cost of the units sold, not the unit cost.
	CostPrice   decimal.Decimal
	TotalProfit decimal.Decimal
	CreatedAt   time.Time
}

// ProductSnapshot is the product state read under lock while a sale is processed.
type ProductSnapshot struct {
	ID           int64
	Name         string
	SupplierName string
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	Stock        int
}

// Outcome labels reported for every processed sale.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalidProduct    = "invalid_product"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalidQuantity   = "invalid_quantity"
	OutcomePersistence       = "persistence_error"
)

// OutcomeOf maps a ProcessSale error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidProduct):
		return OutcomeInvalidProduct
	case errors.Is(err, ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, ErrInvalidQuantity):
		return OutcomeInvalidQuantity
	default:
		return OutcomePersistence
	}
}
