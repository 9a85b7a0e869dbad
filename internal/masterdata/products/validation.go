package products

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
)

// parse converts validated form strings into a Product, collecting every
// field that fails to parse or falls below zero.
func (f Form) parse() (Product, shared.FieldErrors) {
	errs := shared.FieldErrors{}
	p := Product{Name: f.Name, Description: f.Description}

	p.CostPrice = parseMoney(f.CostPrice, "cost_price", errs)
	p.SalePrice = parseMoney(f.SalePrice, "sale_price", errs)
	p.Stock = parseCount(f.Stock, "stock", errs)
	p.Quantity = parseCount(f.Quantity, "quantity", errs)

	id, err := strconv.ParseInt(f.SupplierID, 10, 64)
	if err != nil || id <= 0 {
		errs["supplier_id"] = "is invalid"
	}
	p.SupplierID = id
	return p, errs
}

func parseMoney(raw, field string, errs shared.FieldErrors) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	switch {
	case err != nil:
		errs[field] = "must be a number"
	case d.IsNegative():
		errs[field] = "must be at least 0"
	case d.Exponent() < -2 && !d.Equal(d.Round(2)):
		errs[field] = "must have at most 2 decimals"
	}
	return d.Round(2)
}

func parseCount(raw, field string, errs shared.FieldErrors) int {
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		errs[field] = "must be a whole number"
	case n < 0:
		errs[field] = "must be at least 0"
	}
	return n
}
