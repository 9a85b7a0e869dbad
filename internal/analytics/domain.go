package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierSummary aggregates sales recorded under a supplier name.
type SupplierSummary struct {
	SupplierName string          `json:"supplier_name"`
	UnitsSold    int             `json:"units_sold"`
	Profit       decimal.Decimal `json:"profit"`
}

// DailyRevenue is the summed sale total of one calendar day.
type DailyRevenue struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TrendWindowDays is the default length of the revenue trend.
const TrendWindowDays = 30
