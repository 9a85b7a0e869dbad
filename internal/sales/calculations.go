package sales

import "github.com/shopspring/decimal"

// Totals derives the monetary fields of a sale from unit prices. The cost is
// the total cost of all units, so total - cost == profit holds exactly.
func Totals(salePrice, costPrice decimal.Decimal, quantity int) (total, cost, profit decimal.Decimal) {
	q := decimal.NewFromInt(int64(quantity))
	total = salePrice.Mul(q)
	cost = costPrice.Mul(q)
	profit = salePrice.Sub(costPrice).Mul(q)
	return total, cost, profit
}
