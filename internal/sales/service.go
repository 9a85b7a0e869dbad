package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RepositoryPort abstracts persistence for the sale workflow.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListSales(ctx context.Context, limit, offset int) ([]Sale, int, error)
	RecentSales(ctx context.Context, limit int) ([]Sale, error)
	EachSale(ctx context.Context, fn func(Sale) error) error
}

// Observer is notified after a sale has been committed.
type Observer interface {
	SaleRecorded(ctx context.Context, sale Sale) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, sale Sale) error

// SaleRecorded calls f(ctx, sale).
func (f ObserverFunc) SaleRecorded(ctx context.Context, sale Sale) error {
	return f(ctx, sale)
}

// OutcomeRecorder counts processed sales by outcome label.
type OutcomeRecorder interface {
	ObserveSale(outcome string)
}

// ProcessorConfig carries optional collaborators of Processor.
type ProcessorConfig struct {
	Observers []Observer
	Outcomes  OutcomeRecorder
	// Now defaults to time.Now. The sale date is its calendar day.
	Now func() time.Time
}

// Processor records sales against product stock.
type Processor struct {
	repo      RepositoryPort
	logger    *slog.Logger
	observers []Observer
	outcomes  OutcomeRecorder
	now       func() time.Time
}

// NewProcessor constructs a Processor.
func NewProcessor(repo RepositoryPort, logger *slog.Logger, cfg ProcessorConfig) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		repo:      repo,
		logger:    logger,
		observers: cfg.Observers,
		outcomes:  cfg.Outcomes,
		now:       now,
	}
}

// ProcessSale sells quantity units of a product. The product row is locked,
// its stock checked and decremented, and the Sale inserted in one
// transaction. Prices are read at processing time. Calls are not
// deduplicated: two identical calls record two sales.
func (p *Processor) ProcessSale(ctx context.Context, productID int64, quantity int) (Sale, error) {
	sale, err := p.processSale(ctx, productID, quantity)
	if p.outcomes != nil {
		p.outcomes.ObserveSale(OutcomeOf(err))
	}
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			p.logger.Error("process sale", slog.Int64("product_id", productID), slog.Int("quantity", quantity), slog.Any("error", err))
		}
		return Sale{}, err
	}

	p.logger.Info("sale recorded",
		slog.Int64("sale_id", sale.ID),
		slog.String("product", sale.ProductName),
		slog.Int("quantity", sale.Quantity),
		slog.String("total_price", sale.TotalPrice.StringFixed(2)),
	)
	for _, obs := range p.observers {
		if err := obs.SaleRecorded(ctx, sale); err != nil {
			p.logger.Warn("sale observer failed", slog.Int64("sale_id", sale.ID), slog.Any("error", err))
		}
	}
	return sale, nil
}

func (p *Processor) processSale(ctx context.Context, productID int64, quantity int) (Sale, error) {
	if quantity <= 0 {
		return Sale{}, ErrInvalidQuantity
	}

	var sale Sale
	err := p.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return ErrInsufficientStock
		}

		total, cost, profit := Totals(product.SalePrice, product.CostPrice, quantity)
		if err := tx.DecrementStock(ctx, product.ID, quantity); err != nil {
			return err
		}
		inserted, err := tx.InsertSale(ctx, Sale{
			SaleDate:     saleDate(p.now()),
			ProductName:  product.Name,
			SupplierName: product.SupplierName,
			Quantity:     quantity,
			SellingPrice: product.SalePrice,
			TotalPrice:   total,
			CostPrice:    cost,
			TotalProfit:  profit,
		})
		if err != nil {
			return err
		}
		sale = inserted
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidProduct) || errors.Is(err, ErrInsufficientStock) {
			return Sale{}, err
		}
		return Sale{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return sale, nil
}

// ListSales returns a page of sales, newest first, and the total count.
func (p *Processor) ListSales(ctx context.Context, limit, offset int) ([]Sale, int, error) {
	return p.repo.ListSales(ctx, limit, offset)
}

// RecentSales returns the latest sales.
func (p *Processor) RecentSales(ctx context.Context, limit int) ([]Sale, error) {
	return p.repo.RecentSales(ctx, limit)
}

// EachSale streams every sale, newest first.
func (p *Processor) EachSale(ctx context.Context, fn func(Sale) error) error {
	return p.repo.EachSale(ctx, fn)
}

// saleDate is the UTC calendar day of t.
func saleDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
