package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
)

// SupplierLookup resolves the supplier a product belongs to.
type SupplierLookup interface {
	Get(ctx context.Context, id int64) (suppliers.Supplier, error)
}

// Service validates product forms and delegates to the Repository.
type Service struct {
	repo      Repository
	suppliers SupplierLookup
	validate  *validator.Validate
}

// NewService wires the product repository with supplier lookups.
func NewService(repo Repository, suppliers SupplierLookup) *Service {
	return &Service{repo: repo, suppliers: suppliers, validate: shared.NewValidator()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// All returns every product ordered by name.
func (s *Service) All(ctx context.Context) ([]Product, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// LowStock lists products whose stock is at or below 90% of their reference
// quantity, lowest stock first.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.LowStock(ctx)
}

func (s *Service) Create(ctx context.Context, form Form) (Product, error) {
	product, err := s.prepare(ctx, form)
	if err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	product, err := s.prepare(ctx, form)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(ctx context.Context, form Form) (Product, error) {
	form = form.Normalize()
	if err := shared.Validate(s.validate, form); err != nil {
		return Product{}, err
	}
	product, errs := form.parse()
	if len(errs) > 0 {
		return Product{}, errs
	}
	supplier, err := s.suppliers.Get(ctx, product.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Product{}, shared.FieldErrors{"supplier_id": "does not exist"}
		}
		return Product{}, fmt.Errorf("lookup supplier: %w", err)
	}
	product.SupplierName = supplier.CompanyName
	return product, nil
}
