package suppliers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
)

// Service validates supplier forms and delegates to the Repository.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires the supplier repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

// All returns every supplier ordered by company name.
func (s *Service) All(ctx context.Context) ([]Supplier, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form Form) (Supplier, error) {
	form = form.Normalize()
	if err := shared.Validate(s.validate, form); err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, form.apply(Supplier{}))
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	form = form.Normalize()
	if err := shared.Validate(s.validate, form); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, form.apply(Supplier{ID: id}))
}

// Delete removes a supplier. Suppliers that still own products yield
// shared.ErrInUse.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
