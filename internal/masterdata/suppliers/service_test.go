package suppliers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
)

func validForm() Form {
	return Form{CompanyName: " Acme Tools ", Phone: "555-0100", Address: "1 Main St", TaxID: "B12345678"}
}

func TestCreateTrimsAndPersists(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Acme Tools", created.CompanyName)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Form{CompanyName: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	fields := shared.AsFieldErrors(err)
	assert.Contains(t, fields, "company_name")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "address")
	assert.Contains(t, fields, "tax_id")
}

func TestCreateRejectsLongFields(t *testing.T) {
	svc := NewService(newMemoryRepo())
	form := validForm()
	form.Phone = "012345678901234567890"

	_, err := svc.Create(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "must be at most 20 characters", shared.AsFieldErrors(err)["phone"])
}

func TestUpdateUnknownSupplier(t *testing.T) {
	svc := NewService(newMemoryRepo())
	err := svc.Update(context.Background(), 99, validForm())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteInUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	repo.inUse[created.ID] = true

	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), shared.ErrInUse)

	repo.inUse[created.ID] = false
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvalidID(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
	assert.ErrorIs(t, svc.Delete(context.Background(), -1), shared.ErrInvalidID)
}
