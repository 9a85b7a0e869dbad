package suppliers

import (
	"strings"
	"time"
)

// Supplier is a company that provides products.
type Supplier struct {
	ID          int64     `json:"id"`
	CompanyName string    `json:"company_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	TaxID       string    `json:"tax_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Form carries raw supplier input from the HTML form.
type Form struct {
	CompanyName string `form:"company_name" validate:"required,max=50"`
	Phone       string `form:"phone" validate:"required,max=20"`
	Address     string `form:"address" validate:"required,max=200"`
	TaxID       string `form:"tax_id" validate:"required,max=20"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		CompanyName: strings.TrimSpace(f.CompanyName),
		Phone:       strings.TrimSpace(f.Phone),
		Address:     strings.TrimSpace(f.Address),
		TaxID:       strings.TrimSpace(f.TaxID),
	}
}

// FormFromSupplier prefills the edit form.
func FormFromSupplier(s Supplier) Form {
	return Form{CompanyName: s.CompanyName, Phone: s.Phone, Address: s.Address, TaxID: s.TaxID}
}

func (f Form) apply(s Supplier) Supplier {
	s.CompanyName = f.CompanyName
	s.Phone = f.Phone
	s.Address = f.Address
	s.TaxID = f.TaxID
	return s
}
