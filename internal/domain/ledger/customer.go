package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
)

// Customer is the billed party. Only identity and contact fields are needed by the ledger.
type Customer struct {
	shared.BaseEntity
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// NewCustomer creates a new customer
func NewCustomer(name, email, phone, company string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Phone:      phone,
		Company:    company,
	}, nil
}
