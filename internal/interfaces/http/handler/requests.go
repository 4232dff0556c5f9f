package handler

import (
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is one invoice line in a create, edit or add-item body.
// ID is set only when editing an existing line.
type ItemRequest struct {
	ID          *uuid.UUID       `json:"id"`
	Description string           `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"gt=0"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"gte=0"`
	Amount      *decimal.Decimal `json:"amount"`
	ProductID   *uuid.UUID       `json:"product_id"`
	PricingMode string           `json:"pricing_mode" binding:"omitempty,oneof=unit area"`
	Width       *decimal.Decimal `json:"width"`
	Height      *decimal.Decimal `json:"height"`
	AreaRate    *decimal.Decimal `json:"area_rate"`
	Attributes  map[string]any   `json:"attributes"`
}

func (r ItemRequest) toInput() ledger.ItemInput {
	in := ledger.ItemInput{
		ID:          r.ID,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   valueobject.NewMoney(r.UnitPrice),
		ProductID:   r.ProductID,
		PricingMode: ledger.PricingMode(r.PricingMode),
		Width:       r.Width,
		Height:      r.Height,
		Attributes:  r.Attributes,
	}
	if r.Amount != nil {
		amount := valueobject.NewMoney(*r.Amount)
		in.Amount = &amount
	}
	if r.AreaRate != nil {
		rate := valueobject.NewMoney(*r.AreaRate)
		in.AreaRate = &rate
	}
	return in
}

func toInputs(items []ItemRequest) []ledger.ItemInput {
	inputs := make([]ledger.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, item.toInput())
	}
	return inputs
}

// InvoiceDetailsRequest holds the optional invoice header fields
type InvoiceDetailsRequest struct {
	InvoiceDate *time.Time `json:"invoice_date"`
	DueDate     *time.Time `json:"due_date"`
	OrderID     *uuid.UUID `json:"order_id"`
	ProjectName string     `json:"project_name" binding:"max=200"`
	Notes       string     `json:"notes" binding:"max=2000"`
}

func (r InvoiceDetailsRequest) toDetails() ledger.InvoiceDetails {
	details := ledger.InvoiceDetails{
		DueDate:     r.DueDate,
		OrderID:     r.OrderID,
		ProjectName: r.ProjectName,
		Notes:       r.Notes,
	}
	if r.InvoiceDate != nil {
		details.InvoiceDate = *r.InvoiceDate
	}
	return details
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required,max=64"`
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	Items         []ItemRequest   `json:"items" binding:"dive"`
	TaxAmount     decimal.Decimal `json:"tax_amount" binding:"gte=0"`
	InvoiceDetailsRequest
}

// EditInvoiceRequest is the body of PUT /invoices/:id. Omitted details keep their stored values.
type EditInvoiceRequest struct {
	Items     []ItemRequest          `json:"items" binding:"dive"`
	TaxAmount decimal.Decimal        `json:"tax_amount" binding:"gte=0"`
	Details   *InvoiceDetailsRequest `json:"details"`
}

// SetStatusRequest is the body of PATCH /invoices/:id/status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AllocationRequest is one invoice share of a recorded payment
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// RecordPaymentRequest is the body of POST /payments
type RecordPaymentRequest struct {
	CustomerID       uuid.UUID           `json:"customer_id" binding:"required"`
	Method           string              `json:"method" binding:"required"`
	Reference        string              `json:"reference" binding:"max=100"`
	Notes            string              `json:"notes" binding:"max=2000"`
	Allocations      []AllocationRequest `json:"allocations" binding:"dive"`
	CapToOutstanding bool                `json:"cap_to_outstanding"`
}

func (r RecordPaymentRequest) toAllocations() []ledger.Allocation {
	allocations := make([]ledger.Allocation, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		allocations = append(allocations, ledger.Allocation{
			InvoiceID: a.InvoiceID,
			Amount:    valueobject.NewMoney(a.Amount),
		})
	}
	return allocations
}
