package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CreateInvoiceCommand is the input of create_invoice
type CreateInvoiceCommand struct {
	InvoiceNumber string
	CustomerID    uuid.UUID
	Items         []ledger.ItemInput
	TaxAmount     valueobject.Money
	Details       ledger.InvoiceDetails
}

// EditInvoiceCommand is the input of edit_invoice. Only the header fields Details carries
// change; moving the invoice to another order checks that order like create_invoice does.
type EditInvoiceCommand struct {
	Items     []ledger.ItemInput
	TaxAmount valueobject.Money
	Details   *ledger.InvoiceDetails
}

// InvoiceDetail is an invoice with its items and payments
type InvoiceDetail struct {
	Invoice  *ledger.Invoice   `json:"invoice"`
	Payments []*ledger.Payment `json:"payments"`
}

// OutstandingInvoice is one row of list_outstanding
type OutstandingInvoice struct {
	Invoice     *ledger.Invoice   `json:"invoice"`
	Outstanding valueobject.Money `json:"outstanding"`
}

// RecordPaymentCommand is the input of record_payment.
// With CapToOutstanding set each allocation is passed through CapAllocation before it is
// applied; otherwise an allocation above the outstanding balance is rejected.
type RecordPaymentCommand struct {
	CustomerID       uuid.UUID
	Method           ledger.PaymentMethod
	Reference        string
	Notes            string
	Allocations      []ledger.Allocation
	CapToOutstanding bool
}

// AllocationResult describes the effect of one allocation on its invoice
type AllocationResult struct {
	PaymentID     uuid.UUID            `json:"payment_id"`
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	Requested     valueobject.Money    `json:"requested"`
	Applied       valueobject.Money    `json:"applied"`
	AmountPaid    valueobject.Money    `json:"amount_paid"`
	Outstanding   valueobject.Money    `json:"outstanding"`
	Status        ledger.InvoiceStatus `json:"status"`
}

// PaymentSummary is the result of record_payment
type PaymentSummary struct {
	Summary     *ledger.Payment    `json:"summary"`
	Allocations []AllocationResult `json:"allocations"`
}

// CascadeResult reports what delete_order_cascade removed
type CascadeResult struct {
	OrderID      uuid.UUID        `json:"order_id"`
	InvoiceID    *uuid.UUID       `json:"invoice_id,omitempty"`
	Mode         CascadeMode      `json:"mode"`
	Deleted      map[string]int64 `json:"deleted"`
	SkippedSteps []string         `json:"skipped_steps,omitempty"`
}
