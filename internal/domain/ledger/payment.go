package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentOrigin identifies how a payment row came to exist
type PaymentOrigin string

const (
	PaymentOriginManual       PaymentOrigin = "manual"        // entered directly against an order
	PaymentOriginSummary      PaymentOrigin = "summary"       // total collected before splitting
	PaymentOriginAllocation   PaymentOrigin = "allocation"    // share of a summary applied to one invoice
	PaymentOriginStatusToggle PaymentOrigin = "status_toggle" // system-generated by marking an invoice paid
)

// IsValid checks if the origin is valid
func (o PaymentOrigin) IsValid() bool {
	switch o {
	case PaymentOriginManual, PaymentOriginSummary, PaymentOriginAllocation, PaymentOriginStatusToggle:
		return true
	}
	return false
}

// PaymentMethod is how the money was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCard, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// SystemGeneratedNoteTag prefixes the notes of status-toggle payments. It is informational only;
// identification uses Origin.
const SystemGeneratedNoteTag = "[system]"

// Payment is a monetary event. Summary rows have no invoice; allocation rows point at exactly one
// invoice and carry the id of their summary; manual rows may point at an order directly.
type Payment struct {
	shared.BaseEntity
	CustomerID *uuid.UUID        `json:"customer_id,omitempty"`
	InvoiceID  *uuid.UUID        `json:"invoice_id,omitempty"`
	OrderID    *uuid.UUID        `json:"order_id,omitempty"`
	SummaryID  *uuid.UUID        `json:"summary_id,omitempty"`
	Amount     valueobject.Money `json:"amount"`
	Method     PaymentMethod     `json:"method"`
	Reference  string            `json:"reference,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Origin     PaymentOrigin     `json:"origin"`
	PaidAt     time.Time         `json:"paid_at"`
}

// IsSystemGenerated reports whether the payment was created by a status toggle
func (p *Payment) IsSystemGenerated() bool {
	return p.Origin == PaymentOriginStatusToggle
}

// AppliesToInvoice reports whether deleting the payment must reverse an invoice's amount_paid
func (p *Payment) AppliesToInvoice() bool {
	return p.InvoiceID != nil && p.Origin != PaymentOriginSummary
}

func newPayment(amount valueobject.Money, method PaymentMethod, origin PaymentOrigin) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}
	entity := shared.NewBaseEntity()
	return &Payment{
		BaseEntity: entity,
		Amount:     amount,
		Method:     method,
		Origin:     origin,
		PaidAt:     entity.CreatedAt,
	}, nil
}

// NewSummaryPayment creates the parent row for a customer-level collection
func NewSummaryPayment(customerID uuid.UUID, amount valueobject.Money, method PaymentMethod, reference, notes string) (*Payment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	p, err := newPayment(amount, method, PaymentOriginSummary)
	if err != nil {
		return nil, err
	}
	p.CustomerID = &customerID
	p.Reference = strings.TrimSpace(reference)
	p.Notes = strings.TrimSpace(notes)
	return p, nil
}

// NewAllocationPayment creates the child row applying part of summary to one invoice
func NewAllocationPayment(summary *Payment, invoiceID uuid.UUID, amount valueobject.Money) (*Payment, error) {
	p, err := newPayment(amount, summary.Method, PaymentOriginAllocation)
	if err != nil {
		return nil, err
	}
	summaryID := summary.ID
	p.CustomerID = summary.CustomerID
	p.InvoiceID = &invoiceID
	p.SummaryID = &summaryID
	p.Reference = summary.Reference
	p.Notes = fmt.Sprintf("Allocation of payment %s", summary.ID)
	p.PaidAt = summary.PaidAt
	return p, nil
}

// NewStatusTogglePayment creates the system-generated row covering the delta when an invoice is
// marked paid directly
func NewStatusTogglePayment(inv *Invoice, amount valueobject.Money) (*Payment, error) {
	p, err := newPayment(amount, PaymentMethodOther, PaymentOriginStatusToggle)
	if err != nil {
		return nil, err
	}
	invoiceID := inv.ID
	customerID := inv.CustomerID
	p.CustomerID = &customerID
	p.InvoiceID = &invoiceID
	p.Reference = fmt.Sprintf("AUTO-%s-%d", inv.InvoiceNumber, p.PaidAt.Unix())
	p.Notes = fmt.Sprintf("%s auto-generated when invoice %s was marked paid", SystemGeneratedNoteTag, inv.InvoiceNumber)
	return p, nil
}

// NewOrderPayment creates a manual payment linked directly to an order, such as a deposit the
// order workflow takes before the order is invoiced. The ledger never allocates these rows;
// it only removes them when the order is cascade deleted.
func NewOrderPayment(orderID uuid.UUID, amount valueobject.Money, method PaymentMethod, reference, notes string) (*Payment, error) {
	p, err := newPayment(amount, method, PaymentOriginManual)
	if err != nil {
		return nil, err
	}
	p.OrderID = &orderID
	p.Reference = strings.TrimSpace(reference)
	p.Notes = strings.TrimSpace(notes)
	return p, nil
}
