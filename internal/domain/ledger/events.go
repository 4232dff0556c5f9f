package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type names carried by ledger events
const (
	AggregateTypeInvoice = "Invoice"
	AggregateTypePayment = "Payment"
	AggregateTypeOrder   = "Order"
)

// Event type names
const (
	EventTypeInvoiceCreated        = "InvoiceCreated"
	EventTypeInvoiceUpdated        = "InvoiceUpdated"
	EventTypeInvoiceStatusChanged  = "InvoiceStatusChanged"
	EventTypeInvoicePaymentApplied = "InvoicePaymentApplied"
	EventTypeInvoiceDeleted        = "InvoiceDeleted"
	EventTypePaymentRecorded       = "PaymentRecorded"
	EventTypePaymentDeleted        = "PaymentDeleted"
	EventTypeOrderCascadeDeleted   = "OrderCascadeDeleted"
)

// LedgerChangeEventTypes lists every event that changes what the debt report shows
var LedgerChangeEventTypes = []string{
	EventTypeInvoiceCreated,
	EventTypeInvoiceUpdated,
	EventTypeInvoiceStatusChanged,
	EventTypeInvoicePaymentApplied,
	EventTypeInvoiceDeleted,
	EventTypePaymentRecorded,
	EventTypePaymentDeleted,
	EventTypeOrderCascadeDeleted,
}

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	TotalAmount   valueobject.Money `json:"total_amount"`
	ItemCount     int               `json:"item_count"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		OrderID:         inv.OrderID,
		TotalAmount:     inv.TotalAmount,
		ItemCount:       len(inv.Items),
	}
}

// InvoiceUpdatedEvent is raised when items or totals of an invoice change
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	TotalAmount   valueobject.Money `json:"total_amount"`
	Status        InvoiceStatus     `json:"status"`
}

// EventType returns the event type name
func (e *InvoiceUpdatedEvent) EventType() string {
	return EventTypeInvoiceUpdated
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		Status:          inv.Status,
	}
}

// InvoiceStatusChangedEvent is raised when an invoice's status changes
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	FromStatus    InvoiceStatus     `json:"from_status"`
	ToStatus      InvoiceStatus     `json:"to_status"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
}

// EventType returns the event type name
func (e *InvoiceStatusChangedEvent) EventType() string {
	return EventTypeInvoiceStatusChanged
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		OrderID:         inv.OrderID,
		FromStatus:      from,
		ToStatus:        inv.Status,
		AmountPaid:      inv.AmountPaid,
	}
}

// InvoicePaymentAppliedEvent is raised when an allocation increases amount_paid
type InvoicePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	Amount        valueobject.Money `json:"amount"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	FromStatus    InvoiceStatus     `json:"from_status"`
	ToStatus      InvoiceStatus     `json:"to_status"`
}

// EventType returns the event type name
func (e *InvoicePaymentAppliedEvent) EventType() string {
	return EventTypeInvoicePaymentApplied
}

// NewInvoicePaymentAppliedEvent creates a new InvoicePaymentAppliedEvent
func NewInvoicePaymentAppliedEvent(inv *Invoice, amount valueobject.Money, from InvoiceStatus) *InvoicePaymentAppliedEvent {
	return &InvoicePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentApplied, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		OrderID:         inv.OrderID,
		Amount:          amount,
		AmountPaid:      inv.AmountPaid,
		FromStatus:      from,
		ToStatus:        inv.Status,
	}
}

// InvoiceDeletedEvent is raised when an invoice is deleted
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string     `json:"invoice_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceDeletedEvent) EventType() string {
	return EventTypeInvoiceDeleted
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(inv *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		OrderID:         inv.OrderID,
	}
}

// PaymentRecordedEvent is raised once per record_payment call
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID         `json:"customer_id"`
	Amount          valueobject.Money `json:"amount"`
	Method          PaymentMethod     `json:"method"`
	AllocationCount int               `json:"allocation_count"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent for a summary payment
func NewPaymentRecordedEvent(summary *Payment, allocationCount int) *PaymentRecordedEvent {
	var customerID uuid.UUID
	if summary.CustomerID != nil {
		customerID = *summary.CustomerID
	}
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, summary.ID),
		CustomerID:      customerID,
		Amount:          summary.Amount,
		Method:          summary.Method,
		AllocationCount: allocationCount,
	}
}

// PaymentDeletedEvent is raised when a payment row is deleted individually
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID *uuid.UUID        `json:"invoice_id,omitempty"`
	Amount    valueobject.Money `json:"amount"`
	Origin    PaymentOrigin     `json:"origin"`
}

// EventType returns the event type name
func (e *PaymentDeletedEvent) EventType() string {
	return EventTypePaymentDeleted
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypePayment, p.ID),
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Origin:          p.Origin,
	}
}

// OrderCascadeDeletedEvent is raised after an order and its dependents are removed
type OrderCascadeDeletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string     `json:"order_number"`
	InvoiceID   *uuid.UUID `json:"invoice_id,omitempty"`
	FailedSteps []string   `json:"failed_steps,omitempty"`
}

// EventType returns the event type name
func (e *OrderCascadeDeletedEvent) EventType() string {
	return EventTypeOrderCascadeDeleted
}

// NewOrderCascadeDeletedEvent creates a new OrderCascadeDeletedEvent
func NewOrderCascadeDeletedEvent(order *Order, invoiceID *uuid.UUID, failedSteps []string) *OrderCascadeDeletedEvent {
	return &OrderCascadeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCascadeDeleted, AggregateTypeOrder, order.ID),
		OrderNumber:     order.OrderNumber,
		InvoiceID:       invoiceID,
		FailedSteps:     failedSteps,
	}
}
