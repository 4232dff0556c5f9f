package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderPaymentStatus is the payment state stored on an order
type OrderPaymentStatus string

const (
	OrderPaymentUnpaid  OrderPaymentStatus = "unpaid"
	OrderPaymentPartial OrderPaymentStatus = "partial"
	OrderPaymentPaid    OrderPaymentStatus = "paid"
)

// Order is owned by the order workflow; the ledger reads it, keeps its payment status in step
// with the linked invoice and deletes it in a cascade
type Order struct {
	shared.BaseEntity
	OrderNumber    string             `json:"order_number"`
	CustomerID     uuid.UUID          `json:"customer_id"`
	PaymentStatus  OrderPaymentStatus `json:"payment_status"`
	WorkflowStatus string             `json:"workflow_status"`
}

// PaymentStatusFromInvoice maps an invoice status onto the order payment status.
// A draft invoice has collected nothing, so its order is unpaid.
func PaymentStatusFromInvoice(status InvoiceStatus) OrderPaymentStatus {
	switch status {
	case InvoiceStatusPaid:
		return OrderPaymentPaid
	case InvoiceStatusPartial:
		return OrderPaymentPartial
	default:
		return OrderPaymentUnpaid
	}
}

// Collaborator tables keyed by order_id that a cascade must clear
const (
	DependentOrderFiles    = "order_files"
	DependentOrderComments = "order_comments"
	DependentOrderHistory  = "order_history"
	DependentNotifications = "notifications"
)
