package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRole is the job the commission was earned for
type CommissionRole string

const (
	CommissionRoleDesigner      CommissionRole = "designer"
	CommissionRolePrintOperator CommissionRole = "print_operator"
	CommissionRoleSalesperson   CommissionRole = "salesperson"
)

// Commission is computed elsewhere; the ledger only reads it and deletes it with its order
type Commission struct {
	shared.BaseEntity
	UserID               uuid.UUID         `json:"user_id"`
	OrderID              uuid.UUID         `json:"order_id"`
	Role                 CommissionRole    `json:"role"`
	CommissionPercentage decimal.Decimal   `json:"commission_percentage"`
	CommissionAmount     valueobject.Money `json:"commission_amount"`
}

// CommissionView is a commission joined with the payment state of its order
type CommissionView struct {
	Commission
	OrderNumber string             `json:"order_number"`
	PaidStatus  OrderPaymentStatus `json:"paid_status"`
}

// CommissionFilter narrows commission listings
type CommissionFilter struct {
	UserID *uuid.UUID
}

// ResolveCommissionPaidStatus reads the paid state from the order, falling back to the
// order's invoice when the order carries no payment status. Either argument may be nil.
func ResolveCommissionPaidStatus(order *Order, invoice *Invoice) OrderPaymentStatus {
	if order != nil && order.PaymentStatus != "" {
		return order.PaymentStatus
	}
	if invoice != nil {
		return PaymentStatusFromInvoice(invoice.Status)
	}
	return OrderPaymentUnpaid
}
