package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"   // Caller-controlled, never derived
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"  // Nothing paid yet
	InvoiceStatusPartial InvoiceStatus = "partial" // 0 < paid < total
	InvoiceStatusPaid    InvoiceStatus = "paid"    // paid >= total (within tolerance)
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// AmountTolerance is the difference treated as equal when comparing paid and total amounts
var AmountTolerance = valueobject.Cent

// DeriveStatus maps an invoice's monetary totals to a lifecycle status.
// It never returns draft.
//
// An invoice with nothing owed (total <= 0) is paid. Otherwise a non-positive paid amount is
// unpaid, a paid amount within AmountTolerance of the total (or above it) is paid, and anything in
// between is partial.
func DeriveStatus(total, paid valueobject.Money) InvoiceStatus {
	if !total.IsPositive() {
		return InvoiceStatusPaid
	}
	if !paid.IsPositive() {
		return InvoiceStatusUnpaid
	}
	if paid.Add(AmountTolerance).GreaterThanOrEqual(total) {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPartial
}
