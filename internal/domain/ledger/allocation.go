package ledger

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Allocation is the portion of a payment applied to one invoice
type Allocation struct {
	InvoiceID uuid.UUID         `json:"invoice_id"`
	Amount    valueobject.Money `json:"amount"`
}

// CapAllocation returns min(requested, outstanding) with negative requests treated as zero.
// It is idempotent: CapAllocation(inv, CapAllocation(inv, x)) == CapAllocation(inv, x).
func CapAllocation(inv *Invoice, requested valueobject.Money) valueobject.Money {
	requested = requested.ClampNonNegative()
	return requested.Min(inv.Outstanding().ClampNonNegative())
}

// ValidateAllocations rejects an empty list or one where no amount is positive
func ValidateAllocations(allocations []Allocation) error {
	if len(allocations) == 0 {
		return shared.NewValidationError("EMPTY_ALLOCATIONS", "At least one allocation is required")
	}
	for _, a := range allocations {
		if a.InvoiceID == uuid.Nil {
			return shared.NewValidationError("INVALID_INVOICE", "Allocation invoice ID cannot be empty")
		}
	}
	if len(PositiveAllocations(allocations)) == 0 {
		return shared.NewValidationError("ZERO_ALLOCATION", "At least one allocation amount must be greater than zero")
	}
	return nil
}

// PositiveAllocations drops allocations with amount <= 0, keeping order
func PositiveAllocations(allocations []Allocation) []Allocation {
	out := make([]Allocation, 0, len(allocations))
	for _, a := range allocations {
		if a.Amount.IsPositive() {
			out = append(out, a)
		}
	}
	return out
}

// AllocationTotal sums the positive allocation amounts
func AllocationTotal(allocations []Allocation) valueobject.Money {
	total := valueobject.Zero()
	for _, a := range PositiveAllocations(allocations) {
		total = total.Add(a.Amount)
	}
	return total
}
