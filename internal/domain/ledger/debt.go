package ledger

import (
	"sort"
	"strings"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// CustomerDebt is one row of the collections report
type CustomerDebt struct {
	CustomerID   uuid.UUID         `json:"customer_id"`
	Name         string            `json:"name"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Company      string            `json:"company,omitempty"`
	TotalBilled  valueobject.Money `json:"total_billed"`
	TotalPaid    valueobject.Money `json:"total_paid"`
	Outstanding  valueobject.Money `json:"outstanding"`
	InvoiceCount int               `json:"invoice_count"`
}

// AggregateDebts rolls non-draft invoices up per customer.
// Customers whose outstanding balance is within AmountTolerance of zero are left out,
// and the rest are sorted by outstanding descending (name, then id, break ties).
// customers may miss entries; such rows keep only the id.
func AggregateDebts(invoices []*Invoice, customers map[uuid.UUID]*Customer) []CustomerDebt {
	byCustomer := make(map[uuid.UUID]*CustomerDebt)
	for _, inv := range invoices {
		if inv == nil || inv.IsDraft() {
			continue
		}
		debt, ok := byCustomer[inv.CustomerID]
		if !ok {
			debt = &CustomerDebt{CustomerID: inv.CustomerID}
			if c := customers[inv.CustomerID]; c != nil {
				debt.Name = c.Name
				debt.Email = c.Email
				debt.Phone = c.Phone
				debt.Company = c.Company
			}
			byCustomer[inv.CustomerID] = debt
		}
		debt.TotalBilled = debt.TotalBilled.Add(inv.TotalAmount)
		debt.TotalPaid = debt.TotalPaid.Add(inv.AmountPaid)
		debt.InvoiceCount++
	}

	result := make([]CustomerDebt, 0, len(byCustomer))
	for _, debt := range byCustomer {
		debt.Outstanding = debt.TotalBilled.Subtract(debt.TotalPaid)
		if debt.Outstanding.LessThanOrEqual(AmountTolerance) {
			continue
		}
		result = append(result, *debt)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Outstanding.Equals(b.Outstanding) {
			return a.Outstanding.GreaterThan(b.Outstanding)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CustomerID.String() < b.CustomerID.String()
	})
	return result
}

// MatchesQuery reports whether query is a case-insensitive substring of the name, email,
// phone or company. An empty query matches everything.
func (d CustomerDebt) MatchesQuery(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(query)
	for _, field := range []string{d.Name, d.Email, d.Phone, d.Company} {
		if field != "" && strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// FilterDebts keeps the rows matching query, preserving order
func FilterDebts(debts []CustomerDebt, query string) []CustomerDebt {
	if strings.TrimSpace(query) == "" {
		return debts
	}
	out := make([]CustomerDebt, 0, len(debts))
	for _, d := range debts {
		if d.MatchesQuery(query) {
			out = append(out, d)
		}
	}
	return out
}

// TotalOutstanding sums the outstanding column of a report
func TotalOutstanding(debts []CustomerDebt) valueobject.Money {
	total := valueobject.Zero()
	for _, d := range debts {
		total = total.Add(d.Outstanding)
	}
	return total
}
