package ledger

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// All repository operations inside fn share one database transaction and are committed or
// rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository the ledger writes through.
// Inside TransactionScope.Execute all of them share the same transaction.
type Repositories interface {
	Invoices() ledger.InvoiceRepository
	Payments() ledger.PaymentRepository
	Orders() ledger.OrderRepository
	Commissions() ledger.CommissionRepository
	Customers() ledger.CustomerRepository
	OperationLogs() ledger.OperationLogRepository
	// OrderDependents returns the collaborator tables a cascade clears, in deletion order
	OrderDependents() []ledger.OrderDependentRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a transaction.
// Useful for tests and for stores without transaction support.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over repos
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
