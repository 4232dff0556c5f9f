package persistence

import (
	"context"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories builds every ledger repository over one *gorm.DB, which may be a transaction
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

// Invoices returns the invoice repository
func (r *GormRepositories) Invoices() ledger.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

// Payments returns the payment repository
func (r *GormRepositories) Payments() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

// Orders returns the order repository
func (r *GormRepositories) Orders() ledger.OrderRepository {
	return NewGormOrderRepository(r.db)
}

// Commissions returns the commission repository
func (r *GormRepositories) Commissions() ledger.CommissionRepository {
	return NewGormCommissionRepository(r.db)
}

// Customers returns the customer repository
func (r *GormRepositories) Customers() ledger.CustomerRepository {
	return NewGormCustomerRepository(r.db)
}

// OperationLogs returns the operation log repository
func (r *GormRepositories) OperationLogs() ledger.OperationLogRepository {
	return NewGormOperationLogRepository(r.db)
}

// OrderDependents returns the collaborator tables in cascade order
func (r *GormRepositories) OrderDependents() []ledger.OrderDependentRepository {
	return NewOrderDependentRepositories(r.db)
}

var (
	_ appledger.TransactionScope = (*GormTransactionScope)(nil)
	_ appledger.Repositories     = (*GormRepositories)(nil)
)
