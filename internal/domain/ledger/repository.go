package ledger

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence.
// Read methods return a not-found DomainError when nothing matches and a store DomainError
// for any other failure.
type InvoiceRepository interface {
	// FindByID loads an invoice with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByOrderID loads the invoice linked to an order, with items
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	// FindByOrderIDs loads the invoices linked to the given orders, keyed by order id (no items)
	FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*Invoice, error)

	// FindOutstandingByCustomer returns invoices with status != paid ordered by invoice_date ascending
	FindOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Invoice, error)

	// FindNonDraft returns every invoice whose status is not draft (no items)
	FindNonDraft(ctx context.Context) ([]*Invoice, error)

	// ExistsByNumber checks whether an invoice number is taken
	ExistsByNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// Create inserts an invoice together with its items
	Create(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates the invoice header if the stored version is Version-1.
	// Returns a CONCURRENCY_CONFLICT error when another writer got there first.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// SaveItems applies an item diff produced by an edit
	SaveItems(ctx context.Context, invoiceID uuid.UUID, changes *ItemChanges) error

	// DeleteItemsByInvoice removes every item of an invoice
	DeleteItemsByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// Delete removes the invoice row
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice returns the payments linked to an invoice, oldest first
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)

	// FindBySummary returns the allocation rows of a summary payment
	FindBySummary(ctx context.Context, summaryID uuid.UUID) ([]*Payment, error)

	DeleteByInvoiceAndOrigin(ctx context.Context, invoiceID uuid.UUID, origin PaymentOrigin) (int64, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository gives the ledger the slice of order persistence it needs
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status OrderPaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommissionRepository is read and delete-by-order only; commissions are computed elsewhere
type CommissionRepository interface {
	Create(ctx context.Context, commission *Commission) error
	FindAll(ctx context.Context, filter CommissionFilter) ([]*Commission, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// CustomerRepository defines the interface for customer lookups
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Customer, error)
}

// OrderDependentRepository is the delete-by-order contract of a collaborator table
type OrderDependentRepository interface {
	// Name is the table name, used as the cascade step name
	Name() string
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// OperationLogRepository persists step logs of multi-step operations
type OperationLogRepository interface {
	Create(ctx context.Context, log *OperationLog) error
	Save(ctx context.Context, log *OperationLog) error
	FindByTarget(ctx context.Context, targetID uuid.UUID) ([]*OperationLog, error)
}
