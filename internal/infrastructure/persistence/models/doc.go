// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel (optimistic locking version)
//   - invoice.go: invoices and invoice_items
//   - payment.go: payments
//   - order.go: customers, orders, commissions and the order collaborator tables
//   - operation_log.go: ledger_operation_logs step log
package models
