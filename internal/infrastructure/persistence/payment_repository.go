package persistence

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return storeError("payment.create", r.db.WithContext(ctx).Create(model).Error)
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, findError("payment.find", "Payment", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the payments of an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*ledger.Payment, error) {
	return r.findWhere(ctx, "payment.find_by_invoice", "invoice_id = ?", invoiceID)
}

// FindBySummary returns the allocation rows of a summary payment
func (r *GormPaymentRepository) FindBySummary(ctx context.Context, summaryID uuid.UUID) ([]*ledger.Payment, error) {
	return r.findWhere(ctx, "payment.find_by_summary", "summary_id = ?", summaryID)
}

func (r *GormPaymentRepository) findWhere(ctx context.Context, op, query string, args ...any) ([]*ledger.Payment, error) {
	var list []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("paid_at ASC, created_at ASC").
		Find(&list).Error; err != nil {
		return nil, storeError(op, err)
	}
	out := make([]*ledger.Payment, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToDomain())
	}
	return out, nil
}

// DeleteByInvoiceAndOrigin removes an invoice's payments of one origin
func (r *GormPaymentRepository) DeleteByInvoiceAndOrigin(ctx context.Context, invoiceID uuid.UUID, origin ledger.PaymentOrigin) (int64, error) {
	return r.deleteWhere(ctx, "payment.delete_by_origin", "invoice_id = ? AND origin = ?", invoiceID, string(origin))
}

// DeleteByInvoice removes every payment linked to an invoice
func (r *GormPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, "payment.delete_by_invoice", "invoice_id = ?", invoiceID)
}

// DeleteByOrder removes payments linked directly to an order
func (r *GormPaymentRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, "payment.delete_by_order", "order_id = ?", orderID)
}

func (r *GormPaymentRepository) deleteWhere(ctx context.Context, op, query string, args ...any) (int64, error) {
	result := r.db.WithContext(ctx).Where(query, args...).Delete(&models.PaymentModel{})
	if result.Error != nil {
		return 0, storeError(op, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes one payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return storeError("payment.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Payment", id.String())
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
