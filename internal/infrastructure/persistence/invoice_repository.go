package persistence

import (
	"context"
	"fmt"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	})
}

// FindByID finds an invoice by ID, with items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, findError("invoice.find", "Invoice", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByOrderID finds the invoice linked to an order, with items
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, findError("invoice.find_by_order", "Invoice for order", orderID.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByOrderIDs loads the invoices of the given orders keyed by order id
func (r *GormInvoiceRepository) FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*ledger.Invoice, error) {
	result := make(map[uuid.UUID]*ledger.Invoice, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	var list []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, storeError("invoice.find_by_orders", err)
	}
	for i := range list {
		if list[i].OrderID == nil {
			continue
		}
		if _, ok := result[*list[i].OrderID]; !ok {
			result[*list[i].OrderID] = list[i].ToDomain()
		}
	}
	return result, nil
}

// FindOutstandingByCustomer returns the customer's invoices that are not paid, oldest first
func (r *GormInvoiceRepository) FindOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	var list []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status <> ?", customerID, string(ledger.InvoiceStatusPaid)).
		Order("invoice_date ASC, created_at ASC").
		Find(&list).Error; err != nil {
		return nil, storeError("invoice.find_outstanding", err)
	}
	return toInvoices(list), nil
}

// FindNonDraft returns every issued invoice
func (r *GormInvoiceRepository) FindNonDraft(ctx context.Context) ([]*ledger.Invoice, error) {
	var list []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status <> ?", string(ledger.InvoiceStatusDraft)).
		Find(&list).Error; err != nil {
		return nil, storeError("invoice.find_non_draft", err)
	}
	return toInvoices(list), nil
}

// ExistsByNumber checks if an invoice number is taken
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, storeError("invoice.exists", err)
	}
	return count > 0, nil
}

// Create inserts an invoice and its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return storeError("invoice.create", r.db.WithContext(ctx).Create(model).Error)
}

// SaveWithLock writes the invoice header only if the stored version is the one the caller
// loaded (invoice.Version - 1, since every mutation bumps the version once)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	expected := invoice.Version - 1
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, expected).
		Updates(map[string]any{
			"customer_id":  invoice.CustomerID,
			"order_id":     invoice.OrderID,
			"invoice_date": invoice.InvoiceDate,
			"due_date":     invoice.DueDate,
			"subtotal":     invoice.Subtotal.Amount(),
			"tax_amount":   invoice.TaxAmount.Amount(),
			"total_amount": invoice.TotalAmount.Amount(),
			"amount_paid":  invoice.AmountPaid.Amount(),
			"status":       string(invoice.Status),
			"project_name": invoice.ProjectName,
			"notes":        invoice.Notes,
			"version":      invoice.Version,
			"updated_at":   invoice.UpdatedAt,
		})
	if result.Error != nil {
		return storeError("invoice.save", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Count(&count).Error; err != nil {
		return storeError("invoice.save", err)
	}
	if count == 0 {
		return shared.NewNotFoundError("Invoice", invoice.ID.String())
	}
	return shared.NewConflictError(shared.ErrConcurrencyConflict.Code,
		fmt.Sprintf("Invoice %s was modified by another writer", invoice.InvoiceNumber), nil)
}

// SaveItems applies the item diff of an edit
func (r *GormInvoiceRepository) SaveItems(ctx context.Context, invoiceID uuid.UUID, changes *ledger.ItemChanges) error {
	if changes == nil {
		return nil
	}
	db := r.db.WithContext(ctx)
	if len(changes.Removed) > 0 {
		if err := db.Where("invoice_id = ? AND id IN ?", invoiceID, changes.Removed).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return storeError("invoice_items.delete", err)
		}
	}
	for i := range changes.Updated {
		model := models.InvoiceItemModelFromDomain(&changes.Updated[i])
		if err := db.Select("*").Omit("created_at").Where("invoice_id = ?", invoiceID).Updates(model).Error; err != nil {
			return storeError("invoice_items.update", err)
		}
	}
	if len(changes.Added) > 0 {
		list := make([]*models.InvoiceItemModel, 0, len(changes.Added))
		for i := range changes.Added {
			list = append(list, models.InvoiceItemModelFromDomain(&changes.Added[i]))
		}
		if err := db.Create(&list).Error; err != nil {
			return storeError("invoice_items.create", err)
		}
	}
	return nil
}

// DeleteItemsByInvoice removes all items of an invoice
func (r *GormInvoiceRepository) DeleteItemsByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceItemModel{})
	if result.Error != nil {
		return 0, storeError("invoice_items.delete_by_invoice", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes the invoice row
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return storeError("invoice.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Invoice", id.String())
	}
	return nil
}

func toInvoices(list []models.InvoiceModel) []*ledger.Invoice {
	out := make([]*ledger.Invoice, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToDomain())
	}
	return out
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
