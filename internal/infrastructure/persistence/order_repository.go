package persistence

import (
	"context"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order
func (r *GormOrderRepository) Create(ctx context.Context, order *ledger.Order) error {
	if order.PaymentStatus == "" {
		order.PaymentStatus = ledger.OrderPaymentUnpaid
	}
	return storeError("order.create", r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error)
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, findError("order.find", "Order", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads orders keyed by id; missing ids are absent from the map
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Order, error) {
	result := make(map[uuid.UUID]*ledger.Order, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var list []models.OrderModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, storeError("order.find_by_ids", err)
	}
	for i := range list {
		result[list[i].ID] = list[i].ToDomain()
	}
	return result, nil
}

// UpdatePaymentStatus stores the payment status derived from the order's invoice
func (r *GormOrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status ledger.OrderPaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": string(status),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return storeError("order.update_payment_status", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Order", id.String())
	}
	return nil
}

// Delete removes the order row
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return storeError("order.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Order", id.String())
	}
	return nil
}

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create inserts a customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *ledger.Customer) error {
	return storeError("customer.create", r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error)
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, findError("customer.find", "Customer", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads customers keyed by id
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Customer, error) {
	result := make(map[uuid.UUID]*ledger.Customer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var list []models.CustomerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, storeError("customer.find_by_ids", err)
	}
	for i := range list {
		result[list[i].ID] = list[i].ToDomain()
	}
	return result, nil
}

// GormCommissionRepository implements CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// Create inserts a commission
func (r *GormCommissionRepository) Create(ctx context.Context, commission *ledger.Commission) error {
	return storeError("commission.create", r.db.WithContext(ctx).Create(models.CommissionModelFromDomain(commission)).Error)
}

// FindAll lists commissions, newest first
func (r *GormCommissionRepository) FindAll(ctx context.Context, filter ledger.CommissionFilter) ([]*ledger.Commission, error) {
	query := r.db.WithContext(ctx).Model(&models.CommissionModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	var list []models.CommissionModel
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, storeError("commission.find_all", err)
	}
	out := make([]*ledger.Commission, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToDomain())
	}
	return out, nil
}

// DeleteByOrder removes the commissions earned on an order
func (r *GormCommissionRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.CommissionModel{})
	if result.Error != nil {
		return 0, storeError("commission.delete_by_order", result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure the repositories implement their interfaces
var (
	_ ledger.OrderRepository      = (*GormOrderRepository)(nil)
	_ ledger.CustomerRepository   = (*GormCustomerRepository)(nil)
	_ ledger.CommissionRepository = (*GormCommissionRepository)(nil)
)
