package persistence

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tableModel is a persistence model keyed by order_id
type tableModel interface {
	TableName() string
}

// GormOrderDependentRepository counts and deletes the rows of one collaborator table by order_id
type GormOrderDependentRepository[M tableModel] struct {
	db *gorm.DB
}

// NewGormOrderDependentRepository creates a repository over the table of M
func NewGormOrderDependentRepository[M tableModel](db *gorm.DB) *GormOrderDependentRepository[M] {
	return &GormOrderDependentRepository[M]{db: db}
}

// Name returns the table name
func (r *GormOrderDependentRepository[M]) Name() string {
	var m M
	return m.TableName()
}

// CountByOrder counts the rows referencing orderID
func (r *GormOrderDependentRepository[M]) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(M)).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return 0, storeError(r.Name()+".count_by_order", err)
	}
	return count, nil
}

// DeleteByOrder removes the rows referencing orderID
func (r *GormOrderDependentRepository[M]) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(new(M))
	if result.Error != nil {
		return 0, storeError(r.Name()+".delete_by_order", result.Error)
	}
	return result.RowsAffected, nil
}

// NewOrderDependentRepositories returns the collaborator tables in cascade order
func NewOrderDependentRepositories(db *gorm.DB) []ledger.OrderDependentRepository {
	return []ledger.OrderDependentRepository{
		NewGormOrderDependentRepository[models.OrderFileModel](db),
		NewGormOrderDependentRepository[models.OrderCommentModel](db),
		NewGormOrderDependentRepository[models.OrderHistoryModel](db),
		NewGormOrderDependentRepository[models.NotificationModel](db),
	}
}

var _ ledger.OrderDependentRepository = (*GormOrderDependentRepository[models.OrderFileModel])(nil)
