package persistence

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOperationLogRepository implements OperationLogRepository using GORM
type GormOperationLogRepository struct {
	db *gorm.DB
}

// NewGormOperationLogRepository creates a new GormOperationLogRepository
func NewGormOperationLogRepository(db *gorm.DB) *GormOperationLogRepository {
	return &GormOperationLogRepository{db: db}
}

// Create inserts a started log
func (r *GormOperationLogRepository) Create(ctx context.Context, log *ledger.OperationLog) error {
	return storeError("operation_log.create", r.db.WithContext(ctx).Create(models.OperationLogModelFromDomain(log)).Error)
}

// Save writes the current state of a log
func (r *GormOperationLogRepository) Save(ctx context.Context, log *ledger.OperationLog) error {
	return storeError("operation_log.save", r.db.WithContext(ctx).Save(models.OperationLogModelFromDomain(log)).Error)
}

// FindByTarget returns the logs of a target, oldest first
func (r *GormOperationLogRepository) FindByTarget(ctx context.Context, targetID uuid.UUID) ([]*ledger.OperationLog, error) {
	var list []models.OperationLogModel
	if err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, storeError("operation_log.find_by_target", err)
	}
	out := make([]*ledger.OperationLog, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToDomain())
	}
	return out, nil
}

var _ ledger.OperationLogRepository = (*GormOperationLogRepository)(nil)
