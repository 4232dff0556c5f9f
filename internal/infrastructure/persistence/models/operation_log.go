package models

import (
	"encoding/json"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OperationLogModel is the persisted step log of a multi-step ledger operation
type OperationLogModel struct {
	BaseModel
	Operation      string         `gorm:"type:varchar(50);not null;index"`
	TargetID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status         string         `gorm:"type:varchar(20);not null;index"`
	CompletedSteps datatypes.JSON `gorm:"not null"`
	SkippedSteps   datatypes.JSON
	FailedStep     string `gorm:"type:varchar(100)"`
	Error          string `gorm:"type:text"`
	FinishedAt     *time.Time
}

// TableName returns the table name for GORM
func (OperationLogModel) TableName() string {
	return "ledger_operation_logs"
}

// ToDomain converts the persistence model to a domain OperationLog
func (m *OperationLogModel) ToDomain() *ledger.OperationLog {
	log := &ledger.OperationLog{
		BaseEntity:     m.BaseModel.ToDomain(),
		Operation:      m.Operation,
		TargetID:       m.TargetID,
		Status:         ledger.OperationStatus(m.Status),
		CompletedSteps: decodeSteps(m.CompletedSteps),
		FailedStep:     m.FailedStep,
		Error:          m.Error,
		FinishedAt:     m.FinishedAt,
	}
	if skipped := decodeSteps(m.SkippedSteps); len(skipped) > 0 {
		log.SkippedSteps = skipped
	}
	return log
}

// FromDomain populates the persistence model from a domain OperationLog
func (m *OperationLogModel) FromDomain(l *ledger.OperationLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.Operation = l.Operation
	m.TargetID = l.TargetID
	m.Status = string(l.Status)
	m.CompletedSteps = encodeSteps(l.CompletedSteps)
	m.SkippedSteps = encodeSteps(l.SkippedSteps)
	m.FailedStep = l.FailedStep
	m.Error = l.Error
	m.FinishedAt = l.FinishedAt
}

// OperationLogModelFromDomain creates a new persistence model from a domain OperationLog
func OperationLogModelFromDomain(l *ledger.OperationLog) *OperationLogModel {
	m := &OperationLogModel{}
	m.FromDomain(l)
	return m
}

func encodeSteps(steps []string) datatypes.JSON {
	if steps == nil {
		steps = []string{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

func decodeSteps(data datatypes.JSON) []string {
	steps := make([]string, 0)
	if len(data) == 0 {
		return steps
	}
	if err := json.Unmarshal(data, &steps); err != nil {
		return make([]string, 0)
	}
	return steps
}

// All returns every model the ledger owns, in creation order
func All() []any {
	return []any{
		&CustomerModel{},
		&OrderModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PaymentModel{},
		&CommissionModel{},
		&OrderFileModel{},
		&OrderCommentModel{},
		&OrderHistoryModel{},
		&NotificationModel{},
		&OperationLogModel{},
	}
}
