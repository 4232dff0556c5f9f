package ledger

import (
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// OperationStatus is the state of a multi-step ledger operation
type OperationStatus string

const (
	OperationStarted   OperationStatus = "started"
	OperationCompleted OperationStatus = "completed"
	OperationFailed    OperationStatus = "failed"
)

// Operation names written to the step log
const (
	OperationRecordPayment      = "record_payment"
	OperationSetStatus          = "set_status"
	OperationEditInvoice        = "edit_invoice"
	OperationDeleteInvoice      = "delete_invoice"
	OperationDeleteOrderCascade = "delete_order_cascade"
	OperationDeletePayment      = "delete_payment"
)

// OperationLog is the persisted step log of one multi-step operation.
// A row left in started state marks a run that never finished.
type OperationLog struct {
	shared.BaseEntity
	Operation      string          `json:"operation"`
	TargetID       uuid.UUID       `json:"target_id"`
	Status         OperationStatus `json:"status"`
	CompletedSteps []string        `json:"completed_steps"`
	SkippedSteps   []string        `json:"skipped_steps,omitempty"`
	FailedStep     string          `json:"failed_step,omitempty"`
	Error          string          `json:"error,omitempty"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

// NewOperationLog starts a log for operation on target
func NewOperationLog(operation string, targetID uuid.UUID) *OperationLog {
	return &OperationLog{
		BaseEntity:     shared.NewBaseEntity(),
		Operation:      operation,
		TargetID:       targetID,
		Status:         OperationStarted,
		CompletedSteps: make([]string, 0),
	}
}

// StepCompleted appends a finished step
func (l *OperationLog) StepCompleted(step string) {
	l.CompletedSteps = append(l.CompletedSteps, step)
}

// StepSkipped records a step that failed without stopping the operation
func (l *OperationLog) StepSkipped(step string, err error) {
	l.SkippedSteps = append(l.SkippedSteps, step)
	if err != nil && l.Error == "" {
		l.Error = err.Error()
	}
}

// Complete marks the operation finished
func (l *OperationLog) Complete() {
	now := time.Now()
	l.Status = OperationCompleted
	l.FinishedAt = &now
	l.UpdatedAt = now
}

// Fail marks the operation failed at step
func (l *OperationLog) Fail(step string, err error) {
	now := time.Now()
	l.Status = OperationFailed
	l.FailedStep = step
	if err != nil {
		l.Error = err.Error()
	}
	l.FinishedAt = &now
	l.UpdatedAt = now
}
