package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CascadeMode selects how delete_order_cascade treats failing dependent steps
type CascadeMode string

const (
	// CascadeTransactional deletes everything in one transaction or nothing at all
	CascadeTransactional CascadeMode = "transactional"
	// CascadeBestEffort logs and skips failing dependent steps; only the final order delete is surfaced
	CascadeBestEffort CascadeMode = "best_effort"
)

// IsValid checks if the cascade mode is valid
func (m CascadeMode) IsValid() bool {
	return m == CascadeTransactional || m == CascadeBestEffort
}

// DefaultMaxLockRetries is used when Options.MaxLockRetries is not positive
const DefaultMaxLockRetries = 3

// Options configures the ledger services
type Options struct {
	MaxLockRetries int
	CascadeMode    CascadeMode
	Publisher      shared.EventPublisher // optional
	Metrics        *telemetry.LedgerMetrics
	Logger         *zap.Logger
}

// core holds what every ledger service shares
type core struct {
	repos          Repositories
	scope          TransactionScope
	publisher      shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
	maxLockRetries int
}

func newCore(repos Repositories, scope TransactionScope, opts Options, name string) core {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := opts.MaxLockRetries
	if retries <= 0 {
		retries = DefaultMaxLockRetries
	}
	return core{
		repos:          repos,
		scope:          scope,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		logger:         logger.Named(name),
		maxLockRetries: retries,
	}
}

// mutateInvoice re-reads the invoice, applies mutate and writes it back with a version check.
// A lost race is retried with a fresh read up to maxLockRetries times.
func (c *core) mutateInvoice(
	ctx context.Context,
	repos Repositories,
	invoiceID uuid.UUID,
	operation string,
	mutate func(inv *ledger.Invoice) error,
) (*ledger.Invoice, error) {
	for attempt := 0; ; attempt++ {
		inv, err := repos.Invoices().FindByID(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if err := mutate(inv); err != nil {
			return nil, err
		}
		err = repos.Invoices().SaveWithLock(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= c.maxLockRetries {
			return nil, err
		}
		c.metrics.LockConflict(ctx, operation)
		c.logger.Warn("Invoice changed concurrently, retrying",
			zap.String("operation", operation),
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt+1),
		)
	}
}

// syncOrderPaymentStatus copies the invoice's status onto its order, if it has one
func (c *core) syncOrderPaymentStatus(ctx context.Context, repos Repositories, inv *ledger.Invoice) error {
	if inv.OrderID == nil {
		return nil
	}
	status := ledger.PaymentStatusFromInvoice(inv.Status)
	err := repos.Orders().UpdatePaymentStatus(ctx, *inv.OrderID, status)
	if shared.IsNotFound(err) {
		c.logger.Debug("Linked order missing, payment status not synced",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("order_id", inv.OrderID.String()))
		return nil
	}
	return err
}

// beginOperation writes the started row of a step log outside any transaction.
// A failure to write the log is logged and never blocks the operation.
func (c *core) beginOperation(ctx context.Context, operation string, targetID uuid.UUID) *ledger.OperationLog {
	log := ledger.NewOperationLog(operation, targetID)
	if err := c.repos.OperationLogs().Create(ctx, log); err != nil {
		c.logger.Warn("Failed to write operation log",
			zap.String("operation", operation),
			zap.String("target_id", targetID.String()),
			zap.Error(err))
	}
	return log
}

// finishOperation closes a step log as completed or failed at step
func (c *core) finishOperation(ctx context.Context, log *ledger.OperationLog, step string, err error) {
	if err != nil {
		log.Fail(step, err)
	} else {
		log.Complete()
	}
	if saveErr := c.repos.OperationLogs().Save(ctx, log); saveErr != nil {
		c.logger.Warn("Failed to update operation log",
			zap.String("operation", log.Operation),
			zap.String("target_id", log.TargetID.String()),
			zap.Error(saveErr))
	}
}

// publish sends the pending events of aggregates plus extra events after a commit
func (c *core) publish(ctx context.Context, invoices []*ledger.Invoice, extra ...shared.DomainEvent) {
	events := make([]shared.DomainEvent, 0, len(extra))
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		events = append(events, inv.GetDomainEvents()...)
		inv.ClearDomainEvents()
	}
	events = append(events, extra...)
	if c.publisher == nil || len(events) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, events...); err != nil {
		c.logger.Warn("Failed to publish ledger events", zap.Int("count", len(events)), zap.Error(err))
	}
}

// stepError tags err with the step that produced it
type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string { return fmt.Sprintf("%s: %v", e.step, e.err) }
func (e *stepError) Unwrap() error { return e.err }

func atStep(step string, err error) error {
	if err == nil {
		return nil
	}
	return &stepError{step: step, err: err}
}

// failedStep returns the step recorded in err, or fallback
func failedStep(err error, fallback string) string {
	var se *stepError
	if errors.As(err, &se) {
		return se.step
	}
	return fallback
}

// unwrapStep strips the step tag so callers see the domain error itself
func unwrapStep(err error) error {
	var se *stepError
	if errors.As(err, &se) {
		return se.err
	}
	return err
}
