package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cascade step names, also the keys of CascadeResult.Deleted
const (
	stepFindInvoice     = "find_invoice"
	stepInvoiceItems    = "invoice_items"
	stepInvoicePayments = "invoice_payments"
	stepInvoice         = "invoice"
	stepOrderPayments   = "order_payments"
	stepCommissions     = "commissions"
	stepOrder           = "order"
)

// cascadeStep deletes one kind of row and reports how many went
type cascadeStep struct {
	name string
	run  func(ctx context.Context, repos Repositories) (int64, error)
}

// CascadeService is the cascade deletion coordinator for orders
type CascadeService struct {
	core
	mode CascadeMode
}

// NewCascadeService creates a new CascadeService. An empty or unknown opts.CascadeMode
// falls back to CascadeTransactional.
func NewCascadeService(repos Repositories, scope TransactionScope, opts Options) *CascadeService {
	mode := opts.CascadeMode
	if !mode.IsValid() {
		mode = CascadeTransactional
	}
	return &CascadeService{core: newCore(repos, scope, opts, "cascade_service"), mode: mode}
}

// Mode returns the default cascade mode
func (s *CascadeService) Mode() CascadeMode {
	return s.mode
}

// DeleteOrderCascade removes an order and every record that references it, in dependency order:
// the linked invoice's items, its payments and the invoice itself, then the order's own payments,
// commissions and collaborator rows, and finally the order.
//
// An empty mode uses the service default. In transactional mode any failing step rolls the whole
// cascade back. In best-effort mode failing dependent steps are logged and skipped and only a
// failure of the final order delete is returned.
func (s *CascadeService) DeleteOrderCascade(ctx context.Context, orderID uuid.UUID, mode CascadeMode) (result *CascadeResult, err error) {
	if mode == "" {
		mode = s.mode
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("INVALID_CASCADE_MODE", fmt.Sprintf("Unknown cascade mode %q", mode))
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "order", "delete_cascade")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrCascadeMode, string(mode),
	)
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationDeleteOrderCascade, started, err) }()

	order, err := s.repos.Orders().FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	opLog := s.beginOperation(ctx, ledger.OperationDeleteOrderCascade, orderID)
	var inv *ledger.Invoice
	if mode == CascadeTransactional {
		result, inv, err = s.runTransactional(ctx, order, opLog)
	} else {
		result, inv, err = s.runBestEffort(ctx, order, opLog)
	}
	s.finishOperation(ctx, opLog, failedStep(err, stepFindInvoice), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.CascadeCompleted(ctx, string(mode), len(result.SkippedSteps))
	s.logger.Info("Order cascade deleted",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("mode", string(mode)),
		zap.Any("deleted", result.Deleted),
		zap.Strings("skipped_steps", result.SkippedSteps))

	var invoices []*ledger.Invoice
	if inv != nil && result.InvoiceID != nil {
		inv.MarkDeleted()
		invoices = append(invoices, inv)
	}
	s.publish(ctx, invoices, ledger.NewOrderCascadeDeletedEvent(order, result.InvoiceID, result.SkippedSteps))
	return result, nil
}

// runTransactional executes every step in one transaction; the first failure aborts and rolls back
func (s *CascadeService) runTransactional(ctx context.Context, order *ledger.Order, opLog *ledger.OperationLog) (*CascadeResult, *ledger.Invoice, error) {
	var (
		result *CascadeResult
		inv    *ledger.Invoice
	)
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		result = newCascadeResult(order.ID, CascadeTransactional)
		opLog.CompletedSteps = opLog.CompletedSteps[:0]

		found, err := repos.Invoices().FindByOrderID(ctx, order.ID)
		switch {
		case err == nil:
			inv = found
		case shared.IsNotFound(err):
			inv = nil
		default:
			return atStep(stepFindInvoice, cascadeFailure(stepFindInvoice, err))
		}
		opLog.StepCompleted(stepFindInvoice)

		for _, step := range s.steps(order.ID, inv, repos) {
			n, err := step.run(ctx, repos)
			if err != nil {
				s.logger.Error("Cascade step failed, rolling back",
					zap.String("order_id", order.ID.String()),
					zap.String("step", step.name),
					zap.Error(err))
				return atStep(step.name, cascadeFailure(step.name, err))
			}
			result.Deleted[step.name] = n
			opLog.StepCompleted(step.name)
			s.logger.Debug("Cascade step done",
				zap.String("order_id", order.ID.String()),
				zap.String("step", step.name),
				zap.Int64("rows", n))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if inv != nil {
		result.InvoiceID = &inv.ID
	}
	return result, inv, nil
}

// runBestEffort executes each step on its own against the store. Dependent step failures are
// logged and skipped; only the final order delete can fail the call.
func (s *CascadeService) runBestEffort(ctx context.Context, order *ledger.Order, opLog *ledger.OperationLog) (*CascadeResult, *ledger.Invoice, error) {
	result := newCascadeResult(order.ID, CascadeBestEffort)

	inv, err := s.repos.Invoices().FindByOrderID(ctx, order.ID)
	switch {
	case err == nil:
		opLog.StepCompleted(stepFindInvoice)
	case shared.IsNotFound(err):
		inv = nil
		opLog.StepCompleted(stepFindInvoice)
	default:
		inv = nil
		s.skip(order.ID, stepFindInvoice, err, result, opLog)
	}

	steps := s.steps(order.ID, inv, s.repos)
	last := len(steps) - 1
	invoiceRemoved := false
	for i, step := range steps {
		n, err := step.run(ctx, s.repos)
		if err != nil {
			if i == last {
				s.logger.Error("Order delete failed",
					zap.String("order_id", order.ID.String()),
					zap.Strings("skipped_steps", result.SkippedSteps),
					zap.Error(err))
				return nil, nil, atStep(step.name, err)
			}
			s.skip(order.ID, step.name, err, result, opLog)
			continue
		}
		if step.name == stepInvoice {
			invoiceRemoved = true
		}
		result.Deleted[step.name] = n
		opLog.StepCompleted(step.name)
		s.logger.Debug("Cascade step done",
			zap.String("order_id", order.ID.String()),
			zap.String("step", step.name),
			zap.Int64("rows", n))
	}
	if inv != nil && invoiceRemoved {
		result.InvoiceID = &inv.ID
	}
	return result, inv, nil
}

func (s *CascadeService) skip(orderID uuid.UUID, step string, err error, result *CascadeResult, opLog *ledger.OperationLog) {
	s.logger.Error("Cascade step failed, continuing",
		zap.String("order_id", orderID.String()),
		zap.String("step", step),
		zap.Error(err))
	result.SkippedSteps = append(result.SkippedSteps, step)
	opLog.StepSkipped(step, err)
}

// steps lists the deletions in dependency order. The order itself is always last.
func (s *CascadeService) steps(orderID uuid.UUID, inv *ledger.Invoice, repos Repositories) []cascadeStep {
	steps := make([]cascadeStep, 0, 8)
	if inv != nil {
		invoiceID := inv.ID
		steps = append(steps,
			cascadeStep{name: stepInvoiceItems, run: func(ctx context.Context, r Repositories) (int64, error) {
				return r.Invoices().DeleteItemsByInvoice(ctx, invoiceID)
			}},
			cascadeStep{name: stepInvoicePayments, run: func(ctx context.Context, r Repositories) (int64, error) {
				return r.Payments().DeleteByInvoice(ctx, invoiceID)
			}},
			cascadeStep{name: stepInvoice, run: func(ctx context.Context, r Repositories) (int64, error) {
				if err := r.Invoices().Delete(ctx, invoiceID); err != nil {
					return 0, err
				}
				return 1, nil
			}},
		)
	}
	steps = append(steps,
		cascadeStep{name: stepOrderPayments, run: func(ctx context.Context, r Repositories) (int64, error) {
			return r.Payments().DeleteByOrder(ctx, orderID)
		}},
		cascadeStep{name: stepCommissions, run: func(ctx context.Context, r Repositories) (int64, error) {
			return r.Commissions().DeleteByOrder(ctx, orderID)
		}},
	)
	for i, dep := range repos.OrderDependents() {
		idx := i
		steps = append(steps, cascadeStep{name: dep.Name(), run: func(ctx context.Context, r Repositories) (int64, error) {
			return r.OrderDependents()[idx].DeleteByOrder(ctx, orderID)
		}})
	}
	steps = append(steps, cascadeStep{name: stepOrder, run: func(ctx context.Context, r Repositories) (int64, error) {
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return 0, err
		}
		return 1, nil
	}})
	return steps
}

func newCascadeResult(orderID uuid.UUID, mode CascadeMode) *CascadeResult {
	return &CascadeResult{
		OrderID: orderID,
		Mode:    mode,
		Deleted: make(map[string]int64),
	}
}

// cascadeFailure wraps a failed step as a conflict so callers know nothing was removed
func cascadeFailure(step string, err error) error {
	if shared.IsNotFound(err) && step == stepOrder {
		return err
	}
	return shared.NewConflictError("CASCADE_STEP_FAILED",
		fmt.Sprintf("Order cascade failed at %s; nothing was deleted", step), err)
}
