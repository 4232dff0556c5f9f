package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	stepInsertSummary   = "insert_summary"
	stepAllocatePrefix  = "allocate:"
	stepLoadPayment     = "load_payment"
	stepReverseInvoice  = "reverse_invoice"
	stepDeletePayment   = "delete_payment"
	stepDeleteAllocated = "delete_allocations"
)

// PaymentService is the payment allocation engine: it lists what a customer owes and splits
// one collected payment across the invoices chosen by the caller.
type PaymentService struct {
	core
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repos Repositories, scope TransactionScope, opts Options) *PaymentService {
	return &PaymentService{core: newCore(repos, scope, opts, "payment_service")}
}

// ListOutstanding returns the customer's invoices whose status is not paid, oldest first
func (s *PaymentService) ListOutstanding(ctx context.Context, customerID uuid.UUID) ([]OutstandingInvoice, error) {
	if _, err := s.repos.Customers().FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	invoices, err := s.repos.Invoices().FindOutstandingByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	result := make([]OutstandingInvoice, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, OutstandingInvoice{Invoice: inv, Outstanding: inv.Outstanding()})
	}
	return result, nil
}

// CapAllocation caps a requested amount against an invoice's current outstanding balance
func (s *PaymentService) CapAllocation(ctx context.Context, invoiceID uuid.UUID, requested valueobject.Money) (valueobject.Money, error) {
	inv, err := s.repos.Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		return valueobject.Zero(), err
	}
	return ledger.CapAllocation(inv, requested), nil
}

// RecordPayment inserts one summary payment for the positive allocation total, then applies
// each positive allocation to its invoice and inserts the matching allocation payment.
// Everything runs in one transaction; an allocation above the invoice's outstanding balance
// fails the whole call unless CapToOutstanding is set.
func (s *PaymentService) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (result *PaymentSummary, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, cmd.CustomerID.String(),
		telemetry.SpanAttrPaymentMethod, string(cmd.Method),
		telemetry.SpanAttrAllocationCount, len(cmd.Allocations),
	)
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationRecordPayment, started, err) }()

	if err = ledger.ValidateAllocations(cmd.Allocations); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	allocations := ledger.PositiveAllocations(cmd.Allocations)

	// Validate method and customer before anything is written
	if _, err = ledger.NewSummaryPayment(cmd.CustomerID, valueobject.Cent, cmd.Method, "", ""); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err = s.repos.Customers().FindByID(ctx, cmd.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var touched []*ledger.Invoice
	opLog := s.beginOperation(ctx, ledger.OperationRecordPayment, cmd.CustomerID)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		touched = touched[:0]
		applied, err := s.resolveAllocations(ctx, repos, cmd, allocations)
		if err != nil {
			return atStep(stepLoadInvoice, err)
		}
		total := ledger.AllocationTotal(applied)
		if !total.IsPositive() {
			return atStep(stepLoadInvoice, shared.NewValidationError("NOTHING_OUTSTANDING",
				"None of the selected invoices has an outstanding balance"))
		}

		summary, err := ledger.NewSummaryPayment(cmd.CustomerID, total, cmd.Method, cmd.Reference, cmd.Notes)
		if err != nil {
			return atStep(stepInsertSummary, err)
		}
		if err := repos.Payments().Create(ctx, summary); err != nil {
			return atStep(stepInsertSummary, err)
		}
		opLog.StepCompleted(stepInsertSummary)
		s.logger.Debug("Summary payment inserted",
			zap.String("payment_id", summary.ID.String()),
			zap.String("amount", total.String()))

		results := make([]AllocationResult, 0, len(applied))
		for i, alloc := range applied {
			step := stepAllocatePrefix + alloc.InvoiceID.String()
			if !alloc.Amount.IsPositive() {
				continue
			}
			inv, err := s.mutateInvoice(ctx, repos, alloc.InvoiceID, ledger.OperationRecordPayment, func(current *ledger.Invoice) error {
				return current.ApplyPayment(alloc.Amount)
			})
			if err != nil {
				s.logger.Error("Allocation failed",
					zap.String("invoice_id", alloc.InvoiceID.String()),
					zap.String("amount", alloc.Amount.String()),
					zap.Error(err))
				return atStep(step, err)
			}

			payment, err := ledger.NewAllocationPayment(summary, inv.ID, alloc.Amount)
			if err != nil {
				return atStep(step, err)
			}
			if err := repos.Payments().Create(ctx, payment); err != nil {
				return atStep(step, err)
			}
			if err := s.syncOrderPaymentStatus(ctx, repos, inv); err != nil {
				return atStep(step, err)
			}
			opLog.StepCompleted(step)
			touched = append(touched, inv)

			s.logger.Debug("Allocation applied",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("amount", alloc.Amount.String()),
				zap.String("amount_paid", inv.AmountPaid.String()),
				zap.String("status", inv.Status.String()))

			results = append(results, AllocationResult{
				PaymentID:     payment.ID,
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Requested:     allocations[i].Amount,
				Applied:       alloc.Amount,
				AmountPaid:    inv.AmountPaid,
				Outstanding:   inv.Outstanding(),
				Status:        inv.Status,
			})
		}

		result = &PaymentSummary{Summary: summary, Allocations: results}
		return nil
	})
	s.finishOperation(ctx, opLog, failedStep(err, stepLoadInvoice), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.PaymentRecorded(ctx, string(ledger.PaymentOriginSummary), string(cmd.Method), result.Summary.Amount.Cents())
	for _, r := range result.Allocations {
		s.metrics.PaymentRecorded(ctx, string(ledger.PaymentOriginAllocation), string(cmd.Method), r.Applied.Cents())
		s.metrics.AllocationApplied(ctx, r.Status.String())
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, result.Summary.ID.String())
	s.logger.Info("Payment recorded",
		zap.String("payment_id", result.Summary.ID.String()),
		zap.String("customer_id", cmd.CustomerID.String()),
		zap.String("amount", result.Summary.Amount.String()),
		zap.Int("allocations", len(result.Allocations)))
	s.publish(ctx, touched, ledger.NewPaymentRecordedEvent(result.Summary, len(result.Allocations)))
	return result, nil
}

// resolveAllocations checks every target invoice belongs to the customer and, when requested,
// caps each amount against the invoice's outstanding balance. Repeated allocations to one
// invoice are capped against what the earlier ones leave.
func (s *PaymentService) resolveAllocations(
	ctx context.Context,
	repos Repositories,
	cmd RecordPaymentCommand,
	allocations []ledger.Allocation,
) ([]ledger.Allocation, error) {
	pending := make(map[uuid.UUID]valueobject.Money)
	out := make([]ledger.Allocation, 0, len(allocations))
	for _, alloc := range allocations {
		inv, err := repos.Invoices().FindByID(ctx, alloc.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv.CustomerID != cmd.CustomerID {
			return nil, shared.NewValidationError("INVOICE_CUSTOMER_MISMATCH",
				fmt.Sprintf("Invoice %s does not belong to customer %s", inv.InvoiceNumber, cmd.CustomerID))
		}
		amount := alloc.Amount
		if cmd.CapToOutstanding {
			inv.AmountPaid = inv.AmountPaid.Add(pending[inv.ID])
			amount = ledger.CapAllocation(inv, amount)
			pending[inv.ID] = pending[inv.ID].Add(amount)
		}
		out = append(out, ledger.Allocation{InvoiceID: alloc.InvoiceID, Amount: amount})
	}
	return out, nil
}

// DeletePayment removes one payment and reverses its effect on the linked invoice.
// Deleting a summary payment removes its allocation rows and reverses each of them.
func (s *PaymentService) DeletePayment(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id.String())
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationDeletePayment, started, err) }()

	var (
		deleted *ledger.Payment
		touched []*ledger.Invoice
	)
	opLog := s.beginOperation(ctx, ledger.OperationDeletePayment, id)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		touched = touched[:0]
		payment, err := repos.Payments().FindByID(ctx, id)
		if err != nil {
			return atStep(stepLoadPayment, err)
		}
		deleted = payment

		targets := []*ledger.Payment{payment}
		if payment.Origin == ledger.PaymentOriginSummary {
			children, err := repos.Payments().FindBySummary(ctx, payment.ID)
			if err != nil {
				return atStep(stepDeleteAllocated, err)
			}
			targets = append(children, payment)
		}

		for _, p := range targets {
			if p.AppliesToInvoice() {
				inv, err := s.mutateInvoice(ctx, repos, *p.InvoiceID, ledger.OperationDeletePayment, func(current *ledger.Invoice) error {
					current.ReversePayment(p.Amount)
					return nil
				})
				if err != nil && !shared.IsNotFound(err) {
					return atStep(stepReverseInvoice, err)
				}
				if inv != nil {
					if err := s.syncOrderPaymentStatus(ctx, repos, inv); err != nil {
						return atStep(stepSyncOrderStatus, err)
					}
					touched = append(touched, inv)
				}
			}
			if err := repos.Payments().Delete(ctx, p.ID); err != nil {
				return atStep(stepDeletePayment, err)
			}
			opLog.StepCompleted(stepDeletePayment + ":" + p.ID.String())
		}
		return nil
	})
	s.finishOperation(ctx, opLog, failedStep(err, stepLoadPayment), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Payment deleted",
		zap.String("payment_id", id.String()),
		zap.String("origin", string(deleted.Origin)),
		zap.String("amount", deleted.Amount.String()))
	s.publish(ctx, touched, ledger.NewPaymentDeletedEvent(deleted))
	return nil
}
