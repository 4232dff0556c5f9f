package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step names used in operation logs and errors
const (
	stepLoadInvoice     = "load_invoice"
	stepSaveInvoice     = "save_invoice"
	stepSaveItems       = "save_items"
	stepDeleteItems     = "delete_items"
	stepDeletePayments  = "delete_payments"
	stepDeleteInvoice   = "delete_invoice"
	stepTogglePayment   = "status_toggle_payment"
	stepSyncOrderStatus = "sync_order_status"
)

// InvoiceService is the invoice lifecycle manager: it creates and edits invoices and their
// items, applies manual status transitions and owns invoice deletion.
type InvoiceService struct {
	core
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repos Repositories, scope TransactionScope, opts Options) *InvoiceService {
	return &InvoiceService{core: newCore(repos, scope, opts, "invoice_service")}
}

// CreateInvoice creates a draft invoice for an existing customer
func (s *InvoiceService) CreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) (inv *ledger.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, "create_invoice", started, err) }()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, cmd.InvoiceNumber,
		telemetry.SpanAttrCustomerID, cmd.CustomerID.String(),
	)

	inv, err = ledger.NewInvoice(cmd.InvoiceNumber, cmd.CustomerID, cmd.Items, cmd.TaxAmount, cmd.Details)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, cmd.CustomerID); err != nil {
			return err
		}
		if cmd.Details.OrderID != nil {
			if err := checkOrderLink(ctx, repos, *cmd.Details.OrderID, inv.ID); err != nil {
				return err
			}
		}
		taken, err := repos.Invoices().ExistsByNumber(ctx, inv.InvoiceNumber)
		if err != nil {
			return err
		}
		if taken {
			return invoiceNumberTaken(inv.InvoiceNumber)
		}
		return repos.Invoices().Create(ctx, inv)
	})
	if errors.Is(err, shared.ErrDuplicateKey) {
		err = s.explainDuplicate(ctx, inv, err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.TotalAmount.String()))
	s.metrics.InvoiceCreated(ctx)
	s.publish(ctx, []*ledger.Invoice{inv})
	return inv, nil
}

// checkOrderLink verifies that orderID exists and is not billed by an invoice other than invoiceID
func checkOrderLink(ctx context.Context, repos Repositories, orderID, invoiceID uuid.UUID) error {
	if _, err := repos.Orders().FindByID(ctx, orderID); err != nil {
		return err
	}
	existing, err := repos.Invoices().FindByOrderID(ctx, orderID)
	switch {
	case err == nil && existing.ID != invoiceID:
		return orderAlreadyInvoiced(orderID, existing.InvoiceNumber)
	case err == nil, shared.IsNotFound(err):
		return nil
	default:
		return err
	}
}

func orderAlreadyInvoiced(orderID uuid.UUID, invoiceNumber string) error {
	return shared.NewConflictError("ORDER_ALREADY_INVOICED",
		fmt.Sprintf("Order %s already has invoice %s", orderID, invoiceNumber), nil)
}

func invoiceNumberTaken(invoiceNumber string) error {
	return shared.NewConflictError("INVOICE_NUMBER_EXISTS",
		fmt.Sprintf("Invoice number %s is already in use", invoiceNumber), nil)
}

// explainDuplicate turns a unique-key violation raised by a concurrent insert into the
// conflict the pre-insert checks would have reported. The lookups run outside the failed
// transaction.
func (s *InvoiceService) explainDuplicate(ctx context.Context, inv *ledger.Invoice, err error) error {
	if taken, lookupErr := s.repos.Invoices().ExistsByNumber(ctx, inv.InvoiceNumber); lookupErr == nil && taken {
		return invoiceNumberTaken(inv.InvoiceNumber)
	}
	if inv.OrderID != nil {
		if existing, lookupErr := s.repos.Invoices().FindByOrderID(ctx, *inv.OrderID); lookupErr == nil {
			return orderAlreadyInvoiced(*inv.OrderID, existing.InvoiceNumber)
		}
	}
	return err
}

// GetInvoice returns an invoice with items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error) {
	inv, err := s.repos.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: inv, Payments: payments}, nil
}

// ListInvoicePayments returns the payments linked to an invoice
func (s *InvoiceService) ListInvoicePayments(ctx context.Context, id uuid.UUID) ([]*ledger.Payment, error) {
	if _, err := s.repos.Invoices().FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Payments().FindByInvoice(ctx, id)
}

// EditInvoice replaces an invoice's item set and tax amount. Advanced item fields survive for
// items that keep their id; amount_paid is never touched.
func (s *InvoiceService) EditInvoice(ctx context.Context, id uuid.UUID, cmd EditInvoiceCommand) (inv *ledger.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "edit")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, id.String())
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationEditInvoice, started, err) }()

	opLog := s.beginOperation(ctx, ledger.OperationEditInvoice, id)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		current, err := repos.Invoices().FindByID(ctx, id)
		if err != nil {
			return atStep(stepLoadInvoice, err)
		}
		if current.RelinksOrder(cmd.Details) {
			if err := checkOrderLink(ctx, repos, *cmd.Details.OrderID, id); err != nil {
				return atStep(stepLoadInvoice, err)
			}
		}

		var changes *ledger.ItemChanges
		updated, err := s.mutateInvoice(ctx, repos, id, ledger.OperationEditInvoice, func(current *ledger.Invoice) error {
			var editErr error
			changes, editErr = current.Edit(cmd.Items, cmd.TaxAmount, cmd.Details)
			return editErr
		})
		if err != nil {
			return atStep(stepSaveInvoice, err)
		}
		opLog.StepCompleted(stepSaveInvoice)

		if err := repos.Invoices().SaveItems(ctx, id, changes); err != nil {
			return atStep(stepSaveItems, err)
		}
		opLog.StepCompleted(stepSaveItems)

		if err := s.syncOrderPaymentStatus(ctx, repos, updated); err != nil {
			return atStep(stepSyncOrderStatus, err)
		}
		opLog.StepCompleted(stepSyncOrderStatus)
		inv = updated
		return nil
	})
	s.finishOperation(ctx, opLog, failedStep(err, stepLoadInvoice), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Invoice edited",
		zap.String("invoice_id", id.String()),
		zap.String("total", inv.TotalAmount.String()),
		zap.String("status", inv.Status.String()))
	s.publish(ctx, []*ledger.Invoice{inv})
	return inv, nil
}

// AddItem appends one item to an invoice
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID uuid.UUID, in ledger.ItemInput) (*ledger.Invoice, error) {
	var inv *ledger.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var added *ledger.InvoiceItem
		updated, err := s.mutateInvoice(ctx, repos, invoiceID, "add_item", func(current *ledger.Invoice) error {
			var addErr error
			added, addErr = current.AddItem(in)
			return addErr
		})
		if err != nil {
			return err
		}
		if err := repos.Invoices().SaveItems(ctx, invoiceID, &ledger.ItemChanges{Added: []ledger.InvoiceItem{*added}}); err != nil {
			return err
		}
		inv = updated
		return s.syncOrderPaymentStatus(ctx, repos, updated)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, []*ledger.Invoice{inv})
	return inv, nil
}

// DeleteItem removes one item from an invoice
func (s *InvoiceService) DeleteItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*ledger.Invoice, error) {
	var inv *ledger.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		updated, err := s.mutateInvoice(ctx, repos, invoiceID, "delete_item", func(current *ledger.Invoice) error {
			return current.RemoveItem(itemID)
		})
		if err != nil {
			return err
		}
		if err := repos.Invoices().SaveItems(ctx, invoiceID, &ledger.ItemChanges{Removed: []uuid.UUID{itemID}}); err != nil {
			return err
		}
		inv = updated
		return s.syncOrderPaymentStatus(ctx, repos, updated)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, []*ledger.Invoice{inv})
	return inv, nil
}

// SetStatus applies a manual status transition.
//
// Marking paid sets amount_paid to the total and writes one status_toggle payment for the delta.
// Marking unpaid zeroes amount_paid and deletes every status_toggle payment of the invoice,
// leaving allocation and manual payments in place.
func (s *InvoiceService) SetStatus(ctx context.Context, id uuid.UUID, status ledger.InvoiceStatus) (inv *ledger.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "set_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, id.String(),
		telemetry.SpanAttrInvoiceStatus, string(status),
	)
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationSetStatus, started, err) }()

	if !status.IsValid() {
		err = shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Status %q is not valid", status))
		return nil, err
	}

	var toggle *ledger.Payment
	opLog := s.beginOperation(ctx, ledger.OperationSetStatus, id)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		var change *ledger.StatusChange
		updated, err := s.mutateInvoice(ctx, repos, id, ledger.OperationSetStatus, func(current *ledger.Invoice) error {
			var setErr error
			change, setErr = current.SetStatus(status)
			return setErr
		})
		if err != nil {
			return atStep(stepSaveInvoice, err)
		}
		opLog.StepCompleted(stepSaveInvoice)

		switch status {
		case ledger.InvoiceStatusPaid:
			if change.PaidDelta.IsPositive() {
				toggle, err = ledger.NewStatusTogglePayment(updated, change.PaidDelta)
				if err != nil {
					return atStep(stepTogglePayment, err)
				}
				if err := repos.Payments().Create(ctx, toggle); err != nil {
					return atStep(stepTogglePayment, err)
				}
				opLog.StepCompleted(stepTogglePayment)
			}
		case ledger.InvoiceStatusUnpaid:
			removed, err := repos.Payments().DeleteByInvoiceAndOrigin(ctx, id, ledger.PaymentOriginStatusToggle)
			if err != nil {
				return atStep(stepDeletePayments, err)
			}
			opLog.StepCompleted(stepDeletePayments)
			s.logger.Debug("Removed system-generated payments",
				zap.String("invoice_id", id.String()),
				zap.Int64("count", removed))
		}

		if err := s.syncOrderPaymentStatus(ctx, repos, updated); err != nil {
			return atStep(stepSyncOrderStatus, err)
		}
		opLog.StepCompleted(stepSyncOrderStatus)
		inv = updated
		return nil
	})
	s.finishOperation(ctx, opLog, failedStep(err, stepLoadInvoice), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if toggle != nil {
		s.metrics.PaymentRecorded(ctx, string(toggle.Origin), string(toggle.Method), toggle.Amount.Cents())
	}
	s.logger.Info("Invoice status set",
		zap.String("invoice_id", id.String()),
		zap.String("status", inv.Status.String()),
		zap.String("amount_paid", inv.AmountPaid.String()))
	s.publish(ctx, []*ledger.Invoice{inv})
	return inv, nil
}

// DeleteInvoice deletes the invoice's items, then its payments, then the invoice row.
// A failure while removing dependents is reported as a conflict and nothing is deleted.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, id.String())
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(ctx, ledger.OperationDeleteInvoice, started, err) }()

	var inv *ledger.Invoice
	opLog := s.beginOperation(ctx, ledger.OperationDeleteInvoice, id)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		found, err := repos.Invoices().FindByID(ctx, id)
		if err != nil {
			return atStep(stepLoadInvoice, err)
		}
		inv = found

		if _, err := repos.Invoices().DeleteItemsByInvoice(ctx, id); err != nil {
			return atStep(stepDeleteItems, shared.NewConflictError("INVOICE_ITEMS_DELETE_FAILED",
				fmt.Sprintf("Could not delete items of invoice %s", found.InvoiceNumber), err))
		}
		opLog.StepCompleted(stepDeleteItems)

		if _, err := repos.Payments().DeleteByInvoice(ctx, id); err != nil {
			return atStep(stepDeletePayments, shared.NewConflictError("INVOICE_PAYMENTS_DELETE_FAILED",
				fmt.Sprintf("Could not delete payments of invoice %s", found.InvoiceNumber), err))
		}
		opLog.StepCompleted(stepDeletePayments)

		if err := repos.Invoices().Delete(ctx, id); err != nil {
			return atStep(stepDeleteInvoice, err)
		}
		opLog.StepCompleted(stepDeleteInvoice)
		return nil
	})
	s.finishOperation(ctx, opLog, failedStep(err, stepLoadInvoice), unwrapStep(err))
	if err != nil {
		err = unwrapStep(err)
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("invoice_number", inv.InvoiceNumber))
	inv.MarkDeleted()
	s.publish(ctx, []*ledger.Invoice{inv})
	return nil
}

// SyncOrderPaymentStatus recomputes an order's payment status from its linked invoice.
// An order without an invoice is left unchanged.
func (s *InvoiceService) SyncOrderPaymentStatus(ctx context.Context, orderID uuid.UUID) (ledger.OrderPaymentStatus, error) {
	order, err := s.repos.Orders().FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	inv, err := s.repos.Invoices().FindByOrderID(ctx, orderID)
	if shared.IsNotFound(err) {
		return order.PaymentStatus, nil
	}
	if err != nil {
		return "", err
	}
	if err := s.syncOrderPaymentStatus(ctx, s.repos, inv); err != nil {
		return "", err
	}
	return ledger.PaymentStatusFromInvoice(inv.Status), nil
}
