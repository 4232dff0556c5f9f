package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// LedgerMetrics records ledger activity. A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	invoicesCreated    *Counter
	paymentsRecorded   *Counter
	paymentAmountCents *Counter
	allocationsApplied *Counter
	lockConflicts      *Counter
	cascadeDeletions   *Counter
	cascadeSkips       *Counter
	operationDuration  *Histogram
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&m.invoicesCreated, "ledger_invoice_created_total", "Total number of invoices created", "{invoices}"},
		{&m.paymentsRecorded, "ledger_payment_recorded_total", "Total number of payment rows written", "{payments}"},
		{&m.paymentAmountCents, "ledger_payment_amount_total", "Total amount collected in cents", "{cents}"},
		{&m.allocationsApplied, "ledger_allocation_applied_total", "Total number of per-invoice allocations applied", "{allocations}"},
		{&m.lockConflicts, "ledger_lock_conflict_total", "Optimistic lock conflicts on invoice writes", "{conflicts}"},
		{&m.cascadeDeletions, "ledger_order_cascade_total", "Orders removed by cascade deletion", "{orders}"},
		{&m.cascadeSkips, "ledger_order_cascade_skipped_step_total", "Cascade steps that failed and were skipped", "{steps}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	m.operationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_operation_duration_seconds",
		Description: "Duration of ledger write operations",
		Unit:        "s",
		Boundaries:  OperationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// InvoiceCreated counts a created invoice
func (m *LedgerMetrics) InvoiceCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx)
}

// PaymentRecorded counts a payment row and its amount
func (m *LedgerMetrics) PaymentRecorded(ctx context.Context, origin, method string, cents int64) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc(ctx, AttrPaymentOrigin.String(origin), AttrPaymentMethod.String(method))
	m.paymentAmountCents.Add(ctx, cents, AttrPaymentOrigin.String(origin))
}

// AllocationApplied counts one allocation landing on an invoice
func (m *LedgerMetrics) AllocationApplied(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.allocationsApplied.Inc(ctx, AttrInvoiceStatus.String(status))
}

// LockConflict counts a lost optimistic-lock race
func (m *LedgerMetrics) LockConflict(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.lockConflicts.Inc(ctx, AttrOperation.String(operation))
}

// CascadeCompleted counts a removed order and the steps skipped on the way
func (m *LedgerMetrics) CascadeCompleted(ctx context.Context, mode string, skipped int) {
	if m == nil {
		return
	}
	m.cascadeDeletions.Inc(ctx, AttrCascadeMode.String(mode))
	if skipped > 0 {
		m.cascadeSkips.Add(ctx, int64(skipped), AttrCascadeMode.String(mode))
	}
}

// ObserveOperation records how long an operation took and whether it failed
func (m *LedgerMetrics) ObserveOperation(ctx context.Context, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.operationDuration.RecordDuration(ctx, time.Since(started),
		AttrOperation.String(operation), AttrOutcome.String(outcome))
}
