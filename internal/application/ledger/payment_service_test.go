package ledger_test

import (
	"testing"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_ListOutstanding(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	a := e.issuedInvoice(c.ID, nil, "100.00")
	b := e.issuedInvoice(c.ID, nil, "50.00")
	draft := e.draftInvoice(c.ID, nil, "10.00")
	settled := e.issuedInvoice(c.ID, nil, "5.00")
	_, err := e.invoices.SetStatus(e.ctx, settled.ID, ledger.InvoiceStatusPaid)
	require.NoError(t, err)

	list, err := e.payments.ListOutstanding(e.ctx, c.ID)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(list))
	for _, row := range list {
		ids = append(ids, row.Invoice.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, draft.ID}, ids)
	assert.NotContains(t, ids, settled.ID)

	_, err = e.payments.ListOutstanding(e.ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestPaymentService_RecordPayment_SplitsAcrossInvoices(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	o := e.order(c.ID)
	a := e.issuedInvoice(c.ID, &o.ID, "100.00")
	b := e.issuedInvoice(c.ID, nil, "20.00")

	result, err := e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID: c.ID,
		Method:     ledger.PaymentMethodMobileMoney,
		Reference:  "TXN-778",
		Allocations: []ledger.Allocation{
			{InvoiceID: a.ID, Amount: money("30.00")},
			{InvoiceID: b.ID, Amount: money("20.00")},
		},
	})
	require.NoError(t, err)

	requireMoney(t, "50.00", result.Summary.Amount)
	assert.Equal(t, ledger.PaymentOriginSummary, result.Summary.Origin)
	require.Len(t, result.Allocations, 2)

	// the summary equals the sum of its allocation rows
	children, err := e.repos.Payments().FindBySummary(e.ctx, result.Summary.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	requireMoney(t, "50.00", paidSum(children))

	storedA := e.reload(a.ID)
	requireMoney(t, "30.00", storedA.AmountPaid)
	assert.Equal(t, ledger.InvoiceStatusPartial, storedA.Status)
	storedB := e.reload(b.ID)
	requireMoney(t, "20.00", storedB.AmountPaid)
	assert.Equal(t, ledger.InvoiceStatusPaid, storedB.Status)

	// amount_paid matches the payments linked to each invoice
	requireMoney(t, "30.00", paidSum(e.paymentsOf(a.ID)))
	requireMoney(t, "20.00", paidSum(e.paymentsOf(b.ID)))

	order, err := e.repos.Orders().FindByID(e.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.OrderPaymentPartial, order.PaymentStatus)

	assert.Contains(t, e.publisher.types(), ledger.EventTypePaymentRecorded)
	assert.Contains(t, e.publisher.types(), ledger.EventTypeInvoicePaymentApplied)

	logs, err := e.repos.OperationLogs().FindByTarget(e.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ledger.OperationCompleted, logs[0].Status)
	assert.Len(t, logs[0].CompletedSteps, 3)
}

func TestPaymentService_RecordPayment_OverAllocationRollsBack(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	a := e.issuedInvoice(c.ID, nil, "100.00")
	b := e.issuedInvoice(c.ID, nil, "20.00")

	_, err := e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID: c.ID,
		Method:     ledger.PaymentMethodCash,
		Allocations: []ledger.Allocation{
			{InvoiceID: a.ID, Amount: money("30.00")},
			{InvoiceID: b.ID, Amount: money("25.00")},
		},
	})
	requireCode(t, err, "EXCEEDS_OUTSTANDING")

	requireMoney(t, "0.00", e.reload(a.ID).AmountPaid)
	requireMoney(t, "0.00", e.reload(b.ID).AmountPaid)
	assert.Empty(t, e.paymentsOf(a.ID))

	logs, err := e.repos.OperationLogs().FindByTarget(e.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ledger.OperationFailed, logs[0].Status)
	assert.Equal(t, "allocate:"+b.ID.String(), logs[0].FailedStep)
}

func TestPaymentService_RecordPayment_CapToOutstanding(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	a := e.issuedInvoice(c.ID, nil, "100.00")
	b := e.issuedInvoice(c.ID, nil, "20.00")

	result, err := e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID:       c.ID,
		Method:           ledger.PaymentMethodCash,
		CapToOutstanding: true,
		Allocations: []ledger.Allocation{
			{InvoiceID: a.ID, Amount: money("30.00")},
			{InvoiceID: b.ID, Amount: money("25.00")},
		},
	})
	require.NoError(t, err)
	requireMoney(t, "50.00", result.Summary.Amount)
	require.Len(t, result.Allocations, 2)
	requireMoney(t, "25.00", result.Allocations[1].Requested)
	requireMoney(t, "20.00", result.Allocations[1].Applied)
	assert.Equal(t, ledger.InvoiceStatusPaid, e.reload(b.ID).Status)
}

func TestPaymentService_RecordPayment_Validation(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	other := e.customer()
	inv := e.issuedInvoice(c.ID, nil, "10.00")
	foreign := e.issuedInvoice(other.ID, nil, "10.00")

	tests := []struct {
		name string
		cmd  appledger.RecordPaymentCommand
		code string
	}{
		{
			name: "unknown method",
			cmd: appledger.RecordPaymentCommand{CustomerID: c.ID, Method: "barter",
				Allocations: []ledger.Allocation{{InvoiceID: inv.ID, Amount: money("1.00")}}},
			code: "INVALID_PAYMENT_METHOD",
		},
		{
			name: "invoice of another customer",
			cmd: appledger.RecordPaymentCommand{CustomerID: c.ID, Method: ledger.PaymentMethodCash,
				Allocations: []ledger.Allocation{{InvoiceID: foreign.ID, Amount: money("1.00")}}},
			code: "INVOICE_CUSTOMER_MISMATCH",
		},
		{
			name: "unknown invoice",
			cmd: appledger.RecordPaymentCommand{CustomerID: c.ID, Method: ledger.PaymentMethodCash,
				Allocations: []ledger.Allocation{{InvoiceID: uuid.New(), Amount: money("1.00")}}},
			code: "NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.payments.RecordPayment(e.ctx, tt.cmd)
			requireCode(t, err, tt.code)
		})
	}

	t.Run("nothing outstanding after capping", func(t *testing.T) {
		_, err := e.invoices.SetStatus(e.ctx, inv.ID, ledger.InvoiceStatusPaid)
		require.NoError(t, err)
		_, err = e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
			CustomerID: c.ID, Method: ledger.PaymentMethodCash, CapToOutstanding: true,
			Allocations: []ledger.Allocation{{InvoiceID: inv.ID, Amount: money("5.00")}},
		})
		requireCode(t, err, "NOTHING_OUTSTANDING")
	})
}

func TestPaymentService_RecordPayment_RetriesLostLocks(t *testing.T) {
	injector := &conflictInjector{}
	e := newEnv(t, withConflicts(injector))
	c := e.customer()
	inv := e.issuedInvoice(c.ID, nil, "40.00")

	injector.arm(2)
	_, err := e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID:  c.ID,
		Method:      ledger.PaymentMethodCash,
		Allocations: []ledger.Allocation{{InvoiceID: inv.ID, Amount: money("15.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, injector.injected)
	requireMoney(t, "15.00", e.reload(inv.ID).AmountPaid)

	injector.arm(10)
	_, err = e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID:  c.ID,
		Method:      ledger.PaymentMethodCash,
		Allocations: []ledger.Allocation{{InvoiceID: inv.ID, Amount: money("5.00")}},
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	requireMoney(t, "15.00", e.reload(inv.ID).AmountPaid)
	assert.Len(t, e.paymentsOf(inv.ID), 1)
}

func TestPaymentService_DeletePayment(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	a := e.issuedInvoice(c.ID, nil, "100.00")
	b := e.issuedInvoice(c.ID, nil, "20.00")
	result, err := e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID: c.ID,
		Method:     ledger.PaymentMethodCash,
		Allocations: []ledger.Allocation{
			{InvoiceID: a.ID, Amount: money("30.00")},
			{InvoiceID: b.ID, Amount: money("20.00")},
		},
	})
	require.NoError(t, err)

	t.Run("allocation row reverses its invoice", func(t *testing.T) {
		require.NoError(t, e.payments.DeletePayment(e.ctx, result.Allocations[1].PaymentID))
		stored := e.reload(b.ID)
		requireMoney(t, "0.00", stored.AmountPaid)
		assert.Equal(t, ledger.InvoiceStatusUnpaid, stored.Status)
		requireMoney(t, "30.00", e.reload(a.ID).AmountPaid)
	})

	t.Run("summary row reverses every remaining allocation", func(t *testing.T) {
		require.NoError(t, e.payments.DeletePayment(e.ctx, result.Summary.ID))
		requireMoney(t, "0.00", e.reload(a.ID).AmountPaid)
		assert.Empty(t, e.paymentsOf(a.ID))
		_, err := e.repos.Payments().FindByID(e.ctx, result.Summary.ID)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("unknown payment", func(t *testing.T) {
		err := e.payments.DeletePayment(e.ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestPaymentService_CapAllocation(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	inv := e.issuedInvoice(c.ID, nil, "12.00")

	capped, err := e.payments.CapAllocation(e.ctx, inv.ID, money("20.00"))
	require.NoError(t, err)
	requireMoney(t, "12.00", capped)

	capped, err = e.payments.CapAllocation(e.ctx, inv.ID, money("5.00"))
	require.NoError(t, err)
	requireMoney(t, "5.00", capped)

	_, err = e.payments.CapAllocation(e.ctx, uuid.New(), money("5.00"))
	assert.True(t, shared.IsNotFound(err))
}
