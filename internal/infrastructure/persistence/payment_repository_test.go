package persistence

import (
	"testing"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentRepository(t *testing.T) {
	f := newFixtures(t, newTestDB(t))
	customer := f.customer()
	order := f.order(customer.ID)
	a := f.invoice(customer.ID, nil, "30.00", time.Now())
	b := f.invoice(customer.ID, nil, "20.00", time.Now())

	summary, err := ledger.NewSummaryPayment(customer.ID, money("50.00"), ledger.PaymentMethodCash, "RCPT-1", "")
	require.NoError(t, err)
	require.NoError(t, f.repos.Payments().Create(f.ctx, summary))

	allocA, err := ledger.NewAllocationPayment(summary, a.ID, money("30.00"))
	require.NoError(t, err)
	allocB, err := ledger.NewAllocationPayment(summary, b.ID, money("20.00"))
	require.NoError(t, err)
	toggle, err := ledger.NewStatusTogglePayment(a, money("5.00"))
	require.NoError(t, err)
	manual, err := ledger.NewOrderPayment(order.ID, money("12.00"), ledger.PaymentMethodMobileMoney, "MM-9", "deposit")
	require.NoError(t, err)
	for _, p := range []*ledger.Payment{allocA, allocB, toggle, manual} {
		require.NoError(t, f.repos.Payments().Create(f.ctx, p))
	}

	t.Run("find by id round trips", func(t *testing.T) {
		got, err := f.repos.Payments().FindByID(f.ctx, allocA.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.PaymentOriginAllocation, got.Origin)
		assert.Equal(t, summary.ID, *got.SummaryID)
		assert.Equal(t, a.ID, *got.InvoiceID)
		assert.Equal(t, "30.00", got.Amount.String())
		assert.Equal(t, ledger.PaymentMethodCash, got.Method)
	})

	t.Run("find by summary returns the allocations", func(t *testing.T) {
		list, err := f.repos.Payments().FindBySummary(f.ctx, summary.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("find by invoice", func(t *testing.T) {
		list, err := f.repos.Payments().FindByInvoice(f.ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("delete by origin leaves other origins", func(t *testing.T) {
		n, err := f.repos.Payments().DeleteByInvoiceAndOrigin(f.ctx, a.ID, ledger.PaymentOriginStatusToggle)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		list, err := f.repos.Payments().FindByInvoice(f.ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, allocA.ID, list[0].ID)
	})

	t.Run("delete by order", func(t *testing.T) {
		n, err := f.repos.Payments().DeleteByOrder(f.ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("delete by invoice and by id", func(t *testing.T) {
		n, err := f.repos.Payments().DeleteByInvoice(f.ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, f.repos.Payments().Delete(f.ctx, summary.ID))
		assert.True(t, shared.IsNotFound(f.repos.Payments().Delete(f.ctx, summary.ID)))
		_, err = f.repos.Payments().FindByID(f.ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}
