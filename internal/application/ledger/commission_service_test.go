package ledger_test

import (
	"testing"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) commission(userID, orderID uuid.UUID, amount string) {
	e.t.Helper()
	require.NoError(e.t, e.repos.Commissions().Create(e.ctx, &ledger.Commission{
		BaseEntity:           shared.NewBaseEntity(),
		UserID:               userID,
		OrderID:              orderID,
		Role:                 ledger.CommissionRoleSalesperson,
		CommissionPercentage: decimal.NewFromInt(10),
		CommissionAmount:     money(amount),
	}))
}

func TestCommissionService_ListCommissions(t *testing.T) {
	e := newEnv(t)
	c := e.customer()
	seller := uuid.New()
	designer := uuid.New()

	paidOrder := e.order(c.ID)
	paidInv := e.issuedInvoice(c.ID, &paidOrder.ID, "50.00")
	_, err := e.invoices.SetStatus(e.ctx, paidInv.ID, ledger.InvoiceStatusPaid)
	require.NoError(t, err)

	openOrder := e.order(c.ID)
	openInv := e.issuedInvoice(c.ID, &openOrder.ID, "80.00")
	_, err = e.payments.RecordPayment(e.ctx, appledger.RecordPaymentCommand{
		CustomerID:  c.ID,
		Method:      ledger.PaymentMethodCard,
		Allocations: []ledger.Allocation{{InvoiceID: openInv.ID, Amount: money("8.00")}},
	})
	require.NoError(t, err)

	e.commission(seller, paidOrder.ID, "5.00")
	e.commission(seller, openOrder.ID, "8.00")
	e.commission(designer, openOrder.ID, "2.00")

	views, err := e.commissions.ListCommissions(e.ctx, ledger.CommissionFilter{UserID: &seller})
	require.NoError(t, err)
	require.Len(t, views, 2)

	byOrder := make(map[uuid.UUID]ledger.CommissionView, len(views))
	for _, v := range views {
		byOrder[v.OrderID] = v
	}
	assert.Equal(t, ledger.OrderPaymentPaid, byOrder[paidOrder.ID].PaidStatus)
	assert.Equal(t, paidOrder.OrderNumber, byOrder[paidOrder.ID].OrderNumber)
	assert.Equal(t, ledger.OrderPaymentPartial, byOrder[openOrder.ID].PaidStatus)

	all, err := e.commissions.ListCommissions(e.ctx, ledger.CommissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCommissionService_ListCommissions_Empty(t *testing.T) {
	e := newEnv(t)
	nobody := uuid.New()

	views, err := e.commissions.ListCommissions(e.ctx, ledger.CommissionFilter{UserID: &nobody})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
