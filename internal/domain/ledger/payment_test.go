package ledger

import (
	"strings"
	"testing"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummaryPayment(t *testing.T) {
	customerID := uuid.New()

	p, err := NewSummaryPayment(customerID, money("50.00"), PaymentMethodMobileMoney, " EVC-991 ", "")
	require.NoError(t, err)
	assert.Equal(t, PaymentOriginSummary, p.Origin)
	assert.Equal(t, &customerID, p.CustomerID)
	assert.Nil(t, p.InvoiceID)
	assert.Equal(t, "EVC-991", p.Reference)
	assert.False(t, p.IsSystemGenerated())
	assert.False(t, p.AppliesToInvoice())

	_, err = NewSummaryPayment(customerID, valueobject.Zero(), PaymentMethodCash, "", "")
	requireCode(t, err, "INVALID_AMOUNT")

	_, err = NewSummaryPayment(customerID, money("1.00"), PaymentMethod("barter"), "", "")
	requireCode(t, err, "INVALID_PAYMENT_METHOD")

	_, err = NewSummaryPayment(uuid.Nil, money("1.00"), PaymentMethodCash, "", "")
	requireCode(t, err, "INVALID_CUSTOMER")
}

func TestNewAllocationPayment(t *testing.T) {
	summary, err := NewSummaryPayment(uuid.New(), money("50.00"), PaymentMethodCash, "R-1", "")
	require.NoError(t, err)
	invoiceID := uuid.New()

	p, err := NewAllocationPayment(summary, invoiceID, money("20.00"))
	require.NoError(t, err)
	assert.Equal(t, PaymentOriginAllocation, p.Origin)
	assert.Equal(t, &invoiceID, p.InvoiceID)
	assert.Equal(t, summary.ID, *p.SummaryID)
	assert.Equal(t, summary.Method, p.Method)
	assert.Contains(t, p.Notes, summary.ID.String())
	assert.True(t, p.AppliesToInvoice())
}

func TestNewStatusTogglePayment(t *testing.T) {
	inv := issuedInvoice(t, "75.00")

	p, err := NewStatusTogglePayment(inv, money("75.00"))
	require.NoError(t, err)
	assert.True(t, p.IsSystemGenerated())
	assert.Equal(t, PaymentMethodOther, p.Method)
	assert.Equal(t, inv.ID, *p.InvoiceID)
	assert.True(t, strings.HasPrefix(p.Reference, "AUTO-"+inv.InvoiceNumber+"-"))
	assert.True(t, strings.HasPrefix(p.Notes, SystemGeneratedNoteTag))
}

func TestPaymentOrigin_IsValid(t *testing.T) {
	assert.True(t, PaymentOriginManual.IsValid())
	assert.True(t, PaymentOriginStatusToggle.IsValid())
	assert.False(t, PaymentOrigin("auto").IsValid())
}

func TestResolveCommissionPaidStatus(t *testing.T) {
	paidInvoice := issuedInvoice(t, "10.00")
	_, err := paidInvoice.SetStatus(InvoiceStatusPaid)
	require.NoError(t, err)

	tests := []struct {
		name    string
		order   *Order
		invoice *Invoice
		want    OrderPaymentStatus
	}{
		{"order status wins", &Order{PaymentStatus: OrderPaymentPartial}, paidInvoice, OrderPaymentPartial},
		{"falls back to invoice", &Order{}, paidInvoice, OrderPaymentPaid},
		{"no order", nil, paidInvoice, OrderPaymentPaid},
		{"nothing known", nil, nil, OrderPaymentUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCommissionPaidStatus(tt.order, tt.invoice))
		})
	}
}

func TestOperationLog(t *testing.T) {
	target := uuid.New()
	log := NewOperationLog(OperationDeleteOrderCascade, target)
	assert.Equal(t, OperationStarted, log.Status)

	log.StepCompleted("invoice_items")
	log.StepSkipped(DependentOrderFiles, assert.AnError)
	log.Complete()

	assert.Equal(t, OperationCompleted, log.Status)
	assert.Equal(t, []string{"invoice_items"}, log.CompletedSteps)
	assert.Equal(t, []string{DependentOrderFiles}, log.SkippedSteps)
	assert.Equal(t, assert.AnError.Error(), log.Error)
	assert.NotNil(t, log.FinishedAt)

	failed := NewOperationLog(OperationRecordPayment, target)
	failed.Fail("allocate", assert.AnError)
	assert.Equal(t, OperationFailed, failed.Status)
	assert.Equal(t, "allocate", failed.FailedStep)
}
