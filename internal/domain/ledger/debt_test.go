package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceFor(t *testing.T, customerID uuid.UUID, total, paid string, status InvoiceStatus) *Invoice {
	t.Helper()
	inv, err := NewInvoice("INV-"+uuid.NewString()[:8], customerID,
		[]ItemInput{unitItem("Print run", 1, total)}, money("0.00"), InvoiceDetails{})
	require.NoError(t, err)
	inv.AmountPaid = money(paid)
	inv.Status = status
	return inv
}

func TestAggregateDebts_Example(t *testing.T) {
	c := uuid.New()
	customers := map[uuid.UUID]*Customer{c: {Name: "Hodan Print Co"}}

	debts := AggregateDebts([]*Invoice{
		invoiceFor(t, c, "100.00", "40.00", InvoiceStatusPartial),
		invoiceFor(t, c, "50.00", "50.00", InvoiceStatusPaid),
	}, customers)

	require.Len(t, debts, 1)
	assert.Equal(t, c, debts[0].CustomerID)
	assert.Equal(t, "Hodan Print Co", debts[0].Name)
	assert.Equal(t, "60.00", debts[0].Outstanding.String())
	assert.Equal(t, "150.00", debts[0].TotalBilled.String())
	assert.Equal(t, "90.00", debts[0].TotalPaid.String())
	assert.Equal(t, 2, debts[0].InvoiceCount)
}

func TestAggregateDebts_SkipsDraftsAndSettledCustomers(t *testing.T) {
	owing, settled, drafted := uuid.New(), uuid.New(), uuid.New()

	debts := AggregateDebts([]*Invoice{
		invoiceFor(t, owing, "20.00", "0.00", InvoiceStatusUnpaid),
		invoiceFor(t, owing, "500.00", "0.00", InvoiceStatusDraft),
		invoiceFor(t, settled, "30.00", "29.99", InvoiceStatusPaid),
		invoiceFor(t, drafted, "99.00", "0.00", InvoiceStatusDraft),
	}, nil)

	require.Len(t, debts, 1)
	assert.Equal(t, owing, debts[0].CustomerID)
	assert.Equal(t, "20.00", debts[0].Outstanding.String())
	assert.Equal(t, 1, debts[0].InvoiceCount)
}

func TestAggregateDebts_SortedByOutstandingDescending(t *testing.T) {
	small, large, medium := uuid.New(), uuid.New(), uuid.New()
	customers := map[uuid.UUID]*Customer{
		small:  {Name: "Small"},
		large:  {Name: "Large"},
		medium: {Name: "Medium"},
	}

	debts := AggregateDebts([]*Invoice{
		invoiceFor(t, small, "10.00", "0.00", InvoiceStatusUnpaid),
		invoiceFor(t, large, "300.00", "100.00", InvoiceStatusPartial),
		invoiceFor(t, medium, "80.00", "0.00", InvoiceStatusUnpaid),
		invoiceFor(t, medium, "40.00", "0.00", InvoiceStatusUnpaid),
	}, customers)

	require.Len(t, debts, 3)
	assert.Equal(t, []string{"Large", "Medium", "Small"}, []string{debts[0].Name, debts[1].Name, debts[2].Name})
	assert.Equal(t, "330.00", TotalOutstanding(debts).String())
}

func TestFilterDebts(t *testing.T) {
	debts := []CustomerDebt{
		{Name: "Ayaan Warsame", Email: "ayaan@example.com", Phone: "+252 61 555 0101", Company: "Xamar Signs"},
		{Name: "Bilal Ahmed", Email: "bilal@example.com", Phone: "+252 61 555 0202", Company: "Straße Druck"},
		{Name: "Caaliya Noor", Email: "CAALIYA@EXAMPLE.COM"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Ayaan Warsame", "Bilal Ahmed", "Caaliya Noor"}},
		{"  ", []string{"Ayaan Warsame", "Bilal Ahmed", "Caaliya Noor"}},
		{"WARSAME", []string{"Ayaan Warsame"}},
		{"caaliya@", []string{"Caaliya Noor"}},
		{"0202", []string{"Bilal Ahmed"}},
		{"xamar", []string{"Ayaan Warsame"}},
		{"DRUCK", []string{"Bilal Ahmed"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			names := make([]string, 0)
			for _, d := range FilterDebts(debts, tt.query) {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
