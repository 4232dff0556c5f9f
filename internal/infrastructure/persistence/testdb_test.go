package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory sqlite database with the ledger schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=private", uuid.NewString()),
	}, DatabaseOptions{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func money(s string) valueobject.Money {
	return valueobject.MustMoney(s)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, code, de.Code)
}

type fixtures struct {
	t     *testing.T
	ctx   context.Context
	repos *GormRepositories
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	return &fixtures{t: t, ctx: context.Background(), repos: NewGormRepositories(db)}
}

func (f *fixtures) customer() *ledger.Customer {
	f.t.Helper()
	c, err := ledger.NewCustomer(gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(), gofakeit.Company())
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Customers().Create(f.ctx, c))
	return c
}

func (f *fixtures) order(customerID uuid.UUID) *ledger.Order {
	f.t.Helper()
	o := &ledger.Order{
		BaseEntity:     shared.NewBaseEntity(),
		OrderNumber:    fmt.Sprintf("ORD-%d", gofakeit.Number(100000, 999999)),
		CustomerID:     customerID,
		WorkflowStatus: "in_production",
	}
	require.NoError(f.t, f.repos.Orders().Create(f.ctx, o))
	return o
}

// invoice stores an issued (unpaid) invoice with one unit item priced at total
func (f *fixtures) invoice(customerID uuid.UUID, orderID *uuid.UUID, total string, date time.Time) *ledger.Invoice {
	f.t.Helper()
	inv, err := ledger.NewInvoice(
		fmt.Sprintf("INV-%s", gofakeit.LetterN(8)),
		customerID,
		[]ledger.ItemInput{{
			Description: gofakeit.ProductName(),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   money(total),
			Attributes:  map[string]any{"paper": "matte"},
		}},
		valueobject.Zero(),
		ledger.InvoiceDetails{InvoiceDate: date, OrderID: orderID},
	)
	require.NoError(f.t, err)
	inv.Status = ledger.InvoiceStatusUnpaid
	require.NoError(f.t, f.repos.Invoices().Create(f.ctx, inv))
	inv.ClearDomainEvents()
	return inv
}
