//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable postgres container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_MigratedSchemaMatchesModels(t *testing.T) {
	db := newPostgresDB(t)
	f := newFixtures(t, db)
	customer := f.customer()
	order := f.order(customer.ID)
	inv := f.invoice(customer.ID, &order.ID, "80.00", time.Now())

	loaded, err := f.repos.Invoices().FindByID(f.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "matte", loaded.Items[0].Attributes["paper"])

	require.NoError(t, loaded.ApplyPayment(money("30.00")))
	require.NoError(t, f.repos.Invoices().SaveWithLock(f.ctx, loaded))

	stale := inv
	stale.ReversePayment(money("0.00"))
	requireCode(t, f.repos.Invoices().SaveWithLock(f.ctx, stale), shared.ErrConcurrencyConflict.Code)

	log := ledger.NewOperationLog(ledger.OperationRecordPayment, customer.ID)
	require.NoError(t, f.repos.OperationLogs().Create(f.ctx, log))
	log.Complete()
	require.NoError(t, f.repos.OperationLogs().Save(f.ctx, log))
}

func TestPostgres_TransactionRollback(t *testing.T) {
	db := newPostgresDB(t)
	f := newFixtures(t, db)
	inv := f.invoice(f.customer().ID, nil, "10.00", time.Now())

	// invoices.id is referenced by invoice_items, so deleting the header first violates the FK
	err := NewGormTransactionScope(db).Execute(f.ctx, func(repos appledger.Repositories) error {
		return repos.Invoices().Delete(f.ctx, inv.ID)
	})
	require.Error(t, err)
	assert.True(t, shared.IsStore(err))

	_, err = f.repos.Invoices().FindByID(f.ctx, inv.ID)
	require.NoError(t, err)
}
