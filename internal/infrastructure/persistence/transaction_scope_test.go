package persistence

import (
	"errors"
	"testing"
	"time"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := newTestDB(t)
	f := newFixtures(t, db)
	scope := NewGormTransactionScope(db)
	inv := f.invoice(f.customer().ID, nil, "25.00", time.Now())

	t.Run("rolls back every write when fn fails", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(f.ctx, func(repos appledger.Repositories) error {
			if _, err := repos.Invoices().DeleteItemsByInvoice(f.ctx, inv.ID); err != nil {
				return err
			}
			if err := repos.Invoices().Delete(f.ctx, inv.ID); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := f.repos.Invoices().FindByID(f.ctx, inv.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 1)
	})

	t.Run("commits when fn succeeds", func(t *testing.T) {
		err := scope.Execute(f.ctx, func(repos appledger.Repositories) error {
			if _, err := repos.Invoices().DeleteItemsByInvoice(f.ctx, inv.ID); err != nil {
				return err
			}
			return repos.Invoices().Delete(f.ctx, inv.ID)
		})
		require.NoError(t, err)

		_, err = f.repos.Invoices().FindByID(f.ctx, inv.ID)
		assert.True(t, shared.IsNotFound(err))
	})
}
