package persistence

import (
	"errors"
	"testing"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOperationLogRepository(t *testing.T) {
	f := newFixtures(t, newTestDB(t))
	target := uuid.New()

	log := ledger.NewOperationLog(ledger.OperationDeleteOrderCascade, target)
	require.NoError(t, f.repos.OperationLogs().Create(f.ctx, log))

	log.StepCompleted("invoice_items")
	log.StepSkipped("order_files", errors.New("disk gone"))
	log.Complete()
	require.NoError(t, f.repos.OperationLogs().Save(f.ctx, log))

	list, err := f.repos.OperationLogs().FindByTarget(f.ctx, target)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, ledger.OperationCompleted, got.Status)
	assert.Equal(t, []string{"invoice_items"}, got.CompletedSteps)
	assert.Equal(t, []string{"order_files"}, got.SkippedSteps)
	assert.Equal(t, "disk gone", got.Error)
	assert.NotNil(t, got.FinishedAt)

	none, err := f.repos.OperationLogs().FindByTarget(f.ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
