package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtReport is the collections report: every customer who still owes money
type DebtReport struct {
	Debts            []ledger.CustomerDebt `json:"debts"`
	TotalOutstanding valueobject.Money     `json:"total_outstanding"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// DebtReportCache stores the last built report.
// Get returns (nil, nil) on a miss.
type DebtReportCache interface {
	Get(ctx context.Context) (*DebtReport, error)
	Set(ctx context.Context, report *DebtReport) error
	Invalidate(ctx context.Context) error
}

// DebtService is the outstanding debt aggregator.
// Every Invalidate bumps a generation; a rebuild only writes the cache when no invalidation
// happened since it started, so a slow read-through rebuild cannot overwrite a newer report.
type DebtService struct {
	core
	cache DebtReportCache

	mu         sync.Mutex
	generation uint64
}

// NewDebtService creates a new DebtService. cache may be nil, in which case every call rebuilds.
func NewDebtService(repos Repositories, cache DebtReportCache, opts Options) *DebtService {
	return &DebtService{
		core:  newCore(repos, nil, opts, "debt_service"),
		cache: cache,
	}
}

// ListCustomerDebts returns the report, from cache when available
func (s *DebtService) ListCustomerDebts(ctx context.Context) (*DebtReport, error) {
	generation := s.currentGeneration()
	if s.cache != nil {
		report, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("Debt report cache read failed", zap.Error(err))
		} else if report != nil {
			return report, nil
		}
	}
	return s.rebuild(ctx, generation)
}

// SearchCustomerDebts filters the report by a case-insensitive substring over
// name, email, phone and company. The total covers the filtered rows only.
func (s *DebtService) SearchCustomerDebts(ctx context.Context, query string) (*DebtReport, error) {
	report, err := s.ListCustomerDebts(ctx)
	if err != nil {
		return nil, err
	}
	filtered := ledger.FilterDebts(report.Debts, query)
	return &DebtReport{
		Debts:            filtered,
		TotalOutstanding: ledger.TotalOutstanding(filtered),
		GeneratedAt:      report.GeneratedAt,
	}, nil
}

// Rebuild aggregates the report from the store and refreshes the cache
func (s *DebtService) Rebuild(ctx context.Context) (*DebtReport, error) {
	return s.rebuild(ctx, s.currentGeneration())
}

func (s *DebtService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// rebuild builds the report and caches it unless the cache was invalidated after generation
func (s *DebtService) rebuild(ctx context.Context, generation uint64) (*DebtReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt", "rebuild")
	defer span.End()

	invoices, err := s.repos.Invoices().FindNonDraft(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, inv := range invoices {
		if _, ok := seen[inv.CustomerID]; ok {
			continue
		}
		seen[inv.CustomerID] = struct{}{}
		ids = append(ids, inv.CustomerID)
	}
	customers, err := s.repos.Customers().FindByIDs(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	debts := ledger.AggregateDebts(invoices, customers)
	report := &DebtReport{
		Debts:            debts,
		TotalOutstanding: ledger.TotalOutstanding(debts),
		GeneratedAt:      time.Now().UTC(),
	}
	telemetry.SetAttributes(span, "debt.customer_count", len(debts))

	s.store(ctx, report, generation)
	s.logger.Debug("Debt report rebuilt",
		zap.Int("invoices", len(invoices)),
		zap.Int("customers", len(debts)),
		zap.String("total_outstanding", report.TotalOutstanding.String()))
	return report, nil
}

func (s *DebtService) store(ctx context.Context, report *DebtReport, generation uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debug("Discarding debt report built before the last invalidation",
			zap.Uint64("generation", generation),
			zap.Uint64("current_generation", s.generation))
		return
	}
	if err := s.cache.Set(ctx, report); err != nil {
		s.logger.Warn("Debt report cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached report so the next read rebuilds it
func (s *DebtService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// Refresh invalidates and rebuilds. It is the job run by the refresh scheduler.
func (s *DebtService) Refresh(ctx context.Context) error {
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("Debt report cache invalidate failed", zap.Error(err))
	}
	_, err := s.Rebuild(ctx)
	return err
}
