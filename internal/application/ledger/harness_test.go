package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

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

func requireMoney(t *testing.T, want string, got valueobject.Money) {
	t.Helper()
	require.Truef(t, got.Equals(money(want)), "want %s, got %s", want, got)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// env is a ledger wired to a private in-memory sqlite store
type env struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	repos     appledger.Repositories
	scope     appledger.TransactionScope
	publisher *recordingPublisher

	invoices    *appledger.InvoiceService
	payments    *appledger.PaymentService
	cascade     *appledger.CascadeService
	debts       *appledger.DebtService
	commissions *appledger.CommissionService
}

type envOption func(*envConfig)

type envConfig struct {
	wrap  func(appledger.Repositories) appledger.Repositories
	mode  appledger.CascadeMode
	cache appledger.DebtReportCache
}

// withRepos decorates every repository set the services see, inside and outside transactions
func withRepos(wrap func(appledger.Repositories) appledger.Repositories) envOption {
	return func(c *envConfig) { c.wrap = wrap }
}

func withCascadeMode(mode appledger.CascadeMode) envOption {
	return func(c *envConfig) { c.mode = mode }
}

func withCache(cache appledger.DebtReportCache) envOption {
	return func(c *envConfig) { c.cache = cache }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	cfg := envConfig{wrap: func(r appledger.Repositories) appledger.Repositories { return r }}
	for _, opt := range opts {
		opt(&cfg)
	}

	database, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=private", uuid.NewString()),
	}, persistence.DatabaseOptions{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })

	repos := cfg.wrap(persistence.NewGormRepositories(database.DB))
	scope := &wrappingScope{inner: persistence.NewGormTransactionScope(database.DB), wrap: cfg.wrap}
	publisher := &recordingPublisher{}
	options := appledger.Options{
		MaxLockRetries: 3,
		CascadeMode:    cfg.mode,
		Publisher:      publisher,
		Logger:         zaptest.NewLogger(t),
	}

	return &env{
		t:           t,
		ctx:         context.Background(),
		db:          database.DB,
		repos:       repos,
		scope:       scope,
		publisher:   publisher,
		invoices:    appledger.NewInvoiceService(repos, scope, options),
		payments:    appledger.NewPaymentService(repos, scope, options),
		cascade:     appledger.NewCascadeService(repos, scope, options),
		debts:       appledger.NewDebtService(repos, cfg.cache, options),
		commissions: appledger.NewCommissionService(repos, options),
	}
}

// wrappingScope applies the repository decorator to the transactional repositories too
type wrappingScope struct {
	inner appledger.TransactionScope
	wrap  func(appledger.Repositories) appledger.Repositories
}

func (s *wrappingScope) Execute(ctx context.Context, fn func(repos appledger.Repositories) error) error {
	return s.inner.Execute(ctx, func(repos appledger.Repositories) error {
		return fn(s.wrap(repos))
	})
}

func (e *env) customer() *ledger.Customer {
	e.t.Helper()
	c, err := ledger.NewCustomer(gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(), gofakeit.Company())
	require.NoError(e.t, err)
	require.NoError(e.t, e.repos.Customers().Create(e.ctx, c))
	return c
}

func (e *env) order(customerID uuid.UUID) *ledger.Order {
	e.t.Helper()
	o := &ledger.Order{
		BaseEntity:     shared.NewBaseEntity(),
		OrderNumber:    fmt.Sprintf("ORD-%d", gofakeit.Number(100000, 999999)),
		CustomerID:     customerID,
		WorkflowStatus: "in_production",
	}
	require.NoError(e.t, e.repos.Orders().Create(e.ctx, o))
	return o
}

func unitItem(desc, price string) ledger.ItemInput {
	return ledger.ItemInput{
		Description: desc,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   money(price),
	}
}

// draftInvoice creates an invoice through the service; it stays a draft
func (e *env) draftInvoice(customerID uuid.UUID, orderID *uuid.UUID, total string) *ledger.Invoice {
	e.t.Helper()
	inv, err := e.invoices.CreateInvoice(e.ctx, appledger.CreateInvoiceCommand{
		InvoiceNumber: fmt.Sprintf("INV-%s", gofakeit.LetterN(8)),
		CustomerID:    customerID,
		Items:         []ledger.ItemInput{unitItem(gofakeit.ProductName(), total)},
		TaxAmount:     valueobject.Zero(),
		Details:       ledger.InvoiceDetails{OrderID: orderID},
	})
	require.NoError(e.t, err)
	return inv
}

// issuedInvoice creates an invoice and moves it out of draft
func (e *env) issuedInvoice(customerID uuid.UUID, orderID *uuid.UUID, total string) *ledger.Invoice {
	e.t.Helper()
	inv := e.draftInvoice(customerID, orderID, total)
	issued, err := e.invoices.SetStatus(e.ctx, inv.ID, ledger.InvoiceStatusUnpaid)
	require.NoError(e.t, err)
	return issued
}

func (e *env) reload(id uuid.UUID) *ledger.Invoice {
	e.t.Helper()
	inv, err := e.repos.Invoices().FindByID(e.ctx, id)
	require.NoError(e.t, err)
	return inv
}

func (e *env) paymentsOf(invoiceID uuid.UUID) []*ledger.Payment {
	e.t.Helper()
	list, err := e.repos.Payments().FindByInvoice(e.ctx, invoiceID)
	require.NoError(e.t, err)
	return list
}

// paidSum totals the rows that count towards an invoice's amount_paid
func paidSum(payments []*ledger.Payment) valueobject.Money {
	total := valueobject.Zero()
	for _, p := range payments {
		if p.AppliesToInvoice() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// overrideRepos replaces selected repositories of a set
type overrideRepos struct {
	appledger.Repositories
	invoices   ledger.InvoiceRepository
	customers  ledger.CustomerRepository
	dependents []ledger.OrderDependentRepository
}

func (r *overrideRepos) Customers() ledger.CustomerRepository {
	if r.customers != nil {
		return r.customers
	}
	return r.Repositories.Customers()
}

func (r *overrideRepos) Invoices() ledger.InvoiceRepository {
	if r.invoices != nil {
		return r.invoices
	}
	return r.Repositories.Invoices()
}

func (r *overrideRepos) OrderDependents() []ledger.OrderDependentRepository {
	if r.dependents != nil {
		return r.dependents
	}
	return r.Repositories.OrderDependents()
}

// conflictInjector makes the next n SaveWithLock calls lose the race
type conflictInjector struct {
	mu        sync.Mutex
	remaining int
	injected  int
}

func (c *conflictInjector) arm(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = n
}

func (c *conflictInjector) take() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining == 0 {
		return false
	}
	c.remaining--
	c.injected++
	return true
}

type conflictingInvoices struct {
	ledger.InvoiceRepository
	injector *conflictInjector
}

func (r *conflictingInvoices) SaveWithLock(ctx context.Context, inv *ledger.Invoice) error {
	if r.injector.take() {
		return shared.ErrConcurrencyConflict
	}
	return r.InvoiceRepository.SaveWithLock(ctx, inv)
}

func withConflicts(injector *conflictInjector) envOption {
	return withRepos(func(r appledger.Repositories) appledger.Repositories {
		return &overrideRepos{
			Repositories: r,
			invoices:     &conflictingInvoices{InvoiceRepository: r.Invoices(), injector: injector},
		}
	})
}

// uniquenessMisses counts how many uniqueness lookups still come back empty
type uniquenessMisses struct {
	mu     sync.Mutex
	number int
	order  int
}

func (m *uniquenessMisses) take(counter *int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *counter == 0 {
		return false
	}
	*counter--
	return true
}

// blindInvoices hides existing rows from the first uniqueness lookups, the way a concurrent
// insert that has not committed yet would
type blindInvoices struct {
	ledger.InvoiceRepository
	misses *uniquenessMisses
}

func (r *blindInvoices) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	if r.misses.take(&r.misses.number) {
		return false, nil
	}
	return r.InvoiceRepository.ExistsByNumber(ctx, number)
}

func (r *blindInvoices) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*ledger.Invoice, error) {
	if r.misses.take(&r.misses.order) {
		return nil, shared.NewNotFoundError("invoice", orderID.String())
	}
	return r.InvoiceRepository.FindByOrderID(ctx, orderID)
}

func withBlindUniquenessChecks(misses *uniquenessMisses) envOption {
	return withRepos(func(r appledger.Repositories) appledger.Repositories {
		return &overrideRepos{
			Repositories: r,
			invoices:     &blindInvoices{InvoiceRepository: r.Invoices(), misses: misses},
		}
	})
}

// hookedCustomers runs a callback once, right after the first FindByIDs returns
type hookedCustomers struct {
	ledger.CustomerRepository
	fired *atomic.Bool
	after func()
}

func (r *hookedCustomers) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Customer, error) {
	found, err := r.CustomerRepository.FindByIDs(ctx, ids)
	if r.fired.CompareAndSwap(false, true) {
		r.after()
	}
	return found, err
}

// failingDependent fails DeleteByOrder for one collaborator table
type failingDependent struct {
	ledger.OrderDependentRepository
}

var errDependentUnavailable = errors.New("table locked")

func (d failingDependent) DeleteByOrder(context.Context, uuid.UUID) (int64, error) {
	return 0, errDependentUnavailable
}

func withFailingDependent(name string) envOption {
	return withRepos(func(r appledger.Repositories) appledger.Repositories {
		deps := r.OrderDependents()
		wrapped := make([]ledger.OrderDependentRepository, len(deps))
		for i, d := range deps {
			if d.Name() == name {
				wrapped[i] = failingDependent{d}
				continue
			}
			wrapped[i] = d
		}
		return &overrideRepos{Repositories: r, dependents: wrapped}
	})
}

func one() decimal.Decimal {
	return decimal.NewFromInt(1)
}
