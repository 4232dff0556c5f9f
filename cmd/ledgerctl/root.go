package main

import (
	"context"
	"fmt"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/logger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app is the ledger wired for one CLI invocation
type app struct {
	close    func() error
	log      *zap.Logger
	repos    appledger.Repositories
	invoices *appledger.InvoiceService
	payments *appledger.PaymentService
	debts    *appledger.DebtService
}

func (a *app) Close() error {
	_ = a.log.Sync()
	if a.close == nil {
		return nil
	}
	return a.close()
}

// appFactory builds the ledger; tests swap it for an in-memory store
type appFactory func(ctx context.Context, logLevel string) (*app, error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(openApp)
}

func newRootCmdWith(factory appFactory) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and seed the print shop invoice/payment ledger",
		Long: `ledgerctl talks to the ledger database configured by config.toml,
.env or LEDGER_* environment variables, the same way the API server does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	withApp := func(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := factory(cmd.Context(), logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			return run(cmd, args, a)
		}
	}

	root.AddCommand(
		newDebtsCmd(withApp),
		newOutstandingCmd(withApp),
		newSeedCmd(withApp),
	)
	return root
}

func openApp(_ context.Context, logLevel string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	}, "ledgerctl")
	if err != nil {
		return nil, err
	}
	db, err := persistence.NewDatabase(&cfg.Database, persistence.DatabaseOptions{Logger: log})
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return newApp(db, log, appledger.Options{
		MaxLockRetries: cfg.Ledger.MaxLockRetries,
		CascadeMode:    appledger.CascadeMode(cfg.Ledger.CascadeMode),
		Logger:         log,
	}), nil
}

func newApp(db *persistence.Database, log *zap.Logger, opts appledger.Options) *app {
	repos := persistence.NewGormRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	return &app{
		close:    db.Close,
		log:      log,
		repos:    repos,
		invoices: appledger.NewInvoiceService(repos, scope, opts),
		payments: appledger.NewPaymentService(repos, scope, opts),
		debts:    appledger.NewDebtService(repos, nil, opts),
	}
}
