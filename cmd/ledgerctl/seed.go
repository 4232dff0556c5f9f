package main

import (
	"context"
	"fmt"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedOptions sizes the generated demo data
type seedOptions struct {
	Customers           int
	InvoicesPerCustomer int
	Seed                uint64
}

// seedResult counts what was written
type seedResult struct {
	Customers int
	Invoices  int
	Payments  int
	Deposits  int
}

var seedMethods = []ledger.PaymentMethod{
	ledger.PaymentMethodCash,
	ledger.PaymentMethodMobileMoney,
	ledger.PaymentMethodBankTransfer,
	ledger.PaymentMethodCard,
}

var seedProducts = []string{"Business cards", "Flyers", "Vinyl banner", "Roll-up stand", "Posters", "Stickers", "Brochures"}

func newSeedCmd(withApp func(func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error) *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the ledger with fake customers, orders, invoices and payments",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			result, err := seed(cmd.Context(), a, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers, %d invoices, %d payments, %d order deposits\n",
				result.Customers, result.Invoices, result.Payments, result.Deposits)
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Customers, "customers", 10, "Number of customers to create")
	cmd.Flags().IntVar(&opts.InvoicesPerCustomer, "invoices", 3, "Invoices per customer")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed; 0 picks a random one")
	return cmd
}

// seed writes demo data through the ledger services so every invariant holds.
// Each customer gets orders with one invoice each, where most invoices receive a payment,
// plus one order still in production that carries a deposit and no invoice yet.
func seed(ctx context.Context, a *app, opts seedOptions) (*seedResult, error) {
	if opts.Customers <= 0 || opts.InvoicesPerCustomer <= 0 {
		return nil, fmt.Errorf("customers and invoices must be positive")
	}
	faker := gofakeit.New(opts.Seed)
	result := &seedResult{}

	for range opts.Customers {
		customer, err := ledger.NewCustomer(faker.Name(), faker.Email(), faker.Phone(), faker.Company())
		if err != nil {
			return result, err
		}
		if err := a.repos.Customers().Create(ctx, customer); err != nil {
			return result, err
		}
		result.Customers++

		if err := seedDeposit(ctx, a, faker, customer); err != nil {
			return result, err
		}
		result.Deposits++

		allocations := make([]ledger.Allocation, 0, opts.InvoicesPerCustomer)
		for range opts.InvoicesPerCustomer {
			inv, err := seedInvoice(ctx, a, faker, customer)
			if err != nil {
				return result, err
			}
			result.Invoices++

			// Roughly a third stays unpaid, the rest is paid partly or in full
			switch faker.Number(0, 2) {
			case 1:
				allocations = append(allocations, ledger.Allocation{InvoiceID: inv.ID, Amount: inv.TotalAmount})
			case 2:
				half := valueobject.NewMoney(inv.TotalAmount.Amount().Div(decimal.NewFromInt(2)).Round(2))
				allocations = append(allocations, ledger.Allocation{InvoiceID: inv.ID, Amount: half})
			}
		}
		if len(allocations) == 0 {
			continue
		}
		if _, err := a.payments.RecordPayment(ctx, appledger.RecordPaymentCommand{
			CustomerID:  customer.ID,
			Method:      seedMethods[faker.Number(0, len(seedMethods)-1)],
			Reference:   "SEED-" + faker.DigitN(6),
			Allocations: allocations,
		}); err != nil {
			return result, err
		}
		result.Payments++
	}

	a.log.Info("Seed complete",
		zap.Int("customers", result.Customers),
		zap.Int("invoices", result.Invoices),
		zap.Int("payments", result.Payments),
		zap.Int("deposits", result.Deposits))
	return result, nil
}

// seedDeposit plays the order workflow: it opens an order and takes a deposit against it
// before any invoice exists
func seedDeposit(ctx context.Context, a *app, faker *gofakeit.Faker, customer *ledger.Customer) error {
	order := &ledger.Order{
		BaseEntity:     shared.NewBaseEntity(),
		OrderNumber:    "ORD-" + faker.DigitN(8),
		CustomerID:     customer.ID,
		WorkflowStatus: "in_production",
	}
	if err := a.repos.Orders().Create(ctx, order); err != nil {
		return err
	}
	deposit, err := ledger.NewOrderPayment(order.ID,
		valueobject.NewMoneyFromCents(int64(faker.Number(500, 20000))),
		seedMethods[faker.Number(0, len(seedMethods)-1)],
		"DEP-"+faker.DigitN(6), "Deposit on "+order.OrderNumber)
	if err != nil {
		return err
	}
	return a.repos.Payments().Create(ctx, deposit)
}

func seedInvoice(ctx context.Context, a *app, faker *gofakeit.Faker, customer *ledger.Customer) (*ledger.Invoice, error) {
	order := &ledger.Order{
		BaseEntity:     shared.NewBaseEntity(),
		OrderNumber:    "ORD-" + faker.DigitN(8),
		CustomerID:     customer.ID,
		WorkflowStatus: "completed",
	}
	if err := a.repos.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	lines := faker.Number(1, 3)
	items := make([]ledger.ItemInput, 0, lines)
	for range lines {
		items = append(items, ledger.ItemInput{
			Description: seedProducts[faker.Number(0, len(seedProducts)-1)],
			Quantity:    decimal.NewFromInt(int64(faker.Number(1, 500))),
			UnitPrice:   valueobject.NewMoneyFromCents(int64(faker.Number(5, 2500))),
		})
	}

	inv, err := a.invoices.CreateInvoice(ctx, appledger.CreateInvoiceCommand{
		InvoiceNumber: "INV-" + faker.DigitN(8),
		CustomerID:    customer.ID,
		Items:         items,
		TaxAmount:     valueobject.Zero(),
		Details: ledger.InvoiceDetails{
			OrderID:     &order.ID,
			ProjectName: faker.BuzzWord() + " campaign",
		},
	})
	if err != nil {
		return nil, err
	}
	return a.invoices.SetStatus(ctx, inv.ID, ledger.InvoiceStatusUnpaid)
}
