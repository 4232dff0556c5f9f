package main

import (
	"encoding/json"
	"strings"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/spf13/cobra"
)

func newDebtsCmd(withApp func(func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error) *cobra.Command {
	var (
		search  string
		asJSON  bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "debts",
		Short: "Print outstanding balances per customer",
		Example: `  ledgerctl debts
  ledgerctl debts --search acme
  ledgerctl debts --json`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if refresh {
				if err := a.debts.Refresh(ctx); err != nil {
					return err
				}
			}
			var (
				report *appledger.DebtReport
				err    error
			)
			if q := strings.TrimSpace(search); q != "" {
				report, err = a.debts.SearchCustomerDebts(ctx, q)
			} else {
				report, err = a.debts.ListCustomerDebts(ctx)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			tw := newTable(out)
			row(tw, "CUSTOMER", "COMPANY", "INVOICES", "BILLED", "PAID", "OUTSTANDING")
			for _, d := range report.Debts {
				row(tw, d.Name, d.Company, d.InvoiceCount, amount(d.TotalBilled), amount(d.TotalPaid), amount(d.Outstanding))
			}
			row(tw, "TOTAL", "", "", "", "", amount(report.TotalOutstanding))
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name, email, phone or company (case-insensitive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rebuild the report before printing")
	return cmd
}
