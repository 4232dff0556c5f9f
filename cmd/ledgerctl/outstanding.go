package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newOutstandingCmd(withApp func(func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding <customer-id>",
		Short: "List a customer's invoices that still have a balance",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			customerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid customer id %q: %w", args[0], err)
			}
			invoices, err := a.payments.ListOutstanding(cmd.Context(), customerID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(invoices) == 0 {
				fmt.Fprintln(out, "No outstanding invoices")
				return nil
			}
			tw := newTable(out)
			row(tw, "INVOICE", "STATUS", "DATE", "TOTAL", "PAID", "OUTSTANDING")
			for _, oi := range invoices {
				inv := oi.Invoice
				row(tw, inv.InvoiceNumber, inv.Status, inv.InvoiceDate.Format("2006-01-02"),
					amount(inv.TotalAmount), amount(inv.AmountPaid), amount(oi.Outstanding))
			}
			return tw.Flush()
		}),
	}
}
