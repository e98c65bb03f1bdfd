package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moneypot/moneypot/internal/budget"
)

func dashboardCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly budget dashboard",
		Long:  `Display every envelope's carried-forward, budgeted, activity, and available figures for the current month, along with account balances.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			today := asOf
			if today == "" {
				today = todayString()
			}

			engine := budget.New(store)
			dash, err := engine.Dashboard(ctx, today)
			if err != nil {
				return err
			}
			atb, err := engine.AvailableToBudget(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Budget for %s\n\n", dash.CurrentMonth)
			fmt.Printf("Available to Budget: %s\n", formatMoney(atb.Balance))
			if !dash.MonthlyIncome.IsZero() {
				fmt.Printf("Monthly income: %s  spent: %s\n", formatMoney(dash.MonthlyIncome), formatMoney(dash.MonthlySpent))
			}
			if dash.PendingCount > 0 {
				fmt.Printf("Pending transactions: %d\n", dash.PendingCount)
			}
			if dash.LastReconciled != "" {
				fmt.Printf("Last reconciled: %s\n", dash.LastReconciled)
			}
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Category\tCarried\tBudgeted\tActivity\tAvailable")
			for _, c := range dash.Categories {
				marker := ""
				if c.IsOverBudget {
					marker = " !"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\n",
					c.Name,
					formatMoney(c.CarriedForward),
					formatMoney(c.Budgeted),
					formatMoney(c.Activity),
					formatMoney(c.Available),
					marker)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(dash.Assets) > 0 || len(dash.Liabilities) > 0 {
				fmt.Println()
				aw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(aw, "Account\tType\tBalance")
				for _, a := range dash.Assets {
					fmt.Fprintf(aw, "%s\t%s\t%s\n", a.Name, a.Type, formatMoney(a.Balance))
				}
				for _, l := range dash.Liabilities {
					fmt.Fprintf(aw, "%s\t%s\t%s\n", l.Name, l.Type, formatMoney(l.Balance))
				}
				if err := aw.Flush(); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "compute the dashboard as of this date (YYYY-MM-DD)")

	return cmd
}
