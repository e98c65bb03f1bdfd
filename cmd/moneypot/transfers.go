package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moneypot/moneypot/internal/budget"
	"github.com/moneypot/moneypot/internal/model"
)

func transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Move money between envelopes",
		Long:  `Record, list, and undo budget reallocations between category envelopes and the Available to Budget pool.`,
	}

	cmd.AddCommand(listTransfersCmd())
	cmd.AddCommand(addTransferCmd())
	cmd.AddCommand(deleteTransferCmd())
	cmd.AddCommand(autoPopulateCmd())

	return cmd
}

func listTransfersCmd() *cobra.Command {
	var monthArg string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List category transfers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var month *model.Month
			if monthArg != "" {
				m, err := model.ParseMonth(monthArg)
				if err != nil {
					return err
				}
				month = &m
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transfers, err := store.GetTransfers(ctx, month)
			if err != nil {
				return fmt.Errorf("failed to get transfers: %w", err)
			}

			if len(transfers) == 0 {
				fmt.Println("No transfers found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDate\tFrom\tTo\tAmount\tMemo")
			for _, tr := range transfers {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
					tr.ID, tr.Date, tr.FromCategoryID, tr.ToCategoryID,
					formatMoney(tr.Amount), tr.Memo)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&monthArg, "month", "", "only show transfers in this month (YYYY-MM)")

	return cmd
}

func addTransferCmd() *cobra.Command {
	var (
		fromID int64
		toID   int64
		date   string
		memo   string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Move money between two envelopes",
		Long: `Move money from one envelope to another. Omit --from to pull from the
Available to Budget pool, or --to to return money to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			input := budget.TransferInput{
				Date:   date,
				Memo:   memo,
				Amount: amount,
			}
			if cmd.Flags().Changed("from") {
				input.From = &fromID
			}
			if cmd.Flags().Changed("to") {
				input.To = &toID
			}
			if input.Date == "" {
				input.Date = todayString()
			}

			created, err := budget.New(store).CreateTransfer(ctx, input)
			if err != nil {
				return err
			}

			fmt.Printf("Created transfer %d: %s from %d to %d on %s\n",
				created.ID, formatMoney(created.Amount),
				created.FromCategoryID, created.ToCategoryID, created.Date)
			return nil
		},
	}

	cmd.Flags().Int64Var(&fromID, "from", 0, "source category id (default: Available to Budget)")
	cmd.Flags().Int64Var(&toID, "to", 0, "destination category id (default: Available to Budget)")
	cmd.Flags().StringVar(&date, "date", "", "transfer date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&memo, "memo", "", "optional memo")

	return cmd
}

func deleteTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := budget.New(store).DeleteTransfer(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transfer: %w", err)
			}

			fmt.Printf("Deleted transfer %d\n", id)
			return nil
		},
	}
}

func autoPopulateCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "auto-populate",
		Short: "Top up every envelope to its monthly target",
		Long: `Create one transfer from Available to Budget per envelope whose lifetime
balance is below its monthly target, bringing each up to target. Envelopes
already at target are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			when := date
			if when == "" {
				when = todayString()
			}

			result, err := budget.New(store).AutoPopulate(ctx, when)
			if err != nil {
				return err
			}

			for _, item := range result.Created {
				fmt.Printf("Funded %s with %s (balance %s, target %s)\n",
					item.CategoryName, formatMoney(item.Amount),
					formatMoney(item.Balance), formatMoney(item.Target))
			}
			for _, item := range result.Skipped {
				fmt.Printf("Skipped %s, already at target\n", item.CategoryName)
			}
			for _, item := range result.Failed {
				fmt.Printf("Failed %s: %s\n", item.CategoryName, item.Error)
			}
			fmt.Printf("Transferred %s in total\n", formatMoney(result.TotalTransferred))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transfer date (YYYY-MM-DD, default today)")

	return cmd
}
