package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/moneypot/moneypot/internal/budget"
	"github.com/moneypot/moneypot/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage budget envelopes",
		Long:  `List, add, update, and hide the category envelopes money is budgeted into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(setTargetCmd())
	cmd.AddCommand(hideCategoryCmd())
	cmd.AddCommand(unhideCategoryCmd())
	cmd.AddCommand(showCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx, includeHidden)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println("No categories found. Use 'moneypot categories add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tName\tMonthly target")
			for _, cat := range categories {
				target := ""
				if cat.MonthlyAmount.IsPositive() {
					target = formatMoney(cat.MonthlyAmount)
				}
				name := cat.Name
				if cat.IsSystem {
					name += " (system)"
				}
				if cat.Hidden {
					name += " (hidden)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, name, target)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "all", false, "include hidden categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var monthlyTarget string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			target := decimal.Zero
			if monthlyTarget != "" {
				var err error
				target, err = parseAmount(monthlyTarget)
				if err != nil {
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := store.CreateCategory(ctx, &model.Category{
				Name:          args[0],
				MonthlyAmount: target,
			})
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Printf("Created category %q (id %d)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthlyTarget, "target", "", "monthly funding target used by auto-populate")

	return cmd
}

func renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a category, keeping its history",
		Args:  cobra.ExactArgs(2),
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

			name := args[1]
			if err := store.UpdateCategory(ctx, id, model.CategoryUpdate{Name: &name}); err != nil {
				return fmt.Errorf("failed to rename category: %w", err)
			}

			fmt.Printf("Renamed category %d to %q\n", id, name)
			return nil
		},
	}
}

func setTargetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-target <id> <amount>",
		Short: "Set a category's monthly funding target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateCategory(ctx, id, model.CategoryUpdate{MonthlyAmount: &amount}); err != nil {
				return fmt.Errorf("failed to set target: %w", err)
			}

			fmt.Printf("Set monthly target for category %d to %s\n", id, formatMoney(amount))
			return nil
		},
	}
}

func hideCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide a category from budgeting",
		Args:  cobra.ExactArgs(1),
		RunE:  setCategoryHidden(true, "Hid category %d\n"),
	}
}

func unhideCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unhide <id>",
		Short: "Return a hidden category to budgeting",
		Args:  cobra.ExactArgs(1),
		RunE:  setCategoryHidden(false, "Unhid category %d\n"),
	}
}

func showCategoryCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one category's month in detail",
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

			today := asOf
			if today == "" {
				today = todayString()
			}

			detail, err := budget.New(store).CategoryDetail(ctx, id, today)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n\n", detail.Name, detail.Month)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Carried forward\t%s\n", formatMoney(detail.CarriedForward))
			fmt.Fprintf(w, "Budgeted\t%s\n", formatMoney(detail.Budgeted))
			fmt.Fprintf(w, "Moved away\t%s\n", formatMoney(detail.TransfersOut))
			fmt.Fprintf(w, "Activity\t%s\n", formatMoney(detail.Activity))
			fmt.Fprintf(w, "Pending\t%s\n", formatMoney(detail.PendingActivity))
			fmt.Fprintf(w, "Available\t%s\n", formatMoney(detail.Available))
			fmt.Fprintf(w, "Remaining\t%s%%\n", detail.PercentRemaining.StringFixed(1))
			fmt.Fprintf(w, "Spent last month\t%s\n", formatMoney(detail.SpentLastMonth))
			if detail.TransactionCount > 0 {
				fmt.Fprintf(w, "Transactions\t%d (avg %s)\n", detail.TransactionCount, formatMoney(detail.AvgPerTransaction))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if detail.IsOverBudget {
				fmt.Println("\nThis envelope is over budget.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "compute the detail as of this date (YYYY-MM-DD)")

	return cmd
}

func setCategoryHidden(hidden bool, doneFormat string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		if err := store.UpdateCategory(ctx, id, model.CategoryUpdate{Hidden: &hidden}); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		fmt.Printf(doneFormat, id)
		return nil
	}
}
