package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moneypot/moneypot/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List, add, hide, and remove the accounts money flows through.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(hideAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			balances, err := store.GetAccountBalances(ctx, includeHidden)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(balances) == 0 {
				fmt.Println("No accounts found. Use 'moneypot accounts add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tName\tType\tBalance\tIn pot")
			for _, a := range balances {
				inPot := ""
				if a.InMoneypot {
					inPot = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, formatMoney(a.Balance), inPot)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "all", false, "include hidden accounts")

	return cmd
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		inMoneypot  bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := store.CreateAccount(ctx, &model.Account{
				Name:       args[0],
				Type:       model.AccountType(accountType),
				InMoneypot: inMoneypot,
			})
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Printf("Created account %q (id %d)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeBank), "account type (bank, credit_card, cash, investment, retirement, loan)")
	cmd.Flags().BoolVar(&inMoneypot, "in-pot", true, "count this account toward the shared money pot")

	return cmd
}

func hideAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide an account from listings",
		Long:  `Hidden accounts disappear from listings but their settled balance still counts toward the pot.`,
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

			hidden := true
			if err := store.UpdateAccount(ctx, id, model.AccountUpdate{Hidden: &hidden}); err != nil {
				return fmt.Errorf("failed to hide account: %w", err)
			}

			fmt.Printf("Hid account %d\n", id)
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account with no transactions",
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

			if err := store.DeleteAccount(ctx, id); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			fmt.Printf("Deleted account %d\n", id)
			return nil
		},
	}
}
