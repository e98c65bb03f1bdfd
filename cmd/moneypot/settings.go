package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moneypot/moneypot/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write application settings",
	}

	cmd.AddCommand(getSettingCmd())
	cmd.AddCommand(setSettingCmd())
	cmd.AddCommand(setIncomeCmd())

	return cmd
}

func getSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			value, err := store.GetSetting(ctx, args[0])
			if err != nil {
				return err
			}
			if value == "" {
				fmt.Printf("%s is not set\n", args[0])
				return nil
			}
			fmt.Println(value)
			return nil
		},
	}
}

func setSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetSetting(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Set %s\n", args[0])
			return nil
		},
	}
}

func setIncomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-income <amount>",
		Short: "Set the expected monthly income shown on the dashboard",
		Args:  cobra.ExactArgs(1),
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

			if err := store.SetSetting(ctx, model.SettingMonthlyIncome, amount.String()); err != nil {
				return err
			}
			fmt.Printf("Set monthly income to %s\n", formatMoney(amount))
			return nil
		},
	}
}
