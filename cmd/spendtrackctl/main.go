// spendtrackctl is an operator tool that works directly against the local
// data backend, bypassing the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendtrack/internal/cli"
	"spendtrack/internal/core"
	"spendtrack/internal/export"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
	"spendtrack/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "spendtrackctl",
	Short:         "Operate on the spendtrack data backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

type env struct {
	store  store.Store
	ledger *services.LedgerService
	admin  *services.AdminService
}

// setup opens the backend per the same environment the server uses.
func setup() *env {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentCtl)
	st := cli.OpenStore(cfg, logger)
	creds := cli.OpenCredentials(cfg)
	return &env{
		store:  st,
		ledger: services.NewLedgerService(st, nil, logger),
		admin:  services.NewAdminService(creds, st, logger),
	}
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered usernames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := setup()
		defer e.store.Close()

		users, err := e.admin.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Println(user)
		}
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <username>",
	Short: "Truncate a user's ledger, keeping the account and budgets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := setup()
		defer e.store.Close()

		if err := e.admin.PurgeUserData(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("purged ledger of %s\n", args[0])
		return nil
	},
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <username>",
	Short: "Write a user's ledger to stdout or a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := setup()
		defer e.store.Close()

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		records, err := e.ledger.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return export.Write(os.Stdout, format, args[0], records)
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage budgets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <username> <category> <limit>",
	Short: "Upsert the monthly limit for a category",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := setup()
		defer e.store.Close()

		cents, err := core.ParseLimitCents(args[2])
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[2], err)
		}
		if err := e.ledger.SetBudget(cmd.Context(), args[0], args[1], core.Money{Cents: cents}); err != nil {
			return err
		}
		fmt.Printf("budget for %s/%s set to %s\n", args[0], args[1], core.FormatCents(cents))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: csv, xlsx or pdf")
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(usersCmd, purgeCmd, exportCmd, budgetCmd)
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
