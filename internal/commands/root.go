// Package commands implements the ledgerctl command line: schema migrations,
// chart seeding, the reconciliation sweep, year-end operations and reports.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/platform/bootstrap"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

const defaultActor = "ledgerctl"

// runtime is what subcommands share once the root command has loaded config.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	actor  string
}

// services opens storage and builds the ledger services. Callers must invoke
// the returned release function.
func (rt *runtime) services(ctx context.Context) (*portssvc.ServiceContainer, func(), error) {
	repos, release, err := bootstrap.OpenRepositories(ctx, rt.cfg, rt.logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewServiceContainer(rt.cfg, repos), release, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the business ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = bootstrap.NewLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&rt.actor, "user", defaultActor, "user ID recorded on audit fields")

	rootCmd.AddCommand(
		newMigrateCommand(rt),
		newSeedCommand(rt),
		newReconcileCommand(rt),
		newTrialBalanceCommand(rt),
		newPeriodCommand(rt),
		newTokenCommand(rt),
	)

	return rootCmd
}
