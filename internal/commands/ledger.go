package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

func newSeedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default chart of accounts and category mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			created, err := svc.Account.SeedDefaultChart(cmd.Context(), rt.actor)
			if err != nil {
				return fmt.Errorf("seeding chart of accounts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts.\n", created)
			return nil
		},
	}
}

func newReconcileCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Generate journals for every source document still missing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			report, err := svc.Reconciliation.GenerateForAllUngenerated(cmd.Context(), rt.actor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, item := range report.Succeeded {
				fmt.Fprintf(out, "ok      %s %s -> %s\n", item.SourceType, item.SourceID, item.TransactionNumber)
			}
			for _, item := range report.Failed {
				fmt.Fprintf(out, "failed  %s %s: %s\n", item.SourceType, item.SourceID, item.Reason)
			}
			fmt.Fprintf(out, "%d generated, %d failed in %s\n",
				len(report.Succeeded), len(report.Failed), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d source documents need attention", len(report.Failed))
			}
			return nil
		},
	}
}

func newTrialBalanceCommand(rt *runtime) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var date time.Time
			if asOf != "" {
				parsed, err := domain.ParseDate(asOf)
				if err != nil {
					return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
				}
				date = parsed
			}

			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			tb, err := svc.Reporting.TrialBalance(cmd.Context(), date)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Code\tAccount\tDebit\tCredit\t\n")
			for _, row := range tb.Rows {
				if row.NetDebit.IsZero() && row.NetCredit.IsZero() {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", row.AccountCode, row.AccountName,
					row.NetDebit.StringFixed(domain.MoneyPlaces), row.NetCredit.StringFixed(domain.MoneyPlaces))
			}
			fmt.Fprintf(w, "\tTotal\t%s\t%s\t\n",
				tb.TotalNetDebit.StringFixed(domain.MoneyPlaces), tb.TotalNetCredit.StringFixed(domain.MoneyPlaces))
			if err := w.Flush(); err != nil {
				return err
			}

			if !tb.IsBalanced {
				return fmt.Errorf("trial balance as of %s is out by %s", tb.AsOf.Format(domain.DateLayout), tb.Discrepancy)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balanced as of %s.\n", tb.AsOf.Format(domain.DateLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD), defaults to today")

	return cmd
}
