package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

func newPeriodCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Manage financial periods",
	}
	cmd.AddCommand(newPeriodListCommand(rt), newCloseYearCommand(rt), newNextYearCommand(rt))
	return cmd
}

func printPeriod(cmd *cobra.Command, p *domain.FinancialPeriod) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s..%s\t%s\n",
		p.PeriodID, p.Name, p.StartDate.Format(domain.DateLayout), p.EndDate.Format(domain.DateLayout), p.Status())
}

func newPeriodListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List financial periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			periods, err := svc.Period.ListPeriods(cmd.Context())
			if err != nil {
				return err
			}
			for i := range periods {
				printPeriod(cmd, &periods[i])
			}
			return nil
		},
	}
}

func newCloseYearCommand(rt *runtime) *cobra.Command {
	var notes string
	var skipClosingEntries bool

	cmd := &cobra.Command{
		Use:   "close <period-id>",
		Short: "Close a financial year into retained earnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			post := !skipClosingEntries
			closed, err := svc.Period.CloseFinancialYear(cmd.Context(), args[0], dto.ClosePeriodRequest{
				Notes:              notes,
				PostClosingEntries: &post,
			}, rt.actor)
			if err != nil {
				return fmt.Errorf("closing period %s: %w", args[0], err)
			}
			printPeriod(cmd, closed)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "notes appended to the period")
	cmd.Flags().BoolVar(&skipClosingEntries, "no-closing-entries", false, "lock the period without posting closing entries")

	return cmd
}

func newNextYearCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "next-year",
		Short: "Create the financial year after the latest one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := rt.services(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			next, err := svc.Period.CreateNextFinancialYear(cmd.Context(), rt.actor)
			if err != nil {
				return err
			}
			printPeriod(cmd, next)
			return nil
		},
	}
}
