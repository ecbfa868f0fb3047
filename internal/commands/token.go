package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/middleware"
)

func newTokenCommand(rt *runtime) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = rt.cfg.JWTExpiryDuration
			}
			token, err := middleware.IssueToken(args[0], rt.cfg.JWTSecret, rt.cfg.JWTIssuer, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to JWT_EXPIRY_DURATION")

	return cmd
}
