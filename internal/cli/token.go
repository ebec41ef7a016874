package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/mindscreen/internal/http/middleware"
)

// NewTokenCommand mints an HMAC bearer token for local testing.
func NewTokenCommand() *cobra.Command {
	var (
		subject string
		secret  string
		admin   bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a patient or admin",
		Long: `Issue a bearer token signed with PATIENT_JWT_SECRET (or ADMIN_JWT_SECRET with
--admin). The subject becomes the patient id for patient tokens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			if secret == "" {
				if admin {
					secret = os.Getenv("ADMIN_JWT_SECRET")
				} else {
					secret = os.Getenv("PATIENT_JWT_SECRET")
				}
			}
			token, err := middleware.IssueToken(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (patient id)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to the matching env var)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Sign with ADMIN_JWT_SECRET")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
