package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development access token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.IsDevelopment() {
				return fmt.Errorf("token minting is disabled in %s", a.cfg.Env)
			}
			tokens := service.NewTokenService(service.TokenConfig{Secret: a.cfg.JWT.Secret, Issuer: a.cfg.JWT.Issuer})
			signed, err := tokens.Issue(args[0], models.UserRole(strings.ToUpper(role)), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
