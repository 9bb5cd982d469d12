// Package cli implements painelctl, the operator command line for the admin panel.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/repository"
	"github.com/noah-isme/painel-admin-api/internal/service"
	"github.com/noah-isme/painel-admin-api/pkg/config"
)

// app carries what every subcommand needs once configuration is resolved.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	noColor bool
	store   string
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		return err
	}
	return nil
}

// NewRootCmd wires every subcommand.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "painelctl",
		Short:         "Operate the admin panel dashboard and grades ledger",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if a.store != "" {
				cfg.Notas.Store = a.store
			}
			a.cfg = cfg
			if a.noColor {
				color.NoColor = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&a.store, "store", "", "grades store backend (memory, redis, postgres, none); defaults to NOTAS_STORE")

	root.AddCommand(newOverviewCmd(a), newNotasCmd(a), newTokenCmd(a))
	return root
}

// notaService opens the configured ledger store. The returned function closes it.
func (a *app) notaService(ctx context.Context) (*service.NotaService, func(), error) {
	store, closeFn, err := repository.OpenKVStore(ctx, a.cfg)
	if err != nil {
		return nil, closeFn, err
	}
	svc := service.NewNotaService(service.NotaServiceParams{
		Store:  store,
		Logger: a.logger,
		Config: service.NotaServiceConfig{SeedEnabled: a.cfg.Notas.SeedEnabled},
	})
	return svc, closeFn, nil
}
