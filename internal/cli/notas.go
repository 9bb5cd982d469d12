package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
)

func newNotasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notas",
		Short: "Inspect and edit the grades ledger in the configured store",
	}
	cmd.AddCommand(
		newNotasShowCmd(a),
		newNotasAddCmd(a),
		newNotasUndoCmd(a),
		newNotasSeedCmd(a),
	)
	return cmd
}

func refFromArgs(args []string) models.EnrollmentRef {
	return models.EnrollmentRef{CourseID: args[0], ClassID: args[1], StudentID: args[2]}
}

// withNotas opens the store for the duration of fn.
func (a *app) withNotas(cmd *cobra.Command, fn func(ctx context.Context, svc *service.NotaService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := a.notaService(ctx)
	defer closeFn()
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

func newNotasShowCmd(a *app) *cobra.Command {
	var withHistory bool
	cmd := &cobra.Command{
		Use:   "show <curso-id> <turma-id> <aluno-id>",
		Short: "Print the computed grade of one enrollment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := refFromArgs(args)
			return a.withNotas(cmd, func(ctx context.Context, svc *service.NotaService) error {
				record, err := svc.Get(ctx, ref)
				if err != nil {
					return err
				}
				if err := renderNota(cmd.OutOrStdout(), ref, record); err != nil {
					return err
				}
				if !withHistory {
					return nil
				}
				history, err := svc.History(ctx, ref)
				if err != nil {
					return err
				}
				return renderHistory(cmd.OutOrStdout(), history)
			})
		},
	}
	cmd.Flags().BoolVar(&withHistory, "history", false, "also print the audit trail")
	return cmd
}

func newNotasAddCmd(a *app) *cobra.Command {
	var (
		reason     string
		originType string
		originID   string
		originName string
	)
	cmd := &cobra.Command{
		Use:   "add <curso-id> <turma-id> <aluno-id> <nota>",
		Short: "Append a manual grade entry",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, err := strconv.ParseFloat(strings.Replace(args[3], ",", ".", 1), 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q", args[3])
			}
			req := dto.UpsertNotaRequest{Grade: &grade}
			if reason != "" {
				req.Reason = &reason
			}
			if originType != "" {
				origin := &models.OrigemRef{Type: models.OrigemTipo(strings.ToUpper(originType))}
				if originID != "" {
					origin.ID = &originID
				}
				if originName != "" {
					origin.Title = &originName
				}
				req.Origin = origin
			}
			ref := refFromArgs(args)
			return a.withNotas(cmd, func(ctx context.Context, svc *service.NotaService) error {
				record, err := svc.AddManual(ctx, ref, req)
				if err != nil {
					return err
				}
				return renderNota(cmd.OutOrStdout(), ref, record)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the grade was added")
	cmd.Flags().StringVar(&originType, "origin", "", "origin type (PROVA, ATIVIDADE, AULA, OUTRO)")
	cmd.Flags().StringVar(&originID, "origin-id", "", "origin identifier")
	cmd.Flags().StringVar(&originName, "origin-title", "", "origin title")
	return cmd
}

func newNotasUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <curso-id> <turma-id> <aluno-id>",
		Short: "Remove the newest manual grade entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := refFromArgs(args)
			return a.withNotas(cmd, func(ctx context.Context, svc *service.NotaService) error {
				record, err := svc.UndoLastManual(ctx, ref)
				if err != nil {
					return err
				}
				if record == nil {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("no manual entries to remove"))
					return err
				}
				return renderNota(cmd.OutOrStdout(), ref, record)
			})
		},
	}
}

func newNotasSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <curso-id> <turma-id> <aluno-id>...",
		Short: "Seed demo grades for a class once",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withNotas(cmd, func(ctx context.Context, svc *service.NotaService) error {
				result, err := svc.EnsureSeededForTurma(ctx, args[0], args[1], args[2:])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.AlreadySeeded {
					_, err := fmt.Fprintln(out, color.YellowString("class already seeded"))
					return err
				}
				_, err = fmt.Fprintf(out, "%s %s\n", color.GreenString("seeded:"), strings.Join(result.SeededStudents, ", "))
				return err
			})
		},
	}
}
