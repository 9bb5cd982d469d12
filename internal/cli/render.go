package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func renderOverview(w io.Writer, overview *dto.PlataformaOverviewResponse) error {
	bold := color.New(color.Bold).SprintFunc()
	d := overview.Data

	fmt.Fprintln(w, bold("Métricas gerais"))
	if err := renderTable(w, []string{"Usuários", "Alunos", "Instrutores", "Cursos", "Empresas", "Vagas"}, [][]string{{
		strconv.Itoa(d.MetricasGerais.TotalUsuarios),
		strconv.Itoa(d.MetricasGerais.TotalAlunos),
		strconv.Itoa(d.MetricasGerais.TotalInstrutores),
		strconv.Itoa(d.MetricasGerais.TotalCursos),
		strconv.Itoa(d.MetricasGerais.TotalEmpresas),
		strconv.Itoa(d.MetricasGerais.TotalVagas),
	}}); err != nil {
		return err
	}

	fmt.Fprintln(w, bold("Cursos"))
	if err := renderTable(w, []string{"Total", "Publicados", "Rascunho", "Arquivados", "Turmas", "Inscrições"}, [][]string{{
		strconv.Itoa(d.Cursos.Total),
		strconv.Itoa(d.Cursos.Publicados),
		strconv.Itoa(d.Cursos.Rascunho),
		strconv.Itoa(d.Cursos.Arquivados),
		strconv.Itoa(d.Cursos.TotalTurmas),
		strconv.Itoa(d.Cursos.TotalInscricoes),
	}}); err != nil {
		return err
	}

	if len(d.Usuarios.PorRole) > 0 {
		fmt.Fprintln(w, bold("Usuários por perfil"))
		rows := make([][]string, 0, len(d.Usuarios.PorRole))
		for _, rc := range d.Usuarios.PorRole {
			rows = append(rows, []string{rc.Role, strconv.Itoa(rc.Total)})
		}
		if err := renderTable(w, []string{"Perfil", "Total"}, rows); err != nil {
			return err
		}
	}

	if len(d.Faturamento.TopCursos) > 0 {
		fmt.Fprintf(w, "%s  receita estimada %s, ticket médio %s\n", bold("Faturamento"),
			formatMoney(d.Faturamento.ReceitaEstimada), formatMoney(d.Faturamento.TicketMedio))
		rows := make([][]string, 0, len(d.Faturamento.TopCursos))
		for i, curso := range d.Faturamento.TopCursos {
			rows = append(rows, []string{strconv.Itoa(i + 1), curso.Titulo, strconv.Itoa(curso.Inscricoes), formatMoney(curso.Receita)})
		}
		if err := renderTable(w, []string{"#", "Curso", "Inscrições", "Receita"}, rows); err != nil {
			return err
		}
	}

	if overview.Message != "" {
		fmt.Fprintln(w, color.YellowString(overview.Message))
	}
	return nil
}

func renderNota(w io.Writer, ref models.EnrollmentRef, record *models.NotaRecord) error {
	grade := "-"
	if record != nil && record.Grade != nil {
		grade = formatGrade(*record.Grade)
	}
	reason := ""
	updated := ""
	if record != nil {
		if record.Reason != nil {
			reason = *record.Reason
		}
		updated = record.UpdatedAt.UTC().Format("2006-01-02 15:04")
	}
	return renderTable(w, []string{"Curso", "Turma", "Aluno", "Nota", "Motivo", "Atualizado em"}, [][]string{{
		ref.CourseID, ref.ClassID, ref.StudentID, grade, reason, updated,
	}})
}

func renderHistory(w io.Writer, history models.History) error {
	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	rows := make([][]string, 0, len(history))
	for _, event := range history {
		action := string(event.Action)
		sign := "+"
		if event.Action == models.HistoryRemoved {
			action, sign = removed(action), "-"
		} else {
			action = added(action)
		}
		reason := ""
		if event.Reason != nil {
			reason = *event.Reason
		}
		rows = append(rows, []string{event.At.UTC().Format("2006-01-02 15:04"), action, sign + formatGrade(event.Grade), reason})
	}
	return renderTable(w, []string{"Quando", "Ação", "Nota", "Motivo"}, rows)
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMoney(v float64) string {
	return "R$ " + strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
