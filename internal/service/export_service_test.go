package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/export"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("render failed")
}

func TestExportTurmaNotasCSV(t *testing.T) {
	notas := newTestNotaService(kvstore.NewMemory())
	_, err := notas.AddManual(context.Background(), enrollment("aluno-0"), dto.UpsertNotaRequest{Grade: grade(1)})
	require.NoError(t, err)

	svc := NewExportService(notas, nil, nil, nil)
	svc.now = func() time.Time { return notaNow }

	file, err := svc.TurmaNotas(context.Background(), "curso-1", "turma-1", []string{"aluno-0", "aluno-6"}, ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "notas_curso-1_turma-1_20250310_120000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Aluno;Nota base;Total manual;Lançamentos;Nota final;Atualizado em", lines[0])
	assert.Equal(t, "aluno-0;1,70;1,00;1;2,70;10/03/2025 12:00", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "aluno-6;-;0,00;0;-;"))
}

func TestExportTurmaNotasPDF(t *testing.T) {
	svc := NewExportService(newTestNotaService(kvstore.NewMemory()), nil, nil, nil)

	file, err := svc.TurmaNotas(context.Background(), "curso-1", "turma-1", []string{"aluno-0"}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Payload), "%PDF"))
}

func TestExportTurmaNotasErrors(t *testing.T) {
	svc := NewExportService(newTestNotaService(kvstore.NewMemory()), failingRenderer{}, nil, nil)

	_, err := svc.TurmaNotas(context.Background(), "curso-1", "turma-1", []string{"aluno-0"}, ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	_, err = svc.TurmaNotas(context.Background(), "", "turma-1", nil, ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
