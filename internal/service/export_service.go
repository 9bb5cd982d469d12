package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type turmaGradeLister interface {
	ListForTurma(ctx context.Context, courseID, classID string, studentIDs []string) (*dto.NotasTurmaResponse, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders class grade grids as CSV or PDF.
type ExportService struct {
	notas  turmaGradeLister
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(notas turmaGradeLister, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{notas: notas, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseExportFormat validates a user supplied format, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// TurmaNotas renders the grade grid of a class.
func (s *ExportService) TurmaNotas(ctx context.Context, courseID, classID string, studentIDs []string, format ExportFormat) (*ExportFile, error) {
	grid, err := s.notas.ListForTurma(ctx, courseID, classID, studentIDs)
	if err != nil {
		return nil, err
	}
	dataset := turmaDataset(grid)
	dataset.GeneratedAt = s.now().UTC()

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		s.logger.Error("grade export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("notas_%s_%s_%s.%s",
		sanitizeFilename(grid.CourseID), sanitizeFilename(grid.ClassID), dataset.GeneratedAt.Format("20060102_150405"), format)
	return &ExportFile{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func turmaDataset(grid *dto.NotasTurmaResponse) export.Dataset {
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Notas - curso %s, turma %s", grid.CourseID, grid.ClassID),
		Headers: []string{"Aluno", "Nota base", "Total manual", "Lançamentos", "Nota final", "Atualizado em"},
		Rows:    make([][]string, 0, len(grid.Alunos)),
	}
	for _, aluno := range grid.Alunos {
		dataset.Rows = append(dataset.Rows, []string{
			aluno.StudentID,
			formatNota(aluno.BaseGrade),
			formatDecimal(aluno.ManualTotal),
			strconv.Itoa(aluno.Entries),
			formatNota(aluno.Nota.Grade),
			aluno.Nota.UpdatedAt.UTC().Format("02/01/2006 15:04"),
		})
	}
	return dataset
}

func formatNota(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatDecimal(*v)
}

// formatDecimal uses the Brazilian decimal comma.
func formatDecimal(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
