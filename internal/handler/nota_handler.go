package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/response"
)

type notaService interface {
	Get(ctx context.Context, ref models.EnrollmentRef) (*models.NotaRecord, error)
	AddManual(ctx context.Context, ref models.EnrollmentRef, req dto.UpsertNotaRequest) (*models.NotaRecord, error)
	UndoLastManual(ctx context.Context, ref models.EnrollmentRef) (*models.NotaRecord, error)
	History(ctx context.Context, ref models.EnrollmentRef) (models.History, error)
	ManualEntries(ctx context.Context, ref models.EnrollmentRef) (models.ManualLedger, error)
	ListForTurma(ctx context.Context, courseID, classID string, studentIDs []string) (*dto.NotasTurmaResponse, error)
	EnsureSeededForTurma(ctx context.Context, courseID, classID string, studentIDs []string) (*dto.SeedTurmaResult, error)
}

type notaExporter interface {
	TurmaNotas(ctx context.Context, courseID, classID string, studentIDs []string, format service.ExportFormat) (*service.ExportFile, error)
}

// NotaHandler exposes the grades ledger.
type NotaHandler struct {
	notas    notaService
	exporter notaExporter
}

// NewNotaHandler constructs the handler.
func NewNotaHandler(notas notaService, exporter notaExporter) *NotaHandler {
	return &NotaHandler{notas: notas, exporter: exporter}
}

// Get godoc
// @Summary Computed grade of one enrollment
// @Tags Notas
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId} [get]
func (h *NotaHandler) Get(c *gin.Context) {
	record, err := h.notas.Get(c.Request.Context(), enrollmentFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// AddManual godoc
// @Summary Append a manual grade entry
// @Description The cumulative grade may not exceed 10. Negative entries lower it, floored at 0. A null or absent grade is ignored.
// @Tags Notas
// @Accept json
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoId path string true "Student ID"
// @Param payload body dto.UpsertNotaRequest true "Manual entry"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId} [post]
func (h *NotaHandler) AddManual(c *gin.Context) {
	var req dto.UpsertNotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.notas.AddManual(c.Request.Context(), enrollmentFromPath(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// UndoLastManual godoc
// @Summary Remove the newest manual grade entry
// @Tags Notas
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/manual [delete]
func (h *NotaHandler) UndoLastManual(c *gin.Context) {
	record, err := h.notas.UndoLastManual(c.Request.Context(), enrollmentFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil, map[string]interface{}{"removed": record != nil})
}

// History godoc
// @Summary Manual grade audit trail, newest first
// @Tags Notas
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/historico [get]
func (h *NotaHandler) History(c *gin.Context) {
	history, err := h.notas.History(c.Request.Context(), enrollmentFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, history)
}

// ManualEntries godoc
// @Summary Manual grade entries, newest first
// @Tags Notas
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/lancamentos [get]
func (h *NotaHandler) ManualEntries(c *gin.Context) {
	entries, err := h.notas.ManualEntries(c.Request.Context(), enrollmentFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// ListTurma godoc
// @Summary Grade grid of a class
// @Tags Notas
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoIds query string true "Comma separated student IDs"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId} [get]
func (h *NotaHandler) ListTurma(c *gin.Context) {
	ref := enrollmentFromPath(c)
	grid, err := h.notas.ListForTurma(c.Request.Context(), ref.CourseID, ref.ClassID, studentIDsFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grid)
}

// Export godoc
// @Summary Download the grade grid of a class
// @Tags Notas
// @Produce text/csv
// @Produce application/pdf
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param alunoIds query string true "Comma separated student IDs"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/export [get]
func (h *NotaHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureOff, "exports are disabled"))
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ref := enrollmentFromPath(c)
	file, err := h.exporter.TurmaNotas(c.Request.Context(), ref.CourseID, ref.ClassID, studentIDsFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Seed godoc
// @Summary Seed demo grades for a class once
// @Tags Notas
// @Accept json
// @Produce json
// @Param cursoId path string true "Course ID"
// @Param turmaId path string true "Class ID"
// @Param payload body dto.SeedTurmaRequest false "Students to consider, defaults to ?alunoIds"
// @Success 200 {object} response.Envelope
// @Router /notas/cursos/{cursoId}/turmas/{turmaId}/seed [post]
func (h *NotaHandler) Seed(c *gin.Context) {
	var req dto.SeedTurmaRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	students := req.StudentIDs
	if len(students) == 0 {
		students = studentIDsFromQuery(c)
	}
	ref := enrollmentFromPath(c)
	result, err := h.notas.EnsureSeededForTurma(c.Request.Context(), ref.CourseID, ref.ClassID, students)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
