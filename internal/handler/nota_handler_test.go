package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

const notaBase = "/notas/cursos/curso-1/turmas/turma-1"

func newNotaRouter(seedEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	notas := service.NewNotaService(service.NotaServiceParams{
		Store:  kvstore.NewMemory(),
		Logger: zap.NewNop(),
		Config: service.NotaServiceConfig{SeedEnabled: seedEnabled},
	})
	handler := NewNotaHandler(notas, service.NewExportService(notas, nil, nil, nil))

	r := gin.New()
	group := r.Group("/notas/cursos/:cursoId/turmas/:turmaId")
	group.GET("", handler.ListTurma)
	group.GET("/export", handler.Export)
	group.POST("/seed", handler.Seed)
	group.GET("/alunos/:alunoId", handler.Get)
	group.POST("/alunos/:alunoId", handler.AddManual)
	group.DELETE("/alunos/:alunoId/manual", handler.UndoLastManual)
	group.GET("/alunos/:alunoId/historico", handler.History)
	group.GET("/alunos/:alunoId/lancamentos", handler.ManualEntries)
	return r
}

func serve(r *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNotaHandlerLedgerFlow(t *testing.T) {
	r := newNotaRouter(true)

	rec := serve(r, http.MethodGet, notaBase+"/alunos/aluno-0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record models.NotaRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &record))
	require.NotNil(t, record.Grade)
	assert.InDelta(t, 1.7, *record.Grade, 1e-9)

	rec = serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", map[string]interface{}{"grade": 2, "reason": "participação"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &record))
	assert.InDelta(t, 3.7, *record.Grade, 1e-9)
	assert.Equal(t, "participação", *record.Reason)

	rec = serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", map[string]interface{}{"grade": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOTA_LIMIT_EXCEEDED", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "6.3")

	rec = serve(r, http.MethodGet, notaBase+"/alunos/aluno-0/lancamentos", nil)
	var ledger models.ManualLedger
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &ledger))
	require.Len(t, ledger, 1)

	rec = serve(r, http.MethodDelete, notaBase+"/alunos/aluno-0/manual", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["removed"])
	require.NoError(t, json.Unmarshal(envelope.Data, &record))
	assert.InDelta(t, 1.7, *record.Grade, 1e-9)

	rec = serve(r, http.MethodDelete, notaBase+"/alunos/aluno-0/manual", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["removed"])

	rec = serve(r, http.MethodGet, notaBase+"/alunos/aluno-0/historico", nil)
	var history models.History
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, models.HistoryRemoved, history[0].Action)
	assert.Equal(t, models.HistoryAdded, history[1].Action)
}

func TestNotaHandlerValidation(t *testing.T) {
	r := newNotaRouter(true)

	rec := serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", map[string]interface{}{"grade": "nove"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", map[string]interface{}{"grade": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodGet, notaBase+"/export?format=xlsx&alunoIds=aluno-0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotaHandlerAbsentOrNullGradeStoresNothing(t *testing.T) {
	r := newNotaRouter(true)

	for _, body := range []map[string]interface{}{{"reason": "sem nota"}, {"grade": nil}} {
		rec := serve(r, http.MethodPost, notaBase+"/alunos/aluno-0", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var record models.NotaRecord
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &record))
		require.NotNil(t, record.Grade)
		assert.Equal(t, 0.0, *record.Grade)
	}

	rec := serve(r, http.MethodGet, notaBase+"/alunos/aluno-0/lancamentos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries models.ManualLedger
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &entries))
	assert.Empty(t, entries)
}

func TestNotaHandlerTurmaAndExport(t *testing.T) {
	r := newNotaRouter(true)

	rec := serve(r, http.MethodGet, notaBase+"?alunoIds=aluno-0,aluno-6&alunoIds=aluno-0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grid dto.NotasTurmaResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &grid))
	require.Len(t, grid.Alunos, 2)
	assert.Equal(t, "aluno-0", grid.Alunos[0].StudentID)
	assert.Nil(t, grid.Alunos[1].Nota.Grade)

	rec = serve(r, http.MethodGet, notaBase+"/export?alunoIds=aluno-0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notas_curso-1_turma-1_")
	assert.Contains(t, rec.Body.String(), "aluno-0;1,70;0,00;0;1,70;")
}

func TestNotaHandlerSeed(t *testing.T) {
	r := newNotaRouter(true)

	rec := serve(r, http.MethodPost, notaBase+"/seed", dto.SeedTurmaRequest{StudentIDs: []string{"aluno-0", "aluno-1", "aluno-2"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.SeedTurmaResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.False(t, result.AlreadySeeded)
	assert.Equal(t, []string{"aluno-0", "aluno-1", "aluno-2"}, result.SeededStudents)

	rec = serve(r, http.MethodPost, notaBase+"/seed?alunoIds=aluno-0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.True(t, result.AlreadySeeded)
}

func TestNotaHandlerSeedDisabled(t *testing.T) {
	r := newNotaRouter(false)
	rec := serve(r, http.MethodPost, notaBase+"/seed?alunoIds=aluno-0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubExporter struct{}

func (stubExporter) TurmaNotas(context.Context, string, string, []string, service.ExportFormat) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "x.pdf", ContentType: "application/pdf", Payload: []byte("%PDF")}, nil
}

func TestNotaHandlerExportPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil)
	c.Params = gin.Params{{Key: "cursoId", Value: "c"}, {Key: "turmaId", Value: "t"}}

	NewNotaHandler(nil, stubExporter{}).Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="x.pdf"`, rec.Header().Get("Content-Disposition"))
}
