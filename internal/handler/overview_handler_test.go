package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/middleware"
	"github.com/noah-isme/painel-admin-api/internal/models"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
)

type testEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func jsonData(rec *httptest.ResponseRecorder, out interface{}) error {
	var envelope testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

type fakeOverviewSrv struct {
	resp        *dto.PlataformaOverviewResponse
	hit         bool
	err         error
	invalidated []string
	viewers     []string
}

func (f *fakeOverviewSrv) Plataforma(_ context.Context, viewer string) (*dto.PlataformaOverviewResponse, bool, error) {
	f.viewers = append(f.viewers, "plataforma:"+viewer)
	return f.resp, f.hit, f.err
}

func (f *fakeOverviewSrv) Pedagogico(_ context.Context, viewer string) (*dto.PlataformaOverviewResponse, bool, error) {
	f.viewers = append(f.viewers, "pedagogico:"+viewer)
	return f.resp, f.hit, f.err
}

func (f *fakeOverviewSrv) Invalidate(_ context.Context, viewer string) error {
	f.invalidated = append(f.invalidated, viewer)
	return nil
}

func newOverviewContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	return c, rec
}

func TestOverviewHandlerPlataforma(t *testing.T) {
	data := dto.EmptyPlataformaOverviewData()
	data.MetricasGerais.TotalCursos = 7
	srv := &fakeOverviewSrv{resp: &dto.PlataformaOverviewResponse{Success: true, Data: data}, hit: true}
	c, rec := newOverviewContext("/dashboard/plataforma")

	NewOverviewHandler(srv).Plataforma(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var body dto.PlataformaOverviewResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &body))
	assert.True(t, body.Success)
	assert.Equal(t, 7, body.Data.MetricasGerais.TotalCursos)
	assert.Equal(t, []string{"plataforma:admin-1"}, srv.viewers)
	assert.Empty(t, srv.invalidated)
}

func TestOverviewHandlerRefreshInvalidates(t *testing.T) {
	srv := &fakeOverviewSrv{resp: &dto.PlataformaOverviewResponse{Success: true, Data: dto.EmptyPlataformaOverviewData()}}
	c, rec := newOverviewContext("/dashboard/plataforma/pedagogico?refresh=true")

	NewOverviewHandler(srv).Pedagogico(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"admin-1"}, srv.invalidated)
	assert.Equal(t, []string{"pedagogico:admin-1"}, srv.viewers)
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestOverviewHandlerUpstreamError(t *testing.T) {
	srv := &fakeOverviewSrv{err: appErrors.Wrap(errors.New("boom"), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "usuarios unavailable")}
	c, rec := newOverviewContext("/dashboard/plataforma/pedagogico")

	NewOverviewHandler(srv).Pedagogico(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UPSTREAM_ERROR", envelope.Error.Code)
}

func TestOverviewHandlerWithoutService(t *testing.T) {
	c, rec := newOverviewContext("/dashboard/plataforma")
	NewOverviewHandler(nil).Plataforma(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
