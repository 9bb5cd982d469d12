package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/middleware"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/response"
)

type overviewService interface {
	Plataforma(ctx context.Context, viewerID string) (*dto.PlataformaOverviewResponse, bool, error)
	Pedagogico(ctx context.Context, viewerID string) (*dto.PlataformaOverviewResponse, bool, error)
	Invalidate(ctx context.Context, viewerID string) error
}

// OverviewHandler exposes the platform dashboard aggregate.
type OverviewHandler struct {
	service overviewService
}

// NewOverviewHandler constructs the handler.
func NewOverviewHandler(service overviewService) *OverviewHandler {
	return &OverviewHandler{service: service}
}

// Plataforma godoc
// @Summary Platform dashboard overview
// @Tags Dashboard
// @Produce json
// @Param refresh query bool false "Bypass cached aggregate"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard/plataforma [get]
func (h *OverviewHandler) Plataforma(c *gin.Context) {
	h.serve(c, func(ctx context.Context, viewer string) (*dto.PlataformaOverviewResponse, bool, error) {
		return h.service.Plataforma(ctx, viewer)
	})
}

// Pedagogico godoc
// @Summary Pedagogical dashboard overview
// @Description Business sections (companies, jobs, revenue) are always zeroed.
// @Tags Dashboard
// @Produce json
// @Param refresh query bool false "Bypass cached aggregate"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/plataforma/pedagogico [get]
func (h *OverviewHandler) Pedagogico(c *gin.Context) {
	h.serve(c, func(ctx context.Context, viewer string) (*dto.PlataformaOverviewResponse, bool, error) {
		return h.service.Pedagogico(ctx, viewer)
	})
}

func (h *OverviewHandler) serve(c *gin.Context, load func(ctx context.Context, viewer string) (*dto.PlataformaOverviewResponse, bool, error)) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	ctx := c.Request.Context()
	viewer := viewerID(c)
	if queryBool(c, "refresh") {
		if err := h.service.Invalidate(ctx, viewer); err != nil {
			_ = c.Error(err)
		}
	}

	start := time.Now()
	overview, cacheHit, err := load(ctx, viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, nil, meta)
}
