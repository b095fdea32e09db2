package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/middleware"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stemsi/boletim/internal/service"
	"github.com/stemsi/boletim/internal/storage"
)

// DownloadPath is the route serving an artifact.
func DownloadPath(a model.Artifact) string {
	return "/download/" + string(a) + "/"
}

// DownloadHandler serves the artifacts of the session's latest analysis.
type DownloadHandler struct {
	analysisService *service.AnalysisService
	log             zerolog.Logger
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(analysisService *service.AnalysisService, log zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		analysisService: analysisService,
		log:             logger.Component(log, "download_handler"),
	}
}

// Download godoc
// GET /download/{pdf,grafico_pizza,grafico_barras}/
// Sends the artifact as an attachment, or 404 with a plain text message
// when no analysis of this session produced it.
func (h *DownloadHandler) Download(a model.Artifact) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := h.analysisService.Artifact(c.Request.Context(), middleware.SessionID(c), a)
		if errors.Is(err, storage.ErrNotFound) {
			c.String(http.StatusNotFound, a.UnavailableMessage())
			return
		}
		if err != nil {
			h.log.Error().Err(err).Str("artifact", string(a)).Msg("Failed to load artifact")
			c.String(http.StatusInternalServerError, a.UnavailableMessage())
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename()))
		c.Data(http.StatusOK, a.ContentType(), data)
	}
}
