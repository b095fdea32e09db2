package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/response"
	"github.com/stemsi/boletim/internal/storage"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports process and storage health.
type SystemHandler struct {
	store     storage.Store
	driver    string
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(store storage.Store, driver string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		store:     store,
		driver:    driver,
		startTime: time.Now(),
		log:       logger.Component(log, "system_handler"),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Storage    string `json:"storage"`
	StorageOK  bool   `json:"storage_ok"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// Health godoc
// GET /health
// Answers 200 while the artifact store is reachable, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := healthStatus{
		Status:     "ok",
		Storage:    h.driver,
		StorageOK:  true,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Storage ping failed")
		status.Status = "degraded"
		status.StorageOK = false
		response.Success(c, http.StatusServiceUnavailable, status)
		return
	}
	response.Success(c, http.StatusOK, status)
}
