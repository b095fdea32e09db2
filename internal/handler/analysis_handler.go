package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/analysis"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/middleware"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stemsi/boletim/internal/response"
	"github.com/stemsi/boletim/internal/service"
	"github.com/stemsi/boletim/internal/validator"
	"github.com/stemsi/boletim/internal/web"
)

// maxFormMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const maxFormMemory = 8 << 20

// missingFileMessage is shown when the form arrives without a file.
const missingFileMessage = "Selecione um arquivo CSV ou XLSX."

// AnalysisHandler serves the upload form, the result page and the JSON API.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	log             zerolog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService *service.AnalysisService, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		log:             logger.Component(log, "analysis_handler"),
	}
}

// ShowForm godoc
// GET /
// Renders the empty upload form.
func (h *AnalysisHandler) ShowForm(c *gin.Context) {
	c.HTML(http.StatusOK, web.UploadPage, gin.H{"Erro": ""})
}

// Upload godoc
// POST /
// Analyzes the uploaded sheet and renders the result table, or the form
// again with the error message.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	form, bindErr := h.bindUpload(c)
	if bindErr != nil {
		c.HTML(http.StatusOK, web.UploadPage, gin.H{"Erro": bindErr.message, "Campos": bindErr.fields})
		return
	}

	result, err := h.analysisService.AnalyzeUpload(c.Request.Context(), middleware.SessionID(c), form.Arquivo)
	if err != nil {
		h.logFailure(c, err)
		c.HTML(http.StatusOK, web.UploadPage, gin.H{"Erro": service.UserMessage(err)})
		return
	}

	c.HTML(http.StatusOK, web.ResultPage, gin.H{
		"Analise": result,
		"Linhas":  result.Table(),
	})
}

// CreateAnalysis godoc
// POST /api/v1/analyses
// Same pipeline as Upload, answering with the JSON envelope.
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	form, bindErr := h.bindUpload(c)
	if bindErr != nil {
		if bindErr.tooLarge {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrFileRequired, bindErr.message, bindErr.fields)
		return
	}

	result, err := h.analysisService.AnalyzeUpload(c.Request.Context(), middleware.SessionID(c), form.Arquivo)
	if err != nil {
		h.logFailure(c, err)
		status, code := errorStatus(err)
		response.FailWithMessage(c, status, code, service.UserMessage(err))
		return
	}

	downloads := make(map[string]string, len(model.Artifacts))
	for _, a := range model.Artifacts {
		downloads[string(a)] = DownloadPath(a)
	}
	response.Success(c, http.StatusCreated, gin.H{
		"analise":   result,
		"downloads": downloads,
	})
}

// uploadError is a rejected upload form. fields holds the translated
// validation message of each offending form field.
type uploadError struct {
	message  string
	fields   map[string]string
	tooLarge bool
}

// bindUpload parses and validates the multipart form.
func (h *AnalysisHandler) bindUpload(c *gin.Context) (*model.UploadForm, *uploadError) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &uploadError{message: service.FileTooLargeMessage, tooLarge: true}
		}
		return nil, &uploadError{message: missingFileMessage}
	}

	var form model.UploadForm
	if fields := validator.BindForm(c, &form); fields != nil {
		h.log.Debug().Interface("fields", fields).Msg("Invalid upload form")
		return nil, &uploadError{message: missingFileMessage, fields: fields}
	}
	return &form, nil
}

func (h *AnalysisHandler) logFailure(c *gin.Context, err error) {
	var failure *analysis.Failure
	ev := h.log.Info()
	if errors.As(err, &failure) {
		ev = ev.Str("stage", string(failure.Stage))
	}
	ev.Str("request_id", response.RequestID(c)).Err(err).Msg("Upload rejected")
}

// errorStatus maps a service error onto the API status and code.
func errorStatus(err error) (int, response.ErrCode) {
	var (
		loadErr       *analysis.LoadError
		validationErr *analysis.ValidationError
		nonNumeric    *analysis.NonNumericColumnError
	)
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, response.ErrUnsupportedFile
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.ErrFileTooLarge
	case errors.As(err, &loadErr), errors.As(err, &validationErr), errors.As(err, &nonNumeric):
		return http.StatusUnprocessableEntity, response.ErrInvalidSheet
	default:
		return http.StatusInternalServerError, response.ErrAnalysisFailed
	}
}
