package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/analysis"
	"github.com/stemsi/boletim/internal/charts"
	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/errlog"
	"github.com/stemsi/boletim/internal/handler"
	"github.com/stemsi/boletim/internal/report"
	"github.com/stemsi/boletim/internal/response"
	"github.com/stemsi/boletim/internal/service"
	"github.com/stemsi/boletim/internal/storage"
	"github.com/stemsi/boletim/internal/validator"
	"github.com/stemsi/boletim/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = "Nome,Matematica,Portugues,Historia,Geografia\n" +
	"Aluno1,7,8,6,7\n" +
	"Aluno2,5,5,5,5\n"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	m.Run()
}

type testApp struct {
	engine *gin.Engine
	errLog *errlog.Memory
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		GinMode:           gin.TestMode,
		ArtifactTTL:       time.Hour,
		MaxUploadBytes:    1 << 20,
		UploadRate:        100,
		BrotliQuality:     4,
		SessionCookieName: "boletim_session",
	}

	errLog := errlog.NewMemory()
	store := storage.NewMemoryStore(cfg.ArtifactTTL)
	pipeline := analysis.NewPipeline(charts.NewRenderer(), report.NewComposer(), errLog, zerolog.Nop())
	svc := service.NewAnalysisService(pipeline, store, errLog, cfg, zerolog.Nop())

	templates, err := web.Templates()
	require.NoError(t, err)

	handlers := &Handlers{
		Analysis: handler.NewAnalysisHandler(svc, zerolog.Nop()),
		Download: handler.NewDownloadHandler(svc, zerolog.Nop()),
		System:   handler.NewSystemHandler(store, config.StorageMemory, zerolog.Nop()),
	}
	return &testApp{engine: SetupRouter(ctx, handlers, templates, cfg), errLog: errLog}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("arquivo", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestShowForm(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload de arquivo")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestUpload_RendersResultAndEnablesDownloads(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/", "notas.csv", validCSV))
	require.Equal(t, http.StatusOK, w.Code)

	page := w.Body.String()
	assert.Contains(t, page, "Resultado da Análise")
	assert.Contains(t, page, "<th>Média</th>")
	assert.Contains(t, page, "<td>7.00</td><td>Aprovado</td>")
	assert.Contains(t, page, "<td>5.00</td><td>Reprovado</td>")

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	tests := []struct {
		path        string
		contentType string
		filename    string
		prefix      string
	}{
		{"/download/pdf/", "application/pdf", "relatorio_alunos.pdf", "%PDF"},
		{"/download/grafico_pizza/", "image/png", "distribuicao.png", "\x89PNG"},
		{"/download/grafico_barras/", "image/png", "desempenho.png", "\x89PNG"},
	}
	for _, tt := range tests {
		w := app.do(httptest.NewRequest(http.MethodGet, tt.path, nil), cookies...)
		require.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="`+tt.filename+`"`, w.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(w.Body.String(), tt.prefix), tt.path)
	}
	assert.Empty(t, app.errLog.Entries())
}

func TestDownload_WithoutPriorRun(t *testing.T) {
	app := newTestApp(t)

	tests := map[string]string{
		"/download/pdf/":            "PDF não disponível",
		"/download/grafico_pizza/":  "Imagem não disponível",
		"/download/grafico_barras/": "Imagem não disponível",
	}
	for path, msg := range tests {
		w := app.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, msg, w.Body.String(), path)
	}
}

func TestDownload_OtherSessionCannotSeeArtifacts(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/", "notas.csv", validCSV))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/download/pdf/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/", "notas.txt", validCSV))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Formato não suportado. Use CSV ou XLSX.")
	assert.Contains(t, w.Body.String(), "Upload de arquivo")
	assert.Empty(t, app.errLog.Entries())
}

func TestUpload_InvalidSheetShowsAggregatedMessage(t *testing.T) {
	app := newTestApp(t)

	csvData := "Nome,Matematica,Portugues,Historia,Geografia\n,7,7,7,7\nAna,7,7,7,7\nAna,-1,7,7,7\n"
	w := app.do(uploadRequest(t, "/", "notas.csv", csvData))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Existem alunos sem nome | Existem nomes duplicados | Existem notas negativas")
	assert.Len(t, app.errLog.Entries(), 1)
}

func TestUpload_MissingFile(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Selecione um arquivo CSV ou XLSX.")
	assert.Contains(t, w.Body.String(), "<li>arquivo é um campo obrigatório</li>")
	assert.Empty(t, app.errLog.Entries())
}

func TestAPI_MissingFileReportsField(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/api/v1/analyses", "", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrFileRequired, body.Error.Code)
	assert.Equal(t, "Selecione um arquivo CSV ou XLSX.", body.Error.Message)
	assert.Equal(t, map[string]string{"arquivo": "arquivo é um campo obrigatório"}, body.Error.Fields)
}

func TestAPI_CreateAnalysis(t *testing.T) {
	app := newTestApp(t)

	w := app.do(uploadRequest(t, "/api/v1/analyses", "notas.csv", validCSV))
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			Analise struct {
				Alunos []struct {
					Nome     string  `json:"nome"`
					Media    float64 `json:"media"`
					Situacao string  `json:"situacao"`
				} `json:"alunos"`
				Resumo struct {
					Total     int `json:"total"`
					Aprovados int `json:"aprovados"`
				} `json:"resumo"`
			} `json:"analise"`
			Downloads map[string]string `json:"downloads"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Data.Analise.Alunos, 2)
	assert.Equal(t, 7.0, body.Data.Analise.Alunos[0].Media)
	assert.Equal(t, "Reprovado", body.Data.Analise.Alunos[1].Situacao)
	assert.Equal(t, 1, body.Data.Analise.Resumo.Aprovados)
	assert.Equal(t, "/download/pdf/", body.Data.Downloads["pdf"])
}

func TestAPI_Errors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     response.ErrCode
		message  string
	}{
		{"unsupported", "notas.txt", validCSV, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile, "Formato não suportado. Use CSV ou XLSX."},
		{"empty", "notas.csv", "Nome,Matematica\n", http.StatusUnprocessableEntity, response.ErrInvalidSheet, "Arquivo CSV está vazio"},
		{"non numeric", "notas.csv", "Nome,Matematica,Portugues,Historia,Geografia\nAna,x,1,1,1\n", http.StatusUnprocessableEntity, response.ErrInvalidSheet, "Coluna 'Matematica' não é numérica"},
		{"missing file", "", "", http.StatusBadRequest, response.ErrFileRequired, "Selecione um arquivo CSV ou XLSX."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(uploadRequest(t, "/api/v1/analyses", tt.filename, tt.content))
			require.Equal(t, tt.status, w.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	app := newTestApp(t)

	huge := strings.Repeat("Aluno,1,1,1,1\n", (3<<20)/14)
	w := app.do(uploadRequest(t, "/api/v1/analyses", "notas.csv", "Nome,Matematica,Portugues,Historia,Geografia\n"+huge))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, app.errLog.Entries())
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(response.ErrNotFound))
}
