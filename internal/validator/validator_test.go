package validator

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	Setup()
	m.Run()
}

func formContext(t *testing.T, withFile bool) *gin.Context {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withFile {
		fw, err := mw.CreateFormFile("arquivo", "notas.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte("Nome\nAna\n"))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("outro", "x"))
	}
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	return c
}

func TestBindForm(t *testing.T) {
	var form model.UploadForm
	fields := BindForm(formContext(t, true), &form)

	assert.Nil(t, fields)
	require.NotNil(t, form.Arquivo)
	assert.Equal(t, "notas.csv", form.Arquivo.Filename)
}

func TestBindForm_MissingFile(t *testing.T) {
	var form model.UploadForm
	fields := BindForm(formContext(t, false), &form)

	require.Contains(t, fields, "arquivo")
	assert.Contains(t, fields["arquivo"], "obrigatório")
}
