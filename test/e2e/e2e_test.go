//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8080"
	sampleCSV      = "Nome,Matematica,Portugues,Historia,Geografia\n" +
		"Aluno1,7,8,6,7\n" +
		"Aluno2,5,5,5,5\n"
)

var baseURL string

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	client := newClient(t)

	// Step 1: Nothing to download before the first upload.
	t.Run("DownloadBeforeUpload", func(t *testing.T) {
		resp, err := client.Get(baseURL + "/download/pdf/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		if body := readBody(resp); body != "PDF não disponível" {
			t.Fatalf("unexpected body %q", body)
		}
	})

	// Step 2: Upload through the HTML form.
	t.Run("UploadForm", func(t *testing.T) {
		resp, err := upload(client, "/", "notas.csv", sampleCSV)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		page := readBody(resp)
		if resp.StatusCode != http.StatusOK || !strings.Contains(page, "Resultado da Análise") {
			t.Fatalf("status %d: %s", resp.StatusCode, page)
		}
		if !strings.Contains(page, "<td>7.00</td><td>Aprovado</td>") {
			t.Fatalf("result table missing scored row: %s", page)
		}
	})

	// Step 3: Every artifact is now downloadable with the same cookie.
	t.Run("Downloads", func(t *testing.T) {
		for path, prefix := range map[string]string{
			"/download/pdf/":            "%PDF",
			"/download/grafico_pizza/":  "\x89PNG",
			"/download/grafico_barras/": "\x89PNG",
		} {
			resp, err := client.Get(baseURL + path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			body := readBody(resp)
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("%s: status %d", path, resp.StatusCode)
			}
			if !strings.HasPrefix(body, prefix) {
				t.Fatalf("%s: unexpected content", path)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
				t.Fatalf("%s: Content-Disposition %q", path, cd)
			}
		}
	})

	// Step 4: Unsupported extension is rejected with the form message.
	t.Run("UnsupportedExtension", func(t *testing.T) {
		resp, err := upload(client, "/", "notas.txt", sampleCSV)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if page := readBody(resp); !strings.Contains(page, "Formato não suportado. Use CSV ou XLSX.") {
			t.Fatalf("missing error message: %s", page)
		}
	})

	// Step 5: JSON API reports validation errors in the envelope.
	t.Run("APIValidationError", func(t *testing.T) {
		resp, err := upload(client, "/api/v1/analyses", "notas.csv", "Nome,Matematica\nAna,7\n")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		decodeJSON(t, resp, &body)
		want := "Coluna 'Portugues' ausente | Coluna 'Historia' ausente | Coluna 'Geografia' ausente"
		if body.Error.Message != want {
			t.Fatalf("message %q, want %q", body.Error.Message, want)
		}
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 30 * time.Second}
}

func upload(client *http.Client, path, filename, content string) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("arquivo", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(fw, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
