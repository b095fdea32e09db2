package middleware

import (
	"bytes"
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// defaultMinLength is the smallest body worth compressing.
const defaultMinLength = 1024

// BrotliConfig configures response compression.
type BrotliConfig struct {
	Quality   int
	MinLength int
}

// compressibleTypes are the media types re-encoded by Brotli. Downloads
// (application/pdf, image/png) are already compressed and pass through.
var compressibleTypes = map[string]struct{}{
	"text/html":        {},
	"text/plain":       {},
	"application/json": {},
}

// bufferedWriter holds the whole body until the handler chain returns, so
// the encoding can be chosen from the final Content-Type.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.body.Write(p)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// Brotli compresses result pages and API responses for clients that send
// "Accept-Encoding: br".
func Brotli(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaultMinLength
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		defer func() { c.Writer = orig }()

		c.Next()

		if err := writeEncoded(orig, bw.body.Bytes(), cfg); err != nil {
			_ = c.Error(err)
		}
	}
}

func writeEncoded(w gin.ResponseWriter, body []byte, cfg BrotliConfig) error {
	if len(body) == 0 {
		return nil
	}

	h := w.Header()
	h.Add("Vary", "Accept-Encoding")
	if len(body) < cfg.MinLength || h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		_, err := w.Write(body)
		return err
	}

	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	enc := brotli.NewWriterLevel(w, cfg.Quality)
	if _, err := enc.Write(body); err != nil {
		return err
	}
	return enc.Close()
}

func compressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := compressibleTypes[mediaType]
	return ok
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// Drop any quality value, e.g. "br;q=0.8".
		name, _, _ := strings.Cut(enc, ";")
		if strings.EqualFold(strings.TrimSpace(name), "br") {
			return true
		}
	}
	return false
}
