package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// Gzip compresses responses for clients that accept it. WebSocket upgrades
// and excluded path prefixes pass through untouched.
func Gzip(level int, exclude ...string) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() any {
			w, err := gzip.NewWriterLevel(nil, level)
			if err != nil {
				w = gzip.NewWriter(nil)
			}
			return w
		},
	}

	return func(c *gin.Context) {
		if !shouldCompress(c.Request, exclude) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		w := &gzipWriter{ResponseWriter: c.Writer, gz: gz}
		c.Writer = w
		c.Header("Vary", "Accept-Encoding")

		defer func() {
			if w.compressing {
				_ = gz.Close()
			}
			gz.Reset(nil)
			pool.Put(gz)
		}()
		c.Next()
	}
}

func shouldCompress(r *http.Request, exclude []string) bool {
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	for _, prefix := range exclude {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

// gzipWriter decides at the first write whether the response can carry a
// body and compresses it if so.
type gzipWriter struct {
	gin.ResponseWriter
	gz          *gzip.Writer
	decided     bool
	compressing bool
}

func (w *gzipWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true
	status := w.ResponseWriter.Status()
	if status == http.StatusNoContent || status == http.StatusNotModified || w.Header().Get("Content-Encoding") != "" {
		return
	}
	w.compressing = true
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
}

func (w *gzipWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	w.decide()
	if !w.compressing {
		return w.ResponseWriter.Write(data)
	}
	return w.gz.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipWriter) Flush() {
	if w.compressing {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}
