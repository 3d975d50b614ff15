package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// eventWrites mimics an event stream: a small prefix, a large payload, a
// small terminator, a flush, then another event.
func eventWrites(contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		c.Writer.WriteString("data: ")
		c.Writer.WriteString(strings.Repeat("a1b2c3", 1000))
		c.Writer.WriteString("\n\n")
		c.Writer.Flush()
		c.Writer.WriteString("data: next\n\n")
	}
}

func expectedEvents() string {
	return "data: " + strings.Repeat("a1b2c3", 1000) + "\n\n" + "data: next\n\n"
}

func brotliServe(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotliMixedWritesDecodeCleanly(t *testing.T) {
	w := brotliServe(eventWrites("application/json"))

	if enc := w.Header().Get("Content-Encoding"); enc != "br" {
		t.Fatalf("Content-Encoding = %q, want br", enc)
	}
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body) != expectedEvents() {
		t.Errorf("decoded %d bytes, want %d", len(body), len(expectedEvents()))
	}
}

func TestBrotliLeavesEventStreamPlain(t *testing.T) {
	w := brotliServe(eventWrites("text/event-stream"))

	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("Content-Encoding = %q, want none", enc)
	}
	if w.Body.String() != expectedEvents() {
		t.Errorf("body altered: %d bytes, want %d", w.Body.Len(), len(expectedEvents()))
	}
}

func TestBrotliFlushBeforeThresholdStaysPlain(t *testing.T) {
	w := brotliServe(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.Status(http.StatusOK)
		c.Writer.WriteString("[")
		c.Writer.Flush()
		c.Writer.WriteString(strings.Repeat("1,", 2000) + "1]")
	})

	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("Content-Encoding = %q, want none", enc)
	}
	if want := "[" + strings.Repeat("1,", 2000) + "1]"; w.Body.String() != want {
		t.Errorf("body = %d bytes, want %d", w.Body.Len(), len(want))
	}
}

func TestBrotliSmallResponseUncompressed(t *testing.T) {
	w := brotliServe(func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Errorf("Content-Encoding = %q, want none", enc)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q", w.Body.String())
	}
}
