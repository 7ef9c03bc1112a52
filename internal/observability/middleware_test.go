// internal/observability/middleware_test.go
package observability

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newLoggedRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(buf).Level(zerolog.DebugLevel)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/labels/:label", func(c *gin.Context) {
		_ = c.Error(errors.New("value out of range"))
		c.Status(http.StatusUnprocessableEntity)
	})
	return r
}

func TestRequestLogger_SkipsHealthyMonitorPolls(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("health poll logged: %s", buf.String())
	}
}

func TestRequestLogger_RouteTemplateAndError(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/labels/310", nil))

	line := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"component":"http"`,
		`"path":"/labels/:label"`,
		`"status":422`,
		`value out of range`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %s: %s", want, line)
		}
	}
}

func TestRequestLogger_UnmatchedPath(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	if !strings.Contains(buf.String(), `"path":"unmatched"`) {
		t.Fatalf("log line=%s", buf.String())
	}
}
