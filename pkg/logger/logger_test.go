package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestInitWithWriter_AddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "debug", &buf)

	Info().Str("store_id", "s-1").Msg("rating recalculated")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "reviews-service", entries[0]["service"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "s-1", entries[0]["store_id"])
}

func TestInitWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "verbose", &buf)

	Debug().Msg("hidden")
	Info().Msg("visible")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0]["message"])
}

func TestCtx_FallsBackToGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "info", &buf)

	Ctx(context.Background()).Info().Msg("no request")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "request_id")
}

func TestGinLoggerMiddleware_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "info", &buf)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/reviews/:review_id", func(c *gin.Context) {
		Ctx(c.Request.Context()).Info().Msg("inside handler")
		c.Status(http.StatusNotFound)
	})

	req, _ := http.NewRequest(http.MethodGet, "/reviews/abc", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0]["request_id"])
	assert.Equal(t, "inside handler", entries[0]["message"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "/reviews/:review_id", entries[1]["route"])
	assert.Equal(t, float64(http.StatusNotFound), entries[1]["status"])
}

func TestGinLoggerMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "info", &buf)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
