package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/reviews/:review_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		req, _ := http.NewRequest(http.MethodGet, "/reviews/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/reviews/:review_id", "200"))
	assert.Equal(t, float64(3), count)
}

func TestGinPrometheusMiddleware_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-health-test"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-health-test", http.MethodGet, "/health", "200"))
	assert.Equal(t, float64(0), count)
}

func TestRoutePath_Unmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-404-test"))

	req, _ := http.NewRequest(http.MethodGet, "/nope/1", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-404-test", http.MethodGet, "unmatched", "404"))
	assert.Equal(t, float64(1), count)
}

func TestDbTimer_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DbErrors.WithLabelValues("db-timer-test", string(DbOpInsert)))

	NewDbTimer("db-timer-test", DbOpInsert, "reviews").Done(nil)
	NewDbTimer("db-timer-test", DbOpInsert, "reviews").Done(errors.New("boom"))

	after := testutil.ToFloat64(DbErrors.WithLabelValues("db-timer-test", string(DbOpInsert)))
	assert.Equal(t, before+1, after)
}
