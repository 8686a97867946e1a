package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRelayRouter(t *testing.T) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := newTestProvider(t, "test_app")

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.GET("/v1/auth-requests/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/auth-requests", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	return router, provider
}

func serve(router http.Handler, method, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("Success_PollingUsesRoutePattern", func(t *testing.T) {
		router, provider := newRelayRouter(t)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/v1/auth-requests/"+uuid.NewString()))
		}

		output := scrape(t, provider)
		assertMetricLine(t, output, `test_app_http_requests_total`,
			`method="GET".*route="/v1/auth-requests/:id".*status_code="200"`, `3`)
		assert.NotContains(t, output, `route="/v1/auth-requests/0`)
	})

	t.Run("Success_SeparatesMethodsAndStatuses", func(t *testing.T) {
		router, provider := newRelayRouter(t)

		assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/v1/auth-requests"))
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/v1/auth-requests/"+uuid.NewString()))

		output := scrape(t, provider)
		assertMetricLine(t, output, `test_app_http_requests_total`,
			`method="POST".*route="/v1/auth-requests".*status_code="201"`, `1`)
		assertMetricLine(t, output, `test_app_http_request_duration_seconds_count`,
			`method="GET".*status_code="200"`, `1`)
	})

	t.Run("Success_UnmatchedRoutesCollapse", func(t *testing.T) {
		router, provider := newRelayRouter(t)

		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/wp-login.php"))
		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/.env"))

		output := scrape(t, provider)
		assertMetricLine(t, output, `test_app_http_requests_total`,
			`route="unmatched".*status_code="404"`, `2`)
		assert.NotContains(t, output, "wp-login")
	})

	t.Run("Success_InFlightReturnsToZero", func(t *testing.T) {
		router, provider := newRelayRouter(t)

		assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/v1/auth-requests"))

		assert.Regexp(t, `test_app_http_requests_in_flight(\{[^}]*\})? 0`, scrape(t, provider))
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/v1/auth-requests/:id", expected: "/v1/auth-requests/:id"},
		{name: "EmptyPath", input: "", expected: "unmatched"},
		{name: "RootPath", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, routeLabel(tt.input))
		})
	}
}
