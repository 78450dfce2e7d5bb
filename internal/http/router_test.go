package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/availability"
	"github.com/staylink/concierge/internal/concierge"
	"github.com/staylink/concierge/internal/config"
	"github.com/staylink/concierge/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticInventory []models.Property

func (s staticInventory) ListProperties(context.Context, string) ([]models.Property, error) {
	return s, nil
}

func (staticInventory) Ping(context.Context) error { return nil }

func newTestEngine(cfg config.Config) http.Handler {
	inv := staticInventory{{ID: "lago", Name: "Cabaña del Lago", Capacity: 4, BasePrice: 85000}}
	matcher := availability.NewMatcher(inv, "https://book.example.com")
	svc := concierge.NewService(matcher, ai.Simulated{}, zerolog.Nop(), concierge.Options{})
	return Traced(Router(cfg, Deps{Concierge: svc, Matcher: matcher, Inventory: inv}, zerolog.Nop()), "concierge-test")
}

func serve(h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterServesEndpoints(t *testing.T) {
	h := newTestEngine(config.Config{CORSAllowed: "*"})

	w := serve(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = serve(h, http.MethodPost, "/api/query", `{"message":"Busco cabaña","empresaId":"sur"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"intent":"reservation"`)

	w = serve(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "concierge_intents_total")
}

func TestRouterRequiresAPIKeyOnAPI(t *testing.T) {
	h := newTestEngine(config.Config{APIKey: "k1"})

	w := serve(h, http.MethodPost, "/api/intention-detect", `{"message":"hola"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(h, http.MethodPost, "/api/intention-detect", `{"message":"hola"}`, map[string]string{"X-API-Key": "k1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestRouterRateLimitsAPI(t *testing.T) {
	h := newTestEngine(config.Config{RateLimitRPS: 1, RateLimitBurst: 1})

	w := serve(h, http.MethodPost, "/api/intention-detect", `{"message":"hola"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(h, http.MethodPost, "/api/intention-detect", `{"message":"hola"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouterCORS(t *testing.T) {
	h := newTestEngine(config.Config{CORSAllowed: "https://staylink.example, https://admin.staylink.example"})

	w := serve(h, http.MethodOptions, "/api/query", "", map[string]string{
		"Origin":                        "https://admin.staylink.example",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, "https://admin.staylink.example", w.Header().Get("Access-Control-Allow-Origin"))
}
