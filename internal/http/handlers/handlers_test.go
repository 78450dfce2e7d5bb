package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/availability"
	"github.com/staylink/concierge/internal/concierge"
	"github.com/staylink/concierge/internal/inventory"
	"github.com/staylink/concierge/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testProperties = []models.Property{
	{
		ID: "lago", Name: "Cabaña del Lago", Capacity: 4, BasePrice: 85000,
		Location:  models.TextLocation("Pucón"),
		CardImage: "https://img.example.com/lago/card.jpg",
	},
	{
		ID: "bosque", Name: "Casa Bosque", Capacity: 8, BasePrice: 140000,
		Location: models.StructuredLocationValue(models.StructuredLocation{Ciudad: "Villarrica"}),
	},
}

type brokenInventory struct{}

func (brokenInventory) ListProperties(context.Context, string) ([]models.Property, error) {
	return nil, errors.New("connection refused")
}

func (brokenInventory) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, inv inventory.Inventory) *gin.Engine {
	t.Helper()
	matcher := availability.NewMatcher(inv, "https://book.example.com")
	svc := concierge.NewService(matcher, ai.Simulated{}, zerolog.Nop(), concierge.Options{
		GroundingTimeout: time.Second,
		Now:              func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) },
	})
	h := &Handler{
		Concierge: svc,
		Matcher:   matcher,
		Inventory: inv,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/intention-detect", h.IntentionDetect)
	r.POST("/api/availability", h.Availability)
	r.POST("/api/query", h.Query)
	return r
}

func newSQLiteInventory(t *testing.T) inventory.Inventory {
	t.Helper()
	store, err := inventory.NewSQLite(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.UpsertProperties(context.Background(), "sur", testProperties))
	return store
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v))
	return v
}

func TestIntentionDetect(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/intention-detect", `{"mensaje":"Quiero una cabaña este fin de semana para 4 personas"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "reservation", body["intent"])
	assert.EqualValues(t, 4, body["party_size"])
	assert.Equal(t, true, body["is_weekend"])
	assert.Equal(t, map[string]any{"check_in": "2026-10-16", "check_out": "2026-10-18"}, body["date_range"])
}

func TestIntentionDetectRequiresMessage(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/intention-detect", `{"message":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, w).Error.Code)

	w = postJSON(r, "/api/intention-detect", `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[ErrorResponse](t, w).Error.Code)
}

func TestAvailability(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/availability", `{"personas":6,"empresaId":"sur"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[AvailabilityResponse](t, w)
	assert.Equal(t, "sur", res.Empresa)
	require.Len(t, res.Opciones, 1)
	assert.Equal(t, "bosque", res.Opciones[0].ID)
	assert.Equal(t, "https://book.example.com/reservar/sur/bosque", res.Opciones[0].BookingURL)

	w = postJSON(r, "/api/availability", `{"ubicacion":"pucón","empresaId":"sur"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[AvailabilityResponse](t, w)
	require.Len(t, res.Opciones, 1)
	assert.Equal(t, "lago", res.Opciones[0].ID)
}

func TestAvailabilityNoMatchesIsEmptyList(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/availability", `{"personas":10,"empresaId":"sur"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"opciones":[]`)
}

func TestAvailabilityValidation(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	cases := map[string]string{
		"missing tenant":   `{"personas":2}`,
		"bad date":         `{"empresaId":"sur","fecha_entrada":"16/10/2026","fecha_salida":"2026-10-18"}`,
		"half range":       `{"empresaId":"sur","fecha_entrada":"2026-10-16"}`,
		"reversed range":   `{"empresaId":"sur","fecha_entrada":"2026-10-18","fecha_salida":"2026-10-16"}`,
		"negative persons": `{"empresaId":"sur","personas":-1}`,
	}
	for name, body := range cases {
		w := postJSON(r, "/api/availability", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (%s)", name, w.Code, w.Body.String())
		}
	}
}

func TestAvailabilityInventoryError(t *testing.T) {
	r := newTestRouter(t, brokenInventory{})

	w := postJSON(r, "/api/availability", `{"empresaId":"sur"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "INVENTORY_ERROR", decode[ErrorResponse](t, w).Error.Code)
}

func TestQueryGroundedReply(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/query", `{"message":"Quiero una cabaña este fin de semana para 4 personas","empresaId":"sur"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[QueryResponse](t, w)
	assert.Equal(t, models.IntentReservation, res.Intent)
	assert.Equal(t, models.TierPowerful, res.ModelUsed)
	assert.True(t, res.Simulated)
	assert.True(t, strings.HasSuffix(res.Response, ai.CallToAction))
	require.NotNil(t, res.Data)
	assert.Len(t, res.Data.Offers, 2)
	assert.Len(t, res.TurnID, 26)
}

func TestQueryTrivialHasNoData(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/query", `{"mensaje":"Está nublado hoy?","empresaId":"sur","history":[{"role":"user","content":"hola"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[QueryResponse](t, w)
	assert.Equal(t, models.IntentTrivial, res.Intent)
	assert.Equal(t, models.TierCheap, res.ModelUsed)
	assert.Nil(t, res.Data)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestQueryValidationError(t *testing.T) {
	r := newTestRouter(t, newSQLiteInventory(t))

	w := postJSON(r, "/api/query", `{"message":"","empresaId":"sur"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	res := decode[ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
	assert.Equal(t, map[string]any{"field": "message"}, res.Error.Details)

	w = postJSON(r, "/api/query", `{"message":"hola"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tenant_id")
}

func TestQueryDegradesWhenInventoryFails(t *testing.T) {
	r := newTestRouter(t, brokenInventory{})

	w := postJSON(r, "/api/query", `{"message":"Tienen disponibilidad?","empresaId":"sur"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[QueryResponse](t, w)
	assert.Nil(t, res.Data)
	assert.Contains(t, res.GroundingError, "connection refused")
	assert.NotEmpty(t, res.Response)
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, newSQLiteInventory(t)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(t, brokenInventory{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "INVENTORY_UNAVAILABLE")
}

func TestAvailabilityCriteria(t *testing.T) {
	c, err := AvailabilityRequest{Personas: 3, Ubicacion: " Pucón ", FechaEntrada: "2026-10-16", FechaSalida: "2026-10-18"}.criteria()
	require.NoError(t, err)
	assert.Equal(t, 3, c.PartySize)
	assert.Equal(t, "Pucón", c.LocationFilter)
	require.NotNil(t, c.DateRange)
	assert.Equal(t, 2, c.DateRange.Nights())

	_, err = AvailabilityRequest{FechaEntrada: "16/10/2026", FechaSalida: "2026-10-18"}.criteria()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fecha_entrada")

	_, err = AvailabilityRequest{FechaEntrada: "2026-10-16", FechaSalida: "2026-13-01"}.criteria()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fecha_salida")
}
