package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/staylink/concierge/internal/concierge"
	"github.com/staylink/concierge/internal/models"
)

type Orchestrator interface {
	Analyze(message string) models.ClassificationResult
	HandleRequest(ctx context.Context, req concierge.Request) (models.OrchestrationResponse, error)
}

type Matcher interface {
	Match(ctx context.Context, tenantID string, c models.SearchCriteria) (models.AvailabilityResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Concierge Orchestrator
	Matcher   Matcher
	Inventory Pinger
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Inventory.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "INVENTORY_UNAVAILABLE", "Inventory unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type IntentionRequest struct {
	Message string `json:"message"`
	Mensaje string `json:"mensaje"`
}

type IntentionResponse struct {
	Intent models.Intent `json:"intent"`
	models.ExtractedEntities
}

// @Summary Classify a guest message
// @Description Runs the intent classifier and entity extractor only.
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body IntentionRequest true "message or mensaje"
// @Success 200 {object} IntentionResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/intention-detect [post]
func (h *Handler) IntentionDetect(c *gin.Context) {
	var req IntentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	msg := firstNonBlank(req.Message, req.Mensaje)
	if msg == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "message is required", nil)
		return
	}
	res := h.Concierge.Analyze(msg)
	c.JSON(http.StatusOK, IntentionResponse{Intent: res.Intent, ExtractedEntities: res.Entities})
}

type AvailabilityRequest struct {
	Personas     int    `json:"personas" validate:"gte=0,lte=100"`
	FechaEntrada string `json:"fecha_entrada" validate:"omitempty,datetime=2006-01-02"`
	FechaSalida  string `json:"fecha_salida" validate:"omitempty,datetime=2006-01-02"`
	Ubicacion    string `json:"ubicacion" validate:"max=120"`
	EmpresaID    string `json:"empresaId" validate:"required"`
}

type AvailabilityResponse struct {
	Empresa  string                 `json:"empresa"`
	Opciones []models.PropertyOffer `json:"opciones"`
}

// @Summary Search available properties
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body AvailabilityRequest true "search criteria"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/availability [post]
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	req.EmpresaID = strings.TrimSpace(req.EmpresaID)
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	criteria, err := req.criteria()
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	res, err := h.Matcher.Match(c.Request.Context(), req.EmpresaID, criteria)
	if err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", req.EmpresaID).Msg("availability lookup failed")
		writeError(c, http.StatusServiceUnavailable, "INVENTORY_ERROR", "Inventory unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, AvailabilityResponse{Empresa: res.TenantID, Opciones: res.Offers})
}

func (r AvailabilityRequest) criteria() (models.SearchCriteria, error) {
	c := models.SearchCriteria{
		PartySize:      r.Personas,
		LocationFilter: strings.TrimSpace(r.Ubicacion),
	}
	if r.FechaEntrada == "" && r.FechaSalida == "" {
		return c, nil
	}
	if r.FechaEntrada == "" || r.FechaSalida == "" {
		return c, errors.New("fecha_entrada and fecha_salida must be given together")
	}
	in, err := time.Parse("2006-01-02", r.FechaEntrada)
	if err != nil {
		return c, fmt.Errorf("fecha_entrada: %w", err)
	}
	out, err := time.Parse("2006-01-02", r.FechaSalida)
	if err != nil {
		return c, fmt.Errorf("fecha_salida: %w", err)
	}
	if !out.After(in) {
		return c, errors.New("fecha_salida must be after fecha_entrada")
	}
	c.DateRange = &models.DateRange{CheckIn: in, CheckOut: out}
	return c, nil
}

type QueryRequest struct {
	Message   string               `json:"message"`
	Mensaje   string               `json:"mensaje"`
	EmpresaID string               `json:"empresaId"`
	History   []models.ChatMessage `json:"history" validate:"max=50,dive"`
}

type QueryResponse struct {
	Intent         models.Intent              `json:"intent"`
	ModelUsed      models.ModelTier           `json:"model_used"`
	Response       string                     `json:"response"`
	Data           *models.AvailabilityResult `json:"data"`
	TurnID         string                     `json:"turn_id"`
	ModelName      string                     `json:"model_name,omitempty"`
	Entities       models.ExtractedEntities   `json:"entities"`
	GroundingError string                     `json:"grounding_error,omitempty"`
	Simulated      bool                       `json:"simulated"`
	LatencyMs      int64                      `json:"latency_ms"`
}

// @Summary Run one concierge turn
// @Description Classifies the message, grounds it on inventory when needed and generates the reply.
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body QueryRequest true "guest message"
// @Success 200 {object} QueryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/query [post]
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	resp, err := h.Concierge.HandleRequest(c.Request.Context(), concierge.Request{
		TenantID: req.EmpresaID,
		Message:  firstNonBlank(req.Message, req.Mensaje),
		History:  req.History,
	})
	var verr concierge.ValidationError
	if errors.As(err, &verr) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), gin.H{"field": verr.Field})
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Query failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, QueryResponse{
		Intent:         resp.Intent,
		ModelUsed:      resp.ModelTierUsed,
		Response:       resp.GeneratedText,
		Data:           resp.GroundingData,
		TurnID:         resp.TurnID,
		ModelName:      resp.ModelName,
		Entities:       resp.Entities,
		GroundingError: resp.GroundingError,
		Simulated:      resp.Simulated,
		LatencyMs:      resp.LatencyMs,
	})
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
