// Package concierge runs one guest turn through the pipeline
// classify, ground, route, prompt, generate.
package concierge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/metrics"
	"github.com/staylink/concierge/internal/models"
	"github.com/staylink/concierge/internal/nlu"
	"github.com/staylink/concierge/internal/telemetry"
)

// ValidationError is the only error Handle returns.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type Matcher interface {
	Match(ctx context.Context, tenantID string, c models.SearchCriteria) (models.AvailabilityResult, error)
}

type Options struct {
	GroundingTimeout  time.Duration
	GenerationTimeout time.Duration
	// Now anchors weekend date inference. Defaults to time.Now.
	Now func() time.Time
}

type Request struct {
	TenantID string
	Message  string
	History  []models.ChatMessage
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	matcher   Matcher
	generator ai.Generator
	logger    zerolog.Logger
	tracer    trace.Tracer
	opts      Options
}

func NewService(matcher Matcher, generator ai.Generator, logger zerolog.Logger, opts Options) *Service {
	if opts.GroundingTimeout <= 0 {
		opts.GroundingTimeout = 5 * time.Second
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		matcher:   matcher,
		generator: generator,
		logger:    logger.With().Str("component", "concierge").Logger(),
		tracer:    telemetry.Tracer("github.com/staylink/concierge/internal/concierge"),
		opts:      opts,
	}
}

func (s *Service) Handle(ctx context.Context, tenantID, message string) (models.OrchestrationResponse, error) {
	return s.HandleRequest(ctx, Request{TenantID: tenantID, Message: message})
}

// Analyze classifies a message without grounding or generation.
func (s *Service) Analyze(message string) models.ClassificationResult {
	return models.ClassificationResult{
		Intent:   nlu.Classify(message),
		Entities: nlu.ExtractAt(message, s.opts.Now()),
	}
}

func (s *Service) HandleRequest(ctx context.Context, req Request) (models.OrchestrationResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.TenantID) == "" {
		return models.OrchestrationResponse{}, ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	if strings.TrimSpace(req.Message) == "" {
		return models.OrchestrationResponse{}, ValidationError{Field: "message", Reason: "is required"}
	}

	ctx, span := s.tracer.Start(ctx, "concierge.handle", trace.WithAttributes(attribute.String("tenant.id", req.TenantID)))
	defer span.End()

	analysis := s.Analyze(req.Message)
	metrics.RecordIntent(string(analysis.Intent))

	resp := models.OrchestrationResponse{
		TurnID:   ulid.Make().String(),
		Intent:   analysis.Intent,
		Entities: analysis.Entities,
	}

	grounding, err := s.ground(ctx, req.TenantID, analysis)
	if err != nil {
		resp.GroundingError = err.Error()
	}
	resp.GroundingData = grounding

	tier := ai.Route(analysis.Intent)
	resp.ModelTierUsed = tier
	metrics.RecordTier(string(tier))

	prompt := BuildPrompt(PromptInput{
		Intent:    analysis.Intent,
		Message:   req.Message,
		Grounding: grounding,
		History:   req.History,
	})

	res := s.generate(ctx, prompt, tier)
	resp.GeneratedText = ai.EnsureCallToAction(res.Text)
	resp.ModelName = res.Model
	resp.Simulated = res.Simulated

	elapsed := time.Since(start)
	resp.LatencyMs = elapsed.Milliseconds()
	metrics.ObservePipeline(elapsed)

	span.SetAttributes(
		attribute.String("concierge.intent", string(analysis.Intent)),
		attribute.String("concierge.tier", string(tier)),
	)
	s.logger.Debug().
		Str("turn_id", resp.TurnID).
		Str("tenant_id", req.TenantID).
		Str("intent", string(resp.Intent)).
		Str("tier", string(tier)).
		Bool("grounded", grounding != nil).
		Int64("latency_ms", resp.LatencyMs).
		Msg("turn handled")

	return resp, nil
}

// ground returns nil data when grounding was skipped or failed.
func (s *Service) ground(ctx context.Context, tenantID string, analysis models.ClassificationResult) (*models.AvailabilityResult, error) {
	if !analysis.Intent.NeedsGrounding() {
		metrics.RecordGrounding(metrics.GroundingSkipped)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.GroundingTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "concierge.ground")
	defer span.End()

	result, err := s.matcher.Match(ctx, tenantID, models.CriteriaFromEntities(analysis.Entities))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grounding failed")
		metrics.RecordGrounding(metrics.GroundingError)
		s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("grounding unavailable, continuing without inventory")
		return nil, err
	}

	span.SetAttributes(attribute.Int("concierge.offers", len(result.Offers)))
	if len(result.Offers) == 0 {
		metrics.RecordGrounding(metrics.GroundingEmpty)
	} else {
		metrics.RecordGrounding(metrics.GroundingOK)
	}
	return &result, nil
}

func (s *Service) generate(ctx context.Context, prompt string, tier models.ModelTier) ai.Result {
	ctx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "concierge.generate", trace.WithAttributes(attribute.String("concierge.tier", string(tier))))
	defer span.End()

	res := s.generator.Generate(ctx, prompt, tier)
	if res.Text == "" {
		res = ai.Fallback(fmt.Errorf("generator returned empty text"))
	}

	switch {
	case res.Failed():
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "generation failed")
		metrics.RecordGeneration(metrics.GenerationFallback)
		s.logger.Warn().Err(res.Err).Str("tier", string(tier)).Msg("generation failed, using fallback reply")
	case res.Simulated:
		metrics.RecordGeneration(metrics.GenerationSimulated)
	case res.Cached:
		metrics.RecordGeneration(metrics.GenerationCached)
	default:
		metrics.RecordGeneration(metrics.GenerationOK)
	}
	return res
}
