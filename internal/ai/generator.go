// Package ai routes intents to model tiers and generates guest-facing replies,
// either through an OpenAI-compatible provider or a deterministic offline
// generator.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/staylink/concierge/internal/cache"
	"github.com/staylink/concierge/internal/models"
)

// CallToAction closes every reply, including degraded ones.
const CallToAction = "¿Te gustaría que te ayude a reservar tus fechas ahora?"

// FallbackText is returned when the provider cannot produce a reply.
const FallbackText = "Disculpa, tuve un problema para preparar tu respuesta en este momento, " +
	"pero sigo aquí para ayudarte a encontrar el alojamiento ideal. " + CallToAction

// Generator produces reply text for a prompt. Implementations never return a
// Result with empty Text; failures are reported through Result.Err.
type Generator interface {
	Generate(ctx context.Context, prompt string, tier models.ModelTier) Result
}

// Result is either generated text or a GenerationFailure carried in Err with
// FallbackText as Text.
type Result struct {
	Text      string
	Model     string
	Simulated bool
	Cached    bool
	Err       error
}

func (r Result) Failed() bool { return r.Err != nil }

// Fallback builds the failure result for err.
func Fallback(err error) Result {
	if err == nil {
		err = fmt.Errorf("generation failed")
	}
	return Result{Text: FallbackText, Err: err}
}

// EnsureCallToAction appends CallToAction unless text already ends with it.
func EnsureCallToAction(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, CallToAction) {
		return text
	}
	if text == "" {
		return CallToAction
	}
	return text + "\n\n" + CallToAction
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

// New returns the provider-backed generator when cfg carries an API key and
// the simulated one otherwise. Build it once per process and share it.
func New(cfg OpenAIConfig, c cache.Cache, logger zerolog.Logger) Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; replies will be simulated")
		return Simulated{}
	}
	return NewOpenAI(cfg, c, logger)
}
