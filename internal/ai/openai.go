package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/staylink/concierge/internal/cache"
	"github.com/staylink/concierge/internal/models"
	"github.com/staylink/concierge/internal/utils"
)

const systemPrompt = "Eres el concierge de ventas de una empresa de arriendo de cabañas y casas de vacaciones."

var ErrEmptyCompletion = errors.New("empty completion")

type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	CheapModel    string
	PowerfulModel string
	MaxTokens     int
	Temperature   float32
	// Retries is the number of extra attempts after the first one.
	Retries  int
	RPS      float64
	CacheTTL time.Duration
	// HTTPClient defaults to a client with a 45s timeout.
	HTTPClient *http.Client
}

// OpenAI talks to any OpenAI-compatible chat completions endpoint. It is safe
// for concurrent use.
type OpenAI struct {
	client      *openai.Client
	models      map[models.ModelTier]string
	maxTokens   int
	temperature float32
	retries     int
	limiter     *rate.Limiter
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
	backoff     func(attempt int) time.Duration
}

func NewOpenAI(cfg OpenAIConfig, c cache.Cache, logger zerolog.Logger) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	oc.HTTPClient = retryAfterDoer{next: httpClient}

	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		burst = max(1, int(cfg.RPS))
	}
	if c == nil {
		c = cache.Nop()
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		models: map[models.ModelTier]string{
			models.TierCheap:    orDefault(cfg.CheapModel, openai.GPT4oMini),
			models.TierPowerful: orDefault(cfg.PowerfulModel, openai.GPT4o),
		},
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retries:     max(0, cfg.Retries),
		limiter:     rate.NewLimiter(limit, burst),
		cache:       c,
		cacheTTL:    cfg.CacheTTL,
		logger:      logger.With().Str("component", "openai").Logger(),
		backoff:     linearBackoff,
	}
}

// Model returns the concrete model name configured for tier.
func (o *OpenAI) Model(tier models.ModelTier) string {
	if m, ok := o.models[tier]; ok {
		return m
	}
	return o.models[models.TierCheap]
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, tier models.ModelTier) Result {
	model := o.Model(tier)
	key := generationKey(tier, prompt)

	if b, ok := o.cache.Get(ctx, key); ok && len(b) > 0 {
		return Result{Text: string(b), Model: model, Cached: true}
	}

	text, err := o.complete(ctx, model, prompt)
	if err != nil {
		o.logger.Warn().Err(err).Str("model", model).Msg("generation failed")
		res := Fallback(err)
		res.Model = model
		return res
	}
	o.cache.Set(ctx, key, []byte(text), o.cacheTTL)
	return Result{Text: text, Model: model}
}

func (o *OpenAI) complete(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= o.retries; attempt++ {
		attempts++
		if err := o.limiter.Wait(ctx); err != nil {
			return "", err
		}

		hint := &retryHint{}
		resp, err := o.client.CreateChatCompletion(context.WithValue(ctx, hintKey{}, hint), req)
		if err == nil {
			if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
				return "", ErrEmptyCompletion
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = classifyError(err, hint)
		if !retryable(lastErr) || attempt == o.retries {
			break
		}

		delay := o.backoff(attempt + 1)
		var rl RateLimitError
		if errors.As(lastErr, &rl) && rl.RetryAfter > 0 {
			delay = rl.RetryAfter
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			break
		}
		o.logger.Debug().Err(lastErr).Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying completion")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if attempts > 1 {
		return "", fmt.Errorf("after %d attempts: %w", attempts, lastErr)
	}
	return "", lastErr
}

func classifyError(err error, hint *retryHint) error {
	if statusCode(err) == http.StatusTooManyRequests {
		return RateLimitError{RetryAfter: hint.after}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("provider request timed out: %w", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("provider request timed out: %w", err)
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	if code := statusCode(err); code != 0 {
		return code >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt)*500*time.Millisecond + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
}

func generationKey(tier models.ModelTier, prompt string) string {
	return utils.CacheKey(prompt, "gen", string(tier))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type hintKey struct{}

// retryHint carries the Retry-After header of a 429 back to the caller of
// CreateChatCompletion, which only surfaces the decoded error body.
type retryHint struct {
	after time.Duration
}

type retryAfterDoer struct {
	next *http.Client
}

func (d retryAfterDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}
	if h, ok := req.Context().Value(hintKey{}).(*retryHint); ok {
		h.after = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return resp, nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
