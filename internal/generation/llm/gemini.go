// Package llm adapts hosted language models to generation.LLM.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/aibuilder/aibuilder-backend/config"
	"github.com/aibuilder/aibuilder-backend/internal/generation"
)

// GeminiClient calls the Gemini API. All calls share one token bucket.
type GeminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	log     *zap.Logger
}

func NewGemini(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*GeminiClient, error) {
	if !cfg.HasValidKey() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
		log:     log,
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, opts generation.Options) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var genCfg *genai.GenerateContentConfig
	if opts.JSON {
		genCfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	g.log.Debug("gemini response",
		zap.String("model", g.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("latency", time.Since(start)),
	)
	return text, nil
}
