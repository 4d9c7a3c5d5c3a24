package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/restalytics/restalytics/internal/models"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Report is the structured narrative handed back across the LLM boundary.
type Report struct {
	Title           string                `json:"title"`
	Summary         string                `json:"summary"`
	TopProducts     []models.ProductSales `json:"top_products"`
	AvgPrep         int                   `json:"avg_prep"`
	AvgPrep30d      int                   `json:"avg_prep_30d"`
	Alerts          []string              `json:"alerts"`
	Recommendations []string              `json:"recommendations"`
}

// Generator narrates metrics through an injected language model. The model
// handle is constructor-injected so nothing here depends on process-wide
// client state.
type Generator struct {
	model      llms.Model
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

func NewGenerator(model llms.Model, cfg models.LLMConfig, logger *zap.Logger) *Generator {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Generator{
		model:      model,
		timeout:    timeout,
		maxRetries: retries,
		logger:     logger,
	}
}

// complete performs one bounded, retryable model call.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		response, err := llms.GenerateFromSinglePrompt(callCtx, g.model, prompt)
		cancel()
		if err == nil {
			return response, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == g.maxRetries {
			break
		}
		g.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", g.maxRetries+1, lastErr)
}

// GenerateReport asks the model for the consolidated JSON report. The raw
// model text is returned alongside the parsed report so callers can fall back
// to it when the model strays from the requested format.
func (g *Generator) GenerateReport(ctx context.Context, m models.AggregatedMetrics, alerts []string) (*Report, string, error) {
	topProducts, _ := json.Marshal(m.TopProducts)
	prompt, err := RenderPrompt(reportPrompt, map[string]any{
		"restaurant_name": m.RestaurantName,
		"top_products":    string(topProducts),
		"avg_prep":        m.AvgPrepSeconds,
		"avg_prep_30d":    m.AvgPrep30dSeconds,
		"alerts":          strings.Join(alerts, "; "),
	})
	if err != nil {
		return nil, "", err
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	report := &Report{}
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), report); err != nil {
		return nil, raw, fmt.Errorf("model response is not valid report JSON: %w", err)
	}
	return report, raw, nil
}

// NarrateAnomalies asks the model for a free-text reading of the metrics.
func (g *Generator) NarrateAnomalies(ctx context.Context, m models.AggregatedMetrics) (string, error) {
	metricsJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	prompt, err := RenderPrompt(anomaliesPrompt, map[string]any{
		"metrics_data": string(metricsJSON),
	})
	if err != nil {
		return "", err
	}
	return g.complete(ctx, prompt)
}

// Chat sends a free-form prompt, optionally prefixed with metrics context.
func (g *Generator) Chat(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, prompt)
}

// ExtractJSON returns the widest {...} window in the model output. Models
// often wrap JSON answers in prose or code fences.
func ExtractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
