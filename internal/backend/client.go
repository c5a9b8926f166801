package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"HealthBuddy/internal/config"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates an API client. The key must be non-empty; callers verify
// it at startup.
func NewClient(apiKey string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		apiKey:     apiKey,
		url:        chatCompletionsURL,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// CreateChatCompletion sends a chat request and decodes the response.
func (c *Client) CreateChatCompletion(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openai_api_call")
	defer span.End()

	start := time.Now()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	var apiResp ChatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	c.recordUsage(ctx, apiResp.Usage)

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	return &apiResp, nil
}

// recordUsage records token usage counters from the response usage map.
func (c *Client) recordUsage(ctx context.Context, usage map[string]interface{}) {
	if usage == nil {
		return
	}

	for key, value := range usage {
		if intVal, ok := value.(float64); ok {
			counter, err := c.meter.Int64Counter(
				fmt.Sprintf("llm.usage.%s", key),
				metric.WithDescription(fmt.Sprintf("LLM usage metric: %s", key)),
			)
			if err != nil {
				c.logger.Warn("failed to create counter", "key", key, "error", err)
				continue
			}
			counter.Add(ctx, int64(intVal))
		}
	}
}
