// Package client provides the high-level entry points for the Codex
// Responses backend: Complete for buffered results and Stream for
// incremental parts. Both go through the same request encoding and event
// translation, so a buffered result is exactly a folded stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rhuss/anfrage/pkg/api"
	"github.com/rhuss/anfrage/pkg/auth"
	"github.com/rhuss/anfrage/pkg/chat"
	"github.com/rhuss/anfrage/pkg/codec"
	"github.com/rhuss/anfrage/pkg/debug"
	"github.com/rhuss/anfrage/pkg/observability"
)

// DefaultBaseURL is the Codex Responses backend endpoint.
const DefaultBaseURL = "https://chatgpt.com/backend-api/codex"

// Config holds configuration for a Client.
type Config struct {
	BaseURL string
	Model   string
	Auth    *auth.Manager
	Timeout time.Duration

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to a Responses backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	auth       *auth.Manager
	httpClient *http.Client
}

// New creates a Client. The model name is required; the base URL defaults
// to the Codex backend.
func New(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("client: model is required")
	}
	if cfg.Auth == nil {
		return nil, fmt.Errorf("client: an auth manager is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		auth:       cfg.Auth,
		httpClient: httpClient,
	}, nil
}

// Complete performs one request and folds the event stream into a buffered
// response. The wire exchange is identical to Stream; only the consumption
// differs.
func (c *Client) Complete(ctx context.Context, messages []chat.Message, opts chat.Options) (*chat.Response, error) {
	start := time.Now()
	resp, warnings, err := c.send(ctx, messages, opts)
	if err != nil {
		observability.RequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	fold := &codec.FoldSink{}
	tr := codec.NewTranslator(fold, warnings)
	scanner := codec.NewRecordScanner(resp.Body)
	for {
		rec, ok := scanner.Next()
		if !ok {
			break
		}
		tr.Record(rec)
	}
	tr.Close()
	if err := scanner.Err(); err != nil {
		observability.RequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("client: read event stream: %w", err)
	}

	c.recordOutcome(start, fold.Response.Usage)
	return &fold.Response, nil
}

// Stream performs one request and returns a channel of normalized parts.
// The channel closes after the terminal part; segment ends are synthesized
// if the upstream stream is cut off.
func (c *Client) Stream(ctx context.Context, messages []chat.Message, opts chat.Options) (<-chan chat.StreamPart, error) {
	start := time.Now()
	resp, warnings, err := c.send(ctx, messages, opts)
	if err != nil {
		observability.RequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, err
	}

	ch := make(chan chat.StreamPart, 32)
	go func() {
		defer resp.Body.Close()
		defer close(ch)
		observability.StreamsActive.Inc()
		defer observability.StreamsActive.Dec()

		var usage chat.Usage
		sink := codec.SinkFunc(func(p chat.StreamPart) {
			if p.Type == chat.Finish {
				usage = p.Usage
			}
			select {
			case ch <- p:
			case <-ctx.Done():
			}
		})

		tr := codec.NewTranslator(sink, warnings)
		scanner := codec.NewRecordScanner(resp.Body)
		for {
			rec, ok := scanner.Next()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				break
			}
			tr.Record(rec)
		}
		tr.Close()
		if err := scanner.Err(); err != nil {
			sink.Part(chat.StreamPart{Type: chat.ErrorPart, Err: fmt.Errorf("client: read event stream: %w", err)})
		}

		c.recordOutcome(start, usage)
	}()
	return ch, nil
}

// send encodes the conversation, performs the HTTP exchange, and returns
// the open response body on success. The request always asks for a stream;
// both consumption modes read SSE.
func (c *Client) send(ctx context.Context, messages []chat.Message, opts chat.Options) (*http.Response, []chat.Warning, error) {
	enc, err := codec.Encode(messages, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("client: encode request: %w", err)
	}

	req := api.Request{
		Model:            c.model,
		Instructions:     enc.Instructions,
		Input:            enc.Input,
		Store:            false,
		Stream:           true,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		FrequencyPenalty: opts.FrequencyPenalty,
		PresencePenalty:  opts.PresencePenalty,
		Stop:             opts.Stop,
		Seed:             opts.Seed,
		MaxOutputTokens:  opts.MaxOutputTokens,
		Tools:            enc.Tools,
		ToolChoice:       enc.ToolChoice,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("client: marshal request: %w", err)
	}

	headers, err := c.auth.Headers(ctx, opts.Headers)
	if err != nil {
		return nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("client: create request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	debug.Log("client", "request", "method", "POST", "url", c.baseURL+"/responses",
		"model", c.model, "items", len(enc.Input), "tools", len(enc.Tools))
	debug.Raw("client", string(body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("client: backend at %s is not reachable: %w", c.baseURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, statusError(resp.StatusCode, respBody)
	}
	return resp, enc.Warnings, nil
}

// recordOutcome updates request metrics from a finished exchange.
func (c *Client) recordOutcome(start time.Time, usage chat.Usage) {
	observability.RequestsTotal.WithLabelValues(c.model, "ok").Inc()
	observability.RequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
	if usage.Input.Total != nil {
		observability.TokensTotal.WithLabelValues(c.model, "input").Add(float64(*usage.Input.Total))
	}
	if usage.Output.Total != nil {
		observability.TokensTotal.WithLabelValues(c.model, "output").Add(float64(*usage.Output.Total))
	}
}
