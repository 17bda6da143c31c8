// Command mockvendor runs a deterministic Responses API server for local
// development and conformance testing. It emits predictable SSE streams
// based on request content analysis so the client's translation layer can
// be exercised without real credentials.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rhuss/anfrage/pkg/api"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /responses", handleResponses)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock vendor starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock vendor failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock vendor shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func handleResponses(w http.ResponseWriter, r *http.Request) {
	var req api.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"type":"invalid_request","message":"invalid request body"}}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	s := &sseWriter{w: w, flusher: flusher}
	if len(req.Tools) > 0 {
		streamToolCall(s, model)
	} else {
		streamText(s, model, pickTokens(&req))
	}
}

// pickTokens chooses the scripted reply from the last user message.
func pickTokens(req *api.Request) []string {
	tokens := []string{"Hello", ", ", "nice", " ", "day", "!"}
	if strings.Contains(strings.ToLower(lastUserText(req)), "count from 1 to 5") {
		tokens = []string{"1", ", ", "2", ", ", "3", ", ", "4", ", ", "5"}
	}
	return tokens
}

func lastUserText(req *api.Request) string {
	for i := len(req.Input) - 1; i >= 0; i-- {
		item := req.Input[i]
		if item.Type != api.ItemTypeMessage || item.Role != "user" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "input_text" {
				return part.Text
			}
		}
	}
	return ""
}

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// event writes one SSE record and flushes it immediately.
func (s *sseWriter) event(eventType string, payload map[string]any) {
	payload["type"] = eventType
	data, _ := json.Marshal(payload)
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, data)
	s.flusher.Flush()
}

func (s *sseWriter) done() {
	fmt.Fprintf(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

func streamText(s *sseWriter, model string, tokens []string) {
	for _, token := range tokens {
		s.event("response.output_text.delta", map[string]any{"delta": token})
	}
	s.event("response.output_text.done", map[string]any{})

	outputTokens := len(tokens)
	s.event("response.completed", map[string]any{
		"response": map[string]any{
			"id":         "resp_mock_text",
			"model":      model,
			"created_at": time.Now().Unix(),
			"status":     "completed",
			"usage": map[string]any{
				"input_tokens":  10,
				"output_tokens": outputTokens,
				"total_tokens":  10 + outputTokens,
			},
		},
	})
	s.done()
}

func streamToolCall(s *sseWriter, model string) {
	const itemID = "item_mock_tool"
	s.event("response.output_item.added", map[string]any{
		"item": map[string]any{
			"id":      itemID,
			"type":    "function_call",
			"call_id": "call_mock_1",
			"name":    "get_weather",
		},
	})
	for _, chunk := range []string{`{"location":`, `"San Francisco",`, `"unit":"celsius"}`} {
		s.event("response.function_call_arguments.delta", map[string]any{
			"item_id": itemID,
			"delta":   chunk,
		})
	}
	s.event("response.function_call_arguments.done", map[string]any{
		"item_id": itemID,
		"name":    "get_weather",
	})
	s.event("response.completed", map[string]any{
		"response": map[string]any{
			"id":         "resp_mock_tool",
			"model":      model,
			"created_at": time.Now().Unix(),
			"status":     "incomplete",
			"usage": map[string]any{
				"input_tokens":  20,
				"output_tokens": 15,
				"total_tokens":  35,
			},
		},
	})
	s.done()
}
