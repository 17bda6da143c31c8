// Command anfrage sends a single prompt to the Codex Responses backend and
// prints the result.
//
// Configuration comes from the layered config (flags win over environment
// variables, which win over the YAML file):
//
//	ANFRAGE_CONFIG        - config file path
//	ANFRAGE_BASE_URL      - backend base URL
//	ANFRAGE_MODEL         - model name
//	ANFRAGE_REFRESH_TOKEN - OAuth refresh token credential
//	ANFRAGE_API_KEY       - API key credential (with auth.env_key)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rhuss/anfrage/pkg/auth"
	"github.com/rhuss/anfrage/pkg/chat"
	"github.com/rhuss/anfrage/pkg/client"
	"github.com/rhuss/anfrage/pkg/config"
	"github.com/rhuss/anfrage/pkg/debug"
)

func main() {
	if err := run(); err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path")
	model := flag.String("model", "", "model name (overrides config)")
	baseURL := flag.String("base-url", "", "backend base URL (overrides config)")
	system := flag.String("system", "", "system prompt")
	stream := flag.Bool("stream", false, "print deltas as they arrive")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		return fmt.Errorf("usage: anfrage [flags] <prompt>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *verbose {
		cfg.Log.Level = "DEBUG"
	}
	debug.Init(cfg.Log.Debug, cfg.Log.Level)
	if *model != "" {
		cfg.Backend.Model = *model
	}
	if *baseURL != "" {
		cfg.Backend.BaseURL = *baseURL
	}

	manager := auth.NewManager(auth.Config{
		APIKey:       cfg.Auth.APIKey,
		RefreshToken: cfg.Auth.RefreshToken,
		EnvKey:       cfg.Auth.EnvKey,
		AuthFile:     cfg.Auth.AuthFile,
	})
	slog.Debug("credentials resolved", "mode", manager.Mode())

	c, err := client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		Model:   cfg.Backend.Model,
		Auth:    manager,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var messages []chat.Message
	if *system != "" {
		messages = append(messages, chat.Text(chat.RoleSystem, *system))
	}
	messages = append(messages, chat.Text(chat.RoleUser, prompt))

	if *stream {
		return streamResponse(ctx, c, messages)
	}
	return completeResponse(ctx, c, messages)
}

func completeResponse(ctx context.Context, c *client.Client, messages []chat.Message) error {
	resp, err := c.Complete(ctx, messages, chat.Options{})
	if err != nil {
		return err
	}

	for _, w := range resp.Warnings {
		slog.Warn("unsupported feature dropped", "feature", w.Feature, "detail", w.Message)
	}
	if resp.Reasoning != "" {
		fmt.Fprintf(os.Stderr, "[reasoning] %s\n", resp.Reasoning)
	}
	fmt.Println(resp.Text)
	for _, call := range resp.ToolCalls {
		fmt.Fprintf(os.Stderr, "[tool call] %s %s(%s)\n", call.ID, call.Name, call.Input)
	}
	slog.Debug("response complete",
		"id", resp.ID, "model", resp.Model, "finish", resp.FinishReason.Kind)
	return nil
}

func streamResponse(ctx context.Context, c *client.Client, messages []chat.Message) error {
	parts, err := c.Stream(ctx, messages, chat.Options{})
	if err != nil {
		return err
	}

	for p := range parts {
		switch p.Type {
		case chat.StreamStart:
			for _, w := range p.Warnings {
				slog.Warn("unsupported feature dropped", "feature", w.Feature, "detail", w.Message)
			}
		case chat.TextDelta:
			fmt.Print(p.Delta)
		case chat.ReasoningDelta:
			fmt.Fprint(os.Stderr, p.Delta)
		case chat.ToolCallPartType:
			fmt.Fprintf(os.Stderr, "\n[tool call] %s %s(%s)\n", p.ToolCallID, p.ToolName, p.Input)
		case chat.Finish:
			fmt.Println()
			slog.Debug("stream finished", "finish", p.FinishReason.Kind)
		case chat.ErrorPart:
			slog.Warn("skipping malformed event", "error", p.Err)
		}
	}
	return ctx.Err()
}
