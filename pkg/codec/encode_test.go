package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rhuss/anfrage/pkg/api"
	"github.com/rhuss/anfrage/pkg/chat"
)

func TestEncode_DefaultInstructions(t *testing.T) {
	enc, err := Encode([]chat.Message{chat.Text(chat.RoleUser, "hi")}, chat.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if enc.Instructions != "You are a helpful assistant." {
		t.Errorf("instructions = %q, want default", enc.Instructions)
	}
	if len(enc.Input) != 1 {
		t.Fatalf("expected 1 input item, got %d", len(enc.Input))
	}
	item := enc.Input[0]
	if item.Type != api.ItemTypeMessage || item.Role != "user" {
		t.Errorf("item type=%q role=%q, want message/user", item.Type, item.Role)
	}
	if len(item.Content) != 1 || item.Content[0].Type != "input_text" || item.Content[0].Text != "hi" {
		t.Errorf("content = %+v, want one input_text 'hi'", item.Content)
	}
}

func TestEncode_SystemMessagesAggregated(t *testing.T) {
	msgs := []chat.Message{
		chat.Text(chat.RoleSystem, "Be brief."),
		chat.Text(chat.RoleUser, "hi"),
		chat.Text(chat.RoleSystem, "Answer in French."),
	}

	enc, err := Encode(msgs, chat.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if enc.Instructions != "Be brief.\n\nAnswer in French." {
		t.Errorf("instructions = %q, want both system messages joined by blank line", enc.Instructions)
	}
	// System content must never appear inside input.
	for _, item := range enc.Input {
		if item.Role == "system" {
			t.Fatal("system role leaked into input")
		}
	}
	if len(enc.Input) != 1 {
		t.Errorf("expected 1 input item, got %d", len(enc.Input))
	}
}

func TestEncode_UserFiles(t *testing.T) {
	msgs := []chat.Message{{
		Role: chat.RoleUser,
		Parts: []chat.Part{
			{Type: chat.PartFile, File: &chat.FilePart{MediaType: "image/png", URL: "https://example.com/cat.png"}},
			{Type: chat.PartFile, File: &chat.FilePart{MediaType: "image/jpeg", Data: []byte{0x01, 0x02}}},
			{Type: chat.PartFile, File: &chat.FilePart{MediaType: "image/webp", Base64: "aGVsbG8="}},
			{Type: chat.PartFile, File: &chat.FilePart{MediaType: "application/pdf", Data: []byte("pdf")}},
		},
	}}

	enc, err := Encode(msgs, chat.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	content := enc.Input[0].Content
	if len(content) != 4 {
		t.Fatalf("expected 4 content parts, got %d", len(content))
	}
	if content[0].Type != "input_image" || content[0].ImageURL != "https://example.com/cat.png" {
		t.Errorf("url reference must pass through verbatim, got %+v", content[0])
	}
	if content[1].Type != "input_image" || content[1].ImageURL != "data:image/jpeg;base64,AQI=" {
		t.Errorf("inline bytes must become a data URL, got %+v", content[1])
	}
	if content[2].Type != "input_image" || content[2].ImageURL != "data:image/webp;base64,aGVsbG8=" {
		t.Errorf("base64 text must become a data URL, got %+v", content[2])
	}
	if content[3].Type != "input_text" || !strings.Contains(content[3].Text, "application/pdf") {
		t.Errorf("non-image file must become a placeholder naming the media type, got %+v", content[3])
	}
}

func TestEncode_AssistantToolCalls(t *testing.T) {
	msgs := []chat.Message{{
		Role: chat.RoleAssistant,
		Parts: []chat.Part{
			{Type: chat.PartReasoning, Text: "thinking about weather"},
			{Type: chat.PartText, Text: "Let me check."},
			{Type: chat.PartToolCall, ToolCall: &chat.ToolCallPart{ID: "call_1", Name: "get_weather", Input: `{"city":"Paris"}`}},
			{Type: chat.PartToolCall, ToolCall: &chat.ToolCallPart{Name: "get_time", Input: `{}`}},
		},
	}}

	enc, err := Encode(msgs, chat.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(enc.Input) != 3 {
		t.Fatalf("expected message + 2 function calls, got %d items", len(enc.Input))
	}

	msg := enc.Input[0]
	if msg.Type != api.ItemTypeMessage || msg.Role != "assistant" {
		t.Fatalf("first item = %+v, want assistant message", msg)
	}
	if msg.Content[0].Text != "<reasoning>thinking about weather</reasoning>" {
		t.Errorf("reasoning must survive as delimited text, got %q", msg.Content[0].Text)
	}
	if msg.Content[1].Type != "output_text" || msg.Content[1].Text != "Let me check." {
		t.Errorf("assistant text = %+v", msg.Content[1])
	}

	call := enc.Input[1]
	if call.Type != api.ItemTypeFunctionCall || call.CallID != "call_1" || call.Name != "get_weather" {
		t.Errorf("function call item = %+v", call)
	}
	if call.Arguments != `{"city":"Paris"}` {
		t.Errorf("arguments = %q", call.Arguments)
	}

	// A tool call without an id gets a generated one.
	if !api.ValidateCallID(enc.Input[2].CallID) {
		t.Errorf("generated call id = %q, want call_ prefix", enc.Input[2].CallID)
	}
}

func TestFlattenToolResult(t *testing.T) {
	tests := []struct {
		name   string
		result chat.ToolResultPart
		want   string
	}{
		{"text verbatim", chat.ToolResultPart{Kind: chat.ResultText, Text: "sunny"}, "sunny"},
		{"error text verbatim", chat.ToolResultPart{Kind: chat.ResultErrorText, Text: "boom"}, "boom"},
		{"json serialized", chat.ToolResultPart{Kind: chat.ResultJSON, Value: json.RawMessage(`{"temp":21}`)}, `{"temp":21}`},
		{"error json serialized", chat.ToolResultPart{Kind: chat.ResultErrorJSON, Value: json.RawMessage(`{"code":500}`)}, `{"code":500}`},
		{"denied with reason", chat.ToolResultPart{Kind: chat.ResultExecutionDenied, Text: "not allowed"}, "not allowed"},
		{"denied without reason", chat.ToolResultPart{Kind: chat.ResultExecutionDenied}, "Tool execution was denied."},
		{
			"content keeps only text sub-parts",
			chat.ToolResultPart{Kind: chat.ResultContent, Content: []chat.ResultContentPart{
				{Type: "text", Text: "line one"},
				{Type: "image", Text: "ignored"},
				{Type: "text", Text: "line two"},
			}},
			"line one\nline two",
		},
		{"unknown kind empty", chat.ToolResultPart{Kind: "mystery"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flattenToolResult(&tt.result); got != tt.want {
				t.Errorf("flattenToolResult = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_ToolResultItems(t *testing.T) {
	msgs := []chat.Message{{
		Role: chat.RoleTool,
		Parts: []chat.Part{
			{Type: chat.PartToolResult, ToolResult: &chat.ToolResultPart{CallID: "call_9", Kind: chat.ResultText, Text: "42"}},
		},
	}}

	enc, err := Encode(msgs, chat.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(enc.Input) != 1 {
		t.Fatalf("expected 1 item, got %d", len(enc.Input))
	}
	item := enc.Input[0]
	if item.Type != api.ItemTypeFunctionCallOutput || item.CallID != "call_9" || item.Output != "42" {
		t.Errorf("tool result item = %+v", item)
	}
}

func TestEncode_ToolFiltering(t *testing.T) {
	opts := chat.Options{
		Tools: []chat.Tool{
			{Type: "function", Name: "lookup", Description: "Look things up", InputSchema: json.RawMessage(`{"type":"object"}`)},
			{Type: "provider.web_search", Name: "search"},
		},
	}

	enc, err := Encode([]chat.Message{chat.Text(chat.RoleUser, "hi")}, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(enc.Tools) != 1 {
		t.Fatalf("provider tool kinds must be dropped silently, got %d tools", len(enc.Tools))
	}
	tool := enc.Tools[0]
	if tool.Name != "lookup" || tool.Type != "function" || tool.Strict {
		t.Errorf("tool = %+v, want function lookup with strict=false", tool)
	}
}

func TestEncode_ToolChoice(t *testing.T) {
	tests := []struct {
		name   string
		choice *chat.ToolChoice
		want   any
	}{
		{"nil", nil, nil},
		{"auto", &chat.ToolChoice{Kind: chat.ToolChoiceAuto}, "auto"},
		{"none", &chat.ToolChoice{Kind: chat.ToolChoiceNone}, "none"},
		{"required", &chat.ToolChoice{Kind: chat.ToolChoiceRequired}, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encode([]chat.Message{chat.Text(chat.RoleUser, "hi")}, chat.Options{ToolChoice: tt.choice})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if enc.ToolChoice != tt.want {
				t.Errorf("tool choice = %v, want %v", enc.ToolChoice, tt.want)
			}
		})
	}

	t.Run("specific tool", func(t *testing.T) {
		enc, err := Encode([]chat.Message{chat.Text(chat.RoleUser, "hi")}, chat.Options{
			ToolChoice: &chat.ToolChoice{Kind: chat.ToolChoiceTool, Name: "lookup"},
		})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		data, _ := json.Marshal(enc.ToolChoice)
		want := `{"type":"function","function":{"name":"lookup"}}`
		if string(data) != want {
			t.Errorf("tool choice JSON = %s, want %s", data, want)
		}
	})
}

func TestEncode_Warnings(t *testing.T) {
	topK := 40
	enc, err := Encode([]chat.Message{chat.Text(chat.RoleUser, "hi")}, chat.Options{
		TopK:           &topK,
		ResponseFormat: &chat.ResponseFormat{Type: "json"},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(enc.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %+v", len(enc.Warnings), enc.Warnings)
	}
	features := map[string]bool{}
	for _, w := range enc.Warnings {
		features[w.Feature] = true
	}
	if !features["topK"] || !features["responseFormat"] {
		t.Errorf("warnings = %+v, want topK and responseFormat", enc.Warnings)
	}
}
