package api

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Request body
// ---------------------------------------------------------------------------

// Request is the wire format for POST /responses.
//
// Instructions aggregates all system-level guidance; the input array never
// contains a system role. Stream is always true on outbound requests; a
// buffered result is produced by folding the event stream client-side.
type Request struct {
	Model            string           `json:"model"`
	Instructions     string           `json:"instructions"`
	Input            []InputItem      `json:"input"`
	Store            bool             `json:"store"`
	Stream           bool             `json:"stream"`
	Temperature      *float64         `json:"temperature,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
	Stop             []string         `json:"stop,omitempty"`
	Seed             *int             `json:"seed,omitempty"`
	MaxOutputTokens  *int             `json:"max_output_tokens,omitempty"`
	Tools            []ToolDefinition `json:"tools,omitempty"`
	ToolChoice       any              `json:"tool_choice,omitempty"`
}

// ItemType identifies the kind of an input item.
type ItemType string

const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
)

// InputItem is one unit of the input array: a message, a replayed function
// call, or a function call output. The populated fields depend on Type.
type InputItem struct {
	Type ItemType `json:"type"`

	// Message fields.
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`

	// Function call fields.
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// Function call output field.
	Output string `json:"output,omitempty"`
}

// ContentPart is a part of message content. Type is one of input_text,
// input_image, or output_text.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

// ToolDefinition describes a function tool available to the model.
type ToolDefinition struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      bool            `json:"strict"`
}

// ToolChoiceFunction selects a specific function by name.
type ToolChoiceFunction struct {
	Type     string                 `json:"type"`
	Function ToolChoiceFunctionName `json:"function"`
}

// ToolChoiceFunctionName carries the selected function name.
type ToolChoiceFunctionName struct {
	Name string `json:"name"`
}

// NewToolChoiceFunction builds a structured tool_choice value that forces a
// call to the named function.
func NewToolChoiceFunction(name string) ToolChoiceFunction {
	return ToolChoiceFunction{
		Type:     "function",
		Function: ToolChoiceFunctionName{Name: name},
	}
}

// ---------------------------------------------------------------------------
// Response object
// ---------------------------------------------------------------------------

// ResponseStatus is the terminal status reported on response.completed.
type ResponseStatus string

const (
	ResponseStatusCompleted  ResponseStatus = "completed"
	ResponseStatusIncomplete ResponseStatus = "incomplete"
	ResponseStatusFailed     ResponseStatus = "failed"
	ResponseStatusCancelled  ResponseStatus = "cancelled"
)

// Response is the response object embedded in the response.completed event
// (and returned whole for non-streaming backends).
type Response struct {
	ID        string         `json:"id"`
	Object    string         `json:"object,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
	Status    ResponseStatus `json:"status"`
	Model     string         `json:"model"`
	Output    []OutputItem   `json:"output"`
	Usage     *Usage         `json:"usage,omitempty"`
	Error     *APIError      `json:"error,omitempty"`
}

// OutputItem is one item of the response output array.
type OutputItem struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Status    string          `json:"status,omitempty"`
	Role      string          `json:"role,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	CallID    string          `json:"call_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments string          `json:"arguments,omitempty"`
}

// Usage holds token usage reported on the terminal event.
type Usage struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputTokensDetails provides a breakdown of input token usage.
type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

// OutputTokensDetails provides a breakdown of output token usage.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// String implements fmt.Stringer for debug logging.
func (u Usage) String() string {
	return fmt.Sprintf("in=%d out=%d total=%d", u.InputTokens, u.OutputTokens, u.TotalTokens)
}
