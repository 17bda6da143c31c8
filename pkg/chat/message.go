package chat

import "encoding/json"

// Role tags a message with its sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation.
type Message struct {
	Role  Role
	Parts []Part
}

// Text builds a single-part text message for the given role.
func Text(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Type: PartText, Text: text}}}
}

// PartType identifies the kind of a message part.
type PartType string

const (
	PartText       PartType = "text"
	PartReasoning  PartType = "reasoning"
	PartFile       PartType = "file"
	PartToolCall   PartType = "tool-call"
	PartToolResult PartType = "tool-result"
)

// Part is one unit of message content. The populated fields depend on Type.
type Part struct {
	Type PartType

	// Text carries text and reasoning content.
	Text string

	File       *FilePart
	ToolCall   *ToolCallPart
	ToolResult *ToolResultPart
}

// FilePart carries a file attachment: inline bytes, base64 text, or a URL
// reference. Exactly one of Data, Base64, or URL should be set.
type FilePart struct {
	MediaType string
	Data      []byte
	Base64    string
	URL       string
}

// IsImage reports whether the file's media type denotes an image.
func (f *FilePart) IsImage() bool {
	return len(f.MediaType) > 6 && f.MediaType[:6] == "image/"
}

// ToolCallPart is an assistant-issued tool invocation with serialized input.
type ToolCallPart struct {
	ID    string
	Name  string
	Input string
}

// ToolResultKind classifies a tool result payload.
type ToolResultKind string

const (
	ResultText            ToolResultKind = "text"
	ResultJSON            ToolResultKind = "json"
	ResultErrorText       ToolResultKind = "error-text"
	ResultErrorJSON       ToolResultKind = "error-json"
	ResultExecutionDenied ToolResultKind = "execution-denied"
	ResultContent         ToolResultKind = "content"
)

// ToolResultPart carries the outcome of one tool call, keyed by the call id.
type ToolResultPart struct {
	CallID string
	Kind   ToolResultKind

	// Text carries text, error-text, and the execution-denied reason.
	Text string

	// Value carries json and error-json payloads.
	Value json.RawMessage

	// Content carries the sub-parts of a content result.
	Content []ResultContentPart
}

// ResultContentPart is a sub-part of a content tool result. Only text
// sub-parts survive encoding; other types are discarded.
type ResultContentPart struct {
	Type string
	Text string
}

// Tool declares a tool offered to the model. Type is "function" for
// encodable tools; provider-specific kinds are dropped during encoding.
type Tool struct {
	Type        string
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolChoiceKind selects the tool-choice policy.
type ToolChoiceKind string

const (
	ToolChoiceAuto     ToolChoiceKind = "auto"
	ToolChoiceNone     ToolChoiceKind = "none"
	ToolChoiceRequired ToolChoiceKind = "required"
	ToolChoiceTool     ToolChoiceKind = "tool"
)

// ToolChoice expresses the caller's tool selection policy. Name is set only
// for the "tool" kind.
type ToolChoice struct {
	Kind ToolChoiceKind
	Name string
}

// ResponseFormat requests a constrained output format. Only "text" has an
// upstream equivalent; a "json" request produces a warning.
type ResponseFormat struct {
	Type   string
	Schema json.RawMessage
}

// Options carries per-call generation parameters. Nil pointer fields are
// left to the backend's defaults and never serialized.
type Options struct {
	Temperature      *float64
	TopP             *float64
	TopK             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Stop             []string
	Seed             *int
	MaxOutputTokens  *int

	Tools          []Tool
	ToolChoice     *ToolChoice
	ResponseFormat *ResponseFormat

	// Headers are applied after all computed headers; caller overrides win.
	Headers map[string]string
}

// Warning is an advisory attached to a result for requested features with
// no upstream equivalent. Never fatal.
type Warning struct {
	Feature string
	Message string
}
