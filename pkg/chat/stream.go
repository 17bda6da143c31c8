package chat

import "time"

// StreamPartType classifies a normalized streaming event.
type StreamPartType int

const (
	StreamStart StreamPartType = iota // First part of every stream; carries warnings
	TextStart                        // A text segment opened
	TextDelta                        // Incremental text content
	TextEnd                          // The text segment closed
	ReasoningStart                   // A reasoning segment opened
	ReasoningDelta                   // Incremental reasoning content
	ReasoningEnd                     // The reasoning segment closed
	ToolInputStart                   // Tool call construction began
	ToolInputDelta                   // Incremental tool arguments
	ToolInputEnd                     // Tool call construction finished
	ToolCallPartType                 // A complete tool call
	ResponseMetadata                 // Response id, model, timestamp
	Finish                           // Terminal part; carries finish reason and usage
	ErrorPart                        // A contained decode failure; iteration continues
)

// StreamPart is a single normalized output event. Within one request, parts
// are emitted strictly in the order their triggering records were consumed.
type StreamPart struct {
	// Type indicates what kind of part this is.
	Type StreamPartType

	// ID identifies the open segment for text/reasoning/tool-input parts.
	ID string

	// Delta contains incremental text or argument data.
	Delta string

	// ToolCallID, ToolName, and Input describe tool call parts.
	ToolCallID string
	ToolName   string
	Input      string

	// Warnings is populated on StreamStart.
	Warnings []Warning

	// ResponseID, Model, and Timestamp are populated on ResponseMetadata.
	ResponseID string
	Model      string
	Timestamp  time.Time

	// FinishReason and Usage are populated on Finish.
	FinishReason FinishReason
	Usage        Usage

	// Err is populated on ErrorPart.
	Err error
}

// ToolCall is a completed tool invocation in a buffered response.
type ToolCall struct {
	ID    string
	Name  string
	Input string
}

// Response is the folded result of one request: the same protocol events a
// streaming consumer observes, accumulated into scalar fields.
type Response struct {
	ID        string
	Model     string
	Timestamp time.Time

	Text      string
	Reasoning string
	ToolCalls []ToolCall

	FinishReason FinishReason
	Usage        Usage
	Warnings     []Warning
}
