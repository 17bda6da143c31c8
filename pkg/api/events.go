package api

import "encoding/json"

// EventRecord is one decoded unit of the streamed protocol: an optional
// event name, an optional id, and a data payload. A record whose data is
// empty or "[DONE]" carries no protocol content.
type EventRecord struct {
	Event string
	ID    string
	Data  string
}

// Done reports whether the record is a no-op marker.
func (r EventRecord) Done() bool {
	return r.Data == "" || r.Data == "[DONE]"
}

// StreamEventType identifies the type of a streaming event.
type StreamEventType string

// Delta events convey incremental content; lifecycle events track the
// response state machine.
const (
	EventOutputItemAdded       StreamEventType = "response.output_item.added"
	EventOutputItemDone        StreamEventType = "response.output_item.done"
	EventOutputTextDelta       StreamEventType = "response.output_text.delta"
	EventOutputTextDone        StreamEventType = "response.output_text.done"
	EventReasoningTextDelta    StreamEventType = "response.reasoning_summary_text.delta"
	EventReasoningTextDone     StreamEventType = "response.reasoning_summary_text.done"
	EventFunctionCallArgsDelta StreamEventType = "response.function_call_arguments.delta"
	EventFunctionCallArgsDone  StreamEventType = "response.function_call_arguments.done"
	EventResponseCreated       StreamEventType = "response.created"
	EventResponseInProgress    StreamEventType = "response.in_progress"
	EventResponseCompleted     StreamEventType = "response.completed"
	EventResponseFailed        StreamEventType = "response.failed"
)

// StreamEvent is the decoded data payload of one streaming event. The
// populated fields depend on Type.
type StreamEvent struct {
	Type           StreamEventType `json:"type"`
	SequenceNumber int             `json:"sequence_number,omitempty"`
	ItemID         string          `json:"item_id,omitempty"`
	OutputIndex    int             `json:"output_index,omitempty"`
	Delta          string          `json:"delta,omitempty"`
	Text           string          `json:"text,omitempty"`
	Name           string          `json:"name,omitempty"`

	// Arguments on function_call_arguments.done may be a JSON string or an
	// already-parsed object depending on the backend; kept raw and
	// normalized during translation.
	Arguments json.RawMessage `json:"arguments,omitempty"`

	// Item is populated on output_item events.
	Item *OutputItem `json:"item,omitempty"`

	// Response is populated on response lifecycle events.
	Response *Response `json:"response,omitempty"`
}
