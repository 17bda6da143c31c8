package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/anfrage/pkg/api"
	"github.com/rhuss/anfrage/pkg/chat"
	"github.com/rhuss/anfrage/pkg/debug"
)

// Sink receives normalized stream parts in the order their triggering
// records were consumed.
type Sink interface {
	Part(chat.StreamPart)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(chat.StreamPart)

// Part implements Sink.
func (f SinkFunc) Part(p chat.StreamPart) { f(p) }

// FoldSink accumulates the part sequence into a single buffered response.
// Partial parts (segment starts/ends, deltas already folded elsewhere) leave
// no trace of their own; the folded result observes exactly the protocol
// events a streaming consumer would.
type FoldSink struct {
	Response chat.Response
}

// Part implements Sink.
func (f *FoldSink) Part(p chat.StreamPart) {
	switch p.Type {
	case chat.StreamStart:
		f.Response.Warnings = p.Warnings
	case chat.TextDelta:
		f.Response.Text += p.Delta
	case chat.ReasoningDelta:
		f.Response.Reasoning += p.Delta
	case chat.ToolCallPartType:
		f.Response.ToolCalls = append(f.Response.ToolCalls, chat.ToolCall{
			ID:    p.ToolCallID,
			Name:  p.ToolName,
			Input: p.Input,
		})
	case chat.ResponseMetadata:
		f.Response.ID = p.ResponseID
		f.Response.Model = p.Model
		f.Response.Timestamp = p.Timestamp
	case chat.Finish:
		f.Response.FinishReason = p.FinishReason
		f.Response.Usage = p.Usage
	}
}

// Translator is the stateful per-request machine mapping event records to
// normalized stream parts. One instance serves exactly one request and must
// never be shared across concurrent requests.
type Translator struct {
	sink     Sink
	warnings []chat.Warning

	started     bool
	textID      string
	reasoningID string

	// Per-item accumulation for tool call construction.
	names   map[string]string
	callIDs map[string]string
	args    map[string]*strings.Builder
}

// NewTranslator creates a translator that drives the given sink. The
// warnings are attached to the stream-start part.
func NewTranslator(sink Sink, warnings []chat.Warning) *Translator {
	return &Translator{
		sink:     sink,
		warnings: warnings,
		names:    make(map[string]string),
		callIDs:  make(map[string]string),
		args:     make(map[string]*strings.Builder),
	}
}

// Record consumes one event record. Malformed data is contained here: a
// record that fails to decode surfaces as an error part and the translator
// stays usable for the records that follow.
func (t *Translator) Record(rec api.EventRecord) {
	if rec.Data == "" {
		return
	}
	if !t.started {
		t.started = true
		t.sink.Part(chat.StreamPart{Type: chat.StreamStart, Warnings: t.warnings})
	}
	if rec.Data == "[DONE]" {
		return
	}

	var ev api.StreamEvent
	if err := json.Unmarshal([]byte(rec.Data), &ev); err != nil {
		debug.Log("streaming", "skipping malformed event record", "event", rec.Event, "error", err)
		t.sink.Part(chat.StreamPart{Type: chat.ErrorPart, Err: fmt.Errorf("codec: decode event record: %w", err)})
		return
	}

	switch ev.Type {
	case api.EventOutputTextDelta:
		if t.textID == "" {
			t.textID = uuid.NewString()
			t.sink.Part(chat.StreamPart{Type: chat.TextStart, ID: t.textID})
		}
		t.sink.Part(chat.StreamPart{Type: chat.TextDelta, ID: t.textID, Delta: ev.Delta})

	case api.EventOutputTextDone:
		t.closeText()

	case api.EventReasoningTextDelta:
		if t.reasoningID == "" {
			t.reasoningID = uuid.NewString()
			t.sink.Part(chat.StreamPart{Type: chat.ReasoningStart, ID: t.reasoningID})
		}
		t.sink.Part(chat.StreamPart{Type: chat.ReasoningDelta, ID: t.reasoningID, Delta: ev.Delta})

	case api.EventReasoningTextDone:
		t.closeReasoning()

	case api.EventOutputItemAdded:
		if ev.Item != nil && ev.Item.Type == "function_call" && ev.Item.Name != "" {
			t.names[ev.Item.ID] = ev.Item.Name
			if ev.Item.CallID != "" {
				t.callIDs[ev.Item.ID] = ev.Item.CallID
			}
			t.sink.Part(chat.StreamPart{Type: chat.ToolInputStart, ID: ev.Item.ID, ToolName: ev.Item.Name})
		}

	case api.EventFunctionCallArgsDelta:
		acc := t.args[ev.ItemID]
		if acc == nil {
			acc = &strings.Builder{}
			t.args[ev.ItemID] = acc
		}
		acc.WriteString(ev.Delta)
		t.sink.Part(chat.StreamPart{Type: chat.ToolInputDelta, ID: ev.ItemID, Delta: ev.Delta})

	case api.EventFunctionCallArgsDone:
		t.finishToolCall(ev)

	case api.EventResponseCompleted:
		t.completed(ev.Response)

	default:
		// Lifecycle and unknown events carry nothing the translator needs.
	}
}

// Close synthesizes the missing segment ends when the upstream stream
// terminates abnormally mid-segment.
func (t *Translator) Close() {
	t.closeText()
	t.closeReasoning()
}

func (t *Translator) closeText() {
	if t.textID != "" {
		t.sink.Part(chat.StreamPart{Type: chat.TextEnd, ID: t.textID})
		t.textID = ""
	}
}

func (t *Translator) closeReasoning() {
	if t.reasoningID != "" {
		t.sink.Part(chat.StreamPart{Type: chat.ReasoningEnd, ID: t.reasoningID})
		t.reasoningID = ""
	}
}

// finishToolCall resolves the final name and argument string for one tool
// call, preferring accumulated state over the fields on the done event.
func (t *Translator) finishToolCall(ev api.StreamEvent) {
	name := t.names[ev.ItemID]
	if name == "" {
		name = ev.Name
	}
	if name == "" {
		name = "unknown"
	}

	input := ""
	if acc := t.args[ev.ItemID]; acc != nil && acc.Len() > 0 {
		input = acc.String()
	} else {
		input = argumentString(ev.Arguments)
	}

	callID := t.callIDs[ev.ItemID]
	if callID == "" {
		callID = ev.ItemID
	}
	if callID == "" {
		callID = api.NewCallID()
	}

	delete(t.args, ev.ItemID)
	delete(t.names, ev.ItemID)
	delete(t.callIDs, ev.ItemID)

	if ev.ItemID != "" {
		t.sink.Part(chat.StreamPart{Type: chat.ToolInputEnd, ID: ev.ItemID})
	}
	t.sink.Part(chat.StreamPart{
		Type:       chat.ToolCallPartType,
		ToolCallID: callID,
		ToolName:   name,
		Input:      input,
	})
}

// completed handles the terminal event: any still-open segment closes before
// metadata and finish, so ordering holds even when the backend never sent
// the matching done event.
func (t *Translator) completed(resp *api.Response) {
	t.closeText()
	t.closeReasoning()
	if resp == nil {
		return
	}

	t.sink.Part(chat.StreamPart{
		Type:       chat.ResponseMetadata,
		ResponseID: resp.ID,
		Model:      resp.Model,
		Timestamp:  time.Unix(resp.CreatedAt, 0).UTC(),
	})
	t.sink.Part(chat.StreamPart{
		Type:         chat.Finish,
		FinishReason: chat.FinishReasonFrom(string(resp.Status)),
		Usage:        usageFrom(resp.Usage),
	})
}

func usageFrom(u *api.Usage) chat.Usage {
	if u == nil {
		return chat.Usage{}
	}
	var cached, reasoning *int
	if u.InputTokensDetails != nil {
		cached = &u.InputTokensDetails.CachedTokens
	}
	if u.OutputTokensDetails != nil {
		reasoning = &u.OutputTokensDetails.ReasoningTokens
	}
	return chat.UsageFrom(u.InputTokens, u.OutputTokens, cached, reasoning)
}

// argumentString normalizes the done event's arguments field: a JSON string
// passes through unquoted, anything else re-serializes as compact JSON text.
func argumentString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
