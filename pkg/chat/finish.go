package chat

// FinishKind is the unified classification of why generation stopped.
type FinishKind string

const (
	FinishStop          FinishKind = "stop"
	FinishLength        FinishKind = "length"
	FinishToolCalls     FinishKind = "tool-calls"
	FinishContentFilter FinishKind = "content-filter"
	FinishError         FinishKind = "error"
	FinishOther         FinishKind = "other"
)

// FinishReason reports both the unified kind and the original raw status
// string from the backend.
type FinishReason struct {
	Kind FinishKind
	Raw  string
}

// FinishReasonFrom maps a backend status string to the unified kind,
// retaining the raw value.
func FinishReasonFrom(raw string) FinishReason {
	kind := FinishOther
	switch raw {
	case "stop", "completed":
		kind = FinishStop
	case "length", "max_output_tokens":
		kind = FinishLength
	case "tool_calls", "incomplete":
		kind = FinishToolCalls
	case "content_filter":
		kind = FinishContentFilter
	case "error", "failed":
		kind = FinishError
	}
	return FinishReason{Kind: kind, Raw: raw}
}
