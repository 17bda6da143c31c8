package chat

// InputTokens breaks down prompt-side token usage. All fields are optional:
// nil means the backend did not report the value.
type InputTokens struct {
	Total      *int
	NoCache    *int
	CacheRead  *int
	CacheWrite *int
}

// OutputTokens breaks down completion-side token usage.
type OutputTokens struct {
	Total     *int
	Text      *int
	Reasoning *int
}

// Usage holds token usage populated only from data actually present on the
// terminal event. Derived fields (NoCache, Text) are computed only when both
// operands are known.
type Usage struct {
	Input  InputTokens
	Output OutputTokens
}

// UsageFrom derives a normalized Usage from the raw counters reported by the
// backend. The totals are taken verbatim; NoCache = total - cacheRead and
// Text = total - reasoning are filled in only when the detail blocks exist.
func UsageFrom(inputTotal, outputTotal int, cachedTokens, reasoningTokens *int) Usage {
	u := Usage{
		Input:  InputTokens{Total: &inputTotal},
		Output: OutputTokens{Total: &outputTotal},
	}
	if cachedTokens != nil {
		u.Input.CacheRead = cachedTokens
		noCache := inputTotal - *cachedTokens
		u.Input.NoCache = &noCache
	}
	if reasoningTokens != nil {
		u.Output.Reasoning = reasoningTokens
		text := outputTotal - *reasoningTokens
		u.Output.Text = &text
	}
	return u
}
