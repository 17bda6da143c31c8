// Package codec translates between the host conversation model and the
// Codex Responses wire protocol, in both directions.
//
// Outbound, [Encode] turns an ordered conversation plus generation options
// into the request body pieces (instructions, input items, tools, tool
// choice) and collects advisory warnings for requested features with no
// upstream equivalent.
//
// Inbound, [Translator] consumes decoded event records and drives a [Sink]
// with normalized stream parts. Streaming and buffered consumption share the
// same dispatch: a channel-backed sink emits parts live, while [FoldSink]
// accumulates the identical part sequence into a single chat.Response. A
// malformed record is contained at record scope and never aborts the rest of
// the stream.
package codec
