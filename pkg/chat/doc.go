// Package chat defines the host-facing conversation model and the normalized
// streaming vocabulary produced by the translator.
//
// Conversations are ordered [Message] values tagged with a role; message
// content is an ordered sequence of [Part] values (text, file, reasoning,
// tool call, tool result). Streaming results are delivered as [StreamPart]
// values whose names are independent of the upstream protocol's event names:
// every *-start id is closed by exactly one matching *-end before the finish
// part, regardless of how the upstream stream terminated.
package chat
