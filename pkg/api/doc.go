// Package api defines the wire types for the Codex Responses backend.
//
// This package covers the request body sent to POST /responses, the input
// item and tool unions embedded in it, the server-sent event envelope
// consumed from the streaming response, and the structured error format
// returned on non-success status codes.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. All types produce JSON compatible with the Responses API
// wire format.
//
// Core types:
//   - [Request]: request body for model inference
//   - [InputItem]: polymorphic input unit (message, function_call, function_call_output)
//   - [StreamEvent]: one decoded server-sent event payload
//   - [Response]: the terminal response object carried by response.completed
//   - [APIError]: structured error with type, code, param, and message
package api
