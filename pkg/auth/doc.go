// Package auth manages the credential lifecycle for the Codex Responses
// backend.
//
// A [Manager] resolves one of four mutually exclusive credential sources at
// construction time, by strict precedence: explicit API key, OAuth refresh
// token, environment variable, then the shared auth file. Token refreshes
// are deduplicated with a single-flight group so concurrent requests never
// trigger redundant exchanges, and refreshed tokens are persisted back to
// the auth file with a full read-modify-write when the file is the source.
//
// The in-memory session and the cached auth record are instance state, never
// package globals; Invalidate drops both caches explicitly.
package auth
