// Package statsig implements a server-side local rule evaluator for
// feature gates and dynamic configs. Gate and config decisions are made
// against a periodically refreshed catalog downloaded from a remote
// control plane; exposure telemetry is batched and shipped asynchronously.
// When a rule uses a capability the local evaluator cannot faithfully
// reproduce, the client falls back to a synchronous server call for that
// single check.
package statsig
