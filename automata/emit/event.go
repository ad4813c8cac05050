// Package emit provides event emission and observability for scanning and
// tokenization runs.
package emit

// Event represents an observability event emitted while a scanner or
// tokenizer consumes input.
//
// Events give insight into matching behaviour:
//   - Longest-match results and the units they restored
//   - Tokens produced by a tokenizer run
//   - Checkpoint and resume operations
//   - Errors (no rule matched, store failures)
//
// Events are emitted to an Emitter which can log them, keep them in memory for
// inspection, or export them as OpenTelemetry spans.
type Event struct {
	// RunID identifies the tokenizer run that emitted this event.
	// Empty for a bare scanner without a run ID.
	RunID string

	// Seq is the index of the token being produced (0-based). Zero for
	// run-level events (start, complete, error).
	Seq int

	// Rule names the rule being matched. Empty for run-level events and for
	// scans not attributed to a rule.
	Rule string

	// Msg is a short machine-friendly description of the event, for example
	// "match", "no_match", "token", "run_complete".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "length": Units in the accepted prefix
	//   - "pulled": Units read from the source during the scan
	//   - "restored": Units pushed back after the scan
	//   - "dropped": Units discarded under the narrow pushback policy
	//   - "stop": Why the scan stopped ("exhausted" or "dead_end")
	//   - "offset": Position of a token in the input
	//   - "error": Error details
	Meta map[string]interface{}
}
