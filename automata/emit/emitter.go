package emit

// Emitter receives observability events from scanners and tokenizers.
//
// Implementations should be:
//   - Non-blocking: a scan emits once per call, so slow backends slow lexing
//   - Thread-safe: several tokenizers may share one emitter
//   - Resilient: Emit must not panic
type Emitter interface {
	// Emit sends an event to the configured backend. Failures are handled
	// internally.
	Emit(event Event)
}
