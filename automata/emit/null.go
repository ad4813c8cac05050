package emit

// NullEmitter implements Emitter by discarding all events.
//
// It is the default for scanners and tokenizers constructed without
// WithEmitter.
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
