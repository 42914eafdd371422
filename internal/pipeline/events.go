package pipeline

// Event names carried over the progress stream.
const (
	EventMeta  = "meta"
	EventChunk = "chunk"
	EventDone  = "done"
	EventError = "error"
)

// Event is one typed progress frame. Per run: at most one meta, any number
// of chunks in generation order, then exactly one done or error and nothing
// after it.
type Event struct {
	Type string
	Data any
}

// MetaPayload carries the improved prompt, once per run.
type MetaPayload struct {
	ImprovedPrompt string `json:"improved_prompt"`
}

// ChunkPayload carries one transcript increment. The truncating chunk
// suppresses Delta and carries the frozen Full text instead.
type ChunkPayload struct {
	Delta     string `json:"delta,omitempty"`
	Full      string `json:"full"`
	Truncated bool   `json:"truncated"`
}

// DonePayload is the terminal success frame.
type DonePayload struct {
	Title     string `json:"title"`
	Full      string `json:"full"`
	Truncated bool   `json:"truncated"`
}

// ErrorPayload is the terminal failure frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// EmitFunc delivers one event to the stream consumer. A returned error
// means the consumer is gone; the run stops issuing work at its next
// suspension point.
type EmitFunc func(Event) error
