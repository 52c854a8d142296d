package events

import "time"

// JSONEvent is a JSON wire format for events, for external tooling
// that wants machine-readable progress instead of the log handler's
// text lines. `forge run` does not emit it: its --json flag only adds
// payloads to the text log lines.
type JSONEvent struct {
	ID string `json:"id,omitempty"`

	Type EventType `json:"type"`

	Timestamp time.Time `json:"timestamp"`

	Plan string `json:"plan,omitempty"`

	Node string `json:"node,omitempty"`

	Worker string `json:"worker,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`

	Error string `json:"error,omitempty"`
}

// ToJSONEvent converts an internal Event to the wire format.
func ToJSONEvent(e Event) JSONEvent {
	je := JSONEvent{
		ID:        e.ID,
		Type:      e.Type,
		Timestamp: e.Time,
		Plan:      e.Plan,
		Node:      e.Node,
		Worker:    e.Worker,
		Error:     e.Error,
	}

	if e.Payload != nil {
		switch p := e.Payload.(type) {
		case map[string]interface{}:
			je.Payload = p
		default:
			je.Payload = map[string]interface{}{"value": e.Payload}
		}
	}

	return je
}

// ToEvent converts a wire format JSONEvent back to an internal Event.
func (je JSONEvent) ToEvent() Event {
	var payload any
	if je.Payload != nil {
		payload = je.Payload
	}

	return Event{
		ID:      je.ID,
		Type:    je.Type,
		Time:    je.Timestamp,
		Plan:    je.Plan,
		Node:    je.Node,
		Worker:  je.Worker,
		Payload: payload,
		Error:   je.Error,
	}
}
