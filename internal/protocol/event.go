// Package protocol defines the JSON shapes exchanged with the host process:
// the batch Result object, the live session's newline-delimited events and
// the control commands read from stdin.
package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType tags an Event on the wire.
type EventType string

const (
	TypeStatus  EventType = "status"
	TypePartial EventType = "partial"
	TypeFinal   EventType = "final"
	TypeError   EventType = "error"
)

// Status is the value of a status event's "status" field.
type Status string

const (
	StatusDownloading Status = "downloading"
	StatusExtracting  Status = "extracting"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusListening   Status = "listening"
	StatusStopped     Status = "stopped"
)

// Event is one line of the live session's output stream.
type Event struct {
	Type    EventType `json:"type"`
	Status  Status    `json:"status,omitempty"`
	Message string    `json:"message,omitempty"`
	Text    string    `json:"text,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// MarshalJSON writes only the fields belonging to e.Type, always including
// them even when empty.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeStatus:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Status  Status    `json:"status"`
			Message string    `json:"message"`
		}{e.Type, e.Status, e.Message})
	case TypePartial, TypeFinal:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Text string    `json:"text"`
		}{e.Type, e.Text})
	case TypeError:
		return json.Marshal(struct {
			Type  EventType `json:"type"`
			Error string    `json:"error"`
		}{e.Type, e.Error})
	}
	return nil, fmt.Errorf("unknown event type %q", e.Type)
}

// Valid reports whether t is one of the four wire tags.
func (t EventType) Valid() bool {
	switch t {
	case TypeStatus, TypePartial, TypeFinal, TypeError:
		return true
	}
	return false
}
