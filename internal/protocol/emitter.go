package protocol

import (
	"encoding/json"
	"io"
	"sync"
)

// Emitter serializes events as JSON lines onto a single writer. Emit is safe
// for concurrent use; each event is written with one Write call under the
// lock so lines never interleave.
type Emitter struct {
	mu  sync.Mutex
	w   io.Writer
	obs func(Event)
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Observe registers fn to be called after each successfully written event.
func (e *Emitter) Observe(fn func(Event)) {
	e.mu.Lock()
	e.obs = fn
	e.mu.Unlock()
}

// Emit writes ev followed by a newline.
func (e *Emitter) Emit(ev Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	if e.obs != nil {
		e.obs(ev)
	}
	return nil
}

func (e *Emitter) Status(s Status, message string) error {
	return e.Emit(Event{Type: TypeStatus, Status: s, Message: message})
}

func (e *Emitter) Partial(text string) error {
	return e.Emit(Event{Type: TypePartial, Text: text})
}

func (e *Emitter) Final(text string) error {
	return e.Emit(Event{Type: TypeFinal, Text: text})
}

func (e *Emitter) Error(msg string) error {
	return e.Emit(Event{Type: TypeError, Error: msg})
}
