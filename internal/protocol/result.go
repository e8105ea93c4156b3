package protocol

import (
	"encoding/json"
	"io"
)

// Result is the single JSON object printed by a batch transcription.
type Result struct {
	Success bool
	Text    string
	Error   string
}

// Succeeded builds a success result.
func Succeeded(text string) Result { return Result{Success: true, Text: text} }

// Failed builds a failure result carrying err's message.
func Failed(err error) Result { return Result{Error: err.Error()} }

// MarshalJSON emits {"success":true,"text":...} or {"success":false,"error":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Text    string `json:"text"`
		}{true, r.Text})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{Success: raw.Success, Text: raw.Text, Error: raw.Error}
	return nil
}

// WriteResult writes r as one JSON line.
func WriteResult(w io.Writer, r Result) error {
	return json.NewEncoder(w).Encode(r)
}
