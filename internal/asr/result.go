package asr

import (
	"encoding/json"
	"strings"
)

// voskResult covers the JSON shapes vosk returns from Result, PartialResult
// and FinalResult.
type voskResult struct {
	Text    string `json:"text"`
	Partial string `json:"partial"`
}

// ParseText extracts the trimmed "text" field of a vosk result.
func ParseText(raw string) string {
	var r voskResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return ""
	}
	return strings.TrimSpace(r.Text)
}

// ParsePartial extracts the trimmed "partial" field of a vosk partial result.
func ParsePartial(raw string) string {
	var r voskResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return ""
	}
	return strings.TrimSpace(r.Partial)
}
