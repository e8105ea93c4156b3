package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command is a control instruction read from the host, one per line.
type Command string

const (
	CmdStart Command = "start"
	CmdStop  Command = "stop"
	CmdExit  Command = "exit"
)

// ParseCommand accepts either a bare word ("stop") or a JSON object
// ({"command":"stop"}). Empty lines return "" and no error.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	word := line
	if strings.HasPrefix(line, "{") {
		var msg struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return "", fmt.Errorf("parse command: %w", err)
		}
		word = msg.Command
	}
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "start", "start_listening", "resume":
		return CmdStart, nil
	case "stop", "stop_listening", "pause":
		return CmdStop, nil
	case "exit", "quit":
		return CmdExit, nil
	}
	return "", fmt.Errorf("unknown command %q", word)
}
