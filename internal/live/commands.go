package live

import (
	"bufio"
	"io"

	"scribe/internal/protocol"
)

// ReadCommands forwards control lines from r to s until r is exhausted or
// the session ends. Malformed lines become error events. When exitOnEOF is
// set, EOF asks the session to exit: the host closing our stdin means it is
// gone.
func ReadCommands(r io.Reader, s *Session, exitOnEOF bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		cmd, err := protocol.ParseCommand(sc.Text())
		if err != nil {
			s.sendError(err.Error())
			continue
		}
		if cmd == "" {
			continue
		}
		if !s.Submit(cmd) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.logger.Warnf("read commands: %v", err)
	}
	if exitOnEOF {
		s.logger.Info("stdin closed, exiting")
		s.Submit(protocol.CmdExit)
	}
}
