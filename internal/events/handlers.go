package events

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LogConfig configures the logging handler.
type LogConfig struct {
	// Writer is where logs are written (default: os.Stderr).
	Writer io.Writer

	// IncludePayload includes the event payload in log output.
	IncludePayload bool
}

// LogHandler returns a handler that logs events to the configured
// writer. Format: [event.type] plan node=N worker=W
func LogHandler(cfg LogConfig) Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	return func(e Event) {
		var buf strings.Builder
		buf.WriteString("[")
		buf.WriteString(string(e.Type))
		buf.WriteString("]")

		if e.Plan != "" {
			buf.WriteString(" ")
			buf.WriteString(e.Plan)
		}
		if e.Node != "" {
			fmt.Fprintf(&buf, " node=%s", e.Node)
		}
		if e.Worker != "" {
			fmt.Fprintf(&buf, " worker=%s", e.Worker)
		}
		if e.Error != "" {
			fmt.Fprintf(&buf, " error=%q", e.Error)
		}
		if cfg.IncludePayload && e.Payload != nil {
			fmt.Fprintf(&buf, " payload=%v", e.Payload)
		}
		buf.WriteString("\n")

		fmt.Fprint(cfg.Writer, buf.String())
	}
}
