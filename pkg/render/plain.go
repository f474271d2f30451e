package render

import (
	"fmt"
	"strings"

	"github.com/kbforge/kbforge/firmware"
)

// Plain renders build results as terse plain text with zero ANSI codes,
// suitable for pipes, logs, and machine consumption by line-oriented tools.
type Plain struct{}

// NewPlain creates a plain-text renderer.
func NewPlain() *Plain {
	return &Plain{}
}

// Render formats one build result as plain text.
func (p *Plain) Render(res *firmware.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s:%s layout=%s rc=%d\n",
		strings.ToUpper(res.Status()), res.Keyboard, res.Keymap, res.Layout, res.ReturnCode)
	if len(res.Command) > 0 {
		fmt.Fprintf(&sb, "command: %s\n", strings.Join(res.Command, " "))
	}
	if res.JobID != "" {
		fmt.Fprintf(&sb, "job: %s\n", res.JobID)
	}
	if res.FirmwareFilename != "" {
		fmt.Fprintf(&sb, "firmware: %s (%d bytes)\n", res.FirmwareFilename, len(res.Firmware))
	}
	if res.Exception != "" {
		fmt.Fprintf(&sb, "exception: %s\n", res.Exception)
	}
	if !res.OK() && res.Output != "" {
		sb.WriteString(res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
