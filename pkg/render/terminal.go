package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kbforge/kbforge/firmware"
)

// Terminal renders build results as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

var titleCaser = cases.Title(language.English)

// Render formats one build result for terminal display.
func (t *Terminal) Render(res *firmware.Result) string {
	var sb strings.Builder

	icon, style := t.statusIconStyle(res)
	sb.WriteString(style.Render(icon + " "))
	sb.WriteString(t.theme.Primary.Render(res.Keyboard + ":" + res.Keymap))
	sb.WriteString(t.theme.Bold.Render(" — " + titleCaser.String(res.Status())))
	sb.WriteString("\n")

	t.field(&sb, "Layout", res.Layout)
	if len(res.Command) > 0 {
		t.field(&sb, "Command", strings.Join(res.Command, " "))
	}
	if res.JobID != "" {
		t.field(&sb, "Job", res.JobID)
	}
	if res.FirmwareFilename != "" {
		artifact := fmt.Sprintf("%s (%d bytes)", res.FirmwareFilename, len(res.Firmware))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Success.Render(t.theme.Icons.Artifact + " "))
		sb.WriteString(padRight("Firmware:", fieldWidth))
		sb.WriteString(artifact)
		sb.WriteString("\n")
	}
	if res.Exception != "" {
		t.field(&sb, "Exception", res.Exception)
	}

	if !res.OK() && res.Output != "" {
		sb.WriteString(t.theme.Muted.Render("--- Output: ---"))
		sb.WriteString("\n")
		sb.WriteString(t.renderOutput(res.Output))
	}
	return sb.String()
}

const fieldWidth = 11

func (t *Terminal) field(sb *strings.Builder, label, value string) {
	sb.WriteString("    ")
	sb.WriteString(t.theme.Muted.Render(padRight(label+":", fieldWidth)))
	sb.WriteString(value)
	sb.WriteString("\n")
}

func (t *Terminal) renderOutput(output string) string {
	var sb strings.Builder
	for line := range strings.Lines(output) {
		line = strings.TrimRight(line, "\n")
		clipped := line
		if runewidth.StringWidth(clipped) > t.width-2 {
			clipped = runewidth.Truncate(clipped, t.width-2, "…")
		}
		sb.WriteString("  ")
		sb.WriteString(clipped)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) statusIconStyle(res *firmware.Result) (string, lipgloss.Style) {
	switch res.ReturnCode {
	case 0:
		return t.theme.Icons.Pass, t.theme.Success
	case firmware.CodePrecondition:
		return t.theme.Icons.Reject, t.theme.Warning
	case firmware.CodeException:
		return t.theme.Icons.Error, t.theme.Error
	default:
		return t.theme.Icons.Fail, t.theme.Error
	}
}

// padRight pads s with spaces to the given visual width.
func padRight(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s + " "
	}
	return s + strings.Repeat(" ", gap)
}
