package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbforge/kbforge/firmware"
)

func successResult() *firmware.Result {
	return &firmware.Result{
		Keyboard:         "planck",
		Keymap:           "mine",
		Layout:           "LAYOUT_planck_grid",
		Command:          []string{"make", "COLOR=false", "planck:mine"},
		ReturnCode:       0,
		Output:           "Build complete\n",
		Firmware:         []byte{1, 2, 3, 4},
		FirmwareFilename: "planck_mine.hex",
		JobID:            "job-1",
	}
}

func TestPlainRender_When_Success(t *testing.T) {
	t.Parallel()

	out := NewPlain().Render(successResult())

	assert.Contains(t, out, "SUCCESS planck:mine layout=LAYOUT_planck_grid rc=0")
	assert.Contains(t, out, "command: make COLOR=false planck:mine")
	assert.Contains(t, out, "firmware: planck_mine.hex (4 bytes)")
	assert.Contains(t, out, "job: job-1")
	assert.NotContains(t, out, "Build complete", "output is suppressed on success")
}

func TestPlainRender_When_BuildFailed(t *testing.T) {
	t.Parallel()

	res := successResult()
	res.ReturnCode = 2
	res.Output = "make: *** Error 2\n"
	res.Firmware = nil
	res.FirmwareFilename = ""

	out := NewPlain().Render(res)

	assert.Contains(t, out, "FAILED planck:mine")
	assert.Contains(t, out, "rc=2")
	assert.Contains(t, out, "make: *** Error 2")
}

func TestPlainRender_When_Precondition(t *testing.T) {
	t.Parallel()

	res := &firmware.Result{
		Keyboard:   "ghost",
		Keymap:     "mine",
		Layout:     "LAYOUT",
		ReturnCode: firmware.CodePrecondition,
		Output:     "Unknown keyboard!",
	}

	out := NewPlain().Render(res)

	assert.Contains(t, out, "REJECTED ghost:mine")
	assert.Contains(t, out, "Unknown keyboard!")
	assert.NotContains(t, out, "command:", "cleared command is not rendered")
}

func TestJSONRender_RoundTrips(t *testing.T) {
	t.Parallel()

	out := NewJSON().Render(successResult())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, "planck", decoded["keyboard"])
}

func TestTerminalRender_When_Success(t *testing.T) {
	t.Parallel()

	out := NewTerminal(MonoTheme(), 80).Render(successResult())

	assert.Contains(t, out, "planck:mine — Success")
	assert.Contains(t, out, "Command:")
	assert.Contains(t, out, "make COLOR=false planck:mine")
	assert.Contains(t, out, "planck_mine.hex (4 bytes)")
	assert.NotContains(t, out, "--- Output: ---")
}

func TestTerminalRender_HeadlineNamesKeymap(t *testing.T) {
	t.Parallel()

	// Styles degrade to plain text without a TTY; the headline text must
	// survive the theme's name styling intact.
	out := NewTerminal(DefaultTheme(), 80).Render(successResult())

	assert.Contains(t, out, "planck:mine")
	assert.Contains(t, out, "Success")
}

func TestTerminalRender_When_Failure_ShowsOutput(t *testing.T) {
	t.Parallel()

	res := successResult()
	res.ReturnCode = 1
	res.Output = "error line one\nerror line two\n"

	out := NewTerminal(MonoTheme(), 80).Render(res)

	assert.Contains(t, out, "--- Output: ---")
	assert.Contains(t, out, "error line one")
	assert.Contains(t, out, "error line two")
}

func TestTerminalRender_When_Exception(t *testing.T) {
	t.Parallel()

	res := &firmware.Result{
		Keyboard:   "planck",
		Keymap:     "mine",
		Layout:     "LAYOUT",
		ReturnCode: firmware.CodeException,
		Exception:  "*fs.PathError",
		Output:     "open keymap.c: permission denied",
	}

	out := NewTerminal(MonoTheme(), 80).Render(res)

	assert.Contains(t, out, "Exception:")
	assert.Contains(t, out, "*fs.PathError")
	assert.Contains(t, out, "permission denied")
}

func TestTerminalRender_TruncatesLongLines(t *testing.T) {
	t.Parallel()

	res := successResult()
	res.ReturnCode = 1
	res.Output = strings.Repeat("a", 300) + "\n"

	out := NewTerminal(MonoTheme(), 40).Render(res)

	for line := range strings.Lines(out) {
		assert.LessOrEqual(t, len([]rune(strings.TrimRight(line, "\n"))), 44)
	}
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "orca", ThemeByName("orca").Name)
	assert.Equal(t, "mono", ThemeByName("mono").Name)
	assert.Equal(t, "default", ThemeByName("anything-else").Name)
}
