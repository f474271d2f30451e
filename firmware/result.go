package firmware

import "encoding/json"

// Return code sentinels for builds that never reached the build tool.
const (
	// CodePending marks a Result whose build has not run yet.
	CodePending = -2
	// CodePrecondition marks a deterministic pre-build failure (unknown
	// keyboard, keymap name collision). Nothing was written.
	CodePrecondition = -1
	// CodeException marks an unexpected failure during orchestration; the
	// Exception and Stacktrace fields carry the diagnostics.
	CodeException = -3
)

// Result is the complete outcome of one compile invocation. It is created in
// the pending state and owned exclusively by the caller once Compile returns.
type Result struct {
	Keyboard string
	Keymap   string
	Layout   string

	// Command is the build invocation as an ordered argv. Cleared on
	// precondition failures, where no command would have run.
	Command []string

	// ReturnCode is the build tool's exit code, or one of the sentinels.
	ReturnCode int

	// Output is the combined stdout/stderr of the build, a precondition
	// message, or the captured trace when nothing else was produced.
	Output string

	// Firmware and FirmwareFilename are set only after a successful build.
	Firmware         []byte
	FirmwareFilename string

	// JobID identifies the scheduler job this build ran under, if any.
	JobID string

	// Exception and Stacktrace are set only on the CodeException path.
	Exception  string
	Stacktrace string
}

func newResult(keyboard, keymap, layout string) *Result {
	return &Result{
		Keyboard:   keyboard,
		Keymap:     keymap,
		Layout:     layout,
		Command:    []string{"make", "COLOR=false", keyboard + ":" + keymap},
		ReturnCode: CodePending,
	}
}

// OK reports whether the build tool ran and succeeded.
func (r *Result) OK() bool {
	return r.ReturnCode == 0
}

// Status names the terminal state for display.
func (r *Result) Status() string {
	switch {
	case r.ReturnCode == 0:
		return "success"
	case r.ReturnCode == CodePending:
		return "pending"
	case r.ReturnCode == CodePrecondition:
		return "rejected"
	case r.ReturnCode == CodeException:
		return "error"
	default:
		return "failed"
	}
}

// ToJSON serializes the Result for automation consumers.
func (r *Result) ToJSON() ([]byte, error) {
	type jsonResult struct {
		Version          string   `json:"version"`
		Keyboard         string   `json:"keyboard"`
		Keymap           string   `json:"keymap"`
		Layout           string   `json:"layout"`
		Command          []string `json:"command"`
		ReturnCode       int      `json:"return_code"`
		Status           string   `json:"status"`
		Output           string   `json:"output"`
		FirmwareFilename string   `json:"firmware_filename,omitempty"`
		FirmwareSize     int      `json:"firmware_size,omitempty"`
		JobID            string   `json:"job_id,omitempty"`
		Exception        string   `json:"exception,omitempty"`
		Stacktrace       string   `json:"stacktrace,omitempty"`
	}

	out := jsonResult{
		Version:          "1.0",
		Keyboard:         r.Keyboard,
		Keymap:           r.Keymap,
		Layout:           r.Layout,
		Command:          r.Command,
		ReturnCode:       r.ReturnCode,
		Status:           r.Status(),
		Output:           r.Output,
		FirmwareFilename: r.FirmwareFilename,
		FirmwareSize:     len(r.Firmware),
		JobID:            r.JobID,
		Exception:        r.Exception,
		Stacktrace:       r.Stacktrace,
	}
	return json.MarshalIndent(out, "", "  ")
}
