package firmware

import "os"

// JobSource supplies the identifier of the unit of work a compile is running
// under. Purely informational: the id is stamped on the Result for reporting,
// and its absence never fails a build (standalone invocation is a supported
// mode).
type JobSource interface {
	CurrentJobID() (string, bool)
}

// EnvJobSource reads the job id from an environment variable, the convention
// used when kbforge runs under an external job scheduler.
type EnvJobSource struct {
	// Key defaults to "KBFORGE_JOB_ID" when empty.
	Key string
}

func (e EnvJobSource) CurrentJobID() (string, bool) {
	key := e.Key
	if key == "" {
		key = "KBFORGE_JOB_ID"
	}
	id := os.Getenv(key)
	return id, id != ""
}

// StaticJobSource returns a fixed id; handy for embedding callers that carry
// their own job bookkeeping.
type StaticJobSource string

func (s StaticJobSource) CurrentJobID() (string, bool) {
	return string(s), s != ""
}
