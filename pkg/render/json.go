package render

import (
	"encoding/json"

	"github.com/kbforge/kbforge/firmware"
)

// JSON renders build results as structured JSON for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Render formats one build result as JSON.
func (j *JSON) Render(res *firmware.Result) string {
	data, err := res.ToJSON()
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON) + "\n"
	}
	return string(data) + "\n"
}
