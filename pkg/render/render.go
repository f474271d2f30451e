// Package render provides output renderers for build results.
package render

import "github.com/kbforge/kbforge/firmware"

// Renderer converts a build result to formatted output.
type Renderer interface {
	Render(res *firmware.Result) string
}
