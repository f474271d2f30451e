package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"     // Default value if not built with LDFLAGS
	CommitHash = "unknown" // Default value
	BuildDate  = "unknown" // Default value
)

// Formatted returns a single-line version string for display.
func Formatted() string {
	return fmt.Sprintf("kbforge %s (%s, built %s)", Version, CommitHash, BuildDate)
}
