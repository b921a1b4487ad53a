// Package version provides version information for the binary.
package version

import (
	"fmt"
	"runtime"
)

// Name is the product name shown by --version, the web page and the MCP server.
const Name = "promptforge"

// Set at build time using -ldflags "-X .../internal/version.Version=...".
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("%s version %s (built %s)", Name, Version, BuildTime)
}

// UserAgent identifies PromptForge on outbound upstream requests,
// e.g. "promptforge/dev (go1.25.0)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", Name, Version, runtime.Version())
}
