// Package policy gates the commands a run is allowed to execute inside the
// sandbox and classifies their risk. Validate and Risk are pure functions:
// no I/O, no state, safe to call from any goroutine.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/localops/copilot/types"
)

// AllowedCommands is the head-token allowlist. A command is only eligible
// to run if splitting on whitespace and taking the first token yields one
// of these.
var AllowedCommands = map[string]bool{
	"git":    true,
	"python": true,
	"pytest": true,
	"node":   true,
	"pnpm":   true,
	"npm":    true,
	"rg":     true,
	"sed":    true,
	"awk":    true,
	"echo":   true,
	"ls":     true,
	"pwd":    true,
}

// dangerousPatterns is checked before the allowlist: a match always denies,
// regardless of the head token.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+-rf\s+/(\s|$)`),
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bdd\s+if=`),
	regexp.MustCompile(`\bchmod\s+777\s+/`),
}

// Validate reports whether command is allowed to run, and if not, why.
func Validate(command string) (bool, string) {
	stripped := strings.TrimSpace(command)
	if stripped == "" {
		return false, "empty command"
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(stripped) {
			return false, "dangerous pattern blocked"
		}
	}

	headToken := strings.Fields(stripped)[0]
	if !AllowedCommands[headToken] {
		return false, fmt.Sprintf("command %q not in allowlist", headToken)
	}
	return true, "ok"
}

// Risk classifies a command's risk level. A command that requires network
// access is always high risk regardless of its head token.
func Risk(command string, networkRequired bool) types.Level {
	if networkRequired {
		return types.LevelHigh
	}
	for _, token := range []string{"git", "pnpm", "npm"} {
		if strings.Contains(command, token) {
			return types.LevelMedium
		}
	}
	return types.LevelLow
}
