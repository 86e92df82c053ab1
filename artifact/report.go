package artifact

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/localops/copilot/types"
)

// WriteReport renders run and steps into a Markdown report at path,
// matching the worker's `_generate_report` structure exactly: a header
// block of run metadata, a per-step list, a conditional failure section,
// and a next-steps hint.
func WriteReport(path string, run *types.Run, steps []types.RunStep) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %d Report\n\n", run.ID)
	fmt.Fprintf(&b, "- status: %s\n", run.Status)
	fmt.Fprintf(&b, "- risk_level: %s\n", run.RiskLevel)
	fmt.Fprintf(&b, "- started_at: %s\n", formatTimePtr(run.StartedAt))
	fmt.Fprintf(&b, "- finished_at: %s\n", formatTimePtr(run.FinishedAt))
	b.WriteString("\n## Steps\n")

	var failed []types.RunStep
	for _, step := range steps {
		exitCode := "null"
		if step.ExitCode != nil {
			exitCode = fmt.Sprintf("%d", *step.ExitCode)
		}
		fmt.Fprintf(&b, "- step %d: %s => %s (exit=%s)\n", step.StepNo, step.Command, step.Status, exitCode)
		if step.Status == types.StepFailed {
			failed = append(failed, step)
		}
	}

	if len(failed) > 0 {
		b.WriteString("\n## Failure\n")
		for _, step := range failed {
			fmt.Fprintf(&b, "- step %d failed\n", step.StepNo)
		}
	}

	b.WriteString("\n## Next\n")
	if len(failed) > 0 {
		b.WriteString("- review stderr logs and fix command or source code\n")
	} else {
		b.WriteString("- review generated artifacts and finalize\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(time.RFC3339)
}
