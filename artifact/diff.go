package artifact

import (
	"context"
	"os"
	"os/exec"
)

// WriteDiffPatch runs `git diff` inside workspace and writes its stdout to
// path, matching the worker's `diff_cmd = ["git", "-C", workspace, "diff"]`
// finalization step. A non-git workspace or a git failure is not fatal:
// the file is written with whatever stdout was produced (empty on error),
// the same tolerance the worker's `check=False` subprocess call has.
func WriteDiffPatch(ctx context.Context, workspace, path string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", workspace, "diff")
	out, _ := cmd.Output()
	return os.WriteFile(path, out, 0o644)
}
