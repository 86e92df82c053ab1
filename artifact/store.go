// Package artifact persists the files a run produces: per-step logs,
// and the report/audit/diff bundle written at finalization.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/localops/copilot/iox"
	"github.com/localops/copilot/types"
)

// readChunkSize mirrors the worker's own chunked sha256 pass: bounded
// reads, no full-file buffering.
const readChunkSize = 8 * 1024

// Store roots every run's files under <Root>/{logs,reports,artifacts}/<run_id>/.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at root. No directory is created here;
// EnsureDirs creates a run's directories, and the path helpers below only
// compute paths.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// LogsDir returns the directory a run's per-step stdout/stderr logs live in.
func (s *Store) LogsDir(runID int64) string {
	return filepath.Join(s.Root, "logs", fmt.Sprintf("%d", runID))
}

// ReportsDir returns the directory a run's rendered report lives in.
func (s *Store) ReportsDir(runID int64) string {
	return filepath.Join(s.Root, "reports", fmt.Sprintf("%d", runID))
}

// ArtifactsDir returns the directory a run's audit/diff bundle lives in.
func (s *Store) ArtifactsDir(runID int64) string {
	return filepath.Join(s.Root, "artifacts", fmt.Sprintf("%d", runID))
}

// EnsureDirs creates all three of a run's directories.
func (s *Store) EnsureDirs(runID int64) error {
	for _, dir := range []string{s.LogsDir(runID), s.ReportsDir(runID), s.ArtifactsDir(runID)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Record hashes the file at path and returns an Artifact row describing it.
// It returns (nil, nil) if path does not exist, matching the worker's own
// "skip if the file was never written" behavior.
func (s *Store) Record(runID int64, kind, path string) (*types.Artifact, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	sum, err := sha256File(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	return &types.Artifact{
		RunID:  runID,
		Kind:   kind,
		Path:   path,
		SHA256: sum,
		Size:   info.Size(),
	}, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer iox.DiscardClose(f)

	digest := sha256.New()
	buf := make([]byte, readChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
