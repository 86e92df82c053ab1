package types //nolint:revive // types is a valid package name

import "testing"

func TestRunStatus_Terminal(t *testing.T) {
	cases := map[RunStatus]bool{
		RunPending:        false,
		RunPlanned:        false,
		RunAwaitingReview: false,
		RunRunning:        false,
		RunSucceeded:      true,
		RunFailed:         true,
		RunCancelled:      true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("RunStatus(%q).Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestDefaultSandboxMeta(t *testing.T) {
	meta := DefaultSandboxMeta()
	if meta.NetworkDefault != "none" {
		t.Errorf("NetworkDefault = %q, want %q", meta.NetworkDefault, "none")
	}
	if meta.PidsLimit != 128 {
		t.Errorf("PidsLimit = %d, want 128", meta.PidsLimit)
	}
}
