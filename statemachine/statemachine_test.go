package statemachine

import (
	"testing"

	"github.com/localops/copilot/types"
)

func TestCanTransitionRun(t *testing.T) {
	cases := []struct {
		from, to types.RunStatus
		want     bool
	}{
		{types.RunPending, types.RunPlanned, true},
		{types.RunPending, types.RunRunning, false},
		{types.RunAwaitingReview, types.RunRunning, true},
		{types.RunAwaitingReview, types.RunCancelled, true},
		{types.RunRunning, types.RunSucceeded, true},
		{types.RunRunning, types.RunPending, false},
		{types.RunSucceeded, types.RunRunning, false},
	}
	for _, c := range cases {
		if got := CanTransitionRun(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionRun(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanTransitionStep(t *testing.T) {
	cases := []struct {
		from, to types.StepStatus
		want     bool
	}{
		{types.StepQueued, types.StepRunning, true},
		{types.StepQueued, types.StepSkipped, true},
		{types.StepQueued, types.StepFailed, false},
		{types.StepRunning, types.StepSucceeded, true},
		{types.StepRunning, types.StepFailed, true},
		{types.StepFailed, types.StepRunning, false},
	}
	for _, c := range cases {
		if got := CanTransitionStep(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionStep(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, s := range []types.RunStatus{types.RunSucceeded, types.RunFailed, types.RunCancelled} {
		if allowed := RunTransitions[s]; len(allowed) != 0 {
			t.Errorf("terminal run status %s has transitions: %v", s, allowed)
		}
	}
}
