// Package statemachine holds the run and step transition tables the
// orchestrator and control API consult before writing any status change.
package statemachine

import "github.com/localops/copilot/types"

// RunTransitions enumerates every legal Run status transition.
var RunTransitions = map[types.RunStatus]map[types.RunStatus]bool{
	types.RunPending: {
		types.RunPlanned:   true,
		types.RunCancelled: true,
	},
	types.RunPlanned: {
		types.RunAwaitingReview: true,
		types.RunCancelled:      true,
	},
	types.RunAwaitingReview: {
		types.RunRunning:   true,
		types.RunCancelled: true,
	},
	types.RunRunning: {
		types.RunSucceeded: true,
		types.RunFailed:    true,
		types.RunCancelled: true,
	},
	types.RunSucceeded: {},
	types.RunFailed:    {},
	types.RunCancelled: {},
}

// StepTransitions enumerates every legal RunStep status transition.
var StepTransitions = map[types.StepStatus]map[types.StepStatus]bool{
	types.StepQueued: {
		types.StepRunning: true,
		types.StepSkipped: true,
	},
	types.StepRunning: {
		types.StepSucceeded: true,
		types.StepFailed:    true,
	},
	types.StepSucceeded: {},
	types.StepFailed:    {},
	types.StepSkipped:   {},
}

// CanTransitionRun reports whether a Run may move from current to target.
func CanTransitionRun(current, target types.RunStatus) bool {
	allowed, ok := RunTransitions[current]
	if !ok {
		return false
	}
	return allowed[target]
}

// CanTransitionStep reports whether a RunStep may move from current to target.
func CanTransitionStep(current, target types.StepStatus) bool {
	allowed, ok := StepTransitions[current]
	if !ok {
		return false
	}
	return allowed[target]
}
