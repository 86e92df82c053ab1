// Package planner turns a free-text intent into a types.PlanDocument
// using a small set of keyword-matched templates. It is supplementary:
// the control API accepts any api.Planner (a type with a
// Plan(string) types.PlanDocument method), so an external, smarter
// planner can replace it without touching the rest of the system.
package planner

import (
	"strings"

	"github.com/localops/copilot/types"
)

// RuleBased is a direct port of the original service's rule_planner: four
// keyword-matched branches (test, build, search-log, fallback) and
// nothing more — no LLM call, no learned ranking.
type RuleBased struct{}

// Plan classifies intent and returns the matching template, falling back
// to a minimal "inspect the tree" plan when nothing matches.
func (RuleBased) Plan(intent string) types.PlanDocument {
	lowered := strings.ToLower(intent)
	switch {
	case strings.Contains(lowered, "test"):
		return testPlan(intent)
	case strings.Contains(lowered, "build"):
		return buildPlan(intent)
	case strings.Contains(lowered, "error"):
		return searchLogPlan(intent)
	default:
		return fallbackPlan(intent)
	}
}

func testPlan(intent string) types.PlanDocument {
	return types.PlanDocument{
		Version:     "1.0",
		Intent:      intent,
		RiskLevel:   types.LevelLow,
		Assumptions: []string{"project test command is available"},
		Steps: []types.PlanStep{
			{ID: "s1", Type: "inspect", Title: "inspect workspace", Commands: []string{"git status"}},
			{ID: "s2", Type: "execute", Title: "run tests", Commands: []string{"pytest -q"}},
		},
		Outputs: []string{"report.md", "audit.json", "diff.patch"},
	}
}

func buildPlan(intent string) types.PlanDocument {
	return types.PlanDocument{
		Version:     "1.0",
		Intent:      intent,
		RiskLevel:   types.LevelLow,
		Assumptions: []string{"project supports a build command"},
		Steps: []types.PlanStep{
			{ID: "s1", Type: "inspect", Title: "inspect dependencies", Commands: []string{"node -v", "pnpm -v"}},
			{ID: "s2", Type: "execute", Title: "build project", Commands: []string{"pnpm build"}},
		},
		Outputs: []string{"report.md", "audit.json", "diff.patch"},
	}
}

func searchLogPlan(intent string) types.PlanDocument {
	return types.PlanDocument{
		Version:     "1.0",
		Intent:      intent,
		RiskLevel:   types.LevelLow,
		Assumptions: []string{"log files are readable"},
		Steps: []types.PlanStep{
			{ID: "s1", Type: "inspect", Title: "search error logs", Commands: []string{`rg -n "error|exception|traceback" .`}},
		},
		Outputs: []string{"report.md", "audit.json", "diff.patch"},
	}
}

func fallbackPlan(intent string) types.PlanDocument {
	return types.PlanDocument{
		Version:     "1.0",
		Intent:      intent,
		RiskLevel:   types.LevelMedium,
		Assumptions: []string{"executing at minimum risk"},
		Steps: []types.PlanStep{
			{ID: "s1", Type: "inspect", Title: "inspect directory structure", Commands: []string{`rg -n "TODO|FIXME" .`}},
		},
		Outputs: []string{"report.md", "audit.json", "diff.patch"},
	}
}
