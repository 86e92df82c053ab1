package planner

import (
	"testing"

	"github.com/localops/copilot/types"
)

func TestRuleBased_Plan(t *testing.T) {
	cases := []struct {
		intent    string
		wantRisk  types.Level
		wantSteps int
	}{
		{"run the unit tests", types.LevelLow, 2},
		{"build the project", types.LevelLow, 2},
		{"find the error in the logs", types.LevelLow, 1},
		{"do something unrelated", types.LevelMedium, 1},
	}

	var p RuleBased
	for _, tc := range cases {
		doc := p.Plan(tc.intent)
		if doc.RiskLevel != tc.wantRisk {
			t.Errorf("Plan(%q).RiskLevel = %q, want %q", tc.intent, doc.RiskLevel, tc.wantRisk)
		}
		if len(doc.Steps) != tc.wantSteps {
			t.Errorf("Plan(%q) has %d steps, want %d", tc.intent, len(doc.Steps), tc.wantSteps)
		}
		if doc.Intent != tc.intent {
			t.Errorf("Plan(%q).Intent = %q", tc.intent, doc.Intent)
		}
		for _, out := range []string{"report.md", "audit.json", "diff.patch"} {
			found := false
			for _, o := range doc.Outputs {
				if o == out {
					found = true
				}
			}
			if !found {
				t.Errorf("Plan(%q).Outputs missing %q", tc.intent, out)
			}
		}
	}
}
