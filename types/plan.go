package types

import "time"

// Project is a local checkout the copilot is allowed to operate on.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanStep is a single grouped step of a Plan document, expanded into one
// or more RunStep rows at run-creation time (one RunStep per command).
type PlanStep struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Commands        []string `json:"commands"`
	Dangerous       bool     `json:"dangerous"`
	NetworkRequired bool     `json:"network_required"`
}

// PlanDocument is the JSON-shaped plan body a planner produces from an
// intent string. It is stored verbatim as Plan.Document and flattened into
// RunStep rows when a Run is created from it.
type PlanDocument struct {
	Version     string     `json:"version"`
	Intent      string     `json:"intent"`
	RiskLevel   Level      `json:"risk_level"`
	Assumptions []string   `json:"assumptions"`
	Steps       []PlanStep `json:"steps"`
	Outputs     []string   `json:"outputs"`
}

// Plan is a stored, versioned plan document scoped to a Project.
type Plan struct {
	ID         int64        `json:"id"`
	ProjectID  int64        `json:"project_id"`
	IntentText string       `json:"intent_text"`
	Document   PlanDocument `json:"plan_json"`
	CreatedAt  time.Time    `json:"created_at"`
}
