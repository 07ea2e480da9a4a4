package assess

import "github.com/ironclad-grc/ironclad/internal/evidence"

// PreliminaryStatus enumerates evidence-availability verdicts ahead of AI analysis.
type PreliminaryStatus string

// Supported preliminary statuses.
const (
	StatusPotentialCompliant PreliminaryStatus = "potential_compliant"
	StatusPotentialPartial   PreliminaryStatus = "potential_partial"
	StatusPotentialGap       PreliminaryStatus = "potential_gap"
)

// Finding records the preliminary evidence match for one control.
type Finding struct {
	ControlID          string            `json:"control_id"`
	ControlName        string            `json:"control_name"`
	ControlDescription string            `json:"control_description"`
	CommonEvidenceTypes []string         `json:"common_evidence_types"`
	EvidenceFound      []string          `json:"evidence_found"`
	PreliminaryStatus  PreliminaryStatus `json:"preliminary_status"`
	PointsOfFocusCount int               `json:"points_of_focus_count"`
	RequiresAIAnalysis bool              `json:"requires_ai_analysis"`
}

// Summary aggregates preliminary statuses across all controls.
type Summary struct {
	TotalControls      int `json:"total_controls"`
	PotentialCompliant int `json:"potential_compliant"`
	PotentialPartial   int `json:"potential_partial"`
	PotentialGap       int `json:"potential_gap"`
}

// FrameworkReference identifies the assessed framework edition.
type FrameworkReference struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ConsensusResult carries the engine verdict once it has been attached to a document.
type ConsensusResult struct {
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

// Document is the persisted output of one assessment run.
type Document struct {
	AssessmentID       string             `json:"assessment_id"`
	ClientID           string             `json:"client_id"`
	Framework          FrameworkReference `json:"framework"`
	AssessmentType     string             `json:"assessment_type"`
	Timestamp          string             `json:"timestamp"`
	EvidenceFiles      []evidence.File    `json:"evidence_files"`
	PreliminarySummary Summary            `json:"preliminary_summary"`
	Findings           []Finding          `json:"findings"`
	AIConsensus        *ConsensusResult   `json:"ai_consensus,omitempty"`
	Note               string             `json:"note"`
}
