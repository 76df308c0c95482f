package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Document is a file uploaded for analysis.
type Document struct {
	Name string
	Body io.Reader
}

// ParticipantDocument pairs a participant name with its bid document.
type ParticipantDocument struct {
	Name     string
	Document Document
}

// Requirement is one tender requirement extracted by the service.
type Requirement struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsMandatory bool    `json:"is_mandatory"`
	Weight      float64 `json:"weight"`
}

// TenderAnalysis is the service's reading of a tender document.
type TenderAnalysis struct {
	TenderPurpose      string            `json:"tender_purpose"`
	TenderType         string            `json:"tender_type"`
	Requirements       []Requirement     `json:"requirements"`
	EvaluationCriteria []json.RawMessage `json:"evaluation_criteria,omitempty"`
	KeyConditions      []string          `json:"key_conditions,omitempty"`
	Warnings           []string          `json:"warnings,omitempty"`
	RequirementsCount  int               `json:"requirements_count"`
	MandatoryCount     int               `json:"mandatory_count"`

	Extra map[string]json.RawMessage `json:"-"`
}

var tenderAnalysisFields = []string{
	"tender_purpose", "tender_type", "requirements", "evaluation_criteria",
	"key_conditions", "warnings", "requirements_count", "mandatory_count",
}

type tenderAnalysisAlias TenderAnalysis

// UnmarshalJSON keeps unknown fields in Extra.
func (t *TenderAnalysis) UnmarshalJSON(data []byte) error {
	var alias tenderAnalysisAlias
	extra, err := decodeWithExtra(data, &alias, tenderAnalysisFields)
	if err != nil {
		return err
	}
	*t = TenderAnalysis(alias)
	t.Extra = extra
	return nil
}

// MarshalJSON writes Extra fields next to the known ones.
func (t TenderAnalysis) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(tenderAnalysisAlias(t), t.Extra)
}

// Score is one criterion score of a participant.
type Score struct {
	RequirementID string  `json:"requirement_id"`
	Score         float64 `json:"score"`
	Matches       bool    `json:"matches"`
	Reason        string  `json:"reason,omitempty"`
	Details       string  `json:"details,omitempty"`
}

// PriceAnalysis is the price section of a participant analysis.
type PriceAnalysis struct {
	ProposedPrice json.RawMessage `json:"proposed_price,omitempty"`
	PriceAdequacy string          `json:"price_adequacy,omitempty"`
	PriceScore    float64         `json:"price_score"`
}

// ParticipantAnalysis is the service's evaluation of one participant.
type ParticipantAnalysis struct {
	ParticipantName        string        `json:"participant_name"`
	OverallMatchPercentage float64       `json:"overall_match_percentage"`
	TotalWeightedScore     float64       `json:"total_weighted_score"`
	Scores                 []Score       `json:"scores"`
	Strengths              []string      `json:"strengths"`
	Weaknesses             []string      `json:"weaknesses"`
	PriceAnalysis          PriceAnalysis `json:"price_analysis"`
	Recommendation         string        `json:"recommendation"`
	RiskLevel              string        `json:"risk_level"`
	Rank                   int           `json:"rank,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var participantAnalysisFields = []string{
	"participant_name", "overall_match_percentage", "total_weighted_score",
	"scores", "strengths", "weaknesses", "price_analysis", "recommendation",
	"risk_level", "rank",
}

type participantAnalysisAlias ParticipantAnalysis

// UnmarshalJSON keeps unknown fields in Extra.
func (p *ParticipantAnalysis) UnmarshalJSON(data []byte) error {
	var alias participantAnalysisAlias
	extra, err := decodeWithExtra(data, &alias, participantAnalysisFields)
	if err != nil {
		return err
	}
	*p = ParticipantAnalysis(alias)
	p.Extra = extra
	return nil
}

// MarshalJSON writes Extra fields next to the known ones.
func (p ParticipantAnalysis) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(participantAnalysisAlias(p), p.Extra)
}

// Comparison is the ranking of analyzed participants.
type Comparison struct {
	Ranking []ParticipantAnalysis `json:"ranking"`
	Winner  *ParticipantAnalysis  `json:"winner"`
	Summary string                `json:"summary"`
}

// FraudParticipant is one bid submitted for fraud screening.
type FraudParticipant struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Documents string `json:"documents,omitempty"`
	Details   string `json:"details,omitempty"`
}

// TenderInfo describes the tender being screened.
type TenderInfo struct {
	Name     string `json:"name"`
	Budget   string `json:"budget,omitempty"`
	Deadline string `json:"deadline,omitempty"`
}

// FraudRequest is the input of AnalyzeFraud.
type FraudRequest struct {
	Participants []FraudParticipant
	Tender       TenderInfo
}

// ValidParticipants returns the participants that have both a name and a
// price. Only those are sent to the service.
func (r FraudRequest) ValidParticipants() []FraudParticipant {
	out := make([]FraudParticipant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Price) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FraudIndicator is one suspicious pattern found by the service.
type FraudIndicator struct {
	Type                 string   `json:"type"`
	Severity             string   `json:"severity"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	InvolvedParticipants []string `json:"involved_participants,omitempty"`
	Evidence             string   `json:"evidence,omitempty"`
}

// FraudAnalysis is the fraud screening result.
type FraudAnalysis struct {
	OverallRiskLevel   string           `json:"overall_risk_level"`
	OverallRiskScore   float64          `json:"overall_risk_score"`
	FraudIndicators    []FraudIndicator `json:"fraud_indicators"`
	PriceAnalysis      json.RawMessage  `json:"price_analysis,omitempty"`
	SimilarityAnalysis json.RawMessage  `json:"similarity_analysis,omitempty"`
	CollusionAnalysis  json.RawMessage  `json:"collusion_analysis,omitempty"`
	Recommendations    []string         `json:"recommendations"`
	Summary            string           `json:"summary"`
}

// Result is a complete analysis as saved to history or exported.
type Result struct {
	Tender       *TenderAnalysis       `json:"tender"`
	Participants []ParticipantAnalysis `json:"participants"`
	Ranking      []ParticipantAnalysis `json:"ranking"`
	Winner       *ParticipantAnalysis  `json:"winner"`
	Summary      string                `json:"summary"`
}

// HistoryEntry is one row of the saved analysis list.
type HistoryEntry struct {
	ID               int64                 `json:"id"`
	Date             string                `json:"date"`
	Tender           string                `json:"tender"`
	TenderType       string                `json:"tender_type"`
	Winner           string                `json:"winner"`
	WinnerScore      float64               `json:"winner_score"`
	ParticipantCount int                   `json:"participantCount"`
	Ranking          []ParticipantAnalysis `json:"ranking"`
	Summary          string                `json:"summary"`
}

// HistoryPage is one page of the saved analysis list.
type HistoryPage struct {
	Total   int            `json:"total"`
	Entries []HistoryEntry `json:"history"`
}

// HistoryDetail is one saved analysis with its full payloads.
type HistoryDetail struct {
	ID               int64                 `json:"id"`
	Date             string                `json:"date"`
	Tender           *TenderAnalysis       `json:"tender"`
	TenderName       string                `json:"tender_name"`
	TenderType       string                `json:"tender_type"`
	Participants     []ParticipantAnalysis `json:"participants"`
	ParticipantCount int                   `json:"participantCount"`
	Ranking          []ParticipantAnalysis `json:"ranking"`
	Winner           string                `json:"winner"`
	WinnerScore      float64               `json:"winner_score"`
	Summary          string                `json:"summary"`
	Language         string                `json:"language"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalTenders       int `json:"total_tenders"`
	ActiveTenders      int `json:"active_tenders"`
	TotalParticipants  int `json:"total_participants"`
	TenderParticipants int `json:"tender_participants"`
	TotalEvaluations   int `json:"total_evaluations"`
	FraudDetections    int `json:"fraud_detections"`
	HighRiskFrauds     int `json:"high_risk_frauds"`
	ComplianceChecks   int `json:"compliance_checks"`
	CompliancePassed   int `json:"compliance_passed"`
}

// Export is a rendered report.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

func decodeWithExtra(data []byte, target any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode extra fields: %w", err)
	}
	for _, name := range known {
		delete(fields, name)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func encodeWithExtra(value any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, known := fields[name]; !known {
			fields[name] = raw
		}
	}
	return json.Marshal(fields)
}
