package wizard

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/resume"
)

type Stage int

const (
	StageUpload Stage = iota
	StageAnalysis
	StageInterview
	StageReport
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageAnalysis:
		return "analysis"
	case StageInterview:
		return "interview"
	case StageReport:
		return "report"
	default:
		return "unknown"
	}
}

// State is one of *UploadState, *AnalysisState, *InterviewState or *ReportState.
// Each carries only the payload its stage can have.
type State interface {
	// Stage must not dereference its receiver.
	Stage() Stage
	clone() State
}

// AnswerRecord is one evaluated interview answer. Records are only ever appended.
type AnswerRecord struct {
	Index    int     `json:"index"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type UploadState struct {
	File           *resume.File
	JobDescription string
	// SessionID survives a failed analysis so the upload is not orphaned.
	SessionID string
}

func (*UploadState) Stage() Stage { return StageUpload }

func (s *UploadState) clone() State {
	c := *s
	return &c
}

type AnalysisState struct {
	SessionID string
	Result    *aura.Analysis
}

func (*AnalysisState) Stage() Stage { return StageAnalysis }

func (s *AnalysisState) clone() State {
	c := *s
	return &c
}

// InterviewState keeps len(Answers) == Current and Current < len(Questions).
type InterviewState struct {
	SessionID string
	Result    *aura.Analysis
	Questions []string
	Current   int
	Answers   []AnswerRecord
}

func (*InterviewState) Stage() Stage { return StageInterview }

func (s *InterviewState) clone() State {
	c := *s
	c.Questions = slices.Clone(s.Questions)
	c.Answers = slices.Clone(s.Answers)
	return &c
}

// Question returns the question awaiting an answer.
func (s *InterviewState) Question() string {
	return s.Questions[s.Current]
}

// ReportState always holds a final score. Current stays at the last answered index.
type ReportState struct {
	SessionID string           `json:"session_id"`
	Result    *aura.Analysis   `json:"analysis"`
	Questions []string         `json:"questions"`
	Current   int              `json:"current"`
	Answers   []AnswerRecord   `json:"answers"`
	Final     *aura.FinalScore `json:"final_score"`
}

func (*ReportState) Stage() Stage { return StageReport }

func (s *ReportState) clone() State {
	c := *s
	c.Questions = slices.Clone(s.Questions)
	c.Answers = slices.Clone(s.Answers)
	return &c
}

func sessionOf(s State) string {
	switch st := s.(type) {
	case *UploadState:
		return st.SessionID
	case *AnalysisState:
		return st.SessionID
	case *InterviewState:
		return st.SessionID
	case *ReportState:
		return st.SessionID
	default:
		return ""
	}
}

// DumpToTmpFile writes the finished session as indented JSON to a new temp file.
func (s *ReportState) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "aura_session_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return file.Name(), nil
}
