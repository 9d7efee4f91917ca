package aura

// Sub-score ceilings of the resume analysis.
const (
	MaxSkillMatch       = 40
	MaxExperienceMatch  = 30
	MaxProjectRelevance = 20
	MaxEducationMatch   = 10
	MaxOverallScore     = 100
)

type Recommendation string

const (
	RecommendationStrongYes Recommendation = "Strong Yes"
	RecommendationYes       Recommendation = "Yes"
)

// Positive reports whether the backend recommends hiring.
func (r Recommendation) Positive() bool {
	return r == RecommendationStrongYes || r == RecommendationYes
}

// Analysis is the backend's score of a resume against a job description.
type Analysis struct {
	Name             string   `json:"name" mapstructure:"name"`
	Education        string   `json:"education" mapstructure:"education"`
	Experience       string   `json:"experience" mapstructure:"experience"`
	Skills           []string `json:"skills" mapstructure:"skills"`
	SkillMatch       float64  `json:"skillMatch" mapstructure:"skillMatch"`
	ExperienceMatch  float64  `json:"experienceMatch" mapstructure:"experienceMatch"`
	ProjectRelevance float64  `json:"projectRelevance" mapstructure:"projectRelevance"`
	EducationMatch   float64  `json:"educationMatch" mapstructure:"educationMatch"`
	OverallScore     float64  `json:"overallScore" mapstructure:"overallScore"`
	Strengths        []string `json:"strengths" mapstructure:"strengths"`
	Weaknesses       []string `json:"weaknesses" mapstructure:"weaknesses"`
}

// StrongMatch mirrors the badge shown for well-scoring resumes.
func (a *Analysis) StrongMatch() bool {
	return a != nil && a.OverallScore >= 80
}

type Evaluation struct {
	Score    float64 `json:"score" mapstructure:"score"`
	Feedback string  `json:"feedback" mapstructure:"feedback"`
}

type FinalScore struct {
	ResumeScore    float64        `json:"resumeScore" mapstructure:"resumeScore"`
	InterviewScore float64        `json:"interviewScore" mapstructure:"interviewScore"`
	FinalScore     float64        `json:"finalScore" mapstructure:"finalScore"`
	Recommendation Recommendation `json:"recommendation" mapstructure:"recommendation"`
	Summary        string         `json:"summary" mapstructure:"summary"`
}

// AnswerResult is the backend's verdict on one submitted answer.
// Final is set only when Complete is true.
type AnswerResult struct {
	Evaluation Evaluation
	Complete   bool
	Final      *FinalScore
}
