package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
)

const (
	// Filename is the name offered for the exported evaluation.
	Filename = "aura_evaluation.csv"
	Title    = "AURA Candidate Evaluation Report"
)

// Rows lays out the evaluation as CSV records in fixed section order.
// Blank records separate the sections.
func Rows(analysis *aura.Analysis, final *aura.FinalScore) ([][]string, error) {
	if analysis == nil || final == nil {
		return nil, errors.New("analysis and final score are required")
	}

	rows := [][]string{
		{Title},
		{},
		{"Candidate Information"},
		{"Name", analysis.Name},
		{"Education", analysis.Education},
		{"Experience", analysis.Experience},
		{},
		{"Resume Scores"},
		{"Skill Match", number(analysis.SkillMatch)},
		{"Experience Match", number(analysis.ExperienceMatch)},
		{"Project Relevance", number(analysis.ProjectRelevance)},
		{"Education Match", number(analysis.EducationMatch)},
		{"Overall Resume Score", number(analysis.OverallScore)},
		{},
		{"Interview Performance"},
		{"Interview Score", OneDecimal(final.InterviewScore)},
		{"Final Score", number(final.FinalScore)},
		{"Recommendation", string(final.Recommendation)},
		{},
	}

	rows = appendSection(rows, "Skills Detected", analysis.Skills)
	rows = append(rows, []string{})
	rows = appendSection(rows, "Strengths", analysis.Strengths)
	rows = append(rows, []string{})
	rows = appendSection(rows, "Areas for Improvement", analysis.Weaknesses)

	return rows, nil
}

// WriteCSV writes the evaluation report to w.
func WriteCSV(w io.Writer, analysis *aura.Analysis, final *aura.FinalScore) error {
	rows, err := Rows(analysis, final)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func appendSection(rows [][]string, title string, items []string) [][]string {
	rows = append(rows, []string{title})
	for _, item := range items {
		rows = append(rows, []string{item})
	}
	return rows
}

// number renders scores the way the backend's web client prints them: 35, 72.5.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OneDecimal formats v with one fractional digit. Exact ties such as 72.25 round away
// from zero, as the web client's toFixed(1) does; everything else is correctly rounded.
func OneDecimal(v float64) string {
	scaled := v * 10
	// FMA gives the rounding error of the multiplication: only a zero error is a real tie.
	if math.Abs(scaled-math.Trunc(scaled)) == 0.5 && math.FMA(v, 10, -scaled) == 0 {
		return strconv.FormatFloat(math.Round(scaled)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
