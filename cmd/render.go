package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/report"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/utils"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/wizard"
)

func renderUpload(w io.Writer, st *wizard.UploadState) {
	resumeLabel := "not selected"
	if st.File != nil {
		resumeLabel = fmt.Sprintf("%s (%d bytes)", st.File.Name, st.File.Size())
		if st.File.Pages > 0 {
			resumeLabel += fmt.Sprintf(", %d pages", st.File.Pages)
		}
	}

	description := "not entered"
	if strings.TrimSpace(st.JobDescription) != "" {
		description = utils.TruncateForLog(st.JobDescription, descriptionPreviewLength)
	}

	fmt.Fprintf(w, "\nResume:          %s\nJob description: %s\n\n", resumeLabel, description)
}

func renderAnalysis(w io.Writer, a *aura.Analysis) {
	if a == nil {
		return
	}

	fmt.Fprintf(w, "\nCandidate:  %s\nEducation:  %s\nExperience: %s\n", a.Name, a.Education, a.Experience)
	fmt.Fprintf(w, "\nSkill Match        %g/%d\n", a.SkillMatch, aura.MaxSkillMatch)
	fmt.Fprintf(w, "Experience Match   %g/%d\n", a.ExperienceMatch, aura.MaxExperienceMatch)
	fmt.Fprintf(w, "Project Relevance  %g/%d\n", a.ProjectRelevance, aura.MaxProjectRelevance)
	fmt.Fprintf(w, "Education Match    %g/%d\n", a.EducationMatch, aura.MaxEducationMatch)
	fmt.Fprintf(w, "Overall            %g/%d", a.OverallScore, aura.MaxOverallScore)
	if a.StrongMatch() {
		fmt.Fprint(w, "  (strong match)")
	}
	fmt.Fprintln(w)

	renderList(w, "Skills", a.Skills)
	renderList(w, "Strengths", a.Strengths)
	renderList(w, "Areas for Improvement", a.Weaknesses)
	fmt.Fprintln(w)
}

// renderAnswers lists the answered questions with their scores.
func renderAnswers(w io.Writer, answers []wizard.AnswerRecord) {
	if len(answers) == 0 {
		return
	}

	fmt.Fprintln(w, "\nAnswered so far:")
	for _, a := range answers {
		fmt.Fprintf(w, "  Q%d: %s  score %g\n", a.Index+1, utils.TruncateForLog(a.Question, questionPreviewLength), a.Score)
	}
}

func renderEvaluation(w io.Writer, r wizard.AnswerRecord) {
	fmt.Fprintf(w, "\nScore: %g\n%s\n", r.Score, r.Feedback)
}

func renderFinal(w io.Writer, st *wizard.ReportState) {
	f := st.Final
	verdict := "not recommended"
	if f.Recommendation.Positive() {
		verdict = "recommended"
	}

	fmt.Fprintf(w, "\nResume Score:    %g\nInterview Score: %s\nFinal Score:     %g\n", f.ResumeScore, report.OneDecimal(f.InterviewScore), f.FinalScore)
	fmt.Fprintf(w, "Recommendation:  %s (%s)\n", f.Recommendation, verdict)
	if f.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", f.Summary)
	}
	fmt.Fprintln(w)
}

func renderList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
