package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/report"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/resume"
)

var _ Backend = (*aura.Client)(nil)

var minimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	sessionID  string
	analysis   *aura.Analysis
	questions  []string
	results    []*aura.AnswerResult
	uploadErr  error
	analyzeErr error
	startErr   error
	answerErr  error

	// gate, when set, blocks Upload until it is closed regardless of the context.
	gate chan struct{}
	// waitCtx makes Upload block until its context is done.
	waitCtx bool
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Upload(ctx context.Context, _ *resume.File) (string, error) {
	f.record("upload")
	if f.gate != nil {
		<-f.gate
	}
	if f.waitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.sessionID, f.uploadErr
}

func (f *fakeBackend) Analyze(_ context.Context, sessionID, jobDescription string) (*aura.Analysis, error) {
	f.record(fmt.Sprintf("analyze %s", sessionID))
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analysis, nil
}

func (f *fakeBackend) StartInterview(_ context.Context, sessionID string) ([]string, error) {
	f.record(fmt.Sprintf("start %s", sessionID))
	return f.questions, f.startErr
}

func (f *fakeBackend) SubmitAnswer(_ context.Context, sessionID string, index int, answer string) (*aura.AnswerResult, error) {
	f.record(fmt.Sprintf("answer %s %d %s", sessionID, index, answer))
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.results[index], nil
}

func newFake() *fakeBackend {
	return &fakeBackend{
		sessionID: "sess-1",
		analysis:  &aura.Analysis{Name: "Jane Doe", OverallScore: 82},
		questions: []string{"Q1", "Q2", "Q3"},
		results: []*aura.AnswerResult{
			{Evaluation: aura.Evaluation{Score: 7, Feedback: "ok"}},
			{Evaluation: aura.Evaluation{Score: 8, Feedback: "good"}},
			{
				Evaluation: aura.Evaluation{Score: 9, Feedback: "great"},
				Complete:   true,
				Final: &aura.FinalScore{
					ResumeScore:    82,
					InterviewScore: 80,
					FinalScore:     81,
					Recommendation: aura.RecommendationYes,
				},
			},
		},
	}
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF, 0o600))
	return path
}

func readyController(t *testing.T, backend Backend) *Controller {
	t.Helper()
	c := New(backend, zap.NewNop(), Options{})
	require.NoError(t, c.SelectFile(writePDF(t)))
	require.NoError(t, c.SetJobDescription("Go developer"))
	return c
}

func interviewController(t *testing.T, backend *fakeBackend) *Controller {
	t.Helper()
	c := readyController(t, backend)
	require.NoError(t, c.SubmitResume(context.Background()))
	require.NoError(t, c.BeginInterview(context.Background()))
	return c
}

func waitPending(t *testing.T, c *Controller) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Pending() != "" }, time.Second, time.Millisecond)
}

func TestSubmitResumeCallsUploadThenAnalyze(t *testing.T) {
	backend := newFake()
	c := readyController(t, backend)

	require.NoError(t, c.SubmitResume(context.Background()))

	assert.Equal(t, []string{"upload", "analyze sess-1"}, backend.Calls())
	assert.Equal(t, StageAnalysis, c.Stage())
	assert.Equal(t, "sess-1", c.SessionID())
	assert.Empty(t, c.Banner())

	st, ok := c.State().(*AnalysisState)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", st.Result.Name)
}

func TestSubmitResumeValidation(t *testing.T) {
	tests := []struct {
		name        string
		selectFile  bool
		description string
	}{
		{name: "no file", description: "Go developer"},
		{name: "empty description", selectFile: true},
		{name: "blank description", selectFile: true, description: "  \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFake()
			c := New(backend, zap.NewNop(), Options{})
			if tt.selectFile {
				require.NoError(t, c.SelectFile(writePDF(t)))
			}
			require.NoError(t, c.SetJobDescription(tt.description))

			err := c.SubmitResume(context.Background())

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "Please upload a resume and enter job description", c.Banner())
			assert.Empty(t, backend.Calls())
			assert.Equal(t, StageUpload, c.Stage())
		})
	}
}

func TestSubmitResumeUploadFailureKeepsSelections(t *testing.T) {
	backend := newFake()
	backend.uploadErr = &aura.HTTPError{Op: "upload", StatusCode: 500, Message: "Failed to upload resume"}
	c := readyController(t, backend)

	err := c.SubmitResume(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Failed to upload resume", c.Banner())
	assert.Equal(t, []string{"upload"}, backend.Calls())

	st, ok := c.State().(*UploadState)
	require.True(t, ok)
	assert.NotNil(t, st.File)
	assert.Equal(t, "Go developer", st.JobDescription)
	assert.Empty(t, st.SessionID)
}

func TestSubmitResumeAnalyzeFailureRetainsSession(t *testing.T) {
	backend := newFake()
	backend.analyzeErr = errors.New("Error analyzing resume: connection refused")
	c := readyController(t, backend)

	err := c.SubmitResume(context.Background())

	require.Error(t, err)
	assert.Equal(t, StageUpload, c.Stage())
	assert.Equal(t, "sess-1", c.SessionID())
	assert.Equal(t, "Error analyzing resume: connection refused", c.Banner())

	// the retry succeeds once the backend recovers
	backend.analyzeErr = nil
	require.NoError(t, c.SubmitResume(context.Background()))
	assert.Equal(t, StageAnalysis, c.Stage())
}

func TestSubmitResumeAnalyzeDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/upload":
			fmt.Fprint(w, `{"session_id":"sess-42"}`)
		case "/analyze":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"detail":"Unsupported resume format"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := readyController(t, aura.New(zap.NewNop(), srv.URL, ""))

	err := c.SubmitResume(context.Background())

	var httpErr *aura.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Unsupported resume format", c.Banner())
	assert.Equal(t, StageUpload, c.Stage())
	assert.Equal(t, "sess-42", c.SessionID())
}

func TestInterviewProgress(t *testing.T) {
	backend := newFake()
	c := interviewController(t, backend)

	st, ok := c.State().(*InterviewState)
	require.True(t, ok)
	assert.Equal(t, 0, st.Current)
	assert.Empty(t, st.Answers)
	assert.Equal(t, "Q1", st.Question())

	for n := 1; n < len(backend.questions); n++ {
		require.NoError(t, c.SubmitAnswer(context.Background(), fmt.Sprintf("answer %d", n)))

		st, ok := c.State().(*InterviewState)
		require.True(t, ok)
		assert.Equal(t, n, st.Current)
		assert.Len(t, st.Answers, n)
	}

	require.NoError(t, c.SubmitAnswer(context.Background(), "last answer"))

	final, ok := c.State().(*ReportState)
	require.True(t, ok)
	assert.Len(t, final.Answers, 3)
	assert.Equal(t, 2, final.Current)
	assert.Equal(t, 81.0, final.Final.FinalScore)
	assert.Equal(t, AnswerRecord{Index: 2, Question: "Q3", Answer: "last answer", Score: 9, Feedback: "great"}, final.Answers[2])
	assert.Equal(t, "answer sess-1 0 answer 1", backend.Calls()[3])
}

func TestSubmitAnswerValidation(t *testing.T) {
	backend := newFake()
	c := interviewController(t, backend)
	before := len(backend.Calls())

	err := c.SubmitAnswer(context.Background(), "   ")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Please enter an answer", c.Banner())
	assert.Len(t, backend.Calls(), before)
}

func TestSubmitAnswerFailureKeepsPosition(t *testing.T) {
	backend := newFake()
	c := interviewController(t, backend)
	backend.answerErr = &aura.HTTPError{Op: "submit_answer", StatusCode: 502, Message: "Failed to submit answer"}

	require.Error(t, c.SubmitAnswer(context.Background(), "answer"))

	st, ok := c.State().(*InterviewState)
	require.True(t, ok)
	assert.Equal(t, 0, st.Current)
	assert.Empty(t, st.Answers)
	assert.Equal(t, "Failed to submit answer", c.Banner())

	backend.answerErr = nil
	require.NoError(t, c.SubmitAnswer(context.Background(), "answer"))
	assert.Empty(t, c.Banner())
}

func TestSubmitAnswerLastQuestionNotComplete(t *testing.T) {
	backend := newFake()
	backend.questions = []string{"Q1"}
	backend.results = []*aura.AnswerResult{{Evaluation: aura.Evaluation{Score: 5}}}
	c := interviewController(t, backend)

	err := c.SubmitAnswer(context.Background(), "answer")

	var shape *aura.ShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, "is_complete", shape.Field)

	st, ok := c.State().(*InterviewState)
	require.True(t, ok)
	assert.Equal(t, 0, st.Current)
	assert.Empty(t, st.Answers)
	assert.NotEmpty(t, c.Banner())
}

func TestBeginInterviewNoQuestions(t *testing.T) {
	backend := newFake()
	backend.questions = nil
	c := readyController(t, backend)
	require.NoError(t, c.SubmitResume(context.Background()))

	err := c.BeginInterview(context.Background())

	require.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, StageAnalysis, c.Stage())
	assert.Equal(t, ErrNoQuestions.Error(), c.Banner())
}

func TestBeginInterviewFailure(t *testing.T) {
	backend := newFake()
	backend.startErr = &aura.HTTPError{Op: "start_interview", StatusCode: 500, Message: "Failed to start interview"}
	c := readyController(t, backend)
	require.NoError(t, c.SubmitResume(context.Background()))

	require.Error(t, c.BeginInterview(context.Background()))
	assert.Equal(t, StageAnalysis, c.Stage())
	assert.Equal(t, "Failed to start interview", c.Banner())
}

func TestResetFromEveryStage(t *testing.T) {
	stages := map[Stage]func(t *testing.T, c *Controller){
		StageUpload: func(*testing.T, *Controller) {},
		StageAnalysis: func(t *testing.T, c *Controller) {
			require.NoError(t, c.SubmitResume(context.Background()))
		},
		StageInterview: func(t *testing.T, c *Controller) {
			require.NoError(t, c.SubmitResume(context.Background()))
			require.NoError(t, c.BeginInterview(context.Background()))
			require.NoError(t, c.SubmitAnswer(context.Background(), "a"))
		},
		StageReport: func(t *testing.T, c *Controller) {
			require.NoError(t, c.SubmitResume(context.Background()))
			require.NoError(t, c.BeginInterview(context.Background()))
			for i := 0; i < 3; i++ {
				require.NoError(t, c.SubmitAnswer(context.Background(), "a"))
			}
		},
	}

	for stage, reach := range stages {
		t.Run(stage.String(), func(t *testing.T) {
			c := readyController(t, newFake())
			reach(t, c)
			require.Equal(t, stage, c.Stage())
			c.mu.Lock()
			c.banner = "something failed"
			c.mu.Unlock()

			c.Reset()

			assert.Equal(t, &UploadState{}, c.State())
			assert.Empty(t, c.Banner())
			assert.Empty(t, c.SessionID())
		})
	}
}

func TestResetDiscardsCancelledRequest(t *testing.T) {
	backend := newFake()
	backend.waitCtx = true
	c := readyController(t, backend)

	done := make(chan error, 1)
	go func() { done <- c.SubmitResume(context.Background()) }()
	waitPending(t, c)

	c.Reset()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrStaleResponse)
	case <-time.After(time.Second):
		t.Fatal("request was not cancelled by reset")
	}

	assert.Equal(t, &UploadState{}, c.State())
	assert.Empty(t, c.Banner())
	assert.Empty(t, c.Pending())
}

func TestResetDiscardsLateSuccess(t *testing.T) {
	backend := newFake()
	backend.gate = make(chan struct{})
	c := readyController(t, backend)

	done := make(chan error, 1)
	go func() { done <- c.SubmitResume(context.Background()) }()
	waitPending(t, c)

	c.Reset()
	require.NoError(t, c.SetJobDescription("another role"))
	close(backend.gate)

	require.ErrorIs(t, <-done, ErrStaleResponse)
	assert.Equal(t, []string{"upload"}, backend.Calls())

	st, ok := c.State().(*UploadState)
	require.True(t, ok)
	assert.Empty(t, st.SessionID)
	assert.Equal(t, "another role", st.JobDescription)
	assert.Empty(t, c.Banner())
}

func TestBusyWhileRequestInFlight(t *testing.T) {
	backend := newFake()
	backend.gate = make(chan struct{})
	c := readyController(t, backend)

	done := make(chan error, 1)
	go func() { done <- c.SubmitResume(context.Background()) }()
	waitPending(t, c)

	assert.ErrorIs(t, c.SubmitResume(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.SetJobDescription("x"), ErrBusy)
	assert.ErrorIs(t, c.SelectFile("x.pdf"), ErrBusy)
	assert.Equal(t, actionSubmitResume, c.Pending())

	close(backend.gate)
	require.NoError(t, <-done)
	assert.Empty(t, c.Pending())
	assert.Equal(t, StageAnalysis, c.Stage())
}

func TestStageGuards(t *testing.T) {
	c := New(newFake(), zap.NewNop(), Options{})

	var stageErr *StageError
	require.ErrorAs(t, c.BeginInterview(context.Background()), &stageErr)
	assert.Equal(t, StageAnalysis, stageErr.Want)
	assert.Equal(t, StageUpload, stageErr.Got)

	require.ErrorAs(t, c.SubmitAnswer(context.Background(), "a"), &stageErr)
	assert.Equal(t, StageInterview, stageErr.Want)

	require.ErrorAs(t, c.Export(&bytes.Buffer{}), &stageErr)
	assert.Equal(t, StageReport, stageErr.Want)

	assert.Empty(t, c.Banner())
}

func TestExport(t *testing.T) {
	backend := newFake()
	c := interviewController(t, backend)
	for range backend.questions {
		require.NoError(t, c.SubmitAnswer(context.Background(), "a"))
	}
	calls := len(backend.Calls())

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, report.Title, lines[0])
	assert.Contains(t, buf.String(), "Name,Jane Doe\n")
	assert.Contains(t, buf.String(), "Interview Score,80.0\n")
	assert.Len(t, backend.Calls(), calls)
}

func TestSelectFileRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text resume"), 0o600))
	c := New(newFake(), zap.NewNop(), Options{})

	err := c.SelectFile(path)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Please upload a PDF file", c.Banner())

	require.NoError(t, c.SelectFile(writePDF(t)))
	assert.Empty(t, c.Banner())
}

func TestSelectFileTooLarge(t *testing.T) {
	c := New(newFake(), zap.NewNop(), Options{MaxResumeSize: 8})

	err := c.SelectFile(writePDF(t))

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, c.Banner(), "must not exceed")
}

func TestDismissError(t *testing.T) {
	c := New(newFake(), zap.NewNop(), Options{})
	require.Error(t, c.SubmitResume(context.Background()))
	require.NotEmpty(t, c.Banner())

	c.DismissError()

	assert.Empty(t, c.Banner())
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	backend := newFake()
	c := interviewController(t, backend)
	require.NoError(t, c.SubmitAnswer(context.Background(), "a"))

	snapshot := c.State().(*InterviewState)
	snapshot.Questions[0] = "changed"
	snapshot.Answers[0].Answer = "changed"
	snapshot.Current = 2

	st := c.State().(*InterviewState)
	assert.Equal(t, "Q1", st.Questions[0])
	assert.Equal(t, "a", st.Answers[0].Answer)
	assert.Equal(t, 1, st.Current)
}

func TestFailuresAreLoggedWithSession(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	backend := newFake()
	backend.analyzeErr = errors.New("Error analyzing resume: timeout")

	c := New(backend, zap.New(core), Options{})
	require.NoError(t, c.SelectFile(writePDF(t)))
	require.NoError(t, c.SetJobDescription("Go developer"))
	require.Error(t, c.SubmitResume(context.Background()))

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.Equal(t, "sess-1", fields["session_id"])
	assert.Equal(t, "upload", fields["stage"])
}

func TestReportDumpToTmpFile(t *testing.T) {
	st := &ReportState{
		SessionID: "sess-1",
		Questions: []string{"Q1"},
		Answers:   []AnswerRecord{{Question: "Q1", Answer: "a", Score: 9}},
		Final:     &aura.FinalScore{FinalScore: 81, Recommendation: aura.RecommendationYes},
	}

	name, err := st.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id": "sess-1"`)
	assert.Contains(t, string(data), `"recommendation": "Yes"`)
}
