package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/logger"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/report"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/resume"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/utils"
)

const (
	actionSelectFile      = "select resume"
	actionSetDescription  = "set job description"
	actionSubmitResume    = "submit resume"
	actionBeginInterview  = "begin interview"
	actionSubmitAnswer    = "submit answer"
	actionExport          = "export report"
	maxPreviewLogLength   = 120
	defaultResumeMaxBytes = resume.DefaultMaxSize
)

// Backend is the remote screening service the wizard drives.
type Backend interface {
	Upload(ctx context.Context, file *resume.File) (string, error)
	Analyze(ctx context.Context, sessionID, jobDescription string) (*aura.Analysis, error)
	StartInterview(ctx context.Context, sessionID string) ([]string, error)
	SubmitAnswer(ctx context.Context, sessionID string, index int, answer string) (*aura.AnswerResult, error)
}

type Options struct {
	MaxResumeSize int64
}

// Controller owns the wizard state and moves it through
// upload → analysis → interview → report. All methods are safe for concurrent use;
// at most one backend request is in flight at a time.
type Controller struct {
	backend       Backend
	logger        *zap.Logger
	maxResumeSize int64

	mu    sync.Mutex
	state State
	// epoch changes on every reset; responses captured under an older epoch are dropped.
	epoch   uint64
	pending string
	cancel  context.CancelFunc
	banner  string
}

func New(backend Backend, log *zap.Logger, opts Options) *Controller {
	if log == nil {
		log = zap.NewNop()
	}

	maxSize := opts.MaxResumeSize
	if maxSize <= 0 {
		maxSize = defaultResumeMaxBytes
	}

	return &Controller{
		backend:       backend,
		logger:        log,
		maxResumeSize: maxSize,
		state:         &UploadState{},
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stage()
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sessionOf(c.state)
}

// Pending names the action whose request is in flight, or "" when idle.
func (c *Controller) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Banner is the latest user-facing error message, "" when there is none.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = ""
}

// SelectFile loads the resume at path for the next submission.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := expect[*UploadState](c, actionSelectFile)
	if err != nil {
		return err
	}

	file, err := resume.Load(path, c.maxResumeSize)
	if err != nil {
		return c.failLocked(c.fileError(err))
	}

	st.File = file
	c.banner = ""

	log := c.logLocked()
	log.Info("resume selected",
		zap.String("filename", file.Name),
		zap.Int64("size", file.Size()),
		zap.Int("pages", file.Pages),
	)
	if file.Preview != "" {
		log.Debug("resume preview", zap.String("text", utils.TruncateForLog(file.Preview, maxPreviewLogLength)))
	}

	return nil
}

// SetJobDescription stores the job description verbatim.
func (c *Controller) SetJobDescription(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := expect[*UploadState](c, actionSetDescription)
	if err != nil {
		return err
	}

	st.JobDescription = text
	return nil
}

// SubmitResume uploads the selected resume and requests its analysis.
// On any failure the wizard stays in the upload stage with its selections intact.
func (c *Controller) SubmitResume(ctx context.Context) error {
	c.mu.Lock()
	st, err := expect[*UploadState](c, actionSubmitResume)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if st.File == nil || strings.TrimSpace(st.JobDescription) == "" {
		err := c.failLocked(&ValidationError{Message: msgMissingInput})
		c.mu.Unlock()
		return err
	}

	file, jobDescription := st.File, st.JobDescription
	callCtx, epoch := c.beginLocked(ctx, actionSubmitResume)
	c.mu.Unlock()
	defer c.end(epoch)

	sessionID, err := c.backend.Upload(callCtx, file)
	err = c.apply(epoch, "", err, func() error {
		if st, ok := c.state.(*UploadState); ok {
			st.SessionID = sessionID
		}
		c.logLocked().Info("resume uploaded")
		return nil
	})
	if err != nil {
		return err
	}

	analysis, err := c.backend.Analyze(callCtx, sessionID, jobDescription)
	return c.apply(epoch, sessionID, err, func() error {
		if analysis == nil {
			return &aura.ShapeError{Op: "analyze", Field: "analysis"}
		}

		c.state = &AnalysisState{SessionID: sessionID, Result: analysis}
		c.logLocked().Info("resume analyzed",
			zap.String("candidate", analysis.Name),
			zap.Float64("overall_score", analysis.OverallScore),
		)
		return nil
	})
}

// BeginInterview fetches the interview questions and starts at the first one.
func (c *Controller) BeginInterview(ctx context.Context) error {
	c.mu.Lock()
	st, err := expect[*AnalysisState](c, actionBeginInterview)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if st.SessionID == "" {
		err := c.failLocked(&ValidationError{Message: msgNoSession})
		c.mu.Unlock()
		return err
	}

	sessionID, result := st.SessionID, st.Result
	callCtx, epoch := c.beginLocked(ctx, actionBeginInterview)
	c.mu.Unlock()
	defer c.end(epoch)

	questions, err := c.backend.StartInterview(callCtx, sessionID)
	return c.apply(epoch, sessionID, err, func() error {
		if len(questions) == 0 {
			return ErrNoQuestions
		}

		c.state = &InterviewState{
			SessionID: sessionID,
			Result:    result,
			Questions: questions,
		}
		c.logLocked().Info("interview started", zap.Int("questions", len(questions)))
		return nil
	})
}

// SubmitAnswer sends the answer to the current question. The wizard advances to the
// next question, or to the report once the backend declares the interview complete.
func (c *Controller) SubmitAnswer(ctx context.Context, answer string) error {
	c.mu.Lock()
	st, err := expect[*InterviewState](c, actionSubmitAnswer)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if strings.TrimSpace(answer) == "" || st.SessionID == "" {
		err := c.failLocked(&ValidationError{Message: msgMissingAnswer})
		c.mu.Unlock()
		return err
	}

	sessionID, index := st.SessionID, st.Current
	callCtx, epoch := c.beginLocked(ctx, actionSubmitAnswer)
	c.mu.Unlock()
	defer c.end(epoch)

	result, err := c.backend.SubmitAnswer(callCtx, sessionID, index, answer)
	return c.apply(epoch, sessionID, err, func() error {
		st, ok := c.state.(*InterviewState)
		if !ok {
			return ErrStaleResponse
		}
		if result == nil {
			return &aura.ShapeError{Op: "submit_answer", Field: "evaluation"}
		}

		record := AnswerRecord{
			Index:    index,
			Question: st.Questions[index],
			Answer:   answer,
			Score:    result.Evaluation.Score,
			Feedback: result.Evaluation.Feedback,
		}

		if result.Complete {
			if result.Final == nil {
				return &aura.ShapeError{Op: "submit_answer", Field: "final_score"}
			}

			c.state = &ReportState{
				SessionID: sessionID,
				Result:    st.Result,
				Questions: st.Questions,
				Current:   index,
				Answers:   append(st.Answers, record),
				Final:     result.Final,
			}
			c.logLocked().Info("interview complete",
				zap.Float64("final_score", result.Final.FinalScore),
				zap.String("recommendation", string(result.Final.Recommendation)),
			)
			return nil
		}

		if index+1 >= len(st.Questions) {
			return &aura.ShapeError{
				Op:    "submit_answer",
				Field: "is_complete",
				Err:   fmt.Errorf("question %d of %d answered but interview is not complete", index+1, len(st.Questions)),
			}
		}

		st.Answers = append(st.Answers, record)
		st.Current = index + 1
		c.logLocked().Info("answer evaluated",
			zap.Int("question_index", index),
			zap.Float64("score", record.Score),
		)
		return nil
	})
}

// Reset discards the session and returns to an empty upload stage. A request still
// in flight is cancelled and whatever it returns is ignored.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logLocked()
	if c.pending != "" {
		log.Debug("abandoning in-flight request", zap.String("action", c.pending))
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.pending = ""
	c.epoch++
	c.state = &UploadState{}
	c.banner = ""

	log.Info("wizard reset")
}

// Export writes the CSV report. Only available once the interview is complete.
func (c *Controller) Export(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := expect[*ReportState](c, actionExport)
	if err != nil {
		return err
	}

	if err := report.WriteCSV(w, st.Result, st.Final); err != nil {
		return c.failLocked(err)
	}

	return nil
}

// expect returns the current state as T, refusing while a request is in flight.
// Must be called with c.mu held.
func expect[T State](c *Controller, action string) (T, error) {
	var zero T
	if c.pending != "" {
		return zero, ErrBusy
	}

	st, ok := c.state.(T)
	if !ok {
		return zero, &StageError{Action: action, Want: zero.Stage(), Got: c.state.Stage()}
	}

	return st, nil
}

// beginLocked marks action as in flight and derives the context its requests use.
func (c *Controller) beginLocked(ctx context.Context, action string) (context.Context, uint64) {
	callCtx, cancel := context.WithCancel(ctx)
	c.pending = action
	c.cancel = cancel
	c.banner = ""

	c.logLocked().Debug("request started", zap.String("action", action))
	return callCtx, c.epoch
}

func (c *Controller) end(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return
	}

	c.pending = ""
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// apply settles a backend response. Responses from before a reset, or for a session
// that is no longer current, are dropped without touching the state or the banner.
// sessionID may be empty when the session is not known yet.
func (c *Controller) apply(epoch uint64, sessionID string, err error, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || (sessionID != "" && sessionOf(c.state) != sessionID) {
		c.logger.Debug("discarding stale response", zap.Error(err))
		return ErrStaleResponse
	}

	if err != nil {
		return c.failLocked(err)
	}

	if err := fn(); err != nil {
		return c.failLocked(err)
	}

	return nil
}

func (c *Controller) failLocked(err error) error {
	c.banner = err.Error()

	var validation *ValidationError
	if errors.As(err, &validation) {
		c.logLocked().Info("validation failed", zap.String("reason", validation.Message))
	} else {
		c.logLocked().Warn("request failed", zap.Error(err))
	}

	return err
}

func (c *Controller) fileError(err error) error {
	switch {
	case errors.Is(err, resume.ErrNotPDF), errors.Is(err, resume.ErrEmpty):
		return &ValidationError{Message: msgSelectPDF, Err: err}
	case errors.Is(err, resume.ErrTooLarge):
		return &ValidationError{
			Message: fmt.Sprintf("Resume file must not exceed %d KB", c.maxResumeSize>>10),
			Err:     err,
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("Could not read resume: %v", err), Err: err}
	}
}

func (c *Controller) logLocked() *zap.Logger {
	return logger.WithSession(c.logger, sessionOf(c.state), c.state.Stage().String())
}
