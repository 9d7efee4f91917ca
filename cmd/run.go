package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/logger"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/report"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/secrets"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/wizard"
)

const (
	PromptSelectResume       = "Select resume PDF"
	PromptEnterDescription   = "Enter job description"
	PromptDescriptionFile    = "Load job description from file"
	PromptSubmit             = "Analyze resume"
	PromptStartInterview     = "Start interview"
	PromptContinue           = "Continue interview"
	PromptExportCSV          = "Export CSV report"
	PromptSessionToFile      = "Dump session to file"
	PromptStartOver          = "Start over"
	PromptExit               = "Exit"
	descriptionPreviewLength = 60
	questionPreviewLength    = 50
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive screening wizard",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "resume PDF to preselect")
	runCmd.Flags().StringP("job-description-file", "f", "", "file with the job description to preselect")
	runCmd.Flags().StringP("base-url", "u", "", "base URL of the screening backend")
	runCmd.Flags().StringP("output-dir", "o", "", "directory for the exported CSV report")

	for _, name := range []string{"resume", "job-description-file", "base-url", "output-dir"} {
		viper.BindPFlag(name, runCmd.Flags().Lookup(name))
	}
}

// session is the interactive loop around one wizard.
type session struct {
	wiz    *wizard.Controller
	config *Config
	logger *zap.Logger
}

// run is the main command for the cli.
func run() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the aura wizard", zap.String("version", version), zap.String("backend", config.BaseURL))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := secrets.Load(secrets.Source{
		Name:     "aura api token",
		Value:    config.Token,
		File:     config.TokenFile,
		Optional: true,
	})
	if err != nil {
		logger.Fatal(
			"loading aura api token",
			zap.Error(err),
			zap.String("hint", "set AURA_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	client := aura.New(logger, config.BaseURL, token)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	s := &session{
		wiz:    wizard.New(client, logger, wizard.Options{MaxResumeSize: config.MaxResumeSize}),
		config: config,
		logger: logger,
	}

	s.preselect()

	if err := s.loop(); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "requested by user"))
}

func (s *session) loop() error {
	for {
		var err error

		switch s.wiz.Stage() {
		case wizard.StageUpload:
			err = s.upload()
		case wizard.StageAnalysis:
			err = s.analysis()
		case wizard.StageInterview:
			err = s.interview()
		case wizard.StageReport:
			err = s.report()
		}

		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return errExit
		}
		if err != nil {
			return err
		}
	}
}

// preselect applies the resume and job description given by flags or config.
func (s *session) preselect() {
	if s.config.Resume != "" {
		if err := s.wiz.SelectFile(s.config.Resume); err != nil {
			s.logger.Warn("preselecting resume", zap.String("path", s.config.Resume), zap.Error(err))
			s.wiz.DismissError()
		}
	}

	if s.config.JobDescriptionFile != "" {
		if err := s.loadDescription(s.config.JobDescriptionFile); err != nil {
			s.logger.Warn("preselecting job description", zap.Error(err))
		}
	}
}

func (s *session) upload() error {
	st, ok := s.wiz.State().(*wizard.UploadState)
	if !ok {
		return nil
	}

	renderUpload(os.Stdout, st)

	menu := promptui.Select{
		Label: "Upload",
		Items: []string{PromptSelectResume, PromptEnterDescription, PromptDescriptionFile, PromptSubmit, PromptExit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptSelectResume:
		path, err := ask("Resume PDF path", filePathValidate)
		if err != nil {
			return err
		}
		s.settle("select resume", s.wiz.SelectFile(strings.TrimSpace(path)))
	case PromptEnterDescription:
		text, err := ask("Job description", nil)
		if err != nil {
			return err
		}
		s.settle("set job description", s.wiz.SetJobDescription(text))
	case PromptDescriptionFile:
		path, err := ask("Job description file", filePathValidate)
		if err != nil {
			return err
		}
		if err := s.loadDescription(strings.TrimSpace(path)); err != nil {
			s.logger.Warn("loading job description", zap.Error(err))
		}
	case PromptSubmit:
		ctx, stop := interruptible()
		defer stop()

		err := s.wiz.SubmitResume(ctx)
		if err == nil {
			s.logger.Info("analysis ready", logger.SessionFields(s.wiz.SessionID(), s.wiz.Stage().String())...)
		}
		s.settle("submit resume", err)
	case PromptExit:
		return errExit
	}

	s.showBanner()
	return nil
}

func (s *session) analysis() error {
	st, ok := s.wiz.State().(*wizard.AnalysisState)
	if !ok {
		return nil
	}

	renderAnalysis(os.Stdout, st.Result)

	menu := promptui.Select{
		Label: "Proceed?",
		Items: []string{PromptStartInterview, PromptStartOver, PromptExit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptStartInterview:
		ctx, stop := interruptible()
		defer stop()
		s.settle("begin interview", s.wiz.BeginInterview(ctx))
	case PromptStartOver:
		s.startOver()
	case PromptExit:
		return errExit
	}

	s.showBanner()
	return nil
}

func (s *session) interview() error {
	st, ok := s.wiz.State().(*wizard.InterviewState)
	if !ok {
		return nil
	}

	renderAnswers(os.Stdout, st.Answers)
	fmt.Fprintf(os.Stdout, "\nQuestion %d of %d\n%s\n\n", st.Current+1, len(st.Questions), st.Question())

	answer, err := ask("Your answer (Ctrl+C for menu)", nil)
	if errors.Is(err, promptui.ErrInterrupt) {
		return s.interviewMenu()
	}
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	err = s.wiz.SubmitAnswer(ctx, answer)
	if err == nil {
		if record, ok := lastAnswer(s.wiz.State()); ok {
			renderEvaluation(os.Stdout, record)
		}
	}
	s.settle("submit answer", err)

	s.showBanner()
	return nil
}

func (s *session) interviewMenu() error {
	menu := promptui.Select{
		Label: "Interview",
		Items: []string{PromptContinue, PromptStartOver, PromptExit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptStartOver:
		s.startOver()
	case PromptExit:
		return errExit
	}

	return nil
}

func (s *session) report() error {
	st, ok := s.wiz.State().(*wizard.ReportState)
	if !ok {
		return nil
	}

	renderFinal(os.Stdout, st)

	menu := promptui.Select{
		Label: "Interview complete",
		Items: []string{PromptExportCSV, PromptSessionToFile, PromptStartOver, PromptExit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptExportCSV:
		filename, err := s.exportCSV()
		if err != nil {
			s.logger.Error("exporting report", zap.Error(err))
			break
		}
		s.logger.Info("report exported", zap.String("filename", filename))
	case PromptSessionToFile:
		filename, err := st.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump session to file: %w", err)
		}
		s.logger.Info("dumping session to file", zap.String("filename", filename))
	case PromptStartOver:
		s.startOver()
	case PromptExit:
		return errExit
	}

	s.showBanner()
	return nil
}

func (s *session) exportCSV() (string, error) {
	dir := s.config.OutputDir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := filepath.Join(dir, report.Filename)
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}

	if err := s.wiz.Export(f); err != nil {
		f.Close()
		return "", err
	}

	return filename, f.Close()
}

func (s *session) startOver() {
	s.wiz.Reset()
	s.preselect()
}

func (s *session) loadDescription(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}

	return s.wiz.SetJobDescription(string(data))
}

// settle logs errors the wizard does not put on the banner: busy and stage errors.
// Banner errors are already logged by the wizard and shown by showBanner.
func (s *session) settle(action string, err error) {
	if err == nil {
		return
	}

	var stageErr *wizard.StageError
	if errors.Is(err, wizard.ErrBusy) || errors.Is(err, wizard.ErrStaleResponse) || errors.As(err, &stageErr) {
		s.logger.Debug("action not applied", zap.String("action", action), zap.Error(err))
	}
}

func (s *session) showBanner() {
	if banner := s.wiz.Banner(); banner != "" {
		fmt.Fprintf(os.Stdout, "\n[!] %s\n\n", banner)
		s.wiz.DismissError()
	}
}

// interruptible returns a context that is cancelled by Ctrl+C while a request is running.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func ask(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}

	return p.Run()
}

func filePathValidate(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("path is required")
	}
	return nil
}

func lastAnswer(st wizard.State) (wizard.AnswerRecord, bool) {
	var answers []wizard.AnswerRecord

	switch st := st.(type) {
	case *wizard.InterviewState:
		answers = st.Answers
	case *wizard.ReportState:
		answers = st.Answers
	}

	if len(answers) == 0 {
		return wizard.AnswerRecord{}, false
	}

	return answers[len(answers)-1], true
}
