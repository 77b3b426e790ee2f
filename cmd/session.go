package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hirescore/internal/reconcile"
	"github.com/spigell/hirescore/internal/session"
)

const (
	PromptSaveJob      = "Save job description"
	PromptSaveResume   = "Save resume text"
	PromptUploadResume = "Upload resume file"
	PromptStartQuiz    = "Start quiz"
	PromptAnswer       = "Answer quiz questions"
	PromptGradeQuiz    = "Grade quiz"
	PromptCVMatch      = "Compute CV match"
	PromptMatch        = "Compute combined fit"
	PromptShow         = "Show session"
	PromptHealth       = "Check backend health"
	PromptReset        = "Reset session"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "Action",
	Items: []string{
		PromptSaveJob, PromptSaveResume, PromptUploadResume,
		PromptStartQuiz, PromptAnswer, PromptGradeQuiz,
		PromptCVMatch, PromptMatch, PromptShow,
		PromptHealth, PromptReset, PromptExit,
	},
	Size: 12,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run an interactive fit assessment",
	Run: func(_ *cobra.Command, _ []string) {
		runSession()
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().IntP("questions", "n", 0, "number of quiz questions (default 5)")

	viper.BindPFlag("quiz.questions", sessionCmd.Flags().Lookup("questions"))
}

func runSession() {
	ctx := context.Background()
	config, logger := bootstrap()

	logger.Info("starting the hirescore session", zap.String("version", version))

	orchestrator, board := newOrchestrator(config, logger)
	opts := reconcile.Options{MaxGaps: config.Display.MaxGaps}

	if status := orchestrator.CheckHealth(ctx); status != session.HealthOK {
		logger.Warn("matching service is not healthy", zap.String("status", string(status)))
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("prompt failed", zap.Error(err))
		}

		if err := dispatch(ctx, orchestrator, action, opts); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			if !errors.Is(err, promptui.ErrInterrupt) {
				logger.Warn("action aborted", zap.String("action", action), zap.Error(err))
			}
		}

		printNotice(os.Stdout, board)
	}
}

func dispatch(ctx context.Context, o *session.Orchestrator, action string, opts reconcile.Options) error {
	switch action {
	case PromptSaveJob:
		title, err := ask("Job title", "")
		if err != nil {
			return err
		}
		description, err := askText("Job description (text or @path)")
		if err != nil {
			return err
		}
		o.SaveJob(ctx, title, description)
		return nil

	case PromptSaveResume:
		text, err := askText("Resume (text or @path)")
		if err != nil {
			return err
		}
		o.SaveResumeText(ctx, text)
		return nil

	case PromptUploadResume:
		path, err := ask("Resume file (.pdf, .docx, .txt)", "")
		if err != nil {
			return err
		}
		return uploadResume(ctx, o, path)

	case PromptStartQuiz:
		n, err := ask("Number of questions", strconv.Itoa(viper.GetInt("quiz.questions")))
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return fmt.Errorf("question count %q is not a number", n)
		}
		o.StartQuiz(ctx, count)
		return nil

	case PromptAnswer:
		return answerQuiz(o)

	case PromptGradeQuiz:
		if outcome, _ := o.GradeQuiz(ctx); outcome == session.OutcomeApplied {
			printGradingOf(o.State(), opts)
		}

	case PromptCVMatch:
		if outcome, _ := o.ComputeCVMatch(ctx); outcome == session.OutcomeApplied {
			printMatch(os.Stdout, "CV match", reconcile.Reconcile(reconcile.KindCV, o.State().CVMatch, opts))
		}

	case PromptMatch:
		if outcome, _ := o.ComputeMatch(ctx); outcome == session.OutcomeApplied {
			printMatch(os.Stdout, "Combined fit", reconcile.Reconcile(reconcile.KindCombined, o.State().Match, opts))
		}

	case PromptShow:
		printState(os.Stdout, o.State(), opts)

	case PromptHealth:
		fmt.Printf("backend: %s\n", o.CheckHealth(ctx))

	case PromptReset:
		o.Reset()

	case PromptExit:
		return errExit
	}

	return nil
}

func printGradingOf(s session.State, opts reconcile.Options) {
	if s.Grading == nil {
		return
	}
	printGrading(os.Stdout, reconcile.Grading(s.Quiz, s.Grading.Grading, opts))
}

func uploadResume(ctx context.Context, o *session.Orchestrator, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("no file given")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening resume file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading resume file info: %w", err)
	}

	// Failures reach the user through the notice board.
	o.UploadResume(ctx, path, info.Size(), f)
	return nil
}

func answerQuiz(o *session.Orchestrator) error {
	state := o.State()
	if state.Quiz == nil {
		return errors.New("there is no active quiz, start one first")
	}

	for i, q := range state.Quiz.Questions {
		answer, err := ask(fmt.Sprintf("Q%d %s", i+1, q.Text), state.Answers[q.ID])
		if err != nil {
			return err
		}
		if err := o.SetAnswer(q.ID, answer); err != nil {
			return err
		}
	}

	return nil
}

func ask(label, value string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   value,
		AllowEdit: true,
	}

	return prompt.Run()
}

// askText accepts inline text or @path to read the text from a file.
func askText(label string) (string, error) {
	input, err := ask(label, "")
	if err != nil {
		return "", err
	}

	return readTextOrFile(input)
}

func readTextOrFile(input string) (string, error) {
	path, ok := strings.CutPrefix(strings.TrimSpace(input), "@")
	if !ok {
		return input, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}
