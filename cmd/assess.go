package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hirescore/internal/reconcile"
	"github.com/spigell/hirescore/internal/session"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Save a job description and a resume, then print the CV match and the combined fit",
	Run: func(cmd *cobra.Command, _ []string) {
		assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringP("title", "t", "", "job title")
	assessCmd.Flags().String("jd", "", "file with the job description text")
	assessCmd.Flags().StringP("resume", "r", "", "resume file: .txt is sent as text, .pdf and .docx are uploaded")
	assessCmd.Flags().Bool("upload", false, "upload a .txt resume as a file instead of sending its text")

	assessCmd.MarkFlagRequired("title")
	assessCmd.MarkFlagRequired("jd")
}

// assess runs the non-interactive flow. Any failed step stops it.
func assess(cmd *cobra.Command) {
	ctx := context.Background()
	config, logger := bootstrap()

	orchestrator, board := newOrchestrator(config, logger)
	opts := reconcile.Options{MaxGaps: config.Display.MaxGaps}

	if status := orchestrator.CheckHealth(ctx); status != session.HealthOK {
		logger.Warn("matching service is not healthy, trying anyway", zap.String("status", string(status)))
	}

	title, _ := cmd.Flags().GetString("title")
	jdFile, _ := cmd.Flags().GetString("jd")
	resumeFile, _ := cmd.Flags().GetString("resume")
	upload, _ := cmd.Flags().GetBool("upload")

	description, err := os.ReadFile(jdFile)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	step := func(name string, outcome session.Outcome, err error) {
		printNotice(os.Stdout, board)
		if outcome == session.OutcomeFailed {
			logger.Fatal(name, zap.Error(err))
		}
	}

	outcome, err := orchestrator.SaveJob(ctx, title, string(description))
	step("saving the job description", outcome, err)

	if resumeFile != "" {
		outcome, err = saveResume(ctx, orchestrator, resumeFile, upload)
		step("saving the resume", outcome, err)

		outcome, err = orchestrator.ComputeCVMatch(ctx)
		step("computing the cv match", outcome, err)
	}

	outcome, err = orchestrator.ComputeMatch(ctx)
	step("computing the combined fit", outcome, err)

	state := orchestrator.State()
	if state.CVMatch != nil {
		printMatch(os.Stdout, "CV match", reconcile.Reconcile(reconcile.KindCV, state.CVMatch, opts))
	}
	printMatch(os.Stdout, "Combined fit", reconcile.Reconcile(reconcile.KindCombined, state.Match, opts))
}

func saveResume(ctx context.Context, o *session.Orchestrator, path string, upload bool) (session.Outcome, error) {
	if !upload && strings.EqualFold(filepath.Ext(path), ".txt") {
		text, err := os.ReadFile(path)
		if err != nil {
			return session.OutcomeFailed, err
		}
		return o.SaveResumeText(ctx, string(text))
	}

	f, err := os.Open(path)
	if err != nil {
		return session.OutcomeFailed, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return session.OutcomeFailed, err
	}

	return o.UploadResume(ctx, path, info.Size(), f)
}
