// Package workflow sequences the browser actions and waits that accomplish
// one translation job against the remote document-translation page.
package workflow

import (
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pdfjp/internal/config"
	"pdfjp/internal/logger"
	"pdfjp/internal/types"
)

// Locators for the fixed page layout of the translation service.
const (
	// FileInputSelector matches the document-upload form control.
	FileInputSelector = `input[name="file"]`
	// TranslateButtonXPath matches the button labeled "Translate" (ja).
	TranslateButtonXPath = `//button/span[text()='翻訳']`
	// DownloadButtonXPath matches the button labeled "Download translation"
	// (ja). It only becomes clickable once server-side translation is done.
	DownloadButtonXPath = `//button/span[text()='翻訳をダウンロード']`
)

// UISession is the browser surface the workflow drives.
type UISession interface {
	Open(url string) error
	SetFileInput(selector, path string) error
	WaitClickableAndClick(xpath string, timeout time.Duration) error
	StagingDir() string
	Close()
}

// SessionFactory launches a fresh browser session.
type SessionFactory func() (UISession, error)

// Committer waits for the staged file and moves it to the destination.
type Committer interface {
	WaitAndCommit(stagedPath, destPath string) error
}

// Workflow runs one job through a strict linear sequence of phases. It is
// single-use: construct, Run once, discard. Any failure is terminal for
// the run; no step is retried and no phase is re-entered.
type Workflow struct {
	cfg       *config.Config
	log       logger.Logger
	sessions  SessionFactory
	committer Committer
	phase     types.Phase
}

// New creates a Workflow.
func New(cfg *config.Config, log logger.Logger, sessions SessionFactory, committer Committer) *Workflow {
	return &Workflow{
		cfg:       cfg,
		log:       log,
		sessions:  sessions,
		committer: committer,
		phase:     types.PhaseIdle,
	}
}

// Phase returns the phase the workflow last entered.
func (w *Workflow) Phase() types.Phase {
	return w.phase
}

// Run executes the job. The browser session is torn down on every exit
// path; the staging directory goes with it.
func (w *Workflow) Run(job types.Job) error {
	w.log.Info("starting translation job",
		logger.String("source", job.SourcePath),
		logger.String("destination", job.DestinationPath))

	session, err := w.sessions()
	if err != nil {
		return w.fail(err)
	}
	defer session.Close()
	w.enter(types.PhaseSessionReady)

	if err := session.Open(w.cfg.ServiceURL); err != nil {
		return w.fail(err)
	}
	w.enter(types.PhasePageLoaded)

	if err := session.SetFileInput(FileInputSelector, job.SourcePath); err != nil {
		return w.fail(err)
	}
	w.enter(types.PhaseFileSelected)

	if err := session.WaitClickableAndClick(TranslateButtonXPath, w.cfg.ClickTimeout); err != nil {
		return w.fail(err)
	}
	w.enter(types.PhaseTranslationRequested)
	w.log.Info("translating...")

	// The completion wait uses its own, longer timeout: how long the
	// service takes to translate has nothing to do with how fast its UI
	// responds to clicks.
	if err := session.WaitClickableAndClick(DownloadButtonXPath, w.cfg.TranslationTimeout); err != nil {
		return w.fail(err)
	}
	w.enter(types.PhaseTranslationReady)
	w.enter(types.PhaseDownloadTriggered)

	stagedPath := filepath.Join(session.StagingDir(), filepath.Base(job.SourcePath))
	w.log.Info("saving as", logger.String("name", filepath.Base(job.DestinationPath)))

	if err := w.committer.WaitAndCommit(stagedPath, job.DestinationPath); err != nil {
		return w.fail(err)
	}
	w.enter(types.PhaseDone)

	if err := api.ValidateFile(job.DestinationPath, nil); err != nil {
		w.log.Warn("translated file failed PDF validation", logger.Err(err))
	}

	w.log.Info("done", logger.String("output", job.DestinationPath))
	return nil
}

func (w *Workflow) enter(phase types.Phase) {
	w.phase = phase
	w.log.Debug("phase", logger.String("phase", string(phase)))
}

// fail records the terminal failure, tagging the error with the phase the
// workflow was in when the step failed.
func (w *Workflow) fail(err error) error {
	failedIn := w.phase
	w.phase = types.PhaseFailed
	w.log.Error("workflow failed", err, logger.String("phase", string(failedIn)))
	return err
}
