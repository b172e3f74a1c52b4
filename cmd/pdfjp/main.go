package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pdfjp/internal/browser"
	"pdfjp/internal/config"
	"pdfjp/internal/fetch"
	"pdfjp/internal/logger"
	"pdfjp/internal/types"
	"pdfjp/internal/watcher"
	"pdfjp/internal/workflow"
)

var version = "0.1.0"

var (
	debugMode  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "pdfjp <pdf-path-or-url>",
	Short: "Translate a PDF into Japanese via Google Translate",
	Long: `pdfjp translates a PDF document into Japanese by uploading it to
Google Translate's document translation page in an automated browser.

The target may be a local .pdf path or an http(s) URL; remote PDFs are
downloaded first. The translated document is written next to the source
as <stem>_ja.pdf, replacing any previous result.

Timeouts, the poll budget and other knobs can be set in a config file
(--config) or through PDFJP_* environment variables, e.g.
PDFJP_TRANSLATION_TIMEOUT=60s.`,
	Args:          cobra.ExactArgs(1),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "run the browser visibly and log at debug level")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a config file (yaml, toml or json)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debugMode {
		cfg.Headless = false
		cfg.LogLevel = "debug"
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.LogFilePath = cfg.LogFile
	log, err := logger.NewDefaultLogger(logCfg)
	if err != nil {
		return err
	}
	defer log.Close()

	resolver := fetch.NewResolver("", cfg.FetchTimeout, cfg.FetchRetries, log)
	sourcePath, err := resolver.Resolve(args[0])
	if err != nil {
		log.Error("could not resolve target", err, logger.String("target", args[0]))
		return err
	}

	job := types.NewJob(uuid.NewString(), sourcePath)
	log.Info("starting translation",
		logger.String("job_id", job.ID),
		logger.String("source", job.SourcePath),
		logger.String("destination", job.DestinationPath),
		logger.Bool("headless", cfg.Headless))

	w := workflow.New(cfg, log,
		func() (workflow.UISession, error) {
			return browser.NewSession(&browser.Config{Headless: cfg.Headless}, log)
		},
		watcher.New(cfg.PollInterval, cfg.DownloadAttempts, log))

	if err := w.Run(job); err != nil {
		log.Error("translation failed", err, logger.String("phase", string(w.Phase())))
		return err
	}

	log.Info("translation complete", logger.String("output", job.DestinationPath))
	fmt.Fprintln(cmd.OutOrStdout(), job.DestinationPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
