// Package watcher detects the translated file in the staging area and
// commits it to the job's destination.
package watcher

import (
	"fmt"
	"os"
	"time"

	"pdfjp/internal/logger"
	"pdfjp/internal/types"
)

// DownloadWatcher polls a staged path for the appearance of the translated
// file and renames it into place. Polling is used instead of filesystem
// notification: the staging directory is ephemeral and private to one job,
// and one-second granularity is fine for a single-shot CLI.
type DownloadWatcher struct {
	interval time.Duration
	attempts int
	log      logger.Logger
}

// New creates a DownloadWatcher that polls every interval, at most
// attempts times.
func New(interval time.Duration, attempts int, log logger.Logger) *DownloadWatcher {
	return &DownloadWatcher{
		interval: interval,
		attempts: attempts,
		log:      log,
	}
}

// Budget is the total time the watcher may poll before giving up.
func (w *DownloadWatcher) Budget() time.Duration {
	return time.Duration(w.attempts) * w.interval
}

// WaitAndCommit blocks until the file at stagedPath exists, then replaces
// destPath with it. The rename is the commit point: once it succeeds the
// job is done. The deadline is computed once from the monotonic clock so
// scheduler jitter in the sleeps cannot stretch the bound.
func (w *DownloadWatcher) WaitAndCommit(stagedPath, destPath string) error {
	budget := w.Budget()
	deadline := time.Now().Add(budget)

	w.log.Debug("watching for staged file",
		logger.String("path", stagedPath),
		logger.Duration("budget", budget))

	for {
		time.Sleep(w.interval)

		if _, err := os.Stat(stagedPath); err == nil {
			return w.commit(stagedPath, destPath)
		}

		if !time.Now().Before(deadline) {
			w.log.Warn("staged file never appeared",
				logger.String("path", stagedPath),
				logger.Duration("budget", budget))
			return types.NewAppErrorWithDetails(types.ErrTimeout,
				"translated file did not appear in the download directory",
				fmt.Sprintf("waited %s", budget), nil)
		}
	}
}

// commit replaces destPath with stagedPath.
func (w *DownloadWatcher) commit(stagedPath, destPath string) error {
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return types.NewAppError(types.ErrInternal, "failed to replace existing destination file", err)
	}

	if err := os.Rename(stagedPath, destPath); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to move translated file into place", err)
	}

	w.log.Info("translated file committed", logger.String("path", destPath))
	return nil
}
