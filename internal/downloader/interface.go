package downloader

import (
	"context"
)

// ProgressCallback receives download progress.
// Parameters: progressPercent (0-100), the raw progress line
type ProgressCallback func(float64, string)

// Downloader represents a generic media downloader interface
type Downloader interface {
	// Download fetches url into outputTemplate, where %(ext)s is replaced by the
	// extension the downloader picks.
	// progressCallback can be nil if progress updates are not needed
	Download(ctx context.Context, url, outputTemplate string, progressCallback ProgressCallback) error

	// Name identifies the downloader in logs.
	Name() string
}
