// Package downloader provides functionality for downloading source media.
// It drives yt-dlp as an external process and reports its progress.
package downloader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultCommand = "yt-dlp"

	// Lines of downloader output kept for error reports
	outputTailLines = 20

	maxLineLength = 1024 * 1024
)

var (
	ErrDownloadFailed = errors.New("download failed")
	ErrNotAvailable   = errors.New("downloader not available")
)

var progressLine = regexp.MustCompile(`^\[download\]\s+([0-9]+(?:\.[0-9]+)?)%`)

// Options configures a yt-dlp invocation.
type Options struct {
	Command             string
	AudioFormat         string
	AudioQuality        string
	PreferFreeFormats   bool
	NoCheckCertificates bool
	Headers             []string
}

// YTDLPDownloader handles downloading with yt-dlp
type YTDLPDownloader struct {
	opts Options
}

// NewYTDLPDownloader creates a new yt-dlp downloader
func NewYTDLPDownloader(opts Options) *YTDLPDownloader {
	if opts.Command == "" {
		opts.Command = defaultCommand
	}
	return &YTDLPDownloader{opts: opts}
}

func (d *YTDLPDownloader) Name() string {
	return d.opts.Command
}

// Args returns the yt-dlp arguments for a download.
func (d *YTDLPDownloader) Args(url, outputTemplate string) []string {
	var args []string

	if d.opts.NoCheckCertificates {
		args = append(args, "--no-check-certificates")
	}
	args = append(args, "--no-warnings")
	if d.opts.PreferFreeFormats {
		args = append(args, "--prefer-free-formats")
	}
	for _, header := range d.opts.Headers {
		args = append(args, "--add-header", header)
	}

	args = append(args, "--extract-audio")
	if d.opts.AudioFormat != "" {
		args = append(args, "--audio-format", d.opts.AudioFormat)
	}
	if d.opts.AudioQuality != "" {
		args = append(args, "--audio-quality", d.opts.AudioQuality)
	}

	// One progress update per line instead of carriage-return redraws
	args = append(args, "--newline", "--output", outputTemplate, url)

	return args
}

// Download runs yt-dlp and blocks until it exits.
func (d *YTDLPDownloader) Download(ctx context.Context, url, outputTemplate string, progressCallback ProgressCallback) error {
	slog.Info("Downloading source", "url", url, "output", outputTemplate)

	if _, err := exec.LookPath(d.opts.Command); err != nil {
		return fmt.Errorf("%w: %w: %v", ErrDownloadFailed, ErrNotAvailable, err)
	}

	args := d.Args(url, outputTemplate)
	cmd := exec.CommandContext(ctx, d.opts.Command, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to %s output: %w", d.opts.Command, err)
	}

	slog.Debug("Executing downloader", "command", d.opts.Command, "args", args)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start %s: %v", ErrDownloadFailed, d.opts.Command, err)
	}

	tail := make([]string, 0, outputTailLines)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()

		if percent, ok := ParseProgress(line); ok {
			if progressCallback != nil {
				progressCallback(percent, line)
			}
			continue
		}

		slog.Debug("yt-dlp", "line", line)
		if len(tail) == outputTailLines {
			tail = tail[1:]
		}
		tail = append(tail, line)
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v\nstdout: %s\nstderr: %s",
			ErrDownloadFailed, url, err, strings.Join(tail, "\n"), strings.TrimSpace(stderrBuf.String()))
	}

	if scanErr != nil {
		slog.Warn("Failed to read downloader output", "error", scanErr)
	}

	if progressCallback != nil {
		progressCallback(100, "")
	}

	slog.Info("Download completed", "url", url)
	return nil
}

// ParseProgress extracts the percentage from a yt-dlp "[download]  42.0% of ..." line.
func ParseProgress(line string) (float64, bool) {
	m := progressLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}
