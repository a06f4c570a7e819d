// Package audio provides functionality for cutting tracks out of a recording using FFmpeg.
// It includes the timestamp parser used to compute track ranges and an ID3 tagger for
// the resulting files.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	defaultCommand    = "ffmpeg"
	defaultID3Version = "3"

	maxCommandLength = 200
	maxOutputLength  = 2000
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrInvalidPath      = errors.New("invalid path")
	ErrTranscodeFailed  = errors.New("transcode failed")
	ErrMissingParameter = errors.New("missing split parameter")
)

// Command is an external program invocation.
type Command struct {
	Name string
	Args []string
}

// Argv returns the program name followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a POSIX shell line. Every argument is quoted on its own,
// so pasting the line into a shell runs exactly Argv.
func (c Command) String() string {
	return shellquote.Join(c.Argv()...)
}

// ffmpegError wraps FFmpeg command errors with additional context
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() []error {
	return []error{ErrTranscodeFailed, e.wrapped}
}

// newFFmpegError creates a new ffmpegError with truncated command and output
func newFFmpegError(cmd Command, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > maxCommandLength {
		cmdStr = cmdStr[:maxCommandLength] + "..."
	}
	out := strings.TrimSpace(string(output))
	if len(out) > maxOutputLength {
		out = "..." + out[len(out)-maxOutputLength:]
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  out,
		wrapped: err,
	}
}

type ffmpeg struct {
	command string
}

// NewFFMPEGEngine returns a Processor running the given ffmpeg binary.
func NewFFMPEGEngine(command string) *ffmpeg {
	if command == "" {
		command = defaultCommand
	}
	return &ffmpeg{command: command}
}

func (f *ffmpeg) validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// Command builds the ffmpeg invocation for a split.
func (f *ffmpeg) Command(sp SplitParams) (Command, error) {
	if sp.InputPath == "" || sp.OutputPath == "" {
		return Command{}, fmt.Errorf("%w: input and output paths are required", ErrMissingParameter)
	}

	inputPath, err := filepath.Abs(sp.InputPath)
	if err != nil {
		return Command{}, fmt.Errorf("failed to get absolute path: %w", err)
	}

	args := []string{
		"-i", inputPath,
		"-ss", strconv.Itoa(sp.Range.Start),
		"-t", strconv.Itoa(sp.Range.Length),
		"-metadata", "artist=" + sp.Track.Artist,
		"-metadata", "title=" + sp.Track.Title,
	}

	if strings.EqualFold(filepath.Ext(sp.OutputPath), ".mp3") {
		args = append(args, "-id3v2_version", defaultID3Version)
	}

	args = append(args, sp.OutputPath)

	return Command{Name: f.command, Args: args}, nil
}

// Split cuts sp.Range out of the input and writes it, tagged, to sp.OutputPath.
// It blocks until ffmpeg exits.
func (f *ffmpeg) Split(ctx context.Context, sp SplitParams) error {
	if err := f.validateFile(sp.InputPath); err != nil {
		return fmt.Errorf("track splitting failed: %w", err)
	}

	command, err := f.Command(sp)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(sp.OutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Debug("Extracting audio segment",
		"input", sp.InputPath,
		"output", sp.OutputPath,
		"start", sp.Range.Start,
		"duration", sp.Range.Length,
		"command", command.String(),
	)

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(command, output, err)
	}

	return nil
}
