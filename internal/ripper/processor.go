// Package ripper runs the whole pipeline for one source: load its track list, make sure
// the media is downloaded, then cut every track out of it.
package ripper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/jaki95/set-ripper/config"
	"github.com/jaki95/set-ripper/internal/audio"
	"github.com/jaki95/set-ripper/internal/domain"
	"github.com/jaki95/set-ripper/internal/downloader"
	"github.com/jaki95/set-ripper/internal/progress"
	"github.com/jaki95/set-ripper/internal/storage"
	"github.com/jaki95/set-ripper/internal/tracklist"
)

var (
	ErrLocked    = errors.New("another run is in progress")
	ErrMissingID = errors.New("missing source id")
)

// TrackError ties a failure to the track that caused it.
type TrackError struct {
	Number int
	Track  domain.Track
	Err    error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("track %d (%s): %v", e.Number, e.Track.DisplayName(), e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

// Tagger adds frames ffmpeg does not write.
type Tagger interface {
	Supports(path string) bool
	Tag(path string, info audio.TagInfo) error
}

// Dependencies are the collaborators of a Processor. Importer, Tagger and Publisher are
// optional. Without an importer the track list format is picked from its extension.
type Dependencies struct {
	Storage    storage.Storage
	Importer   tracklist.Importer
	Downloader downloader.Downloader
	Audio      audio.Processor
	Tagger     Tagger
	Publisher  storage.Publisher
	Tracker    *progress.ProgressTracker
}

type Options struct {
	ID     string
	DryRun bool
}

// Result describes what a run did.
type Result struct {
	MediaPath  string
	Downloaded bool
	Ripped     []string
	Skipped    []string
	Published  []string
	// Transcoder commands that a dry run would have executed
	Planned []string
}

type Processor struct {
	cfg        *config.Config
	storage    storage.Storage
	importer   tracklist.Importer
	downloader downloader.Downloader
	audio      audio.Processor
	tagger     Tagger
	publisher  storage.Publisher
	tracker    *progress.ProgressTracker
}

func NewProcessor(cfg *config.Config, deps Dependencies) *Processor {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = progress.NewProgressTracker()
	}
	return &Processor{
		cfg:        cfg,
		storage:    deps.Storage,
		importer:   deps.Importer,
		downloader: deps.Downloader,
		audio:      deps.Audio,
		tagger:     deps.Tagger,
		publisher:  deps.Publisher,
		tracker:    tracker,
	}
}

// Run processes one source. It stops at the first error; tracks ripped before it are kept.
func (p *Processor) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if err := p.run(ctx, opts, result); err != nil {
		p.tracker.SetError(err)
		return result, err
	}

	p.tracker.UpdateProgress(progress.StageComplete, 100,
		fmt.Sprintf("Ripped %d tracks, skipped %d", len(result.Ripped), len(result.Skipped)))
	return result, nil
}

func (p *Processor) run(ctx context.Context, opts Options, result *Result) error {
	id := strings.TrimSpace(opts.ID)
	if id == "" {
		return ErrMissingID
	}

	p.tracker.UpdateProgress(progress.StageLoading, 0, fmt.Sprintf("Loading track list for %s", id))

	tracklistPath, err := p.storage.TracklistPath(id)
	if err != nil {
		return err
	}

	unlock, err := p.lock(id)
	if err != nil {
		return err
	}
	defer unlock()

	set, err := p.load(ctx, tracklistPath)
	if err != nil {
		return err
	}
	slog.Info("Loaded track list", "path", tracklistPath, "tracks", len(set.Tracks))

	mediaPath, err := p.acquire(ctx, id, opts.DryRun, result)
	if err != nil {
		return err
	}
	result.MediaPath = mediaPath

	return p.extract(ctx, id, set, mediaPath, opts.DryRun, result)
}

func (p *Processor) lock(id string) (func(), error) {
	lockPath := filepath.Join(p.cfg.Paths.DataDir, fmt.Sprintf(".%s.lock", id))
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w for %s (lock %s)", ErrLocked, id, lockPath)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release lock", "lock", lockPath, "error", err)
		}
	}, nil
}

func (p *Processor) load(ctx context.Context, tracklistPath string) (*domain.Tracklist, error) {
	if p.importer != nil {
		return p.importer.Import(ctx, tracklistPath)
	}
	return tracklist.Load(ctx, tracklistPath)
}

// acquire returns the local media of the source, downloading it when missing.
func (p *Processor) acquire(ctx context.Context, id string, dryRun bool, result *Result) (string, error) {
	if mediaPath, found, err := p.storage.FindDownload(id); err != nil {
		return "", err
	} else if found {
		slog.Info("Media already downloaded, skipping download", "path", mediaPath)
		return mediaPath, nil
	}

	template := p.storage.DownloadTemplate(id)
	url := p.cfg.SourceURL(id)

	if dryRun {
		mediaPath := strings.ReplaceAll(template, "%(ext)s", p.cfg.Downloader.AudioFormat)
		slog.Info("Dry run, would download", "url", url, "downloader", p.downloader.Name(), "output", mediaPath)
		return mediaPath, nil
	}

	if err := p.storage.MkdirFor(template); err != nil {
		return "", err
	}

	p.tracker.UpdateProgress(progress.StageDownloading, 0, fmt.Sprintf("Downloading %s", url))
	err := p.downloader.Download(ctx, url, template, func(percent float64, line string) {
		p.tracker.UpdateProgress(progress.StageDownloading, percent, line)
	})
	if err != nil {
		return "", err
	}
	result.Downloaded = true

	mediaPath, found, err := p.storage.FindDownload(id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s finished but nothing matches %s", storage.ErrMediaNotFound, p.downloader.Name(), template)
	}

	return mediaPath, nil
}

func (p *Processor) extract(ctx context.Context, id string, set *domain.Tracklist, mediaPath string, dryRun bool, result *Result) error {
	total := len(set.Tracks)

	for i, track := range set.Tracks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		number := i + 1

		trackRange, err := audio.TrackRange(*track)
		if err != nil {
			return &TrackError{Number: number, Track: *track, Err: err}
		}

		outputPath := p.storage.TrackPath(*track, p.cfg.FileExtension)

		if p.storage.FileExists(outputPath) {
			p.tracker.Warn(fmt.Sprintf("%s already exists", outputPath))
			result.Skipped = append(result.Skipped, outputPath)
			continue
		}

		sp := audio.SplitParams{
			InputPath:  mediaPath,
			OutputPath: outputPath,
			Track:      *track,
			Range:      trackRange,
		}

		if dryRun {
			command, err := p.audio.Command(sp)
			if err != nil {
				return &TrackError{Number: number, Track: *track, Err: err}
			}
			slog.Info("Dry run, would rip", "track", number, "command", command.String())
			result.Planned = append(result.Planned, command.String())
			continue
		}

		p.tracker.UpdateTrackProgress(number, total, len(result.Ripped), track.DisplayName())

		if err := p.storage.MkdirFor(outputPath); err != nil {
			return &TrackError{Number: number, Track: *track, Err: err}
		}
		if err := p.audio.Split(ctx, sp); err != nil {
			return &TrackError{Number: number, Track: *track, Err: err}
		}
		result.Ripped = append(result.Ripped, outputPath)

		if err := p.tag(id, number, total, outputPath); err != nil {
			return &TrackError{Number: number, Track: *track, Err: err}
		}

		if err := p.publish(ctx, id, outputPath, result); err != nil {
			return &TrackError{Number: number, Track: *track, Err: err}
		}
	}

	return nil
}

func (p *Processor) tag(id string, number, total int, outputPath string) error {
	if p.tagger == nil || !p.tagger.Supports(outputPath) {
		return nil
	}

	album := p.cfg.Tagging.Album
	if album == "" {
		album = id
	}

	return p.tagger.Tag(outputPath, audio.TagInfo{
		Album:       album,
		TrackNumber: number,
		TrackCount:  total,
		Comment:     p.cfg.SourceURL(id),
	})
}

func (p *Processor) publish(ctx context.Context, id, outputPath string, result *Result) error {
	if p.publisher == nil {
		return nil
	}

	objectName := path.Join(id, filepath.Base(outputPath))
	if p.publisher.Exists(ctx, objectName) {
		slog.Info("Already published", "object", objectName)
		return nil
	}

	location, err := p.publisher.Publish(ctx, outputPath, objectName)
	if err != nil {
		return err
	}
	slog.Info("Published track", "location", location)
	result.Published = append(result.Published, location)
	return nil
}
