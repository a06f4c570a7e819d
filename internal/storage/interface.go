package storage

import (
	"context"
	"errors"

	"github.com/jaki95/set-ripper/internal/domain"
)

var (
	ErrTracklistNotFound = errors.New("tracklist not found")
	ErrMediaNotFound     = errors.New("media not found")
)

// Storage defines the interface for locating track lists, downloaded sources
// and ripped tracks.
type Storage interface {
	// TracklistPath returns the track list file of a source.
	TracklistPath(id string) (string, error)

	// FindDownload returns the downloaded media of a source, if any.
	FindDownload(id string) (string, bool, error)

	// DownloadTemplate returns the downloader output template for a source.
	DownloadTemplate(id string) string

	// TrackPath returns the output file of a track.
	TrackPath(track domain.Track, ext string) string

	// MkdirFor creates the parent directory of path. Path lookups never touch the disk.
	MkdirFor(path string) error

	FileExists(path string) bool

	ListFiles(dir string, prefix string) ([]string, error)
}

// Publisher copies ripped tracks to remote storage.
type Publisher interface {
	Publish(ctx context.Context, localPath, objectName string) (string, error)

	// Exists reports whether objectName was already published.
	Exists(ctx context.Context, objectName string) bool

	Close() error
}
