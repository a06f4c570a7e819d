package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaki95/set-ripper/internal/domain"
)

// Leftovers of an interrupted download, never a usable source.
var partialSuffixes = []string{".part", ".ytdl", ".temp"}

// LocalFileStorage implements the Storage interface for local filesystem
type LocalFileStorage struct {
	dataDir      string
	downloadsDir string
	outputDir    string
}

// NewLocalFileStorage creates a new local file storage instance.
// Directories are created lazily, when something is written to them.
func NewLocalFileStorage(dataDir, downloadsDir, outputDir string) *LocalFileStorage {
	return &LocalFileStorage{
		dataDir:      dataDir,
		downloadsDir: downloadsDir,
		outputDir:    outputDir,
	}
}

// TracklistPath returns <data>/<id>.json, or <data>/<id>.csv when only that exists.
func (s *LocalFileStorage) TracklistPath(id string) (string, error) {
	for _, ext := range []string{".json", ".csv"} {
		path := filepath.Join(s.dataDir, id+ext)
		if s.FileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: Song data for %s not found", ErrTracklistNotFound, id)
}

// FindDownload looks for <downloads>/<id>.<any extension>.
func (s *LocalFileStorage) FindDownload(id string) (string, bool, error) {
	files, err := s.ListFiles(s.downloadsDir, id+".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	var candidates []string
	for _, file := range files {
		if isPartial(file) {
			continue
		}
		candidates = append(candidates, file)
	}

	if len(candidates) == 0 {
		return "", false, nil
	}

	sort.Strings(candidates)
	return candidates[0], true, nil
}

func isPartial(path string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// DownloadTemplate returns the yt-dlp output template <downloads>/<id>.%(ext)s
func (s *LocalFileStorage) DownloadTemplate(id string) string {
	return filepath.Join(s.downloadsDir, id+".%(ext)s")
}

// TrackPath returns <output>/<artist> - <title>.<ext>, sanitized to a single file name.
func (s *LocalFileStorage) TrackPath(track domain.Track, ext string) string {
	name := SanitizeFileName(fmt.Sprintf("%s.%s", track.DisplayName(), ext))
	return filepath.Join(s.outputDir, name)
}

// MkdirFor creates the directory that will hold path.
func (s *LocalFileStorage) MkdirFor(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists
func (s *LocalFileStorage) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListFiles lists regular files in a directory whose names start with prefix
func (s *LocalFileStorage) ListFiles(dir string, prefix string) ([]string, error) {
	// If dir is empty, use the data directory
	if dir == "" {
		dir = s.dataDir
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		if prefix != "" && !strings.HasPrefix(file.Name(), prefix) {
			continue
		}

		results = append(results, filepath.Join(dir, file.Name()))
	}

	return results, nil
}
