package tracklist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaki95/set-ripper/internal/domain"
)

// JSONImporter reads an array of {start, end, title, artist} records.
type JSONImporter struct{}

func NewJSONImporter() *JSONImporter {
	return &JSONImporter{}
}

func (j *JSONImporter) Name() string {
	return JSONTracklist
}

func (j *JSONImporter) Import(ctx context.Context, filePath string) (*domain.Tracklist, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracklist: %w", err)
	}

	var tracks []*domain.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	for i, track := range tracks {
		if track == nil {
			return nil, fmt.Errorf("%w: entry %d of %s is null", ErrInvalidRecord, i+1, filePath)
		}
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyTracklist, filePath)
	}

	return &domain.Tracklist{ID: sourceID(filePath), Tracks: tracks}, nil
}

// Save writes the tracks as a JSON array. An existing file is only replaced when overwrite is set.
func Save(path string, tracklist *domain.Tracklist, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		}
	}

	data, err := json.MarshalIndent(tracklist.Tracks, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode tracklist: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
