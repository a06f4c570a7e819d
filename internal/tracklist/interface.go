package tracklist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaki95/set-ripper/internal/domain"
)

var (
	ErrEmptyTracklist    = errors.New("no tracks found")
	ErrInvalidRecord     = errors.New("invalid track record")
	ErrUnsupportedFormat = errors.New("unsupported tracklist format")
)

// Importer imports a tracklist from a given source.
type Importer interface {
	Import(ctx context.Context, source string) (*domain.Tracklist, error)
	Name() string
}

const (
	JSONTracklist = "json"
	CSVTracklist  = "csv"
	WebTracklist  = "web"
)

// ForPath picks the importer for a track list file by its extension.
func ForPath(path string) (Importer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONImporter(), nil
	case ".csv":
		return NewCSVImporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads a track list file with the importer matching its extension.
func Load(ctx context.Context, path string) (*domain.Tracklist, error) {
	importer, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, path)
}

// sourceID is the file name without its extension.
func sourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
