package tracklist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jaki95/set-ripper/internal/domain"
)

const csvFields = 4

// CSVImporter reads "start,end,artist,title" rows. A leading header row is skipped.
type CSVImporter struct {
}

func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

func (c *CSVImporter) Name() string {
	return CSVTracklist
}

func (c *CSVImporter) Import(ctx context.Context, filePath string) (*domain.Tracklist, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	tracks, err := c.parseTracks(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in CSV file %s", ErrEmptyTracklist, filePath)
	}

	return &domain.Tracklist{ID: sourceID(filePath), Tracks: tracks}, nil
}

func (c *CSVImporter) parseTracks(reader *csv.Reader) ([]*domain.Track, error) {
	var tracks []*domain.Track

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if row == 1 && isHeader(record) {
			slog.Debug("Header row", "header", record)
			continue
		}

		if len(record) < csvFields {
			return nil, fmt.Errorf("%w: row %d: expected %d fields, got %d", ErrInvalidRecord, row, csvFields, len(record))
		}

		tracks = append(tracks, &domain.Track{
			Start:  strings.TrimSpace(record[0]),
			End:    strings.TrimSpace(record[1]),
			Artist: strings.TrimSpace(record[2]),
			Title:  strings.TrimSpace(record[3]),
		})
	}

	return tracks, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "start")
}
