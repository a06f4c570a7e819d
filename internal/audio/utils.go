package audio

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaki95/set-ripper/internal/domain"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

var digitRuns = regexp.MustCompile(`[0-9]+`)

// ParseSeconds converts a timestamp like "1:23:45", "45:23" or "1h2m3s" to whole seconds.
// Only the digit groups matter: the last one is seconds, then minutes, then hours.
func ParseSeconds(timestamp string) (int, error) {
	normalized, err := normalizeTimestamp(timestamp)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(normalized, ":")
	units := []struct {
		name    string
		seconds int
	}{{"hours", 3600}, {"minutes", 60}, {"seconds", 1}}

	total := 0
	for i, unit := range units {
		value, err := strconv.Atoi(parts[i])
		if err != nil || value > (math.MaxInt-total)/unit.seconds {
			return 0, fmt.Errorf("%w: %s out of range in '%s'", ErrInvalidTimestamp, unit.name, timestamp)
		}
		total += value * unit.seconds
	}

	return total, nil
}

// normalizeTimestamp rewrites the digit groups of a timestamp as HH:MM:SS.
func normalizeTimestamp(timestamp string) (string, error) {
	runs := digitRuns.FindAllString(timestamp, -1)
	if len(runs) < 1 || len(runs) > 3 {
		return "", fmt.Errorf("%w: Unknown time format '%s'", ErrInvalidTimestamp, timestamp)
	}

	// Missing groups are zero
	for len(runs) < 3 {
		runs = append([]string{"00"}, runs...)
	}

	for i, run := range runs {
		runs[i] = pad(run, 2)
	}

	return strings.Join(runs, ":"), nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// FormatSeconds renders whole seconds as H:MM:SS.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// TrackRange computes where a track starts and how long it runs.
func TrackRange(track domain.Track) (domain.Range, error) {
	start, err := ParseSeconds(track.Start)
	if err != nil {
		return domain.Range{}, fmt.Errorf("error parsing start time for %s: %w", track.DisplayName(), err)
	}

	end, err := ParseSeconds(track.End)
	if err != nil {
		return domain.Range{}, fmt.Errorf("error parsing end time for %s: %w", track.DisplayName(), err)
	}

	length := end - start
	if length <= 0 {
		return domain.Range{}, fmt.Errorf("%w for %s", domain.ErrInvalidRange, track.DisplayName())
	}

	return domain.Range{Start: start, Length: length}, nil
}
