package tracklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/jaki95/set-ripper/internal/domain"
)

const (
	unknownArtist  = "Unknown Artist"
	requestTimeout = 30 * time.Second
)

var ErrMissingEnd = errors.New("end of the last track is unknown")

// WebImporter scrapes a tracklist page using 1001tracklists markup. Every track ends
// where the next one starts, the last one ends at finalEnd.
type WebImporter struct {
	finalEnd   string
	userAgents []string
	timeout    time.Duration
}

func NewWebImporter(finalEnd string) *WebImporter {
	return &WebImporter{
		finalEnd: strings.TrimSpace(finalEnd),
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		timeout: requestTimeout,
	}
}

func (w *WebImporter) Name() string {
	return WebTracklist
}

func (w *WebImporter) Import(ctx context.Context, url string) (*domain.Tracklist, error) {
	if w.finalEnd == "" {
		return nil, ErrMissingEnd
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tracklist, err := w.scrapeWithColly(url)
	if err != nil {
		return nil, fmt.Errorf("scraping failed: %w", err)
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrEmptyTracklist, url)
	}

	// Chain the cues: a track ends where the next one starts
	for i := 0; i < len(tracklist.Tracks)-1; i++ {
		tracklist.Tracks[i].End = tracklist.Tracks[i+1].Start
	}
	tracklist.Tracks[len(tracklist.Tracks)-1].End = w.finalEnd

	return tracklist, nil
}

func (w *WebImporter) scrapeWithColly(url string) (*domain.Tracklist, error) {
	var tracklist domain.Tracklist
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.UserAgent(w.userAgents[rand.Intn(len(w.userAgents))]),
	)

	c.SetRequestTimeout(w.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.OnHTML("div.tlpTog", func(e *colly.HTMLElement) {
		startTime := strings.TrimSpace(e.ChildText("div.cue"))
		trackValue := strings.TrimSpace(e.ChildText("span.trackValue"))

		if startTime == "" {
			if len(tracklist.Tracks) > 0 {
				slog.Warn("Skipping track without cue", "track", trackValue)
				return
			}
			startTime = "0:00"
		}

		artist, title := parseTrackValue(trackValue)
		tracklist.Tracks = append(tracklist.Tracks, &domain.Track{
			Artist: artist,
			Title:  title,
			Start:  startTime,
		})
	})

	c.OnHTML("div#pageTitle h1", func(e *colly.HTMLElement) {
		var artists []string
		e.DOM.Find("a[href*='/dj/']").Each(func(_ int, s *goquery.Selection) {
			artists = append(artists, strings.TrimSpace(s.Text()))
		})

		tracklist.Name = strings.TrimSpace(e.Text)
		slog.Info("Found tracklist", "name", tracklist.Name, "artists", artists)
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("request to %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}
	c.Wait()

	if scrapeErr != nil {
		return nil, scrapeErr
	}

	return &tracklist, nil
}

// parseTrackValue splits "Artist - Title".
func parseTrackValue(trackValue string) (artist, title string) {
	parts := strings.SplitN(trackValue, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return unknownArtist, strings.TrimSpace(trackValue)
}
