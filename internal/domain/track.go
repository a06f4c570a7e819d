package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidRange = errors.New("invalid duration")

// Track represents one song within a source recording.
type Track struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// DisplayName is the "Artist - Title" form used in messages and file names.
func (t Track) DisplayName() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Tracklist is the ordered song list of one source.
type Tracklist struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Tracks []*Track `json:"tracks"`
}

// Range is a track's position inside the source, in whole seconds.
type Range struct {
	Start  int
	Length int
}

func (r Range) End() int {
	return r.Start + r.Length
}
