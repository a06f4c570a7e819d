package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
)

// TagInfo holds the frames added on top of what ffmpeg writes.
type TagInfo struct {
	Album       string
	TrackNumber int
	TrackCount  int
	Comment     string
}

// Tagger writes track number and album frames to a ripped MP3.
type Tagger struct{}

func NewTagger() *Tagger {
	return &Tagger{}
}

// Supports reports whether the file can carry ID3v2 tags.
func (t *Tagger) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".mp3")
}

// Tag opens the file's existing tag, keeps the artist and title frames ffmpeg wrote and
// adds the album and track number.
func (t *Tagger) Tag(path string, info TagInfo) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open tags of %s: %w", path, err)
	}
	defer tag.Close()

	if info.Album != "" {
		tag.SetAlbum(info.Album)
	}

	if info.TrackNumber > 0 {
		trck := fmt.Sprintf("%d", info.TrackNumber)
		if info.TrackCount > 0 {
			trck = fmt.Sprintf("%d/%d", info.TrackNumber, info.TrackCount)
		}
		tag.DeleteFrames("TRCK")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, trck)
	}

	if info.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "source",
			Text:        info.Comment,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags of %s: %w", path, err)
	}
	return nil
}
