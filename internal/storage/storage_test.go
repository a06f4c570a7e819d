package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaki95/set-ripper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*LocalFileStorage, string) {
	t.Helper()
	root := t.TempDir()
	return NewLocalFileStorage(
		filepath.Join(root, "data"),
		filepath.Join(root, "downloads"),
		filepath.Join(root, "rips"),
	), root
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestTracklistPath(t *testing.T) {
	s, root := newTestStorage(t)

	_, err := s.TracklistPath("abc123")
	require.ErrorIs(t, err, ErrTracklistNotFound)
	assert.Contains(t, err.Error(), "Song data for abc123 not found")

	csvPath := filepath.Join(root, "data", "abc123.csv")
	touch(t, csvPath)
	path, err := s.TracklistPath("abc123")
	require.NoError(t, err)
	assert.Equal(t, csvPath, path)

	jsonPath := filepath.Join(root, "data", "abc123.json")
	touch(t, jsonPath)
	path, err = s.TracklistPath("abc123")
	require.NoError(t, err)
	assert.Equal(t, jsonPath, path, "json wins over csv")
}

func TestFindDownload(t *testing.T) {
	s, root := newTestStorage(t)
	downloads := filepath.Join(root, "downloads")

	// Missing directory is simply "not downloaded yet"
	_, found, err := s.FindDownload("abc123")
	require.NoError(t, err)
	assert.False(t, found)

	touch(t, filepath.Join(downloads, "abc123.webm.part"))
	touch(t, filepath.Join(downloads, "abc1234.mp3"))
	touch(t, filepath.Join(downloads, "xabc123.mp3"))
	require.NoError(t, os.MkdirAll(filepath.Join(downloads, "abc123.dir"), 0755))

	_, found, err = s.FindDownload("abc123")
	require.NoError(t, err)
	assert.False(t, found, "partial downloads, other ids and directories do not count")

	touch(t, filepath.Join(downloads, "abc123.opus"))
	touch(t, filepath.Join(downloads, "abc123.mp3"))

	path, found, err := s.FindDownload("abc123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, filepath.Join(downloads, "abc123.mp3"), path)
}

func TestDownloadTemplate(t *testing.T) {
	s, root := newTestStorage(t)

	template := s.DownloadTemplate("abc123")
	assert.Equal(t, filepath.Join(root, "downloads", "abc123.%(ext)s"), template)
	assert.NoDirExists(t, filepath.Join(root, "downloads"))

	require.NoError(t, s.MkdirFor(template))
	assert.DirExists(t, filepath.Join(root, "downloads"))
}

func TestTrackPath(t *testing.T) {
	s, root := newTestStorage(t)

	path := s.TrackPath(domain.Track{Artist: "DJ X", Title: "Intro"}, "mp3")
	assert.Equal(t, filepath.Join(root, "rips", "DJ X - Intro.mp3"), path)
	assert.NoDirExists(t, filepath.Join(root, "rips"))

	path = s.TrackPath(domain.Track{Artist: "AC/DC", Title: "Back In Black"}, "mp3")
	assert.Equal(t, filepath.Join(root, "rips"), filepath.Dir(path), "never a nested path")
	assert.Equal(t, "ACDC - Back In Black.mp3", filepath.Base(path))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "DJ X - Intro.mp3", expected: "DJ X - Intro.mp3"},
		{name: "slash", input: "AC/DC - T.N.T..mp3", expected: "ACDC - T.N.T..mp3"},
		{name: "backslash and colon", input: `A\B: C.mp3`, expected: "AB C.mp3"},
		{name: "reserved punctuation", input: `Who? <What> "Why" *|.mp3`, expected: "Who What Why .mp3"},
		{name: "control characters", input: "Tab\there\n.mp3", expected: "Tabhere.mp3"},
		{name: "traversal", input: "../../etc/passwd", expected: "....etcpasswd"},
		{name: "only dots", input: "..", expected: "_"},
		{name: "windows reserved", input: "CON.mp3", expected: "_"},
		{name: "trailing dots and spaces", input: "name. . ", expected: "name"},
		{name: "unicode kept", input: "Sigur Rós - Hoppípolla.mp3", expected: "Sigur Rós - Hoppípolla.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "/")
			assert.NotContains(t, got, `\`)
		})
	}
}

func TestSanitizeFileNameTruncates(t *testing.T) {
	long := strings.Repeat("é", 200) + ".mp3"

	got := SanitizeFileName(long)
	assert.LessOrEqual(t, len(got), maxFileNameBytes)
	assert.True(t, strings.HasSuffix(got, ".mp3"))
	assert.True(t, strings.HasPrefix(got, "éé"))
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "abc123/DJ X - Intro.mp3", objectName("", "abc123", "DJ X - Intro.mp3"))
	assert.Equal(t, "rips/abc123/a.mp3", objectName("/rips/", "abc123", "a.mp3"))
	assert.Equal(t, "rips", objectName("rips"))
}
