package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`log_level: 8
paths:
  data_dir: %s
  downloads_dir: %s
  output_dir: %s
%s`, filepath.Join(base, "data"), filepath.Join(base, "downloads"), filepath.Join(base, "rips"), extra)

	path := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootRequiresID(t *testing.T) {
	_, err := execute(t)
	require.ErrorIs(t, err, errUsage)
	assert.Equal(t, "Usage: ripper --id=[video id]", err.Error())
}

func TestRootDryRun(t *testing.T) {
	configPath, base := writeConfig(t, "")
	dataDir := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "abc123.json"),
		[]byte(`[{"start": "0:00", "end": "1:30", "title": "Intro", "artist": "DJ X"}]`), 0644))

	out, err := execute(t, "--config", configPath, "-v", "abc123", "--dry-run")
	require.NoError(t, err)

	var commandLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "ffmpeg ") {
			commandLine = line
		}
	}
	require.NotEmpty(t, commandLine, out)

	argv, err := shellquote.Split(commandLine)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ffmpeg",
		"-i", filepath.Join(base, "downloads", "abc123.mp3"),
		"-ss", "0",
		"-t", "90",
		"-metadata", "artist=DJ X",
		"-metadata", "title=Intro",
		"-id3v2_version", "3",
		filepath.Join(base, "rips", "DJ X - Intro.mp3"),
	}, argv)
	assert.NoDirExists(t, filepath.Join(base, "rips"))
	assert.NoDirExists(t, filepath.Join(base, "downloads"))
}

func TestRootMissingTracklist(t *testing.T) {
	configPath, _ := writeConfig(t, "")

	_, err := execute(t, "--config", configPath, "--id", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Song data for nope not found")
}

func TestCheckCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	fake := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\nexit 0\n"), 0755))

	configPath, _ := writeConfig(t, fmt.Sprintf(`downloader:
  command: %s
transcoder:
  command: clearly-missing-ffmpeg
`, fake))

	out, err := execute(t, "--config", configPath, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clearly-missing-ffmpeg")
	assert.Contains(t, out, "Downloader")
	assert.Contains(t, out, "fetches source media")
	assert.Contains(t, out, "cuts and encodes tracks")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "missing")
}

func TestImportCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<div id="pageTitle"><h1>Live Set</h1></div>
<div class="tlpTog"><div class="cue"></div><span class="trackValue">DJ X - Intro</span></div>
<div class="tlpTog"><div class="cue">1:30</div><span class="trackValue">Bicep - Glue</span></div>
</body></html>`)
	}))
	defer server.Close()

	configPath, base := writeConfig(t, "")
	args := []string{"--config", configPath, "import", "--id", "abc123", "--url", server.URL, "--end", "6:00"}

	out, err := execute(t, args...)
	require.NoError(t, err)

	path := filepath.Join(base, "data", "abc123.json")
	assert.Contains(t, out, "Saved 2 tracks to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"end": "6:00"`)

	_, err = execute(t, args...)
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = execute(t, append(args, "--force")...)
	assert.NoError(t, err)
}
