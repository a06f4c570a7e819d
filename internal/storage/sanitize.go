package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxFileNameBytes = 255

var (
	illegalChars    = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x{80}-\x{9f}]`)
	onlyDots        = regexp.MustCompile(`^\.+$`)
	windowsReserved = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	trailingDots    = regexp.MustCompile(`[. ]+$`)
)

// SanitizeFileName strips characters that are illegal in file names on common
// filesystems, so the result is always a single path element.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = onlyDots.ReplaceAllString(name, "")
	name = windowsReserved.ReplaceAllString(name, "")
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if len(name) > maxFileNameBytes {
		ext := filepath.Ext(name)
		if len(ext) >= maxFileNameBytes {
			ext = ""
		}
		name = truncateBytes(strings.TrimSuffix(name, ext), maxFileNameBytes-len(ext)) + ext
	}

	if name == "" {
		return "_"
	}
	return name
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
