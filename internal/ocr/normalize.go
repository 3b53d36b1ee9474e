package ocr

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize tidies image OCR output without touching its characters:
// runs of spaces/tabs collapsed on top of NormalizeLayout.
func Normalize(s string) string {
	return NormalizeLayout(reSpaces.ReplaceAllString(s, " "))
}

// NormalizeLayout keeps intra-line spacing from text-layer extraction:
// CRLF and form feeds to LF, trailing spaces trimmed, three or more
// newlines folded to one blank line, leading and trailing blank lines dropped.
func NormalizeLayout(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}

// longEnough reports whether s carries at least n characters of content.
func longEnough(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}
