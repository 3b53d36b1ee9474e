package main

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// readNames returns one trade name per non-blank line. Lines starting with
// '#' are comments; repeated names are kept once, first occurrence wins.
func readNames(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = norm.NFC.String(line)
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out, sc.Err()
}
