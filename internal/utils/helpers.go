package utils

import (
	"strings"
	"time"
)

// StrOrEmpty dereferences p, returning "" for nil.
func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StrPtr returns a pointer to the trimmed s, or nil when s is blank.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Coalesce returns primary when it is set, otherwise fallback.
func Coalesce(primary, fallback *string) *string {
	if primary != nil && *primary != "" {
		return primary
	}
	return fallback
}

// ParseDMY parses gazette dates in DD/MM/YYYY or DD.MM.YYYY form.
func ParseDMY(s string) (time.Time, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "/")
	t, err := time.ParseInLocation("02/01/2006", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Excerpt returns at most n runes of s, with an ellipsis when cut.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
