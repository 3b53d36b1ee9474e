package site

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// OfficeDirectory maps registry office names, as printed by the name
// search, to the office identifiers the gazette search expects.
type OfficeDirectory struct {
	ids map[string]string
}

// officeSuffixes are label words the name search sometimes appends.
var officeSuffixes = []string{"ticaret sicil mudurlugu", "ticaret sicili mudurlugu"}

// NewOfficeDirectory builds a directory from name -> id pairs.
func NewOfficeDirectory(entries map[string]string) *OfficeDirectory {
	d := &OfficeDirectory{ids: make(map[string]string, len(entries))}
	for name, id := range entries {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		d.ids[foldOffice(name)] = id
	}
	return d
}

// LoadOfficeDirectory reads a YAML mapping of office name to id.
// A missing file yields an empty directory.
func LoadOfficeDirectory(path string) (*OfficeDirectory, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewOfficeDirectory(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("offices: read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("offices: parse %s: %w", path, err)
	}
	entries := make(map[string]string, len(doc))
	for name, v := range doc {
		if v == nil {
			continue
		}
		entries[name] = fmt.Sprint(v)
	}
	return NewOfficeDirectory(entries), nil
}

// Len is the number of known offices.
func (d *OfficeDirectory) Len() int { return len(d.ids) }

// Resolve looks up an office id, ignoring case, Turkish diacritics and a
// trailing "Ticaret Sicil Müdürlüğü" label.
func (d *OfficeDirectory) Resolve(name string) (string, bool) {
	key := foldOffice(name)
	if key == "" {
		return "", false
	}
	if id, ok := d.ids[key]; ok {
		return id, true
	}
	for _, suf := range officeSuffixes {
		if trimmed := strings.TrimSpace(strings.TrimSuffix(key, suf)); trimmed != key && trimmed != "" {
			if id, ok := d.ids[trimmed]; ok {
				return id, true
			}
		}
	}
	return "", false
}

// foldOffice reduces a name to lowercase ASCII-ish form: "İSTANBUL",
// "Istanbul" and "istanbul" all fold to "istanbul".
func foldOffice(s string) string {
	s = strings.NewReplacer("ı", "i", "İ", "I").Replace(s)
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
