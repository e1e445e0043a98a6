package model

import "sort"

// DetailsKind discriminates the plaque layout variants found in the dataset.
type DetailsKind int

const (
	// Monolingual plaques carry one or more independent physical plaques,
	// each with its own photo(s) and, sometimes, its own unveiling date.
	Monolingual DetailsKind = iota
	// Multilingual plaques are a single physical plaque with one shared
	// photo and text in several languages.
	Multilingual
)

// OrderedLanguages is the display order for plaque languages.
var OrderedLanguages = []string{"en", "tl", "ceb", "ilo", "pam", "es", "de", "fr"}

// LanguageName maps a plaque language code to its English name.
var LanguageName = map[string]string{
	"en":  "English",
	"tl":  "Tagalog",
	"ceb": "Cebuano",
	"ilo": "Ilocano",
	"pam": "Pampangan",
	"es":  "Spanish",
	"de":  "German",
	"fr":  "French",
}

// Photo is a Wikimedia Commons photo reference with its credit line.
type Photo struct {
	File   string
	Credit string
	Width  int
	Height int
}

// LocalizedEntry is the per-language content of a plaque. Photos and Date
// are only populated for monolingual details; multilingual plaques share a
// single photo at the Details level.
type LocalizedEntry struct {
	Title       string
	Subtitle    string
	Inscription string
	Photos      []Photo
	Date        string
}

// Details is the tagged union of the two plaque layouts, resolved once at
// load time so nothing downstream has to branch on raw field presence.
// Invariant: Entries has at least one language.
type Details struct {
	Kind    DetailsKind
	Photo   *Photo // shared photo, Multilingual only
	Entries map[string]LocalizedEntry
}

// Languages returns the record's language codes in display order, followed
// by any codes not in the canonical list (dataset additions) sorted.
func (d Details) Languages() []string {
	codes := make([]string, 0, len(d.Entries))
	seen := make(map[string]bool, len(d.Entries))
	for _, code := range OrderedLanguages {
		if _, ok := d.Entries[code]; ok {
			codes = append(codes, code)
			seen[code] = true
		}
	}
	var extras []string
	for code := range d.Entries {
		if !seen[code] {
			extras = append(extras, code)
		}
	}
	sort.Strings(extras)
	return append(codes, extras...)
}
