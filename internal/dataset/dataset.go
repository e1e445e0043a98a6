// Package dataset loads the immutable marker dataset from its JSON file and
// resolves each entry into the normalized in-memory record shape. The file
// is an array; array order is the catalog's stable iteration order.
//
// The details payload comes in two historical layouts and is resolved into
// the model.Details tagged union exactly once here, so nothing downstream
// branches on raw field presence: a "text" key at the top level marks a
// multilingual plaque (one shared photo, per-language text), anything else
// is a map of language code to a self-contained monolingual plaque.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pamana/markers/internal/geo"
	"github.com/pamana/markers/internal/model"
)

type rawPhoto struct {
	File   string `json:"file"`
	Credit string `json:"credit"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (p *rawPhoto) toModel() *model.Photo {
	if p == nil {
		return nil
	}
	return &model.Photo{File: p.File, Credit: p.Credit, Width: p.Width, Height: p.Height}
}

type rawText struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Inscription string `json:"inscription"`
}

// rawMonoEntry is one language of a monolingual plaque. The photo field
// holds either a single photo or an array (one marker is a triptych).
type rawMonoEntry struct {
	Photo json.RawMessage `json:"photo"`
	Text  rawText         `json:"text"`
	Date  string          `json:"date"`
}

type rawRecord struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	MacroAddress string                     `json:"macroAddress"`
	Address      string                     `json:"address"`
	Region       json.RawMessage            `json:"region"`
	Lat          float64                    `json:"lat"`
	Lon          float64                    `json:"lon"`
	Date         json.RawMessage            `json:"date"`
	Details      json.RawMessage            `json:"details"`
	Wikipedia    map[string]json.RawMessage `json:"wikipedia"`
	Commons      string                     `json:"commons"`
	LocDesc      string                     `json:"locDesc"`
	LocPhoto     *rawPhoto                  `json:"locPhoto"`
}

// Load reads and normalizes the dataset file. crs is "4326" (positions in
// WGS84 degrees) or "3857" (web mercator meters, converted on load).
func Load(path, crs string) ([]*model.MarkerRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset file: %w", err)
	}
	return Parse(raw, crs)
}

// Parse decodes a dataset document.
func Parse(raw []byte, crs string) ([]*model.MarkerRecord, error) {
	var rawRecords []rawRecord
	if err := json.Unmarshal(raw, &rawRecords); err != nil {
		return nil, fmt.Errorf("error decoding dataset: %w", err)
	}

	records := make([]*model.MarkerRecord, 0, len(rawRecords))
	seen := make(map[string]bool, len(rawRecords))
	for i := range rawRecords {
		rec, err := normalize(&rawRecords[i], crs)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", rawRecords[i].ID, err)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("duplicate record id %q", rec.ID)
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records, nil
}

func normalize(raw *rawRecord, crs string) (*model.MarkerRecord, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("missing id")
	}

	rec := &model.MarkerRecord{
		ID:           raw.ID,
		Name:         raw.Name,
		MacroAddress: raw.MacroAddress,
		Address:      raw.Address,
		Lat:          raw.Lat,
		Lon:          raw.Lon,
		Commons:      raw.Commons,
		LocDesc:      raw.LocDesc,
		LocPhoto:     raw.LocPhoto.toModel(),
	}

	if crs == "3857" {
		rec.Lat, rec.Lon = geo.FromWebMercator(raw.Lon, raw.Lat)
	}

	regions, err := parseRegions(raw.Region)
	if err != nil {
		return nil, err
	}
	rec.Regions = regions

	if err := parseDate(raw.Date, rec); err != nil {
		return nil, err
	}

	details, err := parseDetails(raw.Details)
	if err != nil {
		return nil, err
	}
	rec.Details = details
	rec.FlatSearchText = flattenText(details)

	if len(raw.Wikipedia) > 0 {
		rec.Wikipedia = make(map[string]string, len(raw.Wikipedia))
		for title, v := range raw.Wikipedia {
			var path string
			if err := json.Unmarshal(v, &path); err != nil {
				// true means the article title is the URL path
				rec.Wikipedia[title] = title
				continue
			}
			rec.Wikipedia[title] = path
		}
	}

	return rec, nil
}

func parseRegions(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("region is neither a string nor an array: %w", err)
	}
	return many, nil
}

// parseDate handles the three date encodings: absent, a literal true
// meaning "each language entry carries its own date", or a string with a
// bare year or a full date.
func parseDate(raw json.RawMessage, rec *model.MarkerRecord) error {
	if len(raw) == 0 {
		return nil
	}
	var perLanguage bool
	if err := json.Unmarshal(raw, &perLanguage); err == nil {
		rec.PerLanguageDate = perLanguage
		return nil
	}
	if err := json.Unmarshal(raw, &rec.Date); err != nil {
		return fmt.Errorf("unrecognized date encoding: %w", err)
	}
	return nil
}

func parseDetails(raw json.RawMessage) (model.Details, error) {
	if len(raw) == 0 {
		return model.Details{}, fmt.Errorf("missing details")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return model.Details{}, fmt.Errorf("error decoding details: %w", err)
	}

	if textRaw, ok := probe["text"]; ok {
		return parseMultilingual(probe, textRaw)
	}
	return parseMonolingual(probe)
}

func parseMultilingual(probe map[string]json.RawMessage, textRaw json.RawMessage) (model.Details, error) {
	details := model.Details{Kind: model.Multilingual}

	if photoRaw, ok := probe["photo"]; ok {
		var photo rawPhoto
		if err := json.Unmarshal(photoRaw, &photo); err != nil {
			return details, fmt.Errorf("error decoding shared photo: %w", err)
		}
		details.Photo = (&photo).toModel()
	}

	var texts map[string]rawText
	if err := json.Unmarshal(textRaw, &texts); err != nil {
		return details, fmt.Errorf("error decoding plaque text: %w", err)
	}
	if len(texts) == 0 {
		return details, fmt.Errorf("details has no language entries")
	}

	details.Entries = make(map[string]model.LocalizedEntry, len(texts))
	for code, text := range texts {
		details.Entries[code] = model.LocalizedEntry{
			Title:       text.Title,
			Subtitle:    text.Subtitle,
			Inscription: text.Inscription,
		}
	}
	return details, nil
}

func parseMonolingual(probe map[string]json.RawMessage) (model.Details, error) {
	details := model.Details{Kind: model.Monolingual}
	if len(probe) == 0 {
		return details, fmt.Errorf("details has no language entries")
	}

	details.Entries = make(map[string]model.LocalizedEntry, len(probe))
	for code, entryRaw := range probe {
		var entry rawMonoEntry
		if err := json.Unmarshal(entryRaw, &entry); err != nil {
			return details, fmt.Errorf("error decoding %s entry: %w", code, err)
		}

		photos, err := parsePhotos(entry.Photo)
		if err != nil {
			return details, fmt.Errorf("error decoding %s photo: %w", code, err)
		}

		details.Entries[code] = model.LocalizedEntry{
			Title:       entry.Text.Title,
			Subtitle:    entry.Text.Subtitle,
			Inscription: entry.Text.Inscription,
			Photos:      photos,
			Date:        entry.Date,
		}
	}
	return details, nil
}

// parsePhotos accepts a single photo object or an array of them.
func parsePhotos(raw json.RawMessage) ([]model.Photo, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one rawPhoto
	if err := json.Unmarshal(raw, &one); err == nil {
		return []model.Photo{*(&one).toModel()}, nil
	}
	var many []rawPhoto
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	photos := make([]model.Photo, len(many))
	for i := range many {
		photos[i] = *(&many[i]).toModel()
	}
	return photos, nil
}

// flattenText concatenates every language's title, subtitle and inscription
// into the search blob matched by the on-this-day filter. Language order is
// the canonical display order so the result is deterministic.
func flattenText(details model.Details) string {
	var parts []string
	for _, code := range details.Languages() {
		entry := details.Entries[code]
		parts = append(parts, entry.Title, entry.Subtitle, entry.Inscription)
	}
	return strings.Join(parts, "\n")
}

// Regions returns the sorted distinct region names across all records.
func Regions(records []*model.MarkerRecord) []string {
	set := make(map[string]bool)
	for _, rec := range records {
		for _, region := range rec.Regions {
			set[region] = true
		}
	}
	regions := make([]string, 0, len(set))
	for region := range set {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
