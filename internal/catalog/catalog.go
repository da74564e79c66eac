// Package catalog holds the static per-destination datasets: the display
// records, the knowledge snippets handed to the model, and the closed option
// sets the profile form draws from. Everything is compiled into the binary and
// parsed once and never mutated at runtime.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed records.yaml knowledge/*.txt
var content embed.FS

// NoRulesPlaceholder stands in for a missing knowledge snippet.
const NoRulesPlaceholder = "No specific rules available for this destination."

type DocumentCategory struct {
	Category string   `yaml:"category" json:"category"`
	Items    []string `yaml:"items" json:"items"`
}

type Step struct {
	Step        int    `yaml:"step" json:"step"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Timeframe   string `yaml:"timeframe" json:"timeframe"`
}

type Cost struct {
	Item   string `yaml:"item" json:"item"`
	Amount string `yaml:"amount" json:"amount"`
	Note   string `yaml:"note,omitempty" json:"note,omitempty"`
}

type Link struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// CountryRecord is the structured reference data shown next to a roadmap.
type CountryRecord struct {
	Country                string             `yaml:"country" json:"country"`
	CountryCode            string             `yaml:"country_code" json:"countryCode"`
	Flag                   string             `yaml:"flag" json:"flag"`
	VisaType               string             `yaml:"visa_type" json:"visaType"`
	Overview               string             `yaml:"overview" json:"overview"`
	ProcessingTime         string             `yaml:"processing_time" json:"processingTime"`
	ValidityPeriod         string             `yaml:"validity_period" json:"validityPeriod"`
	WorkRights             string             `yaml:"work_rights" json:"workRights"`
	Documents              []DocumentCategory `yaml:"documents" json:"documents"`
	Steps                  []Step             `yaml:"steps" json:"steps"`
	Costs                  []Cost             `yaml:"costs" json:"costs"`
	CommonRejectionReasons []string           `yaml:"common_rejection_reasons" json:"commonRejectionReasons"`
	Tips                   []string           `yaml:"tips" json:"tips"`
	OfficialLinks          []Link             `yaml:"official_links" json:"officialLinks"`
}

type dataset struct {
	records  map[string]CountryRecord
	snippets map[string]string
}

var (
	loadOnce sync.Once
	loaded   *dataset
	loadErr  error
)

func load() (*dataset, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(content)
	})
	return loaded, loadErr
}

func mustLoad() *dataset {
	ds, err := load()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded dataset is broken: %v", err))
	}
	return ds
}

func parse(fsys fs.FS) (*dataset, error) {
	raw, err := fs.ReadFile(fsys, "records.yaml")
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	ds := &dataset{
		records:  make(map[string]CountryRecord),
		snippets: make(map[string]string),
	}
	if err := yaml.Unmarshal(raw, &ds.records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}

	entries, err := fs.ReadDir(fsys, "knowledge")
	if err != nil {
		return nil, fmt.Errorf("read knowledge: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		text, err := fs.ReadFile(fsys, "knowledge/"+name)
		if err != nil {
			return nil, fmt.Errorf("read snippet %s: %w", name, err)
		}
		ds.snippets[strings.TrimSuffix(name, ".txt")] = string(text)
	}
	return ds, nil
}

// Record returns the display record for a destination code.
func Record(code string) (CountryRecord, bool) {
	rec, ok := mustLoad().records[code]
	return rec, ok
}

// Snippet returns the model context block for a destination code.
func Snippet(code string) (string, bool) {
	s, ok := mustLoad().snippets[code]
	return s, ok
}

// SnippetOrPlaceholder never fails: unknown destinations degrade to
// NoRulesPlaceholder.
func SnippetOrPlaceholder(code string) string {
	if s, ok := Snippet(code); ok {
		return s
	}
	return NoRulesPlaceholder
}

// RecordCodes lists the destination codes that have a display record.
func RecordCodes() []string {
	return keys(mustLoad().records)
}

// SnippetCodes lists the destination codes that have a knowledge snippet.
func SnippetCodes() []string {
	return keys(mustLoad().snippets)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
