package generator

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Tables holds the static lookup data behind prompt composition, name
// suggestion and the cultural-marker probe. Treat a loaded Tables as read-only;
// it is shared across runs without locking.
type Tables struct {
	TopicKeywords    []KeywordSet      `yaml:"topic_keywords"`
	Research         []ResearchEntry   `yaml:"research"`
	CulturalContext  []CityContext     `yaml:"cultural_context"`
	LanguagePatterns []LanguagePattern `yaml:"language_patterns"`
	NamePools        []NamePool        `yaml:"name_pools"`
	CulturalMarkers  []MarkerSet       `yaml:"cultural_markers"`
}

type KeywordSet struct {
	Kind     TemplateKind `yaml:"kind"`
	Keywords []string     `yaml:"keywords"`
}

type RegionBullets struct {
	Region  string   `yaml:"region"`
	Bullets []string `yaml:"bullets"`
}

// ResearchEntry is keyed by a topic substring. Regions are tried in order
// against the location; Global is used when none matches.
type ResearchEntry struct {
	Topic   string          `yaml:"topic"`
	Regions []RegionBullets `yaml:"regions"`
	Global  []string        `yaml:"global"`
}

type CityContext struct {
	City    string   `yaml:"city"`
	Bullets []string `yaml:"bullets"`
}

// LanguagePattern carries either flat Bullets or region-dependent variants.
type LanguagePattern struct {
	Language string          `yaml:"language"`
	Bullets  []string        `yaml:"bullets"`
	Regions  []RegionBullets `yaml:"regions"`
}

type NamePool struct {
	Name     string   `yaml:"name"`
	Match    []string `yaml:"match"`
	Default  bool     `yaml:"default"`
	Male     []string `yaml:"male"`
	Female   []string `yaml:"female"`
	Neutral  []string `yaml:"neutral"`
	Surnames []string `yaml:"surnames"`
}

// MarkerSet lists words expected in transcripts for matching locations.
type MarkerSet struct {
	Name      string   `yaml:"name"`
	Locations []string `yaml:"locations"`
	Words     []string `yaml:"words"`
}

var defaultTables = mustParseTables(defaultTablesYAML)

func mustParseTables(data []byte) *Tables {
	t, err := ParseTables(data)
	if err != nil {
		panic(fmt.Sprintf("embedded tables: %v", err))
	}
	return t
}

// DefaultTables returns the embedded tables.
func DefaultTables() *Tables { return defaultTables }

// LoadTables reads tables from path, or returns the embedded ones when path is empty.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return defaultTables, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTables decodes and checks a tables document. Keys are lower-cased so
// matching can be done against lower-cased input.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}

	for i, ks := range t.TopicKeywords {
		if !ks.Kind.valid() || ks.Kind == Standard {
			return nil, fmt.Errorf("topic_keywords[%d]: unknown template kind %q", i, ks.Kind)
		}
		t.TopicKeywords[i].Keywords = lowerAll(ks.Keywords)
	}
	for i := range t.Research {
		t.Research[i].Topic = strings.ToLower(t.Research[i].Topic)
		lowerRegions(t.Research[i].Regions)
	}
	for i := range t.CulturalContext {
		t.CulturalContext[i].City = strings.ToLower(t.CulturalContext[i].City)
	}
	for i := range t.LanguagePatterns {
		t.LanguagePatterns[i].Language = strings.ToLower(t.LanguagePatterns[i].Language)
		lowerRegions(t.LanguagePatterns[i].Regions)
	}

	defaults := 0
	for i, p := range t.NamePools {
		if len(p.Male) == 0 || len(p.Female) == 0 || len(p.Neutral) == 0 || len(p.Surnames) == 0 {
			return nil, fmt.Errorf("name_pools[%d] (%s): male, female, neutral and surnames must be non-empty", i, p.Name)
		}
		if p.Default {
			defaults++
		}
		t.NamePools[i].Match = lowerAll(p.Match)
	}
	if len(t.NamePools) > 0 && defaults != 1 {
		return nil, fmt.Errorf("name_pools: exactly one default pool required, found %d", defaults)
	}

	for i := range t.CulturalMarkers {
		t.CulturalMarkers[i].Locations = lowerAll(t.CulturalMarkers[i].Locations)
		t.CulturalMarkers[i].Words = lowerAll(t.CulturalMarkers[i].Words)
	}
	return &t, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func lowerRegions(rs []RegionBullets) {
	for i := range rs {
		rs[i].Region = strings.ToLower(rs[i].Region)
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func bulletList(bullets []string) string {
	var sb strings.Builder
	for i, b := range bullets {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(b)
	}
	return sb.String()
}
