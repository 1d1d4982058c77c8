// Package fixtures loads YAML user fixtures and seeds them through the tracker.
package fixtures

import (
	"embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/utils"
)

//go:embed assets/*.yaml
var assetFS embed.FS

const demoAsset = "assets/demo.yaml"

// Doc is one fixture file.
type Doc struct {
	Users []User `yaml:"users"`
}

// User is the seed data of one partition.
type User struct {
	User           string            `yaml:"user"`
	DisplayName    string            `yaml:"displayName"`
	SetupCompleted bool              `yaml:"setupCompleted"`
	JudgeSetup     map[string]string `yaml:"judgeSetup"`
	Periods        []Period          `yaml:"periods"`
	Journals       []Journal         `yaml:"journals"`
	Skins          []Skin            `yaml:"skins"`
}

// When places a fixture record in time, either absolutely or relative to the
// seed run. Exactly one of Date and DaysAgo is set.
type When struct {
	Date    string `yaml:"date"`
	DaysAgo *int   `yaml:"daysAgo"`
}

// Period seeds a period start.
type Period struct {
	When        `yaml:",inline"`
	CycleLength int    `yaml:"cycleLength"`
	UserAge     int    `yaml:"userAge"`
	Notes       string `yaml:"notes"`
}

// Journal seeds one journal slot.
type Journal struct {
	When     `yaml:",inline"`
	Night    bool     `yaml:"night"`
	Feeling  string   `yaml:"feeling"`
	Energy   int      `yaml:"energy"`
	Thoughts string   `yaml:"thoughts"`
	Tags     []string `yaml:"tags"`
}

// Skin seeds one skin analysis, taken at noon UTC of its day.
type Skin struct {
	When     `yaml:",inline"`
	Summary  string   `yaml:"summary"`
	Health   float64  `yaml:"health"`
	Acne     bool     `yaml:"acne"`
	Dryness  bool     `yaml:"dryness"`
	Oiliness bool     `yaml:"oiliness"`
	Redness  bool     `yaml:"redness"`
	Concerns []string `yaml:"concerns"`
}

// Resolve returns the calendar day w refers to.
func (w When) Resolve(now time.Time) (time.Time, error) {
	switch {
	case w.Date != "" && w.DaysAgo != nil:
		return time.Time{}, fmt.Errorf("set either date or daysAgo, not both")
	case w.Date != "":
		return records.ParseDate(w.Date)
	case w.DaysAgo != nil:
		if *w.DaysAgo < 0 {
			return time.Time{}, fmt.Errorf("daysAgo %d is negative", *w.DaysAgo)
		}
		return records.Day(now.UTC().AddDate(0, 0, -*w.DaysAgo)), nil
	}
	return time.Time{}, fmt.Errorf("date or daysAgo is required")
}

// Parse decodes a fixture document; src names it in errors.
func Parse(b []byte, src string) (Doc, error) {
	var doc Doc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Doc{}, fmt.Errorf("invalid fixture YAML %s: %w", src, err)
	}
	for i, u := range doc.Users {
		if u.User == "" {
			return Doc{}, fmt.Errorf("fixture %s: user #%d has no id", src, i+1)
		}
	}
	return doc, nil
}

// Demo returns the embedded demo account.
func Demo() ([]User, error) {
	b, err := assetFS.ReadFile(demoAsset)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(b, demoAsset)
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

// Load merges the fixture files found under dir (any *.yaml or *.yml at any
// depth) with the demo account when includeDemo is set. An empty dir loads
// nothing from disk.
func Load(dir string, includeDemo bool) ([]User, error) {
	users := []User{}
	if dir != "" {
		paths, err := utils.GlobRecursive(dir, "**/*.yaml", "**/*.yml")
		if err != nil {
			return nil, fmt.Errorf("fixtures: scan %s: %w", dir, err)
		}
		for _, p := range paths {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, err
			}
			doc, err := Parse(b, p)
			if err != nil {
				return nil, err
			}
			users = append(users, doc.Users...)
		}
	}
	if includeDemo {
		demo, err := Demo()
		if err != nil {
			return nil, err
		}
		users = append(users, demo...)
	}
	return users, nil
}
