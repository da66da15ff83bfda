package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document represents the top-level structure of a prensa.yaml file.
type Document struct {
	View ViewConfig `yaml:"view"`
}

// ViewConfig configures the startup state of the news view.
type ViewConfig struct {
	Defaults    ParamsConfig       `yaml:"defaults,omitempty"`
	AutoRefresh *AutoRefreshConfig `yaml:"auto_refresh,omitempty"`
	Filters     []FilterRuleConfig `yaml:"filters,omitempty"`
}

// ParamsConfig overrides the built-in defaults for the fetch parameters.
// Empty fields keep the built-in value.
type ParamsConfig struct {
	Country   string `yaml:"country,omitempty"`
	Range     string `yaml:"range,omitempty"`
	PerFeed   int    `yaml:"per_feed,omitempty"`
	Translate string `yaml:"translate,omitempty"`
}

// AutoRefreshConfig schedules periodic soft refreshes.
type AutoRefreshConfig struct {
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone,omitempty"`
}

// FilterRuleConfig defines an expression-based item filter applied before
// the local source/search filters.
type FilterRuleConfig struct {
	Name   string `yaml:"name"`
	Rule   string `yaml:"rule"`
	Result string `yaml:"result"`
}

var validRanges = map[string]bool{"1d": true, "3d": true, "7d": true, "30d": true}

// Validate performs validation on the document.
func (d *Document) Validate() error {
	p := d.View.Defaults
	if p.Range != "" && !validRanges[p.Range] {
		return fmt.Errorf("view defaults: range must be one of 1d, 3d, 7d, 30d")
	}
	if p.PerFeed < 0 || p.PerFeed > 50 {
		return fmt.Errorf("view defaults: per_feed must be between 1 and 50")
	}
	if p.Translate != "" && p.Translate != "en" && p.Translate != "none" {
		return fmt.Errorf("view defaults: translate must be 'en' or 'none'")
	}

	if ar := d.View.AutoRefresh; ar != nil {
		if ar.Schedule == "" {
			return fmt.Errorf("auto_refresh: schedule is required")
		}
	}

	for i, f := range d.View.Filters {
		if f.Name == "" || f.Rule == "" {
			return fmt.Errorf("filter %d: name and rule are required", i)
		}
		if f.Result != "pass" && f.Result != "drop" {
			return fmt.Errorf("filter %d: result must be 'pass' or 'drop'", i)
		}
	}

	return nil
}

// Load reads and validates a prensa.yaml document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
