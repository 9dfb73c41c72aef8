// Package modelmeta classifies model names into providers, capability tags,
// and context-window hints. The rules live in an embedded table rather than
// code so adding a provider is a data change.
package modelmeta

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed table.yaml
var tableYAML []byte

// UnknownProvider is reported when no rule matches.
const UnknownProvider = "Other"

type rule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type table struct {
	Providers []rule `yaml:"providers"`
	Tags      []rule `yaml:"tags"`
}

var (
	loadOnce sync.Once
	loaded   table
	loadErr  error
	windowRe = regexp.MustCompile(`(\d{1,4})(k|m)`)
)

func load() (table, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(tableYAML, &loaded)
		if loadErr != nil {
			loadErr = fmt.Errorf("parse classification table: %w", loadErr)
		}
	})
	return loaded, loadErr
}

// Meta describes one model for display purposes.
type Meta struct {
	Provider      string
	Tags          []string
	ContextWindow string
}

// Describe classifies a model name. A non-empty owner reported by the
// gateway wins over the pattern table.
func Describe(model, owner string) Meta {
	m := Meta{Provider: UnknownProvider}
	tbl, err := load()
	if err != nil {
		return m
	}

	lower := strings.ToLower(model)
	if owner != "" {
		m.Provider = owner
	} else {
		for _, p := range tbl.Providers {
			if matches(lower, p.Patterns) {
				m.Provider = p.Name
				break
			}
		}
	}

	for _, t := range tbl.Tags {
		if matches(lower, t.Patterns) {
			m.Tags = append(m.Tags, t.Name)
		}
	}

	if w := windowRe.FindStringSubmatch(lower); w != nil {
		m.ContextWindow = w[1] + w[2]
	}
	return m
}

func matches(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
