// Package careers serves the static career path catalogue and ranks it
// against the skills parsed from a resume.
package careers

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed paths.yaml
var embeddedPaths []byte

type Resource struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Type        string `yaml:"type" json:"type"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
}

type CareerPath struct {
	ID                   string     `yaml:"id" json:"id"`
	Title                string     `yaml:"title" json:"title"`
	Description          string     `yaml:"description" json:"description"`
	RequiredSkills       []string   `yaml:"requiredSkills" json:"requiredSkills"`
	GrowthRate           string     `yaml:"growthRate" json:"growthRate"`
	AverageSalary        string     `yaml:"averageSalary" json:"averageSalary"`
	RecommendedResources []Resource `yaml:"recommendedResources" json:"recommendedResources"`
}

type Catalogue struct {
	paths []CareerPath
}

func NewCatalogue(paths []CareerPath) *Catalogue {
	return &Catalogue{paths: paths}
}

// LoadEmbedded parses the catalogue compiled into the binary.
func LoadEmbedded() (*Catalogue, error) {
	var doc struct {
		Paths []CareerPath `yaml:"paths"`
	}
	if err := yaml.Unmarshal(embeddedPaths, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse career paths: %w", err)
	}
	if len(doc.Paths) == 0 {
		return nil, errors.New("career path catalogue is empty")
	}
	return NewCatalogue(doc.Paths), nil
}

func (c *Catalogue) All() []CareerPath {
	out := make([]CareerPath, len(c.paths))
	copy(out, c.paths)
	return out
}

// Recommend returns the n paths whose required skills overlap most with the
// given skills. Two skills overlap when either contains the other, ignoring
// case. Without skills the first n paths are returned.
func (c *Catalogue) Recommend(skills []string, n int) []CareerPath {
	type scored struct {
		path  CareerPath
		score int
	}
	ranked := make([]scored, len(c.paths))
	for i, p := range c.paths {
		ranked[i] = scored{path: p, score: overlap(p.RequiredSkills, skills)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n = min(n, len(ranked))
	out := make([]CareerPath, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, r.path)
	}
	return out
}

func overlap(required, have []string) int {
	count := 0
	for _, skill := range required {
		s := strings.ToLower(skill)
		for _, h := range have {
			u := strings.ToLower(strings.TrimSpace(h))
			if u == "" {
				continue
			}
			if strings.Contains(u, s) || strings.Contains(s, u) {
				count++
				break
			}
		}
	}
	return count
}
