// Package questionbank serves interview questions without an LLM, either from
// the embedded YAML bank or from a MongoDB collection seeded with it.
package questionbank

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var embeddedQuestions []byte

var ErrNoQuestion = errors.New("no question available")

type Question struct {
	ID         string `yaml:"id" json:"id" bson:"_id"`
	Text       string `yaml:"text" json:"text" bson:"text"`
	Category   string `yaml:"category" json:"category" bson:"category"`
	Stage      string `yaml:"stage" json:"stage" bson:"stage"`
	Difficulty string `yaml:"difficulty" json:"difficulty" bson:"difficulty"`
	FollowUp   string `yaml:"follow_up" json:"follow_up,omitempty" bson:"follow_up,omitempty"`
}

// Query narrows the pick. Empty fields match anything.
type Query struct {
	Stage      string
	Difficulty string
	Exclude    []string // question texts already asked
}

type Bank interface {
	Next(ctx context.Context, q Query) (*Question, error)
}

// MemoryBank picks from an in-memory list in declaration order.
type MemoryBank struct {
	questions []Question
}

func NewMemoryBank(questions []Question) *MemoryBank {
	return &MemoryBank{questions: questions}
}

// NewEmbeddedBank loads the question bank compiled into the binary.
func NewEmbeddedBank() (*MemoryBank, error) {
	questions, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return NewMemoryBank(questions), nil
}

func LoadEmbedded() ([]Question, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(embeddedQuestions, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, errors.New("question bank is empty")
	}
	return doc.Questions, nil
}

// Next prefers an exact stage and difficulty match, then relaxes difficulty,
// then stage, and finally accepts any question not yet asked.
func (b *MemoryBank) Next(_ context.Context, q Query) (*Question, error) {
	excluded := make(map[string]bool, len(q.Exclude))
	for _, text := range q.Exclude {
		excluded[normalize(text)] = true
	}

	passes := []Query{
		{Stage: q.Stage, Difficulty: q.Difficulty},
		{Stage: q.Stage},
		{Difficulty: q.Difficulty},
		{},
	}
	for _, pass := range passes {
		for i := range b.questions {
			candidate := b.questions[i]
			if excluded[normalize(candidate.Text)] {
				continue
			}
			if pass.Stage != "" && candidate.Stage != pass.Stage {
				continue
			}
			if pass.Difficulty != "" && candidate.Difficulty != pass.Difficulty {
				continue
			}
			return &candidate, nil
		}
	}
	return nil, ErrNoQuestion
}

// FollowUpFor returns the scripted follow-up for a question text, if any.
func (b *MemoryBank) FollowUpFor(text string) string {
	for _, q := range b.questions {
		if normalize(q.Text) == normalize(text) {
			return q.FollowUp
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
