package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Answers holds pre-filled field values. Values apply to every step, Steps
// override them for one step.
//
//	values:
//	  email: ada@example.com
//	steps:
//	  2:
//	    tags[]: [go, html]
type Answers struct {
	Values map[string]any         `yaml:"values"`
	Steps  map[int]map[string]any `yaml:"steps"`
}

// ForStep returns the values to fill at step.
func (a *Answers) ForStep(step int) map[string]any {
	out := make(map[string]any)
	if a == nil {
		return out
	}
	for name, value := range a.Values {
		out[name] = value
	}
	for name, value := range a.Steps[step] {
		out[name] = value
	}
	return out
}

// Empty reports whether no values are set.
func (a *Answers) Empty() bool {
	return a == nil || (len(a.Values) == 0 && len(a.Steps) == 0)
}

// loadAnswers reads an answers file. An empty path yields no answers.
func loadAnswers(path string) (*Answers, error) {
	if path == "" {
		return &Answers{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return parseAnswers(raw)
}

func parseAnswers(raw []byte) (*Answers, error) {
	var answers Answers
	if err := yaml.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	for step := range answers.Steps {
		if step < 1 {
			return nil, errors.New("parse answers: steps are numbered from 1")
		}
	}
	return &answers, nil
}
