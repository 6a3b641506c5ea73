package recommend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

//go:embed rules.yaml
var defaultRules []byte

var ErrInvalidRules = errors.New("invalid recommendation rules")

// returns the built-in rule table
func Default() *Rules {
	rules, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml: %v", err))
	}

	return rules
}

// reads a rule table from path, or the built-in one when path is empty
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	if err := rules.validate(); err != nil {
		return nil, err
	}

	rules.normalize()

	return &rules, nil
}

// picks advice for the first rule of program with a keyword contained in
// text. never returns an empty string.
func (r *Rules) Recommend(text string, program corpus.Program) string {
	text = strings.ToLower(text)

	pr, ok := r.Programs[program]
	if !ok {
		return r.Fallback
	}

	for _, rule := range pr.Rules {
		if containsAny(text, rule.Keywords) {
			return rule.Advice
		}
	}

	return pr.Fallback
}

// reports whether text asks for a recommendation or describes experience
func (r *Rules) Triggered(text string) bool {
	text = strings.ToLower(text)
	return containsAny(text, r.Triggers.Recommendation) || containsAny(text, r.Triggers.Experience)
}

func (r *Rules) validate() error {
	if strings.TrimSpace(r.Fallback) == "" {
		return fmt.Errorf("%w: global fallback is empty", ErrInvalidRules)
	}

	for program, pr := range r.Programs {
		if !program.Valid() {
			return fmt.Errorf("%w: unknown program %q", ErrInvalidRules, program)
		}

		if strings.TrimSpace(pr.Fallback) == "" {
			return fmt.Errorf("%w: program %s has no fallback", ErrInvalidRules, program)
		}

		for i, rule := range pr.Rules {
			if strings.TrimSpace(rule.Advice) == "" {
				return fmt.Errorf("%w: program %s rule %d has no advice", ErrInvalidRules, program, i)
			}

			if len(rule.Keywords) == 0 {
				return fmt.Errorf("%w: program %s rule %d has no keywords", ErrInvalidRules, program, i)
			}
		}
	}

	return nil
}

// lowercases keywords once so matching is a plain substring check
func (r *Rules) normalize() {
	r.Triggers.Recommendation = lowerAll(r.Triggers.Recommendation)
	r.Triggers.Experience = lowerAll(r.Triggers.Experience)

	for program, pr := range r.Programs {
		for i := range pr.Rules {
			pr.Rules[i].Keywords = lowerAll(pr.Rules[i].Keywords)
		}

		r.Programs[program] = pr
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}

	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}

	return out
}
