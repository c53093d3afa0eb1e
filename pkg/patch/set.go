package patch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Set is an ordered sequence of rules applied to one body of
// content. Order is semantically significant: each rule sees the
// cumulative output of the rules before it, so a rule that
// introduces a token must precede a rule that matches on it.
type Set struct {
	rules []*Rule
}

// NewSet builds a set from already-constructed rules. Nil rules
// are rejected as malformed, keeping the fail-fast guarantee.
func NewSet(rules ...*Rule) (*Set, error) {
	if len(rules) == 0 {
		return nil, errors.Errorf("%w: a patch set requires at least one rule", ErrMalformedRule)
	}
	for i, r := range rules {
		if r == nil {
			return nil, errors.Errorf("%w: rule %d is nil", ErrMalformedRule, i)
		}
	}
	return &Set{rules: rules}, nil
}

// Outcome records which rules fired and which were skipped during
// one application of a set, in rule order. It is never mutated
// after Apply returns.
type Outcome struct {
	Applied  []string
	Skipped  []string
	Warnings []string
}

// Changed reports whether any rule in the set fired.
func (o Outcome) Changed() bool {
	return len(o.Applied) > 0
}

// Apply folds every rule over content in declared order and
// returns the final content together with the outcome.
func (s *Set) Apply(ctx context.Context, content string) (string, Outcome) {
	logger := zerolog.Ctx(ctx)

	var out Outcome
	for _, rule := range s.rules {
		if n, ok := rule.ambiguous(content); ok {
			warning := fmt.Sprintf("ambiguous match: rule %q matches %d sites, acting on the first only", rule.Name(), n)
			logger.Warn().Str("rule", rule.Name()).Int("sites", n).Msg("ambiguous match")
			out.Warnings = append(out.Warnings, warning)
		}

		next, applied := rule.Apply(ctx, content)
		if applied {
			out.Applied = append(out.Applied, rule.Name())
		} else {
			out.Skipped = append(out.Skipped, rule.Name())
		}
		content = next
	}
	return content, out
}

// Rules returns the set's rule names in order.
func (s *Set) Rules() []string {
	names := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		names = append(names, r.Name())
	}
	return names
}
