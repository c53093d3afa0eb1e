package patch

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrMalformedRule marks a rule whose locator or replacement is
// not a valid tagged variant. This is a configuration programming
// error: it is detected at construction time, before any file is
// touched.
var ErrMalformedRule = errors.New("malformed rule")

// Predicate decides whether a rule should be skipped even though
// its locator matched. It is the idempotence guard: a predicate
// that detects "already patched" makes re-applying the rule a
// safe no-op.
type Predicate func(content string, m *Match) bool

// SkipIfContains skips the rule when content already contains s,
// the common "replacement text is already present" guard.
func SkipIfContains(s string) Predicate {
	return func(content string, _ *Match) bool {
		return strings.Contains(content, s)
	}
}

// SkipIfHasPrefix skips the rule when the matched text already
// starts with prefix. Used with CommentLine so a line is never
// commented twice.
func SkipIfHasPrefix(prefix string) Predicate {
	return func(_ string, m *Match) bool {
		return strings.HasPrefix(strings.TrimLeft(m.Text, " \t"), prefix)
	}
}

// Rule is a named pairing of a locator and a replacement, plus an
// optional idempotence predicate. Rules are configuration: built
// once, never mutated.
type Rule struct {
	name        string
	locator     Locator
	replacement Replacement
	skipIf      Predicate
	re          *regexp.Regexp
}

// NewRule validates and builds a rule. Invalid locator or
// replacement variants and regexes that do not compile fail here,
// wrapped in ErrMalformedRule, so a malformed configuration can
// never produce a partial run.
func NewRule(name string, loc Locator, rep Replacement, opts ...RuleOption) (*Rule, error) {
	if name == "" {
		return nil, errors.Errorf("%w: rule name is required", ErrMalformedRule)
	}
	if err := loc.validate(); err != nil {
		return nil, errors.Errorf("%w: rule %q: %v", ErrMalformedRule, name, err)
	}
	if err := rep.validate(loc); err != nil {
		return nil, errors.Errorf("%w: rule %q: %v", ErrMalformedRule, name, err)
	}
	re, err := loc.compile()
	if err != nil {
		return nil, errors.Errorf("%w: rule %q: %v", ErrMalformedRule, name, err)
	}
	r := &Rule{
		name:        name,
		locator:     loc,
		replacement: rep,
		re:          re,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RuleOption configures a rule at construction time.
type RuleOption func(*Rule)

// WithSkipIf attaches an idempotence predicate to the rule.
func WithSkipIf(p Predicate) RuleOption {
	return func(r *Rule) {
		r.skipIf = p
	}
}

// Name returns the rule's name, used for reporting.
func (r *Rule) Name() string {
	return r.name
}

// Apply runs the rule against content and returns the new content
// plus whether the rule fired. A locator that does not match or a
// skip predicate that fires both return the content untouched with
// applied=false; neither is an error.
func (r *Rule) Apply(ctx context.Context, content string) (string, bool) {
	m := r.locator.find(content, r.re)
	if m == nil {
		zerolog.Ctx(ctx).Debug().Str("rule", r.name).Msg("no match, skipping")
		return content, false
	}
	if r.skipIf != nil && r.skipIf(content, m) {
		zerolog.Ctx(ctx).Debug().Str("rule", r.name).Msg("already applied, skipping")
		return content, false
	}
	return r.replacement.rewrite(content, m, r.re), true
}

// ambiguous reports whether the rule's locator matches more than
// one site in content without the rule declaring first-match or
// replace-all semantics.
func (r *Rule) ambiguous(content string) (int, bool) {
	if r.locator.FirstMatch || r.replacement.All {
		return 0, false
	}
	n := r.locator.matchCount(content, r.re)
	return n, n > 1
}
