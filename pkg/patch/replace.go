package patch

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// Replacement describes what a rule writes into the matched span.
// Exactly one of Text, Template or Func must be set; this is
// validated when the rule is constructed.
type Replacement struct {
	// Text splices a literal string in place of the span. A
	// pointer so that replacing with the empty string (deleting
	// the match) is distinguishable from "not set".
	Text *string

	// Template re-expands the locator's regex captures into the
	// span using Go template syntax ($1, ${name}). Only valid
	// with a Pattern locator.
	Template *string

	// Func computes the new text from the match. For literal and
	// line-window locators the match carries the raw text and no
	// captures.
	Func func(m *Match) string

	// All applies a Template replacement to every occurrence in
	// the content instead of just the first. This is the global
	// variant: rules that need all sites rewritten use it rather
	// than repeated matching.
	All bool
}

// LiteralText returns a Replacement that splices text verbatim.
// The empty string is valid and deletes the matched span.
func LiteralText(text string) Replacement {
	return Replacement{Text: &text}
}

// Template returns a Replacement that expands regex captures into
// template ($1, ${name}) at the match site.
func Template(template string) Replacement {
	return Replacement{Template: &template}
}

// TemplateAll is Template with replace-all semantics.
func TemplateAll(template string) Replacement {
	return Replacement{Template: &template, All: true}
}

// Callback returns a Replacement computed from the match.
func Callback(fn func(m *Match) string) Replacement {
	return Replacement{Func: fn}
}

func (r Replacement) validate(loc Locator) error {
	n := 0
	if r.Text != nil {
		n++
	}
	if r.Template != nil {
		n++
	}
	if r.Func != nil {
		n++
	}
	if n != 1 {
		return errors.Errorf("exactly one of text, template or func must be set (got %d)", n)
	}
	if r.Template != nil && loc.Pattern == "" {
		return errors.Errorf("template replacement requires a pattern locator")
	}
	if r.All && r.Template == nil {
		return errors.Errorf("replace-all is only valid with a template replacement")
	}
	return nil
}

// rewrite produces the new content for a match. Bytes outside the
// span are copied unchanged, preserving surrounding formatting and
// line numbers elsewhere in the file. Replace-all is the one
// documented exception: it rewrites every match site, each site
// still only within its own span.
func (r Replacement) rewrite(content string, m *Match, re *regexp.Regexp) string {
	switch {
	case r.Text != nil:
		return content[:m.Span.Start] + *r.Text + content[m.Span.End:]

	case r.Template != nil:
		if r.All {
			return re.ReplaceAllString(content, *r.Template)
		}
		expanded := re.ExpandString(nil, *r.Template, content, m.idx)
		return content[:m.Span.Start] + string(expanded) + content[m.Span.End:]

	case r.Func != nil:
		return content[:m.Span.Start] + r.Func(m) + content[m.Span.End:]
	}
	return content
}

// CommentLine is a Replacement that prefixes the matched text with
// a line comment marker. Pair it with SkipIfHasPrefix("//") so an
// already-commented line is never commented twice.
func CommentLine() Replacement {
	return Callback(func(m *Match) string {
		return "//" + m.Text
	})
}
