package patch

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Span is a contiguous byte range within a text buffer.
type Span struct {
	Start int
	End   int
}

// Match is the result of locating a rule's target in content.
// Captures is populated only for regex locators; literal and
// line-window matches carry just the raw matched text.
type Match struct {
	Span     Span
	Text     string
	Captures []string

	// submatch index pairs as returned by FindStringSubmatchIndex,
	// kept for template expansion
	idx []int
}

// LineWindow restricts matching to the line range [Start, End)
// (0-indexed, exclusive end), selecting the first line that
// contains the Contains substring. It exists for cases where a
// whole-file literal or regex would risk touching an unrelated
// occurrence elsewhere in the file.
type LineWindow struct {
	Start    int
	End      int
	Contains string
}

// Locator describes where a rule acts. Exactly one of Literal,
// Pattern or LineWindow must be set; this is validated when the
// rule is constructed.
type Locator struct {
	Literal    string      // exact substring, first occurrence
	Pattern    string      // regular expression, leftmost match
	LineWindow *LineWindow // line-range scan

	// FirstMatch declares that acting on only the leftmost of
	// several candidate matches is intended, suppressing the
	// ambiguity warning.
	FirstMatch bool
}

func (l Locator) validate() error {
	n := 0
	if l.Literal != "" {
		n++
	}
	if l.Pattern != "" {
		n++
	}
	if l.LineWindow != nil {
		n++
	}
	if n != 1 {
		return errors.Errorf("exactly one of literal, pattern or line_window must be set (got %d)", n)
	}
	if lw := l.LineWindow; lw != nil {
		if lw.Start < 0 || lw.End < lw.Start {
			return errors.Errorf("line window [%d, %d) is not a valid range", lw.Start, lw.End)
		}
		if lw.Contains == "" {
			return errors.Errorf("line window requires a contains substring")
		}
	}
	return nil
}

func (l Locator) compile() (*regexp.Regexp, error) {
	if l.Pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(l.Pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", l.Pattern, err)
	}
	return re, nil
}

// find locates the candidate span in content. A nil result means
// the locator does not match, which is an expected outcome, not
// an error: the rule is already applied or inapplicable.
func (l Locator) find(content string, re *regexp.Regexp) *Match {
	switch {
	case l.Literal != "":
		i := strings.Index(content, l.Literal)
		if i < 0 {
			return nil
		}
		return &Match{
			Span: Span{Start: i, End: i + len(l.Literal)},
			Text: l.Literal,
		}

	case re != nil:
		idx := re.FindStringSubmatchIndex(content)
		if idx == nil {
			return nil
		}
		m := &Match{
			Span: Span{Start: idx[0], End: idx[1]},
			Text: content[idx[0]:idx[1]],
			idx:  idx,
		}
		for i := 1; i < len(idx)/2; i++ {
			if idx[2*i] < 0 {
				m.Captures = append(m.Captures, "")
				continue
			}
			m.Captures = append(m.Captures, content[idx[2*i]:idx[2*i+1]])
		}
		return m

	case l.LineWindow != nil:
		return l.LineWindow.find(content)
	}
	return nil
}

// matchCount reports how many candidate sites the locator has in
// content, for ambiguity detection. Line windows always select a
// single line and never count as ambiguous.
func (l Locator) matchCount(content string, re *regexp.Regexp) int {
	switch {
	case l.Literal != "":
		return strings.Count(content, l.Literal)
	case re != nil:
		return len(re.FindAllStringIndex(content, -1))
	}
	return 1
}

func (w *LineWindow) find(content string) *Match {
	offset := 0
	rest := content
	for line := 0; rest != ""; line++ {
		text := rest
		advance := len(rest)
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			text = rest[:i]
			advance = i + 1
		}
		if line >= w.End {
			break
		}
		if line >= w.Start && strings.Contains(text, w.Contains) {
			return &Match{
				Span: Span{Start: offset, End: offset + len(text)},
				Text: text,
			}
		}
		offset += advance
		rest = rest[advance:]
	}
	return nil
}
