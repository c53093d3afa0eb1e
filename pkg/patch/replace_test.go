package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacement_Rewrite(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		locator     Locator
		replacement Replacement
		want        string
	}{
		{
			name:        "literal_splice",
			content:     "if x != nil && y > 0 {",
			locator:     Locator{Literal: "x != nil && "},
			replacement: LiteralText(""),
			want:        "if y > 0 {",
		},
		{
			name:        "literal_non_empty",
			content:     "Hello World",
			locator:     Locator{Literal: "World"},
			replacement: LiteralText("Universe"),
			want:        "Hello Universe",
		},
		{
			name:        "template_backreference",
			content:     "x := pulumi.Map(nodeInfo)\ny := 1\n",
			locator:     Locator{Pattern: `pulumi\.Map\((\w+)\)`},
			replacement: Template("pulumi.ToMap($1)"),
			want:        "x := pulumi.ToMap(nodeInfo)\ny := 1\n",
		},
		{
			name:        "template_first_match_only",
			content:     "pulumi.Map(a) pulumi.Map(b)",
			locator:     Locator{Pattern: `pulumi\.Map\((\w+)\)`, FirstMatch: true},
			replacement: Template("pulumi.ToMap($1)"),
			want:        "pulumi.ToMap(a) pulumi.Map(b)",
		},
		{
			name:        "template_replace_all",
			content:     "pulumi.Map(a) pulumi.Map(b)",
			locator:     Locator{Pattern: `pulumi\.Map\((\w+)\)`},
			replacement: TemplateAll("pulumi.ToMap($1)"),
			want:        "pulumi.ToMap(a) pulumi.ToMap(b)",
		},
		{
			name:    "callback_sees_raw_text",
			content: "one\nvar unused int\nthree\n",
			locator: Locator{LineWindow: &LineWindow{Start: 0, End: 3, Contains: "unused"}},
			replacement: Callback(func(m *Match) string {
				return "//" + m.Text
			}),
			want: "one\n//var unused int\nthree\n",
		},
		{
			name:    "callback_sees_captures",
			content: "Log.Info(msg, &pulumi.LogArgs{Message: pulumi.Sprintf(x)})",
			locator: Locator{Pattern: `(Log\.\w+\(\w+, )&pulumi\.LogArgs\{[^}]*\}`},
			replacement: Callback(func(m *Match) string {
				return m.Captures[0] + "nil"
			}),
			want: "Log.Info(msg, nil)",
		},
		{
			name:        "comment_line_helper",
			content:     "keep\n\ttotalCount := 0\nkeep\n",
			locator:     Locator{LineWindow: &LineWindow{Start: 0, End: 3, Contains: "totalCount"}},
			replacement: CommentLine(),
			want:        "keep\n//\ttotalCount := 0\nkeep\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := tt.locator.compile()
			require.NoError(t, err)

			m := tt.locator.find(tt.content, re)
			require.NotNil(t, m, "locator must match for this test")

			got := tt.replacement.rewrite(tt.content, m, re)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Bytes outside the matched span must be copied verbatim: the
// prefix before the span and the suffix after it survive the
// rewrite byte for byte.
func TestReplacement_SpanLocality(t *testing.T) {
	content := "prefix text\nmiddle target middle\nsuffix text\n"
	loc := Locator{Literal: "target"}
	re, err := loc.compile()
	require.NoError(t, err)

	m := loc.find(content, re)
	require.NotNil(t, m)

	got := LiteralText("REPLACED").rewrite(content, m, re)

	assert.Equal(t, content[:m.Span.Start], got[:m.Span.Start])
	wantSuffix := content[m.Span.End:]
	assert.True(t, strings.HasSuffix(got, wantSuffix), "suffix after span must be unchanged")
	assert.Equal(t, len(content)-(m.Span.End-m.Span.Start)+len("REPLACED"), len(got))
}

func TestReplacement_Validate(t *testing.T) {
	empty := ""
	tmpl := "$1"

	tests := []struct {
		name        string
		locator     Locator
		replacement Replacement
		wantError   string
	}{
		{
			name:        "empty_literal_text_is_valid",
			locator:     Locator{Literal: "x"},
			replacement: Replacement{Text: &empty},
		},
		{
			name:        "no_variant",
			locator:     Locator{Literal: "x"},
			replacement: Replacement{},
			wantError:   "exactly one",
		},
		{
			name:        "two_variants",
			locator:     Locator{Pattern: `(x)`},
			replacement: Replacement{Text: &empty, Template: &tmpl},
			wantError:   "exactly one",
		},
		{
			name:        "template_requires_pattern_locator",
			locator:     Locator{Literal: "x"},
			replacement: Replacement{Template: &tmpl},
			wantError:   "pattern locator",
		},
		{
			name:        "all_requires_template",
			locator:     Locator{Literal: "x"},
			replacement: Replacement{Text: &empty, All: true},
			wantError:   "replace-all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.replacement.validate(tt.locator)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}
