package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

func TestConfig_Compile(t *testing.T) {
	ctx := context.Background()

	t.Run("builds_one_binding_per_patch", func(t *testing.T) {
		text := "new"
		cfg := &Config{
			Patches: []PatchConfig{
				{
					Path: "a.go",
					Rules: []RuleConfig{
						{Name: "r1", Literal: "old", Text: &text},
					},
				},
				{
					Path: "b.go",
					Rules: []RuleConfig{
						{Name: "r2", Regex: `x(\d+)`, Template: strPtr("y$1")},
					},
				},
			},
		}

		bindings, err := cfg.Compile(ctx)
		require.NoError(t, err)
		require.Len(t, bindings, 2)
		assert.Equal(t, "a.go", bindings[0].Path)
		assert.Equal(t, []string{"r1"}, bindings[0].Patch.Rules())
		assert.Equal(t, "b.go", bindings[1].Path)
	})

	t.Run("malformed_rule_fails_fast", func(t *testing.T) {
		cfg := &Config{
			Patches: []PatchConfig{
				{
					Path: "a.go",
					Rules: []RuleConfig{
						{Name: "no-replacement", Literal: "old"},
					},
				},
			},
		}

		bindings, err := cfg.Compile(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, patch.ErrMalformedRule))
		assert.Nil(t, bindings)
	})

	t.Run("invalid_regex_fails_fast", func(t *testing.T) {
		cfg := &Config{
			Patches: []PatchConfig{
				{
					Path: "a.go",
					Rules: []RuleConfig{
						{Name: "bad", Regex: "(", Template: strPtr("$1")},
					},
				},
			},
		}

		_, err := cfg.Compile(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, patch.ErrMalformedRule))
	})

	t.Run("comment_line_gets_default_guard", func(t *testing.T) {
		cfg := &Config{
			Patches: []PatchConfig{
				{
					Path: "a.go",
					Rules: []RuleConfig{
						{
							Name:        "comment-it",
							LineWindow:  &LineWindowConfig{Start: 0, End: 5, Contains: "unused"},
							CommentLine: true,
						},
					},
				},
			},
		}

		bindings, err := cfg.Compile(ctx)
		require.NoError(t, err)

		content := "a\nvar unused int\nb\n"
		once, outcome := bindings[0].Patch.Apply(ctx, content)
		assert.Equal(t, "a\n//var unused int\nb\n", once)
		assert.True(t, outcome.Changed())

		// The injected guard makes the second pass a no-op.
		twice, outcome := bindings[0].Patch.Apply(ctx, once)
		assert.Equal(t, once, twice)
		assert.False(t, outcome.Changed())
	})
}

// End-to-end: load a config, compile it, run it against real
// files. This mirrors the tool's actual usage.
func TestConfig_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	target := filepath.Join(dir, "manager.go")
	original := `func (m *Manager) update() error {
	info := pulumi.Map(dnsInfo)
	if initialIP == nil {
		return nil
	}
	return m.apply(info)
}
`
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	configPath := filepath.Join(dir, ".patchrc.yaml")
	configContent := `patches:
  - path: manager.go
    rules:
      - name: map-to-tomap
        regex: pulumi\.Map\((\w+)\)
        template: pulumi.ToMap($1)
        all: true
      - name: fix-nil-compare
        literal: initialIP == nil
        text: initialIP == pulumi.String("").ToStringOutput()
        skip_if_contains: ToStringOutput()
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(ctx, configPath)
	require.NoError(t, err)

	bindings, err := cfg.Compile(ctx)
	require.NoError(t, err)

	r := runner.NewRunner(runner.Options{Root: dir})
	report, err := r.Run(ctx, bindings)
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Equal(t, 1, report.Changed())

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(got), "pulumi.ToMap(dnsInfo)")
	assert.Contains(t, string(got), `initialIP == pulumi.String("").ToStringOutput()`)
	assert.NotContains(t, string(got), "pulumi.Map(")

	// Second run: both rules skip, nothing changes.
	report, err = r.Run(ctx, bindings)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed())

	res := report.Results[0]
	assert.ElementsMatch(t, []string{"map-to-tomap", "fix-nil-compare"}, res.RulesSkipped)
}

func strPtr(s string) *string {
	return &s
}
