// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// 🪟 LineWindowConfig restricts a rule to a line range.
type LineWindowConfig struct {
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
	Contains string `json:"contains" yaml:"contains"`
}

// 🔄 RuleConfig describes one transformation rule. Exactly one
// locator (literal, regex, line_window) and exactly one
// replacement (text, template, comment_line) must be set;
// violations fail at compile time, before any file is read.
type RuleConfig struct {
	Name string `json:"name" yaml:"name"`

	// Locator variants
	Literal    string            `json:"literal,omitempty" yaml:"literal,omitempty"`
	Regex      string            `json:"regex,omitempty" yaml:"regex,omitempty"`
	LineWindow *LineWindowConfig `json:"line_window,omitempty" yaml:"line_window,omitempty"`
	FirstMatch bool              `json:"first_match,omitempty" yaml:"first_match,omitempty"`

	// Replacement variants. Text is a pointer so that replacing
	// with the empty string (deleting the match) stays expressible.
	Text        *string `json:"text,omitempty" yaml:"text,omitempty"`
	Template    *string `json:"template,omitempty" yaml:"template,omitempty"`
	All         bool    `json:"all,omitempty" yaml:"all,omitempty"`
	CommentLine bool    `json:"comment_line,omitempty" yaml:"comment_line,omitempty"`

	// Idempotence guard: skip the rule when the file already
	// contains this substring.
	SkipIfContains string `json:"skip_if_contains,omitempty" yaml:"skip_if_contains,omitempty"`
}

// 📦 PatchConfig binds an ordered rule list to one target path.
// The path may be a doublestar glob.
type PatchConfig struct {
	Path  string       `json:"path" yaml:"path"`
	Rules []RuleConfig `json:"rules" yaml:"rules"`
}

// 📚 Config is the complete patchrc configuration.
type Config struct {
	Patches []PatchConfig `json:"patches" yaml:"patches"`

	location string
}

// 📍 Location returns the path the config was loaded from.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks structural requirements that the format
// decoders cannot express.
func (cfg *Config) Validate() error {
	if len(cfg.Patches) == 0 {
		return errors.Errorf("at least one patch is required")
	}
	for i, p := range cfg.Patches {
		if p.Path == "" {
			return errors.Errorf("patch %d: path is required", i)
		}
		if len(p.Rules) == 0 {
			return errors.Errorf("patch %d (%s): at least one rule is required", i, p.Path)
		}
		for j, r := range p.Rules {
			if r.Name == "" {
				return errors.Errorf("patch %s: rule %d: name is required", p.Path, j)
			}
		}
	}
	return nil
}

// 🏭 Compile turns the configuration into runner bindings. Any
// malformed rule aborts here, so a bad configuration can never
// produce a partial run.
func (cfg *Config) Compile(ctx context.Context) ([]runner.Binding, error) {
	logger := zerolog.Ctx(ctx)

	bindings := make([]runner.Binding, 0, len(cfg.Patches))
	for _, p := range cfg.Patches {
		rules := make([]*patch.Rule, 0, len(p.Rules))
		for _, rc := range p.Rules {
			rule, err := rc.compile()
			if err != nil {
				return nil, errors.Errorf("patch %s: %w", p.Path, err)
			}
			rules = append(rules, rule)
		}

		set, err := patch.NewSet(rules...)
		if err != nil {
			return nil, errors.Errorf("patch %s: %w", p.Path, err)
		}
		bindings = append(bindings, runner.Binding{Path: p.Path, Patch: set})
	}

	logger.Debug().Int("patches", len(bindings)).Msg("compiled configuration")
	return bindings, nil
}

func (rc RuleConfig) compile() (*patch.Rule, error) {
	loc := patch.Locator{
		Literal:    rc.Literal,
		Pattern:    rc.Regex,
		FirstMatch: rc.FirstMatch,
	}
	if rc.LineWindow != nil {
		loc.LineWindow = &patch.LineWindow{
			Start:    rc.LineWindow.Start,
			End:      rc.LineWindow.End,
			Contains: rc.LineWindow.Contains,
		}
	}

	// The rule constructor enforces the exactly-one-variant
	// invariant, so double or missing variants are reported with
	// the rule's name attached.
	rep := patch.Replacement{Text: rc.Text, Template: rc.Template, All: rc.All}
	if rc.CommentLine {
		rep.Func = patch.CommentLine().Func
	}

	var opts []patch.RuleOption
	switch {
	case rc.SkipIfContains != "":
		opts = append(opts, patch.WithSkipIf(patch.SkipIfContains(rc.SkipIfContains)))
	case rc.CommentLine:
		// Default guard: never comment an already-commented line.
		opts = append(opts, patch.WithSkipIf(patch.SkipIfHasPrefix("//")))
	}

	return patch.NewRule(rc.Name, loc, rep, opts...)
}
