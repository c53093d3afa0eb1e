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

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔗 Binding pairs a target path with the patch set to apply to it.
// A path containing glob metacharacters (doublestar syntax, **
// included) expands to one file per match, all sharing the same
// set.
type Binding struct {
	Path  string
	Patch *patch.Set
}

// 🔧 Options configures a runner.
type Options struct {
	// Root is the base directory for relative paths and glob
	// expansion. Empty means the process working directory.
	Root string

	// DryRun computes every result without writing any file.
	DryRun bool

	// Parallel processes bindings concurrently. Bindings must be
	// independent in this mode: the declaration-order guarantee
	// that later bindings see earlier bindings' writes does not
	// hold. Each expanded path is owned by exactly one task, so
	// write-back per path stays serialized either way.
	Parallel bool
}

// 🏃 Runner loads each bound file, applies its patch set, and
// writes the file back only when the content changed. It holds no
// state across runs.
type Runner struct {
	opts Options
}

// 🏗️ NewRunner creates a runner with the given options.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts}
}

type task struct {
	path string
	set  *patch.Set
}

// 🏃 Run processes the bindings in declaration order and returns
// the aggregated report. Per-file I/O failures are recorded in the
// report and never abort the run; only invalid input (a binding
// with no patch set) is an error, raised before any file is
// touched.
func (r *Runner) Run(ctx context.Context, bindings []Binding) (*RunReport, error) {
	logger := zerolog.Ctx(ctx)

	for i, b := range bindings {
		if b.Patch == nil {
			return nil, errors.Errorf("binding %d (%q): patch set is required", i, b.Path)
		}
		if b.Path == "" {
			return nil, errors.Errorf("binding %d: path is required", i)
		}
	}

	tasks, err := r.expand(ctx, bindings)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("bindings", len(bindings)).Int("files", len(tasks)).Msg("starting run")

	results := make([]FileResult, len(tasks))
	if r.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, t := range tasks {
			i, t := i, t
			g.Go(func() error {
				results[i] = r.processFile(gctx, t)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Errorf("running bindings: %w", err)
		}
	} else {
		for i, t := range tasks {
			results[i] = r.processFile(ctx, t)
		}
	}

	return &RunReport{Results: results}, nil
}

// expand resolves each binding to concrete file paths, one task
// per file, preserving binding order.
func (r *Runner) expand(ctx context.Context, bindings []Binding) ([]task, error) {
	var tasks []task
	for _, b := range bindings {
		abs := b.Path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(r.opts.Root, b.Path)
		}

		if !strings.ContainsAny(b.Path, "*?[{") {
			tasks = append(tasks, task{path: abs, set: b.Patch})
			continue
		}

		matches, err := doublestar.FilepathGlob(abs)
		if err != nil {
			return nil, errors.Errorf("expanding glob %q: %w", b.Path, err)
		}
		if len(matches) == 0 {
			zerolog.Ctx(ctx).Warn().Str("pattern", b.Path).Msg("glob matched no files")
			continue
		}
		for _, m := range matches {
			tasks = append(tasks, task{path: m, set: b.Patch})
		}
	}
	return tasks, nil
}

// processFile reads one file, applies the set, and writes back on
// change. Every failure ends up in the result, not in an error
// return, so one bad file never stops the rest of the run.
func (r *Runner) processFile(ctx context.Context, t task) FileResult {
	logger := zerolog.Ctx(ctx)
	result := FileResult{Path: t.path}

	original, err := os.ReadFile(t.path)
	if err != nil {
		result.Err = errors.Errorf("reading file: %w", err)
		logger.Error().Err(err).Str("path", t.path).Msg("read failed")
		return result
	}

	content, outcome := t.set.Apply(ctx, string(original))
	result.RulesApplied = outcome.Applied
	result.RulesSkipped = outcome.Skipped
	result.Warnings = outcome.Warnings

	if content == string(original) {
		logger.Debug().Str("path", t.path).Msg("content unchanged")
		return result
	}

	if r.opts.DryRun {
		result.Changed = true
		return result
	}

	if err := writeFileAtomic(t.path, []byte(content)); err != nil {
		// The rename never happened, so the original bytes are
		// still intact on disk.
		result.Err = errors.Errorf("writing file: %w", err)
		logger.Error().Err(err).Str("path", t.path).Msg("write failed")
		return result
	}

	result.Changed = true
	logger.Debug().Str("path", t.path).Strs("rules", outcome.Applied).Msg("patched")
	return result
}
