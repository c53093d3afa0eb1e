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

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/runner"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // Base width for file path
	statusWidth = 10 // Width for status text
)

// 🎯 Reporter renders a run report as human-readable console
// output while mirroring each entry into the structured log.
type Reporter struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 NewReporter creates a reporter writing console lines to w.
func NewReporter(w io.Writer, zlog zerolog.Logger) *Reporter {
	return &Reporter{
		zlog:    zlog,
		console: w,
	}
}

// 📝 formatFileResult formats one file's outcome for display
func (r *Reporter) formatFileResult(res runner.FileResult) string {
	// Determine symbol, color and status word
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case res.Err != nil:
		symbol = '✗'
		symbolColor = color.FgRed
		status = "error"
	case res.Changed:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = "fixed"
	default:
		symbol = '•'
		symbolColor = color.Faint
		status = "skipped"
	}

	detail := fmt.Sprintf("%d applied, %d skipped", len(res.RulesApplied), len(res.RulesSkipped))
	if res.Err != nil {
		detail = res.Err.Error()
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, res.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, status)),
		color.New(color.Faint).Sprint(detail))
}

// 📝 ReportFile renders one file result
func (r *Reporter) ReportFile(res runner.FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.console, r.formatFileResult(res))
	for _, w := range res.Warnings {
		fmt.Fprintf(r.console, "%*s%s %s\n",
			fileIndent+2, "",
			color.New(color.FgYellow).Sprint("!"),
			w)
	}

	evt := r.zlog.Info()
	if res.Err != nil {
		evt = r.zlog.Error().Err(res.Err)
	}
	evt.
		Str("file", res.Path).
		Bool("changed", res.Changed).
		Strs("rules_applied", res.RulesApplied).
		Strs("rules_skipped", res.RulesSkipped).
		Msg("file result")
}

// 📊 ReportRun renders a whole report followed by a summary line.
func (r *Reporter) ReportRun(report *runner.RunReport) {
	for _, res := range report.Results {
		r.ReportFile(res)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "%s %s\n",
		color.New(color.Bold).Sprint("◆"),
		fmt.Sprintf("%d file(s) changed, %d failed, %d total",
			report.Changed(), report.Failed(), len(report.Results)))

	r.zlog.Info().
		Int("changed", report.Changed()).
		Int("failed", report.Failed()).
		Int("total", len(report.Results)).
		Msg("run complete")
}
