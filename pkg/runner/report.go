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

// 📄 FileResult records the outcome of applying one patch set to
// one file. It is never mutated after the run records it.
type FileResult struct {
	Path         string
	Changed      bool
	RulesApplied []string
	RulesSkipped []string
	Warnings     []string
	Err          error
}

// 📊 RunReport aggregates one result per processed file, in
// processing order. Read-only once the run completes.
type RunReport struct {
	Results []FileResult
}

// 🔍 ByPath returns the result for a given path.
func (r *RunReport) ByPath(path string) (FileResult, bool) {
	for _, res := range r.Results {
		if res.Path == path {
			return res, true
		}
	}
	return FileResult{}, false
}

// Changed counts files whose content was rewritten (or would be,
// in dry-run mode).
func (r *RunReport) Changed() int {
	n := 0
	for _, res := range r.Results {
		if res.Changed {
			n++
		}
	}
	return n
}

// Failed counts files whose read or write failed.
func (r *RunReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// OK reports whether every binding succeeded, regardless of
// whether any content changed.
func (r *RunReport) OK() bool {
	return r.Failed() == 0
}
