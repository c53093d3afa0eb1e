package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// HCL uses its own decode structs so the block/label layout can
// differ from the flat YAML/JSON shape:
//
//	patch "pkg/health/checker.go" {
//	  rule "comment-unused-total-count" {
//	    line_window {
//	      start    = 370
//	      end      = 385
//	      contains = "totalCount"
//	    }
//	    comment_line = true
//	  }
//	}
type hclRoot struct {
	Patches []hclPatch `hcl:"patch,block"`
}

type hclPatch struct {
	Path  string    `hcl:"path,label"`
	Rules []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Name           string         `hcl:"name,label"`
	Literal        *string        `hcl:"literal,optional"`
	Regex          *string        `hcl:"regex,optional"`
	LineWindow     *hclLineWindow `hcl:"line_window,block"`
	FirstMatch     bool           `hcl:"first_match,optional"`
	Text           *string        `hcl:"text,optional"`
	Template       *string        `hcl:"template,optional"`
	All            bool           `hcl:"all,optional"`
	CommentLine    bool           `hcl:"comment_line,optional"`
	SkipIfContains *string        `hcl:"skip_if_contains,optional"`
}

type hclLineWindow struct {
	Start    int    `hcl:"start"`
	End      int    `hcl:"end"`
	Contains string `hcl:"contains"`
}

// loadHCL loads a configuration from HCL data
func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var root hclRoot
	diags = gohcl.DecodeBody(hclFile.Body, ctx, &root)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return root.toConfig(), nil
}

func (r hclRoot) toConfig() *Config {
	cfg := &Config{}
	for _, p := range r.Patches {
		pc := PatchConfig{Path: p.Path}
		for _, hr := range p.Rules {
			rc := RuleConfig{
				Name:        hr.Name,
				FirstMatch:  hr.FirstMatch,
				Text:        hr.Text,
				Template:    hr.Template,
				All:         hr.All,
				CommentLine: hr.CommentLine,
			}
			if hr.Literal != nil {
				rc.Literal = *hr.Literal
			}
			if hr.Regex != nil {
				rc.Regex = *hr.Regex
			}
			if hr.LineWindow != nil {
				rc.LineWindow = &LineWindowConfig{
					Start:    hr.LineWindow.Start,
					End:      hr.LineWindow.End,
					Contains: hr.LineWindow.Contains,
				}
			}
			if hr.SkipIfContains != nil {
				rc.SkipIfContains = *hr.SkipIfContains
			}
			pc.Rules = append(pc.Rules, rc)
		}
		cfg.Patches = append(cfg.Patches, pc)
	}
	return cfg
}
