package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// CandidateFile is the on-disk form of a candidate list.
//
//	sender:
//	  dir: ts
//	  command: [npm, run, send]
//	candidates:
//	  - label: Rust (Native)
//	    dir: rust
//	    command: [target/debug/native]
type CandidateFile struct {
	Sender     *SenderConfig     `yaml:"sender" toml:"sender"`
	Candidates []CandidateConfig `yaml:"candidates" toml:"candidates"`
}

// LoadCandidateFile reads a YAML (.yaml, .yml) or TOML (.toml) candidate
// file. Unknown keys are rejected.
func LoadCandidateFile(path string) (*CandidateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate file: %w", err)
	}

	var f CandidateFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("candidate file %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}

	return &f, nil
}

// ApplyCandidateFile replaces the candidate list, and the sender if the
// file has one.
func (c *Config) ApplyCandidateFile(f *CandidateFile) {
	c.Candidates = f.Candidates
	if f.Sender != nil {
		c.Sender = *f.Sender
	}
}

// Selected returns the candidates to run, in configured order, filtered
// by Only when it is set. Only must have been validated.
func (c *Config) Selected() []CandidateConfig {
	if len(c.Only) == 0 {
		return c.Candidates
	}
	only := mapset.NewSet(c.Only...)
	out := make([]CandidateConfig, 0, len(c.Only))
	for _, cc := range c.Candidates {
		if only.Contains(cc.Label) {
			out = append(out, cc)
		}
	}
	return out
}
