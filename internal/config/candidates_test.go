package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCandidateFile_YAML(t *testing.T) {
	path := writeFile(t, "candidates.yaml", `
sender:
  dir: tools
  command: [node, send.js]
  env: [RPC_URL=http://localhost:8899]
candidates:
  - label: Go (Native)
    dir: go
    command: [./listener, --ws]
  - label: Rust (Native)
    dir: rust
    command: [target/release/native]
`)

	f, err := LoadCandidateFile(path)
	if err != nil {
		t.Fatalf("LoadCandidateFile() error = %v", err)
	}
	if f.Sender == nil || f.Sender.Dir != "tools" || len(f.Sender.Env) != 1 {
		t.Errorf("Sender = %+v", f.Sender)
	}
	if len(f.Candidates) != 2 || f.Candidates[0].Label != "Go (Native)" || f.Candidates[0].Command[1] != "--ws" {
		t.Errorf("Candidates = %+v", f.Candidates)
	}

	cfg := DefaultConfig()
	cfg.ApplyCandidateFile(f)
	if len(cfg.Candidates) != 2 || cfg.Sender.Command[0] != "node" {
		t.Errorf("ApplyCandidateFile() = %+v / %+v", cfg.Candidates, cfg.Sender)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadCandidateFile_TOML(t *testing.T) {
	path := writeFile(t, "candidates.toml", `
[[candidates]]
label = "TypeScript (Native)"
dir = "ts"
command = ["npm", "run", "native"]
`)

	f, err := LoadCandidateFile(path)
	if err != nil {
		t.Fatalf("LoadCandidateFile() error = %v", err)
	}
	if f.Sender != nil {
		t.Errorf("Sender = %+v, want nil", f.Sender)
	}
	if len(f.Candidates) != 1 || f.Candidates[0].Dir != "ts" {
		t.Errorf("Candidates = %+v", f.Candidates)
	}

	cfg := DefaultConfig()
	cfg.ApplyCandidateFile(f)
	if cfg.Sender.Command[0] != "npm" {
		t.Error("sender replaced although the file has none")
	}
}

func TestLoadCandidateFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown yaml key", "c.yml", "candidates:\n  - label: x\n    cmd: [y]\n", "cmd"},
		{"unknown toml key", "c.toml", "[[candidates]]\nlabel = \"x\"\ncmd = [\"y\"]\n", "parsing"},
		{"bad yaml", "c.yaml", "candidates: [\n", "parsing"},
		{"unsupported extension", "c.json", "{}", "unsupported extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCandidateFile(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("LoadCandidateFile() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	if _, err := LoadCandidateFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file error = nil")
	}
}
