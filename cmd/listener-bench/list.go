package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-listener-bench/internal/config"
)

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the resolved candidates and sender command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.prepare()
			if err != nil {
				return err
			}
			if cfg.JSON {
				return writeListJSON(cmd.OutOrStdout(), cfg)
			}
			printList(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

type listEntry struct {
	Label   string   `json:"label"`
	Dir     string   `json:"dir"`
	Command []string `json:"command"`
	Env     []string `json:"env,omitempty"`
}

type listDoc struct {
	ProjectRoot string      `json:"project_root"`
	Target      string      `json:"target"`
	Marker      string      `json:"marker"`
	Sender      listEntry   `json:"sender"`
	Candidates  []listEntry `json:"candidates"`
}

func writeListJSON(w io.Writer, cfg *config.Config) error {
	sender := cfg.SenderCommand()
	doc := listDoc{
		ProjectRoot: cfg.ProjectRoot,
		Target:      cfg.TargetAddress,
		Marker:      cfg.Marker,
		Sender:      listEntry{Label: "sender", Dir: sender.Dir, Command: sender.Argv(), Env: sender.Env},
	}
	for _, cc := range cfg.Selected() {
		c := cfg.CandidateCommand(cc)
		doc.Candidates = append(doc.Candidates, listEntry{Label: cc.Label, Dir: c.Dir, Command: c.Argv(), Env: c.Env})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printList(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Project root: %s\n", cfg.ProjectRoot)
	fmt.Fprintf(w, "Target:       %s\n", cfg.TargetAddress)
	fmt.Fprintf(w, "Marker:       %q\n", cfg.Marker)

	sender := cfg.SenderCommand()
	fmt.Fprintf(w, "Sender:       %s $ %s\n", sender.Dir, sender)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Candidates:")
	for i, cc := range cfg.Selected() {
		c := cfg.CandidateCommand(cc)
		fmt.Fprintf(w, "  %d. %-30s %s $ %s\n", i+1, cc.Label, c.Dir, c)
	}
}
