package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/seurat/cmd/seurat/internal/config"
	"github.com/recera/seurat/cmd/seurat/internal/ui"
	"github.com/recera/seurat/pkg/graph"
)

func newDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [directory]",
		Short: "Write a sample call graph and config to get started",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runDemo(dir)
		},
	}

	return cmd
}

func runDemo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := graph.Sample().MarshalIndent()
	if err != nil {
		return err
	}
	graphPath := filepath.Join(dir, "callgraph.json")
	if _, err := os.Stat(graphPath); err == nil {
		ui.Warn.Printf("  %s Overwriting %s\n", ui.WarnIcon(), graphPath)
	}
	if err := os.WriteFile(graphPath, data, 0644); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Graph = "callgraph.json"
	if err := config.Save(cfg, dir); err != nil {
		return err
	}

	ui.Banner("demo workspace")
	ui.Good.Printf("  %s Wrote %s\n", ui.StatusIcon(true), graphPath)
	ui.Good.Printf("  %s Wrote %s\n", ui.StatusIcon(true), filepath.Join(dir, "seurat.json"))
	fmt.Println()
	ui.Info.Println("  Run `seurat serve` in that directory to explore it,")
	ui.Info.Println("  then edit callgraph.json and watch the layout follow.")

	return nil
}
