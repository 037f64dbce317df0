package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/recera/seurat/cmd/seurat/internal/config"
	"github.com/recera/seurat/cmd/seurat/internal/ui"
	"github.com/recera/seurat/internal/snapcache"
	"github.com/recera/seurat/pkg/renderer/svg"
	"github.com/recera/seurat/pkg/view"
)

func newRenderCommand() *cobra.Command {
	var output string
	var steps int

	cmd := &cobra.Command{
		Use:   "render <graph file>",
		Short: "Render a call graph snapshot to a static SVG",
		Long: `Runs the force simulation to rest without serving anything and writes
the settled layout as an SVG document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], output, steps)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "graph.svg", "Output SVG path")
	cmd.Flags().IntVar(&steps, "steps", 300, "Maximum simulation steps before rendering")

	return cmd
}

func runRender(graphPath, output string, steps int) error {
	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load seurat.json: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	snap, err := loadSnapshot(graphPath, snapcache.New(0))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", graphPath, err)
	}

	v := view.New(cfg.ViewConfig())
	if err := v.SetSnapshot(snap); err != nil {
		return fmt.Errorf("failed to load %s: %w", graphPath, err)
	}

	taken := v.Settle(steps)

	links, nodes := v.Shapes()
	vcfg := v.Config()
	doc, err := svg.Render(links, nodes, vcfg.Width, vcfg.Height)
	if err != nil {
		return fmt.Errorf("failed to render SVG: %w", err)
	}

	if err := os.WriteFile(output, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	stats := v.Stats()
	ui.Banner("static render")
	ui.Table(
		[]string{"Nodes", "Links", "Changed", "Steps"},
		[][]string{{
			strconv.Itoa(stats.Nodes),
			strconv.Itoa(stats.Links),
			strconv.Itoa(stats.Changed),
			strconv.Itoa(taken),
		}},
	)
	fmt.Println()
	ui.Good.Printf("  %s Wrote %s\n", ui.StatusIcon(true), output)

	return nil
}
