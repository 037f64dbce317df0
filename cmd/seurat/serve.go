package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/recera/seurat/cmd/seurat/internal/config"
	"github.com/recera/seurat/cmd/seurat/internal/dashboard"
	"github.com/recera/seurat/internal/snapcache"
	"github.com/recera/seurat/pkg/graph"
	"github.com/recera/seurat/pkg/live"
	"github.com/recera/seurat/pkg/view"
)

// graphServer ties the engine, the live protocol server and the file
// watcher together for the serve command.
type graphServer struct {
	graphPath string
	absPath   string

	view    *view.View
	live    *live.Server
	cache   *snapcache.Cache
	watcher *fsnotify.Watcher
	program *tea.Program
}

func newServeCommand() *cobra.Command {
	var port int
	var host string
	var open bool
	var withTUI bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve [graph file]",
		Short: "Serve a live force-directed view of a call graph",
		Long: `Serves an interactive force-directed view of a call graph snapshot.
The snapshot file is watched for changes and every connected browser
re-layouts when it is rewritten. Without a file it serves the built-in
sample graph.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				view.SetDebugLog(log.Printf)
			}
			graphPath := ""
			if len(args) > 0 {
				graphPath = args[0]
			}
			return runServe(host, port, graphPath, open, withTUI)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default 8649)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default localhost)")
	cmd.Flags().BoolVar(&open, "open", false, "Open a browser once the server is up")
	cmd.Flags().BoolVar(&withTUI, "tui", false, "Show the terminal dashboard instead of plain logs")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log simulation driver activity")

	return cmd
}

func runServe(host string, port int, graphPath string, open, withTUI bool) error {
	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load seurat.json: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	// CLI flags take precedence over the config file
	if port != 0 {
		cfg.Serve.Port = port
	}
	if host != "" {
		cfg.Serve.Host = host
	}
	if open {
		cfg.Serve.Open = true
	}
	if graphPath == "" {
		graphPath = cfg.Graph
	}

	v := view.New(cfg.ViewConfig())

	server := &graphServer{
		graphPath: graphPath,
		view:      v,
		live:      live.NewServer(v),
		cache:     snapcache.New(0),
	}

	// Initial snapshot
	if graphPath != "" {
		if snap, err := loadSnapshot(graphPath, server.cache); err != nil {
			log.Printf("⚠️  Failed to load %s: %v (starting empty)\n", graphPath, err)
		} else if err := v.SetSnapshot(snap); err != nil {
			log.Printf("⚠️  Rejected %s: %v (starting empty)\n", graphPath, err)
		} else {
			stats := v.Stats()
			log.Printf("📊 Loaded %s (%d nodes, %d links)\n", graphPath, stats.Nodes, stats.Links)
		}
	} else {
		log.Println("📝 No graph file given, serving the built-in sample")
		if err := v.SetSnapshot(graph.Sample()); err != nil {
			return fmt.Errorf("failed to load sample graph: %w", err)
		}
	}

	// Watch the snapshot file for changes
	if graphPath != "" {
		abs, err := filepath.Abs(graphPath)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", graphPath, err)
		}
		server.absPath = abs

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()
		server.watcher = watcher

		// Watch the parent directory: editors replace files on save,
		// and a watch on the file itself dies with the old inode.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", graphPath, err)
		}

		go server.watchGraph()
	}

	v.Start()
	defer v.Close()
	defer server.live.Close()

	// Set up HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/", servePage)
	mux.HandleFunc("/live", server.live.HandleWebSocket)
	mux.HandleFunc("/favicon.ico", serveFavicon)

	addr := fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.Port)
	url := "http://" + addr

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if cfg.Serve.Open {
		go openInBrowser(url)
	}

	if withTUI {
		return server.runWithDashboard(srv, url)
	}

	log.Printf("✨ Live graph at %s\n", url)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runWithDashboard runs the HTTP server alongside the terminal
// dashboard. Engine logs are silenced so they cannot tear the TUI.
func (s *graphServer) runWithDashboard(srv *http.Server, url string) error {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	s.program = tea.NewProgram(dashboard.New(url))

	serveErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		serveErr <- err
		s.program.Quit()
	}()

	go s.pumpStats()

	if _, err := s.program.Run(); err != nil {
		return err
	}

	// Dashboard quit also stops the server.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	if err := <-serveErr; err != http.ErrServerClosed {
		return err
	}
	return nil
}

// pumpStats feeds the dashboard a fresh engine snapshot twice a second.
func (s *graphServer) pumpStats() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.view.Stats()
		s.program.Send(dashboard.StatsMsg{
			Nodes:    stats.Nodes,
			Links:    stats.Links,
			Changed:  stats.Changed,
			Sessions: s.live.SessionCount(),
			Alpha:    s.view.Alpha(),
		})
	}
}

// notify appends a line to the dashboard activity log when the TUI is
// running; plain-log mode already printed it.
func (s *graphServer) notify(line string) {
	if s.program == nil {
		return
	}
	s.program.Send(dashboard.EventMsg{Line: time.Now().Format("15:04:05") + " " + line})
}

func (s *graphServer) watchGraph() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pending bool

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != s.absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			pending = true

			// Reset debounce timer
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			if pending {
				pending = false
				s.reloadGraph()
			}
		}
	}
}

// reloadGraph swaps in the snapshot on disk. A snapshot that fails to
// parse or validate leaves the current layout untouched.
func (s *graphServer) reloadGraph() {
	base := filepath.Base(s.graphPath)

	snap, err := loadSnapshot(s.graphPath, s.cache)
	if err == nil {
		err = s.view.SetSnapshot(snap)
	}
	if err != nil {
		log.Printf("⚠️  Rejected %s: %v (keeping previous layout)\n", s.graphPath, err)
		s.notify(fmt.Sprintf("rejected %s: %v", base, err))
		return
	}

	stats := s.view.Stats()
	log.Printf("📊 Reloaded %s (%d nodes, %d links, %d changed)\n",
		s.graphPath, stats.Nodes, stats.Links, stats.Changed)
	s.notify(fmt.Sprintf("reloaded %s: %d nodes, %d links", base, stats.Nodes, stats.Links))

	// Clients that joined before the reload still hold the old scene.
	s.live.PublishScene()
}

// openInBrowser launches the default browser at url.
func openInBrowser(url string) {
	// Give the listener a moment to come up.
	time.Sleep(300 * time.Millisecond)

	var openCmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		openCmd = exec.Command("open", url)
	case "linux":
		openCmd = exec.Command("xdg-open", url)
	default:
		// Windows or other
		openCmd = exec.Command("cmd", "/c", "start", url)
	}

	if err := openCmd.Start(); err != nil {
		log.Printf("⚠️  Could not open browser: %v\n", err)
	}
}
