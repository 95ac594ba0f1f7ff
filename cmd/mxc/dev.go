package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/minimact/mxc/cmd/mxc/internal/ui"
	"github.com/minimact/mxc/internal/cache"
	"github.com/minimact/mxc/internal/config"
	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/compiler"
	"github.com/minimact/mxc/pkg/live"
	"github.com/spf13/cobra"
)

type devServer struct {
	config     *config.Config
	watcher    *fsnotify.Watcher
	store      *cache.Cache
	liveServer *live.Server
	builder    compiler.Builder
	buildMutex sync.Mutex
	tui        *ui.Program
}

func newDevCommand() *cobra.Command {
	var port int
	var host string
	var cwd string
	var plain bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch components and push IR over the live protocol",
		Long: `Watches the source directory for component changes, recompiles
changed components against their stored path assignments, and pushes the
resulting structural changes to connected sessions over WebSocket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			return runDev(host, port, plain)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory of the project (defaults to current)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain log output instead of the interactive status view")

	return cmd
}

func runDev(host string, port int, plain bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load %s: %v (using defaults)", config.FileName, err)
		cfg = config.DefaultConfig()
	}

	// CLI takes precedence over mxc.yml
	if port != 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}

	var store *cache.Cache
	if !cfg.Cache.Disabled {
		store, err = cache.Open(cfg.Cache.Dir)
		if err != nil {
			log.Printf("⚠️  Failed to open assignment cache: %v", err)
		}
	}

	server := &devServer{
		config:     cfg,
		store:      store,
		liveServer: live.NewServer(),
		builder:    compiler.Builder{Gap: cfg.Paths.Gap},
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	server.watcher = watcher

	if err := server.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	if !plain {
		server.tui = ui.NewProgram(cfg.Addr())
		go func() {
			if err := server.tui.Run(); err != nil {
				log.Printf("⚠️  Status view failed: %v", err)
			}
		}()
	}

	log.Println("🚀 Starting mxc dev server...")
	if err := server.compileAll(); err != nil {
		log.Printf("⚠️  Initial compile: %v", err)
	}

	go server.watchFiles()

	mux := http.NewServeMux()
	mux.HandleFunc("/mxc/live", server.liveServer.HandleWebSocket)
	mux.HandleFunc("/mxc/ir/", server.serveIR)

	addr := cfg.Addr()
	log.Printf("✨ Dev server running at http://%s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Shutting down dev server...")
		if server.tui != nil {
			server.tui.Quit()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	err = srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *devServer) setupWatcher() error {
	return filepath.Walk(s.config.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return s.watcher.Add(path)
		}
		return nil
	})
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingFiles []string
	var mu sync.Mutex

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				// A new directory is not covered by the startup walk.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					mu.Lock()
					pendingFiles = append(pendingFiles, s.watchNewDir(event.Name)...)
					mu.Unlock()
					debounce.Reset(100 * time.Millisecond)
					continue
				}
			}

			if !strings.HasSuffix(event.Name, ".ast.json") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			pendingFiles = append(pendingFiles, event.Name)
			mu.Unlock()

			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			mu.Lock()
			files := dedupe(pendingFiles)
			pendingFiles = nil
			mu.Unlock()

			if len(files) > 0 {
				s.handleFileChanges(files)
			}
		}
	}
}

// watchNewDir adds a directory created after startup, and any
// subdirectories, to the watcher. Component files already inside are
// returned so they compile without waiting for another write.
func (s *devServer) watchNewDir(dir string) []string {
	var files []string
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if err := s.watcher.Add(path); err != nil {
				log.Printf("⚠️  Failed to watch %s: %v", path, err)
			}
			return nil
		}
		if strings.HasSuffix(path, ".ast.json") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// compileAll compiles every component once at startup so sessions that
// connect later always have a current artifact to fetch.
func (s *devServer) compileAll() error {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	decls, err := loadComponents(s.config.SourceDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.config.OutDir, 0755); err != nil {
		return err
	}

	var failed int
	for _, decl := range decls {
		if err := s.compileOne(decl, false); err != nil {
			failed++
			log.Printf("❌ %s: %v", decl.Name, err)
		}
	}
	log.Printf("🔨 Compiled %d components (%d failed)", len(decls)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d components failed to compile", failed)
	}
	return nil
}

func (s *devServer) handleFileChanges(files []string) {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			// Deleted or renamed away; drop the stored assignment so a
			// reintroduced component starts clean.
			name := strings.TrimSuffix(filepath.Base(file), ".ast.json")
			if s.store != nil {
				s.store.Delete(name)
			}
			continue
		}

		decl, err := loadComponent(file)
		if err != nil {
			log.Printf("❌ %s: %v", filepath.Base(file), err)
			continue
		}

		start := time.Now()
		if s.tui != nil {
			s.tui.CompileStarted(decl.Name)
		}
		if err := s.compileOne(decl, true); err != nil {
			log.Printf("❌ %s: %v", decl.Name, err)
			if s.tui != nil {
				s.tui.CompileFailed(decl.Name, err)
			}
			s.liveServer.Broadcast(live.FrameBuildError, live.ErrorPayload{
				Component: decl.Name,
				Message:   err.Error(),
			})
			continue
		}
		log.Printf("✅ %s recompiled in %s", decl.Name, time.Since(start).Round(time.Millisecond))
		if s.tui != nil {
			s.tui.CompileFinished(decl.Name, time.Since(start), s.liveServer.SessionCount())
		}
	}
}

// compileOne compiles a single component against its stored assignment,
// writes the IR artifact, and optionally pushes the changes to sessions.
func (s *devServer) compileOne(decl *compiler.ComponentDecl, broadcast bool) error {
	ir, err := s.builder.Compile(decl, s.prevAssignment(decl.Name))
	if err != nil {
		return err
	}

	data, err := writeIR(s.config.OutDir, ir)
	if err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.Put(ir.Name, ir.Assignment); err != nil {
			log.Printf("⚠️  Failed to store assignment for %s: %v", ir.Name, err)
		}
	}

	if broadcast && s.liveServer.SessionCount() > 0 {
		s.liveServer.Broadcast(live.FrameReload, live.NewReloadPayload(ir, data))
	}
	return nil
}

func (s *devServer) prevAssignment(name string) *assign.Assignment {
	if s.store == nil {
		return nil
	}
	if asg, ok := s.store.Get(name); ok {
		return asg
	}
	return nil
}

// serveIR serves compiled artifacts at /mxc/ir/<Component>.ir.json
func (s *devServer) serveIR(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/mxc/ir/")
	if strings.Contains(name, "..") || strings.Contains(name, "/") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	content, err := os.ReadFile(filepath.Join(s.config.OutDir, name))
	if err != nil {
		http.Error(w, "Artifact not found", http.StatusNotFound)
		return
	}
	w.Write(content)
}
