package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minimact/mxc/internal/cache"
	"github.com/minimact/mxc/internal/config"
	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/compiler"
	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	var output string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile all components to IR",
		Long: `Reads every component syntax tree (*.ast.json) from the source
directory and writes one IR artifact per component. Path assignments are
diffed against the previous build so stable nodes keep their paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides mxc.yml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore previously stored path assignments")

	return cmd
}

func runBuild(output string, noCache bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load %s: %v (using defaults)", config.FileName, err)
		cfg = config.DefaultConfig()
	}
	if output != "" {
		cfg.OutDir = output
	}

	var store *cache.Cache
	if !noCache && !cfg.Cache.Disabled {
		store, err = cache.Open(cfg.Cache.Dir)
		if err != nil {
			log.Printf("⚠️  Failed to open assignment cache: %v", err)
		}
	}

	decls, err := loadComponents(cfg.SourceDir)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		log.Printf("No components found in %s", cfg.SourceDir)
		return nil
	}
	log.Printf("🔨 Compiling %d components...", len(decls))

	prev := make(map[string]*assign.Assignment)
	if store != nil {
		for _, decl := range decls {
			if asg, ok := store.Get(decl.Name); ok {
				prev[decl.Name] = asg
			}
		}
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	builder := compiler.Builder{Gap: cfg.Paths.Gap}
	results := builder.CompileBatch(decls, prev)

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("❌ %s: %v", res.Name, res.Err)
			continue
		}
		if _, err := writeIR(cfg.OutDir, res.IR); err != nil {
			failed++
			log.Printf("❌ %s: %v", res.Name, err)
			continue
		}
		if store != nil {
			if err := store.Put(res.Name, res.IR.Assignment); err != nil {
				log.Printf("⚠️  Failed to store assignment for %s: %v", res.Name, err)
			}
		}
		log.Printf("✅ %s (%d templates, %d changes)", res.Name, len(res.IR.Templates), len(res.IR.Changes))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d components failed", failed, len(results))
	}
	log.Printf("📦 Wrote %d IR artifacts to %s", len(results), cfg.OutDir)
	return nil
}

// loadComponents reads every *.ast.json under dir, sorted by file name so
// batch output order is deterministic.
func loadComponents(dir string) ([]*compiler.ComponentDecl, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, ".ast.json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)

	var decls []*compiler.ComponentDecl
	for _, file := range files {
		decl, err := loadComponent(file)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func loadComponent(path string) (*compiler.ComponentDecl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var decl compiler.ComponentDecl
	if err := json.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if decl.Name == "" {
		base := filepath.Base(path)
		decl.Name = strings.TrimSuffix(base, ".ast.json")
	}
	return &decl, nil
}

// writeIR writes <Name>.ir.json and the standalone <Name>.paths.json
// assignment artifact, returning the encoded IR.
func writeIR(outDir string, ir *compiler.ComponentIR) ([]byte, error) {
	data, err := json.MarshalIndent(ir, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode IR: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, ir.Name+".ir.json"), data, 0644); err != nil {
		return nil, err
	}
	paths, err := json.MarshalIndent(ir.Assignment, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode assignment: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, ir.Name+".paths.json"), paths, 0644); err != nil {
		return nil, err
	}
	return data, nil
}
