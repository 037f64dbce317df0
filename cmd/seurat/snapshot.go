package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recera/seurat/internal/snapcache"
	"github.com/recera/seurat/pkg/graph"
)

// loadSnapshot reads a call graph snapshot from disk. JSON files go
// through the parse cache; YAML files are hand-authored and small, so
// they decode directly.
func loadSnapshot(path string, cache *snapcache.Cache) (*graph.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLSnapshot(data)
	default:
		return cache.Load(data)
	}
}

func decodeYAMLSnapshot(data []byte) (*graph.Snapshot, error) {
	var snap graph.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse graph snapshot: %w", err)
	}
	if err := snap.Resolve(); err != nil {
		return nil, err
	}
	return &snap, nil
}
