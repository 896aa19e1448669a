package main

import (
	"fmt"
	"os"
	"path/filepath"

	"csls/internal/project"
)

// gameTarget is a game resolved from a command-line path.
type gameTarget struct {
	root   string
	config project.Config
	scenes []string
}

// resolveGame finds the project a path belongs to and lists its scenes
// without reading them.
func resolveGame(path string) (*gameTarget, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	root, cfg, err := project.ResolveRoot(abs)
	if err != nil {
		return nil, err
	}
	m := project.NewMatcher(root, cfg.Project.Exclude)
	sceneDir, err := project.FindSceneDir(root, cfg, m)
	if err != nil {
		return nil, err
	}
	scenes, err := project.ListScenes(root, sceneDir, m)
	if err != nil {
		return nil, err
	}
	return &gameTarget{root: root, config: cfg, scenes: scenes}, nil
}

func reportFailed(ws *project.Workspace) {
	for path, err := range ws.Failed {
		fmt.Fprintf(os.Stderr, "warning: failed to read %s: %v\n", path, err)
	}
}
