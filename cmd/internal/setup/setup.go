// Package setup detects which language servers are installed and how well
// they match the files in a workspace.
package setup

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Descriptor names the binaries that can serve one language.
type Descriptor struct {
	Language   string
	Extensions []string
	Commands   []string
}

// Descriptors lists the servers crumb knows how to launch.
func Descriptors() map[string]Descriptor {
	return map[string]Descriptor{
		"typescript": {
			Language:   "typescript",
			Extensions: []string{"ts", "tsx", "js", "jsx"},
			Commands:   []string{"typescript-language-server"},
		},
		"html": {
			Language:   "html",
			Extensions: []string{"html", "htm", "xml"},
			Commands:   []string{"vscode-html-language-server", "html-languageserver"},
		},
	}
}

// Server stores availability for one supported language server.
type Server struct {
	ID               string
	Language         string
	Extensions       []string
	Commands         []string
	Available        bool
	CommandPath      string
	WorkspaceMatches int
}

// Detect scans the workspace and resolves each known server on PATH.
func Detect(workspace string) ([]Server, error) {
	descriptors := Descriptors()
	counts, err := scanExtensions(workspace)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(descriptors))
	for id := range descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	servers := make([]Server, 0, len(ids))
	for _, id := range ids {
		desc := descriptors[id]
		commandPath := findCommand(desc.Commands)
		matches := 0
		for _, ext := range desc.Extensions {
			matches += counts[strings.ToLower(ext)]
		}
		servers = append(servers, Server{
			ID:               id,
			Language:         desc.Language,
			Extensions:       desc.Extensions,
			Commands:         desc.Commands,
			Available:        commandPath != "",
			CommandPath:      commandPath,
			WorkspaceMatches: matches,
		})
	}
	return servers, nil
}

func findCommand(candidates []string) string {
	for _, cmd := range candidates {
		if cmd == "" {
			continue
		}
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}

func scanExtensions(workspace string) (map[string]int, error) {
	counts := map[string]int{}
	if workspace == "" {
		workspace = "."
	}
	info, err := os.Stat(workspace)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return counts, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return counts, nil
	}
	skipDirs := map[string]bool{
		".git":         true,
		".idea":        true,
		".vscode":      true,
		"node_modules": true,
		"vendor":       true,
		"crumb_cfg":    true,
	}
	err = filepath.WalkDir(workspace, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name())), ".")
		if ext == "" {
			return nil
		}
		counts[ext]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
