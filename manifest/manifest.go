// Package manifest handles mcfn.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents an mcfn.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Output  Output  `toml:"output"`

	// Dir is the directory containing the mcfn.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata. Namespace is the pack namespace every
// generated function reference is qualified with.
type Project struct {
	Name      string `toml:"name"`
	Namespace string `toml:"namespace"`
	Version   string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs    []string `toml:"dirs"`
	Defines string   `toml:"defines"`
}

// Output configures where the artifact tree is written.
type Output struct {
	Root string `toml:"root"`
}

// Load parses an mcfn.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "mcfn.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Defines == "" {
		m.Source.Defines = "defines"
	}
	if m.Output.Root == "" {
		m.Output.Root = "dist"
	}
	if m.Project.Namespace == "" {
		m.Project.Namespace = m.Project.Name
	}
	if err := ValidateNamespace(m.Project.Namespace); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find an mcfn.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "mcfn.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// DefinesPath returns the absolute path of the external defines directory.
func (m *Manifest) DefinesPath() string {
	return filepath.Join(m.Dir, m.Source.Defines)
}

// OutputRoot returns the absolute path the artifact tree is written under.
func (m *Manifest) OutputRoot() string {
	return filepath.Join(m.Dir, m.Output.Root)
}
