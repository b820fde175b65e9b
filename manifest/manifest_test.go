package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "arena"
namespace = "arena_pack"
version = "0.2.0"

[source]
dirs = ["src", "lib"]
defines = "shared"

[output]
root = "build/pack"
`
	if err := os.WriteFile(filepath.Join(dir, "mcfn.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "arena" {
		t.Errorf("project name = %q, want arena", m.Project.Name)
	}
	if m.Project.Namespace != "arena_pack" {
		t.Errorf("project namespace = %q, want arena_pack", m.Project.Namespace)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.Source.Defines != "shared" {
		t.Errorf("defines dir = %q, want shared", m.Source.Defines)
	}
	if m.Output.Root != "build/pack" {
		t.Errorf("output root = %q, want build/pack", m.Output.Root)
	}
	if m.Dir == "" {
		t.Error("Dir not set at load time")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "demo"
`
	if err := os.WriteFile(filepath.Join(dir, "mcfn.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Namespace != "demo" {
		t.Errorf("namespace = %q, want defaulted project name", m.Project.Namespace)
	}
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("source dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Source.Defines != "defines" {
		t.Errorf("defines dir = %q, want defines", m.Source.Defines)
	}
	if m.Output.Root != "dist" {
		t.Errorf("output root = %q, want dist", m.Output.Root)
	}
}

func TestLoadManifestBadNamespace(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "demo"
namespace = "MyPack"
`
	if err := os.WriteFile(filepath.Join(dir, "mcfn.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for uppercase namespace")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	tomlContent := `
[project]
name = "nested"
`
	if err := os.WriteFile(filepath.Join(dir, "mcfn.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("manifest not found from nested directory")
	}
	if m.Project.Name != "nested" {
		t.Errorf("project name = %q, want nested", m.Project.Name)
	}
}
