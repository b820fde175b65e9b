// Package datapack writes compiled artifact trees to disk in the host's
// datapack layout.
package datapack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BASTOIN/MCFN-COMPILER/compiler"
)

// functionDir and tagDir are the host's fixed layout segments under the
// namespace directory.
const (
	functionDir = "function"
	tagDir      = "tags/functions"
)

// tagFile is the host's function-tag JSON shape.
type tagFile struct {
	Values []string `json:"values"`
}

// UnitPath returns where a unit lands relative to the output root.
func UnitPath(out *compiler.Output, unitPath string) string {
	return filepath.Join(out.Namespace, functionDir, filepath.FromSlash(unitPath)+".mcfunction")
}

// Write materializes the output tree under root. Every unit file is
// truncated and rewritten, so repeated builds of identical input produce
// byte-identical trees.
func Write(root string, out *compiler.Output) error {
	for _, u := range out.Units {
		path := filepath.Join(root, UnitPath(out, u.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		body := strings.Join(u.Lines, "\n")
		if body != "" {
			body += "\n"
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return err
		}
	}

	if err := writeTag(root, out.Namespace, "load.json", out.Load); err != nil {
		return err
	}
	return writeTag(root, out.Namespace, "tick.json", out.Tick)
}

// writeTag writes one function-tag index. An empty entry list still writes
// the file, so stale indexes from a previous build never survive.
func writeTag(root, ns, name string, values []string) error {
	dir := filepath.Join(root, ns, filepath.FromSlash(tagDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if values == nil {
		values = []string{}
	}
	b, err := json.MarshalIndent(tagFile{Values: values}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0644)
}
