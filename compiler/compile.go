package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Compilation driver
// ---------------------------------------------------------------------------

// SourceExt is the extension of translatable source files.
const SourceExt = ".mcfn"

// defineExt is the extension of external define fragments.
const defineExt = ".define"

// CompileResult is the outcome of one compilation run.
type CompileResult struct {
	Output  *Output
	Sources []string // compiled source paths, in compile order
}

// DiscoverSources returns the source files under input. A path naming one
// source file yields just that file; a directory is walked recursively and
// its sources returned in lexical path order, so repeated runs over the same
// tree compile in the same order.
func DiscoverSources(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(input) != SourceExt {
			return nil, fmt.Errorf("%s: not a %s source file", input, SourceExt)
		}
		return []string{input}, nil
	}

	var sources []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == SourceExt {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: no %s sources found", input, SourceExt)
	}
	return sources, nil
}

// fileBase derives the unit path prefix of a source: its path relative to
// root, without extension, in forward-slash form.
func fileBase(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, SourceExt)
	return filepath.ToSlash(rel)
}

// fileDefineResolver resolves #define NAME directives with no inline value by
// reading <dir>/<NAME>.define.
func fileDefineResolver(dir string) ExternalDefineResolver {
	return func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name+defineExt))
		if err != nil {
			return "", fmt.Errorf("external define %q: %w", name, err)
		}
		return string(b), nil
	}
}

// Compile translates every source under input into one artifact tree for the
// given namespace. All files are parsed before any is lowered, and their
// define tables merged, so a define is visible across file boundaries
// regardless of compile order. The first fault aborts the run.
func Compile(input, namespace string) (*CompileResult, error) {
	return CompileAll([]string{input}, namespace, "")
}

// CompileAll translates the sources of several input roots into one artifact
// tree. The roots share one define scope and one suspension dispatcher.
// External defines resolve against definesDir when given, otherwise against
// a defines directory under each source's own root.
func CompileAll(inputs []string, namespace, definesDir string) (*CompileResult, error) {
	type parsed struct {
		file *SourceFile
		base string
	}
	var (
		files      []parsed
		allSources []string
	)
	defines := DefineTable{}

	for _, input := range inputs {
		sources, err := DiscoverSources(input)
		if err != nil {
			return nil, err
		}
		root := input
		if info, statErr := os.Stat(input); statErr == nil && !info.IsDir() {
			root = filepath.Dir(input)
		}
		dd := definesDir
		if dd == "" {
			dd = filepath.Join(root, "defines")
		}
		resolver := fileDefineResolver(dd)

		for _, src := range sources {
			text, err := os.ReadFile(src)
			if err != nil {
				return nil, err
			}
			p, err := NewParser(string(text), src)
			if err != nil {
				return nil, err
			}
			p.SetDefineResolver(resolver)
			file, defs, err := p.ParseFile()
			if err != nil {
				return nil, err
			}
			defines.Merge(defs)
			files = append(files, parsed{file: file, base: fileBase(root, src)})
		}
		allSources = append(allSources, sources...)
	}

	lw := NewLowerer(namespace, defines)
	for _, f := range files {
		if err := lw.LowerFile(f.file, f.base); err != nil {
			return nil, err
		}
	}
	return &CompileResult{Output: lw.Finish(), Sources: allSources}, nil
}

// CompileSource translates one in-memory source, for callers that already
// hold the text. External defines resolve against definesDir, when non-empty.
func CompileSource(text, path, namespace, definesDir string) (*Output, error) {
	p, err := NewParser(text, path)
	if err != nil {
		return nil, err
	}
	if definesDir != "" {
		p.SetDefineResolver(fileDefineResolver(definesDir))
	}
	file, defs, err := p.ParseFile()
	if err != nil {
		return nil, err
	}
	base := filepath.ToSlash(strings.TrimSuffix(filepath.Base(path), SourceExt))
	if path == "" {
		base = "main"
	}
	lw := NewLowerer(namespace, defs)
	if err := lw.LowerFile(file, base); err != nil {
		return nil, err
	}
	return lw.Finish(), nil
}
