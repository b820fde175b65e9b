package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Output model: generated function units and entry-point indexes
// ---------------------------------------------------------------------------

// Unit is one generated function file: an ordered list of complete host
// commands, addressed by its pack-relative path (without extension).
type Unit struct {
	Path  string
	Lines []string
}

// Line appends one command line.
func (u *Unit) Line(s string) {
	u.Lines = append(u.Lines, s)
}

// Linef appends one formatted command line.
func (u *Unit) Linef(format string, args ...interface{}) {
	u.Lines = append(u.Lines, fmt.Sprintf(format, args...))
}

// Output collects everything one compilation run generates: the units in
// creation order plus the on-load and on-tick entry-point lists.
type Output struct {
	Namespace string
	Units     []*Unit
	Load      []string // fully qualified on-load routine names
	Tick      []string // fully qualified on-tick routine names

	byPath map[string]*Unit
}

// NewOutput creates an empty output set for the given namespace.
func NewOutput(namespace string) *Output {
	return &Output{
		Namespace: namespace,
		byPath:    make(map[string]*Unit),
	}
}

// Unit returns the unit for path, creating it empty if needed. Creating a
// unit supersedes any previous file at its path: the writer truncates
// before writing, so recompilation overwrites rather than appends.
func (o *Output) Unit(path string) *Unit {
	if u, ok := o.byPath[path]; ok {
		return u
	}
	u := &Unit{Path: path}
	o.byPath[path] = u
	o.Units = append(o.Units, u)
	return u
}

// Lookup returns the unit for path, or nil.
func (o *Output) Lookup(path string) *Unit {
	return o.byPath[path]
}
