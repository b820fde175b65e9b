package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Define tables: #define NAME { ... } and external defines/NAME.define
// ---------------------------------------------------------------------------

// Define is one macro definition. Every define carries a structured Value;
// defines that came from literal JSON text additionally preserve that text
// in Raw. Consumers pick the representation they need: raw text when the
// emitted command must reproduce the author's fragment, the value otherwise.
type Define struct {
	Value interface{}
	Raw   string // original JSON text, "" when the define was a bare scalar
}

// HasRaw reports whether the define preserved its source text.
func (d Define) HasRaw() bool { return d.Raw != "" }

// DefineTable maps define names to their definitions. Tables from several
// source files are merged into one per compilation run; later definitions
// win, matching the original multi-file merge order.
type DefineTable map[string]Define

// Merge copies every entry of other into t.
func (t DefineTable) Merge(other DefineTable) {
	for name, d := range other {
		t[name] = d
	}
}

// Get returns the define for name.
func (t DefineTable) Get(name string) (Define, bool) {
	d, ok := t[name]
	return d, ok
}

var defRefRe = regexp.MustCompile(`\$(?:def)?\(([A-Za-z_][A-Za-z0-9_]*)\)`)

// Substitute replaces every $def(NAME) / $(NAME) in text with the define's
// rendering. Referencing an undefined name is a fault.
func (t DefineTable) Substitute(text string) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	var substErr error
	out := defRefRe.ReplaceAllStringFunc(text, func(m string) string {
		name := defRefRe.FindStringSubmatch(m)[1]
		d, ok := t[name]
		if !ok {
			if substErr == nil {
				substErr = fmt.Errorf("undefined $def(%s)", name)
			}
			return m
		}
		return d.Render()
	})
	if substErr != nil {
		return "", substErr
	}
	return out, nil
}

// Render produces the single-line textual form of a define for embedding in
// a command. Container values render through their preserved raw text so the
// author's key order and spacing survive; scalars render directly.
func (d Define) Render() string {
	switch v := d.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		if d.Raw != "" {
			return FlattenSpace(d.Raw)
		}
		return "null"
	default:
		// map / slice
		if d.Raw != "" {
			return FlattenSpace(d.Raw)
		}
		b, err := marshalNoEscape(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// FlattenSpace joins the lines of a multi-line fragment with single spaces.
func FlattenSpace(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	return strings.Join(lines, " ")
}

// FlattenTight joins the lines of a multi-line fragment with nothing between
// them. Used when a run(v"$def(NAME)") emits a raw fragment as one command.
func FlattenTight(s string) string {
	var b strings.Builder
	for _, ln := range strings.Split(s, "\n") {
		b.WriteString(strings.TrimSpace(ln))
	}
	return b.String()
}

// marshalNoEscape marshals v as JSON without HTML escaping, on one line.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ---------------------------------------------------------------------------
// Relaxed JSON
// ---------------------------------------------------------------------------

var (
	lineCommentRe = regexp.MustCompile(`(?m)//.*$`)
	hashCommentRe = regexp.MustCompile(`(?m)#.*$`)
	unquotedKeyRe = regexp.MustCompile(`([{\[,]|^)\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseRelaxedJSON decodes text as JSON, falling back to a relaxed dialect
// when strict decoding fails: // and # comments, single quotes, unquoted
// object keys and trailing commas are tolerated.
func ParseRelaxedJSON(text string) (interface{}, error) {
	if v, err := decodeJSON(text); err == nil {
		return v, nil
	}
	s := strings.TrimSpace(text)
	s = lineCommentRe.ReplaceAllString(s, "")
	s = hashCommentRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", `"`)
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = trailingComma.ReplaceAllString(s, "$1")
	v, err := decodeJSON(s)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON fragment: %w", err)
	}
	return v, nil
}

func decodeJSON(text string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
