package compiler

import (
	"encoding/json"
	"testing"
)

func TestParseRelaxedJSONStrict(t *testing.T) {
	v, err := ParseRelaxedJSON(`{"a": 1}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("value = %T, want map", v)
	}
	if m["a"] != json.Number("1") {
		t.Errorf("a = %v, want 1", m["a"])
	}
}

func TestParseRelaxedJSONDialect(t *testing.T) {
	v, err := ParseRelaxedJSON(`
// starter kit
{
  sword: 'iron',
  count: 2,
}
`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := v.(map[string]interface{})
	if m["sword"] != "iron" {
		t.Errorf("sword = %v, want iron", m["sword"])
	}
	if m["count"] != json.Number("2") {
		t.Errorf("count = %v, want 2", m["count"])
	}
}

func TestParseRelaxedJSONInvalid(t *testing.T) {
	if _, err := ParseRelaxedJSON("{{{"); err == nil {
		t.Fatal("expected error for malformed fragment")
	}
}

func TestSubstitute(t *testing.T) {
	table := DefineTable{
		"NAME": {Value: "steve"},
		"MAX":  {Value: json.Number("64")},
	}
	got, err := table.Substitute("give $def(NAME) stone $(MAX)")
	if err != nil {
		t.Fatalf("substitute error: %v", err)
	}
	if got != "give steve stone 64" {
		t.Errorf("got %q, want %q", got, "give steve stone 64")
	}
}

func TestSubstituteUndefined(t *testing.T) {
	table := DefineTable{}
	if _, err := table.Substitute("x $def(MISSING) y"); err == nil {
		t.Fatal("expected error for undefined reference")
	}
}

func TestSubstituteNoReferences(t *testing.T) {
	table := DefineTable{}
	got, err := table.Substitute("plain text")
	if err != nil {
		t.Fatalf("substitute error: %v", err)
	}
	if got != "plain text" {
		t.Errorf("got %q, want unchanged text", got)
	}
}

func TestRenderContainerPrefersRaw(t *testing.T) {
	raw := "{\n  b: 2,\n  a: 1,\n}"
	v, err := ParseRelaxedJSON(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	d := Define{Value: v, Raw: raw}
	if got := d.Render(); got != "{ b: 2, a: 1, }" {
		t.Errorf("Render() = %q, want author key order preserved", got)
	}
}

func TestMergeLaterWins(t *testing.T) {
	a := DefineTable{"X": {Value: "old"}}
	a.Merge(DefineTable{"X": {Value: "new"}})
	if d, _ := a.Get("X"); d.Value != "new" {
		t.Errorf("X = %v, want new", d.Value)
	}
}

func TestFlattenTight(t *testing.T) {
	got := FlattenTight("ab\n  cd\n")
	if got != "abcd" {
		t.Errorf("FlattenTight = %q, want abcd", got)
	}
}

func TestFlattenSpace(t *testing.T) {
	got := FlattenSpace("  { a: 1,\n    b: 2 }  ")
	if got != "{ a: 1, b: 2 }" {
		t.Errorf("FlattenSpace = %q", got)
	}
}
