package hash

import (
	"testing"

	"github.com/BASTOIN/MCFN-COMPILER/compiler"
)

func build(t *testing.T, src string) *compiler.Output {
	t.Helper()
	out, err := compiler.CompileSource(src, "t.mcfn", "test", "")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return out
}

const sampleSrc = `
func main {
    o:x = o:a + 5
    show(v"done [o:x]")
}
`

func TestHashOutputDeterministic(t *testing.T) {
	a := HashOutput(build(t, sampleSrc))
	b := HashOutput(build(t, sampleSrc))
	if a != b {
		t.Error("equal compilations produced different fingerprints")
	}
}

func TestHashOutputSensitive(t *testing.T) {
	a := HashOutput(build(t, sampleSrc))
	b := HashOutput(build(t, "func main {\n  o:x = o:a + 6\n}\n"))
	if a == b {
		t.Error("different compilations produced the same fingerprint")
	}
}

func TestHashOutputIgnoresUnitOrder(t *testing.T) {
	x := compiler.NewOutput("test")
	x.Unit("a").Line("say 1")
	x.Unit("b").Line("say 2")

	y := compiler.NewOutput("test")
	y.Unit("b").Line("say 2")
	y.Unit("a").Line("say 1")

	if HashOutput(x) != HashOutput(y) {
		t.Error("fingerprint depends on unit creation order")
	}
}

func TestHashUnit(t *testing.T) {
	u := &compiler.Unit{Path: "p", Lines: []string{"say 1"}}
	v := &compiler.Unit{Path: "p", Lines: []string{"say 2"}}
	if HashUnit(u) == HashUnit(v) {
		t.Error("different unit bodies produced the same fingerprint")
	}
	if HashUnit(u) != HashUnit(&compiler.Unit{Path: "p", Lines: []string{"say 1"}}) {
		t.Error("equal units produced different fingerprints")
	}
}

func TestHex(t *testing.T) {
	h := HashSource("x")
	s := Hex(h)
	if len(s) != 64 {
		t.Errorf("hex length = %d, want 64", len(s))
	}
}
