// Package hash computes stable content fingerprints of compiled artifact
// trees, used by the build cache to skip unchanged outputs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/BASTOIN/MCFN-COMPILER/compiler"
)

// cbor canonical mode gives deterministic map ordering, so equal trees
// fingerprint equally regardless of build order.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("hash: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// unitRecord is the frozen form of one unit for fingerprinting.
type unitRecord struct {
	Path  string   `cbor:"1,keyasint"`
	Lines []string `cbor:"2,keyasint"`
}

// treeRecord is the frozen form of a whole output tree.
type treeRecord struct {
	Namespace string       `cbor:"1,keyasint"`
	Units     []unitRecord `cbor:"2,keyasint"`
	Load      []string     `cbor:"3,keyasint"`
	Tick      []string     `cbor:"4,keyasint"`
}

// HashUnit computes the SHA-256 fingerprint of one unit's path and lines.
func HashUnit(u *compiler.Unit) [32]byte {
	data, err := cborEncMode.Marshal(unitRecord{Path: u.Path, Lines: u.Lines})
	if err != nil {
		panic(fmt.Sprintf("hash: marshal unit: %v", err))
	}
	return sha256.Sum256(data)
}

// HashOutput computes the SHA-256 fingerprint of a full output tree. Units
// are ordered by path before encoding, so generation order does not affect
// the fingerprint.
func HashOutput(out *compiler.Output) [32]byte {
	units := make([]unitRecord, 0, len(out.Units))
	for _, u := range out.Units {
		units = append(units, unitRecord{Path: u.Path, Lines: u.Lines})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })

	data, err := cborEncMode.Marshal(treeRecord{
		Namespace: out.Namespace,
		Units:     units,
		Load:      out.Load,
		Tick:      out.Tick,
	})
	if err != nil {
		panic(fmt.Sprintf("hash: marshal output: %v", err))
	}
	return sha256.Sum256(data)
}

// HashSource computes the SHA-256 fingerprint of raw source text.
func HashSource(text string) [32]byte {
	return sha256.Sum256([]byte(text))
}

// Hex renders a fingerprint in lowercase hexadecimal.
func Hex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
