package types

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// SymbolIDLen is the raw identity width in bytes. The hex form used at the
// persistence boundary is twice this length.
const SymbolIDLen = 8

// SymbolID is the stable, content-derived identity of a symbol: a 64-bit
// hash over the fully qualified name and kind. It is the join key between
// symbol slabs and occurrence slabs, within one file and across files.
type SymbolID [SymbolIDLen]byte

// NewSymbolID derives the identity for a declaration. Distinct entities in
// one file produce distinct IDs as long as (scope, name, kind) differ; the
// same declaration seen from two files produces the same ID on purpose.
func NewSymbolID(scope, name string, kind SymbolKind) SymbolID {
	h := xxhash.New()
	_, _ = h.WriteString(scope)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0, byte(kind)})

	var id SymbolID
	binary.BigEndian.PutUint64(id[:], h.Sum64())
	return id
}

// String returns the hex form used at the persistence boundary.
func (id SymbolID) String() string {
	return hex.EncodeToString(id[:])
}

// IsNil reports whether the ID is the zero value.
func (id SymbolID) IsNil() bool {
	return id == SymbolID{}
}

// ParseSymbolID decodes the hex form produced by String.
func ParseSymbolID(s string) (SymbolID, error) {
	if len(s) != SymbolIDLen*2 {
		return SymbolID{}, fmt.Errorf("symbol ID must be %d hex characters, got %d", SymbolIDLen*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return SymbolID{}, errors.New("symbol ID is not valid hex: " + s)
	}
	var id SymbolID
	copy(id[:], raw)
	return id, nil
}
