package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolIDStable(t *testing.T) {
	a := NewSymbolID("ns::", "f", SymbolKindFunction)
	b := NewSymbolID("ns::", "f", SymbolKindFunction)
	assert.Equal(t, a, b, "same declaration must hash to the same ID")
}

func TestSymbolIDDistinguishesFields(t *testing.T) {
	base := NewSymbolID("ns::", "f", SymbolKindFunction)

	assert.NotEqual(t, base, NewSymbolID("ns::", "g", SymbolKindFunction))
	assert.NotEqual(t, base, NewSymbolID("other::", "f", SymbolKindFunction))
	assert.NotEqual(t, base, NewSymbolID("ns::", "f", SymbolKindClass))

	// The separator byte keeps (scope, name) concatenations apart.
	assert.NotEqual(t, NewSymbolID("ab", "c", SymbolKindClass), NewSymbolID("a", "bc", SymbolKindClass))
}

func TestSymbolIDHexRoundTrip(t *testing.T) {
	id := NewSymbolID("ns::", "X", SymbolKindClass)

	encoded := id.String()
	require.Len(t, encoded, SymbolIDLen*2)

	decoded, err := ParseSymbolID(encoded)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestParseSymbolIDRejectsInvalid(t *testing.T) {
	_, err := ParseSymbolID("")
	assert.Error(t, err)

	_, err = ParseSymbolID("abcd")
	assert.Error(t, err, "short input")

	_, err = ParseSymbolID("zzzzzzzzzzzzzzzz")
	assert.Error(t, err, "non-hex input")
}

func TestOccurrenceKindIntersects(t *testing.T) {
	declDef := OccurrenceDeclaration | OccurrenceDefinition

	assert.True(t, declDef.Intersects(OccurrenceDefinition))
	assert.True(t, declDef.Intersects(OccurrenceAny))
	assert.False(t, declDef.Intersects(OccurrenceReference))
	assert.False(t, OccurrenceKind(0).Intersects(OccurrenceAny))
}
