package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lsi/internal/types"
)

func makeSymbol(scope, name string, kind types.SymbolKind) types.Symbol {
	return types.Symbol{
		ID:    types.NewSymbolID(scope, name, kind),
		Name:  name,
		Scope: scope,
		SymInfo: types.SymbolInfo{
			Kind: kind,
			Lang: types.LangCpp,
		},
		IsIndexedForCodeCompletion: true,
	}
}

func makeSlab(names ...string) *types.SymbolSlab {
	b := types.NewSymbolSlabBuilder()
	for _, name := range names {
		b.Insert(makeSymbol("", name, types.SymbolKindFunction))
	}
	return b.Build()
}

func makeOccSlab(uri string, syms ...types.Symbol) *types.OccurrenceSlab {
	b := types.NewOccurrenceSlabBuilder()
	for _, sym := range syms {
		b.Insert(sym.ID, types.SymbolOccurrence{
			Location: types.SymbolLocation{FileURI: uri},
			Kind:     types.OccurrenceDeclaration,
		})
	}
	return b.Build()
}

func namesOf(symbols []*types.Symbol) []string {
	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, sym.Name)
	}
	return names
}

func TestFileSymbolsUpdateAndMerge(t *testing.T) {
	fs := NewFileSymbols()
	fs.Update("f1.cc", makeSlab("one", "two"), nil)
	fs.Update("f2.cc", makeSlab("three"), nil)

	assert.ElementsMatch(t, []string{"one", "two", "three"}, namesOf(fs.AllSymbols()))
}

func TestFileSymbolsReplaceIsWholesale(t *testing.T) {
	fs := NewFileSymbols()
	fs.Update("f1.cc", makeSlab("one", "two"), nil)
	fs.Update("f1.cc", makeSlab("three"), nil)

	assert.ElementsMatch(t, []string{"three"}, namesOf(fs.AllSymbols()))
}

func TestFileSymbolsOverlap(t *testing.T) {
	fs := NewFileSymbols()
	fs.Update("f1.cc", makeSlab("one", "two", "three"), nil)
	fs.Update("f2.cc", makeSlab("three", "four", "five"), nil)

	// The shared symbol appears once per contributing file; merging never
	// deduplicates across files.
	assert.ElementsMatch(t,
		[]string{"one", "two", "three", "three", "four", "five"},
		namesOf(fs.AllSymbols()))
}

func TestFileSymbolsRemove(t *testing.T) {
	fs := NewFileSymbols()
	fs.Update("f1.cc", makeSlab("one"), nil)
	fs.Update("f1.cc", nil, nil)

	assert.Empty(t, fs.AllSymbols())

	// Removing a path that was never added succeeds.
	fs.Update("ghost.cc", nil, nil)
	assert.Empty(t, fs.AllSymbols())
}

func TestFileSymbolsSnapshotAliveAfterRemove(t *testing.T) {
	fs := NewFileSymbols()
	fs.Update("f1.cc", makeSlab("one", "two"), nil)

	view := fs.AllSymbols()
	require.Len(t, view, 2)

	fs.Update("f1.cc", nil, nil)

	// The view taken before the removal keeps its slabs alive and intact.
	assert.ElementsMatch(t, []string{"one", "two"}, namesOf(view))
	assert.Empty(t, fs.AllSymbols())
}

func TestFileSymbolsOccurrencesMergeAcrossFiles(t *testing.T) {
	shared := makeSymbol("", "f", types.SymbolKindFunction)

	fs := NewFileSymbols()
	fs.Update("f.h", nil, makeOccSlab("file:///f.h", shared))
	fs.Update("f.cc", nil, makeOccSlab("file:///f.cc", shared))

	merged := fs.AllOccurrences()
	require.Len(t, merged[shared.ID], 2)

	uris := []string{
		merged[shared.ID][0].Location.FileURI,
		merged[shared.ID][1].Location.FileURI,
	}
	assert.ElementsMatch(t, []string{"file:///f.h", "file:///f.cc"}, uris)
}

func TestFileSymbolsSymbolAndOccurrenceHalvesIndependent(t *testing.T) {
	sym := makeSymbol("", "f", types.SymbolKindFunction)

	fs := NewFileSymbols()
	fs.Update("f.cc", makeSlab("f"), makeOccSlab("file:///f.cc", sym))

	// Dropping only the occurrence half keeps the symbols.
	fs.Update("f.cc", makeSlab("f"), nil)
	assert.Len(t, fs.AllSymbols(), 1)
	assert.Empty(t, fs.AllOccurrences())
}

func TestFileSymbolsMemoryEstimateGrows(t *testing.T) {
	fs := NewFileSymbols()
	before := fs.EstimateMemoryUsage()
	fs.Update("f1.cc", makeSlab("a_rather_long_symbol_name"), nil)

	assert.Greater(t, fs.EstimateMemoryUsage(), before)
}
