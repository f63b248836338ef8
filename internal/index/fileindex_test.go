package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lsi/internal/collector"
	"github.com/standardbeagle/lsi/internal/types"
)

func updateSource(t *testing.T, fi *FileIndex, path, source string) {
	t.Helper()
	unit, err := collector.NewParser().Parse(path, []byte(source))
	require.NoError(t, err)
	fi.Update(path, unit)
}

func fuzzyQualified(fi *FileIndex, req *FuzzyFindRequest) []string {
	var names []string
	fi.FuzzyFind(req, func(sym *types.Symbol) {
		names = append(names, sym.QualifiedName())
	})
	return names
}

func TestFileIndexUpdateAndQuery(t *testing.T) {
	fi := NewFileIndex()
	updateSource(t, fi, "/f.cc", `
namespace ns {
void f() {}
class X {};
}
`)

	assert.ElementsMatch(t, []string{"ns", "ns::f", "ns::X"},
		fuzzyQualified(fi, &FuzzyFindRequest{}))
	assert.ElementsMatch(t, []string{"ns::f", "ns::X"},
		fuzzyQualified(fi, &FuzzyFindRequest{Scopes: []string{"ns::"}}))
}

func TestFileIndexReplaceFile(t *testing.T) {
	fi := NewFileIndex()
	updateSource(t, fi, "/f.cc", "void old_one() {}\nvoid old_two() {}\n")
	updateSource(t, fi, "/f.cc", "void fresh() {}\n")

	assert.ElementsMatch(t, []string{"fresh"}, fuzzyQualified(fi, &FuzzyFindRequest{}))
}

func TestFileIndexRemoveFile(t *testing.T) {
	fi := NewFileIndex()
	updateSource(t, fi, "/f.cc", "void f() {}\n")

	fi.Update("/f.cc", nil)
	assert.Empty(t, fuzzyQualified(fi, &FuzzyFindRequest{}))
}

func TestFileIndexRemoveNonExisting(t *testing.T) {
	fi := NewFileIndex()
	fi.Update("/never-added.cc", nil)

	assert.Empty(t, fuzzyQualified(fi, &FuzzyFindRequest{}))
}

func TestFileIndexDuplicateAcrossFiles(t *testing.T) {
	fi := NewFileIndex()
	updateSource(t, fi, "/a.cc", "namespace ns { class X {}; }\n")
	updateSource(t, fi, "/b.cc", "namespace ns { class X {}; }\n")

	// Both contributions surface; cross-file deduplication is the
	// consumer's call, not the index's.
	matches := fuzzyQualified(fi, &FuzzyFindRequest{Query: "X"})
	assert.Equal(t, []string{"ns::X", "ns::X"}, matches)

	id := types.NewSymbolID("ns::", "X", types.SymbolKindClass)
	var hits int
	fi.Lookup(&LookupRequest{IDs: map[types.SymbolID]struct{}{id: {}}}, func(sym *types.Symbol) {
		assert.Equal(t, "X", sym.Name)
		hits++
	})
	assert.Equal(t, 2, hits)
}

func TestFileIndexCustomURIScheme(t *testing.T) {
	fi := NewFileIndexWithScheme("unittest")
	updateSource(t, fi, "/f.h", "void f();\n")

	fi.FuzzyFind(&FuzzyFindRequest{Query: "f"}, func(sym *types.Symbol) {
		assert.Equal(t, "unittest:///f.h", sym.CanonicalDeclaration.FileURI)
	})
}

func TestFileIndexOccurrencesAcrossFiles(t *testing.T) {
	fi := NewFileIndex()
	updateSource(t, fi, "/f.h", "void f();\n")
	updateSource(t, fi, "/f.cc", "void f() {}\n")

	id := types.NewSymbolID("", "f", types.SymbolKindFunction)
	req := &OccurrencesRequest{
		IDs:    map[types.SymbolID]struct{}{id: {}},
		Filter: types.OccurrenceAny,
	}
	var uris []string
	fi.FindOccurrences(req, func(occ *types.SymbolOccurrence) {
		uris = append(uris, occ.Location.FileURI)
	})
	assert.ElementsMatch(t, []string{"file:///f.h", "file:///f.cc"}, uris)

	// Only the .cc occurrence carries the definition role.
	req.Filter = types.OccurrenceDefinition
	uris = nil
	fi.FindOccurrences(req, func(occ *types.SymbolOccurrence) {
		uris = append(uris, occ.Location.FileURI)
	})
	assert.Equal(t, []string{"file:///f.cc"}, uris)
}

func TestFileIndexMemoryEstimate(t *testing.T) {
	fi := NewFileIndex()
	before := fi.EstimateMemoryUsage()
	updateSource(t, fi, "/f.cc", "void f() {}\nclass LongNamedThing {};\n")

	assert.Greater(t, fi.EstimateMemoryUsage(), before)
}

func TestFileIndexConcurrentUpdatesAndQueries(t *testing.T) {
	fi := NewFileIndex()

	const writers = 4
	const rounds = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			path := fmt.Sprintf("/file%d.cc", w)
			for r := 0; r < rounds; r++ {
				source := fmt.Sprintf("void sym%d_v%d() {}\n", w, r)
				unit, err := collector.NewParser().Parse(path, []byte(source))
				if err != nil {
					t.Error(err)
					return
				}
				fi.Update(path, unit)
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for r := 0; r < rounds*writers; r++ {
			// Every query observes a complete snapshot; the result count
			// never exceeds one live symbol per file.
			results := fuzzyQualified(fi, &FuzzyFindRequest{Query: "sym"})
			assert.LessOrEqual(t, len(results), writers)
		}
	}()
	wg.Wait()

	// After all updates land the index holds exactly the last version per
	// file.
	final := fuzzyQualified(fi, &FuzzyFindRequest{})
	assert.Len(t, final, writers)
	for w := 0; w < writers; w++ {
		assert.Contains(t, final, fmt.Sprintf("sym%d_v%d", w, rounds-1))
	}
}
