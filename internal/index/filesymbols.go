// Package index implements the file-granularity symbol index: a per-file
// slab store with replace-whole-file semantics, an in-memory search index
// rebuilt from merged snapshots, and the facade that ties them to the
// collector.
package index

import (
	"sync"

	"github.com/standardbeagle/lsi/internal/types"
)

// OccurrenceMap is a merged view of occurrences across all active files:
// symbol ID to the concatenation of every live occurrence list whose ID
// matches. The slices alias the contributing slabs' storage and must not be
// modified.
type OccurrenceMap map[types.SymbolID][]types.SymbolOccurrence

// FileSymbols stores, per file path, the latest symbol and occurrence slabs.
// Each update replaces a file's slabs wholesale; there is no partial edit.
//
// Snapshot semantics: AllSymbols and AllOccurrences return merged views that
// reference the slabs live at the instant of the call. The views pin those
// slabs (the garbage collector frees a replaced slab only once the last view
// referencing it is gone), so a query iterating an old view stays valid
// while updates continue.
//
// The mutex guards only the map swap in Update and the handle copy at the
// start of the merge builders, keeping critical sections minimal: a long
// merge never blocks an update and an update never blocks a merge.
type FileSymbols struct {
	mu              sync.Mutex
	fileSlabs       map[string]*types.SymbolSlab
	fileOccurrences map[string]*types.OccurrenceSlab
}

// NewFileSymbols returns an empty store.
func NewFileSymbols() *FileSymbols {
	return &FileSymbols{
		fileSlabs:       make(map[string]*types.SymbolSlab),
		fileOccurrences: make(map[string]*types.OccurrenceSlab),
	}
}

// Update replaces the slabs for path. A nil slab removes that file's
// symbols; a nil occurrence slab removes its occurrences; both nil removes
// the file entirely. Removing an unknown path is a no-op. Update never
// fails.
func (fs *FileSymbols) Update(path string, slab *types.SymbolSlab, occurrences *types.OccurrenceSlab) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if slab == nil {
		delete(fs.fileSlabs, path)
	} else {
		fs.fileSlabs[path] = slab
	}
	if occurrences == nil {
		delete(fs.fileOccurrences, path)
	} else {
		fs.fileOccurrences[path] = occurrences
	}
}

// AllSymbols returns a merged view of every live symbol across all files.
// Symbols with equal IDs contributed by different files all appear; only
// within-file deduplication ever happens (in the slab builder). The returned
// pointers stay valid for as long as the caller holds them, regardless of
// later updates. Cost is O(total live symbols).
func (fs *FileSymbols) AllSymbols() []*types.Symbol {
	fs.mu.Lock()
	slabs := make([]*types.SymbolSlab, 0, len(fs.fileSlabs))
	for _, slab := range fs.fileSlabs {
		slabs = append(slabs, slab)
	}
	fs.mu.Unlock()

	// Concatenation runs unlocked against the copied handles.
	total := 0
	for _, slab := range slabs {
		total += slab.Len()
	}
	symbols := make([]*types.Symbol, 0, total)
	for _, slab := range slabs {
		for i := 0; i < slab.Len(); i++ {
			symbols = append(symbols, slab.At(i))
		}
	}
	return symbols
}

// Len returns the number of files with at least one live slab.
func (fs *FileSymbols) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	paths := make(map[string]struct{}, len(fs.fileSlabs))
	for path := range fs.fileSlabs {
		paths[path] = struct{}{}
	}
	for path := range fs.fileOccurrences {
		paths[path] = struct{}{}
	}
	return len(paths)
}

// EstimateMemoryUsage approximates the bytes retained by every live slab.
func (fs *FileSymbols) EstimateMemoryUsage() uint64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var total uint64
	for _, slab := range fs.fileSlabs {
		total += slab.EstimateMemoryUsage()
	}
	for _, slab := range fs.fileOccurrences {
		total += slab.EstimateMemoryUsage()
	}
	return total
}

// AllOccurrences returns a merged view of every live occurrence across all
// files, concatenating per-file lists under each shared ID. Same lifetime
// guarantee as AllSymbols. Cost is O(total live occurrences).
func (fs *FileSymbols) AllOccurrences() OccurrenceMap {
	fs.mu.Lock()
	slabs := make([]*types.OccurrenceSlab, 0, len(fs.fileOccurrences))
	for _, slab := range fs.fileOccurrences {
		slabs = append(slabs, slab)
	}
	fs.mu.Unlock()

	merged := make(OccurrenceMap)
	for _, slab := range slabs {
		slab.ForEach(func(id types.SymbolID, occs []types.SymbolOccurrence) {
			merged[id] = append(merged[id], occs...)
		})
	}
	return merged
}
