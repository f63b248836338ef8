package index

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lsi/internal/collector"
	"github.com/standardbeagle/lsi/internal/fuzzy"
	"github.com/standardbeagle/lsi/internal/types"
)

// FileIndex ties the collector, the per-file store and the search index
// together: one Update call per changed file, queries served from the merged
// snapshot installed by the most recent update.
//
// Updates for different files may race; the index converges to the state
// where every file's latest slabs are visible. Queries racing with an update
// see a consistent snapshot from either before or after it.
type FileIndex struct {
	collector *collector.Collector
	store     *FileSymbols
	mem       *MemIndex

	// rebuildMu serializes snapshot rebuilds so the merge-and-install pair
	// is atomic with respect to other rebuilds. Without it, a rebuild that
	// merged early could install over one that merged a later store state,
	// and the index would settle on a stale snapshot.
	rebuildMu sync.Mutex
}

// NewFileIndex returns an empty index producing file:// URIs and ranking
// with the default scorer.
func NewFileIndex() *FileIndex {
	return NewFileIndexWithScheme("file")
}

// NewFileIndexWithScheme returns an empty index producing scheme:// URIs in
// every reported location.
func NewFileIndexWithScheme(scheme string) *FileIndex {
	return &FileIndex{
		collector: collector.NewCollectorWithScheme(scheme),
		store:     NewFileSymbols(),
		mem:       NewMemIndex(),
	}
}

// SetScorer replaces the ranking strategy. Call before serving queries.
func (fi *FileIndex) SetScorer(scorer fuzzy.Scorer) {
	fi.mem = NewMemIndexWithScorer(scorer)
	fi.rebuild()
}

// Update replaces path's contribution to the index with the symbols
// collected from unit, then rebuilds the merged snapshot. A nil unit removes
// the file; removing an unknown path still succeeds (and still rebuilds).
// When topLevel nodes are given, collection is restricted to them. The unit
// is closed before Update returns.
func (fi *FileIndex) Update(path string, unit *collector.ParsedUnit, topLevel ...tree_sitter.Node) {
	if unit == nil {
		fi.store.Update(path, nil, nil)
	} else {
		symbols, occurrences := fi.collector.Collect(unit, topLevel...)
		unit.Close()
		fi.store.Update(path, symbols, occurrences)
	}
	fi.rebuild()
}

// BatchUpdate is one file's contribution in an UpdateBatch call.
type BatchUpdate struct {
	Path string
	// Unit is the parsed content; nil removes the file.
	Unit *collector.ParsedUnit
}

// UpdateBatch applies several file updates and rebuilds the snapshot once.
// Initial scans use this to avoid one full rebuild per file; the semantics
// per file are identical to Update.
func (fi *FileIndex) UpdateBatch(updates []BatchUpdate) {
	for _, u := range updates {
		if u.Unit == nil {
			fi.store.Update(u.Path, nil, nil)
			continue
		}
		symbols, occurrences := fi.collector.Collect(u.Unit)
		u.Unit.Close()
		fi.store.Update(u.Path, symbols, occurrences)
	}
	fi.rebuild()
}

// rebuild installs a fresh snapshot from the current merged view. Full
// rebuilds per update keep query-side consistency trivial; see MemIndex.
func (fi *FileIndex) rebuild() {
	fi.rebuildMu.Lock()
	defer fi.rebuildMu.Unlock()
	fi.mem.Build(fi.store.AllSymbols(), fi.store.AllOccurrences())
}

// FuzzyFind answers an approximate name query against the current snapshot.
// Returns true if the result set was complete.
func (fi *FileIndex) FuzzyFind(req *FuzzyFindRequest, callback func(*types.Symbol)) bool {
	return fi.mem.FuzzyFind(req, callback)
}

// Lookup retrieves symbols by exact ID from the current snapshot.
func (fi *FileIndex) Lookup(req *LookupRequest, callback func(*types.Symbol)) {
	fi.mem.Lookup(req, callback)
}

// FindOccurrences retrieves the recorded mentions of a set of symbols.
func (fi *FileIndex) FindOccurrences(req *OccurrencesRequest, callback func(*types.SymbolOccurrence)) {
	fi.mem.FindOccurrences(req, callback)
}

// EstimateMemoryUsage approximates the bytes retained by the backing slabs
// plus the current snapshot. Diagnostics only.
func (fi *FileIndex) EstimateMemoryUsage() uint64 {
	return fi.store.EstimateMemoryUsage() + fi.mem.EstimateMemoryUsage()
}

// Stats describes the index's current size.
type Stats struct {
	Files       int
	Symbols     int
	MemoryBytes uint64
}

// Stats returns a point-in-time size summary.
func (fi *FileIndex) Stats() Stats {
	var symbols int
	fi.mem.FuzzyFind(&FuzzyFindRequest{}, func(*types.Symbol) { symbols++ })
	return Stats{
		Files:       fi.store.Len(),
		Symbols:     symbols,
		MemoryBytes: fi.EstimateMemoryUsage(),
	}
}
