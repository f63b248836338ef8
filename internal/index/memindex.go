package index

import (
	"sort"
	"sync/atomic"
	"unsafe"

	"github.com/standardbeagle/lsi/internal/fuzzy"
	"github.com/standardbeagle/lsi/internal/types"
)

// FuzzyFindRequest describes an approximate name search.
type FuzzyFindRequest struct {
	// Query is matched against symbol names; empty matches everything.
	Query string
	// Scopes restricts results to symbols whose Scope equals one of the
	// entries exactly (prefix strings like "ns::", "" for top scope). Empty
	// means unrestricted.
	Scopes []string
	// Limit caps the number of callback invocations after ranking; zero
	// means unlimited.
	Limit int
	// RestrictForCodeCompletion drops symbols not flagged for completion.
	RestrictForCodeCompletion bool
}

// LookupRequest asks for symbols by exact ID.
type LookupRequest struct {
	IDs map[types.SymbolID]struct{}
}

// OccurrencesRequest asks for the mentions of a set of symbols, restricted
// to the roles in Filter.
type OccurrencesRequest struct {
	IDs    map[types.SymbolID]struct{}
	Filter types.OccurrenceKind
}

// indexState is one immutable snapshot of the merged index. Queries load a
// state pointer once and run entirely against it, so a concurrent rebuild is
// never observed mid-query.
type indexState struct {
	symbols     []*types.Symbol
	occurrences OccurrenceMap
	memory      uint64
}

var emptyState = &indexState{occurrences: make(OccurrenceMap)}

// MemIndex answers queries over the most recently installed merged view.
// Build replaces the whole snapshot; reads are lock-free. Rebuilding from
// scratch on every file update is deliberate: updates arrive at human edit
// pace while queries are frequent, and full rebuilds sidestep the
// consistency hazards of incremental index maintenance.
type MemIndex struct {
	state  atomic.Pointer[indexState]
	scorer fuzzy.Scorer
}

// NewMemIndex returns an empty index using the default ranking strategy.
func NewMemIndex() *MemIndex {
	return NewMemIndexWithScorer(fuzzy.NewDefaultScorer())
}

// NewMemIndexWithScorer returns an empty index ranking with scorer.
func NewMemIndexWithScorer(scorer fuzzy.Scorer) *MemIndex {
	m := &MemIndex{scorer: scorer}
	m.state.Store(emptyState)
	return m
}

// Build installs a new snapshot from a merged view. The view's backing
// slabs stay pinned until the snapshot is itself replaced and every query
// over it has finished. Queries racing with Build see either the old or the
// new snapshot, never a mixture.
func (m *MemIndex) Build(symbols []*types.Symbol, occurrences OccurrenceMap) {
	if occurrences == nil {
		occurrences = make(OccurrenceMap)
	}
	m.state.Store(&indexState{
		symbols:     symbols,
		occurrences: occurrences,
		memory:      estimateStateMemory(symbols, occurrences),
	})
}

// scoredSymbol pairs a matched symbol with its ranking score.
type scoredSymbol struct {
	symbol *types.Symbol
	score  float64
}

// FuzzyFind invokes callback once per matching symbol, best match first.
// Ranking is deterministic for identical index state and request. Symbols
// contributed by different files are reported once per contribution, even
// when they share an ID. Returns true if the result set was complete, false
// if it was truncated by Limit.
func (m *MemIndex) FuzzyFind(req *FuzzyFindRequest, callback func(*types.Symbol)) bool {
	state := m.state.Load()

	var matches []scoredSymbol
	for _, sym := range state.symbols {
		if req.RestrictForCodeCompletion && !sym.IsIndexedForCodeCompletion {
			continue
		}
		if !scopeAllowed(sym.Scope, req.Scopes) {
			continue
		}
		score, ok := m.scorer.Score(req.Query, sym.Name)
		if !ok {
			continue
		}
		matches = append(matches, scoredSymbol{symbol: sym, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.symbol.Name != b.symbol.Name {
			return a.symbol.Name < b.symbol.Name
		}
		if a.symbol.Scope != b.symbol.Scope {
			return a.symbol.Scope < b.symbol.Scope
		}
		return a.symbol.ID.String() < b.symbol.ID.String()
	})

	complete := true
	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
		complete = false
	}
	for _, match := range matches {
		callback(match.symbol)
	}
	return complete
}

// Lookup invokes callback once per symbol whose ID is in the request. If
// several live symbols across files share an ID, every one is delivered;
// lookup does not deduplicate.
func (m *MemIndex) Lookup(req *LookupRequest, callback func(*types.Symbol)) {
	state := m.state.Load()
	for _, sym := range state.symbols {
		if _, ok := req.IDs[sym.ID]; ok {
			callback(sym)
		}
	}
}

// FindOccurrences invokes callback once per occurrence of a requested
// symbol whose kind intersects the request filter, across all files.
func (m *MemIndex) FindOccurrences(req *OccurrencesRequest, callback func(*types.SymbolOccurrence)) {
	state := m.state.Load()
	for id := range req.IDs {
		occs := state.occurrences[id]
		for i := range occs {
			if occs[i].Kind.Intersects(req.Filter) {
				callback(&occs[i])
			}
		}
	}
}

// EstimateMemoryUsage returns an approximate byte count of the retained
// snapshot. Diagnostics only; not exercised by correctness tests.
func (m *MemIndex) EstimateMemoryUsage() uint64 {
	return m.state.Load().memory
}

func scopeAllowed(scope string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if scope == s {
			return true
		}
	}
	return false
}

func estimateStateMemory(symbols []*types.Symbol, occurrences OccurrenceMap) uint64 {
	total := uint64(len(symbols)) * uint64(unsafe.Sizeof((*types.Symbol)(nil)))
	for _, sym := range symbols {
		total += uint64(unsafe.Sizeof(*sym)) +
			uint64(len(sym.Name)+len(sym.Scope)+len(sym.Documentation)+len(sym.Signature))
	}
	for _, occs := range occurrences {
		for i := range occs {
			total += uint64(unsafe.Sizeof(occs[i])) + uint64(len(occs[i].Location.FileURI))
		}
	}
	return total
}
