package types

import (
	"sort"
	"unsafe"
)

// SymbolSlab is a frozen collection of the symbols collected from one file in
// one analysis pass. No two symbols in a slab share an ID; the builder merges
// duplicate insertions before the slab is built. Slabs are never mutated
// after Build, so they are safe to share by pointer across goroutines, and a
// merged view holding pointers into a slab keeps it alive after the per-file
// store has replaced it.
type SymbolSlab struct {
	symbols []Symbol
}

// Len returns the number of symbols in the slab.
func (s *SymbolSlab) Len() int {
	return len(s.symbols)
}

// At returns a pointer to the i-th symbol. The pointee must not be modified.
func (s *SymbolSlab) At(i int) *Symbol {
	return &s.symbols[i]
}

// Find returns the symbol with the given ID, or nil.
func (s *SymbolSlab) Find(id SymbolID) *Symbol {
	for i := range s.symbols {
		if s.symbols[i].ID == id {
			return &s.symbols[i]
		}
	}
	return nil
}

// EstimateMemoryUsage approximates the bytes retained by the slab, including
// string payloads. Diagnostics only.
func (s *SymbolSlab) EstimateMemoryUsage() uint64 {
	total := uint64(unsafe.Sizeof(*s))
	for i := range s.symbols {
		total += estimateSymbolSize(&s.symbols[i])
	}
	return total
}

func estimateSymbolSize(sym *Symbol) uint64 {
	return uint64(unsafe.Sizeof(*sym)) +
		uint64(len(sym.Name)+len(sym.Scope)+
			len(sym.CanonicalDeclaration.FileURI)+len(sym.Definition.FileURI)+
			len(sym.Signature)+len(sym.CompletionSnippetSuffix)+
			len(sym.Documentation)+len(sym.ReturnType)+len(sym.IncludeHeader))
}

// SymbolSlabBuilder accumulates symbols for one file and freezes them into a
// SymbolSlab. Inserting a symbol whose ID is already present merges the two
// records instead of adding a duplicate.
type SymbolSlabBuilder struct {
	byID    map[SymbolID]int
	symbols []Symbol
}

// NewSymbolSlabBuilder returns an empty builder.
func NewSymbolSlabBuilder() *SymbolSlabBuilder {
	return &SymbolSlabBuilder{byID: make(map[SymbolID]int)}
}

// Insert adds sym to the slab under construction, merging by ID. The merge
// keeps the earlier record and overlays fields the earlier record was
// missing, preferring a record that carries a definition.
func (b *SymbolSlabBuilder) Insert(sym Symbol) {
	if i, ok := b.byID[sym.ID]; ok {
		mergeSymbol(&b.symbols[i], &sym)
		return
	}
	b.byID[sym.ID] = len(b.symbols)
	b.symbols = append(b.symbols, sym)
}

// Len returns the number of distinct symbols inserted so far.
func (b *SymbolSlabBuilder) Len() int {
	return len(b.symbols)
}

// Build freezes the builder into an immutable slab. Symbols are ordered by
// ID so a slab's iteration order is deterministic regardless of insertion
// order. The builder must not be used afterwards.
func (b *SymbolSlabBuilder) Build() *SymbolSlab {
	symbols := b.symbols
	b.symbols = nil
	b.byID = nil
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].ID.String() < symbols[j].ID.String()
	})
	return &SymbolSlab{symbols: symbols}
}

// mergeSymbol overlays fields of src onto dst where dst is missing them.
// Reference counts accumulate; a definition location wins over none.
func mergeSymbol(dst, src *Symbol) {
	if dst.Definition.IsZero() {
		dst.Definition = src.Definition
	}
	if dst.CanonicalDeclaration.IsZero() {
		dst.CanonicalDeclaration = src.CanonicalDeclaration
	}
	dst.References += src.References
	dst.IsIndexedForCodeCompletion = dst.IsIndexedForCodeCompletion || src.IsIndexedForCodeCompletion
	if dst.Signature == "" {
		dst.Signature = src.Signature
	}
	if dst.CompletionSnippetSuffix == "" {
		dst.CompletionSnippetSuffix = src.CompletionSnippetSuffix
	}
	if dst.Documentation == "" {
		dst.Documentation = src.Documentation
	}
	if dst.ReturnType == "" {
		dst.ReturnType = src.ReturnType
	}
	if dst.IncludeHeader == "" {
		dst.IncludeHeader = src.IncludeHeader
	}
}

// OccurrenceSlab is a frozen mapping from symbol ID to the mentions of that
// symbol found in one file, in source order. Like SymbolSlab it is immutable
// after Build and shared by pointer.
type OccurrenceSlab struct {
	occurrences map[SymbolID][]SymbolOccurrence
}

// Len returns the number of symbol IDs with at least one occurrence.
func (s *OccurrenceSlab) Len() int {
	return len(s.occurrences)
}

// Get returns the occurrences recorded for id. The slice must not be
// modified.
func (s *OccurrenceSlab) Get(id SymbolID) []SymbolOccurrence {
	return s.occurrences[id]
}

// ForEach calls fn once per (ID, occurrence list) pair.
func (s *OccurrenceSlab) ForEach(fn func(id SymbolID, occurrences []SymbolOccurrence)) {
	for id, occs := range s.occurrences {
		fn(id, occs)
	}
}

// EstimateMemoryUsage approximates the bytes retained by the slab.
func (s *OccurrenceSlab) EstimateMemoryUsage() uint64 {
	total := uint64(unsafe.Sizeof(*s))
	for _, occs := range s.occurrences {
		for i := range occs {
			total += uint64(unsafe.Sizeof(occs[i])) + uint64(len(occs[i].Location.FileURI))
		}
	}
	return total
}

// OccurrenceSlabBuilder accumulates occurrences for one file.
type OccurrenceSlabBuilder struct {
	occurrences map[SymbolID][]SymbolOccurrence
}

// NewOccurrenceSlabBuilder returns an empty builder.
func NewOccurrenceSlabBuilder() *OccurrenceSlabBuilder {
	return &OccurrenceSlabBuilder{occurrences: make(map[SymbolID][]SymbolOccurrence)}
}

// Insert records one occurrence of id.
func (b *OccurrenceSlabBuilder) Insert(id SymbolID, occ SymbolOccurrence) {
	b.occurrences[id] = append(b.occurrences[id], occ)
}

// Build freezes the builder into an immutable slab. The builder must not be
// used afterwards.
func (b *OccurrenceSlabBuilder) Build() *OccurrenceSlab {
	occs := b.occurrences
	b.occurrences = nil
	return &OccurrenceSlab{occurrences: occs}
}
