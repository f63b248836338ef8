// Package types holds the data model shared by the collector, the per-file
// symbol store and the in-memory search index: symbols, source locations,
// occurrences and the immutable per-file slabs they are packed into.
package types

// Position is a zero-based line/column pair. Ranges built from two positions
// are half-open: [Start, End).
type Position struct {
	Line   uint32
	Column uint32
}

// SymbolLocation identifies a source range inside one file. FileURI carries
// the URI scheme configured at collection time (default "file").
type SymbolLocation struct {
	FileURI string
	Start   Position
	End     Position
}

// IsZero reports whether the location was never set. Optional locations
// (e.g. a declaration without a definition) stay zero.
func (l SymbolLocation) IsZero() bool {
	return l.FileURI == "" && l.Start == (Position{}) && l.End == (Position{})
}

// SymbolInfo classifies a symbol by kind and source language.
type SymbolInfo struct {
	Kind SymbolKind
	Lang SymbolLanguage
}

// Symbol is one declared program entity collected from a single file.
// Symbols are immutable once their slab is built; everything downstream
// shares them by pointer.
type Symbol struct {
	// ID is the content-derived identity, stable across rebuilds of the same
	// declaration. Equal IDs may occur in slabs of different files (the same
	// header indexed through two units); they are never deduplicated across
	// files.
	ID      SymbolID
	Name    string
	Scope   string // qualifying container path with trailing separator, e.g. "ns::"
	SymInfo SymbolInfo

	// CanonicalDeclaration covers the name token of the declaration.
	// Definition is zero when the file only declares the symbol.
	CanonicalDeclaration SymbolLocation
	Definition           SymbolLocation

	// References counts same-file mentions seen during collection.
	References uint32

	IsIndexedForCodeCompletion bool

	Signature               string
	CompletionSnippetSuffix string
	Documentation           string
	ReturnType              string
	IncludeHeader           string
}

// QualifiedName returns Scope+Name, the form used for ranking and display.
func (s *Symbol) QualifiedName() string {
	return s.Scope + s.Name
}

// SymbolOccurrence is one located mention of a symbol with its role. The
// symbol identity is implicit in the occurrence slab's map key.
type SymbolOccurrence struct {
	Location SymbolLocation
	Kind     OccurrenceKind
}
