// Package yamlcodec serializes symbols as a YAML document stream, one
// document per symbol. The format is the interchange boundary for index
// dumps: stable field names, hex symbol IDs, omitted fields decoding to
// their zero defaults.
package yamlcodec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/lsi/internal/types"
)

type positionRecord struct {
	Line   uint32 `yaml:"Line"`
	Column uint32 `yaml:"Column"`
}

type locationRecord struct {
	FileURI string         `yaml:"FileURI"`
	Start   positionRecord `yaml:"Start"`
	End     positionRecord `yaml:"End"`
}

type symbolInfoRecord struct {
	Kind string `yaml:"Kind"`
	Lang string `yaml:"Lang"`
}

// symbolRecord is the wire shape of one symbol. ID, Name, Scope and SymInfo
// are required; everything else is optional with zero defaults.
type symbolRecord struct {
	ID                         string           `yaml:"ID"`
	Name                       string           `yaml:"Name"`
	Scope                      string           `yaml:"Scope"`
	SymInfo                    symbolInfoRecord `yaml:"SymInfo"`
	CanonicalDeclaration       *locationRecord  `yaml:"CanonicalDeclaration,omitempty"`
	Definition                 *locationRecord  `yaml:"Definition,omitempty"`
	References                 uint32           `yaml:"References,omitempty"`
	IsIndexedForCodeCompletion bool             `yaml:"IsIndexedForCodeCompletion,omitempty"`
	Signature                  string           `yaml:"Signature,omitempty"`
	CompletionSnippetSuffix    string           `yaml:"CompletionSnippetSuffix,omitempty"`
	Documentation              string           `yaml:"Documentation,omitempty"`
	ReturnType                 string           `yaml:"ReturnType,omitempty"`
	IncludeHeader              string           `yaml:"IncludeHeader,omitempty"`
}

func toRecord(sym *types.Symbol) symbolRecord {
	rec := symbolRecord{
		ID:    sym.ID.String(),
		Name:  sym.Name,
		Scope: sym.Scope,
		SymInfo: symbolInfoRecord{
			Kind: sym.SymInfo.Kind.String(),
			Lang: sym.SymInfo.Lang.String(),
		},
		References:                 sym.References,
		IsIndexedForCodeCompletion: sym.IsIndexedForCodeCompletion,
		Signature:                  sym.Signature,
		CompletionSnippetSuffix:    sym.CompletionSnippetSuffix,
		Documentation:              sym.Documentation,
		ReturnType:                 sym.ReturnType,
		IncludeHeader:              sym.IncludeHeader,
	}
	rec.CanonicalDeclaration = toLocationRecord(sym.CanonicalDeclaration)
	rec.Definition = toLocationRecord(sym.Definition)
	return rec
}

func toLocationRecord(loc types.SymbolLocation) *locationRecord {
	if loc.IsZero() {
		return nil
	}
	return &locationRecord{
		FileURI: loc.FileURI,
		Start:   positionRecord{Line: loc.Start.Line, Column: loc.Start.Column},
		End:     positionRecord{Line: loc.End.Line, Column: loc.End.Column},
	}
}

func fromLocationRecord(rec *locationRecord) types.SymbolLocation {
	if rec == nil {
		return types.SymbolLocation{}
	}
	return types.SymbolLocation{
		FileURI: rec.FileURI,
		Start:   types.Position{Line: rec.Start.Line, Column: rec.Start.Column},
		End:     types.Position{Line: rec.End.Line, Column: rec.End.Column},
	}
}

func (r *symbolRecord) toSymbol() (types.Symbol, error) {
	id, err := types.ParseSymbolID(r.ID)
	if err != nil {
		return types.Symbol{}, fmt.Errorf("symbol %q: %w", r.Name, err)
	}
	if r.Name == "" {
		return types.Symbol{}, fmt.Errorf("symbol %s: missing Name", r.ID)
	}
	return types.Symbol{
		ID:    id,
		Name:  r.Name,
		Scope: r.Scope,
		SymInfo: types.SymbolInfo{
			Kind: types.ParseSymbolKind(r.SymInfo.Kind),
			Lang: types.ParseSymbolLanguage(r.SymInfo.Lang),
		},
		CanonicalDeclaration:       fromLocationRecord(r.CanonicalDeclaration),
		Definition:                 fromLocationRecord(r.Definition),
		References:                 r.References,
		IsIndexedForCodeCompletion: r.IsIndexedForCodeCompletion,
		Signature:                  r.Signature,
		CompletionSnippetSuffix:    r.CompletionSnippetSuffix,
		Documentation:              r.Documentation,
		ReturnType:                 r.ReturnType,
		IncludeHeader:              r.IncludeHeader,
	}, nil
}

// WriteSymbols writes symbols to w as a stream of YAML documents.
func WriteSymbols(w io.Writer, symbols []*types.Symbol) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, sym := range symbols {
		rec := toRecord(sym)
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("encoding symbol %s: %w", sym.ID, err)
		}
	}
	return enc.Close()
}

// ReadSymbols reads a stream of YAML symbol documents from r. Decoding stops
// at the first malformed document.
func ReadSymbols(r io.Reader) ([]types.Symbol, error) {
	dec := yaml.NewDecoder(r)
	var symbols []types.Symbol
	for {
		var rec symbolRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return symbols, nil
			}
			return nil, fmt.Errorf("decoding symbol stream: %w", err)
		}
		sym, err := rec.toSymbol()
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
}
