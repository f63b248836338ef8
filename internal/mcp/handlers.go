package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lsi/internal/idcodec"
	"github.com/standardbeagle/lsi/internal/index"
	"github.com/standardbeagle/lsi/internal/types"
)

type searchParams struct {
	Query      string   `json:"query"`
	Scopes     []string `json:"scopes"`
	Limit      int      `json:"limit"`
	Completion bool     `json:"completion"`
}

type lookupParams struct {
	IDs []string `json:"ids"`
}

type occurrencesParams struct {
	IDs   []string `json:"ids"`
	Roles []string `json:"roles"`
}

// symbolResult is the wire form of one symbol. The ID is compact-encoded to
// keep tool payloads small.
type symbolResult struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Scope         string          `json:"scope,omitempty"`
	Kind          string          `json:"kind"`
	Lang          string          `json:"lang"`
	Declaration   *locationResult `json:"declaration,omitempty"`
	Definition    *locationResult `json:"definition,omitempty"`
	References    uint32          `json:"references,omitempty"`
	Signature     string          `json:"signature,omitempty"`
	ReturnType    string          `json:"return_type,omitempty"`
	Documentation string          `json:"documentation,omitempty"`
}

type locationResult struct {
	URI       string `json:"uri"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

type occurrenceResult struct {
	ID       string         `json:"id"`
	Role     string         `json:"role"`
	Location locationResult `json:"location"`
}

func toSymbolResult(sym *types.Symbol) symbolResult {
	return symbolResult{
		ID:            idcodec.EncodeSymbolID(sym.ID),
		Name:          sym.Name,
		Scope:         sym.Scope,
		Kind:          sym.SymInfo.Kind.String(),
		Lang:          sym.SymInfo.Lang.String(),
		Declaration:   toLocationResult(sym.CanonicalDeclaration),
		Definition:    toLocationResult(sym.Definition),
		References:    sym.References,
		Signature:     sym.Signature,
		ReturnType:    sym.ReturnType,
		Documentation: sym.Documentation,
	}
}

func toLocationResult(loc types.SymbolLocation) *locationResult {
	if loc.IsZero() {
		return nil
	}
	return &locationResult{
		URI:       loc.FileURI,
		StartLine: loc.Start.Line,
		StartCol:  loc.Start.Column,
		EndLine:   loc.End.Line,
		EndCol:    loc.End.Column,
	}
}

// parseID accepts both the compact encoding used in tool payloads and the
// hex form used at the YAML boundary.
func parseID(s string) (types.SymbolID, error) {
	if id, err := idcodec.DecodeSymbolID(s); err == nil {
		return id, nil
	}
	return types.ParseSymbolID(s)
}

func parseIDSet(raw []string) (map[types.SymbolID]struct{}, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("ids must not be empty")
	}
	ids := make(map[types.SymbolID]struct{}, len(raw))
	for _, s := range raw {
		id, err := parseID(s)
		if err != nil {
			return nil, fmt.Errorf("invalid symbol ID %q: %w", s, err)
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

func parseRoles(raw []string) (types.OccurrenceKind, error) {
	if len(raw) == 0 {
		return types.OccurrenceAny, nil
	}
	var filter types.OccurrenceKind
	for _, role := range raw {
		switch role {
		case "declaration":
			filter |= types.OccurrenceDeclaration
		case "definition":
			filter |= types.OccurrenceDefinition
		case "reference":
			filter |= types.OccurrenceReference
		default:
			return 0, fmt.Errorf("unknown role %q", role)
		}
	}
	return filter, nil
}

func (s *Server) handleSymbolSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("symbol_search", fmt.Errorf("invalid parameters: %w", err))
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.cfg.Search.MaxResults
	}

	freq := &index.FuzzyFindRequest{
		Query:                     params.Query,
		Scopes:                    params.Scopes,
		Limit:                     limit,
		RestrictForCodeCompletion: params.Completion,
	}
	results := []symbolResult{}
	complete := s.index.FuzzyFind(freq, func(sym *types.Symbol) {
		results = append(results, toSymbolResult(sym))
	})

	return createJSONResponse(map[string]any{
		"symbols":  results,
		"complete": complete,
	})
}

func (s *Server) handleSymbolLookup(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params lookupParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("symbol_lookup", fmt.Errorf("invalid parameters: %w", err))
	}
	ids, err := parseIDSet(params.IDs)
	if err != nil {
		return createErrorResponse("symbol_lookup", err)
	}

	results := []symbolResult{}
	s.index.Lookup(&index.LookupRequest{IDs: ids}, func(sym *types.Symbol) {
		results = append(results, toSymbolResult(sym))
	})
	return createJSONResponse(map[string]any{"symbols": results})
}

func (s *Server) handleFindOccurrences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params occurrencesParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("find_occurrences", fmt.Errorf("invalid parameters: %w", err))
	}
	ids, err := parseIDSet(params.IDs)
	if err != nil {
		return createErrorResponse("find_occurrences", err)
	}
	filter, err := parseRoles(params.Roles)
	if err != nil {
		return createErrorResponse("find_occurrences", err)
	}

	results := []occurrenceResult{}
	for id := range ids {
		oreq := &index.OccurrencesRequest{
			IDs:    map[types.SymbolID]struct{}{id: {}},
			Filter: filter,
		}
		encoded := idcodec.EncodeSymbolID(id)
		s.index.FindOccurrences(oreq, func(occ *types.SymbolOccurrence) {
			results = append(results, occurrenceResult{
				ID:   encoded,
				Role: occ.Kind.String(),
				Location: locationResult{
					URI:       occ.Location.FileURI,
					StartLine: occ.Location.Start.Line,
					StartCol:  occ.Location.Start.Column,
					EndLine:   occ.Location.End.Line,
					EndCol:    occ.Location.End.Column,
				},
			})
		})
	}
	return createJSONResponse(map[string]any{"occurrences": results})
}

func (s *Server) handleIndexStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.index.Stats()
	return createJSONResponse(map[string]any{
		"files":        stats.Files,
		"symbols":      stats.Symbols,
		"memory_bytes": stats.MemoryBytes,
	})
}
