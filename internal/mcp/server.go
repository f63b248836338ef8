// Package mcp exposes the symbol index to agents over the Model Context
// Protocol: fuzzy search, ID lookup, occurrence queries and index status as
// MCP tools on stdio.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lsi/internal/config"
	"github.com/standardbeagle/lsi/internal/index"
)

// Server serves index queries as MCP tools.
type Server struct {
	index  *index.FileIndex
	cfg    *config.Config
	server *mcp.Server
}

// NewServer wraps fi in an MCP server. The config supplies the default
// result limit.
func NewServer(fi *index.FileIndex, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		index: fi,
		cfg:   cfg,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "lsi-mcp-server",
			Version: "0.1.0",
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "symbol_search",
		Description: "Fuzzy search indexed symbols by name. Returns compact symbol IDs usable with symbol_lookup and find_occurrences.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Name fragment to match; empty lists every symbol",
				},
				"scopes": {
					Type:        "array",
					Description: "Restrict to these exact scopes, e.g. \"ns::\" or \"\" for top level",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum results (default from config)",
				},
				"completion": {
					Type:        "boolean",
					Description: "Only symbols eligible for global code completion",
				},
			},
		},
	}, s.handleSymbolSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "symbol_lookup",
		Description: "Fetch full symbol records by ID. Accepts compact or hex IDs.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"ids": {
					Type:        "array",
					Description: "Symbol IDs from symbol_search",
					Items:       &jsonschema.Schema{Type: "string"},
				},
			},
			Required: []string{"ids"},
		},
	}, s.handleSymbolLookup)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_occurrences",
		Description: "List declarations, definitions and references of symbols by ID.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"ids": {
					Type:        "array",
					Description: "Symbol IDs from symbol_search",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"roles": {
					Type:        "array",
					Description: "Filter to these roles: declaration, definition, reference. Empty means all.",
					Items:       &jsonschema.Schema{Type: "string"},
				},
			},
			Required: []string{"ids"},
		},
	}, s.handleFindOccurrences)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_status",
		Description: "Report indexed file count, symbol count and estimated memory usage.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleIndexStatus)
}

// Run serves on stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
