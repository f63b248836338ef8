package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lsi/internal/collector"
	"github.com/standardbeagle/lsi/internal/index"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fi := index.NewFileIndex()

	parse := func(path, source string) {
		unit, err := collector.NewParser().Parse(path, []byte(source))
		require.NoError(t, err)
		fi.Update(path, unit)
	}
	parse("/f.cc", `
namespace ns {
void frobnicate() {}
class Widget {};
}
`)
	parse("/use.cc", "namespace ns { void frobnicate(); }\n")

	return NewServer(fi, nil)
}

func callTool(t *testing.T, handler func(context.Context, *sdk.CallToolRequest) (*sdk.CallToolResult, error), args any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := handler(context.Background(), &sdk.CallToolRequest{
		Params: &sdk.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "tool reported an error")
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*sdk.TextContent)
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func callToolExpectError(t *testing.T, handler func(context.Context, *sdk.CallToolRequest) (*sdk.CallToolResult, error), args any) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := handler(context.Background(), &sdk.CallToolRequest{
		Params: &sdk.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func searchSymbols(t *testing.T, s *Server, args any) []map[string]any {
	payload := callTool(t, s.handleSymbolSearch, args)
	raw, ok := payload["symbols"].([]any)
	require.True(t, ok)
	symbols := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		symbols = append(symbols, entry.(map[string]any))
	}
	return symbols
}

func TestSymbolSearch(t *testing.T) {
	s := newTestServer(t)

	symbols := searchSymbols(t, s, map[string]any{"query": "frob"})
	require.Len(t, symbols, 2, "declaration and definition files both contribute")
	assert.Equal(t, "frobnicate", symbols[0]["name"])
	assert.NotEmpty(t, symbols[0]["id"])
}

func TestSymbolSearchScopeFilter(t *testing.T) {
	s := newTestServer(t)

	symbols := searchSymbols(t, s, map[string]any{"scopes": []string{"ns::"}})
	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, sym["name"].(string))
	}
	// frobnicate appears once per contributing file.
	assert.ElementsMatch(t, []string{"frobnicate", "frobnicate", "Widget"}, names)
}

func TestSymbolSearchLimit(t *testing.T) {
	s := newTestServer(t)

	payload := callTool(t, s.handleSymbolSearch, map[string]any{"limit": 1})
	assert.Len(t, payload["symbols"], 1)
	assert.Equal(t, false, payload["complete"])
}

func TestSymbolLookupRoundTrip(t *testing.T) {
	s := newTestServer(t)

	symbols := searchSymbols(t, s, map[string]any{"query": "Widget"})
	require.NotEmpty(t, symbols)
	id := symbols[0]["id"].(string)

	payload := callTool(t, s.handleSymbolLookup, map[string]any{"ids": []string{id}})
	looked := payload["symbols"].([]any)
	require.Len(t, looked, 1)
	assert.Equal(t, "Widget", looked[0].(map[string]any)["name"])
}

func TestFindOccurrencesRoleFilter(t *testing.T) {
	s := newTestServer(t)

	symbols := searchSymbols(t, s, map[string]any{"query": "frobnicate", "limit": 1})
	require.NotEmpty(t, symbols)
	id := symbols[0]["id"].(string)

	payload := callTool(t, s.handleFindOccurrences, map[string]any{"ids": []string{id}})
	all := payload["occurrences"].([]any)
	assert.Len(t, all, 2, "definition in /f.cc plus declaration in /use.cc")

	payload = callTool(t, s.handleFindOccurrences, map[string]any{
		"ids":   []string{id},
		"roles": []string{"definition"},
	})
	defs := payload["occurrences"].([]any)
	require.Len(t, defs, 1)
	loc := defs[0].(map[string]any)["location"].(map[string]any)
	assert.Equal(t, "file:///f.cc", loc["uri"])
}

func TestIndexStatus(t *testing.T) {
	s := newTestServer(t)

	payload := callTool(t, s.handleIndexStatus, map[string]any{})
	assert.Equal(t, float64(2), payload["files"])
	assert.Greater(t, payload["symbols"].(float64), float64(0))
	assert.Greater(t, payload["memory_bytes"].(float64), float64(0))
}

func TestInvalidID(t *testing.T) {
	s := newTestServer(t)

	callToolExpectError(t, s.handleSymbolLookup, map[string]any{"ids": []string{"!!!"}})
	callToolExpectError(t, s.handleFindOccurrences, map[string]any{"ids": []string{}})
}

func TestUnknownRole(t *testing.T) {
	s := newTestServer(t)

	symbols := searchSymbols(t, s, map[string]any{"query": "Widget"})
	require.NotEmpty(t, symbols)

	callToolExpectError(t, s.handleFindOccurrences, map[string]any{
		"ids":   []string{symbols[0]["id"].(string)},
		"roles": []string{"mention"},
	})
}
