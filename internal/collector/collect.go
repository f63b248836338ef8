package collector

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lsi/internal/types"
)

// Collector extracts symbol and occurrence slabs from parsed units. The
// zero-value scheme is "file"; tests and virtual filesystems install their
// own scheme so result URIs stay resolvable in their world.
type Collector struct {
	scheme string
}

// NewCollector returns a collector producing file:// URIs.
func NewCollector() *Collector {
	return NewCollectorWithScheme("file")
}

// NewCollectorWithScheme returns a collector producing scheme:// URIs.
func NewCollectorWithScheme(scheme string) *Collector {
	if scheme == "" {
		scheme = "file"
	}
	return &Collector{scheme: scheme}
}

// Collect walks unit's parse tree and freezes the declarations it finds into
// slabs. When topLevel nodes are given, collection is restricted to those
// top-level declarations; otherwise the whole unit is collected. Each call
// produces fresh slabs, never mutating earlier results.
func (c *Collector) Collect(unit *ParsedUnit, topLevel ...tree_sitter.Node) (*types.SymbolSlab, *types.OccurrenceSlab) {
	if len(topLevel) == 0 {
		topLevel = unit.TopLevelDecls()
	}

	run := &collection{
		unit: unit,
		uri:  c.uriFor(unit.Path),
	}
	for i := range topLevel {
		run.walk(&topLevel[i], "", false)
	}
	run.collectReferences(topLevel)

	symbols := types.NewSymbolSlabBuilder()
	occurrences := types.NewOccurrenceSlabBuilder()
	for i := range run.collected {
		col := &run.collected[i]
		symbols.Insert(col.sym)
		for _, occ := range col.occs {
			occurrences.Insert(col.sym.ID, occ)
		}
	}
	return symbols.Build(), occurrences.Build()
}

func (c *Collector) uriFor(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.scheme + "://" + path
	}
	return c.scheme + ":///" + path
}

// collectedSymbol is one declaration found during the walk, still mutable so
// the reference pass can bump counts before the slabs freeze.
type collectedSymbol struct {
	sym  types.Symbol
	occs []types.SymbolOccurrence
	// nameStart is the byte offset of the declaration's name token, used to
	// keep the reference pass from counting the declaration as a mention of
	// itself.
	nameStart uint
}

type collection struct {
	unit      *ParsedUnit
	uri       string
	collected []collectedSymbol
}

// walk visits node with the qualifier accumulated so far. member is set
// inside class-like containers, turning functions into methods and dropping
// members from global code completion. Definition bodies are never entered;
// anything declared inside a function stays out of the index.
func (col *collection) walk(node *tree_sitter.Node, scope string, member bool) {
	kind := node.Kind()
	spec := col.unit.spec

	if cs, ok := spec.containers[kind]; ok {
		col.walkContainer(node, &cs, scope, member)
		return
	}
	if ds, ok := spec.defs[kind]; ok {
		col.walkDef(node, &ds, scope, member)
		return
	}

	// Wrapper nodes (declaration lists, decorated definitions, export
	// statements) pass the scope through unchanged.
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		col.walk(node.NamedChild(i), scope, member)
	}
}

func (col *collection) walkContainer(node *tree_sitter.Node, cs *containerSpec, scope string, member bool) {
	nameField := cs.nameField
	if nameField == "" {
		nameField = "name"
	}
	nameNode := node.ChildByFieldName(nameField)

	bodyField := cs.bodyField
	if bodyField == "" {
		bodyField = "body"
	}
	body := node.ChildByFieldName(bodyField)

	childScope := scope
	if nameNode != nil {
		name := nameNode.Utf8Text(col.unit.Source)
		childScope = scope + name + col.unit.Language.ScopeSeparator()
		if cs.emit {
			col.emit(node, nameNode, name, scope, cs.kind, body != nil, member)
		}
	}
	if body == nil {
		return
	}
	count := body.NamedChildCount()
	for i := uint(0); i < count; i++ {
		col.walk(body.NamedChild(i), childScope, cs.methodScope)
	}
}

func (col *collection) walkDef(node *tree_sitter.Node, ds *defSpec, scope string, member bool) {
	var nameNode *tree_sitter.Node
	var funcDecl *tree_sitter.Node
	declScope := scope

	if ds.drillDeclarator {
		nameNode, funcDecl = drillDeclarator(node)
		if nameNode == nil {
			// No declarator: a bare type declaration like "class X;". The
			// inner specifier node carries the symbol.
			count := node.NamedChildCount()
			for i := uint(0); i < count; i++ {
				col.walk(node.NamedChild(i), scope, member)
			}
			return
		}
		// Out-of-line members ("void ns::f() { ... }") qualify the name at
		// the declarator instead of by nesting.
		for nameNode.Kind() == "qualified_identifier" {
			if qual := nameNode.ChildByFieldName("scope"); qual != nil {
				declScope += qual.Utf8Text(col.unit.Source) + col.unit.Language.ScopeSeparator()
			}
			inner := nameNode.ChildByFieldName("name")
			if inner == nil {
				return
			}
			nameNode = inner
		}
	} else if ds.nameField != "" {
		nameNode = node.ChildByFieldName(ds.nameField)
	} else {
		nameNode = firstIdentifier(node)
	}
	if nameNode == nil {
		return
	}

	kind := ds.kind
	if funcDecl != nil {
		kind = types.SymbolKindFunction
	}
	if member && kind == types.SymbolKindFunction {
		kind = types.SymbolKindMethod
	}

	name := nameNode.Utf8Text(col.unit.Source)
	sym := col.emit(node, nameNode, name, declScope, kind, ds.definition, member)
	if kind == types.SymbolKindFunction || kind == types.SymbolKindMethod || kind == types.SymbolKindConstructor {
		col.fillFunctionDetails(node, funcDecl, sym)
	}
}

// emit records one declared symbol plus its declaration occurrence and
// returns the record for detail filling.
func (col *collection) emit(node, nameNode *tree_sitter.Node, name, scope string, kind types.SymbolKind, defined, member bool) *collectedSymbol {
	loc := col.locationOf(nameNode)

	sym := types.Symbol{
		ID:    types.NewSymbolID(scope, name, kind),
		Name:  name,
		Scope: scope,
		SymInfo: types.SymbolInfo{
			Kind: kind,
			Lang: col.unit.Language,
		},
		CanonicalDeclaration:       loc,
		IsIndexedForCodeCompletion: !member,
		Documentation:              docForNode(node, col.unit.Source),
	}
	occKind := types.OccurrenceDeclaration
	if defined {
		sym.Definition = loc
		occKind |= types.OccurrenceDefinition
	}

	col.collected = append(col.collected, collectedSymbol{
		sym:       sym,
		occs:      []types.SymbolOccurrence{{Location: loc, Kind: occKind}},
		nameStart: nameNode.StartByte(),
	})
	return &col.collected[len(col.collected)-1]
}

func (col *collection) fillFunctionDetails(node, funcDecl *tree_sitter.Node, sym *collectedSymbol) {
	src := col.unit.Source

	params := node.ChildByFieldName("parameters")
	if params == nil && funcDecl != nil {
		params = funcDecl.ChildByFieldName("parameters")
	}
	if params != nil {
		sym.sym.Signature = params.Utf8Text(src)
		if params.NamedChildCount() == 0 {
			sym.sym.CompletionSnippetSuffix = "()"
		} else {
			sym.sym.CompletionSnippetSuffix = "($0)"
		}
	}

	for _, field := range []string{"result", "return_type", "type"} {
		if ret := node.ChildByFieldName(field); ret != nil {
			sym.sym.ReturnType = ret.Utf8Text(src)
			break
		}
	}
}

func (col *collection) locationOf(node *tree_sitter.Node) types.SymbolLocation {
	start := node.StartPosition()
	end := node.EndPosition()
	return types.SymbolLocation{
		FileURI: col.uri,
		Start:   types.Position{Line: uint32(start.Row), Column: uint32(start.Column)},
		End:     types.Position{Line: uint32(end.Row), Column: uint32(end.Column)},
	}
}

// collectReferences makes a second, unrestricted pass over the collected
// subtrees (function bodies included) counting mentions of symbols declared
// in this file. Only uniquely named symbols are matched; a name declared
// twice in the file is skipped rather than miscounted.
func (col *collection) collectReferences(roots []tree_sitter.Node) {
	byName := make(map[string]int, len(col.collected))
	declTokens := make(map[uint]struct{}, len(col.collected))
	for i := range col.collected {
		name := col.collected[i].sym.Name
		if _, dup := byName[name]; dup {
			byName[name] = -1
		} else {
			byName[name] = i
		}
		declTokens[col.collected[i].nameStart] = struct{}{}
	}
	if len(byName) == 0 {
		return
	}

	var visit func(node *tree_sitter.Node)
	visit = func(node *tree_sitter.Node) {
		count := node.NamedChildCount()
		if count == 0 {
			if !isIdentifierKind(node.Kind()) {
				return
			}
			if _, declared := declTokens[node.StartByte()]; declared {
				return
			}
			i, ok := byName[node.Utf8Text(col.unit.Source)]
			if !ok || i < 0 {
				return
			}
			target := &col.collected[i]
			target.sym.References++
			target.occs = append(target.occs, types.SymbolOccurrence{
				Location: col.locationOf(node),
				Kind:     types.OccurrenceReference,
			})
			return
		}
		for i := uint(0); i < count; i++ {
			visit(node.NamedChild(i))
		}
	}
	for i := range roots {
		visit(&roots[i])
	}
}

func firstIdentifier(node *tree_sitter.Node) *tree_sitter.Node {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if isIdentifierKind(child.Kind()) {
			return child
		}
	}
	return nil
}

func isIdentifierKind(kind string) bool {
	return strings.Contains(kind, "identifier") || kind == "name" || kind == "word"
}

// drillDeclarator follows a C-family declarator chain down to the name
// token, reporting the function_declarator passed on the way, if any.
func drillDeclarator(node *tree_sitter.Node) (name, funcDecl *tree_sitter.Node) {
	current := node.ChildByFieldName("declarator")
	for current != nil {
		switch current.Kind() {
		case "function_declarator":
			funcDecl = current
		case "identifier", "field_identifier", "type_identifier",
			"qualified_identifier", "destructor_name", "operator_name":
			return current, funcDecl
		}
		next := current.ChildByFieldName("declarator")
		if next == nil {
			// init_declarator and parenthesized forms nest without the
			// field name.
			next = firstIdentifier(current)
			if next == nil {
				return nil, funcDecl
			}
		}
		current = next
	}
	return nil, funcDecl
}

// docForNode returns the text of a comment immediately preceding node,
// stripped of comment markers, or "".
func docForNode(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevNamedSibling()
	if prev == nil || !strings.Contains(prev.Kind(), "comment") {
		return ""
	}
	// The comment must touch the declaration; a blank line detaches it.
	if node.StartPosition().Row > prev.EndPosition().Row+1 {
		return ""
	}
	return cleanComment(prev.Utf8Text(source))
}

func cleanComment(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, "#")
		lines[i] = strings.TrimSpace(line)
	}
	var kept []string
	for _, line := range lines {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
