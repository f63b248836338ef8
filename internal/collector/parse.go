// Package collector turns source files into frozen symbol and occurrence
// slabs. Parsing is tree-sitter based with one grammar per supported
// language; collection walks the parse tree with a scope stack and never
// descends into function bodies, so purely local declarations are never
// indexed.
package collector

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lsi/internal/types"
)

// ErrUnsupportedLanguage is returned for files with no registered grammar.
var ErrUnsupportedLanguage = errors.New("collector: unsupported language")

// ParsedUnit is one parsed source file: the handle passed to the index
// facade on every file-changed event. Close releases the underlying tree;
// the facade closes units it consumed.
type ParsedUnit struct {
	Path     string
	Source   []byte
	Language types.SymbolLanguage
	Tree     *tree_sitter.Tree

	spec *langSpec
}

// Close releases the parse tree. Safe to call twice.
func (u *ParsedUnit) Close() {
	if u.Tree != nil {
		u.Tree.Close()
		u.Tree = nil
	}
}

// Root returns the root node of the parse tree.
func (u *ParsedUnit) Root() *tree_sitter.Node {
	return u.Tree.RootNode()
}

// TopLevelDecls returns the named children of the root, the granularity at
// which collection can be restricted to a subset.
func (u *ParsedUnit) TopLevelDecls() []tree_sitter.Node {
	root := u.Root()
	count := root.NamedChildCount()
	decls := make([]tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		decls = append(decls, *root.NamedChild(i))
	}
	return decls
}

// Parser parses source files into ParsedUnits, picking the grammar by file
// extension. A Parser is safe for concurrent use: each Parse call runs its
// own tree-sitter parser (they are cheap to create and not thread-safe).
type Parser struct{}

// NewParser returns a parser covering every registered language.
func NewParser() *Parser {
	return &Parser{}
}

// Supports reports whether path's extension maps to a registered grammar.
func (p *Parser) Supports(path string) bool {
	_, ok := specForExtension(strings.ToLower(filepath.Ext(path)))
	return ok
}

// Parse parses content as the language implied by path's extension.
func (p *Parser) Parse(path string, content []byte) (*ParsedUnit, error) {
	ext := strings.ToLower(filepath.Ext(path))
	spec, ok := specForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, ext)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(spec.grammar()); err != nil {
		return nil, fmt.Errorf("collector: grammar for %s rejected: %w", spec.lang, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("collector: parse failed for %s", path)
	}

	return &ParsedUnit{
		Path:     path,
		Source:   content,
		Language: spec.lang,
		Tree:     tree,
		spec:     spec,
	}, nil
}
