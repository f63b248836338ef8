package collector

import (
	"sync"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/lsi/internal/types"
)

// containerSpec describes a node that opens a named scope (namespace,
// class, module). The container itself is indexed as a symbol when emit is
// set; its named body children are collected in the extended scope.
type containerSpec struct {
	kind      types.SymbolKind
	nameField string // field holding the name node; "" means generic lookup
	bodyField string // field holding the body; "" means "body"
	emit      bool
	// methodScope marks class-like containers: function definitions
	// directly inside become methods instead of free functions.
	methodScope bool
}

// defSpec describes a leaf declaration node. Collection records the symbol
// and stops: nothing inside a definition body is indexed.
type defSpec struct {
	kind      types.SymbolKind
	nameField string
	// drillDeclarator resolves C-family declarator chains to the name
	// token; when the chain passes a function declarator the symbol kind
	// becomes Function (or Method inside a class) regardless of kind.
	drillDeclarator bool
	// definition marks nodes that carry a body, e.g. function_definition.
	definition bool
}

type langSpec struct {
	lang       types.SymbolLanguage
	grammar    func() *tree_sitter.Language
	containers map[string]containerSpec
	defs       map[string]defSpec
}

// lazyLanguage builds the tree-sitter Language once; grammar pointers are
// process-wide constants.
func lazyLanguage(raw func() unsafe.Pointer) func() *tree_sitter.Language {
	var once sync.Once
	var lang *tree_sitter.Language
	return func() *tree_sitter.Language {
		once.Do(func() { lang = tree_sitter.NewLanguage(raw()) })
		return lang
	}
}

var langSpecs = map[string]*langSpec{
	".cpp": cppSpec, ".cc": cppSpec, ".cxx": cppSpec,
	".h": cppSpec, ".hpp": cppSpec, ".c": cppSpec,
	".go":   goSpec,
	".py":   pythonSpec,
	".java": javaSpec,
	".js":   javascriptSpec, ".jsx": javascriptSpec,
	".ts": typescriptSpec, ".tsx": typescriptSpec,
	".rs":  rustSpec,
	".cs":  csharpSpec,
	".php": phpSpec,
	".zig": zigSpec,
}

func specForExtension(ext string) (*langSpec, bool) {
	spec, ok := langSpecs[ext]
	return spec, ok
}

var cppSpec = &langSpec{
	lang:    types.LangCpp,
	grammar: lazyLanguage(tree_sitter_cpp.Language),
	containers: map[string]containerSpec{
		"namespace_definition": {kind: types.SymbolKindNamespace, nameField: "name", emit: true},
		"class_specifier":      {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"struct_specifier":     {kind: types.SymbolKindStruct, nameField: "name", emit: true, methodScope: true},
		"enum_specifier":       {kind: types.SymbolKindEnum, nameField: "name", emit: true},
		"union_specifier":      {kind: types.SymbolKindUnion, nameField: "name", emit: true, methodScope: true},
	},
	defs: map[string]defSpec{
		"function_definition": {kind: types.SymbolKindFunction, drillDeclarator: true, definition: true},
		"declaration":         {kind: types.SymbolKindVariable, drillDeclarator: true},
		"field_declaration":   {kind: types.SymbolKindField, drillDeclarator: true},
		"enumerator":          {kind: types.SymbolKindEnumConstant, nameField: "name"},
		"type_definition":     {kind: types.SymbolKindTypeAlias, drillDeclarator: true},
		"alias_declaration":   {kind: types.SymbolKindTypeAlias, nameField: "name"},
	},
}

var goSpec = &langSpec{
	lang:    types.LangGo,
	grammar: lazyLanguage(tree_sitter_go.Language),
	defs: map[string]defSpec{
		"function_declaration": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"method_declaration":   {kind: types.SymbolKindMethod, nameField: "name", definition: true},
		"type_spec":            {kind: types.SymbolKindTypeAlias, nameField: "name"},
		"const_spec":           {kind: types.SymbolKindConstant, nameField: "name"},
	},
}

var pythonSpec = &langSpec{
	lang:    types.LangPython,
	grammar: lazyLanguage(tree_sitter_python.Language),
	containers: map[string]containerSpec{
		"class_definition": {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
	},
	defs: map[string]defSpec{
		"function_definition": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
	},
}

var javaSpec = &langSpec{
	lang:    types.LangJava,
	grammar: lazyLanguage(tree_sitter_java.Language),
	containers: map[string]containerSpec{
		"class_declaration":     {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"interface_declaration": {kind: types.SymbolKindInterface, nameField: "name", emit: true, methodScope: true},
		"enum_declaration":      {kind: types.SymbolKindEnum, nameField: "name", emit: true},
		"record_declaration":    {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
	},
	defs: map[string]defSpec{
		"method_declaration":      {kind: types.SymbolKindMethod, nameField: "name", definition: true},
		"constructor_declaration": {kind: types.SymbolKindConstructor, nameField: "name", definition: true},
		"field_declaration":       {kind: types.SymbolKindField},
		"enum_constant":           {kind: types.SymbolKindEnumConstant, nameField: "name"},
	},
}

var javascriptSpec = &langSpec{
	lang:    types.LangJavaScript,
	grammar: lazyLanguage(tree_sitter_javascript.Language),
	containers: map[string]containerSpec{
		"class_declaration": {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
	},
	defs: map[string]defSpec{
		"function_declaration":           {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"generator_function_declaration": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"method_definition":              {kind: types.SymbolKindMethod, nameField: "name", definition: true},
	},
}

var typescriptSpec = &langSpec{
	lang:    types.LangTypeScript,
	grammar: lazyLanguage(tree_sitter_typescript.LanguageTypescript),
	containers: map[string]containerSpec{
		"class_declaration":          {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"abstract_class_declaration": {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"interface_declaration":      {kind: types.SymbolKindInterface, nameField: "name", emit: true, methodScope: true},
		"enum_declaration":           {kind: types.SymbolKindEnum, nameField: "name", emit: true},
	},
	defs: map[string]defSpec{
		"function_declaration":           {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"generator_function_declaration": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"method_definition":              {kind: types.SymbolKindMethod, nameField: "name", definition: true},
		"type_alias_declaration":         {kind: types.SymbolKindTypeAlias, nameField: "name"},
	},
}

var rustSpec = &langSpec{
	lang:    types.LangRust,
	grammar: lazyLanguage(tree_sitter_rust.Language),
	containers: map[string]containerSpec{
		"mod_item":   {kind: types.SymbolKindModule, nameField: "name", emit: true},
		"trait_item": {kind: types.SymbolKindTrait, nameField: "name", emit: true, methodScope: true},
		// impl blocks extend the scope of the implemented type without
		// declaring a symbol of their own.
		"impl_item": {nameField: "type", methodScope: true},
	},
	defs: map[string]defSpec{
		"function_item": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"struct_item":   {kind: types.SymbolKindStruct, nameField: "name"},
		"enum_item":     {kind: types.SymbolKindEnum, nameField: "name"},
		"type_item":     {kind: types.SymbolKindTypeAlias, nameField: "name"},
		"const_item":    {kind: types.SymbolKindConstant, nameField: "name"},
		"static_item":   {kind: types.SymbolKindVariable, nameField: "name"},
	},
}

var csharpSpec = &langSpec{
	lang:    types.LangCSharp,
	grammar: lazyLanguage(tree_sitter_csharp.Language),
	containers: map[string]containerSpec{
		"namespace_declaration": {kind: types.SymbolKindNamespace, nameField: "name", emit: true},
		"class_declaration":     {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"interface_declaration": {kind: types.SymbolKindInterface, nameField: "name", emit: true, methodScope: true},
		"struct_declaration":    {kind: types.SymbolKindStruct, nameField: "name", emit: true, methodScope: true},
		"enum_declaration":      {kind: types.SymbolKindEnum, nameField: "name", emit: true},
	},
	defs: map[string]defSpec{
		"method_declaration":      {kind: types.SymbolKindMethod, nameField: "name", definition: true},
		"constructor_declaration": {kind: types.SymbolKindConstructor, nameField: "name", definition: true},
		"property_declaration":    {kind: types.SymbolKindProperty, nameField: "name"},
		"delegate_declaration":    {kind: types.SymbolKindDelegate, nameField: "name"},
	},
}

var phpSpec = &langSpec{
	lang:    types.LangPHP,
	grammar: lazyLanguage(tree_sitter_php.LanguagePHP),
	containers: map[string]containerSpec{
		"namespace_definition":  {kind: types.SymbolKindNamespace, nameField: "name", emit: true},
		"class_declaration":     {kind: types.SymbolKindClass, nameField: "name", emit: true, methodScope: true},
		"interface_declaration": {kind: types.SymbolKindInterface, nameField: "name", emit: true, methodScope: true},
		"trait_declaration":     {kind: types.SymbolKindTrait, nameField: "name", emit: true, methodScope: true},
		"enum_declaration":      {kind: types.SymbolKindEnum, nameField: "name", emit: true},
	},
	defs: map[string]defSpec{
		"function_definition": {kind: types.SymbolKindFunction, nameField: "name", definition: true},
		"method_declaration":  {kind: types.SymbolKindMethod, nameField: "name", definition: true},
	},
}

var zigSpec = &langSpec{
	lang:    types.LangZig,
	grammar: lazyLanguage(tree_sitter_zig.Language),
	defs: map[string]defSpec{
		"function_declaration": {kind: types.SymbolKindFunction, definition: true},
		"variable_declaration": {kind: types.SymbolKindVariable},
	},
}
