package types

// SymbolKind classifies a declared entity. The string forms are part of the
// YAML persistence boundary, so renaming a kind is a format change.
type SymbolKind uint8

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindModule
	SymbolKindNamespace
	SymbolKindClass
	SymbolKindStruct
	SymbolKindUnion
	SymbolKindInterface
	SymbolKindTrait
	SymbolKindEnum
	SymbolKindEnumConstant
	SymbolKindTypeAlias
	SymbolKindFunction
	SymbolKindMethod
	SymbolKindConstructor
	SymbolKindVariable
	SymbolKindConstant
	SymbolKindField
	SymbolKindProperty
	SymbolKindDelegate
	SymbolKindEvent
)

var symbolKindNames = map[SymbolKind]string{
	SymbolKindUnknown:      "Unknown",
	SymbolKindModule:       "Module",
	SymbolKindNamespace:    "Namespace",
	SymbolKindClass:        "Class",
	SymbolKindStruct:       "Struct",
	SymbolKindUnion:        "Union",
	SymbolKindInterface:    "Interface",
	SymbolKindTrait:        "Trait",
	SymbolKindEnum:         "Enum",
	SymbolKindEnumConstant: "EnumConstant",
	SymbolKindTypeAlias:    "TypeAlias",
	SymbolKindFunction:     "Function",
	SymbolKindMethod:       "Method",
	SymbolKindConstructor:  "Constructor",
	SymbolKindVariable:     "Variable",
	SymbolKindConstant:     "Constant",
	SymbolKindField:        "Field",
	SymbolKindProperty:     "Property",
	SymbolKindDelegate:     "Delegate",
	SymbolKindEvent:        "Event",
}

var symbolKindValues = invert(symbolKindNames)

// String returns the boundary-format name of the kind.
func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseSymbolKind maps a boundary-format name back to a kind. Unrecognized
// names decode as SymbolKindUnknown, matching the decoder's defaults policy.
func ParseSymbolKind(name string) SymbolKind {
	return symbolKindValues[name]
}

// SymbolLanguage tags the source language a symbol was collected from.
type SymbolLanguage uint8

const (
	LangUnknown SymbolLanguage = iota
	LangC
	LangCpp
	LangGo
	LangPython
	LangJava
	LangJavaScript
	LangTypeScript
	LangRust
	LangCSharp
	LangPHP
	LangZig
)

var symbolLanguageNames = map[SymbolLanguage]string{
	LangUnknown:    "Unknown",
	LangC:          "C",
	LangCpp:        "Cpp",
	LangGo:         "Go",
	LangPython:     "Python",
	LangJava:       "Java",
	LangJavaScript: "JavaScript",
	LangTypeScript: "TypeScript",
	LangRust:       "Rust",
	LangCSharp:     "CSharp",
	LangPHP:        "PHP",
	LangZig:        "Zig",
}

var symbolLanguageValues = invert(symbolLanguageNames)

// String returns the boundary-format name of the language.
func (l SymbolLanguage) String() string {
	if name, ok := symbolLanguageNames[l]; ok {
		return name
	}
	return "Unknown"
}

// ParseSymbolLanguage maps a boundary-format name back to a language tag.
func ParseSymbolLanguage(name string) SymbolLanguage {
	return symbolLanguageValues[name]
}

// ScopeSeparator returns the qualifier separator used when building Scope
// strings for the language ("::" for C++/Rust, "\\" for PHP, "." otherwise).
func (l SymbolLanguage) ScopeSeparator() string {
	switch l {
	case LangC, LangCpp, LangRust:
		return "::"
	case LangPHP:
		return "\\"
	default:
		return "."
	}
}

// OccurrenceKind is a bit set describing the roles of one occurrence.
// A definition is typically also a declaration, so kinds combine.
type OccurrenceKind uint8

const (
	OccurrenceDeclaration OccurrenceKind = 1 << iota
	OccurrenceDefinition
	OccurrenceReference

	OccurrenceAny = OccurrenceDeclaration | OccurrenceDefinition | OccurrenceReference
)

// Intersects reports whether any role in k is also in filter.
func (k OccurrenceKind) Intersects(filter OccurrenceKind) bool {
	return k&filter != 0
}

func (k OccurrenceKind) String() string {
	switch {
	case k == 0:
		return "none"
	case k&OccurrenceDefinition != 0:
		return "definition"
	case k&OccurrenceDeclaration != 0:
		return "declaration"
	default:
		return "reference"
	}
}

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
