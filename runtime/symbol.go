package runtime

import "github.com/dop251/goja/unistring"

// Symbol is a unique property key. Identity is the pointer.
type Symbol struct {
	Description    unistring.String
	HasDescription bool
	registered     bool
}

func NewSymbol(description string) *Symbol {
	return &Symbol{Description: StringFromWTF8(description), HasDescription: true}
}

// DescriptiveString renders Symbol(description).
func (s *Symbol) DescriptiveString() string {
	return "Symbol(" + GoString(s.Description) + ")"
}

// Well-known symbols shared by every realm of the process.
var (
	SymIterator           = NewSymbol("Symbol.iterator")
	SymAsyncIterator      = NewSymbol("Symbol.asyncIterator")
	SymHasInstance        = NewSymbol("Symbol.hasInstance")
	SymToPrimitive        = NewSymbol("Symbol.toPrimitive")
	SymToStringTag        = NewSymbol("Symbol.toStringTag")
	SymUnscopables        = NewSymbol("Symbol.unscopables")
	SymSpecies            = NewSymbol("Symbol.species")
	SymIsConcatSpreadable = NewSymbol("Symbol.isConcatSpreadable")
	SymMatch              = NewSymbol("Symbol.match")
	SymMatchAll           = NewSymbol("Symbol.matchAll")
	SymReplace            = NewSymbol("Symbol.replace")
	SymSearch             = NewSymbol("Symbol.search")
	SymSplit              = NewSymbol("Symbol.split")
)

// WellKnownSymbols maps the property names of the Symbol constructor to the
// well-known symbols.
var WellKnownSymbols = map[string]*Symbol{
	"iterator":           SymIterator,
	"asyncIterator":      SymAsyncIterator,
	"hasInstance":        SymHasInstance,
	"toPrimitive":        SymToPrimitive,
	"toStringTag":        SymToStringTag,
	"unscopables":        SymUnscopables,
	"species":            SymSpecies,
	"isConcatSpreadable": SymIsConcatSpreadable,
	"match":              SymMatch,
	"matchAll":           SymMatchAll,
	"replace":            SymReplace,
	"search":             SymSearch,
	"split":              SymSplit,
}

// SymbolFor returns the registered symbol for key, creating it on first use.
func (a *Agent) SymbolFor(key unistring.String) *Symbol {
	if s, ok := a.symbolRegistry[key]; ok {
		return s
	}
	s := &Symbol{Description: key, HasDescription: true, registered: true}
	a.symbolRegistry[key] = s
	return s
}

// KeyFor returns the registry key of s.
func (a *Agent) KeyFor(s *Symbol) (unistring.String, bool) {
	if !s.registered {
		return "", false
	}
	return s.Description, true
}

// Registered reports whether s came from the global symbol registry.
func (s *Symbol) Registered() bool {
	return s.registered
}
