package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestSymbolDescription(t *testing.T) {
	a, realm := newTestRealm(t)
	sym := mustCall(t, a, realm, "Symbol", runtime.Undefined, str("tag"))
	if !sym.IsSymbol() {
		t.Fatalf("expected a symbol, got %s", sym.String())
	}
	expectString(t, mustCall(t, a, realm, "Symbol.prototype.toString", sym), "Symbol(tag)")
	expectString(t, getProp(t, a, sym, "description"), "tag")

	anon := mustCall(t, a, realm, "Symbol", runtime.Undefined)
	if d := getProp(t, a, anon, "description"); !d.IsUndefined() {
		t.Errorf("expected undefined description, got %s", d.String())
	}
	expectString(t, mustCall(t, a, realm, "Symbol.prototype.toString", anon), "Symbol()")
}

func TestSymbolUnique(t *testing.T) {
	a, realm := newTestRealm(t)
	s1 := mustCall(t, a, realm, "Symbol", runtime.Undefined, str("x"))
	s2 := mustCall(t, a, realm, "Symbol", runtime.Undefined, str("x"))
	if s1.Symbol == s2.Symbol {
		t.Error("symbols with the same description should differ")
	}
}

func TestSymbolNotConstructor(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := construct(t, a, realm, "Symbol")
	expectThrows(t, err, "TypeError")
}

func TestSymbolRegistry(t *testing.T) {
	a, realm := newTestRealm(t)
	s1 := mustCall(t, a, realm, "Symbol.for", runtime.Undefined, str("app"))
	s2 := mustCall(t, a, realm, "Symbol.for", runtime.Undefined, str("app"))
	if s1.Symbol != s2.Symbol {
		t.Fatal("Symbol.for should return the registered symbol")
	}
	expectString(t, mustCall(t, a, realm, "Symbol.keyFor", runtime.Undefined, s1), "app")

	local := mustCall(t, a, realm, "Symbol", runtime.Undefined, str("app"))
	if v := mustCall(t, a, realm, "Symbol.keyFor", runtime.Undefined, local); !v.IsUndefined() {
		t.Errorf("keyFor on an unregistered symbol: got %s", v.String())
	}
	_, err := call(t, a, realm, "Symbol.keyFor", runtime.Undefined, str("app"))
	expectThrows(t, err, "TypeError")
}

func TestSymbolRegistrySharedAcrossRealms(t *testing.T) {
	a, realm := newTestRealm(t)
	other := runtime.NewRealm(a)
	Install(other)
	s1 := mustCall(t, a, realm, "Symbol.for", runtime.Undefined, str("shared"))
	s2 := mustCall(t, a, other, "Symbol.for", runtime.Undefined, str("shared"))
	if s1.Symbol != s2.Symbol {
		t.Error("the symbol registry belongs to the agent")
	}
}

func TestWellKnownSymbols(t *testing.T) {
	a, realm := newTestRealm(t)
	iter := lookup(t, a, realm, "Symbol.iterator")
	if iter.Symbol != runtime.SymIterator {
		t.Error("Symbol.iterator should be the well-known symbol")
	}
	expectString(t, getProp(t, a, iter, "description"), "Symbol.iterator")
}

func TestSymbolToStringThisCheck(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Symbol.prototype.toString", str("x"))
	expectThrows(t, err, "TypeError")
}
