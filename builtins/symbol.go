package builtins

import (
	"github.com/example/jscore/runtime"
)

func createSymbolConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Symbol.prototype%")

	setMethod(realm, proto, "toString", 0, symbolToString)
	setMethod(realm, proto, "valueOf", 0, symbolValueOf)
	setGetter(realm, proto, runtime.StrKey("description"), symbolDescription)
	toPrim := newFuncObject(realm, "[Symbol.toPrimitive]", 1, symbolValueOf)
	proto.DefineProperty(runtime.SymKey(runtime.SymToPrimitive), runtime.DataDescriptor(runtime.NewObject(toPrim), false, false, true))
	setToStringTag(proto, "Symbol")

	ctor := newConstructor(realm, "Symbol", 0, proto, symbolConstructorCall)
	setMethod(realm, ctor, "for", 1, symbolFor)
	setMethod(realm, ctor, "keyFor", 1, symbolKeyFor)
	for name, sym := range runtime.WellKnownSymbols {
		setConstant(ctor, name, runtime.NewSymbolValue(sym))
	}
	return ctor, proto
}

func symbolConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if nt != nil {
		return nil, a.NewTypeError("Symbol is not a constructor")
	}
	desc := argAt(args, 0)
	if desc.IsUndefined() {
		return runtime.NewSymbolValue(&runtime.Symbol{}), nil
	}
	s, err := toStr(a, desc)
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(&runtime.Symbol{Description: s, HasDescription: true}), nil
}

func thisSymbolValue(a *runtime.Agent, this *runtime.Value, method string) (*runtime.Symbol, error) {
	if this.IsSymbol() {
		return this.Symbol, nil
	}
	if this.IsObject() {
		if v, ok := this.Object.Slot("[[SymbolData]]").(*runtime.Value); ok {
			return v.Symbol, nil
		}
	}
	return nil, a.NewTypeError("Symbol.prototype.%s requires that 'this' be a Symbol", method)
}

func symbolToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisSymbolValue(a, this, "toString")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(s.DescriptiveString()), nil
}

func symbolValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisSymbolValue(a, this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(s), nil
}

func symbolDescription(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisSymbolValue(a, this, "description")
	if err != nil {
		return nil, err
	}
	if !s.HasDescription {
		return runtime.Undefined, nil
	}
	return runtime.NewUString(s.Description), nil
}

func symbolFor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	key, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(a.SymbolFor(key)), nil
}

func symbolKeyFor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	sym := argAt(args, 0)
	if !sym.IsSymbol() {
		return nil, a.NewTypeError("%s is not a symbol", sym.String())
	}
	if key, ok := a.KeyFor(sym.Symbol); ok {
		return runtime.NewUString(key), nil
	}
	return runtime.Undefined, nil
}
