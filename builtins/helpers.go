package builtins

import (
	"math"

	"github.com/dop251/goja/unistring"

	"github.com/example/jscore/runtime"
)

func newFuncObject(realm *runtime.Realm, name string, length int, fn runtime.NativeFunc) *runtime.Object {
	return runtime.CreateBuiltinFunction(realm, name, length, fn)
}

func setMethod(realm *runtime.Realm, obj *runtime.Object, name string, length int, fn runtime.NativeFunc) *runtime.Object {
	f := newFuncObject(realm, name, length, fn)
	obj.DefineProperty(runtime.StrKey(name), runtime.DataDescriptor(runtime.NewObject(f), true, false, true))
	return f
}

// setSymbolMethod installs a method keyed by a well-known symbol. Its name
// is "[description]".
func setSymbolMethod(realm *runtime.Realm, obj *runtime.Object, sym *runtime.Symbol, length int, fn runtime.NativeFunc) *runtime.Object {
	f := newFuncObject(realm, "["+runtime.GoString(sym.Description)+"]", length, fn)
	obj.DefineProperty(runtime.SymKey(sym), runtime.DataDescriptor(runtime.NewObject(f), true, false, true))
	return f
}

func setGetter(realm *runtime.Realm, obj *runtime.Object, key runtime.PropertyKey, fn runtime.NativeFunc) {
	name := "get " + key.String()
	if key.IsSymbol() {
		name = "get [" + runtime.GoString(key.Symbol.Description) + "]"
	}
	g := newFuncObject(realm, name, 0, fn)
	obj.DefineProperty(key, runtime.AccessorDescriptor(g, nil, false, true))
}

func setDataProp(obj *runtime.Object, name string, val *runtime.Value, writable, enumerable, configurable bool) {
	obj.DefineProperty(runtime.StrKey(name), runtime.DataDescriptor(val, writable, enumerable, configurable))
}

func setConstant(obj *runtime.Object, name string, val *runtime.Value) {
	setDataProp(obj, name, val, false, false, false)
}

func setToStringTag(obj *runtime.Object, tag string) {
	obj.DefineProperty(runtime.SymKey(runtime.SymToStringTag), runtime.DataDescriptor(runtime.NewString(tag), false, false, true))
}

// newConstructor creates a constructor and links it with proto through the
// prototype and constructor properties.
func newConstructor(realm *runtime.Realm, name string, length int, proto *runtime.Object, fn runtime.NativeFunc) *runtime.Object {
	ctor := runtime.CreateBuiltinConstructor(realm, name, length, fn)
	setDataProp(ctor, "prototype", runtime.NewObject(proto), false, false, false)
	setDataProp(proto, "constructor", runtime.NewObject(ctor), true, false, true)
	return ctor
}

// speciesGetter installs get [Symbol.species] returning this.
func speciesGetter(realm *runtime.Realm, ctor *runtime.Object) {
	setGetter(realm, ctor, runtime.SymKey(runtime.SymSpecies), func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return this, nil
	})
}

func argAt(args []*runtime.Value, i int) *runtime.Value {
	return runtime.Arg(args, i)
}

func toObject(v *runtime.Value) *runtime.Object {
	if v.IsObject() {
		return v.Object
	}
	return nil
}

// requireObject returns v as an object or throws a TypeError naming what.
func requireObject(a *runtime.Agent, v *runtime.Value, what string) (*runtime.Object, error) {
	if !v.IsObject() {
		return nil, a.NewTypeError("%s called on non-object", what)
	}
	return v.Object, nil
}

// thisSlot returns the internal slot of this, or a TypeError when this does
// not carry it.
func thisSlot(a *runtime.Agent, this *runtime.Value, slot, method string) (interface{}, error) {
	if this.IsObject() {
		if v := this.Object.Slot(slot); v != nil {
			return v, nil
		}
	}
	return nil, a.NewTypeError("Method %s called on incompatible receiver %s", method, this.String())
}

func arrayValue(a *runtime.Agent, vals []*runtime.Value) *runtime.Value {
	return runtime.NewObject(runtime.CreateArrayFromList(a, vals))
}

func stringArray(a *runtime.Agent, strs []string) *runtime.Value {
	vals := make([]*runtime.Value, len(strs))
	for i, s := range strs {
		vals[i] = runtime.NewString(s)
	}
	return arrayValue(a, vals)
}

func toStr(a *runtime.Agent, v *runtime.Value) (unistring.String, error) {
	return runtime.ToString(a, v)
}

func toGoStr(a *runtime.Agent, v *runtime.Value) (string, error) {
	return runtime.ToGoString(a, v)
}

// relativeIndex clamps a relative index argument (negative counts from
// the end) into [0, length].
func relativeIndex(a *runtime.Agent, v *runtime.Value, length int64, def int64) (int64, error) {
	if v.IsUndefined() {
		return def, nil
	}
	n, err := runtime.ToIntegerOrInfinity(a, v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = math.Max(float64(length)+n, 0)
	} else {
		n = math.Min(n, float64(length))
	}
	return int64(n), nil
}

func isNaN(f float64) bool { return math.IsNaN(f) }

func callFn(a *runtime.Agent, fn *runtime.Value, this *runtime.Value, args ...*runtime.Value) (*runtime.Value, error) {
	return runtime.Call(a, fn, this, args)
}
