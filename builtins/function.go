package builtins

import (
	"math"

	"github.com/example/jscore/runtime"
)

// installFunctionPrototype fills in %Function.prototype%. The Function
// constructor itself compiles source text and is installed by the
// evaluator.
func installFunctionPrototype(realm *runtime.Realm) *runtime.Object {
	proto := realm.Intrinsic("%Function.prototype%")

	setMethod(realm, proto, "call", 1, functionCall)
	setMethod(realm, proto, "apply", 2, functionApply)
	setMethod(realm, proto, "bind", 1, functionBind)
	setMethod(realm, proto, "toString", 0, functionToString)
	hasInstance := newFuncObject(realm, "[Symbol.hasInstance]", 1, functionHasInstance)
	proto.DefineProperty(runtime.SymKey(runtime.SymHasInstance), runtime.DataDescriptor(runtime.NewObject(hasInstance), false, false, false))

	thrower := realm.Intrinsic("%ThrowTypeError%")
	for _, name := range []string{"caller", "arguments"} {
		proto.DefineProperty(runtime.StrKey(name), runtime.AccessorDescriptor(thrower, thrower, false, true))
	}
	return proto
}

func functionCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !runtime.IsCallable(this) {
		return nil, a.NewTypeError("Function.prototype.call called on %s, which is not a function", this.String())
	}
	var rest []*runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return runtime.Call(a, this, argAt(args, 0), rest)
}

func functionApply(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !runtime.IsCallable(this) {
		return nil, a.NewTypeError("Function.prototype.apply called on %s, which is not a function", this.String())
	}
	argArray := argAt(args, 1)
	if argArray.IsNullish() {
		return runtime.Call(a, this, argAt(args, 0), nil)
	}
	list, err := runtime.CreateListFromArrayLike(a, argArray, false)
	if err != nil {
		return nil, err
	}
	return runtime.Call(a, this, argAt(args, 0), list)
}

func functionBind(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !runtime.IsCallable(this) {
		return nil, a.NewTypeError("Bind must be called on a function")
	}
	target := this.Object
	var boundArgs []*runtime.Value
	if len(args) > 1 {
		boundArgs = args[1:]
	}
	bound, err := runtime.BoundFunctionCreate(a, target, argAt(args, 0), boundArgs)
	if err != nil {
		return nil, err
	}

	length := 0.0
	hasLength, err := runtime.HasOwnProperty(a, target, runtime.StrKey("length"))
	if err != nil {
		return nil, err
	}
	if hasLength {
		l, err := runtime.Get(a, target, runtime.StrKey("length"))
		if err != nil {
			return nil, err
		}
		if l.IsNumber() {
			switch {
			case math.IsInf(l.Number, 1):
				length = math.Inf(1)
			case !math.IsInf(l.Number, -1):
				length = math.Max(0, runtime.IntegerOrInfinity(l.Number)-float64(len(boundArgs)))
			}
		}
	}
	bound.DefineProperty(runtime.StrKey("length"), runtime.DataDescriptor(runtime.NewNumber(length), false, false, true))

	name, err := runtime.Get(a, target, runtime.StrKey("name"))
	if err != nil {
		return nil, err
	}
	prefix := "bound "
	if name.IsString() {
		bound.DefineProperty(runtime.StrKey("name"), runtime.DataDescriptor(runtime.NewUString(runtime.ConcatStrings(runtime.StringFromWTF8(prefix), name.Str)), false, false, true))
	} else {
		bound.DefineProperty(runtime.StrKey("name"), runtime.DataDescriptor(runtime.NewString(prefix), false, false, true))
	}
	return runtime.NewObject(bound), nil
}

func functionToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !runtime.IsCallable(this) {
		return nil, a.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
	}
	name := ""
	if v, ok := this.Object.OwnData(runtime.StrKey("name")); ok && v.IsString() {
		name = runtime.GoString(v.Str)
	}
	return runtime.NewString("function " + name + "() { [native code] }"), nil
}

func functionHasInstance(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	ok, err := runtime.OrdinaryHasInstance(a, this, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}
