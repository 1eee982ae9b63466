package runtime

import (
	"github.com/google/uuid"
)

// Realm is a global environment with its own set of intrinsic objects.
type Realm struct {
	ID           uuid.UUID
	GlobalObject *Object
	GlobalEnv    *GlobalEnvironment
	HostDefined  interface{}

	// TemplateMap caches template objects per tagged template site.
	TemplateMap map[interface{}]*Object

	intrinsics map[string]*Object
}

// NewRealm creates a realm holding the fundamental intrinsics the core
// relies on. The built-in library fills in the rest.
func NewRealm(a *Agent) *Realm {
	r := &Realm{
		ID:          uuid.New(),
		TemplateMap: make(map[interface{}]*Object),
		intrinsics:  make(map[string]*Object),
	}
	objProto := NewOrdinaryObject(nil)
	r.SetIntrinsic("%Object.prototype%", objProto)

	fnProto := NewOrdinaryObject(objProto)
	fnProto.Kind = KindFunction
	fnProto.Realm = r
	fnProto.Callable = func(a *Agent, this *Value, args []*Value) (*Value, error) {
		return Undefined, nil
	}
	fnProto.DefineProperty(StrKey("length"), DataDescriptor(Zero, false, false, true))
	fnProto.DefineProperty(StrKey("name"), DataDescriptor(EmptyStr, false, false, true))
	r.SetIntrinsic("%Function.prototype%", fnProto)

	errProto := NewOrdinaryObject(objProto)
	errProto.DefineProperty(StrKey("name"), DataDescriptor(NewString("Error"), true, false, true))
	errProto.DefineProperty(StrKey("message"), DataDescriptor(EmptyStr, true, false, true))
	r.SetIntrinsic("%Error.prototype%", errProto)
	for _, kind := range NativeErrorKinds[1:] {
		p := NewOrdinaryObject(errProto)
		p.DefineProperty(StrKey("name"), DataDescriptor(NewString(kind), true, false, true))
		p.DefineProperty(StrKey("message"), DataDescriptor(EmptyStr, true, false, true))
		r.SetIntrinsic("%"+kind+".prototype%", p)
	}

	arrProto := newArrayObject(objProto)
	r.SetIntrinsic("%Array.prototype%", arrProto)
	r.SetIntrinsic("%String.prototype%", StringCreate("", objProto))

	wrappers := map[string]ObjectKind{
		"%Boolean.prototype%": KindBoolean,
		"%Number.prototype%":  KindNumber,
		"%Symbol.prototype%":  KindOrdinary,
		"%BigInt.prototype%":  KindOrdinary,
	}
	for name, kind := range wrappers {
		p := NewOrdinaryObject(objProto)
		p.Kind = kind
		r.SetIntrinsic(name, p)
	}
	r.intrinsics["%Boolean.prototype%"].SetSlot("[[BooleanData]]", False)
	r.intrinsics["%Number.prototype%"].SetSlot("[[NumberData]]", Zero)

	for _, name := range []string{
		"%Promise.prototype%",
		"%IteratorPrototype%",
	} {
		r.SetIntrinsic(name, NewOrdinaryObject(objProto))
	}
	r.SetIntrinsic("%AsyncIteratorPrototype%", NewOrdinaryObject(objProto))

	thrower := CreateBuiltinFunction(r, "", 0, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		return nil, a.NewTypeError("'caller', 'callee', and 'arguments' properties may not be accessed on strict mode functions or the arguments objects for calls to them")
	})
	thrower.DefineProperty(StrKey("length"), DataDescriptor(Zero, false, false, false))
	thrower.DefineProperty(StrKey("name"), DataDescriptor(EmptyStr, false, false, false))
	thrower.extensible = false
	r.SetIntrinsic("%ThrowTypeError%", thrower)

	global := NewOrdinaryObject(objProto)
	r.GlobalObject = global
	r.GlobalEnv = NewGlobalEnvironment(global, global)
	if a.realm == nil {
		a.realm = r
	}
	return r
}

// Intrinsic returns the named intrinsic, such as "%Array.prototype%", or
// nil when the realm does not define it.
func (r *Realm) Intrinsic(name string) *Object {
	return r.intrinsics[name]
}

func (r *Realm) SetIntrinsic(name string, o *Object) {
	r.intrinsics[name] = o
}

// NativeFunc implements a built-in function. newTarget is nil for calls.
type NativeFunc func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error)

// CreateBuiltinFunction wraps fn as a function object of realm. Each call
// runs in its own execution context.
func CreateBuiltinFunction(realm *Realm, name string, length int, fn NativeFunc) *Object {
	f := NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
	f.Kind = KindFunction
	f.Realm = realm
	f.Callable = func(a *Agent, this *Value, args []*Value) (*Value, error) {
		restore, err := a.Enter(&ExecutionContext{Function: f, Realm: realm, CallSite: CallSite{FunctionName: name}})
		if err != nil {
			return nil, err
		}
		defer restore()
		return fn(a, this, args, nil)
	}
	f.DefineProperty(StrKey("length"), DataDescriptor(NewNumber(float64(length)), false, false, true))
	f.DefineProperty(StrKey("name"), DataDescriptor(NewString(name), false, false, true))
	return f
}

// CreateBuiltinConstructor is CreateBuiltinFunction with a [[Construct]]
// that passes newTarget to fn.
func CreateBuiltinConstructor(realm *Realm, name string, length int, fn NativeFunc) *Object {
	f := CreateBuiltinFunction(realm, name, length, fn)
	f.Constructor = func(a *Agent, args []*Value, newTarget *Object) (*Value, error) {
		restore, err := a.Enter(&ExecutionContext{Function: f, Realm: realm, CallSite: CallSite{FunctionName: name, IsConstructor: true}})
		if err != nil {
			return nil, err
		}
		defer restore()
		return fn(a, Undefined, args, newTarget)
	}
	return f
}

// Arg returns args[i] or undefined.
func Arg(args []*Value, i int) *Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
