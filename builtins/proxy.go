package builtins

import (
	"github.com/example/jscore/runtime"
)

func createProxyConstructor(realm *runtime.Realm) *runtime.Object {
	ctor := runtime.CreateBuiltinConstructor(realm, "Proxy", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if nt == nil {
			return nil, a.NewTypeError("Constructor Proxy requires 'new'")
		}
		p, err := runtime.ProxyCreate(a, argAt(args, 0), argAt(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(p), nil
	})
	setMethod(realm, ctor, "revocable", 2, proxyRevocable)
	return ctor
}

func proxyRevocable(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	p, err := runtime.ProxyCreate(a, argAt(args, 0), argAt(args, 1))
	if err != nil {
		return nil, err
	}
	data := p.Exotic.(*runtime.ProxyData)
	revoke := newFuncObject(a.CurrentRealm(), "", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		data.Revoke()
		return runtime.Undefined, nil
	})
	result := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("proxy"), runtime.NewObject(p)))
	runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("revoke"), runtime.NewObject(revoke)))
	return runtime.NewObject(result), nil
}

func createReflectObject(realm *runtime.Realm) *runtime.Object {
	r := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	setMethod(realm, r, "apply", 3, reflectApply)
	setMethod(realm, r, "construct", 2, reflectConstruct)
	setMethod(realm, r, "defineProperty", 3, reflectDefineProperty)
	setMethod(realm, r, "deleteProperty", 2, reflectDeleteProperty)
	setMethod(realm, r, "get", 2, reflectGet)
	setMethod(realm, r, "getOwnPropertyDescriptor", 2, reflectGetOwnPropertyDescriptor)
	setMethod(realm, r, "getPrototypeOf", 1, reflectGetPrototypeOf)
	setMethod(realm, r, "has", 2, reflectHas)
	setMethod(realm, r, "isExtensible", 1, reflectIsExtensible)
	setMethod(realm, r, "ownKeys", 1, reflectOwnKeys)
	setMethod(realm, r, "preventExtensions", 1, reflectPreventExtensions)
	setMethod(realm, r, "set", 3, reflectSet)
	setMethod(realm, r, "setPrototypeOf", 2, reflectSetPrototypeOf)
	setToStringTag(r, "Reflect")
	return r
}

// reflectTarget returns the first argument, which every Reflect function
// requires to be an object.
func reflectTarget(a *runtime.Agent, args []*runtime.Value, method string) (*runtime.Object, error) {
	return requireObject(a, argAt(args, 0), "Reflect."+method)
}

// reflectKey returns the target and the property key argument.
func reflectKey(a *runtime.Agent, args []*runtime.Value, method string) (*runtime.Object, runtime.PropertyKey, error) {
	target, err := reflectTarget(a, args, method)
	if err != nil {
		return nil, runtime.PropertyKey{}, err
	}
	key, err := runtime.ToPropertyKey(a, argAt(args, 1))
	return target, key, err
}

func boolResult(ok bool, err error) (*runtime.Value, error) {
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}

func reflectApply(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	fn := argAt(args, 0)
	if !runtime.IsCallable(fn) {
		return nil, a.NewTypeError("Function.prototype.apply was called on %s, which is not a function", fn.String())
	}
	list, err := runtime.CreateListFromArrayLike(a, argAt(args, 2), false)
	if err != nil {
		return nil, err
	}
	return runtime.Call(a, fn, argAt(args, 1), list)
}

func reflectConstruct(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target := argAt(args, 0)
	if !runtime.IsConstructor(target) {
		return nil, a.NewTypeError("%s is not a constructor", target.String())
	}
	newTarget := target
	if len(args) > 2 {
		newTarget = args[2]
		if !runtime.IsConstructor(newTarget) {
			return nil, a.NewTypeError("%s is not a constructor", newTarget.String())
		}
	}
	list, err := runtime.CreateListFromArrayLike(a, argAt(args, 1), false)
	if err != nil {
		return nil, err
	}
	return runtime.Construct(a, target.Object, list, newTarget.Object)
}

func reflectDefineProperty(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "defineProperty")
	if err != nil {
		return nil, err
	}
	desc, err := runtime.ToPropertyDescriptor(a, argAt(args, 2))
	if err != nil {
		return nil, err
	}
	return boolResult(target.DefineOwnProperty(a, key, desc))
}

func reflectDeleteProperty(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "deleteProperty")
	if err != nil {
		return nil, err
	}
	return boolResult(target.Delete(a, key))
}

func reflectGet(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "get")
	if err != nil {
		return nil, err
	}
	receiver := runtime.NewObject(target)
	if len(args) > 2 {
		receiver = args[2]
	}
	return target.Get(a, key, receiver)
}

func reflectGetOwnPropertyDescriptor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "getOwnPropertyDescriptor")
	if err != nil {
		return nil, err
	}
	desc, found, err := target.GetOwnProperty(a, key)
	if err != nil {
		return nil, err
	}
	return runtime.FromPropertyDescriptor(a, desc, found), nil
}

func reflectGetPrototypeOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := reflectTarget(a, args, "getPrototypeOf")
	if err != nil {
		return nil, err
	}
	proto, err := target.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	return runtime.ObjectOrNull(proto), nil
}

func reflectHas(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "has")
	if err != nil {
		return nil, err
	}
	return boolResult(target.HasProperty(a, key))
}

func reflectIsExtensible(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := reflectTarget(a, args, "isExtensible")
	if err != nil {
		return nil, err
	}
	return boolResult(target.IsExtensible(a))
}

func reflectOwnKeys(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := reflectTarget(a, args, "ownKeys")
	if err != nil {
		return nil, err
	}
	keys, err := target.OwnPropertyKeys(a)
	if err != nil {
		return nil, err
	}
	vals := make([]*runtime.Value, len(keys))
	for i, k := range keys {
		vals[i] = k.ToValue()
	}
	return arrayValue(a, vals), nil
}

func reflectPreventExtensions(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := reflectTarget(a, args, "preventExtensions")
	if err != nil {
		return nil, err
	}
	return boolResult(target.PreventExtensions(a))
}

func reflectSet(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, key, err := reflectKey(a, args, "set")
	if err != nil {
		return nil, err
	}
	receiver := runtime.NewObject(target)
	if len(args) > 3 {
		receiver = args[3]
	}
	return boolResult(target.Set(a, key, argAt(args, 2), receiver))
}

func reflectSetPrototypeOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := reflectTarget(a, args, "setPrototypeOf")
	if err != nil {
		return nil, err
	}
	proto := argAt(args, 1)
	if !proto.IsObject() && !proto.IsNull() {
		return nil, a.NewTypeError("Object prototype may only be an Object or null: %s", proto.String())
	}
	return boolResult(target.SetPrototypeOf(a, toObject(proto)))
}
