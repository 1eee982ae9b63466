package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func plainObject(t *testing.T, a *runtime.Agent, props map[string]*runtime.Value) *runtime.Value {
	t.Helper()
	o := a.NewPlainObject()
	for k, v := range props {
		if err := runtime.CreateDataPropertyOrThrow(a, o, runtime.StrKey(k), v); err != nil {
			t.Fatal(err)
		}
	}
	return runtime.NewObject(o)
}

func TestReflectGetSet(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := plainObject(t, a, map[string]*runtime.Value{"x": num(42)})
	reflect := lookup(t, a, realm, "Reflect")

	expectNumber(t, mustCall(t, a, realm, "Reflect.get", reflect, obj, str("x")), 42)
	expectBool(t, mustCall(t, a, realm, "Reflect.set", reflect, obj, str("y"), num(10)), true)
	expectNumber(t, getProp(t, a, obj, "y"), 10)

	_, err := call(t, a, realm, "Reflect.get", reflect, num(1), str("x"))
	expectThrows(t, err, "TypeError")
}

func TestReflectSetNonWritable(t *testing.T) {
	a, realm := newTestRealm(t)
	frozen := mustCall(t, a, realm, "Object.freeze", runtime.Undefined, plainObject(t, a, map[string]*runtime.Value{"x": num(1)}))
	expectBool(t, mustCall(t, a, realm, "Reflect.set", runtime.Undefined, frozen, str("x"), num(2)), false)
	expectNumber(t, getProp(t, a, frozen, "x"), 1)
}

func TestReflectHasDelete(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := plainObject(t, a, map[string]*runtime.Value{"x": num(1)})
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, obj, str("x")), true)
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, obj, str("toString")), true)
	expectBool(t, mustCall(t, a, realm, "Reflect.deleteProperty", runtime.Undefined, obj, str("x")), true)
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, obj, str("x")), false)
}

func TestReflectOwnKeysOrder(t *testing.T) {
	a, realm := newTestRealm(t)
	o := a.NewPlainObject()
	for _, k := range []string{"b", "2", "a", "1"} {
		runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey(k), num(0)))
	}
	keys := mustCall(t, a, realm, "Reflect.ownKeys", runtime.Undefined, runtime.NewObject(o))
	if got := joined(t, a, keys); got != "1,2,b,a" {
		t.Errorf("ownKeys: got %s", got)
	}
}

func TestReflectApplyConstruct(t *testing.T) {
	a, realm := newTestRealm(t)
	maxFn := lookup(t, a, realm, "Math.max")
	expectNumber(t, mustCall(t, a, realm, "Reflect.apply", runtime.Undefined, maxFn, runtime.Undefined, numberArray(a, 1, 5, 3)), 5)

	_, err := call(t, a, realm, "Reflect.apply", runtime.Undefined, num(1), runtime.Undefined, numberArray(a))
	expectThrows(t, err, "TypeError")

	arr := mustCall(t, a, realm, "Reflect.construct", runtime.Undefined, lookup(t, a, realm, "Array"), numberArray(a, 3))
	expectNumber(t, getProp(t, a, arr, "length"), 3)

	_, err = call(t, a, realm, "Reflect.construct", runtime.Undefined, maxFn, numberArray(a))
	expectThrows(t, err, "TypeError")
}

func TestReflectPrototypeAndExtensibility(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := plainObject(t, a, nil)
	proto := mustCall(t, a, realm, "Reflect.getPrototypeOf", runtime.Undefined, obj)
	if proto.Object != realm.Intrinsic("%Object.prototype%") {
		t.Error("expected %Object.prototype%")
	}
	expectBool(t, mustCall(t, a, realm, "Reflect.setPrototypeOf", runtime.Undefined, obj, runtime.Null), true)
	if !mustCall(t, a, realm, "Reflect.getPrototypeOf", runtime.Undefined, obj).IsNull() {
		t.Error("expected null prototype")
	}
	expectBool(t, mustCall(t, a, realm, "Reflect.isExtensible", runtime.Undefined, obj), true)
	expectBool(t, mustCall(t, a, realm, "Reflect.preventExtensions", runtime.Undefined, obj), true)
	expectBool(t, mustCall(t, a, realm, "Reflect.isExtensible", runtime.Undefined, obj), false)
	// A non-extensible object cannot change its prototype.
	expectBool(t, mustCall(t, a, realm, "Reflect.setPrototypeOf", runtime.Undefined, obj, plainObject(t, a, nil)), false)
}

func TestReflectDefineAndDescribe(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := plainObject(t, a, nil)
	desc := plainObject(t, a, map[string]*runtime.Value{"value": num(3), "writable": runtime.False})
	expectBool(t, mustCall(t, a, realm, "Reflect.defineProperty", runtime.Undefined, obj, str("k"), desc), true)

	got := mustCall(t, a, realm, "Reflect.getOwnPropertyDescriptor", runtime.Undefined, obj, str("k"))
	expectNumber(t, getProp(t, a, got, "value"), 3)
	expectBool(t, getProp(t, a, got, "writable"), false)
	expectBool(t, getProp(t, a, got, "enumerable"), false)
	expectBool(t, getProp(t, a, got, "configurable"), false)

	// Redefining a non-configurable property with a new value fails.
	changed := plainObject(t, a, map[string]*runtime.Value{"value": num(4)})
	expectBool(t, mustCall(t, a, realm, "Reflect.defineProperty", runtime.Undefined, obj, str("k"), changed), false)
	if v := mustCall(t, a, realm, "Reflect.getOwnPropertyDescriptor", runtime.Undefined, obj, str("missing")); !v.IsUndefined() {
		t.Errorf("expected undefined, got %s", v.String())
	}
}

func TestProxyGetTrap(t *testing.T) {
	a, realm := newTestRealm(t)
	target := plainObject(t, a, map[string]*runtime.Value{"x": num(1)})
	handler := a.NewPlainObject()
	setMethod(realm, handler, "get", 3, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return str("trapped " + argAt(args, 1).String()), nil
	})
	p, err := construct(t, a, realm, "Proxy", target, runtime.NewObject(handler))
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, getProp(t, a, p, "x"), "trapped x")
	expectString(t, mustCall(t, a, realm, "Reflect.get", runtime.Undefined, p, str("y")), "trapped y")
}

func TestProxyForwardsWithoutTraps(t *testing.T) {
	a, realm := newTestRealm(t)
	target := plainObject(t, a, map[string]*runtime.Value{"x": num(1)})
	p, err := construct(t, a, realm, "Proxy", target, plainObject(t, a, nil))
	if err != nil {
		t.Fatal(err)
	}
	expectBool(t, mustCall(t, a, realm, "Reflect.set", runtime.Undefined, p, str("y"), num(2)), true)
	expectNumber(t, getProp(t, a, target, "y"), 2)
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, p, str("x")), true)
}

func TestProxyInvariantViolation(t *testing.T) {
	a, realm := newTestRealm(t)
	target := mustCall(t, a, realm, "Object.freeze", runtime.Undefined, plainObject(t, a, map[string]*runtime.Value{"x": num(1)}))
	handler := a.NewPlainObject()
	setMethod(realm, handler, "get", 3, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return num(2), nil
	})
	p, err := construct(t, a, realm, "Proxy", target, runtime.NewObject(handler))
	if err != nil {
		t.Fatal(err)
	}
	_, err = runtime.GetV(a, p, runtime.StrKey("x"))
	expectThrows(t, err, "TypeError")
}

func TestProxyRequiresNewAndObjects(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Proxy", runtime.Undefined, plainObject(t, a, nil), plainObject(t, a, nil))
	expectThrows(t, err, "TypeError")
	_, err = construct(t, a, realm, "Proxy", num(1), plainObject(t, a, nil))
	expectThrows(t, err, "TypeError")
}

func TestProxyRevocable(t *testing.T) {
	a, realm := newTestRealm(t)
	target := plainObject(t, a, map[string]*runtime.Value{"x": num(1)})
	res := mustCall(t, a, realm, "Proxy.revocable", runtime.Undefined, target, plainObject(t, a, nil))
	p := getProp(t, a, res, "proxy")
	expectNumber(t, getProp(t, a, p, "x"), 1)

	if _, err := runtime.Call(a, getProp(t, a, res, "revoke"), runtime.Undefined, nil); err != nil {
		t.Fatal(err)
	}
	_, err := runtime.GetV(a, p, runtime.StrKey("x"))
	expectThrows(t, err, "TypeError")
}

func TestProxyCallableTarget(t *testing.T) {
	a, realm := newTestRealm(t)
	handler := a.NewPlainObject()
	setMethod(realm, handler, "apply", 3, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		n, err := runtime.LengthOfArrayLike(a, argAt(args, 2).Object)
		if err != nil {
			return nil, err
		}
		return num(float64(n)), nil
	})
	p, err := construct(t, a, realm, "Proxy", lookup(t, a, realm, "Math.max"), runtime.NewObject(handler))
	if err != nil {
		t.Fatal(err)
	}
	v, err := runtime.Call(a, p, runtime.Undefined, vals(num(1), num(2)))
	if err != nil {
		t.Fatal(err)
	}
	expectNumber(t, v, 2)
	expectString(t, mustCall(t, a, realm, "Object.prototype.toString", p), "[object Function]")
}
