package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

// thisAndArgs returns a guest function reporting its receiver and arguments
// as a single string.
func thisAndArgs(realm *runtime.Realm) *runtime.Value {
	return runtime.NewObject(newFuncObject(realm, "echo", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s := this.String()
		for _, v := range args {
			s += "|" + v.String()
		}
		return runtime.NewString(s), nil
	}))
}

func TestFunctionCall(t *testing.T) {
	a, realm := newTestRealm(t)
	echo := thisAndArgs(realm)
	expectString(t, mustCall(t, a, realm, "%Function.prototype%.call", echo, str("self"), num(1), num(2)), "self|1|2")
	expectString(t, mustCall(t, a, realm, "%Function.prototype%.call", echo), "undefined")

	_, err := call(t, a, realm, "%Function.prototype%.call", num(1))
	expectThrows(t, err, "TypeError")
}

func TestFunctionApply(t *testing.T) {
	a, realm := newTestRealm(t)
	echo := thisAndArgs(realm)
	expectString(t, mustCall(t, a, realm, "%Function.prototype%.apply", echo, str("self"), numberArray(a, 1, 2)), "self|1|2")
	expectString(t, mustCall(t, a, realm, "%Function.prototype%.apply", echo, str("self"), runtime.Null), "self")

	_, err := call(t, a, realm, "%Function.prototype%.apply", echo, str("self"), num(3))
	expectThrows(t, err, "TypeError")
}

func TestFunctionBind(t *testing.T) {
	a, realm := newTestRealm(t)
	echo := thisAndArgs(realm)
	bound := mustCall(t, a, realm, "%Function.prototype%.bind", echo, str("self"), num(1))

	v, err := runtime.Call(a, bound, str("ignored"), vals(num(2)))
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, v, "self|1|2")
	expectString(t, getProp(t, a, bound, "name"), "bound echo")
	expectNumber(t, getProp(t, a, bound, "length"), 1)
	if bound.Object.Kind != runtime.KindBoundFunction {
		t.Errorf("expected a bound function exotic object")
	}
}

func TestFunctionBindConstruct(t *testing.T) {
	a, realm := newTestRealm(t)
	array := lookup(t, a, realm, "Array")
	bound := mustCall(t, a, realm, "%Function.prototype%.bind", array, runtime.Null, num(1), num(2))

	arr, err := runtime.Construct(a, bound.Object, vals(num(3)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := joined(t, a, arr); got != "1,2,3" {
		t.Errorf("new bound Array: got %s", got)
	}
	ok, err := runtime.OrdinaryHasInstance(a, bound, arr)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("instanceof should see through the bound function")
	}
}

func TestFunctionHasInstance(t *testing.T) {
	a, realm := newTestRealm(t)
	array := lookup(t, a, realm, "Array")
	hasInstance, err := runtime.GetV(a, array, runtime.SymKey(runtime.SymHasInstance))
	if err != nil {
		t.Fatal(err)
	}
	v, err := runtime.Call(a, hasInstance, array, vals(numberArray(a, 1)))
	if err != nil {
		t.Fatal(err)
	}
	expectBool(t, v, true)
	v, err = runtime.Call(a, hasInstance, array, vals(plainObject(t, a, nil)))
	if err != nil {
		t.Fatal(err)
	}
	expectBool(t, v, false)
}

func TestFunctionToString(t *testing.T) {
	a, realm := newTestRealm(t)
	expectString(t, mustCall(t, a, realm, "%Function.prototype%.toString", thisAndArgs(realm)), "function echo() { [native code] }")
	_, err := call(t, a, realm, "%Function.prototype%.toString", plainObject(t, a, nil))
	expectThrows(t, err, "TypeError")
}

func TestFunctionPrototypeRestrictedProperties(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := runtime.GetV(a, lookup(t, a, realm, "%Function.prototype%"), runtime.StrKey("caller"))
	expectThrows(t, err, "TypeError")
}
