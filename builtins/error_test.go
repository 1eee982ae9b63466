package builtins

import (
	"strings"
	"testing"

	"github.com/example/jscore/runtime"
)

func TestErrorConstructor(t *testing.T) {
	a, realm := newTestRealm(t)
	e, err := construct(t, a, realm, "Error", str("boom"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Object.Kind != runtime.KindError {
		t.Fatal("expected an error object")
	}
	expectString(t, getProp(t, a, e, "message"), "boom")
	expectString(t, getProp(t, a, e, "name"), "Error")
	expectString(t, mustCall(t, a, realm, "Error.prototype.toString", e), "Error: boom")

	// The message is an own non-enumerable property.
	desc, ok := e.Object.OrdinaryGetOwnProperty(runtime.StrKey("message"))
	if !ok || desc.Enumerable {
		t.Errorf("message should be own and non-enumerable")
	}
}

func TestErrorCalledAsFunction(t *testing.T) {
	a, realm := newTestRealm(t)
	e := mustCall(t, a, realm, "TypeError", runtime.Undefined, str("bad"))
	if !runtime.IsErrorOfKind(&runtime.Exception{Value: e}, "TypeError") {
		t.Fatalf("expected a TypeError, got %s", e.String())
	}
	expectString(t, mustCall(t, a, realm, "Error.prototype.toString", e), "TypeError: bad")
}

func TestNativeErrorHierarchy(t *testing.T) {
	a, realm := newTestRealm(t)
	errorCtor := lookup(t, a, realm, "Error")
	for _, kind := range runtime.NativeErrorKinds[1:] {
		ctor := lookup(t, a, realm, kind)
		if ctor.Object.Proto() != errorCtor.Object {
			t.Errorf("%s should inherit from Error", kind)
		}
		proto := getProp(t, a, ctor, "prototype")
		if proto.Object.Proto() != realm.Intrinsic("%Error.prototype%") {
			t.Errorf("%s.prototype should inherit from Error.prototype", kind)
		}
		expectString(t, getProp(t, a, proto, "name"), kind)
	}
}

func TestErrorCause(t *testing.T) {
	a, realm := newTestRealm(t)
	opts := plainObject(t, a, map[string]*runtime.Value{"cause": str("root")})
	e, err := construct(t, a, realm, "Error", str("outer"), opts)
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, getProp(t, a, e, "cause"), "root")

	plain, err := construct(t, a, realm, "Error", str("x"), plainObject(t, a, nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := plain.Object.OrdinaryGetOwnProperty(runtime.StrKey("cause")); ok {
		t.Error("cause should be absent without the option")
	}
}

func TestErrorToStringEdgeCases(t *testing.T) {
	a, realm := newTestRealm(t)
	noMsg, err := construct(t, a, realm, "RangeError")
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, mustCall(t, a, realm, "Error.prototype.toString", noMsg), "RangeError")

	custom := plainObject(t, a, map[string]*runtime.Value{"name": str(""), "message": str("only message")})
	expectString(t, mustCall(t, a, realm, "Error.prototype.toString", custom), "only message")

	_, err = call(t, a, realm, "Error.prototype.toString", num(1))
	expectThrows(t, err, "TypeError")
}

func TestAggregateError(t *testing.T) {
	a, realm := newTestRealm(t)
	e, err := construct(t, a, realm, "AggregateError", arrayValue(a, vals(str("a"), str("b"))), str("many"))
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, getProp(t, a, e, "message"), "many")
	if got := joined(t, a, getProp(t, a, e, "errors")); got != "a,b" {
		t.Errorf("errors: got %s", got)
	}
	expectNumber(t, getProp(t, a, lookup(t, a, realm, "AggregateError"), "length"), 2)
}

func TestErrorStack(t *testing.T) {
	a, realm := newTestRealm(t)
	e, err := construct(t, a, realm, "SyntaxError", str("unexpected"))
	if err != nil {
		t.Fatal(err)
	}
	stack := getProp(t, a, e, "stack")
	if !strings.HasPrefix(stack.String(), "SyntaxError: unexpected") {
		t.Errorf("stack: got %q", stack.String())
	}
}

func TestThrownErrorsUseRealmPrototypes(t *testing.T) {
	a, realm := newTestRealm(t)
	err := a.NewRangeError("out of range")
	if err.Value.Object.Proto() != realm.Intrinsic("%RangeError.prototype%") {
		t.Error("engine errors should use the current realm's prototypes")
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("Error(): got %q", err.Error())
	}
}
