package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestInstallDefinesGlobals(t *testing.T) {
	_, realm := newTestRealm(t)
	names := []string{
		"Object", "Array", "String", "Number", "Boolean", "BigInt", "Symbol",
		"Error", "TypeError", "ReferenceError", "SyntaxError", "RangeError",
		"URIError", "EvalError", "AggregateError",
		"RegExp", "Date", "Map", "Set", "WeakMap", "WeakSet",
		"Promise", "Proxy", "Reflect", "ArrayBuffer",
		"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
		"Int32Array", "Uint32Array", "Float32Array", "Float64Array",
		"BigInt64Array", "BigUint64Array",
		"Math", "JSON", "console",
		"parseInt", "parseFloat", "isNaN", "isFinite",
		"encodeURI", "decodeURI", "encodeURIComponent", "decodeURIComponent",
		"escape", "unescape", "globalThis", "undefined", "NaN", "Infinity",
	}
	for _, name := range names {
		if _, ok := realm.GlobalObject.OrdinaryGetOwnProperty(runtime.StrKey(name)); !ok {
			t.Errorf("missing global %s", name)
		}
	}
}

func TestInstallGlobalAttributes(t *testing.T) {
	_, realm := newTestRealm(t)
	desc, ok := realm.GlobalObject.OrdinaryGetOwnProperty(runtime.StrKey("Array"))
	if !ok {
		t.Fatal("missing Array")
	}
	if !desc.Writable || desc.Enumerable || !desc.Configurable {
		t.Errorf("Array: expected writable, non-enumerable, configurable; got %+v", desc)
	}
}

func TestInstallIntrinsics(t *testing.T) {
	a, realm := newTestRealm(t)
	for name, path := range map[string]string{
		"%Array%":            "Array",
		"%Promise%":          "Promise",
		"%Array.prototype%":  "Array.prototype",
		"%Object.prototype%": "Object.prototype",
		"%Date.prototype%":   "Date.prototype",
		"%TypeError%":        "TypeError",
		"%Uint8Array%":       "Uint8Array",
		"%ArrayBuffer%":      "ArrayBuffer",
	} {
		if got := realm.Intrinsic(name); got == nil || got != lookup(t, a, realm, path).Object {
			t.Errorf("intrinsic %s should be %s", name, path)
		}
	}
}

func TestRealmsAreIndependent(t *testing.T) {
	a, realm := newTestRealm(t)
	other := runtime.NewRealm(a)
	Install(other)
	if lookup(t, a, realm, "Array").Object == lookup(t, a, other, "Array").Object {
		t.Error("each realm gets its own Array constructor")
	}
	// An array from one realm is not an instance of another realm's Array,
	// but Array.isArray still recognizes it.
	arr := numberArray(a, 1)
	expectBool(t, mustCall(t, a, other, "Array.isArray", runtime.Undefined, arr), true)
}
