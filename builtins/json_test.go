package builtins

import (
	"math/big"
	"testing"

	"github.com/example/jscore/runtime"
)

func parseJSON(t *testing.T, a *runtime.Agent, realm *runtime.Realm, text string) *runtime.Value {
	t.Helper()
	return mustCall(t, a, realm, "JSON.parse", runtime.Undefined, str(text))
}

func stringify(t *testing.T, a *runtime.Agent, realm *runtime.Realm, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	return mustCall(t, a, realm, "JSON.stringify", runtime.Undefined, args...)
}

func TestJSONParsePrimitives(t *testing.T) {
	a, realm := newTestRealm(t)
	expectNumber(t, parseJSON(t, a, realm, "42"), 42)
	expectNumber(t, parseJSON(t, a, realm, "-1.5e2"), -150)
	expectString(t, parseJSON(t, a, realm, `"hi\né"`), "hi\né")
	expectBool(t, parseJSON(t, a, realm, " true "), true)
	if v := parseJSON(t, a, realm, "null"); !v.IsNull() {
		t.Errorf("expected null, got %s", v.String())
	}
}

func TestJSONParseStructures(t *testing.T) {
	a, realm := newTestRealm(t)
	v := parseJSON(t, a, realm, `{"z": 1, "a": [1, 2, {"b": null}], "m": "x"}`)
	keys := mustCall(t, a, realm, "Object.keys", runtime.Undefined, v)
	if got := joined(t, a, keys); got != "z,a,m" {
		t.Errorf("key order: got %s", got)
	}
	arr := getProp(t, a, v, "a")
	if ok, _ := runtime.IsArray(a, arr); !ok {
		t.Fatal("expected an array")
	}
	expectNumber(t, getProp(t, a, arr, "length"), 3)
}

func TestJSONParseErrors(t *testing.T) {
	a, realm := newTestRealm(t)
	for _, text := range []string{"", "{", "[1,]", "{'a': 1}", "1 2", "undefined", "01"} {
		_, err := call(t, a, realm, "JSON.parse", runtime.Undefined, str(text))
		expectThrows(t, err, "SyntaxError")
	}
}

func TestJSONParseReviver(t *testing.T) {
	a, realm := newTestRealm(t)
	var seen []string
	reviver := fn(realm, func(args []*runtime.Value) *runtime.Value {
		seen = append(seen, args[0].String())
		if args[1].IsNumber() {
			return num(args[1].Number * 10)
		}
		if args[0].String() == "drop" {
			return runtime.Undefined
		}
		return args[1]
	})
	v := mustCall(t, a, realm, "JSON.parse", runtime.Undefined, str(`{"a": 1, "b": [2], "drop": "x"}`), reviver)
	expectNumber(t, getProp(t, a, v, "a"), 10)
	expectNumber(t, getProp(t, a, getProp(t, a, v, "b"), "0"), 20)
	expectBool(t, mustCall(t, a, realm, "Object.hasOwn", runtime.Undefined, v, str("drop")), false)
	// Children are visited before their holders; the root key is last.
	if len(seen) == 0 || seen[len(seen)-1] != "" {
		t.Errorf("reviver order: %v", seen)
	}
}

func TestJSONStringifyBasic(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := parseJSON(t, a, realm, `{"a": 1, "b": [true, null, "s"], "c": {}}`)
	expectString(t, stringify(t, a, realm, obj), `{"a":1,"b":[true,null,"s"],"c":{}}`)
	expectString(t, stringify(t, a, realm, str("q\"\n")), `"q\"\n"`)
	expectString(t, stringify(t, a, realm, runtime.NaN), "null")
	if v := stringify(t, a, realm, runtime.Undefined); !v.IsUndefined() {
		t.Errorf("stringify(undefined): got %s", v.String())
	}
}

func TestJSONStringifySkipsUnserializable(t *testing.T) {
	a, realm := newTestRealm(t)
	o := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("f"), fn(realm, func([]*runtime.Value) *runtime.Value { return runtime.Undefined })))
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("u"), runtime.Undefined))
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("n"), num(1)))
	expectString(t, stringify(t, a, realm, runtime.NewObject(o)), `{"n":1}`)

	arr := arrayValue(a, vals(runtime.Undefined, fn(realm, func([]*runtime.Value) *runtime.Value { return runtime.Undefined })))
	expectString(t, stringify(t, a, realm, arr), "[null,null]")
}

func TestJSONStringifyIndent(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := parseJSON(t, a, realm, `{"a": [1, 2], "b": {}}`)
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}"
	expectString(t, stringify(t, a, realm, obj, runtime.Undefined, num(2)), want)
	expectString(t, stringify(t, a, realm, parseJSON(t, a, realm, `[1]`), runtime.Undefined, str("--")), "[\n--1\n]")
}

func TestJSONStringifyReplacer(t *testing.T) {
	a, realm := newTestRealm(t)
	obj := parseJSON(t, a, realm, `{"a": 1, "b": 2, "c": 3}`)
	list := arrayValue(a, vals(str("c"), str("a")))
	expectString(t, stringify(t, a, realm, obj, list), `{"c":3,"a":1}`)

	double := fn(realm, func(args []*runtime.Value) *runtime.Value {
		if args[1].IsNumber() {
			return num(args[1].Number * 2)
		}
		return args[1]
	})
	expectString(t, stringify(t, a, realm, obj, double), `{"a":2,"b":4,"c":6}`)
}

func TestJSONStringifyToJSONAndWrappers(t *testing.T) {
	a, realm := newTestRealm(t)
	o := a.NewPlainObject()
	setMethod(realm, o, "toJSON", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return runtime.NewString("custom:" + argAt(args, 0).String()), nil
	})
	holder := plainObject(t, a, map[string]*runtime.Value{"k": runtime.NewObject(o)})
	expectString(t, stringify(t, a, realm, holder), `{"k":"custom:k"}`)

	boxed, err := construct(t, a, realm, "String", str("w"))
	if err != nil {
		t.Fatal(err)
	}
	expectString(t, stringify(t, a, realm, boxed), `"w"`)
}

func TestJSONStringifyErrors(t *testing.T) {
	a, realm := newTestRealm(t)
	o := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("self"), runtime.NewObject(o)))
	_, err := call(t, a, realm, "JSON.stringify", runtime.Undefined, runtime.NewObject(o))
	expectThrows(t, err, "TypeError")

	_, err = call(t, a, realm, "JSON.stringify", runtime.Undefined, runtime.NewBigInt(big.NewInt(1)))
	expectThrows(t, err, "TypeError")
}

func TestJSONStringifyLoneSurrogate(t *testing.T) {
	a, realm := newTestRealm(t)
	lone := runtime.NewUString(runtime.StringFromUnits([]uint16{0xD800}))
	expectString(t, stringify(t, a, realm, lone), `"\ud800"`)
}
