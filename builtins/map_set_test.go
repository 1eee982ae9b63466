package builtins

import (
	"math"
	"testing"

	"github.com/example/jscore/runtime"
)

func newTestCollection(t *testing.T, a *runtime.Agent, realm *runtime.Realm, name string, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := construct(t, a, realm, name, args...)
	if err != nil {
		t.Fatalf("new %s: %v", name, err)
	}
	return v
}

func TestMapBasic(t *testing.T) {
	a, realm := newTestRealm(t)
	m := newTestCollection(t, a, realm, "Map")

	mustCall(t, a, realm, "Map.prototype.set", m, str("a"), num(1))
	mustCall(t, a, realm, "Map.prototype.set", m, num(2), str("two"))
	expectNumber(t, mustCall(t, a, realm, "Map.prototype.get", m, str("a")), 1)
	expectString(t, mustCall(t, a, realm, "Map.prototype.get", m, num(2)), "two")
	expectBool(t, mustCall(t, a, realm, "Map.prototype.has", m, str("2")), false)
	expectNumber(t, getProp(t, a, m, "size"), 2)
	if v := mustCall(t, a, realm, "Map.prototype.get", m, str("missing")); !v.IsUndefined() {
		t.Errorf("expected undefined, got %s", v.String())
	}
}

func TestMapSameValueZero(t *testing.T) {
	a, realm := newTestRealm(t)
	m := newTestCollection(t, a, realm, "Map")

	mustCall(t, a, realm, "Map.prototype.set", m, runtime.NaN, str("nan"))
	mustCall(t, a, realm, "Map.prototype.set", m, num(math.Copysign(0, -1)), str("zero"))
	expectString(t, mustCall(t, a, realm, "Map.prototype.get", m, runtime.NaN), "nan")
	expectString(t, mustCall(t, a, realm, "Map.prototype.get", m, num(0)), "zero")

	// -0 keys are normalized to +0.
	keys := mustCall(t, a, realm, "Array.from", lookup(t, a, realm, "Array"), mustCall(t, a, realm, "Map.prototype.keys", m))
	k := elements(t, a, keys)[1]
	if k.Number != 0 || math.Signbit(k.Number) {
		t.Errorf("expected +0 key, got %v", k.Number)
	}
}

func TestMapDelete(t *testing.T) {
	a, realm := newTestRealm(t)
	m := newTestCollection(t, a, realm, "Map")
	mustCall(t, a, realm, "Map.prototype.set", m, str("a"), num(1))

	expectBool(t, mustCall(t, a, realm, "Map.prototype.delete", m, str("a")), true)
	expectBool(t, mustCall(t, a, realm, "Map.prototype.delete", m, str("a")), false)
	expectNumber(t, getProp(t, a, m, "size"), 0)
}

func TestMapClear(t *testing.T) {
	a, realm := newTestRealm(t)
	entries := arrayValue(a, vals(arrayValue(a, vals(str("a"), num(1))), arrayValue(a, vals(str("b"), num(2)))))
	m := newTestCollection(t, a, realm, "Map", entries)
	expectNumber(t, getProp(t, a, m, "size"), 2)

	mustCall(t, a, realm, "Map.prototype.clear", m)
	expectNumber(t, getProp(t, a, m, "size"), 0)
}

func TestSetBasic(t *testing.T) {
	a, realm := newTestRealm(t)
	s := newTestCollection(t, a, realm, "Set", numberArray(a, 1, 2, 2, 3))

	expectNumber(t, getProp(t, a, s, "size"), 3)
	expectBool(t, mustCall(t, a, realm, "Set.prototype.has", s, num(2)), true)
	expectBool(t, mustCall(t, a, realm, "Set.prototype.has", s, num(4)), false)
	if mustCall(t, a, realm, "Set.prototype.add", s, num(4)).Object != s.Object {
		t.Error("add should return the set")
	}
}

func TestSetDelete(t *testing.T) {
	a, realm := newTestRealm(t)
	s := newTestCollection(t, a, realm, "Set", numberArray(a, 1, 2))
	expectBool(t, mustCall(t, a, realm, "Set.prototype.delete", s, num(1)), true)
	expectBool(t, mustCall(t, a, realm, "Set.prototype.delete", s, num(1)), false)
	expectNumber(t, getProp(t, a, s, "size"), 1)
}

func TestMapForEach(t *testing.T) {
	a, realm := newTestRealm(t)
	m := newTestCollection(t, a, realm, "Map")
	mustCall(t, a, realm, "Map.prototype.set", m, str("x"), num(1))
	mustCall(t, a, realm, "Map.prototype.set", m, str("y"), num(2))

	var seen []string
	visit := fn(realm, func(args []*runtime.Value) *runtime.Value {
		seen = append(seen, args[1].String()+"="+args[0].String())
		return runtime.Undefined
	})
	mustCall(t, a, realm, "Map.prototype.forEach", m, visit)
	if len(seen) != 2 || seen[0] != "x=1" || seen[1] != "y=2" {
		t.Errorf("forEach order: got %v", seen)
	}
}

func TestSetForEach(t *testing.T) {
	a, realm := newTestRealm(t)
	s := newTestCollection(t, a, realm, "Set", numberArray(a, 3, 1))

	var seen []float64
	visit := fn(realm, func(args []*runtime.Value) *runtime.Value {
		seen = append(seen, args[0].Number)
		return runtime.Undefined
	})
	mustCall(t, a, realm, "Set.prototype.forEach", s, visit)
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 1 {
		t.Errorf("forEach order: got %v", seen)
	}
}

func TestMapIterationSeesLaterEntries(t *testing.T) {
	a, realm := newTestRealm(t)
	m := newTestCollection(t, a, realm, "Map")
	mustCall(t, a, realm, "Map.prototype.set", m, num(1), num(1))

	it := mustCall(t, a, realm, "Map.prototype.keys", m)
	next := getProp(t, a, it, "next")
	rec := &runtime.IteratorRecord{Iterator: it.Object, NextMethod: next}

	v, done, err := runtime.IteratorStepValue(a, rec)
	if err != nil || done {
		t.Fatalf("first step: %v %v", done, err)
	}
	expectNumber(t, v, 1)
	mustCall(t, a, realm, "Map.prototype.delete", m, num(1))
	mustCall(t, a, realm, "Map.prototype.set", m, num(2), num(2))
	v, done, err = runtime.IteratorStepValue(a, rec)
	if err != nil || done {
		t.Fatalf("second step: %v %v", done, err)
	}
	expectNumber(t, v, 2)
}

func TestWeakMapRejectsPrimitives(t *testing.T) {
	a, realm := newTestRealm(t)
	wm := newTestCollection(t, a, realm, "WeakMap")
	key := runtime.NewObject(a.NewPlainObject())

	mustCall(t, a, realm, "WeakMap.prototype.set", wm, key, num(1))
	expectNumber(t, mustCall(t, a, realm, "WeakMap.prototype.get", wm, key), 1)
	_, err := call(t, a, realm, "WeakMap.prototype.set", wm, str("k"), num(1))
	expectThrows(t, err, "TypeError")

	ws := newTestCollection(t, a, realm, "WeakSet")
	_, err = call(t, a, realm, "WeakSet.prototype.add", ws, num(1))
	expectThrows(t, err, "TypeError")
}

func TestCollectionRequiresNew(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Map", runtime.Undefined)
	expectThrows(t, err, "TypeError")
}

func TestMapGroupBy(t *testing.T) {
	a, realm := newTestRealm(t)
	parity := fn(realm, func(args []*runtime.Value) *runtime.Value {
		if int(args[0].Number)%2 == 0 {
			return str("even")
		}
		return str("odd")
	})
	groups := mustCall(t, a, realm, "Map.groupBy", runtime.Undefined, numberArray(a, 1, 2, 3), parity)
	odd := mustCall(t, a, realm, "Map.prototype.get", groups, str("odd"))
	if got := joined(t, a, odd); got != "1,3" {
		t.Errorf("odd group: got %s", got)
	}
	byObject := mustCall(t, a, realm, "Object.groupBy", runtime.Undefined, numberArray(a, 1, 2, 3), parity)
	if got := joined(t, a, getProp(t, a, byObject, "even")); got != "2" {
		t.Errorf("Object.groupBy even: got %s", got)
	}
}
