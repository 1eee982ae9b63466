package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

// fn wraps a Go callback as a guest function.
func fn(realm *runtime.Realm, f func(args []*runtime.Value) *runtime.Value) *runtime.Value {
	return runtime.NewObject(newFuncObject(realm, "", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return f(args), nil
	}))
}

func TestArrayPushPop(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3)

	expectNumber(t, mustCall(t, a, realm, "Array.prototype.push", arr, num(4)), 4)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.pop", arr), 4)
	if got := joined(t, a, arr); got != "1,2,3" {
		t.Errorf("expected 1,2,3, got %s", got)
	}
	empty := numberArray(a)
	if v := mustCall(t, a, realm, "Array.prototype.pop", empty); !v.IsUndefined() {
		t.Errorf("pop on empty array: expected undefined, got %s", v.String())
	}
}

func TestArrayShiftUnshift(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3)

	expectNumber(t, mustCall(t, a, realm, "Array.prototype.shift", arr), 1)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.unshift", arr, num(-1), num(0)), 4)
	if got := joined(t, a, arr); got != "-1,0,2,3" {
		t.Errorf("expected -1,0,2,3, got %s", got)
	}
}

func TestArraySlice(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3, 4, 5)

	cases := []struct {
		args []*runtime.Value
		want string
	}{
		{vals(num(1), num(3)), "2,3"},
		{vals(num(-2)), "4,5"},
		{vals(), "1,2,3,4,5"},
		{vals(num(4), num(1)), ""},
	}
	for _, c := range cases {
		got := joined(t, a, mustCall(t, a, realm, "Array.prototype.slice", arr, c.args...))
		if got != c.want {
			t.Errorf("slice: expected %q, got %q", c.want, got)
		}
	}
}

func TestArraySplice(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3, 4, 5)

	removed := mustCall(t, a, realm, "Array.prototype.splice", arr, num(1), num(2), num(9))
	if got := joined(t, a, removed); got != "2,3" {
		t.Errorf("removed: expected 2,3, got %s", got)
	}
	if got := joined(t, a, arr); got != "1,9,4,5" {
		t.Errorf("array: expected 1,9,4,5, got %s", got)
	}
}

func TestArrayIndexOf(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3, 2)

	expectNumber(t, mustCall(t, a, realm, "Array.prototype.indexOf", arr, num(2)), 1)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.lastIndexOf", arr, num(2)), 3)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.indexOf", arr, num(7)), -1)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.indexOf", arr, num(2), num(2)), 3)
}

func TestArrayIncludes(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := arrayValue(a, vals(num(1), runtime.NaN))

	expectBool(t, mustCall(t, a, realm, "Array.prototype.includes", arr, runtime.NaN), true)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.indexOf", arr, runtime.NaN), -1)
	expectBool(t, mustCall(t, a, realm, "Array.prototype.includes", arr, num(3)), false)
}

func TestArrayMap(t *testing.T) {
	a, realm := newTestRealm(t)
	double := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return num(args[0].Number * 2)
	})
	got := joined(t, a, mustCall(t, a, realm, "Array.prototype.map", numberArray(a, 1, 2, 3), double))
	if got != "2,4,6" {
		t.Errorf("expected 2,4,6, got %s", got)
	}
}

func TestArrayFilter(t *testing.T) {
	a, realm := newTestRealm(t)
	even := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return runtime.NewBool(int(args[0].Number)%2 == 0)
	})
	got := joined(t, a, mustCall(t, a, realm, "Array.prototype.filter", numberArray(a, 1, 2, 3, 4), even))
	if got != "2,4" {
		t.Errorf("expected 2,4, got %s", got)
	}
}

func TestArrayReduce(t *testing.T) {
	a, realm := newTestRealm(t)
	sum := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return num(args[0].Number + args[1].Number)
	})
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.reduce", numberArray(a, 1, 2, 3, 4), sum), 10)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.reduce", numberArray(a), sum, num(7)), 7)

	_, err := call(t, a, realm, "Array.prototype.reduce", numberArray(a), sum)
	expectThrows(t, err, "TypeError")

	concat := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return str(args[0].String() + args[1].String())
	})
	expectString(t, mustCall(t, a, realm, "Array.prototype.reduceRight", numberArray(a, 1, 2, 3), concat, str("")), "321")
}

func TestArrayEvery(t *testing.T) {
	a, realm := newTestRealm(t)
	positive := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return runtime.NewBool(args[0].Number > 0)
	})
	expectBool(t, mustCall(t, a, realm, "Array.prototype.every", numberArray(a, 1, 2, 3), positive), true)
	expectBool(t, mustCall(t, a, realm, "Array.prototype.every", numberArray(a, 1, -2, 3), positive), false)
	expectBool(t, mustCall(t, a, realm, "Array.prototype.every", numberArray(a), positive), true)
}

func TestArraySome(t *testing.T) {
	a, realm := newTestRealm(t)
	negative := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return runtime.NewBool(args[0].Number < 0)
	})
	expectBool(t, mustCall(t, a, realm, "Array.prototype.some", numberArray(a, 1, -2, 3), negative), true)
	expectBool(t, mustCall(t, a, realm, "Array.prototype.some", numberArray(a, 1, 2), negative), false)
}

func TestArraySort(t *testing.T) {
	a, realm := newTestRealm(t)

	// Default order compares strings, and undefined sorts last.
	arr := arrayValue(a, vals(num(10), runtime.Undefined, num(9), num(1)))
	mustCall(t, a, realm, "Array.prototype.sort", arr)
	if got := joined(t, a, arr); got != "1,10,9,undefined" {
		t.Errorf("default sort: expected 1,10,9,undefined, got %s", got)
	}

	numeric := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return num(args[0].Number - args[1].Number)
	})
	arr = numberArray(a, 10, 9, 1, 100)
	mustCall(t, a, realm, "Array.prototype.sort", arr, numeric)
	if got := joined(t, a, arr); got != "1,9,10,100" {
		t.Errorf("numeric sort: expected 1,9,10,100, got %s", got)
	}

	_, err := call(t, a, realm, "Array.prototype.sort", arr, num(1))
	expectThrows(t, err, "TypeError")
}

func TestArrayToSortedLeavesReceiver(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 3, 1, 2)
	sorted := mustCall(t, a, realm, "Array.prototype.toSorted", arr)
	if got := joined(t, a, sorted); got != "1,2,3" {
		t.Errorf("toSorted: expected 1,2,3, got %s", got)
	}
	if got := joined(t, a, arr); got != "3,1,2" {
		t.Errorf("receiver changed: %s", got)
	}
	with := mustCall(t, a, realm, "Array.prototype.with", arr, num(-1), num(9))
	if got := joined(t, a, with); got != "3,1,9" {
		t.Errorf("with: expected 3,1,9, got %s", got)
	}
	_, err := call(t, a, realm, "Array.prototype.with", arr, num(5), num(0))
	expectThrows(t, err, "RangeError")
}

func TestArrayReverse(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3, 4)
	mustCall(t, a, realm, "Array.prototype.reverse", arr)
	if got := joined(t, a, arr); got != "4,3,2,1" {
		t.Errorf("expected 4,3,2,1, got %s", got)
	}
}

func TestArrayJoin(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := arrayValue(a, vals(num(1), runtime.Null, str("x"), runtime.Undefined))
	expectString(t, mustCall(t, a, realm, "Array.prototype.join", arr), "1,,x,")
	expectString(t, mustCall(t, a, realm, "Array.prototype.join", arr, str("-")), "1--x-")
}

func TestArrayJoinCycle(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2)
	mustCall(t, a, realm, "Array.prototype.push", arr, arr)
	expectString(t, mustCall(t, a, realm, "Array.prototype.join", arr), "1,2,")
}

func TestArrayConcat(t *testing.T) {
	a, realm := newTestRealm(t)
	got := mustCall(t, a, realm, "Array.prototype.concat", numberArray(a, 1), numberArray(a, 2, 3), num(4))
	if s := joined(t, a, got); s != "1,2,3,4" {
		t.Errorf("expected 1,2,3,4, got %s", s)
	}
}

func TestArrayFind(t *testing.T) {
	a, realm := newTestRealm(t)
	gtOne := fn(realm, func(args []*runtime.Value) *runtime.Value {
		return runtime.NewBool(args[0].Number > 1)
	})
	arr := numberArray(a, 1, 2, 3)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.find", arr, gtOne), 2)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.findIndex", arr, gtOne), 1)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.findLast", arr, gtOne), 3)
	expectNumber(t, mustCall(t, a, realm, "Array.prototype.findLastIndex", arr, gtOne), 2)
}

func TestArrayFlat(t *testing.T) {
	a, realm := newTestRealm(t)
	nested := arrayValue(a, vals(num(1), arrayValue(a, vals(num(2), numberArray(a, 3)))))

	if got := elements(t, a, mustCall(t, a, realm, "Array.prototype.flat", nested)); len(got) != 3 {
		t.Errorf("flat(): expected 3 elements, got %d", len(got))
	}
	if got := joined(t, a, mustCall(t, a, realm, "Array.prototype.flat", nested, runtime.PosInf)); got != "1,2,3" {
		t.Errorf("flat(Infinity): expected 1,2,3, got %s", got)
	}
}

func TestArrayIsArray(t *testing.T) {
	a, realm := newTestRealm(t)
	expectBool(t, mustCall(t, a, realm, "Array.isArray", runtime.Undefined, numberArray(a)), true)
	expectBool(t, mustCall(t, a, realm, "Array.isArray", runtime.Undefined, runtime.NewObject(a.NewPlainObject())), false)
}

func TestArrayFill(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 1, 2, 3, 4)
	mustCall(t, a, realm, "Array.prototype.fill", arr, num(0), num(1), num(3))
	if got := joined(t, a, arr); got != "1,0,0,4" {
		t.Errorf("expected 1,0,0,4, got %s", got)
	}
}

func TestArrayFromAndOf(t *testing.T) {
	a, realm := newTestRealm(t)
	ctor := lookup(t, a, realm, "Array")

	got := mustCall(t, a, realm, "Array.from", ctor, str("abc"))
	if s := joined(t, a, got); s != "a,b,c" {
		t.Errorf("Array.from(string): expected a,b,c, got %s", s)
	}
	got = mustCall(t, a, realm, "Array.of", ctor, num(7))
	if s := joined(t, a, got); s != "7" {
		t.Errorf("Array.of(7): expected 7, got %s", s)
	}
	arr, err := construct(t, a, realm, "Array", num(3))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(elements(t, a, arr)); n != 3 {
		t.Errorf("new Array(3): expected length 3, got %d", n)
	}
	_, err = construct(t, a, realm, "Array", num(-1))
	expectThrows(t, err, "RangeError")
}

func TestArrayIterators(t *testing.T) {
	a, realm := newTestRealm(t)
	arr := numberArray(a, 10, 20)

	it := mustCall(t, a, realm, "Array.prototype.entries", arr)
	rec := &runtime.IteratorRecord{Iterator: it.Object}
	next, err := runtime.GetV(a, it, runtime.StrKey("next"))
	if err != nil {
		t.Fatal(err)
	}
	rec.NextMethod = next

	var got []string
	for {
		v, done, err := runtime.IteratorStepValue(a, rec)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
		got = append(got, joined(t, a, v))
	}
	if len(got) != 2 || got[0] != "0,10" || got[1] != "1,20" {
		t.Errorf("entries: got %v", got)
	}

	values := lookup(t, a, realm, "Array.prototype.values")
	iter, err := runtime.GetV(a, lookup(t, a, realm, "Array.prototype"), runtime.SymKey(runtime.SymIterator))
	if err != nil {
		t.Fatal(err)
	}
	if iter.Object != values.Object {
		t.Error("Array.prototype[Symbol.iterator] should be Array.prototype.values")
	}
}
