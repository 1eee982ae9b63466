package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func newTyped(t *testing.T, a *runtime.Agent, realm *runtime.Realm, name string, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := construct(t, a, realm, name, args...)
	if err != nil {
		t.Fatalf("new %s: %v", name, err)
	}
	return v
}

func putIndex(t *testing.T, a *runtime.Agent, o *runtime.Value, i int64, v *runtime.Value) {
	t.Helper()
	if err := runtime.Set(a, o.Object, runtime.IndexKey(i), v, true); err != nil {
		t.Fatal(err)
	}
}

func TestTypedArrayLength(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Int16Array", num(4))
	expectNumber(t, getProp(t, a, ta, "length"), 4)
	expectNumber(t, getProp(t, a, ta, "byteLength"), 8)
	expectNumber(t, getProp(t, a, ta, "byteOffset"), 0)
	expectNumber(t, getProp(t, a, ta, "BYTES_PER_ELEMENT"), 2)
	if got := joined(t, a, ta); got != "0,0,0,0" {
		t.Errorf("fresh array should be zero filled, got %s", got)
	}
}

func TestTypedArrayConversions(t *testing.T) {
	a, realm := newTestRealm(t)
	u8 := newTyped(t, a, realm, "Uint8Array", num(3))
	putIndex(t, a, u8, 0, num(256))
	putIndex(t, a, u8, 1, num(-1))
	putIndex(t, a, u8, 2, num(3.7))
	if got := joined(t, a, u8); got != "0,255,3" {
		t.Errorf("Uint8Array: got %s", got)
	}

	clamped := newTyped(t, a, realm, "Uint8ClampedArray", num(3))
	putIndex(t, a, clamped, 0, num(300))
	putIndex(t, a, clamped, 1, num(-5))
	putIndex(t, a, clamped, 2, num(2.5))
	if got := joined(t, a, clamped); got != "255,0,2" {
		t.Errorf("Uint8ClampedArray: got %s", got)
	}

	i8 := newTyped(t, a, realm, "Int8Array", numberArray(a, 200, -129))
	if got := joined(t, a, i8); got != "-56,127" {
		t.Errorf("Int8Array: got %s", got)
	}
}

func TestTypedArrayOutOfRangeIndex(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Float64Array", num(1))
	// Writes past the end are ignored and reads are undefined.
	putIndex(t, a, ta, 5, num(1))
	if v := getProp(t, a, ta, "5"); !v.IsUndefined() {
		t.Errorf("expected undefined, got %s", v.String())
	}
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, ta, str("5")), false)
	expectBool(t, mustCall(t, a, realm, "Reflect.has", runtime.Undefined, ta, str("0")), true)
}

func TestTypedArraySharedBuffer(t *testing.T) {
	a, realm := newTestRealm(t)
	buf := newTyped(t, a, realm, "ArrayBuffer", num(8))
	all := newTyped(t, a, realm, "Uint8Array", buf)
	view := newTyped(t, a, realm, "Uint8Array", buf, num(2), num(3))
	expectNumber(t, getProp(t, a, view, "length"), 3)
	expectNumber(t, getProp(t, a, view, "byteOffset"), 2)

	putIndex(t, a, view, 0, num(9))
	expectNumber(t, getProp(t, a, all, "2"), 9)
	if getProp(t, a, view, "buffer").Object != buf.Object {
		t.Error("view.buffer should be the source buffer")
	}

	_, err := construct(t, a, realm, "Uint16Array", buf, num(1))
	expectThrows(t, err, "RangeError")
	_, err = construct(t, a, realm, "Uint8Array", buf, num(4), num(8))
	expectThrows(t, err, "RangeError")
}

func TestTypedArrayFromTypedArray(t *testing.T) {
	a, realm := newTestRealm(t)
	src := newTyped(t, a, realm, "Float32Array", numberArray(a, 1.5, 2))
	copied := newTyped(t, a, realm, "Int32Array", src)
	if got := joined(t, a, copied); got != "1,2" {
		t.Errorf("copy: got %s", got)
	}
	_, err := construct(t, a, realm, "BigInt64Array", src)
	expectThrows(t, err, "TypeError")
}

func TestTypedArrayMethods(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Int32Array", numberArray(a, 5, 1, 4))

	expectString(t, mustCall(t, a, realm, "Int32Array.prototype.join", ta, str("-")), "5-1-4")
	expectNumber(t, mustCall(t, a, realm, "Int32Array.prototype.indexOf", ta, num(4)), 2)
	expectBool(t, mustCall(t, a, realm, "Int32Array.prototype.includes", ta, num(1)), true)
	expectNumber(t, mustCall(t, a, realm, "Int32Array.prototype.at", ta, num(-1)), 4)

	mustCall(t, a, realm, "Int32Array.prototype.sort", ta)
	if got := joined(t, a, ta); got != "1,4,5" {
		t.Errorf("sort: got %s", got)
	}
	doubled := mustCall(t, a, realm, "Int32Array.prototype.map", ta, fn(realm, func(args []*runtime.Value) *runtime.Value {
		return num(args[0].Number * 2)
	}))
	if doubled.Object.Kind != runtime.KindTypedArray || joined(t, a, doubled) != "2,8,10" {
		t.Errorf("map: got %s", joined(t, a, doubled))
	}
	big := mustCall(t, a, realm, "Int32Array.prototype.filter", ta, fn(realm, func(args []*runtime.Value) *runtime.Value {
		return runtime.NewBool(args[0].Number > 1)
	}))
	if got := joined(t, a, big); got != "4,5" {
		t.Errorf("filter: got %s", got)
	}
	expectString(t, mustCall(t, a, realm, "Int32Array.prototype.toString", ta), "1,4,5")
}

func TestTypedArraySliceAndSubarray(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Uint8Array", numberArray(a, 1, 2, 3, 4))

	sliced := mustCall(t, a, realm, "Uint8Array.prototype.slice", ta, num(1), num(3))
	sub := mustCall(t, a, realm, "Uint8Array.prototype.subarray", ta, num(1), num(3))
	if joined(t, a, sliced) != "2,3" || joined(t, a, sub) != "2,3" {
		t.Fatalf("slice %s, subarray %s", joined(t, a, sliced), joined(t, a, sub))
	}
	putIndex(t, a, sliced, 0, num(9))
	putIndex(t, a, sub, 1, num(8))
	// slice copies; subarray shares the buffer.
	if got := joined(t, a, ta); got != "1,2,8,4" {
		t.Errorf("after writes: got %s", got)
	}
}

func TestTypedArraySet(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Uint8Array", num(4))
	mustCall(t, a, realm, "Uint8Array.prototype.set", ta, numberArray(a, 7, 8), num(1))
	if got := joined(t, a, ta); got != "0,7,8,0" {
		t.Errorf("set: got %s", got)
	}
	_, err := call(t, a, realm, "Uint8Array.prototype.set", ta, numberArray(a, 1, 2), num(3))
	expectThrows(t, err, "RangeError")
}

func TestTypedArrayDetached(t *testing.T) {
	a, realm := newTestRealm(t)
	buf := newTyped(t, a, realm, "ArrayBuffer", num(4))
	ta := newTyped(t, a, realm, "Uint8Array", buf)
	runtime.BufferData(buf.Object).Detach()

	expectBool(t, getProp(t, a, buf, "detached"), true)
	expectNumber(t, getProp(t, a, ta, "length"), 0)
	_, err := call(t, a, realm, "Uint8Array.prototype.join", ta)
	expectThrows(t, err, "TypeError")
}

func TestTypedArrayRequiresNew(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Uint8Array", runtime.Undefined, num(1))
	expectThrows(t, err, "TypeError")
	abstract := lookup(t, a, realm, "Uint8Array").Object.Proto()
	_, err = runtime.Construct(a, abstract, nil, nil)
	expectThrows(t, err, "TypeError")
}

func TestArrayBufferSlice(t *testing.T) {
	a, realm := newTestRealm(t)
	buf := newTyped(t, a, realm, "ArrayBuffer", num(4))
	view := newTyped(t, a, realm, "Uint8Array", buf)
	for i := int64(0); i < 4; i++ {
		putIndex(t, a, view, i, num(float64(i+1)))
	}
	part := mustCall(t, a, realm, "ArrayBuffer.prototype.slice", buf, num(1), num(-1))
	expectNumber(t, getProp(t, a, part, "byteLength"), 2)
	if got := joined(t, a, newTyped(t, a, realm, "Uint8Array", part)); got != "2,3" {
		t.Errorf("slice contents: got %s", got)
	}
	expectBool(t, mustCall(t, a, realm, "ArrayBuffer.isView", runtime.Undefined, view), true)
	expectBool(t, mustCall(t, a, realm, "ArrayBuffer.isView", runtime.Undefined, buf), false)

	_, err := construct(t, a, realm, "ArrayBuffer", num(-1))
	expectThrows(t, err, "RangeError")
}

func TestTypedArrayToStringTag(t *testing.T) {
	a, realm := newTestRealm(t)
	ta := newTyped(t, a, realm, "Float32Array", num(0))
	expectString(t, mustCall(t, a, realm, "Object.prototype.toString", ta), "[object Float32Array]")
}
