package runtime

import (
	"testing"
)

func newTestAgent(t *testing.T) (*Agent, *Realm) {
	t.Helper()
	a := NewAgent(Options{})
	return a, NewRealm(a)
}

func TestDescriptorRoundTrip(t *testing.T) {
	a, _ := newTestAgent(t)
	cases := []PropertyDescriptor{
		DataDescriptor(NewNumber(1), true, true, true),
		DataDescriptor(NewString("x"), false, true, false),
		DataDescriptor(Undefined, false, false, false),
	}
	for _, want := range cases {
		obj := FromPropertyDescriptor(a, want, true)
		got, err := ToPropertyDescriptor(a, obj)
		if err != nil {
			t.Fatalf("ToPropertyDescriptor: %v", err)
		}
		if !SameValue(got.Value, want.Value) || got.Writable != want.Writable ||
			got.Enumerable != want.Enumerable || got.Configurable != want.Configurable {
			t.Fatalf("round trip changed descriptor: want %+v, got %+v", want, got)
		}
		if !got.HasValue || !got.HasWritable || !got.HasEnumerable || !got.HasConfigurable {
			t.Fatalf("round trip dropped fields: %+v", got)
		}
	}
}

func TestCompleteDescriptorNeverMixesShapes(t *testing.T) {
	partials := []PropertyDescriptor{
		{},
		{HasEnumerable: true, Enumerable: true},
		{HasValue: true, Value: Zero},
		{HasWritable: true},
		{HasGet: true, Get: Undefined},
		{HasSet: true, Set: Undefined, HasConfigurable: true},
	}
	for _, d := range partials {
		CompletePropertyDescriptor(&d)
		if d.IsDataDescriptor() && d.IsAccessorDescriptor() {
			t.Fatalf("completed descriptor is both data and accessor: %+v", d)
		}
		if d.IsGenericDescriptor() {
			t.Fatalf("completed descriptor is still generic: %+v", d)
		}
	}
}

func TestNonExtensibleRejectsNewKeys(t *testing.T) {
	a, _ := newTestAgent(t)
	o := a.NewPlainObject()
	o.DefineProperty(StrKey("a"), DataDescriptor(NewNumber(1), true, true, true))
	if _, err := o.PreventExtensions(a); err != nil {
		t.Fatal(err)
	}
	ok, err := o.DefineOwnProperty(a, StrKey("b"), DataDescriptor(NewNumber(2), true, true, true))
	if err != nil || ok {
		t.Fatalf("expected define on non-extensible object to fail, got %v %v", ok, err)
	}
	ok, _ = o.DefineOwnProperty(a, StrKey("a"), PropertyDescriptor{HasValue: true, Value: NewNumber(5)})
	if !ok {
		t.Fatal("expected existing key to remain writable")
	}
}

func TestNonConfigurableWritableTransition(t *testing.T) {
	a, _ := newTestAgent(t)
	o := a.NewPlainObject()
	o.DefineProperty(StrKey("k"), DataDescriptor(NewNumber(1), false, false, false))
	ok, _ := o.DefineOwnProperty(a, StrKey("k"), PropertyDescriptor{HasWritable: true, Writable: true})
	if ok {
		t.Fatal("writable false->true on non-configurable property must fail")
	}
	ok, _ = o.DefineOwnProperty(a, StrKey("k"), PropertyDescriptor{HasValue: true, Value: NewNumber(2)})
	if ok {
		t.Fatal("changing the value of a frozen property must fail")
	}
	ok, _ = o.DefineOwnProperty(a, StrKey("k"), PropertyDescriptor{HasValue: true, Value: NewNumber(1)})
	if !ok {
		t.Fatal("redefining with the same value must succeed")
	}
}

func TestOwnPropertyKeysOrder(t *testing.T) {
	a, _ := newTestAgent(t)
	o := a.NewPlainObject()
	sym := NewSymbol("s")
	for _, k := range []PropertyKey{StrKey("b"), IndexKey(2), SymKey(sym), StrKey("a"), IndexKey(0), StrKey("4294967295")} {
		if err := CreateDataPropertyOrThrow(a, o, k, Undefined); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0", "2", "b", "a", "4294967295", "[s]"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], k)
		}
	}
}

func TestDeleteKeepsCreationOrder(t *testing.T) {
	a, _ := newTestAgent(t)
	o := a.NewPlainObject()
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := CreateDataPropertyOrThrow(a, o, StrKey(name), Undefined); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"b", "a"} {
		if ok := Must(o.Delete(a, StrKey(name))); !ok {
			t.Fatalf("delete %s failed", name)
		}
	}
	if err := CreateDataPropertyOrThrow(a, o, StrKey("b"), Undefined); err != nil {
		t.Fatal(err)
	}
	keys := Must(o.OwnPropertyKeys(a))
	want := []string{"c", "d", "b"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], k)
		}
	}
}

func TestArrayLengthTruncationLarge(t *testing.T) {
	a, _ := newTestAgent(t)
	const n = 200000
	arr := ArrayCreate(a, 0, nil)
	for i := int64(0); i < n; i++ {
		if err := CreateDataPropertyOrThrow(a, arr, IndexKey(i), NewNumber(float64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := Set(a, arr, StrKey("extra"), True, true); err != nil {
		t.Fatal(err)
	}
	if err := Set(a, arr, lengthKey, NewNumber(1), true); err != nil {
		t.Fatal(err)
	}
	keys := Must(arr.OwnPropertyKeys(a))
	want := []string{"0", "length", "extra"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %d keys", want, len(keys))
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], k)
		}
	}
}

func TestAccessorReceivesReceiver(t *testing.T) {
	a, realm := newTestAgent(t)
	proto := a.NewPlainObject()
	var seen *Value
	getter := CreateBuiltinFunction(realm, "get", 0, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		seen = this
		return NewNumber(7), nil
	})
	proto.DefineProperty(StrKey("x"), AccessorDescriptor(getter, nil, false, true))
	child := NewOrdinaryObject(proto)
	v, err := Get(a, child, StrKey("x"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 7 {
		t.Fatalf("expected 7, got %v", v)
	}
	if !seen.IsObject() || seen.Object != child {
		t.Fatal("getter must see the original receiver as this")
	}
}

func TestSetPrototypeCycle(t *testing.T) {
	a, _ := newTestAgent(t)
	x := a.NewPlainObject()
	y := NewOrdinaryObject(x)
	ok, err := x.SetPrototypeOf(a, y)
	if err != nil || ok {
		t.Fatalf("expected cycle to be rejected, got %v %v", ok, err)
	}
}

// Shrinking length stops above a non-configurable element.
func TestArrayLengthPartialTruncation(t *testing.T) {
	a, _ := newTestAgent(t)
	arr := CreateArrayFromList(a, []*Value{NewNumber(0), NewNumber(1), NewNumber(2), NewNumber(3), NewNumber(4)})
	ok, err := arr.DefineOwnProperty(a, IndexKey(3), PropertyDescriptor{HasConfigurable: true, Configurable: false})
	if err != nil || !ok {
		t.Fatalf("defining element 3 non-configurable: %v %v", ok, err)
	}
	err = Set(a, arr, lengthKey, NewNumber(2), true)
	if err == nil {
		t.Fatal("expected strict length assignment to throw after partial truncation")
	}
	if !IsErrorOfKind(err, ErrorKindTypeError) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	length := Must(Get(a, arr, lengthKey))
	if length.Number != 4 {
		t.Fatalf("expected length 4 after partial truncation, got %v", length.Number)
	}
	if has := Must(HasOwnProperty(a, arr, IndexKey(4))); has {
		t.Fatal("index 4 should have been deleted")
	}
	if has := Must(HasOwnProperty(a, arr, IndexKey(3))); !has {
		t.Fatal("index 3 is non-configurable and must survive")
	}
}

func TestArrayLengthTruncation(t *testing.T) {
	a, _ := newTestAgent(t)
	arr := CreateArrayFromList(a, []*Value{NewNumber(0), NewNumber(1), NewNumber(2), NewNumber(3), NewNumber(4)})
	if err := Set(a, arr, lengthKey, NewNumber(2), true); err != nil {
		t.Fatal(err)
	}
	if n := Must(LengthOfArrayLike(a, arr)); n != 2 {
		t.Fatalf("expected length 2, got %d", n)
	}
	for i := int64(2); i < 5; i++ {
		if Must(HasOwnProperty(a, arr, IndexKey(i))) {
			t.Fatalf("index %d should be gone", i)
		}
	}
	if _, err := arr.DefineOwnProperty(a, lengthKey, PropertyDescriptor{HasValue: true, Value: NewNumber(1.5)}); !IsErrorOfKind(err, ErrorKindRangeError) {
		t.Fatalf("expected RangeError for fractional length, got %v", err)
	}
}

func TestArrayIndexGrowsLength(t *testing.T) {
	a, _ := newTestAgent(t)
	arr := ArrayCreate(a, 0, nil)
	if err := CreateDataPropertyOrThrow(a, arr, IndexKey(9), True); err != nil {
		t.Fatal(err)
	}
	if n := Must(LengthOfArrayLike(a, arr)); n != 10 {
		t.Fatalf("expected length 10, got %d", n)
	}
}

func TestStringExoticIndices(t *testing.T) {
	a, realm := newTestAgent(t)
	s := StringCreate(StringFromWTF8("héllo"), realm.Intrinsic("%String.prototype%"))
	v := Must(Get(a, s, IndexKey(1)))
	if GoString(v.Str) != "é" {
		t.Fatalf("expected é, got %q", GoString(v.Str))
	}
	ok, _ := s.DefineOwnProperty(a, IndexKey(0), DataDescriptor(NewString("x"), true, true, true))
	if ok {
		t.Fatal("string indices are read-only")
	}
	keys := Must(s.OwnPropertyKeys(a))
	if len(keys) != 6 || keys[5] != lengthKey {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestBoundFunctionForwarding(t *testing.T) {
	a, realm := newTestAgent(t)
	var gotThis *Value
	var gotArgs []*Value
	target := CreateBuiltinFunction(realm, "target", 2, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		gotThis, gotArgs = this, args
		return Undefined, nil
	})
	bound, err := BoundFunctionCreate(a, target, NewString("me"), []*Value{NewNumber(1)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Call(a, NewObject(bound), NewString("ignored"), []*Value{NewNumber(2)}); err != nil {
		t.Fatal(err)
	}
	if GoString(gotThis.Str) != "me" {
		t.Fatalf("expected bound this, got %v", gotThis)
	}
	if len(gotArgs) != 2 || gotArgs[0].Number != 1 || gotArgs[1].Number != 2 {
		t.Fatalf("expected bound args to be prepended, got %v", gotArgs)
	}
	if bound.Constructor != nil {
		t.Fatal("binding a non-constructor must not produce a constructor")
	}
}

func TestTypedArrayElementAccess(t *testing.T) {
	a, realm := newTestAgent(t)
	buf := NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	buf.Kind = KindArrayBuffer
	data := &ArrayBufferData{Bytes: make([]byte, 8)}
	buf.SetSlot("[[ArrayBufferData]]", data)
	ta := TypedArrayCreate(realm.Intrinsic("%Object.prototype%"), ElemUint8, buf, 2, 4)

	if err := Set(a, ta, IndexKey(1), NewNumber(300), true); err != nil {
		t.Fatal(err)
	}
	if data.Bytes[3] != 44 {
		t.Fatalf("expected byte 44 at offset 3, got %d", data.Bytes[3])
	}
	if v := Must(Get(a, ta, IndexKey(1))); v.Number != 44 {
		t.Fatalf("expected 44, got %v", v)
	}
	// Out of range writes succeed without effect; reads are absent.
	if err := Set(a, ta, IndexKey(10), NewNumber(1), true); err != nil {
		t.Fatalf("out-of-range write should be a no-op, got %v", err)
	}
	if Must(HasOwnProperty(a, ta, IndexKey(10))) {
		t.Fatal("index 10 must not be present")
	}
	if Must(ta.HasProperty(a, StrKey("-0"))) {
		t.Fatal("-0 is a canonical numeric string that is never present")
	}
	ok, _ := ta.DefineOwnProperty(a, IndexKey(0), DataDescriptor(NewNumber(1), true, true, false))
	if ok {
		t.Fatal("non-configurable element definition must fail")
	}
	data.Detach()
	if v := Must(Get(a, ta, IndexKey(1))); !v.IsUndefined() {
		t.Fatalf("detached read must be undefined, got %v", v)
	}
	if keys := Must(ta.OwnPropertyKeys(a)); len(keys) != 0 {
		t.Fatalf("detached view has no index keys, got %v", keys)
	}
}

func TestMappedArguments(t *testing.T) {
	a, realm := newTestAgent(t)
	check := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	env := NewDeclarativeEnvironment(nil)
	check(env.CreateMutableBinding(a, "x", false))
	check(env.InitializeBinding(a, "x", NewNumber(1)))
	f := CreateBuiltinFunction(realm, "f", 1, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		return Undefined, nil
	})
	args := CreateMappedArgumentsObject(a, f, []string{"x"}, []*Value{NewNumber(1)}, env)
	check(Set(a, args, IndexKey(0), NewNumber(5), true))
	if v := Must(env.GetBindingValue(a, "x", false)); v.Number != 5 {
		t.Fatalf("argument write must reach the binding, got %v", v)
	}
	check(env.SetMutableBinding(a, "x", NewNumber(9), false))
	if v := Must(Get(a, args, IndexKey(0))); v.Number != 9 {
		t.Fatalf("binding write must reach the argument, got %v", v)
	}
	check(DeletePropertyOrThrow(a, args, IndexKey(0)))
	check(env.SetMutableBinding(a, "x", NewNumber(10), false))
	if v := Must(Get(a, args, IndexKey(0))); !v.IsUndefined() {
		t.Fatalf("deleted argument must be unmapped, got %v", v)
	}
}
