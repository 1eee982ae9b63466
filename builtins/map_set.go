package builtins

import (
	"math"

	"github.com/example/jscore/runtime"
)

const (
	mapSlot     = "[[MapData]]"
	setSlot     = "[[SetData]]"
	weakMapSlot = "[[WeakMapData]]"
	weakSetSlot = "[[WeakSetData]]"
)

type (
	undefinedKey struct{}
	nullKey      struct{}
	nanKey       struct{}
	bigintKey    string
)

// keyOf normalizes v so that Go map equality matches SameValueZero.
func keyOf(v *runtime.Value) interface{} {
	switch v.Type {
	case runtime.TypeUndefined:
		return undefinedKey{}
	case runtime.TypeNull:
		return nullKey{}
	case runtime.TypeBoolean:
		return v.Bool
	case runtime.TypeNumber:
		switch {
		case math.IsNaN(v.Number):
			return nanKey{}
		case v.Number == 0:
			return 0.0
		}
		return v.Number
	case runtime.TypeString:
		return v.Str
	case runtime.TypeSymbol:
		return v.Symbol
	case runtime.TypeBigInt:
		return bigintKey(v.BigInt.String())
	}
	return v.Object
}

type orderedEntry struct {
	key, value *runtime.Value
	deleted    bool
}

// orderedMap keeps entries in insertion order. Deleted entries stay in
// place as tombstones so that live iterators keep their position.
type orderedMap struct {
	entries []*orderedEntry
	index   map[interface{}]*orderedEntry
}

func newOrderedMap() *orderedMap {
	return &orderedMap{index: make(map[interface{}]*orderedEntry)}
}

func (m *orderedMap) size() int {
	return len(m.index)
}

func (m *orderedMap) get(k *runtime.Value) (*runtime.Value, bool) {
	e, ok := m.index[keyOf(k)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (m *orderedMap) set(k, v *runtime.Value) {
	if k.IsNumber() && k.Number == 0 {
		k = runtime.Zero
	}
	key := keyOf(k)
	if e, ok := m.index[key]; ok {
		e.value = v
		return
	}
	e := &orderedEntry{key: k, value: v}
	m.entries = append(m.entries, e)
	m.index[key] = e
}

func (m *orderedMap) delete(k *runtime.Value) bool {
	key := keyOf(k)
	e, ok := m.index[key]
	if !ok {
		return false
	}
	e.deleted = true
	delete(m.index, key)
	return true
}

func (m *orderedMap) clear() {
	for _, e := range m.entries {
		e.deleted = true
	}
	m.index = make(map[interface{}]*orderedEntry)
}

// next returns the first live entry at or after position i and the
// position following it.
func (m *orderedMap) next(i int) (*orderedEntry, int) {
	for ; i < len(m.entries); i++ {
		if e := m.entries[i]; !e.deleted {
			return e, i + 1
		}
	}
	return nil, i
}

func thisOrderedMap(a *runtime.Agent, this *runtime.Value, slot, method string) (*orderedMap, error) {
	v, err := thisSlot(a, this, slot, method)
	if err != nil {
		return nil, err
	}
	return v.(*orderedMap), nil
}

// canBeHeldWeakly reports whether v may key a WeakMap or WeakSet.
func canBeHeldWeakly(v *runtime.Value) bool {
	return v.IsObject() || (v.IsSymbol() && !v.Symbol.Registered())
}

// newCollection allocates the receiver of a collection constructor and
// seeds it from iterable through its adder method.
func newCollection(a *runtime.Agent, nt *runtime.Object, name, protoName, slot string, data interface{}, iterable *runtime.Value, adderName string, pairs bool) (*runtime.Value, error) {
	if nt == nil {
		return nil, a.NewTypeError("Constructor %s requires 'new'", name)
	}
	o, err := runtime.OrdinaryCreateFromConstructor(a, nt, protoName)
	if err != nil {
		return nil, err
	}
	o.SetSlot(slot, data)
	if iterable.IsNullish() {
		return runtime.NewObject(o), nil
	}
	adder, err := runtime.Get(a, o, runtime.StrKey(adderName))
	if err != nil {
		return nil, err
	}
	if !runtime.IsCallable(adder) {
		return nil, a.NewTypeError("'%s' returned for property '%s' of object '#<%s>' is not a function", adder.String(), adderName, name)
	}
	target := runtime.NewObject(o)
	if pairs {
		err = addEntriesFromIterable(a, iterable, func(k, v *runtime.Value) error {
			_, err := runtime.Call(a, adder, target, []*runtime.Value{k, v})
			return err
		})
		if err != nil {
			return nil, err
		}
		return target, nil
	}
	rec, err := runtime.GetIterator(a, iterable, false)
	if err != nil {
		return nil, err
	}
	for {
		next, done, err := runtime.IteratorStepValue(a, rec)
		if err != nil {
			return nil, err
		}
		if done {
			return target, nil
		}
		if _, err := runtime.Call(a, adder, target, []*runtime.Value{next}); err != nil {
			return nil, runtime.IteratorClose(a, rec, err)
		}
	}
}

// collectionIterator iterates m yielding keys, values or [key, value]
// entries.
func collectionIterator(a *runtime.Agent, tag string, m *orderedMap, kind string) *runtime.Value {
	pos := 0
	return newNativeIterator(a, tag, func(a *runtime.Agent) (*runtime.Value, bool, error) {
		var e *orderedEntry
		e, pos = m.next(pos)
		if e == nil {
			return nil, true, nil
		}
		switch kind {
		case runtime.EnumKeys:
			return e.key, false, nil
		case runtime.EnumValues:
			return e.value, false, nil
		}
		return arrayValue(a, []*runtime.Value{e.key, e.value}), false, nil
	})
}

// collectionForEach calls fn(value, key, collection) for each live entry,
// including entries added during iteration.
func collectionForEach(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, m *orderedMap, method string) (*runtime.Value, error) {
	fn, err := callbackArg(a, args, method)
	if err != nil {
		return nil, err
	}
	for e, pos := m.next(0); e != nil; e, pos = m.next(pos) {
		if _, err := callFn(a, fn, argAt(args, 1), e.value, e.key, this); err != nil {
			return nil, err
		}
	}
	return runtime.Undefined, nil
}

func sizeGetter(slot, method string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, slot, method)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(m.size())), nil
	}
}

func createMapConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%Map.prototype%", proto)

	setMethod(realm, proto, "clear", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.clear")
		if err != nil {
			return nil, err
		}
		m.clear()
		return runtime.Undefined, nil
	})
	setMethod(realm, proto, "delete", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.delete")
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(m.delete(argAt(args, 0))), nil
	})
	setMethod(realm, proto, "forEach", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.forEach")
		if err != nil {
			return nil, err
		}
		return collectionForEach(a, this, args, m, "Map.prototype.forEach")
	})
	setMethod(realm, proto, "get", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.get")
		if err != nil {
			return nil, err
		}
		if v, ok := m.get(argAt(args, 0)); ok {
			return v, nil
		}
		return runtime.Undefined, nil
	})
	setMethod(realm, proto, "has", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.has")
		if err != nil {
			return nil, err
		}
		_, ok := m.get(argAt(args, 0))
		return runtime.NewBool(ok), nil
	})
	setMethod(realm, proto, "set", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.set")
		if err != nil {
			return nil, err
		}
		m.set(argAt(args, 0), argAt(args, 1))
		return this, nil
	})
	setGetter(realm, proto, runtime.StrKey("size"), sizeGetter(mapSlot, "get Map.prototype.size"))
	for name, kind := range map[string]string{"keys": runtime.EnumKeys, "values": runtime.EnumValues} {
		setMethod(realm, proto, name, 0, mapIteratorMethod(kind))
	}
	entries := setMethod(realm, proto, "entries", 0, mapIteratorMethod(runtime.EnumKeyValues))
	proto.DefineProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(runtime.NewObject(entries), true, false, true))
	setToStringTag(proto, "Map")

	ctor := newConstructor(realm, "Map", 0, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return newCollection(a, nt, "Map", "%Map.prototype%", mapSlot, newOrderedMap(), argAt(args, 0), "set", true)
	})
	setMethod(realm, ctor, "groupBy", 2, mapGroupBy)
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%Map%", ctor)
	return ctor, proto
}

func mapIteratorMethod(kind string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, mapSlot, "Map.prototype.entries")
		if err != nil {
			return nil, err
		}
		return collectionIterator(a, "Map Iterator", m, kind), nil
	}
}

type valueGroup struct {
	key   *runtime.Value
	items []*runtime.Value
}

// groupBy calls fn(value, index) for each element of items and groups the
// elements by the returned key, in first-seen key order.
func groupBy(a *runtime.Agent, items, fn *runtime.Value, toKey func(*runtime.Value) (*runtime.Value, error)) ([]*valueGroup, error) {
	if items.IsNullish() {
		return nil, a.NewTypeError("groupBy called on null or undefined")
	}
	if !runtime.IsCallable(fn) {
		return nil, a.NewTypeError("%s is not a function", fn.String())
	}
	index := newOrderedMap()
	var groups []*valueGroup
	rec, err := runtime.GetIterator(a, items, false)
	if err != nil {
		return nil, err
	}
	for k := 0; ; k++ {
		v, done, err := runtime.IteratorStepValue(a, rec)
		if err != nil {
			return nil, err
		}
		if done {
			return groups, nil
		}
		key, err := callFn(a, fn, runtime.Undefined, v, runtime.NewNumber(float64(k)))
		if err == nil {
			key, err = toKey(key)
		}
		if err != nil {
			return nil, runtime.IteratorClose(a, rec, err)
		}
		if i, ok := index.get(key); ok {
			g := groups[int(i.Number)]
			g.items = append(g.items, v)
			continue
		}
		index.set(key, runtime.NewNumber(float64(len(groups))))
		groups = append(groups, &valueGroup{key: key, items: []*runtime.Value{v}})
	}
}

func mapGroupBy(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	groups, err := groupBy(a, argAt(args, 0), argAt(args, 1), func(k *runtime.Value) (*runtime.Value, error) {
		return k, nil
	})
	if err != nil {
		return nil, err
	}
	result := newOrderedMap()
	for _, g := range groups {
		result.set(g.key, arrayValue(a, g.items))
	}
	o := runtime.NewOrdinaryObject(a.CurrentRealm().Intrinsic("%Map.prototype%"))
	o.SetSlot(mapSlot, result)
	return runtime.NewObject(o), nil
}

func objectGroupBy(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	groups, err := groupBy(a, argAt(args, 0), argAt(args, 1), func(k *runtime.Value) (*runtime.Value, error) {
		key, err := runtime.ToPropertyKey(a, k)
		if err != nil {
			return nil, err
		}
		return key.ToValue(), nil
	})
	if err != nil {
		return nil, err
	}
	o := runtime.NewOrdinaryObject(nil)
	for _, g := range groups {
		key, _ := runtime.ToPropertyKey(a, g.key)
		runtime.Must(runtime.CreateDataProperty(a, o, key, arrayValue(a, g.items)))
	}
	return runtime.NewObject(o), nil
}

func createSetConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%Set.prototype%", proto)

	setMethod(realm, proto, "add", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.add")
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		m.set(v, v)
		return this, nil
	})
	setMethod(realm, proto, "clear", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.clear")
		if err != nil {
			return nil, err
		}
		m.clear()
		return runtime.Undefined, nil
	})
	setMethod(realm, proto, "delete", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.delete")
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(m.delete(argAt(args, 0))), nil
	})
	setMethod(realm, proto, "forEach", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.forEach")
		if err != nil {
			return nil, err
		}
		return collectionForEach(a, this, args, m, "Set.prototype.forEach")
	})
	setMethod(realm, proto, "has", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.has")
		if err != nil {
			return nil, err
		}
		_, ok := m.get(argAt(args, 0))
		return runtime.NewBool(ok), nil
	})
	setGetter(realm, proto, runtime.StrKey("size"), sizeGetter(setSlot, "get Set.prototype.size"))
	setMethod(realm, proto, "entries", 0, setIteratorMethod(runtime.EnumKeyValues))
	values := setMethod(realm, proto, "values", 0, setIteratorMethod(runtime.EnumValues))
	setDataProp(proto, "keys", runtime.NewObject(values), true, false, true)
	proto.DefineProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(runtime.NewObject(values), true, false, true))
	setToStringTag(proto, "Set")

	ctor := newConstructor(realm, "Set", 0, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return newCollection(a, nt, "Set", "%Set.prototype%", setSlot, newOrderedMap(), argAt(args, 0), "add", false)
	})
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%Set%", ctor)
	return ctor, proto
}

func setIteratorMethod(kind string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		m, err := thisOrderedMap(a, this, setSlot, "Set.prototype.values")
		if err != nil {
			return nil, err
		}
		return collectionIterator(a, "Set Iterator", m, kind), nil
	}
}

// weakTable backs WeakMap and WeakSet. Entries are held strongly; the
// collections expose no way to observe that.
type weakTable map[interface{}]*runtime.Value

func thisWeakTable(a *runtime.Agent, this *runtime.Value, slot, method string) (weakTable, error) {
	v, err := thisSlot(a, this, slot, method)
	if err != nil {
		return nil, err
	}
	return v.(weakTable), nil
}

func createWeakMapConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))

	setMethod(realm, proto, "delete", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakMapSlot, "WeakMap.prototype.delete")
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		if !canBeHeldWeakly(k) {
			return runtime.False, nil
		}
		_, ok := t[keyOf(k)]
		delete(t, keyOf(k))
		return runtime.NewBool(ok), nil
	})
	setMethod(realm, proto, "get", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakMapSlot, "WeakMap.prototype.get")
		if err != nil {
			return nil, err
		}
		if v, ok := t[keyOf(argAt(args, 0))]; ok {
			return v, nil
		}
		return runtime.Undefined, nil
	})
	setMethod(realm, proto, "has", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakMapSlot, "WeakMap.prototype.has")
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		_, ok := t[keyOf(k)]
		return runtime.NewBool(ok && canBeHeldWeakly(k)), nil
	})
	setMethod(realm, proto, "set", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakMapSlot, "WeakMap.prototype.set")
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		if !canBeHeldWeakly(k) {
			return nil, a.NewTypeError("Invalid value used as weak map key")
		}
		t[keyOf(k)] = argAt(args, 1)
		return this, nil
	})
	setToStringTag(proto, "WeakMap")

	ctor := newConstructor(realm, "WeakMap", 0, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return newCollection(a, nt, "WeakMap", "%WeakMap.prototype%", weakMapSlot, weakTable{}, argAt(args, 0), "set", true)
	})
	realm.SetIntrinsic("%WeakMap.prototype%", proto)
	return ctor, proto
}

func createWeakSetConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))

	setMethod(realm, proto, "add", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakSetSlot, "WeakSet.prototype.add")
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		if !canBeHeldWeakly(v) {
			return nil, a.NewTypeError("Invalid value used in weak set")
		}
		t[keyOf(v)] = v
		return this, nil
	})
	setMethod(realm, proto, "delete", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakSetSlot, "WeakSet.prototype.delete")
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		if !canBeHeldWeakly(v) {
			return runtime.False, nil
		}
		_, ok := t[keyOf(v)]
		delete(t, keyOf(v))
		return runtime.NewBool(ok), nil
	})
	setMethod(realm, proto, "has", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		t, err := thisWeakTable(a, this, weakSetSlot, "WeakSet.prototype.has")
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		_, ok := t[keyOf(v)]
		return runtime.NewBool(ok && canBeHeldWeakly(v)), nil
	})
	setToStringTag(proto, "WeakSet")

	ctor := newConstructor(realm, "WeakSet", 0, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return newCollection(a, nt, "WeakSet", "%WeakSet.prototype%", weakSetSlot, weakTable{}, argAt(args, 0), "add", false)
	})
	realm.SetIntrinsic("%WeakSet.prototype%", proto)
	return ctor, proto
}
