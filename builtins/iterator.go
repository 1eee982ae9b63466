package builtins

import (
	"github.com/example/jscore/runtime"
)

const iteratorSlot = "[[IteratedState]]"

// nativeIterator backs the built-in iterators (array, string, map, set and
// regexp string). step returns the next value or done; once done it is
// never called again.
type nativeIterator struct {
	tag  string
	step func(a *runtime.Agent) (*runtime.Value, bool, error)
	done bool
}

func installIteratorPrototypes(realm *runtime.Realm) {
	iterProto := realm.Intrinsic("%IteratorPrototype%")
	setSymbolMethod(realm, iterProto, runtime.SymIterator, 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return this, nil
	})
	asyncIterProto := realm.Intrinsic("%AsyncIteratorPrototype%")
	setSymbolMethod(realm, asyncIterProto, runtime.SymAsyncIterator, 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return this, nil
	})

	for _, tag := range []string{"Array Iterator", "String Iterator", "Map Iterator", "Set Iterator", "RegExp String Iterator"} {
		proto := runtime.NewOrdinaryObject(iterProto)
		setMethod(realm, proto, "next", 0, nativeIteratorNext(tag))
		setToStringTag(proto, tag)
		realm.SetIntrinsic(iteratorIntrinsic(tag), proto)
	}
}

// iteratorIntrinsic maps "Array Iterator" to "%ArrayIteratorPrototype%".
func iteratorIntrinsic(tag string) string {
	name := make([]byte, 0, len(tag))
	for i := 0; i < len(tag); i++ {
		if tag[i] != ' ' {
			name = append(name, tag[i])
		}
	}
	return "%" + string(name) + "Prototype%"
}

func newNativeIterator(a *runtime.Agent, tag string, step func(a *runtime.Agent) (*runtime.Value, bool, error)) *runtime.Value {
	o := runtime.NewOrdinaryObject(a.CurrentRealm().Intrinsic(iteratorIntrinsic(tag)))
	o.SetSlot(iteratorSlot, &nativeIterator{tag: tag, step: step})
	return runtime.NewObject(o)
}

func nativeIteratorNext(tag string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		var it *nativeIterator
		if this.IsObject() {
			it, _ = this.Object.Slot(iteratorSlot).(*nativeIterator)
		}
		if it == nil || it.tag != tag {
			return nil, a.NewTypeError("%s.prototype.next called on incompatible receiver %s", tag, this.String())
		}
		if it.done {
			return runtime.NewObject(runtime.CreateIterResultObject(a, runtime.Undefined, true)), nil
		}
		v, done, err := it.step(a)
		if err != nil {
			it.done = true
			return nil, err
		}
		if done {
			it.done = true
			return runtime.NewObject(runtime.CreateIterResultObject(a, runtime.Undefined, true)), nil
		}
		return runtime.NewObject(runtime.CreateIterResultObject(a, v, false)), nil
	}
}

// createArrayIterator iterates an array-like, reading its length on every
// step. kind is runtime.EnumKeys, EnumValues or EnumKeyValues.
func createArrayIterator(a *runtime.Agent, obj *runtime.Object, kind string) *runtime.Value {
	var index int64
	return newNativeIterator(a, "Array Iterator", func(a *runtime.Agent) (*runtime.Value, bool, error) {
		var length int64
		if ta := runtime.TypedArrayOf(obj); ta != nil {
			if ta.IsOutOfBounds() {
				return nil, false, a.NewTypeError("Cannot iterate an out of bounds typed array")
			}
			length = int64(ta.ArrayLength())
		} else {
			n, err := runtime.LengthOfArrayLike(a, obj)
			if err != nil {
				return nil, false, err
			}
			length = n
		}
		if index >= length {
			return nil, true, nil
		}
		i := index
		index++
		key := runtime.NewNumber(float64(i))
		if kind == runtime.EnumKeys {
			return key, false, nil
		}
		v, err := runtime.Get(a, obj, runtime.IndexKey(i))
		if err != nil {
			return nil, false, err
		}
		if kind == runtime.EnumValues {
			return v, false, nil
		}
		return arrayValue(a, []*runtime.Value{key, v}), false, nil
	})
}
