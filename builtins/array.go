package builtins

import (
	"math"
	"sort"
	"strings"

	"github.com/example/jscore/runtime"
)

const maxArrayLike = 1<<53 - 1

func createArrayConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Array.prototype%")

	setMethod(realm, proto, "at", 1, arrayAt)
	setMethod(realm, proto, "concat", 1, arrayConcat)
	setMethod(realm, proto, "copyWithin", 2, arrayCopyWithin)
	setMethod(realm, proto, "entries", 0, arrayIteratorMethod(runtime.EnumKeyValues))
	setMethod(realm, proto, "every", 1, arrayEvery)
	setMethod(realm, proto, "fill", 1, arrayFill)
	setMethod(realm, proto, "filter", 1, arrayFilter)
	setMethod(realm, proto, "find", 1, arrayFind(false, false))
	setMethod(realm, proto, "findIndex", 1, arrayFind(false, true))
	setMethod(realm, proto, "findLast", 1, arrayFind(true, false))
	setMethod(realm, proto, "findLastIndex", 1, arrayFind(true, true))
	setMethod(realm, proto, "flat", 0, arrayFlat)
	setMethod(realm, proto, "flatMap", 1, arrayFlatMap)
	setMethod(realm, proto, "forEach", 1, arrayForEach)
	setMethod(realm, proto, "includes", 1, arrayIncludes)
	setMethod(realm, proto, "indexOf", 1, arrayIndexOf)
	setMethod(realm, proto, "join", 1, arrayJoin)
	setMethod(realm, proto, "keys", 0, arrayIteratorMethod(runtime.EnumKeys))
	setMethod(realm, proto, "lastIndexOf", 1, arrayLastIndexOf)
	setMethod(realm, proto, "map", 1, arrayMap)
	setMethod(realm, proto, "pop", 0, arrayPop)
	setMethod(realm, proto, "push", 1, arrayPush)
	setMethod(realm, proto, "reduce", 1, arrayReduce(false))
	setMethod(realm, proto, "reduceRight", 1, arrayReduce(true))
	setMethod(realm, proto, "reverse", 0, arrayReverse)
	setMethod(realm, proto, "shift", 0, arrayShift)
	setMethod(realm, proto, "slice", 2, arraySlice)
	setMethod(realm, proto, "some", 1, arraySome)
	setMethod(realm, proto, "sort", 1, arraySort)
	setMethod(realm, proto, "splice", 2, arraySplice)
	setMethod(realm, proto, "toReversed", 0, arrayToReversed)
	setMethod(realm, proto, "toSorted", 1, arrayToSorted)
	setMethod(realm, proto, "toString", 0, arrayToString)
	setMethod(realm, proto, "toLocaleString", 0, arrayToString)
	setMethod(realm, proto, "unshift", 1, arrayUnshift)
	setMethod(realm, proto, "with", 2, arrayWith)
	values := setMethod(realm, proto, "values", 0, arrayIteratorMethod(runtime.EnumValues))
	proto.DefineProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(runtime.NewObject(values), true, false, true))
	realm.SetIntrinsic("%Array.prototype.values%", values)

	unscopables := runtime.NewOrdinaryObject(nil)
	for _, name := range []string{"at", "copyWithin", "entries", "fill", "find", "findIndex", "findLast", "findLastIndex", "flat", "flatMap", "includes", "keys", "toReversed", "toSorted", "values"} {
		setDataProp(unscopables, name, runtime.True, true, true, true)
	}
	proto.DefineProperty(runtime.SymKey(runtime.SymUnscopables), runtime.DataDescriptor(runtime.NewObject(unscopables), false, false, true))

	ctor := newConstructor(realm, "Array", 1, proto, arrayConstructorCall)
	setMethod(realm, ctor, "isArray", 1, arrayIsArray)
	setMethod(realm, ctor, "from", 1, arrayFrom)
	setMethod(realm, ctor, "of", 0, arrayOf)
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%Array%", ctor)
	return ctor, proto
}

// thisArrayLike converts this to an object and reads its length.
func thisArrayLike(a *runtime.Agent, this *runtime.Value) (*runtime.Object, int64, error) {
	o, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, 0, err
	}
	n, err := runtime.LengthOfArrayLike(a, o)
	if err != nil {
		return nil, 0, err
	}
	return o, n, nil
}

func setLength(a *runtime.Agent, o *runtime.Object, n int64) error {
	return runtime.Set(a, o, runtime.StrKey("length"), runtime.NewNumber(float64(n)), true)
}

func callbackArg(a *runtime.Agent, args []*runtime.Value, method string) (*runtime.Value, error) {
	fn := argAt(args, 0)
	if !runtime.IsCallable(fn) {
		return nil, a.NewTypeError("%s: %s is not a function", method, fn.String())
	}
	return fn, nil
}

func hasIndex(a *runtime.Agent, o *runtime.Object, i int64) (bool, error) {
	return o.HasProperty(a, runtime.IndexKey(i))
}

func getIndex(a *runtime.Agent, o *runtime.Object, i int64) (*runtime.Value, error) {
	return runtime.Get(a, o, runtime.IndexKey(i))
}

func setIndex(a *runtime.Agent, o *runtime.Object, i int64, v *runtime.Value) error {
	return runtime.Set(a, o, runtime.IndexKey(i), v, true)
}

func arrayConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if nt == nil {
		nt = a.ActiveFunction()
	}
	proto, err := runtime.GetPrototypeFromConstructor(a, nt, "%Array.prototype%")
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		if n := args[0]; n.IsNumber() {
			length := runtime.Uint32(n.Number)
			if float64(length) != n.Number {
				return nil, a.NewRangeError("Invalid array length")
			}
			return runtime.NewObject(runtime.ArrayCreate(a, length, proto)), nil
		}
	}
	arr := runtime.ArrayCreate(a, 0, proto)
	for i, v := range args {
		runtime.Must(runtime.CreateDataProperty(a, arr, runtime.IndexKey(int64(i)), v))
	}
	return runtime.NewObject(arr), nil
}

func arrayIsArray(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	ok, err := runtime.IsArray(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}

// constructOrArray constructs this with args when it is a constructor and
// creates a plain array otherwise.
func constructOrArray(a *runtime.Agent, this *runtime.Value, args ...*runtime.Value) (*runtime.Object, error) {
	if runtime.IsConstructor(this) {
		v, err := runtime.Construct(a, this.Object, args, nil)
		if err != nil {
			return nil, err
		}
		return runtime.ToObject(a, v)
	}
	length := uint32(0)
	if len(args) == 1 {
		length = runtime.Uint32(args[0].Number)
	}
	return runtime.ArrayCreate(a, length, nil), nil
}

func arrayOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	arr, err := constructOrArray(a, this, runtime.NewNumber(float64(len(args))))
	if err != nil {
		return nil, err
	}
	for i, v := range args {
		if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(int64(i)), v); err != nil {
			return nil, err
		}
	}
	if err := setLength(a, arr, int64(len(args))); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayFrom(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	items, mapFn, thisArg := argAt(args, 0), argAt(args, 1), argAt(args, 2)
	mapping := !mapFn.IsUndefined()
	if mapping && !runtime.IsCallable(mapFn) {
		return nil, a.NewTypeError("Array.from: %s is not a function", mapFn.String())
	}
	mapValue := func(v *runtime.Value, k int64) (*runtime.Value, error) {
		if !mapping {
			return v, nil
		}
		return callFn(a, mapFn, thisArg, v, runtime.NewNumber(float64(k)))
	}

	usingIterator, err := runtime.GetMethod(a, items, runtime.SymKey(runtime.SymIterator))
	if err != nil {
		return nil, err
	}
	if !usingIterator.IsUndefined() {
		arr, err := constructOrArray(a, this)
		if err != nil {
			return nil, err
		}
		rec, err := runtime.GetIteratorFromMethod(a, items, usingIterator)
		if err != nil {
			return nil, err
		}
		var k int64
		for {
			next, done, err := runtime.IteratorStepValue(a, rec)
			if err != nil {
				return nil, err
			}
			if done {
				if err := setLength(a, arr, k); err != nil {
					return nil, err
				}
				return runtime.NewObject(arr), nil
			}
			v, err := mapValue(next, k)
			if err != nil {
				return nil, runtime.IteratorClose(a, rec, err)
			}
			if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(k), v); err != nil {
				return nil, runtime.IteratorClose(a, rec, err)
			}
			k++
		}
	}

	arrayLike, length, err := thisArrayLike(a, items)
	if err != nil {
		return nil, err
	}
	arr, err := constructOrArray(a, this, runtime.NewNumber(float64(length)))
	if err != nil {
		return nil, err
	}
	for k := int64(0); k < length; k++ {
		kv, err := getIndex(a, arrayLike, k)
		if err != nil {
			return nil, err
		}
		v, err := mapValue(kv, k)
		if err != nil {
			return nil, err
		}
		if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(k), v); err != nil {
			return nil, err
		}
	}
	if err := setLength(a, arr, length); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayAt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	rel, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	k := rel
	if rel < 0 {
		k = float64(length) + rel
	}
	if k < 0 || k >= float64(length) {
		return runtime.Undefined, nil
	}
	return getIndex(a, o, int64(k))
}

func isConcatSpreadable(a *runtime.Agent, v *runtime.Value) (bool, error) {
	if !v.IsObject() {
		return false, nil
	}
	spreadable, err := runtime.Get(a, v.Object, runtime.SymKey(runtime.SymIsConcatSpreadable))
	if err != nil {
		return false, err
	}
	if !spreadable.IsUndefined() {
		return spreadable.ToBoolean(), nil
	}
	return runtime.IsArray(a, v)
}

func arrayConcat(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	arr, err := runtime.ArraySpeciesCreate(a, o, 0)
	if err != nil {
		return nil, err
	}
	var n int64
	items := append([]*runtime.Value{runtime.NewObject(o)}, args...)
	for _, item := range items {
		spreadable, err := isConcatSpreadable(a, item)
		if err != nil {
			return nil, err
		}
		if !spreadable {
			if n >= maxArrayLike {
				return nil, a.NewTypeError("Array length exceeds the maximum")
			}
			if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(n), item); err != nil {
				return nil, err
			}
			n++
			continue
		}
		length, err := runtime.LengthOfArrayLike(a, item.Object)
		if err != nil {
			return nil, err
		}
		if n+length > maxArrayLike {
			return nil, a.NewTypeError("Array length exceeds the maximum")
		}
		for k := int64(0); k < length; k, n = k+1, n+1 {
			exists, err := hasIndex(a, item.Object, k)
			if err != nil {
				return nil, err
			}
			if !exists {
				continue
			}
			v, err := getIndex(a, item.Object, k)
			if err != nil {
				return nil, err
			}
			if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(n), v); err != nil {
				return nil, err
			}
		}
	}
	if err := setLength(a, arr, n); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayCopyWithin(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	to, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	from, err := relativeIndex(a, argAt(args, 1), length, 0)
	if err != nil {
		return nil, err
	}
	final, err := relativeIndex(a, argAt(args, 2), length, length)
	if err != nil {
		return nil, err
	}
	count := min(final-from, length-to)
	dir := int64(1)
	if from < to && to < from+count {
		dir = -1
		from += count - 1
		to += count - 1
	}
	for ; count > 0; count-- {
		exists, err := hasIndex(a, o, from)
		if err != nil {
			return nil, err
		}
		if exists {
			v, err := getIndex(a, o, from)
			if err != nil {
				return nil, err
			}
			if err := setIndex(a, o, to, v); err != nil {
				return nil, err
			}
		} else if err := runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(to)); err != nil {
			return nil, err
		}
		from += dir
		to += dir
	}
	return runtime.NewObject(o), nil
}

// iterateArray calls visit for each present element in ascending order,
// stopping when visit reports stop.
func iterateArray(a *runtime.Agent, o *runtime.Object, length int64, visit func(k int64, v *runtime.Value) (stop bool, err error)) error {
	for k := int64(0); k < length; k++ {
		exists, err := hasIndex(a, o, k)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		v, err := getIndex(a, o, k)
		if err != nil {
			return err
		}
		stop, err := visit(k, v)
		if err != nil || stop {
			return err
		}
	}
	return nil
}

// callbackVisitor calls fn(value, index, o) with thisArg.
func callbackVisitor(a *runtime.Agent, fn, thisArg *runtime.Value, o *runtime.Object, k int64, v *runtime.Value) (*runtime.Value, error) {
	return callFn(a, fn, thisArg, v, runtime.NewNumber(float64(k)), runtime.NewObject(o))
}

func arrayEvery(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.every")
	if err != nil {
		return nil, err
	}
	result := true
	err = iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		r, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
		if err != nil {
			return true, err
		}
		if !r.ToBoolean() {
			result = false
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(result), nil
}

func arraySome(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.some")
	if err != nil {
		return nil, err
	}
	result := false
	err = iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		r, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
		if err != nil {
			return true, err
		}
		if r.ToBoolean() {
			result = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(result), nil
}

func arrayForEach(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.forEach")
	if err != nil {
		return nil, err
	}
	err = iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		_, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
		return false, err
	})
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func arrayMap(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.map")
	if err != nil {
		return nil, err
	}
	arr, err := runtime.ArraySpeciesCreate(a, o, length)
	if err != nil {
		return nil, err
	}
	err = iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		r, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
		if err != nil {
			return true, err
		}
		return false, runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(k), r)
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayFilter(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.filter")
	if err != nil {
		return nil, err
	}
	arr, err := runtime.ArraySpeciesCreate(a, o, 0)
	if err != nil {
		return nil, err
	}
	var to int64
	err = iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		r, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
		if err != nil || !r.ToBoolean() {
			return err != nil, err
		}
		to++
		return false, runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(to-1), v)
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

// arrayFind implements find, findIndex, findLast and findLastIndex. Unlike
// the other iteration methods they visit holes.
func arrayFind(last, index bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o, length, err := thisArrayLike(a, this)
		if err != nil {
			return nil, err
		}
		fn, err := callbackArg(a, args, "Array.prototype.find")
		if err != nil {
			return nil, err
		}
		for i := int64(0); i < length; i++ {
			k := i
			if last {
				k = length - 1 - i
			}
			v, err := getIndex(a, o, k)
			if err != nil {
				return nil, err
			}
			r, err := callbackVisitor(a, fn, argAt(args, 1), o, k, v)
			if err != nil {
				return nil, err
			}
			if r.ToBoolean() {
				if index {
					return runtime.NewNumber(float64(k)), nil
				}
				return v, nil
			}
		}
		if index {
			return runtime.NewNumber(-1), nil
		}
		return runtime.Undefined, nil
	}
}

func arrayFill(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(a, argAt(args, 1), length, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(a, argAt(args, 2), length, length)
	if err != nil {
		return nil, err
	}
	for k := start; k < end; k++ {
		if err := setIndex(a, o, k, argAt(args, 0)); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(o), nil
}

// flattenInto appends the elements of source to target starting at
// index start, descending depth levels into nested arrays.
func flattenInto(a *runtime.Agent, target, source *runtime.Object, sourceLen, start int64, depth float64, mapper, thisArg *runtime.Value) (int64, error) {
	target2 := start
	err := iterateArray(a, source, sourceLen, func(k int64, v *runtime.Value) (bool, error) {
		if mapper != nil {
			var err error
			if v, err = callbackVisitor(a, mapper, thisArg, source, k, v); err != nil {
				return true, err
			}
		}
		flatten := false
		if depth > 0 {
			var err error
			if flatten, err = runtime.IsArray(a, v); err != nil {
				return true, err
			}
		}
		if flatten {
			n, err := runtime.LengthOfArrayLike(a, v.Object)
			if err != nil {
				return true, err
			}
			target2, err = flattenInto(a, target, v.Object, n, target2, depth-1, nil, nil)
			return err != nil, err
		}
		if target2 >= maxArrayLike {
			return true, a.NewTypeError("Array length exceeds the maximum")
		}
		target2++
		return false, runtime.CreateDataPropertyOrThrow(a, target, runtime.IndexKey(target2-1), v)
	})
	return target2, err
}

func arrayFlat(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	depth := 1.0
	if d := argAt(args, 0); !d.IsUndefined() {
		if depth, err = runtime.ToIntegerOrInfinity(a, d); err != nil {
			return nil, err
		}
		depth = math.Max(depth, 0)
	}
	arr, err := runtime.ArraySpeciesCreate(a, o, 0)
	if err != nil {
		return nil, err
	}
	if _, err := flattenInto(a, arr, o, length, 0, depth, nil, nil); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayFlatMap(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "Array.prototype.flatMap")
	if err != nil {
		return nil, err
	}
	arr, err := runtime.ArraySpeciesCreate(a, o, 0)
	if err != nil {
		return nil, err
	}
	if _, err := flattenInto(a, arr, o, length, 0, 1, fn, argAt(args, 1)); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arrayIncludes(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return runtime.False, nil
	}
	k, err := relativeIndex(a, argAt(args, 1), length, 0)
	if err != nil {
		return nil, err
	}
	for ; k < length; k++ {
		v, err := getIndex(a, o, k)
		if err != nil {
			return nil, err
		}
		if runtime.SameValueZero(v, argAt(args, 0)) {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

func arrayIndexOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return runtime.NewNumber(-1), nil
	}
	k, err := relativeIndex(a, argAt(args, 1), length, 0)
	if err != nil {
		return nil, err
	}
	found := int64(-1)
	err = iterateArray(a, o, length, func(i int64, v *runtime.Value) (bool, error) {
		if i >= k && runtime.IsStrictlyEqual(v, argAt(args, 0)) {
			found = i
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(found)), nil
}

func arrayLastIndexOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return runtime.NewNumber(-1), nil
	}
	k := float64(length - 1)
	if len(args) > 1 {
		n, err := runtime.ToIntegerOrInfinity(a, args[1])
		if err != nil {
			return nil, err
		}
		if n >= 0 {
			k = math.Min(n, float64(length-1))
		} else {
			k = float64(length) + n
		}
	}
	for i := int64(k); i >= 0; i-- {
		exists, err := hasIndex(a, o, i)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		v, err := getIndex(a, o, i)
		if err != nil {
			return nil, err
		}
		if runtime.IsStrictlyEqual(v, argAt(args, 0)) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayJoin(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	sep := ","
	if s := argAt(args, 0); !s.IsUndefined() {
		if sep, err = toGoStr(a, s); err != nil {
			return nil, err
		}
	}
	if !a.EnterCycleGuard(o) {
		return runtime.EmptyStr, nil
	}
	defer a.LeaveCycleGuard(o)
	var b strings.Builder
	for k := int64(0); k < length; k++ {
		if k > 0 {
			b.WriteString(sep)
		}
		v, err := getIndex(a, o, k)
		if err != nil {
			return nil, err
		}
		if v.IsNullish() {
			continue
		}
		s, err := toGoStr(a, v)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return runtime.NewString(b.String()), nil
}

func arrayToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	join, err := runtime.Get(a, o, runtime.StrKey("join"))
	if err != nil {
		return nil, err
	}
	if !runtime.IsCallable(join) {
		return objectProtoToString(a, runtime.NewObject(o), nil, nil)
	}
	return runtime.Call(a, join, runtime.NewObject(o), nil)
}

func arrayPop(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return runtime.Undefined, setLength(a, o, 0)
	}
	v, err := getIndex(a, o, length-1)
	if err != nil {
		return nil, err
	}
	if err := runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(length-1)); err != nil {
		return nil, err
	}
	return v, setLength(a, o, length-1)
}

func arrayPush(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length+int64(len(args)) > maxArrayLike {
		return nil, a.NewTypeError("Pushing %d elements on an array-like of length %d is disallowed", len(args), length)
	}
	for _, v := range args {
		if err := setIndex(a, o, length, v); err != nil {
			return nil, err
		}
		length++
	}
	if err := setLength(a, o, length); err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(length)), nil
}

// arrayReduce implements reduce and reduceRight.
func arrayReduce(right bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o, length, err := thisArrayLike(a, this)
		if err != nil {
			return nil, err
		}
		fn, err := callbackArg(a, args, "Array.prototype.reduce")
		if err != nil {
			return nil, err
		}
		index := func(i int64) int64 {
			if right {
				return length - 1 - i
			}
			return i
		}
		var acc *runtime.Value
		i := int64(0)
		if len(args) > 1 {
			acc = args[1]
		} else {
			for ; i < length && acc == nil; i++ {
				exists, err := hasIndex(a, o, index(i))
				if err != nil {
					return nil, err
				}
				if exists {
					if acc, err = getIndex(a, o, index(i)); err != nil {
						return nil, err
					}
				}
			}
			if acc == nil {
				return nil, a.NewTypeError("Reduce of empty array with no initial value")
			}
		}
		for ; i < length; i++ {
			k := index(i)
			exists, err := hasIndex(a, o, k)
			if err != nil {
				return nil, err
			}
			if !exists {
				continue
			}
			v, err := getIndex(a, o, k)
			if err != nil {
				return nil, err
			}
			if acc, err = callFn(a, fn, runtime.Undefined, acc, v, runtime.NewNumber(float64(k)), runtime.NewObject(o)); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

func arrayReverse(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	for lower := int64(0); lower < length/2; lower++ {
		upper := length - 1 - lower
		lowerExists, err := hasIndex(a, o, lower)
		if err != nil {
			return nil, err
		}
		var lowerV, upperV *runtime.Value
		if lowerExists {
			if lowerV, err = getIndex(a, o, lower); err != nil {
				return nil, err
			}
		}
		upperExists, err := hasIndex(a, o, upper)
		if err != nil {
			return nil, err
		}
		if upperExists {
			if upperV, err = getIndex(a, o, upper); err != nil {
				return nil, err
			}
		}
		if err := moveElement(a, o, lower, upperV, upperExists); err != nil {
			return nil, err
		}
		if err := moveElement(a, o, upper, lowerV, lowerExists); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(o), nil
}

// moveElement stores v at k, or deletes k when the source was a hole.
func moveElement(a *runtime.Agent, o *runtime.Object, k int64, v *runtime.Value, exists bool) error {
	if exists {
		return setIndex(a, o, k, v)
	}
	return runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(k))
}

// shiftElements moves the elements in [from, from+count) by delta,
// preserving holes, in the order that does not clobber unread elements.
func shiftElements(a *runtime.Agent, o *runtime.Object, from, count, delta int64) error {
	move := func(k int64) error {
		exists, err := hasIndex(a, o, k)
		if err != nil {
			return err
		}
		var v *runtime.Value
		if exists {
			if v, err = getIndex(a, o, k); err != nil {
				return err
			}
		}
		return moveElement(a, o, k+delta, v, exists)
	}
	if delta < 0 {
		for k := from; k < from+count; k++ {
			if err := move(k); err != nil {
				return err
			}
		}
		return nil
	}
	for k := from + count - 1; k >= from; k-- {
		if err := move(k); err != nil {
			return err
		}
	}
	return nil
}

func arrayShift(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return runtime.Undefined, setLength(a, o, 0)
	}
	first, err := getIndex(a, o, 0)
	if err != nil {
		return nil, err
	}
	if err := shiftElements(a, o, 1, length-1, -1); err != nil {
		return nil, err
	}
	if err := runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(length-1)); err != nil {
		return nil, err
	}
	return first, setLength(a, o, length-1)
}

func arrayUnshift(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	n := int64(len(args))
	if n > 0 {
		if length+n > maxArrayLike {
			return nil, a.NewTypeError("Array length exceeds the maximum")
		}
		if err := shiftElements(a, o, 0, length, n); err != nil {
			return nil, err
		}
		for i, v := range args {
			if err := setIndex(a, o, int64(i), v); err != nil {
				return nil, err
			}
		}
	}
	if err := setLength(a, o, length+n); err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(length + n)), nil
}

func arraySlice(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	count := max(end-start, 0)
	arr, err := runtime.ArraySpeciesCreate(a, o, count)
	if err != nil {
		return nil, err
	}
	var n int64
	for k := start; k < end; k, n = k+1, n+1 {
		exists, err := hasIndex(a, o, k)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		v, err := getIndex(a, o, k)
		if err != nil {
			return nil, err
		}
		if err := runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(n), v); err != nil {
			return nil, err
		}
	}
	if err := setLength(a, arr, n); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func arraySplice(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	var items []*runtime.Value
	deleteCount := int64(0)
	switch len(args) {
	case 0:
	case 1:
		deleteCount = length - start
	default:
		dc, err := runtime.ToIntegerOrInfinity(a, args[1])
		if err != nil {
			return nil, err
		}
		deleteCount = int64(math.Min(math.Max(dc, 0), float64(length-start)))
		items = args[2:]
	}
	itemCount := int64(len(items))
	if length+itemCount-deleteCount > maxArrayLike {
		return nil, a.NewTypeError("Array length exceeds the maximum")
	}
	removed, err := runtime.ArraySpeciesCreate(a, o, deleteCount)
	if err != nil {
		return nil, err
	}
	for k := int64(0); k < deleteCount; k++ {
		exists, err := hasIndex(a, o, start+k)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		v, err := getIndex(a, o, start+k)
		if err != nil {
			return nil, err
		}
		if err := runtime.CreateDataPropertyOrThrow(a, removed, runtime.IndexKey(k), v); err != nil {
			return nil, err
		}
	}
	if err := setLength(a, removed, deleteCount); err != nil {
		return nil, err
	}
	tail := length - start - deleteCount
	if delta := itemCount - deleteCount; delta != 0 {
		if err := shiftElements(a, o, start+deleteCount, tail, delta); err != nil {
			return nil, err
		}
		if delta < 0 {
			for k := length; k > length+delta; k-- {
				if err := runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(k-1)); err != nil {
					return nil, err
				}
			}
		}
	}
	for i, v := range items {
		if err := setIndex(a, o, start+int64(i), v); err != nil {
			return nil, err
		}
	}
	if err := setLength(a, o, length-deleteCount+itemCount); err != nil {
		return nil, err
	}
	return runtime.NewObject(removed), nil
}

// sortValues sorts vals with comparefn (or by string order), moving
// undefined to the end. The first comparator error aborts the sort.
func sortValues(a *runtime.Agent, vals []*runtime.Value, comparefn *runtime.Value) ([]*runtime.Value, error) {
	var defined, undefs []*runtime.Value
	for _, v := range vals {
		if v.IsUndefined() {
			undefs = append(undefs, v)
		} else {
			defined = append(defined, v)
		}
	}
	var sortErr error
	less := func(x, y *runtime.Value) bool {
		if sortErr != nil {
			return false
		}
		if !comparefn.IsUndefined() {
			r, err := callFn(a, comparefn, runtime.Undefined, x, y)
			if err != nil {
				sortErr = err
				return false
			}
			n, err := runtime.ToNumber(a, r)
			if err != nil {
				sortErr = err
				return false
			}
			return n < 0
		}
		xs, err := toStr(a, x)
		if err != nil {
			sortErr = err
			return false
		}
		ys, err := toStr(a, y)
		if err != nil {
			sortErr = err
			return false
		}
		return runtime.CompareStrings(xs, ys) < 0
	}
	sort.SliceStable(defined, func(i, j int) bool { return less(defined[i], defined[j]) })
	if sortErr != nil {
		return nil, sortErr
	}
	return append(defined, undefs...), nil
}

func comparatorArg(a *runtime.Agent, args []*runtime.Value) (*runtime.Value, error) {
	fn := argAt(args, 0)
	if !fn.IsUndefined() && !runtime.IsCallable(fn) {
		return nil, a.NewTypeError("The comparison function must be either a function or undefined")
	}
	return fn, nil
}

func arraySort(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	fn, err := comparatorArg(a, args)
	if err != nil {
		return nil, err
	}
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	var vals []*runtime.Value
	if err := iterateArray(a, o, length, func(k int64, v *runtime.Value) (bool, error) {
		vals = append(vals, v)
		return false, nil
	}); err != nil {
		return nil, err
	}
	sorted, err := sortValues(a, vals, fn)
	if err != nil {
		return nil, err
	}
	for i, v := range sorted {
		if err := setIndex(a, o, int64(i), v); err != nil {
			return nil, err
		}
	}
	for k := int64(len(sorted)); k < length; k++ {
		if err := runtime.DeletePropertyOrThrow(a, o, runtime.IndexKey(k)); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(o), nil
}

// readAll reads elements [0, length), turning holes into undefined.
func readAll(a *runtime.Agent, o *runtime.Object, length int64) ([]*runtime.Value, error) {
	if length > math.MaxUint32 {
		return nil, a.NewRangeError("Invalid array length")
	}
	vals := make([]*runtime.Value, length)
	for k := range vals {
		v, err := getIndex(a, o, int64(k))
		if err != nil {
			return nil, err
		}
		vals[k] = v
	}
	return vals, nil
}

func arrayToReversed(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	vals, err := readAll(a, o, length)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	return arrayValue(a, vals), nil
}

func arrayToSorted(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	fn, err := comparatorArg(a, args)
	if err != nil {
		return nil, err
	}
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	vals, err := readAll(a, o, length)
	if err != nil {
		return nil, err
	}
	sorted, err := sortValues(a, vals, fn)
	if err != nil {
		return nil, err
	}
	return arrayValue(a, sorted), nil
}

func arrayWith(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, length, err := thisArrayLike(a, this)
	if err != nil {
		return nil, err
	}
	rel, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	idx := rel
	if rel < 0 {
		idx = float64(length) + rel
	}
	if idx < 0 || idx >= float64(length) {
		return nil, a.NewRangeError("Invalid index : %s", runtime.NumberToString(rel))
	}
	vals, err := readAll(a, o, length)
	if err != nil {
		return nil, err
	}
	vals[int64(idx)] = argAt(args, 1)
	return arrayValue(a, vals), nil
}

func arrayIteratorMethod(kind string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o, err := runtime.ToObject(a, this)
		if err != nil {
			return nil, err
		}
		return createArrayIterator(a, o, kind), nil
	}
}
