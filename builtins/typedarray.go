package builtins

import (
	"github.com/example/jscore/runtime"
)

func createArrayBufferConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%ArrayBuffer.prototype%", proto)

	setGetter(realm, proto, runtime.StrKey("byteLength"), func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		b, err := thisBuffer(a, this, "get ArrayBuffer.prototype.byteLength")
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(len(b.Bytes))), nil
	})
	setGetter(realm, proto, runtime.StrKey("detached"), func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		b, err := thisBuffer(a, this, "get ArrayBuffer.prototype.detached")
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(b.Detached), nil
	})
	setMethod(realm, proto, "slice", 2, arrayBufferSlice)
	setToStringTag(proto, "ArrayBuffer")

	ctor := newConstructor(realm, "ArrayBuffer", 1, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if nt == nil {
			return nil, a.NewTypeError("Constructor ArrayBuffer requires 'new'")
		}
		n, err := runtime.ToIndex(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		buf, err := runtime.AllocateArrayBuffer(a, nt, n)
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(buf), nil
	})
	setMethod(realm, ctor, "isView", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		v := argAt(args, 0)
		return runtime.NewBool(v.IsObject() && runtime.TypedArrayOf(v.Object) != nil), nil
	})
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%ArrayBuffer%", ctor)
	return ctor, proto
}

func thisBuffer(a *runtime.Agent, this *runtime.Value, method string) (*runtime.ArrayBufferData, error) {
	if this.IsObject() {
		if b := runtime.BufferData(this.Object); b != nil {
			return b, nil
		}
	}
	return nil, a.NewTypeError("Method %s called on incompatible receiver %s", method, this.String())
}

func arrayBufferSlice(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	b, err := thisBuffer(a, this, "ArrayBuffer.prototype.slice")
	if err != nil {
		return nil, err
	}
	if b.Detached {
		return nil, a.NewTypeError("Cannot perform ArrayBuffer.prototype.slice on a detached ArrayBuffer")
	}
	length := int64(len(b.Bytes))
	first, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	final, err := relativeIndex(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	newLen := max(final-first, 0)
	c, err := runtime.SpeciesConstructor(a, this.Object, a.CurrentRealm().Intrinsic("%ArrayBuffer%"))
	if err != nil {
		return nil, err
	}
	nv, err := runtime.Construct(a, c, []*runtime.Value{runtime.NewNumber(float64(newLen))}, nil)
	if err != nil {
		return nil, err
	}
	nb := runtime.BufferData(toObject(nv))
	switch {
	case nb == nil || nb.Detached:
		return nil, a.NewTypeError("ArrayBuffer subclass returned this from species constructor")
	case nv.Object == this.Object:
		return nil, a.NewTypeError("ArrayBuffer subclass returned this from species constructor")
	case int64(len(nb.Bytes)) < newLen:
		return nil, a.NewTypeError("Species constructor returned a too small buffer")
	case b.Detached:
		return nil, a.NewTypeError("Cannot perform ArrayBuffer.prototype.slice on a detached ArrayBuffer")
	}
	if first < int64(len(b.Bytes)) {
		copy(nb.Bytes, b.Bytes[first:min(first+newLen, int64(len(b.Bytes)))])
	}
	return nv, nil
}

// validTypedArray returns the view state of this, rejecting non-views and
// views whose buffer is detached or too short.
func validTypedArray(a *runtime.Agent, this *runtime.Value, method string) (*runtime.TypedArray, error) {
	var ta *runtime.TypedArray
	if this.IsObject() {
		ta = runtime.TypedArrayOf(this.Object)
	}
	if ta == nil {
		return nil, a.NewTypeError("%s: this is not a typed array", method)
	}
	if ta.IsOutOfBounds() {
		return nil, a.NewTypeError("%s: typed array is detached or out of bounds", method)
	}
	return ta, nil
}

// typedArrayMethod validates the receiver before running a generic
// array-like algorithm on it.
func typedArrayMethod(name string, fn runtime.NativeFunc) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if _, err := validTypedArray(a, this, "%TypedArray%.prototype."+name); err != nil {
			return nil, err
		}
		return fn(a, this, args, nt)
	}
}

func createTypedArrayConstructors(realm *runtime.Realm) map[string]*runtime.Object {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%TypedArray.prototype%", proto)

	viewGetter := func(name string, get func(ta *runtime.TypedArray) *runtime.Value) {
		setGetter(realm, proto, runtime.StrKey(name), func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
			var ta *runtime.TypedArray
			if this.IsObject() {
				ta = runtime.TypedArrayOf(this.Object)
			}
			if ta == nil {
				return nil, a.NewTypeError("get %%TypedArray%%.prototype.%s called on incompatible receiver", name)
			}
			return get(ta), nil
		})
	}
	viewGetter("buffer", func(ta *runtime.TypedArray) *runtime.Value {
		return runtime.NewObject(ta.Buffer)
	})
	viewGetter("byteLength", func(ta *runtime.TypedArray) *runtime.Value {
		return runtime.NewNumber(float64(ta.ArrayLength() * ta.Kind.Size()))
	})
	viewGetter("byteOffset", func(ta *runtime.TypedArray) *runtime.Value {
		if ta.IsOutOfBounds() {
			return runtime.Zero
		}
		return runtime.NewNumber(float64(ta.ByteOffset))
	})
	viewGetter("length", func(ta *runtime.TypedArray) *runtime.Value {
		return runtime.NewNumber(float64(ta.ArrayLength()))
	})
	setGetter(realm, proto, runtime.SymKey(runtime.SymToStringTag), func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if this.IsObject() {
			if ta := runtime.TypedArrayOf(this.Object); ta != nil {
				return runtime.NewString(ta.Kind.String()), nil
			}
		}
		return runtime.Undefined, nil
	})

	generic := map[string]struct {
		length int
		fn     runtime.NativeFunc
	}{
		"at":            {1, arrayAt},
		"copyWithin":    {2, arrayCopyWithin},
		"entries":       {0, arrayIteratorMethod(runtime.EnumKeyValues)},
		"every":         {1, arrayEvery},
		"fill":          {1, arrayFill},
		"find":          {1, arrayFind(false, false)},
		"findIndex":     {1, arrayFind(false, true)},
		"findLast":      {1, arrayFind(true, false)},
		"findLastIndex": {1, arrayFind(true, true)},
		"forEach":       {1, arrayForEach},
		"includes":      {1, arrayIncludes},
		"indexOf":       {1, arrayIndexOf},
		"join":          {1, arrayJoin},
		"keys":          {0, arrayIteratorMethod(runtime.EnumKeys)},
		"lastIndexOf":   {1, arrayLastIndexOf},
		"reduce":        {1, arrayReduce(false)},
		"reduceRight":   {1, arrayReduce(true)},
		"reverse":       {0, arrayReverse},
		"some":          {1, arraySome},
		"sort":          {1, arraySort},
	}
	for name, m := range generic {
		setMethod(realm, proto, name, m.length, typedArrayMethod(name, m.fn))
	}
	setMethod(realm, proto, "filter", 1, typedArrayFilter)
	setMethod(realm, proto, "map", 1, typedArrayMap)
	setMethod(realm, proto, "set", 1, typedArraySet)
	setMethod(realm, proto, "slice", 2, typedArraySlice)
	setMethod(realm, proto, "subarray", 2, typedArraySubarray)
	values := setMethod(realm, proto, "values", 0, typedArrayMethod("values", arrayIteratorMethod(runtime.EnumValues)))
	proto.DefineProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(runtime.NewObject(values), true, false, true))
	if toString, ok := realm.Intrinsic("%Array.prototype%").OwnData(runtime.StrKey("toString")); ok {
		setDataProp(proto, "toString", toString, true, false, true)
	}

	abstract := newConstructor(realm, "TypedArray", 0, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return nil, a.NewTypeError("Abstract class TypedArray not directly constructable")
	})
	speciesGetter(realm, abstract)
	realm.SetIntrinsic("%TypedArray%", abstract)

	ctors := make(map[string]*runtime.Object, len(runtime.ElementKinds))
	for _, kind := range runtime.ElementKinds {
		ctors[kind.String()] = createTypedArrayConstructor(realm, abstract, proto, kind)
	}
	return ctors
}

func createTypedArrayConstructor(realm *runtime.Realm, abstract, abstractProto *runtime.Object, kind runtime.ElementKind) *runtime.Object {
	name := kind.String()
	proto := runtime.NewOrdinaryObject(abstractProto)
	protoName := "%" + name + ".prototype%"
	realm.SetIntrinsic(protoName, proto)
	bytes := runtime.NewNumber(float64(kind.Size()))
	setConstant(proto, "BYTES_PER_ELEMENT", bytes)

	ctor := newConstructor(realm, name, 3, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if nt == nil {
			return nil, a.NewTypeError("Constructor %s requires 'new'", name)
		}
		p, err := runtime.GetPrototypeFromConstructor(a, nt, protoName)
		if err != nil {
			return nil, err
		}
		o, err := initializeTypedArray(a, p, kind, args)
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(o), nil
	})
	ctor.SetProto(abstract)
	setConstant(ctor, "BYTES_PER_ELEMENT", bytes)
	realm.SetIntrinsic("%"+name+"%", ctor)
	return ctor
}

// allocateTypedArray creates a view over a fresh buffer of length elements.
func allocateTypedArray(a *runtime.Agent, proto *runtime.Object, kind runtime.ElementKind, length int64) (*runtime.Object, error) {
	buf, err := runtime.AllocateArrayBuffer(a, a.CurrentRealm().Intrinsic("%ArrayBuffer%"), length*int64(kind.Size()))
	if err != nil {
		return nil, err
	}
	return runtime.TypedArrayCreate(proto, kind, buf, 0, int(length)), nil
}

func initializeTypedArray(a *runtime.Agent, proto *runtime.Object, kind runtime.ElementKind, args []*runtime.Value) (*runtime.Object, error) {
	first := argAt(args, 0)
	if !first.IsObject() {
		n, err := runtime.ToIndex(a, first)
		if err != nil {
			return nil, err
		}
		return allocateTypedArray(a, proto, kind, n)
	}

	if b := runtime.BufferData(first.Object); b != nil {
		size := int64(kind.Size())
		offset, err := runtime.ToIndex(a, argAt(args, 1))
		if err != nil {
			return nil, err
		}
		if offset%size != 0 {
			return nil, a.NewRangeError("start offset of %s should be a multiple of %d", kind.String(), size)
		}
		var newLength int64
		if l := argAt(args, 2); !l.IsUndefined() {
			if newLength, err = runtime.ToIndex(a, l); err != nil {
				return nil, err
			}
		}
		if b.Detached {
			return nil, a.NewTypeError("Cannot construct %s on a detached ArrayBuffer", kind.String())
		}
		bufLen := int64(len(b.Bytes))
		if argAt(args, 2).IsUndefined() {
			if bufLen%size != 0 {
				return nil, a.NewRangeError("byte length of %s should be a multiple of %d", kind.String(), size)
			}
			if offset > bufLen {
				return nil, a.NewRangeError("Start offset %d is outside the bounds of the buffer", offset)
			}
			newLength = (bufLen - offset) / size
		} else if offset+newLength*size > bufLen {
			return nil, a.NewRangeError("Invalid typed array length: %d", newLength)
		}
		return runtime.TypedArrayCreate(proto, kind, first.Object, int(offset), int(newLength)), nil
	}

	var values []*runtime.Value
	if src := runtime.TypedArrayOf(first.Object); src != nil {
		if src.IsOutOfBounds() {
			return nil, a.NewTypeError("Cannot construct %s from a detached typed array", kind.String())
		}
		if src.Kind.IsBigInt() != kind.IsBigInt() {
			return nil, a.NewTypeError("Cannot mix BigInt and other types, use explicit conversions")
		}
		for i := 0; i < src.ArrayLength(); i++ {
			values = append(values, src.GetElement(float64(i)))
		}
	} else {
		usingIterator, err := runtime.GetMethod(a, first, runtime.SymKey(runtime.SymIterator))
		if err != nil {
			return nil, err
		}
		if !usingIterator.IsUndefined() {
			rec, err := runtime.GetIteratorFromMethod(a, first, usingIterator)
			if err != nil {
				return nil, err
			}
			for {
				v, done, err := runtime.IteratorStepValue(a, rec)
				if err != nil {
					return nil, err
				}
				if done {
					break
				}
				values = append(values, v)
			}
		} else {
			if values, err = runtime.CreateListFromArrayLike(a, first, false); err != nil {
				return nil, err
			}
		}
	}
	o, err := allocateTypedArray(a, proto, kind, int64(len(values)))
	if err != nil {
		return nil, err
	}
	ta := runtime.TypedArrayOf(o)
	for i, v := range values {
		if err := ta.SetElement(a, float64(i), v); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// typedArraySpeciesCreate constructs a view of the same element type as
// exemplar through its species constructor.
func typedArraySpeciesCreate(a *runtime.Agent, exemplar *runtime.Object, args ...*runtime.Value) (*runtime.Object, *runtime.TypedArray, error) {
	kind := runtime.TypedArrayOf(exemplar).Kind
	def := a.CurrentRealm().Intrinsic("%" + kind.String() + "%")
	c, err := runtime.SpeciesConstructor(a, exemplar, def)
	if err != nil {
		return nil, nil, err
	}
	v, err := runtime.Construct(a, c, args, nil)
	if err != nil {
		return nil, nil, err
	}
	ta, err := validTypedArray(a, v, "TypedArraySpeciesCreate")
	if err != nil {
		return nil, nil, err
	}
	if ta.Kind.IsBigInt() != kind.IsBigInt() {
		return nil, nil, a.NewTypeError("Content type of the species typed array does not match")
	}
	if len(args) == 1 && args[0].IsNumber() && float64(ta.ArrayLength()) < args[0].Number {
		return nil, nil, a.NewTypeError("Species constructor returned a too short typed array")
	}
	return v.Object, ta, nil
}

func typedArrayMap(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	src, err := validTypedArray(a, this, "%TypedArray%.prototype.map")
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "%TypedArray%.prototype.map")
	if err != nil {
		return nil, err
	}
	length := src.ArrayLength()
	out, dst, err := typedArraySpeciesCreate(a, this.Object, runtime.NewNumber(float64(length)))
	if err != nil {
		return nil, err
	}
	for i := 0; i < length; i++ {
		v, err := callbackVisitor(a, fn, argAt(args, 1), this.Object, int64(i), src.GetElement(float64(i)))
		if err != nil {
			return nil, err
		}
		if err := dst.SetElement(a, float64(i), v); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(out), nil
}

func typedArrayFilter(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	src, err := validTypedArray(a, this, "%TypedArray%.prototype.filter")
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(a, args, "%TypedArray%.prototype.filter")
	if err != nil {
		return nil, err
	}
	var kept []*runtime.Value
	for i := 0; i < src.ArrayLength(); i++ {
		v := src.GetElement(float64(i))
		r, err := callbackVisitor(a, fn, argAt(args, 1), this.Object, int64(i), v)
		if err != nil {
			return nil, err
		}
		if r.ToBoolean() {
			kept = append(kept, v)
		}
	}
	out, dst, err := typedArraySpeciesCreate(a, this.Object, runtime.NewNumber(float64(len(kept))))
	if err != nil {
		return nil, err
	}
	for i, v := range kept {
		if err := dst.SetElement(a, float64(i), v); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(out), nil
}

func typedArraySlice(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	src, err := validTypedArray(a, this, "%TypedArray%.prototype.slice")
	if err != nil {
		return nil, err
	}
	length := int64(src.ArrayLength())
	start, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	count := max(end-start, 0)
	out, dst, err := typedArraySpeciesCreate(a, this.Object, runtime.NewNumber(float64(count)))
	if err != nil {
		return nil, err
	}
	end = min(end, int64(src.ArrayLength()))
	for k, n := start, 0; k < end; k, n = k+1, n+1 {
		if err := dst.SetElement(a, float64(n), src.GetElement(float64(k))); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(out), nil
}

func typedArraySubarray(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	var src *runtime.TypedArray
	if this.IsObject() {
		src = runtime.TypedArrayOf(this.Object)
	}
	if src == nil {
		return nil, a.NewTypeError("%%TypedArray%%.prototype.subarray: this is not a typed array")
	}
	length := int64(src.ArrayLength())
	begin, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	size := src.Kind.Size()
	beginByte := src.ByteOffset + int(begin)*size
	out, _, err := typedArraySpeciesCreate(a, this.Object,
		runtime.NewObject(src.Buffer),
		runtime.NewNumber(float64(beginByte)),
		runtime.NewNumber(float64(max(end-begin, 0))))
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(out), nil
}

func typedArraySet(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	var dst *runtime.TypedArray
	if this.IsObject() {
		dst = runtime.TypedArrayOf(this.Object)
	}
	if dst == nil {
		return nil, a.NewTypeError("%%TypedArray%%.prototype.set: this is not a typed array")
	}
	offset, err := runtime.ToIntegerOrInfinity(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, a.NewRangeError("offset is out of bounds")
	}
	if dst.IsOutOfBounds() {
		return nil, a.NewTypeError("Cannot set on a detached typed array")
	}
	source := argAt(args, 0)
	var values []*runtime.Value
	if source.IsObject() && runtime.TypedArrayOf(source.Object) != nil {
		src := runtime.TypedArrayOf(source.Object)
		if src.IsOutOfBounds() {
			return nil, a.NewTypeError("Cannot set from a detached typed array")
		}
		if src.Kind.IsBigInt() != dst.Kind.IsBigInt() {
			return nil, a.NewTypeError("Cannot mix BigInt and other types, use explicit conversions")
		}
		for i := 0; i < src.ArrayLength(); i++ {
			values = append(values, src.GetElement(float64(i)))
		}
	} else {
		o, length, err := thisArrayLike(a, source)
		if err != nil {
			return nil, err
		}
		if float64(length)+offset > float64(dst.ArrayLength()) {
			return nil, a.NewRangeError("offset is out of bounds")
		}
		for i := int64(0); i < length; i++ {
			v, err := getIndex(a, o, i)
			if err != nil {
				return nil, err
			}
			if err := dst.SetElement(a, offset+float64(i), v); err != nil {
				return nil, err
			}
		}
		return runtime.Undefined, nil
	}
	if float64(len(values))+offset > float64(dst.ArrayLength()) {
		return nil, a.NewRangeError("offset is out of bounds")
	}
	for i, v := range values {
		if err := dst.SetElement(a, offset+float64(i), v); err != nil {
			return nil, err
		}
	}
	return runtime.Undefined, nil
}
