package runtime

import (
	"math"
	"sort"
)

var lengthKey = PropertyKey{Name: "length"}

// arrayExotic keeps length in step with the index properties.
type arrayExotic struct{}

func newArrayObject(proto *Object) *Object {
	o := NewOrdinaryObject(proto)
	o.Kind = KindArray
	o.Exotic = arrayExotic{}
	o.DefineProperty(lengthKey, DataDescriptor(Zero, true, false, false))
	return o
}

// ArrayCreate creates an array of the given length. A nil proto means the
// running realm's %Array.prototype%.
func ArrayCreate(a *Agent, length uint32, proto *Object) *Object {
	if proto == nil {
		proto = a.CurrentRealm().Intrinsic("%Array.prototype%")
	}
	o := newArrayObject(proto)
	o.setArrayLength(length)
	return o
}

func (o *Object) arrayLength() uint32 {
	return uint32(o.props[lengthKey].Value.Number)
}

func (o *Object) setArrayLength(n uint32) {
	o.props[lengthKey].Value = NewNumber(float64(n))
}

func (arrayExotic) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if key == lengthKey {
		return ArraySetLength(a, o, desc)
	}
	idx, ok := key.ArrayIndex()
	if !ok {
		return OrdinaryDefineOwnProperty(a, o, key, desc)
	}
	lenDesc := o.props[lengthKey]
	length := uint32(lenDesc.Value.Number)
	if idx >= length && !lenDesc.Writable {
		return false, nil
	}
	ok, err := OrdinaryDefineOwnProperty(a, o, key, desc)
	if err != nil || !ok {
		return false, err
	}
	if idx >= length {
		lenDesc.Value = NewNumber(float64(idx) + 1)
	}
	return true, nil
}

// ArraySetLength applies a descriptor to length. Shrinking deletes
// elements from the top; a non-configurable element stops the deletion
// with length left just above it.
func ArraySetLength(a *Agent, o *Object, desc PropertyDescriptor) (bool, error) {
	if !desc.HasValue {
		return OrdinaryDefineOwnProperty(a, o, lengthKey, desc)
	}
	newLen, err := ToUint32(a, desc.Value)
	if err != nil {
		return false, err
	}
	numberLen, err := ToNumber(a, desc.Value)
	if err != nil {
		return false, err
	}
	if float64(newLen) != numberLen {
		return false, a.NewRangeError("Invalid array length")
	}
	newLenDesc := desc
	newLenDesc.Value = NewNumber(float64(newLen))
	oldLenDesc := o.props[lengthKey]
	oldLen := uint32(oldLenDesc.Value.Number)
	if newLen >= oldLen {
		return OrdinaryDefineOwnProperty(a, o, lengthKey, newLenDesc)
	}
	if !oldLenDesc.Writable {
		return false, nil
	}
	newWritable := !newLenDesc.HasWritable || newLenDesc.Writable
	if !newWritable {
		newLenDesc.Writable, newLenDesc.HasWritable = true, true
	}
	if ok, err := OrdinaryDefineOwnProperty(a, o, lengthKey, newLenDesc); err != nil || !ok {
		return false, err
	}
	o.compactKeys()
	var doomed []uint32
	for _, k := range o.keys {
		if i, ok := k.ArrayIndex(); ok && i >= newLen {
			doomed = append(doomed, i)
		}
	}
	sort.Slice(doomed, func(i, j int) bool { return doomed[i] > doomed[j] })
	for _, i := range doomed {
		deleted, err := OrdinaryDelete(a, o, IndexKey(int64(i)))
		if err != nil {
			return false, err
		}
		if !deleted {
			newLenDesc.Value = NewNumber(float64(i) + 1)
			if !newWritable {
				newLenDesc.Writable = false
			}
			Must(OrdinaryDefineOwnProperty(a, o, lengthKey, newLenDesc))
			return false, nil
		}
	}
	if !newWritable {
		Must(OrdinaryDefineOwnProperty(a, o, lengthKey, PropertyDescriptor{HasWritable: true}))
	}
	return true, nil
}

// ArraySpeciesCreate creates the result array of an Array method.
func ArraySpeciesCreate(a *Agent, original *Object, length int64) (*Object, error) {
	isArray, err := IsArray(a, NewObject(original))
	if err != nil {
		return nil, err
	}
	if !isArray {
		return newArrayChecked(a, length)
	}
	c, err := Get(a, original, StrKey("constructor"))
	if err != nil {
		return nil, err
	}
	if IsConstructor(c) {
		realm, err := GetFunctionRealm(a, c.Object)
		if err != nil {
			return nil, err
		}
		if realm != a.CurrentRealm() && c.Object == realm.Intrinsic("%Array%") {
			c = Undefined
		}
	}
	if c.IsObject() {
		c, err = Get(a, c.Object, SymKey(SymSpecies))
		if err != nil {
			return nil, err
		}
		if c.IsNull() {
			c = Undefined
		}
	}
	if c.IsUndefined() {
		return newArrayChecked(a, length)
	}
	if !IsConstructor(c) {
		return nil, a.NewTypeError("object.constructor[Symbol.species] is not a constructor")
	}
	r, err := Construct(a, c.Object, []*Value{NewNumber(float64(length))}, nil)
	if err != nil {
		return nil, err
	}
	return r.Object, nil
}

func newArrayChecked(a *Agent, length int64) (*Object, error) {
	if length > math.MaxUint32 {
		return nil, a.NewRangeError("Invalid array length")
	}
	return ArrayCreate(a, uint32(length), nil), nil
}
