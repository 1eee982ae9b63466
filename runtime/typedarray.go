package runtime

import (
	"encoding/binary"
	"math"
	"math/big"
)

// ArrayBufferData backs an ArrayBuffer object in slot "[[ArrayBufferData]]".
type ArrayBufferData struct {
	Bytes    []byte
	Detached bool
}

// Detach releases the buffer's bytes. Views over it report length 0.
func (b *ArrayBufferData) Detach() {
	b.Bytes = nil
	b.Detached = true
}

// AllocateArrayBuffer creates an ArrayBuffer of byteLength zeroed bytes.
func AllocateArrayBuffer(a *Agent, ctor *Object, byteLength int64) (*Object, error) {
	o, err := OrdinaryCreateFromConstructor(a, ctor, "%ArrayBuffer.prototype%")
	if err != nil {
		return nil, err
	}
	if byteLength > math.MaxInt32 {
		return nil, a.NewRangeError("Array buffer allocation failed")
	}
	o.Kind = KindArrayBuffer
	o.SetSlot("[[ArrayBufferData]]", &ArrayBufferData{Bytes: make([]byte, byteLength)})
	return o, nil
}

// BufferData returns the buffer record of an ArrayBuffer, or nil.
func BufferData(o *Object) *ArrayBufferData {
	b, _ := o.Slot("[[ArrayBufferData]]").(*ArrayBufferData)
	return b
}

// ElementKind is the element type of an integer-indexed object.
type ElementKind int

const (
	ElemInt8 ElementKind = iota
	ElemUint8
	ElemUint8Clamped
	ElemInt16
	ElemUint16
	ElemInt32
	ElemUint32
	ElemFloat32
	ElemFloat64
	ElemBigInt64
	ElemBigUint64
)

var elementInfo = [...]struct {
	name string
	size int
}{
	ElemInt8:         {"Int8Array", 1},
	ElemUint8:        {"Uint8Array", 1},
	ElemUint8Clamped: {"Uint8ClampedArray", 1},
	ElemInt16:        {"Int16Array", 2},
	ElemUint16:       {"Uint16Array", 2},
	ElemInt32:        {"Int32Array", 4},
	ElemUint32:       {"Uint32Array", 4},
	ElemFloat32:      {"Float32Array", 4},
	ElemFloat64:      {"Float64Array", 8},
	ElemBigInt64:     {"BigInt64Array", 8},
	ElemBigUint64:    {"BigUint64Array", 8},
}

// ElementKinds lists every element kind in constructor order.
var ElementKinds = []ElementKind{ElemInt8, ElemUint8, ElemUint8Clamped, ElemInt16, ElemUint16, ElemInt32, ElemUint32, ElemFloat32, ElemFloat64, ElemBigInt64, ElemBigUint64}

func (k ElementKind) String() string { return elementInfo[k].name }

// Size is the element size in bytes.
func (k ElementKind) Size() int { return elementInfo[k].size }

// IsBigInt reports whether elements are BigInt values.
func (k ElementKind) IsBigInt() bool { return k == ElemBigInt64 || k == ElemBigUint64 }

// TypedArray is the exotic state of an integer-indexed object.
type TypedArray struct {
	Kind       ElementKind
	Buffer     *Object
	ByteOffset int
	Length     int
}

// TypedArrayCreate makes a view of length elements over buffer starting at
// byteOffset.
func TypedArrayCreate(proto *Object, kind ElementKind, buffer *Object, byteOffset, length int) *Object {
	o := NewOrdinaryObject(proto)
	o.Kind = KindTypedArray
	o.Exotic = &TypedArray{Kind: kind, Buffer: buffer, ByteOffset: byteOffset, Length: length}
	return o
}

// TypedArrayOf returns the view state of o, or nil.
func TypedArrayOf(o *Object) *TypedArray {
	t, _ := o.Exotic.(*TypedArray)
	return t
}

func (t *TypedArray) data() *ArrayBufferData {
	return BufferData(t.Buffer)
}

// IsOutOfBounds reports whether the view no longer fits its buffer.
func (t *TypedArray) IsOutOfBounds() bool {
	b := t.data()
	if b.Detached {
		return true
	}
	return t.ByteOffset+t.Length*t.Kind.Size() > len(b.Bytes)
}

// ArrayLength is the observable length: zero when out of bounds.
func (t *TypedArray) ArrayLength() int {
	if t.IsOutOfBounds() {
		return 0
	}
	return t.Length
}

func (t *TypedArray) validIndex(idx float64) bool {
	if t.IsOutOfBounds() {
		return false
	}
	if idx != math.Trunc(idx) || (idx == 0 && math.Signbit(idx)) {
		return false
	}
	return idx >= 0 && idx < float64(t.Length)
}

// GetElement reads element i, or undefined for an invalid index.
func (t *TypedArray) GetElement(idx float64) *Value {
	if !t.validIndex(idx) {
		return Undefined
	}
	size := t.Kind.Size()
	off := t.ByteOffset + int(idx)*size
	return decodeElement(t.Kind, t.data().Bytes[off:off+size])
}

// SetElement converts v and writes it to element idx. Conversion happens
// before the index check so its side effects are observed even when the
// write is dropped.
func (t *TypedArray) SetElement(a *Agent, idx float64, v *Value) error {
	var num *Value
	if t.Kind.IsBigInt() {
		n, err := ToBigInt(a, v)
		if err != nil {
			return err
		}
		num = NewBigInt(n)
	} else {
		n, err := ToNumber(a, v)
		if err != nil {
			return err
		}
		num = NewNumber(n)
	}
	if !t.validIndex(idx) {
		return nil
	}
	size := t.Kind.Size()
	off := t.ByteOffset + int(idx)*size
	encodeElement(t.Kind, t.data().Bytes[off:off+size], num)
	return nil
}

func decodeElement(kind ElementKind, b []byte) *Value {
	le := binary.LittleEndian
	switch kind {
	case ElemInt8:
		return NewNumber(float64(int8(b[0])))
	case ElemUint8, ElemUint8Clamped:
		return NewNumber(float64(b[0]))
	case ElemInt16:
		return NewNumber(float64(int16(le.Uint16(b))))
	case ElemUint16:
		return NewNumber(float64(le.Uint16(b)))
	case ElemInt32:
		return NewNumber(float64(int32(le.Uint32(b))))
	case ElemUint32:
		return NewNumber(float64(le.Uint32(b)))
	case ElemFloat32:
		return NewNumber(float64(math.Float32frombits(le.Uint32(b))))
	case ElemFloat64:
		return NewNumber(math.Float64frombits(le.Uint64(b)))
	case ElemBigInt64:
		return NewBigInt(big.NewInt(int64(le.Uint64(b))))
	case ElemBigUint64:
		return NewBigInt(new(big.Int).SetUint64(le.Uint64(b)))
	}
	panic(&AssertionError{Msg: "unknown element kind"})
}

func encodeElement(kind ElementKind, b []byte, v *Value) {
	le := binary.LittleEndian
	switch kind {
	case ElemInt8:
		b[0] = byte(Int8(v.Number))
	case ElemUint8:
		b[0] = Uint8(v.Number)
	case ElemUint8Clamped:
		b[0] = Uint8Clamp(v.Number)
	case ElemInt16:
		le.PutUint16(b, uint16(Int16(v.Number)))
	case ElemUint16:
		le.PutUint16(b, Uint16(v.Number))
	case ElemInt32:
		le.PutUint32(b, uint32(Int32(v.Number)))
	case ElemUint32:
		le.PutUint32(b, Uint32(v.Number))
	case ElemFloat32:
		le.PutUint32(b, math.Float32bits(float32(v.Number)))
	case ElemFloat64:
		le.PutUint64(b, math.Float64bits(v.Number))
	case ElemBigInt64, ElemBigUint64:
		le.PutUint64(b, AsUintN(64, v.BigInt).Uint64())
	}
}

func (t *TypedArray) numericKey(key PropertyKey) (float64, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	return CanonicalNumericIndexString(key)
}

func (t *TypedArray) GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error) {
	if idx, ok := t.numericKey(key); ok {
		if !t.validIndex(idx) {
			return PropertyDescriptor{}, false, nil
		}
		return DataDescriptor(t.GetElement(idx), true, true, true), true, nil
	}
	d, found := o.OrdinaryGetOwnProperty(key)
	return d, found, nil
}

func (t *TypedArray) HasProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	if idx, ok := t.numericKey(key); ok {
		return t.validIndex(idx), nil
	}
	return OrdinaryHasProperty(a, o, key)
}

func (t *TypedArray) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	idx, ok := t.numericKey(key)
	if !ok {
		return OrdinaryDefineOwnProperty(a, o, key, desc)
	}
	if !t.validIndex(idx) {
		return false, nil
	}
	if (desc.HasConfigurable && !desc.Configurable) ||
		(desc.HasEnumerable && !desc.Enumerable) ||
		desc.IsAccessorDescriptor() ||
		(desc.HasWritable && !desc.Writable) {
		return false, nil
	}
	if desc.HasValue {
		if err := t.SetElement(a, idx, desc.Value); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (t *TypedArray) Get(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error) {
	if idx, ok := t.numericKey(key); ok {
		return t.GetElement(idx), nil
	}
	return OrdinaryGet(a, o, key, receiver)
}

func (t *TypedArray) Set(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error) {
	if idx, ok := t.numericKey(key); ok {
		if receiver.IsObject() && receiver.Object == o {
			return true, t.SetElement(a, idx, v)
		}
		if !t.validIndex(idx) {
			return true, nil
		}
	}
	return OrdinarySet(a, o, key, v, receiver)
}

func (t *TypedArray) Delete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	if idx, ok := t.numericKey(key); ok {
		return !t.validIndex(idx), nil
	}
	return OrdinaryDelete(a, o, key)
}

func (t *TypedArray) OwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	n := t.ArrayLength()
	keys := make([]PropertyKey, 0, n+len(o.keys))
	for i := 0; i < n; i++ {
		keys = append(keys, IndexKey(int64(i)))
	}
	return append(keys, o.OrdinaryOwnPropertyKeys()...), nil
}
