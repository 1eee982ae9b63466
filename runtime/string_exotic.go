package runtime

import (
	"math"
	"sort"

	"github.com/dop251/goja/unistring"
)

// stringExotic exposes the code units of a String wrapper as read-only
// index properties.
type stringExotic struct{}

// StringCreate creates a String wrapper object.
func StringCreate(s unistring.String, proto *Object) *Object {
	o := NewOrdinaryObject(proto)
	o.Kind = KindString
	o.Exotic = stringExotic{}
	o.SetSlot("[[StringData]]", NewUString(s))
	o.DefineProperty(lengthKey, DataDescriptor(NewNumber(float64(StringLength(s))), false, false, false))
	return o
}

func stringData(o *Object) unistring.String {
	return o.Slot("[[StringData]]").(*Value).Str
}

func stringGetOwnProperty(o *Object, key PropertyKey) (PropertyDescriptor, bool) {
	idx, ok := CanonicalNumericIndexString(key)
	if !ok || idx != math.Trunc(idx) || (idx == 0 && math.Signbit(idx)) || idx < 0 {
		return PropertyDescriptor{}, false
	}
	s := stringData(o)
	if idx >= float64(StringLength(s)) {
		return PropertyDescriptor{}, false
	}
	i := int(idx)
	return DataDescriptor(NewUString(Substring(s, i, i+1)), false, true, false), true
}

func (stringExotic) GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error) {
	if d, ok := o.OrdinaryGetOwnProperty(key); ok {
		return d, true, nil
	}
	d, ok := stringGetOwnProperty(o, key)
	return d, ok, nil
}

func (stringExotic) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if current, ok := stringGetOwnProperty(o, key); ok {
		return IsCompatiblePropertyDescriptor(o.extensible, desc, current, true), nil
	}
	return OrdinaryDefineOwnProperty(a, o, key, desc)
}

func (stringExotic) OwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	o.compactKeys()
	n := StringLength(stringData(o))
	keys := make([]PropertyKey, 0, n+len(o.keys))
	for i := 0; i < n; i++ {
		keys = append(keys, IndexKey(int64(i)))
	}
	var indices []uint32
	var strs, syms []PropertyKey
	for _, k := range o.keys {
		switch idx, ok := k.ArrayIndex(); {
		case k.Symbol != nil:
			syms = append(syms, k)
		case ok:
			if int(idx) >= n {
				indices = append(indices, idx)
			}
		default:
			strs = append(strs, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, i := range indices {
		keys = append(keys, IndexKey(int64(i)))
	}
	keys = append(keys, strs...)
	return append(keys, syms...), nil
}
