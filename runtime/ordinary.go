package runtime

import "sort"

// OrdinarySetPrototypeOf stores proto unless the object is non-extensible
// or the change would create a cycle. The cycle walk stops at an object
// with exotic [[GetPrototypeOf]].
func OrdinarySetPrototypeOf(o *Object, proto *Object) bool {
	if proto == o.proto {
		return true
	}
	if !o.extensible {
		return false
	}
	for p := proto; p != nil; p = p.proto {
		if p == o {
			return false
		}
		if _, exotic := p.Exotic.(PrototypeGetter); exotic {
			break
		}
	}
	o.proto = proto
	return true
}

// OrdinaryGetOwnProperty returns a copy of the stored descriptor.
func (o *Object) OrdinaryGetOwnProperty(key PropertyKey) (PropertyDescriptor, bool) {
	d, ok := o.props[key]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return *d, true
}

func OrdinaryDefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	current, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	extensible, err := o.IsExtensible(a)
	if err != nil {
		return false, err
	}
	return ValidateAndApplyPropertyDescriptor(o, key, extensible, desc, current, found), nil
}

// IsCompatiblePropertyDescriptor checks desc against current without
// applying it.
func IsCompatiblePropertyDescriptor(extensible bool, desc, current PropertyDescriptor, found bool) bool {
	return ValidateAndApplyPropertyDescriptor(nil, PropertyKey{}, extensible, desc, current, found)
}

// ValidateAndApplyPropertyDescriptor validates desc against the current
// descriptor and, when o is non-nil, applies it.
func ValidateAndApplyPropertyDescriptor(o *Object, key PropertyKey, extensible bool, desc, current PropertyDescriptor, found bool) bool {
	if !found {
		if !extensible {
			return false
		}
		if o == nil {
			return true
		}
		d := desc
		CompletePropertyDescriptor(&d)
		o.storeProperty(key, d)
		return true
	}
	if desc.IsEmpty() {
		return true
	}
	if !current.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return false
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return false
		}
		if !desc.IsGenericDescriptor() && desc.IsAccessorDescriptor() != current.IsAccessorDescriptor() {
			return false
		}
		if current.IsAccessorDescriptor() {
			if desc.HasGet && !SameValue(desc.Get, current.Get) {
				return false
			}
			if desc.HasSet && !SameValue(desc.Set, current.Set) {
				return false
			}
		} else if !current.Writable {
			if desc.HasWritable && desc.Writable {
				return false
			}
			if desc.HasValue && !SameValue(desc.Value, current.Value) {
				return false
			}
		}
	}
	if o == nil {
		return true
	}
	next := current
	switch {
	case current.IsDataDescriptor() && desc.IsAccessorDescriptor():
		next = PropertyDescriptor{
			Get: Undefined, Set: Undefined,
			Enumerable: current.Enumerable, Configurable: current.Configurable,
			HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
		}
	case current.IsAccessorDescriptor() && desc.IsDataDescriptor():
		next = PropertyDescriptor{
			Value:      Undefined,
			Enumerable: current.Enumerable, Configurable: current.Configurable,
			HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
		}
	}
	if desc.HasValue {
		next.Value = desc.Value
	}
	if desc.HasWritable {
		next.Writable = desc.Writable
	}
	if desc.HasGet {
		next.Get = desc.Get
	}
	if desc.HasSet {
		next.Set = desc.Set
	}
	if desc.HasEnumerable {
		next.Enumerable = desc.Enumerable
	}
	if desc.HasConfigurable {
		next.Configurable = desc.Configurable
	}
	o.storeProperty(key, next)
	return true
}

func (o *Object) storeProperty(key PropertyKey, d PropertyDescriptor) {
	if existing, ok := o.props[key]; ok {
		*existing = d
		return
	}
	o.appendKey(key)
	o.props[key] = &d
}

// appendKey records key as the newest own property. A key that was removed
// and is still listed is dropped from the list first.
func (o *Object) appendKey(key PropertyKey) {
	if _, ok := o.dead[key]; ok {
		o.compactKeys()
	}
	o.keys = append(o.keys, key)
}

// removeProperty leaves key in the creation-order list and compacts the
// list once removed keys make up half of it, so bulk deletes stay linear.
func (o *Object) removeProperty(key PropertyKey) {
	if _, ok := o.props[key]; !ok {
		return
	}
	delete(o.props, key)
	if o.dead == nil {
		o.dead = make(map[PropertyKey]struct{})
	}
	o.dead[key] = struct{}{}
	if 2*len(o.dead) > len(o.keys) {
		o.compactKeys()
	}
}

// compactKeys drops removed keys from the creation-order list.
func (o *Object) compactKeys() {
	if len(o.dead) == 0 {
		return
	}
	live := o.keys[:0]
	for _, k := range o.keys {
		if _, ok := o.props[k]; ok {
			live = append(live, k)
		}
	}
	for i := len(live); i < len(o.keys); i++ {
		o.keys[i] = PropertyKey{}
	}
	o.keys = live
	o.dead = nil
}

func OrdinaryHasProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	_, found, err := o.GetOwnProperty(a, key)
	if err != nil || found {
		return found, err
	}
	parent, err := o.GetPrototypeOf(a)
	if err != nil || parent == nil {
		return false, err
	}
	return parent.HasProperty(a, key)
}

func OrdinaryGet(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return nil, err
	}
	if !found {
		parent, err := o.GetPrototypeOf(a)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return Undefined, nil
		}
		return parent.Get(a, key, receiver)
	}
	if desc.IsDataDescriptor() {
		return desc.Value, nil
	}
	if desc.Get.IsUndefined() {
		return Undefined, nil
	}
	return Call(a, desc.Get, receiver, nil)
}

func OrdinarySet(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error) {
	own, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	return OrdinarySetWithOwnDescriptor(a, o, key, v, receiver, own, found)
}

func OrdinarySetWithOwnDescriptor(a *Agent, o *Object, key PropertyKey, v, receiver *Value, own PropertyDescriptor, found bool) (bool, error) {
	if !found {
		parent, err := o.GetPrototypeOf(a)
		if err != nil {
			return false, err
		}
		if parent != nil {
			return parent.Set(a, key, v, receiver)
		}
		own = DataDescriptor(Undefined, true, true, true)
	}
	if own.IsDataDescriptor() {
		if !own.Writable || !receiver.IsObject() {
			return false, nil
		}
		existing, exists, err := receiver.Object.GetOwnProperty(a, key)
		if err != nil {
			return false, err
		}
		if exists {
			if existing.IsAccessorDescriptor() || !existing.Writable {
				return false, nil
			}
			return receiver.Object.DefineOwnProperty(a, key, PropertyDescriptor{Value: v, HasValue: true})
		}
		return CreateDataProperty(a, receiver.Object, key, v)
	}
	if own.Set.IsUndefined() {
		return false, nil
	}
	if _, err := Call(a, own.Set, receiver, []*Value{v}); err != nil {
		return false, err
	}
	return true, nil
}

func OrdinaryDelete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if desc.Configurable {
		o.removeProperty(key)
		return true, nil
	}
	return false, nil
}

// OrdinaryOwnPropertyKeys lists array indices ascending, then other strings
// and then symbols in creation order.
func (o *Object) OrdinaryOwnPropertyKeys() []PropertyKey {
	o.compactKeys()
	var indices []uint32
	var strs, syms []PropertyKey
	for _, k := range o.keys {
		if k.Symbol != nil {
			syms = append(syms, k)
		} else if i, ok := k.ArrayIndex(); ok {
			indices = append(indices, i)
		} else {
			strs = append(strs, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	out := make([]PropertyKey, 0, len(o.keys))
	for _, i := range indices {
		out = append(out, IndexKey(int64(i)))
	}
	out = append(out, strs...)
	return append(out, syms...)
}
