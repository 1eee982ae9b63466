package runtime

// PropertyDescriptor is a possibly partial property descriptor. The Has*
// flags record which fields are present.
type PropertyDescriptor struct {
	Value        *Value
	Get          *Value
	Set          *Value
	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasGet          bool
	HasSet          bool
	HasWritable     bool
	HasEnumerable   bool
	HasConfigurable bool
}

// DataDescriptor returns a complete data descriptor.
func DataDescriptor(v *Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// AccessorDescriptor returns a complete accessor descriptor. Nil functions
// are stored as undefined.
func AccessorDescriptor(get, set *Object, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Get: ObjectOrUndefined(get), Set: ObjectOrUndefined(set),
		Enumerable: enumerable, Configurable: configurable,
		HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
	}
}

func (d PropertyDescriptor) IsDataDescriptor() bool {
	return d.HasValue || d.HasWritable
}

func (d PropertyDescriptor) IsAccessorDescriptor() bool {
	return d.HasGet || d.HasSet
}

func (d PropertyDescriptor) IsGenericDescriptor() bool {
	return !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

// IsEmpty reports whether no field is present.
func (d PropertyDescriptor) IsEmpty() bool {
	return !d.HasValue && !d.HasGet && !d.HasSet && !d.HasWritable && !d.HasEnumerable && !d.HasConfigurable
}

// CompletePropertyDescriptor fills absent fields with their defaults.
func CompletePropertyDescriptor(d *PropertyDescriptor) {
	if d.IsGenericDescriptor() || d.IsDataDescriptor() {
		if !d.HasValue {
			d.Value, d.HasValue = Undefined, true
		}
		if !d.HasWritable {
			d.Writable, d.HasWritable = false, true
		}
	} else {
		if !d.HasGet {
			d.Get, d.HasGet = Undefined, true
		}
		if !d.HasSet {
			d.Set, d.HasSet = Undefined, true
		}
	}
	if !d.HasEnumerable {
		d.Enumerable, d.HasEnumerable = false, true
	}
	if !d.HasConfigurable {
		d.Configurable, d.HasConfigurable = false, true
	}
}

// FromPropertyDescriptor converts a descriptor to an ordinary object. An
// absent descriptor yields undefined.
func FromPropertyDescriptor(a *Agent, d PropertyDescriptor, found bool) *Value {
	if !found {
		return Undefined
	}
	obj := a.NewPlainObject()
	if d.HasValue {
		obj.DefineProperty(StrKey("value"), DataDescriptor(d.Value, true, true, true))
	}
	if d.HasWritable {
		obj.DefineProperty(StrKey("writable"), DataDescriptor(NewBool(d.Writable), true, true, true))
	}
	if d.HasGet {
		obj.DefineProperty(StrKey("get"), DataDescriptor(d.Get, true, true, true))
	}
	if d.HasSet {
		obj.DefineProperty(StrKey("set"), DataDescriptor(d.Set, true, true, true))
	}
	if d.HasEnumerable {
		obj.DefineProperty(StrKey("enumerable"), DataDescriptor(NewBool(d.Enumerable), true, true, true))
	}
	if d.HasConfigurable {
		obj.DefineProperty(StrKey("configurable"), DataDescriptor(NewBool(d.Configurable), true, true, true))
	}
	return NewObject(obj)
}

// ToPropertyDescriptor converts an object to a descriptor, reading fields
// in the order enumerable, configurable, value, writable, get, set.
func ToPropertyDescriptor(a *Agent, v *Value) (PropertyDescriptor, error) {
	var d PropertyDescriptor
	if !v.IsObject() {
		return d, a.NewTypeError("Property description must be an object: %s", v.String())
	}
	obj := v.Object
	field := func(name string) (*Value, bool, error) {
		key := StrKey(name)
		has, err := obj.HasProperty(a, key)
		if err != nil || !has {
			return nil, false, err
		}
		val, err := obj.Get(a, key, v)
		return val, err == nil, err
	}
	if f, ok, err := field("enumerable"); err != nil {
		return d, err
	} else if ok {
		d.Enumerable, d.HasEnumerable = f.ToBoolean(), true
	}
	if f, ok, err := field("configurable"); err != nil {
		return d, err
	} else if ok {
		d.Configurable, d.HasConfigurable = f.ToBoolean(), true
	}
	if f, ok, err := field("value"); err != nil {
		return d, err
	} else if ok {
		d.Value, d.HasValue = f, true
	}
	if f, ok, err := field("writable"); err != nil {
		return d, err
	} else if ok {
		d.Writable, d.HasWritable = f.ToBoolean(), true
	}
	if f, ok, err := field("get"); err != nil {
		return d, err
	} else if ok {
		if !f.IsUndefined() && !IsCallable(f) {
			return d, a.NewTypeError("Getter must be a function: %s", f.String())
		}
		d.Get, d.HasGet = f, true
	}
	if f, ok, err := field("set"); err != nil {
		return d, err
	} else if ok {
		if !f.IsUndefined() && !IsCallable(f) {
			return d, a.NewTypeError("Setter must be a function: %s", f.String())
		}
		d.Set, d.HasSet = f, true
	}
	if (d.HasGet || d.HasSet) && (d.HasValue || d.HasWritable) {
		return d, a.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return d, nil
}
