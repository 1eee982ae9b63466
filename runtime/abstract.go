package runtime

// Get reads key from o with o as the receiver.
func Get(a *Agent, o *Object, key PropertyKey) (*Value, error) {
	return o.Get(a, key, NewObject(o))
}

// GetV reads key from any value, boxing primitives for the lookup.
func GetV(a *Agent, v *Value, key PropertyKey) (*Value, error) {
	o, err := ToObject(a, v)
	if err != nil {
		return nil, err
	}
	return o.Get(a, key, v)
}

// Set writes key on o and throws a TypeError on failure when throw is set.
func Set(a *Agent, o *Object, key PropertyKey, v *Value, throw bool) error {
	ok, err := o.Set(a, key, v, NewObject(o))
	if err != nil {
		return err
	}
	if !ok && throw {
		return a.NewTypeError("Cannot assign to read only property '%s' of %s", key, o.describe())
	}
	return nil
}

func CreateDataProperty(a *Agent, o *Object, key PropertyKey, v *Value) (bool, error) {
	return o.DefineOwnProperty(a, key, DataDescriptor(v, true, true, true))
}

func CreateDataPropertyOrThrow(a *Agent, o *Object, key PropertyKey, v *Value) error {
	ok, err := CreateDataProperty(a, o, key, v)
	if err != nil {
		return err
	}
	if !ok {
		return a.NewTypeError("Cannot define property %s, object is not extensible", key)
	}
	return nil
}

// CreateMethodProperty defines a non-enumerable writable configurable
// property.
func CreateMethodProperty(a *Agent, o *Object, key PropertyKey, v *Value) error {
	return DefinePropertyOrThrow(a, o, key, DataDescriptor(v, true, false, true))
}

func DefinePropertyOrThrow(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) error {
	ok, err := o.DefineOwnProperty(a, key, desc)
	if err != nil {
		return err
	}
	if !ok {
		return a.NewTypeError("Cannot redefine property: %s", key)
	}
	return nil
}

func DeletePropertyOrThrow(a *Agent, o *Object, key PropertyKey) error {
	ok, err := o.Delete(a, key)
	if err != nil {
		return err
	}
	if !ok {
		return a.NewTypeError("Cannot delete property '%s' of %s", key, o.describe())
	}
	return nil
}

func HasOwnProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	_, found, err := o.GetOwnProperty(a, key)
	return found, err
}

// GetMethod returns undefined for an absent method and throws when the
// property is present but not callable.
func GetMethod(a *Agent, v *Value, key PropertyKey) (*Value, error) {
	f, err := GetV(a, v, key)
	if err != nil {
		return nil, err
	}
	if f.IsNullish() {
		return Undefined, nil
	}
	if !IsCallable(f) {
		return nil, a.NewTypeError("%s is not a function", f.String())
	}
	return f, nil
}

// Invoke calls the method key of v.
func Invoke(a *Agent, v *Value, key PropertyKey, args []*Value) (*Value, error) {
	f, err := GetV(a, v, key)
	if err != nil {
		return nil, err
	}
	return Call(a, f, v, args)
}

// Integrity levels.
const (
	Sealed = "sealed"
	Frozen = "frozen"
)

func SetIntegrityLevel(a *Agent, o *Object, level string) (bool, error) {
	ok, err := o.PreventExtensions(a)
	if err != nil || !ok {
		return false, err
	}
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if level == Sealed {
			if err := DefinePropertyOrThrow(a, o, k, PropertyDescriptor{HasConfigurable: true}); err != nil {
				return false, err
			}
			continue
		}
		current, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}
		desc := PropertyDescriptor{HasConfigurable: true}
		if current.IsDataDescriptor() {
			desc.HasWritable = true
		}
		if err := DefinePropertyOrThrow(a, o, k, desc); err != nil {
			return false, err
		}
	}
	return true, nil
}

func TestIntegrityLevel(a *Agent, o *Object, level string) (bool, error) {
	extensible, err := o.IsExtensible(a)
	if err != nil || extensible {
		return false, err
	}
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		current, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}
		if current.Configurable {
			return false, nil
		}
		if level == Frozen && current.IsDataDescriptor() && current.Writable {
			return false, nil
		}
	}
	return true, nil
}

// CreateArrayFromList builds an array in the running realm.
func CreateArrayFromList(a *Agent, vals []*Value) *Object {
	arr := ArrayCreate(a, 0, nil)
	for i, v := range vals {
		arr.DefineProperty(IndexKey(int64(i)), DataDescriptor(v, true, true, true))
	}
	arr.setArrayLength(uint32(len(vals)))
	return arr
}

// CreateListFromArrayLike reads the indexed elements of an array-like.
// With keysOnly set, elements must be strings or symbols.
func CreateListFromArrayLike(a *Agent, v *Value, keysOnly bool) ([]*Value, error) {
	if !v.IsObject() {
		return nil, a.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := LengthOfArrayLike(a, v.Object)
	if err != nil {
		return nil, err
	}
	list := make([]*Value, 0, n)
	for i := int64(0); i < n; i++ {
		el, err := Get(a, v.Object, IndexKey(i))
		if err != nil {
			return nil, err
		}
		if keysOnly && el.Type != TypeString && el.Type != TypeSymbol {
			return nil, a.NewTypeError("%s is not a valid property name", el.String())
		}
		list = append(list, el)
	}
	return list, nil
}

func LengthOfArrayLike(a *Agent, o *Object) (int64, error) {
	v, err := Get(a, o, StrKey("length"))
	if err != nil {
		return 0, err
	}
	return ToLength(a, v)
}

func OrdinaryHasInstance(a *Agent, c, v *Value) (bool, error) {
	if !IsCallable(c) {
		return false, nil
	}
	if bf, ok := c.Object.Exotic.(*BoundFunction); ok {
		return InstanceofOperator(a, v, NewObject(bf.Target))
	}
	if !v.IsObject() {
		return false, nil
	}
	p, err := Get(a, c.Object, StrKey("prototype"))
	if err != nil {
		return false, err
	}
	if !p.IsObject() {
		return false, a.NewTypeError("Function has non-object prototype '%s' in instanceof check", p.String())
	}
	o := v.Object
	for {
		o, err = o.GetPrototypeOf(a)
		if err != nil {
			return false, err
		}
		if o == nil {
			return false, nil
		}
		if o == p.Object {
			return true, nil
		}
	}
}

func InstanceofOperator(a *Agent, v, target *Value) (bool, error) {
	if !target.IsObject() {
		return false, a.NewTypeError("Right-hand side of 'instanceof' is not an object")
	}
	h, err := GetMethod(a, target, SymKey(SymHasInstance))
	if err != nil {
		return false, err
	}
	if !h.IsUndefined() {
		r, err := Call(a, h, target, []*Value{v})
		if err != nil {
			return false, err
		}
		return r.ToBoolean(), nil
	}
	if !IsCallable(target) {
		return false, a.NewTypeError("Right-hand side of 'instanceof' is not callable")
	}
	return OrdinaryHasInstance(a, target, v)
}

// SpeciesConstructor returns the @@species constructor of o's constructor,
// falling back to def.
func SpeciesConstructor(a *Agent, o *Object, def *Object) (*Object, error) {
	c, err := Get(a, o, StrKey("constructor"))
	if err != nil {
		return nil, err
	}
	if c.IsUndefined() {
		return def, nil
	}
	if !c.IsObject() {
		return nil, a.NewTypeError("object.constructor is not an object")
	}
	s, err := Get(a, c.Object, SymKey(SymSpecies))
	if err != nil {
		return nil, err
	}
	if s.IsNullish() {
		return def, nil
	}
	if IsConstructor(s) {
		return s.Object, nil
	}
	return nil, a.NewTypeError("object.constructor[Symbol.species] is not a constructor")
}

// GetFunctionRealm returns the realm a function object was created in.
func GetFunctionRealm(a *Agent, f *Object) (*Realm, error) {
	if f.Realm != nil {
		return f.Realm, nil
	}
	switch x := f.Exotic.(type) {
	case *BoundFunction:
		return GetFunctionRealm(a, x.Target)
	case *ProxyData:
		if x.revoked() {
			return nil, a.NewTypeError("Cannot perform operation on a revoked proxy")
		}
		return GetFunctionRealm(a, x.Target)
	}
	return a.CurrentRealm(), nil
}

// GetPrototypeFromConstructor reads ctor.prototype, falling back to the
// named intrinsic of the constructor's realm.
func GetPrototypeFromConstructor(a *Agent, ctor *Object, intrinsicDefault string) (*Object, error) {
	p, err := Get(a, ctor, StrKey("prototype"))
	if err != nil {
		return nil, err
	}
	if p.IsObject() {
		return p.Object, nil
	}
	realm, err := GetFunctionRealm(a, ctor)
	if err != nil {
		return nil, err
	}
	return realm.Intrinsic(intrinsicDefault), nil
}

func OrdinaryCreateFromConstructor(a *Agent, ctor *Object, intrinsicDefault string) (*Object, error) {
	proto, err := GetPrototypeFromConstructor(a, ctor, intrinsicDefault)
	if err != nil {
		return nil, err
	}
	return NewOrdinaryObject(proto), nil
}

// Kinds of EnumerableOwnProperties.
const (
	EnumKeys      = "key"
	EnumValues    = "value"
	EnumKeyValues = "key+value"
)

func EnumerableOwnProperties(a *Agent, o *Object, kind string) ([]*Value, error) {
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return nil, err
	}
	var out []*Value
	for _, k := range keys {
		if k.IsSymbol() {
			continue
		}
		desc, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return nil, err
		}
		if !found || !desc.Enumerable {
			continue
		}
		if kind == EnumKeys {
			out = append(out, k.ToValue())
			continue
		}
		v, err := Get(a, o, k)
		if err != nil {
			return nil, err
		}
		if kind == EnumValues {
			out = append(out, v)
			continue
		}
		out = append(out, NewObject(CreateArrayFromList(a, []*Value{k.ToValue(), v})))
	}
	return out, nil
}

// CopyDataProperties copies the enumerable own properties of source to
// target, skipping excluded keys.
func CopyDataProperties(a *Agent, target *Object, source *Value, excluded []PropertyKey) error {
	if source.IsNullish() {
		return nil
	}
	from := Must(ToObject(a, source))
	keys, err := from.OwnPropertyKeys(a)
	if err != nil {
		return err
	}
outer:
	for _, k := range keys {
		for _, ex := range excluded {
			if ex == k {
				continue outer
			}
		}
		desc, found, err := from.GetOwnProperty(a, k)
		if err != nil {
			return err
		}
		if !found || !desc.Enumerable {
			continue
		}
		v, err := Get(a, from, k)
		if err != nil {
			return err
		}
		if err := CreateDataPropertyOrThrow(a, target, k, v); err != nil {
			return err
		}
	}
	return nil
}

// IsArray sees through proxies and throws on a revoked one.
func IsArray(a *Agent, v *Value) (bool, error) {
	if !v.IsObject() {
		return false, nil
	}
	if v.Object.Kind == KindArray {
		return true, nil
	}
	if p, ok := v.Object.Exotic.(*ProxyData); ok {
		if p.revoked() {
			return false, a.NewTypeError("Cannot perform 'IsArray' on a proxy that has been revoked")
		}
		return IsArray(a, NewObject(p.Target))
	}
	return false, nil
}
