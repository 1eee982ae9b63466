package builtins

import (
	"github.com/example/jscore/runtime"
)

func createObjectConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Object.prototype%")

	setMethod(realm, proto, "hasOwnProperty", 1, objectProtoHasOwnProperty)
	setMethod(realm, proto, "isPrototypeOf", 1, objectProtoIsPrototypeOf)
	setMethod(realm, proto, "propertyIsEnumerable", 1, objectProtoPropertyIsEnumerable)
	setMethod(realm, proto, "toString", 0, objectProtoToString)
	setMethod(realm, proto, "toLocaleString", 0, objectProtoToLocaleString)
	setMethod(realm, proto, "valueOf", 0, objectProtoValueOf)
	protoGetter := newFuncObject(realm, "get __proto__", 0, objectProtoGetProto)
	protoSetter := newFuncObject(realm, "set __proto__", 1, objectProtoSetProto)
	proto.DefineProperty(runtime.StrKey("__proto__"), runtime.AccessorDescriptor(protoGetter, protoSetter, false, true))

	var ctor *runtime.Object
	ctor = newConstructor(realm, "Object", 1, proto, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if nt != nil && nt != ctor {
			o, err := runtime.OrdinaryCreateFromConstructor(a, nt, "%Object.prototype%")
			if err != nil {
				return nil, err
			}
			return runtime.NewObject(o), nil
		}
		arg := argAt(args, 0)
		if arg.IsNullish() {
			return runtime.NewObject(a.NewPlainObject()), nil
		}
		o, err := runtime.ToObject(a, arg)
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(o), nil
	})

	setMethod(realm, ctor, "assign", 2, objectAssign)
	setMethod(realm, ctor, "create", 2, objectCreate)
	setMethod(realm, ctor, "defineProperty", 3, objectDefineProperty)
	setMethod(realm, ctor, "defineProperties", 2, objectDefineProperties)
	setMethod(realm, ctor, "entries", 1, objectEnumerable(runtime.EnumKeyValues))
	setMethod(realm, ctor, "keys", 1, objectEnumerable(runtime.EnumKeys))
	setMethod(realm, ctor, "values", 1, objectEnumerable(runtime.EnumValues))
	setMethod(realm, ctor, "fromEntries", 1, objectFromEntries)
	setMethod(realm, ctor, "getOwnPropertyDescriptor", 2, objectGetOwnPropertyDescriptor)
	setMethod(realm, ctor, "getOwnPropertyDescriptors", 1, objectGetOwnPropertyDescriptors)
	setMethod(realm, ctor, "getOwnPropertyNames", 1, objectOwnKeys(false))
	setMethod(realm, ctor, "getOwnPropertySymbols", 1, objectOwnKeys(true))
	setMethod(realm, ctor, "getPrototypeOf", 1, objectGetPrototypeOf)
	setMethod(realm, ctor, "setPrototypeOf", 2, objectSetPrototypeOf)
	setMethod(realm, ctor, "freeze", 1, objectSetIntegrity(runtime.Frozen))
	setMethod(realm, ctor, "seal", 1, objectSetIntegrity(runtime.Sealed))
	setMethod(realm, ctor, "isFrozen", 1, objectTestIntegrity(runtime.Frozen))
	setMethod(realm, ctor, "isSealed", 1, objectTestIntegrity(runtime.Sealed))
	setMethod(realm, ctor, "preventExtensions", 1, objectPreventExtensions)
	setMethod(realm, ctor, "isExtensible", 1, objectIsExtensible)
	setMethod(realm, ctor, "is", 2, objectIs)
	setMethod(realm, ctor, "hasOwn", 2, objectHasOwn)
	setMethod(realm, ctor, "groupBy", 2, objectGroupBy)

	return ctor, proto
}

func objectProtoHasOwnProperty(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	key, err := runtime.ToPropertyKey(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	has, err := runtime.HasOwnProperty(a, obj, key)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(has), nil
}

func objectHasOwn(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	key, err := runtime.ToPropertyKey(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	has, err := runtime.HasOwnProperty(a, obj, key)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(has), nil
}

func objectProtoIsPrototypeOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	v := argAt(args, 0)
	if !v.IsObject() {
		return runtime.False, nil
	}
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	p := v.Object
	for {
		p, err = p.GetPrototypeOf(a)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return runtime.False, nil
		}
		if p == obj {
			return runtime.True, nil
		}
	}
}

func objectProtoPropertyIsEnumerable(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	key, err := runtime.ToPropertyKey(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	desc, found, err := obj.GetOwnProperty(a, key)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(found && desc.Enumerable), nil
}

// builtinTag is the tag Object.prototype.toString uses before consulting
// @@toStringTag.
func builtinTag(a *runtime.Agent, obj *runtime.Object) (string, error) {
	isArray, err := runtime.IsArray(a, runtime.NewObject(obj))
	if err != nil {
		return "", err
	}
	switch {
	case isArray:
		return "Array", nil
	case obj.Kind == runtime.KindArguments:
		return "Arguments", nil
	case obj.Callable != nil:
		return "Function", nil
	case obj.Kind == runtime.KindError:
		return "Error", nil
	case obj.Kind == runtime.KindBoolean:
		return "Boolean", nil
	case obj.Kind == runtime.KindNumber:
		return "Number", nil
	case obj.Kind == runtime.KindString:
		return "String", nil
	case obj.Kind == runtime.KindRegExp:
		return "RegExp", nil
	case obj.Slot(dateSlot) != nil:
		return "Date", nil
	}
	return "Object", nil
}

func objectProtoToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	switch {
	case this.IsUndefined():
		return runtime.NewString("[object Undefined]"), nil
	case this.IsNull():
		return runtime.NewString("[object Null]"), nil
	}
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	tag, err := builtinTag(a, obj)
	if err != nil {
		return nil, err
	}
	ts, err := runtime.Get(a, obj, runtime.SymKey(runtime.SymToStringTag))
	if err != nil {
		return nil, err
	}
	if ts.IsString() {
		tag = runtime.GoString(ts.Str)
	}
	return runtime.NewString("[object " + tag + "]"), nil
}

func objectProtoToLocaleString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return runtime.Invoke(a, this, runtime.StrKey("toString"), nil)
}

func objectProtoValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func objectProtoGetProto(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	p, err := obj.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	return runtime.ObjectOrNull(p), nil
}

func objectProtoSetProto(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if err := runtime.RequireObjectCoercible(a, this); err != nil {
		return nil, err
	}
	proto := argAt(args, 0)
	if !proto.IsObject() && !proto.IsNull() {
		return runtime.Undefined, nil
	}
	if !this.IsObject() {
		return runtime.Undefined, nil
	}
	ok, err := this.Object.SetPrototypeOf(a, toObject(proto))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, a.NewTypeError("Object.prototype.__proto__ setter failed")
	}
	return runtime.Undefined, nil
}

func objectAssign(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	for _, src := range args[min(1, len(args)):] {
		if src.IsNullish() {
			continue
		}
		from, err := runtime.ToObject(a, src)
		if err != nil {
			return nil, err
		}
		keys, err := from.OwnPropertyKeys(a)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			desc, found, err := from.GetOwnProperty(a, k)
			if err != nil {
				return nil, err
			}
			if !found || !desc.Enumerable {
				continue
			}
			v, err := runtime.Get(a, from, k)
			if err != nil {
				return nil, err
			}
			if err := runtime.Set(a, target, k, v, true); err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(target), nil
}

func objectCreate(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	arg := argAt(args, 0)
	if !arg.IsObject() && !arg.IsNull() {
		return nil, a.NewTypeError("Object prototype may only be an Object or null: %s", arg.String())
	}
	obj := runtime.NewOrdinaryObject(toObject(arg))
	if props := argAt(args, 1); !props.IsUndefined() {
		if err := objectDefinePropertiesFrom(a, obj, props); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

func objectDefineProperty(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := requireObject(a, argAt(args, 0), "Object.defineProperty")
	if err != nil {
		return nil, err
	}
	key, err := runtime.ToPropertyKey(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	desc, err := runtime.ToPropertyDescriptor(a, argAt(args, 2))
	if err != nil {
		return nil, err
	}
	if err := runtime.DefinePropertyOrThrow(a, obj, key, desc); err != nil {
		return nil, err
	}
	return args[0], nil
}

func objectDefineProperties(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := requireObject(a, argAt(args, 0), "Object.defineProperties")
	if err != nil {
		return nil, err
	}
	if err := objectDefinePropertiesFrom(a, obj, argAt(args, 1)); err != nil {
		return nil, err
	}
	return args[0], nil
}

// objectDefinePropertiesFrom reads every descriptor before defining any of
// them.
func objectDefinePropertiesFrom(a *runtime.Agent, obj *runtime.Object, properties *runtime.Value) error {
	props, err := runtime.ToObject(a, properties)
	if err != nil {
		return err
	}
	keys, err := props.OwnPropertyKeys(a)
	if err != nil {
		return err
	}
	type pending struct {
		key  runtime.PropertyKey
		desc runtime.PropertyDescriptor
	}
	var descs []pending
	for _, k := range keys {
		pd, found, err := props.GetOwnProperty(a, k)
		if err != nil {
			return err
		}
		if !found || !pd.Enumerable {
			continue
		}
		v, err := runtime.Get(a, props, k)
		if err != nil {
			return err
		}
		desc, err := runtime.ToPropertyDescriptor(a, v)
		if err != nil {
			return err
		}
		descs = append(descs, pending{k, desc})
	}
	for _, p := range descs {
		if err := runtime.DefinePropertyOrThrow(a, obj, p.key, p.desc); err != nil {
			return err
		}
	}
	return nil
}

func objectEnumerable(kind string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		obj, err := runtime.ToObject(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		vals, err := runtime.EnumerableOwnProperties(a, obj, kind)
		if err != nil {
			return nil, err
		}
		return arrayValue(a, vals), nil
	}
}

func objectFromEntries(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	iterable := argAt(args, 0)
	if err := runtime.RequireObjectCoercible(a, iterable); err != nil {
		return nil, err
	}
	obj := a.NewPlainObject()
	err := addEntriesFromIterable(a, iterable, func(k, v *runtime.Value) error {
		key, err := runtime.ToPropertyKey(a, k)
		if err != nil {
			return err
		}
		return runtime.CreateDataPropertyOrThrow(a, obj, key, v)
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

// addEntriesFromIterable feeds the [key, value] entries of iterable to add,
// closing the iterator when add or an entry read fails.
func addEntriesFromIterable(a *runtime.Agent, iterable *runtime.Value, add func(k, v *runtime.Value) error) error {
	rec, err := runtime.GetIterator(a, iterable, false)
	if err != nil {
		return err
	}
	for {
		next, done, err := runtime.IteratorStepValue(a, rec)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !next.IsObject() {
			err := a.NewTypeError("Iterator value %s is not an entry object", next.String())
			return runtime.IteratorClose(a, rec, err)
		}
		k, err := runtime.Get(a, next.Object, runtime.StrKey("0"))
		if err != nil {
			return runtime.IteratorClose(a, rec, err)
		}
		v, err := runtime.Get(a, next.Object, runtime.StrKey("1"))
		if err != nil {
			return runtime.IteratorClose(a, rec, err)
		}
		if err := add(k, v); err != nil {
			return runtime.IteratorClose(a, rec, err)
		}
	}
}

func objectGetOwnPropertyDescriptor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	key, err := runtime.ToPropertyKey(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	desc, found, err := obj.GetOwnProperty(a, key)
	if err != nil {
		return nil, err
	}
	return runtime.FromPropertyDescriptor(a, desc, found), nil
}

func objectGetOwnPropertyDescriptors(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	keys, err := obj.OwnPropertyKeys(a)
	if err != nil {
		return nil, err
	}
	out := a.NewPlainObject()
	for _, k := range keys {
		desc, found, err := obj.GetOwnProperty(a, k)
		if err != nil {
			return nil, err
		}
		if found {
			runtime.Must(runtime.CreateDataProperty(a, out, k, runtime.FromPropertyDescriptor(a, desc, true)))
		}
	}
	return runtime.NewObject(out), nil
}

func objectOwnKeys(symbols bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		obj, err := runtime.ToObject(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		keys, err := obj.OwnPropertyKeys(a)
		if err != nil {
			return nil, err
		}
		var vals []*runtime.Value
		for _, k := range keys {
			if k.IsSymbol() == symbols {
				vals = append(vals, k.ToValue())
			}
		}
		return arrayValue(a, vals), nil
	}
}

func objectGetPrototypeOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	p, err := obj.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	return runtime.ObjectOrNull(p), nil
}

func objectSetPrototypeOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	target := argAt(args, 0)
	if err := runtime.RequireObjectCoercible(a, target); err != nil {
		return nil, err
	}
	proto := argAt(args, 1)
	if !proto.IsObject() && !proto.IsNull() {
		return nil, a.NewTypeError("Object prototype may only be an Object or null: %s", proto.String())
	}
	if !target.IsObject() {
		return target, nil
	}
	ok, err := target.Object.SetPrototypeOf(a, toObject(proto))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, a.NewTypeError("Cannot set prototype of %s", target.String())
	}
	return target, nil
}

func objectSetIntegrity(level string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o := argAt(args, 0)
		if !o.IsObject() {
			return o, nil
		}
		ok, err := runtime.SetIntegrityLevel(a, o.Object, level)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, a.NewTypeError("Cannot make object %s", level)
		}
		return o, nil
	}
}

func objectTestIntegrity(level string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o := argAt(args, 0)
		if !o.IsObject() {
			return runtime.True, nil
		}
		ok, err := runtime.TestIntegrityLevel(a, o.Object, level)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	}
}

func objectPreventExtensions(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o := argAt(args, 0)
	if !o.IsObject() {
		return o, nil
	}
	ok, err := o.Object.PreventExtensions(a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, a.NewTypeError("Cannot prevent extensions")
	}
	return o, nil
}

func objectIsExtensible(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o := argAt(args, 0)
	if !o.IsObject() {
		return runtime.False, nil
	}
	ok, err := o.Object.IsExtensible(a)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}

func objectIs(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return runtime.NewBool(runtime.SameValue(argAt(args, 0), argAt(args, 1))), nil
}
