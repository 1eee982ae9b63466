package runtime

import "fmt"

// ObjectKind discriminates the internal slots an object carries.
type ObjectKind int

const (
	KindOrdinary ObjectKind = iota
	KindFunction
	KindBoundFunction
	KindArray
	KindString
	KindArguments
	KindError
	KindBoolean
	KindNumber
	KindBigInt
	KindSymbol
	KindRegExp
	KindPromise
	KindProxy
	KindArrayBuffer
	KindTypedArray
	KindModuleNamespace
	KindGenerator
	KindAsyncGenerator
)

var kindNames = map[ObjectKind]string{
	KindOrdinary:        "Object",
	KindFunction:        "Function",
	KindBoundFunction:   "Function",
	KindArray:           "Array",
	KindString:          "String",
	KindArguments:       "Arguments",
	KindError:           "Error",
	KindBoolean:         "Boolean",
	KindNumber:          "Number",
	KindBigInt:          "BigInt",
	KindSymbol:          "Symbol",
	KindRegExp:          "RegExp",
	KindPromise:         "Promise",
	KindProxy:           "Proxy",
	KindArrayBuffer:     "ArrayBuffer",
	KindTypedArray:      "TypedArray",
	KindModuleNamespace: "Module",
	KindGenerator:       "Generator",
	KindAsyncGenerator:  "AsyncGenerator",
}

func (k ObjectKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Object"
}

// CallableFunc implements [[Call]].
type CallableFunc func(a *Agent, this *Value, args []*Value) (*Value, error)

// ConstructorFunc implements [[Construct]].
type ConstructorFunc func(a *Agent, args []*Value, newTarget *Object) (*Value, error)

// Object is the record behind every object value. Exotic behaviour is
// supplied by Exotic, which implements any subset of the capability
// interfaces below; operations it does not implement use the ordinary
// algorithms.
type Object struct {
	Kind        ObjectKind
	Internal    map[string]interface{}
	Exotic      interface{}
	Callable    CallableFunc
	Constructor ConstructorFunc
	Realm       *Realm // function realm

	proto      *Object
	extensible bool
	props      map[PropertyKey]*PropertyDescriptor
	keys       []PropertyKey
	dead       map[PropertyKey]struct{} // removed keys still listed in keys
	private    []*PrivateElement
}

// Capability interfaces, one per essential internal method.
type (
	PrototypeGetter interface {
		GetPrototypeOf(a *Agent, o *Object) (*Object, error)
	}
	PrototypeSetter interface {
		SetPrototypeOf(a *Agent, o *Object, proto *Object) (bool, error)
	}
	ExtensibilityChecker interface {
		IsExtensible(a *Agent, o *Object) (bool, error)
	}
	ExtensionPreventer interface {
		PreventExtensions(a *Agent, o *Object) (bool, error)
	}
	OwnPropertyGetter interface {
		GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error)
	}
	OwnPropertyDefiner interface {
		DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error)
	}
	PropertyChecker interface {
		HasProperty(a *Agent, o *Object, key PropertyKey) (bool, error)
	}
	PropertyGetter interface {
		Get(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error)
	}
	PropertySetter interface {
		Set(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error)
	}
	PropertyDeleter interface {
		Delete(a *Agent, o *Object, key PropertyKey) (bool, error)
	}
	OwnKeysLister interface {
		OwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error)
	}
)

// NewOrdinaryObject creates an extensible ordinary object.
func NewOrdinaryObject(proto *Object) *Object {
	return &Object{
		Kind:       KindOrdinary,
		proto:      proto,
		extensible: true,
		props:      make(map[PropertyKey]*PropertyDescriptor),
	}
}

// NewPlainObject creates an ordinary object inheriting from the running
// realm's %Object.prototype%.
func (a *Agent) NewPlainObject() *Object {
	return NewOrdinaryObject(a.CurrentRealm().Intrinsic("%Object.prototype%"))
}

// Proto returns the stored [[Prototype]] without dispatching to exotic
// behaviour.
func (o *Object) Proto() *Object { return o.proto }

// SetProto stores [[Prototype]] directly; used while building intrinsics.
func (o *Object) SetProto(p *Object) { o.proto = p }

// Slot returns the internal slot name.
func (o *Object) Slot(name string) interface{} {
	if o.Internal == nil {
		return nil
	}
	return o.Internal[name]
}

func (o *Object) SetSlot(name string, v interface{}) {
	if o.Internal == nil {
		o.Internal = make(map[string]interface{})
	}
	o.Internal[name] = v
}

// DefineProperty stores desc as an own property without validation. It is
// meant for building fresh objects whose shape the engine controls.
func (o *Object) DefineProperty(key PropertyKey, desc PropertyDescriptor) {
	CompletePropertyDescriptor(&desc)
	if _, ok := o.props[key]; !ok {
		o.appendKey(key)
	}
	d := desc
	o.props[key] = &d
}

// OwnData returns the value of an own data property without running code.
func (o *Object) OwnData(key PropertyKey) (*Value, bool) {
	d, ok := o.props[key]
	if !ok || !d.HasValue {
		return nil, false
	}
	return d.Value, true
}

func (o *Object) describe() string {
	switch o.Kind {
	case KindFunction, KindBoundFunction:
		if name, ok := o.OwnData(StrKey("name")); ok && name.IsString() {
			return "function " + GoString(name.Str)
		}
		return "function"
	case KindError:
		return (&Exception{Value: NewObject(o)}).Error()
	}
	return fmt.Sprintf("[object %s]", o.Kind)
}

// IsCallable reports whether v has a [[Call]] internal method.
func IsCallable(v *Value) bool {
	return v.IsObject() && v.Object.Callable != nil
}

// IsConstructor reports whether v has a [[Construct]] internal method.
func IsConstructor(v *Value) bool {
	return v.IsObject() && v.Object.Constructor != nil
}

func (o *Object) GetPrototypeOf(a *Agent) (*Object, error) {
	if x, ok := o.Exotic.(PrototypeGetter); ok {
		return x.GetPrototypeOf(a, o)
	}
	return o.proto, nil
}

func (o *Object) SetPrototypeOf(a *Agent, proto *Object) (bool, error) {
	if x, ok := o.Exotic.(PrototypeSetter); ok {
		return x.SetPrototypeOf(a, o, proto)
	}
	return OrdinarySetPrototypeOf(o, proto), nil
}

func (o *Object) IsExtensible(a *Agent) (bool, error) {
	if x, ok := o.Exotic.(ExtensibilityChecker); ok {
		return x.IsExtensible(a, o)
	}
	return o.extensible, nil
}

func (o *Object) PreventExtensions(a *Agent) (bool, error) {
	if x, ok := o.Exotic.(ExtensionPreventer); ok {
		return x.PreventExtensions(a, o)
	}
	o.extensible = false
	return true, nil
}

func (o *Object) GetOwnProperty(a *Agent, key PropertyKey) (PropertyDescriptor, bool, error) {
	if x, ok := o.Exotic.(OwnPropertyGetter); ok {
		return x.GetOwnProperty(a, o, key)
	}
	d, ok := o.OrdinaryGetOwnProperty(key)
	return d, ok, nil
}

func (o *Object) DefineOwnProperty(a *Agent, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if x, ok := o.Exotic.(OwnPropertyDefiner); ok {
		return x.DefineOwnProperty(a, o, key, desc)
	}
	return OrdinaryDefineOwnProperty(a, o, key, desc)
}

func (o *Object) HasProperty(a *Agent, key PropertyKey) (bool, error) {
	if x, ok := o.Exotic.(PropertyChecker); ok {
		return x.HasProperty(a, o, key)
	}
	return OrdinaryHasProperty(a, o, key)
}

func (o *Object) Get(a *Agent, key PropertyKey, receiver *Value) (*Value, error) {
	if x, ok := o.Exotic.(PropertyGetter); ok {
		return x.Get(a, o, key, receiver)
	}
	return OrdinaryGet(a, o, key, receiver)
}

func (o *Object) Set(a *Agent, key PropertyKey, v, receiver *Value) (bool, error) {
	if x, ok := o.Exotic.(PropertySetter); ok {
		return x.Set(a, o, key, v, receiver)
	}
	return OrdinarySet(a, o, key, v, receiver)
}

func (o *Object) Delete(a *Agent, key PropertyKey) (bool, error) {
	if x, ok := o.Exotic.(PropertyDeleter); ok {
		return x.Delete(a, o, key)
	}
	return OrdinaryDelete(a, o, key)
}

func (o *Object) OwnPropertyKeys(a *Agent) ([]PropertyKey, error) {
	if x, ok := o.Exotic.(OwnKeysLister); ok {
		return x.OwnPropertyKeys(a, o)
	}
	return o.OrdinaryOwnPropertyKeys(), nil
}

// Call invokes [[Call]] on f.
func Call(a *Agent, f, this *Value, args []*Value) (*Value, error) {
	if !IsCallable(f) {
		return nil, a.NewTypeError("%s is not a function", f.String())
	}
	return f.Object.Callable(a, this, args)
}

// Construct invokes [[Construct]] on f. A nil newTarget means f itself.
func Construct(a *Agent, f *Object, args []*Value, newTarget *Object) (*Value, error) {
	if f.Constructor == nil {
		return nil, a.NewTypeError("%s is not a constructor", f.describe())
	}
	if newTarget == nil {
		newTarget = f
	}
	return f.Constructor(a, args, newTarget)
}
