package runtime

// ProxyData is the exotic state of a proxy. A revoked proxy has a nil
// handler.
type ProxyData struct {
	Target  *Object
	Handler *Object
}

func (p *ProxyData) revoked() bool { return p.Handler == nil }

// Revoke detaches the proxy from its target and handler.
func (p *ProxyData) Revoke() {
	p.Target = nil
	p.Handler = nil
}

// ProxyCreate creates a proxy for target. The proxy is callable or
// constructible exactly when target is.
func ProxyCreate(a *Agent, target, handler *Value) (*Object, error) {
	if !target.IsObject() || !handler.IsObject() {
		return nil, a.NewTypeError("Cannot create proxy with a non-object as target or handler")
	}
	p := &ProxyData{Target: target.Object, Handler: handler.Object}
	o := &Object{Kind: KindProxy, Exotic: p, props: make(map[PropertyKey]*PropertyDescriptor), extensible: true}
	if target.Object.Callable != nil {
		o.Callable = func(a *Agent, this *Value, args []*Value) (*Value, error) {
			return p.call(a, this, args)
		}
		if target.Object.Constructor != nil {
			o.Constructor = func(a *Agent, args []*Value, newTarget *Object) (*Value, error) {
				return p.construct(a, args, newTarget)
			}
		}
	}
	return o, nil
}

// trap validates the proxy and looks up the named trap. A nil trap means
// the operation is forwarded to the target. Handler and target are read
// before the lookup, which may run guest code that revokes the proxy.
func (p *ProxyData) trap(a *Agent, name string) (trap *Value, handler, target *Object, err error) {
	if p.revoked() {
		return nil, nil, nil, a.NewTypeError("Cannot perform '%s' on a proxy that has been revoked", name)
	}
	handler, target = p.Handler, p.Target
	t, err := GetMethod(a, NewObject(handler), StrKey(name))
	if err != nil {
		return nil, nil, nil, err
	}
	if t.IsUndefined() {
		return nil, handler, target, nil
	}
	return t, handler, target, nil
}

func callTrap(a *Agent, trap *Value, handler *Object, args ...*Value) (*Value, error) {
	return Call(a, trap, NewObject(handler), args)
}

func (p *ProxyData) GetPrototypeOf(a *Agent, o *Object) (*Object, error) {
	trap, handler, target, err := p.trap(a, "getPrototypeOf")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return target.GetPrototypeOf(a)
	}
	r, err := callTrap(a, trap, handler, NewObject(target))
	if err != nil {
		return nil, err
	}
	if !r.IsObject() && !r.IsNull() {
		return nil, a.NewTypeError("'getPrototypeOf' on proxy: trap returned neither object nor null")
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return nil, err
	}
	if extensible {
		return r.Object, nil
	}
	targetProto, err := target.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	if r.Object != targetProto {
		return nil, a.NewTypeError("'getPrototypeOf' on proxy: proxy target is non-extensible but the trap did not return its actual prototype")
	}
	return r.Object, nil
}

func (p *ProxyData) SetPrototypeOf(a *Agent, o *Object, proto *Object) (bool, error) {
	trap, handler, target, err := p.trap(a, "setPrototypeOf")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.SetPrototypeOf(a, proto)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), ObjectOrNull(proto))
	if err != nil {
		return false, err
	}
	if !r.ToBoolean() {
		return false, nil
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return false, err
	}
	if extensible {
		return true, nil
	}
	targetProto, err := target.GetPrototypeOf(a)
	if err != nil {
		return false, err
	}
	if proto != targetProto {
		return false, a.NewTypeError("'setPrototypeOf' on proxy: trap returned truish for setting a new prototype on the non-extensible proxy target")
	}
	return true, nil
}

func (p *ProxyData) IsExtensible(a *Agent, o *Object) (bool, error) {
	trap, handler, target, err := p.trap(a, "isExtensible")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.IsExtensible(a)
	}
	r, err := callTrap(a, trap, handler, NewObject(target))
	if err != nil {
		return false, err
	}
	targetResult, err := target.IsExtensible(a)
	if err != nil {
		return false, err
	}
	if r.ToBoolean() != targetResult {
		return false, a.NewTypeError("'isExtensible' on proxy: trap result does not reflect extensibility of proxy target (which is '%t')", targetResult)
	}
	return targetResult, nil
}

func (p *ProxyData) PreventExtensions(a *Agent, o *Object) (bool, error) {
	trap, handler, target, err := p.trap(a, "preventExtensions")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.PreventExtensions(a)
	}
	r, err := callTrap(a, trap, handler, NewObject(target))
	if err != nil {
		return false, err
	}
	ok := r.ToBoolean()
	if ok {
		extensible, err := target.IsExtensible(a)
		if err != nil {
			return false, err
		}
		if extensible {
			return false, a.NewTypeError("'preventExtensions' on proxy: trap returned truish but the proxy target is extensible")
		}
	}
	return ok, nil
}

func (p *ProxyData) GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error) {
	var none PropertyDescriptor
	trap, handler, target, err := p.trap(a, "getOwnPropertyDescriptor")
	if err != nil {
		return none, false, err
	}
	if trap == nil {
		return target.GetOwnProperty(a, key)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue())
	if err != nil {
		return none, false, err
	}
	if !r.IsObject() && !r.IsUndefined() {
		return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap returned neither object nor undefined for property '%s'", key)
	}
	targetDesc, targetFound, err := target.GetOwnProperty(a, key)
	if err != nil {
		return none, false, err
	}
	if r.IsUndefined() {
		if !targetFound {
			return none, false, nil
		}
		if !targetDesc.Configurable {
			return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which is non-configurable in the proxy target", key)
		}
		extensible, err := target.IsExtensible(a)
		if err != nil {
			return none, false, err
		}
		if !extensible {
			return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which exists in the non-extensible proxy target", key)
		}
		return none, false, nil
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return none, false, err
	}
	result, err := ToPropertyDescriptor(a, r)
	if err != nil {
		return none, false, err
	}
	CompletePropertyDescriptor(&result)
	if !IsCompatiblePropertyDescriptor(extensible, result, targetDesc, targetFound) {
		return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap returned descriptor for property '%s' that is incompatible with the existing property in the proxy target", key)
	}
	if !result.Configurable {
		if !targetFound || targetDesc.Configurable {
			return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap reported non-configurability for property '%s' which is either non-existent or configurable in the proxy target", key)
		}
		if result.HasWritable && !result.Writable && targetDesc.Writable {
			return none, false, a.NewTypeError("'getOwnPropertyDescriptor' on proxy: trap reported non-configurable and writable for property '%s' which is non-configurable, non-writable in the proxy target", key)
		}
	}
	return result, true, nil
}

func (p *ProxyData) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	trap, handler, target, err := p.trap(a, "defineProperty")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.DefineOwnProperty(a, key, desc)
	}
	descObj := FromPropertyDescriptor(a, desc, true)
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue(), descObj)
	if err != nil {
		return false, err
	}
	if !r.ToBoolean() {
		return false, nil
	}
	targetDesc, targetFound, err := target.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return false, err
	}
	settingConfigFalse := desc.HasConfigurable && !desc.Configurable
	if !targetFound {
		if !extensible {
			return false, a.NewTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' to the non-extensible proxy target", key)
		}
		if settingConfigFalse {
			return false, a.NewTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is non-existent in the proxy target", key)
		}
		return true, nil
	}
	if !IsCompatiblePropertyDescriptor(extensible, desc, targetDesc, true) {
		return false, a.NewTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' that is incompatible with the existing property in the proxy target", key)
	}
	if settingConfigFalse && targetDesc.Configurable {
		return false, a.NewTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is configurable in the proxy target", key)
	}
	if targetDesc.IsDataDescriptor() && !targetDesc.Configurable && targetDesc.Writable && desc.HasWritable && !desc.Writable {
		return false, a.NewTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which cannot be non-writable, unless there exists a corresponding non-configurable, non-writable own property of the target object", key)
	}
	return true, nil
}

func (p *ProxyData) HasProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	trap, handler, target, err := p.trap(a, "has")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.HasProperty(a, key)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue())
	if err != nil {
		return false, err
	}
	if r.ToBoolean() {
		return true, nil
	}
	targetDesc, found, err := target.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if found {
		if !targetDesc.Configurable {
			return false, a.NewTypeError("'has' on proxy: trap returned falsish for property '%s' which exists in the proxy target as non-configurable", key)
		}
		extensible, err := target.IsExtensible(a)
		if err != nil {
			return false, err
		}
		if !extensible {
			return false, a.NewTypeError("'has' on proxy: trap returned falsish for property '%s' but the proxy target is not extensible", key)
		}
	}
	return false, nil
}

func (p *ProxyData) Get(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error) {
	trap, handler, target, err := p.trap(a, "get")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return target.Get(a, key, receiver)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue(), receiver)
	if err != nil {
		return nil, err
	}
	targetDesc, found, err := target.GetOwnProperty(a, key)
	if err != nil {
		return nil, err
	}
	if found && !targetDesc.Configurable {
		if targetDesc.IsDataDescriptor() && !targetDesc.Writable && !SameValue(r, targetDesc.Value) {
			return nil, a.NewTypeError("'get' on proxy: property '%s' is a read-only and non-configurable data property on the proxy target but the proxy did not return its actual value", key)
		}
		if targetDesc.IsAccessorDescriptor() && targetDesc.Get.IsUndefined() && !r.IsUndefined() {
			return nil, a.NewTypeError("'get' on proxy: property '%s' is a non-configurable accessor property on the proxy target and does not have a getter function, but the trap did not return 'undefined'", key)
		}
	}
	return r, nil
}

func (p *ProxyData) Set(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error) {
	trap, handler, target, err := p.trap(a, "set")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.Set(a, key, v, receiver)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue(), v, receiver)
	if err != nil {
		return false, err
	}
	if !r.ToBoolean() {
		return false, nil
	}
	targetDesc, found, err := target.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if found && !targetDesc.Configurable {
		if targetDesc.IsDataDescriptor() && !targetDesc.Writable && !SameValue(v, targetDesc.Value) {
			return false, a.NewTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable data property with a different value", key)
		}
		if targetDesc.IsAccessorDescriptor() && targetDesc.Set.IsUndefined() {
			return false, a.NewTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable accessor property without a setter", key)
		}
	}
	return true, nil
}

func (p *ProxyData) Delete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	trap, handler, target, err := p.trap(a, "deleteProperty")
	if err != nil {
		return false, err
	}
	if trap == nil {
		return target.Delete(a, key)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), key.ToValue())
	if err != nil {
		return false, err
	}
	if !r.ToBoolean() {
		return false, nil
	}
	targetDesc, found, err := target.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if !targetDesc.Configurable {
		return false, a.NewTypeError("'deleteProperty' on proxy: trap returned truish for property '%s' which is non-configurable in the proxy target", key)
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return false, err
	}
	if !extensible {
		return false, a.NewTypeError("'deleteProperty' on proxy: trap returned truish for property '%s' but the proxy target is non-extensible", key)
	}
	return true, nil
}

func (p *ProxyData) OwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	trap, handler, target, err := p.trap(a, "ownKeys")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return target.OwnPropertyKeys(a)
	}
	arr, err := callTrap(a, trap, handler, NewObject(target))
	if err != nil {
		return nil, err
	}
	list, err := CreateListFromArrayLike(a, arr, true)
	if err != nil {
		return nil, err
	}
	trapResult := make([]PropertyKey, 0, len(list))
	unchecked := make(map[PropertyKey]bool, len(list))
	for _, v := range list {
		k := Must(ToPropertyKey(a, v))
		if unchecked[k] {
			return nil, a.NewTypeError("'ownKeys' on proxy: trap returned duplicate entries")
		}
		unchecked[k] = true
		trapResult = append(trapResult, k)
	}
	extensible, err := target.IsExtensible(a)
	if err != nil {
		return nil, err
	}
	targetKeys, err := target.OwnPropertyKeys(a)
	if err != nil {
		return nil, err
	}
	var configurable, nonconfigurable []PropertyKey
	for _, k := range targetKeys {
		desc, found, err := target.GetOwnProperty(a, k)
		if err != nil {
			return nil, err
		}
		if found && !desc.Configurable {
			nonconfigurable = append(nonconfigurable, k)
		} else {
			configurable = append(configurable, k)
		}
	}
	if extensible && len(nonconfigurable) == 0 {
		return trapResult, nil
	}
	for _, k := range nonconfigurable {
		if !unchecked[k] {
			return nil, a.NewTypeError("'ownKeys' on proxy: trap result did not include '%s'", k)
		}
		delete(unchecked, k)
	}
	if extensible {
		return trapResult, nil
	}
	for _, k := range configurable {
		if !unchecked[k] {
			return nil, a.NewTypeError("'ownKeys' on proxy: trap result did not include '%s'", k)
		}
		delete(unchecked, k)
	}
	if len(unchecked) > 0 {
		return nil, a.NewTypeError("'ownKeys' on proxy: trap returned extra keys but proxy target is non-extensible")
	}
	return trapResult, nil
}

func (p *ProxyData) call(a *Agent, this *Value, args []*Value) (*Value, error) {
	trap, handler, target, err := p.trap(a, "apply")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return Call(a, NewObject(target), this, args)
	}
	return callTrap(a, trap, handler, NewObject(target), this, NewObject(CreateArrayFromList(a, args)))
}

func (p *ProxyData) construct(a *Agent, args []*Value, newTarget *Object) (*Value, error) {
	trap, handler, target, err := p.trap(a, "construct")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return Construct(a, target, args, newTarget)
	}
	r, err := callTrap(a, trap, handler, NewObject(target), NewObject(CreateArrayFromList(a, args)), NewObject(newTarget))
	if err != nil {
		return nil, err
	}
	if !r.IsObject() {
		return nil, a.NewTypeError("proxy [[Construct]] must return an object")
	}
	return r, nil
}
