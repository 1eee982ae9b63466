package runtime

// mappedArguments aliases index properties to the parameter bindings of a
// sloppy function with a simple parameter list.
type mappedArguments struct {
	env    Environment
	mapped map[PropertyKey]string
}

// CreateUnmappedArgumentsObject builds the arguments object of strict code
// and of functions with non-simple parameters.
func CreateUnmappedArgumentsObject(a *Agent, args []*Value) *Object {
	realm := a.CurrentRealm()
	obj := NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	obj.Kind = KindArguments
	obj.DefineProperty(lengthKey, DataDescriptor(NewNumber(float64(len(args))), true, false, true))
	for i, v := range args {
		obj.DefineProperty(IndexKey(int64(i)), DataDescriptor(v, true, true, true))
	}
	if values := realm.Intrinsic("%Array.prototype.values%"); values != nil {
		obj.DefineProperty(SymKey(SymIterator), DataDescriptor(NewObject(values), true, false, true))
	}
	thrower := realm.Intrinsic("%ThrowTypeError%")
	obj.DefineProperty(StrKey("callee"), AccessorDescriptor(thrower, thrower, false, false))
	return obj
}

// CreateMappedArgumentsObject builds a sloppy-mode arguments object whose
// indices below the formal count read and write the parameter bindings.
func CreateMappedArgumentsObject(a *Agent, f *Object, formals []string, args []*Value, env Environment) *Object {
	realm := a.CurrentRealm()
	obj := NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	obj.Kind = KindArguments
	m := &mappedArguments{env: env, mapped: make(map[PropertyKey]string)}
	obj.Exotic = m
	for i, v := range args {
		obj.DefineProperty(IndexKey(int64(i)), DataDescriptor(v, true, true, true))
	}
	obj.DefineProperty(lengthKey, DataDescriptor(NewNumber(float64(len(args))), true, false, true))
	seen := make(map[string]bool)
	for i := len(formals) - 1; i >= 0; i-- {
		name := formals[i]
		if seen[name] {
			continue
		}
		seen[name] = true
		if i < len(args) {
			m.mapped[IndexKey(int64(i))] = name
		}
	}
	if values := realm.Intrinsic("%Array.prototype.values%"); values != nil {
		obj.DefineProperty(SymKey(SymIterator), DataDescriptor(NewObject(values), true, false, true))
	}
	obj.DefineProperty(StrKey("callee"), DataDescriptor(NewObject(f), true, false, true))
	return obj
}

func (m *mappedArguments) GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error) {
	desc, found := o.OrdinaryGetOwnProperty(key)
	if !found {
		return desc, false, nil
	}
	if name, ok := m.mapped[key]; ok {
		v, err := m.env.GetBindingValue(a, name, false)
		if err != nil {
			return desc, false, err
		}
		desc.Value = v
	}
	return desc, true, nil
}

func (m *mappedArguments) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	name, isMapped := m.mapped[key]
	newDesc := desc
	if isMapped && desc.IsDataDescriptor() && !desc.HasValue && desc.HasWritable && !desc.Writable {
		v, err := m.env.GetBindingValue(a, name, false)
		if err != nil {
			return false, err
		}
		newDesc.Value, newDesc.HasValue = v, true
	}
	ok, err := OrdinaryDefineOwnProperty(a, o, key, newDesc)
	if err != nil || !ok {
		return false, err
	}
	if isMapped {
		if desc.IsAccessorDescriptor() {
			delete(m.mapped, key)
		} else {
			if desc.HasValue {
				if err := m.env.SetMutableBinding(a, name, desc.Value, false); err != nil {
					return false, err
				}
			}
			if desc.HasWritable && !desc.Writable {
				delete(m.mapped, key)
			}
		}
	}
	return true, nil
}

func (m *mappedArguments) Get(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error) {
	if name, ok := m.mapped[key]; ok {
		return m.env.GetBindingValue(a, name, false)
	}
	return OrdinaryGet(a, o, key, receiver)
}

func (m *mappedArguments) Set(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error) {
	if receiver.IsObject() && receiver.Object == o {
		if name, ok := m.mapped[key]; ok {
			if err := m.env.SetMutableBinding(a, name, v, false); err != nil {
				return false, err
			}
		}
	}
	return OrdinarySet(a, o, key, v, receiver)
}

func (m *mappedArguments) Delete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	ok, err := OrdinaryDelete(a, o, key)
	if err != nil {
		return false, err
	}
	if ok {
		delete(m.mapped, key)
	}
	return ok, nil
}
