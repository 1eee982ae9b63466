package runtime

// Reference is the result of evaluating an identifier or property access:
// a binding in an environment, a property of a base value, or an
// unresolvable name.
type Reference struct {
	Base         *Value
	Env          Environment
	Name         PropertyKey
	BindingName  string
	Private      *PrivateName
	Strict       bool
	ThisValue    *Value // set for super references
	Unresolvable bool
}

func (r *Reference) IsPropertyReference() bool { return r.Base != nil }
func (r *Reference) IsSuperReference() bool    { return r.ThisValue != nil }

// GetThisValue returns the receiver for property access.
func (r *Reference) GetThisValue() *Value {
	if r.ThisValue != nil {
		return r.ThisValue
	}
	return r.Base
}

func (r *Reference) GetValue(a *Agent) (*Value, error) {
	if r.Unresolvable {
		return nil, a.NewReferenceError("%s is not defined", r.BindingName)
	}
	if r.Base != nil {
		base, err := ToObject(a, r.Base)
		if err != nil {
			return nil, a.NewTypeError("Cannot read properties of %s (reading '%s')", r.Base.String(), r.describeName())
		}
		if r.Private != nil {
			return PrivateGet(a, base, r.Private)
		}
		return base.Get(a, r.Name, r.GetThisValue())
	}
	return r.Env.GetBindingValue(a, r.BindingName, r.Strict)
}

func (r *Reference) PutValue(a *Agent, v *Value) error {
	if r.Unresolvable {
		if r.Strict {
			return a.NewReferenceError("%s is not defined", r.BindingName)
		}
		return Set(a, a.CurrentRealm().GlobalObject, StrKey(r.BindingName), v, false)
	}
	if r.Base != nil {
		base, err := ToObject(a, r.Base)
		if err != nil {
			return a.NewTypeError("Cannot set properties of %s (setting '%s')", r.Base.String(), r.describeName())
		}
		if r.Private != nil {
			return PrivateSet(a, base, r.Private, v)
		}
		ok, err := base.Set(a, r.Name, v, r.GetThisValue())
		if err != nil {
			return err
		}
		if !ok && r.Strict {
			return a.NewTypeError("Cannot assign to read only property '%s' of %s", r.describeName(), r.Base.String())
		}
		return nil
	}
	return r.Env.SetMutableBinding(a, r.BindingName, v, r.Strict)
}

// InitializeReferencedBinding initializes the binding a declaration refers
// to.
func (r *Reference) InitializeReferencedBinding(a *Agent, v *Value) error {
	Assert(!r.Unresolvable && r.Env != nil, "initializing a non-binding reference")
	return r.Env.InitializeBinding(a, r.BindingName, v)
}

func (r *Reference) describeName() string {
	if r.Private != nil {
		return r.Private.Description
	}
	return r.Name.String()
}
