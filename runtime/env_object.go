package runtime

// ObjectEnvironment binds the properties of an object: the global object
// or the operand of a with statement.
type ObjectEnvironment struct {
	BindingObject     *Object
	IsWithEnvironment bool
	outer             Environment
}

func NewObjectEnvironment(o *Object, with bool, outer Environment) *ObjectEnvironment {
	return &ObjectEnvironment{BindingObject: o, IsWithEnvironment: with, outer: outer}
}

func (e *ObjectEnvironment) HasBinding(a *Agent, name string) (bool, error) {
	key := StrKey(name)
	found, err := e.BindingObject.HasProperty(a, key)
	if err != nil || !found {
		return false, err
	}
	if !e.IsWithEnvironment {
		return true, nil
	}
	unscopables, err := Get(a, e.BindingObject, SymKey(SymUnscopables))
	if err != nil {
		return false, err
	}
	if unscopables.IsObject() {
		blocked, err := Get(a, unscopables.Object, key)
		if err != nil {
			return false, err
		}
		if blocked.ToBoolean() {
			return false, nil
		}
	}
	return true, nil
}

func (e *ObjectEnvironment) CreateMutableBinding(a *Agent, name string, deletable bool) error {
	return DefinePropertyOrThrow(a, e.BindingObject, StrKey(name), DataDescriptor(Undefined, true, true, deletable))
}

func (e *ObjectEnvironment) CreateImmutableBinding(a *Agent, name string, strict bool) error {
	panic(&AssertionError{Msg: "immutable binding in object environment"})
}

func (e *ObjectEnvironment) InitializeBinding(a *Agent, name string, v *Value) error {
	return e.SetMutableBinding(a, name, v, false)
}

func (e *ObjectEnvironment) SetMutableBinding(a *Agent, name string, v *Value, strict bool) error {
	key := StrKey(name)
	exists, err := e.BindingObject.HasProperty(a, key)
	if err != nil {
		return err
	}
	if !exists && strict {
		return a.NewReferenceError("%s is not defined", name)
	}
	return Set(a, e.BindingObject, key, v, strict)
}

func (e *ObjectEnvironment) GetBindingValue(a *Agent, name string, strict bool) (*Value, error) {
	key := StrKey(name)
	exists, err := e.BindingObject.HasProperty(a, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		if !strict {
			return Undefined, nil
		}
		return nil, a.NewReferenceError("%s is not defined", name)
	}
	return Get(a, e.BindingObject, key)
}

func (e *ObjectEnvironment) DeleteBinding(a *Agent, name string) (bool, error) {
	return e.BindingObject.Delete(a, StrKey(name))
}

func (e *ObjectEnvironment) HasThisBinding() bool  { return false }
func (e *ObjectEnvironment) HasSuperBinding() bool { return false }

func (e *ObjectEnvironment) WithBaseObject() *Value {
	if e.IsWithEnvironment {
		return NewObject(e.BindingObject)
	}
	return Undefined
}

func (e *ObjectEnvironment) Outer() Environment { return e.outer }
