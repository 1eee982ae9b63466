package runtime

// GlobalEnvironment combines the global object's bindings with a
// declarative record for top-level let/const/class.
type GlobalEnvironment struct {
	ObjectRecord      *ObjectEnvironment
	GlobalThisValue   *Object
	DeclarativeRecord *DeclarativeEnvironment
	VarNames          map[string]bool
}

func NewGlobalEnvironment(global, thisValue *Object) *GlobalEnvironment {
	return &GlobalEnvironment{
		ObjectRecord:      NewObjectEnvironment(global, false, nil),
		GlobalThisValue:   thisValue,
		DeclarativeRecord: NewDeclarativeEnvironment(nil),
		VarNames:          make(map[string]bool),
	}
}

func (e *GlobalEnvironment) HasBinding(a *Agent, name string) (bool, error) {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return true, nil
	}
	return e.ObjectRecord.HasBinding(a, name)
}

func (e *GlobalEnvironment) CreateMutableBinding(a *Agent, name string, deletable bool) error {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return a.NewTypeError("Identifier '%s' has already been declared", name)
	}
	return e.DeclarativeRecord.CreateMutableBinding(a, name, deletable)
}

func (e *GlobalEnvironment) CreateImmutableBinding(a *Agent, name string, strict bool) error {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return a.NewTypeError("Identifier '%s' has already been declared", name)
	}
	return e.DeclarativeRecord.CreateImmutableBinding(a, name, strict)
}

func (e *GlobalEnvironment) InitializeBinding(a *Agent, name string, v *Value) error {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return e.DeclarativeRecord.InitializeBinding(a, name, v)
	}
	return e.ObjectRecord.InitializeBinding(a, name, v)
}

func (e *GlobalEnvironment) SetMutableBinding(a *Agent, name string, v *Value, strict bool) error {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return e.DeclarativeRecord.SetMutableBinding(a, name, v, strict)
	}
	return e.ObjectRecord.SetMutableBinding(a, name, v, strict)
}

func (e *GlobalEnvironment) GetBindingValue(a *Agent, name string, strict bool) (*Value, error) {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return e.DeclarativeRecord.GetBindingValue(a, name, strict)
	}
	return e.ObjectRecord.GetBindingValue(a, name, strict)
}

func (e *GlobalEnvironment) DeleteBinding(a *Agent, name string) (bool, error) {
	if ok, _ := e.DeclarativeRecord.HasBinding(a, name); ok {
		return e.DeclarativeRecord.DeleteBinding(a, name)
	}
	global := e.ObjectRecord.BindingObject
	exists, err := HasOwnProperty(a, global, StrKey(name))
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	status, err := e.ObjectRecord.DeleteBinding(a, name)
	if err != nil {
		return false, err
	}
	if status {
		delete(e.VarNames, name)
	}
	return status, nil
}

func (e *GlobalEnvironment) HasThisBinding() bool   { return true }
func (e *GlobalEnvironment) HasSuperBinding() bool  { return false }
func (e *GlobalEnvironment) WithBaseObject() *Value { return Undefined }
func (e *GlobalEnvironment) Outer() Environment     { return nil }

func (e *GlobalEnvironment) GetThisBinding(a *Agent) (*Value, error) {
	return NewObject(e.GlobalThisValue), nil
}

func (e *GlobalEnvironment) HasVarDeclaration(name string) bool {
	return e.VarNames[name]
}

func (e *GlobalEnvironment) HasLexicalDeclaration(name string) bool {
	_, ok := e.DeclarativeRecord.bindings[name]
	return ok
}

// HasRestrictedGlobalProperty reports whether name is a non-configurable
// own property of the global object.
func (e *GlobalEnvironment) HasRestrictedGlobalProperty(a *Agent, name string) (bool, error) {
	desc, found, err := e.ObjectRecord.BindingObject.GetOwnProperty(a, StrKey(name))
	if err != nil || !found {
		return false, err
	}
	return !desc.Configurable, nil
}

func (e *GlobalEnvironment) CanDeclareGlobalVar(a *Agent, name string) (bool, error) {
	global := e.ObjectRecord.BindingObject
	has, err := HasOwnProperty(a, global, StrKey(name))
	if err != nil || has {
		return has, err
	}
	return global.IsExtensible(a)
}

func (e *GlobalEnvironment) CanDeclareGlobalFunction(a *Agent, name string) (bool, error) {
	global := e.ObjectRecord.BindingObject
	existing, found, err := global.GetOwnProperty(a, StrKey(name))
	if err != nil {
		return false, err
	}
	if !found {
		return global.IsExtensible(a)
	}
	if existing.Configurable {
		return true, nil
	}
	return existing.IsDataDescriptor() && existing.Writable && existing.Enumerable, nil
}

func (e *GlobalEnvironment) CreateGlobalVarBinding(a *Agent, name string, deletable bool) error {
	global := e.ObjectRecord.BindingObject
	has, err := HasOwnProperty(a, global, StrKey(name))
	if err != nil {
		return err
	}
	extensible, err := global.IsExtensible(a)
	if err != nil {
		return err
	}
	if !has && extensible {
		if err := e.ObjectRecord.CreateMutableBinding(a, name, deletable); err != nil {
			return err
		}
		if err := e.ObjectRecord.InitializeBinding(a, name, Undefined); err != nil {
			return err
		}
	}
	e.VarNames[name] = true
	return nil
}

func (e *GlobalEnvironment) CreateGlobalFunctionBinding(a *Agent, name string, v *Value, deletable bool) error {
	global := e.ObjectRecord.BindingObject
	key := StrKey(name)
	existing, found, err := global.GetOwnProperty(a, key)
	if err != nil {
		return err
	}
	desc := PropertyDescriptor{Value: v, HasValue: true}
	if !found || existing.Configurable {
		desc = DataDescriptor(v, true, true, deletable)
	}
	if err := DefinePropertyOrThrow(a, global, key, desc); err != nil {
		return err
	}
	if err := Set(a, global, key, v, false); err != nil {
		return err
	}
	e.VarNames[name] = true
	return nil
}
