package runtime

// Environment is an environment record: a scope of identifier bindings
// linked to its outer scope.
type Environment interface {
	HasBinding(a *Agent, name string) (bool, error)
	CreateMutableBinding(a *Agent, name string, deletable bool) error
	CreateImmutableBinding(a *Agent, name string, strict bool) error
	InitializeBinding(a *Agent, name string, v *Value) error
	SetMutableBinding(a *Agent, name string, v *Value, strict bool) error
	GetBindingValue(a *Agent, name string, strict bool) (*Value, error)
	DeleteBinding(a *Agent, name string) (bool, error)
	HasThisBinding() bool
	HasSuperBinding() bool
	WithBaseObject() *Value
	Outer() Environment
}

type binding struct {
	value       *Value
	mutable     bool
	initialized bool
	strict      bool
	deletable   bool

	// Import bindings read through to the exporting module.
	module      ModuleRecord
	bindingName string
}

// DeclarativeEnvironment holds let/const/class/function and parameter
// bindings. Uninitialized bindings are in their temporal dead zone.
type DeclarativeEnvironment struct {
	outer    Environment
	bindings map[string]*binding
}

func NewDeclarativeEnvironment(outer Environment) *DeclarativeEnvironment {
	return &DeclarativeEnvironment{outer: outer, bindings: make(map[string]*binding)}
}

func (e *DeclarativeEnvironment) HasBinding(a *Agent, name string) (bool, error) {
	_, ok := e.bindings[name]
	return ok, nil
}

func (e *DeclarativeEnvironment) CreateMutableBinding(a *Agent, name string, deletable bool) error {
	Assert(e.bindings[name] == nil, "binding %s already exists", name)
	e.bindings[name] = &binding{mutable: true, deletable: deletable}
	return nil
}

func (e *DeclarativeEnvironment) CreateImmutableBinding(a *Agent, name string, strict bool) error {
	Assert(e.bindings[name] == nil, "binding %s already exists", name)
	e.bindings[name] = &binding{strict: strict}
	return nil
}

func (e *DeclarativeEnvironment) InitializeBinding(a *Agent, name string, v *Value) error {
	b := e.bindings[name]
	Assert(b != nil && !b.initialized, "binding %s cannot be initialized", name)
	b.value = v
	b.initialized = true
	return nil
}

func (e *DeclarativeEnvironment) SetMutableBinding(a *Agent, name string, v *Value, strict bool) error {
	b, ok := e.bindings[name]
	if !ok {
		if strict {
			return a.NewReferenceError("%s is not defined", name)
		}
		e.bindings[name] = &binding{mutable: true, deletable: true, initialized: true, value: v}
		return nil
	}
	if b.strict {
		strict = true
	}
	if !b.initialized {
		return a.NewReferenceError("Cannot access '%s' before initialization", name)
	}
	if b.mutable {
		b.value = v
		return nil
	}
	if strict {
		return a.NewTypeError("Assignment to constant variable.")
	}
	return nil
}

func (e *DeclarativeEnvironment) GetBindingValue(a *Agent, name string, strict bool) (*Value, error) {
	b := e.bindings[name]
	Assert(b != nil, "binding %s does not exist", name)
	if b.module != nil {
		target := b.module.Environment()
		if target == nil {
			return nil, a.NewReferenceError("Cannot access '%s' before initialization", name)
		}
		return target.GetBindingValue(a, b.bindingName, true)
	}
	if !b.initialized {
		return nil, a.NewReferenceError("Cannot access '%s' before initialization", name)
	}
	return b.value, nil
}

func (e *DeclarativeEnvironment) DeleteBinding(a *Agent, name string) (bool, error) {
	b := e.bindings[name]
	if b == nil {
		return true, nil
	}
	if !b.deletable {
		return false, nil
	}
	delete(e.bindings, name)
	return true, nil
}

func (e *DeclarativeEnvironment) HasThisBinding() bool   { return false }
func (e *DeclarativeEnvironment) HasSuperBinding() bool  { return false }
func (e *DeclarativeEnvironment) WithBaseObject() *Value { return Undefined }
func (e *DeclarativeEnvironment) Outer() Environment     { return e.outer }

// IsInitialized reports whether name is bound and out of its dead zone.
func (e *DeclarativeEnvironment) IsInitialized(name string) bool {
	b := e.bindings[name]
	return b != nil && b.initialized
}

// GetThisEnvironment returns the nearest environment with a this binding.
func GetThisEnvironment(env Environment) Environment {
	for e := env; e != nil; e = e.Outer() {
		if e.HasThisBinding() {
			return e
		}
	}
	panic(&AssertionError{Msg: "no this environment"})
}

// ThisBinder is implemented by environments that carry a this binding.
type ThisBinder interface {
	GetThisBinding(a *Agent) (*Value, error)
}

// ResolveThisBinding returns the this value of the running context.
func ResolveThisBinding(a *Agent, env Environment) (*Value, error) {
	return GetThisEnvironment(env).(ThisBinder).GetThisBinding(a)
}

// GetIdentifierReference walks env outward looking for name. A miss yields
// an unresolvable reference.
func GetIdentifierReference(a *Agent, env Environment, name string, strict bool) (*Reference, error) {
	for e := env; e != nil; e = e.Outer() {
		exists, err := e.HasBinding(a, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return &Reference{Env: e, BindingName: name, Strict: strict}, nil
		}
	}
	return &Reference{Unresolvable: true, BindingName: name, Strict: strict}, nil
}
