package runtime

// ModuleEnvironment is the top-level scope of a module. Import bindings
// are indirections into the exporting module's environment.
type ModuleEnvironment struct {
	*DeclarativeEnvironment
}

func NewModuleEnvironment(outer Environment) *ModuleEnvironment {
	return &ModuleEnvironment{DeclarativeEnvironment: NewDeclarativeEnvironment(outer)}
}

// CreateImportBinding binds name to bindingName in module m. Reads are
// live and throw while the target is uninitialized.
func (e *ModuleEnvironment) CreateImportBinding(name string, m ModuleRecord, bindingName string) {
	Assert(e.bindings[name] == nil, "binding %s already exists", name)
	e.bindings[name] = &binding{initialized: true, strict: true, module: m, bindingName: bindingName}
}

func (e *ModuleEnvironment) HasThisBinding() bool { return true }

func (e *ModuleEnvironment) GetThisBinding(a *Agent) (*Value, error) {
	return Undefined, nil
}
