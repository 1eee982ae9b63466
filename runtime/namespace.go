package runtime

import "sort"

// NamespaceBinding is the binding name a resolved export carries when it
// stands for a whole module namespace (export * as ns).
const NamespaceBinding = "*namespace*"

// ModuleRecord is the part of a module the core needs to resolve imports
// and build namespace objects.
type ModuleRecord interface {
	// Environment is nil until the module has been linked.
	Environment() *ModuleEnvironment
	GetExportedNames(exportStarSet []ModuleRecord) []string
	// ResolveExport returns nil when name cannot be resolved, or a binding
	// with Ambiguous set when star exports disagree.
	ResolveExport(name string, resolveSet []ResolveEntry) *ResolvedBinding
	Namespace() *Object
	SetNamespace(ns *Object)
}

// ResolveEntry records one step of an export resolution, to stop cycles.
type ResolveEntry struct {
	Module     ModuleRecord
	ExportName string
}

// ResolvedBinding names the module and local binding an export resolves to.
type ResolvedBinding struct {
	Module      ModuleRecord
	BindingName string
	Ambiguous   bool
}

type moduleNamespace struct {
	module  ModuleRecord
	exports []string
	index   map[string]bool
}

// GetModuleNamespace returns the namespace object of m, creating it on
// first use. Names that resolve ambiguously are left out.
func GetModuleNamespace(a *Agent, m ModuleRecord) *Object {
	if ns := m.Namespace(); ns != nil {
		return ns
	}
	var unambiguous []string
	for _, name := range m.GetExportedNames(nil) {
		r := m.ResolveExport(name, nil)
		if r != nil && !r.Ambiguous {
			unambiguous = append(unambiguous, name)
		}
	}
	return ModuleNamespaceCreate(m, unambiguous)
}

// ModuleNamespaceCreate builds the namespace exotic for m with the given
// export names.
func ModuleNamespaceCreate(m ModuleRecord, exports []string) *Object {
	sorted := append([]string(nil), exports...)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareStrings(StringFromWTF8(sorted[i]), StringFromWTF8(sorted[j])) < 0
	})
	ns := &moduleNamespace{module: m, exports: sorted, index: make(map[string]bool, len(sorted))}
	for _, name := range sorted {
		ns.index[name] = true
	}
	o := NewOrdinaryObject(nil)
	o.Kind = KindModuleNamespace
	o.Exotic = ns
	o.DefineProperty(SymKey(SymToStringTag), DataDescriptor(NewString("Module"), false, false, false))
	o.extensible = false
	m.SetNamespace(o)
	return o
}

func (ns *moduleNamespace) exportName(key PropertyKey) (string, bool) {
	if key.IsSymbol() {
		return "", false
	}
	name := GoString(key.Name)
	return name, ns.index[name]
}

func (ns *moduleNamespace) lookup(a *Agent, name string) (*Value, error) {
	r := ns.module.ResolveExport(name, nil)
	Assert(r != nil && !r.Ambiguous, "namespace export %s no longer resolves", name)
	if r.BindingName == NamespaceBinding {
		return NewObject(GetModuleNamespace(a, r.Module)), nil
	}
	env := r.Module.Environment()
	if env == nil {
		return nil, a.NewReferenceError("Cannot access '%s' before initialization", name)
	}
	return env.GetBindingValue(a, r.BindingName, true)
}

func (ns *moduleNamespace) GetPrototypeOf(a *Agent, o *Object) (*Object, error) {
	return nil, nil
}

func (ns *moduleNamespace) SetPrototypeOf(a *Agent, o *Object, proto *Object) (bool, error) {
	return proto == nil, nil
}

func (ns *moduleNamespace) IsExtensible(a *Agent, o *Object) (bool, error) {
	return false, nil
}

func (ns *moduleNamespace) PreventExtensions(a *Agent, o *Object) (bool, error) {
	return true, nil
}

func (ns *moduleNamespace) GetOwnProperty(a *Agent, o *Object, key PropertyKey) (PropertyDescriptor, bool, error) {
	if key.IsSymbol() {
		d, ok := o.OrdinaryGetOwnProperty(key)
		return d, ok, nil
	}
	name, ok := ns.exportName(key)
	if !ok {
		return PropertyDescriptor{}, false, nil
	}
	v, err := ns.lookup(a, name)
	if err != nil {
		return PropertyDescriptor{}, false, err
	}
	return DataDescriptor(v, true, true, false), true, nil
}

func (ns *moduleNamespace) DefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if key.IsSymbol() {
		return OrdinaryDefineOwnProperty(a, o, key, desc)
	}
	current, found, err := ns.GetOwnProperty(a, o, key)
	if err != nil || !found {
		return false, err
	}
	if (desc.HasConfigurable && desc.Configurable) ||
		(desc.HasEnumerable && !desc.Enumerable) ||
		desc.IsAccessorDescriptor() ||
		(desc.HasWritable && !desc.Writable) {
		return false, nil
	}
	if desc.HasValue {
		return SameValue(desc.Value, current.Value), nil
	}
	return true, nil
}

func (ns *moduleNamespace) HasProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	if key.IsSymbol() {
		return OrdinaryHasProperty(a, o, key)
	}
	_, ok := ns.exportName(key)
	return ok, nil
}

func (ns *moduleNamespace) Get(a *Agent, o *Object, key PropertyKey, receiver *Value) (*Value, error) {
	if key.IsSymbol() {
		return OrdinaryGet(a, o, key, receiver)
	}
	name, ok := ns.exportName(key)
	if !ok {
		return Undefined, nil
	}
	return ns.lookup(a, name)
}

func (ns *moduleNamespace) Set(a *Agent, o *Object, key PropertyKey, v, receiver *Value) (bool, error) {
	return false, nil
}

func (ns *moduleNamespace) Delete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	if key.IsSymbol() {
		return OrdinaryDelete(a, o, key)
	}
	_, ok := ns.exportName(key)
	return !ok, nil
}

func (ns *moduleNamespace) OwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	keys := make([]PropertyKey, 0, len(ns.exports)+1)
	for _, name := range ns.exports {
		keys = append(keys, UKey(StringFromWTF8(name)))
	}
	return append(keys, o.OrdinaryOwnPropertyKeys()...), nil
}
