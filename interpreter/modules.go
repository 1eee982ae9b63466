package interpreter

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/parser"
	"github.com/example/jscore/runtime"
)

var moduleLog = commonlog.GetLogger("jscore.modules")

type moduleStatus int

const (
	moduleNew moduleStatus = iota
	moduleLinking
	moduleLinked
	moduleEvaluating
	moduleEvaluated
)

// importEntry is one binding a module imports. A namespace import has
// importName "*".
type importEntry struct {
	request    string
	importName string
	localName  string
}

// exportEntry is one name a module exports. Local exports have no
// request; indirect ones re-export importName of request.
type exportEntry struct {
	exportName string
	localName  string
	request    string
	importName string
}

// Module is a source text module record.
type Module struct {
	specifier string
	program   *ast.Program
	realm     *runtime.Realm

	env       *runtime.ModuleEnvironment
	namespace *runtime.Object
	status    moduleStatus
	evalErr   error

	requests        []string
	imports         []importEntry
	localExports    []exportEntry
	indirectExports []exportEntry
	starExports     []string
	loaded          map[string]runtime.ModuleRecord
}

// CompileModule parses source as module code and collects its import and
// export entries. It has the shape of runtime.ModuleCompiler.
func (interp *Interpreter) CompileModule(a *runtime.Agent, specifier, source string) (runtime.ModuleRecord, error) {
	program, errs := parser.New(source).ParseModule()
	if len(errs) > 0 {
		return nil, a.NewSyntaxError("%s: %s", specifier, errs[0].Error())
	}
	m := &Module{
		specifier: specifier,
		program:   program,
		realm:     a.CurrentRealm(),
		loaded:    make(map[string]runtime.ModuleRecord),
	}
	m.collectEntries()
	moduleLog.Debugf("compiled module %s: %d requests, %d local exports", specifier, len(m.requests), len(m.localExports))
	return m, nil
}

func (m *Module) request(specifier string) {
	for _, r := range m.requests {
		if r == specifier {
			return
		}
	}
	m.requests = append(m.requests, specifier)
}

func (m *Module) collectEntries() {
	for _, stmt := range m.program.Statements {
		switch d := stmt.(type) {
		case *ast.ImportDeclaration:
			m.request(d.Source)
			if d.Default != "" {
				m.imports = append(m.imports, importEntry{request: d.Source, importName: "default", localName: d.Default})
			}
			if d.Namespace != "" {
				m.imports = append(m.imports, importEntry{request: d.Source, importName: "*", localName: d.Namespace})
			}
			for _, s := range d.Specifiers {
				m.imports = append(m.imports, importEntry{request: d.Source, importName: s.Imported, localName: s.Local})
			}
		case *ast.ExportNamedDeclaration:
			if d.Source != "" {
				m.request(d.Source)
				for _, s := range d.Specifiers {
					m.indirectExports = append(m.indirectExports, exportEntry{exportName: s.Exported, request: d.Source, importName: s.Local})
				}
				continue
			}
			if d.Declaration != nil {
				for _, name := range ast.BoundNames(d.Declaration) {
					m.localExports = append(m.localExports, exportEntry{exportName: name, localName: name})
				}
			}
			for _, s := range d.Specifiers {
				m.localExports = append(m.localExports, exportEntry{exportName: s.Exported, localName: s.Local})
			}
		case *ast.ExportDefaultDeclaration:
			local := "*default*"
			switch inner := d.Declaration.(type) {
			case *ast.FunctionDeclaration:
				local = inner.Name.Value
			case *ast.ClassDeclaration:
				local = inner.Name.Value
			}
			m.localExports = append(m.localExports, exportEntry{exportName: "default", localName: local})
		case *ast.ExportAllDeclaration:
			m.request(d.Source)
			if d.Exported == "" {
				m.starExports = append(m.starExports, d.Source)
			} else {
				m.indirectExports = append(m.indirectExports, exportEntry{exportName: d.Exported, request: d.Source, importName: "*"})
			}
		}
	}
}

func (m *Module) Environment() *runtime.ModuleEnvironment { return m.env }
func (m *Module) Namespace() *runtime.Object              { return m.namespace }
func (m *Module) SetNamespace(ns *runtime.Object)         { m.namespace = ns }

// Specifier is the name the module was loaded under.
func (m *Module) Specifier() string { return m.specifier }

func (m *Module) importFor(local string) (importEntry, bool) {
	for _, in := range m.imports {
		if in.localName == local {
			return in, true
		}
	}
	return importEntry{}, false
}

func (m *Module) GetExportedNames(exportStarSet []runtime.ModuleRecord) []string {
	for _, seen := range exportStarSet {
		if seen == m {
			return nil
		}
	}
	exportStarSet = append(exportStarSet, m)
	var names []string
	for _, e := range m.localExports {
		names = append(names, e.exportName)
	}
	for _, e := range m.indirectExports {
		names = append(names, e.exportName)
	}
	for _, request := range m.starExports {
		requested := m.loaded[request]
		if requested == nil {
			continue
		}
		for _, n := range requested.GetExportedNames(exportStarSet) {
			if n == "default" || containsString(names, n) {
				continue
			}
			names = append(names, n)
		}
	}
	return names
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *Module) ResolveExport(name string, resolveSet []runtime.ResolveEntry) *runtime.ResolvedBinding {
	for _, r := range resolveSet {
		if r.Module == m && r.ExportName == name {
			// circular import request
			return nil
		}
	}
	resolveSet = append(resolveSet, runtime.ResolveEntry{Module: m, ExportName: name})
	for _, e := range m.localExports {
		if e.exportName != name {
			continue
		}
		if in, ok := m.importFor(e.localName); ok {
			imported := m.loaded[in.request]
			if imported == nil {
				return nil
			}
			if in.importName == "*" {
				return &runtime.ResolvedBinding{Module: imported, BindingName: runtime.NamespaceBinding}
			}
			return imported.ResolveExport(in.importName, resolveSet)
		}
		return &runtime.ResolvedBinding{Module: m, BindingName: e.localName}
	}
	for _, e := range m.indirectExports {
		if e.exportName != name {
			continue
		}
		imported := m.loaded[e.request]
		if imported == nil {
			return nil
		}
		if e.importName == "*" {
			return &runtime.ResolvedBinding{Module: imported, BindingName: runtime.NamespaceBinding}
		}
		return imported.ResolveExport(e.importName, resolveSet)
	}
	if name == "default" {
		return nil
	}
	var star *runtime.ResolvedBinding
	for _, request := range m.starExports {
		imported := m.loaded[request]
		if imported == nil {
			continue
		}
		resolution := imported.ResolveExport(name, resolveSet)
		if resolution == nil {
			continue
		}
		if resolution.Ambiguous {
			return resolution
		}
		if star == nil {
			star = resolution
			continue
		}
		if resolution.Module != star.Module || resolution.BindingName != star.BindingName {
			return &runtime.ResolvedBinding{Ambiguous: true}
		}
	}
	return star
}

// loadRequested fetches every module m requests, transitively, through the host.
func (interp *Interpreter) loadRequested(m *Module, visited map[*Module]bool) error {
	if visited[m] {
		return nil
	}
	visited[m] = true
	a := interp.agent
	for _, request := range m.requests {
		if _, ok := m.loaded[request]; ok {
			continue
		}
		var loadErr error
		called := false
		a.Host.LoadImportedModule(a, m, request, func(record runtime.ModuleRecord, err error) {
			called = true
			if err != nil {
				loadErr = err
				return
			}
			m.loaded[request] = record
		})
		if !called {
			return fmt.Errorf("module %q: host did not finish loading %q", m.specifier, request)
		}
		if loadErr != nil {
			if _, ok := loadErr.(*runtime.Exception); ok {
				return loadErr
			}
			return a.NewSyntaxError("%s", loadErr.Error())
		}
		if dep, ok := m.loaded[request].(*Module); ok {
			if err := interp.loadRequested(dep, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// link creates the environments of m and the modules it depends on and
// binds their imports and hoisted declarations.
func (interp *Interpreter) link(m *Module) error {
	if m.status != moduleNew {
		return nil
	}
	m.status = moduleLinking
	for _, request := range m.requests {
		if dep, ok := m.loaded[request].(*Module); ok {
			if err := interp.link(dep); err != nil {
				m.status = moduleNew
				return err
			}
		}
	}
	if err := interp.initializeModuleEnvironment(m); err != nil {
		m.status = moduleNew
		m.env = nil
		return err
	}
	m.status = moduleLinked
	moduleLog.Debugf("linked module %s", m.specifier)
	return nil
}

func (interp *Interpreter) initializeModuleEnvironment(m *Module) error {
	a := interp.agent
	for _, e := range m.indirectExports {
		r := m.ResolveExport(e.exportName, nil)
		if r == nil || r.Ambiguous {
			return a.NewSyntaxError("The requested module '%s' does not provide an export named '%s'", e.request, e.importName)
		}
	}
	env := runtime.NewModuleEnvironment(m.realm.GlobalEnv)
	m.env = env
	for _, in := range m.imports {
		imported := m.loaded[in.request]
		if in.importName == "*" {
			ns := runtime.GetModuleNamespace(a, imported)
			must(env.CreateImmutableBinding(a, in.localName, true))
			must(env.InitializeBinding(a, in.localName, runtime.NewObject(ns)))
			continue
		}
		r := imported.ResolveExport(in.importName, nil)
		if r == nil || r.Ambiguous {
			return a.NewSyntaxError("The requested module '%s' does not provide an export named '%s'", in.request, in.importName)
		}
		if r.BindingName == runtime.NamespaceBinding {
			ns := runtime.GetModuleNamespace(a, r.Module)
			must(env.CreateImmutableBinding(a, in.localName, true))
			must(env.InitializeBinding(a, in.localName, runtime.NewObject(ns)))
			continue
		}
		env.CreateImportBinding(in.localName, r.Module, r.BindingName)
	}

	ctx := m.context()
	restore, err := a.Enter(ctx)
	if err != nil {
		return err
	}
	defer restore()
	info := m.program.Info
	declared := map[string]bool{}
	for _, name := range info.VarNames {
		if declared[name] {
			continue
		}
		declared[name] = true
		must(env.CreateMutableBinding(a, name, false))
		must(env.InitializeBinding(a, name, runtime.Undefined))
	}
	for _, l := range info.Lexical {
		if l.Const {
			must(env.CreateImmutableBinding(a, l.Name, true))
		} else {
			must(env.CreateMutableBinding(a, l.Name, false))
		}
	}
	for _, fd := range info.Functions {
		name := fd.Name.Value
		fo := runtime.NewObject(interp.instantiateFunctionObject(fd, env, nil))
		if ok, _ := env.HasBinding(a, name); !ok {
			must(env.CreateMutableBinding(a, name, false))
			must(env.InitializeBinding(a, name, fo))
		} else {
			must(env.SetMutableBinding(a, name, fo, true))
		}
	}
	for _, e := range m.localExports {
		if e.localName == "*default*" {
			if ok, _ := env.HasBinding(a, e.localName); !ok {
				must(env.CreateMutableBinding(a, e.localName, false))
			}
		}
	}
	return nil
}

func (m *Module) context() *runtime.ExecutionContext {
	return &runtime.ExecutionContext{
		Realm:               m.realm,
		LexicalEnvironment:  m.env,
		VariableEnvironment: m.env,
		ScriptOrModule:      m,
		CallSite:            runtime.CallSite{FunctionName: m.specifier},
	}
}

// evaluate runs the bodies of the modules m depends on and then m, each
// once. The error of a failed module is returned on every later request.
func (interp *Interpreter) evaluate(m *Module) error {
	switch m.status {
	case moduleEvaluated:
		return m.evalErr
	case moduleEvaluating:
		return nil
	}
	runtime.Assert(m.status == moduleLinked, "module %s evaluated before linking", m.specifier)
	m.status = moduleEvaluating
	for _, request := range m.requests {
		if dep, ok := m.loaded[request].(*Module); ok {
			if err := interp.evaluate(dep); err != nil {
				m.status = moduleEvaluated
				m.evalErr = err
				return err
			}
		}
	}
	a := interp.agent
	ctx := m.context()
	restore, err := a.Enter(ctx)
	if err != nil {
		return err
	}
	f := &frame{ctx: ctx, strict: true, info: m.program.Info}
	c := interp.execStatements(m.program, m.program.Statements, f)
	restore()
	m.status = moduleEvaluated
	if c.Type == runtime.Throw {
		m.evalErr = c.Err()
	}
	moduleLog.Debugf("evaluated module %s", m.specifier)
	return m.evalErr
}
