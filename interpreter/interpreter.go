package interpreter

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/example/jscore/builtins"
	"github.com/example/jscore/runtime"
)

// Options configures an Interpreter.
type Options struct {
	// Strict evaluates every script as strict mode code.
	Strict          bool
	MaxCallDepth    int
	MaxJobsPerDrain int
	// Host receives the engine's host hooks. When nil and Modules is set,
	// modules are served from Modules; otherwise runtime.DefaultHost is
	// used. Module hosts without a compiler get the interpreter's.
	Host    runtime.Host
	Modules map[string]string
}

// Interpreter evaluates scripts and modules on one agent. Its main realm
// is created by New; NewRealm adds more.
type Interpreter struct {
	agent  *runtime.Agent
	realm  *runtime.Realm
	log    commonlog.Logger
	strict bool
}

// Script is the record of a script evaluated by Eval.
type Script struct {
	Name string
}

func New() *Interpreter {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Interpreter {
	interp := &Interpreter{
		log:    commonlog.GetLogger("jscore.interpreter"),
		strict: opts.Strict,
	}
	host := opts.Host
	if host == nil && opts.Modules != nil {
		host = &runtime.MapModuleHost{Sources: opts.Modules, Compile: interp.CompileModule}
	}
	switch h := host.(type) {
	case *runtime.MapModuleHost:
		if h.Compile == nil {
			h.Compile = interp.CompileModule
		}
	case *runtime.FileModuleHost:
		if h.Compile == nil {
			h.Compile = interp.CompileModule
		}
	}
	interp.agent = runtime.NewAgent(runtime.Options{
		MaxCallDepth:    opts.MaxCallDepth,
		MaxJobsPerDrain: opts.MaxJobsPerDrain,
		Host:            host,
	})
	interp.realm = interp.NewRealm()
	return interp
}

// NewRealm creates another realm on the interpreter's agent with its own
// intrinsics and global object.
func (interp *Interpreter) NewRealm() *runtime.Realm {
	realm := runtime.NewRealm(interp.agent)
	builtins.Install(realm)
	interp.installIntrinsics(realm)
	interp.log.Debugf("created realm %s", realm.ID)
	return realm
}

// Agent returns the agent the interpreter runs on.
func (interp *Interpreter) Agent() *runtime.Agent {
	return interp.agent
}

// Realm returns the interpreter's realm.
func (interp *Interpreter) Realm() *runtime.Realm {
	return interp.realm
}

// SetGlobal defines a writable, configurable, non-enumerable global.
func (interp *Interpreter) SetGlobal(name string, v *runtime.Value) {
	interp.realm.GlobalObject.DefineProperty(runtime.StrKey(name), runtime.DataDescriptor(v, true, false, true))
}

// Eval evaluates source as a script and then runs the jobs it queued. The
// result is the completion value of the script.
func (interp *Interpreter) Eval(source string) (*runtime.Value, error) {
	v, err := interp.EvalScript("<eval>", source)
	if err != nil {
		return nil, err
	}
	if err := interp.RunJobs(); err != nil {
		return nil, err
	}
	return v, nil
}

// EvalScript is ScriptEvaluation: it instantiates the top-level
// declarations of source in the global scope and runs it. Queued jobs are
// left for RunJobs.
func (interp *Interpreter) EvalScript(name, source string) (*runtime.Value, error) {
	return interp.EvalScriptIn(interp.realm, name, source)
}

// EvalScriptIn is EvalScript in the global scope of realm.
func (interp *Interpreter) EvalScriptIn(realm *runtime.Realm, name, source string) (*runtime.Value, error) {
	a := interp.agent
	program, err := interp.parseScript(source, interp.strict)
	if err != nil {
		return nil, err
	}
	ctx := &runtime.ExecutionContext{
		Realm:               realm,
		LexicalEnvironment:  realm.GlobalEnv,
		VariableEnvironment: realm.GlobalEnv,
		ScriptOrModule:      &Script{Name: name},
		CallSite:            runtime.CallSite{FunctionName: name},
	}
	restore, err := a.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer restore()
	if err := interp.globalDeclarationInstantiation(program.Info, realm.GlobalEnv); err != nil {
		return nil, err
	}
	f := &frame{ctx: ctx, strict: program.Strict, info: program.Info}
	c := interp.execStatements(program, program.Statements, f)
	interp.log.Debugf("script %s finished with a %s completion", name, c.Type)
	if c.Type == runtime.Throw {
		return nil, c.Err()
	}
	return orUndefined(c.Value), nil
}

// EvalModule compiles source as the module specifier, loads what it
// imports through the host, links and evaluates it and runs the queued
// jobs. It returns the module's namespace object.
func (interp *Interpreter) EvalModule(specifier, source string) (*runtime.Object, error) {
	record, err := interp.CompileModule(interp.agent, specifier, source)
	if err != nil {
		return nil, err
	}
	return interp.runModule(record.(*Module))
}

// ImportModule loads specifier through the host and evaluates it like
// EvalModule.
func (interp *Interpreter) ImportModule(specifier string) (*runtime.Object, error) {
	a := interp.agent
	var record runtime.ModuleRecord
	var loadErr error
	a.Host.LoadImportedModule(a, nil, specifier, func(m runtime.ModuleRecord, err error) {
		record, loadErr = m, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	m, ok := record.(*Module)
	if !ok {
		return nil, fmt.Errorf("module %q: host returned no source text module", specifier)
	}
	return interp.runModule(m)
}

func (interp *Interpreter) runModule(m *Module) (*runtime.Object, error) {
	if err := interp.loadRequested(m, map[*Module]bool{}); err != nil {
		return nil, err
	}
	if err := interp.link(m); err != nil {
		return nil, err
	}
	if err := interp.evaluate(m); err != nil {
		return nil, err
	}
	if err := interp.RunJobs(); err != nil {
		return nil, err
	}
	return runtime.GetModuleNamespace(interp.agent, m), nil
}

// RunJobs drains the job queue.
func (interp *Interpreter) RunJobs() error {
	return interp.agent.RunJobs()
}
