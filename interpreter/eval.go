package interpreter

import (
	"strings"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/parser"
	"github.com/example/jscore/runtime"
)

// parseScript parses source as a script and converts the first parse
// error into a SyntaxError of the running realm.
func (interp *Interpreter) parseScript(source string, strict bool) (*ast.Program, error) {
	p := parser.New(source)
	var program *ast.Program
	var errs []error
	if strict {
		program, errs = p.ParseStrictProgram()
	} else {
		program, errs = p.ParseProgram()
	}
	if len(errs) > 0 {
		return nil, interp.agent.NewSyntaxError("%s", errs[0].Error())
	}
	return program, nil
}

// performEval evaluates the argument of eval. A direct eval sees the
// caller's scopes; an indirect one runs in the global scope of the
// running realm.
func (interp *Interpreter) performEval(x *runtime.Value, strictCaller, direct bool) (*runtime.Value, error) {
	a := interp.agent
	if !x.IsString() {
		return x, nil
	}
	realm := a.CurrentRealm()
	source := runtime.GoString(x.Str)
	if err := a.Host.CanCompileDynamicCode(a, realm, source); err != nil {
		return nil, err
	}
	program, err := interp.parseScript(source, direct && strictCaller)
	if err != nil {
		return nil, err
	}
	strict := program.Strict

	running := a.Running()
	var lexEnv, varEnv runtime.Environment
	var privateEnv *runtime.PrivateEnvironment
	if direct {
		lexEnv = runtime.NewDeclarativeEnvironment(running.LexicalEnvironment)
		varEnv = running.VariableEnvironment
		privateEnv = running.PrivateEnvironment
	} else {
		lexEnv = runtime.NewDeclarativeEnvironment(realm.GlobalEnv)
		varEnv = realm.GlobalEnv
	}
	if strict {
		varEnv = lexEnv
	}
	var scriptOrModule interface{}
	if running != nil {
		scriptOrModule = running.ScriptOrModule
	}
	ctx := &runtime.ExecutionContext{
		Realm:               realm,
		LexicalEnvironment:  lexEnv,
		VariableEnvironment: varEnv,
		PrivateEnvironment:  privateEnv,
		ScriptOrModule:      scriptOrModule,
		CallSite:            runtime.CallSite{FunctionName: "eval"},
	}
	restore, err := a.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer restore()
	if err := interp.evalDeclarationInstantiation(program.Info, varEnv, lexEnv, privateEnv, strict); err != nil {
		return nil, err
	}
	f := &frame{ctx: ctx, strict: strict, info: program.Info}
	c := interp.execStatements(program, program.Statements, f)
	if c.Type == runtime.Throw {
		return nil, c.Err()
	}
	return orUndefined(c.Value), nil
}

// dynamicFunctionPrefixes are the source prefixes CreateDynamicFunction
// uses for each kind of function.
var dynamicFunctionPrefixes = map[functionKind]string{
	kindNormal:         "function",
	kindGenerator:      "function*",
	kindAsync:          "async function",
	kindAsyncGenerator: "async function*",
}

// dynamicFunctionDefaults are the fallback prototypes of functions made
// by the Function constructors.
var dynamicFunctionDefaults = map[functionKind]string{
	kindNormal:         "%Function.prototype%",
	kindGenerator:      "%GeneratorFunction.prototype%",
	kindAsync:          "%AsyncFunction.prototype%",
	kindAsyncGenerator: "%AsyncGeneratorFunction.prototype%",
}

// createDynamicFunction implements the Function, GeneratorFunction,
// AsyncFunction and AsyncGeneratorFunction constructors. The last argument
// is the body and the others are parameters. The function closes over the
// global scope of the running realm.
func (interp *Interpreter) createDynamicFunction(ctor, newTarget *runtime.Object, kind functionKind, args []*runtime.Value) (*runtime.Value, error) {
	a := interp.agent
	if newTarget == nil {
		newTarget = ctor
	}
	var params []string
	body := ""
	for i, arg := range args {
		s, err := runtime.ToString(a, arg)
		if err != nil {
			return nil, err
		}
		if i == len(args)-1 {
			body = runtime.GoString(s)
		} else {
			params = append(params, runtime.GoString(s))
		}
	}
	source := dynamicFunctionPrefixes[kind] + " anonymous(" + strings.Join(params, ",") + "\n) {\n" + body + "\n}"
	realm := a.CurrentRealm()
	if err := a.Host.CanCompileDynamicCode(a, realm, source); err != nil {
		return nil, err
	}
	program, err := interp.parseScript(source, false)
	if err != nil {
		return nil, err
	}
	if len(program.Statements) != 1 {
		return nil, a.NewSyntaxError("Invalid function body")
	}
	decl, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		return nil, a.NewSyntaxError("Invalid function body")
	}
	fn := newFunction(decl, realm.GlobalEnv, nil)
	if fn.kind != kind {
		return nil, a.NewSyntaxError("Invalid function body")
	}
	proto, err := runtime.GetPrototypeFromConstructor(a, newTarget, dynamicFunctionDefaults[kind])
	if err != nil {
		return nil, err
	}
	F := interp.ordinaryFunctionCreate(proto, fn)
	setFunctionName(F, runtime.StrKey("anonymous"), "")
	switch kind {
	case kindNormal:
		interp.makeConstructor(F, true, nil)
	case kindGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%GeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	case kindAsyncGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%AsyncGeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	}
	return runtime.NewObject(F), nil
}
