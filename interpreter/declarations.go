package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// declaredFunctionNames returns the names of the hoisted function
// declarations, keeping the last declaration of each name.
func declaredFunctionNames(fns []*ast.FunctionDeclaration) ([]string, []*ast.FunctionDeclaration) {
	seen := map[string]bool{}
	var names []string
	var toInit []*ast.FunctionDeclaration
	for i := len(fns) - 1; i >= 0; i-- {
		name := fns[i].Name.Value
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		toInit = append([]*ast.FunctionDeclaration{fns[i]}, toInit...)
	}
	return names, toInit
}

// globalDeclarationInstantiation binds the top-level declarations of a
// script, rejecting redeclarations before anything is created.
func (interp *Interpreter) globalDeclarationInstantiation(info *ast.FunctionInfo, env *runtime.GlobalEnvironment) error {
	a := interp.agent
	fnNames, functionsToInit := declaredFunctionNames(info.Functions)
	for _, l := range info.Lexical {
		if env.HasVarDeclaration(l.Name) || env.HasLexicalDeclaration(l.Name) {
			return a.NewSyntaxError("Identifier '%s' has already been declared", l.Name)
		}
		restricted, err := env.HasRestrictedGlobalProperty(a, l.Name)
		if err != nil {
			return err
		}
		if restricted {
			return a.NewSyntaxError("Identifier '%s' has already been declared", l.Name)
		}
	}
	for _, name := range append(append([]string{}, info.VarNames...), fnNames...) {
		if env.HasLexicalDeclaration(name) {
			return a.NewSyntaxError("Identifier '%s' has already been declared", name)
		}
	}
	declaredFns := map[string]bool{}
	for _, name := range fnNames {
		ok, err := env.CanDeclareGlobalFunction(a, name)
		if err != nil {
			return err
		}
		if !ok {
			return a.NewTypeError("Cannot redefine global function '%s'", name)
		}
		declaredFns[name] = true
	}
	var declaredVars []string
	seenVar := map[string]bool{}
	for _, name := range info.VarNames {
		if declaredFns[name] || seenVar[name] {
			continue
		}
		ok, err := env.CanDeclareGlobalVar(a, name)
		if err != nil {
			return err
		}
		if !ok {
			return a.NewTypeError("Cannot declare global variable '%s'", name)
		}
		seenVar[name] = true
		declaredVars = append(declaredVars, name)
	}
	for _, l := range info.Lexical {
		if l.Const {
			must(env.CreateImmutableBinding(a, l.Name, true))
		} else {
			must(env.CreateMutableBinding(a, l.Name, false))
		}
	}
	privateEnv := a.Running().PrivateEnvironment
	for _, fd := range functionsToInit {
		fo := interp.instantiateFunctionObject(fd, env, privateEnv)
		if err := env.CreateGlobalFunctionBinding(a, fd.Name.Value, runtime.NewObject(fo), false); err != nil {
			return err
		}
	}
	for _, name := range declaredVars {
		if err := env.CreateGlobalVarBinding(a, name, false); err != nil {
			return err
		}
	}
	return nil
}

// functionDeclarationInstantiation binds parameters, the arguments object,
// vars, lexical declarations and hoisted functions of a call.
func (interp *Interpreter) functionDeclarationInstantiation(f *frame, F *runtime.Object, args []*runtime.Value) error {
	a := interp.agent
	fn := f.fn
	info := fn.info
	env := f.ctx.LexicalEnvironment
	strict := info.Strict
	hasParameterExpressions := !info.SimpleParams

	fnNames, functionsToInit := declaredFunctionNames(info.Functions)
	isFunctionName := map[string]bool{}
	for _, n := range fnNames {
		isFunctionName[n] = true
	}

	hasDuplicates := false
	instantiated := map[string]bool{}
	for _, name := range info.ParamNames {
		if instantiated[name] {
			hasDuplicates = true
			continue
		}
		instantiated[name] = true
		must(env.CreateMutableBinding(a, name, false))
	}
	if hasDuplicates {
		for name := range instantiated {
			must(env.InitializeBinding(a, name, runtime.Undefined))
		}
	}

	if info.ArgumentsNeeded && fn.thisMode != thisLexical {
		var ao *runtime.Object
		if strict || !info.SimpleParams {
			ao = runtime.CreateUnmappedArgumentsObject(a, args)
		} else {
			ao = runtime.CreateMappedArgumentsObject(a, F, info.ParamNames, args, env)
		}
		if strict {
			must(env.CreateImmutableBinding(a, "arguments", false))
		} else {
			must(env.CreateMutableBinding(a, "arguments", false))
		}
		must(env.InitializeBinding(a, "arguments", runtime.NewObject(ao)))
		instantiated["arguments"] = true
	}

	bindEnv := env
	if hasDuplicates {
		bindEnv = nil
	}
	if err := interp.bindParameters(f, args, bindEnv); err != nil {
		return err
	}

	varNames := append(append([]string{}, info.VarNames...), fnNames...)
	var varEnv runtime.Environment
	if !hasParameterExpressions {
		for _, name := range varNames {
			if instantiated[name] {
				continue
			}
			instantiated[name] = true
			must(env.CreateMutableBinding(a, name, false))
			must(env.InitializeBinding(a, name, runtime.Undefined))
		}
		varEnv = env
	} else {
		varEnv = runtime.NewDeclarativeEnvironment(env)
		declared := map[string]bool{}
		for _, name := range varNames {
			if declared[name] {
				continue
			}
			declared[name] = true
			must(varEnv.CreateMutableBinding(a, name, false))
			initial := runtime.Undefined
			if instantiated[name] && !isFunctionName[name] {
				initial = runtime.Must(env.GetBindingValue(a, name, false))
			}
			must(varEnv.InitializeBinding(a, name, initial))
		}
	}
	f.ctx.VariableEnvironment = varEnv

	lexEnv := varEnv
	if !strict {
		lexEnv = runtime.NewDeclarativeEnvironment(varEnv)
	}
	f.ctx.LexicalEnvironment = lexEnv
	for _, l := range info.Lexical {
		if l.Const {
			must(lexEnv.CreateImmutableBinding(a, l.Name, true))
		} else {
			must(lexEnv.CreateMutableBinding(a, l.Name, false))
		}
	}
	for _, fd := range functionsToInit {
		fo := interp.instantiateFunctionObject(fd, lexEnv, f.ctx.PrivateEnvironment)
		must(varEnv.SetMutableBinding(a, fd.Name.Value, runtime.NewObject(fo), false))
	}
	return nil
}

// bindParameters binds the formals to args, evaluating defaults for
// missing arguments. A nil env assigns through references, which is how
// duplicate parameter names behave.
func (interp *Interpreter) bindParameters(f *frame, args []*runtime.Value, env runtime.Environment) error {
	fn := f.fn
	for i, p := range fn.params {
		v := runtime.Arg(args, i)
		if i < len(fn.defaults) && fn.defaults[i] != nil && v.IsUndefined() {
			var err error
			v, err = interp.evalNamed(fn.defaults[i], targetName(p), f)
			if err != nil {
				return err
			}
		}
		if err := interp.bindPattern(p, v, env, f); err != nil {
			return err
		}
	}
	if fn.rest != nil {
		var rest []*runtime.Value
		if len(args) > len(fn.params) {
			rest = args[len(fn.params):]
		}
		arr := runtime.CreateArrayFromList(interp.agent, rest)
		return interp.bindPattern(fn.rest.Argument, runtime.NewObject(arr), env, f)
	}
	return nil
}

// targetName is the name an anonymous function gets when assigned to
// target.
func targetName(target ast.Expression) runtime.PropertyKey {
	if id, ok := target.(*ast.Identifier); ok {
		return runtime.StrKey(id.Value)
	}
	return runtime.StrKey("")
}

// blockDeclarationInstantiation creates the bindings of a block or case
// block scope in env.
func (interp *Interpreter) blockDeclarationInstantiation(scope *ast.BlockScope, env *runtime.DeclarativeEnvironment, f *frame) {
	a := interp.agent
	for _, l := range scope.Lexical {
		if l.Const {
			must(env.CreateImmutableBinding(a, l.Name, true))
		} else {
			must(env.CreateMutableBinding(a, l.Name, false))
		}
	}
	for _, fd := range scope.Functions {
		name := fd.Name.Value
		if ok, _ := env.HasBinding(a, name); !ok {
			must(env.CreateMutableBinding(a, name, false))
		} else if env.IsInitialized(name) {
			// A later sloppy duplicate in the same block replaces the earlier one.
			fo := interp.instantiateFunctionObject(fd, env, f.ctx.PrivateEnvironment)
			must(env.SetMutableBinding(a, name, runtime.NewObject(fo), false))
			continue
		}
		fo := interp.instantiateFunctionObject(fd, env, f.ctx.PrivateEnvironment)
		must(env.InitializeBinding(a, name, runtime.NewObject(fo)))
	}
}

// evalDeclarationInstantiation binds the declarations of eval code. Vars
// of sloppy eval land in the caller's variable environment.
func (interp *Interpreter) evalDeclarationInstantiation(info *ast.FunctionInfo, varEnv, lexEnv runtime.Environment, privateEnv *runtime.PrivateEnvironment, strict bool) error {
	a := interp.agent
	fnNames, functionsToInit := declaredFunctionNames(info.Functions)
	varNames := append(append([]string{}, info.VarNames...), fnNames...)
	if !strict {
		if g, ok := varEnv.(*runtime.GlobalEnvironment); ok {
			for _, name := range varNames {
				if g.HasLexicalDeclaration(name) {
					return a.NewSyntaxError("Identifier '%s' has already been declared", name)
				}
			}
		}
		for this := lexEnv; this != varEnv && this != nil; this = this.Outer() {
			if _, isObj := this.(*runtime.ObjectEnvironment); isObj {
				continue
			}
			for _, name := range varNames {
				if ok, _ := this.HasBinding(a, name); ok {
					return a.NewSyntaxError("Identifier '%s' has already been declared", name)
				}
			}
		}
	}
	g, global := varEnv.(*runtime.GlobalEnvironment)
	if global && !strict {
		for _, name := range fnNames {
			ok, err := g.CanDeclareGlobalFunction(a, name)
			if err != nil {
				return err
			}
			if !ok {
				return a.NewTypeError("Cannot redefine global function '%s'", name)
			}
		}
		for _, name := range info.VarNames {
			ok, err := g.CanDeclareGlobalVar(a, name)
			if err != nil {
				return err
			}
			if !ok {
				return a.NewTypeError("Cannot declare global variable '%s'", name)
			}
		}
	}
	for _, l := range info.Lexical {
		if l.Const {
			must(lexEnv.CreateImmutableBinding(a, l.Name, true))
		} else {
			must(lexEnv.CreateMutableBinding(a, l.Name, false))
		}
	}
	isFn := map[string]bool{}
	for _, fd := range functionsToInit {
		isFn[fd.Name.Value] = true
		fo := runtime.NewObject(interp.instantiateFunctionObject(fd, lexEnv, privateEnv))
		if global && !strict {
			if err := g.CreateGlobalFunctionBinding(a, fd.Name.Value, fo, true); err != nil {
				return err
			}
			continue
		}
		bound, err := varEnv.HasBinding(a, fd.Name.Value)
		if err != nil {
			return err
		}
		if !bound {
			must(varEnv.CreateMutableBinding(a, fd.Name.Value, true))
			must(varEnv.InitializeBinding(a, fd.Name.Value, fo))
		} else if err := varEnv.SetMutableBinding(a, fd.Name.Value, fo, false); err != nil {
			return err
		}
	}
	for _, name := range info.VarNames {
		if isFn[name] {
			continue
		}
		if global && !strict {
			if err := g.CreateGlobalVarBinding(a, name, true); err != nil {
				return err
			}
			continue
		}
		bound, err := varEnv.HasBinding(a, name)
		if err != nil {
			return err
		}
		if !bound {
			must(varEnv.CreateMutableBinding(a, name, true))
			must(varEnv.InitializeBinding(a, name, runtime.Undefined))
		}
	}
	return nil
}
