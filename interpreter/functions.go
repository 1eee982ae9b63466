package interpreter

import (
	"github.com/dop251/goja/unistring"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// functionKind separates the four bodies a function literal can have.
type functionKind int

const (
	kindNormal functionKind = iota
	kindGenerator
	kindAsync
	kindAsyncGenerator
)

// thisMode is the [[ThisMode]] of a function.
type thisMode int

const (
	thisGlobal thisMode = iota
	thisStrict
	thisLexical
)

const codeSlot = "[[ECMAScriptCode]]"

// function is the code and captured state behind an ECMAScript function
// object.
type function struct {
	name     string
	node     ast.Node
	params   []ast.Expression
	defaults []ast.Expression
	rest     *ast.RestElement
	body     *ast.BlockStatement
	exprBody ast.Expression
	info     *ast.FunctionInfo
	kind     functionKind
	thisMode thisMode

	isMethod         bool
	classConstructor bool
	derived          bool

	env            runtime.Environment
	privateEnv     *runtime.PrivateEnvironment
	home           *runtime.Object
	scriptOrModule interface{}
	realm          *runtime.Realm
	loc            runtime.Location
}

// newFunction extracts the parts of a function literal.
func newFunction(node ast.Node, env runtime.Environment, privateEnv *runtime.PrivateEnvironment) *function {
	fn := &function{node: node, env: env, privateEnv: privateEnv}
	var generator, async bool
	var rest ast.Expression
	switch n := node.(type) {
	case *ast.FunctionDeclaration:
		fn.params, fn.defaults, rest, fn.body, fn.info = n.Params, n.Defaults, n.Rest, n.Body, n.Info
		generator, async = n.Generator, n.Async
	case *ast.FunctionExpression:
		fn.params, fn.defaults, rest, fn.body, fn.info = n.Params, n.Defaults, n.Rest, n.Body, n.Info
		generator, async = n.Generator, n.Async
	case *ast.ArrowFunctionExpression:
		fn.params, fn.defaults, rest, fn.info = n.Params, n.Defaults, n.Rest, n.Info
		async = n.Async
		fn.thisMode = thisLexical
		if b, ok := n.Body.(*ast.BlockStatement); ok {
			fn.body = b
		} else {
			fn.exprBody, _ = n.Body.(ast.Expression)
		}
	}
	fn.rest, _ = rest.(*ast.RestElement)
	switch {
	case generator && async:
		fn.kind = kindAsyncGenerator
	case generator:
		fn.kind = kindGenerator
	case async:
		fn.kind = kindAsync
	}
	if fn.thisMode != thisLexical && fn.info.Strict {
		fn.thisMode = thisStrict
	}
	pos := node.Pos()
	fn.loc = runtime.Location{Line: pos.Line, Column: pos.Column}
	return fn
}

// functionOf returns the code of an ECMAScript function object, or nil for
// built-ins and other objects.
func functionOf(o *runtime.Object) *function {
	if o == nil {
		return nil
	}
	fn, _ := o.Slot(codeSlot).(*function)
	return fn
}

// expectedArgumentCount counts the formals before the first default or rest.
func (fn *function) expectedArgumentCount() int {
	n := 0
	for i := range fn.params {
		if i < len(fn.defaults) && fn.defaults[i] != nil {
			break
		}
		n++
	}
	return n
}

// ordinaryFunctionCreate builds the function object for fn with the given
// prototype. The name property is left to setFunctionName.
func (interp *Interpreter) ordinaryFunctionCreate(proto *runtime.Object, fn *function) *runtime.Object {
	F := runtime.NewOrdinaryObject(proto)
	F.Kind = runtime.KindFunction
	F.Realm = interp.agent.CurrentRealm()
	fn.realm = F.Realm
	fn.scriptOrModule = interp.agent.GetActiveScriptOrModule()
	F.SetSlot(codeSlot, fn)
	F.Callable = func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return interp.callFunction(fn, F, this, args)
	}
	F.DefineProperty(runtime.StrKey("length"), runtime.DataDescriptor(runtime.NewNumber(float64(fn.expectedArgumentCount())), false, false, true))
	return F
}

// makeConstructor gives F a [[Construct]] and, unless proto is supplied, a
// fresh prototype object whose constructor points back at F.
func (interp *Interpreter) makeConstructor(F *runtime.Object, writable bool, proto *runtime.Object) {
	fn := functionOf(F)
	F.Constructor = func(a *runtime.Agent, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		if newTarget == nil {
			newTarget = F
		}
		return interp.constructFunction(fn, F, args, newTarget)
	}
	if proto == nil {
		proto = runtime.NewOrdinaryObject(F.Realm.Intrinsic("%Object.prototype%"))
		proto.DefineProperty(runtime.StrKey("constructor"), runtime.DataDescriptor(runtime.NewObject(F), writable, false, true))
	}
	F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(proto), writable, false, false))
}

// setFunctionName defines the name property from a property key, using
// the [description] form for symbols.
func setFunctionName(F *runtime.Object, key runtime.PropertyKey, prefix string) {
	var name unistring.String
	if key.Symbol != nil {
		if key.Symbol.HasDescription {
			name = runtime.ConcatStrings(runtime.ConcatStrings("[", key.Symbol.Description), "]")
		}
	} else {
		name = key.Name
	}
	if prefix != "" {
		name = runtime.ConcatStrings(runtime.StringFromWTF8(prefix+" "), name)
	}
	F.DefineProperty(runtime.StrKey("name"), runtime.DataDescriptor(runtime.NewUString(name), false, false, true))
	if fn := functionOf(F); fn != nil && fn.name == "" {
		fn.name = runtime.GoString(name)
	}
}

// instantiateFunction creates the function object for a function
// declaration or expression and gives it name.
func (interp *Interpreter) instantiateFunction(fn *function, name runtime.PropertyKey) *runtime.Object {
	realm := interp.agent.CurrentRealm()
	var proto *runtime.Object
	switch fn.kind {
	case kindGenerator:
		proto = realm.Intrinsic("%GeneratorFunction.prototype%")
	case kindAsync:
		proto = realm.Intrinsic("%AsyncFunction.prototype%")
	case kindAsyncGenerator:
		proto = realm.Intrinsic("%AsyncGeneratorFunction.prototype%")
	default:
		proto = realm.Intrinsic("%Function.prototype%")
	}
	F := interp.ordinaryFunctionCreate(proto, fn)
	setFunctionName(F, name, "")
	switch fn.kind {
	case kindNormal:
		if fn.thisMode != thisLexical && !fn.isMethod {
			interp.makeConstructor(F, true, nil)
		}
	case kindGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%GeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	case kindAsyncGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%AsyncGeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	}
	return F
}

// instantiateFunctionObject creates the object for a hoisted declaration.
func (interp *Interpreter) instantiateFunctionObject(fd *ast.FunctionDeclaration, env runtime.Environment, privateEnv *runtime.PrivateEnvironment) *runtime.Object {
	name := fd.Name.Value
	if name == "*default*" {
		name = "default"
	}
	return interp.instantiateFunction(newFunction(fd, env, privateEnv), runtime.StrKey(name))
}

// evalFunctionExpression evaluates a function or arrow literal. A named
// function expression binds its own name in an intermediate scope.
func (interp *Interpreter) evalFunctionExpression(node ast.Node, name runtime.PropertyKey, f *frame) *runtime.Value {
	env := f.env()
	if fe, ok := node.(*ast.FunctionExpression); ok && fe.Name != nil {
		funcEnv := runtime.NewDeclarativeEnvironment(env)
		must(funcEnv.CreateImmutableBinding(interp.agent, fe.Name.Value, false))
		F := interp.instantiateFunction(newFunction(node, funcEnv, f.ctx.PrivateEnvironment), runtime.StrKey(fe.Name.Value))
		must(funcEnv.InitializeBinding(interp.agent, fe.Name.Value, runtime.NewObject(F)))
		return runtime.NewObject(F)
	}
	return runtime.NewObject(interp.instantiateFunction(newFunction(node, env, f.ctx.PrivateEnvironment), name))
}

// defineMethod creates the function object of a method, getter or setter
// with home object home.
func (interp *Interpreter) defineMethod(fe *ast.FunctionExpression, home *runtime.Object, f *frame) *runtime.Object {
	fn := newFunction(fe, f.env(), f.ctx.PrivateEnvironment)
	fn.isMethod = true
	fn.home = home
	realm := interp.agent.CurrentRealm()
	proto := realm.Intrinsic("%Function.prototype%")
	switch fn.kind {
	case kindGenerator:
		proto = realm.Intrinsic("%GeneratorFunction.prototype%")
	case kindAsync:
		proto = realm.Intrinsic("%AsyncFunction.prototype%")
	case kindAsyncGenerator:
		proto = realm.Intrinsic("%AsyncGeneratorFunction.prototype%")
	}
	F := interp.ordinaryFunctionCreate(proto, fn)
	switch fn.kind {
	case kindGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%GeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	case kindAsyncGenerator:
		p := runtime.NewOrdinaryObject(realm.Intrinsic("%AsyncGeneratorFunction.prototype.prototype%"))
		F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(p), true, false, false))
	}
	return F
}

// isAnonymousFunctionDefinition reports whether e is a function or class
// literal without its own name, which takes the name of its binding.
func isAnonymousFunctionDefinition(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.FunctionExpression:
		return v.Name == nil
	case *ast.ArrowFunctionExpression:
		return true
	case *ast.ClassExpression:
		return v.Name == nil
	}
	return false
}

// evalNamed evaluates e, giving anonymous function and class definitions
// the name key.
func (interp *Interpreter) evalNamed(e ast.Expression, key runtime.PropertyKey, f *frame) (*runtime.Value, error) {
	if !isAnonymousFunctionDefinition(e) {
		return interp.evalExpression(e, f)
	}
	if c, ok := e.(*ast.ClassExpression); ok {
		return interp.evalClass(c.Name, c.SuperClass, c.Body, &key, f)
	}
	return interp.evalFunctionExpression(e, key, f), nil
}

// prepareCall creates the callee context and its function environment.
func (interp *Interpreter) prepareCall(fn *function, F *runtime.Object, newTarget *runtime.Object) *frame {
	status := runtime.ThisUninitialized
	if fn.thisMode == thisLexical {
		status = runtime.ThisLexical
	}
	nt := runtime.Undefined
	if newTarget != nil {
		nt = runtime.NewObject(newTarget)
	}
	env := runtime.NewFunctionEnvironment(F, nt, status, fn.home, fn.env)
	ctx := &runtime.ExecutionContext{
		Function:            F,
		Realm:               fn.realm,
		LexicalEnvironment:  env,
		VariableEnvironment: env,
		PrivateEnvironment:  fn.privateEnv,
		ScriptOrModule:      fn.scriptOrModule,
		CallSite: runtime.CallSite{
			FunctionName:  fn.name,
			IsConstructor: newTarget != nil,
			IsMethod:      fn.isMethod,
			Location:      fn.loc,
		},
	}
	return &frame{ctx: ctx, strict: fn.info.Strict, fn: fn, info: fn.info}
}

// bindThis is OrdinaryCallBindThis.
func (interp *Interpreter) bindThis(f *frame, this *runtime.Value) error {
	fn := f.fn
	if fn.thisMode == thisLexical {
		return nil
	}
	thisValue := this
	if fn.thisMode == thisGlobal {
		if this.IsNullish() {
			v, err := fn.realm.GlobalEnv.GetThisBinding(interp.agent)
			if err != nil {
				return err
			}
			thisValue = v
		} else {
			o, err := runtime.ToObject(interp.agent, this)
			if err != nil {
				return err
			}
			thisValue = runtime.NewObject(o)
		}
	}
	return f.ctx.LexicalEnvironment.(*runtime.FunctionEnvironment).BindThisValue(interp.agent, thisValue)
}

// callFunction is [[Call]] of ECMAScript functions. A call in tail
// position comes back as a pending tailCall after the caller's context is
// gone, so chains of tail calls run in constant stack depth.
func (interp *Interpreter) callFunction(fn *function, F *runtime.Object, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	for {
		v, tail, err := interp.callOnce(fn, F, this, args)
		if err != nil || tail == nil {
			return v, err
		}
		next := functionOf(tail.fn.Object)
		if next == nil || next.classConstructor {
			return runtime.Call(interp.agent, tail.fn, tail.this, tail.args)
		}
		fn, F, this, args = next, tail.fn.Object, tail.this, tail.args
	}
}

func (interp *Interpreter) callOnce(fn *function, F *runtime.Object, this *runtime.Value, args []*runtime.Value) (*runtime.Value, *tailCall, error) {
	a := interp.agent
	if fn.classConstructor {
		return nil, nil, a.NewTypeError("Class constructor %s cannot be invoked without 'new'", fn.name)
	}
	f := interp.prepareCall(fn, F, nil)
	restore, err := a.Enter(f.ctx)
	if err != nil {
		return nil, nil, err
	}
	defer restore()
	if err := interp.bindThis(f, this); err != nil {
		return nil, nil, err
	}
	c := interp.evaluateBody(f, F, args)
	if f.tail != nil && c.Type != runtime.Throw {
		a.PopEarly(f.ctx)
		return nil, f.tail, nil
	}
	v, err := resultOf(c)
	return v, nil, err
}

// constructFunction is [[Construct]] of ECMAScript functions.
func (interp *Interpreter) constructFunction(fn *function, F *runtime.Object, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	a := interp.agent
	var thisArgument *runtime.Object
	if !fn.derived {
		obj, err := runtime.OrdinaryCreateFromConstructor(a, newTarget, "%Object.prototype%")
		if err != nil {
			return nil, err
		}
		thisArgument = obj
	}
	f := interp.prepareCall(fn, F, newTarget)
	restore, err := a.Enter(f.ctx)
	if err != nil {
		return nil, err
	}
	defer restore()
	fenv := f.ctx.LexicalEnvironment.(*runtime.FunctionEnvironment)
	if !fn.derived {
		if err := interp.bindThis(f, runtime.NewObject(thisArgument)); err != nil {
			return nil, err
		}
		if err := interp.initializeInstanceElements(thisArgument, F); err != nil {
			return nil, err
		}
	}
	c := interp.evaluateBody(f, F, args)
	if f.tail != nil && c.Type != runtime.Throw {
		v, err := runtime.Call(a, f.tail.fn, f.tail.this, f.tail.args)
		if err != nil {
			return nil, err
		}
		c = runtime.ReturnCompletion(v)
	}
	switch c.Type {
	case runtime.Throw:
		return nil, c.Err()
	case runtime.Return:
		if c.Value.IsObject() {
			return c.Value, nil
		}
		if !fn.derived {
			return runtime.NewObject(thisArgument), nil
		}
		if !c.Value.IsUndefined() {
			return nil, a.NewTypeError("Derived constructors may only return object or undefined")
		}
	}
	return fenv.GetThisBinding(a)
}

// evaluateBody runs FunctionDeclarationInstantiation and then the body the
// way its kind requires: directly, or by creating a generator or promise.
func (interp *Interpreter) evaluateBody(f *frame, F *runtime.Object, args []*runtime.Value) runtime.Completion {
	a := interp.agent
	fn := f.fn
	switch fn.kind {
	case kindGenerator:
		if err := interp.functionDeclarationInstantiation(f, F, args); err != nil {
			return runtime.ThrowCompletion(err)
		}
		G, err := runtime.OrdinaryCreateFromConstructor(a, F, "%GeneratorFunction.prototype.prototype%")
		if err != nil {
			return runtime.ThrowCompletion(err)
		}
		interp.generatorStart(G, f)
		return runtime.ReturnCompletion(runtime.NewObject(G))
	case kindAsyncGenerator:
		if err := interp.functionDeclarationInstantiation(f, F, args); err != nil {
			return runtime.ThrowCompletion(err)
		}
		G, err := runtime.OrdinaryCreateFromConstructor(a, F, "%AsyncGeneratorFunction.prototype.prototype%")
		if err != nil {
			return runtime.ThrowCompletion(err)
		}
		interp.asyncGeneratorStart(G, f)
		return runtime.ReturnCompletion(runtime.NewObject(G))
	case kindAsync:
		capability := runtime.NewIntrinsicPromiseCapability(a)
		if err := interp.functionDeclarationInstantiation(f, F, args); err != nil {
			runtime.Must(runtime.Call(a, capability.Reject, runtime.Undefined, []*runtime.Value{runtime.ThrownValue(err)}))
		} else {
			interp.asyncRun(f, capability, false)
		}
		return runtime.ReturnCompletion(runtime.NewObject(capability.Promise))
	}
	if err := interp.functionDeclarationInstantiation(f, F, args); err != nil {
		return runtime.ThrowCompletion(err)
	}
	return interp.execBody(f)
}

// execBody runs the statements or the concise body of the frame's function.
func (interp *Interpreter) execBody(f *frame) runtime.Completion {
	fn := f.fn
	if fn.exprBody != nil {
		v, err := interp.evalExpression(fn.exprBody, f)
		if err != nil {
			return completionOf(err)
		}
		return runtime.ReturnCompletion(v)
	}
	return interp.execStatements(fn.body, fn.body.Statements, f)
}

// resultOf maps the completion of a function body to its call result.
func resultOf(c runtime.Completion) (*runtime.Value, error) {
	switch c.Type {
	case runtime.Return:
		if c.Value == nil {
			return runtime.Undefined, nil
		}
		return c.Value, nil
	case runtime.Throw:
		return nil, c.Err()
	}
	return runtime.Undefined, nil
}
