package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// evalArguments evaluates an argument list into s.list, spreading
// iterables. Arguments evaluated before a suspension are kept.
func (interp *Interpreter) evalArguments(args []ast.Expression, s *slot, f *frame) ([]*runtime.Value, error) {
	a := interp.agent
	if s == nil {
		s = &slot{}
	}
	for s.n < len(args) {
		if spread, ok := args[s.n].(*ast.SpreadElement); ok {
			v, err := interp.evalExpression(spread.Argument, f)
			if err != nil {
				return nil, err
			}
			vals, err := runtime.IterableToList(a, v)
			if err != nil {
				return nil, err
			}
			s.list = append(s.list, vals...)
		} else {
			v, err := interp.evalExpression(args[s.n], f)
			if err != nil {
				return nil, err
			}
			s.list = append(s.list, v)
		}
		s.n++
	}
	return s.list, nil
}

// evalCallee evaluates the callee of a call and the this value the call
// receives.
func (interp *Interpreter) evalCallee(callee ast.Expression, f *frame) (*runtime.Value, *runtime.Value, error) {
	a := interp.agent
	target := callee
	if chain, ok := callee.(*ast.OptionalChain); ok {
		if _, member := chain.Expression.(*ast.MemberExpression); member {
			target = chain.Expression
		}
	}
	switch target.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		ref, err := interp.evalReference(target, f)
		if err == errShortCircuit && target != callee {
			return runtime.Undefined, runtime.Undefined, nil
		}
		if err != nil {
			return nil, nil, err
		}
		fn, err := ref.GetValue(a)
		if err != nil {
			return nil, nil, err
		}
		if ref.IsPropertyReference() {
			return fn, ref.GetThisValue(), nil
		}
		return fn, ref.Env.WithBaseObject(), nil
	}
	fn, err := interp.evalExpression(callee, f)
	if err != nil {
		return nil, nil, err
	}
	return fn, runtime.Undefined, nil
}

func (interp *Interpreter) evalCall(n *ast.CallExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	if _, ok := n.Callee.(*ast.SuperExpression); ok {
		return interp.evalSuperCall(n, f)
	}
	s := f.slot(n)
	fn, ok := s.memo(0)
	this, _ := s.memo(1)
	if !ok {
		var err error
		fn, this, err = interp.evalCallee(n.Callee, f)
		if err != nil {
			return nil, err
		}
		s.record(0, fn)
		s.record(1, this)
	}
	if n.Optional && fn.IsNullish() {
		return nil, errShortCircuit
	}
	args, err := interp.evalArguments(n.Arguments, s, f)
	if err != nil {
		return nil, err
	}
	if !runtime.IsCallable(fn) {
		return nil, a.NewTypeError("%s is not a function", describeNode(n.Callee))
	}
	if id, ok := n.Callee.(*ast.Identifier); ok && id.Value == "eval" {
		if evalFn := a.CurrentRealm().Intrinsic("%eval%"); evalFn != nil && fn.Object == evalFn {
			if len(args) == 0 {
				return runtime.Undefined, nil
			}
			return interp.performEval(args[0], f.strict, true)
		}
	}
	if n.Tail && f.fn != nil {
		f.tail = &tailCall{fn: fn, this: this, args: args}
		return runtime.Undefined, nil
	}
	return runtime.Call(a, fn, this, args)
}

// evalSuperCall runs super(...args) in a derived constructor: it
// constructs through the parent with the current new.target and binds the
// result as this.
func (interp *Interpreter) evalSuperCall(n *ast.CallExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	env, ok := runtime.GetThisEnvironment(f.env()).(*runtime.FunctionEnvironment)
	if !ok {
		return nil, a.NewSyntaxError("'super' keyword unexpected here")
	}
	superCtor, err := env.FunctionObject.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArguments(n.Arguments, f.slot(n), f)
	if err != nil {
		return nil, err
	}
	if superCtor == nil || superCtor.Constructor == nil {
		return nil, a.NewTypeError("Super constructor %s of anonymous class is not a constructor", runtime.ObjectOrNull(superCtor).String())
	}
	result, err := runtime.Construct(a, superCtor, args, env.NewTarget.Object)
	if err != nil {
		return nil, err
	}
	if err := env.BindThisValue(a, result); err != nil {
		return nil, err
	}
	if err := interp.initializeInstanceElements(result.Object, env.FunctionObject); err != nil {
		return nil, err
	}
	return result, nil
}

func (interp *Interpreter) evalNew(n *ast.NewExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.slot(n)
	ctor, err := interp.operand(s, 0, n.Callee, f)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArguments(n.Arguments, s, f)
	if err != nil {
		return nil, err
	}
	if !runtime.IsConstructor(ctor) {
		return nil, a.NewTypeError("%s is not a constructor", describeNode(n.Callee))
	}
	return runtime.Construct(a, ctor.Object, args, nil)
}

// templateObject returns the frozen strings array of a tagged template
// site, created once per realm.
func (interp *Interpreter) templateObject(site *ast.TemplateLiteralExpr) *runtime.Object {
	a := interp.agent
	realm := a.CurrentRealm()
	if t, ok := realm.TemplateMap[site]; ok {
		return t
	}
	cooked := make([]*runtime.Value, len(site.Quasis))
	raw := make([]*runtime.Value, len(site.Quasis))
	for i, q := range site.Quasis {
		cooked[i] = runtime.NewUString(runtime.StringFromWTF8(q.Value))
		raw[i] = runtime.NewUString(runtime.StringFromWTF8(q.Raw))
	}
	template := runtime.CreateArrayFromList(a, cooked)
	rawObj := runtime.CreateArrayFromList(a, raw)
	runtime.Must(runtime.SetIntegrityLevel(a, rawObj, "frozen"))
	template.DefineProperty(runtime.StrKey("raw"), runtime.DataDescriptor(runtime.NewObject(rawObj), false, false, false))
	runtime.Must(runtime.SetIntegrityLevel(a, template, "frozen"))
	realm.TemplateMap[site] = template
	return template
}

func (interp *Interpreter) evalTaggedTemplate(n *ast.TaggedTemplateExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.slot(n)
	tag, ok := s.memo(0)
	this, _ := s.memo(1)
	if !ok {
		var err error
		tag, this, err = interp.evalCallee(n.Tag, f)
		if err != nil {
			return nil, err
		}
		s.record(0, tag)
		s.record(1, this)
	}
	if s == nil {
		s = &slot{}
	}
	if s.n == 0 {
		s.list = append(s.list, runtime.NewObject(interp.templateObject(n.Quasi)))
		s.n = 1
	}
	for s.n <= len(n.Quasi.Expressions) {
		v, err := interp.evalExpression(n.Quasi.Expressions[s.n-1], f)
		if err != nil {
			return nil, err
		}
		s.list = append(s.list, v)
		s.n++
	}
	if !runtime.IsCallable(tag) {
		return nil, a.NewTypeError("%s is not a function", describeNode(n.Tag))
	}
	return runtime.Call(a, tag, this, s.list)
}
