package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// evalReference evaluates an expression that denotes a reference: an
// identifier, a property access or a super property. Anything else is not
// a valid assignment target.
func (interp *Interpreter) evalReference(e ast.Expression, f *frame) (*runtime.Reference, error) {
	a := interp.agent
	switch n := e.(type) {
	case *ast.Identifier:
		return runtime.GetIdentifierReference(a, f.env(), n.Value, f.strict)
	case *ast.MemberExpression:
		ref, err := interp.memberReference(n, f)
		if err != errSuspend {
			f.release(n)
		}
		return ref, err
	case *ast.OptionalChain:
		ref, err := interp.evalReference(n.Expression, f)
		if err != errSuspend {
			f.release(n)
		}
		return ref, err
	}
	return nil, a.NewSyntaxError("Invalid left-hand side in assignment")
}

func (interp *Interpreter) memberReference(n *ast.MemberExpression, f *frame) (*runtime.Reference, error) {
	a := interp.agent
	if _, ok := n.Object.(*ast.SuperExpression); ok {
		return interp.superReference(n, f)
	}
	s := f.slot(n)
	base, err := interp.operand(s, 0, n.Object, f)
	if err != nil {
		return nil, err
	}
	if n.Optional && base.IsNullish() {
		return nil, errShortCircuit
	}
	if p, ok := n.Property.(*ast.PrivateIdentifier); ok {
		name := f.ctx.PrivateEnvironment.Resolve(p.Name)
		if name == nil {
			return nil, a.NewSyntaxError("Private field '%s' must be declared in an enclosing class", p.Name)
		}
		return &runtime.Reference{Base: base, Private: name, Strict: true}, nil
	}
	key, err := interp.evalPropertyKey(n.Property, n.Computed, f)
	if err != nil {
		return nil, err
	}
	return &runtime.Reference{Base: base, Name: key, Strict: f.strict}, nil
}

// superReference is MakeSuperPropertyReference for super.x and super[x].
func (interp *Interpreter) superReference(n *ast.MemberExpression, f *frame) (*runtime.Reference, error) {
	a := interp.agent
	env, ok := runtime.GetThisEnvironment(f.env()).(*runtime.FunctionEnvironment)
	if !ok || env.HomeObject == nil {
		return nil, a.NewSyntaxError("'super' keyword unexpected here")
	}
	actualThis, err := env.GetThisBinding(a)
	if err != nil {
		return nil, err
	}
	key, err := interp.evalPropertyKey(n.Property, n.Computed, f)
	if err != nil {
		return nil, err
	}
	base, err := env.GetSuperBase(a)
	if err != nil {
		return nil, err
	}
	return &runtime.Reference{Base: base, Name: key, Strict: true, ThisValue: actualThis}, nil
}
