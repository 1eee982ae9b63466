package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// bindPattern binds v to a binding target. With a non-nil env it is
// BindingInitialization and initializes the names in env; with a nil env
// it is destructuring assignment and writes through references.
func (interp *Interpreter) bindPattern(target ast.Expression, v *runtime.Value, env runtime.Environment, f *frame) error {
	return interp.bindElement(target, env, f, func() (*runtime.Value, error) { return v, nil })
}

// bindElement binds one element of a pattern. The reference of a simple
// target is resolved before get produces the value, and a default applies
// when that value is undefined.
func (interp *Interpreter) bindElement(target ast.Expression, env runtime.Environment, f *frame, get func() (*runtime.Value, error)) error {
	a := interp.agent
	var init ast.Expression
	if ap, ok := target.(*ast.AssignmentPattern); ok {
		target, init = ap.Left, ap.Right
	}
	switch target.(type) {
	case *ast.ObjectLiteral, *ast.ArrayLiteral:
		p, ok := ast.ToPattern(target)
		if !ok {
			return a.NewSyntaxError("Invalid destructuring assignment target")
		}
		target = p
	}
	var ref *runtime.Reference
	switch t := target.(type) {
	case *ast.Identifier:
		if env == nil {
			r, err := runtime.GetIdentifierReference(a, f.env(), t.Value, f.strict)
			if err != nil {
				return err
			}
			ref = r
		}
	case *ast.MemberExpression:
		if env != nil {
			return a.NewSyntaxError("Invalid destructuring target")
		}
		r, err := interp.evalReference(t, f)
		if err != nil {
			return err
		}
		ref = r
	}
	v, err := get()
	if err != nil {
		return err
	}
	if init != nil && v.IsUndefined() {
		if v, err = interp.evalNamed(init, targetName(target), f); err != nil {
			return err
		}
	}
	if ref != nil {
		return ref.PutValue(a, v)
	}
	switch t := target.(type) {
	case *ast.Identifier:
		return env.InitializeBinding(a, t.Value, v)
	case *ast.ObjectPattern:
		return interp.bindObjectPattern(t, v, env, f)
	case *ast.ArrayPattern:
		return interp.bindArrayPattern(t, v, env, f)
	}
	return a.NewSyntaxError("Invalid destructuring target")
}

func (interp *Interpreter) bindObjectPattern(p *ast.ObjectPattern, v *runtime.Value, env runtime.Environment, f *frame) error {
	a := interp.agent
	if v.IsNullish() {
		return a.NewTypeError("Cannot destructure '%s' as it is %s.", v.String(), v.String())
	}
	var excluded []runtime.PropertyKey
	for _, prop := range p.Properties {
		if rest, ok := prop.Key.(*ast.RestElement); ok {
			return interp.bindElement(rest.Argument, env, f, func() (*runtime.Value, error) {
				restObj := a.NewPlainObject()
				if err := runtime.CopyDataProperties(a, restObj, v, excluded); err != nil {
					return nil, err
				}
				return runtime.NewObject(restObj), nil
			})
		}
		key, err := interp.evalPropertyKey(prop.Key, prop.Computed, f)
		if err != nil {
			return err
		}
		excluded = append(excluded, key)
		err = interp.bindElement(prop.Value, env, f, func() (*runtime.Value, error) {
			return runtime.GetV(a, v, key)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) bindArrayPattern(p *ast.ArrayPattern, v *runtime.Value, env runtime.Environment, f *frame) error {
	a := interp.agent
	rec, err := runtime.GetIterator(a, v, false)
	if err != nil {
		return err
	}
	next := func() (*runtime.Value, error) {
		if rec.Done {
			return runtime.Undefined, nil
		}
		v, done, err := runtime.IteratorStepValue(a, rec)
		if err != nil {
			return nil, err
		}
		if done {
			return runtime.Undefined, nil
		}
		return v, nil
	}
	for _, el := range p.Elements {
		switch el := el.(type) {
		case nil:
			_, err = next()
		case *ast.RestElement:
			err = interp.bindElement(el.Argument, env, f, func() (*runtime.Value, error) {
				var vals []*runtime.Value
				for !rec.Done {
					v, done, err := runtime.IteratorStepValue(a, rec)
					if err != nil {
						return nil, err
					}
					if done {
						break
					}
					vals = append(vals, v)
				}
				return runtime.NewObject(runtime.CreateArrayFromList(a, vals)), nil
			})
		default:
			err = interp.bindElement(el, env, f, next)
		}
		if err != nil {
			if rec.Done {
				return err
			}
			return runtime.IteratorClose(a, rec, err)
		}
	}
	if !rec.Done {
		return runtime.IteratorClose(a, rec, nil)
	}
	return nil
}
