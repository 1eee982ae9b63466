package interpreter

import (
	"math/big"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// evalExpression evaluates e and forgets its progress record unless it
// suspended.
func (interp *Interpreter) evalExpression(e ast.Expression, f *frame) (*runtime.Value, error) {
	v, err := interp.dispatchExpression(e, f)
	if err != errSuspend {
		f.release(e)
	}
	return v, err
}

// operand evaluates the i-th operand of the node owning s, reusing the
// value recorded before a suspension.
func (interp *Interpreter) operand(s *slot, i int, e ast.Expression, f *frame) (*runtime.Value, error) {
	if v, ok := s.memo(i); ok {
		return v, nil
	}
	v, err := interp.evalExpression(e, f)
	if err != nil {
		return nil, err
	}
	s.record(i, v)
	return v, nil
}

func (interp *Interpreter) dispatchExpression(e ast.Expression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	switch n := e.(type) {
	case *ast.Identifier:
		ref, err := runtime.GetIdentifierReference(a, f.env(), n.Value, f.strict)
		if err != nil {
			return nil, err
		}
		return ref.GetValue(a)
	case *ast.NumberLiteral:
		return runtime.NewNumber(n.Value), nil
	case *ast.StringLiteral:
		return runtime.NewUString(runtime.StringFromWTF8(n.Value)), nil
	case *ast.BooleanLiteral:
		return runtime.NewBool(n.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.BigIntLiteral:
		b, ok := runtime.StringToBigInt(n.Digits)
		if !ok {
			return nil, a.NewSyntaxError("Invalid BigInt literal %s", n.Digits)
		}
		return runtime.NewBigInt(b), nil
	case *ast.RegExpLiteral:
		ctor := a.CurrentRealm().Intrinsic("%RegExp%")
		if ctor == nil {
			return nil, a.NewSyntaxError("Regular expressions are not available")
		}
		return runtime.Construct(a, ctor, []*runtime.Value{runtime.NewString(n.Pattern), runtime.NewString(n.Flags)}, nil)
	case *ast.TemplateLiteralExpr:
		return interp.evalTemplateLiteral(n, f)
	case *ast.ArrayLiteral:
		return interp.evalArrayLiteral(n, f)
	case *ast.ObjectLiteral:
		return interp.evalObjectLiteral(n, f)
	case *ast.FunctionExpression, *ast.ArrowFunctionExpression:
		return interp.evalFunctionExpression(n, runtime.StrKey(""), f), nil
	case *ast.ClassExpression:
		return interp.evalClass(n.Name, n.SuperClass, n.Body, nil, f)
	case *ast.ThisExpression:
		return runtime.ResolveThisBinding(a, f.env())
	case *ast.MetaProperty:
		env, ok := runtime.GetThisEnvironment(f.env()).(*runtime.FunctionEnvironment)
		if !ok {
			return runtime.Undefined, nil
		}
		return env.NewTarget, nil
	case *ast.UnaryExpression:
		return interp.evalUnary(n, f)
	case *ast.UpdateExpression:
		return interp.evalUpdate(n, f)
	case *ast.BinaryExpression:
		if n.Operator == "??" {
			return interp.evalLogical(n, n.Operator, n.Left, n.Right, f)
		}
		return interp.evalBinary(n, f)
	case *ast.LogicalExpression:
		return interp.evalLogical(n, n.Operator, n.Left, n.Right, f)
	case *ast.ConditionalExpression:
		s := f.state(n)
		test, err := interp.operand(s, 0, n.Test, f)
		if err != nil {
			return nil, err
		}
		if test.ToBoolean() {
			return interp.evalExpression(n.Consequent, f)
		}
		return interp.evalExpression(n.Alternate, f)
	case *ast.SequenceExpression:
		s := f.state(n)
		var v *runtime.Value
		for s.n < len(n.Expressions) {
			var err error
			if v, err = interp.evalExpression(n.Expressions[s.n], f); err != nil {
				return nil, err
			}
			s.n++
		}
		return v, nil
	case *ast.AssignmentExpression:
		return interp.evalAssignment(n, f)
	case *ast.MemberExpression:
		ref, err := interp.evalReference(n, f)
		if err != nil {
			return nil, err
		}
		return ref.GetValue(a)
	case *ast.OptionalChain:
		v, err := interp.evalExpression(n.Expression, f)
		if err == errShortCircuit {
			return runtime.Undefined, nil
		}
		return v, err
	case *ast.CallExpression:
		return interp.evalCall(n, f)
	case *ast.NewExpression:
		return interp.evalNew(n, f)
	case *ast.TaggedTemplateExpression:
		return interp.evalTaggedTemplate(n, f)
	case *ast.YieldExpression:
		if n.Delegate {
			return interp.evalYieldStar(n, f)
		}
		return interp.evalYield(n, f)
	case *ast.AwaitExpression:
		return interp.evalAwait(n, f)
	}
	return nil, a.NewSyntaxError("unexpected %s in expression position", describeNode(e))
}

// describeNode names a node for error messages.
func describeNode(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Identifier:
		return v.Value
	case *ast.ThisExpression:
		return "this"
	case *ast.SuperExpression:
		return "super"
	case *ast.MemberExpression:
		obj := describeNode(v.Object)
		switch p := v.Property.(type) {
		case *ast.Identifier:
			if !v.Computed {
				return obj + "." + p.Value
			}
		case *ast.PrivateIdentifier:
			return obj + "." + p.Name
		}
		return obj + "[...]"
	case *ast.CallExpression:
		return describeNode(v.Callee) + "(...)"
	case *ast.OptionalChain:
		return describeNode(v.Expression)
	case *ast.SpreadElement:
		return "spread element"
	case *ast.PrivateIdentifier:
		return v.Name
	}
	return "expression"
}

func (interp *Interpreter) evalTemplateLiteral(n *ast.TemplateLiteralExpr, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.state(n)
	if s.v == nil {
		s.v = runtime.EmptyStr
	}
	for s.n < len(n.Quasis) {
		i := s.n
		str := runtime.ConcatStrings(s.v.Str, runtime.StringFromWTF8(n.Quasis[i].Value))
		if i < len(n.Expressions) {
			v, err := interp.evalExpression(n.Expressions[i], f)
			if err != nil {
				return nil, err
			}
			sv, err := runtime.ToString(a, v)
			if err != nil {
				return nil, err
			}
			str = runtime.ConcatStrings(str, sv)
		}
		s.v = runtime.NewUString(str)
		s.n++
	}
	return s.v, nil
}

// hole marks an elision in the element list of an array literal.
var hole = &runtime.Value{Type: runtime.TypeUndefined}

func (interp *Interpreter) evalArrayLiteral(n *ast.ArrayLiteral, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.state(n)
	for s.n < len(n.Elements) {
		switch el := n.Elements[s.n].(type) {
		case nil:
			s.list = append(s.list, hole)
		case *ast.SpreadElement:
			v, err := interp.evalExpression(el.Argument, f)
			if err != nil {
				return nil, err
			}
			vals, err := runtime.IterableToList(a, v)
			if err != nil {
				return nil, err
			}
			s.list = append(s.list, vals...)
		default:
			v, err := interp.evalExpression(el, f)
			if err != nil {
				return nil, err
			}
			s.list = append(s.list, v)
		}
		s.n++
	}
	arr := runtime.ArrayCreate(a, uint32(len(s.list)), nil)
	for i, v := range s.list {
		if v == hole {
			continue
		}
		must(runtime.CreateDataPropertyOrThrow(a, arr, runtime.IndexKey(int64(i)), v))
	}
	return runtime.NewObject(arr), nil
}

// evalPropertyKey evaluates the key of an object literal property, class
// element or destructuring property.
func (interp *Interpreter) evalPropertyKey(key ast.Expression, computed bool, f *frame) (runtime.PropertyKey, error) {
	a := interp.agent
	if c, ok := key.(*ast.ComputedPropertyName); ok {
		key, computed = c.Expression, true
	}
	if computed {
		v, err := interp.evalExpression(key, f)
		if err != nil {
			return runtime.PropertyKey{}, err
		}
		return runtime.ToPropertyKey(a, v)
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return runtime.StrKey(k.Value), nil
	case *ast.StringLiteral:
		return runtime.StrKey(k.Value), nil
	case *ast.NumberLiteral:
		return runtime.StrKey(runtime.NumberToString(k.Value)), nil
	case *ast.BigIntLiteral:
		b, ok := runtime.StringToBigInt(k.Digits)
		if !ok {
			return runtime.PropertyKey{}, a.NewSyntaxError("Invalid BigInt literal %s", k.Digits)
		}
		return runtime.StrKey(b.String()), nil
	}
	return runtime.PropertyKey{}, a.NewSyntaxError("invalid property name")
}

func isProtoSetter(p *ast.Property) bool {
	if p.Computed || p.Shorthand || p.Method || p.Kind != "init" {
		return false
	}
	switch k := p.Key.(type) {
	case *ast.Identifier:
		return k.Value == "__proto__"
	case *ast.StringLiteral:
		return k.Value == "__proto__"
	}
	return false
}

func (interp *Interpreter) evalObjectLiteral(n *ast.ObjectLiteral, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.state(n)
	if s.obj == nil {
		s.obj = a.NewPlainObject()
	}
	obj := s.obj
	for s.n < len(n.Properties) {
		p := n.Properties[s.n]
		if err := interp.defineLiteralProperty(obj, p, s, f); err != nil {
			return nil, err
		}
		s.vals = s.vals[:0]
		s.n++
	}
	return runtime.NewObject(obj), nil
}

// defineLiteralProperty is PropertyDefinitionEvaluation of one property.
// The evaluated key is kept in s across a suspension in the value.
func (interp *Interpreter) defineLiteralProperty(obj *runtime.Object, p *ast.Property, s *slot, f *frame) error {
	a := interp.agent
	if spread, ok := p.Key.(*ast.SpreadElement); ok {
		v, err := interp.evalExpression(spread.Argument, f)
		if err != nil {
			return err
		}
		return runtime.CopyDataProperties(a, obj, v, nil)
	}
	if _, ok := p.Value.(*ast.AssignmentPattern); ok {
		return a.NewSyntaxError("Invalid shorthand property initializer")
	}
	var key runtime.PropertyKey
	if kv, ok := s.memo(0); ok {
		key = runtime.Must(runtime.ToPropertyKey(a, kv))
	} else {
		k, err := interp.evalPropertyKey(p.Key, p.Computed, f)
		if err != nil {
			return err
		}
		key = k
		s.record(0, k.ToValue())
	}
	if p.Method || p.Kind == "get" || p.Kind == "set" {
		fe := p.Value.(*ast.FunctionExpression)
		F := interp.defineMethod(fe, obj, f)
		switch p.Kind {
		case "get":
			setFunctionName(F, key, "get")
			return runtime.DefinePropertyOrThrow(a, obj, key, runtime.PropertyDescriptor{
				Get: runtime.NewObject(F), HasGet: true,
				Enumerable: true, HasEnumerable: true, Configurable: true, HasConfigurable: true,
			})
		case "set":
			setFunctionName(F, key, "set")
			return runtime.DefinePropertyOrThrow(a, obj, key, runtime.PropertyDescriptor{
				Set: runtime.NewObject(F), HasSet: true,
				Enumerable: true, HasEnumerable: true, Configurable: true, HasConfigurable: true,
			})
		}
		setFunctionName(F, key, "")
		return runtime.DefinePropertyOrThrow(a, obj, key, runtime.DataDescriptor(runtime.NewObject(F), true, true, true))
	}
	if isProtoSetter(p) {
		v, err := interp.evalExpression(p.Value, f)
		if err != nil {
			return err
		}
		if v.IsObject() || v.IsNull() {
			var proto *runtime.Object
			if v.IsObject() {
				proto = v.Object
			}
			if _, err := obj.SetPrototypeOf(a, proto); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := interp.evalNamed(p.Value, key, f)
	if err != nil {
		return err
	}
	return runtime.CreateDataPropertyOrThrow(a, obj, key, v)
}

func (interp *Interpreter) evalUnary(n *ast.UnaryExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	switch n.Operator {
	case "typeof":
		if id, ok := n.Operand.(*ast.Identifier); ok {
			ref, err := runtime.GetIdentifierReference(a, f.env(), id.Value, f.strict)
			if err != nil {
				return nil, err
			}
			if ref.Unresolvable {
				return runtime.NewString("undefined"), nil
			}
			v, err := ref.GetValue(a)
			if err != nil {
				return nil, err
			}
			return runtime.NewString(runtime.TypeOf(v)), nil
		}
		v, err := interp.evalExpression(n.Operand, f)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(runtime.TypeOf(v)), nil
	case "delete":
		return interp.evalDelete(n.Operand, f)
	}
	v, err := interp.evalExpression(n.Operand, f)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "void":
		return runtime.Undefined, nil
	case "!":
		return runtime.NewBool(!v.ToBoolean()), nil
	case "+":
		num, err := runtime.ToNumber(a, v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(num), nil
	case "-":
		num, err := runtime.ToNumeric(a, v)
		if err != nil {
			return nil, err
		}
		if num.IsBigInt() {
			return runtime.NewBigInt(new(big.Int).Neg(num.BigInt)), nil
		}
		return runtime.NewNumber(-num.Number), nil
	case "~":
		num, err := runtime.ToNumeric(a, v)
		if err != nil {
			return nil, err
		}
		if num.IsBigInt() {
			return runtime.NewBigInt(new(big.Int).Not(num.BigInt)), nil
		}
		return runtime.NewNumber(float64(^runtime.Int32(num.Number))), nil
	}
	return nil, a.NewSyntaxError("unknown unary operator %s", n.Operator)
}

func (interp *Interpreter) evalDelete(operand ast.Expression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	switch t := operand.(type) {
	case *ast.Identifier:
		ref, err := runtime.GetIdentifierReference(a, f.env(), t.Value, f.strict)
		if err != nil {
			return nil, err
		}
		if ref.Unresolvable {
			return runtime.True, nil
		}
		ok, err := ref.Env.DeleteBinding(a, t.Value)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	case *ast.OptionalChain:
		v, err := interp.evalDelete(t.Expression, f)
		if err == errShortCircuit {
			return runtime.True, nil
		}
		return v, err
	case *ast.MemberExpression:
		ref, err := interp.evalReference(t, f)
		if err != nil {
			return nil, err
		}
		if ref.IsSuperReference() {
			return nil, a.NewReferenceError("Unsupported reference to 'super'")
		}
		base, err := runtime.ToObject(a, ref.Base)
		if err != nil {
			return nil, err
		}
		ok, err := base.Delete(a, ref.Name)
		if err != nil {
			return nil, err
		}
		if !ok && ref.Strict {
			return nil, a.NewTypeError("Cannot delete property '%s' of %s", ref.Name.String(), ref.Base.String())
		}
		return runtime.NewBool(ok), nil
	}
	if _, err := interp.evalExpression(operand, f); err != nil {
		return nil, err
	}
	return runtime.True, nil
}

func (interp *Interpreter) evalUpdate(n *ast.UpdateExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	ref, err := interp.evalReference(n.Operand, f)
	if err != nil {
		return nil, err
	}
	v, err := ref.GetValue(a)
	if err != nil {
		return nil, err
	}
	old, err := runtime.ToNumeric(a, v)
	if err != nil {
		return nil, err
	}
	var next *runtime.Value
	if old.IsBigInt() {
		z := new(big.Int)
		if n.Operator == "++" {
			z.Add(old.BigInt, big.NewInt(1))
		} else {
			z.Sub(old.BigInt, big.NewInt(1))
		}
		next = runtime.NewBigInt(z)
	} else if n.Operator == "++" {
		next = runtime.NewNumber(old.Number + 1)
	} else {
		next = runtime.NewNumber(old.Number - 1)
	}
	if err := ref.PutValue(a, next); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return old, nil
}

func (interp *Interpreter) evalBinary(n *ast.BinaryExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.slot(n)
	if p, ok := n.Left.(*ast.PrivateIdentifier); ok && n.Operator == "in" {
		r, err := interp.evalExpression(n.Right, f)
		if err != nil {
			return nil, err
		}
		if !r.IsObject() {
			return nil, a.NewTypeError("Cannot use 'in' operator to search for '%s' in %s", p.Name, r.String())
		}
		name := f.ctx.PrivateEnvironment.Resolve(p.Name)
		return runtime.NewBool(name != nil && r.Object.PrivateElementFind(name) != nil), nil
	}
	l, err := interp.operand(s, 0, n.Left, f)
	if err != nil {
		return nil, err
	}
	r, err := interp.evalExpression(n.Right, f)
	if err != nil {
		return nil, err
	}
	return interp.applyBinary(n.Operator, l, r)
}

// applyBinary applies a non-short-circuiting binary operator.
func (interp *Interpreter) applyBinary(op string, l, r *runtime.Value) (*runtime.Value, error) {
	a := interp.agent
	switch op {
	case "===":
		return runtime.NewBool(runtime.IsStrictlyEqual(l, r)), nil
	case "!==":
		return runtime.NewBool(!runtime.IsStrictlyEqual(l, r)), nil
	case "==", "!=":
		eq, err := runtime.IsLooselyEqual(a, l, r)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(eq == (op == "==")), nil
	case "<":
		return relational(runtime.IsLessThan(a, l, r, true))
	case ">":
		return relational(runtime.IsLessThan(a, r, l, false))
	case "<=":
		return negatedRelational(runtime.IsLessThan(a, r, l, false))
	case ">=":
		return negatedRelational(runtime.IsLessThan(a, l, r, true))
	case "instanceof":
		b, err := runtime.InstanceofOperator(a, l, r)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(b), nil
	case "in":
		if !r.IsObject() {
			return nil, a.NewTypeError("Cannot use 'in' operator to search for '%s' in %s", l.String(), r.String())
		}
		key, err := runtime.ToPropertyKey(a, l)
		if err != nil {
			return nil, err
		}
		b, err := r.Object.HasProperty(a, key)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(b), nil
	}
	return runtime.ApplyStringOrNumericBinaryOperator(a, l, op, r)
}

func relational(r *runtime.Value, err error) (*runtime.Value, error) {
	if err != nil {
		return nil, err
	}
	if r.IsUndefined() {
		return runtime.False, nil
	}
	return r, nil
}

func negatedRelational(r *runtime.Value, err error) (*runtime.Value, error) {
	if err != nil {
		return nil, err
	}
	if r.IsUndefined() || r.ToBoolean() {
		return runtime.False, nil
	}
	return runtime.True, nil
}

// shortCircuits reports whether the left operand of a logical operator
// decides its result.
func shortCircuits(op string, l *runtime.Value) bool {
	switch op {
	case "&&", "&&=":
		return !l.ToBoolean()
	case "||", "||=":
		return l.ToBoolean()
	}
	return !l.IsNullish()
}

func (interp *Interpreter) evalLogical(n ast.Node, op string, left, right ast.Expression, f *frame) (*runtime.Value, error) {
	s := f.slot(n)
	l, err := interp.operand(s, 0, left, f)
	if err != nil {
		return nil, err
	}
	if shortCircuits(op, l) {
		return l, nil
	}
	return interp.evalExpression(right, f)
}

func (interp *Interpreter) evalAssignment(n *ast.AssignmentExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.slot(n)
	if n.Operator == "=" {
		switch n.Left.(type) {
		case *ast.ObjectPattern, *ast.ArrayPattern:
			v, err := interp.evalExpression(n.Right, f)
			if err != nil {
				return nil, err
			}
			if err := interp.bindPattern(n.Left, v, nil, f); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	ref, err := interp.memoReference(s, n.Left, f)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "=":
		v, err := interp.evalAssigned(n, f)
		if err != nil {
			return nil, err
		}
		return v, ref.PutValue(a, v)
	case "&&=", "||=", "??=":
		l, err := interp.memoValue(s, 0, ref)
		if err != nil {
			return nil, err
		}
		if shortCircuits(n.Operator, l) {
			return l, nil
		}
		v, err := interp.evalAssigned(n, f)
		if err != nil {
			return nil, err
		}
		return v, ref.PutValue(a, v)
	}
	l, err := interp.memoValue(s, 0, ref)
	if err != nil {
		return nil, err
	}
	r, err := interp.evalExpression(n.Right, f)
	if err != nil {
		return nil, err
	}
	v, err := interp.applyBinary(n.Operator[:len(n.Operator)-1], l, r)
	if err != nil {
		return nil, err
	}
	return v, ref.PutValue(a, v)
}

// evalAssigned evaluates the right side of an assignment, naming an
// anonymous function after a plain identifier target.
func (interp *Interpreter) evalAssigned(n *ast.AssignmentExpression, f *frame) (*runtime.Value, error) {
	if id, ok := n.Left.(*ast.Identifier); ok {
		return interp.evalNamed(n.Right, runtime.StrKey(id.Value), f)
	}
	return interp.evalExpression(n.Right, f)
}

// memoReference evaluates target as a reference once per activation of
// the node owning s.
func (interp *Interpreter) memoReference(s *slot, target ast.Expression, f *frame) (*runtime.Reference, error) {
	if s != nil && s.ref != nil {
		return s.ref, nil
	}
	ref, err := interp.evalReference(target, f)
	if err != nil {
		return nil, err
	}
	if s != nil {
		s.ref = ref
	}
	return ref, nil
}

func (interp *Interpreter) memoValue(s *slot, i int, ref *runtime.Reference) (*runtime.Value, error) {
	if v, ok := s.memo(i); ok {
		return v, nil
	}
	v, err := ref.GetValue(interp.agent)
	if err != nil {
		return nil, err
	}
	s.record(i, v)
	return v, nil
}
