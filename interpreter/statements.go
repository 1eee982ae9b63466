package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// execStatement evaluates a statement and forgets its progress record once
// it has completed.
func (interp *Interpreter) execStatement(stmt ast.Statement, f *frame) runtime.Completion {
	return interp.execLabelled(stmt, nil, f)
}

// execLabelled is LabelledEvaluation: labels is the label set of the
// enclosing labelled statements.
func (interp *Interpreter) execLabelled(stmt ast.Statement, labels []string, f *frame) runtime.Completion {
	c := interp.dispatchStatement(stmt, labels, f)
	if c.Type == runtime.Suspend {
		return c
	}
	f.release(stmt)
	switch stmt.(type) {
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement, *ast.ForInStatement, *ast.ForOfStatement, *ast.SwitchStatement:
		if runtime.BreaksTo(c, nil, true) {
			return runtime.NormalCompletion(orUndefined(c.Value))
		}
	}
	return c
}

func (interp *Interpreter) dispatchStatement(stmt ast.Statement, labels []string, f *frame) runtime.Completion {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		v, err := interp.evalExpression(s.Expression, f)
		if err != nil {
			return completionOf(err)
		}
		return runtime.NormalCompletion(v)
	case *ast.VariableDeclaration:
		return interp.execVariableDeclaration(s, f)
	case *ast.BlockStatement:
		return interp.execBlock(s, f)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return runtime.NormalCompletion(nil)
	case *ast.IfStatement:
		return interp.execIf(s, f)
	case *ast.WhileStatement:
		return interp.execWhile(s, labels, f)
	case *ast.DoWhileStatement:
		return interp.execDoWhile(s, labels, f)
	case *ast.ForStatement:
		return interp.execFor(s, labels, f)
	case *ast.ForInStatement:
		return interp.execForIn(s, labels, f)
	case *ast.ForOfStatement:
		return interp.execForOf(s, labels, f)
	case *ast.SwitchStatement:
		return interp.execSwitch(s, f)
	case *ast.BreakStatement:
		c := runtime.Completion{Type: runtime.Break}
		if s.Label != nil {
			c.Target = s.Label.Value
		}
		return c
	case *ast.ContinueStatement:
		c := runtime.Completion{Type: runtime.Continue}
		if s.Label != nil {
			c.Target = s.Label.Value
		}
		return c
	case *ast.ReturnStatement:
		return interp.execReturn(s, f)
	case *ast.ThrowStatement:
		v, err := interp.evalExpression(s.Argument, f)
		if err != nil {
			return completionOf(err)
		}
		return interp.agent.ThrowValue(v)
	case *ast.TryStatement:
		return interp.execTry(s, f)
	case *ast.LabeledStatement:
		return interp.execLabeledStatement(s, labels, f)
	case *ast.FunctionDeclaration:
		return interp.execFunctionDeclaration(s, f)
	case *ast.ClassDeclaration:
		return interp.execClassDeclaration(s, f)
	case *ast.WithStatement:
		return interp.execWith(s, f)
	case *ast.ImportDeclaration, *ast.ExportAllDeclaration:
		return runtime.NormalCompletion(nil)
	case *ast.ExportNamedDeclaration:
		if s.Declaration == nil {
			return runtime.NormalCompletion(nil)
		}
		return interp.execStatement(s.Declaration, f)
	case *ast.ExportDefaultDeclaration:
		return interp.execExportDefault(s, f)
	}
	return runtime.ThrowCompletion(interp.agent.NewSyntaxError("unsupported statement %T", stmt))
}

func orUndefined(v *runtime.Value) *runtime.Value {
	if v == nil {
		return runtime.Undefined
	}
	return v
}

// execStatements runs a statement list owned by owner. The value of the
// list is the value of its last statement that produced one.
func (interp *Interpreter) execStatements(owner ast.Node, stmts []ast.Statement, f *frame) runtime.Completion {
	s := f.state(owner)
	for s.n < len(stmts) {
		c := interp.execStatement(stmts[s.n], f)
		if c.Type == runtime.Suspend {
			return c
		}
		if c.Value != nil {
			s.v = c.Value
		}
		if c.IsAbrupt() {
			return runtime.UpdateEmpty(c, s.v)
		}
		s.n++
	}
	return runtime.NormalCompletion(s.v)
}

func (interp *Interpreter) execBlock(b *ast.BlockStatement, f *frame) runtime.Completion {
	if b.Scope == nil {
		return interp.execStatements(b, b.Statements, f)
	}
	s := f.state(b)
	if s.env == nil {
		env := runtime.NewDeclarativeEnvironment(f.env())
		interp.blockDeclarationInstantiation(b.Scope, env, f)
		s.env = env
	}
	defer f.enterEnv(s.env)()
	return interp.execStatements(b, b.Statements, f)
}

func (interp *Interpreter) execVariableDeclaration(d *ast.VariableDeclaration, f *frame) runtime.Completion {
	s := f.state(d)
	for s.n < len(d.Declarations) {
		decl := d.Declarations[s.n]
		if err := interp.execDeclarator(d.Kind, decl, f); err != nil {
			return completionOf(err)
		}
		s.n++
	}
	return runtime.NormalCompletion(nil)
}

func (interp *Interpreter) execDeclarator(kind string, decl *ast.VariableDeclarator, f *frame) error {
	a := interp.agent
	id, simple := decl.Name.(*ast.Identifier)
	if decl.Value == nil {
		if kind == "var" {
			return nil
		}
		// let x; initializes to undefined.
		ref, err := runtime.GetIdentifierReference(a, f.env(), id.Value, f.strict)
		if err != nil {
			return err
		}
		return ref.InitializeReferencedBinding(a, runtime.Undefined)
	}
	if simple {
		ref, err := runtime.GetIdentifierReference(a, f.env(), id.Value, f.strict)
		if err != nil {
			return err
		}
		v, err := interp.evalNamed(decl.Value, runtime.StrKey(id.Value), f)
		if err != nil {
			return err
		}
		if kind == "var" {
			return ref.PutValue(a, v)
		}
		return ref.InitializeReferencedBinding(a, v)
	}
	v, err := interp.evalExpression(decl.Value, f)
	if err != nil {
		return err
	}
	if kind == "var" {
		return interp.bindPattern(decl.Name, v, nil, f)
	}
	return interp.bindPattern(decl.Name, v, f.env(), f)
}

func (interp *Interpreter) execIf(n *ast.IfStatement, f *frame) runtime.Completion {
	s := f.state(n)
	if s.step == 0 {
		v, err := interp.evalExpression(n.Condition, f)
		if err != nil {
			return completionOf(err)
		}
		if v.ToBoolean() {
			s.step = 1
		} else {
			s.step = 2
		}
	}
	var c runtime.Completion
	switch {
	case s.step == 1:
		c = interp.execStatement(n.Consequence, f)
	case n.Alternative != nil:
		c = interp.execStatement(n.Alternative, f)
	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
	if c.Type == runtime.Suspend {
		return c
	}
	return runtime.UpdateEmpty(c, runtime.Undefined)
}

func (interp *Interpreter) execReturn(n *ast.ReturnStatement, f *frame) runtime.Completion {
	if n.Value == nil {
		return runtime.ReturnCompletion(runtime.Undefined)
	}
	s := f.slot(n)
	if s == nil || f.kind() != kindAsyncGenerator {
		v, err := interp.evalExpression(n.Value, f)
		if err != nil {
			return completionOf(err)
		}
		return runtime.ReturnCompletion(v)
	}
	// return in an async generator awaits its operand.
	switch s.step {
	case 0:
		v, err := interp.evalExpression(n.Value, f)
		if err != nil {
			return completionOf(err)
		}
		return completionOf(f.park(s, suspendAwait, v))
	default:
		c := f.take()
		if c.Type == runtime.Throw {
			return c
		}
		return runtime.ReturnCompletion(c.Value)
	}
}

func (interp *Interpreter) execLabeledStatement(n *ast.LabeledStatement, labels []string, f *frame) runtime.Completion {
	label := n.Label.Value
	inner := append(append([]string{}, labels...), label)
	c := interp.execLabelled(n.Body, inner, f)
	if c.Type == runtime.Suspend {
		return c
	}
	if c.Type == runtime.Break && c.Target == label {
		return runtime.NormalCompletion(orUndefined(c.Value))
	}
	return c
}

// execFunctionDeclaration is a no-op apart from the Annex B copy of a
// block-level function into the var scope.
func (interp *Interpreter) execFunctionDeclaration(fd *ast.FunctionDeclaration, f *frame) runtime.Completion {
	if !fd.AnnexB || f.strict {
		return runtime.NormalCompletion(nil)
	}
	a := interp.agent
	name := fd.Name.Value
	if f.env() == f.ctx.VariableEnvironment {
		return runtime.NormalCompletion(nil)
	}
	v, err := f.env().GetBindingValue(a, name, false)
	if err != nil {
		return completionOf(err)
	}
	if err := f.ctx.VariableEnvironment.SetMutableBinding(a, name, v, false); err != nil {
		return completionOf(err)
	}
	return runtime.NormalCompletion(nil)
}

func (interp *Interpreter) execWith(n *ast.WithStatement, f *frame) runtime.Completion {
	s := f.state(n)
	if s.env == nil {
		v, err := interp.evalExpression(n.Object, f)
		if err != nil {
			return completionOf(err)
		}
		obj, err := runtime.ToObject(interp.agent, v)
		if err != nil {
			return completionOf(err)
		}
		s.env = runtime.NewObjectEnvironment(obj, true, f.env())
	}
	defer f.enterEnv(s.env)()
	c := interp.execStatement(n.Body, f)
	if c.Type == runtime.Suspend {
		return c
	}
	return runtime.UpdateEmpty(c, runtime.Undefined)
}

func (interp *Interpreter) execWhile(n *ast.WhileStatement, labels []string, f *frame) runtime.Completion {
	s := f.state(n)
	for {
		if s.step == 0 {
			v, err := interp.evalExpression(n.Condition, f)
			if err != nil {
				return completionOf(err)
			}
			if !v.ToBoolean() {
				return runtime.NormalCompletion(orUndefined(s.v))
			}
			s.step = 1
		}
		c := interp.execStatement(n.Body, f)
		if c.Type == runtime.Suspend {
			return c
		}
		if !runtime.LoopContinues(c, labels) {
			return runtime.UpdateEmpty(c, orUndefined(s.v))
		}
		if c.Value != nil {
			s.v = c.Value
		}
		s.step = 0
	}
}

func (interp *Interpreter) execDoWhile(n *ast.DoWhileStatement, labels []string, f *frame) runtime.Completion {
	s := f.state(n)
	for {
		if s.step == 0 {
			c := interp.execStatement(n.Body, f)
			if c.Type == runtime.Suspend {
				return c
			}
			if !runtime.LoopContinues(c, labels) {
				return runtime.UpdateEmpty(c, orUndefined(s.v))
			}
			if c.Value != nil {
				s.v = c.Value
			}
			s.step = 1
		}
		v, err := interp.evalExpression(n.Condition, f)
		if err != nil {
			return completionOf(err)
		}
		if !v.ToBoolean() {
			return runtime.NormalCompletion(orUndefined(s.v))
		}
		s.step = 0
	}
}

// for statement steps.
const (
	forScope = iota
	forInit
	forTest
	forBody
	forUpdate
)

func (interp *Interpreter) execFor(n *ast.ForStatement, labels []string, f *frame) runtime.Completion {
	a := interp.agent
	s := f.state(n)
	decl, _ := n.Init.(*ast.VariableDeclaration)
	lexical := decl != nil && decl.Kind != "var"
	var perIteration []string
	if lexical && decl.Kind == "let" {
		perIteration = ast.BoundNames(decl)
	}
	if s.step == forScope {
		if lexical {
			loopEnv := runtime.NewDeclarativeEnvironment(f.env())
			for _, name := range ast.BoundNames(decl) {
				if decl.Kind == "const" {
					must(loopEnv.CreateImmutableBinding(a, name, true))
				} else {
					must(loopEnv.CreateMutableBinding(a, name, false))
				}
			}
			s.env = loopEnv
		}
		s.step = forInit
	}
	if s.env != nil {
		defer f.enterEnv(s.env)()
	}
	if s.step == forInit {
		switch init := n.Init.(type) {
		case nil:
		case ast.Statement:
			if c := interp.execStatement(init, f); c.IsAbrupt() {
				return c
			}
		case ast.Expression:
			if _, err := interp.evalExpression(init, f); err != nil {
				return completionOf(err)
			}
		}
		if len(perIteration) > 0 {
			s.env = interp.perIterationEnvironment(s.env, perIteration)
			f.ctx.LexicalEnvironment = s.env
		}
		s.step = forTest
	}
	for {
		switch s.step {
		case forTest:
			if n.Test != nil {
				v, err := interp.evalExpression(n.Test, f)
				if err != nil {
					return completionOf(err)
				}
				if !v.ToBoolean() {
					return runtime.NormalCompletion(orUndefined(s.v))
				}
			}
			s.step = forBody
		case forBody:
			c := interp.execStatement(n.Body, f)
			if c.Type == runtime.Suspend {
				return c
			}
			if !runtime.LoopContinues(c, labels) {
				return runtime.UpdateEmpty(c, orUndefined(s.v))
			}
			if c.Value != nil {
				s.v = c.Value
			}
			if len(perIteration) > 0 {
				s.env = interp.perIterationEnvironment(s.env, perIteration)
				f.ctx.LexicalEnvironment = s.env
			}
			s.step = forUpdate
		case forUpdate:
			if n.Update != nil {
				if _, err := interp.evalExpression(n.Update, f); err != nil {
					return completionOf(err)
				}
			}
			s.step = forTest
		}
	}
}

// perIterationEnvironment copies the let bindings of a for loop into a
// fresh environment so closures of each iteration see their own copy.
func (interp *Interpreter) perIterationEnvironment(last runtime.Environment, names []string) runtime.Environment {
	a := interp.agent
	env := runtime.NewDeclarativeEnvironment(last.Outer())
	for _, name := range names {
		must(env.CreateMutableBinding(a, name, false))
		v := runtime.Must(last.GetBindingValue(a, name, true))
		must(env.InitializeBinding(a, name, v))
	}
	return env
}

// switch statement steps.
const (
	switchDiscriminant = iota
	switchMatch
	switchRun
)

func (interp *Interpreter) execSwitch(n *ast.SwitchStatement, f *frame) runtime.Completion {
	s := f.state(n)
	if s.step == switchDiscriminant {
		v, err := interp.evalExpression(n.Discriminant, f)
		if err != nil {
			return completionOf(err)
		}
		s.record(0, v)
		if n.Scope != nil {
			env := runtime.NewDeclarativeEnvironment(f.env())
			interp.blockDeclarationInstantiation(n.Scope, env, f)
			s.env = env
		}
		s.step = switchMatch
	}
	if s.env != nil {
		defer f.enterEnv(s.env)()
	}
	if s.step == switchMatch {
		discriminant := s.vals[0]
		start := -1
		for ; s.n < len(n.Cases); s.n++ {
			cc := n.Cases[s.n]
			if cc.Test == nil {
				continue
			}
			v, err := interp.evalExpression(cc.Test, f)
			if err != nil {
				return completionOf(err)
			}
			if runtime.IsStrictlyEqual(discriminant, v) {
				start = s.n
				break
			}
		}
		if start < 0 {
			for i, cc := range n.Cases {
				if cc.Test == nil {
					start = i
				}
			}
		}
		if start < 0 {
			return runtime.NormalCompletion(runtime.Undefined)
		}
		s.n = start
		s.step = switchRun
	}
	for ; s.n < len(n.Cases); s.n++ {
		cc := n.Cases[s.n]
		c := interp.execStatements(cc, cc.Consequent, f)
		if c.Type == runtime.Suspend {
			return c
		}
		f.release(cc)
		if c.Value != nil {
			s.v = c.Value
		}
		if c.IsAbrupt() {
			return runtime.UpdateEmpty(c, orUndefined(s.v))
		}
	}
	return runtime.NormalCompletion(orUndefined(s.v))
}

// try statement steps.
const (
	tryBlock = iota
	tryCatch
	tryFinally
)

func (interp *Interpreter) execTry(n *ast.TryStatement, f *frame) runtime.Completion {
	s := f.state(n)
	if s.step == tryBlock {
		c := interp.execStatement(n.Block, f)
		if c.Type == runtime.Suspend {
			return c
		}
		s.comp = c
		s.step = tryFinally
		if c.Type == runtime.Throw && n.Handler != nil {
			s.step = tryCatch
		}
	}
	if s.step == tryCatch {
		c := interp.execCatch(n.Handler, s.comp.Value, f)
		if c.Type == runtime.Suspend {
			return c
		}
		f.release(n.Handler)
		s.comp = c
		s.step = tryFinally
	}
	if n.Finalizer != nil {
		fc := interp.execStatement(n.Finalizer, f)
		if fc.Type == runtime.Suspend {
			return fc
		}
		if fc.Type != runtime.Normal {
			return runtime.UpdateEmpty(fc, runtime.Undefined)
		}
	}
	return runtime.UpdateEmpty(s.comp, runtime.Undefined)
}

func (interp *Interpreter) execCatch(h *ast.CatchClause, thrown *runtime.Value, f *frame) runtime.Completion {
	if h.Param == nil {
		return interp.execStatement(h.Body, f)
	}
	s := f.state(h)
	if s.env == nil {
		a := interp.agent
		catchEnv := runtime.NewDeclarativeEnvironment(f.env())
		for _, name := range ast.BoundNames(h.Param) {
			must(catchEnv.CreateMutableBinding(a, name, false))
		}
		restore := f.enterEnv(catchEnv)
		err := interp.bindPattern(h.Param, thrown, catchEnv, f)
		restore()
		if err != nil {
			return completionOf(err)
		}
		s.env = catchEnv
	}
	defer f.enterEnv(s.env)()
	return interp.execStatement(h.Body, f)
}

func (interp *Interpreter) execClassDeclaration(n *ast.ClassDeclaration, f *frame) runtime.Completion {
	v, err := interp.evalClass(n.Name, n.SuperClass, n.Body, nil, f)
	if err != nil {
		return completionOf(err)
	}
	if err := f.env().InitializeBinding(interp.agent, n.Name.Value, v); err != nil {
		return completionOf(err)
	}
	return runtime.NormalCompletion(nil)
}

func (interp *Interpreter) execExportDefault(n *ast.ExportDefaultDeclaration, f *frame) runtime.Completion {
	a := interp.agent
	switch d := n.Declaration.(type) {
	case *ast.FunctionDeclaration:
		return runtime.NormalCompletion(nil)
	case *ast.ClassDeclaration:
		className := d.Name
		if className.Value == "*default*" {
			className = nil
		}
		key := runtime.StrKey("default")
		v, err := interp.evalClass(className, d.SuperClass, d.Body, &key, f)
		if err != nil {
			return completionOf(err)
		}
		if err := f.env().InitializeBinding(a, d.Name.Value, v); err != nil {
			return completionOf(err)
		}
		return runtime.NormalCompletion(nil)
	case *ast.ExpressionStatement:
		v, err := interp.evalNamed(d.Expression, runtime.StrKey("default"), f)
		if err != nil {
			return completionOf(err)
		}
		if err := f.env().InitializeBinding(a, "*default*", v); err != nil {
			return completionOf(err)
		}
		return runtime.NormalCompletion(nil)
	}
	return interp.execStatement(n.Declaration, f)
}
