package interpreter

import (
	"github.com/dop251/goja/unistring"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// propertyEnumerator walks the enumerable string keys of an object and its
// prototype chain for for-in. Keys deleted before they are reached are
// skipped, and a key seen once is never produced again even when a
// prototype has it too.
type propertyEnumerator struct {
	obj     *runtime.Object
	visited map[unistring.String]bool
	keys    []runtime.PropertyKey
	loaded  bool
	pos     int
}

func newPropertyEnumerator(obj *runtime.Object) *propertyEnumerator {
	return &propertyEnumerator{obj: obj, visited: map[unistring.String]bool{}}
}

func (e *propertyEnumerator) next(a *runtime.Agent) (*runtime.Value, bool, error) {
	for e.obj != nil {
		if !e.loaded {
			keys, err := e.obj.OwnPropertyKeys(a)
			if err != nil {
				return nil, false, err
			}
			e.keys = e.keys[:0]
			for _, k := range keys {
				if !k.IsSymbol() {
					e.keys = append(e.keys, k)
				}
			}
			e.loaded = true
			e.pos = 0
		}
		for e.pos < len(e.keys) {
			k := e.keys[e.pos]
			e.pos++
			if e.visited[k.Name] {
				continue
			}
			desc, found, err := e.obj.GetOwnProperty(a, k)
			if err != nil {
				return nil, false, err
			}
			if !found {
				continue
			}
			e.visited[k.Name] = true
			if desc.Enumerable {
				return k.ToValue(), true, nil
			}
		}
		proto, err := e.obj.GetPrototypeOf(a)
		if err != nil {
			return nil, false, err
		}
		e.obj = proto
		e.loaded = false
	}
	return nil, false, nil
}

// for-in and for-of steps.
const (
	loopHead = iota
	loopNext
	loopAwaitNext
	loopBind
	loopBody
	loopAwaitClose
)

// evalForHead evaluates the right side of a for-in or for-of. Names the
// loop declares with let or const are in their dead zone meanwhile.
func (interp *Interpreter) evalForHead(left ast.Node, right ast.Expression, f *frame) (*runtime.Value, error) {
	if decl, ok := left.(*ast.VariableDeclaration); ok && decl.Kind != "var" {
		if names := ast.BoundNames(decl); len(names) > 0 {
			tdz := runtime.NewDeclarativeEnvironment(f.env())
			for _, name := range names {
				must(tdz.CreateMutableBinding(interp.agent, name, false))
			}
			defer f.enterEnv(tdz)()
		}
	}
	return interp.evalExpression(right, f)
}

// bindForTarget binds the value of one iteration to the left side of the
// loop. It returns the fresh environment of a let or const declaration.
func (interp *Interpreter) bindForTarget(left ast.Node, v *runtime.Value, f *frame) (runtime.Environment, error) {
	a := interp.agent
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		target := decl.Declarations[0].Name
		if decl.Kind == "var" {
			return nil, interp.bindPattern(target, v, nil, f)
		}
		env := runtime.NewDeclarativeEnvironment(f.env())
		for _, name := range ast.BoundNames(target) {
			if decl.Kind == "const" {
				must(env.CreateImmutableBinding(a, name, true))
			} else {
				must(env.CreateMutableBinding(a, name, false))
			}
		}
		restore := f.enterEnv(env)
		err := interp.bindPattern(target, v, env, f)
		restore()
		return env, err
	}
	target, _ := left.(ast.Expression)
	if p, ok := ast.ToPattern(target); ok {
		target = p
	}
	return nil, interp.bindPattern(target, v, nil, f)
}

// execLoopBody runs the body of a for-in or for-of in the iteration's
// environment.
func (interp *Interpreter) execLoopBody(body ast.Statement, s *slot, f *frame) runtime.Completion {
	if s.env != nil {
		defer f.enterEnv(s.env)()
	}
	return interp.execStatement(body, f)
}

func (interp *Interpreter) execForIn(n *ast.ForInStatement, labels []string, f *frame) runtime.Completion {
	a := interp.agent
	s := f.state(n)
	if s.step == loopHead {
		v, err := interp.evalForHead(n.Left, n.Right, f)
		if err != nil {
			return completionOf(err)
		}
		if v.IsNullish() {
			return runtime.Completion{Type: runtime.Break}
		}
		obj := runtime.Must(runtime.ToObject(a, v))
		s.keys = newPropertyEnumerator(obj)
		s.step = loopNext
	}
	for {
		switch s.step {
		case loopNext:
			key, ok, err := s.keys.next(a)
			if err != nil {
				return completionOf(err)
			}
			if !ok {
				return runtime.NormalCompletion(orUndefined(s.v))
			}
			s.record(0, key)
			s.step = loopBind
		case loopBind:
			env, err := interp.bindForTarget(n.Left, s.vals[0], f)
			if err != nil {
				return completionOf(err)
			}
			s.env = env
			s.step = loopBody
		case loopBody:
			c := interp.execLoopBody(n.Body, s, f)
			if c.Type == runtime.Suspend {
				return c
			}
			s.env = nil
			if !runtime.LoopContinues(c, labels) {
				return runtime.UpdateEmpty(c, orUndefined(s.v))
			}
			if c.Value != nil {
				s.v = c.Value
			}
			s.step = loopNext
		}
	}
}

func (interp *Interpreter) execForOf(n *ast.ForOfStatement, labels []string, f *frame) runtime.Completion {
	a := interp.agent
	s := f.state(n)
	if s.step == loopHead {
		v, err := interp.evalForHead(n.Left, n.Right, f)
		if err != nil {
			return completionOf(err)
		}
		rec, err := runtime.GetIterator(a, v, n.Await)
		if err != nil {
			return completionOf(err)
		}
		s.iter = rec
		s.step = loopNext
	}
	for {
		switch s.step {
		case loopNext:
			if n.Await {
				result, err := runtime.Call(a, s.iter.NextMethod, runtime.NewObject(s.iter.Iterator), nil)
				if err != nil {
					return completionOf(err)
				}
				return completionOf(f.park(s, suspendAwait, result))
			}
			v, done, err := runtime.IteratorStepValue(a, s.iter)
			if err != nil {
				return completionOf(err)
			}
			if done {
				return runtime.NormalCompletion(orUndefined(s.v))
			}
			s.record(0, v)
			s.step = loopBind
		case loopAwaitNext:
			c := f.take()
			if c.Type == runtime.Throw {
				return c
			}
			if !c.Value.IsObject() {
				return runtime.ThrowCompletion(a.NewTypeError("Iterator result %s is not an object", c.Value))
			}
			done, err := runtime.IteratorComplete(a, c.Value.Object)
			if err != nil {
				return completionOf(err)
			}
			if done {
				return runtime.NormalCompletion(orUndefined(s.v))
			}
			v, err := runtime.IteratorValue(a, c.Value.Object)
			if err != nil {
				return completionOf(err)
			}
			s.record(0, v)
			s.step = loopBind
		case loopBind:
			env, err := interp.bindForTarget(n.Left, s.vals[0], f)
			if err != nil {
				return interp.closeLoopIterator(n, s, completionOf(err), f)
			}
			s.env = env
			s.step = loopBody
		case loopBody:
			c := interp.execLoopBody(n.Body, s, f)
			if c.Type == runtime.Suspend {
				return c
			}
			s.env = nil
			if runtime.LoopContinues(c, labels) {
				if c.Value != nil {
					s.v = c.Value
				}
				s.step = loopNext
				continue
			}
			return interp.closeLoopIterator(n, s, runtime.UpdateEmpty(c, orUndefined(s.v)), f)
		case loopAwaitClose:
			c := f.take()
			if s.comp.Type == runtime.Throw {
				return s.comp
			}
			if c.Type == runtime.Throw {
				return c
			}
			if !c.Value.IsObject() {
				return runtime.ThrowCompletion(a.NewTypeError("Iterator result %s is not an object", c.Value))
			}
			return s.comp
		}
	}
}

// closeLoopIterator ends a for-of loop with c by calling the iterator's
// return method. for await awaits the result of return before completing.
func (interp *Interpreter) closeLoopIterator(n *ast.ForOfStatement, s *slot, c runtime.Completion, f *frame) runtime.Completion {
	a := interp.agent
	if !n.Await {
		if err := runtime.IteratorClose(a, s.iter, c.Err()); err != nil {
			return runtime.ThrowCompletion(err)
		}
		return c
	}
	iterator := runtime.NewObject(s.iter.Iterator)
	ret, err := runtime.GetMethod(a, iterator, runtime.StrKey("return"))
	if err != nil {
		if c.Type == runtime.Throw {
			return c
		}
		return runtime.ThrowCompletion(err)
	}
	if ret.IsUndefined() {
		return c
	}
	result, err := runtime.Call(a, ret, iterator, nil)
	if err != nil {
		if c.Type == runtime.Throw {
			return c
		}
		return runtime.ThrowCompletion(err)
	}
	s.comp = c
	s.step = loopBody
	return completionOf(f.park(s, suspendAwait, result))
}
