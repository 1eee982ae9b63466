package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

type generatorState int

const (
	generatorSuspendedStart generatorState = iota
	generatorSuspendedYield
	generatorExecuting
	generatorCompleted
)

func (s generatorState) String() string {
	switch s {
	case generatorSuspendedStart:
		return "suspended-start"
	case generatorSuspendedYield:
		return "suspended-yield"
	case generatorExecuting:
		return "executing"
	}
	return "completed"
}

const generatorSlot = "[[GeneratorState]]"

// generator is the state of a generator object: where it stands and the
// frame its body resumes in.
type generator struct {
	state generatorState
	frame *frame
}

func (interp *Interpreter) generatorStart(G *runtime.Object, f *frame) {
	G.Kind = runtime.KindGenerator
	G.SetSlot(generatorSlot, &generator{state: generatorSuspendedStart, frame: f})
}

func (interp *Interpreter) generatorValidate(this *runtime.Value, method string) (*generator, error) {
	a := interp.agent
	if this.IsObject() {
		if g, ok := this.Object.Slot(generatorSlot).(*generator); ok {
			if g.state == generatorExecuting {
				return nil, a.NewTypeError("Generator is already running")
			}
			return g, nil
		}
	}
	return nil, a.NewTypeError("%s method called on incompatible receiver %s", method, this.String())
}

func (interp *Interpreter) setGeneratorState(g *generator, s generatorState) {
	interp.log.Debugf("generator %s -> %s", g.state, s)
	g.state = s
}

// generatorResume delivers c to the generator and runs its body to the
// next yield or to completion.
func (interp *Interpreter) generatorResume(this *runtime.Value, c runtime.Completion, method string) (*runtime.Value, error) {
	a := interp.agent
	g, err := interp.generatorValidate(this, method)
	if err != nil {
		return nil, err
	}
	if c.Type != runtime.Normal && g.state == generatorSuspendedStart {
		interp.setGeneratorState(g, generatorCompleted)
		g.frame = nil
	}
	if g.state == generatorCompleted {
		switch c.Type {
		case runtime.Return:
			return runtime.NewObject(runtime.CreateIterResultObject(a, c.Value, true)), nil
		case runtime.Throw:
			return nil, c.Err()
		}
		return runtime.NewObject(runtime.CreateIterResultObject(a, runtime.Undefined, true)), nil
	}
	f := g.frame
	if g.state == generatorSuspendedYield {
		f.resume = &c
	}
	restore, err := a.Enter(f.ctx)
	if err != nil {
		return nil, err
	}
	interp.setGeneratorState(g, generatorExecuting)
	result := interp.execBody(f)
	restore()
	if result.Type == runtime.Suspend {
		interp.setGeneratorState(g, generatorSuspendedYield)
		if f.suspended == suspendYieldRaw {
			return f.suspendedWith, nil
		}
		return runtime.NewObject(runtime.CreateIterResultObject(a, f.suspendedWith, false)), nil
	}
	interp.setGeneratorState(g, generatorCompleted)
	g.frame = nil
	switch result.Type {
	case runtime.Throw:
		return nil, result.Err()
	case runtime.Return:
		return runtime.NewObject(runtime.CreateIterResultObject(a, orUndefined(result.Value), true)), nil
	}
	return runtime.NewObject(runtime.CreateIterResultObject(a, runtime.Undefined, true)), nil
}

// evalYield suspends a generator at yield. In an async generator the
// operand is awaited before it is yielded and a return delivered at the
// yield awaits its value.
func (interp *Interpreter) evalYield(n *ast.YieldExpression, f *frame) (*runtime.Value, error) {
	s := f.slot(n)
	runtime.Assert(s != nil, "yield outside a pausable body")
	async := f.kind() == kindAsyncGenerator
	switch s.step {
	case 0:
		v := runtime.Undefined
		if n.Argument != nil {
			var err error
			if v, err = interp.evalExpression(n.Argument, f); err != nil {
				return nil, err
			}
		}
		if async {
			return nil, f.park(s, suspendAwait, v)
		}
		return nil, f.park(s, suspendYield, v)
	case 1:
		c := f.take()
		if !async {
			return valueOf(c)
		}
		if c.Type == runtime.Throw {
			return nil, c.Err()
		}
		return nil, f.park(s, suspendYield, c.Value)
	case 2:
		c := f.take()
		if c.Type != runtime.Return {
			return valueOf(c)
		}
		return nil, f.park(s, suspendAwait, c.Value)
	default:
		c := f.take()
		if c.Type == runtime.Throw {
			return nil, c.Err()
		}
		return nil, &returnSignal{value: c.Value}
	}
}

func (interp *Interpreter) evalAwait(n *ast.AwaitExpression, f *frame) (*runtime.Value, error) {
	s := f.slot(n)
	runtime.Assert(s != nil, "await outside a pausable body")
	if s.step == 0 {
		v, err := interp.evalExpression(n.Argument, f)
		if err != nil {
			return nil, err
		}
		return nil, f.park(s, suspendAwait, v)
	}
	return valueOf(f.take())
}

// yield* steps.
const (
	delegateStart = iota
	delegateDispatch
	delegateAwaitInner
	delegateInner
	delegateAwaitReturnInner
	delegateReturnInner
	delegateAwaitReturnValue
	delegateYielded
	delegateAwaitReceivedReturn
	delegateAwaitClose
)

// evalYieldStar forwards next, throw and return to an inner iterator
// until it is done. s.comp is the completion most recently received by
// the outer generator.
func (interp *Interpreter) evalYieldStar(n *ast.YieldExpression, f *frame) (*runtime.Value, error) {
	a := interp.agent
	s := f.slot(n)
	runtime.Assert(s != nil, "yield* outside a pausable body")
	async := f.kind() == kindAsyncGenerator
	if s.step == delegateStart {
		v, err := interp.evalExpression(n.Argument, f)
		if err != nil {
			return nil, err
		}
		rec, err := runtime.GetIterator(a, v, async)
		if err != nil {
			return nil, err
		}
		s.iter = rec
		s.comp = runtime.NormalCompletion(runtime.Undefined)
		s.step = delegateDispatch
	}
	iterator := runtime.NewObject(s.iter.Iterator)
	// yieldInner hands a non-final inner result to the caller.
	yieldInner := func(r *runtime.Object) error {
		if !async {
			return f.suspendTo(s, delegateYielded, suspendYieldRaw, runtime.NewObject(r))
		}
		v, err := runtime.IteratorValue(a, r)
		if err != nil {
			return err
		}
		return f.suspendTo(s, delegateYielded, suspendYield, v)
	}
	for {
		switch s.step {
		case delegateDispatch:
			received := s.comp
			switch received.Type {
			case runtime.Normal:
				r, err := runtime.Call(a, s.iter.NextMethod, iterator, []*runtime.Value{orUndefined(received.Value)})
				if err != nil {
					return nil, err
				}
				if async {
					return nil, f.suspendTo(s, delegateAwaitInner, suspendAwait, r)
				}
				s.record(0, r)
				s.step = delegateInner
			case runtime.Throw:
				throw, err := runtime.GetMethod(a, iterator, runtime.StrKey("throw"))
				if err != nil {
					return nil, err
				}
				if throw.IsUndefined() {
					if !async {
						if err := runtime.IteratorClose(a, s.iter, nil); err != nil {
							return nil, err
						}
						return nil, a.NewTypeError("The iterator does not provide a 'throw' method")
					}
					ret, err := runtime.GetMethod(a, iterator, runtime.StrKey("return"))
					if err != nil {
						return nil, err
					}
					if ret.IsUndefined() {
						return nil, a.NewTypeError("The iterator does not provide a 'throw' method")
					}
					r, err := runtime.Call(a, ret, iterator, nil)
					if err != nil {
						return nil, err
					}
					return nil, f.suspendTo(s, delegateAwaitClose, suspendAwait, r)
				}
				r, err := runtime.Call(a, throw, iterator, []*runtime.Value{received.Value})
				if err != nil {
					return nil, err
				}
				if async {
					return nil, f.suspendTo(s, delegateAwaitInner, suspendAwait, r)
				}
				s.record(0, r)
				s.step = delegateInner
			case runtime.Return:
				ret, err := runtime.GetMethod(a, iterator, runtime.StrKey("return"))
				if err != nil {
					return nil, err
				}
				if ret.IsUndefined() {
					if async {
						return nil, f.suspendTo(s, delegateAwaitReturnValue, suspendAwait, received.Value)
					}
					return nil, &returnSignal{value: received.Value}
				}
				r, err := runtime.Call(a, ret, iterator, []*runtime.Value{received.Value})
				if err != nil {
					return nil, err
				}
				if async {
					return nil, f.suspendTo(s, delegateAwaitReturnInner, suspendAwait, r)
				}
				s.record(0, r)
				s.step = delegateReturnInner
			}
		case delegateAwaitInner, delegateAwaitReturnInner:
			c := f.take()
			if c.Type == runtime.Throw {
				return nil, c.Err()
			}
			s.record(0, c.Value)
			s.step++
		case delegateInner, delegateReturnInner:
			r := s.vals[0]
			if !r.IsObject() {
				return nil, a.NewTypeError("Iterator result %s is not an object", r.String())
			}
			done, err := runtime.IteratorComplete(a, r.Object)
			if err != nil {
				return nil, err
			}
			if !done {
				return nil, yieldInner(r.Object)
			}
			v, err := runtime.IteratorValue(a, r.Object)
			if err != nil {
				return nil, err
			}
			if s.step == delegateInner {
				return v, nil
			}
			if async {
				return nil, f.suspendTo(s, delegateAwaitReturnValue, suspendAwait, v)
			}
			return nil, &returnSignal{value: v}
		case delegateAwaitReturnValue:
			c := f.take()
			if c.Type == runtime.Throw {
				return nil, c.Err()
			}
			return nil, &returnSignal{value: c.Value}
		case delegateYielded:
			c := f.take()
			if async && c.Type == runtime.Return {
				return nil, f.suspendTo(s, delegateAwaitReceivedReturn, suspendAwait, c.Value)
			}
			s.comp = c
			s.step = delegateDispatch
		case delegateAwaitReceivedReturn:
			c := f.take()
			if c.Type == runtime.Throw {
				s.comp = c
			} else {
				s.comp = runtime.ReturnCompletion(c.Value)
			}
			s.step = delegateDispatch
		case delegateAwaitClose:
			c := f.take()
			if c.Type == runtime.Throw {
				return nil, c.Err()
			}
			if !c.Value.IsObject() {
				return nil, a.NewTypeError("Iterator result %s is not an object", c.Value.String())
			}
			return nil, a.NewTypeError("The iterator does not provide a 'throw' method")
		}
	}
}
