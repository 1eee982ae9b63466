package interpreter

import (
	"github.com/example/jscore/runtime"
)

type asyncGeneratorState int

const (
	asyncGeneratorSuspendedStart asyncGeneratorState = iota
	asyncGeneratorSuspendedYield
	asyncGeneratorExecuting
	asyncGeneratorAwaitingReturn
	asyncGeneratorCompleted
)

func (s asyncGeneratorState) String() string {
	switch s {
	case asyncGeneratorSuspendedStart:
		return "suspended-start"
	case asyncGeneratorSuspendedYield:
		return "suspended-yield"
	case asyncGeneratorExecuting:
		return "executing"
	case asyncGeneratorAwaitingReturn:
		return "awaiting-return"
	}
	return "completed"
}

const asyncGeneratorSlot = "[[AsyncGeneratorState]]"

// asyncGeneratorRequest is a pending next, return or throw call.
type asyncGeneratorRequest struct {
	completion runtime.Completion
	capability *runtime.PromiseCapability
}

// asyncGenerator is the state of an async generator object. Requests are
// served strictly in order: a request made while the body runs or awaits
// waits in queue until every earlier one has settled.
type asyncGenerator struct {
	state asyncGeneratorState
	frame *frame
	realm *runtime.Realm
	queue []asyncGeneratorRequest
}

func (interp *Interpreter) asyncGeneratorStart(G *runtime.Object, f *frame) {
	G.Kind = runtime.KindAsyncGenerator
	G.SetSlot(asyncGeneratorSlot, &asyncGenerator{
		state: asyncGeneratorSuspendedStart,
		frame: f,
		realm: f.ctx.Realm,
	})
}

func (interp *Interpreter) setAsyncGeneratorState(g *asyncGenerator, s asyncGeneratorState) {
	interp.log.Debugf("async generator %s -> %s (queued %d)", g.state, s, len(g.queue))
	g.state = s
}

// asyncGeneratorEnqueue implements next, return and throw: it queues c
// and returns the promise of its result, starting the body when the
// generator is idle.
func (interp *Interpreter) asyncGeneratorEnqueue(this *runtime.Value, c runtime.Completion, method string) *runtime.Value {
	a := interp.agent
	capability := runtime.NewIntrinsicPromiseCapability(a)
	promise := runtime.NewObject(capability.Promise)
	var g *asyncGenerator
	if this.IsObject() {
		g, _ = this.Object.Slot(asyncGeneratorSlot).(*asyncGenerator)
	}
	if g == nil {
		err := a.NewTypeError("%s method called on incompatible receiver %s", method, this.String())
		runtime.Must(runtime.Call(a, capability.Reject, runtime.Undefined, []*runtime.Value{runtime.ThrownValue(err)}))
		return promise
	}

	state := g.state
	switch c.Type {
	case runtime.Normal:
		if state == asyncGeneratorCompleted {
			result := runtime.CreateIterResultObject(a, runtime.Undefined, true)
			runtime.Must(runtime.Call(a, capability.Resolve, runtime.Undefined, []*runtime.Value{runtime.NewObject(result)}))
			return promise
		}
	case runtime.Throw:
		if state == asyncGeneratorSuspendedStart {
			interp.setAsyncGeneratorState(g, asyncGeneratorCompleted)
			g.frame = nil
			state = asyncGeneratorCompleted
		}
		if state == asyncGeneratorCompleted {
			runtime.Must(runtime.Call(a, capability.Reject, runtime.Undefined, []*runtime.Value{c.Value}))
			return promise
		}
	}

	g.queue = append(g.queue, asyncGeneratorRequest{completion: c, capability: capability})
	switch {
	case c.Type == runtime.Return && (state == asyncGeneratorSuspendedStart || state == asyncGeneratorCompleted):
		g.frame = nil
		interp.setAsyncGeneratorState(g, asyncGeneratorAwaitingReturn)
		interp.asyncGeneratorAwaitReturn(g)
	case state == asyncGeneratorSuspendedStart || state == asyncGeneratorSuspendedYield:
		interp.asyncGeneratorResume(g, c)
	}
	return promise
}

// asyncGeneratorResume runs the body with c delivered at the pending
// yield.
func (interp *Interpreter) asyncGeneratorResume(g *asyncGenerator, c runtime.Completion) {
	if g.state == asyncGeneratorSuspendedYield {
		g.frame.resume = &c
	}
	interp.setAsyncGeneratorState(g, asyncGeneratorExecuting)
	interp.asyncGeneratorLoop(g)
}

// asyncGeneratorLoop runs the body until it awaits, yields with no
// request left to serve, or finishes.
func (interp *Interpreter) asyncGeneratorLoop(g *asyncGenerator) {
	f := g.frame
	for {
		result := interp.run(f, true)
		if result.Type == runtime.Suspend {
			if f.suspended == suspendAwait {
				if interp.await(f, func() { interp.asyncGeneratorLoop(g) }) {
					return
				}
				continue
			}
			interp.asyncGeneratorCompleteStep(g, runtime.NormalCompletion(f.suspendedWith), false, g.realm)
			if len(g.queue) > 0 {
				next := g.queue[0].completion
				f.resume = &next
				continue
			}
			interp.setAsyncGeneratorState(g, asyncGeneratorSuspendedYield)
			return
		}
		interp.setAsyncGeneratorState(g, asyncGeneratorCompleted)
		g.frame = nil
		switch result.Type {
		case runtime.Return:
			result = runtime.NormalCompletion(orUndefined(result.Value))
		case runtime.Throw:
		default:
			result = runtime.NormalCompletion(runtime.Undefined)
		}
		interp.asyncGeneratorCompleteStep(g, result, true, nil)
		interp.asyncGeneratorDrainQueue(g)
		return
	}
}

// asyncGeneratorCompleteStep settles the oldest request with c. Iterator
// results of yields are created in realm when it is set.
func (interp *Interpreter) asyncGeneratorCompleteStep(g *asyncGenerator, c runtime.Completion, done bool, realm *runtime.Realm) {
	a := interp.agent
	runtime.Assert(len(g.queue) > 0, "async generator step completed with an empty queue")
	next := g.queue[0]
	g.queue[0] = asyncGeneratorRequest{}
	g.queue = g.queue[1:]
	if c.Type == runtime.Throw {
		runtime.Must(runtime.Call(a, next.capability.Reject, runtime.Undefined, []*runtime.Value{c.Value}))
		return
	}
	var result *runtime.Object
	if realm != nil {
		restore, err := a.Enter(&runtime.ExecutionContext{Realm: realm})
		if err == nil {
			result = runtime.CreateIterResultObject(a, c.Value, done)
			restore()
		}
	}
	if result == nil {
		result = runtime.CreateIterResultObject(a, c.Value, done)
	}
	runtime.Must(runtime.Call(a, next.capability.Resolve, runtime.Undefined, []*runtime.Value{runtime.NewObject(result)}))
}

// asyncGeneratorAwaitReturn awaits the value of the return request at the
// head of the queue and settles it once the value settles.
func (interp *Interpreter) asyncGeneratorAwaitReturn(g *asyncGenerator) {
	a := interp.agent
	runtime.Assert(len(g.queue) > 0, "awaiting return with an empty queue")
	c := g.queue[0].completion
	p, err := runtime.PromiseResolve(a, nil, c.Value)
	if err != nil {
		interp.setAsyncGeneratorState(g, asyncGeneratorCompleted)
		interp.asyncGeneratorCompleteStep(g, runtime.ThrowCompletion(err), true, nil)
		interp.asyncGeneratorDrainQueue(g)
		return
	}
	runtime.PromiseThen(a, p,
		func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
			interp.setAsyncGeneratorState(g, asyncGeneratorCompleted)
			interp.asyncGeneratorCompleteStep(g, runtime.NormalCompletion(v), true, nil)
			interp.asyncGeneratorDrainQueue(g)
			return runtime.Undefined, nil
		},
		func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
			interp.setAsyncGeneratorState(g, asyncGeneratorCompleted)
			interp.asyncGeneratorCompleteStep(g, a.ThrowValue(v), true, nil)
			interp.asyncGeneratorDrainQueue(g)
			return runtime.Undefined, nil
		})
}

// asyncGeneratorDrainQueue settles the requests left after the body
// finished. A return request awaits its value and resumes draining later.
func (interp *Interpreter) asyncGeneratorDrainQueue(g *asyncGenerator) {
	for len(g.queue) > 0 {
		c := g.queue[0].completion
		switch c.Type {
		case runtime.Return:
			interp.setAsyncGeneratorState(g, asyncGeneratorAwaitingReturn)
			interp.asyncGeneratorAwaitReturn(g)
			return
		case runtime.Throw:
			interp.asyncGeneratorCompleteStep(g, c, true, nil)
		default:
			interp.asyncGeneratorCompleteStep(g, runtime.NormalCompletion(runtime.Undefined), true, nil)
		}
	}
}
