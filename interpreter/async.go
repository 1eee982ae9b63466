package interpreter

import (
	"github.com/example/jscore/runtime"
)

// await subscribes to the settlement of the value the body suspended
// with. When it settles f.resume is set and resume runs as a job. It
// returns false when the value could not be coerced to a promise; f.resume
// then holds the throw completion and the caller replays at once.
func (interp *Interpreter) await(f *frame, resume func()) bool {
	a := interp.agent
	p, err := runtime.PromiseResolve(a, nil, f.suspendedWith)
	if err != nil {
		c := runtime.ThrowCompletion(err)
		f.resume = &c
		return false
	}
	runtime.PromiseThen(a, p,
		func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
			c := runtime.NormalCompletion(v)
			f.resume = &c
			resume()
			return runtime.Undefined, nil
		},
		func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
			c := a.ThrowValue(v)
			f.resume = &c
			resume()
			return runtime.Undefined, nil
		})
	return true
}

// run executes the body of f, entering its context unless it is already
// running.
func (interp *Interpreter) run(f *frame, enter bool) runtime.Completion {
	if !enter {
		return interp.execBody(f)
	}
	restore, err := interp.agent.Enter(f.ctx)
	if err != nil {
		return runtime.ThrowCompletion(err)
	}
	defer restore()
	return interp.execBody(f)
}

// asyncRun drives an async function body: it runs until the body awaits,
// resumes it from the promise jobs and finally settles capability. The
// first run happens inside the caller's activation, so enter is false.
func (interp *Interpreter) asyncRun(f *frame, capability *runtime.PromiseCapability, enter bool) {
	a := interp.agent
	for {
		result := interp.run(f, enter)
		if result.Type == runtime.Suspend {
			if interp.await(f, func() { interp.asyncRun(f, capability, true) }) {
				return
			}
			continue
		}
		switch result.Type {
		case runtime.Throw:
			runtime.Must(runtime.Call(a, capability.Reject, runtime.Undefined, []*runtime.Value{result.Value}))
		case runtime.Return:
			runtime.Must(runtime.Call(a, capability.Resolve, runtime.Undefined, []*runtime.Value{orUndefined(result.Value)}))
		default:
			runtime.Must(runtime.Call(a, capability.Resolve, runtime.Undefined, []*runtime.Value{runtime.Undefined}))
		}
		return
	}
}
