package runtime

import (
	"github.com/dop251/goja/unistring"
	"github.com/tliron/commonlog"
)

const (
	DefaultMaxCallDepth    = 4000
	DefaultMaxJobsPerDrain = 1000000
)

// Options configures an Agent.
type Options struct {
	MaxCallDepth    int
	MaxJobsPerDrain int
	Host            Host
}

// Agent is a single thread of guest execution: the context stack, the job
// queue and the host hooks. It is not safe for concurrent use.
type Agent struct {
	Host            Host
	Log             commonlog.Logger
	MaxCallDepth    int
	MaxJobsPerDrain int

	stack          []*ExecutionContext
	jobs           []Job
	symbolRegistry map[unistring.String]*Symbol
	realm          *Realm
	visiting       map[*Object]bool
}

func NewAgent(opts Options) *Agent {
	a := &Agent{
		Host:            opts.Host,
		Log:             commonlog.GetLogger("jscore.agent"),
		MaxCallDepth:    opts.MaxCallDepth,
		MaxJobsPerDrain: opts.MaxJobsPerDrain,
		symbolRegistry:  make(map[unistring.String]*Symbol),
	}
	if a.Host == nil {
		a.Host = DefaultHost{}
	}
	if a.MaxCallDepth <= 0 {
		a.MaxCallDepth = DefaultMaxCallDepth
	}
	if a.MaxJobsPerDrain <= 0 {
		a.MaxJobsPerDrain = DefaultMaxJobsPerDrain
	}
	return a
}

// Enter pushes ctx and returns the func that pops it. Callers defer the
// restore so every exit path leaves the stack as it found it.
func (a *Agent) Enter(ctx *ExecutionContext) (func(), error) {
	if len(a.stack) >= a.MaxCallDepth {
		a.Log.Warningf("call depth limit %d reached", a.MaxCallDepth)
		return nil, a.NewRangeError("Maximum call stack size exceeded")
	}
	Assert(!ctx.onStack, "execution context pushed twice")
	ctx.onStack = true
	ctx.PoppedEarly = false
	a.stack = append(a.stack, ctx)
	return func() {
		if !ctx.onStack {
			return
		}
		a.pop(ctx)
	}, nil
}

func (a *Agent) pop(ctx *ExecutionContext) {
	n := len(a.stack)
	Assert(n > 0 && a.stack[n-1] == ctx, "execution context popped out of order")
	a.stack[n-1] = nil
	a.stack = a.stack[:n-1]
	ctx.onStack = false
}

// PopEarly removes the running context ahead of a tail call. Its restore
// func becomes a no-op.
func (a *Agent) PopEarly(ctx *ExecutionContext) {
	a.pop(ctx)
	ctx.PoppedEarly = true
}

// Running returns the running execution context, or nil.
func (a *Agent) Running() *ExecutionContext {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// Depth returns the number of contexts on the stack.
func (a *Agent) Depth() int {
	return len(a.stack)
}

// CurrentRealm returns the realm of the running context, or the agent's
// initial realm when the stack is empty.
func (a *Agent) CurrentRealm() *Realm {
	if ctx := a.Running(); ctx != nil && ctx.Realm != nil {
		return ctx.Realm
	}
	return a.realm
}

// ActiveFunction returns the function of the running context.
func (a *Agent) ActiveFunction() *Object {
	if ctx := a.Running(); ctx != nil {
		return ctx.Function
	}
	return nil
}

// GetActiveScriptOrModule returns the script or module of the innermost
// context that has one.
func (a *Agent) GetActiveScriptOrModule() interface{} {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if m := a.stack[i].ScriptOrModule; m != nil {
			return m
		}
	}
	return nil
}

func (a *Agent) callSites() []CallSite {
	sites := make([]CallSite, 0, len(a.stack))
	for i := len(a.stack) - 1; i >= 0; i-- {
		sites = append(sites, a.stack[i].CallSite)
	}
	return sites
}

// StackTrace returns the call-site chain from the running context outward.
func (a *Agent) StackTrace() []CallSite {
	return a.callSites()
}

// EnterCycleGuard marks o as being visited by a recursive algorithm such as
// Array.prototype.join. It reports false when o is already being visited.
func (a *Agent) EnterCycleGuard(o *Object) bool {
	if a.visiting == nil {
		a.visiting = make(map[*Object]bool)
	}
	if a.visiting[o] {
		return false
	}
	a.visiting[o] = true
	return true
}

func (a *Agent) LeaveCycleGuard(o *Object) {
	delete(a.visiting, o)
}
