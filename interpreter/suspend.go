package interpreter

import (
	"errors"

	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

// suspendKind says what a suspended body is waiting for.
type suspendKind int

const (
	suspendAwait suspendKind = iota
	suspendYield
	// suspendYieldRaw hands an inner iterator result to the caller as is
	// (yield* in a sync generator).
	suspendYieldRaw
)

// errSuspend unwinds expression evaluation up to the driver of a generator
// or async body. The frame records what the body waits for.
var errSuspend = errors.New("evaluation suspended")

// errShortCircuit ends an optional chain whose base is nullish.
var errShortCircuit = errors.New("optional chain short-circuited")

// returnSignal carries a return completion delivered at a yield, as
// generator.return() does, through expression evaluation.
type returnSignal struct {
	value *runtime.Value
}

func (r *returnSignal) Error() string { return "return" }

// completionOf turns an error from expression evaluation into the
// completion of the enclosing statement.
func completionOf(err error) runtime.Completion {
	if err == errSuspend {
		return runtime.Completion{Type: runtime.Suspend}
	}
	if r, ok := err.(*returnSignal); ok {
		return runtime.ReturnCompletion(r.value)
	}
	return runtime.ThrowCompletion(err)
}

// valueOf maps a completion delivered to a suspension point back to the
// expression result.
func valueOf(c runtime.Completion) (*runtime.Value, error) {
	switch c.Type {
	case runtime.Normal:
		if c.Value == nil {
			return runtime.Undefined, nil
		}
		return c.Value, nil
	case runtime.Return:
		return nil, &returnSignal{value: c.Value}
	}
	return nil, c.Err()
}

// tailCall is a call in tail position left for the caller's trampoline.
type tailCall struct {
	fn   *runtime.Value
	this *runtime.Value
	args []*runtime.Value
}

// frame is the evaluation state of one activation: a script, a module, an
// eval or a function call. Generator and async bodies keep their frame
// across suspensions.
type frame struct {
	ctx    *runtime.ExecutionContext
	strict bool
	fn     *function // nil outside function code
	info   *ast.FunctionInfo
	slots  map[ast.Node]*slot

	// resume is the completion the driver delivers to the suspension point
	// when it replays the body.
	resume *runtime.Completion
	// suspendedWith is the operand of the pending yield or await.
	suspendedWith *runtime.Value
	suspended     suspendKind

	tail *tailCall
}

func (f *frame) env() runtime.Environment {
	return f.ctx.LexicalEnvironment
}

// enterEnv makes env the running lexical environment and returns the func
// restoring the previous one.
func (f *frame) enterEnv(env runtime.Environment) func() {
	old := f.ctx.LexicalEnvironment
	f.ctx.LexicalEnvironment = env
	return func() { f.ctx.LexicalEnvironment = old }
}

func (f *frame) kind() functionKind {
	if f.fn == nil {
		return kindNormal
	}
	return f.fn.kind
}

// slot is the progress record of a node that can suspend. When the body is
// replayed after a suspension the node resumes from it instead of
// re-running the steps it already took.
type slot struct {
	step int
	vals []*runtime.Value // operands by position
	list []*runtime.Value // values of list-shaped nodes: arguments, elements
	n    int              // list entries consumed
	v    *runtime.Value   // completion value of statement lists and loops
	env  runtime.Environment
	ref  *runtime.Reference
	iter *runtime.IteratorRecord
	keys *propertyEnumerator
	comp runtime.Completion
	obj  *runtime.Object
}

// slot returns the persistent record of n, or nil when n cannot suspend.
func (f *frame) slot(n ast.Node) *slot {
	if !f.info.IsPausable(n) {
		return nil
	}
	s := f.slots[n]
	if s == nil {
		if f.slots == nil {
			f.slots = make(map[ast.Node]*slot)
		}
		s = &slot{}
		f.slots[n] = s
	}
	return s
}

// state is slot with a scratch record for nodes that cannot suspend.
func (f *frame) state(n ast.Node) *slot {
	if s := f.slot(n); s != nil {
		return s
	}
	return &slot{}
}

// release forgets the record of n once it has completed.
func (f *frame) release(n ast.Node) {
	if f.slots != nil {
		delete(f.slots, n)
	}
}

func (s *slot) memo(i int) (*runtime.Value, bool) {
	if s == nil || i >= len(s.vals) || s.vals[i] == nil {
		return nil, false
	}
	return s.vals[i], true
}

func (s *slot) record(i int, v *runtime.Value) {
	if s == nil {
		return
	}
	for len(s.vals) <= i {
		s.vals = append(s.vals, nil)
	}
	s.vals[i] = v
}

// park suspends the body at the node owning s. The next replay finds the
// node one step further and collects the driver's completion with take.
func (f *frame) park(s *slot, kind suspendKind, v *runtime.Value) error {
	s.step++
	f.suspended = kind
	f.suspendedWith = v
	return errSuspend
}

// suspendTo suspends like park but resumes the node at step next.
func (f *frame) suspendTo(s *slot, next int, kind suspendKind, v *runtime.Value) error {
	s.step = next
	f.suspended = kind
	f.suspendedWith = v
	return errSuspend
}

// take consumes the completion the body was resumed with.
func (f *frame) take() runtime.Completion {
	runtime.Assert(f.resume != nil, "resumed without a completion")
	c := *f.resume
	f.resume = nil
	return c
}

// must asserts that a step which cannot fail did not.
func must(err error) {
	runtime.Assert(err == nil, "unexpected abrupt completion: %v", err)
}
