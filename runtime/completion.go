package runtime

import "fmt"

// CompletionType classifies how a statement or expression finished.
type CompletionType int

const (
	Normal CompletionType = iota
	Return
	Break
	Continue
	Throw
	// Suspend unwinds a pausable body to its driver at a yield or await.
	// Guest code never observes it.
	Suspend
)

func (t CompletionType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Return:
		return "return"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Throw:
		return "throw"
	case Suspend:
		return "suspend"
	}
	return "unknown"
}

// Completion is the record every evaluation step produces. The zero value
// is a normal completion with an empty value.
type Completion struct {
	Type   CompletionType
	Value  *Value // nil means empty
	Target string // label for break/continue, "" when none

	exc *Exception
}

func NormalCompletion(v *Value) Completion {
	return Completion{Type: Normal, Value: v}
}

func ReturnCompletion(v *Value) Completion {
	return Completion{Type: Return, Value: v}
}

// ThrowCompletion converts an error returned by a runtime operation into a
// throw completion. Errors that are not guest exceptions are internal
// failures.
func ThrowCompletion(err error) Completion {
	exc, ok := err.(*Exception)
	if !ok {
		panic(&AssertionError{Msg: fmt.Sprintf("non-exception error escaped into guest code: %v", err)})
	}
	return Completion{Type: Throw, Value: exc.Value, exc: exc}
}

// ThrowValue builds a throw completion for v.
func (a *Agent) ThrowValue(v *Value) Completion {
	return ThrowCompletion(a.Throw(v))
}

func (c Completion) IsAbrupt() bool {
	return c.Type != Normal
}

// Err returns the exception carried by a throw completion and nil for every
// other kind.
func (c Completion) Err() error {
	if c.Type != Throw {
		return nil
	}
	if c.exc != nil {
		return c.exc
	}
	return &Exception{Value: c.Value}
}

// UpdateEmpty replaces an empty completion value with v.
func UpdateEmpty(c Completion, v *Value) Completion {
	if c.Value == nil {
		c.Value = v
	}
	return c
}

// LoopContinues reports whether a loop with the given label set keeps
// iterating after its body completed with c.
func LoopContinues(c Completion, labels []string) bool {
	if c.Type == Normal {
		return true
	}
	if c.Type != Continue {
		return false
	}
	if c.Target == "" {
		return true
	}
	return hasLabel(labels, c.Target)
}

// BreaksTo reports whether c is a break consumed by a statement with the
// given label set. Unlabelled breaks are consumed when unlabelled is true.
func BreaksTo(c Completion, labels []string, unlabelled bool) bool {
	if c.Type != Break {
		return false
	}
	if c.Target == "" {
		return unlabelled
	}
	return hasLabel(labels, c.Target)
}

func hasLabel(labels []string, target string) bool {
	for _, l := range labels {
		if l == target {
			return true
		}
	}
	return false
}

// AssertionError reports a violated engine invariant. It is raised by panic
// and never reaches guest code.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Msg
}

// Assert panics with an AssertionError when cond is false.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&AssertionError{Msg: fmt.Sprintf(format, args...)})
	}
}

// Must unwraps a result that cannot fail at this step.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(&AssertionError{Msg: fmt.Sprintf("operation could not fail: %v", err)})
	}
	return v
}

// MustNormal unwraps an evaluator result that cannot be abrupt.
func MustNormal(v *Value, c Completion) *Value {
	if c.IsAbrupt() {
		panic(&AssertionError{Msg: "unexpected " + c.Type.String() + " completion"})
	}
	return v
}
