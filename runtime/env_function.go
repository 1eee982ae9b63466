package runtime

// ThisBindingStatus tracks the this binding of a function environment.
type ThisBindingStatus int

const (
	ThisLexical ThisBindingStatus = iota
	ThisUninitialized
	ThisInitialized
)

// FunctionEnvironment is the top-level scope of a non-arrow function call.
type FunctionEnvironment struct {
	*DeclarativeEnvironment
	ThisValue      *Value
	ThisStatus     ThisBindingStatus
	FunctionObject *Object
	HomeObject     *Object
	NewTarget      *Value
}

// NewFunctionEnvironment creates the environment for a call of f. Arrow
// functions pass lexicalThis; derived constructors start uninitialized.
func NewFunctionEnvironment(f *Object, newTarget *Value, status ThisBindingStatus, home *Object, outer Environment) *FunctionEnvironment {
	if newTarget == nil {
		newTarget = Undefined
	}
	return &FunctionEnvironment{
		DeclarativeEnvironment: NewDeclarativeEnvironment(outer),
		ThisStatus:             status,
		FunctionObject:         f,
		HomeObject:             home,
		NewTarget:              newTarget,
	}
}

func (e *FunctionEnvironment) HasThisBinding() bool {
	return e.ThisStatus != ThisLexical
}

func (e *FunctionEnvironment) HasSuperBinding() bool {
	return e.ThisStatus != ThisLexical && e.HomeObject != nil
}

// BindThisValue initializes this. A second initialization is a
// ReferenceError, which is how a repeated super() call fails.
func (e *FunctionEnvironment) BindThisValue(a *Agent, v *Value) error {
	Assert(e.ThisStatus != ThisLexical, "lexical this cannot be bound")
	if e.ThisStatus == ThisInitialized {
		return a.NewReferenceError("Super constructor may only be called once")
	}
	e.ThisValue = v
	e.ThisStatus = ThisInitialized
	return nil
}

func (e *FunctionEnvironment) GetThisBinding(a *Agent) (*Value, error) {
	Assert(e.ThisStatus != ThisLexical, "lexical this has no binding")
	if e.ThisStatus == ThisUninitialized {
		return nil, a.NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor")
	}
	return e.ThisValue, nil
}

// GetSuperBase returns the prototype of the home object, or undefined when
// there is none.
func (e *FunctionEnvironment) GetSuperBase(a *Agent) (*Value, error) {
	if e.HomeObject == nil {
		return Undefined, nil
	}
	p, err := e.HomeObject.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	return ObjectOrNull(p), nil
}
