package runtime

import "fmt"

// Location is a source position.
type Location struct {
	Source string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Source == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// CallSite describes one frame of the context stack for diagnostics.
type CallSite struct {
	FunctionName  string
	IsConstructor bool
	IsMethod      bool
	Location      Location
}

func (cs CallSite) String() string {
	name := cs.FunctionName
	if name == "" {
		name = "<anonymous>"
	}
	if cs.IsConstructor {
		name = "new " + name
	}
	if cs.Location.Line == 0 {
		return name
	}
	return name + " (" + cs.Location.String() + ")"
}

// ExecutionContext tracks the evaluation of one script, module, function
// call or eval.
type ExecutionContext struct {
	Function            *Object
	Realm               *Realm
	LexicalEnvironment  Environment
	VariableEnvironment Environment
	PrivateEnvironment  *PrivateEnvironment
	ScriptOrModule      interface{}
	CallSite            CallSite

	// Suspension holds the state of a generator or async body owning this
	// context.
	Suspension interface{}

	// PoppedEarly is set when a tail call removed the context before the
	// callee ran.
	PoppedEarly bool

	onStack bool
}
