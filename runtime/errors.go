package runtime

import (
	"fmt"
	"strings"
)

// Native error kinds. The intrinsic prototype of each is
// "%<kind>.prototype%".
const (
	ErrorKindError          = "Error"
	ErrorKindTypeError      = "TypeError"
	ErrorKindRangeError     = "RangeError"
	ErrorKindReferenceError = "ReferenceError"
	ErrorKindSyntaxError    = "SyntaxError"
	ErrorKindURIError       = "URIError"
	ErrorKindEvalError      = "EvalError"
	ErrorKindAggregateError = "AggregateError"
)

// NativeErrorKinds lists the error kinds in installation order.
var NativeErrorKinds = []string{
	ErrorKindError, ErrorKindTypeError, ErrorKindRangeError, ErrorKindReferenceError,
	ErrorKindSyntaxError, ErrorKindURIError, ErrorKindEvalError, ErrorKindAggregateError,
}

// Exception is a thrown guest value travelling through Go error returns.
type Exception struct {
	Value *Value
	Stack []CallSite
}

func (e *Exception) Error() string {
	if e.Value.IsObject() && e.Value.Object.Kind == KindError {
		name := dataString(e.Value.Object, "name")
		msg := dataString(e.Value.Object, "message")
		if name == "" {
			name = "Error"
		}
		if msg == "" {
			return name
		}
		return name + ": " + msg
	}
	return "uncaught exception: " + e.Value.String()
}

// StackString renders the call-site chain captured at the throw point.
func (e *Exception) StackString() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, cs := range e.Stack {
		b.WriteString("\n    at ")
		b.WriteString(cs.String())
	}
	return b.String()
}

// dataString reads a string data property along the prototype chain
// without running guest code.
func dataString(o *Object, name string) string {
	key := StrKey(name)
	for obj := o; obj != nil; obj = obj.proto {
		if d, ok := obj.props[key]; ok {
			if d.HasValue && d.Value.IsString() {
				return GoString(d.Value.Str)
			}
			return ""
		}
	}
	return ""
}

// Throw wraps v as an exception, capturing the current call-site chain.
func (a *Agent) Throw(v *Value) *Exception {
	return &Exception{Value: v, Stack: a.callSites()}
}

// NewError creates an error of the given kind in the running realm and
// wraps it as an exception.
func (a *Agent) NewError(kind, msg string) *Exception {
	return a.Throw(NewObject(a.CreateErrorObject(a.CurrentRealm(), kind, msg)))
}

func (a *Agent) NewTypeError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindTypeError, fmt.Sprintf(format, args...))
}

func (a *Agent) NewRangeError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindRangeError, fmt.Sprintf(format, args...))
}

func (a *Agent) NewReferenceError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindReferenceError, fmt.Sprintf(format, args...))
}

func (a *Agent) NewSyntaxError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindSyntaxError, fmt.Sprintf(format, args...))
}

func (a *Agent) NewEvalError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindEvalError, fmt.Sprintf(format, args...))
}

func (a *Agent) NewURIError(format string, args ...interface{}) *Exception {
	return a.NewError(ErrorKindURIError, fmt.Sprintf(format, args...))
}

// CreateErrorObject builds an error instance with the realm's prototype for
// kind. The stack property is a non-enumerable rendering of the current
// call-site chain.
func (a *Agent) CreateErrorObject(realm *Realm, kind, msg string) *Object {
	proto := realm.Intrinsic("%" + kind + ".prototype%")
	if proto == nil {
		proto = realm.Intrinsic("%Error.prototype%")
	}
	obj := NewOrdinaryObject(proto)
	obj.Kind = KindError
	if msg != "" {
		obj.DefineProperty(StrKey("message"), DataDescriptor(NewString(msg), true, false, true))
	}
	a.AttachStack(obj, kind, msg)
	return obj
}

// AttachStack installs the stack property on a freshly created error.
func (a *Agent) AttachStack(obj *Object, name, msg string) {
	var b strings.Builder
	b.WriteString(name)
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	for _, cs := range a.callSites() {
		b.WriteString("\n    at ")
		b.WriteString(cs.String())
	}
	obj.DefineProperty(StrKey("stack"), DataDescriptor(NewString(b.String()), true, false, true))
}

// IsErrorOfKind reports whether err is a guest exception whose value is an
// error object named kind.
func IsErrorOfKind(err error, kind string) bool {
	exc, ok := err.(*Exception)
	if !ok || !exc.Value.IsObject() || exc.Value.Object.Kind != KindError {
		return false
	}
	return dataString(exc.Value.Object, "name") == kind
}

// ThrownName names the value carried by a guest exception: its "name"
// property, else the name of its constructor. Only data properties are read.
func ThrownName(err error) string {
	exc, ok := err.(*Exception)
	if !ok || !exc.Value.IsObject() {
		return ""
	}
	o := exc.Value.Object
	if name := dataString(o, "name"); name != "" {
		return name
	}
	key := StrKey("constructor")
	for obj := o; obj != nil; obj = obj.proto {
		if d, ok := obj.props[key]; ok {
			if d.HasValue && d.Value.IsObject() {
				return dataString(d.Value.Object, "name")
			}
			return ""
		}
	}
	return ""
}
