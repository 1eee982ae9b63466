package builtins

import (
	"github.com/example/jscore/runtime"
)

// createErrorConstructors installs Error and the native error
// constructors on their realm prototypes. NativeError constructors inherit
// from Error.
func createErrorConstructors(realm *runtime.Realm) map[string]*runtime.Object {
	ctors := make(map[string]*runtime.Object, len(runtime.NativeErrorKinds))
	errProto := realm.Intrinsic("%Error.prototype%")
	setMethod(realm, errProto, "toString", 0, errorToString)

	for _, kind := range runtime.NativeErrorKinds {
		proto := realm.Intrinsic("%" + kind + ".prototype%")
		length := 1
		fn := errorConstructor(kind)
		if kind == runtime.ErrorKindAggregateError {
			length = 2
			fn = aggregateErrorConstructor
		}
		ctor := newConstructor(realm, kind, length, proto, fn)
		if kind != runtime.ErrorKindError {
			ctor.SetProto(ctors[runtime.ErrorKindError])
		}
		realm.SetIntrinsic("%"+kind+"%", ctor)
		ctors[kind] = ctor
	}
	return ctors
}

// newErrorFromConstructor creates the error instance for newTarget (the
// active function when called without new) and installs message and cause.
func newErrorFromConstructor(a *runtime.Agent, kind string, nt *runtime.Object, message, options *runtime.Value) (*runtime.Object, error) {
	if nt == nil {
		nt = a.ActiveFunction()
	}
	o, err := runtime.OrdinaryCreateFromConstructor(a, nt, "%"+kind+".prototype%")
	if err != nil {
		return nil, err
	}
	o.Kind = runtime.KindError
	msg := ""
	if !message.IsUndefined() {
		s, err := toStr(a, message)
		if err != nil {
			return nil, err
		}
		msg = runtime.GoString(s)
		o.DefineProperty(runtime.StrKey("message"), runtime.DataDescriptor(runtime.NewUString(s), true, false, true))
	}
	if options.IsObject() {
		has, err := options.Object.HasProperty(a, runtime.StrKey("cause"))
		if err != nil {
			return nil, err
		}
		if has {
			cause, err := runtime.Get(a, options.Object, runtime.StrKey("cause"))
			if err != nil {
				return nil, err
			}
			o.DefineProperty(runtime.StrKey("cause"), runtime.DataDescriptor(cause, true, false, true))
		}
	}
	a.AttachStack(o, kind, msg)
	return o, nil
}

func errorConstructor(kind string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		o, err := newErrorFromConstructor(a, kind, nt, argAt(args, 0), argAt(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(o), nil
	}
}

func aggregateErrorConstructor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, err := newErrorFromConstructor(a, runtime.ErrorKindAggregateError, nt, argAt(args, 1), argAt(args, 2))
	if err != nil {
		return nil, err
	}
	errs, err := runtime.IterableToList(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	o.DefineProperty(runtime.StrKey("errors"), runtime.DataDescriptor(arrayValue(a, errs), true, false, true))
	return runtime.NewObject(o), nil
}

func errorToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	obj, err := requireObject(a, this, "Error.prototype.toString")
	if err != nil {
		return nil, err
	}
	field := func(key, def string) (string, error) {
		v, err := runtime.Get(a, obj, runtime.StrKey(key))
		if err != nil {
			return "", err
		}
		if v.IsUndefined() {
			return def, nil
		}
		return toGoStr(a, v)
	}
	name, err := field("name", "Error")
	if err != nil {
		return nil, err
	}
	msg, err := field("message", "")
	if err != nil {
		return nil, err
	}
	switch {
	case name == "":
		return runtime.NewString(msg), nil
	case msg == "":
		return runtime.NewString(name), nil
	}
	return runtime.NewString(name + ": " + msg), nil
}
