package builtins

import (
	"github.com/example/jscore/runtime"
)

func createBooleanConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Boolean.prototype%")

	setMethod(realm, proto, "toString", 0, booleanToString)
	setMethod(realm, proto, "valueOf", 0, booleanValueOf)

	ctor := newConstructor(realm, "Boolean", 1, proto, booleanConstructorCall)
	return ctor, proto
}

// thisBooleanValue unwraps a boolean or a Boolean wrapper.
func thisBooleanValue(a *runtime.Agent, this *runtime.Value, method string) (bool, error) {
	if this.Type == runtime.TypeBoolean {
		return this.Bool, nil
	}
	if this.IsObject() {
		if v, ok := this.Object.Slot("[[BooleanData]]").(*runtime.Value); ok {
			return v.Bool, nil
		}
	}
	return false, a.NewTypeError("Boolean.prototype.%s requires that 'this' be a Boolean", method)
}

func booleanConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	b := runtime.NewBool(argAt(args, 0).ToBoolean())
	if nt == nil {
		return b, nil
	}
	o, err := runtime.OrdinaryCreateFromConstructor(a, nt, "%Boolean.prototype%")
	if err != nil {
		return nil, err
	}
	o.Kind = runtime.KindBoolean
	o.SetSlot("[[BooleanData]]", b)
	return runtime.NewObject(o), nil
}

func booleanToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	b, err := thisBooleanValue(a, this, "toString")
	if err != nil {
		return nil, err
	}
	if b {
		return runtime.NewString("true"), nil
	}
	return runtime.NewString("false"), nil
}

func booleanValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	b, err := thisBooleanValue(a, this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(b), nil
}
