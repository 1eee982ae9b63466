package builtins

import (
	"github.com/example/jscore/runtime"
)

func createBigIntConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%BigInt.prototype%")

	setMethod(realm, proto, "toString", 0, bigintToString)
	setMethod(realm, proto, "toLocaleString", 0, bigintToString)
	setMethod(realm, proto, "valueOf", 0, bigintValueOf)
	setToStringTag(proto, "BigInt")

	ctor := newConstructor(realm, "BigInt", 1, proto, bigintConstructorCall)
	setMethod(realm, ctor, "asIntN", 2, bigintAsN(true))
	setMethod(realm, ctor, "asUintN", 2, bigintAsN(false))
	return ctor, proto
}

func bigintConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if nt != nil {
		return nil, a.NewTypeError("BigInt is not a constructor")
	}
	prim, err := runtime.ToPrimitive(a, argAt(args, 0), runtime.HintNumber)
	if err != nil {
		return nil, err
	}
	if prim.IsNumber() {
		b, err := runtime.NumberToBigInt(a, prim.Number)
		if err != nil {
			return nil, err
		}
		return runtime.NewBigInt(b), nil
	}
	b, err := runtime.ToBigInt(a, prim)
	if err != nil {
		return nil, err
	}
	return runtime.NewBigInt(b), nil
}

func thisBigIntValue(a *runtime.Agent, this *runtime.Value, method string) (*runtime.Value, error) {
	if this.IsBigInt() {
		return this, nil
	}
	if this.IsObject() {
		if v, ok := this.Object.Slot("[[BigIntData]]").(*runtime.Value); ok {
			return v, nil
		}
	}
	return nil, a.NewTypeError("BigInt.prototype.%s requires that 'this' be a BigInt", method)
}

func bigintToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	v, err := thisBigIntValue(a, this, "toString")
	if err != nil {
		return nil, err
	}
	radix := 10.0
	if r := argAt(args, 0); !r.IsUndefined() {
		if radix, err = runtime.ToIntegerOrInfinity(a, r); err != nil {
			return nil, err
		}
	}
	if radix < 2 || radix > 36 {
		return nil, a.NewRangeError("toString() radix must be between 2 and 36")
	}
	return runtime.NewString(v.BigInt.Text(int(radix))), nil
}

func bigintValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return thisBigIntValue(a, this, "valueOf")
}

func bigintAsN(signed bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		bits, err := runtime.ToIndex(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		b, err := runtime.ToBigInt(a, argAt(args, 1))
		if err != nil {
			return nil, err
		}
		if signed {
			return runtime.NewBigInt(runtime.AsIntN(uint(bits), b)), nil
		}
		return runtime.NewBigInt(runtime.AsUintN(uint(bits), b)), nil
	}
}
