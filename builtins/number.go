package builtins

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/example/jscore/runtime"
)

const maxSafeInteger = 9007199254740991

func createNumberConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Number.prototype%")

	setMethod(realm, proto, "toFixed", 1, numberToFixed)
	setMethod(realm, proto, "toPrecision", 1, numberToPrecision)
	setMethod(realm, proto, "toExponential", 1, numberToExponential)
	setMethod(realm, proto, "toString", 1, numberToString)
	setMethod(realm, proto, "toLocaleString", 0, numberToString)
	setMethod(realm, proto, "valueOf", 0, numberValueOf)

	ctor := newConstructor(realm, "Number", 1, proto, numberConstructorCall)
	setMethod(realm, ctor, "isInteger", 1, numberIsInteger)
	setMethod(realm, ctor, "isFinite", 1, numberIsFinite)
	setMethod(realm, ctor, "isNaN", 1, numberIsNaN)
	setMethod(realm, ctor, "isSafeInteger", 1, numberIsSafeInteger)

	setConstant(ctor, "EPSILON", runtime.NewNumber(math.Nextafter(1, 2)-1))
	setConstant(ctor, "MAX_SAFE_INTEGER", runtime.NewNumber(maxSafeInteger))
	setConstant(ctor, "MIN_SAFE_INTEGER", runtime.NewNumber(-maxSafeInteger))
	setConstant(ctor, "MAX_VALUE", runtime.NewNumber(math.MaxFloat64))
	setConstant(ctor, "MIN_VALUE", runtime.NewNumber(math.SmallestNonzeroFloat64))
	setConstant(ctor, "NaN", runtime.NaN)
	setConstant(ctor, "POSITIVE_INFINITY", runtime.PosInf)
	setConstant(ctor, "NEGATIVE_INFINITY", runtime.NegInf)

	return ctor, proto
}

func thisNumberValue(a *runtime.Agent, this *runtime.Value, method string) (float64, error) {
	if this.IsNumber() {
		return this.Number, nil
	}
	if this.IsObject() {
		if v, ok := this.Object.Slot("[[NumberData]]").(*runtime.Value); ok {
			return v.Number, nil
		}
	}
	return 0, a.NewTypeError("Number.prototype.%s requires that 'this' be a Number", method)
}

func numberConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	n := 0.0
	if len(args) > 0 {
		prim, err := runtime.ToNumeric(a, args[0])
		if err != nil {
			return nil, err
		}
		if prim.IsBigInt() {
			n = runtime.BigIntToNumber(prim.BigInt)
		} else {
			n = prim.Number
		}
	}
	if nt == nil {
		return runtime.NewNumber(n), nil
	}
	o, err := runtime.OrdinaryCreateFromConstructor(a, nt, "%Number.prototype%")
	if err != nil {
		return nil, err
	}
	o.Kind = runtime.KindNumber
	o.SetSlot("[[NumberData]]", runtime.NewNumber(n))
	return runtime.NewObject(o), nil
}

// fractionDigits reads a digit-count argument and checks it against
// [lo, 100].
func fractionDigits(a *runtime.Agent, v *runtime.Value, lo int, method string) (int, error) {
	f, err := runtime.ToIntegerOrInfinity(a, v)
	if err != nil {
		return 0, err
	}
	if f < float64(lo) || f > 100 {
		return 0, a.NewRangeError("%s() digits argument must be between %d and 100", method, lo)
	}
	return int(f), nil
}

func numberToFixed(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := thisNumberValue(a, this, "toFixed")
	if err != nil {
		return nil, err
	}
	f, err := fractionDigits(a, argAt(args, 0), 0, "toFixed")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.Abs(x) >= 1e21 {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	// n = round-half-up(x * 10^f), computed exactly.
	r := new(big.Rat).SetFloat64(x)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(f)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())
	digits := n.String()
	if f == 0 {
		return runtime.NewString(sign + digits), nil
	}
	if len(digits) <= f {
		digits = strings.Repeat("0", f-len(digits)+1) + digits
	}
	k := len(digits)
	return runtime.NewString(sign + digits[:k-f] + "." + digits[k-f:]), nil
}

// splitExponential returns the significant digits of x rounded to p digits
// and its decimal exponent. p <= 0 means as many digits as needed.
func splitExponential(x float64, p int) (string, int) {
	s := strconv.FormatFloat(x, 'e', p-1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	return strings.Replace(mant, ".", "", 1), e
}

func numberToExponential(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := thisNumberValue(a, this, "toExponential")
	if err != nil {
		return nil, err
	}
	fv := argAt(args, 0)
	f, err := runtime.ToIntegerOrInfinity(a, fv)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	if f < 0 || f > 100 {
		return nil, a.NewRangeError("toExponential() argument must be between 0 and 100")
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	p := int(f) + 1
	if fv.IsUndefined() {
		p = 0
	}
	digits, e := splitExponential(x, p)
	if x == 0 {
		e = 0
	}
	return runtime.NewString(sign + formatExponential(digits, e)), nil
}

func formatExponential(digits string, e int) string {
	m := digits[:1]
	if len(digits) > 1 {
		m += "." + digits[1:]
	}
	if e < 0 {
		return m + "e-" + strconv.Itoa(-e)
	}
	return m + "e+" + strconv.Itoa(e)
}

func numberToPrecision(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := thisNumberValue(a, this, "toPrecision")
	if err != nil {
		return nil, err
	}
	pv := argAt(args, 0)
	if pv.IsUndefined() {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	pf, err := runtime.ToIntegerOrInfinity(a, pv)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	if pf < 1 || pf > 100 {
		return nil, a.NewRangeError("toPrecision() argument must be between 1 and 100")
	}
	p := int(pf)
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	var digits string
	e := 0
	if x == 0 {
		digits = strings.Repeat("0", p)
	} else {
		digits, e = splitExponential(x, p)
	}
	if e < -6 || e >= p {
		return runtime.NewString(sign + formatExponential(digits, e)), nil
	}
	switch {
	case e == p-1:
		return runtime.NewString(sign + digits), nil
	case e >= 0:
		return runtime.NewString(sign + digits[:e+1] + "." + digits[e+1:]), nil
	}
	return runtime.NewString(sign + "0." + strings.Repeat("0", -(e+1)) + digits), nil
}

func numberToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := thisNumberValue(a, this, "toString")
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
	if radix == 10 || math.IsNaN(x) || math.IsInf(x, 0) {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	return runtime.NewString(formatRadix(x, int(radix))), nil
}

// formatRadix renders a finite number in a non-decimal radix, with up to
// 52 fraction digits.
func formatRadix(x float64, radix int) string {
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	ip, fp := math.Modf(x)
	bi, _ := new(big.Float).SetFloat64(ip).Int(nil)
	s := bi.Text(radix)
	if fp == 0 {
		return sign + s
	}
	var b strings.Builder
	for i := 0; i < 52 && fp > 0; i++ {
		fp *= float64(radix)
		d := int(fp)
		b.WriteByte(strconv.FormatInt(int64(d), radix)[0])
		fp -= float64(d)
	}
	return sign + s + "." + strings.TrimRight(b.String(), "0")
}

func numberValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := thisNumberValue(a, this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(x), nil
}

func isIntegralNumber(v *runtime.Value) bool {
	return v.IsNumber() && !math.IsNaN(v.Number) && !math.IsInf(v.Number, 0) && math.Trunc(v.Number) == v.Number
}

func numberIsInteger(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return runtime.NewBool(isIntegralNumber(argAt(args, 0))), nil
}

func numberIsFinite(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(v.IsNumber() && !math.IsNaN(v.Number) && !math.IsInf(v.Number, 0)), nil
}

func numberIsNaN(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(v.IsNumber() && math.IsNaN(v.Number)), nil
}

func numberIsSafeInteger(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(isIntegralNumber(v) && math.Abs(v.Number) <= maxSafeInteger), nil
}
