package builtins

import (
	"math"
	"math/bits"
	"math/rand"

	"github.com/example/jscore/runtime"
)

// mathUnaryFuncs are the Math methods that apply a float64 function to
// ToNumber of their first argument.
var mathUnaryFuncs = map[string]func(float64) float64{
	"abs":   math.Abs,
	"ceil":  math.Ceil,
	"floor": math.Floor,
	"trunc": math.Trunc,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"log1p": math.Log1p,
	"exp":   math.Exp,
	"expm1": math.Expm1,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"asinh": math.Asinh,
	"acosh": math.Acosh,
	"atanh": math.Atanh,
	"round": jsRound,
	"sign":  jsSign,
	"fround": func(n float64) float64 {
		return float64(float32(n))
	},
}

func createMathObject(realm *runtime.Realm) *runtime.Object {
	m := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))

	setConstant(m, "PI", runtime.NewNumber(math.Pi))
	setConstant(m, "E", runtime.NewNumber(math.E))
	setConstant(m, "LN2", runtime.NewNumber(math.Ln2))
	setConstant(m, "LN10", runtime.NewNumber(math.Ln10))
	setConstant(m, "LOG2E", runtime.NewNumber(math.Log2E))
	setConstant(m, "LOG10E", runtime.NewNumber(math.Log10E))
	setConstant(m, "SQRT2", runtime.NewNumber(math.Sqrt2))
	setConstant(m, "SQRT1_2", runtime.NewNumber(1.0/math.Sqrt2))

	for name, fn := range mathUnaryFuncs {
		setMethod(realm, m, name, 1, mathUnary(fn))
	}
	setMethod(realm, m, "max", 2, mathMax)
	setMethod(realm, m, "min", 2, mathMin)
	setMethod(realm, m, "pow", 2, mathPow)
	setMethod(realm, m, "hypot", 2, mathHypot)
	setMethod(realm, m, "atan2", 2, mathAtan2)
	setMethod(realm, m, "random", 0, mathRandom)
	setMethod(realm, m, "clz32", 1, mathClz32)
	setMethod(realm, m, "imul", 2, mathImul)

	setToStringTag(m, "Math")
	return m
}

func mathUnary(fn func(float64) float64) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		n, err := runtime.ToNumber(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(n)), nil
	}
}

// jsRound rounds half up, keeping -0 for inputs in [-0.5, -0].
func jsRound(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == math.Trunc(n) {
		return n
	}
	if n < 0 && n >= -0.5 {
		return math.Copysign(0, -1)
	}
	f := math.Floor(n)
	if n-f >= 0.5 {
		return f + 1
	}
	return f
}

func jsSign(n float64) float64 {
	switch {
	case math.IsNaN(n), n == 0:
		return n
	case n > 0:
		return 1
	}
	return -1
}

func numberArgs(a *runtime.Agent, args []*runtime.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, v := range args {
		n, err := runtime.ToNumber(a, v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func mathMax(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	nums, err := numberArgs(a, args)
	if err != nil {
		return nil, err
	}
	result := math.Inf(-1)
	for _, n := range nums {
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		if n > result || (n == 0 && result == 0 && !math.Signbit(n)) {
			result = n
		}
	}
	return runtime.NewNumber(result), nil
}

func mathMin(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	nums, err := numberArgs(a, args)
	if err != nil {
		return nil, err
	}
	result := math.Inf(1)
	for _, n := range nums {
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		if n < result || (n == 0 && result == 0 && math.Signbit(n)) {
			result = n
		}
	}
	return runtime.NewNumber(result), nil
}

func mathPow(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	nums, err := numberArgs(a, []*runtime.Value{argAt(args, 0), argAt(args, 1)})
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(runtime.Exponentiate(nums[0], nums[1])), nil
}

func mathHypot(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	nums, err := numberArgs(a, args)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	nan := false
	for _, n := range nums {
		if math.IsInf(n, 0) {
			return runtime.PosInf, nil
		}
		if math.IsNaN(n) {
			nan = true
		}
		sum += n * n
	}
	if nan {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(math.Sqrt(sum)), nil
}

func mathAtan2(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	nums, err := numberArgs(a, []*runtime.Value{argAt(args, 0), argAt(args, 1)})
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(math.Atan2(nums[0], nums[1])), nil
}

func mathRandom(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return runtime.NewNumber(rand.Float64()), nil
}

func mathClz32(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	n, err := runtime.ToUint32(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(bits.LeadingZeros32(n))), nil
}

func mathImul(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	x, err := runtime.ToInt32(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	y, err := runtime.ToInt32(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(x * y)), nil
}
