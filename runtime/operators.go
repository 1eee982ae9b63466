package runtime

import (
	"math"
	"math/big"
)

// TypeOf returns the typeof string of v.
func TypeOf(v *Value) string {
	switch v.Type {
	case TypeNull:
		return "object"
	case TypeObject:
		if v.Object.Callable != nil {
			return "function"
		}
		return "object"
	}
	return v.Type.String()
}

// IsLooselyEqual implements ==. Conversions may run user code.
func IsLooselyEqual(a *Agent, x, y *Value) (bool, error) {
	if x.Type == y.Type {
		return IsStrictlyEqual(x, y), nil
	}
	if x.IsNullish() && y.IsNullish() {
		return true, nil
	}
	switch {
	case x.Type == TypeNumber && y.Type == TypeString:
		return x.Number == StringToNumber(y.Str), nil
	case x.Type == TypeString && y.Type == TypeNumber:
		return StringToNumber(x.Str) == y.Number, nil
	case x.Type == TypeBigInt && y.Type == TypeString:
		n, ok := StringToBigInt(GoString(y.Str))
		return ok && x.BigInt.Cmp(n) == 0, nil
	case x.Type == TypeString && y.Type == TypeBigInt:
		return IsLooselyEqual(a, y, x)
	case x.Type == TypeBoolean:
		n, _ := ToNumber(a, x)
		return IsLooselyEqual(a, NewNumber(n), y)
	case y.Type == TypeBoolean:
		n, _ := ToNumber(a, y)
		return IsLooselyEqual(a, x, NewNumber(n))
	case y.Type == TypeObject && (x.Type == TypeString || x.Type == TypeNumber || x.Type == TypeBigInt || x.Type == TypeSymbol):
		py, err := ToPrimitive(a, y, HintDefault)
		if err != nil {
			return false, err
		}
		return IsLooselyEqual(a, x, py)
	case x.Type == TypeObject && (y.Type == TypeString || y.Type == TypeNumber || y.Type == TypeBigInt || y.Type == TypeSymbol):
		px, err := ToPrimitive(a, x, HintDefault)
		if err != nil {
			return false, err
		}
		return IsLooselyEqual(a, px, y)
	case x.Type == TypeBigInt && y.Type == TypeNumber:
		c, ok := compareBigIntNumber(x.BigInt, y.Number)
		return ok && c == 0, nil
	case x.Type == TypeNumber && y.Type == TypeBigInt:
		c, ok := compareBigIntNumber(y.BigInt, x.Number)
		return ok && c == 0, nil
	}
	return false, nil
}

// compareBigIntNumber compares b with n; ok is false when n is NaN.
func compareBigIntNumber(b *big.Int, n float64) (int, bool) {
	if math.IsNaN(n) {
		return 0, false
	}
	if math.IsInf(n, 1) {
		return -1, true
	}
	if math.IsInf(n, -1) {
		return 1, true
	}
	return new(big.Float).SetInt(b).Cmp(big.NewFloat(n)), true
}

// IsLessThan implements the abstract relational comparison. It returns
// true, false or undefined (when a NaN is involved).
func IsLessThan(a *Agent, x, y *Value, leftFirst bool) (*Value, error) {
	var px, py *Value
	var err error
	if leftFirst {
		if px, err = ToPrimitive(a, x, HintNumber); err != nil {
			return nil, err
		}
		if py, err = ToPrimitive(a, y, HintNumber); err != nil {
			return nil, err
		}
	} else {
		if py, err = ToPrimitive(a, y, HintNumber); err != nil {
			return nil, err
		}
		if px, err = ToPrimitive(a, x, HintNumber); err != nil {
			return nil, err
		}
	}
	if px.Type == TypeString && py.Type == TypeString {
		return NewBool(CompareStrings(px.Str, py.Str) < 0), nil
	}
	if px.Type == TypeBigInt && py.Type == TypeString {
		ny, ok := StringToBigInt(GoString(py.Str))
		if !ok {
			return Undefined, nil
		}
		return NewBool(px.BigInt.Cmp(ny) < 0), nil
	}
	if px.Type == TypeString && py.Type == TypeBigInt {
		nx, ok := StringToBigInt(GoString(px.Str))
		if !ok {
			return Undefined, nil
		}
		return NewBool(nx.Cmp(py.BigInt) < 0), nil
	}
	nx, err := ToNumeric(a, px)
	if err != nil {
		return nil, err
	}
	ny, err := ToNumeric(a, py)
	if err != nil {
		return nil, err
	}
	switch {
	case nx.Type == TypeNumber && ny.Type == TypeNumber:
		if math.IsNaN(nx.Number) || math.IsNaN(ny.Number) {
			return Undefined, nil
		}
		return NewBool(nx.Number < ny.Number), nil
	case nx.Type == TypeBigInt && ny.Type == TypeBigInt:
		return NewBool(nx.BigInt.Cmp(ny.BigInt) < 0), nil
	case nx.Type == TypeBigInt:
		c, ok := compareBigIntNumber(nx.BigInt, ny.Number)
		if !ok {
			return Undefined, nil
		}
		return NewBool(c < 0), nil
	default:
		c, ok := compareBigIntNumber(ny.BigInt, nx.Number)
		if !ok {
			return Undefined, nil
		}
		return NewBool(c > 0), nil
	}
}

// ApplyStringOrNumericBinaryOperator evaluates an arithmetic, bitwise or
// shift operator, including string concatenation for +.
func ApplyStringOrNumericBinaryOperator(a *Agent, l *Value, op string, r *Value) (*Value, error) {
	if op == "+" {
		lp, err := ToPrimitive(a, l, HintDefault)
		if err != nil {
			return nil, err
		}
		rp, err := ToPrimitive(a, r, HintDefault)
		if err != nil {
			return nil, err
		}
		if lp.Type == TypeString || rp.Type == TypeString {
			ls, err := ToString(a, lp)
			if err != nil {
				return nil, err
			}
			rs, err := ToString(a, rp)
			if err != nil {
				return nil, err
			}
			return NewUString(ConcatStrings(ls, rs)), nil
		}
		l, r = lp, rp
	}
	ln, err := ToNumeric(a, l)
	if err != nil {
		return nil, err
	}
	rn, err := ToNumeric(a, r)
	if err != nil {
		return nil, err
	}
	if ln.Type != rn.Type {
		return nil, a.NewTypeError("Cannot mix BigInt and other types, use explicit conversions")
	}
	if ln.Type == TypeBigInt {
		return bigIntOperation(a, ln.BigInt, op, rn.BigInt)
	}
	return NewNumber(numberOperation(ln.Number, op, rn.Number)), nil
}

func numberOperation(x float64, op string, y float64) float64 {
	switch op {
	case "+":
		return x + y
	case "-":
		return x - y
	case "*":
		return x * y
	case "/":
		return x / y
	case "%":
		return math.Mod(x, y)
	case "**":
		return Exponentiate(x, y)
	case "<<":
		return float64(Int32(x) << (Uint32(y) & 31))
	case ">>":
		return float64(Int32(x) >> (Uint32(y) & 31))
	case ">>>":
		return float64(Uint32(x) >> (Uint32(y) & 31))
	case "&":
		return float64(Int32(x) & Int32(y))
	case "|":
		return float64(Int32(x) | Int32(y))
	case "^":
		return float64(Int32(x) ^ Int32(y))
	}
	panic(&AssertionError{Msg: "unknown numeric operator " + op})
}

// Exponentiate is Number::exponentiate; unlike math.Pow, a base of ±1 with
// an infinite exponent is NaN.
func Exponentiate(base, exp float64) float64 {
	if math.IsNaN(exp) {
		return math.NaN()
	}
	if math.IsInf(exp, 0) && math.Abs(base) == 1 {
		return math.NaN()
	}
	return math.Pow(base, exp)
}

func bigIntOperation(a *Agent, x *big.Int, op string, y *big.Int) (*Value, error) {
	z := new(big.Int)
	switch op {
	case "+":
		z.Add(x, y)
	case "-":
		z.Sub(x, y)
	case "*":
		z.Mul(x, y)
	case "/":
		if y.Sign() == 0 {
			return nil, a.NewRangeError("Division by zero")
		}
		z.Quo(x, y)
	case "%":
		if y.Sign() == 0 {
			return nil, a.NewRangeError("Division by zero")
		}
		z.Rem(x, y)
	case "**":
		if y.Sign() < 0 {
			return nil, a.NewRangeError("Exponent must be non-negative")
		}
		z.Exp(x, y, nil)
	case "<<", ">>":
		if !y.IsInt64() {
			return nil, a.NewRangeError("Maximum BigInt size exceeded")
		}
		shift := y.Int64()
		if op == ">>" {
			shift = -shift
		}
		if shift >= 0 {
			if shift > 1<<30 {
				return nil, a.NewRangeError("Maximum BigInt size exceeded")
			}
			z.Lsh(x, uint(shift))
		} else {
			z.Rsh(x, uint(-shift))
		}
	case ">>>":
		return nil, a.NewTypeError("BigInts have no unsigned right shift, use >> instead")
	case "&":
		z.And(x, y)
	case "|":
		z.Or(x, y)
	case "^":
		z.Xor(x, y)
	default:
		panic(&AssertionError{Msg: "unknown bigint operator " + op})
	}
	return NewBigInt(z), nil
}
