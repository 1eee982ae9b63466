package runtime

import (
	"math"
	"math/big"
)

// StringToBigInt parses a StringIntegerLiteral. Decimal literals may carry
// a sign; prefixed literals may not.
func StringToBigInt(str string) (*big.Int, bool) {
	s := string(TrimJSSpace(StringFromWTF8(str)))
	if s == "" {
		return new(big.Int), true
	}
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			s = s[2:]
		}
	}
	if base == 10 && len(s) > 1 && (s[0] == '+' || s[0] == '-') {
		if s[1] == '+' || s[1] == '-' {
			return nil, false
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (base != 10 && (c == '+' || c == '-')) {
			return nil, false
		}
	}
	n, ok := new(big.Int).SetString(s, base)
	return n, ok
}

// ToBigInt converts a value following the BigInt conversion table.
func ToBigInt(a *Agent, v *Value) (*big.Int, error) {
	prim, err := ToPrimitive(a, v, HintNumber)
	if err != nil {
		return nil, err
	}
	switch prim.Type {
	case TypeBigInt:
		return prim.BigInt, nil
	case TypeBoolean:
		if prim.Bool {
			return big.NewInt(1), nil
		}
		return new(big.Int), nil
	case TypeString:
		n, ok := StringToBigInt(GoString(prim.Str))
		if !ok {
			return nil, a.NewSyntaxError("Cannot convert %s to a BigInt", GoString(prim.Str))
		}
		return n, nil
	}
	return nil, a.NewTypeError("Cannot convert %s to a BigInt", prim.String())
}

// NumberToBigInt converts an integral Number.
func NumberToBigInt(a *Agent, n float64) (*big.Int, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return nil, a.NewRangeError("The number %s cannot be converted to a BigInt because it is not an integer", NumberToString(n))
	}
	b, _ := new(big.Float).SetFloat64(n).Int(nil)
	return b, nil
}

// BigIntToNumber rounds to the nearest double.
func BigIntToNumber(b *big.Int) float64 {
	f, _ := new(big.Float).SetInt(b).Float64()
	return f
}

// AsIntN wraps b to a signed integer of the given width.
func AsIntN(bits uint, b *big.Int) *big.Int {
	if bits == 0 {
		return new(big.Int)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	r := new(big.Int).Mod(b, mod)
	half := new(big.Int).Rsh(mod, 1)
	if r.Cmp(half) >= 0 {
		r.Sub(r, mod)
	}
	return r
}

// AsUintN wraps b to an unsigned integer of the given width.
func AsUintN(bits uint, b *big.Int) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	return new(big.Int).Mod(b, mod)
}
