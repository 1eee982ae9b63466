package runtime

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dop251/goja/unistring"
)

// Hints for ToPrimitive.
const (
	HintDefault = "default"
	HintNumber  = "number"
	HintString  = "string"
)

// ToPrimitive converts an object to a primitive, consulting @@toPrimitive
// first and then valueOf/toString in hint order.
func ToPrimitive(a *Agent, v *Value, hint string) (*Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	exotic, err := GetMethod(a, v, SymKey(SymToPrimitive))
	if err != nil {
		return nil, err
	}
	if !exotic.IsUndefined() {
		r, err := Call(a, exotic, v, []*Value{NewString(hint)})
		if err != nil {
			return nil, err
		}
		if r.IsObject() {
			return nil, a.NewTypeError("Cannot convert object to primitive value")
		}
		return r, nil
	}
	if hint == HintDefault {
		hint = HintNumber
	}
	return OrdinaryToPrimitive(a, v.Object, hint)
}

func OrdinaryToPrimitive(a *Agent, o *Object, hint string) (*Value, error) {
	methods := []string{"valueOf", "toString"}
	if hint == HintString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		m, err := Get(a, o, StrKey(name))
		if err != nil {
			return nil, err
		}
		if !IsCallable(m) {
			continue
		}
		r, err := Call(a, m, NewObject(o), nil)
		if err != nil {
			return nil, err
		}
		if !r.IsObject() {
			return r, nil
		}
	}
	return nil, a.NewTypeError("Cannot convert object to primitive value")
}

func ToNumber(a *Agent, v *Value) (float64, error) {
	switch v.Type {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case TypeNumber:
		return v.Number, nil
	case TypeString:
		return StringToNumber(v.Str), nil
	case TypeSymbol:
		return 0, a.NewTypeError("Cannot convert a Symbol value to a number")
	case TypeBigInt:
		return 0, a.NewTypeError("Cannot convert a BigInt value to a number")
	}
	prim, err := ToPrimitive(a, v, HintNumber)
	if err != nil {
		return 0, err
	}
	return ToNumber(a, prim)
}

// ToNumeric returns a Number or BigInt value.
func ToNumeric(a *Agent, v *Value) (*Value, error) {
	prim, err := ToPrimitive(a, v, HintNumber)
	if err != nil {
		return nil, err
	}
	if prim.Type == TypeBigInt || prim.Type == TypeNumber {
		return prim, nil
	}
	n, err := ToNumber(a, prim)
	if err != nil {
		return nil, err
	}
	return NewNumber(n), nil
}

func ToString(a *Agent, v *Value) (unistring.String, error) {
	switch v.Type {
	case TypeString:
		return v.Str, nil
	case TypeSymbol:
		return "", a.NewTypeError("Cannot convert a Symbol value to a string")
	case TypeObject:
		prim, err := ToPrimitive(a, v, HintString)
		if err != nil {
			return "", err
		}
		return ToString(a, prim)
	case TypeBigInt:
		return unistring.String(v.BigInt.String()), nil
	}
	return unistring.String(v.String()), nil
}

// ToGoString is ToString rendered as a Go string.
func ToGoString(a *Agent, v *Value) (string, error) {
	s, err := ToString(a, v)
	if err != nil {
		return "", err
	}
	return GoString(s), nil
}

func ToPropertyKey(a *Agent, v *Value) (PropertyKey, error) {
	if v.Type == TypeSymbol {
		return SymKey(v.Symbol), nil
	}
	if v.Type == TypeNumber {
		return UKey(unistring.String(NumberToString(v.Number))), nil
	}
	prim, err := ToPrimitive(a, v, HintString)
	if err != nil {
		return PropertyKey{}, err
	}
	if prim.Type == TypeSymbol {
		return SymKey(prim.Symbol), nil
	}
	s, err := ToString(a, prim)
	if err != nil {
		return PropertyKey{}, err
	}
	return UKey(s), nil
}

// ToObject boxes primitives in wrapper objects of the running realm.
func ToObject(a *Agent, v *Value) (*Object, error) {
	realm := a.CurrentRealm()
	var o *Object
	switch v.Type {
	case TypeObject:
		return v.Object, nil
	case TypeUndefined, TypeNull:
		return nil, a.NewTypeError("Cannot convert undefined or null to object")
	case TypeString:
		return StringCreate(v.Str, realm.Intrinsic("%String.prototype%")), nil
	case TypeBoolean:
		o = NewOrdinaryObject(realm.Intrinsic("%Boolean.prototype%"))
		o.Kind = KindBoolean
		o.SetSlot("[[BooleanData]]", v)
	case TypeNumber:
		o = NewOrdinaryObject(realm.Intrinsic("%Number.prototype%"))
		o.Kind = KindNumber
		o.SetSlot("[[NumberData]]", v)
	case TypeSymbol:
		o = NewOrdinaryObject(realm.Intrinsic("%Symbol.prototype%"))
		o.Kind = KindSymbol
		o.SetSlot("[[SymbolData]]", v)
	case TypeBigInt:
		o = NewOrdinaryObject(realm.Intrinsic("%BigInt.prototype%"))
		o.Kind = KindBigInt
		o.SetSlot("[[BigIntData]]", v)
	}
	return o, nil
}

// RequireObjectCoercible throws for undefined and null.
func RequireObjectCoercible(a *Agent, v *Value) error {
	if v.IsNullish() {
		return a.NewTypeError("Cannot convert undefined or null to object")
	}
	return nil
}

func ToIntegerOrInfinity(a *Agent, v *Value) (float64, error) {
	n, err := ToNumber(a, v)
	if err != nil {
		return 0, err
	}
	return IntegerOrInfinity(n), nil
}

// IntegerOrInfinity truncates n, mapping NaN to 0.
func IntegerOrInfinity(n float64) float64 {
	if math.IsNaN(n) || n == 0 {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}

func ToLength(a *Agent, v *Value) (int64, error) {
	n, err := ToIntegerOrInfinity(a, v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, nil
	}
	if n > 1<<53-1 {
		return 1<<53 - 1, nil
	}
	return int64(n), nil
}

func ToIndex(a *Agent, v *Value) (int64, error) {
	if v.IsUndefined() {
		return 0, nil
	}
	n, err := ToIntegerOrInfinity(a, v)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 1<<53-1 {
		return 0, a.NewRangeError("Invalid index")
	}
	return int64(n), nil
}

func ToInt32(a *Agent, v *Value) (int32, error) {
	n, err := ToNumber(a, v)
	if err != nil {
		return 0, err
	}
	return Int32(n), nil
}

func ToUint32(a *Agent, v *Value) (uint32, error) {
	n, err := ToNumber(a, v)
	if err != nil {
		return 0, err
	}
	return Uint32(n), nil
}

// modular reduces n modulo 2^bits after truncation.
func modular(n float64, bits uint) uint64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	n = math.Trunc(n)
	m := math.Mod(n, float64(uint64(1)<<bits))
	if m < 0 {
		m += float64(uint64(1) << bits)
	}
	return uint64(m)
}

func Uint32(n float64) uint32 { return uint32(modular(n, 32)) }
func Int32(n float64) int32   { return int32(uint32(modular(n, 32))) }
func Uint16(n float64) uint16 { return uint16(modular(n, 16)) }
func Int16(n float64) int16   { return int16(uint16(modular(n, 16))) }
func Uint8(n float64) uint8   { return uint8(modular(n, 8)) }
func Int8(n float64) int8     { return int8(uint8(modular(n, 8))) }

// Uint8Clamp rounds half to even and clamps to [0, 255].
func Uint8Clamp(n float64) uint8 {
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(n))
}

// IsJSWhitespace reports whether u is WhiteSpace or LineTerminator.
func IsJSWhitespace(u uint16) bool {
	switch u {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	if u >= 0x2000 && u <= 0x200A {
		return true
	}
	return u > 0x7F && unicode.Is(unicode.Zs, rune(u))
}

// TrimJSSpace removes leading and trailing whitespace and line terminators.
func TrimJSSpace(s unistring.String) unistring.String {
	n := StringLength(s)
	start, end := 0, n
	for start < end && IsJSWhitespace(CodeUnitAt(s, start)) {
		start++
	}
	for end > start && IsJSWhitespace(CodeUnitAt(s, end-1)) {
		end--
	}
	if start == 0 && end == n {
		return s
	}
	return Substring(s, start, end)
}

// StringToNumber parses a StringNumericLiteral; malformed input is NaN.
func StringToNumber(str unistring.String) float64 {
	trimmed := TrimJSSpace(str)
	if trimmed.AsUtf16() != nil {
		return math.NaN()
	}
	s := string(trimmed)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}
	if !isDecimalLiteral(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func parseRadix(s string, base int) float64 {
	if s == "" {
		return math.NaN()
	}
	var n float64
	for _, c := range s {
		d := digitVal(c)
		if d < 0 || d >= base {
			return math.NaN()
		}
		n = n*float64(base) + float64(d)
	}
	return n
}

func digitVal(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// isDecimalLiteral matches [+-] digits [. digits] [e [+-] digits] with at
// least one mantissa digit.
func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

// NumberToString formats n the way Number.prototype.toString does for
// radix 10: shortest round-trip digits, exponent form outside [1e-7, 1e21).
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case n == 0:
		return "0"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n < 0:
		return "-" + NumberToString(-n)
	}
	repr := strconv.FormatFloat(n, 'e', -1, 64)
	mant, expPart, _ := strings.Cut(repr, "e")
	digits := strings.Replace(mant, ".", "", 1)
	e, _ := strconv.Atoi(expPart)
	k, pos := len(digits), e+1
	switch {
	case k <= pos && pos <= 21:
		return digits + strings.Repeat("0", pos-k)
	case 0 < pos && pos <= 21:
		return digits[:pos] + "." + digits[pos:]
	case -6 < pos && pos <= 0:
		return "0." + strings.Repeat("0", -pos) + digits
	}
	sign := "+"
	exp := pos - 1
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(exp)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(exp)
}
