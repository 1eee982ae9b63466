package runtime

import (
	"math"
	"math/big"

	"github.com/dop251/goja/unistring"
)

// ValueType represents the type of a language value.
type ValueType int

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeBigInt
	TypeString
	TypeSymbol
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeBigInt:
		return "bigint"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged variant over the language types. Values are immutable;
// objects are mutated only through their internal operations.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    unistring.String
	BigInt *big.Int
	Symbol *Symbol
	Object *Object
}

var (
	Undefined = &Value{Type: TypeUndefined}
	Null      = &Value{Type: TypeNull}
	True      = &Value{Type: TypeBoolean, Bool: true}
	False     = &Value{Type: TypeBoolean, Bool: false}
	NaN       = &Value{Type: TypeNumber, Number: math.NaN()}
	PosInf    = &Value{Type: TypeNumber, Number: math.Inf(1)}
	NegInf    = &Value{Type: TypeNumber, Number: math.Inf(-1)}
	Zero      = &Value{Type: TypeNumber, Number: 0}
	EmptyStr  = &Value{Type: TypeString}
)

func NewNumber(n float64) *Value {
	return &Value{Type: TypeNumber, Number: n}
}

// NewString converts a Go string. Lone surrogates encoded the way the lexer
// writes them are preserved as code units.
func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: StringFromWTF8(s)}
}

func NewUString(s unistring.String) *Value {
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewObject(obj *Object) *Value {
	return &Value{Type: TypeObject, Object: obj}
}

func NewBigInt(n *big.Int) *Value {
	return &Value{Type: TypeBigInt, BigInt: n}
}

func NewSymbolValue(s *Symbol) *Value {
	return &Value{Type: TypeSymbol, Symbol: s}
}

// ObjectOrNull wraps o, mapping nil to null.
func ObjectOrNull(o *Object) *Value {
	if o == nil {
		return Null
	}
	return NewObject(o)
}

// ObjectOrUndefined wraps o, mapping nil to undefined.
func ObjectOrUndefined(o *Object) *Value {
	if o == nil {
		return Undefined
	}
	return NewObject(o)
}

func (v *Value) IsUndefined() bool { return v == nil || v.Type == TypeUndefined }
func (v *Value) IsNull() bool      { return v != nil && v.Type == TypeNull }
func (v *Value) IsNullish() bool   { return v == nil || v.Type == TypeUndefined || v.Type == TypeNull }
func (v *Value) IsObject() bool    { return v != nil && v.Type == TypeObject }
func (v *Value) IsString() bool    { return v != nil && v.Type == TypeString }
func (v *Value) IsNumber() bool    { return v != nil && v.Type == TypeNumber }
func (v *Value) IsSymbol() bool    { return v != nil && v.Type == TypeSymbol }
func (v *Value) IsBigInt() bool    { return v != nil && v.Type == TypeBigInt }

// ToBoolean implements the ToBoolean abstract operation.
func (v *Value) ToBoolean() bool {
	switch v.Type {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeBigInt:
		return v.BigInt.Sign() != 0
	case TypeString:
		return len(v.Str) > 0
	default:
		return true
	}
}

// String renders the value for diagnostics without running guest code.
func (v *Value) String() string {
	if v == nil {
		return "<empty>"
	}
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.Number)
	case TypeBigInt:
		return v.BigInt.String() + "n"
	case TypeString:
		return v.Str.String()
	case TypeSymbol:
		return v.Symbol.DescriptiveString()
	case TypeObject:
		return v.Object.describe()
	}
	return "unknown"
}

// SameValue implements the SameValue algorithm: NaN equals NaN and the two
// zeroes differ.
func SameValue(x, y *Value) bool {
	if x.Type == TypeNumber && y.Type == TypeNumber {
		if math.IsNaN(x.Number) && math.IsNaN(y.Number) {
			return true
		}
		if x.Number == 0 && y.Number == 0 {
			return math.Signbit(x.Number) == math.Signbit(y.Number)
		}
		return x.Number == y.Number
	}
	return sameValueNonNumber(x, y)
}

// SameValueZero is SameValue with the two zeroes equal.
func SameValueZero(x, y *Value) bool {
	if x.Type == TypeNumber && y.Type == TypeNumber {
		if math.IsNaN(x.Number) && math.IsNaN(y.Number) {
			return true
		}
		return x.Number == y.Number
	}
	return sameValueNonNumber(x, y)
}

// IsStrictlyEqual implements ===.
func IsStrictlyEqual(x, y *Value) bool {
	if x.Type == TypeNumber && y.Type == TypeNumber {
		return x.Number == y.Number
	}
	return sameValueNonNumber(x, y)
}

func sameValueNonNumber(x, y *Value) bool {
	if x.Type != y.Type {
		return false
	}
	switch x.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return x.Bool == y.Bool
	case TypeBigInt:
		return x.BigInt.Cmp(y.BigInt) == 0
	case TypeString:
		return x.Str == y.Str
	case TypeSymbol:
		return x.Symbol == y.Symbol
	case TypeObject:
		return x.Object == y.Object
	}
	return false
}
