package runtime

import (
	"math"
	"strconv"

	"github.com/dop251/goja/unistring"
)

// PropertyKey is a string or a symbol.
type PropertyKey struct {
	Name   unistring.String
	Symbol *Symbol
}

func SymKey(s *Symbol) PropertyKey {
	return PropertyKey{Symbol: s}
}

func UKey(s unistring.String) PropertyKey {
	return PropertyKey{Name: s}
}

// IndexKey returns the key for an integer index.
func IndexKey(i int64) PropertyKey {
	return PropertyKey{Name: unistring.String(strconv.FormatInt(i, 10))}
}

func (k PropertyKey) IsSymbol() bool {
	return k.Symbol != nil
}

// ToValue returns the key as a string or symbol value.
func (k PropertyKey) ToValue() *Value {
	if k.Symbol != nil {
		return NewSymbolValue(k.Symbol)
	}
	return NewUString(k.Name)
}

func (k PropertyKey) String() string {
	if k.Symbol != nil {
		return "[" + GoString(k.Symbol.Description) + "]"
	}
	return GoString(k.Name)
}

// ArrayIndex reports whether k is an array index (a canonical integer
// below 2^32-1).
func (k PropertyKey) ArrayIndex() (uint32, bool) {
	n, ok := k.integerIndex()
	if !ok || n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// integerIndex reports whether k is a canonical non-negative integer below
// 2^53.
func (k PropertyKey) integerIndex() (uint64, bool) {
	if k.Symbol != nil {
		return 0, false
	}
	s := k.Name
	if len(s) == 0 || len(s) > 16 || s.AsUtf16() != nil {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n > 1<<53-1 {
		return 0, false
	}
	return n, true
}

// CanonicalNumericIndexString returns the numeric value of k when k is the
// canonical string form of a Number, or "-0".
func CanonicalNumericIndexString(k PropertyKey) (float64, bool) {
	if k.Symbol != nil {
		return 0, false
	}
	if k.Name == "-0" {
		return math.Copysign(0, -1), true
	}
	n := StringToNumber(k.Name)
	if NumberToString(n) != GoString(k.Name) {
		return 0, false
	}
	return n, true
}
