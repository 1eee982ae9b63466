package runtime

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dop251/goja/unistring"
)

const bom = 0xFEFF

// StringFromWTF8 converts a Go string to a language string. Byte sequences
// encoding a lone surrogate (ED A0..BF xx) become the matching code unit.
func StringFromWTF8(s string) unistring.String {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return unistring.String(s)
	}
	units := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 && i+2 < len(s) && s[i] == 0xED && s[i+1] >= 0xA0 && s[i+1] <= 0xBF {
			u := uint16(0xD000) | uint16(s[i+1]&0x3F)<<6 | uint16(s[i+2]&0x3F)
			units = append(units, u)
			i += 3
			continue
		}
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			units = append(units, uint16(r1), uint16(r2))
		} else {
			units = append(units, uint16(r))
		}
		i += size
	}
	return StringFromUnits(units)
}

// StringFromUnits builds a string from UTF-16 code units. ASCII content is
// stored in its compact form so equal strings compare equal with ==.
func StringFromUnits(units []uint16) unistring.String {
	ascii := true
	for _, u := range units {
		if u >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		b := make([]byte, len(units))
		for i, u := range units {
			b[i] = byte(u)
		}
		return unistring.String(b)
	}
	buf := make([]uint16, len(units)+1)
	buf[0] = bom
	copy(buf[1:], units)
	return unistring.FromUtf16(buf)
}

// Units returns the UTF-16 code units of s.
func Units(s unistring.String) []uint16 {
	if b := s.AsUtf16(); b != nil {
		return b[1:]
	}
	units := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		units[i] = uint16(s[i])
	}
	return units
}

// StringLength returns the number of code units in s.
func StringLength(s unistring.String) int {
	if b := s.AsUtf16(); b != nil {
		return len(b) - 1
	}
	return len(s)
}

// CodeUnitAt returns the code unit of s at index i.
func CodeUnitAt(s unistring.String, i int) uint16 {
	if b := s.AsUtf16(); b != nil {
		return b[i+1]
	}
	return uint16(s[i])
}

// Substring returns the code units of s in [from, to).
func Substring(s unistring.String, from, to int) unistring.String {
	if b := s.AsUtf16(); b != nil {
		return StringFromUnits(b[from+1 : to+1])
	}
	return s[from:to]
}

// ConcatStrings concatenates two strings.
func ConcatStrings(x, y unistring.String) unistring.String {
	if x.AsUtf16() == nil && y.AsUtf16() == nil {
		return x + y
	}
	ux, uy := Units(x), Units(y)
	out := make([]uint16, 0, len(ux)+len(uy))
	out = append(out, ux...)
	out = append(out, uy...)
	return StringFromUnits(out)
}

// CompareStrings orders strings by code unit value.
func CompareStrings(x, y unistring.String) int {
	if x.AsUtf16() == nil && y.AsUtf16() == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	ux, uy := Units(x), Units(y)
	for i := 0; i < len(ux) && i < len(uy); i++ {
		if ux[i] != uy[i] {
			if ux[i] < uy[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ux) < len(uy):
		return -1
	case len(ux) > len(uy):
		return 1
	}
	return 0
}

// IndexOf returns the first index >= from at which search occurs in s, or -1.
func IndexOf(s, search unistring.String, from int) int {
	us, uq := Units(s), Units(search)
	for i := from; i+len(uq) <= len(us); i++ {
		match := true
		for j := range uq {
			if us[i+j] != uq[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// GoString renders s as a Go string; lone surrogates become U+FFFD.
func GoString(s unistring.String) string {
	if s.AsUtf16() == nil {
		return string(s)
	}
	return string(utf16.Decode(Units(s)))
}

// StrKey returns the property key for a Go string.
func StrKey(s string) PropertyKey {
	return PropertyKey{Name: StringFromWTF8(s)}
}
