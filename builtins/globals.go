package builtins

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/jscore/runtime"
)

const (
	uriAlnum     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	uriMark      = "-_.!~*'()"
	uriReserved  = ";/?:@&=+$,"
	escapeUnsafe = "@*_+-./"
	upperHex     = "0123456789ABCDEF"
)

// installGlobalFunctions defines the value properties and function
// properties of the global object.
func installGlobalFunctions(realm *runtime.Realm, global *runtime.Object) {
	setConstant(global, "NaN", runtime.NaN)
	setConstant(global, "Infinity", runtime.PosInf)
	setConstant(global, "undefined", runtime.Undefined)
	setDataProp(global, "globalThis", runtime.NewObject(global), true, false, true)

	setMethod(realm, global, "isNaN", 1, globalIsNaN)
	setMethod(realm, global, "isFinite", 1, globalIsFinite)
	realm.SetIntrinsic("%parseInt%", setMethod(realm, global, "parseInt", 2, globalParseInt))
	realm.SetIntrinsic("%parseFloat%", setMethod(realm, global, "parseFloat", 1, globalParseFloat))
	setMethod(realm, global, "encodeURI", 1, uriEncoder(uriReserved+uriAlnum+uriMark+"#"))
	setMethod(realm, global, "encodeURIComponent", 1, uriEncoder(uriAlnum+uriMark))
	setMethod(realm, global, "decodeURI", 1, uriDecoder(uriReserved+"#"))
	setMethod(realm, global, "decodeURIComponent", 1, uriDecoder(""))
	setMethod(realm, global, "escape", 1, globalEscape)
	setMethod(realm, global, "unescape", 1, globalUnescape)
}

func globalIsNaN(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	n, err := runtime.ToNumber(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(math.IsNaN(n)), nil
}

func globalIsFinite(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	n, err := runtime.ToNumber(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

func globalParseInt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	input, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	s := runtime.GoString(runtime.TrimJSSpace(input))
	r, err := runtime.ToInt32(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	sign := 1.0
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	radix := int(r)
	stripPrefix := true
	if radix != 0 {
		if radix < 2 || radix > 36 {
			return runtime.NaN, nil
		}
		stripPrefix = radix == 16
	} else {
		radix = 10
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	digits := s[:end]
	if radix == 10 {
		f, _ := strconv.ParseFloat(digits, 64)
		return runtime.NewNumber(sign * f), nil
	}
	var f float64
	for i := 0; i < len(digits); i++ {
		f = f*float64(radix) + float64(digitValue(digits[i]))
	}
	return runtime.NewNumber(sign * f), nil
}

func globalParseFloat(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	input, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	s := runtime.GoString(runtime.TrimJSSpace(input))
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) <= 1 && strings.HasPrefix(body, "Infinity") {
		if strings.HasPrefix(s, "-") {
			return runtime.NegInf, nil
		}
		return runtime.PosInf, nil
	}

	// Longest prefix that is a StrDecimalLiteral.
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
		return runtime.NaN, nil
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			end = k
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil && !math.IsInf(f, 0) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(f), nil
}

// uriEncoder returns an encodeURI-style function leaving the code units in
// unescaped untouched.
func uriEncoder(unescaped string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := toStr(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		units := runtime.Units(s)
		var sb strings.Builder
		for k := 0; k < len(units); k++ {
			u := units[k]
			if u < utf8.RuneSelf && strings.IndexByte(unescaped, byte(u)) >= 0 {
				sb.WriteByte(byte(u))
				continue
			}
			cp, n := codePointAt(units, k)
			if cp >= 0xD800 && cp <= 0xDFFF {
				return nil, a.NewURIError("URI malformed")
			}
			k += n - 1
			var buf [utf8.UTFMax]byte
			for _, b := range buf[:utf8.EncodeRune(buf[:], cp)] {
				sb.WriteByte('%')
				sb.WriteByte(upperHex[b>>4])
				sb.WriteByte(upperHex[b&0xF])
			}
		}
		return runtime.NewString(sb.String()), nil
	}
}

func hexByte(units []uint16, k int) (byte, bool) {
	if k+2 >= len(units) || units[k] != '%' || units[k+1] >= utf8.RuneSelf || units[k+2] >= utf8.RuneSelf {
		return 0, false
	}
	hi, lo := digitValue(byte(units[k+1])), digitValue(byte(units[k+2]))
	if hi >= 16 || lo >= 16 {
		return 0, false
	}
	return byte(hi<<4 | lo), true
}

// uriDecoder returns a decodeURI-style function; escapes decoding to a
// character in reserved are kept as written.
func uriDecoder(reserved string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := toStr(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		units := runtime.Units(s)
		out := make([]uint16, 0, len(units))
		for k := 0; k < len(units); k++ {
			if units[k] != '%' {
				out = append(out, units[k])
				continue
			}
			start := k
			b, ok := hexByte(units, k)
			if !ok {
				return nil, a.NewURIError("URI malformed")
			}
			k += 2
			if b < utf8.RuneSelf {
				if strings.IndexByte(reserved, b) >= 0 {
					out = append(out, units[start:k+1]...)
				} else {
					out = append(out, uint16(b))
				}
				continue
			}
			n := 0
			switch {
			case b&0xE0 == 0xC0:
				n = 2
			case b&0xF0 == 0xE0:
				n = 3
			case b&0xF8 == 0xF0:
				n = 4
			default:
				return nil, a.NewURIError("URI malformed")
			}
			octets := []byte{b}
			for j := 1; j < n; j++ {
				k++
				c, ok := hexByte(units, k)
				if !ok || c&0xC0 != 0x80 {
					return nil, a.NewURIError("URI malformed")
				}
				octets = append(octets, c)
				k += 2
			}
			r, size := utf8.DecodeRune(octets)
			if size != n {
				return nil, a.NewURIError("URI malformed")
			}
			out = appendCodePoint(out, r)
		}
		return runtime.NewUString(runtime.StringFromUnits(out)), nil
	}
}

func globalEscape(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, u := range runtime.Units(s) {
		switch {
		case u < utf8.RuneSelf && (strings.IndexByte(uriAlnum, byte(u)) >= 0 || strings.IndexByte(escapeUnsafe, byte(u)) >= 0):
			sb.WriteByte(byte(u))
		case u < 0x100:
			sb.WriteByte('%')
			sb.WriteByte(upperHex[u>>4])
			sb.WriteByte(upperHex[u&0xF])
		default:
			sb.WriteString("%u")
			sb.WriteByte(upperHex[u>>12])
			sb.WriteByte(upperHex[(u>>8)&0xF])
			sb.WriteByte(upperHex[(u>>4)&0xF])
			sb.WriteByte(upperHex[u&0xF])
		}
	}
	return runtime.NewString(sb.String()), nil
}

func globalUnescape(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	hexRun := func(from, n int) (uint16, bool) {
		if from+n > len(units) {
			return 0, false
		}
		var v uint16
		for _, u := range units[from : from+n] {
			if u >= utf8.RuneSelf || digitValue(byte(u)) >= 16 {
				return 0, false
			}
			v = v<<4 | uint16(digitValue(byte(u)))
		}
		return v, true
	}
	out := make([]uint16, 0, len(units))
	for k := 0; k < len(units); k++ {
		if units[k] == '%' {
			if k+1 < len(units) && units[k+1] == 'u' {
				if v, ok := hexRun(k+2, 4); ok {
					out = append(out, v)
					k += 5
					continue
				}
			} else if v, ok := hexRun(k+1, 2); ok {
				out = append(out, v)
				k += 2
				continue
			}
		}
		out = append(out, units[k])
	}
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}
