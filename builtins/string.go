package builtins

import (
	"math"
	"strings"
	"unicode/utf16"

	"github.com/dop251/goja/unistring"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/example/jscore/runtime"
)

func createStringConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%String.prototype%")

	setMethod(realm, proto, "at", 1, stringAt)
	setMethod(realm, proto, "charAt", 1, stringCharAt)
	setMethod(realm, proto, "charCodeAt", 1, stringCharCodeAt)
	setMethod(realm, proto, "codePointAt", 1, stringCodePointAt)
	setMethod(realm, proto, "concat", 1, stringConcat)
	setMethod(realm, proto, "endsWith", 1, stringEndsWith)
	setMethod(realm, proto, "includes", 1, stringIncludes)
	setMethod(realm, proto, "indexOf", 1, stringIndexOf)
	setMethod(realm, proto, "isWellFormed", 0, stringIsWellFormed)
	setMethod(realm, proto, "lastIndexOf", 1, stringLastIndexOf)
	setMethod(realm, proto, "localeCompare", 1, stringLocaleCompare)
	setMethod(realm, proto, "match", 1, stringMatcher(runtime.SymMatch, "", "match"))
	setMethod(realm, proto, "matchAll", 1, stringMatchAll)
	setMethod(realm, proto, "normalize", 0, stringNormalize)
	setMethod(realm, proto, "padEnd", 1, stringPad(false))
	setMethod(realm, proto, "padStart", 1, stringPad(true))
	setMethod(realm, proto, "repeat", 1, stringRepeat)
	setMethod(realm, proto, "replace", 2, stringReplace)
	setMethod(realm, proto, "replaceAll", 2, stringReplaceAll)
	setMethod(realm, proto, "search", 1, stringMatcher(runtime.SymSearch, "", "search"))
	setMethod(realm, proto, "slice", 2, stringSlice)
	setMethod(realm, proto, "split", 2, stringSplit)
	setMethod(realm, proto, "startsWith", 1, stringStartsWith)
	setMethod(realm, proto, "substr", 2, stringSubstr)
	setMethod(realm, proto, "substring", 2, stringSubstring)
	setMethod(realm, proto, "toLowerCase", 0, stringCaseMapper(cases.Lower(language.Und)))
	setMethod(realm, proto, "toLocaleLowerCase", 0, stringCaseMapper(cases.Lower(language.Und)))
	setMethod(realm, proto, "toUpperCase", 0, stringCaseMapper(cases.Upper(language.Und)))
	setMethod(realm, proto, "toLocaleUpperCase", 0, stringCaseMapper(cases.Upper(language.Und)))
	setMethod(realm, proto, "toString", 0, stringValueOf)
	setMethod(realm, proto, "toWellFormed", 0, stringToWellFormed)
	setMethod(realm, proto, "trim", 0, stringTrimmer(true, true))
	setMethod(realm, proto, "valueOf", 0, stringValueOf)
	setSymbolMethod(realm, proto, runtime.SymIterator, 0, stringIterator)

	// Annex B: trimLeft and trimRight are the same function objects as
	// trimStart and trimEnd.
	trimStart := setMethod(realm, proto, "trimStart", 0, stringTrimmer(true, false))
	trimEnd := setMethod(realm, proto, "trimEnd", 0, stringTrimmer(false, true))
	setDataProp(proto, "trimLeft", runtime.NewObject(trimStart), true, false, true)
	setDataProp(proto, "trimRight", runtime.NewObject(trimEnd), true, false, true)

	for name, wrap := range htmlMethods {
		n := 0
		if wrap.attr != "" {
			n = 1
		}
		setMethod(realm, proto, name, n, createHTML(name, wrap.tag, wrap.attr))
	}

	ctor := newConstructor(realm, "String", 1, proto, stringConstructorCall)
	setMethod(realm, ctor, "fromCharCode", 1, stringFromCharCode)
	setMethod(realm, ctor, "fromCodePoint", 1, stringFromCodePoint)
	setMethod(realm, ctor, "raw", 1, stringRaw)
	return ctor, proto
}

// thisStr is RequireObjectCoercible(this) followed by ToString.
func thisStr(a *runtime.Agent, this *runtime.Value, method string) (unistring.String, error) {
	if this.IsNullish() {
		return "", a.NewTypeError("String.prototype.%s called on null or undefined", method)
	}
	return toStr(a, this)
}

func stringConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	var s unistring.String
	if len(args) > 0 {
		if nt == nil && args[0].IsSymbol() {
			return runtime.NewString(args[0].Symbol.DescriptiveString()), nil
		}
		var err error
		if s, err = toStr(a, args[0]); err != nil {
			return nil, err
		}
	}
	if nt == nil {
		return runtime.NewUString(s), nil
	}
	proto, err := runtime.GetPrototypeFromConstructor(a, nt, "%String.prototype%")
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(runtime.StringCreate(s, proto)), nil
}

func stringValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsString() {
		return this, nil
	}
	v, err := thisSlot(a, this, "[[StringData]]", "String.prototype.valueOf")
	if err != nil {
		return nil, err
	}
	return v.(*runtime.Value), nil
}

func stringFromCharCode(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	units := make([]uint16, len(args))
	for i, v := range args {
		n, err := runtime.ToNumber(a, v)
		if err != nil {
			return nil, err
		}
		units[i] = runtime.Uint16(n)
	}
	return runtime.NewUString(runtime.StringFromUnits(units)), nil
}

func stringFromCodePoint(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	units := make([]uint16, 0, len(args))
	for _, v := range args {
		n, err := runtime.ToNumber(a, v)
		if err != nil {
			return nil, err
		}
		if n != math.Trunc(n) || n < 0 || n > 0x10FFFF {
			return nil, a.NewRangeError("Invalid code point %s", runtime.NumberToString(n))
		}
		units = appendCodePoint(units, rune(n))
	}
	return runtime.NewUString(runtime.StringFromUnits(units)), nil
}

func appendCodePoint(units []uint16, r rune) []uint16 {
	if r >= 0x10000 {
		r1, r2 := utf16.EncodeRune(r)
		return append(units, uint16(r1), uint16(r2))
	}
	return append(units, uint16(r))
}

func stringRaw(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	cooked, err := runtime.ToObject(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	rawV, err := runtime.Get(a, cooked, runtime.StrKey("raw"))
	if err != nil {
		return nil, err
	}
	raw, length, err := thisArrayLike(a, rawV)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := int64(0); i < length; i++ {
		seg, err := getIndex(a, raw, i)
		if err != nil {
			return nil, err
		}
		s, err := toStr(a, seg)
		if err != nil {
			return nil, err
		}
		out = append(out, runtime.Units(s)...)
		if i+1 < length && int(i+1) < len(args) {
			sub, err := toStr(a, args[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, runtime.Units(sub)...)
		}
	}
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}

// stringPosition reads an optional position argument and clamps it to
// [0, length].
func stringPosition(a *runtime.Agent, v *runtime.Value, length int, def int) (int, error) {
	if v.IsUndefined() {
		return def, nil
	}
	n, err := runtime.ToIntegerOrInfinity(a, v)
	if err != nil {
		return 0, err
	}
	return int(math.Min(math.Max(n, 0), float64(length))), nil
}

func stringAt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "at")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	length := float64(runtime.StringLength(s))
	if n < 0 {
		n += length
	}
	if n < 0 || n >= length {
		return runtime.Undefined, nil
	}
	return runtime.NewUString(runtime.Substring(s, int(n), int(n)+1)), nil
}

func stringCharAt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "charAt")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= float64(runtime.StringLength(s)) {
		return runtime.EmptyStr, nil
	}
	return runtime.NewUString(runtime.Substring(s, int(n), int(n)+1)), nil
}

func stringCharCodeAt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "charCodeAt")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= float64(runtime.StringLength(s)) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(float64(runtime.CodeUnitAt(s, int(n)))), nil
}

// codePointAt decodes the code point starting at index i of units,
// returning it and its length in code units. Lone surrogates decode to
// themselves.
func codePointAt(units []uint16, i int) (rune, int) {
	first := units[i]
	if utf16.IsSurrogate(rune(first)) && first < 0xDC00 && i+1 < len(units) {
		second := units[i+1]
		if second >= 0xDC00 && second <= 0xDFFF {
			return utf16.DecodeRune(rune(first), rune(second)), 2
		}
	}
	return rune(first), 1
}

func stringCodePointAt(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "codePointAt")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	if n < 0 || n >= float64(len(units)) {
		return runtime.Undefined, nil
	}
	cp, _ := codePointAt(units, int(n))
	return runtime.NewNumber(float64(cp)), nil
}

func stringConcat(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "concat")
	if err != nil {
		return nil, err
	}
	for _, v := range args {
		next, err := toStr(a, v)
		if err != nil {
			return nil, err
		}
		s = runtime.ConcatStrings(s, next)
	}
	return runtime.NewUString(s), nil
}

// searchArg converts the search string argument of includes, startsWith
// and endsWith, rejecting regular expressions.
func searchArg(a *runtime.Agent, v *runtime.Value, method string) (unistring.String, error) {
	re, err := isRegExp(a, v)
	if err != nil {
		return "", err
	}
	if re {
		return "", a.NewTypeError("First argument to String.prototype.%s must not be a regular expression", method)
	}
	return toStr(a, v)
}

func hasUnitsAt(s, search []uint16, pos int) bool {
	if pos < 0 || pos+len(search) > len(s) {
		return false
	}
	for i, u := range search {
		if s[pos+i] != u {
			return false
		}
	}
	return true
}

func stringStartsWith(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "startsWith")
	if err != nil {
		return nil, err
	}
	search, err := searchArg(a, argAt(args, 0), "startsWith")
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	pos, err := stringPosition(a, argAt(args, 1), len(units), 0)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(hasUnitsAt(units, runtime.Units(search), pos)), nil
}

func stringEndsWith(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "endsWith")
	if err != nil {
		return nil, err
	}
	search, err := searchArg(a, argAt(args, 0), "endsWith")
	if err != nil {
		return nil, err
	}
	units, su := runtime.Units(s), runtime.Units(search)
	end, err := stringPosition(a, argAt(args, 1), len(units), len(units))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(hasUnitsAt(units, su, end-len(su))), nil
}

func stringIncludes(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "includes")
	if err != nil {
		return nil, err
	}
	search, err := searchArg(a, argAt(args, 0), "includes")
	if err != nil {
		return nil, err
	}
	pos, err := stringPosition(a, argAt(args, 1), runtime.StringLength(s), 0)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(runtime.IndexOf(s, search, pos) >= 0), nil
}

func stringIndexOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "indexOf")
	if err != nil {
		return nil, err
	}
	search, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	pos, err := stringPosition(a, argAt(args, 1), runtime.StringLength(s), 0)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(runtime.IndexOf(s, search, pos))), nil
}

func stringLastIndexOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "lastIndexOf")
	if err != nil {
		return nil, err
	}
	search, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	numPos, err := runtime.ToNumber(a, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	units, su := runtime.Units(s), runtime.Units(search)
	start := len(units)
	if !math.IsNaN(numPos) {
		start = int(math.Min(math.Max(runtime.IntegerOrInfinity(numPos), 0), float64(len(units))))
	}
	for i := min(start, len(units)-len(su)); i >= 0; i-- {
		if hasUnitsAt(units, su, i) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func stringLocaleCompare(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "localeCompare")
	if err != nil {
		return nil, err
	}
	that, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	x := norm.NFC.String(runtime.GoString(s))
	y := norm.NFC.String(runtime.GoString(that))
	return runtime.NewNumber(float64(strings.Compare(x, y))), nil
}

func stringIsWellFormed(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "isWellFormed")
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	for i := 0; i < len(units); {
		cp, n := codePointAt(units, i)
		if n == 1 && utf16.IsSurrogate(cp) {
			return runtime.False, nil
		}
		i += n
	}
	return runtime.True, nil
}

func stringToWellFormed(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "toWellFormed")
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	out := make([]uint16, 0, len(units))
	for i := 0; i < len(units); {
		cp, n := codePointAt(units, i)
		if n == 1 && utf16.IsSurrogate(cp) {
			out = append(out, 0xFFFD)
		} else {
			out = append(out, units[i:i+n]...)
		}
		i += n
	}
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}

func stringNormalize(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "normalize")
	if err != nil {
		return nil, err
	}
	form := "NFC"
	if f := argAt(args, 0); !f.IsUndefined() {
		if form, err = toGoStr(a, f); err != nil {
			return nil, err
		}
	}
	var nf norm.Form
	switch form {
	case "NFC":
		nf = norm.NFC
	case "NFD":
		nf = norm.NFD
	case "NFKC":
		nf = norm.NFKC
	case "NFKD":
		nf = norm.NFKD
	default:
		return nil, a.NewRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
	}
	return runtime.NewString(nf.String(runtime.GoString(s))), nil
}

func stringCaseMapper(c cases.Caser) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := thisStr(a, this, "toLowerCase")
		if err != nil {
			return nil, err
		}
		return runtime.NewString(c.String(runtime.GoString(s))), nil
	}
}

func stringPad(atStart bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := thisStr(a, this, "padStart")
		if err != nil {
			return nil, err
		}
		maxLength, err := runtime.ToLength(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		units := runtime.Units(s)
		if maxLength <= int64(len(units)) {
			return runtime.NewUString(s), nil
		}
		filler := []uint16{' '}
		if f := argAt(args, 1); !f.IsUndefined() {
			fs, err := toStr(a, f)
			if err != nil {
				return nil, err
			}
			filler = runtime.Units(fs)
		}
		if len(filler) == 0 {
			return runtime.NewUString(s), nil
		}
		if maxLength > math.MaxInt32 {
			return nil, a.NewRangeError("Invalid string length")
		}
		fillLen := int(maxLength) - len(units)
		pad := make([]uint16, 0, fillLen)
		for len(pad) < fillLen {
			pad = append(pad, filler[:min(len(filler), fillLen-len(pad))]...)
		}
		if atStart {
			return runtime.NewUString(runtime.StringFromUnits(append(pad, units...))), nil
		}
		return runtime.NewUString(runtime.StringFromUnits(append(units, pad...))), nil
	}
}

func stringRepeat(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "repeat")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if n < 0 || math.IsInf(n, 1) {
		return nil, a.NewRangeError("Invalid count value: %s", runtime.NumberToString(n))
	}
	length := runtime.StringLength(s)
	if n == 0 || length == 0 {
		return runtime.EmptyStr, nil
	}
	if n*float64(length) > math.MaxInt32 {
		return nil, a.NewRangeError("Invalid string length")
	}
	if s.AsUtf16() == nil {
		return runtime.NewUString(unistring.String(strings.Repeat(string(s), int(n)))), nil
	}
	units := runtime.Units(s)
	out := make([]uint16, 0, len(units)*int(n))
	for i := 0; i < int(n); i++ {
		out = append(out, units...)
	}
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}

func stringSlice(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "slice")
	if err != nil {
		return nil, err
	}
	length := int64(runtime.StringLength(s))
	from, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	to, err := relativeIndex(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	if from >= to {
		return runtime.EmptyStr, nil
	}
	return runtime.NewUString(runtime.Substring(s, int(from), int(to))), nil
}

func stringSubstring(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "substring")
	if err != nil {
		return nil, err
	}
	length := runtime.StringLength(s)
	start, err := stringPosition(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	end, err := stringPosition(a, argAt(args, 1), length, length)
	if err != nil {
		return nil, err
	}
	if start > end {
		start, end = end, start
	}
	return runtime.NewUString(runtime.Substring(s, start, end)), nil
}

func stringSubstr(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "substr")
	if err != nil {
		return nil, err
	}
	length := int64(runtime.StringLength(s))
	start, err := relativeIndex(a, argAt(args, 0), length, 0)
	if err != nil {
		return nil, err
	}
	count := length - start
	if l := argAt(args, 1); !l.IsUndefined() {
		n, err := runtime.ToIntegerOrInfinity(a, l)
		if err != nil {
			return nil, err
		}
		count = int64(math.Min(math.Max(n, 0), float64(length-start)))
	}
	if count <= 0 {
		return runtime.EmptyStr, nil
	}
	return runtime.NewUString(runtime.Substring(s, int(start), int(start+count))), nil
}

func stringTrimmer(leading, trailing bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := thisStr(a, this, "trim")
		if err != nil {
			return nil, err
		}
		if leading && trailing {
			return runtime.NewUString(runtime.TrimJSSpace(s)), nil
		}
		start, end := 0, runtime.StringLength(s)
		for leading && start < end && runtime.IsJSWhitespace(runtime.CodeUnitAt(s, start)) {
			start++
		}
		for trailing && end > start && runtime.IsJSWhitespace(runtime.CodeUnitAt(s, end-1)) {
			end--
		}
		return runtime.NewUString(runtime.Substring(s, start, end)), nil
	}
}

func stringIterator(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s, err := thisStr(a, this, "[Symbol.iterator]")
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
	pos := 0
	return newNativeIterator(a, "String Iterator", func(a *runtime.Agent) (*runtime.Value, bool, error) {
		if pos >= len(units) {
			return nil, true, nil
		}
		_, n := codePointAt(units, pos)
		v := runtime.NewUString(runtime.StringFromUnits(units[pos : pos+n]))
		pos += n
		return v, false, nil
	}), nil
}

// stringMatcher implements match and search: a non-nullish argument with
// a method under sym handles the call, otherwise the argument is compiled
// into a RegExp with flags.
func stringMatcher(sym *runtime.Symbol, flags, method string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if this.IsNullish() {
			return nil, a.NewTypeError("String.prototype.%s called on null or undefined", method)
		}
		regexp := argAt(args, 0)
		if !regexp.IsNullish() {
			matcher, err := runtime.GetMethod(a, regexp, runtime.SymKey(sym))
			if err != nil {
				return nil, err
			}
			if !matcher.IsUndefined() {
				return callFn(a, matcher, regexp, this)
			}
		}
		s, err := toStr(a, this)
		if err != nil {
			return nil, err
		}
		rx, err := regExpCreate(a, regexp, runtime.NewString(flags))
		if err != nil {
			return nil, err
		}
		return runtime.Invoke(a, runtime.NewObject(rx), runtime.SymKey(sym), []*runtime.Value{runtime.NewUString(s)})
	}
}

// requireGlobalFlag throws unless the regular expression v has the g flag.
func requireGlobalFlag(a *runtime.Agent, v *runtime.Value, method string) error {
	flags, err := runtime.GetV(a, v, runtime.StrKey("flags"))
	if err != nil {
		return err
	}
	if err := runtime.RequireObjectCoercible(a, flags); err != nil {
		return err
	}
	fs, err := toGoStr(a, flags)
	if err != nil {
		return err
	}
	if !strings.Contains(fs, "g") {
		return a.NewTypeError("%s must be called with a global RegExp", method)
	}
	return nil
}

func stringMatchAll(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsNullish() {
		return nil, a.NewTypeError("String.prototype.matchAll called on null or undefined")
	}
	if regexp := argAt(args, 0); !regexp.IsNullish() {
		re, err := isRegExp(a, regexp)
		if err != nil {
			return nil, err
		}
		if re {
			if err := requireGlobalFlag(a, regexp, "String.prototype.matchAll"); err != nil {
				return nil, err
			}
		}
	}
	return stringMatcher(runtime.SymMatchAll, "g", "matchAll")(a, this, args, nt)
}

// getSubstitution expands the $-patterns of a replacement template.
func getSubstitution(a *runtime.Agent, matched, str []uint16, position int, captures []*runtime.Value, namedCaptures *runtime.Value, replacement []uint16) ([]uint16, error) {
	var out []uint16
	tail := min(position+len(matched), len(str))
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 >= len(replacement) {
			out = append(out, c)
			continue
		}
		next := replacement[i+1]
		switch {
		case next == '$':
			out = append(out, '$')
			i++
		case next == '&':
			out = append(out, matched...)
			i++
		case next == '`':
			out = append(out, str[:position]...)
			i++
		case next == '\'':
			out = append(out, str[tail:]...)
			i++
		case next >= '0' && next <= '9':
			index, width := int(next-'0'), 1
			if i+2 < len(replacement) && replacement[i+2] >= '0' && replacement[i+2] <= '9' {
				if two := index*10 + int(replacement[i+2]-'0'); two >= 1 && two <= len(captures) {
					index, width = two, 2
				}
			}
			if index < 1 || index > len(captures) {
				out = append(out, c)
				continue
			}
			if capture := captures[index-1]; !capture.IsUndefined() {
				s, err := toStr(a, capture)
				if err != nil {
					return nil, err
				}
				out = append(out, runtime.Units(s)...)
			}
			i += width
		case next == '<':
			end := -1
			for j := i + 2; j < len(replacement); j++ {
				if replacement[j] == '>' {
					end = j
					break
				}
			}
			if namedCaptures.IsUndefined() || end < 0 {
				out = append(out, c)
				continue
			}
			name := runtime.StringFromUnits(replacement[i+2 : end])
			capture, err := runtime.GetV(a, namedCaptures, runtime.UKey(name))
			if err != nil {
				return nil, err
			}
			if !capture.IsUndefined() {
				s, err := toStr(a, capture)
				if err != nil {
					return nil, err
				}
				out = append(out, runtime.Units(s)...)
			}
			i = end
		default:
			out = append(out, c)
		}
	}
	return out, nil
}

// replaceString implements replace and replaceAll for a string pattern.
func replaceString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, all bool) (*runtime.Value, error) {
	s, err := toStr(a, this)
	if err != nil {
		return nil, err
	}
	search, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	replaceValue := argAt(args, 1)
	functional := runtime.IsCallable(replaceValue)
	var template []uint16
	if !functional {
		rs, err := toStr(a, replaceValue)
		if err != nil {
			return nil, err
		}
		template = runtime.Units(rs)
	}

	units, su := runtime.Units(s), runtime.Units(search)
	advance := max(len(su), 1)
	var positions []int
	for pos := runtime.IndexOf(s, search, 0); pos >= 0; pos = runtime.IndexOf(s, search, pos+advance) {
		positions = append(positions, pos)
		if !all || pos+advance > len(units) {
			break
		}
	}
	if len(positions) == 0 {
		return runtime.NewUString(s), nil
	}

	var out []uint16
	end := 0
	for _, pos := range positions {
		var replacement []uint16
		if functional {
			r, err := callFn(a, replaceValue, runtime.Undefined, runtime.NewUString(search), runtime.NewNumber(float64(pos)), runtime.NewUString(s))
			if err != nil {
				return nil, err
			}
			rs, err := toStr(a, r)
			if err != nil {
				return nil, err
			}
			replacement = runtime.Units(rs)
		} else if replacement, err = getSubstitution(a, su, units, pos, nil, runtime.Undefined, template); err != nil {
			return nil, err
		}
		out = append(out, units[end:pos]...)
		out = append(out, replacement...)
		end = pos + len(su)
	}
	out = append(out, units[end:]...)
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}

func stringReplace(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsNullish() {
		return nil, a.NewTypeError("String.prototype.replace called on null or undefined")
	}
	if search := argAt(args, 0); !search.IsNullish() {
		replacer, err := runtime.GetMethod(a, search, runtime.SymKey(runtime.SymReplace))
		if err != nil {
			return nil, err
		}
		if !replacer.IsUndefined() {
			return callFn(a, replacer, search, this, argAt(args, 1))
		}
	}
	return replaceString(a, this, args, false)
}

func stringReplaceAll(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsNullish() {
		return nil, a.NewTypeError("String.prototype.replaceAll called on null or undefined")
	}
	if search := argAt(args, 0); !search.IsNullish() {
		re, err := isRegExp(a, search)
		if err != nil {
			return nil, err
		}
		if re {
			if err := requireGlobalFlag(a, search, "String.prototype.replaceAll"); err != nil {
				return nil, err
			}
		}
		replacer, err := runtime.GetMethod(a, search, runtime.SymKey(runtime.SymReplace))
		if err != nil {
			return nil, err
		}
		if !replacer.IsUndefined() {
			return callFn(a, replacer, search, this, argAt(args, 1))
		}
	}
	return replaceString(a, this, args, true)
}

func stringSplit(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsNullish() {
		return nil, a.NewTypeError("String.prototype.split called on null or undefined")
	}
	separator, limit := argAt(args, 0), argAt(args, 1)
	if !separator.IsNullish() {
		splitter, err := runtime.GetMethod(a, separator, runtime.SymKey(runtime.SymSplit))
		if err != nil {
			return nil, err
		}
		if !splitter.IsUndefined() {
			return callFn(a, splitter, separator, this, limit)
		}
	}
	s, err := toStr(a, this)
	if err != nil {
		return nil, err
	}
	lim := uint32(math.MaxUint32)
	if !limit.IsUndefined() {
		if lim, err = runtime.ToUint32(a, limit); err != nil {
			return nil, err
		}
	}
	sep, err := toStr(a, separator)
	if err != nil {
		return nil, err
	}
	if lim == 0 {
		return arrayValue(a, nil), nil
	}
	if separator.IsUndefined() {
		return arrayValue(a, []*runtime.Value{runtime.NewUString(s)}), nil
	}
	units, su := runtime.Units(s), runtime.Units(sep)
	if len(units) == 0 {
		if len(su) > 0 {
			return arrayValue(a, []*runtime.Value{runtime.NewUString(s)}), nil
		}
		return arrayValue(a, nil), nil
	}
	var parts []*runtime.Value
	if len(su) == 0 {
		for i := 0; i < len(units) && uint32(len(parts)) < lim; i++ {
			parts = append(parts, runtime.NewUString(runtime.StringFromUnits(units[i:i+1])))
		}
		return arrayValue(a, parts), nil
	}
	start := 0
	for pos := runtime.IndexOf(s, sep, 0); pos >= 0; pos = runtime.IndexOf(s, sep, start) {
		parts = append(parts, runtime.NewUString(runtime.StringFromUnits(units[start:pos])))
		if uint32(len(parts)) >= lim {
			return arrayValue(a, parts), nil
		}
		start = pos + len(su)
	}
	parts = append(parts, runtime.NewUString(runtime.StringFromUnits(units[start:])))
	return arrayValue(a, parts), nil
}

type htmlMethod struct{ tag, attr string }

// htmlMethods are the Annex B String.prototype HTML methods.
var htmlMethods = map[string]htmlMethod{
	"anchor":    {"a", "name"},
	"big":       {"big", ""},
	"blink":     {"blink", ""},
	"bold":      {"b", ""},
	"fixed":     {"tt", ""},
	"fontcolor": {"font", "color"},
	"fontsize":  {"font", "size"},
	"italics":   {"i", ""},
	"link":      {"a", "href"},
	"small":     {"small", ""},
	"strike":    {"strike", ""},
	"sub":       {"sub", ""},
	"sup":       {"sup", ""},
}

func createHTML(method, tag, attr string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := thisStr(a, this, method)
		if err != nil {
			return nil, err
		}
		open := "<" + tag
		if attr != "" {
			v, err := toGoStr(a, argAt(args, 0))
			if err != nil {
				return nil, err
			}
			open += " " + attr + "=\"" + strings.ReplaceAll(v, "\"", "&quot;") + "\""
		}
		return runtime.NewString(open + ">" + runtime.GoString(s) + "</" + tag + ">"), nil
	}
}
