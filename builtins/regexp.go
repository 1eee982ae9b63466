package builtins

import (
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/dop251/goja/unistring"

	"github.com/example/jscore/runtime"
)

const regExpSlot = "[[RegExpMatcher]]"

// regExpMatchTimeout bounds a single match attempt so that catastrophic
// backtracking surfaces as an error instead of hanging the agent.
const regExpMatchTimeout = 5 * time.Second

type regExpData struct {
	source unistring.String
	flags  string
	re     *regexp2.Regexp
}

func (d *regExpData) has(flag byte) bool {
	return strings.IndexByte(d.flags, flag) >= 0
}

func (d *regExpData) fullUnicode() bool {
	return d.has('u') || d.has('v')
}

// regExpFlags lists the flag accessors of %RegExp.prototype% in the order
// the flags getter concatenates them.
var regExpFlags = []struct {
	flag byte
	name string
}{
	{'d', "hasIndices"},
	{'g', "global"},
	{'i', "ignoreCase"},
	{'m', "multiline"},
	{'s', "dotAll"},
	{'u', "unicode"},
	{'v', "unicodeSets"},
	{'y', "sticky"},
}

func createRegExpConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%RegExp.prototype%", proto)

	setMethod(realm, proto, "exec", 1, regExpProtoExec)
	setMethod(realm, proto, "test", 1, regExpProtoTest)
	setMethod(realm, proto, "toString", 0, regExpProtoToString)
	setMethod(realm, proto, "compile", 2, regExpProtoCompile)
	setGetter(realm, proto, runtime.StrKey("flags"), regExpProtoFlags)
	setGetter(realm, proto, runtime.StrKey("source"), regExpProtoSource)
	for _, f := range regExpFlags {
		setGetter(realm, proto, runtime.StrKey(f.name), regExpFlagGetter(f.flag, f.name))
	}
	setSymbolMethod(realm, proto, runtime.SymMatch, 1, regExpProtoMatch)
	setSymbolMethod(realm, proto, runtime.SymMatchAll, 1, regExpProtoMatchAll)
	setSymbolMethod(realm, proto, runtime.SymReplace, 2, regExpProtoReplace)
	setSymbolMethod(realm, proto, runtime.SymSearch, 1, regExpProtoSearch)
	setSymbolMethod(realm, proto, runtime.SymSplit, 2, regExpProtoSplit)

	ctor := newConstructor(realm, "RegExp", 2, proto, regExpConstructorCall)
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%RegExp%", ctor)
	return ctor, proto
}

// isRegExp reports whether v should be treated as a regular expression:
// its @@match property decides when present, otherwise the
// [[RegExpMatcher]] slot.
func isRegExp(a *runtime.Agent, v *runtime.Value) (bool, error) {
	if !v.IsObject() {
		return false, nil
	}
	matcher, err := runtime.Get(a, v.Object, runtime.SymKey(runtime.SymMatch))
	if err != nil {
		return false, err
	}
	if !matcher.IsUndefined() {
		return matcher.ToBoolean(), nil
	}
	return v.Object.Slot(regExpSlot) != nil, nil
}

func regExpDataOf(o *runtime.Object) *regExpData {
	d, _ := o.Slot(regExpSlot).(*regExpData)
	return d
}

func regExpConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	pattern, flags := argAt(args, 0), argAt(args, 1)
	patternIsRegExp, err := isRegExp(a, pattern)
	if err != nil {
		return nil, err
	}
	if nt == nil {
		nt = a.ActiveFunction()
		if patternIsRegExp && flags.IsUndefined() {
			patternCtor, err := runtime.Get(a, pattern.Object, runtime.StrKey("constructor"))
			if err != nil {
				return nil, err
			}
			if runtime.SameValue(runtime.NewObject(nt), patternCtor) {
				return pattern, nil
			}
		}
	}

	p, f := pattern, flags
	if pattern.IsObject() {
		if d := regExpDataOf(pattern.Object); d != nil {
			p = runtime.NewUString(d.source)
			if flags.IsUndefined() {
				f = runtime.NewString(d.flags)
			}
		} else if patternIsRegExp {
			if p, err = runtime.Get(a, pattern.Object, runtime.StrKey("source")); err != nil {
				return nil, err
			}
			if flags.IsUndefined() {
				if f, err = runtime.Get(a, pattern.Object, runtime.StrKey("flags")); err != nil {
					return nil, err
				}
			}
		}
	}

	o, err := regExpAlloc(a, nt)
	if err != nil {
		return nil, err
	}
	if err := regExpInitialize(a, o, p, f); err != nil {
		return nil, err
	}
	return runtime.NewObject(o), nil
}

func regExpAlloc(a *runtime.Agent, nt *runtime.Object) (*runtime.Object, error) {
	proto, err := runtime.GetPrototypeFromConstructor(a, nt, "%RegExp.prototype%")
	if err != nil {
		return nil, err
	}
	o := runtime.NewOrdinaryObject(proto)
	o.Kind = runtime.KindRegExp
	o.DefineProperty(runtime.StrKey("lastIndex"), runtime.DataDescriptor(runtime.Zero, true, false, false))
	return o, nil
}

func regExpInitialize(a *runtime.Agent, o *runtime.Object, pattern, flags *runtime.Value) error {
	var p unistring.String
	f := ""
	var err error
	if !pattern.IsUndefined() {
		if p, err = toStr(a, pattern); err != nil {
			return err
		}
	}
	if !flags.IsUndefined() {
		if f, err = toGoStr(a, flags); err != nil {
			return err
		}
	}
	d, err := compileRegExp(a, p, f)
	if err != nil {
		return err
	}
	o.SetSlot(regExpSlot, d)
	return runtime.Set(a, o, runtime.StrKey("lastIndex"), runtime.Zero, true)
}

// regExpCreate compiles pattern and flags into a new %RegExp% instance.
func regExpCreate(a *runtime.Agent, pattern, flags *runtime.Value) (*runtime.Object, error) {
	o, err := regExpAlloc(a, a.CurrentRealm().Intrinsic("%RegExp%"))
	if err != nil {
		return nil, err
	}
	if err := regExpInitialize(a, o, pattern, flags); err != nil {
		return nil, err
	}
	return o, nil
}

func compileRegExp(a *runtime.Agent, source unistring.String, flags string) (*regExpData, error) {
	seen := map[rune]bool{}
	for _, c := range flags {
		if !strings.ContainsRune("dgimsuvy", c) || seen[c] {
			return nil, a.NewSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
		}
		seen[c] = true
	}
	if seen['u'] && seen['v'] {
		return nil, a.NewSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
	}

	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if seen['i'] {
		opts |= regexp2.IgnoreCase
	}
	if seen['m'] {
		opts |= regexp2.Multiline
	}
	if seen['s'] {
		opts |= regexp2.Singleline
	}
	if seen['u'] || seen['v'] {
		opts |= regexp2.Unicode
	}
	src := runtime.GoString(source)
	re, err := regexp2.Compile(translatePattern(src), opts)
	if err != nil {
		return nil, a.NewSyntaxError("Invalid regular expression: /%s/%s: %s", src, flags, err.Error())
	}
	re.MatchTimeout = regExpMatchTimeout
	return &regExpData{source: source, flags: flags, re: re}, nil
}

// translatePattern rewrites the character class forms that have no
// equivalent in the matcher's syntax: [^] matches anything and [] matches
// nothing.
func translatePattern(src string) string {
	if !strings.Contains(src, "[]") && !strings.Contains(src, "[^]") {
		return src
	}
	var b strings.Builder
	inClass := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			b.WriteByte(src[i+1])
			i++
			continue
		case !inClass && strings.HasPrefix(src[i:], "[^]"):
			b.WriteString(`[\s\S]`)
			i += 2
			continue
		case !inClass && strings.HasPrefix(src[i:], "[]"):
			b.WriteString(`(?!)`)
			i++
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// matchInput is a string prepared for the matcher: runes holds one entry
// per code unit, or per code point in unicode mode, and offsets maps rune
// positions back to code unit indices.
type matchInput struct {
	units   []uint16
	runes   []rune
	offsets []int
}

func newMatchInput(s unistring.String, fullUnicode bool) *matchInput {
	in := &matchInput{units: runtime.Units(s)}
	in.runes = make([]rune, 0, len(in.units))
	in.offsets = make([]int, 0, len(in.units)+1)
	for i := 0; i < len(in.units); {
		in.offsets = append(in.offsets, i)
		if fullUnicode {
			cp, n := codePointAt(in.units, i)
			in.runes = append(in.runes, cp)
			i += n
			continue
		}
		in.runes = append(in.runes, rune(in.units[i]))
		i++
	}
	in.offsets = append(in.offsets, len(in.units))
	return in
}

func (in *matchInput) runeIndex(unit int) int {
	return sort.SearchInts(in.offsets, unit)
}

func (in *matchInput) substring(runeStart, runeLen int) *runtime.Value {
	from, to := in.offsets[runeStart], in.offsets[runeStart+runeLen]
	return runtime.NewUString(runtime.StringFromUnits(in.units[from:to]))
}

func setLastIndex(a *runtime.Agent, r *runtime.Object, n int64) error {
	return runtime.Set(a, r, runtime.StrKey("lastIndex"), runtime.NewNumber(float64(n)), true)
}

func getLastIndex(a *runtime.Agent, r *runtime.Object) (int64, error) {
	v, err := runtime.Get(a, r, runtime.StrKey("lastIndex"))
	if err != nil {
		return 0, err
	}
	return runtime.ToLength(a, v)
}

// regExpBuiltinExec runs the compiled matcher of r against s starting at
// lastIndex and builds the match result array.
func regExpBuiltinExec(a *runtime.Agent, r *runtime.Object, s unistring.String) (*runtime.Value, error) {
	d := regExpDataOf(r)
	lastIndex, err := getLastIndex(a, r)
	if err != nil {
		return nil, err
	}
	global, sticky := d.has('g'), d.has('y')
	if !global && !sticky {
		lastIndex = 0
	}
	in := newMatchInput(s, d.fullUnicode())
	fail := func() (*runtime.Value, error) {
		if global || sticky {
			if err := setLastIndex(a, r, 0); err != nil {
				return nil, err
			}
		}
		return runtime.Null, nil
	}
	if lastIndex > int64(len(in.units)) {
		return fail()
	}
	start := in.runeIndex(int(lastIndex))
	m, err := d.re.FindRunesMatchStartingAt(in.runes, start)
	if err != nil {
		return nil, a.NewError(runtime.ErrorKindRangeError, "RegExp match aborted: "+err.Error())
	}
	if m == nil || (sticky && m.Index != start) {
		return fail()
	}
	if global || sticky {
		if err := setLastIndex(a, r, int64(in.offsets[m.Index+m.Length])); err != nil {
			return nil, err
		}
	}

	groups := m.Groups()
	result := runtime.ArrayCreate(a, 0, nil)
	var named *runtime.Object
	var indices []*runtime.Value
	for i, g := range groups {
		v, span := runtime.Undefined, runtime.Undefined
		if len(g.Captures) > 0 {
			v = in.substring(g.Index, g.Length)
			span = arrayValue(a, []*runtime.Value{
				runtime.NewNumber(float64(in.offsets[g.Index])),
				runtime.NewNumber(float64(in.offsets[g.Index+g.Length])),
			})
		}
		runtime.Must(runtime.CreateDataProperty(a, result, runtime.IndexKey(int64(i)), v))
		indices = append(indices, span)
		if i > 0 && !isGroupNumber(g.Name) {
			if named == nil {
				named = runtime.NewOrdinaryObject(nil)
			}
			runtime.Must(runtime.CreateDataProperty(a, named, runtime.StrKey(g.Name), v))
		}
	}
	runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("index"), runtime.NewNumber(float64(in.offsets[m.Index]))))
	runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("input"), runtime.NewUString(s)))
	runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("groups"), runtime.ObjectOrUndefined(named)))
	if d.has('d') {
		runtime.Must(runtime.CreateDataProperty(a, result, runtime.StrKey("indices"), arrayValue(a, indices)))
	}
	return runtime.NewObject(result), nil
}

func isGroupNumber(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// regExpExec calls a user-visible exec method when there is one and the
// built-in matcher otherwise.
func regExpExec(a *runtime.Agent, r *runtime.Object, s unistring.String) (*runtime.Value, error) {
	exec, err := runtime.Get(a, r, runtime.StrKey("exec"))
	if err != nil {
		return nil, err
	}
	if runtime.IsCallable(exec) {
		result, err := callFn(a, exec, runtime.NewObject(r), runtime.NewUString(s))
		if err != nil {
			return nil, err
		}
		if !result.IsObject() && !result.IsNull() {
			return nil, a.NewTypeError("exec result must be an object or null")
		}
		return result, nil
	}
	if regExpDataOf(r) == nil {
		return nil, a.NewTypeError("RegExp exec method called on incompatible receiver")
	}
	return regExpBuiltinExec(a, r, s)
}

// advanceStringIndex steps past the code point at index in unicode mode
// and past one code unit otherwise.
func advanceStringIndex(s unistring.String, index int64, fullUnicode bool) int64 {
	if !fullUnicode || index+1 >= int64(runtime.StringLength(s)) {
		return index + 1
	}
	_, n := codePointAt(runtime.Units(s), int(index))
	return index + int64(n)
}

func thisRegExp(a *runtime.Agent, this *runtime.Value, method string) (*runtime.Object, error) {
	if this.IsObject() && regExpDataOf(this.Object) != nil {
		return this.Object, nil
	}
	return nil, a.NewTypeError("RegExp.prototype.%s called on incompatible receiver %s", method, this.String())
}

func regExpProtoExec(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := thisRegExp(a, this, "exec")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return regExpBuiltinExec(a, r, s)
}

func regExpProtoTest(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype.test")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	m, err := regExpExec(a, r, s)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(!m.IsNull()), nil
}

func regExpProtoToString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype.toString")
	if err != nil {
		return nil, err
	}
	var parts [2]string
	for i, key := range []string{"source", "flags"} {
		v, err := runtime.Get(a, r, runtime.StrKey(key))
		if err != nil {
			return nil, err
		}
		if parts[i], err = toGoStr(a, v); err != nil {
			return nil, err
		}
	}
	return runtime.NewString("/" + parts[0] + "/" + parts[1]), nil
}

func regExpProtoCompile(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := thisRegExp(a, this, "compile")
	if err != nil {
		return nil, err
	}
	pattern, flags := argAt(args, 0), argAt(args, 1)
	if pattern.IsObject() {
		if d := regExpDataOf(pattern.Object); d != nil {
			if !flags.IsUndefined() {
				return nil, a.NewTypeError("Cannot supply flags when constructing one RegExp from another")
			}
			pattern, flags = runtime.NewUString(d.source), runtime.NewString(d.flags)
		}
	}
	if err := regExpInitialize(a, r, pattern, flags); err != nil {
		return nil, err
	}
	return runtime.NewObject(r), nil
}

func regExpProtoFlags(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype.flags getter")
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, f := range regExpFlags {
		v, err := runtime.Get(a, r, runtime.StrKey(f.name))
		if err != nil {
			return nil, err
		}
		if v.ToBoolean() {
			b.WriteByte(f.flag)
		}
	}
	return runtime.NewString(b.String()), nil
}

func regExpFlagGetter(flag byte, name string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if this.IsObject() {
			if d := regExpDataOf(this.Object); d != nil {
				return runtime.NewBool(d.has(flag)), nil
			}
			if this.Object == a.CurrentRealm().Intrinsic("%RegExp.prototype%") {
				return runtime.Undefined, nil
			}
		}
		return nil, a.NewTypeError("RegExp.prototype.%s getter called on incompatible receiver %s", name, this.String())
	}
}

func regExpProtoSource(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if this.IsObject() {
		if d := regExpDataOf(this.Object); d != nil {
			return runtime.NewString(escapeRegExpPattern(runtime.GoString(d.source))), nil
		}
		if this.Object == a.CurrentRealm().Intrinsic("%RegExp.prototype%") {
			return runtime.NewString("(?:)"), nil
		}
	}
	return nil, a.NewTypeError("RegExp.prototype.source getter called on incompatible receiver %s", this.String())
}

// escapeRegExpPattern renders source so that /source/ parses back to the
// same pattern.
func escapeRegExpPattern(src string) string {
	if src == "" {
		return "(?:)"
	}
	var b strings.Builder
	inClass := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			i++
			c = src[i]
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			b.WriteString(`\/`)
			continue
		case c == '\n':
			b.WriteString(`\n`)
			continue
		case c == '\r':
			b.WriteString(`\r`)
			continue
		}
		b.WriteByte(c)
	}
	return strings.NewReplacer("\u2028", `\u2028`, "\u2029", `\u2029`).Replace(b.String())
}

// matchString reads result[0] as a string.
func matchString(a *runtime.Agent, result *runtime.Value) (unistring.String, error) {
	v, err := runtime.GetV(a, result, runtime.IndexKey(0))
	if err != nil {
		return "", err
	}
	return toStr(a, v)
}

// advanceOnEmptyMatch moves lastIndex past an empty match so that global
// iteration terminates.
func advanceOnEmptyMatch(a *runtime.Agent, r *runtime.Object, s unistring.String, fullUnicode bool) error {
	thisIndex, err := getLastIndex(a, r)
	if err != nil {
		return err
	}
	return setLastIndex(a, r, advanceStringIndex(s, thisIndex, fullUnicode))
}

// flagsOf reads the flags property of r as a Go string.
func flagsOf(a *runtime.Agent, r *runtime.Object) (string, error) {
	v, err := runtime.Get(a, r, runtime.StrKey("flags"))
	if err != nil {
		return "", err
	}
	return toGoStr(a, v)
}

func regExpProtoMatch(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype[Symbol.match]")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	flags, err := flagsOf(a, r)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(flags, "g") {
		return regExpExec(a, r, s)
	}
	fullUnicode := strings.ContainsAny(flags, "uv")
	if err := setLastIndex(a, r, 0); err != nil {
		return nil, err
	}
	var matches []*runtime.Value
	for {
		result, err := regExpExec(a, r, s)
		if err != nil {
			return nil, err
		}
		if result.IsNull() {
			if len(matches) == 0 {
				return runtime.Null, nil
			}
			return arrayValue(a, matches), nil
		}
		m, err := matchString(a, result)
		if err != nil {
			return nil, err
		}
		matches = append(matches, runtime.NewUString(m))
		if m == "" {
			if err := advanceOnEmptyMatch(a, r, s, fullUnicode); err != nil {
				return nil, err
			}
		}
	}
}

func regExpProtoMatchAll(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype[Symbol.matchAll]")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	c, err := runtime.SpeciesConstructor(a, r, a.CurrentRealm().Intrinsic("%RegExp%"))
	if err != nil {
		return nil, err
	}
	flags, err := flagsOf(a, r)
	if err != nil {
		return nil, err
	}
	mv, err := runtime.Construct(a, c, []*runtime.Value{runtime.NewObject(r), runtime.NewString(flags)}, nil)
	if err != nil {
		return nil, err
	}
	matcher := mv.Object
	lastIndex, err := getLastIndex(a, r)
	if err != nil {
		return nil, err
	}
	if err := setLastIndex(a, matcher, lastIndex); err != nil {
		return nil, err
	}
	global := strings.Contains(flags, "g")
	fullUnicode := strings.ContainsAny(flags, "uv")
	finished := false
	return newNativeIterator(a, "RegExp String Iterator", func(a *runtime.Agent) (*runtime.Value, bool, error) {
		if finished {
			return nil, true, nil
		}
		result, err := regExpExec(a, matcher, s)
		if err != nil {
			return nil, false, err
		}
		if result.IsNull() {
			return nil, true, nil
		}
		if !global {
			finished = true
			return result, false, nil
		}
		m, err := matchString(a, result)
		if err != nil {
			return nil, false, err
		}
		if m == "" {
			if err := advanceOnEmptyMatch(a, matcher, s, fullUnicode); err != nil {
				return nil, false, err
			}
		}
		return result, false, nil
	}), nil
}

func regExpProtoReplace(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype[Symbol.replace]")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	units := runtime.Units(s)
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
	flags, err := flagsOf(a, r)
	if err != nil {
		return nil, err
	}
	global := strings.Contains(flags, "g")
	fullUnicode := strings.ContainsAny(flags, "uv")
	if global {
		if err := setLastIndex(a, r, 0); err != nil {
			return nil, err
		}
	}

	var results []*runtime.Value
	for {
		result, err := regExpExec(a, r, s)
		if err != nil {
			return nil, err
		}
		if result.IsNull() {
			break
		}
		results = append(results, result)
		if !global {
			break
		}
		m, err := matchString(a, result)
		if err != nil {
			return nil, err
		}
		if m == "" {
			if err := advanceOnEmptyMatch(a, r, s, fullUnicode); err != nil {
				return nil, err
			}
		}
	}

	var out []uint16
	nextSource := 0
	for _, result := range results {
		ro := result.Object
		nCaptures, err := runtime.LengthOfArrayLike(a, ro)
		if err != nil {
			return nil, err
		}
		nCaptures = max(nCaptures-1, 0)
		matched, err := matchString(a, result)
		if err != nil {
			return nil, err
		}
		posV, err := runtime.Get(a, ro, runtime.StrKey("index"))
		if err != nil {
			return nil, err
		}
		pos, err := runtime.ToIntegerOrInfinity(a, posV)
		if err != nil {
			return nil, err
		}
		position := int(min(max(pos, 0), float64(len(units))))
		captures := make([]*runtime.Value, 0, nCaptures)
		for n := int64(1); n <= nCaptures; n++ {
			c, err := runtime.Get(a, ro, runtime.IndexKey(n))
			if err != nil {
				return nil, err
			}
			if !c.IsUndefined() {
				cs, err := toStr(a, c)
				if err != nil {
					return nil, err
				}
				c = runtime.NewUString(cs)
			}
			captures = append(captures, c)
		}
		namedCaptures, err := runtime.Get(a, ro, runtime.StrKey("groups"))
		if err != nil {
			return nil, err
		}

		var replacement []uint16
		if functional {
			callArgs := append([]*runtime.Value{runtime.NewUString(matched)}, captures...)
			callArgs = append(callArgs, runtime.NewNumber(float64(position)), runtime.NewUString(s))
			if !namedCaptures.IsUndefined() {
				callArgs = append(callArgs, namedCaptures)
			}
			rv, err := runtime.Call(a, replaceValue, runtime.Undefined, callArgs)
			if err != nil {
				return nil, err
			}
			rs, err := toStr(a, rv)
			if err != nil {
				return nil, err
			}
			replacement = runtime.Units(rs)
		} else {
			if !namedCaptures.IsUndefined() {
				nc, err := runtime.ToObject(a, namedCaptures)
				if err != nil {
					return nil, err
				}
				namedCaptures = runtime.NewObject(nc)
			}
			if replacement, err = getSubstitution(a, runtime.Units(matched), units, position, captures, namedCaptures, template); err != nil {
				return nil, err
			}
		}
		if position >= nextSource {
			out = append(out, units[nextSource:position]...)
			out = append(out, replacement...)
			nextSource = min(position+runtime.StringLength(matched), len(units))
		}
	}
	out = append(out, units[nextSource:]...)
	return runtime.NewUString(runtime.StringFromUnits(out)), nil
}

func regExpProtoSearch(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype[Symbol.search]")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	previous, err := runtime.Get(a, r, runtime.StrKey("lastIndex"))
	if err != nil {
		return nil, err
	}
	if !runtime.SameValue(previous, runtime.Zero) {
		if err := setLastIndex(a, r, 0); err != nil {
			return nil, err
		}
	}
	result, err := regExpExec(a, r, s)
	if err != nil {
		return nil, err
	}
	current, err := runtime.Get(a, r, runtime.StrKey("lastIndex"))
	if err != nil {
		return nil, err
	}
	if !runtime.SameValue(current, previous) {
		if err := runtime.Set(a, r, runtime.StrKey("lastIndex"), previous, true); err != nil {
			return nil, err
		}
	}
	if result.IsNull() {
		return runtime.NewNumber(-1), nil
	}
	return runtime.GetV(a, result, runtime.StrKey("index"))
}

func regExpProtoSplit(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	r, err := requireObject(a, this, "RegExp.prototype[Symbol.split]")
	if err != nil {
		return nil, err
	}
	s, err := toStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	c, err := runtime.SpeciesConstructor(a, r, a.CurrentRealm().Intrinsic("%RegExp%"))
	if err != nil {
		return nil, err
	}
	flags, err := flagsOf(a, r)
	if err != nil {
		return nil, err
	}
	fullUnicode := strings.ContainsAny(flags, "uv")
	if !strings.Contains(flags, "y") {
		flags += "y"
	}
	sv, err := runtime.Construct(a, c, []*runtime.Value{runtime.NewObject(r), runtime.NewString(flags)}, nil)
	if err != nil {
		return nil, err
	}
	splitter := sv.Object

	lim := uint32(1<<32 - 1)
	if l := argAt(args, 1); !l.IsUndefined() {
		if lim, err = runtime.ToUint32(a, l); err != nil {
			return nil, err
		}
	}
	var parts []*runtime.Value
	if lim == 0 {
		return arrayValue(a, nil), nil
	}
	units := runtime.Units(s)
	size := int64(len(units))
	if size == 0 {
		z, err := regExpExec(a, splitter, s)
		if err != nil {
			return nil, err
		}
		if !z.IsNull() {
			return arrayValue(a, nil), nil
		}
		return arrayValue(a, []*runtime.Value{runtime.NewUString(s)}), nil
	}
	piece := func(from, to int64) *runtime.Value {
		return runtime.NewUString(runtime.StringFromUnits(units[from:to]))
	}
	p := int64(0)
	for q := p; q < size; {
		if err := setLastIndex(a, splitter, q); err != nil {
			return nil, err
		}
		z, err := regExpExec(a, splitter, s)
		if err != nil {
			return nil, err
		}
		if z.IsNull() {
			q = advanceStringIndex(s, q, fullUnicode)
			continue
		}
		e, err := getLastIndex(a, splitter)
		if err != nil {
			return nil, err
		}
		e = min(e, size)
		if e == p {
			q = advanceStringIndex(s, q, fullUnicode)
			continue
		}
		parts = append(parts, piece(p, q))
		if uint32(len(parts)) == lim {
			return arrayValue(a, parts), nil
		}
		p = e
		nCaptures, err := runtime.LengthOfArrayLike(a, z.Object)
		if err != nil {
			return nil, err
		}
		for i := int64(1); i < nCaptures; i++ {
			capture, err := runtime.Get(a, z.Object, runtime.IndexKey(i))
			if err != nil {
				return nil, err
			}
			parts = append(parts, capture)
			if uint32(len(parts)) == lim {
				return arrayValue(a, parts), nil
			}
		}
		q = p
	}
	parts = append(parts, piece(p, size))
	return arrayValue(a, parts), nil
}
