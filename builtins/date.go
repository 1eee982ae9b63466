package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/example/jscore/runtime"
)

const (
	dateSlot    = "[[DateValue]]"
	msPerDay    = 86400000.0
	maxTimeClip = 8.64e15
)

// dateValue is the mutable time value of a Date object, in milliseconds
// since the epoch, or NaN for an invalid date.
type dateValue struct {
	tv float64
}

// Date fields in the order accepted by the Date constructor.
const (
	fieldYear = iota
	fieldMonth
	fieldDate
	fieldHours
	fieldMinutes
	fieldSeconds
	fieldMillis
	numFields
)

func createDateConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.SetIntrinsic("%Date.prototype%", proto)

	for _, utc := range []bool{false, true} {
		prefix := "get"
		if utc {
			prefix = "getUTC"
		}
		setMethod(realm, proto, prefix+"FullYear", 0, dateGetter(utc, fieldYear))
		setMethod(realm, proto, prefix+"Month", 0, dateGetter(utc, fieldMonth))
		setMethod(realm, proto, prefix+"Date", 0, dateGetter(utc, fieldDate))
		setMethod(realm, proto, prefix+"Hours", 0, dateGetter(utc, fieldHours))
		setMethod(realm, proto, prefix+"Minutes", 0, dateGetter(utc, fieldMinutes))
		setMethod(realm, proto, prefix+"Seconds", 0, dateGetter(utc, fieldSeconds))
		setMethod(realm, proto, prefix+"Milliseconds", 0, dateGetter(utc, fieldMillis))
		setMethod(realm, proto, prefix+"Day", 0, dateGetDay(utc))

		prefix = "set"
		if utc {
			prefix = "setUTC"
		}
		setMethod(realm, proto, prefix+"FullYear", 3, dateSetter(utc, fieldYear, 3))
		setMethod(realm, proto, prefix+"Month", 2, dateSetter(utc, fieldMonth, 2))
		setMethod(realm, proto, prefix+"Date", 1, dateSetter(utc, fieldDate, 1))
		setMethod(realm, proto, prefix+"Hours", 4, dateSetter(utc, fieldHours, 4))
		setMethod(realm, proto, prefix+"Minutes", 3, dateSetter(utc, fieldMinutes, 3))
		setMethod(realm, proto, prefix+"Seconds", 2, dateSetter(utc, fieldSeconds, 2))
		setMethod(realm, proto, prefix+"Milliseconds", 1, dateSetter(utc, fieldMillis, 1))
	}
	setMethod(realm, proto, "getTime", 0, dateValueOf)
	setMethod(realm, proto, "valueOf", 0, dateValueOf)
	setMethod(realm, proto, "getTimezoneOffset", 0, dateGetTimezoneOffset)
	setMethod(realm, proto, "setTime", 1, dateSetTime)
	setMethod(realm, proto, "getYear", 0, dateGetYear)
	setMethod(realm, proto, "setYear", 1, dateSetYear)

	setMethod(realm, proto, "toISOString", 0, dateToISOString)
	setMethod(realm, proto, "toJSON", 1, dateToJSON)
	setMethod(realm, proto, "toString", 0, dateFormatter(formatDateTime))
	setMethod(realm, proto, "toDateString", 0, dateFormatter(formatDate))
	setMethod(realm, proto, "toTimeString", 0, dateFormatter(formatTime))
	setMethod(realm, proto, "toLocaleString", 0, dateFormatter(formatDateTime))
	setMethod(realm, proto, "toLocaleDateString", 0, dateFormatter(formatDate))
	setMethod(realm, proto, "toLocaleTimeString", 0, dateFormatter(formatTime))
	toUTC := setMethod(realm, proto, "toUTCString", 0, dateFormatter(formatUTC))
	setDataProp(proto, "toGMTString", runtime.NewObject(toUTC), true, false, true)
	toPrim := newFuncObject(realm, "[Symbol.toPrimitive]", 1, dateToPrimitive)
	proto.DefineProperty(runtime.SymKey(runtime.SymToPrimitive), runtime.DataDescriptor(runtime.NewObject(toPrim), false, false, true))

	ctor := newConstructor(realm, "Date", 7, proto, dateConstructor)
	setMethod(realm, ctor, "now", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return runtime.NewNumber(float64(time.Now().UnixMilli())), nil
	})
	setMethod(realm, ctor, "parse", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := toGoStr(a, argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(parseDate(s)), nil
	})
	setMethod(realm, ctor, "UTC", 7, dateUTC)
	realm.SetIntrinsic("%Date%", ctor)
	return ctor, proto
}

func dateConstructor(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if nt == nil {
		return runtime.NewString(formatDateTime(float64(time.Now().UnixMilli()))), nil
	}
	var tv float64
	switch len(args) {
	case 0:
		tv = float64(time.Now().UnixMilli())
	case 1:
		v := args[0]
		if v.IsObject() {
			if d, ok := v.Object.Slot(dateSlot).(*dateValue); ok {
				tv = d.tv
				break
			}
		}
		prim, err := runtime.ToPrimitive(a, v, runtime.HintDefault)
		if err != nil {
			return nil, err
		}
		if prim.IsString() {
			tv = parseDate(runtime.GoString(prim.Str))
		} else {
			n, err := runtime.ToNumber(a, prim)
			if err != nil {
				return nil, err
			}
			tv = timeClip(n)
		}
	default:
		fields, err := dateFieldArgs(a, args)
		if err != nil {
			return nil, err
		}
		tv = timeClip(localToUTC(composeFields(fields)))
	}
	o, err := runtime.OrdinaryCreateFromConstructor(a, nt, "%Date.prototype%")
	if err != nil {
		return nil, err
	}
	o.SetSlot(dateSlot, &dateValue{tv: tv})
	return runtime.NewObject(o), nil
}

// dateFieldArgs converts constructor-style arguments; absent fields default
// to day 1 and midnight, and two-digit years map to 1900-1999.
func dateFieldArgs(a *runtime.Agent, args []*runtime.Value) ([numFields]float64, error) {
	fields := [numFields]float64{math.NaN(), 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(args) && i < numFields; i++ {
		n, err := runtime.ToNumber(a, args[i])
		if err != nil {
			return fields, err
		}
		fields[i] = n
	}
	if y := fields[fieldYear]; !math.IsNaN(y) {
		if yi := runtime.IntegerOrInfinity(y); yi >= 0 && yi <= 99 {
			fields[fieldYear] = 1900 + yi
		}
	}
	return fields, nil
}

func dateUTC(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	fields, err := dateFieldArgs(a, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(timeClip(composeFields(fields))), nil
}

func thisDate(a *runtime.Agent, this *runtime.Value, method string) (*dateValue, error) {
	v, err := thisSlot(a, this, dateSlot, "Date.prototype."+method)
	if err != nil {
		return nil, err
	}
	return v.(*dateValue), nil
}

func makeDay(year, month, date float64) float64 {
	if math.IsNaN(year+month+date) || math.IsInf(year+month+date, 0) {
		return math.NaN()
	}
	y, m, dt := runtime.IntegerOrInfinity(year), runtime.IntegerOrInfinity(month), runtime.IntegerOrInfinity(date)
	ym := y + math.Floor(m/12)
	if math.Abs(ym) > 400000 {
		return math.NaN()
	}
	mn := math.Mod(m, 12)
	if mn < 0 {
		mn += 12
	}
	first := time.Date(int(ym), time.Month(mn+1), 1, 0, 0, 0, 0, time.UTC)
	return math.Floor(float64(first.UnixMilli())/msPerDay) + dt - 1
}

func makeTime(h, m, s, ms float64) float64 {
	if math.IsNaN(h+m+s+ms) || math.IsInf(h+m+s+ms, 0) {
		return math.NaN()
	}
	return runtime.IntegerOrInfinity(h)*3600000 + runtime.IntegerOrInfinity(m)*60000 +
		runtime.IntegerOrInfinity(s)*1000 + runtime.IntegerOrInfinity(ms)
}

func composeFields(f [numFields]float64) float64 {
	day := makeDay(f[fieldYear], f[fieldMonth], f[fieldDate])
	t := makeTime(f[fieldHours], f[fieldMinutes], f[fieldSeconds], f[fieldMillis])
	if math.IsNaN(day) || math.IsNaN(t) {
		return math.NaN()
	}
	return day*msPerDay + t
}

func timeClip(t float64) float64 {
	if math.IsNaN(t) || math.Abs(t) > maxTimeClip {
		return math.NaN()
	}
	return runtime.IntegerOrInfinity(t) + 0
}

func goTime(tv float64, utc bool) time.Time {
	t := time.UnixMilli(int64(tv)).UTC()
	if !utc {
		t = t.In(time.Local)
	}
	return t
}

// offsetAt returns the local time zone offset in milliseconds at tv.
func offsetAt(tv float64) float64 {
	_, off := goTime(tv, false).Zone()
	return float64(off) * 1000
}

func localToUTC(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return t
	}
	return t - offsetAt(t-offsetAt(t))
}

func decompose(tv float64, utc bool) [numFields]float64 {
	t := goTime(tv, utc)
	ms := math.Mod(tv, 1000)
	if ms < 0 {
		ms += 1000
	}
	return [numFields]float64{
		float64(t.Year()), float64(t.Month() - 1), float64(t.Day()),
		float64(t.Hour()), float64(t.Minute()), float64(t.Second()), ms,
	}
}

func dateGetter(utc bool, field int) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		d, err := thisDate(a, this, "get")
		if err != nil {
			return nil, err
		}
		if math.IsNaN(d.tv) {
			return runtime.NaN, nil
		}
		return runtime.NewNumber(decompose(d.tv, utc)[field]), nil
	}
}

func dateGetDay(utc bool) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		d, err := thisDate(a, this, "getDay")
		if err != nil {
			return nil, err
		}
		if math.IsNaN(d.tv) {
			return runtime.NaN, nil
		}
		return runtime.NewNumber(float64(goTime(d.tv, utc).Weekday())), nil
	}
}

// dateSetter replaces up to count fields starting at first; omitted
// trailing arguments keep their current values.
func dateSetter(utc bool, first, count int) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		d, err := thisDate(a, this, "set")
		if err != nil {
			return nil, err
		}
		t := d.tv
		var vals []float64
		for i := 0; i < count && (i == 0 || i < len(args)); i++ {
			n, err := runtime.ToNumber(a, argAt(args, i))
			if err != nil {
				return nil, err
			}
			vals = append(vals, n)
		}
		if math.IsNaN(t) {
			if first != fieldYear {
				return runtime.NaN, nil
			}
			t = 0
			if !utc {
				t = localToUTC(0)
			}
		}
		fields := decompose(t, utc)
		copy(fields[first:], vals)
		next := composeFields(fields)
		if !utc {
			next = localToUTC(next)
		}
		d.tv = timeClip(next)
		return runtime.NewNumber(d.tv), nil
	}
}

func dateValueOf(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(d.tv), nil
}

func dateSetTime(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "setTime")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToNumber(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	d.tv = timeClip(n)
	return runtime.NewNumber(d.tv), nil
}

func dateGetTimezoneOffset(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "getTimezoneOffset")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(d.tv) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(-offsetAt(d.tv) / 60000), nil
}

func dateGetYear(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "getYear")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(d.tv) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(decompose(d.tv, false)[fieldYear] - 1900), nil
}

func dateSetYear(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "setYear")
	if err != nil {
		return nil, err
	}
	y, err := runtime.ToNumber(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if math.IsNaN(y) {
		d.tv = math.NaN()
		return runtime.NaN, nil
	}
	if yi := runtime.IntegerOrInfinity(y); yi >= 0 && yi <= 99 {
		y = 1900 + yi
	}
	t := d.tv
	if math.IsNaN(t) {
		t = localToUTC(0)
	}
	fields := decompose(t, false)
	fields[fieldYear] = y
	d.tv = timeClip(localToUTC(composeFields(fields)))
	return runtime.NewNumber(d.tv), nil
}

func dateToISOString(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	d, err := thisDate(a, this, "toISOString")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(d.tv) {
		return nil, a.NewRangeError("Invalid time value")
	}
	f := decompose(d.tv, true)
	year := int(f[fieldYear])
	var ys string
	switch {
	case year >= 0 && year <= 9999:
		ys = fmt.Sprintf("%04d", year)
	case year < 0:
		ys = fmt.Sprintf("-%06d", -year)
	default:
		ys = fmt.Sprintf("+%06d", year)
	}
	return runtime.NewString(fmt.Sprintf("%s-%02d-%02dT%02d:%02d:%02d.%03dZ", ys,
		int(f[fieldMonth])+1, int(f[fieldDate]), int(f[fieldHours]), int(f[fieldMinutes]),
		int(f[fieldSeconds]), int(f[fieldMillis]))), nil
}

func dateToJSON(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	o, err := runtime.ToObject(a, this)
	if err != nil {
		return nil, err
	}
	tv, err := runtime.ToPrimitive(a, runtime.NewObject(o), runtime.HintNumber)
	if err != nil {
		return nil, err
	}
	if tv.IsNumber() && (math.IsNaN(tv.Number) || math.IsInf(tv.Number, 0)) {
		return runtime.Null, nil
	}
	return runtime.Invoke(a, runtime.NewObject(o), runtime.StrKey("toISOString"), nil)
}

func dateToPrimitive(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !this.IsObject() {
		return nil, a.NewTypeError("Date.prototype[Symbol.toPrimitive] called on non-object")
	}
	hint := argAt(args, 0)
	var tryFirst string
	switch {
	case hint.IsString() && (runtime.GoString(hint.Str) == "string" || runtime.GoString(hint.Str) == "default"):
		tryFirst = runtime.HintString
	case hint.IsString() && runtime.GoString(hint.Str) == "number":
		tryFirst = runtime.HintNumber
	default:
		return nil, a.NewTypeError("Invalid hint: %s", hint.String())
	}
	return runtime.OrdinaryToPrimitive(a, this.Object, tryFirst)
}

func dateFormatter(format func(tv float64) string) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		d, err := thisDate(a, this, "toString")
		if err != nil {
			return nil, err
		}
		if math.IsNaN(d.tv) {
			return runtime.NewString("Invalid Date"), nil
		}
		return runtime.NewString(format(d.tv)), nil
	}
}

func zoneSuffix(t time.Time) string {
	name, _ := t.Zone()
	return t.Format("GMT-0700") + " (" + name + ")"
}

func formatDate(tv float64) string {
	return goTime(tv, false).Format("Mon Jan 02 2006")
}

func formatTime(tv float64) string {
	t := goTime(tv, false)
	return t.Format("15:04:05 ") + zoneSuffix(t)
}

func formatDateTime(tv float64) string {
	return formatDate(tv) + " " + formatTime(tv)
}

func formatUTC(tv float64) string {
	return goTime(tv, true).Format("Mon, 02 Jan 2006 15:04:05 GMT")
}

// parseDate accepts the ISO date time string format and the forms produced
// by toString and toUTCString. It returns NaN for anything else.
func parseDate(s string) float64 {
	s = strings.TrimSpace(s)
	if tv, ok := parseISODate(s); ok {
		return timeClip(tv)
	}
	for _, layout := range []string{
		"Mon Jan 02 2006 15:04:05 GMT-0700",
		"Mon, 02 Jan 2006 15:04:05 GMT",
		"Mon Jan 02 2006",
	} {
		candidate := s
		if i := strings.Index(candidate, " ("); i >= 0 {
			candidate = candidate[:i]
		}
		if layout == "Mon Jan 02 2006" {
			if t, err := time.ParseInLocation(layout, candidate, time.Local); err == nil {
				return float64(t.UnixMilli())
			}
			continue
		}
		if t, err := time.Parse(layout, candidate); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return math.NaN()
}

// isoScanner reads fixed-width digit groups from an ISO date string.
type isoScanner struct {
	s   string
	pos int
}

func (sc *isoScanner) digits(n int) (float64, bool) {
	if sc.pos+n > len(sc.s) {
		return 0, false
	}
	v, err := strconv.Atoi(sc.s[sc.pos : sc.pos+n])
	if err != nil || strings.ContainsAny(sc.s[sc.pos:sc.pos+n], "+-") {
		return 0, false
	}
	sc.pos += n
	return float64(v), true
}

func (sc *isoScanner) accept(c byte) bool {
	if sc.pos < len(sc.s) && sc.s[sc.pos] == c {
		sc.pos++
		return true
	}
	return false
}

func parseISODate(s string) (float64, bool) {
	sc := &isoScanner{s: s}
	fields := [numFields]float64{0, 0, 1, 0, 0, 0, 0}
	var ok bool
	switch {
	case sc.accept('+'):
		fields[fieldYear], ok = sc.digits(6)
	case sc.accept('-'):
		fields[fieldYear], ok = sc.digits(6)
		if fields[fieldYear] == 0 {
			return 0, false
		}
		fields[fieldYear] = -fields[fieldYear]
	default:
		fields[fieldYear], ok = sc.digits(4)
	}
	if !ok {
		return 0, false
	}
	if sc.accept('-') {
		m, ok := sc.digits(2)
		if !ok || m < 1 || m > 12 {
			return 0, false
		}
		fields[fieldMonth] = m - 1
		if sc.accept('-') {
			d, ok := sc.digits(2)
			if !ok || d < 1 || d > 31 {
				return 0, false
			}
			fields[fieldDate] = d
		}
	}
	utc := true
	if sc.accept('T') {
		utc = false
		h, ok1 := sc.digits(2)
		colon := sc.accept(':')
		m, ok2 := sc.digits(2)
		if !ok1 || !colon || !ok2 || h > 24 || m > 59 {
			return 0, false
		}
		fields[fieldHours], fields[fieldMinutes] = h, m
		if sc.accept(':') {
			sec, ok := sc.digits(2)
			if !ok || sec > 59 {
				return 0, false
			}
			fields[fieldSeconds] = sec
			if sc.accept('.') {
				start := sc.pos
				for sc.pos < len(s) && s[sc.pos] >= '0' && s[sc.pos] <= '9' {
					sc.pos++
				}
				frac := s[start:sc.pos]
				if frac == "" {
					return 0, false
				}
				frac = (frac + "00")[:3]
				ms, _ := strconv.Atoi(frac)
				fields[fieldMillis] = float64(ms)
			}
		}
		if h == 24 && (m != 0 || fields[fieldSeconds] != 0 || fields[fieldMillis] != 0) {
			return 0, false
		}
	}
	offset := 0.0
	switch {
	case sc.accept('Z'):
		utc = true
	case sc.pos < len(s) && (s[sc.pos] == '+' || s[sc.pos] == '-'):
		sign := 1.0
		if s[sc.pos] == '-' {
			sign = -1
		}
		sc.pos++
		oh, ok1 := sc.digits(2)
		colon := sc.accept(':')
		om, ok2 := sc.digits(2)
		if !ok1 || !colon || !ok2 || oh > 23 || om > 59 {
			return 0, false
		}
		offset = sign * (oh*3600000 + om*60000)
		utc = true
	}
	if sc.pos != len(s) {
		return 0, false
	}
	tv := composeFields(fields)
	if !utc {
		return localToUTC(tv), true
	}
	return tv - offset, true
}
