package builtins

import (
	"strings"
	"testing"

	"github.com/example/jscore/runtime"
)

func newDate(t *testing.T, a *runtime.Agent, realm *runtime.Realm, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	d, err := construct(t, a, realm, "Date", args...)
	if err != nil {
		t.Fatalf("new Date: %v", err)
	}
	return d
}

func TestDateFromTimeValue(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(0))
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getTime", d), 0)
	expectString(t, mustCall(t, a, realm, "Date.prototype.toISOString", d), "1970-01-01T00:00:00.000Z")
	expectString(t, mustCall(t, a, realm, "Date.prototype.toUTCString", d), "Thu, 01 Jan 1970 00:00:00 GMT")
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getUTCDay", d), 4)
}

func TestDateUTCFields(t *testing.T) {
	a, realm := newTestRealm(t)
	tv := mustCall(t, a, realm, "Date.UTC", runtime.Undefined, num(2024), num(1), num(29), num(13), num(45), num(30), num(250))
	d := newDate(t, a, realm, tv)
	for path, want := range map[string]float64{
		"Date.prototype.getUTCFullYear":     2024,
		"Date.prototype.getUTCMonth":        1,
		"Date.prototype.getUTCDate":         29,
		"Date.prototype.getUTCHours":        13,
		"Date.prototype.getUTCMinutes":      45,
		"Date.prototype.getUTCSeconds":      30,
		"Date.prototype.getUTCMilliseconds": 250,
	} {
		expectNumber(t, mustCall(t, a, realm, path, d), want)
	}
	expectString(t, mustCall(t, a, realm, "Date.prototype.toISOString", d), "2024-02-29T13:45:30.250Z")
}

func TestDateUTCOverflowAndTwoDigitYears(t *testing.T) {
	a, realm := newTestRealm(t)
	rolled := mustCall(t, a, realm, "Date.UTC", runtime.Undefined, num(2023), num(12), num(1))
	want := mustCall(t, a, realm, "Date.UTC", runtime.Undefined, num(2024), num(0), num(1))
	expectNumber(t, rolled, want.Number)

	y99 := newDate(t, a, realm, mustCall(t, a, realm, "Date.UTC", runtime.Undefined, num(99), num(0)))
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getUTCFullYear", y99), 1999)
}

func TestDateLocalFieldsRoundTrip(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(2021), num(5), num(15), num(12), num(30))
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getFullYear", d), 2021)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getMonth", d), 5)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getDate", d), 15)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getHours", d), 12)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getMinutes", d), 30)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getYear", d), 121)
}

func TestDateParse(t *testing.T) {
	a, realm := newTestRealm(t)
	cases := map[string]float64{
		"1970-01-01T00:00:00Z":          0,
		"1970-01-02":                    86400000,
		"1970-01-01T00:00:01.5Z":        1500,
		"1970-01-01T01:00:00+01:00":     0,
		"Thu, 01 Jan 1970 00:00:10 GMT": 10000,
		"+001970-01-01T00:00:00Z":       0,
	}
	for in, want := range cases {
		expectNumber(t, mustCall(t, a, realm, "Date.parse", runtime.Undefined, str(in)), want)
	}
	for _, bad := range []string{"nonsense", "2020-13-01", "2020-01-01T25:00Z", "-000000-01-01T00:00:00Z"} {
		if v := mustCall(t, a, realm, "Date.parse", runtime.Undefined, str(bad)); !isNaN(v.Number) {
			t.Errorf("Date.parse(%q): expected NaN, got %s", bad, v.String())
		}
	}
}

func TestDateToStringRoundTrip(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(1700000000000))
	s := mustCall(t, a, realm, "Date.prototype.toString", d)
	expectNumber(t, mustCall(t, a, realm, "Date.parse", runtime.Undefined, s), 1700000000000)
	if !strings.Contains(s.String(), "2023") {
		t.Errorf("toString: got %s", s.String())
	}
}

func TestDateInvalid(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(8.64e15+1))
	if v := mustCall(t, a, realm, "Date.prototype.getTime", d); !isNaN(v.Number) {
		t.Errorf("expected NaN time value, got %s", v.String())
	}
	expectString(t, mustCall(t, a, realm, "Date.prototype.toString", d), "Invalid Date")
	_, err := call(t, a, realm, "Date.prototype.toISOString", d)
	expectThrows(t, err, "RangeError")
	if v := mustCall(t, a, realm, "Date.prototype.toJSON", d); !v.IsNull() {
		t.Errorf("toJSON of an invalid date: got %s", v.String())
	}
}

func TestDateSetters(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(0))
	got := mustCall(t, a, realm, "Date.prototype.setUTCHours", d, num(25), num(0))
	expectNumber(t, got, 25*3600000)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getUTCDate", d), 2)
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getUTCHours", d), 1)

	mustCall(t, a, realm, "Date.prototype.setUTCFullYear", d, num(2000), num(0), num(1))
	expectString(t, mustCall(t, a, realm, "Date.prototype.toISOString", d), "2000-01-01T01:00:00.000Z")

	expectNumber(t, mustCall(t, a, realm, "Date.prototype.setTime", d, num(42)), 42)
	if v := mustCall(t, a, realm, "Date.prototype.setUTCMinutes", d, runtime.NaN); !isNaN(v.Number) {
		t.Errorf("setUTCMinutes(NaN): got %s", v.String())
	}
}

func TestDateToPrimitive(t *testing.T) {
	a, realm := newTestRealm(t)
	d := newDate(t, a, realm, num(0))
	def, err := runtime.ToPrimitive(a, d, runtime.HintDefault)
	if err != nil {
		t.Fatal(err)
	}
	if !def.IsString() {
		t.Errorf("default hint should produce a string, got %s", def.String())
	}
	n, err := runtime.ToPrimitive(a, d, runtime.HintNumber)
	if err != nil {
		t.Fatal(err)
	}
	expectNumber(t, n, 0)
	expectString(t, stringify(t, a, realm, d), `"1970-01-01T00:00:00.000Z"`)
}

func TestDateCalledAsFunction(t *testing.T) {
	a, realm := newTestRealm(t)
	v := mustCall(t, a, realm, "Date", runtime.Undefined, num(0))
	if !v.IsString() {
		t.Fatalf("Date() should return a string, got %s", v.String())
	}
	_, err := call(t, a, realm, "Date.prototype.getTime", plainObject(t, a, nil))
	expectThrows(t, err, "TypeError")
}

func TestDateCopy(t *testing.T) {
	a, realm := newTestRealm(t)
	src := newDate(t, a, realm, num(123))
	expectNumber(t, mustCall(t, a, realm, "Date.prototype.getTime", newDate(t, a, realm, src)), 123)
	if lookup(t, a, realm, "Date.prototype.toGMTString").Object != lookup(t, a, realm, "Date.prototype.toUTCString").Object {
		t.Error("toGMTString should be toUTCString")
	}
}
