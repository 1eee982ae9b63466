package builtins

import (
	"math"
	"testing"

	"github.com/example/jscore/runtime"
)

func TestGlobalConstants(t *testing.T) {
	a, realm := newTestRealm(t)
	if v := lookup(t, a, realm, "NaN"); !isNaN(v.Number) {
		t.Errorf("NaN: got %s", v.String())
	}
	expectNumber(t, lookup(t, a, realm, "Infinity"), math.Inf(1))
	if v := lookup(t, a, realm, "undefined"); !v.IsUndefined() {
		t.Errorf("undefined: got %s", v.String())
	}
	if lookup(t, a, realm, "globalThis").Object != realm.GlobalObject {
		t.Error("globalThis should be the global object")
	}
	desc, ok := realm.GlobalObject.OrdinaryGetOwnProperty(runtime.StrKey("undefined"))
	if !ok || desc.Writable || desc.Configurable {
		t.Error("undefined should be read-only")
	}
}

func TestGlobalIsNaNIsFinite(t *testing.T) {
	a, realm := newTestRealm(t)
	expectBool(t, mustCall(t, a, realm, "isNaN", runtime.Undefined, str("abc")), true)
	expectBool(t, mustCall(t, a, realm, "isNaN", runtime.Undefined, str("12")), false)
	expectBool(t, mustCall(t, a, realm, "isFinite", runtime.Undefined, str("12")), true)
	expectBool(t, mustCall(t, a, realm, "isFinite", runtime.Undefined, runtime.PosInf), false)
}

func TestParseInt(t *testing.T) {
	a, realm := newTestRealm(t)
	cases := []struct {
		in    string
		radix *runtime.Value
		want  float64
	}{
		{"42", runtime.Undefined, 42},
		{"  -17px", runtime.Undefined, -17},
		{"0x1F", runtime.Undefined, 31},
		{"ff", num(16), 255},
		{"0x10", num(16), 16},
		{"101", num(2), 5},
		{"z", num(36), 35},
		{"12.9", runtime.Undefined, 12},
	}
	for _, tc := range cases {
		expectNumber(t, mustCall(t, a, realm, "parseInt", runtime.Undefined, str(tc.in), tc.radix), tc.want)
	}
	for _, bad := range []*runtime.Value{str("abc"), str(""), str("-")} {
		if v := mustCall(t, a, realm, "parseInt", runtime.Undefined, bad); !isNaN(v.Number) {
			t.Errorf("parseInt(%s): expected NaN, got %s", bad.String(), v.String())
		}
	}
	if v := mustCall(t, a, realm, "parseInt", runtime.Undefined, str("10"), num(37)); !isNaN(v.Number) {
		t.Errorf("radix 37: expected NaN, got %s", v.String())
	}
}

func TestParseFloat(t *testing.T) {
	a, realm := newTestRealm(t)
	cases := map[string]float64{
		"3.14abc":    3.14,
		"  -.5":      -0.5,
		"1e3":        1000,
		"1e":         1,
		"3.":         3,
		"-Infinity":  math.Inf(-1),
		"+Infinityx": math.Inf(1),
	}
	for in, want := range cases {
		expectNumber(t, mustCall(t, a, realm, "parseFloat", runtime.Undefined, str(in)), want)
	}
	if v := mustCall(t, a, realm, "parseFloat", runtime.Undefined, str(".e1")); !isNaN(v.Number) {
		t.Errorf("parseFloat(.e1): expected NaN, got %s", v.String())
	}
}

func TestURIEncoding(t *testing.T) {
	a, realm := newTestRealm(t)
	expectString(t, mustCall(t, a, realm, "encodeURIComponent", runtime.Undefined, str("a b&c/é")), "a%20b%26c%2F%C3%A9")
	expectString(t, mustCall(t, a, realm, "encodeURI", runtime.Undefined, str("http://x.y/a b?q=1#f")), "http://x.y/a%20b?q=1#f")
	expectString(t, mustCall(t, a, realm, "decodeURIComponent", runtime.Undefined, str("a%20b%26c%2F%C3%A9")), "a b&c/é")
	// decodeURI keeps escapes of reserved characters.
	expectString(t, mustCall(t, a, realm, "decodeURI", runtime.Undefined, str("%2F%20")), "%2F ")
}

func TestURIErrors(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "decodeURIComponent", runtime.Undefined, str("%E0%A4%A"))
	expectThrows(t, err, "URIError")
	_, err = call(t, a, realm, "decodeURIComponent", runtime.Undefined, str("%FF"))
	expectThrows(t, err, "URIError")

	lone := runtime.NewUString(runtime.StringFromUnits([]uint16{0xD800}))
	_, err = call(t, a, realm, "encodeURIComponent", runtime.Undefined, lone)
	expectThrows(t, err, "URIError")
}

func TestEscapeUnescape(t *testing.T) {
	a, realm := newTestRealm(t)
	expectString(t, mustCall(t, a, realm, "escape", runtime.Undefined, str("a b+üĀ")), "a%20b+%FC%u0100")
	expectString(t, mustCall(t, a, realm, "unescape", runtime.Undefined, str("a%20b+%FC%u0100%zz")), "a b+üĀ%zz")
}
