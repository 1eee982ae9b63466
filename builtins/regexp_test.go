package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func newRegExp(t *testing.T, a *runtime.Agent, pattern, flags string) *runtime.Value {
	t.Helper()
	re, err := regExpCreate(a, str(pattern), str(flags))
	if err != nil {
		t.Fatalf("RegExp(%q, %q): %v", pattern, flags, err)
	}
	return runtime.NewObject(re)
}

func getProp(t *testing.T, a *runtime.Agent, v *runtime.Value, name string) *runtime.Value {
	t.Helper()
	p, err := runtime.GetV(a, v, runtime.StrKey(name))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRegExpTest(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, "[0-9]+", "")
	expectBool(t, mustCall(t, a, realm, "RegExp.prototype.test", re, str("hello123")), true)
	expectBool(t, mustCall(t, a, realm, "RegExp.prototype.test", re, str("hello")), false)
}

func TestRegExpFlagsReachMatcher(t *testing.T) {
	a, realm := newTestRealm(t)
	input := str("a\nB\nc")
	cases := []struct {
		flags string
		want  bool
	}{
		{"ims", true},
		{"ms", false},
		{"is", false},
		{"im", false},
	}
	for _, tc := range cases {
		re := newRegExp(t, a, "^b.c$", tc.flags)
		if got := mustCall(t, a, realm, "RegExp.prototype.test", re, input); got.Bool != tc.want {
			t.Errorf("/^b.c$/%s: expected %v", tc.flags, tc.want)
		}
	}
}

func TestRegExpExec(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, `(\w+)@(\w+)`, "")

	m := mustCall(t, a, realm, "RegExp.prototype.exec", re, str("mail user@host now"))
	if got := joined(t, a, m); got != "user@host,user,host" {
		t.Errorf("exec: got %s", got)
	}
	expectNumber(t, getProp(t, a, m, "index"), 5)
	expectString(t, getProp(t, a, m, "input"), "mail user@host now")
}

func TestRegExpExecNoMatch(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, "xyz", "")
	if m := mustCall(t, a, realm, "RegExp.prototype.exec", re, str("hello")); !m.IsNull() {
		t.Errorf("expected null, got %s", m.String())
	}
}

func TestRegExpGlobalLastIndex(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, "a", "g")
	mustCall(t, a, realm, "RegExp.prototype.exec", re, str("banana"))
	expectNumber(t, getProp(t, a, re, "lastIndex"), 2)
	mustCall(t, a, realm, "RegExp.prototype.exec", re, str("banana"))
	expectNumber(t, getProp(t, a, re, "lastIndex"), 4)
}

func TestRegExpNamedGroups(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, `(?<year>\d{4})-(?<month>\d{2})`, "")
	m := mustCall(t, a, realm, "RegExp.prototype.exec", re, str("on 2024-05"))
	groups := getProp(t, a, m, "groups")
	expectString(t, getProp(t, a, groups, "year"), "2024")
	expectString(t, getProp(t, a, groups, "month"), "05")
}

func TestRegExpToString(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, "a/b", "gi")
	expectString(t, mustCall(t, a, realm, "RegExp.prototype.toString", re), `/a\/b/gi`)
	expectString(t, getProp(t, a, re, "flags"), "gi")
	expectString(t, getProp(t, a, newRegExp(t, a, "", ""), "source"), "(?:)")
}

func TestRegExpCaseInsensitive(t *testing.T) {
	a, realm := newTestRealm(t)
	re := newRegExp(t, a, "hello", "i")
	expectBool(t, mustCall(t, a, realm, "RegExp.prototype.test", re, str("HELLO")), true)
	expectBool(t, getProp(t, a, re, "ignoreCase"), true)
	expectBool(t, getProp(t, a, re, "global"), false)
}

func TestRegExpInvalidFlags(t *testing.T) {
	a, _ := newTestRealm(t)
	_, err := regExpCreate(a, str("a"), str("gg"))
	expectThrows(t, err, "SyntaxError")
	_, err = regExpCreate(a, str("a"), str("q"))
	expectThrows(t, err, "SyntaxError")
	_, err = regExpCreate(a, str("("), str(""))
	expectThrows(t, err, "SyntaxError")
}

func TestStringMatchWithRegExp(t *testing.T) {
	a, realm := newTestRealm(t)
	all := mustCall(t, a, realm, "String.prototype.match", str("a1b22c333"), newRegExp(t, a, `\d+`, "g"))
	if got := joined(t, a, all); got != "1,22,333" {
		t.Errorf("match /g: got %s", got)
	}
	expectNumber(t, mustCall(t, a, realm, "String.prototype.search", str("abc1"), newRegExp(t, a, `\d`, "")), 3)

	replaced := mustCall(t, a, realm, "String.prototype.replace", str("John Smith"), newRegExp(t, a, `(\w+)\s(\w+)`, ""), str("$2, $1"))
	expectString(t, replaced, "Smith, John")

	parts := mustCall(t, a, realm, "String.prototype.split", str("a1b2c"), newRegExp(t, a, `\d`, ""))
	if got := joined(t, a, parts); got != "a,b,c" {
		t.Errorf("split by regexp: got %s", got)
	}
}

func TestStringMatchAllRequiresGlobal(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "String.prototype.matchAll", str("aa"), newRegExp(t, a, "a", ""))
	expectThrows(t, err, "TypeError")
	_, err = call(t, a, realm, "String.prototype.replaceAll", str("aa"), newRegExp(t, a, "a", ""), str("b"))
	expectThrows(t, err, "TypeError")
	expectString(t, mustCall(t, a, realm, "String.prototype.replaceAll", str("aa"), newRegExp(t, a, "a", "g"), str("b")), "bb")
}
