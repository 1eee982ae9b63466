package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestBooleanConversion(t *testing.T) {
	a, realm := newTestRealm(t)
	cases := []struct {
		in   *runtime.Value
		want bool
	}{
		{num(0), false},
		{num(1), true},
		{runtime.NaN, false},
		{str(""), false},
		{str("false"), true},
		{runtime.Null, false},
		{runtime.Undefined, false},
	}
	for _, tc := range cases {
		expectBool(t, mustCall(t, a, realm, "Boolean", runtime.Undefined, tc.in), tc.want)
	}
}

func TestBooleanWrapper(t *testing.T) {
	a, realm := newTestRealm(t)
	wrapped, err := construct(t, a, realm, "Boolean", runtime.False)
	if err != nil {
		t.Fatal(err)
	}
	if !wrapped.IsObject() || wrapped.Object.Kind != runtime.KindBoolean {
		t.Fatalf("expected a Boolean wrapper, got %s", wrapped.String())
	}
	// Wrapper objects are always truthy.
	if !wrapped.ToBoolean() {
		t.Error("wrapper object should be truthy")
	}
	expectBool(t, mustCall(t, a, realm, "Boolean.prototype.valueOf", wrapped), false)
	expectString(t, mustCall(t, a, realm, "Boolean.prototype.toString", wrapped), "false")
	expectString(t, mustCall(t, a, realm, "Boolean.prototype.toString", runtime.True), "true")
}

func TestBooleanThisCheck(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Boolean.prototype.toString", num(1))
	expectThrows(t, err, "TypeError")
	_, err = call(t, a, realm, "Boolean.prototype.valueOf", plainObject(t, a, nil))
	expectThrows(t, err, "TypeError")
}
