package builtins

import (
	"math"
	"math/big"
	"testing"

	"github.com/example/jscore/runtime"
)

func TestNumberConversion(t *testing.T) {
	a, realm := newTestRealm(t)
	expectNumber(t, mustCall(t, a, realm, "Number", runtime.Undefined, str("  12  ")), 12)
	expectNumber(t, mustCall(t, a, realm, "Number", runtime.Undefined, str("0x1f")), 31)
	expectNumber(t, mustCall(t, a, realm, "Number", runtime.Undefined, runtime.True), 1)
	expectNumber(t, mustCall(t, a, realm, "Number", runtime.Undefined), 0)
	expectNumber(t, mustCall(t, a, realm, "Number", runtime.Undefined, runtime.NewBigInt(big.NewInt(10))), 10)
	if v := mustCall(t, a, realm, "Number", runtime.Undefined, str("12px")); !isNaN(v.Number) {
		t.Errorf("expected NaN, got %s", v.String())
	}
}

func TestNumberWrapper(t *testing.T) {
	a, realm := newTestRealm(t)
	w, err := construct(t, a, realm, "Number", num(5))
	if err != nil {
		t.Fatal(err)
	}
	if w.Object.Kind != runtime.KindNumber {
		t.Fatal("expected a Number wrapper")
	}
	expectNumber(t, mustCall(t, a, realm, "Number.prototype.valueOf", w), 5)
	_, err = call(t, a, realm, "Number.prototype.valueOf", str("5"))
	expectThrows(t, err, "TypeError")
}

func TestNumberToFixed(t *testing.T) {
	a, realm := newTestRealm(t)
	cases := []struct {
		x      float64
		digits float64
		want   string
	}{
		{3.14159, 2, "3.14"},
		{2.5, 0, "3"},
		{1.005, 2, "1.00"},
		{0.000001, 3, "0.000"},
		{-1.5, 1, "-1.5"},
		{1e21, 2, "1e+21"},
	}
	for _, tc := range cases {
		expectString(t, mustCall(t, a, realm, "Number.prototype.toFixed", num(tc.x), num(tc.digits)), tc.want)
	}
	_, err := call(t, a, realm, "Number.prototype.toFixed", num(1), num(101))
	expectThrows(t, err, "RangeError")
}

func TestNumberToPrecisionAndExponential(t *testing.T) {
	a, realm := newTestRealm(t)
	expectString(t, mustCall(t, a, realm, "Number.prototype.toPrecision", num(123.456), num(4)), "123.5")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toPrecision", num(0.00012), num(2)), "0.00012")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toPrecision", num(123456), num(2)), "1.2e+5")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toExponential", num(123456), num(2)), "1.23e+5")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toExponential", num(0.5)), "5e-1")
	_, err := call(t, a, realm, "Number.prototype.toPrecision", num(1), num(0))
	expectThrows(t, err, "RangeError")
}

func TestNumberToStringRadix(t *testing.T) {
	a, realm := newTestRealm(t)
	expectString(t, mustCall(t, a, realm, "Number.prototype.toString", num(255), num(16)), "ff")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toString", num(-8), num(2)), "-1000")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toString", num(0.5), num(2)), "0.1")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toString", num(1e21)), "1e+21")
	expectString(t, mustCall(t, a, realm, "Number.prototype.toString", num(math.Copysign(0, -1))), "0")
	_, err := call(t, a, realm, "Number.prototype.toString", num(1), num(1))
	expectThrows(t, err, "RangeError")
}

func TestNumberPredicates(t *testing.T) {
	a, realm := newTestRealm(t)
	expectBool(t, mustCall(t, a, realm, "Number.isInteger", runtime.Undefined, num(5)), true)
	expectBool(t, mustCall(t, a, realm, "Number.isInteger", runtime.Undefined, num(5.5)), false)
	expectBool(t, mustCall(t, a, realm, "Number.isInteger", runtime.Undefined, str("5")), false)
	expectBool(t, mustCall(t, a, realm, "Number.isSafeInteger", runtime.Undefined, num(math.Pow(2, 53))), false)
	expectBool(t, mustCall(t, a, realm, "Number.isSafeInteger", runtime.Undefined, num(math.Pow(2, 53)-1)), true)
	expectBool(t, mustCall(t, a, realm, "Number.isNaN", runtime.Undefined, str("abc")), false)
	expectBool(t, mustCall(t, a, realm, "Number.isNaN", runtime.Undefined, runtime.NaN), true)
	expectBool(t, mustCall(t, a, realm, "Number.isFinite", runtime.Undefined, runtime.PosInf), false)
}

func TestNumberConstants(t *testing.T) {
	a, realm := newTestRealm(t)
	expectNumber(t, lookup(t, a, realm, "Number.MAX_SAFE_INTEGER"), 9007199254740991)
	expectNumber(t, lookup(t, a, realm, "Number.EPSILON"), math.Pow(2, -52))
	expectNumber(t, lookup(t, a, realm, "Number.MIN_VALUE"), 5e-324)
	if lookup(t, a, realm, "Number.parseFloat").Object != lookup(t, a, realm, "parseFloat").Object {
		t.Error("Number.parseFloat should be the global parseFloat")
	}
}

func TestBigInt(t *testing.T) {
	a, realm := newTestRealm(t)
	b := mustCall(t, a, realm, "BigInt", runtime.Undefined, num(42))
	if !b.IsBigInt() || b.BigInt.Int64() != 42 {
		t.Fatalf("BigInt(42): got %s", b.String())
	}
	expectString(t, mustCall(t, a, realm, "BigInt.prototype.toString", b, num(16)), "2a")

	_, err := call(t, a, realm, "BigInt", runtime.Undefined, num(1.5))
	expectThrows(t, err, "RangeError")
	_, err = construct(t, a, realm, "BigInt", num(1))
	expectThrows(t, err, "TypeError")

	wrapped := mustCall(t, a, realm, "BigInt.asUintN", runtime.Undefined, num(8), runtime.NewBigInt(big.NewInt(257)))
	if wrapped.BigInt.Int64() != 1 {
		t.Errorf("asUintN(8, 257n): got %s", wrapped.String())
	}
	signed := mustCall(t, a, realm, "BigInt.asIntN", runtime.Undefined, num(8), runtime.NewBigInt(big.NewInt(255)))
	if signed.BigInt.Int64() != -1 {
		t.Errorf("asIntN(8, 255n): got %s", signed.String())
	}
}
