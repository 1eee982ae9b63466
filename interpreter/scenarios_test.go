package interpreter

import (
	"testing"

	"github.com/example/jscore/runtime"
)

// run evaluates source on an existing interpreter so later scripts can
// observe the effects of jobs queued by earlier ones.
func run(t *testing.T, interp *Interpreter, source string) *runtime.Value {
	t.Helper()
	val, err := interp.Eval(source)
	if err != nil {
		t.Fatalf("Eval error for %q: %v", source, err)
	}
	return val
}

func expectErrorKind(t *testing.T, source, kind string) {
	t.Helper()
	err := evalExpectError(t, source)
	if !runtime.IsErrorOfKind(err, kind) {
		t.Fatalf("expected %s for %q, got %v", kind, source, err)
	}
}

func TestTemporalDeadZone(t *testing.T) {
	expectErrorKind(t, `{ x; let x = 1; }`, runtime.ErrorKindReferenceError)
	expectErrorKind(t, `{ typeof x; let x = 1; }`, runtime.ErrorKindReferenceError)
	expectErrorKind(t, `{ x = 2; let x = 1; }`, runtime.ErrorKindReferenceError)
	expectErrorKind(t, `
		function read() { return y; }
		read();
		let y = 1;
	`, runtime.ErrorKindReferenceError)
	expectErrorKind(t, `
		class C extends C {}
	`, runtime.ErrorKindReferenceError)
	expectNumber(t, `
		function read() { return y; }
		let y = 1;
		read();
	`, 1)
	expectBool(t, `
		let caught = false;
		try { z; } catch (e) { caught = e instanceof ReferenceError; }
		let z = 1;
		caught;
	`, true)
}

func TestFinallyKeepsThrow(t *testing.T) {
	err := evalExpectError(t, `try { throw 1 } finally { }`)
	exc, ok := err.(*runtime.Exception)
	if !ok {
		t.Fatalf("expected *runtime.Exception, got %T", err)
	}
	if !exc.Value.IsNumber() || exc.Value.Number != 1 {
		t.Fatalf("expected thrown value 1, got %v", exc.Value)
	}

	// An abrupt finally replaces the pending completion.
	expectNumber(t, `
		(function() {
			try { throw 1 } finally { return 2 }
		})();
	`, 2)
	expectNumber(t, `
		(function() {
			try { return 1 } finally { 2 }
		})();
	`, 1)
	expectNumber(t, `
		var n = 0;
		for (var i = 0; i < 3; i++) {
			try { continue } finally { n++ }
		}
		n;
	`, 3)
}

func TestCompletionValues(t *testing.T) {
	expectNumber(t, `1; if (true) { 2; }`, 2)
	expectUndefined(t, `1; if (true) {}`)
	expectNumber(t, `3; do { 4; break; } while (false)`, 4)
	expectNumber(t, `var i = 0; 5; while (i < 2) { i++; }`, 1)
	expectNumber(t, `try { 6 } finally { 7 }`, 6)
}

func TestProxyGetInvariant(t *testing.T) {
	expectErrorKind(t, `
		var target = {};
		Object.defineProperty(target, "x", { value: 1, writable: false, configurable: false });
		var p = new Proxy(target, { get() { return 2; } });
		p.x;
	`, runtime.ErrorKindTypeError)
	expectNumber(t, `
		var target = {};
		Object.defineProperty(target, "x", { value: 1, writable: false, configurable: false });
		var p = new Proxy(target, { get() { return 1; } });
		p.x;
	`, 1)
	expectNumber(t, `
		var p = new Proxy({ x: 1 }, { get(t, k, r) { return k === "x" ? 40 + t.x : undefined; } });
		p.x;
	`, 41)
}

func TestProxyRevokedByHandlerTrapLookup(t *testing.T) {
	expectNumber(t, `
		var r = Proxy.revocable({ a: 7 }, new Proxy({}, { get() { r.revoke(); } }));
		r.proxy.a;
	`, 7)
	expectNumber(t, `
		var r = Proxy.revocable({ a: 7 }, new Proxy({}, { get() { r.revoke(); return function() { return 9; }; } }));
		r.proxy.a;
	`, 9)
	expectErrorKind(t, `
		var r = Proxy.revocable({ a: 7 }, new Proxy({}, { get() { r.revoke(); } }));
		r.proxy.a;
		r.proxy.a;
	`, runtime.ErrorKindTypeError)
}

func TestJobOrder(t *testing.T) {
	interp := New()
	run(t, interp, `
		var log = [];
		Promise.resolve().then(() => {
			log.push(1);
			Promise.resolve().then(() => log.push(3));
		});
		Promise.resolve().then(() => log.push(2));
	`)
	if got := run(t, interp, `log.join()`).String(); got != "1,2,3" {
		t.Fatalf("expected jobs in enqueue order, got %s", got)
	}
	if n := interp.Agent().PendingJobs(); n != 0 {
		t.Fatalf("expected an empty queue, %d jobs pending", n)
	}
}

func TestJobsRunAfterScript(t *testing.T) {
	interp := New()
	if _, err := interp.EvalScript("<test>", `
		var seen = "sync";
		Promise.resolve().then(() => { seen = "job"; });
	`); err != nil {
		t.Fatal(err)
	}
	if n := interp.Agent().PendingJobs(); n != 1 {
		t.Fatalf("expected 1 pending job, got %d", n)
	}
	if err := interp.RunJobs(); err != nil {
		t.Fatal(err)
	}
	if n := interp.Agent().PendingJobs(); n != 0 {
		t.Fatalf("expected an empty queue, %d jobs pending", n)
	}
	if got := run(t, interp, `seen`).String(); got != "job" {
		t.Fatalf("expected the job to have run, got %s", got)
	}
}

func TestEvalReadsResultBeforeDrainingJobs(t *testing.T) {
	interp := New()
	v := run(t, interp, `
		var seen = "sync";
		Promise.resolve().then(() => { seen = "job"; });
		seen;
	`)
	if got := v.String(); got != "sync" {
		t.Fatalf("expected the script result before jobs run, got %s", got)
	}
	if got := run(t, interp, `seen`).String(); got != "job" {
		t.Fatalf("expected Eval to drain the queue, got %s", got)
	}
}

func TestArrayLengthPartialTruncation(t *testing.T) {
	expectNumber(t, `
		var arr = [0, 1, 2, 3, 4];
		Object.defineProperty(arr, 3, { configurable: false });
		arr.length = 2;
		arr.length;
	`, 4)
	expectString(t, `
		var arr = [0, 1, 2, 3, 4];
		Object.defineProperty(arr, 3, { configurable: false });
		arr.length = 2;
		Object.keys(arr).join();
	`, "0,1,2,3")
	expectErrorKind(t, `
		"use strict";
		var arr = [0, 1, 2, 3, 4];
		Object.defineProperty(arr, 3, { configurable: false });
		arr.length = 2;
	`, runtime.ErrorKindTypeError)
	expectNumber(t, `
		var arr = [0, 1, 2, 3, 4];
		arr.length = 2;
		arr.length;
	`, 2)
}

func TestGeneratorReentry(t *testing.T) {
	expectErrorKind(t, `
		var it;
		function* g() { it.next(); yield 1; }
		it = g();
		it.next();
	`, runtime.ErrorKindTypeError)
	expectBool(t, `
		var it;
		function* g() {
			try { it.next(); } catch (e) { yield e instanceof TypeError; }
		}
		it = g();
		it.next().value;
	`, true)
}

func TestAsyncGeneratorRequestsAreQueued(t *testing.T) {
	interp := New()
	run(t, interp, `
		var results = [];
		async function* g() {
			await null;
			yield 1;
			await null;
			yield 2;
		}
		var it = g();
		it.next().then(r => results.push(r.value + ":" + r.done));
		it.next().then(r => results.push(r.value + ":" + r.done));
		it.next().then(r => results.push(r.value + ":" + r.done));
	`)
	if got := run(t, interp, `results.join()`).String(); got != "1:false,2:false,undefined:true" {
		t.Fatalf("unexpected resumption order: %s", got)
	}
}

func TestCallDepthLimit(t *testing.T) {
	interp := NewWithOptions(Options{MaxCallDepth: 100})
	_, err := interp.Eval(`function r(n) { return r(n + 1) + 1; } r(0);`)
	if !runtime.IsErrorOfKind(err, runtime.ErrorKindRangeError) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if interp.Agent().Running() != nil {
		t.Fatal("context stack not unwound")
	}

	// Strict tail calls do not grow the stack.
	val, err := interp.Eval(`
		"use strict";
		function loop(n) {
			if (n === 0) return "done";
			return loop(n - 1);
		}
		loop(1000);
	`)
	if err != nil {
		t.Fatal(err)
	}
	if val.String() != "done" {
		t.Fatalf("expected done, got %s", val.String())
	}
}

func TestStrictOption(t *testing.T) {
	interp := NewWithOptions(Options{Strict: true})
	_, err := interp.Eval(`undeclared = 1`)
	if !runtime.IsErrorOfKind(err, runtime.ErrorKindReferenceError) {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	expectNumber(t, `undeclared = 1; undeclared`, 1)
}

func TestCrossRealmIsolation(t *testing.T) {
	first, second := New(), New()
	run(t, first, `Array.prototype.marker = 1;`)
	if v := run(t, second, `[].marker`); !v.IsUndefined() {
		t.Fatalf("realms share Array.prototype: %v", v)
	}
}

func TestNewRealmOnSameAgent(t *testing.T) {
	interp := New()
	other := interp.NewRealm()
	if other == interp.Realm() || other.ID == interp.Realm().ID {
		t.Fatal("expected a distinct realm")
	}
	arr, err := interp.EvalScriptIn(other, "<other>", `var inOther = true; [1, 2]`)
	if err != nil {
		t.Fatal(err)
	}
	interp.SetGlobal("foreign", arr)
	if got := run(t, interp, `(foreign instanceof Array) + "," + Array.isArray(foreign)`).String(); got != "false,true" {
		t.Fatalf("cross-realm array: %s", got)
	}
	if got := run(t, interp, `typeof inOther`).String(); got != "undefined" {
		t.Fatalf("globals leaked across realms: %s", got)
	}
}
