package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func promiseState(t *testing.T, v *runtime.Value) *runtime.PromiseData {
	t.Helper()
	if !runtime.IsPromise(v) {
		t.Fatalf("expected a promise, got %s", v.String())
	}
	return runtime.PromiseDataOf(v.Object)
}

func expectFulfilled(t *testing.T, v *runtime.Value) *runtime.Value {
	t.Helper()
	pd := promiseState(t, v)
	if pd.State != runtime.PromiseFulfilled {
		t.Fatalf("expected fulfilled, got %s", pd.State)
	}
	return pd.Result
}

func expectRejected(t *testing.T, v *runtime.Value) *runtime.Value {
	t.Helper()
	pd := promiseState(t, v)
	if pd.State != runtime.PromiseRejected {
		t.Fatalf("expected rejected, got %s", pd.State)
	}
	return pd.Result
}

func drain(t *testing.T, a *runtime.Agent) {
	t.Helper()
	if err := a.RunJobs(); err != nil {
		t.Fatalf("RunJobs: %v", err)
	}
}

func TestPromiseResolveStatic(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")

	p := mustCall(t, a, realm, "Promise.resolve", promise, num(42))
	expectNumber(t, expectFulfilled(t, p), 42)

	// Resolving with a promise of the same constructor returns it as is.
	if again := mustCall(t, a, realm, "Promise.resolve", promise, p); again.Object != p.Object {
		t.Error("Promise.resolve should return its promise argument")
	}
}

func TestPromiseRejectStatic(t *testing.T) {
	a, realm := newTestRealm(t)
	p := mustCall(t, a, realm, "Promise.reject", lookup(t, a, realm, "Promise"), str("boom"))
	expectString(t, expectRejected(t, p), "boom")
}

func TestPromiseExecutorRunsSynchronously(t *testing.T) {
	a, realm := newTestRealm(t)
	ran := false
	executor := fn(realm, func(args []*runtime.Value) *runtime.Value {
		ran = true
		if _, err := runtime.Call(a, args[0], runtime.Undefined, vals(num(1))); err != nil {
			t.Fatal(err)
		}
		// Later settlements are ignored.
		if _, err := runtime.Call(a, args[1], runtime.Undefined, vals(num(2))); err != nil {
			t.Fatal(err)
		}
		return runtime.Undefined
	})
	p, err := construct(t, a, realm, "Promise", executor)
	if err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("executor did not run")
	}
	expectNumber(t, expectFulfilled(t, p), 1)
}

func TestPromiseExecutorThrowRejects(t *testing.T) {
	a, realm := newTestRealm(t)
	executor := runtime.NewObject(newFuncObject(realm, "", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return nil, a.NewTypeError("bad executor")
	}))
	p, err := construct(t, a, realm, "Promise", executor)
	if err != nil {
		t.Fatal(err)
	}
	reason := expectRejected(t, p)
	if !runtime.IsErrorOfKind(&runtime.Exception{Value: reason}, "TypeError") {
		t.Errorf("expected a TypeError reason, got %s", reason.String())
	}
}

func TestPromiseRequiresNewAndCallableExecutor(t *testing.T) {
	a, realm := newTestRealm(t)
	_, err := call(t, a, realm, "Promise", runtime.Undefined, fn(realm, func([]*runtime.Value) *runtime.Value { return runtime.Undefined }))
	expectThrows(t, err, "TypeError")
	_, err = construct(t, a, realm, "Promise", num(1))
	expectThrows(t, err, "TypeError")
}

func TestPromiseThenIsAsynchronous(t *testing.T) {
	a, realm := newTestRealm(t)
	p := mustCall(t, a, realm, "Promise.resolve", lookup(t, a, realm, "Promise"), num(1))

	var got []float64
	double := fn(realm, func(args []*runtime.Value) *runtime.Value {
		got = append(got, args[0].Number)
		return num(args[0].Number * 2)
	})
	chained := mustCall(t, a, realm, "Promise.prototype.then", p, double)
	if len(got) != 0 {
		t.Fatal("then handler ran synchronously")
	}
	if a.PendingJobs() != 1 {
		t.Fatalf("expected 1 pending job, got %d", a.PendingJobs())
	}
	drain(t, a)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("handler calls: %v", got)
	}
	expectNumber(t, expectFulfilled(t, chained), 2)
}

func TestPromiseJobOrder(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	var order []string
	record := func(name string) *runtime.Value {
		return fn(realm, func([]*runtime.Value) *runtime.Value {
			order = append(order, name)
			return runtime.Undefined
		})
	}
	p1 := mustCall(t, a, realm, "Promise.resolve", promise, num(1))
	p2 := mustCall(t, a, realm, "Promise.resolve", promise, num(2))
	first := mustCall(t, a, realm, "Promise.prototype.then", p1, record("a1"))
	mustCall(t, a, realm, "Promise.prototype.then", p2, record("b1"))
	mustCall(t, a, realm, "Promise.prototype.then", first, record("a2"))
	drain(t, a)

	if got := len(order); got != 3 || order[0] != "a1" || order[1] != "b1" || order[2] != "a2" {
		t.Errorf("job order: got %v", order)
	}
}

func TestPromiseCatch(t *testing.T) {
	a, realm := newTestRealm(t)
	p := mustCall(t, a, realm, "Promise.reject", lookup(t, a, realm, "Promise"), str("oops"))
	recovered := mustCall(t, a, realm, "Promise.prototype.catch", p, fn(realm, func(args []*runtime.Value) *runtime.Value {
		return str("handled " + args[0].String())
	}))
	drain(t, a)
	expectString(t, expectFulfilled(t, recovered), "handled oops")
}

func TestPromiseFinallyPassesThrough(t *testing.T) {
	a, realm := newTestRealm(t)
	p := mustCall(t, a, realm, "Promise.resolve", lookup(t, a, realm, "Promise"), num(7))
	calls := 0
	after := mustCall(t, a, realm, "Promise.prototype.finally", p, fn(realm, func(args []*runtime.Value) *runtime.Value {
		calls++
		if len(args) != 0 {
			t.Errorf("finally callback received %d args", len(args))
		}
		return num(99)
	}))
	drain(t, a)
	if calls != 1 {
		t.Errorf("expected 1 finally call, got %d", calls)
	}
	expectNumber(t, expectFulfilled(t, after), 7)
}

func TestPromiseResolveThenable(t *testing.T) {
	a, realm := newTestRealm(t)
	thenable := a.NewPlainObject()
	setMethod(realm, thenable, "then", 2, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return runtime.Call(a, argAt(args, 0), runtime.Undefined, vals(str("from thenable")))
	})
	p := mustCall(t, a, realm, "Promise.resolve", lookup(t, a, realm, "Promise"), runtime.NewObject(thenable))
	if promiseState(t, p).State != runtime.PromisePending {
		t.Fatal("thenable adoption should wait for a job")
	}
	drain(t, a)
	expectString(t, expectFulfilled(t, p), "from thenable")
}

func TestPromiseSelfResolution(t *testing.T) {
	a, realm := newTestRealm(t)
	res := mustCall(t, a, realm, "Promise.withResolvers", lookup(t, a, realm, "Promise"))
	p := getProp(t, a, res, "promise")
	if _, err := runtime.Call(a, getProp(t, a, res, "resolve"), runtime.Undefined, vals(p)); err != nil {
		t.Fatal(err)
	}
	reason := expectRejected(t, p)
	if !runtime.IsErrorOfKind(&runtime.Exception{Value: reason}, "TypeError") {
		t.Errorf("expected TypeError, got %s", reason.String())
	}
}

func TestPromiseAll(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	items := arrayValue(a, vals(
		mustCall(t, a, realm, "Promise.resolve", promise, num(1)),
		num(2),
		mustCall(t, a, realm, "Promise.resolve", promise, num(3)),
	))
	all := mustCall(t, a, realm, "Promise.all", promise, items)
	drain(t, a)
	if got := joined(t, a, expectFulfilled(t, all)); got != "1,2,3" {
		t.Errorf("Promise.all: got %s", got)
	}

	empty := mustCall(t, a, realm, "Promise.all", promise, numberArray(a))
	if n := len(elements(t, a, expectFulfilled(t, empty))); n != 0 {
		t.Errorf("Promise.all([]): expected empty array, got %d elements", n)
	}
}

func TestPromiseAllRejects(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	items := arrayValue(a, vals(
		mustCall(t, a, realm, "Promise.resolve", promise, num(1)),
		mustCall(t, a, realm, "Promise.reject", promise, str("no")),
	))
	all := mustCall(t, a, realm, "Promise.all", promise, items)
	drain(t, a)
	expectString(t, expectRejected(t, all), "no")
}

func TestPromiseAllSettled(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	items := arrayValue(a, vals(
		mustCall(t, a, realm, "Promise.resolve", promise, num(1)),
		mustCall(t, a, realm, "Promise.reject", promise, str("no")),
	))
	settled := mustCall(t, a, realm, "Promise.allSettled", promise, items)
	drain(t, a)
	records := elements(t, a, expectFulfilled(t, settled))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	expectString(t, getProp(t, a, records[0], "status"), "fulfilled")
	expectNumber(t, getProp(t, a, records[0], "value"), 1)
	expectString(t, getProp(t, a, records[1], "status"), "rejected")
	expectString(t, getProp(t, a, records[1], "reason"), "no")
}

func TestPromiseAny(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	items := arrayValue(a, vals(
		mustCall(t, a, realm, "Promise.reject", promise, str("x")),
		mustCall(t, a, realm, "Promise.resolve", promise, num(5)),
	))
	anyOf := mustCall(t, a, realm, "Promise.any", promise, items)
	drain(t, a)
	expectNumber(t, expectFulfilled(t, anyOf), 5)

	rejected := arrayValue(a, vals(
		mustCall(t, a, realm, "Promise.reject", promise, str("x")),
		mustCall(t, a, realm, "Promise.reject", promise, str("y")),
	))
	none := mustCall(t, a, realm, "Promise.any", promise, rejected)
	drain(t, a)
	reason := expectRejected(t, none)
	if !runtime.IsErrorOfKind(&runtime.Exception{Value: reason}, "AggregateError") {
		t.Fatalf("expected AggregateError, got %s", reason.String())
	}
	if got := joined(t, a, getProp(t, a, reason, "errors")); got != "x,y" {
		t.Errorf("errors: got %s", got)
	}
}

func TestPromiseRace(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	pending := mustCall(t, a, realm, "Promise.withResolvers", promise)
	items := arrayValue(a, vals(
		getProp(t, a, pending, "promise"),
		mustCall(t, a, realm, "Promise.resolve", promise, str("fast")),
	))
	race := mustCall(t, a, realm, "Promise.race", promise, items)
	drain(t, a)
	expectString(t, expectFulfilled(t, race), "fast")
}

func TestPromiseCombinatorNonIterable(t *testing.T) {
	a, realm := newTestRealm(t)
	p := mustCall(t, a, realm, "Promise.all", lookup(t, a, realm, "Promise"), num(1))
	reason := expectRejected(t, p)
	if !runtime.IsErrorOfKind(&runtime.Exception{Value: reason}, "TypeError") {
		t.Errorf("expected TypeError, got %s", reason.String())
	}
}

func TestPromiseTry(t *testing.T) {
	a, realm := newTestRealm(t)
	promise := lookup(t, a, realm, "Promise")
	p := mustCall(t, a, realm, "Promise.try", promise, fn(realm, func(args []*runtime.Value) *runtime.Value {
		return num(args[0].Number + 1)
	}), num(1))
	expectNumber(t, expectFulfilled(t, p), 2)
}
