package interpreter

import (
	"testing"

	"github.com/example/jscore/runtime"
)

// settle evaluates setup, drains the job queue and returns the value of
// query afterwards.
func settle(t *testing.T, setup, query string) *runtime.Value {
	t.Helper()
	interp := New()
	run(t, interp, setup)
	return run(t, interp, query)
}

func expectSettled(t *testing.T, setup, query, expected string) {
	t.Helper()
	if got := settle(t, setup, query).String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestAsyncFunctionReturnsPromise(t *testing.T) {
	expectBool(t, `
		async function f() { return 1; }
		f() instanceof Promise;
	`, true)
	expectString(t, `
		async function f() {}
		Object.prototype.toString.call(f);
	`, "[object AsyncFunction]")
	expectSettled(t, `
		var out;
		async function f() { return 41; }
		f().then(v => { out = v + 1; });
	`, `out`, "42")
}

func TestAwaitOrdering(t *testing.T) {
	expectSettled(t, `
		var log = [];
		async function f() {
			log.push(1);
			await null;
			log.push(3);
		}
		f();
		log.push(2);
	`, `log.join()`, "1,2,3")
	expectSettled(t, `
		var log = [];
		async function a() { log.push("a1"); await undefined; log.push("a2"); }
		async function b() { log.push("b1"); await undefined; log.push("b2"); }
		a();
		b();
	`, `log.join()`, "a1,b1,a2,b2")
}

func TestAwaitRejection(t *testing.T) {
	expectSettled(t, `
		var out;
		async function f() {
			try {
				await Promise.reject(new Error("nope"));
			} catch (e) {
				return "caught " + e.message;
			}
		}
		f().then(v => { out = v; });
	`, `out`, "caught nope")
	expectSettled(t, `
		var out;
		async function f() { throw new TypeError("bad"); }
		f().catch(e => { out = e.name + ": " + e.message; });
	`, `out`, "TypeError: bad")
}

func TestAwaitThenable(t *testing.T) {
	expectSettled(t, `
		var out;
		var thenable = { then(resolve) { resolve(7); } };
		(async () => { out = await thenable; })();
	`, `out`, "7")
}

func TestAsyncArrowThis(t *testing.T) {
	expectSettled(t, `
		var out;
		var obj = {
			v: 5,
			run() { return (async () => this.v * 2)(); },
		};
		obj.run().then(v => { out = v; });
	`, `out`, "10")
}

func TestAsyncMethodsInClasses(t *testing.T) {
	expectSettled(t, `
		var out;
		class Loader {
			async load(x) { return await Promise.resolve(x) + "!"; }
			static async create() { return new Loader(); }
		}
		Loader.create().then(l => l.load("ok")).then(v => { out = v; });
	`, `out`, "ok!")
}

func TestAsyncGenerator(t *testing.T) {
	expectSettled(t, `
		var out = [];
		async function* g() {
			yield 1;
			yield await Promise.resolve(2);
			yield Promise.resolve(3);
		}
		(async () => {
			for await (const v of g()) out.push(v);
		})();
	`, `out.join()`, "1,2,3")
	expectSettled(t, `
		var out;
		async function* g() {}
		out = Object.prototype.toString.call(g());
	`, `out`, "[object AsyncGenerator]")
}

func TestAsyncGeneratorReturnAndThrow(t *testing.T) {
	expectSettled(t, `
		var log = [];
		async function* g() {
			try { yield 1; yield 2; } finally { log.push("finally"); }
		}
		var it = g();
		it.next()
			.then(r => { log.push(r.value); return it.return(9); })
			.then(r => { log.push(r.value + ":" + r.done); });
	`, `log.join()`, "1,finally,9:true")
	expectSettled(t, `
		var out;
		async function* g() { yield 1; }
		var it = g();
		it.throw(new Error("early")).catch(e => { out = e.message; });
	`, `out`, "early")
}

func TestForAwaitOverSyncIterable(t *testing.T) {
	expectSettled(t, `
		var sum = 0;
		(async () => {
			for await (const v of [Promise.resolve(1), 2, Promise.resolve(3)]) sum += v;
		})();
	`, `sum`, "6")
}

func TestAsyncRejectionSurfaces(t *testing.T) {
	expectSettled(t, `
		var out;
		async function f() { await null; undefinedName; }
		f().catch(e => { out = e instanceof ReferenceError; });
	`, `out`, "true")
}

func TestPromiseCombinatorsWithAsync(t *testing.T) {
	expectSettled(t, `
		var out;
		const wait = async v => { await null; return v; };
		Promise.all([wait(1), wait(2), 3]).then(vs => { out = vs.join("+"); });
	`, `out`, "1+2+3")
	expectSettled(t, `
		var out;
		Promise.allSettled([Promise.reject(1), Promise.resolve(2)])
			.then(rs => { out = rs.map(r => r.status).join(); });
	`, `out`, "rejected,fulfilled")
}
