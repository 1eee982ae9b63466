package interpreter

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestGeneratorBasic(t *testing.T) {
	expectString(t, `
		function* count() { yield 1; yield 2; yield 3; }
		var out = [];
		for (var v of count()) out.push(v);
		out.join(",");
	`, "1,2,3")
	expectString(t, `
		function* g() { yield 1; return 2; }
		var it = g();
		var a = it.next(), b = it.next(), c = it.next();
		[a.value, a.done, b.value, b.done, c.value, c.done].join();
	`, "1,false,2,true,,true")
}

func TestGeneratorSentValues(t *testing.T) {
	expectNumber(t, `
		function* g() {
			var x = yield 1;
			var y = yield x * 2;
			return x + y;
		}
		var it = g();
		it.next("ignored");
		it.next(5);
		it.next(10).value;
	`, 15)
}

func TestGeneratorReturnRunsFinally(t *testing.T) {
	expectString(t, `
		var log = [];
		function* g() {
			try { yield 1; yield 2; } finally { log.push("cleanup"); }
		}
		var it = g();
		it.next();
		var r = it.return(7);
		log.push(r.value, r.done, it.next().done);
		log.join();
	`, "cleanup,7,true,true")
	expectString(t, `
		function* g() {
			try { yield 1; } finally { yield "from finally"; }
		}
		var it = g();
		it.next();
		var r = it.return(9);
		var last = it.next();
		[r.value, r.done, last.value, last.done].join();
	`, "from finally,false,9,true")
}

func TestGeneratorThrow(t *testing.T) {
	expectString(t, `
		function* g() {
			try { yield 1; } catch (e) { yield "caught " + e; }
		}
		var it = g();
		it.next();
		it.throw("boom").value;
	`, "caught boom")
	expectNumber(t, `
		function* g() { yield 1; }
		var it = g();
		var result;
		try { it.throw(42); } catch (e) { result = e; }
		result;
	`, 42)
}

func TestGeneratorNotStarted(t *testing.T) {
	expectString(t, `
		var ran = false;
		function* g() { ran = true; yield 1; }
		var it = g();
		var r = it.return(3);
		[r.value, r.done, ran, it.next().done].join();
	`, "3,true,false,true")
}

func TestYieldDelegation(t *testing.T) {
	expectString(t, `
		function* inner() { yield 1; yield 2; return 3; }
		function* outer() { var r = yield* inner(); yield r; }
		[...outer()].join();
	`, "1,2,3")
	expectString(t, `
		function* g() { yield* "ab"; yield* [1, 2]; }
		Array.from(g()).join();
	`, "a,b,1,2")
	expectString(t, `
		var log = [];
		var iterable = {
			[Symbol.iterator]() {
				return {
					next() { return { value: 1, done: false }; },
					return() { log.push("inner return"); return { done: true }; },
				};
			},
		};
		function* g() { yield* iterable; }
		var it = g();
		it.next();
		it.return();
		log.join();
	`, "inner return")
}

func TestIteratorCloseOnBreak(t *testing.T) {
	expectString(t, `
		var log = [];
		function* g() {
			try { yield 1; yield 2; } finally { log.push("closed"); }
		}
		for (var v of g()) { log.push(v); break; }
		log.join();
	`, "1,closed")
	expectString(t, `
		var log = [];
		function* g() {
			try { yield 1; } finally { log.push("closed"); }
		}
		try {
			for (var v of g()) throw "stop";
		} catch (e) { log.push(e); }
		log.join();
	`, "closed,stop")
	expectString(t, `
		var log = [];
		function* g() {
			try { yield 1; yield 2; } finally { log.push("closed"); }
		}
		var [first] = g();
		log.push(first);
		log.join();
	`, "closed,1")
}

func TestGeneratorObjects(t *testing.T) {
	expectString(t, `
		function* g() {}
		Object.prototype.toString.call(g());
	`, "[object Generator]")
	expectBool(t, `
		function* g() {}
		Object.getPrototypeOf(g()) === g.prototype;
	`, true)
	expectBool(t, `
		function* g() {}
		var it = g();
		it[Symbol.iterator]() === it;
	`, true)
	expectErrorKind(t, `
		function* g() {}
		new g();
	`, runtime.ErrorKindTypeError)
	expectErrorKind(t, `
		function* g() {}
		g.prototype.next.call({});
	`, runtime.ErrorKindTypeError)
}

func TestGeneratorMethodsAndClosures(t *testing.T) {
	expectString(t, `
		var obj = {
			base: 10,
			*items() { yield this.base; yield this.base + 1; },
		};
		[...obj.items()].join();
	`, "10,11")
	expectString(t, `
		class Range {
			constructor(n) { this.n = n; }
			*[Symbol.iterator]() { for (let i = 0; i < this.n; i++) yield i; }
		}
		[...new Range(3)].join();
	`, "0,1,2")
	expectString(t, `
		function* g() {
			for (let i = 0; i < 3; i++) yield () => i;
		}
		[...g()].map(f => f()).join();
	`, "0,1,2")
}

func TestInfiniteGeneratorIsLazy(t *testing.T) {
	expectNumber(t, `
		function* naturals() { let n = 0; while (true) yield n++; }
		var sum = 0;
		for (var n of naturals()) {
			if (n > 100) break;
			sum += n;
		}
		sum;
	`, 5050)
}
