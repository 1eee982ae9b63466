package interpreter

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestClassRequiresNew(t *testing.T) {
	expectErrorKind(t, `
		class A {}
		A();
	`, runtime.ErrorKindTypeError)
	expectString(t, `typeof class {}`, "function")
}

func TestClassFields(t *testing.T) {
	expectString(t, `
		var log = [];
		class A {
			x = (log.push("x"), 1);
			y = this.x + 1;
			constructor() { log.push("ctor " + this.y); }
		}
		new A();
		log.join();
	`, "x,ctor 2")
	expectString(t, `
		class A { static count = 3; static double = A.count * 2; }
		A.count + "," + A.double;
	`, "3,6")
	expectBool(t, `
		class A { x = 1; }
		Object.getOwnPropertyDescriptor(new A(), "x").enumerable;
	`, true)
}

func TestDerivedFieldsAfterSuper(t *testing.T) {
	expectString(t, `
		var log = [];
		class Base { constructor() { log.push("base"); } }
		class Derived extends Base {
			field = log.push("field");
			constructor() { log.push("before"); super(); log.push("after"); }
		}
		new Derived();
		log.join();
	`, "before,base,field,after")
}

func TestPrivateMembers(t *testing.T) {
	expectNumber(t, `
		class Counter {
			#count = 0;
			inc() { return ++this.#count; }
		}
		var c = new Counter();
		c.inc();
		c.inc();
	`, 2)
	expectString(t, `
		class Secret {
			#hidden() { return "method"; }
			get #value() { return "getter"; }
			reveal() { return this.#hidden() + " " + this.#value; }
		}
		new Secret().reveal();
	`, "method getter")
	expectString(t, `
		class A {
			static #instances = 0;
			static make() { A.#instances++; return A.#instances; }
		}
		A.make();
		A.make() + "";
	`, "2")
	expectErrorKind(t, `
		class A {
			#x = 1;
			static read(o) { return o.#x; }
		}
		A.read({});
	`, runtime.ErrorKindTypeError)
	expectString(t, `
		class A {
			#x;
			static has(o) { return #x in o; }
		}
		A.has(new A()) + "," + A.has({});
	`, "true,false")
	expectBool(t, `
		class A { #x = 1; }
		Object.keys(new A()).length === 0;
	`, true)
}

func TestPrivateNamesAreDistinctPerClass(t *testing.T) {
	expectErrorKind(t, `
		function make() {
			return class { #x = 1; static get(o) { return o.#x; } };
		}
		var A = make(), B = make();
		B.get(new A());
	`, runtime.ErrorKindTypeError)
}

func TestStaticBlocks(t *testing.T) {
	expectString(t, `
		var log = [];
		class A {
			static a = log.push("field");
			static { log.push("block " + this.a); }
		}
		log.join();
	`, "field,block 1")
}

func TestSuperProperty(t *testing.T) {
	expectString(t, `
		class A { greet() { return "A"; } static who() { return "static A"; } }
		class B extends A {
			greet() { return super.greet() + "B"; }
			static who() { return super.who() + " via B"; }
		}
		new B().greet() + " / " + B.who();
	`, "AB / static A via B")
	expectString(t, `
		var proto = { hi() { return "proto"; } };
		var obj = { __proto__: proto, hi() { return super.hi() + "+obj"; } };
		obj.hi();
	`, "proto+obj")
}

func TestNewTarget(t *testing.T) {
	expectString(t, `
		function F() { return new.target === F ? "new" : "call"; }
		var viaNew = new F();
		F() + "," + (viaNew instanceof F);
	`, "call,true")
	expectString(t, `
		class Base { constructor() { this.kind = new.target.name; } }
		class Child extends Base {}
		new Child().kind;
	`, "Child")
}

func TestDerivedWithoutSuper(t *testing.T) {
	expectErrorKind(t, `
		class A {}
		class B extends A { constructor() {} }
		new B();
	`, runtime.ErrorKindReferenceError)
	expectErrorKind(t, `
		class A {}
		class B extends A { constructor() { super(); super(); } }
		new B();
	`, runtime.ErrorKindReferenceError)
	expectNumber(t, `
		class A {}
		class B extends A { constructor() { return { v: 3 }; } }
		new B().v;
	`, 3)
}

func TestExtendsBuiltins(t *testing.T) {
	expectString(t, `
		class Stack extends Array {
			top() { return this[this.length - 1]; }
		}
		var s = new Stack();
		s.push(1, 2, 3);
		s.top() + "," + s.length + "," + Array.isArray(s);
	`, "3,3,true")
	expectString(t, `
		class AppError extends Error {
			constructor(msg) { super(msg); this.name = "AppError"; }
		}
		var e = new AppError("bad");
		String(e) + "," + (e instanceof Error);
	`, "AppError: bad,true")
	expectErrorKind(t, `class A extends 5 {}`, runtime.ErrorKindTypeError)
	expectBool(t, `
		class A extends null {}
		Object.getPrototypeOf(A.prototype) === null;
	`, true)
}

func TestClassAccessorsAndComputedKeys(t *testing.T) {
	expectString(t, `
		var key = "dyn";
		class A {
			[key + "amic"]() { return "computed"; }
			static get tag() { return "static getter"; }
		}
		new A().dynamic() + "," + A.tag;
	`, "computed,static getter")
	expectBool(t, `
		class A { m() {} }
		Object.getOwnPropertyDescriptor(A.prototype, "m").enumerable;
	`, false)
}

func TestClassNameBinding(t *testing.T) {
	expectString(t, `
		var C = class Inner { who() { return Inner.name; } };
		new C().who();
	`, "Inner")
	expectString(t, `
		var Anon = class {};
		Anon.name;
	`, "Anon")
	expectErrorKind(t, `
		class A { static reassign() { A = 1; } }
		A.reassign();
	`, runtime.ErrorKindTypeError)
}
