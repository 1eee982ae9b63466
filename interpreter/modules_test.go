package interpreter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/jscore/runtime"
)

var libraryModules = map[string]string{
	"math.js": `
		export const two = 2;
		export function add(a, b) { return a + b; }
		export default "math default";
	`,
	"counter.js": `
		export let count = 0;
		export function inc() { count++; }
	`,
	"reexport.js": `
		export * from "math.js";
		export { count as total } from "counter.js";
	`,
	"even.js": `
		import { isOdd } from "odd.js";
		export function isEven(n) { return n === 0 ? true : isOdd(n - 1); }
	`,
	"odd.js": `
		import { isEven } from "even.js";
		export function isOdd(n) { return n === 0 ? false : isEven(n - 1); }
	`,
	"throws.js": `
		export const before = 1;
		throw new Error("module failed");
	`,
}

func evalModule(t *testing.T, source string) (*Interpreter, *runtime.Object) {
	t.Helper()
	interp := NewWithOptions(Options{Modules: libraryModules})
	ns, err := interp.EvalModule("main.js", source)
	if err != nil {
		t.Fatalf("module error: %v", err)
	}
	return interp, ns
}

func exported(t *testing.T, interp *Interpreter, ns *runtime.Object, name string) *runtime.Value {
	t.Helper()
	v, err := runtime.Get(interp.Agent(), ns, runtime.StrKey(name))
	if err != nil {
		t.Fatalf("reading export %s: %v", name, err)
	}
	return v
}

func TestModuleImports(t *testing.T) {
	interp, ns := evalModule(t, `
		import def, { add, two as TWO } from "math.js";
		export const sum = add(TWO, 3);
		export const label = def;
	`)
	if v := exported(t, interp, ns, "sum"); v.Number != 5 {
		t.Fatalf("expected 5, got %v", v)
	}
	if v := exported(t, interp, ns, "label").String(); v != "math default" {
		t.Fatalf("expected default export, got %s", v)
	}
}

func TestModuleLiveBindings(t *testing.T) {
	interp, ns := evalModule(t, `
		import { count, inc } from "counter.js";
		export const before = count;
		inc();
		inc();
		export const after = count;
	`)
	if v := exported(t, interp, ns, "before"); v.Number != 0 {
		t.Fatalf("expected 0 before, got %v", v)
	}
	if v := exported(t, interp, ns, "after"); v.Number != 2 {
		t.Fatalf("expected 2 after, got %v", v)
	}
}

func TestModuleNamespaceObject(t *testing.T) {
	interp, ns := evalModule(t, `
		import * as m from "math.js";
		export const keys = Object.keys(m).join();
		export const tag = Object.prototype.toString.call(m);
		export const frozen = Object.isFrozen(m) + "," + Object.isExtensible(m);
		export const proto = Object.getPrototypeOf(m);
	`)
	if v := exported(t, interp, ns, "keys").String(); v != "add,default,two" {
		t.Fatalf("namespace keys: %s", v)
	}
	if v := exported(t, interp, ns, "tag").String(); v != "[object Module]" {
		t.Fatalf("namespace tag: %s", v)
	}
	if v := exported(t, interp, ns, "frozen").String(); v != "false,false" {
		t.Fatalf("namespace integrity: %s", v)
	}
	if v := exported(t, interp, ns, "proto"); !v.IsNull() {
		t.Fatalf("namespace prototype: %v", v)
	}
}

func TestModuleStarReexport(t *testing.T) {
	interp, ns := evalModule(t, `
		import { add, total } from "reexport.js";
		import * as r from "reexport.js";
		export const sum = add(1, 1);
		export const names = Object.keys(r).join();
		export const t = total;
	`)
	if v := exported(t, interp, ns, "sum"); v.Number != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
	// export * never forwards the default export.
	if v := exported(t, interp, ns, "names").String(); v != "add,total,two" {
		t.Fatalf("reexport names: %s", v)
	}
	if v := exported(t, interp, ns, "t"); v.Number != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
}

func TestModuleCycles(t *testing.T) {
	interp, ns := evalModule(t, `
		import { isEven } from "even.js";
		export const result = isEven(10) + "," + isEven(7);
	`)
	if v := exported(t, interp, ns, "result").String(); v != "true,false" {
		t.Fatalf("cyclic imports: %s", v)
	}
}

func TestModuleIsStrict(t *testing.T) {
	interp, ns := evalModule(t, `
		export const thisValue = typeof this;
		export const fnThis = (function() { return this; })() === undefined;
	`)
	if v := exported(t, interp, ns, "thisValue").String(); v != "undefined" {
		t.Fatalf("module this: %s", v)
	}
	if v := exported(t, interp, ns, "fnThis"); !v.ToBoolean() {
		t.Fatal("module functions must be strict")
	}
}

func TestModuleErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		kind   string
	}{
		{"missing export", `import { nothing } from "math.js";`, runtime.ErrorKindSyntaxError},
		{"assign import", `import { two } from "math.js"; two = 3;`, runtime.ErrorKindTypeError},
		{"parse error", `export const = 1;`, runtime.ErrorKindSyntaxError},
		{"tdz", `x; export let x = 1;`, runtime.ErrorKindReferenceError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp := NewWithOptions(Options{Modules: libraryModules})
			_, err := interp.EvalModule("main.js", tc.source)
			if !runtime.IsErrorOfKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}

	interp := NewWithOptions(Options{Modules: libraryModules})
	if _, err := interp.EvalModule("main.js", `import "missing.js";`); err == nil {
		t.Fatal("expected an error for a missing module")
	}
}

func TestModuleEvaluationErrorIsCached(t *testing.T) {
	interp := NewWithOptions(Options{Modules: libraryModules})
	_, first := interp.ImportModule("throws.js")
	if first == nil {
		t.Fatal("expected the module body to throw")
	}
	_, second := interp.ImportModule("throws.js")
	if second != first {
		t.Fatalf("expected the same error on re-import, got %v and %v", first, second)
	}
}

func TestImportModuleEvaluatesOnce(t *testing.T) {
	interp := NewWithOptions(Options{Modules: map[string]string{
		"once.js": `globalThis.loads = (globalThis.loads || 0) + 1; export const v = 1;`,
	}})
	for i := 0; i < 2; i++ {
		if _, err := interp.ImportModule("once.js"); err != nil {
			t.Fatal(err)
		}
	}
	if v := run(t, interp, `loads`); v.Number != 1 {
		t.Fatalf("expected one evaluation, got %v", v)
	}
}

func TestFileModuleHost(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.js":       `import { greet } from "./lib/greet.js"; export const msg = greet("file");`,
		"lib/greet.js":  `import { suffix } from "./suffix.js"; export function greet(n) { return "hello " + n + suffix; }`,
		"lib/suffix.js": `export const suffix = "!";`,
	}
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	interp := NewWithOptions(Options{Host: &runtime.FileModuleHost{Root: dir}})
	ns, err := interp.ImportModule("main.js")
	if err != nil {
		t.Fatal(err)
	}
	if v := exported(t, interp, ns, "msg").String(); v != "hello file!" {
		t.Fatalf("expected nested relative imports, got %s", v)
	}
	if _, err := interp.ImportModule("absent.js"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDirectEval(t *testing.T) {
	expectNumber(t, `
		(function() { var x = 5; return eval("x + 1"); })();
	`, 6)
	expectNumber(t, `
		(function() { eval("var y = 3"); return y; })();
	`, 3)
	expectString(t, `
		(function() { "use strict"; eval("var z = 3"); return typeof z; })();
	`, "undefined")
	expectString(t, `
		(function() { eval("let w = 1"); return typeof w; })();
	`, "undefined")
	expectNumber(t, `eval(42)`, 42)
	expectUndefined(t, `eval()`)
}

func TestIndirectEval(t *testing.T) {
	expectString(t, `
		var x = "global";
		(function() { var x = "local"; return (0, eval)("x"); })();
	`, "global")
	expectString(t, `
		(function() { var e = eval; e("var leaked = 'yes'"); })();
		leaked;
	`, "yes")
}

func TestEvalSyntaxError(t *testing.T) {
	expectBool(t, `
		var ok = false;
		try { eval("{"); } catch (e) { ok = e instanceof SyntaxError; }
		ok;
	`, true)
	expectErrorKind(t, `eval("var v = ;")`, runtime.ErrorKindSyntaxError)
}

func TestFunctionConstructor(t *testing.T) {
	expectNumber(t, `new Function("a", "b", "return a + b")(2, 3)`, 5)
	expectNumber(t, `Function("a, b", "return a * b")(4, 5)`, 20)
	expectNumber(t, `
		var q = 1;
		(function() { var q = 2; return Function("return q")(); })();
	`, 1)
	expectString(t, `Function("return 1").name`, "anonymous")
	expectErrorKind(t, `Function("return (")`, runtime.ErrorKindSyntaxError)
	expectString(t, `
		var GeneratorFunction = Object.getPrototypeOf(function*() {}).constructor;
		[...GeneratorFunction("yield 1; yield 2")()].join();
	`, "1,2")
	expectBool(t, `
		var AsyncFunction = Object.getPrototypeOf(async function() {}).constructor;
		AsyncFunction("return 1")() instanceof Promise;
	`, true)
}
