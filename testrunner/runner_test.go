package testrunner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/jscore/interpreter"
)

const staJS = `
function Test262Error(message) { this.message = message || ""; }
Test262Error.prototype.toString = function () { return "Test262Error: " + this.message; };
Test262Error.thrower = function (message) { throw new Test262Error(message); };
function $DONOTEVALUATE() { throw "Test262: This statement should not be evaluated."; }
`

const assertJS = `
function assert(mustBeTrue, message) {
  if (mustBeTrue === true) return;
  throw new Test262Error(message || "Expected true");
}
assert.sameValue = function (actual, expected, message) {
  if (Object.is(actual, expected)) return;
  throw new Test262Error((message || "") + " Expected SameValue(" + actual + ", " + expected + ")");
};
assert.throws = function (C, fn) {
  try { fn(); } catch (e) {
    if (e.constructor !== C) throw new Test262Error("wrong error constructor");
    return;
  }
  throw new Test262Error("Expected an exception");
};
`

const doneJS = `
function $DONE(error) {
  if (error) { print("Test262:AsyncTestFailure:" + error); return; }
  print("Test262:AsyncTestComplete");
}
`

func writeSuite(t *testing.T, tests map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"harness/sta.js":             staJS,
		"harness/assert.js":          assertJS,
		"harness/doneprintHandle.js": doneJS,
	}
	for name, src := range tests {
		files[filepath.Join("test", name)] = src
	}
	for name, src := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata(`// Copyright
/*---
description: |
  multi-line
  description
features: [Symbol, async-iteration]
flags:
  - onlyStrict
includes: [compareArray.js]
negative:
  phase: parse
  type: SyntaxError
---*/
throw "unreachable";
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.Features) != 2 || meta.Features[1] != "async-iteration" {
		t.Errorf("features = %v", meta.Features)
	}
	if !meta.HasFlag("onlyStrict") || meta.HasFlag("module") {
		t.Errorf("flags = %v", meta.Flags)
	}
	if len(meta.Includes) != 1 || meta.Includes[0] != "compareArray.js" {
		t.Errorf("includes = %v", meta.Includes)
	}
	if meta.Negative.Phase != "parse" || meta.Negative.Type != "SyntaxError" {
		t.Errorf("negative = %+v", meta.Negative)
	}
	if meta.Description != "multi-line\ndescription\n" {
		t.Errorf("description = %q", meta.Description)
	}

	if meta, err := ParseMetadata("1 + 1;"); err != nil || len(meta.Flags) != 0 {
		t.Errorf("no frontmatter: %v %v", meta, err)
	}
	if _, err := ParseMetadata("/*--- flags: [a"); err == nil {
		t.Error("expected an error for unterminated frontmatter")
	}
}

func TestRunSuite(t *testing.T) {
	root := writeSuite(t, map[string]string{
		"pass.js": `/*---
description: passes
---*/
assert.sameValue(1 + 1, 2);`,
		"fail.js": `/*---
description: fails
---*/
assert.sameValue(1, 2, "numbers");`,
		"negative.js": `/*---
negative:
  phase: parse
  type: SyntaxError
---*/
$DONOTEVALUATE();
var = 1;`,
		"negative-runtime.js": `/*---
negative:
  phase: runtime
  type: TypeError
---*/
null.x;`,
		"strict.js": `/*---
flags: [onlyStrict]
---*/
assert.throws(ReferenceError, function() { undeclared = 1; });`,
		"skipped.js": `/*---
features: [Temporal]
---*/
Temporal.Now;`,
		"async.js": `/*---
flags: [async]
---*/
Promise.resolve(3).then(function(v) { assert.sameValue(v, 3); }).then($DONE, $DONE);`,
		"async-fail.js": `/*---
flags: [async]
---*/
Promise.reject(new Test262Error("rejected")).then($DONE, $DONE);`,
		"module.js": `/*---
flags: [module]
---*/
import { value } from "./dep_FIXTURE.js";
assert.sameValue(value, 42);`,
		"dep_FIXTURE.js": `export const value = 42;`,
		"realm.js": `/*---
description: createRealm
---*/
var other = $262.createRealm().global;
assert.sameValue(other.Array === Array, false);
assert.sameValue(Array.isArray(new other.Array()), true);`,
		"raw.js": `/*---
flags: [raw]
---*/
if (typeof assert !== "undefined") throw new Error("harness loaded");`,
	})

	results, summary, err := Run(context.Background(), Config{Test262Dir: root, Workers: 3, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Result{
		"test/async-fail.js":       Fail,
		"test/async.js":            Pass,
		"test/fail.js":             Fail,
		"test/module.js":           Pass,
		"test/negative-runtime.js": Pass,
		"test/negative.js":         Pass,
		"test/pass.js":             Pass,
		"test/raw.js":              Pass,
		"test/realm.js":            Pass,
		"test/skipped.js":          Skip,
		"test/strict.js":           Pass,
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results (fixtures excluded), got %d", len(want), len(results))
	}
	for i, r := range results {
		if i > 0 && results[i-1].Path > r.Path {
			t.Errorf("results not in path order: %s before %s", results[i-1].Path, r.Path)
		}
		if expected, ok := want[filepath.ToSlash(r.Path)]; !ok || r.Result != expected {
			t.Errorf("%s: got %s (%s), want %s", r.Path, r.Result, r.Message, expected)
		}
	}
	if summary.Passed != 8 || summary.Failed != 2 || summary.Skipped != 1 || summary.Errors != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if rate := summary.PassRate(); rate != 80 {
		t.Errorf("pass rate = %v, want 80", rate)
	}
}

func TestRunFilterAndLimit(t *testing.T) {
	root := writeSuite(t, map[string]string{
		"a/one.js":   `assert(true);`,
		"a/two.js":   `assert(true);`,
		"b/three.js": `assert(true);`,
	})
	results, _, err := Run(context.Background(), Config{Test262Dir: root, Filter: "a/"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("filter: expected 2 results, got %d", len(results))
	}
	results, _, err = Run(context.Background(), Config{Test262Dir: root, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("limit: expected 1 result, got %d", len(results))
	}
}

func TestRunMissingHarness(t *testing.T) {
	if _, _, err := Run(context.Background(), Config{Test262Dir: t.TempDir()}); err == nil {
		t.Fatal("expected an error without a harness directory")
	}
}

func TestResultString(t *testing.T) {
	cases := map[Result]string{Pass: "PASS", Fail: "FAIL", Skip: "SKIP", Error: "ERROR", Result(9): "UNKNOWN"}
	for r, want := range cases {
		if r.String() != want {
			t.Errorf("%d: got %s, want %s", r, r.String(), want)
		}
	}
	if got := FormatResult(TestResult{Path: "x.js", Result: Fail, Message: "boom"}); got != "FAIL x.js boom" {
		t.Errorf("FormatResult = %q", got)
	}
}

func TestJudge(t *testing.T) {
	thrown := func(src string) error {
		t.Helper()
		_, err := interpreter.New().EvalScript("judge.js", src)
		if err == nil {
			t.Fatalf("expected %q to throw", src)
		}
		return err
	}
	negative := func(typ string) *Metadata {
		return &Metadata{Negative: NegativeExpectation{Phase: "runtime", Type: typ}}
	}
	custom := `function Test262Error(m) { this.message = m; } throw new Test262Error("x");`

	cases := []struct {
		name string
		meta *Metadata
		res  evalResult
		want Result
	}{
		{"plain pass", &Metadata{}, evalResult{}, Pass},
		{"plain fail", &Metadata{}, evalResult{err: errors.New("boom")}, Fail},
		{"negative matched", negative("TypeError"), evalResult{err: thrown(`null.x`)}, Pass},
		{"negative wrong type", negative("SyntaxError"), evalResult{err: thrown(`null.x`)}, Fail},
		{"negative no error", negative("TypeError"), evalResult{}, Fail},
		{"negative by constructor", negative("Test262Error"), evalResult{err: thrown(custom)}, Pass},
		{"negative host error", negative("TypeError"), evalResult{err: errors.New("io")}, Fail},
		{"async done", &Metadata{Flags: []string{"async"}}, evalResult{output: []string{asyncPassMarker}}, Pass},
		{"async failure", &Metadata{Flags: []string{"async"}}, evalResult{output: []string{"Test262:AsyncTestFailure:bad"}}, Fail},
		{"async silent", &Metadata{Flags: []string{"async"}}, evalResult{}, Fail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := judge(tc.meta, tc.res); got.Result != tc.want {
				t.Fatalf("got %s (%s), want %s", got.Result, got.Message, tc.want)
			}
		})
	}
}
