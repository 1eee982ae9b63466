package testrunner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/runtime"
)

const asyncPassMarker = "Test262:AsyncTestComplete"

type evalResult struct {
	err    error
	output []string
}

func runSingleTest(path, rel string, h *harness, timeout time.Duration) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: "read error: " + err.Error()}
	}

	meta, err := ParseMetadata(string(source))
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: err.Error()}
	}
	for _, feat := range meta.Features {
		if isUnsupportedFeature(feat) {
			return TestResult{Path: rel, Result: Skip, Message: "unsupported feature: " + feat}
		}
	}
	includes, err := h.includes(meta)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: err.Error()}
	}

	start := time.Now()
	resultCh := make(chan evalResult, 1)
	go func() {
		resultCh <- execute(path, string(source), meta, includes)
	}()

	var res evalResult
	select {
	case res = <-resultCh:
	case <-time.After(timeout):
		return TestResult{Path: rel, Result: Error, Message: fmt.Sprintf("timeout (%s)", timeout), Elapsed: time.Since(start)}
	}
	tr := judge(meta, res)
	tr.Path = rel
	tr.Elapsed = time.Since(start)
	log.Debugf("%s %s", tr.Result, rel)
	return tr
}

// judge compares the outcome of a test with what its metadata expects.
func judge(meta *Metadata, res evalResult) TestResult {
	if meta.Negative.Phase != "" {
		if res.err == nil {
			return TestResult{Result: Fail, Message: fmt.Sprintf("expected %s in %s phase", meta.Negative.Type, meta.Negative.Phase)}
		}
		if runtime.ThrownName(res.err) != meta.Negative.Type {
			return TestResult{Result: Fail, Message: fmt.Sprintf("expected %s, got %v", meta.Negative.Type, res.err)}
		}
		return TestResult{Result: Pass}
	}
	if res.err != nil {
		return TestResult{Result: Fail, Message: res.err.Error()}
	}
	if meta.HasFlag("async") {
		for _, line := range res.output {
			if line == asyncPassMarker {
				return TestResult{Result: Pass}
			}
			if strings.HasPrefix(line, "Test262:AsyncTestFailure:") {
				return TestResult{Result: Fail, Message: strings.TrimPrefix(line, "Test262:AsyncTestFailure:")}
			}
		}
		return TestResult{Result: Fail, Message: "async test did not complete"}
	}
	return TestResult{Result: Pass}
}

// execute evaluates the harness and the test in a fresh interpreter.
// Module tests load their imports relative to the test file.
func execute(path, source string, meta *Metadata, includes []string) (res evalResult) {
	host := &runtime.FileModuleHost{Root: filepath.Dir(path)}
	interp := interpreter.NewWithOptions(interpreter.Options{Host: host})
	install262(interp, interp.Realm(), &res.output)

	for _, inc := range includes {
		if _, err := interp.EvalScript("harness", inc); err != nil {
			res.err = fmt.Errorf("harness: %w", err)
			return res
		}
	}

	if meta.HasFlag("module") {
		abs, err := filepath.Abs(path)
		if err != nil {
			res.err = err
			return res
		}
		_, res.err = interp.ImportModule(abs)
		return res
	}
	if meta.HasFlag("onlyStrict") {
		source = "\"use strict\";\n" + source
	}
	if _, err := interp.EvalScript(path, source); err != nil {
		res.err = err
		return res
	}
	res.err = interp.RunJobs()
	return res
}

// install262 defines print and the $262 host object in realm.
func install262(interp *interpreter.Interpreter, realm *runtime.Realm, output *[]string) {
	global := realm.GlobalObject
	define := func(o *runtime.Object, name string, v *runtime.Value) {
		o.DefineProperty(runtime.StrKey(name), runtime.DataDescriptor(v, true, false, true))
	}
	method := func(o *runtime.Object, name string, length int, fn runtime.NativeFunc) {
		define(o, name, runtime.NewObject(runtime.CreateBuiltinFunction(realm, name, length, fn)))
	}

	method(global, "print", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := runtime.ToString(a, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		*output = append(*output, runtime.GoString(s))
		return runtime.Undefined, nil
	})

	obj := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	define(obj, "global", runtime.NewObject(global))
	method(obj, "gc", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		return runtime.Undefined, nil
	})
	method(obj, "detachArrayBuffer", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		buf := runtime.Arg(args, 0)
		if !buf.IsObject() || runtime.BufferData(buf.Object) == nil {
			return nil, a.NewTypeError("detachArrayBuffer: not an ArrayBuffer")
		}
		runtime.BufferData(buf.Object).Detach()
		return runtime.Null, nil
	})
	method(obj, "evalScript", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		s, err := runtime.ToString(a, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return interp.EvalScriptIn(realm, "evalScript", runtime.GoString(s))
	})
	method(obj, "createRealm", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		other := interp.NewRealm()
		install262(interp, other, output)
		return runtime.Get(a, other.GlobalObject, runtime.StrKey("$262"))
	})
	define(global, "$262", runtime.NewObject(obj))
}
