package builtins

import (
	"strings"
	"testing"

	"github.com/example/jscore/runtime"
)

func newTestRealm(t *testing.T) (*runtime.Agent, *runtime.Realm) {
	t.Helper()
	a := runtime.NewAgent(runtime.Options{})
	realm := runtime.NewRealm(a)
	Install(realm)
	return a, realm
}

func num(n float64) *runtime.Value { return runtime.NewNumber(n) }

func str(s string) *runtime.Value { return runtime.NewString(s) }

func vals(vs ...*runtime.Value) []*runtime.Value { return vs }

// lookup resolves a dotted path such as "Array.prototype.push" starting
// at the global object, or at an intrinsic when the path starts with
// "%Name%".
func lookup(t *testing.T, a *runtime.Agent, realm *runtime.Realm, path string) *runtime.Value {
	t.Helper()
	v := runtime.NewObject(realm.GlobalObject)
	if strings.HasPrefix(path, "%") {
		end := strings.Index(path[1:], "%") + 2
		o := realm.Intrinsic(path[:end])
		if o == nil {
			t.Fatalf("lookup %s: no intrinsic %s", path, path[:end])
		}
		v = runtime.NewObject(o)
		path = strings.TrimPrefix(path[end:], ".")
		if path == "" {
			return v
		}
	}
	for _, part := range strings.Split(path, ".") {
		next, err := runtime.GetV(a, v, runtime.StrKey(part))
		if err != nil {
			t.Fatalf("lookup %s: %v", path, err)
		}
		v = next
	}
	return v
}

// call invokes the function at path with this and args.
func call(t *testing.T, a *runtime.Agent, realm *runtime.Realm, path string, this *runtime.Value, args ...*runtime.Value) (*runtime.Value, error) {
	t.Helper()
	return runtime.Call(a, lookup(t, a, realm, path), this, args)
}

func mustCall(t *testing.T, a *runtime.Agent, realm *runtime.Realm, path string, this *runtime.Value, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := call(t, a, realm, path, this, args...)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", path, err)
	}
	return v
}

func construct(t *testing.T, a *runtime.Agent, realm *runtime.Realm, name string, args ...*runtime.Value) (*runtime.Value, error) {
	t.Helper()
	ctor := lookup(t, a, realm, name)
	return runtime.Construct(a, ctor.Object, args, nil)
}

func numberArray(a *runtime.Agent, ns ...float64) *runtime.Value {
	items := make([]*runtime.Value, len(ns))
	for i, n := range ns {
		items[i] = num(n)
	}
	return arrayValue(a, items)
}

// elements reads the indexed elements of an array-like value.
func elements(t *testing.T, a *runtime.Agent, v *runtime.Value) []*runtime.Value {
	t.Helper()
	if !v.IsObject() {
		t.Fatalf("expected an object, got %s", v.String())
	}
	n, err := runtime.LengthOfArrayLike(a, v.Object)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]*runtime.Value, n)
	for i := range out {
		if out[i], err = runtime.Get(a, v.Object, runtime.IndexKey(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	return out
}

// joined renders the elements of an array-like comma separated.
func joined(t *testing.T, a *runtime.Agent, v *runtime.Value) string {
	t.Helper()
	parts := []string{}
	for _, e := range elements(t, a, v) {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ",")
}

func expectNumber(t *testing.T, v *runtime.Value, want float64) {
	t.Helper()
	if !v.IsNumber() || v.Number != want {
		t.Errorf("expected %v, got %s", want, v.String())
	}
}

func expectString(t *testing.T, v *runtime.Value, want string) {
	t.Helper()
	if !v.IsString() || runtime.GoString(v.Str) != want {
		t.Errorf("expected %q, got %s", want, v.String())
	}
}

func expectBool(t *testing.T, v *runtime.Value, want bool) {
	t.Helper()
	if v.Type != runtime.TypeBoolean || v.Bool != want {
		t.Errorf("expected %v, got %s", want, v.String())
	}
}

func expectThrows(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got no error", kind)
	}
	if !runtime.IsErrorOfKind(err, kind) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}
