package runtime

import "testing"

var one = NewNumber(1)

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestTemporalDeadZone(t *testing.T) {
	a, _ := newTestAgent(t)
	env := NewDeclarativeEnvironment(nil)
	if err := env.CreateMutableBinding(a, "x", false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.GetBindingValue(a, "x", true); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("reading an uninitialized binding must throw ReferenceError, got %v", err)
	}
	if err := env.SetMutableBinding(a, "x", one, true); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("writing an uninitialized binding must throw ReferenceError, got %v", err)
	}
	if err := env.InitializeBinding(a, "x", one); err != nil {
		t.Fatal(err)
	}
	if v := Must(env.GetBindingValue(a, "x", true)); v.Number != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
}

func TestImmutableBindings(t *testing.T) {
	a, _ := newTestAgent(t)
	env := NewDeclarativeEnvironment(nil)
	check(t, env.CreateImmutableBinding(a, "c", true))
	check(t, env.InitializeBinding(a, "c", one))
	if err := env.SetMutableBinding(a, "c", Zero, false); !IsErrorOfKind(err, ErrorKindTypeError) {
		t.Fatalf("assigning a strict immutable binding must throw TypeError, got %v", err)
	}

	check(t, env.CreateImmutableBinding(a, "fn", false))
	check(t, env.InitializeBinding(a, "fn", one))
	if err := env.SetMutableBinding(a, "fn", Zero, false); err != nil {
		t.Fatalf("sloppy assignment to a sloppy immutable binding is ignored, got %v", err)
	}
	if v := Must(env.GetBindingValue(a, "fn", false)); v.Number != 1 {
		t.Fatalf("expected the binding to keep 1, got %v", v)
	}
}

func TestShadowingIsTotal(t *testing.T) {
	a, realm := newTestAgent(t)
	outer := NewDeclarativeEnvironment(realm.GlobalEnv)
	check(t, outer.CreateMutableBinding(a, "x", false))
	check(t, outer.InitializeBinding(a, "x", NewString("outer")))
	inner := NewDeclarativeEnvironment(outer)
	check(t, inner.CreateMutableBinding(a, "x", false))

	ref := Must(GetIdentifierReference(a, inner, "x", true))
	if ref.Env != Environment(inner) {
		t.Fatal("resolution must stop at the innermost binding")
	}
	if _, err := ref.GetValue(a); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("inner TDZ must not fall through to the outer binding, got %v", err)
	}
}

func TestUnresolvableReference(t *testing.T) {
	a, realm := newTestAgent(t)
	ref := Must(GetIdentifierReference(a, realm.GlobalEnv, "nope", true))
	if !ref.Unresolvable {
		t.Fatal("expected an unresolvable reference")
	}
	if _, err := ref.GetValue(a); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	if err := ref.PutValue(a, one); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("strict write to an undeclared name must throw, got %v", err)
	}

	sloppy := Must(GetIdentifierReference(a, realm.GlobalEnv, "implicit", false))
	if err := sloppy.PutValue(a, one); err != nil {
		t.Fatal(err)
	}
	if v, ok := realm.GlobalObject.OwnData(StrKey("implicit")); !ok || v.Number != 1 {
		t.Fatal("sloppy write must create a global property")
	}
}

func TestObjectEnvironmentUnscopables(t *testing.T) {
	a, realm := newTestAgent(t)
	obj := a.NewPlainObject()
	obj.DefineProperty(StrKey("hidden"), DataDescriptor(one, true, true, true))
	obj.DefineProperty(StrKey("shown"), DataDescriptor(one, true, true, true))
	unscopables := NewOrdinaryObject(nil)
	unscopables.DefineProperty(StrKey("hidden"), DataDescriptor(True, true, true, true))
	obj.DefineProperty(SymKey(SymUnscopables), DataDescriptor(NewObject(unscopables), true, false, true))

	env := NewObjectEnvironment(obj, true, realm.GlobalEnv)
	if ok := Must(env.HasBinding(a, "hidden")); ok {
		t.Fatal("unscopable names must not be bound by with")
	}
	if ok := Must(env.HasBinding(a, "shown")); !ok {
		t.Fatal("expected shown to be bound")
	}
	if base := env.WithBaseObject(); !base.IsObject() || base.Object != obj {
		t.Fatal("with environments expose their binding object as base")
	}
}

func TestGlobalDeclarationChecks(t *testing.T) {
	a, realm := newTestAgent(t)
	g := realm.GlobalEnv
	realm.GlobalObject.DefineProperty(StrKey("locked"), DataDescriptor(one, false, false, false))
	if ok := Must(g.CanDeclareGlobalFunction(a, "locked")); ok {
		t.Fatal("a non-configurable, non-writable global cannot be redeclared as a function")
	}
	if ok := Must(g.CanDeclareGlobalVar(a, "locked")); !ok {
		t.Fatal("var redeclaration of an existing global is allowed")
	}
	if ok := Must(g.HasRestrictedGlobalProperty(a, "locked")); !ok {
		t.Fatal("expected locked to be restricted")
	}
	check(t, g.CreateGlobalVarBinding(a, "v", false))
	if !g.HasVarDeclaration("v") {
		t.Fatal("expected v in VarNames")
	}
	if v, ok := realm.GlobalObject.OwnData(StrKey("v")); !ok || !v.IsUndefined() {
		t.Fatal("var binding must be a global property initialised to undefined")
	}
}

func TestFunctionThisBinding(t *testing.T) {
	a, realm := newTestAgent(t)
	f := CreateBuiltinFunction(realm, "C", 0, constant(Undefined))
	env := NewFunctionEnvironment(f, NewObject(f), ThisUninitialized, nil, realm.GlobalEnv)
	if _, err := env.GetThisBinding(a); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("this before super() must throw ReferenceError, got %v", err)
	}
	obj := NewObject(a.NewPlainObject())
	if err := env.BindThisValue(a, obj); err != nil {
		t.Fatal(err)
	}
	if err := env.BindThisValue(a, obj); !IsErrorOfKind(err, ErrorKindReferenceError) {
		t.Fatalf("second super() must throw ReferenceError, got %v", err)
	}
	if v := Must(env.GetThisBinding(a)); v != obj {
		t.Fatal("expected the bound this value")
	}
}
