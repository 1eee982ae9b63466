package interpreter

import (
	"github.com/example/jscore/ast"
	"github.com/example/jscore/runtime"
)

const classElementsSlot = "[[ClassElements]]"

// classField is a public or private field with its initializer.
type classField struct {
	key         runtime.PropertyKey
	private     *runtime.PrivateName
	initializer *runtime.Object // nil without an initializer
	anonymous   bool            // the initializer is an anonymous function or class
}

// staticElement is a static field or a static block, run in source order
// once the class is defined.
type staticElement struct {
	field *classField
	block *runtime.Object
}

// classElements are the instance elements a constructor installs on every
// object it initializes.
type classElements struct {
	methods []*runtime.PrivateElement
	fields  []*classField
}

// privateNames declares the #names of a class body.
func privateNames(body *ast.ClassBody, outer *runtime.PrivateEnvironment) *runtime.PrivateEnvironment {
	env := runtime.NewPrivateEnvironment(outer)
	for _, md := range body.Methods {
		if p, ok := md.Key.(*ast.PrivateIdentifier); ok {
			if _, dup := env.Names[p.Name]; !dup {
				env.Names[p.Name] = &runtime.PrivateName{Description: p.Name}
			}
		}
	}
	return env
}

// evalClass is ClassDefinitionEvaluation. bindingName, when set, is the
// name an anonymous class takes from its binding.
func (interp *Interpreter) evalClass(name *ast.Identifier, superClass ast.Expression, body *ast.ClassBody, bindingName *runtime.PropertyKey, f *frame) (*runtime.Value, error) {
	a := interp.agent
	realm := a.CurrentRealm()
	env := f.env()
	outerPrivate := f.ctx.PrivateEnvironment

	classEnv := runtime.NewDeclarativeEnvironment(env)
	if name != nil {
		must(classEnv.CreateImmutableBinding(a, name.Value, true))
	}
	classPrivate := privateNames(body, outerPrivate)

	protoParent := realm.Intrinsic("%Object.prototype%")
	ctorParent := realm.Intrinsic("%Function.prototype%")
	if superClass != nil {
		f.ctx.LexicalEnvironment = classEnv
		sc, err := interp.evalExpression(superClass, f)
		f.ctx.LexicalEnvironment = env
		if err != nil {
			return nil, err
		}
		switch {
		case sc.IsNull():
			protoParent = nil
		case !runtime.IsConstructor(sc):
			return nil, a.NewTypeError("Class extends value %s is not a constructor or null", sc.String())
		default:
			pp, err := runtime.Get(a, sc.Object, runtime.StrKey("prototype"))
			if err != nil {
				return nil, err
			}
			switch {
			case pp.IsNull():
				protoParent = nil
			case pp.IsObject():
				protoParent = pp.Object
			default:
				return nil, a.NewTypeError("Class extends value does not have valid prototype property %s", pp.String())
			}
			ctorParent = sc.Object
		}
	}
	proto := runtime.NewOrdinaryObject(protoParent)

	f.ctx.LexicalEnvironment = classEnv
	f.ctx.PrivateEnvironment = classPrivate
	defer func() {
		f.ctx.LexicalEnvironment = env
		f.ctx.PrivateEnvironment = outerPrivate
	}()

	className := runtime.StrKey("")
	switch {
	case bindingName != nil:
		className = *bindingName
	case name != nil:
		className = runtime.StrKey(name.Value)
	}

	var ctorNode *ast.FunctionExpression
	for _, md := range body.Methods {
		if md.Kind == "constructor" {
			ctorNode = md.Value
		}
	}
	var F *runtime.Object
	if ctorNode != nil {
		fn := newFunction(ctorNode, classEnv, classPrivate)
		fn.isMethod = true
		fn.home = proto
		fn.classConstructor = true
		fn.derived = superClass != nil
		F = interp.ordinaryFunctionCreate(ctorParent, fn)
		interp.makeConstructor(F, false, proto)
	} else {
		F = interp.defaultConstructor(ctorParent, proto, superClass != nil)
	}
	setFunctionName(F, className, "")
	proto.DefineProperty(runtime.StrKey("constructor"), runtime.DataDescriptor(runtime.NewObject(F), true, false, true))

	elements := &classElements{}
	var staticMethods []*runtime.PrivateElement
	var statics []staticElement
	privateMethods := map[*runtime.PrivateName]*runtime.PrivateElement{}

	for _, md := range body.Methods {
		if md.Kind == "constructor" {
			continue
		}
		home := proto
		if md.Static {
			home = F
		}
		if md.Kind == "static-block" {
			block := interp.defineMethod(md.Value, F, f)
			statics = append(statics, staticElement{block: block})
			continue
		}
		var key runtime.PropertyKey
		var private *runtime.PrivateName
		if p, ok := md.Key.(*ast.PrivateIdentifier); ok {
			private = classPrivate.Names[p.Name]
			key = runtime.StrKey(p.Name)
		} else {
			k, err := interp.evalPropertyKey(md.Key, md.Computed, f)
			if err != nil {
				return nil, err
			}
			key = k
		}

		if md.Kind == "field" {
			field := &classField{key: key, private: private}
			if md.Value != nil {
				field.initializer = interp.defineMethod(md.Value, home, f)
				field.anonymous = fieldInitializerIsAnonymous(md.Value)
			}
			if md.Static {
				statics = append(statics, staticElement{field: field})
			} else {
				elements.fields = append(elements.fields, field)
			}
			continue
		}

		method := interp.defineMethod(md.Value, home, f)
		prefix := ""
		if md.Kind == "get" || md.Kind == "set" {
			prefix = md.Kind
		}
		setFunctionName(method, key, prefix)

		if private != nil {
			pe := privateMethods[private]
			if pe == nil {
				pe = &runtime.PrivateElement{Key: private, Kind: runtime.PrivateMethod, Get: runtime.Undefined, Set: runtime.Undefined}
				privateMethods[private] = pe
				if md.Static {
					staticMethods = append(staticMethods, pe)
				} else {
					elements.methods = append(elements.methods, pe)
				}
			}
			switch md.Kind {
			case "get":
				pe.Kind = runtime.PrivateAccessor
				pe.Get = runtime.NewObject(method)
			case "set":
				pe.Kind = runtime.PrivateAccessor
				pe.Set = runtime.NewObject(method)
			default:
				pe.Value = runtime.NewObject(method)
			}
			continue
		}

		var desc runtime.PropertyDescriptor
		switch md.Kind {
		case "get":
			desc = runtime.PropertyDescriptor{Get: runtime.NewObject(method), HasGet: true,
				HasEnumerable: true, Configurable: true, HasConfigurable: true}
		case "set":
			desc = runtime.PropertyDescriptor{Set: runtime.NewObject(method), HasSet: true,
				HasEnumerable: true, Configurable: true, HasConfigurable: true}
		default:
			desc = runtime.DataDescriptor(runtime.NewObject(method), true, false, true)
		}
		if err := runtime.DefinePropertyOrThrow(a, home, key, desc); err != nil {
			return nil, err
		}
	}

	if name != nil {
		must(classEnv.InitializeBinding(a, name.Value, runtime.NewObject(F)))
	}
	F.SetSlot(classElementsSlot, elements)

	for _, m := range staticMethods {
		if err := runtime.PrivateMethodOrAccessorAdd(a, F, m); err != nil {
			return nil, err
		}
	}
	for _, el := range statics {
		if el.block != nil {
			if _, err := runtime.Call(a, runtime.NewObject(el.block), runtime.NewObject(F), nil); err != nil {
				return nil, err
			}
			continue
		}
		if err := interp.defineField(F, el.field); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(F), nil
}

// fieldInitializerIsAnonymous reports whether a field initializer is an
// anonymous function or class, which is named after the field.
func fieldInitializerIsAnonymous(fe *ast.FunctionExpression) bool {
	if fe.Body == nil || len(fe.Body.Statements) != 1 {
		return false
	}
	ret, ok := fe.Body.Statements[0].(*ast.ReturnStatement)
	return ok && ret.Value != nil && isAnonymousFunctionDefinition(ret.Value)
}

// defaultConstructor creates the constructor of a class without one. A
// derived class forwards its arguments to the parent.
func (interp *Interpreter) defaultConstructor(parent, proto *runtime.Object, derived bool) *runtime.Object {
	realm := interp.agent.CurrentRealm()
	F := runtime.NewOrdinaryObject(parent)
	F.Kind = runtime.KindFunction
	F.Realm = realm
	F.Callable = func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, a.NewTypeError("Class constructor %s cannot be invoked without 'new'", functionName(F))
	}
	F.Constructor = func(a *runtime.Agent, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		restore, err := a.Enter(&runtime.ExecutionContext{
			Function: F,
			Realm:    realm,
			CallSite: runtime.CallSite{FunctionName: functionName(F), IsConstructor: true},
		})
		if err != nil {
			return nil, err
		}
		defer restore()
		if newTarget == nil {
			newTarget = F
		}
		var obj *runtime.Object
		if derived {
			superCtor, err := F.GetPrototypeOf(a)
			if err != nil {
				return nil, err
			}
			if superCtor == nil || superCtor.Constructor == nil {
				return nil, a.NewTypeError("Super constructor %s of anonymous class is not a constructor", runtime.ObjectOrNull(superCtor).String())
			}
			result, err := runtime.Construct(a, superCtor, args, newTarget)
			if err != nil {
				return nil, err
			}
			obj = result.Object
		} else {
			obj, err = runtime.OrdinaryCreateFromConstructor(a, newTarget, "%Object.prototype%")
			if err != nil {
				return nil, err
			}
		}
		if err := interp.initializeInstanceElements(obj, F); err != nil {
			return nil, err
		}
		return runtime.NewObject(obj), nil
	}
	F.DefineProperty(runtime.StrKey("length"), runtime.DataDescriptor(runtime.Zero, false, false, true))
	F.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(proto), false, false, false))
	return F
}

// functionName reads the own name of a function object for messages.
func functionName(F *runtime.Object) string {
	if v, ok := F.OwnData(runtime.StrKey("name")); ok && v.IsString() {
		return runtime.GoString(v.Str)
	}
	return ""
}

// initializeInstanceElements installs the private methods and fields the
// class of ctor declares on obj.
func (interp *Interpreter) initializeInstanceElements(obj *runtime.Object, ctor *runtime.Object) error {
	elements, _ := ctor.Slot(classElementsSlot).(*classElements)
	if elements == nil {
		return nil
	}
	a := interp.agent
	for _, m := range elements.methods {
		if err := runtime.PrivateMethodOrAccessorAdd(a, obj, m); err != nil {
			return err
		}
	}
	for _, field := range elements.fields {
		if err := interp.defineField(obj, field); err != nil {
			return err
		}
	}
	return nil
}

// defineField runs the initializer of field with receiver as this and
// defines the result on receiver.
func (interp *Interpreter) defineField(receiver *runtime.Object, field *classField) error {
	a := interp.agent
	v := runtime.Undefined
	if field.initializer != nil {
		var err error
		v, err = runtime.Call(a, runtime.NewObject(field.initializer), runtime.NewObject(receiver), nil)
		if err != nil {
			return err
		}
		if field.anonymous && v.IsObject() {
			if name, ok := v.Object.OwnData(runtime.StrKey("name")); ok && name.IsString() && name.Str == "" {
				setFunctionName(v.Object, field.key, "")
			}
		}
	}
	if field.private != nil {
		return runtime.PrivateFieldAdd(a, receiver, field.private, v)
	}
	return runtime.CreateDataPropertyOrThrow(a, receiver, field.key, v)
}
