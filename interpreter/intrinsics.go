package interpreter

import (
	"github.com/example/jscore/runtime"
)

// installMethod defines a writable, non-enumerable built-in method on o.
func installMethod(realm *runtime.Realm, o *runtime.Object, name string, length int, fn runtime.NativeFunc) {
	f := runtime.CreateBuiltinFunction(realm, name, length, fn)
	o.DefineProperty(runtime.StrKey(name), runtime.DataDescriptor(runtime.NewObject(f), true, false, true))
}

func toStringTag(o *runtime.Object, tag string) {
	o.DefineProperty(runtime.SymKey(runtime.SymToStringTag), runtime.DataDescriptor(runtime.NewString(tag), false, false, true))
}

// installIntrinsics adds the intrinsics that need the evaluator: eval, the
// function constructors and the generator prototypes.
func (interp *Interpreter) installIntrinsics(realm *runtime.Realm) {
	fnProto := realm.Intrinsic("%Function.prototype%")
	global := realm.GlobalObject

	evalFn := runtime.CreateBuiltinFunction(realm, "eval", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.performEval(runtime.Arg(args, 0), false, false)
	})
	realm.SetIntrinsic("%eval%", evalFn)
	global.DefineProperty(runtime.StrKey("eval"), runtime.DataDescriptor(runtime.NewObject(evalFn), true, false, true))

	functionCtor := interp.functionConstructor(realm, "Function", kindNormal, fnProto)
	realm.SetIntrinsic("%Function%", functionCtor)
	global.DefineProperty(runtime.StrKey("Function"), runtime.DataDescriptor(runtime.NewObject(functionCtor), true, false, true))

	// Generators.
	genFnProto := runtime.NewOrdinaryObject(fnProto)
	genProto := runtime.NewOrdinaryObject(realm.Intrinsic("%IteratorPrototype%"))
	genFn := interp.functionConstructor(realm, "GeneratorFunction", kindGenerator, genFnProto)
	genFn.SetProto(functionCtor)
	linkPrototype(genFnProto, genProto)
	toStringTag(genFnProto, "GeneratorFunction")
	toStringTag(genProto, "Generator")
	installMethod(realm, genProto, "next", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.generatorResume(this, runtime.NormalCompletion(runtime.Arg(args, 0)), "Generator.prototype.next")
	})
	installMethod(realm, genProto, "return", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.generatorResume(this, runtime.ReturnCompletion(runtime.Arg(args, 0)), "Generator.prototype.return")
	})
	installMethod(realm, genProto, "throw", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.generatorResume(this, a.ThrowValue(runtime.Arg(args, 0)), "Generator.prototype.throw")
	})
	realm.SetIntrinsic("%GeneratorFunction%", genFn)
	realm.SetIntrinsic("%GeneratorFunction.prototype%", genFnProto)
	realm.SetIntrinsic("%GeneratorFunction.prototype.prototype%", genProto)

	// Async functions.
	asyncFnProto := runtime.NewOrdinaryObject(fnProto)
	asyncFn := interp.functionConstructor(realm, "AsyncFunction", kindAsync, asyncFnProto)
	asyncFn.SetProto(functionCtor)
	toStringTag(asyncFnProto, "AsyncFunction")
	realm.SetIntrinsic("%AsyncFunction%", asyncFn)
	realm.SetIntrinsic("%AsyncFunction.prototype%", asyncFnProto)

	// Async generators.
	asyncGenFnProto := runtime.NewOrdinaryObject(fnProto)
	asyncGenProto := runtime.NewOrdinaryObject(realm.Intrinsic("%AsyncIteratorPrototype%"))
	asyncGenFn := interp.functionConstructor(realm, "AsyncGeneratorFunction", kindAsyncGenerator, asyncGenFnProto)
	asyncGenFn.SetProto(functionCtor)
	linkPrototype(asyncGenFnProto, asyncGenProto)
	toStringTag(asyncGenFnProto, "AsyncGeneratorFunction")
	toStringTag(asyncGenProto, "AsyncGenerator")
	installMethod(realm, asyncGenProto, "next", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.asyncGeneratorEnqueue(this, runtime.NormalCompletion(runtime.Arg(args, 0)), "AsyncGenerator.prototype.next"), nil
	})
	installMethod(realm, asyncGenProto, "return", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.asyncGeneratorEnqueue(this, runtime.ReturnCompletion(runtime.Arg(args, 0)), "AsyncGenerator.prototype.return"), nil
	})
	installMethod(realm, asyncGenProto, "throw", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.asyncGeneratorEnqueue(this, a.ThrowValue(runtime.Arg(args, 0)), "AsyncGenerator.prototype.throw"), nil
	})
	realm.SetIntrinsic("%AsyncGeneratorFunction%", asyncGenFn)
	realm.SetIntrinsic("%AsyncGeneratorFunction.prototype%", asyncGenFnProto)
	realm.SetIntrinsic("%AsyncGeneratorFunction.prototype.prototype%", asyncGenProto)
}

// functionConstructor creates one of the constructors that compile
// functions from strings, with proto as its prototype property.
func (interp *Interpreter) functionConstructor(realm *runtime.Realm, name string, kind functionKind, proto *runtime.Object) *runtime.Object {
	var ctor *runtime.Object
	ctor = runtime.CreateBuiltinConstructor(realm, name, 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.createDynamicFunction(ctor, newTarget, kind, args)
	})
	ctor.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(proto), false, false, false))
	if kind == kindNormal {
		proto.DefineProperty(runtime.StrKey("constructor"), runtime.DataDescriptor(runtime.NewObject(ctor), true, false, true))
	} else {
		proto.DefineProperty(runtime.StrKey("constructor"), runtime.DataDescriptor(runtime.NewObject(ctor), false, false, true))
	}
	return ctor
}

// linkPrototype connects a generator function prototype with the
// prototype of the generator objects it creates.
func linkPrototype(fnProto, objProto *runtime.Object) {
	fnProto.DefineProperty(runtime.StrKey("prototype"), runtime.DataDescriptor(runtime.NewObject(objProto), false, false, true))
	objProto.DefineProperty(runtime.StrKey("constructor"), runtime.DataDescriptor(runtime.NewObject(fnProto), false, false, true))
}
