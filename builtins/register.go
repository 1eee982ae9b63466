package builtins

import (
	"github.com/example/jscore/runtime"
)

// Install creates the standard builtins in realm and defines them on its
// global object. It runs once per realm, after NewRealm has created the
// fundamental prototypes.
func Install(realm *runtime.Realm) {
	global := realm.GlobalObject
	define := func(name string, o *runtime.Object) {
		setDataProp(global, name, runtime.NewObject(o), true, false, true)
	}

	// Object.prototype and Function.prototype methods come first; every
	// later constructor inherits from them.
	objectCtor, _ := createObjectConstructor(realm)
	define("Object", objectCtor)
	installFunctionPrototype(realm)
	installIteratorPrototypes(realm)

	arrayCtor, _ := createArrayConstructor(realm)
	define("Array", arrayCtor)
	stringCtor, _ := createStringConstructor(realm)
	define("String", stringCtor)
	booleanCtor, _ := createBooleanConstructor(realm)
	define("Boolean", booleanCtor)
	numberCtor, _ := createNumberConstructor(realm)
	define("Number", numberCtor)
	bigintCtor, _ := createBigIntConstructor(realm)
	define("BigInt", bigintCtor)
	symbolCtor, _ := createSymbolConstructor(realm)
	define("Symbol", symbolCtor)

	for name, ctor := range createErrorConstructors(realm) {
		define(name, ctor)
	}

	regexpCtor, _ := createRegExpConstructor(realm)
	define("RegExp", regexpCtor)
	dateCtor, _ := createDateConstructor(realm)
	define("Date", dateCtor)

	mapCtor, _ := createMapConstructor(realm)
	define("Map", mapCtor)
	setCtor, _ := createSetConstructor(realm)
	define("Set", setCtor)
	weakMapCtor, _ := createWeakMapConstructor(realm)
	define("WeakMap", weakMapCtor)
	weakSetCtor, _ := createWeakSetConstructor(realm)
	define("WeakSet", weakSetCtor)

	promiseCtor, _ := createPromiseConstructor(realm)
	define("Promise", promiseCtor)
	define("Proxy", createProxyConstructor(realm))
	define("Reflect", createReflectObject(realm))

	bufferCtor, _ := createArrayBufferConstructor(realm)
	define("ArrayBuffer", bufferCtor)
	for name, ctor := range createTypedArrayConstructors(realm) {
		define(name, ctor)
	}

	define("Math", createMathObject(realm))
	define("JSON", createJSONObject(realm))
	define("console", createConsoleObject(realm))

	installGlobalFunctions(realm, global)
	setDataProp(numberCtor, "parseInt", runtime.NewObject(realm.Intrinsic("%parseInt%")), true, false, true)
	setDataProp(numberCtor, "parseFloat", runtime.NewObject(realm.Intrinsic("%parseFloat%")), true, false, true)
}
