package builtins

import (
	"github.com/example/jscore/runtime"
)

func createPromiseConstructor(realm *runtime.Realm) (*runtime.Object, *runtime.Object) {
	proto := realm.Intrinsic("%Promise.prototype%")

	setMethod(realm, proto, "then", 2, promiseProtoThen)
	setMethod(realm, proto, "catch", 1, promiseProtoCatch)
	setMethod(realm, proto, "finally", 1, promiseProtoFinally)
	setToStringTag(proto, "Promise")

	ctor := newConstructor(realm, "Promise", 1, proto, promiseConstructorCall)
	setMethod(realm, ctor, "resolve", 1, promiseResolveStatic)
	setMethod(realm, ctor, "reject", 1, promiseRejectStatic)
	setMethod(realm, ctor, "withResolvers", 0, promiseWithResolvers)
	setMethod(realm, ctor, "try", 1, promiseTry)
	setMethod(realm, ctor, "all", 1, promiseCombinator(performPromiseAll))
	setMethod(realm, ctor, "allSettled", 1, promiseCombinator(performPromiseAllSettled))
	setMethod(realm, ctor, "any", 1, promiseCombinator(performPromiseAny))
	setMethod(realm, ctor, "race", 1, promiseCombinator(performPromiseRace))
	speciesGetter(realm, ctor)
	realm.SetIntrinsic("%Promise%", ctor)
	return ctor, proto
}

func promiseConstructorCall(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if nt == nil {
		return nil, a.NewTypeError("Promise constructor cannot be invoked without 'new'")
	}
	executor := argAt(args, 0)
	if !runtime.IsCallable(executor) {
		return nil, a.NewTypeError("Promise resolver %s is not a function", executor.String())
	}
	proto, err := runtime.GetPrototypeFromConstructor(a, nt, "%Promise.prototype%")
	if err != nil {
		return nil, err
	}
	p := runtime.NewPromiseObject(proto)
	resolve, reject := runtime.CreateResolvingFunctions(a, p)
	if _, err := callFn(a, executor, runtime.Undefined, runtime.NewObject(resolve), runtime.NewObject(reject)); err != nil {
		if _, err := callFn(a, runtime.NewObject(reject), runtime.Undefined, runtime.ThrownValue(err)); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(p), nil
}

// newCapability is NewPromiseCapability with a shortcut for the
// intrinsic %Promise%, which runs no guest code.
func newCapability(a *runtime.Agent, c *runtime.Object) (*runtime.PromiseCapability, error) {
	if c == a.CurrentRealm().Intrinsic("%Promise%") {
		return runtime.NewIntrinsicPromiseCapability(a), nil
	}
	return runtime.NewPromiseCapability(a, runtime.NewObject(c))
}

func thisConstructor(a *runtime.Agent, this *runtime.Value, method string) (*runtime.Object, error) {
	if !this.IsObject() {
		return nil, a.NewTypeError("%s called on non-object", method)
	}
	return this.Object, nil
}

func promiseProtoThen(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	if !runtime.IsPromise(this) {
		return nil, a.NewTypeError("Method Promise.prototype.then called on incompatible receiver %s", this.String())
	}
	c, err := runtime.SpeciesConstructor(a, this.Object, a.CurrentRealm().Intrinsic("%Promise%"))
	if err != nil {
		return nil, err
	}
	capability, err := newCapability(a, c)
	if err != nil {
		return nil, err
	}
	return runtime.PerformPromiseThen(a, this.Object, argAt(args, 0), argAt(args, 1), capability), nil
}

func promiseProtoCatch(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	return runtime.Invoke(a, this, runtime.StrKey("then"), []*runtime.Value{runtime.Undefined, argAt(args, 0)})
}

func promiseProtoFinally(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	p, err := thisConstructor(a, this, "Promise.prototype.finally")
	if err != nil {
		return nil, err
	}
	c, err := runtime.SpeciesConstructor(a, p, a.CurrentRealm().Intrinsic("%Promise%"))
	if err != nil {
		return nil, err
	}
	onFinally := argAt(args, 0)
	if !runtime.IsCallable(onFinally) {
		return runtime.Invoke(a, this, runtime.StrKey("then"), []*runtime.Value{onFinally, onFinally})
	}
	realm := a.CurrentRealm()
	// settle runs onFinally, waits for its result and then replays the
	// original outcome through after.
	settle := func(after func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error)) *runtime.Value {
		return runtime.NewObject(newFuncObject(realm, "", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
			v := argAt(args, 0)
			result, err := callFn(a, onFinally, runtime.Undefined)
			if err != nil {
				return nil, err
			}
			promise, err := runtime.PromiseResolve(a, c, result)
			if err != nil {
				return nil, err
			}
			replay := newFuncObject(realm, "", 0, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
				return after(a, v)
			})
			return runtime.Invoke(a, runtime.NewObject(promise), runtime.StrKey("then"), []*runtime.Value{runtime.NewObject(replay)})
		}))
	}
	thenFinally := settle(func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
		return v, nil
	})
	catchFinally := settle(func(a *runtime.Agent, v *runtime.Value) (*runtime.Value, error) {
		return nil, a.Throw(v)
	})
	return runtime.Invoke(a, this, runtime.StrKey("then"), []*runtime.Value{thenFinally, catchFinally})
}

func promiseResolveStatic(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	c, err := thisConstructor(a, this, "Promise.resolve")
	if err != nil {
		return nil, err
	}
	p, err := runtime.PromiseResolve(a, c, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(p), nil
}

func promiseRejectStatic(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	c, err := thisConstructor(a, this, "Promise.reject")
	if err != nil {
		return nil, err
	}
	capability, err := newCapability(a, c)
	if err != nil {
		return nil, err
	}
	if _, err := callFn(a, capability.Reject, runtime.Undefined, argAt(args, 0)); err != nil {
		return nil, err
	}
	return runtime.NewObject(capability.Promise), nil
}

func promiseWithResolvers(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	c, err := thisConstructor(a, this, "Promise.withResolvers")
	if err != nil {
		return nil, err
	}
	capability, err := newCapability(a, c)
	if err != nil {
		return nil, err
	}
	o := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("promise"), runtime.NewObject(capability.Promise)))
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("resolve"), capability.Resolve))
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("reject"), capability.Reject))
	return runtime.NewObject(o), nil
}

func promiseTry(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	c, err := thisConstructor(a, this, "Promise.try")
	if err != nil {
		return nil, err
	}
	capability, err := newCapability(a, c)
	if err != nil {
		return nil, err
	}
	var rest []*runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	result, err := runtime.Call(a, argAt(args, 0), runtime.Undefined, rest)
	if err != nil {
		_, err = callFn(a, capability.Reject, runtime.Undefined, runtime.ThrownValue(err))
	} else {
		_, err = callFn(a, capability.Resolve, runtime.Undefined, result)
	}
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(capability.Promise), nil
}

// combinatorState is shared by the element functions of one Promise.all,
// allSettled or any call.
type combinatorState struct {
	values    []*runtime.Value
	remaining int
}

// finish decrements the remaining count and reports whether every
// element has settled.
func (s *combinatorState) finish() bool {
	s.remaining--
	return s.remaining == 0
}

type combinatorFunc func(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, capability *runtime.PromiseCapability, resolve *runtime.Value) (*runtime.Value, error)

// promiseCombinator implements the shared steps of the Promise
// combinators: capability creation, the resolve lookup and closing the
// iterator on abrupt completion.
func promiseCombinator(perform combinatorFunc) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		c, err := thisConstructor(a, this, "Promise combinator")
		if err != nil {
			return nil, err
		}
		capability, err := newCapability(a, c)
		if err != nil {
			return nil, err
		}
		rejectWith := func(err error) (*runtime.Value, error) {
			if _, err := callFn(a, capability.Reject, runtime.Undefined, runtime.ThrownValue(err)); err != nil {
				return nil, err
			}
			return runtime.NewObject(capability.Promise), nil
		}
		resolve, err := runtime.Get(a, c, runtime.StrKey("resolve"))
		if err == nil && !runtime.IsCallable(resolve) {
			err = a.NewTypeError("Promise resolve is not a function")
		}
		if err != nil {
			return rejectWith(err)
		}
		rec, err := runtime.GetIterator(a, argAt(args, 0), false)
		if err != nil {
			return rejectWith(err)
		}
		result, err := perform(a, rec, c, capability, resolve)
		if err != nil {
			if !rec.Done {
				err = runtime.IteratorClose(a, rec, err)
			}
			return rejectWith(err)
		}
		return result, nil
	}
}

// stepCombinator advances rec, marking it done when the step itself
// fails so that the caller does not close it.
func stepCombinator(a *runtime.Agent, rec *runtime.IteratorRecord) (*runtime.Value, bool, error) {
	v, done, err := runtime.IteratorStepValue(a, rec)
	if err != nil {
		rec.Done = true
	}
	return v, done, err
}

// forEachPromise resolves each element of rec through resolve and
// subscribes to it with the handlers returned by handlers. It returns the
// element count once the iterator is exhausted.
func forEachPromise(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, resolve *runtime.Value, handlers func(index int) (onFulfilled, onRejected *runtime.Value)) (int, error) {
	for index := 0; ; index++ {
		v, done, err := stepCombinator(a, rec)
		if err != nil {
			return 0, err
		}
		if done {
			return index, nil
		}
		next, err := callFn(a, resolve, runtime.NewObject(c), v)
		if err != nil {
			return 0, err
		}
		onFulfilled, onRejected := handlers(index)
		if _, err := runtime.Invoke(a, next, runtime.StrKey("then"), []*runtime.Value{onFulfilled, onRejected}); err != nil {
			return 0, err
		}
	}
}

// elementFunction returns a one-shot function that stores its argument
// at index through store and resolves the aggregate once every element
// has reported.
func elementFunction(a *runtime.Agent, state *combinatorState, index int, store func(v *runtime.Value) *runtime.Value, done func(a *runtime.Agent) (*runtime.Value, error)) *runtime.Value {
	called := false
	return runtime.NewObject(newFuncObject(a.CurrentRealm(), "", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		if called {
			return runtime.Undefined, nil
		}
		called = true
		state.values[index] = store(argAt(args, 0))
		if state.finish() {
			return done(a)
		}
		return runtime.Undefined, nil
	}))
}

func performPromiseAll(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, capability *runtime.PromiseCapability, resolve *runtime.Value) (*runtime.Value, error) {
	state := &combinatorState{remaining: 1}
	resolveAll := func(a *runtime.Agent) (*runtime.Value, error) {
		return callFn(a, capability.Resolve, runtime.Undefined, arrayValue(a, state.values))
	}
	_, err := forEachPromise(a, rec, c, resolve, func(index int) (*runtime.Value, *runtime.Value) {
		state.values = append(state.values, runtime.Undefined)
		state.remaining++
		onFulfilled := elementFunction(a, state, index, func(v *runtime.Value) *runtime.Value { return v }, resolveAll)
		return onFulfilled, capability.Reject
	})
	if err != nil {
		return nil, err
	}
	if state.finish() {
		if _, err := resolveAll(a); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(capability.Promise), nil
}

func settledRecord(a *runtime.Agent, status, key string, v *runtime.Value) *runtime.Value {
	o := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey("status"), runtime.NewString(status)))
	runtime.Must(runtime.CreateDataProperty(a, o, runtime.StrKey(key), v))
	return runtime.NewObject(o)
}

func performPromiseAllSettled(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, capability *runtime.PromiseCapability, resolve *runtime.Value) (*runtime.Value, error) {
	state := &combinatorState{remaining: 1}
	resolveAll := func(a *runtime.Agent) (*runtime.Value, error) {
		return callFn(a, capability.Resolve, runtime.Undefined, arrayValue(a, state.values))
	}
	_, err := forEachPromise(a, rec, c, resolve, func(index int) (*runtime.Value, *runtime.Value) {
		state.values = append(state.values, runtime.Undefined)
		state.remaining++
		// The fulfill and reject functions of one element share a single
		// already-called flag.
		called := false
		element := func(status, key string) *runtime.Value {
			return runtime.NewObject(newFuncObject(a.CurrentRealm(), "", 1, func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
				if called {
					return runtime.Undefined, nil
				}
				called = true
				state.values[index] = settledRecord(a, status, key, argAt(args, 0))
				if state.finish() {
					return resolveAll(a)
				}
				return runtime.Undefined, nil
			}))
		}
		return element("fulfilled", "value"), element("rejected", "reason")
	})
	if err != nil {
		return nil, err
	}
	if state.finish() {
		if _, err := resolveAll(a); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(capability.Promise), nil
}

func performPromiseAny(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, capability *runtime.PromiseCapability, resolve *runtime.Value) (*runtime.Value, error) {
	state := &combinatorState{remaining: 1}
	rejectAll := func(a *runtime.Agent) (*runtime.Value, error) {
		errObj := a.CreateErrorObject(a.CurrentRealm(), runtime.ErrorKindAggregateError, "All promises were rejected")
		errObj.DefineProperty(runtime.StrKey("errors"), runtime.DataDescriptor(arrayValue(a, state.values), true, false, true))
		return callFn(a, capability.Reject, runtime.Undefined, runtime.NewObject(errObj))
	}
	_, err := forEachPromise(a, rec, c, resolve, func(index int) (*runtime.Value, *runtime.Value) {
		state.values = append(state.values, runtime.Undefined)
		state.remaining++
		onRejected := elementFunction(a, state, index, func(v *runtime.Value) *runtime.Value { return v }, rejectAll)
		return capability.Resolve, onRejected
	})
	if err != nil {
		return nil, err
	}
	if state.finish() {
		if _, err := rejectAll(a); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(capability.Promise), nil
}

func performPromiseRace(a *runtime.Agent, rec *runtime.IteratorRecord, c *runtime.Object, capability *runtime.PromiseCapability, resolve *runtime.Value) (*runtime.Value, error) {
	_, err := forEachPromise(a, rec, c, resolve, func(int) (*runtime.Value, *runtime.Value) {
		return capability.Resolve, capability.Reject
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(capability.Promise), nil
}
