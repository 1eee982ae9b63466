package runtime

// IteratorRecord is an iterator together with its cached next method.
type IteratorRecord struct {
	Iterator   *Object
	NextMethod *Value
	Done       bool
}

var (
	nextKey   = PropertyKey{Name: "next"}
	doneKey   = PropertyKey{Name: "done"}
	valueKey  = PropertyKey{Name: "value"}
	returnKey = PropertyKey{Name: "return"}
	throwKey  = PropertyKey{Name: "throw"}
)

// GetIterator obtains a sync iterator, or an async one when async is set.
// An async request on an object with only @@iterator wraps the sync
// iterator in an async-from-sync iterator.
func GetIterator(a *Agent, v *Value, async bool) (*IteratorRecord, error) {
	if async {
		method, err := GetMethod(a, v, SymKey(SymAsyncIterator))
		if err != nil {
			return nil, err
		}
		if method.IsUndefined() {
			syncMethod, err := GetMethod(a, v, SymKey(SymIterator))
			if err != nil {
				return nil, err
			}
			if syncMethod.IsUndefined() {
				return nil, a.NewTypeError("%s is not async iterable", v.String())
			}
			rec, err := GetIteratorFromMethod(a, v, syncMethod)
			if err != nil {
				return nil, err
			}
			return CreateAsyncFromSyncIterator(a, rec), nil
		}
		return GetIteratorFromMethod(a, v, method)
	}
	method, err := GetMethod(a, v, SymKey(SymIterator))
	if err != nil {
		return nil, err
	}
	if method.IsUndefined() {
		return nil, a.NewTypeError("%s is not iterable", v.String())
	}
	return GetIteratorFromMethod(a, v, method)
}

func GetIteratorFromMethod(a *Agent, v, method *Value) (*IteratorRecord, error) {
	it, err := Call(a, method, v, nil)
	if err != nil {
		return nil, err
	}
	if !it.IsObject() {
		return nil, a.NewTypeError("Result of the Symbol.iterator method is not an object")
	}
	next, err := Get(a, it.Object, nextKey)
	if err != nil {
		return nil, err
	}
	return &IteratorRecord{Iterator: it.Object, NextMethod: next}, nil
}

// IteratorNext calls next, passing value when it is non-nil.
func IteratorNext(a *Agent, rec *IteratorRecord, value *Value) (*Object, error) {
	var args []*Value
	if value != nil {
		args = []*Value{value}
	}
	r, err := Call(a, rec.NextMethod, NewObject(rec.Iterator), args)
	if err != nil {
		rec.Done = true
		return nil, err
	}
	if !r.IsObject() {
		rec.Done = true
		return nil, a.NewTypeError("Iterator result %s is not an object", r.String())
	}
	return r.Object, nil
}

func IteratorComplete(a *Agent, result *Object) (bool, error) {
	d, err := Get(a, result, doneKey)
	if err != nil {
		return false, err
	}
	return d.ToBoolean(), nil
}

func IteratorValue(a *Agent, result *Object) (*Value, error) {
	return Get(a, result, valueKey)
}

// IteratorStep returns the next result object, or nil when the iterator is
// done.
func IteratorStep(a *Agent, rec *IteratorRecord) (*Object, error) {
	r, err := IteratorNext(a, rec, nil)
	if err != nil {
		return nil, err
	}
	done, err := IteratorComplete(a, r)
	if err != nil {
		rec.Done = true
		return nil, err
	}
	if done {
		rec.Done = true
		return nil, nil
	}
	return r, nil
}

// IteratorStepValue returns the next value and false, or true once the
// iterator is done.
func IteratorStepValue(a *Agent, rec *IteratorRecord) (*Value, bool, error) {
	r, err := IteratorStep(a, rec)
	if err != nil || r == nil {
		return nil, r == nil && err == nil, err
	}
	v, err := IteratorValue(a, r)
	if err != nil {
		rec.Done = true
		return nil, false, err
	}
	return v, false, nil
}

// IteratorClose calls return on the iterator. A non-nil cause wins over any
// error raised while closing.
func IteratorClose(a *Agent, rec *IteratorRecord, cause error) error {
	ret, err := GetMethod(a, NewObject(rec.Iterator), returnKey)
	if err == nil && !ret.IsUndefined() {
		var r *Value
		r, err = Call(a, ret, NewObject(rec.Iterator), nil)
		if err == nil && !r.IsObject() && cause == nil {
			return a.NewTypeError("Iterator result %s is not an object", r.String())
		}
	}
	if cause != nil {
		return cause
	}
	return err
}

func CreateIterResultObject(a *Agent, v *Value, done bool) *Object {
	o := a.NewPlainObject()
	o.DefineProperty(valueKey, DataDescriptor(v, true, true, true))
	o.DefineProperty(doneKey, DataDescriptor(NewBool(done), true, true, true))
	return o
}

// IterableToList drains the iterator of v into a slice.
func IterableToList(a *Agent, v *Value) ([]*Value, error) {
	rec, err := GetIterator(a, v, false)
	if err != nil {
		return nil, err
	}
	var out []*Value
	for {
		next, done, err := IteratorStepValue(a, rec)
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		out = append(out, next)
	}
}

type asyncFromSync struct {
	sync *IteratorRecord
}

// CreateAsyncFromSyncIterator adapts a sync iterator to the async protocol.
// Values that are promises are awaited before being handed out.
func CreateAsyncFromSyncIterator(a *Agent, rec *IteratorRecord) *IteratorRecord {
	proto := asyncFromSyncPrototype(a.CurrentRealm())
	o := NewOrdinaryObject(proto)
	o.SetSlot("[[SyncIteratorRecord]]", &asyncFromSync{sync: rec})
	next, _ := proto.OwnData(nextKey)
	return &IteratorRecord{Iterator: o, NextMethod: next}
}

func asyncFromSyncPrototype(realm *Realm) *Object {
	if p := realm.Intrinsic("%AsyncFromSyncIteratorPrototype%"); p != nil {
		return p
	}
	p := NewOrdinaryObject(realm.Intrinsic("%AsyncIteratorPrototype%"))
	method := func(name string, step func(a *Agent, s *asyncFromSync, args []*Value, capability *PromiseCapability) error) {
		fn := CreateBuiltinFunction(realm, name, 1, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
			capability := NewIntrinsicPromiseCapability(a)
			var s *asyncFromSync
			if this.IsObject() {
				s, _ = this.Object.Slot("[[SyncIteratorRecord]]").(*asyncFromSync)
			}
			var err error
			if s == nil {
				err = a.NewTypeError("not an async-from-sync iterator")
			} else {
				err = step(a, s, args, capability)
			}
			if err != nil {
				Must(Call(a, capability.Reject, Undefined, []*Value{ThrownValue(err)}))
			}
			return NewObject(capability.Promise), nil
		})
		p.DefineProperty(StrKey(name), DataDescriptor(NewObject(fn), true, false, true))
	}
	method("next", func(a *Agent, s *asyncFromSync, args []*Value, capability *PromiseCapability) error {
		var v *Value
		if len(args) > 0 {
			v = args[0]
		}
		result, err := IteratorNext(a, s.sync, v)
		if err != nil {
			return err
		}
		return asyncFromSyncContinuation(a, result, capability, s.sync, true)
	})
	method("return", func(a *Agent, s *asyncFromSync, args []*Value, capability *PromiseCapability) error {
		it := s.sync.Iterator
		ret, err := GetMethod(a, NewObject(it), returnKey)
		if err != nil {
			return err
		}
		if ret.IsUndefined() {
			Must(Call(a, capability.Resolve, Undefined, []*Value{NewObject(CreateIterResultObject(a, Arg(args, 0), true))}))
			return nil
		}
		var callArgs []*Value
		if len(args) > 0 {
			callArgs = args[:1]
		}
		result, err := Call(a, ret, NewObject(it), callArgs)
		if err != nil {
			return err
		}
		if !result.IsObject() {
			return a.NewTypeError("iterator.return() did not return an object")
		}
		return asyncFromSyncContinuation(a, result.Object, capability, s.sync, false)
	})
	method("throw", func(a *Agent, s *asyncFromSync, args []*Value, capability *PromiseCapability) error {
		it := s.sync.Iterator
		throw, err := GetMethod(a, NewObject(it), throwKey)
		if err != nil {
			return err
		}
		if throw.IsUndefined() {
			s.sync.Done = true
			if err := IteratorClose(a, s.sync, nil); err != nil {
				return err
			}
			return a.NewTypeError("The iterator does not provide a 'throw' method")
		}
		var callArgs []*Value
		if len(args) > 0 {
			callArgs = args[:1]
		}
		result, err := Call(a, throw, NewObject(it), callArgs)
		if err != nil {
			return err
		}
		if !result.IsObject() {
			return a.NewTypeError("iterator.throw() did not return an object")
		}
		return asyncFromSyncContinuation(a, result.Object, capability, s.sync, true)
	})
	realm.SetIntrinsic("%AsyncFromSyncIteratorPrototype%", p)
	return p
}

// asyncFromSyncContinuation resolves capability once the value of result
// settles. A rejected value closes the sync iterator when closeOnRejection
// is set.
func asyncFromSyncContinuation(a *Agent, result *Object, capability *PromiseCapability, rec *IteratorRecord, closeOnRejection bool) error {
	done, err := IteratorComplete(a, result)
	if err != nil {
		return err
	}
	value, err := IteratorValue(a, result)
	if err != nil {
		return err
	}
	wrapper, err := PromiseResolve(a, a.CurrentRealm().Intrinsic("%Promise%"), value)
	if err != nil {
		if !done && closeOnRejection {
			return IteratorClose(a, rec, err)
		}
		return err
	}
	PromiseThen(a, wrapper,
		func(a *Agent, v *Value) (*Value, error) {
			Must(Call(a, capability.Resolve, Undefined, []*Value{NewObject(CreateIterResultObject(a, v, done))}))
			return Undefined, nil
		},
		func(a *Agent, reason *Value) (*Value, error) {
			if !done && closeOnRejection {
				if err := IteratorClose(a, rec, a.Throw(reason)); err != nil {
					reason = ThrownValue(err)
				}
			}
			Must(Call(a, capability.Reject, Undefined, []*Value{reason}))
			return Undefined, nil
		})
	return nil
}
