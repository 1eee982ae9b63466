package runtime

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	}
	return "pending"
}

// PromiseData is the state held in a promise's "[[PromiseData]]" slot.
type PromiseData struct {
	State            PromiseState
	Result           *Value
	FulfillReactions []*PromiseReaction
	RejectReactions  []*PromiseReaction
	IsHandled        bool
}

// PromiseCapability bundles a promise with its resolving functions.
type PromiseCapability struct {
	Promise *Object
	Resolve *Value
	Reject  *Value
}

type ReactionType int

const (
	ReactionFulfill ReactionType = iota
	ReactionReject
)

// PromiseReaction is a pending then-handler. A nil Handler passes the
// settlement value through; a nil Capability discards the handler result.
type PromiseReaction struct {
	Capability *PromiseCapability
	Type       ReactionType
	Handler    *Value
}

// PromiseDataOf returns the promise state of o, or nil when o is not a
// promise.
func PromiseDataOf(o *Object) *PromiseData {
	if o == nil {
		return nil
	}
	p, _ := o.Slot("[[PromiseData]]").(*PromiseData)
	return p
}

func IsPromise(v *Value) bool {
	return v.IsObject() && PromiseDataOf(v.Object) != nil
}

// NewPromiseObject creates a pending promise with the given prototype.
func NewPromiseObject(proto *Object) *Object {
	o := NewOrdinaryObject(proto)
	o.Kind = KindPromise
	o.SetSlot("[[PromiseData]]", &PromiseData{})
	return o
}

// CreateResolvingFunctions returns the one-shot resolve and reject
// functions for p.
func CreateResolvingFunctions(a *Agent, p *Object) (resolve, reject *Object) {
	realm := a.CurrentRealm()
	alreadyResolved := false
	resolve = CreateBuiltinFunction(realm, "", 1, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		if alreadyResolved {
			return Undefined, nil
		}
		alreadyResolved = true
		resolution := Arg(args, 0)
		if resolution.IsObject() && resolution.Object == p {
			RejectPromise(a, p, a.NewTypeError("Chaining cycle detected for promise #<Promise>").Value)
			return Undefined, nil
		}
		if !resolution.IsObject() {
			FulfillPromise(a, p, resolution)
			return Undefined, nil
		}
		then, err := Get(a, resolution.Object, StrKey("then"))
		if err != nil {
			RejectPromise(a, p, ThrownValue(err))
			return Undefined, nil
		}
		if !IsCallable(then) {
			FulfillPromise(a, p, resolution)
			return Undefined, nil
		}
		a.HostEnqueueJob(NewPromiseResolveThenableJob(a, p, resolution, then))
		return Undefined, nil
	})
	reject = CreateBuiltinFunction(realm, "", 1, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		if alreadyResolved {
			return Undefined, nil
		}
		alreadyResolved = true
		RejectPromise(a, p, Arg(args, 0))
		return Undefined, nil
	})
	return resolve, reject
}

// ThrownValue returns the value a guest exception carries. Errors that are
// not guest exceptions are engine faults and panic.
func ThrownValue(err error) *Value {
	exc, ok := err.(*Exception)
	if !ok {
		panic(err)
	}
	return exc.Value
}

func FulfillPromise(a *Agent, p *Object, v *Value) {
	d := PromiseDataOf(p)
	Assert(d.State == PromisePending, "fulfilling a settled promise")
	reactions := d.FulfillReactions
	d.Result = v
	d.FulfillReactions, d.RejectReactions = nil, nil
	d.State = PromiseFulfilled
	triggerPromiseReactions(a, reactions, v)
}

func RejectPromise(a *Agent, p *Object, reason *Value) {
	d := PromiseDataOf(p)
	Assert(d.State == PromisePending, "rejecting a settled promise")
	reactions := d.RejectReactions
	d.Result = reason
	d.FulfillReactions, d.RejectReactions = nil, nil
	d.State = PromiseRejected
	if !d.IsHandled {
		a.Host.PromiseRejectionTracker(a, p, "reject")
	}
	triggerPromiseReactions(a, reactions, reason)
}

func triggerPromiseReactions(a *Agent, reactions []*PromiseReaction, arg *Value) {
	for _, r := range reactions {
		a.HostEnqueueJob(NewPromiseReactionJob(a, r, arg))
	}
}

// NewPromiseReactionJob runs a reaction's handler and settles its derived
// promise.
func NewPromiseReactionJob(a *Agent, r *PromiseReaction, arg *Value) Job {
	var realm *Realm
	if r.Handler != nil {
		if hr, err := GetFunctionRealm(a, r.Handler.Object); err == nil {
			realm = hr
		} else {
			realm = a.CurrentRealm()
		}
	}
	return Job{
		Name:  "PromiseReactionJob",
		Realm: realm,
		Run: func(a *Agent) error {
			var result *Value
			var err error
			switch {
			case r.Handler != nil:
				result, err = Call(a, r.Handler, Undefined, []*Value{arg})
			case r.Type == ReactionFulfill:
				result = arg
			default:
				err = a.Throw(arg)
			}
			if r.Capability == nil {
				return err
			}
			if err != nil {
				_, cerr := Call(a, r.Capability.Reject, Undefined, []*Value{ThrownValue(err)})
				return cerr
			}
			_, cerr := Call(a, r.Capability.Resolve, Undefined, []*Value{result})
			return cerr
		},
	}
}

// NewPromiseResolveThenableJob adopts the state of a thenable.
func NewPromiseResolveThenableJob(a *Agent, p *Object, thenable, then *Value) Job {
	realm, err := GetFunctionRealm(a, then.Object)
	if err != nil {
		realm = a.CurrentRealm()
	}
	return Job{
		Name:  "PromiseResolveThenableJob",
		Realm: realm,
		Run: func(a *Agent) error {
			resolve, reject := CreateResolvingFunctions(a, p)
			_, err := Call(a, then, thenable, []*Value{NewObject(resolve), NewObject(reject)})
			if err != nil {
				_, cerr := Call(a, NewObject(reject), Undefined, []*Value{ThrownValue(err)})
				return cerr
			}
			return nil
		},
	}
}

// NewPromiseCapability runs constructor c with an executor that captures
// the resolving functions.
func NewPromiseCapability(a *Agent, c *Value) (*PromiseCapability, error) {
	if !IsConstructor(c) {
		return nil, a.NewTypeError("%s is not a constructor", c.String())
	}
	capability := &PromiseCapability{Resolve: Undefined, Reject: Undefined}
	executor := CreateBuiltinFunction(a.CurrentRealm(), "", 2, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
		if !capability.Resolve.IsUndefined() || !capability.Reject.IsUndefined() {
			return nil, a.NewTypeError("Promise executor has already been invoked with non-undefined arguments")
		}
		capability.Resolve = Arg(args, 0)
		capability.Reject = Arg(args, 1)
		return Undefined, nil
	})
	p, err := Construct(a, c.Object, []*Value{NewObject(executor)}, nil)
	if err != nil {
		return nil, err
	}
	if !IsCallable(capability.Resolve) || !IsCallable(capability.Reject) {
		return nil, a.NewTypeError("Promise resolve or reject function is not callable")
	}
	capability.Promise = p.Object
	return capability, nil
}

// NewIntrinsicPromiseCapability is NewPromiseCapability(%Promise%) without
// running guest code.
func NewIntrinsicPromiseCapability(a *Agent) *PromiseCapability {
	p := NewPromiseObject(a.CurrentRealm().Intrinsic("%Promise.prototype%"))
	resolve, reject := CreateResolvingFunctions(a, p)
	return &PromiseCapability{Promise: p, Resolve: NewObject(resolve), Reject: NewObject(reject)}
}

// PromiseResolve coerces x to a promise constructed by c. A nil c means
// the intrinsic %Promise%.
func PromiseResolve(a *Agent, c *Object, x *Value) (*Object, error) {
	if c == nil {
		c = a.CurrentRealm().Intrinsic("%Promise%")
	}
	if IsPromise(x) {
		ctor, err := Get(a, x.Object, StrKey("constructor"))
		if err != nil {
			return nil, err
		}
		if ctor.IsObject() && ctor.Object == c {
			return x.Object, nil
		}
	}
	var capability *PromiseCapability
	if c == a.CurrentRealm().Intrinsic("%Promise%") {
		capability = NewIntrinsicPromiseCapability(a)
	} else {
		var err error
		if capability, err = NewPromiseCapability(a, NewObject(c)); err != nil {
			return nil, err
		}
	}
	if _, err := Call(a, capability.Resolve, Undefined, []*Value{x}); err != nil {
		return nil, err
	}
	return capability.Promise, nil
}

// PerformPromiseThen registers the handlers on p. Non-callable handlers
// are treated as absent.
func PerformPromiseThen(a *Agent, p *Object, onFulfilled, onRejected *Value, capability *PromiseCapability) *Value {
	d := PromiseDataOf(p)
	fulfill := &PromiseReaction{Capability: capability, Type: ReactionFulfill}
	if IsCallable(onFulfilled) {
		fulfill.Handler = onFulfilled
	}
	reject := &PromiseReaction{Capability: capability, Type: ReactionReject}
	if IsCallable(onRejected) {
		reject.Handler = onRejected
	}
	switch d.State {
	case PromisePending:
		d.FulfillReactions = append(d.FulfillReactions, fulfill)
		d.RejectReactions = append(d.RejectReactions, reject)
	case PromiseFulfilled:
		a.HostEnqueueJob(NewPromiseReactionJob(a, fulfill, d.Result))
	case PromiseRejected:
		if !d.IsHandled {
			a.Host.PromiseRejectionTracker(a, p, "handle")
		}
		a.HostEnqueueJob(NewPromiseReactionJob(a, reject, d.Result))
	}
	d.IsHandled = true
	if capability == nil {
		return Undefined
	}
	return NewObject(capability.Promise)
}

// PromiseThen is PerformPromiseThen with Go callbacks, as used by await
// and the async iteration machinery. The callbacks run as jobs.
func PromiseThen(a *Agent, p *Object, onFulfilled, onRejected func(a *Agent, v *Value) (*Value, error)) {
	realm := a.CurrentRealm()
	wrap := func(fn func(a *Agent, v *Value) (*Value, error)) *Value {
		return NewObject(CreateBuiltinFunction(realm, "", 1, func(a *Agent, this *Value, args []*Value, newTarget *Object) (*Value, error) {
			return fn(a, Arg(args, 0))
		}))
	}
	PerformPromiseThen(a, p, wrap(onFulfilled), wrap(onRejected), nil)
}
