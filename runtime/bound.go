package runtime

// BoundFunction is the exotic state of a function created by bind.
type BoundFunction struct {
	Target    *Object
	BoundThis *Value
	BoundArgs []*Value
}

func (bf *BoundFunction) args(extra []*Value) []*Value {
	all := make([]*Value, 0, len(bf.BoundArgs)+len(extra))
	all = append(all, bf.BoundArgs...)
	return append(all, extra...)
}

// BoundFunctionCreate wraps target with a fixed this value and leading
// arguments. The result is a constructor exactly when target is.
func BoundFunctionCreate(a *Agent, target *Object, boundThis *Value, boundArgs []*Value) (*Object, error) {
	proto, err := target.GetPrototypeOf(a)
	if err != nil {
		return nil, err
	}
	o := NewOrdinaryObject(proto)
	o.Kind = KindBoundFunction
	bf := &BoundFunction{Target: target, BoundThis: boundThis, BoundArgs: append([]*Value(nil), boundArgs...)}
	o.Exotic = bf
	o.Callable = func(a *Agent, this *Value, args []*Value) (*Value, error) {
		return Call(a, NewObject(bf.Target), bf.BoundThis, bf.args(args))
	}
	if target.Constructor != nil {
		o.Constructor = func(a *Agent, args []*Value, newTarget *Object) (*Value, error) {
			if newTarget == o {
				newTarget = bf.Target
			}
			return Construct(a, bf.Target, bf.args(args), newTarget)
		}
	}
	return o, nil
}
