package runtime

// PrivateName is the identity of one #name declared by one evaluation of a
// class body.
type PrivateName struct {
	Description string
}

// PrivateEnvironment maps the #names of a class body to their identities.
type PrivateEnvironment struct {
	Outer *PrivateEnvironment
	Names map[string]*PrivateName
}

func NewPrivateEnvironment(outer *PrivateEnvironment) *PrivateEnvironment {
	return &PrivateEnvironment{Outer: outer, Names: make(map[string]*PrivateName)}
}

// Resolve finds the identity of name in this or an enclosing class.
func (p *PrivateEnvironment) Resolve(name string) *PrivateName {
	for env := p; env != nil; env = env.Outer {
		if n, ok := env.Names[name]; ok {
			return n
		}
	}
	return nil
}

type PrivateElementKind int

const (
	PrivateField PrivateElementKind = iota
	PrivateMethod
	PrivateAccessor
)

// PrivateElement is a private field, method or accessor of an object.
type PrivateElement struct {
	Key   *PrivateName
	Kind  PrivateElementKind
	Value *Value
	Get   *Value
	Set   *Value
}

func (o *Object) PrivateElementFind(p *PrivateName) *PrivateElement {
	for _, e := range o.private {
		if e.Key == p {
			return e
		}
	}
	return nil
}

func PrivateFieldAdd(a *Agent, o *Object, p *PrivateName, v *Value) error {
	if o.PrivateElementFind(p) != nil {
		return a.NewTypeError("Cannot initialize %s twice on the same object", p.Description)
	}
	o.private = append(o.private, &PrivateElement{Key: p, Kind: PrivateField, Value: v})
	return nil
}

func PrivateMethodOrAccessorAdd(a *Agent, o *Object, m *PrivateElement) error {
	if o.PrivateElementFind(m.Key) != nil {
		return a.NewTypeError("Cannot initialize %s twice on the same object", m.Key.Description)
	}
	el := *m
	o.private = append(o.private, &el)
	return nil
}

func PrivateGet(a *Agent, o *Object, p *PrivateName) (*Value, error) {
	e := o.PrivateElementFind(p)
	if e == nil {
		return nil, a.NewTypeError("Cannot read private member %s from an object whose class did not declare it", p.Description)
	}
	switch e.Kind {
	case PrivateField, PrivateMethod:
		return e.Value, nil
	}
	if e.Get.IsUndefined() {
		return nil, a.NewTypeError("'%s' was defined without a getter", p.Description)
	}
	return Call(a, e.Get, NewObject(o), nil)
}

func PrivateSet(a *Agent, o *Object, p *PrivateName, v *Value) error {
	e := o.PrivateElementFind(p)
	if e == nil {
		return a.NewTypeError("Cannot write private member %s to an object whose class did not declare it", p.Description)
	}
	switch e.Kind {
	case PrivateField:
		e.Value = v
		return nil
	case PrivateMethod:
		return a.NewTypeError("Private method %s is not writable", p.Description)
	}
	if e.Set.IsUndefined() {
		return a.NewTypeError("'%s' was defined without a setter", p.Description)
	}
	_, err := Call(a, e.Set, NewObject(o), []*Value{v})
	return err
}
