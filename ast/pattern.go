package ast

// ToPattern reinterprets an expression that was parsed before its role as an
// assignment or binding target was known, such as the left side of `=` or
// the parenthesized parameters of an arrow function.
func ToPattern(e Expression) (Expression, bool) {
	switch v := e.(type) {
	case *Identifier, *MemberExpression, *ObjectPattern, *ArrayPattern, *AssignmentPattern:
		return e, true
	case *AssignmentExpression:
		if v.Operator != "=" {
			return nil, false
		}
		left, ok := ToPattern(v.Left)
		if !ok {
			return nil, false
		}
		return &AssignmentPattern{Token: v.Token, Left: left, Right: v.Right}, true
	case *ArrayLiteral:
		pat := &ArrayPattern{Token: v.Token}
		for i, el := range v.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if spread, ok := el.(*SpreadElement); ok {
				if i != len(v.Elements)-1 {
					return nil, false
				}
				arg, ok := ToPattern(spread.Argument)
				if !ok {
					return nil, false
				}
				pat.Elements = append(pat.Elements, &RestElement{Token: spread.Token, Argument: arg})
				continue
			}
			target, ok := ToPattern(el)
			if !ok {
				return nil, false
			}
			pat.Elements = append(pat.Elements, target)
		}
		return pat, true
	case *ObjectLiteral:
		pat := &ObjectPattern{Token: v.Token}
		for _, prop := range v.Properties {
			if spread, ok := prop.Key.(*SpreadElement); ok {
				arg, ok := ToPattern(spread.Argument)
				if !ok {
					return nil, false
				}
				rest := &RestElement{Token: spread.Token, Argument: arg}
				pat.Properties = append(pat.Properties, &Property{Token: prop.Token, Key: rest, Value: rest})
				continue
			}
			if prop.Method || prop.Kind != "init" {
				return nil, false
			}
			value, ok := ToPattern(prop.Value)
			if !ok {
				return nil, false
			}
			pat.Properties = append(pat.Properties, &Property{
				Token:     prop.Token,
				Key:       prop.Key,
				Value:     value,
				Kind:      "init",
				Shorthand: prop.Shorthand,
				Computed:  prop.Computed,
			})
		}
		return pat, true
	}
	return nil, false
}
