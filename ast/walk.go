package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls
// f(node) first; when f returns true the children are visited. Nil children
// are skipped.
func Inspect(node Node, f func(Node) bool) {
	if isNil(node) || !f(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, f)
	}
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *BlockStatement:
		return v == nil
	case *Identifier:
		return v == nil
	case *FunctionExpression:
		return v == nil
	case *CatchClause:
		return v == nil
	case *ClassBody:
		return v == nil
	case *TemplateLiteralExpr:
		return v == nil
	}
	return false
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(cs ...Node) {
		for _, c := range cs {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(es []Expression) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	addStmts := func(ss []Statement) {
		for _, s := range ss {
			if s != nil {
				out = append(out, s)
			}
		}
	}
	switch v := n.(type) {
	case *Program:
		addStmts(v.Statements)
	case *VariableDeclaration:
		for _, d := range v.Declarations {
			add(d)
		}
	case *VariableDeclarator:
		add(v.Name)
		if v.Value != nil {
			add(v.Value)
		}
	case *ExpressionStatement:
		add(v.Expression)
	case *BlockStatement:
		addStmts(v.Statements)
	case *ReturnStatement:
		if v.Value != nil {
			add(v.Value)
		}
	case *IfStatement:
		add(v.Condition, v.Consequence)
		if v.Alternative != nil {
			add(v.Alternative)
		}
	case *WhileStatement:
		add(v.Condition, v.Body)
	case *DoWhileStatement:
		add(v.Body, v.Condition)
	case *ForStatement:
		if v.Init != nil {
			add(v.Init)
		}
		if v.Test != nil {
			add(v.Test)
		}
		if v.Update != nil {
			add(v.Update)
		}
		add(v.Body)
	case *ForInStatement:
		add(v.Left, v.Right, v.Body)
	case *ForOfStatement:
		add(v.Left, v.Right, v.Body)
	case *SwitchStatement:
		add(v.Discriminant)
		for _, c := range v.Cases {
			add(c)
		}
	case *SwitchCase:
		if v.Test != nil {
			add(v.Test)
		}
		addStmts(v.Consequent)
	case *ThrowStatement:
		add(v.Argument)
	case *TryStatement:
		add(v.Block)
		if v.Handler != nil {
			add(v.Handler)
		}
		if v.Finalizer != nil {
			add(v.Finalizer)
		}
	case *CatchClause:
		if v.Param != nil {
			add(v.Param)
		}
		add(v.Body)
	case *FunctionDeclaration:
		add(v.Name)
		addExprs(v.Params)
		addExprs(v.Defaults)
		if v.Rest != nil {
			add(v.Rest)
		}
		add(v.Body)
	case *FunctionExpression:
		if v.Name != nil {
			add(v.Name)
		}
		addExprs(v.Params)
		addExprs(v.Defaults)
		if v.Rest != nil {
			add(v.Rest)
		}
		add(v.Body)
	case *ArrowFunctionExpression:
		addExprs(v.Params)
		addExprs(v.Defaults)
		if v.Rest != nil {
			add(v.Rest)
		}
		add(v.Body)
	case *ClassDeclaration:
		if v.Name != nil {
			add(v.Name)
		}
		if v.SuperClass != nil {
			add(v.SuperClass)
		}
		add(v.Body)
	case *ClassExpression:
		if v.Name != nil {
			add(v.Name)
		}
		if v.SuperClass != nil {
			add(v.SuperClass)
		}
		add(v.Body)
	case *ClassBody:
		for _, m := range v.Methods {
			add(m)
		}
	case *MethodDefinition:
		if v.Key != nil {
			add(v.Key)
		}
		if v.Value != nil {
			add(v.Value)
		}
	case *LabeledStatement:
		add(v.Label, v.Body)
	case *WithStatement:
		add(v.Object, v.Body)
	case *ArrayLiteral:
		addExprs(v.Elements)
	case *ObjectLiteral:
		for _, p := range v.Properties {
			add(p)
		}
	case *Property:
		if v.Key != nil {
			add(v.Key)
		}
		if v.Value != nil && v.Value != v.Key {
			add(v.Value)
		}
	case *UnaryExpression:
		add(v.Operand)
	case *UpdateExpression:
		add(v.Operand)
	case *BinaryExpression:
		add(v.Left, v.Right)
	case *LogicalExpression:
		add(v.Left, v.Right)
	case *AssignmentExpression:
		add(v.Left, v.Right)
	case *ConditionalExpression:
		add(v.Test, v.Consequent, v.Alternate)
	case *CallExpression:
		add(v.Callee)
		addExprs(v.Arguments)
	case *MemberExpression:
		add(v.Object, v.Property)
	case *OptionalChain:
		add(v.Expression)
	case *NewExpression:
		add(v.Callee)
		addExprs(v.Arguments)
	case *SequenceExpression:
		addExprs(v.Expressions)
	case *TemplateLiteralExpr:
		addExprs(v.Expressions)
	case *TaggedTemplateExpression:
		add(v.Tag, v.Quasi)
	case *SpreadElement:
		add(v.Argument)
	case *YieldExpression:
		if v.Argument != nil {
			add(v.Argument)
		}
	case *AwaitExpression:
		add(v.Argument)
	case *ObjectPattern:
		for _, p := range v.Properties {
			add(p)
		}
	case *ArrayPattern:
		addExprs(v.Elements)
	case *AssignmentPattern:
		add(v.Left, v.Right)
	case *RestElement:
		add(v.Argument)
	case *ComputedPropertyName:
		add(v.Expression)
	case *ExportNamedDeclaration:
		if v.Declaration != nil {
			add(v.Declaration)
		}
	case *ExportDefaultDeclaration:
		add(v.Declaration)
	}
	return out
}
