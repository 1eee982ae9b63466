package ast

import "fmt"

// FunctionInfo is the static information the evaluator needs to instantiate
// a function body or a script.
type FunctionInfo struct {
	Strict          bool
	SimpleParams    bool     // no defaults, patterns or rest element
	ParamNames      []string // bound names of the formals in order
	VarNames        []string // var-declared names of the body, deduplicated
	Functions       []*FunctionDeclaration
	Lexical         []LexicalBinding
	ArgumentsNeeded bool
	HasDirectEval   bool

	// Pausable holds every node of a generator or async body that contains
	// a yield or await without crossing a nested function.
	Pausable map[Node]bool `json:"-"`
}

// LexicalBinding is one let, const or class declaration of a scope.
type LexicalBinding struct {
	Name  string
	Const bool
}

// BlockScope lists the declarations instantiated when a block is entered.
type BlockScope struct {
	Lexical   []LexicalBinding
	Functions []*FunctionDeclaration
}

// IsPausable reports whether n can suspend inside the function described by info.
func (info *FunctionInfo) IsPausable(n Node) bool {
	return info != nil && info.Pausable != nil && info.Pausable[n]
}

// BoundNames returns the identifiers bound by a binding target.
func BoundNames(n Node) []string {
	var names []string
	var collect func(Node)
	collect = func(n Node) {
		switch v := n.(type) {
		case *Identifier:
			names = append(names, v.Value)
		case *ObjectPattern:
			for _, p := range v.Properties {
				collect(p.Value)
			}
		case *ArrayPattern:
			for _, e := range v.Elements {
				if e != nil {
					collect(e)
				}
			}
		case *AssignmentPattern:
			collect(v.Left)
		case *RestElement:
			collect(v.Argument)
		case *VariableDeclaration:
			for _, d := range v.Declarations {
				collect(d.Name)
			}
		case *FunctionDeclaration:
			if v.Name != nil {
				names = append(names, v.Name.Value)
			}
		case *ClassDeclaration:
			if v.Name != nil {
				names = append(names, v.Name.Value)
			}
		}
	}
	collect(n)
	return names
}

// Annotate computes scopes, strictness, pausable node sets and tail call
// positions for a parsed program. It reports constructs the evaluator
// cannot run.
func Annotate(p *Program) []error {
	a := &annotator{}
	p.Strict = p.Strict || p.Module || hasUseStrict(p.Statements)
	p.Info = a.scriptInfo(p.Statements, p.Strict)
	for _, s := range p.Statements {
		a.visit(s, p.Strict, nil)
	}
	return a.errs
}

type annotator struct {
	errs []error

	// asyncGenerator is set while marking the body of an async generator,
	// whose return statements await their operand.
	asyncGenerator bool
}

type funcCtx struct {
	generator bool
	async     bool
}

func (a *annotator) errorf(n Node, format string, args ...interface{}) {
	pos := n.Pos()
	a.errs = append(a.errs, fmt.Errorf("syntax error at %d:%d: %s", pos.Line, pos.Column, fmt.Sprintf(format, args...)))
}

func hasUseStrict(stmts []Statement) bool {
	for _, s := range stmts {
		es, ok := s.(*ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*StringLiteral)
		if !ok {
			return false
		}
		if lit.Value == "use strict" {
			return true
		}
	}
	return false
}

func (a *annotator) scriptInfo(stmts []Statement, strict bool) *FunctionInfo {
	info := &FunctionInfo{Strict: strict, SimpleParams: true}
	a.declarations(info, stmts, nil)
	return info
}

// declarations fills the var and lexical sets of a function or script body.
func (a *annotator) declarations(info *FunctionInfo, stmts []Statement, params []string) {
	seen := map[string]bool{}
	for _, name := range varNames(stmts) {
		if !seen[name] {
			seen[name] = true
			info.VarNames = append(info.VarNames, name)
		}
	}
	lexical := map[string]bool{}
	for _, s := range stmts {
		switch d := unwrapLabels(s).(type) {
		case *FunctionDeclaration:
			info.Functions = append(info.Functions, d)
		case *VariableDeclaration:
			if d.Kind != "var" {
				for _, name := range BoundNames(d) {
					info.Lexical = append(info.Lexical, LexicalBinding{Name: name, Const: d.Kind == "const"})
					lexical[name] = true
				}
			}
		case *ClassDeclaration:
			if d.Name != nil {
				info.Lexical = append(info.Lexical, LexicalBinding{Name: d.Name.Value})
				lexical[d.Name.Value] = true
			}
		case *ExportNamedDeclaration:
			switch inner := d.Declaration.(type) {
			case *FunctionDeclaration:
				info.Functions = append(info.Functions, inner)
			case *VariableDeclaration:
				if inner.Kind != "var" {
					for _, name := range BoundNames(inner) {
						info.Lexical = append(info.Lexical, LexicalBinding{Name: name, Const: inner.Kind == "const"})
						lexical[name] = true
					}
				}
			case *ClassDeclaration:
				info.Lexical = append(info.Lexical, LexicalBinding{Name: inner.Name.Value})
				lexical[inner.Name.Value] = true
			}
		case *ExportDefaultDeclaration:
			switch inner := d.Declaration.(type) {
			case *FunctionDeclaration:
				info.Functions = append(info.Functions, inner)
			case *ClassDeclaration:
				if inner.Name != nil {
					info.Lexical = append(info.Lexical, LexicalBinding{Name: inner.Name.Value})
					lexical[inner.Name.Value] = true
				}
			}
		}
	}
	if info.Strict {
		return
	}
	paramSet := map[string]bool{}
	for _, p := range params {
		paramSet[p] = true
	}
	for _, fd := range blockFunctions(stmts) {
		name := fd.Name.Value
		if lexical[name] || paramSet[name] {
			continue
		}
		fd.AnnexB = true
		if !seen[name] {
			seen[name] = true
			info.VarNames = append(info.VarNames, name)
		}
	}
}

func unwrapLabels(s Statement) Statement {
	for {
		l, ok := s.(*LabeledStatement)
		if !ok {
			return s
		}
		s = l.Body
	}
}

// varNames collects var-declared names of a statement list without
// descending into nested functions.
func varNames(stmts []Statement) []string {
	var names []string
	var fromStmt func(Statement)
	fromList := func(ss []Statement) {
		for _, s := range ss {
			fromStmt(s)
		}
	}
	fromDecl := func(n Node) {
		if d, ok := n.(*VariableDeclaration); ok && d.Kind == "var" {
			names = append(names, BoundNames(d)...)
		}
	}
	fromStmt = func(s Statement) {
		switch v := s.(type) {
		case *VariableDeclaration:
			fromDecl(v)
		case *BlockStatement:
			fromList(v.Statements)
		case *IfStatement:
			if v.Consequence != nil {
				fromList(v.Consequence.Statements)
			}
			if v.Alternative != nil {
				fromStmt(v.Alternative)
			}
		case *ForStatement:
			if v.Init != nil {
				fromDecl(v.Init)
			}
			fromStmt(v.Body)
		case *ForInStatement:
			fromDecl(v.Left)
			fromStmt(v.Body)
		case *ForOfStatement:
			fromDecl(v.Left)
			fromStmt(v.Body)
		case *WhileStatement:
			fromStmt(v.Body)
		case *DoWhileStatement:
			fromStmt(v.Body)
		case *SwitchStatement:
			for _, c := range v.Cases {
				fromList(c.Consequent)
			}
		case *TryStatement:
			fromList(v.Block.Statements)
			if v.Handler != nil {
				fromList(v.Handler.Body.Statements)
			}
			if v.Finalizer != nil {
				fromList(v.Finalizer.Statements)
			}
		case *LabeledStatement:
			fromStmt(v.Body)
		case *WithStatement:
			fromStmt(v.Body)
		case *ExportNamedDeclaration:
			if v.Declaration != nil {
				fromDecl(v.Declaration)
			}
		}
	}
	fromList(stmts)
	return names
}

// blockFunctions returns function declarations nested in blocks of a body.
func blockFunctions(stmts []Statement) []*FunctionDeclaration {
	var out []*FunctionDeclaration
	var walk func(s Statement, nested bool)
	walkList := func(ss []Statement) {
		for _, s := range ss {
			walk(s, true)
		}
	}
	walk = func(s Statement, nested bool) {
		switch v := s.(type) {
		case *FunctionDeclaration:
			if nested && !v.Generator && !v.Async {
				out = append(out, v)
			}
		case *BlockStatement:
			walkList(v.Statements)
		case *IfStatement:
			if v.Consequence != nil {
				walkList(v.Consequence.Statements)
			}
			if v.Alternative != nil {
				walk(v.Alternative, true)
			}
		case *SwitchStatement:
			for _, c := range v.Cases {
				walkList(c.Consequent)
			}
		case *TryStatement:
			walkList(v.Block.Statements)
			if v.Handler != nil {
				walkList(v.Handler.Body.Statements)
			}
			if v.Finalizer != nil {
				walkList(v.Finalizer.Statements)
			}
		case *LabeledStatement:
			walk(v.Body, nested)
		case *ForStatement:
			walk(v.Body, true)
		case *ForInStatement:
			walk(v.Body, true)
		case *ForOfStatement:
			walk(v.Body, true)
		case *WhileStatement:
			walk(v.Body, true)
		case *DoWhileStatement:
			walk(v.Body, true)
		}
	}
	for _, s := range stmts {
		walk(s, false)
	}
	return out
}

func blockScope(stmts []Statement) *BlockScope {
	var bs BlockScope
	for _, s := range stmts {
		switch d := unwrapLabels(s).(type) {
		case *VariableDeclaration:
			if d.Kind != "var" {
				for _, name := range BoundNames(d) {
					bs.Lexical = append(bs.Lexical, LexicalBinding{Name: name, Const: d.Kind == "const"})
				}
			}
		case *ClassDeclaration:
			if d.Name != nil {
				bs.Lexical = append(bs.Lexical, LexicalBinding{Name: d.Name.Value})
			}
		case *FunctionDeclaration:
			bs.Functions = append(bs.Functions, d)
		}
	}
	if len(bs.Lexical) == 0 && len(bs.Functions) == 0 {
		return nil
	}
	return &bs
}

// visit walks n in the context of its enclosing function.
func (a *annotator) visit(n Node, strict bool, fc *funcCtx) {
	if isNil(n) {
		return
	}
	switch v := n.(type) {
	case *FunctionDeclaration:
		v.Info = a.function(v, v.Params, v.Defaults, v.Rest, v.Body, nil, strict, funcCtx{generator: v.Generator, async: v.Async}, false)
		return
	case *FunctionExpression:
		v.Info = a.function(v, v.Params, v.Defaults, v.Rest, v.Body, nil, strict, funcCtx{generator: v.Generator, async: v.Async}, false)
		return
	case *ArrowFunctionExpression:
		body, _ := v.Body.(*BlockStatement)
		var expr Expression
		if body == nil {
			expr, _ = v.Body.(Expression)
		}
		v.Info = a.function(v, v.Params, v.Defaults, v.Rest, body, expr, strict, funcCtx{async: v.Async}, true)
		return
	case *ClassDeclaration, *ClassExpression:
		for _, c := range Children(n) {
			a.visit(c, true, fc)
		}
		return
	case *BlockStatement:
		v.Scope = blockScope(v.Statements)
	case *SwitchStatement:
		var all []Statement
		for _, c := range v.Cases {
			all = append(all, c.Consequent...)
		}
		v.Scope = blockScope(all)
	case *YieldExpression:
		if fc == nil || !fc.generator {
			a.errorf(v, "yield is only valid in generator functions")
		}
	case *AwaitExpression:
		if fc == nil || !fc.async {
			a.errorf(v, "await is only valid in async functions")
		}
	case *ForOfStatement:
		if v.Await && (fc == nil || !fc.async) {
			a.errorf(v, "for await is only valid in async functions")
		}
	case *WithStatement:
		if strict {
			a.errorf(v, "strict mode code may not include a with statement")
		}
	}
	for _, c := range Children(n) {
		a.visit(c, strict, fc)
	}
}

func (a *annotator) function(fn Node, params, defaults []Expression, rest Expression, body *BlockStatement, exprBody Expression, strict bool, fc funcCtx, arrow bool) *FunctionInfo {
	var stmts []Statement
	if body != nil {
		stmts = body.Statements
	}
	info := &FunctionInfo{Strict: strict || hasUseStrict(stmts)}
	info.SimpleParams = rest == nil
	for _, p := range params {
		if _, ok := p.(*Identifier); !ok {
			info.SimpleParams = false
		}
		info.ParamNames = append(info.ParamNames, BoundNames(p)...)
	}
	for _, d := range defaults {
		if d != nil {
			info.SimpleParams = false
		}
	}
	if rest != nil {
		info.ParamNames = append(info.ParamNames, BoundNames(rest)...)
	}
	a.declarations(info, stmts, info.ParamNames)

	usesArguments := false
	scanFn := func(n Node) bool {
		switch v := n.(type) {
		case *FunctionExpression, *FunctionDeclaration:
			return false
		case *MethodDefinition:
			if v.Computed && v.Key != nil {
				Inspect(v.Key, func(k Node) bool {
					if id, ok := k.(*Identifier); ok && id.Value == "arguments" {
						usesArguments = true
					}
					return true
				})
			}
			return false
		case *Identifier:
			if v.Value == "arguments" {
				usesArguments = true
			}
		case *CallExpression:
			if id, ok := v.Callee.(*Identifier); ok && id.Value == "eval" {
				info.HasDirectEval = true
			}
		}
		return true
	}
	for _, c := range Children(fn) {
		Inspect(c, scanFn)
	}
	if !arrow && (usesArguments || info.HasDirectEval) {
		info.ArgumentsNeeded = true
		for _, p := range info.ParamNames {
			if p == "arguments" {
				info.ArgumentsNeeded = false
			}
		}
		if info.SimpleParams {
			for _, f := range info.Functions {
				if f.Name.Value == "arguments" {
					info.ArgumentsNeeded = false
				}
			}
			for _, l := range info.Lexical {
				if l.Name == "arguments" {
					info.ArgumentsNeeded = false
				}
			}
		}
	}

	for _, p := range params {
		a.visit(p, info.Strict, &fc)
	}
	for _, d := range defaults {
		if d != nil {
			a.visit(d, info.Strict, &fc)
		}
	}
	if rest != nil {
		a.visit(rest, info.Strict, &fc)
	}
	for _, s := range stmts {
		a.visit(s, info.Strict, &fc)
	}
	if exprBody != nil {
		a.visit(exprBody, info.Strict, &fc)
	}

	if fc.generator || fc.async {
		info.Pausable = map[Node]bool{}
		a.asyncGenerator = fc.generator && fc.async
		formals := append(append([]Expression{}, params...), defaults...)
		if rest != nil {
			formals = append(formals, rest)
		}
		for _, p := range formals {
			if p != nil && a.markPausable(p, map[Node]bool{}) {
				a.errorf(p, "yield and await are not allowed in formal parameters")
			}
		}
		if body != nil {
			a.markPausable(body, info.Pausable)
		}
		if exprBody != nil {
			a.markPausable(exprBody, info.Pausable)
		}
		a.asyncGenerator = false
	}
	if info.Strict && !fc.generator && !fc.async {
		for _, s := range stmts {
			markTailStatement(s)
		}
		if exprBody != nil {
			markTailExpression(exprBody)
		}
	}
	return info
}

// markPausable records n in set when it contains a suspension point.
func (a *annotator) markPausable(n Node, set map[Node]bool) bool {
	if isNil(n) {
		return false
	}
	switch v := n.(type) {
	case *FunctionExpression, *FunctionDeclaration, *ArrowFunctionExpression:
		return false
	case *ClassDeclaration, *ClassExpression:
		paused := false
		for _, c := range Children(n) {
			if a.markPausable(c, map[Node]bool{}) {
				paused = true
			}
		}
		if paused {
			a.errorf(n, "yield and await are not supported inside class definitions")
		}
		return false
	case *YieldExpression, *AwaitExpression:
		for _, c := range Children(n) {
			a.markPausable(c, set)
		}
		set[n] = true
		return true
	case *ForOfStatement:
		if v.Await {
			for _, c := range Children(n) {
				a.markPausable(c, set)
			}
			set[n] = true
			return true
		}
	case *ReturnStatement:
		if a.asyncGenerator && v.Value != nil {
			a.markPausable(v.Value, set)
			set[n] = true
			return true
		}
	case *ObjectPattern, *ArrayPattern:
		paused := false
		for _, c := range Children(n) {
			if a.markPausable(c, map[Node]bool{}) {
				paused = true
			}
		}
		if paused {
			a.errorf(n, "yield and await are not supported inside destructuring patterns")
		}
		return false
	}
	paused := false
	for _, c := range Children(n) {
		if a.markPausable(c, set) {
			paused = true
		}
	}
	if paused {
		set[n] = true
	}
	return paused
}

func markTailStatement(s Statement) {
	switch v := s.(type) {
	case *ReturnStatement:
		if v.Value != nil {
			markTailExpression(v.Value)
		}
	case *BlockStatement:
		for _, st := range v.Statements {
			markTailStatement(st)
		}
	case *IfStatement:
		markTailStatement(v.Consequence)
		if v.Alternative != nil {
			markTailStatement(v.Alternative)
		}
	case *LabeledStatement:
		markTailStatement(v.Body)
	case *WhileStatement:
		markTailStatement(v.Body)
	case *DoWhileStatement:
		markTailStatement(v.Body)
	case *ForStatement:
		markTailStatement(v.Body)
	case *SwitchStatement:
		for _, c := range v.Cases {
			for _, st := range c.Consequent {
				markTailStatement(st)
			}
		}
	case *TryStatement:
		switch {
		case v.Finalizer != nil:
			markTailStatement(v.Finalizer)
		case v.Handler != nil:
			markTailStatement(v.Handler.Body)
		}
	}
}

func markTailExpression(e Expression) {
	switch v := e.(type) {
	case *CallExpression:
		if _, isSuper := v.Callee.(*SuperExpression); !isSuper {
			v.Tail = true
		}
	case *ConditionalExpression:
		markTailExpression(v.Consequent)
		markTailExpression(v.Alternate)
	case *LogicalExpression:
		markTailExpression(v.Right)
	case *SequenceExpression:
		markTailExpression(v.Expressions[len(v.Expressions)-1])
	}
}
