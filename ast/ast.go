package ast

import "github.com/example/jscore/token"

// Node is the interface all AST nodes implement.
type Node interface {
	TokenLiteral() string
	Pos() token.Pos
	nodeType() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
	Module     bool
	Strict     bool
	Info       *FunctionInfo // top-level declarations, filled by Annotate
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) Pos() token.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Pos{Line: 1, Column: 1}
}
func (p *Program) nodeType() string { return "Program" }

// ---------- Statements ----------

type VariableDeclaration struct {
	Token        token.Token // var, let, or const
	Kind         string      // "var", "let", "const"
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Token token.Token
	Name  Expression // Identifier or destructuring pattern
	Value Expression // may be nil
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
	Scope      *BlockScope
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // may be nil
}

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // may be nil; can be *IfStatement or *BlockStatement
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

type DoWhileStatement struct {
	Token     token.Token
	Body      Statement
	Condition Expression
}

type ForStatement struct {
	Token  token.Token
	Init   Node       // Statement or Expression, may be nil
	Test   Expression // may be nil
	Update Expression // may be nil
	Body   Statement
}

type ForInStatement struct {
	Token token.Token
	Left  Node // VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

type ForOfStatement struct {
	Token token.Token
	Left  Node
	Right Expression
	Body  Statement
	Await bool // for await (...)
}

type BreakStatement struct {
	Token token.Token
	Label *Identifier // may be nil
}

type ContinueStatement struct {
	Token token.Token
	Label *Identifier // may be nil
}

type SwitchStatement struct {
	Token        token.Token
	Discriminant Expression
	Cases        []*SwitchCase
	Scope        *BlockScope
}

type SwitchCase struct {
	Token      token.Token
	Test       Expression // nil for default
	Consequent []Statement
}

type ThrowStatement struct {
	Token    token.Token
	Argument Expression
}

type TryStatement struct {
	Token     token.Token
	Block     *BlockStatement
	Handler   *CatchClause    // may be nil
	Finalizer *BlockStatement // may be nil
}

type CatchClause struct {
	Token token.Token
	Param Expression // may be nil (ES2019 optional catch binding)
	Body  *BlockStatement
}

type FunctionDeclaration struct {
	Token     token.Token
	Name      *Identifier
	Params    []Expression // Identifiers or patterns
	Body      *BlockStatement
	Generator bool
	Async     bool
	Defaults  []Expression // default param values, may contain nils
	Rest      Expression   // rest parameter, may be nil
	Info      *FunctionInfo
	AnnexB    bool // sloppy block-level declaration also bound in the var scope
}

type ClassDeclaration struct {
	Token      token.Token
	Name       *Identifier
	SuperClass Expression // may be nil
	Body       *ClassBody
}

type ClassBody struct {
	Token   token.Token
	Methods []*MethodDefinition
}

// MethodDefinition is one class element. Fields carry their initializer
// wrapped in a method body (nil when absent); static blocks carry theirs in
// Value with a nil Key.
type MethodDefinition struct {
	Token    token.Token
	Key      Expression
	Value    *FunctionExpression
	Kind     string // "constructor", "method", "get", "set", "field", "static-block"
	Static   bool
	Computed bool
}

type LabeledStatement struct {
	Token token.Token
	Label *Identifier
	Body  Statement
}

type DebuggerStatement struct {
	Token token.Token
}

type EmptyStatement struct {
	Token token.Token
}

type WithStatement struct {
	Token  token.Token
	Object Expression
	Body   Statement
}

// ---------- Expressions ----------

type Identifier struct {
	Token token.Token
	Value string
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

type StringLiteral struct {
	Token token.Token
	Value string
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

type NullLiteral struct {
	Token token.Token
}

type BigIntLiteral struct {
	Token  token.Token
	Digits string // literal text without the n suffix, separators removed
}

// PrivateIdentifier is a #name used as a class element key, member
// property or the left operand of `in`.
type PrivateIdentifier struct {
	Token token.Token
	Name  string // includes the leading #
}

type RegExpLiteral struct {
	Token   token.Token
	Pattern string
	Flags   string
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression // may contain nils for elisions [1,,3]
}

type ObjectLiteral struct {
	Token      token.Token
	Properties []*Property
}

type Property struct {
	Token     token.Token
	Key       Expression
	Value     Expression
	Kind      string // "init", "get", "set"
	Shorthand bool
	Computed  bool
	Method    bool
}

type FunctionExpression struct {
	Token     token.Token
	Name      *Identifier // may be nil for anonymous
	Params    []Expression
	Body      *BlockStatement
	Generator bool
	Async     bool
	Defaults  []Expression
	Rest      Expression
	Info      *FunctionInfo
}

type ArrowFunctionExpression struct {
	Token    token.Token
	Params   []Expression
	Body     Node // BlockStatement or Expression
	Async    bool
	Defaults []Expression
	Rest     Expression
	Info     *FunctionInfo
}

type UnaryExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
	Prefix   bool
}

type UpdateExpression struct {
	Token    token.Token
	Operator string // ++ or --
	Operand  Expression
	Prefix   bool
}

type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Token    token.Token
	Operator string // && or ||
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Token      token.Token
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
	Optional  bool // callee?.(args)
	Tail      bool // strict-mode call in tail position
}

type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property Expression
	Computed bool
	Optional bool // object?.property
}

// OptionalChain delimits the extent short-circuited by a ?. inside it.
type OptionalChain struct {
	Token      token.Token
	Expression Expression
}

// MetaProperty is new.target.
type MetaProperty struct {
	Token    token.Token
	Meta     string
	Property string
}

type NewExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

type SequenceExpression struct {
	Token       token.Token
	Expressions []Expression
}

type TemplateLiteralExpr struct {
	Token       token.Token
	Quasis      []*TemplateElement
	Expressions []Expression
}

type TemplateElement struct {
	Token token.Token
	Value string
	Raw   string
	Tail  bool
}

type TaggedTemplateExpression struct {
	Token token.Token
	Tag   Expression
	Quasi *TemplateLiteralExpr
}

type SpreadElement struct {
	Token    token.Token
	Argument Expression
}

type YieldExpression struct {
	Token    token.Token
	Argument Expression // may be nil
	Delegate bool       // yield*
}

type AwaitExpression struct {
	Token    token.Token
	Argument Expression
}

type ClassExpression struct {
	Token      token.Token
	Name       *Identifier // may be nil
	SuperClass Expression
	Body       *ClassBody
}

type ThisExpression struct {
	Token token.Token
}

type SuperExpression struct {
	Token token.Token
}

// Destructuring patterns
type ObjectPattern struct {
	Token      token.Token
	Properties []*Property
}

type ArrayPattern struct {
	Token    token.Token
	Elements []Expression // may contain nils for holes
}

type AssignmentPattern struct {
	Token token.Token
	Left  Expression
	Right Expression
}

type RestElement struct {
	Token    token.Token
	Argument Expression
}

type ComputedPropertyName struct {
	Token      token.Token
	Expression Expression
}

// ---------- Modules ----------

type ImportDeclaration struct {
	Token      token.Token
	Source     string
	Default    string // local name of the default import, if any
	Namespace  string // local name of `* as ns`, if any
	Specifiers []*ImportSpecifier
}

type ImportSpecifier struct {
	Token    token.Token
	Imported string
	Local    string
}

type ExportNamedDeclaration struct {
	Token       token.Token
	Declaration Statement // var/let/const/function/class, may be nil
	Specifiers  []*ExportSpecifier
	Source      string // re-export source, may be empty
}

type ExportSpecifier struct {
	Token    token.Token
	Local    string
	Exported string
}

// ExportDefaultDeclaration holds a FunctionDeclaration, a ClassDeclaration
// or an ExpressionStatement.
type ExportDefaultDeclaration struct {
	Token       token.Token
	Declaration Statement
}

type ExportAllDeclaration struct {
	Token    token.Token
	Exported string // `export * as name`, may be empty
	Source   string
}

// --- Node interface implementations ---
// Statement markers
func (s *VariableDeclaration) statementNode()      {}
func (s *ExpressionStatement) statementNode()      {}
func (s *BlockStatement) statementNode()           {}
func (s *ReturnStatement) statementNode()          {}
func (s *IfStatement) statementNode()              {}
func (s *WhileStatement) statementNode()           {}
func (s *DoWhileStatement) statementNode()         {}
func (s *ForStatement) statementNode()             {}
func (s *ForInStatement) statementNode()           {}
func (s *ForOfStatement) statementNode()           {}
func (s *BreakStatement) statementNode()           {}
func (s *ContinueStatement) statementNode()        {}
func (s *SwitchStatement) statementNode()          {}
func (s *ThrowStatement) statementNode()           {}
func (s *TryStatement) statementNode()             {}
func (s *FunctionDeclaration) statementNode()      {}
func (s *ClassDeclaration) statementNode()         {}
func (s *LabeledStatement) statementNode()         {}
func (s *DebuggerStatement) statementNode()        {}
func (s *EmptyStatement) statementNode()           {}
func (s *WithStatement) statementNode()            {}
func (s *ImportDeclaration) statementNode()        {}
func (s *ExportNamedDeclaration) statementNode()   {}
func (s *ExportDefaultDeclaration) statementNode() {}
func (s *ExportAllDeclaration) statementNode()     {}

// Expression markers
func (e *Identifier) expressionNode()               {}
func (e *NumberLiteral) expressionNode()            {}
func (e *BigIntLiteral) expressionNode()            {}
func (e *StringLiteral) expressionNode()            {}
func (e *BooleanLiteral) expressionNode()           {}
func (e *NullLiteral) expressionNode()              {}
func (e *RegExpLiteral) expressionNode()            {}
func (e *ArrayLiteral) expressionNode()             {}
func (e *ObjectLiteral) expressionNode()            {}
func (e *FunctionExpression) expressionNode()       {}
func (e *ArrowFunctionExpression) expressionNode()  {}
func (e *UnaryExpression) expressionNode()          {}
func (e *UpdateExpression) expressionNode()         {}
func (e *BinaryExpression) expressionNode()         {}
func (e *LogicalExpression) expressionNode()        {}
func (e *AssignmentExpression) expressionNode()     {}
func (e *ConditionalExpression) expressionNode()    {}
func (e *CallExpression) expressionNode()           {}
func (e *MemberExpression) expressionNode()         {}
func (e *OptionalChain) expressionNode()            {}
func (e *MetaProperty) expressionNode()             {}
func (e *NewExpression) expressionNode()            {}
func (e *SequenceExpression) expressionNode()       {}
func (e *TemplateLiteralExpr) expressionNode()      {}
func (e *TaggedTemplateExpression) expressionNode() {}
func (e *SpreadElement) expressionNode()            {}
func (e *YieldExpression) expressionNode()          {}
func (e *AwaitExpression) expressionNode()          {}
func (e *ClassExpression) expressionNode()          {}
func (e *ThisExpression) expressionNode()           {}
func (e *SuperExpression) expressionNode()          {}
func (e *PrivateIdentifier) expressionNode()        {}
func (e *ObjectPattern) expressionNode()            {}
func (e *ArrayPattern) expressionNode()             {}
func (e *AssignmentPattern) expressionNode()        {}
func (e *RestElement) expressionNode()              {}
func (e *ComputedPropertyName) expressionNode()     {}
func (e *VariableDeclarator) expressionNode()       {}

// TokenLiteral implementations
func (n *VariableDeclaration) TokenLiteral() string      { return n.Token.Literal }
func (n *ExpressionStatement) TokenLiteral() string      { return n.Token.Literal }
func (n *BlockStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *ReturnStatement) TokenLiteral() string          { return n.Token.Literal }
func (n *IfStatement) TokenLiteral() string              { return n.Token.Literal }
func (n *WhileStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *DoWhileStatement) TokenLiteral() string         { return n.Token.Literal }
func (n *ForStatement) TokenLiteral() string             { return n.Token.Literal }
func (n *ForInStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *ForOfStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *BreakStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *ContinueStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *SwitchStatement) TokenLiteral() string          { return n.Token.Literal }
func (n *ThrowStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *TryStatement) TokenLiteral() string             { return n.Token.Literal }
func (n *FunctionDeclaration) TokenLiteral() string      { return n.Token.Literal }
func (n *ClassDeclaration) TokenLiteral() string         { return n.Token.Literal }
func (n *LabeledStatement) TokenLiteral() string         { return n.Token.Literal }
func (n *DebuggerStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *EmptyStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *WithStatement) TokenLiteral() string            { return n.Token.Literal }
func (n *ImportDeclaration) TokenLiteral() string        { return n.Token.Literal }
func (n *ExportNamedDeclaration) TokenLiteral() string   { return n.Token.Literal }
func (n *ExportDefaultDeclaration) TokenLiteral() string { return n.Token.Literal }
func (n *ExportAllDeclaration) TokenLiteral() string     { return n.Token.Literal }
func (n *VariableDeclarator) TokenLiteral() string       { return n.Token.Literal }
func (n *CatchClause) TokenLiteral() string              { return n.Token.Literal }
func (n *ClassBody) TokenLiteral() string                { return n.Token.Literal }
func (n *MethodDefinition) TokenLiteral() string         { return n.Token.Literal }
func (n *SwitchCase) TokenLiteral() string               { return n.Token.Literal }
func (n *Property) TokenLiteral() string                 { return n.Token.Literal }
func (n *TemplateElement) TokenLiteral() string          { return n.Token.Literal }
func (n *ImportSpecifier) TokenLiteral() string          { return n.Token.Literal }
func (n *ExportSpecifier) TokenLiteral() string          { return n.Token.Literal }
func (n *Identifier) TokenLiteral() string               { return n.Token.Literal }
func (n *NumberLiteral) TokenLiteral() string            { return n.Token.Literal }
func (n *BigIntLiteral) TokenLiteral() string            { return n.Token.Literal }
func (n *StringLiteral) TokenLiteral() string            { return n.Token.Literal }
func (n *BooleanLiteral) TokenLiteral() string           { return n.Token.Literal }
func (n *NullLiteral) TokenLiteral() string              { return n.Token.Literal }
func (n *RegExpLiteral) TokenLiteral() string            { return n.Token.Literal }
func (n *ArrayLiteral) TokenLiteral() string             { return n.Token.Literal }
func (n *ObjectLiteral) TokenLiteral() string            { return n.Token.Literal }
func (n *FunctionExpression) TokenLiteral() string       { return n.Token.Literal }
func (n *ArrowFunctionExpression) TokenLiteral() string  { return n.Token.Literal }
func (n *UnaryExpression) TokenLiteral() string          { return n.Token.Literal }
func (n *UpdateExpression) TokenLiteral() string         { return n.Token.Literal }
func (n *BinaryExpression) TokenLiteral() string         { return n.Token.Literal }
func (n *LogicalExpression) TokenLiteral() string        { return n.Token.Literal }
func (n *AssignmentExpression) TokenLiteral() string     { return n.Token.Literal }
func (n *ConditionalExpression) TokenLiteral() string    { return n.Token.Literal }
func (n *CallExpression) TokenLiteral() string           { return n.Token.Literal }
func (n *MemberExpression) TokenLiteral() string         { return n.Token.Literal }
func (n *OptionalChain) TokenLiteral() string            { return n.Token.Literal }
func (n *MetaProperty) TokenLiteral() string             { return n.Token.Literal }
func (n *NewExpression) TokenLiteral() string            { return n.Token.Literal }
func (n *SequenceExpression) TokenLiteral() string       { return n.Token.Literal }
func (n *TemplateLiteralExpr) TokenLiteral() string      { return n.Token.Literal }
func (n *TaggedTemplateExpression) TokenLiteral() string { return n.Token.Literal }
func (n *SpreadElement) TokenLiteral() string            { return n.Token.Literal }
func (n *YieldExpression) TokenLiteral() string          { return n.Token.Literal }
func (n *AwaitExpression) TokenLiteral() string          { return n.Token.Literal }
func (n *ClassExpression) TokenLiteral() string          { return n.Token.Literal }
func (n *ThisExpression) TokenLiteral() string           { return n.Token.Literal }
func (n *SuperExpression) TokenLiteral() string          { return n.Token.Literal }
func (n *PrivateIdentifier) TokenLiteral() string        { return n.Token.Literal }
func (n *ObjectPattern) TokenLiteral() string            { return n.Token.Literal }
func (n *ArrayPattern) TokenLiteral() string             { return n.Token.Literal }
func (n *AssignmentPattern) TokenLiteral() string        { return n.Token.Literal }
func (n *RestElement) TokenLiteral() string              { return n.Token.Literal }
func (n *ComputedPropertyName) TokenLiteral() string     { return n.Token.Literal }

// Pos implementations
func (n *VariableDeclaration) Pos() token.Pos      { return n.Token.Pos() }
func (n *ExpressionStatement) Pos() token.Pos      { return n.Token.Pos() }
func (n *BlockStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *ReturnStatement) Pos() token.Pos          { return n.Token.Pos() }
func (n *IfStatement) Pos() token.Pos              { return n.Token.Pos() }
func (n *WhileStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *DoWhileStatement) Pos() token.Pos         { return n.Token.Pos() }
func (n *ForStatement) Pos() token.Pos             { return n.Token.Pos() }
func (n *ForInStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *ForOfStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *BreakStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *ContinueStatement) Pos() token.Pos        { return n.Token.Pos() }
func (n *SwitchStatement) Pos() token.Pos          { return n.Token.Pos() }
func (n *ThrowStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *TryStatement) Pos() token.Pos             { return n.Token.Pos() }
func (n *FunctionDeclaration) Pos() token.Pos      { return n.Token.Pos() }
func (n *ClassDeclaration) Pos() token.Pos         { return n.Token.Pos() }
func (n *LabeledStatement) Pos() token.Pos         { return n.Token.Pos() }
func (n *DebuggerStatement) Pos() token.Pos        { return n.Token.Pos() }
func (n *EmptyStatement) Pos() token.Pos           { return n.Token.Pos() }
func (n *WithStatement) Pos() token.Pos            { return n.Token.Pos() }
func (n *ImportDeclaration) Pos() token.Pos        { return n.Token.Pos() }
func (n *ExportNamedDeclaration) Pos() token.Pos   { return n.Token.Pos() }
func (n *ExportDefaultDeclaration) Pos() token.Pos { return n.Token.Pos() }
func (n *ExportAllDeclaration) Pos() token.Pos     { return n.Token.Pos() }
func (n *VariableDeclarator) Pos() token.Pos       { return n.Token.Pos() }
func (n *CatchClause) Pos() token.Pos              { return n.Token.Pos() }
func (n *ClassBody) Pos() token.Pos                { return n.Token.Pos() }
func (n *MethodDefinition) Pos() token.Pos         { return n.Token.Pos() }
func (n *SwitchCase) Pos() token.Pos               { return n.Token.Pos() }
func (n *Property) Pos() token.Pos                 { return n.Token.Pos() }
func (n *TemplateElement) Pos() token.Pos          { return n.Token.Pos() }
func (n *ImportSpecifier) Pos() token.Pos          { return n.Token.Pos() }
func (n *ExportSpecifier) Pos() token.Pos          { return n.Token.Pos() }
func (n *Identifier) Pos() token.Pos               { return n.Token.Pos() }
func (n *NumberLiteral) Pos() token.Pos            { return n.Token.Pos() }
func (n *BigIntLiteral) Pos() token.Pos            { return n.Token.Pos() }
func (n *StringLiteral) Pos() token.Pos            { return n.Token.Pos() }
func (n *BooleanLiteral) Pos() token.Pos           { return n.Token.Pos() }
func (n *NullLiteral) Pos() token.Pos              { return n.Token.Pos() }
func (n *RegExpLiteral) Pos() token.Pos            { return n.Token.Pos() }
func (n *ArrayLiteral) Pos() token.Pos             { return n.Token.Pos() }
func (n *ObjectLiteral) Pos() token.Pos            { return n.Token.Pos() }
func (n *FunctionExpression) Pos() token.Pos       { return n.Token.Pos() }
func (n *ArrowFunctionExpression) Pos() token.Pos  { return n.Token.Pos() }
func (n *UnaryExpression) Pos() token.Pos          { return n.Token.Pos() }
func (n *UpdateExpression) Pos() token.Pos         { return n.Token.Pos() }
func (n *BinaryExpression) Pos() token.Pos         { return n.Token.Pos() }
func (n *LogicalExpression) Pos() token.Pos        { return n.Token.Pos() }
func (n *AssignmentExpression) Pos() token.Pos     { return n.Token.Pos() }
func (n *ConditionalExpression) Pos() token.Pos    { return n.Token.Pos() }
func (n *CallExpression) Pos() token.Pos           { return n.Token.Pos() }
func (n *MemberExpression) Pos() token.Pos         { return n.Token.Pos() }
func (n *OptionalChain) Pos() token.Pos            { return n.Token.Pos() }
func (n *MetaProperty) Pos() token.Pos             { return n.Token.Pos() }
func (n *NewExpression) Pos() token.Pos            { return n.Token.Pos() }
func (n *SequenceExpression) Pos() token.Pos       { return n.Token.Pos() }
func (n *TemplateLiteralExpr) Pos() token.Pos      { return n.Token.Pos() }
func (n *TaggedTemplateExpression) Pos() token.Pos { return n.Token.Pos() }
func (n *SpreadElement) Pos() token.Pos            { return n.Token.Pos() }
func (n *YieldExpression) Pos() token.Pos          { return n.Token.Pos() }
func (n *AwaitExpression) Pos() token.Pos          { return n.Token.Pos() }
func (n *ClassExpression) Pos() token.Pos          { return n.Token.Pos() }
func (n *ThisExpression) Pos() token.Pos           { return n.Token.Pos() }
func (n *SuperExpression) Pos() token.Pos          { return n.Token.Pos() }
func (n *PrivateIdentifier) Pos() token.Pos        { return n.Token.Pos() }
func (n *ObjectPattern) Pos() token.Pos            { return n.Token.Pos() }
func (n *ArrayPattern) Pos() token.Pos             { return n.Token.Pos() }
func (n *AssignmentPattern) Pos() token.Pos        { return n.Token.Pos() }
func (n *RestElement) Pos() token.Pos              { return n.Token.Pos() }
func (n *ComputedPropertyName) Pos() token.Pos     { return n.Token.Pos() }

// nodeType implementations
func (n *VariableDeclaration) nodeType() string      { return "VariableDeclaration" }
func (n *ExpressionStatement) nodeType() string      { return "ExpressionStatement" }
func (n *BlockStatement) nodeType() string           { return "BlockStatement" }
func (n *ReturnStatement) nodeType() string          { return "ReturnStatement" }
func (n *IfStatement) nodeType() string              { return "IfStatement" }
func (n *WhileStatement) nodeType() string           { return "WhileStatement" }
func (n *DoWhileStatement) nodeType() string         { return "DoWhileStatement" }
func (n *ForStatement) nodeType() string             { return "ForStatement" }
func (n *ForInStatement) nodeType() string           { return "ForInStatement" }
func (n *ForOfStatement) nodeType() string           { return "ForOfStatement" }
func (n *BreakStatement) nodeType() string           { return "BreakStatement" }
func (n *ContinueStatement) nodeType() string        { return "ContinueStatement" }
func (n *SwitchStatement) nodeType() string          { return "SwitchStatement" }
func (n *ThrowStatement) nodeType() string           { return "ThrowStatement" }
func (n *TryStatement) nodeType() string             { return "TryStatement" }
func (n *FunctionDeclaration) nodeType() string      { return "FunctionDeclaration" }
func (n *ClassDeclaration) nodeType() string         { return "ClassDeclaration" }
func (n *LabeledStatement) nodeType() string         { return "LabeledStatement" }
func (n *DebuggerStatement) nodeType() string        { return "DebuggerStatement" }
func (n *EmptyStatement) nodeType() string           { return "EmptyStatement" }
func (n *WithStatement) nodeType() string            { return "WithStatement" }
func (n *ImportDeclaration) nodeType() string        { return "ImportDeclaration" }
func (n *ExportNamedDeclaration) nodeType() string   { return "ExportNamedDeclaration" }
func (n *ExportDefaultDeclaration) nodeType() string { return "ExportDefaultDeclaration" }
func (n *ExportAllDeclaration) nodeType() string     { return "ExportAllDeclaration" }
func (n *VariableDeclarator) nodeType() string       { return "VariableDeclarator" }
func (n *CatchClause) nodeType() string              { return "CatchClause" }
func (n *ClassBody) nodeType() string                { return "ClassBody" }
func (n *MethodDefinition) nodeType() string         { return "MethodDefinition" }
func (n *SwitchCase) nodeType() string               { return "SwitchCase" }
func (n *Property) nodeType() string                 { return "Property" }
func (n *TemplateElement) nodeType() string          { return "TemplateElement" }
func (n *ImportSpecifier) nodeType() string          { return "ImportSpecifier" }
func (n *ExportSpecifier) nodeType() string          { return "ExportSpecifier" }
func (n *Identifier) nodeType() string               { return "Identifier" }
func (n *NumberLiteral) nodeType() string            { return "NumberLiteral" }
func (n *BigIntLiteral) nodeType() string            { return "BigIntLiteral" }
func (n *StringLiteral) nodeType() string            { return "StringLiteral" }
func (n *BooleanLiteral) nodeType() string           { return "BooleanLiteral" }
func (n *NullLiteral) nodeType() string              { return "NullLiteral" }
func (n *RegExpLiteral) nodeType() string            { return "RegExpLiteral" }
func (n *ArrayLiteral) nodeType() string             { return "ArrayLiteral" }
func (n *ObjectLiteral) nodeType() string            { return "ObjectLiteral" }
func (n *FunctionExpression) nodeType() string       { return "FunctionExpression" }
func (n *ArrowFunctionExpression) nodeType() string  { return "ArrowFunctionExpression" }
func (n *UnaryExpression) nodeType() string          { return "UnaryExpression" }
func (n *UpdateExpression) nodeType() string         { return "UpdateExpression" }
func (n *BinaryExpression) nodeType() string         { return "BinaryExpression" }
func (n *LogicalExpression) nodeType() string        { return "LogicalExpression" }
func (n *AssignmentExpression) nodeType() string     { return "AssignmentExpression" }
func (n *ConditionalExpression) nodeType() string    { return "ConditionalExpression" }
func (n *CallExpression) nodeType() string           { return "CallExpression" }
func (n *MemberExpression) nodeType() string         { return "MemberExpression" }
func (n *OptionalChain) nodeType() string            { return "OptionalChain" }
func (n *MetaProperty) nodeType() string             { return "MetaProperty" }
func (n *NewExpression) nodeType() string            { return "NewExpression" }
func (n *SequenceExpression) nodeType() string       { return "SequenceExpression" }
func (n *TemplateLiteralExpr) nodeType() string      { return "TemplateLiteralExpr" }
func (n *TaggedTemplateExpression) nodeType() string { return "TaggedTemplateExpression" }
func (n *SpreadElement) nodeType() string            { return "SpreadElement" }
func (n *YieldExpression) nodeType() string          { return "YieldExpression" }
func (n *AwaitExpression) nodeType() string          { return "AwaitExpression" }
func (n *ClassExpression) nodeType() string          { return "ClassExpression" }
func (n *ThisExpression) nodeType() string           { return "ThisExpression" }
func (n *SuperExpression) nodeType() string          { return "SuperExpression" }
func (n *PrivateIdentifier) nodeType() string        { return "PrivateIdentifier" }
func (n *ObjectPattern) nodeType() string            { return "ObjectPattern" }
func (n *ArrayPattern) nodeType() string             { return "ArrayPattern" }
func (n *AssignmentPattern) nodeType() string        { return "AssignmentPattern" }
func (n *RestElement) nodeType() string              { return "RestElement" }
func (n *ComputedPropertyName) nodeType() string     { return "ComputedPropertyName" }
