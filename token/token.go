package token

import "fmt"

type TokenType int

const (
	// Literals
	Illegal TokenType = iota
	EOF
	Identifier
	Number
	BigInt
	String
	TemplateLiteral
	RegExp
	PrivateName // #name

	// Operators
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Exponent // **
	Assign
	PlusAssign
	MinusAssign
	AsteriskAssign
	SlashAssign
	PercentAssign
	ExponentAssign
	AmpersandAssign
	PipeAssign
	CaretAssign
	LeftShiftAssign
	RightShiftAssign
	UnsignedRightShiftAssign
	NullishAssign // ??=
	AndAssign     // &&=
	OrAssign      // ||=
	Equal
	NotEqual
	StrictEqual
	StrictNotEqual
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	And
	Or
	Not
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNot
	LeftShift
	RightShift
	UnsignedRightShift
	Increment
	Decrement

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Semicolon
	Colon
	Comma
	Dot
	Spread // ...
	Arrow  // =>
	QuestionMark
	OptionalChain   // ?.
	NullishCoalesce // ??

	// Keywords
	Var
	Let
	Const
	Function
	Return
	If
	Else
	While
	For
	Do
	Break
	Continue
	Switch
	Case
	Default
	Throw
	Try
	Catch
	Finally
	New
	Delete
	Typeof
	Void
	In
	Instanceof
	This
	Class
	Extends
	Super
	Import
	Export
	From
	As
	Of
	Yield
	Async
	Await
	True
	False
	Null
	Debugger
	With

	// Template literal parts
	TemplateHead
	TemplateMiddle
	TemplateTail
	NoSubstitutionTemplate
)

type Token struct {
	Type    TokenType
	Literal string
	Raw     string // template parts only: source text before escape processing
	Line    int
	Column  int
}

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

func (t Token) Pos() Pos { return Pos{Line: t.Line, Column: t.Column} }

var Keywords = map[string]TokenType{
	"var":        Var,
	"let":        Let,
	"const":      Const,
	"function":   Function,
	"return":     Return,
	"if":         If,
	"else":       Else,
	"while":      While,
	"for":        For,
	"do":         Do,
	"break":      Break,
	"continue":   Continue,
	"switch":     Switch,
	"case":       Case,
	"default":    Default,
	"throw":      Throw,
	"try":        Try,
	"catch":      Catch,
	"finally":    Finally,
	"new":        New,
	"delete":     Delete,
	"typeof":     Typeof,
	"void":       Void,
	"in":         In,
	"instanceof": Instanceof,
	"this":       This,
	"class":      Class,
	"extends":    Extends,
	"super":      Super,
	"import":     Import,
	"export":     Export,
	"from":       From,
	"as":         As,
	"of":         Of,
	"yield":      Yield,
	"async":      Async,
	"await":      Await,
	"true":       True,
	"false":      False,
	"null":       Null,
	"debugger":   Debugger,
	"with":       With,
}

func LookupIdentifier(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return Identifier
}

// Punctuators maps every operator and delimiter to its token type. The
// lexer takes the longest entry that matches its input.
var Punctuators = map[string]TokenType{
	"(": LeftParen, ")": RightParen,
	"{": LeftBrace, "}": RightBrace,
	"[": LeftBracket, "]": RightBracket,
	";": Semicolon, ":": Colon, ",": Comma, "~": BitwiseNot,
	".": Dot, "...": Spread, "=>": Arrow,
	"?": QuestionMark, "?.": OptionalChain, "??": NullishCoalesce, "??=": NullishAssign,

	"+": Plus, "++": Increment, "+=": PlusAssign,
	"-": Minus, "--": Decrement, "-=": MinusAssign,
	"*": Asterisk, "*=": AsteriskAssign, "**": Exponent, "**=": ExponentAssign,
	"/": Slash, "/=": SlashAssign,
	"%": Percent, "%=": PercentAssign,

	"=": Assign, "==": Equal, "===": StrictEqual,
	"!": Not, "!=": NotEqual, "!==": StrictNotEqual,
	"<": LessThan, "<=": LessThanOrEqual, "<<": LeftShift, "<<=": LeftShiftAssign,
	">": GreaterThan, ">=": GreaterThanOrEqual, ">>": RightShift, ">>=": RightShiftAssign,
	">>>": UnsignedRightShift, ">>>=": UnsignedRightShiftAssign,

	"&": BitwiseAnd, "&=": AmpersandAssign, "&&": And, "&&=": AndAssign,
	"|": BitwiseOr, "|=": PipeAssign, "||": Or, "||=": OrAssign,
	"^": BitwiseXor, "^=": CaretAssign,
}

// spellings is the source text of every keyword and punctuator.
var spellings = func() map[TokenType]string {
	m := make(map[TokenType]string, len(Keywords)+len(Punctuators))
	for s, t := range Keywords {
		m[t] = s
	}
	for s, t := range Punctuators {
		m[t] = s
	}
	return m
}()

// String returns the spelling of keywords and punctuators and an upper-case
// class name for the other token types.
func (t TokenType) String() string {
	switch t {
	case Illegal:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case Identifier:
		return "IDENTIFIER"
	case Number:
		return "NUMBER"
	case BigInt:
		return "BIGINT"
	case String:
		return "STRING"
	case TemplateLiteral, NoSubstitutionTemplate:
		return "TEMPLATE"
	case RegExp:
		return "REGEXP"
	case PrivateName:
		return "PRIVATE_NAME"
	case TemplateHead:
		return "TEMPLATE_HEAD"
	case TemplateMiddle:
		return "TEMPLATE_MIDDLE"
	case TemplateTail:
		return "TEMPLATE_TAIL"
	}
	if s, ok := spellings[t]; ok {
		return s
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}
