// Package token defines the lexical units produced by the scanner.
//
// A Token only records what was scanned (its kind and how many bytes it
// covers). The text itself is recovered by pairing tokens with the source,
// see Pair.
package token

import "fmt"

type Kind uint8

const (
	Unknown Kind = iota

	// Comments
	LineComment  //  //
	BlockComment //  /* .. */

	Whitespace

	Literal     //  420, "nice", 6.9, 'F'
	Keyword     //  let, fn, module
	Identifier  //  let [this] = 10
	Annotation  //  @extern
	BuiltInType //  Int32, Float64, String

	Comma        //  ,
	Dot          //  .
	OpenParen    //  (
	CloseParen   //  )
	OpenBrace    //  {
	CloseBrace   //  }
	OpenBracket  //  [
	CloseBracket //  ]
	Colon        //  :
	Arrow        //  ->

	Assign         //  =
	Add            //  +
	Subtract       //  -
	Multiply       //  *
	Divide         //  /
	Modulus        //  %
	AddAssign      //  +=
	SubtractAssign //  -=
	MultiplyAssign //  *=
	DivideAssign   //  /=
	ModulusAssign  //  %=

	Not                 //  !
	And                 //  &&
	Or                  //  ||
	IsEqualTo           //  ==
	IsNotEqualTo        //  !=
	LessThan            //  <
	GreaterThan         //  >
	LessThanOrEquals    //  <=
	GreaterThanOrEquals //  >=

	BinaryAnd          //  &
	BinaryOr           //  |
	BinaryNot          //  ~
	BinaryXOr          //  ^
	BinaryAndAssign    //  &=
	BinaryOrAssign     //  |=
	BinaryNotAssign    //  ~=
	BinaryXOrAssign    //  ^=
	ShiftLeft          //  <<
	ShiftRight         //  >>
	ShiftLeftOverflow  //  <<<
	ShiftRightOverflow //  >>>
)

var kindNames = [...]string{
	Unknown:             "Unknown",
	LineComment:         "LineComment",
	BlockComment:        "BlockComment",
	Whitespace:          "Whitespace",
	Literal:             "Literal",
	Keyword:             "Keyword",
	Identifier:          "Identifier",
	Annotation:          "Annotation",
	BuiltInType:         "BuiltInType",
	Comma:               "Comma",
	Dot:                 "Dot",
	OpenParen:           "OpenParen",
	CloseParen:          "CloseParen",
	OpenBrace:           "OpenBrace",
	CloseBrace:          "CloseBrace",
	OpenBracket:         "OpenBracket",
	CloseBracket:        "CloseBracket",
	Colon:               "Colon",
	Arrow:               "Arrow",
	Assign:              "Assign",
	Add:                 "Add",
	Subtract:            "Subtract",
	Multiply:            "Multiply",
	Divide:              "Divide",
	Modulus:             "Modulus",
	AddAssign:           "AddAssign",
	SubtractAssign:      "SubtractAssign",
	MultiplyAssign:      "MultiplyAssign",
	DivideAssign:        "DivideAssign",
	ModulusAssign:       "ModulusAssign",
	Not:                 "Not",
	And:                 "And",
	Or:                  "Or",
	IsEqualTo:           "IsEqualTo",
	IsNotEqualTo:        "IsNotEqualTo",
	LessThan:            "LessThan",
	GreaterThan:         "GreaterThan",
	LessThanOrEquals:    "LessThanOrEquals",
	GreaterThanOrEquals: "GreaterThanOrEquals",
	BinaryAnd:           "BinaryAnd",
	BinaryOr:            "BinaryOr",
	BinaryNot:           "BinaryNot",
	BinaryXOr:           "BinaryXOr",
	BinaryAndAssign:     "BinaryAndAssign",
	BinaryOrAssign:      "BinaryOrAssign",
	BinaryNotAssign:     "BinaryNotAssign",
	BinaryXOrAssign:     "BinaryXOrAssign",
	ShiftLeft:           "ShiftLeft",
	ShiftRight:          "ShiftRight",
	ShiftLeftOverflow:   "ShiftLeftOverflow",
	ShiftRightOverflow:  "ShiftRightOverflow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsTrivia reports whether tokens of this kind carry no meaning for the parser.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == LineComment || k == BlockComment
}

type LiteralKind uint8

const (
	Integer LiteralKind = iota + 1
	Float
	Char
	String
	RawString
	FormatString
	Boolean
)

func (l LiteralKind) String() string {
	switch l {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Char:
		return "Char"
	case String:
		return "String"
	case RawString:
		return "RawString"
	case FormatString:
		return "FormatString"
	case Boolean:
		return "Boolean"
	}
	return "None"
}

type Base uint8

const (
	Decimal Base = iota + 1
	Binary
	Octal
	Hexadecimal
)

// Radix returns the numeric radix of the base.
func (b Base) Radix() int {
	switch b {
	case Binary:
		return 2
	case Octal:
		return 8
	case Hexadecimal:
		return 16
	}
	return 10
}

func (b Base) String() string {
	switch b {
	case Binary:
		return "Binary"
	case Octal:
		return "Octal"
	case Hexadecimal:
		return "Hexadecimal"
	case Decimal:
		return "Decimal"
	}
	return "None"
}

type KeywordKind uint8

const (
	Enum KeywordKind = iota + 1
	Fn
	Return
	Let
	Module
	Public
	Type
	Use
)

var keywordNames = map[KeywordKind]string{
	Enum: "enum", Fn: "fn", Return: "return", Let: "let",
	Module: "module", Public: "public", Type: "type", Use: "use",
}

func (k KeywordKind) String() string {
	if s, ok := keywordNames[k]; ok {
		return s
	}
	return "None"
}

// Keywords maps reserved words to their keyword kind.
var Keywords = map[string]KeywordKind{
	"enum":   Enum,
	"fn":     Fn,
	"return": Return,
	"let":    Let,
	"module": Module,
	"public": Public,
	"type":   Type,
	"use":    Use,
}

type TypeKind uint8

const (
	Int8 TypeKind = iota + 1
	Int16
	Int32
	Int64
	Int128
	UInt8
	UInt16
	UInt32
	UInt64
	UInt128
	Float32
	Float64
	StringType
)

// BuiltInTypes maps built-in type names to their kind.
var BuiltInTypes = map[string]TypeKind{
	"Int8":    Int8,
	"Int16":   Int16,
	"Int32":   Int32,
	"Int64":   Int64,
	"Int128":  Int128,
	"UInt8":   UInt8,
	"UInt16":  UInt16,
	"UInt32":  UInt32,
	"UInt64":  UInt64,
	"UInt128": UInt128,
	"Float32": Float32,
	"Float64": Float64,
	"String":  StringType,
}

func (t TypeKind) String() string {
	for name, kind := range BuiltInTypes {
		if kind == t {
			return name
		}
	}
	return "None"
}

type AnnotationKind uint8

const (
	Extern AnnotationKind = iota + 1
	OtherAnnotation
)

// Token is a classified run of source bytes.
//
// Only the field matching Kind is meaningful: Literal and Base for Literal
// tokens, Keyword for Keyword tokens and so on.
type Token struct {
	Kind       Kind
	Len        int
	Literal    LiteralKind
	Base       Base
	Keyword    KeywordKind
	Type       TypeKind
	Annotation AnnotationKind
}

func (t Token) String() string {
	switch t.Kind {
	case Literal:
		if t.Literal == Integer || t.Literal == Float {
			return fmt.Sprintf("Literal(%s(%s))/%d", t.Literal, t.Base, t.Len)
		}
		return fmt.Sprintf("Literal(%s)/%d", t.Literal, t.Len)
	case Keyword:
		return fmt.Sprintf("Keyword(%s)/%d", t.Keyword, t.Len)
	case BuiltInType:
		return fmt.Sprintf("BuiltInType(%s)/%d", t.Type, t.Len)
	}
	return fmt.Sprintf("%s/%d", t.Kind, t.Len)
}

// Is reports whether the token is a keyword of the given kind.
func (t Token) Is(kw KeywordKind) bool {
	return t.Kind == Keyword && t.Keyword == kw
}

// Pos is a position in a source file. Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position points into a source file.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Pair is a token together with the exact slice of source it covers.
type Pair struct {
	Text  string
	Token Token
	Pos   Pos
}

func (p Pair) String() string {
	return fmt.Sprintf("%s %q @%s", p.Token, p.Text, p.Pos)
}
