package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
)

// Scanner splits source text into tokens. It never skips a byte: every call
// to NextToken advances the cursor by exactly the returned token's length.
type Scanner struct {
	input      string
	checkpoint int // start of the token being scanned
	cursor     int // next unread byte
	errors     diagnostics.List
}

func New(input string) *Scanner {
	return &Scanner{input: input}
}

// Tokenize scans the whole input. Lexical problems are reported alongside
// the tokens; the token stream still covers every byte of the input.
func Tokenize(input string) ([]token.Token, diagnostics.List) {
	s := New(input)
	tokens := make([]token.Token, 0, len(input)/3+1)
	for !s.isEOF() {
		tokens = append(tokens, s.NextToken())
	}
	return tokens, s.errors
}

func (s *Scanner) Errors() diagnostics.List { return s.errors }

func (s *Scanner) isEOF() bool { return s.cursor >= len(s.input) }

func (s *Scanner) next() byte {
	if s.cursor >= len(s.input) {
		return 0
	}
	ch := s.input[s.cursor]
	s.cursor++
	return ch
}

// peek returns the next unread byte without consuming it.
func (s *Scanner) peek() byte { return s.peekAt(0) }

func (s *Scanner) peekAt(n int) byte {
	if s.cursor+n >= len(s.input) {
		return 0
	}
	return s.input[s.cursor+n]
}

func (s *Scanner) consumeWhile(pred func(byte) bool) {
	for !s.isEOF() && pred(s.peek()) {
		s.cursor++
	}
}

func (s *Scanner) text() string { return s.input[s.checkpoint:s.cursor] }

func (s *Scanner) errorf(code diagnostics.ErrorCode, args ...interface{}) {
	s.errors = append(s.errors, diagnostics.NewError(code, PosAt(s.input, s.checkpoint), args...))
}

// NextToken scans one token starting at the cursor.
func (s *Scanner) NextToken() token.Token {
	s.checkpoint = s.cursor
	ch := s.next()

	var tok token.Token
	switch {
	case ch == '/':
		switch s.peek() {
		case '/':
			tok = s.lineComment()
		case '*':
			tok = s.blockComment()
		default:
			tok = s.operator(token.Divide)
		}
	case isSpace(ch):
		tok = s.whitespace()
	case ch == 'f' && s.peek() == '"':
		s.next()
		tok = s.stringLiteral(token.FormatString)
	case ch == 'r' && s.peek() == '"':
		s.next()
		tok = s.rawString()
	case ch == '"':
		tok = s.stringLiteral(token.String)
	case ch == '\'':
		tok = s.char()
	case isDigit(ch):
		tok = s.number(ch == '0')
	case ch == '@':
		tok = s.annotation()
	case ch == ',':
		tok = token.Token{Kind: token.Comma}
	case ch == '.':
		tok = token.Token{Kind: token.Dot}
	case ch == '(':
		tok = token.Token{Kind: token.OpenParen}
	case ch == ')':
		tok = token.Token{Kind: token.CloseParen}
	case ch == '{':
		tok = token.Token{Kind: token.OpenBrace}
	case ch == '}':
		tok = token.Token{Kind: token.CloseBrace}
	case ch == '[':
		tok = token.Token{Kind: token.OpenBracket}
	case ch == ']':
		tok = token.Token{Kind: token.CloseBracket}
	case ch == ':':
		tok = token.Token{Kind: token.Colon}
	case ch == '-' && s.peek() == '>':
		s.next()
		tok = token.Token{Kind: token.Arrow}
	case ch == '+':
		tok = s.operator(token.Add)
	case ch == '-':
		tok = s.operator(token.Subtract)
	case ch == '*':
		tok = s.operator(token.Multiply)
	case ch == '%':
		tok = s.operator(token.Modulus)
	case ch == '~':
		tok = s.operator(token.BinaryNot)
	case ch == '^':
		tok = s.operator(token.BinaryXOr)
	case ch == '=':
		tok = s.condition(token.Assign)
	case ch == '!':
		tok = s.condition(token.Not)
	case ch == '&':
		tok = s.condition(token.BinaryAnd)
	case ch == '|':
		tok = s.condition(token.BinaryOr)
	case ch == '<':
		tok = s.condition(token.LessThan)
	case ch == '>':
		tok = s.condition(token.GreaterThan)
	case ch >= utf8.RuneSelf:
		tok = s.nonASCII()
	default:
		tok = s.word()
	}

	tok.Len = s.cursor - s.checkpoint
	return tok
}

func (s *Scanner) lineComment() token.Token {
	for !s.isEOF() {
		if s.next() == '\n' {
			break
		}
	}
	return token.Token{Kind: token.LineComment}
}

func (s *Scanner) blockComment() token.Token {
	s.next() // *
	canEnd := false
	for {
		if s.isEOF() {
			s.errorf(diagnostics.ErrL002)
			return token.Token{Kind: token.BlockComment}
		}
		switch s.next() {
		case '*':
			canEnd = true
		case '/':
			if canEnd {
				return token.Token{Kind: token.BlockComment}
			}
		default:
			canEnd = false
		}
	}
}

func (s *Scanner) whitespace() token.Token {
	for !s.isEOF() {
		if isSpace(s.peek()) {
			s.cursor++
			continue
		}
		r, w := utf8.DecodeRuneInString(s.input[s.cursor:])
		if r >= utf8.RuneSelf && unicode.IsSpace(r) {
			s.cursor += w
			continue
		}
		break
	}
	return token.Token{Kind: token.Whitespace}
}

func (s *Scanner) operator(kind token.Kind) token.Token {
	if s.peek() != '=' {
		return token.Token{Kind: kind}
	}
	s.next()
	switch kind {
	case token.Add:
		kind = token.AddAssign
	case token.Subtract:
		kind = token.SubtractAssign
	case token.Multiply:
		kind = token.MultiplyAssign
	case token.Divide:
		kind = token.DivideAssign
	case token.Modulus:
		kind = token.ModulusAssign
	case token.BinaryNot:
		kind = token.BinaryNotAssign
	case token.BinaryXOr:
		kind = token.BinaryXOrAssign
	case token.BinaryAnd:
		kind = token.BinaryAndAssign
	case token.BinaryOr:
		kind = token.BinaryOrAssign
	}
	return token.Token{Kind: kind}
}

func (s *Scanner) condition(kind token.Kind) token.Token {
	next := s.peek()
	switch kind {
	case token.Not:
		if next == '=' {
			s.next()
			return token.Token{Kind: token.IsNotEqualTo}
		}
	case token.BinaryAnd:
		if next == '&' {
			s.next()
			return token.Token{Kind: token.And}
		}
		return s.operator(kind)
	case token.BinaryOr:
		if next == '|' {
			s.next()
			return token.Token{Kind: token.Or}
		}
		return s.operator(kind)
	case token.Assign:
		if next == '=' {
			s.next()
			return token.Token{Kind: token.IsEqualTo}
		}
	case token.LessThan:
		switch next {
		case '=':
			s.next()
			return token.Token{Kind: token.LessThanOrEquals}
		case '<':
			s.next()
			if s.peek() == '<' {
				s.next()
				return token.Token{Kind: token.ShiftLeftOverflow}
			}
			return token.Token{Kind: token.ShiftLeft}
		}
	case token.GreaterThan:
		switch next {
		case '=':
			s.next()
			return token.Token{Kind: token.GreaterThanOrEquals}
		case '>':
			s.next()
			if s.peek() == '>' {
				s.next()
				return token.Token{Kind: token.ShiftRightOverflow}
			}
			return token.Token{Kind: token.ShiftRight}
		}
	}
	return token.Token{Kind: kind}
}

// stringLiteral scans up to the closing quote; the opening quote is already consumed.
func (s *Scanner) stringLiteral(kind token.LiteralKind) token.Token {
	escaped := false
	for {
		if s.isEOF() {
			s.errorf(diagnostics.ErrL001)
			break
		}
		ch := s.next()
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return token.Token{Kind: token.Literal, Literal: kind}
		}
	}
	return token.Token{Kind: token.Literal, Literal: kind}
}

func (s *Scanner) rawString() token.Token {
	for {
		if s.isEOF() {
			s.errorf(diagnostics.ErrL001)
			break
		}
		if s.next() == '"' {
			break
		}
	}
	return token.Token{Kind: token.Literal, Literal: token.RawString}
}

// char consumes exactly two bytes after the opening quote: the character and
// the closing quote. Escapes are not recognised.
func (s *Scanner) char() token.Token {
	s.next()
	s.next()
	return token.Token{Kind: token.Literal, Literal: token.Char}
}

func (s *Scanner) number(startsWithZero bool) token.Token {
	base := token.Decimal
	if startsWithZero {
		switch s.peek() {
		case 'b':
			base = token.Binary
		case 'o':
			base = token.Octal
		case 'x':
			base = token.Hexadecimal
		}
		if base != token.Decimal {
			s.next()
		}
	}

	kind := token.Integer
	for !s.isEOF() {
		ch := s.peek()
		if base == token.Decimal && (ch == '.' || ch == 'f') {
			if kind == token.Float {
				break
			}
			kind = token.Float
		} else if !isDigit(ch) && ch != '_' && !(base == token.Hexadecimal && isHexLetter(ch)) {
			break
		}
		s.next()
	}

	return token.Token{Kind: token.Literal, Literal: kind, Base: base}
}

func (s *Scanner) annotation() token.Token {
	s.consumeWhile(isWordByte)
	payload := s.input[s.checkpoint+1 : s.cursor]
	if payload == "extern" {
		return token.Token{Kind: token.Annotation, Annotation: token.Extern}
	}
	if !IsIdentifier(payload) {
		s.errorf(diagnostics.ErrL003, s.text())
		return token.Token{Kind: token.Unknown}
	}
	return token.Token{Kind: token.Annotation, Annotation: token.OtherAnnotation}
}

func (s *Scanner) word() token.Token {
	for !s.isEOF() {
		if isWordByte(s.peek()) {
			s.cursor++
			continue
		}
		r, w := utf8.DecodeRuneInString(s.input[s.cursor:])
		if r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			s.cursor += w
			continue
		}
		break
	}

	text := s.text()
	if kw, ok := token.Keywords[text]; ok {
		return token.Token{Kind: token.Keyword, Keyword: kw}
	}
	if text == "true" || text == "false" {
		return token.Token{Kind: token.Literal, Literal: token.Boolean}
	}
	if ty, ok := token.BuiltInTypes[text]; ok {
		return token.Token{Kind: token.BuiltInType, Type: ty}
	}
	if !IsIdentifier(text) {
		s.errorf(diagnostics.ErrL004, text)
		return token.Token{Kind: token.Unknown}
	}
	return token.Token{Kind: token.Identifier}
}

// nonASCII handles a token starting with a multi-byte character. The first
// byte is already consumed.
func (s *Scanner) nonASCII() token.Token {
	s.cursor = s.checkpoint
	r, w := utf8.DecodeRuneInString(s.input[s.cursor:])
	switch {
	case unicode.IsSpace(r):
		s.cursor += w
		return s.whitespace()
	case unicode.IsLetter(r):
		s.cursor += w
		return s.word()
	case isEmoji(r):
		s.cursor += w
		// Swallow joiners and variation selectors belonging to the same glyph.
		for !s.isEOF() {
			r2, w2 := utf8.DecodeRuneInString(s.input[s.cursor:])
			if r2 != 0x200D && r2 != 0xFE0F && !isEmoji(r2) {
				break
			}
			s.cursor += w2
		}
		s.errorf(diagnostics.ErrL005, s.text())
		return token.Token{Kind: token.Unknown}
	}
	s.cursor += w
	s.errorf(diagnostics.ErrL004, s.text())
	return token.Token{Kind: token.Unknown}
}

// IsIdentifier reports whether text is shaped like an identifier: a letter
// followed by letters, digits or underscores.
func IsIdentifier(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isWordByte(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || isDigit(ch) || ch == '_'
}

// isEmoji reports false for utf8.RuneError, which unicode.So contains.
func isEmoji(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return unicode.Is(unicode.So, r)
}
