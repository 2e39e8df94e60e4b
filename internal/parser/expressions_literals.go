package parser

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// parseLiteralExpression parses a literal, optionally preceded by a minus
// sign for numbers.
func (p *Parser) parseLiteralExpression() *ast.Literal {
	start := p.curToken
	negative := false
	if p.curTokenIs(token.Subtract) && isNumber(p.peekToken()) {
		negative = true
		p.nextToken()
	}
	tok := p.curToken
	if !p.curTokenIs(token.Literal) {
		p.unexpected("literal")
		return nil
	}
	p.nextToken()
	v, err := literalValue(tok, negative)
	if err != nil {
		text := tok.Text
		if negative {
			text = "-" + text
		}
		p.errorf(diagnostics.ErrP004, tok.Pos, tok.Token.Literal, text, err)
		return nil
	}
	return &ast.Literal{Pos: start.Pos, Value: v}
}

// literalValue converts the text of a literal token into a value.
func literalValue(tok token.Pair, negative bool) (value.Value, error) {
	text := tok.Text
	switch tok.Token.Literal {
	case token.Integer:
		return parseInteger(text, tok.Token.Base, negative)
	case token.Float:
		return parseFloat(text, negative)
	case token.Boolean:
		if text == "true" {
			return value.UInt8(1), nil
		}
		return value.UInt8(0), nil
	case token.Char:
		if len(text) != 3 || text[2] != '\'' {
			return nil, errors.New("a character literal holds exactly one byte")
		}
		return value.UInt32(text[1]), nil
	case token.String:
		s, err := unescape(trimQuotes(text, 1))
		return value.String(s), err
	case token.FormatString:
		s, err := unescape(trimQuotes(text, 2))
		return value.String(s), err
	case token.RawString:
		return value.String(trimQuotes(text, 2)), nil
	}
	return nil, fmt.Errorf("unknown literal kind %s", tok.Token.Literal)
}

func trimQuotes(text string, prefix int) string {
	if len(text) < prefix {
		return ""
	}
	body := text[prefix:]
	if strings.HasSuffix(body, `"`) {
		body = body[:len(body)-1]
	}
	return body
}

// parseInteger picks the narrowest of Int32, Int64, Int128 and UInt128 that
// holds the literal.
func parseInteger(text string, base token.Base, negative bool) (value.Value, error) {
	digits := text
	if base != token.Decimal && len(digits) >= 2 {
		digits = digits[2:]
	}
	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return nil, errors.New("no digits")
	}
	n, ok := new(big.Int).SetString(digits, base.Radix())
	if !ok {
		return nil, fmt.Errorf("invalid digit for base %d", base.Radix())
	}
	if negative {
		n.Neg(n)
	}
	return IntegerValue(n)
}

// IntegerValue narrows n to the smallest integer kind used for literals.
func IntegerValue(n *big.Int) (value.Value, error) {
	if n.IsInt64() {
		i := n.Int64()
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return value.Int32(i), nil
		}
		return value.Int64(i), nil
	}
	if v, ok := value.Int128FromBig(n); ok {
		return v, nil
	}
	if v, ok := value.UInt128FromBig(n); ok {
		return v, nil
	}
	return nil, errors.New("out of range for 128-bit integers")
}

// parseFloat reads a decimal float; a trailing f selects Float32.
func parseFloat(text string, negative bool) (value.Value, error) {
	s := strings.ReplaceAll(text, "_", "")
	if negative {
		s = "-" + s
	}
	if strings.HasSuffix(s, "f") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 32)
		if err != nil {
			return nil, numError(err)
		}
		return value.Float32(f), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, numError(err)
	}
	return value.Float64(f), nil
}

func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("trailing backslash")
		}
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteByte(s[i])
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", s[i])
		}
	}
	return sb.String(), nil
}
