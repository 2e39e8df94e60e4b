package lexer

import (
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
)

// Pairs projects the token stream back onto the source, producing one pair
// per token whose text is the exact sub-slice the token consumed. Nothing is
// re-scanned or copied.
func Pairs(input string, tokens []token.Token) []token.Pair {
	pairs := make([]token.Pair, 0, len(tokens))
	offset, line, col := 0, 1, 1
	for _, tok := range tokens {
		end := offset + tok.Len
		if end > len(input) {
			end = len(input)
		}
		text := input[offset:end]
		pairs = append(pairs, token.Pair{
			Text:  text,
			Token: tok,
			Pos:   token.Pos{Offset: offset, Line: line, Column: col},
		})
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		offset = end
	}
	return pairs
}

// Lex tokenizes input and pairs the tokens with their text.
func Lex(input string) ([]token.Pair, diagnostics.List) {
	tokens, errs := Tokenize(input)
	return Pairs(input, tokens), errs
}

// PosAt converts a byte offset into a line/column position.
func PosAt(input string, offset int) token.Pos {
	if offset > len(input) {
		offset = len(input)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return token.Pos{Offset: offset, Line: line, Column: col}
}
