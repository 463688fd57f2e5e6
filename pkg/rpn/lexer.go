package rpn

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/rpnkit/rpnkit/pkg/funcs"
	"github.com/rpnkit/rpnkit/pkg/number"
)

// Lexer tokenizes a calculator expression string.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans the entire input and returns the raw token sequence, before
// unary normalization. Matching is maximal-munch: numeric literals first,
// then operators, brackets, and separators, then identifiers. An identifier
// naming a built-in function becomes a Function token, anything else a
// Variable token. Unrecognized characters are a hard error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return tokens, nil
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

// next returns the next token. The caller has skipped whitespace and
// guaranteed at least one byte of input.
func (l *Lexer) next() (Token, error) {
	ch := l.input[l.pos]

	if ch >= '0' && ch <= '9' {
		return l.readNumber()
	}
	// A leading dot starts a decimal literal like ".5".
	if ch == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
		return l.readNumber()
	}

	if op, ok := singleCharOperator(ch); ok {
		l.pos++
		return Token{Type: TokenOperator, Op: op, Pos: l.pos - 1}, nil
	}

	switch ch {
	case '(', '[':
		l.pos++
		return Token{Type: TokenOpenBracket, Pos: l.pos - 1}, nil
	case ')', ']':
		l.pos++
		return Token{Type: TokenCloseBracket, Pos: l.pos - 1}, nil
	case ',':
		l.pos++
		return Token{Type: TokenComma, Pos: l.pos - 1}, nil
	case ';':
		l.pos++
		return Token{Type: TokenSemiColon, Pos: l.pos - 1}, nil
	}

	if isIdentStart(ch) {
		return l.readIdentifier(), nil
	}

	// Multibyte operator aliases.
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	switch r {
	case '×':
		start := l.pos
		l.pos += size
		return Token{Type: TokenOperator, Op: OpMul, Pos: start}, nil
	case '÷':
		start := l.pos
		l.pos += size
		return Token{Type: TokenOperator, Op: OpDiv, Pos: start}, nil
	}

	return Token{}, number.NewInvalidExpressionError(
		fmt.Sprintf("unexpected character %q at position %d", r, l.pos))
}

// singleCharOperator maps an operator byte to its Operator. Minus always maps
// to the binary operator here; normalizeUnary rewrites operand positions.
func singleCharOperator(ch byte) (Operator, bool) {
	switch ch {
	case '+':
		return OpAdd, true
	case '-':
		return OpSub, true
	case '*':
		return OpMul, true
	case '/':
		return OpDiv, true
	case '^':
		return OpPow, true
	case '!':
		return OpFactorial, true
	case '=':
		return OpAssign, true
	default:
		return 0, false
	}
}

// readNumber reads an integer or decimal literal: digits with at most one
// decimal point. "4." and ".5" are valid decimals. There is no exponent
// syntax; "1e5" lexes as the literal 1 followed by the identifier e5.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isDigit(ch) {
			l.pos++
		} else if ch == '.' && !seenDot {
			seenDot = true
			l.pos++
		} else {
			break
		}
	}

	raw := l.input[start:l.pos]
	n, err := number.Parse(raw)
	if err != nil {
		return Token{}, number.NewInvalidExpressionError(
			fmt.Sprintf("invalid number %q at position %d", raw, start))
	}
	return Token{Type: TokenOperand, Num: n, Pos: start}, nil
}

// readIdentifier reads an identifier and classifies it as a function or a
// variable. Function names resolve case-insensitively.
func (l *Lexer) readIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	word := l.input[start:l.pos]
	if fn, ok := funcs.Lookup(word); ok {
		return Token{Type: TokenFunction, Fn: fn, Name: word, Pos: start}
	}
	return Token{Type: TokenVariable, Name: word, Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// normalizeUnary rewrites operators found in operand position: a unary plus
// is dropped and a unary minus becomes the distinct OpUnaryNeg operator, so
// the transformer and evaluator can give it its own precedence and arity.
// The scan tracks whether an operand is expected next; operands, variables,
// functions, close brackets, and the postfix factorial all leave an
// operand-like value behind, while every other operator, open bracket,
// comma, and semicolon put the scan back into operand position.
func normalizeUnary(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	operandExpected := true
	for _, tok := range tokens {
		switch tok.Type {
		case TokenOperand, TokenVariable, TokenFunction, TokenCloseBracket:
			operandExpected = false
		case TokenOpenBracket, TokenComma, TokenSemiColon:
			operandExpected = true
		case TokenOperator:
			if tok.Op == OpFactorial {
				operandExpected = false
				break
			}
			if operandExpected {
				switch tok.Op {
				case OpAdd:
					continue // unary plus is a no-op
				case OpSub:
					tok.Op = OpUnaryNeg
				}
				// Still expecting the operand the unary operator applies to;
				// anything else here is malformed and left for the evaluator.
				out = append(out, tok)
				continue
			}
			operandExpected = true
		}
		out = append(out, tok)
	}
	return out
}
