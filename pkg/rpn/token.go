// Package rpn implements the calculator's expression pipeline: lexical
// tokenization, unary-operator normalization, infix-to-postfix transformation
// via the shunting-yard algorithm, and postfix evaluation against a shared
// variable environment.
package rpn

import (
	"fmt"

	"github.com/rpnkit/rpnkit/pkg/funcs"
	"github.com/rpnkit/rpnkit/pkg/number"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenOperand      TokenType = iota // numeric literal
	TokenOperator                      // arithmetic operator
	TokenOpenBracket                   // ( or [
	TokenCloseBracket                  // ) or ]
	TokenFunction                      // built-in function name
	TokenVariable                      // variable name
	TokenComma                         // function argument separator
	TokenSemiColon                     // statement separator
)

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenOperand:
		return "OPERAND"
	case TokenOperator:
		return "OPERATOR"
	case TokenOpenBracket:
		return "OPEN"
	case TokenCloseBracket:
		return "CLOSE"
	case TokenFunction:
		return "FUNCTION"
	case TokenVariable:
		return "VARIABLE"
	case TokenComma:
		return "COMMA"
	case TokenSemiColon:
		return "SEMICOLON"
	default:
		return "UNKNOWN"
	}
}

// Operator identifies an arithmetic operator.
type Operator int

const (
	OpAssign    Operator = iota // =
	OpAdd                       // +
	OpSub                       // - in binary position
	OpMul                       // * (also ×)
	OpDiv                       // / (also ÷)
	OpPow                       // ^
	OpUnaryNeg                  // - in operand position
	OpFactorial                 // ! (postfix)
)

// Associativity determines grouping among operators of equal precedence.
type Associativity int

const (
	AssocLeft Associativity = iota
	AssocRight
)

// Precedence returns the operator's binding strength; higher binds tighter.
// An operator outside the table is a corrupted token stream, which is fatal.
func (o Operator) Precedence() int {
	switch o {
	case OpAssign:
		return 0
	case OpAdd, OpSub:
		return 1
	case OpMul, OpDiv:
		return 2
	case OpPow:
		return 3
	case OpUnaryNeg:
		return 4
	case OpFactorial:
		return 5
	default:
		panic(fmt.Sprintf("operator %d has no precedence", int(o)))
	}
}

// Associativity returns the operator's grouping rule. Assignment, power, and
// unary negation group right-to-left; everything else left-to-right.
func (o Operator) Associativity() Associativity {
	switch o {
	case OpAssign, OpPow, OpUnaryNeg:
		return AssocRight
	default:
		return AssocLeft
	}
}

// String returns the operator's display form. Unary negation renders as
// "neg" to keep postfix dumps unambiguous.
func (o Operator) String() string {
	switch o {
	case OpAssign:
		return "="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	case OpUnaryNeg:
		return "neg"
	case OpFactorial:
		return "!"
	default:
		return "<unknown>"
	}
}

// Token represents a single lexical token. The payload fields are selected by
// Type: Num for operands, Op for operators, Fn and Name for functions, Name
// for variables.
type Token struct {
	Type TokenType
	Num  number.Number
	Op   Operator
	Fn   *funcs.Func
	Name string
	Pos  int // byte offset in source
}

// String returns the token's display form, as used in postfix dumps.
func (t Token) String() string {
	switch t.Type {
	case TokenOperand:
		return t.Num.String()
	case TokenOperator:
		return t.Op.String()
	case TokenOpenBracket:
		return "("
	case TokenCloseBracket:
		return ")"
	case TokenFunction:
		return t.Fn.Name
	case TokenVariable:
		return t.Name
	case TokenComma:
		return ","
	case TokenSemiColon:
		return ";"
	default:
		return "<unknown>"
	}
}
