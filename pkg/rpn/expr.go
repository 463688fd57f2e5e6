package rpn

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rpnkit/rpnkit/pkg/number"
)

// Limits bound the computations an expression may demand. A zero field
// disables the corresponding bound.
type Limits struct {
	MaxExpressionLength int   // bytes of source text
	MaxFactorial        int64 // largest factorial operand
	MaxExponent         int64 // largest exact integer exponent
}

// DefaultLimits returns the standard limits.
func DefaultLimits() Limits {
	return Limits{
		MaxExpressionLength: 4096,
		MaxFactorial:        100000,
		MaxExponent:         1 << 20,
	}
}

// Expr is a compiled expression: a postfix token sequence together with the
// environment it was compiled against. It can be evaluated any number of
// times; values of referenced variables may change between evaluations.
type Expr struct {
	source  string
	postfix []Token
	env     Env
	limits  Limits
}

// Compile runs the front half of the pipeline over source: tokenize,
// normalize unary operators, and transform to postfix, registering every
// referenced variable in env along the way.
func Compile(source string, env Env, limits Limits) (*Expr, error) {
	if limits.MaxExpressionLength > 0 && len(source) > limits.MaxExpressionLength {
		return nil, number.NewResourceLimitError(fmt.Sprintf(
			"expression length %d exceeds the limit of %d", len(source), limits.MaxExpressionLength))
	}

	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	tokens = normalizeUnary(tokens)
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("tokens: %s", joinTokens(tokens))
	}

	postfix := toPostfix(tokens, env)
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("postfix: %s", joinTokens(postfix))
	}

	return &Expr{source: source, postfix: postfix, env: env, limits: limits}, nil
}

// Evaluate runs the postfix evaluator against the live environment.
func (e *Expr) Evaluate() (number.Number, error) {
	return NewEvaluator(e.env, e.limits).Evaluate(e.postfix)
}

// Source returns the original expression text.
func (e *Expr) Source() string {
	return e.source
}

// String returns the compiled postfix form, space-separated.
func (e *Expr) String() string {
	return joinTokens(e.postfix)
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}
