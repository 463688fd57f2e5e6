package rpn

import (
	"fmt"

	"github.com/rpnkit/rpnkit/pkg/number"
)

// Env is the variable environment expressions compile and evaluate against.
// pkg/session provides the standard implementation; the interface keeps the
// pipeline decoupled from session bookkeeping.
type Env interface {
	// Get returns the value bound to a name and whether a binding exists.
	Get(name string) (number.Number, bool)
	// Set binds a value to a name.
	Set(name string, v number.Number)
	// Ensure registers a default binding for a name when absent. It never
	// overwrites.
	Ensure(name string)
}

// operand is an evaluation stack slot: a value plus the variable name it
// came from, if any. The name is what lets assignment resolve its left-hand
// side after the variable token has already been replaced by its value, and
// it is cleared the moment an operator or function consumes the slot.
type operand struct {
	val  number.Number
	name string
}

// Evaluator walks a postfix token sequence with an operand stack.
type Evaluator struct {
	env    Env
	limits Limits
}

// NewEvaluator creates an evaluator bound to an environment and limits.
func NewEvaluator(env Env, limits Limits) *Evaluator {
	return &Evaluator{env: env, limits: limits}
}

// Evaluate runs the postfix sequence left to right and returns the final
// value: the single operand left on the stack. The sequence itself is never
// modified, so a compiled expression can be evaluated repeatedly.
//
// All domain violations come back as recoverable *number.Error values and
// leave the environment untouched beyond any assignments already completed.
func (e *Evaluator) Evaluate(postfix []Token) (number.Number, error) {
	var stack []operand
	var err error

	for _, tok := range postfix {
		switch tok.Type {
		case TokenOperand:
			stack = append(stack, operand{val: tok.Num})

		case TokenVariable:
			v, ok := e.env.Get(tok.Name)
			if !ok {
				v = number.FromFloat(0)
			}
			stack = append(stack, operand{val: v, name: tok.Name})

		case TokenOperator:
			stack, err = e.applyOperator(tok.Op, stack)
			if err != nil {
				return number.Number{}, err
			}

		case TokenFunction:
			stack, err = e.applyFunction(tok, stack)
			if err != nil {
				return number.Number{}, err
			}

		case TokenSemiColon:
			// Statement boundary: only the last statement's result survives.
			stack = stack[:0]

		default:
			return number.Number{}, number.NewUnsupportedTokenError(tok.String())
		}
	}

	switch len(stack) {
	case 0:
		return number.Number{}, number.NewMalformedExpressionError("expression produced no value")
	case 1:
		return stack[0].val, nil
	default:
		return number.Number{}, number.NewMalformedExpressionError(
			fmt.Sprintf("expression left %d values on the stack", len(stack)))
	}
}

// applyOperator pops the operator's operands, applies it, and pushes the
// result. Assignment validates all preconditions before touching the
// environment, so a failed evaluation never commits a partial write.
func (e *Evaluator) applyOperator(op Operator, stack []operand) ([]operand, error) {
	switch op {
	case OpUnaryNeg:
		if len(stack) < 1 {
			return nil, underflow(op)
		}
		top := stack[len(stack)-1]
		stack[len(stack)-1] = operand{val: number.Neg(top.val)}
		return stack, nil

	case OpFactorial:
		if len(stack) < 1 {
			return nil, underflow(op)
		}
		top := stack[len(stack)-1]
		res, err := number.Factorial(top.val, e.limits.MaxFactorial)
		if err != nil {
			return nil, err
		}
		stack[len(stack)-1] = operand{val: res}
		return stack, nil

	case OpAssign:
		if len(stack) < 2 {
			return nil, underflow(op)
		}
		right, left := stack[len(stack)-1], stack[len(stack)-2]
		if left.name == "" {
			return nil, number.NewNoVariableForAssignmentError()
		}
		e.env.Set(left.name, right.val)
		// Assignment yields its value, still named so chains like x = y = 3
		// resolve outward.
		stack = stack[:len(stack)-2]
		return append(stack, operand{val: right.val, name: left.name}), nil

	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		if len(stack) < 2 {
			return nil, underflow(op)
		}
		right, left := stack[len(stack)-1].val, stack[len(stack)-2].val
		stack = stack[:len(stack)-2]

		var res number.Number
		var err error
		switch op {
		case OpAdd:
			res = number.Add(left, right)
		case OpSub:
			res = number.Sub(left, right)
		case OpMul:
			res = number.Mul(left, right)
		case OpDiv:
			res, err = number.Div(left, right)
		case OpPow:
			res, err = number.Pow(left, right, e.limits.MaxExponent)
		}
		if err != nil {
			return nil, err
		}
		return append(stack, operand{val: res}), nil

	default:
		// Only a corrupted postfix sequence can reach here.
		panic(fmt.Sprintf("operator %s reached evaluation without a rule", op))
	}
}

// applyFunction pops the function's arguments in reverse order, applies the
// float64 routine, and pushes the result as a Decimal.
func (e *Evaluator) applyFunction(tok Token, stack []operand) ([]operand, error) {
	n := tok.Fn.Arity
	if len(stack) < n {
		return nil, number.NewMalformedExpressionError(
			fmt.Sprintf("function %s expects %d argument(s), got %d", tok.Fn.Name, n, len(stack)))
	}

	args := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stack[len(stack)-1].val.Float64()
		stack = stack[:len(stack)-1]
	}

	res, err := tok.Fn.Apply(args)
	if err != nil {
		return nil, number.NewMalformedExpressionError(err.Error())
	}
	return append(stack, operand{val: number.FromFloat(res)}), nil
}

func underflow(op Operator) error {
	return number.NewMalformedExpressionError(
		fmt.Sprintf("operator %s: not enough operands", op))
}
