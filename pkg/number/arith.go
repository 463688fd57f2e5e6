package number

import (
	"fmt"
	"math"
	"math/big"
)

// Arithmetic dispatch. The promotion rules live here and nowhere else:
// Integer op Integer stays Integer for the integer-closed operators
// (add, sub, mul, neg, pow with a non-negative exponent, factorial);
// division always yields Decimal; any Decimal operand makes the result
// Decimal.

// Add returns a + b.
func Add(a, b Number) Number {
	if a.kind == KindInteger && b.kind == KindInteger {
		return Number{kind: KindInteger, intVal: new(big.Int).Add(a.bigInt(), b.bigInt())}
	}
	return FromFloat(a.Float64() + b.Float64())
}

// Sub returns a - b.
func Sub(a, b Number) Number {
	if a.kind == KindInteger && b.kind == KindInteger {
		return Number{kind: KindInteger, intVal: new(big.Int).Sub(a.bigInt(), b.bigInt())}
	}
	return FromFloat(a.Float64() - b.Float64())
}

// Mul returns a * b.
func Mul(a, b Number) Number {
	if a.kind == KindInteger && b.kind == KindInteger {
		return Number{kind: KindInteger, intVal: new(big.Int).Mul(a.bigInt(), b.bigInt())}
	}
	return FromFloat(a.Float64() * b.Float64())
}

// Neg returns -a, preserving the variant.
func Neg(a Number) Number {
	if a.kind == KindInteger {
		return Number{kind: KindInteger, intVal: new(big.Int).Neg(a.bigInt())}
	}
	return FromFloat(-a.decVal)
}

// Div returns a / b. The result is always Decimal, even for exactly dividing
// integers; there is no integer floor division. Division by exact zero is a
// DivisionByZero error.
func Div(a, b Number) (Number, error) {
	if b.IsZero() {
		return Number{}, NewDivisionByZeroError()
	}
	return FromFloat(a.Float64() / b.Float64()), nil
}

// Pow returns a ^ b. An integer base with a non-negative integer exponent is
// computed exactly; a negative exponent requires a nonzero base (else
// DivisionByZero) and yields a Decimal; any Decimal operand goes through
// math.Pow. maxExponent bounds the exact path, since a large integer exponent
// can allocate without bound; zero or negative means unbounded.
func Pow(a, b Number, maxExponent int64) (Number, error) {
	if b.Sign() < 0 && a.IsZero() {
		return Number{}, NewDivisionByZeroError()
	}
	if a.kind == KindInteger && b.kind == KindInteger && b.Sign() >= 0 {
		exp := b.bigInt()
		if maxExponent > 0 && (!exp.IsInt64() || exp.Int64() > maxExponent) {
			return Number{}, NewResourceLimitError(
				fmt.Sprintf("exponent %s exceeds the limit of %d", exp, maxExponent))
		}
		if !exp.IsInt64() {
			return Number{}, NewResourceLimitError(fmt.Sprintf("exponent %s is too large", exp))
		}
		return Number{kind: KindInteger, intVal: new(big.Int).Exp(a.bigInt(), exp, nil)}, nil
	}
	return FromFloat(math.Pow(a.Float64(), b.Float64())), nil
}

// Factorial returns a!. The operand must be a non-negative Integer, else
// FactorialDomainError. maxOperand bounds the operand magnitude, since the
// product grows superexponentially; zero or negative means unbounded.
func Factorial(a Number, maxOperand int64) (Number, error) {
	if a.kind != KindInteger || a.Sign() < 0 {
		return Number{}, NewFactorialDomainError(a)
	}
	v := a.bigInt()
	if maxOperand > 0 && (!v.IsInt64() || v.Int64() > maxOperand) {
		return Number{}, NewResourceLimitError(
			fmt.Sprintf("factorial operand %s exceeds the limit of %d", v, maxOperand))
	}
	if !v.IsInt64() {
		return Number{}, NewResourceLimitError(fmt.Sprintf("factorial operand %s is too large", v))
	}
	return Number{kind: KindInteger, intVal: new(big.Int).MulRange(1, v.Int64())}, nil
}
