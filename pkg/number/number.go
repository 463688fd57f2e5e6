// Package number implements the calculator's numeric tower: exact
// arbitrary-precision integers and double-precision decimals, with automatic
// integer-to-decimal promotion and one dispatch helper per arithmetic operator.
package number

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind represents the variant of a Number.
type Kind int

const (
	KindInteger Kind = iota // arbitrary-precision signed integer
	KindDecimal             // float64
)

// String returns the kind name as used in API payloads.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// Number represents a calculator value. It uses a tagged union approach:
// exactly one of the payload fields is meaningful, selected by kind.
// Numbers are immutable; arithmetic always allocates fresh results and the
// big.Int payload is copied at every boundary so callers can never alias it.
// The zero Number is Integer 0.
type Number struct {
	kind   Kind
	intVal *big.Int // nil is treated as zero
	decVal float64
}

// FromInt creates an exact integer Number.
func FromInt(v int64) Number {
	return Number{kind: KindInteger, intVal: big.NewInt(v)}
}

// FromBigInt creates an exact integer Number, copying v.
func FromBigInt(v *big.Int) Number {
	return Number{kind: KindInteger, intVal: new(big.Int).Set(v)}
}

// FromFloat creates a decimal Number.
func FromFloat(v float64) Number {
	return Number{kind: KindDecimal, decVal: v}
}

// Parse converts a numeric literal into a Number. Literals without a decimal
// point or exponent become exact Integers of any magnitude; everything else is
// parsed as a float64 Decimal. Forms like "4." and ".5" are valid decimals.
func Parse(s string) (Number, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, ok := new(big.Int).SetString(s, 10); ok {
			return Number{kind: KindInteger, intVal: i}, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number literal %q", s)
	}
	return FromFloat(f), nil
}

// Kind returns the number's variant.
func (n Number) Kind() Kind {
	return n.kind
}

// IsInteger returns true for the exact integer variant.
func (n Number) IsInteger() bool {
	return n.kind == KindInteger
}

// IsDecimal returns true for the float64 variant.
func (n Number) IsDecimal() bool {
	return n.kind == KindDecimal
}

// bigInt returns the integer payload without copying, mapping nil to zero.
// Callers must not mutate the result.
func (n Number) bigInt() *big.Int {
	if n.intVal == nil {
		return new(big.Int)
	}
	return n.intVal
}

// AsBigInt returns a copy of the integer payload. Panics if not an Integer.
func (n Number) AsBigInt() *big.Int {
	if n.kind != KindInteger {
		panic(fmt.Sprintf("AsBigInt called on %s value", n.kind))
	}
	return new(big.Int).Set(n.bigInt())
}

// Float64 returns the value as a float64. Integers round to the nearest
// representable float and overflow to infinity beyond the float64 range.
func (n Number) Float64() float64 {
	if n.kind == KindInteger {
		f, _ := new(big.Float).SetInt(n.bigInt()).Float64()
		return f
	}
	return n.decVal
}

// Int64 returns the value as an int64. Decimals truncate toward zero.
// Returns an error for NaN, infinities, and values outside the int64 range.
func (n Number) Int64() (int64, error) {
	if n.kind == KindInteger {
		if !n.bigInt().IsInt64() {
			return 0, fmt.Errorf("integer %s overflows int64", n.bigInt())
		}
		return n.bigInt().Int64(), nil
	}
	if math.IsNaN(n.decVal) || math.IsInf(n.decVal, 0) {
		return 0, fmt.Errorf("cannot convert %s to int64", n)
	}
	t := math.Trunc(n.decVal)
	// 2^63 and -2^63 are exactly representable as float64.
	if t < -9223372036854775808 || t >= 9223372036854775808 {
		return 0, fmt.Errorf("decimal %s overflows int64", n)
	}
	return int64(t), nil
}

// Int32 returns the value as an int32, with the same truncation rules as Int64.
func (n Number) Int32() (int32, error) {
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d overflows int32", v)
	}
	return int32(v), nil
}

// Sign returns -1, 0, or +1 by the sign of the value. The sign of NaN is 0.
func (n Number) Sign() int {
	if n.kind == KindInteger {
		return n.bigInt().Sign()
	}
	switch {
	case n.decVal > 0:
		return 1
	case n.decVal < 0:
		return -1
	default:
		return 0
	}
}

// IsZero reports whether the value is exactly zero.
func (n Number) IsZero() bool {
	if n.kind == KindInteger {
		return n.bigInt().Sign() == 0
	}
	return n.decVal == 0
}

// Equal tests numeric equality across variants: Integer 2 equals Decimal 2.0.
// NaN is not equal to anything, itself included.
func (n Number) Equal(other Number) bool {
	if n.kind == KindInteger && other.kind == KindInteger {
		return n.bigInt().Cmp(other.bigInt()) == 0
	}
	if n.kind == KindDecimal && math.IsNaN(n.decVal) {
		return false
	}
	if other.kind == KindDecimal && math.IsNaN(other.decVal) {
		return false
	}
	return n.toBigFloat().Cmp(other.toBigFloat()) == 0
}

// toBigFloat lifts the value into big.Float for exact cross-variant
// comparison. Callers must rule out NaN first; big.NewFloat panics on it.
func (n Number) toBigFloat() *big.Float {
	if n.kind == KindInteger {
		return new(big.Float).SetInt(n.bigInt())
	}
	return big.NewFloat(n.decVal)
}

// String renders the value the way the REPL prints it: exact digits for
// Integers, shortest round-trip formatting for Decimals.
func (n Number) String() string {
	if n.kind == KindInteger {
		return n.bigInt().String()
	}
	return strconv.FormatFloat(n.decVal, 'g', -1, 64)
}

// MarshalJSON emits Integers as raw JSON numbers of any magnitude and
// Decimals as float64 numbers. NaN and the infinities, which JSON cannot
// carry as numbers, are emitted as the strings "NaN", "Infinity", and
// "-Infinity".
func (n Number) MarshalJSON() ([]byte, error) {
	if n.kind == KindInteger {
		return []byte(n.bigInt().String()), nil
	}
	switch {
	case math.IsNaN(n.decVal):
		return []byte(`"NaN"`), nil
	case math.IsInf(n.decVal, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(n.decVal, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(n.decVal)
}
