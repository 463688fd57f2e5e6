package funcs

import "math"

// registerTrig registers the trigonometric and hyperbolic functions.
func (r *Registry) registerTrig() {
	r.unary("sin", math.Sin)
	r.unary("cos", math.Cos)
	r.unary("tan", math.Tan)
	r.unary("asin", math.Asin)
	r.unary("acos", math.Acos)
	r.unary("atan", math.Atan)
	r.unary("sinh", math.Sinh)
	r.unary("cosh", math.Cosh)
	r.unary("tanh", math.Tanh)
}

// registerLog registers the logarithmic and exponential functions.
// "log" is base 10, like "log10"; the natural logarithm is "ln".
func (r *Registry) registerLog() {
	r.unary("ln", math.Log)
	r.unary("log", math.Log10)
	r.unary("log10", math.Log10)
	r.unary("log2", math.Log2)
	r.unary("exp", math.Exp)
}

// registerRounding registers the rounding functions.
func (r *Registry) registerRounding() {
	r.unary("floor", math.Floor)
	r.unary("ceil", math.Ceil)
	r.unary("round", math.Round)
	r.unary("trunc", math.Trunc)
}

// registerNumeric registers the remaining numeric functions.
func (r *Registry) registerNumeric() {
	r.unary("abs", math.Abs)
	r.unary("sqrt", math.Sqrt)
	r.unary("cbrt", math.Cbrt)
	r.binary("max", math.Max)
	r.binary("min", math.Min)
}
