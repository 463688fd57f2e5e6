// Package funcs implements the calculator's built-in math function library.
// Functions operate on float64 operands and always produce float64 results,
// so every function application yields a Decimal regardless of operand kinds.
package funcs

import (
	"fmt"
	"sort"
	"strings"
)

// Func is a built-in function: a fixed-arity routine over float64 operands.
type Func struct {
	Name  string
	Arity int
	apply func(args []float64) float64
}

// Apply invokes the function after validating the argument count.
func (f *Func) Apply(args []float64) (float64, error) {
	if len(args) != f.Arity {
		return 0, fmt.Errorf("%s expects %d argument(s), got %d", f.Name, f.Arity, len(args))
	}
	return f.apply(args), nil
}

// Registry holds a function library keyed by lowercase name.
type Registry struct {
	funcs map[string]*Func
}

// newRegistry creates a registry with all built-in functions registered.
func newRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]*Func),
	}
	r.registerTrig()
	r.registerLog()
	r.registerRounding()
	r.registerNumeric()
	return r
}

// Register adds a function to the registry. Names resolve case-insensitively.
func (r *Registry) Register(f *Func) {
	r.funcs[strings.ToLower(f.Name)] = f
}

// Lookup finds a function by case-insensitive name.
func (r *Registry) Lookup(name string) (*Func, bool) {
	f, ok := r.funcs[strings.ToLower(name)]
	return f, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unary registers a one-argument function.
func (r *Registry) unary(name string, fn func(float64) float64) {
	r.Register(&Func{
		Name:  name,
		Arity: 1,
		apply: func(args []float64) float64 { return fn(args[0]) },
	})
}

// binary registers a two-argument function.
func (r *Registry) binary(name string, fn func(a, b float64) float64) {
	r.Register(&Func{
		Name:  name,
		Arity: 2,
		apply: func(args []float64) float64 { return fn(args[0], args[1]) },
	})
}

// registry is the fixed library every expression resolves against.
var registry = newRegistry()

// Lookup finds a built-in function by case-insensitive name. The lexer uses
// this to decide whether an identifier is a function or a variable.
func Lookup(name string) (*Func, bool) {
	return registry.Lookup(name)
}

// Names returns all built-in function names, sorted.
func Names() []string {
	return registry.Names()
}
