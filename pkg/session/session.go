// Package session binds expression compilation to a long-lived variable
// environment, so that assignments made by one evaluation are visible to
// the next.
package session

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rpnkit/rpnkit/pkg/number"
	"github.com/rpnkit/rpnkit/pkg/rpn"
)

// eulerGamma is the Euler-Mascheroni constant to float64 precision.
const eulerGamma = 0.57721566490153286060

// Environment is a thread-safe mapping from lowercase variable name to the
// last value assigned to it. New environments come pre-seeded with the
// named constants.
type Environment struct {
	mu   sync.RWMutex
	vars map[string]number.Number
}

// NewEnvironment creates an environment holding only the built-in constants.
func NewEnvironment() *Environment {
	env := &Environment{vars: make(map[string]number.Number)}
	for name, v := range map[string]float64{
		"pi":    math.Pi,
		"e":     math.E,
		"tau":   2 * math.Pi,
		"phi":   math.Phi,
		"gamma": eulerGamma,
	} {
		env.vars[name] = number.FromFloat(v)
	}
	return env
}

// fold normalizes a variable name to its storage key.
func fold(name string) string {
	return strings.ToLower(name)
}

// Get retrieves a variable value.
func (e *Environment) Get(name string) (number.Number, bool) {
	e.mu.RLock()
	v, ok := e.vars[fold(name)]
	e.mu.RUnlock()
	return v, ok
}

// Set binds a variable, creating it if necessary.
func (e *Environment) Set(name string, v number.Number) {
	e.mu.Lock()
	e.vars[fold(name)] = v
	e.mu.Unlock()
}

// SetInt binds a variable to an exact integer value.
func (e *Environment) SetInt(name string, v int64) {
	e.Set(name, number.FromInt(v))
}

// SetFloat binds a variable to a decimal value.
func (e *Environment) SetFloat(name string, v float64) {
	e.Set(name, number.FromFloat(v))
}

// Ensure registers name with a Decimal zero default unless it is already
// bound. Seeded constants and earlier assignments keep their values.
func (e *Environment) Ensure(name string) {
	key := fold(name)
	e.mu.Lock()
	if _, ok := e.vars[key]; !ok {
		e.vars[key] = number.FromFloat(0)
	}
	e.mu.Unlock()
}

// Names returns all bound variable names in sorted order.
func (e *Environment) Names() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]number.Number {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]number.Number, len(e.vars))
	for name, v := range e.vars {
		out[name] = v
	}
	return out
}

// Len reports the number of bound variables, constants included.
func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vars)
}

// Session couples an Environment with the limits applied to every
// expression compiled through it.
type Session struct {
	env    *Environment
	limits rpn.Limits
}

// New creates a session with a fresh environment.
func New(limits rpn.Limits) *Session {
	return &Session{env: NewEnvironment(), limits: limits}
}

// Environment returns the session's variable environment.
func (s *Session) Environment() *Environment {
	return s.env
}

// Limits returns the resource limits applied at compile time.
func (s *Session) Limits() rpn.Limits {
	return s.limits
}

// Compile parses source against the session environment. The returned
// expression may be evaluated repeatedly and observes variable updates
// made between evaluations.
func (s *Session) Compile(source string) (*rpn.Expr, error) {
	return rpn.Compile(source, s.env, s.limits)
}

// Eval compiles and immediately evaluates source.
func (s *Session) Eval(source string) (number.Number, error) {
	e, err := s.Compile(source)
	if err != nil {
		return number.Number{}, err
	}
	return e.Evaluate()
}
