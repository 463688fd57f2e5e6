package number

import "errors"

// Error tag constants classifying evaluation errors.
const (
	TagMalformedExpression     = "MalformedExpression"
	TagDivisionByZero          = "DivisionByZero"
	TagFactorialDomainError    = "FactorialDomainError"
	TagNoVariableForAssignment = "NoVariableForAssignment"
	TagUnsupportedToken        = "UnsupportedToken"
	TagResourceLimitError      = "ResourceLimitError"
	TagInvalidExpression       = "InvalidExpression"
)

// Error represents a recoverable evaluation error with a message and tags.
// Every failure the pipeline can produce for well-formed API use is an
// *Error; panics are reserved for corrupted postfix sequences that indicate
// a bug in the transformer itself.
type Error struct {
	Message string
	Tags    []string
}

// Error implements the error interface. The message is user-facing: the REPL
// prints it verbatim after an "Error: " prefix.
func (e *Error) Error() string {
	return e.Message
}

// HasTag returns true if the error has the specified tag.
func (e *Error) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasTag reports whether err is an *Error carrying the given tag.
func HasTag(err error, tag string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.HasTag(tag)
	}
	return false
}

// Common error constructors.

// NewMalformedExpressionError signals a syntactically incomplete or garbled
// expression: an operand-stack underflow or a leftover/missing final value.
func NewMalformedExpressionError(msg string) *Error {
	return &Error{Message: msg, Tags: []string{TagMalformedExpression}}
}

// NewDivisionByZeroError signals division by exact zero, or a zero base
// raised to a negative exponent.
func NewDivisionByZeroError() *Error {
	return &Error{Message: "division by zero", Tags: []string{TagDivisionByZero}}
}

// NewFactorialDomainError signals a factorial of a negative or non-integer
// operand.
func NewFactorialDomainError(operand Number) *Error {
	return &Error{
		Message: "factorial of " + operand.String() + ": operand must be a non-negative integer",
		Tags:    []string{TagFactorialDomainError},
	}
}

// NewNoVariableForAssignmentError signals an assignment with no resolvable
// variable on its left side.
func NewNoVariableForAssignmentError() *Error {
	return &Error{
		Message: "assignment requires a variable on its left side",
		Tags:    []string{TagNoVariableForAssignment},
	}
}

// NewUnsupportedTokenError signals a token the evaluator does not know how to
// interpret, such as a stray bracket surviving an unbalanced expression.
func NewUnsupportedTokenError(token string) *Error {
	return &Error{
		Message: "unsupported token " + token + " in evaluation",
		Tags:    []string{TagUnsupportedToken, TagMalformedExpression},
	}
}

// NewResourceLimitError signals an operand that would exceed a configured
// computation limit.
func NewResourceLimitError(msg string) *Error {
	return &Error{Message: msg, Tags: []string{TagResourceLimitError}}
}

// NewInvalidExpressionError signals source text the lexer rejected.
func NewInvalidExpressionError(msg string) *Error {
	return &Error{Message: msg, Tags: []string{TagInvalidExpression}}
}
