package integration

import (
	"net/http"
	"testing"
)

func TestEvaluateArithmetic(t *testing.T) {
	requireServer(t)

	tests := []struct {
		expr string
		kind string
		text string
	}{
		{"42", "integer", "42"},
		{"(3 + 4 * (2 - (3 + 1) * 5 + 3) - 6) * 2 + 4", "integer", "-122"},
		{"4/2", "decimal", "2"},
		{"2^3^2", "integer", "512"},
		{"4! - 3!", "integer", "18"},
		{"-(+(-5*-5))", "integer", "-25"},
		{"2×3÷4", "decimal", "1.5"},
		{"sqrt(16)", "decimal", "4"},
		{"max(1,2)", "decimal", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assertResult(t, evaluateOnce(t, tt.expr), tt.kind, tt.text)
		})
	}
}

func TestEvaluateBigIntegers(t *testing.T) {
	requireServer(t)

	assertResult(t, evaluateOnce(t, "2^100"), "integer", "1267650600228229401496703205376")
	assertResult(t, evaluateOnce(t, "21!"), "integer", "51090942171709440000")
}

func TestEvaluateConstants(t *testing.T) {
	requireServer(t)

	assertResult(t, evaluateOnce(t, "cos 0"), "decimal", "1")
	assertResult(t, evaluateOnce(t, "sin(pi/2)+cos(0)"), "decimal", "2")
}

func TestEvaluateIsStateless(t *testing.T) {
	requireServer(t)

	// Assignments on the one-shot endpoint must not leak between requests.
	er := evaluateOnce(t, "x=5")
	if er.Status != http.StatusOK {
		t.Fatalf("assignment failed with status %d", er.Status)
	}
	assertResult(t, evaluateOnce(t, "x"), "decimal", "0")
}

func TestEvaluateErrors(t *testing.T) {
	requireServer(t)

	tests := []struct {
		name       string
		expr       string
		httpStatus int
		errStatus  string
	}{
		{"division by zero", "1/0", 422, "DIVISION_BY_ZERO"},
		{"negative factorial", "(-1)!", 422, "FACTORIAL_DOMAIN_ERROR"},
		{"assignment to literal", "3=5", 422, "NO_VARIABLE_FOR_ASSIGNMENT"},
		{"trailing operator", "3+", 422, "MALFORMED_EXPRESSION"},
		{"unclosed bracket", "(3+4", 422, "UNSUPPORTED_TOKEN"},
		{"unknown character", "2$2", 400, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEvalError(t, evaluateOnce(t, tt.expr), tt.httpStatus, tt.errStatus)
		})
	}
}
