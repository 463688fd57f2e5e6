package integration

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	requireServer(t)

	id := createSession(t)

	// The session should be visible via GET.
	resp, err := http.Get(apiURL("sessions/" + id))
	if err != nil {
		t.Fatalf("get session HTTP error: %v", err)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		resp.Body.Close()
		t.Fatalf("get session decode error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session failed with status %d: %v", resp.StatusCode, got)
	}
	if got["id"] != id {
		t.Errorf("expected session id %q but got %v", id, got["id"])
	}

	deleteSession(t, id)

	// After deletion the session is gone.
	er := evaluateIn(t, id, "1+1")
	assertEvalError(t, er, 404, "NOT_FOUND")
}

func TestSessionStatePersists(t *testing.T) {
	requireServer(t)

	id := createSession(t)
	defer deleteSession(t, id)

	er := evaluateIn(t, id, "x=10;x^2")
	assertResult(t, er, "integer", "100")
	if er.Evaluations != 1 {
		t.Errorf("expected 1 evaluation but got %d", er.Evaluations)
	}

	// x survives into the next request: 10! - 9! = 3265920.
	er = evaluateIn(t, id, "x!-( x-1)!")
	assertResult(t, er, "integer", "3265920")
	if er.Evaluations != 2 {
		t.Errorf("expected 2 evaluations but got %d", er.Evaluations)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	requireServer(t)

	a := createSession(t)
	defer deleteSession(t, a)
	b := createSession(t)
	defer deleteSession(t, b)

	assertResult(t, evaluateIn(t, a, "x=41+1"), "integer", "42")

	// Unset variables read as decimal zero in the other session.
	assertResult(t, evaluateIn(t, b, "x"), "decimal", "0")
}

func TestSessionVariablesEndpoint(t *testing.T) {
	requireServer(t)

	id := createSession(t)
	defer deleteSession(t, id)

	assertResult(t, evaluateIn(t, id, "radius = 5"), "integer", "5")

	vars := getVariables(t, id)
	if _, ok := vars["radius"]; !ok {
		t.Errorf("expected variable %q in %v", "radius", vars)
	}
	// Built-in constants are part of every session.
	if _, ok := vars["pi"]; !ok {
		t.Errorf("expected constant %q in %v", "pi", vars)
	}
}

func TestPutVariableRoundTrip(t *testing.T) {
	requireServer(t)

	id := createSession(t)
	defer deleteSession(t, id)

	// Exact integer binding, then exact factorial arithmetic on top of it.
	status, _ := putVariable(t, id, "n", map[string]interface{}{"integer": "20"})
	if status != http.StatusOK {
		t.Fatalf("putVariable failed with status %d", status)
	}
	assertResult(t, evaluateIn(t, id, "n!"), "integer", "2432902008176640000")

	status, _ = putVariable(t, id, "ratio", map[string]interface{}{"decimal": 1.5})
	if status != http.StatusOK {
		t.Fatalf("putVariable failed with status %d", status)
	}
	assertResult(t, evaluateIn(t, id, "ratio * 2"), "decimal", "3")
}

func TestPutVariableValidation(t *testing.T) {
	requireServer(t)

	id := createSession(t)
	defer deleteSession(t, id)

	tests := []struct {
		name    string
		varName string
		body    map[string]interface{}
	}{
		{"both kinds", "x", map[string]interface{}{"integer": "1", "decimal": 2.0}},
		{"neither kind", "x", map[string]interface{}{}},
		{"bad name", "2x", map[string]interface{}{"integer": "1"}},
		{"non-integer literal", "x", map[string]interface{}{"integer": "1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := putVariable(t, id, tt.varName, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("expected status 400 but got %d: %v", status, raw)
			}
		})
	}
}

func TestSessionNotFound(t *testing.T) {
	requireServer(t)

	assertEvalError(t, evaluateIn(t, "no-such-session", "1+1"), 404, "NOT_FOUND")
}
