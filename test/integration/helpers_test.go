package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// testServer holds the base URL of a running calculator instance for tests.
var testServer string

func init() {
	testServer = os.Getenv("RPNKIT_URL")
	if testServer == "" {
		testServer = "http://localhost:8787"
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
	testServer = strings.TrimRight(testServer, "/")
}

// requireServer skips the test when no calculator server is reachable. Run
// "rpnkit serve" (or set RPNKIT_URL) before running this suite.
func requireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(testServer + "/healthz")
	if err != nil {
		t.Skipf("calculator server not running at %s: %v", testServer, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("calculator server at %s returned status %d on /healthz", testServer, resp.StatusCode)
	}
}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return testServer + "/v1/" + path
}

// evalResult represents the outcome of one evaluate call.
type evalResult struct {
	Status      int
	Kind        string
	Text        string
	Evaluations int64
	ErrMessage  string
	ErrStatus   string
	Raw         map[string]interface{}
}

// postEvaluate sends an expression to the given evaluate endpoint and decodes
// the response, success or error.
func postEvaluate(t *testing.T, path, expression string) evalResult {
	t.Helper()

	data, _ := json.Marshal(map[string]interface{}{"expression": expression})
	resp, err := http.Post(apiURL(path), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("evaluate HTTP error: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("evaluate decode error: %v", err)
	}

	er := evalResult{Status: resp.StatusCode, Raw: raw}
	if result, ok := raw["result"].(map[string]interface{}); ok {
		er.Kind, _ = result["kind"].(string)
		er.Text, _ = result["text"].(string)
	}
	if n, ok := raw["evaluations"].(float64); ok {
		er.Evaluations = int64(n)
	}
	if errMap, ok := raw["error"].(map[string]interface{}); ok {
		er.ErrMessage, _ = errMap["message"].(string)
		er.ErrStatus, _ = errMap["status"].(string)
	}
	return er
}

// evaluateOnce evaluates an expression against the stateless endpoint.
func evaluateOnce(t *testing.T, expression string) evalResult {
	t.Helper()
	return postEvaluate(t, "evaluate", expression)
}

// evaluateIn evaluates an expression inside an existing session.
func evaluateIn(t *testing.T, sessionID, expression string) evalResult {
	t.Helper()
	return postEvaluate(t, "sessions/"+sessionID+"/evaluate", expression)
}

// createSession creates a fresh calculator session and returns its ID.
func createSession(t *testing.T) string {
	t.Helper()

	resp, err := http.Post(apiURL("sessions"), "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("createSession HTTP error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("createSession failed with status %d", resp.StatusCode)
	}

	var created map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("createSession decode error: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("createSession: no session id in response: %v", created)
	}
	return id
}

// deleteSession removes a session by ID (cleanup).
func deleteSession(t *testing.T, id string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodDelete, apiURL("sessions/"+id), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Logf("deleteSession warning: %v", err)
		return
	}
	resp.Body.Close()
}

// getVariables fetches the session's variable bindings keyed by name. Each
// value is a map with "kind", "value", and "text" fields.
func getVariables(t *testing.T, sessionID string) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(apiURL("sessions/" + sessionID + "/variables"))
	if err != nil {
		t.Fatalf("getVariables HTTP error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("getVariables failed with status %d", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("getVariables decode error: %v", err)
	}
	vars, _ := raw["variables"].(map[string]interface{})
	return vars
}

// putVariable binds a variable via the variables API and returns the response
// status plus decoded body.
func putVariable(t *testing.T, sessionID, name string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, apiURL("sessions/"+sessionID+"/variables/"+name), bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("putVariable HTTP error: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("putVariable decode error: %v", err)
	}
	return resp.StatusCode, raw
}

// assertResult checks a successful evaluation for the expected kind and text.
func assertResult(t *testing.T, er evalResult, kind, text string) {
	t.Helper()
	if er.Status != http.StatusOK {
		t.Fatalf("expected status 200 but got %d; error: %s %s", er.Status, er.ErrStatus, er.ErrMessage)
	}
	if er.Kind != kind {
		t.Errorf("expected kind %q but got %q", kind, er.Kind)
	}
	if er.Text != text {
		t.Errorf("expected result %q but got %q", text, er.Text)
	}
}

// assertEvalError checks that evaluation failed with the given HTTP status and
// error status code.
func assertEvalError(t *testing.T, er evalResult, httpStatus int, errStatus string) {
	t.Helper()
	if er.Status != httpStatus {
		t.Fatalf("expected status %d but got %d; raw: %v", httpStatus, er.Status, er.Raw)
	}
	if er.ErrStatus != errStatus {
		t.Errorf("expected error status %q but got %q (message: %s)", errStatus, er.ErrStatus, er.ErrMessage)
	}
}
