package testing

import "testing"

// TxResult is the outcome of submitting an operation through the env.
type TxResult struct {
	// Code is the engine result code name (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the operation was applied.
	Success bool

	// Message provides additional details about the result.
	Message string
}

// RequireCode fails the test unless the result carries the expected code.
func (r TxResult) RequireCode(t *testing.T, code string) {
	t.Helper()
	if r.Code != code {
		t.Fatalf("expected %s, got %s (%s)", code, r.Code, r.Message)
	}
}

// RequireSuccess fails the test unless the operation applied.
func (r TxResult) RequireSuccess(t *testing.T) {
	t.Helper()
	if !r.Success {
		t.Fatalf("expected tesSUCCESS, got %s (%s)", r.Code, r.Message)
	}
}
