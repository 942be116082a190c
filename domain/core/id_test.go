package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		hasError bool
	}{
		{NewRunID().String(), false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		_, err := ParseRunID(tt.input)
		if (err != nil) != tt.hasError {
			t.Errorf("ParseRunID(%q) error = %v, want error %v", tt.input, err, tt.hasError)
		}
	}
}

func TestHashPartsSeparatesFields(t *testing.T) {
	if HashParts("ab", "c") == HashParts("a", "bc") {
		t.Error("Expected different hashes for differently split parts")
	}
	if HashParts("x", "y") != HashParts("x", "y") {
		t.Error("Expected identical parts to hash identically")
	}
	if got := NewHash([]byte("abc")).Short(8); len(got) != 8 {
		t.Errorf("Expected 8 character short hash, got %q", got)
	}
}

func TestContractViolationClassification(t *testing.T) {
	err := NewContractError(ErrInconsistentColumns, "row 3 is missing column \"qty\"")
	if !IsContractViolation(err) {
		t.Errorf("Expected %v to be a contract violation", err)
	}
	if !errors.Is(err, ErrInconsistentColumns) {
		t.Errorf("Expected %v to wrap ErrInconsistentColumns", err)
	}
	if IsContractViolation(ErrReportNotFound) {
		t.Error("Not found must not classify as a contract violation")
	}
}
