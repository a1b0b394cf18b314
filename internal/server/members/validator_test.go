package members

import (
	"errors"
	"testing"

	"github.com/talkroom/talkroom/internal/common"
)

func TestValidateMemberID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "minimal length", id: "abc12", valid: true},
		{name: "maximal length", id: "abcdefghij12345", valid: true},
		{name: "mixed case", id: "Alice123", valid: true},
		{name: "too short", id: "ab1", valid: false},
		{name: "too long", id: "abcdefghij123456", valid: false},
		{name: "underscore", id: "alice_123", valid: false},
		{name: "space", id: "alice 123", valid: false},
		{name: "empty", id: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMemberID(tt.id)
			if tt.valid && err != nil {
				t.Fatalf("expected %q valid, got %v", tt.id, err)
			}
			if !tt.valid && !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected ErrValidation for %q, got %v", tt.id, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "policy minimum", password: "Passw0rd", valid: true},
		{name: "with symbols", password: "Passw0rd!", valid: true},
		{name: "too short", password: "Pw1", valid: false},
		{name: "no uppercase", password: "passw0rd", valid: false},
		{name: "no digit", password: "Password", valid: false},
		{name: "empty", password: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid && err != nil {
				t.Fatalf("expected %q valid, got %v", tt.password, err)
			}
			if !tt.valid && !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected ErrValidation for %q, got %v", tt.password, err)
			}
		})
	}
}
