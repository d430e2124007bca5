package uuid

import "testing"

func TestNewGeneratesValidV4(t *testing.T) {
	id := New()

	if !IsValid(id) {
		t.Errorf("Expected valid UUID v4, got %q", id)
	}
}

func TestShortLength(t *testing.T) {
	s := Short()

	if len(s) != 8 {
		t.Errorf("Expected 8-character suffix, got %q", s)
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-a-uuid",
		"123e4567-e89b-12d3-a456-426614174000", // v1, not v4
	}

	for _, c := range cases {
		if err := Validate(c); err == nil {
			t.Errorf("Expected validation error for %q", c)
		}
	}
}
