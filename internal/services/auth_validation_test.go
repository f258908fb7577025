package services

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"short1", false},
		{"noDigitsHere", false},
		{"longenough1", true},
		{"12345678", true},
		{"", false},
	}

	for _, tc := range cases {
		err := validatePassword(tc.password)
		if tc.valid && err != nil {
			t.Errorf("password %q should be accepted, got %v", tc.password, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("password %q should be rejected", tc.password)
		}
	}
}

func TestEmailRegex(t *testing.T) {
	valid := []string{"user@example.com", "a.b+tag@sub.domain.org"}
	invalid := []string{"", "plain", "missing@tld", "@example.com", "user@.com"}

	for _, email := range valid {
		if !emailRegex.MatchString(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	for _, email := range invalid {
		if emailRegex.MatchString(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}
