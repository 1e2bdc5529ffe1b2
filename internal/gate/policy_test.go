// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gate

import "testing"

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.co", true},
		{"first.last@example.org", true},
		{"  padded@example.com  ", true},
		{"a@b", false},
		{"a b@c.com", false},
		{"@b.co", false},
		{"a@.co", false},
		{"a@b.", false},
		{"a@@b.co", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidEmail(tt.in); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"all classes", "Abcdef1!", true},
		{"longer", "Secur3_Passw0rd+", true},
		{"trimmed", "  Abcdef1!  ", true},
		{"no uppercase", "abcdef1!", false},
		{"no digit", "Abcdefg!", false},
		{"no special", "Abcdefg1", false},
		{"no lowercase", "ABCDEF1!", false},
		{"too short", "Abc1!", false},
		{"char outside set", "Abcdef1!-", false},
		{"inner space", "Abc def1!", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPassword(tt.in); got != tt.want {
				t.Errorf("ValidPassword(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPolicyMessages(t *testing.T) {
	var p FormatPolicy
	if err := p.CheckEmail("nope"); err == nil || err.Error() != MsgInvalidEmail {
		t.Errorf("CheckEmail error = %v, want %q", err, MsgInvalidEmail)
	}
	if err := p.CheckPassword("nope"); err == nil || err.Error() != MsgInvalidPassword {
		t.Errorf("CheckPassword error = %v, want %q", err, MsgInvalidPassword)
	}
	if err := p.CheckEmail("a@b.co"); err != nil {
		t.Errorf("CheckEmail valid: %v", err)
	}
	if err := p.CheckPassword("Abcdef1!"); err != nil {
		t.Errorf("CheckPassword valid: %v", err)
	}
}
