package model

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		wantErr  bool
	}{
		{"", true},
		{"ab", true},
		{"abc", false},
		{"riya.s", false},
		{"has space", true},
		{"tab\there", true},
	}

	for _, tt := range tests {
		err := ValidateUsername(tt.username)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
		}
	}
}

func TestValidateItemType(t *testing.T) {
	if err := ValidateItemType(ItemTypeLost); err != nil {
		t.Errorf("lost: %v", err)
	}
	if err := ValidateItemType(ItemTypeFound); err != nil {
		t.Errorf("found: %v", err)
	}
	for _, bad := range []string{"", "Lost", "stolen"} {
		if err := ValidateItemType(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestItemFilterNormalize(t *testing.T) {
	f := ItemFilter{}.Normalize()
	if f.Limit != DefaultListLimit {
		t.Errorf("expected default limit %d, got %d", DefaultListLimit, f.Limit)
	}

	f = ItemFilter{Limit: 10000, Offset: -3}.Normalize()
	if f.Limit != MaxListLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxListLimit, f.Limit)
	}
	if f.Offset != 0 {
		t.Errorf("expected offset 0, got %d", f.Offset)
	}
}

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		raw    string
		prefix string
		want   string
	}{
		{"", "+91", ""},
		{"   ", "+91", ""},
		{"9876543210", "+91", "+919876543210"},
		{"+919876543210", "+91", "+919876543210"},
		{"98765 43210", "+91", "+919876543210"},
		{"(987) 654-3210", "+91", "+919876543210"},
		{"09876543210", "+91", "+919876543210"},
		{"00919876543210", "+91", "+919876543210"},
		{"+44 20 7946 0958", "+91", "+442079460958"},
		{"9876543210", "", "+919876543210"},
		{"040123456", "+386", "+38640123456"},
	}

	for _, tt := range tests {
		got := NormalizeContact(tt.raw, tt.prefix)
		if got != tt.want {
			t.Errorf("NormalizeContact(%q, %q) = %q, want %q", tt.raw, tt.prefix, got, tt.want)
		}
	}
}

func TestWhatsAppLink(t *testing.T) {
	if got := WhatsAppLink("+91 98765-43210"); got != "https://wa.me/919876543210" {
		t.Errorf("unexpected link %q", got)
	}
	if got := WhatsAppLink("n/a"); got != "" {
		t.Errorf("expected empty link, got %q", got)
	}
}
