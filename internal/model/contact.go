package model

import "strings"

// DefaultContactPrefix is prepended to local phone numbers.
const DefaultContactPrefix = "+91"

// NormalizeContact turns a user-entered phone number into international form.
// Formatting characters are removed. Numbers that already start with "+" are
// kept as is; otherwise a leading trunk zero is dropped and prefix is added.
func NormalizeContact(raw, prefix string) string {
	if prefix == "" {
		prefix = DefaultContactPrefix
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			continue
		}
		b.WriteRune(r)
	}
	contact := b.String()

	if contact == "" || strings.HasPrefix(contact, "+") {
		return contact
	}
	if digits := strings.TrimPrefix(prefix, "+"); strings.HasPrefix(contact, "00"+digits) {
		return "+" + strings.TrimPrefix(contact, "00")
	}
	contact = strings.TrimPrefix(contact, "0")
	return prefix + contact
}

// WhatsAppLink returns a wa.me chat link for the contact, or "" when the
// contact has no digits.
func WhatsAppLink(contact string) string {
	var b strings.Builder
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "https://wa.me/" + b.String()
}
