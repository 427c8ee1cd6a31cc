package models

import "testing"

func TestIdentifierComparands(t *testing.T) {
	t.Setenv("PHONE_DEFAULT_REGION", "IN")

	cases := []struct {
		in      string
		lowered string
		phone   string
	}{
		{"User@Example.COM", "user@example.com", "User@Example.COM"},
		{"+919876543210", "+919876543210", "+919876543210"},
		// Local-format input must normalize to the stored E.164 form.
		{"98765 43210", "98765 43210", "+919876543210"},
		{"  someuser  ", "someuser", "someuser"},
	}
	for _, tc := range cases {
		lowered, phone := identifierComparands(tc.in)
		if lowered != tc.lowered || phone != tc.phone {
			t.Fatalf("identifierComparands(%q) = (%q, %q), expected (%q, %q)",
				tc.in, lowered, phone, tc.lowered, tc.phone)
		}
	}
}

func TestSplitContactName(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
	}{
		{"Aung Kyaw", "Aung", "Kyaw"},
		{"Aung Kyaw Moe", "Aung", "Kyaw Moe"},
		{"Aung", "Aung", ""},
		{"  Aung Kyaw  ", "Aung", "Kyaw"},
		{"", "", ""},
		{"   ", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitContactName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("SplitContactName(%q) = (%q, %q), expected (%q, %q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}
