package user

import "testing"

func TestNormalizePIN(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1234", "1234", true},
		{" 123456 ", "123456", true},
		{"123", "", false},
		{"1234567", "", false},
		{"12a4", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizePIN(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizePIN(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestMatchPIN(t *testing.T) {
	if !MatchPIN("4321", " 4321 ") {
		t.Fatalf("expected match with surrounding whitespace")
	}
	if MatchPIN("4321", "1234") {
		t.Fatalf("expected mismatch")
	}
	if MatchPIN("4321", "43x1") {
		t.Fatalf("expected mismatch for malformed pin")
	}
}
