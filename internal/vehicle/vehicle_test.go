package vehicle

import "testing"

func TestNormalizeRegistration(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"gj01ab1234", "GJ01AB1234"},
		{" GJ 01 AB 1234 ", "GJ01AB1234"},
		{"Gj01Ab1234", "GJ01AB1234"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeRegistration(c.in); got != c.want {
			t.Fatalf("NormalizeRegistration(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidType(t *testing.T) {
	if !ValidType(TypeMoped) || !ValidType(TypeBike) {
		t.Fatalf("expected moped/bike valid")
	}
	if ValidType(Type("truck")) {
		t.Fatalf("expected truck invalid")
	}
}
