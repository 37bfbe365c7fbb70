package webhook

import "testing"

func TestResolveByDigitFragment(t *testing.T) {
	r, err := NewUnitResolver(`{"23629360":"Ipiranga"}`, "SCS")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	cases := []struct {
		display string
		want    string
	}{
		{"+55 11 2362-9360", "Ipiranga"},
		{"551123629360", "Ipiranga"},
		{"+55 11 4002-8922", "SCS"},
		{"", "SCS"},
	}
	for _, tc := range cases {
		if got := r.Resolve(tc.display); got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.display, got, tc.want)
		}
	}
}

func TestResolveEmptyMapAlwaysFallback(t *testing.T) {
	r, err := NewUnitResolver("", "SCS")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if got := r.Resolve("+55 11 2362-9360"); got != "SCS" {
		t.Fatalf("Resolve = %q, want fallback", got)
	}
}

func TestResolveBadJSON(t *testing.T) {
	if _, err := NewUnitResolver("{not json", "SCS"); err == nil {
		t.Fatal("want parse error")
	}
}

func TestResolveNilResolver(t *testing.T) {
	var r *UnitResolver
	if got := r.Resolve("5511"); got != "" {
		t.Fatalf("nil resolver = %q", got)
	}
}
