package player

import "testing"

func TestNameKey_FoldsCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Ana  ":     "ana",
		"ANA":         "ana",
		"Mary   Jane": "mary jane",
		"ÉLODIE":      "élodie",
		"":            "",
		"   ":         "",
	}
	for input, want := range cases {
		if got := NameKey(input); got != want {
			t.Fatalf("NameKey(%q)=%q, want %q", input, got, want)
		}
	}
}

func TestValidate_RejectsBlankName(t *testing.T) {
	t.Parallel()

	p := Player{ID: "p1", GameID: "g1", Name: "   "}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
}
