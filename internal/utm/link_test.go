package utm

import "testing"

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("https://shop.example.com/sale?ref=home", "news letter", "email", "spring&summer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://shop.example.com/sale?ref=home&utm_campaign=spring%26summer&utm_medium=email&utm_source=news+letter"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestBuildURLRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "ftp://files.example.com", "/relative/path", "https://"} {
		if _, err := BuildURL(base, "a", "b", "c"); err == nil {
			t.Fatalf("expected error for %q", base)
		}
	}
}
