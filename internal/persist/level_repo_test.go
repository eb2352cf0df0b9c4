package persist

import (
	"bytes"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Kitchen", "kitchen"},
		{"  The Cellar -- Part 2!", "the-cellar-part-2"},
		{"STRASSE", "strasse"},
		{"Café Corner", "café-corner"},
		{"貓與狗", "貓與狗"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugMatchesAcrossForms(t *testing.T) {
	composed := "Café"
	decomposed := "CAFÉ"
	if Slug(composed) != Slug(decomposed) {
		t.Errorf("%q vs %q", Slug(composed), Slug(decomposed))
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte(`{"entities":[]}`))
	b := Digest([]byte(`{"entities":[]}`))
	c := Digest([]byte(`{"entities": []}`))
	if len(a) != 32 {
		t.Fatalf("digest length %d, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("same body should give same digest")
	}
	if bytes.Equal(a, c) {
		t.Error("different bodies should differ")
	}
}
