package ids

import "testing"

func TestNewShape(t *testing.T) {
	id := New(PrefixRelease)
	if len(id) != 11 {
		t.Fatalf("expected 11-char id, got %q (%d)", id, len(id))
	}
	if !Valid(id, PrefixRelease) {
		t.Fatalf("expected %q to be a valid %s id", id, PrefixRelease)
	}
	if Valid(id, PrefixTask) {
		t.Fatalf("expected %q not to validate against prefix %s", id, PrefixTask)
	}
}

func TestValidStudyID(t *testing.T) {
	cases := map[string]bool{
		"SD_00000001": true,
		"SD_000":      false,
		"SD_00000000": true,
		"sd_00000001": false,
		"":            false,
	}
	for id, want := range cases {
		if got := ValidStudyID(id); got != want {
			t.Errorf("ValidStudyID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New(PrefixTask)
		if seen[id] {
			t.Fatalf("generated duplicate id %q", id)
		}
		seen[id] = true
	}
}
