package words

import (
	"math/rand"
	"strings"
	"testing"
)

func TestHint_RevealsFirstCharacterOnly(t *testing.T) {
	hint := Hint("apple")
	if hint != "a _ _ _ _" {
		t.Errorf("Expected hint %q, got %q", "a _ _ _ _", hint)
	}
}

func TestHint_PreservesWordBoundaries(t *testing.T) {
	hint := Hint("fire truck")
	// The space between words must survive as a separator, not be masked.
	if strings.Count(hint, "_") != 8 {
		t.Errorf("Expected 8 masked characters, got %d in %q", strings.Count(hint, "_"), hint)
	}
	if !strings.HasPrefix(hint, "f ") {
		t.Errorf("Expected hint to start with the first letter, got %q", hint)
	}
	// Nothing beyond the first character may be revealed.
	for _, ch := range "iretuck" {
		if strings.Contains(hint, string(ch)) {
			t.Errorf("Hint %q leaks character %q", hint, string(ch))
		}
	}
}

func TestPick_CoversList(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	list := []Word{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[Pick(r, list).Text] = true
	}
	if len(seen) != len(list) {
		t.Errorf("Expected all %d words to be pickable, saw %d", len(list), len(seen))
	}
}

func TestDefaultList_HasDifficulties(t *testing.T) {
	for _, w := range DefaultList {
		if w.Text == "" || w.Difficulty == "" {
			t.Fatalf("Catalog entry %+v is missing a field", w)
		}
	}
}
