// Package words holds the static word catalog and the hint masking rules.
// The catalog is plain configuration, the round logic only ever picks from it
// uniformly at random.
package words

import (
	"math/rand"
	"strings"
)

type Word struct {
	Text       string `json:"word"`
	Difficulty string `json:"difficulty"`
}

// DefaultList is the built-in catalog. The seeding utility mirrors it into
// the durable store for cross-process visibility; gameplay reads this copy.
var DefaultList = []Word{
	{Text: "apple", Difficulty: "easy"},
	{Text: "banana", Difficulty: "easy"},
	{Text: "cat", Difficulty: "easy"},
	{Text: "dog", Difficulty: "easy"},
	{Text: "fish", Difficulty: "easy"},
	{Text: "star", Difficulty: "easy"},
	{Text: "ball", Difficulty: "easy"},
	{Text: "book", Difficulty: "easy"},

	{Text: "house", Difficulty: "medium"},
	{Text: "car", Difficulty: "medium"},
	{Text: "tree", Difficulty: "medium"},
	{Text: "sun", Difficulty: "medium"},
	{Text: "flower", Difficulty: "medium"},
	{Text: "camera", Difficulty: "medium"},
	{Text: "scissors", Difficulty: "medium"},
	{Text: "robot", Difficulty: "medium"},
	{Text: "television", Difficulty: "medium"},
	{Text: "horse", Difficulty: "medium"},
	{Text: "chair", Difficulty: "medium"},
	{Text: "door", Difficulty: "medium"},

	{Text: "computer", Difficulty: "hard"},
	{Text: "mountain", Difficulty: "hard"},
	{Text: "butterfly", Difficulty: "hard"},
	{Text: "restaurant", Difficulty: "hard"},
	{Text: "adventure", Difficulty: "hard"},
	{Text: "lighthouse", Difficulty: "hard"},
	{Text: "fire truck", Difficulty: "hard"},
	{Text: "windmill", Difficulty: "hard"},
	{Text: "astronaut helmet", Difficulty: "hard"},
	{Text: "treasure chest", Difficulty: "hard"},
	{Text: "haunted house", Difficulty: "hard"},
	{Text: "roller coaster", Difficulty: "hard"},

	{Text: "time machine", Difficulty: "very hard"},
	{Text: "underwater kingdom", Difficulty: "very hard"},
	{Text: "fire tornado", Difficulty: "very hard"},
	{Text: "giant robot", Difficulty: "very hard"},
	{Text: "alien spaceship", Difficulty: "very hard"},
	{Text: "ice palace", Difficulty: "very hard"},
	{Text: "ghost train", Difficulty: "very hard"},
	{Text: "dragon king", Difficulty: "very hard"},
}

// Pick returns a uniformly random word from list using r.
func Pick(r *rand.Rand, list []Word) Word {
	return list[r.Intn(len(list))]
}

// Hint renders the masked form shown to non-drawing players: the first
// character is revealed, spaces survive as word separators, everything else
// becomes an underscore. Cells are joined with single spaces.
func Hint(text string) string {
	cells := make([]string, 0, len(text))
	for i, ch := range text {
		switch {
		case i == 0:
			cells = append(cells, string(ch))
		case ch == ' ':
			cells = append(cells, " ")
		default:
			cells = append(cells, "_")
		}
	}
	return strings.Join(cells, " ")
}
