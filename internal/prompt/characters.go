package prompt

import "fourcut-ai/internal/shots"

// Character binds a selectable secondary character to its scene list and
// prompt phrasing. HasLookalike marks characters with a policy-safe prompt
// variant used as a fallback when the exact-person prompt is rejected.
type Character struct {
	Key   string
	Name  string
	Emoji string
	Blurb string

	ExactPhrase     string
	LookalikePhrase string
	HasLookalike    bool

	Scenes []shots.Scene
}

var characters = map[string]Character{
	"billgates": {
		Key:             "billgates",
		Name:            "Bill Gates",
		Emoji:           "👔",
		Blurb:           "Four shots with Bill Gates at landmark spots around Korea.",
		ExactPhrase:     "Bill Gates",
		LookalikePhrase: "a Bill Gates look-alike (middle-aged Caucasian male with glasses)",
		HasLookalike:    true,
		Scenes:          shots.BillGatesScenes(),
	},
	"joker": {
		Key:    "joker",
		Name:   "Jokers",
		Emoji:  "🃏",
		Blurb:  "Four shots arm in arm between the Phoenix and Ledger Jokers in Gotham.",
		Scenes: shots.JokerScenes(),
	},
}

var characterOrder = []string{"billgates", "joker"}

func CharacterByKey(key string) (Character, bool) {
	c, ok := characters[key]
	return c, ok
}

func Characters() []Character {
	out := make([]Character, 0, len(characterOrder))
	for _, key := range characterOrder {
		out = append(out, characters[key])
	}
	return out
}

// Builders returns the primary and fallback prompt builders for a character.
// The fallback is nil unless the character has a look-alike variant and the
// exact-person prompt was requested.
func Builders(c Character, exact bool) (primary, fallback shots.PromptBuilder) {
	primary = func(scene shots.Scene, numRefs int) string {
		return Compose(scene, c, exact, numRefs)
	}
	if exact && c.HasLookalike {
		fallback = func(scene shots.Scene, numRefs int) string {
			return Compose(scene, c, false, numRefs)
		}
	}
	return primary, fallback
}
