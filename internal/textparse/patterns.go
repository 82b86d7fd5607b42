package textparse

import (
	"regexp"
	"sort"
	"strings"
)

// Vocabulary tables. Patterns below are compiled from these, so extending
// a table extends the parser.
var (
	// IngredientKeywords mark text that talks about what goes into a dish.
	IngredientKeywords = []string{"ingredients", "ingredient", "you will need", "what you need", "you need", "supplies", "equipment"}

	// InstructionKeywords mark text that talks about how to make it.
	InstructionKeywords = []string{"instructions", "instruction", "steps", "step", "directions", "direction", "how to", "preparation", "mixing", "mix", "add", "combine", "cooking", "cook", "baking", "bake"}

	// ActionVerbs lead sentences that read as a cooking instruction.
	ActionVerbs = []string{"add", "mix", "combine", "stir", "fold", "pour", "place", "bake", "cook", "heat", "cut", "chop", "blend", "whisk"}

	// UnitWords are measures that may follow a quantity in a caption.
	UnitWords = []string{"cup", "tbsp", "tsp", "oz", "g", "ml", "lb", "kg", "pinch", "handful", "can", "bottle", "package", "tablespoon", "teaspoon", "gram", "kilogram", "pound", "ounce"}

	// PortionWords follow a quantity in place of a unit ("2 whole chickens").
	PortionWords = []string{"whole", "half", "halves", "quarter"}

	// FoodNouns are countable items often listed without a unit ("1 egg").
	FoodNouns = []string{"egg", "onion", "clove", "shallot", "tomato", "potato", "carrot", "lemon", "lime", "banana", "apple", "avocado", "pepper", "zucchini", "cucumber", "chili", "chilli", "tortilla", "bun", "slice", "fillet", "breast", "thigh"}
)

// quantity matches "2", "1.5", "1/2" and "1 1/2".
const quantity = `\d+(?:\s+\d+/\d+|[./]\d+)?`

var (
	ingredientKeywordRe  = wordsRe(IngredientKeywords)
	instructionKeywordRe = wordsRe(InstructionKeywords)

	// Ingredient families, tried in order.
	ingredientFamilies = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b` + quantity + `\s*(?:` + alternation(UnitWords) + `)s?\b\.?\s+[^,\n.]+`),
		regexp.MustCompile(`(?i)\b` + quantity + `\s+(?:` + alternation(PortionWords) + `)s?\s+[^,\n.]+`),
		regexp.MustCompile(`(?i)\b` + quantity + `\s+(?:(?:large|medium|small|fresh|ripe|whole)\s+)?(?:` + alternation(FoodNouns) + `)(?:es|s)?\b[^,\n.]*`),
	}
	ingredientSplitRe = regexp.MustCompile(`[#\n]`)

	// Step-marker families, tried before action verbs. Each captures the step text.
	stepFamilies = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bsteps?\s*(?:\d+\s*[:.)\-]*|[:.)\-]+)\s*([^.!?]+[.!?])`),
		regexp.MustCompile(`(?m)^\s*\d+[.):\-]\s+([^.!?\n]+[.!?]?)`),
	}
	actionRe   = regexp.MustCompile(`(?i)\b(?:` + alternation(ActionVerbs) + `)\s+[^.!?]+[.!?]`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)

	cookTimeRe = regexp.MustCompile(`(?i)\b(?:cook|cooking|bake|baking|prep|total|mix|mixing)\s*(time)?(?:\s*(?:[:\-]|for|about|around|is)\s*)*\s*(\d+)\s*(hours?|hrs?|minutes?|mins?|seconds?|secs?)?\b(?:\s*(?:and\s*)?(\d+)\s*(?:minutes?|mins?)\b)?`)
	servingsRe = regexp.MustCompile(`(?i)\b(?:serves|yields?|makes?|servings?)[\s:]*(\d+)`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// alternation joins words longest first so a short word never shadows a longer one.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

func wordsRe(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternation(words) + `)\b`)
}
