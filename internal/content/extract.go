package content

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

// UntitledRecipe is the title used when the schema carries no name.
const UntitledRecipe = "Untitled Recipe"

// InstructionSeparator joins multi-step instructions into one string.
const InstructionSeparator = "\n"

var (
	durationRe = regexp.MustCompile(`^P(?:(\d+)D)?T(?:(\d+)H)?(?:(\d+)M)?(?:\d+(?:\.\d+)?S)?$`)
	integerRe  = regexp.MustCompile(`\d+`)
)

// ToScrapedRecipe runs every sub-extractor over s.
func ToScrapedRecipe(s *RecipeSchema) recipe.ScrapedRecipe {
	out := recipe.ScrapedRecipe{
		Title:        UntitledRecipe,
		Instructions: ExtractInstructions(s),
		Ingredients:  ExtractIngredients(s),
		Servings:     ExtractServings(s),
	}
	if s.Name != nil {
		if title := PlainText(*s.Name); title != "" {
			out.Title = title
		}
	}
	if s.Description != nil {
		if desc := PlainText(*s.Description); desc != "" {
			out.Description = &desc
		}
	}
	if s.CookTime != nil {
		out.CookTime = ParseDuration(*s.CookTime)
	}
	if len(s.Image) > 0 {
		out.ImageURL = recipe.Ptr(s.Image[0])
	}
	return out
}

// ExtractIngredients parses every recipeIngredient line in source order.
func ExtractIngredients(s *RecipeSchema) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(s.RecipeIngredient))
	for _, line := range s.RecipeIngredient {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, qty, unit := ParseIngredientLine(line)
		out = append(out, recipe.Ingredient{Name: name, Quantity: qty, Unit: unit})
	}
	return out
}

// ExtractInstructions passes a plain string through unchanged and joins a
// step sequence with InstructionSeparator, dropping empty steps.
func ExtractInstructions(s *RecipeSchema) string {
	f := s.RecipeInstructions
	if f == nil {
		return ""
	}
	if f.Text != nil {
		return *f.Text
	}
	lines := make([]string, 0, len(f.Steps))
	for _, step := range f.Steps {
		if step == "" {
			continue
		}
		lines = append(lines, step)
	}
	return strings.Join(lines, InstructionSeparator)
}

// ExtractServings returns the first integer in recipeYield.
func ExtractServings(s *RecipeSchema) *int {
	for _, y := range s.RecipeYield {
		m := integerRe.FindString(y)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}

// ParseDuration converts an ISO-8601 duration such as "PT1H30M" to whole
// minutes. Strings that do not match, or that carry no day, hour or minute
// component, yield nil.
func ParseDuration(d string) *int {
	m := durationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(d)))
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return nil
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	total := days*24*60 + hours*60 + minutes
	return &total
}
