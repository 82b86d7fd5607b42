// Package textparse infers a recipe from unstructured text such as a video
// transcript or caption. Every step is a heuristic that degrades to "nothing
// found" instead of failing.
package textparse

import (
	"strconv"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/content"
)

const (
	maxIngredients  = 15
	maxInstructions = 10
	summaryLength   = 200

	minLineLength = 3
	maxLineLength = 100
	minStepLength = 10
	maxStepLength = 200
)

// ParsedRecipe is what could be recovered from free text. Title is left to
// the caller, which knows it from the platform metadata.
type ParsedRecipe struct {
	Ingredients  []string
	Instructions []string
	CookTime     *int
	Servings     *int
	Summary      string
}

// Parse reads primary, or fallback when primary is blank. It returns nil when
// the text does not look like a recipe or nothing recipe-shaped can be pulled
// out of it.
func Parse(primary, fallback string) *ParsedRecipe {
	text := primary
	if strings.TrimSpace(text) == "" {
		text = fallback
	}
	text = content.NormalizeText(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if !LooksLikeRecipe(text) {
		return nil
	}

	ingredients := ExtractIngredients(text)
	instructions := ExtractInstructions(text)
	if len(ingredients) == 0 && len(instructions) == 0 {
		return nil
	}

	return &ParsedRecipe{
		Ingredients:  ingredients,
		Instructions: instructions,
		CookTime:     ExtractCookTime(text),
		Servings:     ExtractServings(text),
		Summary:      Summary(text),
	}
}

// LooksLikeRecipe reports whether text mentions either ingredients or
// instructions in any of the recognised phrasings.
func LooksLikeRecipe(text string) bool {
	return ingredientKeywordRe.MatchString(text) || instructionKeywordRe.MatchString(text)
}

func ExtractIngredients(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || len(s) >= maxLineLength {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	for _, re := range ingredientFamilies {
		for _, m := range re.FindAllString(text, maxIngredients) {
			if len(out) >= maxIngredients {
				return out
			}
			add(m)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, line := range ingredientSplitRe.Split(text, -1) {
		line = strings.TrimSpace(line)
		if len(line) <= minLineLength || len(line) >= maxLineLength {
			continue
		}
		if strings.HasPrefix(line, "@") || strings.HasPrefix(strings.ToLower(line), "http") {
			continue
		}
		add(line)
		if len(out) >= maxIngredients {
			break
		}
	}
	return out
}

func ExtractInstructions(text string) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if len(s) <= minStepLength || len(s) >= maxStepLength {
			return
		}
		if covered(out, s) {
			return
		}
		out = append(out, s)
	}

	for _, re := range stepFamilies {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	for _, m := range actionRe.FindAllString(text, -1) {
		add(m)
	}

	if len(out) < 2 {
		for _, sentence := range sentenceRe.Split(text, -1) {
			if len(out) >= maxInstructions {
				break
			}
			add(sentence)
		}
	}
	if len(out) > maxInstructions {
		out = out[:maxInstructions]
	}
	return out
}

// covered reports whether s repeats, or is repeated by, an existing entry.
func covered(existing []string, s string) bool {
	key := stepKey(s)
	for _, e := range existing {
		ek := stepKey(e)
		if strings.Contains(ek, key) || strings.Contains(key, ek) {
			return true
		}
	}
	return false
}

func stepKey(s string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), ".!?"))
}

// ExtractCookTime returns the first cook-time phrase in minutes. Hours and
// minutes are taken at face value and seconds are rounded up to a minute. A
// bare number after a "time" label has no unit, so values under 100 are read
// as seconds and larger ones as minutes.
func ExtractCookTime(text string) *int {
	for _, m := range cookTimeRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		labelled, unit := m[1] != "", strings.ToLower(m[3])

		var minutes int
		switch {
		case strings.HasPrefix(unit, "h"):
			minutes = n * 60
			if extra, err := strconv.Atoi(m[4]); err == nil {
				minutes += extra
			}
		case strings.HasPrefix(unit, "m"):
			minutes = n
		case strings.HasPrefix(unit, "s"):
			minutes = ceilMinutes(n)
		case labelled:
			if n < 100 {
				minutes = ceilMinutes(n)
			} else {
				minutes = n
			}
		default:
			continue
		}
		if minutes > 0 {
			return &minutes
		}
	}
	return nil
}

func ceilMinutes(seconds int) int {
	return (seconds + 59) / 60
}

func ExtractServings(text string) *int {
	m := servingsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// Summary is the first 200 characters of text with whitespace collapsed.
func Summary(text string) string {
	runes := []rune(text)
	if len(runes) > summaryLength {
		runes = runes[:summaryLength]
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(string(runes), " "))
}
