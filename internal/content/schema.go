package content

import (
	"strconv"
	"strings"
)

// RecipeSchema is the Recipe object published by a site. Every field is
// optional: nil pointers and nil slices mean the key was absent or unusable,
// which is distinct from a present-but-empty value.
type RecipeSchema struct {
	Name               *string
	Description        *string
	RecipeIngredient   []string
	RecipeInstructions *InstructionsField
	CookTime           *string
	RecipeYield        []string
	Image              []string
}

// InstructionsField keeps the two encodings sites use for recipeInstructions.
// Exactly one of Text and Steps is set.
type InstructionsField struct {
	Text  *string
	Steps []string
}

func schemaFromMap(m map[string]any) *RecipeSchema {
	s := &RecipeSchema{
		Name:               optString(m["name"]),
		Description:        optString(m["description"]),
		RecipeIngredient:   stringList(m["recipeIngredient"]),
		RecipeInstructions: instructionsField(m["recipeInstructions"]),
		CookTime:           optString(m["cookTime"]),
		RecipeYield:        yieldList(m["recipeYield"]),
		Image:              imageList(m["image"]),
	}
	if s.RecipeIngredient == nil {
		// pre-2017 schema.org name, still emitted by some sites
		s.RecipeIngredient = stringList(m["ingredients"])
	}
	return s
}

func optString(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case map[string]any:
		if val, ok := t["@value"].(string); ok {
			return &val
		}
	}
	return nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func instructionsField(v any) *InstructionsField {
	switch t := v.(type) {
	case string:
		return &InstructionsField{Text: &t}
	case []any:
		var steps []string
		for _, item := range t {
			steps = append(steps, stepTexts(item)...)
		}
		if steps == nil {
			steps = []string{}
		}
		return &InstructionsField{Steps: steps}
	case map[string]any:
		return &InstructionsField{Steps: stepTexts(t)}
	}
	return nil
}

// stepTexts maps one recipeInstructions element to its text. HowToSection
// elements are flattened into their item list; unusable elements map to "".
func stepTexts(item any) []string {
	switch t := item.(type) {
	case string:
		return []string{t}
	case map[string]any:
		if text, ok := t["text"].(string); ok {
			return []string{text}
		}
		if list, ok := t["itemListElement"].([]any); ok {
			var out []string
			for _, sub := range list {
				out = append(out, stepTexts(sub)...)
			}
			return out
		}
		if name, ok := t["name"].(string); ok {
			return []string{name}
		}
	}
	return []string{""}
}

func yieldList(v any) []string {
	switch t := v.(type) {
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, yieldList(item)...)
		}
		return out
	}
	return stringList(v)
}

func imageList(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case map[string]any:
		if u, ok := t["url"].(string); ok && u != "" {
			return []string{u}
		}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, imageList(item)...)
		}
		return out
	}
	return nil
}
