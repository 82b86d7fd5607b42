package content

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Units recognised as the token following a leading quantity. Matching is
// case-insensitive and ignores a trailing period ("tbsp.").
var Units = map[string]struct{}{
	"bag": {}, "bags": {},
	"bottle": {}, "bottles": {},
	"box": {}, "boxes": {},
	"bunch": {}, "bunches": {},
	"c":   {},
	"can": {}, "cans": {},
	"clove": {}, "cloves": {},
	"container": {}, "containers": {},
	"cup": {}, "cups": {},
	"dash": {}, "dashes": {},
	"drop": {}, "drops": {},
	"envelope": {}, "envelopes": {},
	"g": {}, "gram": {}, "grams": {},
	"gal": {}, "gallon": {}, "gallons": {},
	"handful": {}, "handfuls": {},
	"head": {}, "heads": {},
	"jar": {}, "jars": {},
	"kg": {}, "kilogram": {}, "kilograms": {},
	"l": {}, "liter": {}, "liters": {}, "litre": {}, "litres": {},
	"lb": {}, "lbs": {}, "pound": {}, "pounds": {},
	"mg": {}, "milligram": {}, "milligrams": {},
	"ml": {}, "milliliter": {}, "milliliters": {}, "millilitre": {}, "millilitres": {},
	"oz": {}, "ounce": {}, "ounces": {},
	"package": {}, "packages": {}, "packet": {}, "packets": {}, "pkg": {},
	"piece": {}, "pieces": {},
	"pinch": {}, "pinches": {},
	"pint": {}, "pints": {}, "pt": {},
	"qt": {}, "quart": {}, "quarts": {},
	"slice": {}, "slices": {},
	"sprig": {}, "sprigs": {},
	"stalk": {}, "stalks": {},
	"stick": {}, "sticks": {},
	"tablespoon": {}, "tablespoons": {}, "tbsp": {}, "tbs": {}, "tbl": {},
	"teaspoon": {}, "teaspoons": {}, "tsp": {},
}

var vulgarFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅕", " 1/5", "⅖", " 2/5", "⅗", " 3/5", "⅘", " 4/5", "⅙", " 1/6",
	"⅚", " 5/6", "⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
	"⁄", "/", // fraction slash
)

// quantity, then whitespace, then the rest of the line
var ingredientLineRe = regexp.MustCompile(`^((?:\d+\s+)?(?:\d+(?:\.\d+)?|\.\d+)(?:\s*/\s*\d+)?)\s+(.+)$`)

// NormalizeText rewrites vulgar fractions as "a/b" and folds compatibility
// characters (full-width digits, non-breaking spaces) to their plain forms.
func NormalizeText(s string) string {
	s = vulgarFractions.Replace(s)
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "⁄", "/")
	return s
}

// ParseIngredientLine splits "1 1/2 cups flour" into quantity, unit and name.
// Lines without a leading quantity become a bare name.
func ParseIngredientLine(line string) (name string, quantity *float64, unit *string) {
	raw := strings.TrimSpace(line)
	clean := collapseSpace(NormalizeText(raw))

	m := ingredientLineRe.FindStringSubmatch(clean)
	if m == nil {
		return fallbackName(clean, raw), nil, nil
	}

	quantity = ParseQuantity(m[1])
	rest := strings.TrimSpace(m[2])

	if first, remainder, ok := strings.Cut(rest, " "); ok && IsUnit(first) {
		u := first
		unit = &u
		rest = strings.TrimSpace(remainder)
	}
	return fallbackName(rest, raw), quantity, unit
}

func fallbackName(name, raw string) string {
	if name == "" {
		return raw
	}
	return name
}

// IsUnit reports whether tok is a known measurement unit.
func IsUnit(tok string) bool {
	tok = strings.ToLower(strings.TrimSuffix(tok, "."))
	_, ok := Units[tok]
	return ok
}

// ParseQuantity evaluates "2", "0.5", "1/2" and "1 1/2". It returns nil
// rather than an error on anything it cannot evaluate.
func ParseQuantity(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var whole float64
	fields := strings.Fields(s)
	if len(fields) > 1 && !strings.HasPrefix(fields[1], "/") {
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil
		}
		whole = w
		s = strings.Join(fields[1:], "")
	} else {
		s = strings.Join(fields, "")
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return nil
		}
		v := whole + n/d
		return &v
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v += whole
	return &v
}
