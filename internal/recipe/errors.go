package recipe

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a malformed URL. It is raised before any network access.
type InvalidInputError struct {
	Input string
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid URL %q", e.Input)
	}
	return fmt.Sprintf("invalid URL %q: %v", e.Input, e.Err)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// UnsupportedSourceError reports a well-formed URL that no adapter or platform recognizes.
type UnsupportedSourceError struct {
	URL       string
	Kind      string // "recipe source" or "video platform"
	Supported []string
}

func (e *UnsupportedSourceError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "source"
	}
	return fmt.Sprintf("unsupported %s %q; currently supported: %s", kind, e.URL, strings.Join(e.Supported, ", "))
}

// NoStructuredDataError reports a fetched page without a Recipe JSON-LD block.
type NoStructuredDataError struct {
	URL string
}

func (e *NoStructuredDataError) Error() string {
	return fmt.Sprintf("no recipe schema found at %s", e.URL)
}

// NotARecipeError reports a video whose text yielded nothing recipe-shaped.
// Extractors signal this with a nil result; the routers turn it into this error.
type NotARecipeError struct {
	URL      string
	Platform SourceType
}

func (e *NotARecipeError) Error() string {
	return fmt.Sprintf("could not extract recipe from this %s video (%s); make sure it contains recipe ingredients and instructions", e.Platform, e.URL)
}
