package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

const (
	ErrorInvalidInput     = "invalid_input"
	ErrorUnsupported      = "unsupported_source"
	ErrorNoStructuredData = "no_structured_data"
	ErrorNotARecipe       = "not_a_recipe"
	ErrorNetwork          = "network"
	ErrorRateLimit        = "rate_limit"
	ErrorParsing          = "parsing"
	ErrorNotFound         = "not_found"
	ErrorStore            = "store"
	ErrorUnknown          = "unknown"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("not found")

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

// ClassifyError maps any error produced by the import pipeline to a kind.
func ClassifyError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var (
		invalid     *recipe.InvalidInputError
		unsupported *recipe.UnsupportedSourceError
		noData      *recipe.NoStructuredDataError
		notRecipe   *recipe.NotARecipeError
	)
	switch {
	case errors.As(err, &invalid):
		return ErrorInvalidInput
	case errors.As(err, &unsupported):
		return ErrorUnsupported
	case errors.As(err, &noData):
		return ErrorNoStructuredData
	case errors.As(err, &notRecipe):
		return ErrorNotARecipe
	case errors.Is(err, ErrNotFound):
		return ErrorNotFound
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "parse failed") ||
		strings.Contains(msg, "decode failed") ||
		strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "invalid character") {
		return ErrorParsing
	}
	if strings.Contains(msg, "store:") {
		return ErrorStore
	}
	return ErrorUnknown
}

// HTTPStatus is the response status for an error kind.
func HTTPStatus(kind string) int {
	switch kind {
	case ErrorInvalidInput, ErrorUnsupported, ErrorNoStructuredData, ErrorNotARecipe:
		return http.StatusBadRequest
	case ErrorNetwork, ErrorRateLimit, ErrorParsing:
		return http.StatusBadRequest
	case ErrorNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
