//nolint:nolintlint,revive // utils is a common and acceptable package name for utility functions.
package utils

import (
	"mime"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// redactedValue replaces secrets in logged URLs and headers.
const redactedValue = "REDACTED"

var (
	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based. This includes "text/*", "application/json" and
	// "application/x-www-form-urlencoded".
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile("^application/json$"),
		regexp.MustCompile("^application/x-www-form-urlencoded$"),
	}
)

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsTextContentType checks if the given content type represents a text-based format.
// It also checks that the charset, if present, is either "utf-8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}

// RedactQuery returns a copy of the URL with the values of the given query parameters masked.
func RedactQuery(u *url.URL, keys ...string) *url.URL {
	if u == nil {
		return nil
	}

	redacted := *u
	query := redacted.Query()

	for _, key := range keys {
		if query.Has(key) {
			query.Set(key, redactedValue)
		}
	}

	redacted.RawQuery = query.Encode()

	return &redacted
}

// Redacted returns the placeholder used instead of secret values.
func Redacted() string {
	return redactedValue
}

// UnionUnique appends the members of extra that are not in base to a copy of base.
// Duplicates inside base are dropped as well, so the result is a set
// that keeps the first-seen order.
func UnionUnique[T comparable](base, extra []T) []T {
	seen := make(map[T]struct{}, len(base)+len(extra))
	result := make([]T, 0, len(base)+len(extra))

	for _, values := range [][]T{base, extra} {
		for _, v := range values {
			if _, exists := seen[v]; exists {
				continue
			}

			seen[v] = struct{}{}

			result = append(result, v)
		}
	}

	return result
}

// Map applies a transformation function to each element of a slice and returns a new slice with the results.
func Map[E, S any](v []E, transformFunc func(E) S) []S {
	result := make([]S, len(v))
	for i := range v {
		result[i] = transformFunc(v[i])
	}

	return result
}
