// Package naming derives human readable labels and slugs from identifiers.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/grafana/regexp"
)

const (
	defaultSlug           = "general"
	defaultOperationLabel = "Operation"
)

var (
	caseBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonSlug      = regexp.MustCompile(`[^a-z0-9]+`)
	separators   = strings.NewReplacer(".", " ", "_", " ", "-", " ")
)

// NormalizeSpace collapses runs of whitespace into one space and trims.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Humanize turns an identifier such as "created_at" or "orderId" into a
// sentence cased label ("Created at", "Order id").
func Humanize(value string) string {
	text := separators.Replace(value)
	text = caseBoundary.ReplaceAllString(text, "$1 $2")
	text = NormalizeSpace(text)
	if text == "" {
		return value
	}
	return upperFirst(strings.ToLower(text))
}

// OperationLabel splits a camel cased operation id into words and capitalizes
// the first one. The casing of the rest is kept.
func OperationLabel(operationID string) string {
	text := caseBoundary.ReplaceAllString(operationID, "$1 $2")
	text = NormalizeSpace(text)
	if text == "" {
		return defaultOperationLabel
	}
	return upperFirst(text)
}

// Slugify lowercases value and collapses every run of characters outside
// [a-z0-9] into one underscore.
func Slugify(value string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(value), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return defaultSlug
	}
	return slug
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
