package domain

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify transliterates name to ASCII, lowercases it, drops everything but
// letters, digits, whitespace and hyphens, and joins the remaining words with
// single hyphens. Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) string {
	value := strings.ToLower(unidecode.Unidecode(name))
	value = slugDisallowed.ReplaceAllString(value, "")
	value = slugSeparators.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// ValidSlug accepts only values Slugify would produce.
func ValidSlug(value string) bool {
	return value != "" && slug.IsSlug(value) && Slugify(value) == value
}
