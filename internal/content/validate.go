package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minTidbitLength = 25
	// Longer texts get truncated in notifications.
	maxTidbitLength = 220
)

var (
	categoryIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	repeatedSpaces    = regexp.MustCompile(`\s{2,}`)
)

// ValidationReport is the result of Validate.
// Errors make the content unusable; warnings are editorial hints.
type ValidationReport struct {
	Errors     []string
	Warnings   []string
	Categories int
	Tidbits    int
}

// Valid reports whether the content has no errors.
func (r ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

type tidbitPosition struct {
	category string
	index    int
}

// Validate checks a content document of the shape `category → [text]`.
func Validate(data map[string][]string) ValidationReport {
	var report ValidationReport

	categoryIDs := make([]string, 0, len(data))
	for id := range data {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)
	report.Categories = len(categoryIDs)
	if len(categoryIDs) == 0 {
		report.Warnings = append(report.Warnings, "no categories found")
	}

	globalSeen := make(map[string]tidbitPosition)
	for _, categoryID := range categoryIDs {
		if !categoryIDPattern.MatchString(categoryID) {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"invalid category id %q: use lowercase letters, numbers and hyphens only (e.g. \"math-54\")", categoryID))
		}

		withinSeen := make(map[string]bool)
		for i, text := range data[categoryID] {
			report.Tidbits++

			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				report.Errors = append(report.Errors, fmt.Sprintf("%s[%d] is empty", categoryID, i))
				continue
			}
			if trimmed != text {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] has leading/trailing whitespace", categoryID, i))
			}
			if repeatedSpaces.MatchString(text) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] contains repeated spaces", categoryID, i))
			}

			length := utf8.RuneCountInString(trimmed)
			if length < minTidbitLength {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] is short (<%d chars): %q", categoryID, i, minTidbitLength, trimmed))
			}
			if length > maxTidbitLength {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] is long (>%d chars) and may be truncated in notifications", categoryID, i, maxTidbitLength))
			}

			if withinSeen[trimmed] {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] duplicates another tidbit in the same category", categoryID, i))
			}
			withinSeen[trimmed] = true

			if first, ok := globalSeen[trimmed]; ok {
				if first.category != categoryID {
					report.Warnings = append(report.Warnings, fmt.Sprintf("%s[%d] duplicates %s[%d]", categoryID, i, first.category, first.index))
				}
				continue
			}
			globalSeen[trimmed] = tidbitPosition{category: categoryID, index: i}
		}
	}
	return report
}
