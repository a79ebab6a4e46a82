package validation

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxSearchTermLength is the longest search term accepted, in characters
const MaxSearchTermLength = 200

// Security validation errors
var (
	ErrInvalidUnicodeSecurity = errors.New("ErrInvalidUnicodeSecurity")
	ErrInvalidUnicodeCategory = errors.New("ErrInvalidUnicodeCategory")
	ErrInvalidUTF8            = errors.New("ErrInvalidUTF8")
	ErrSearchTermTooLong      = errors.New("ErrSearchTermTooLong")
)

// Blocked Unicode categories for security
var blockedCategories = []*unicode.RangeTable{
	unicode.Cc, // Control characters
	unicode.Cf, // Format characters (zero-width, etc.)
	unicode.Cs, // Surrogate characters
	unicode.Co, // Private use characters
}

// ValidateUnicodeSecurity rejects invalid UTF-8 and any rune from a blocked category,
// before or after NFKC normalization.
func ValidateUnicodeSecurity(input string) error {
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}

	// Early rejection for raw control characters
	for _, r := range input {
		if unicode.IsControl(r) {
			return ErrInvalidUnicodeSecurity
		}
	}

	for _, r := range norm.NFKC.String(input) {
		if unicode.IsOneOf(blockedCategories, r) {
			return ErrInvalidUnicodeCategory
		}
	}

	return nil
}

// ValidateSearchTerm checks a user supplied search term. The term itself is matched
// verbatim (apart from lowercasing), so nothing is trimmed or rewritten here.
func ValidateSearchTerm(term string) error {
	if utf8.RuneCountInString(term) > MaxSearchTermLength {
		return fmt.Errorf("search term exceeds maximum length of %d characters: %w", MaxSearchTermLength, ErrSearchTermTooLong)
	}

	if err := ValidateUnicodeSecurity(term); err != nil {
		return fmt.Errorf("unicode security validation failed for search term: %w", err)
	}

	return nil
}
