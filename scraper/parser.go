package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	nonPriceChars = regexp.MustCompile(`[^0-9.]`)
	digitRun      = regexp.MustCompile(`[0-9]+`)
)

// RatingFromClass maps the textual star scale encoded in a CSS class
// ("star-rating Three") to 1..5. Unrecognized words map to 0.
func RatingFromClass(class string) int {
	for _, word := range strings.Fields(class) {
		switch word {
		case "One":
			return 1
		case "Two":
			return 2
		case "Three":
			return 3
		case "Four":
			return 4
		case "Five":
			return 5
		}
	}
	return 0
}

// ParsePrice strips everything except digits and the decimal point
// before parsing. Malformed text that still leaves digits behind parses
// to a wrong number rather than an error.
func ParsePrice(text string) (float64, error) {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.Errorf("unparsable price %q", text)
	}
	return price, nil
}

// ParseAvailability extracts the stock count from free text like
// "In stock (22 available)". The first digit run wins; no digits means 0.
func ParseAvailability(text string) int {
	m := digitRun.FindString(text)
	if m == "" {
		return 0
	}
	count, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return count
}
