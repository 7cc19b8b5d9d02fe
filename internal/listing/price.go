package listing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// fractionMarker separates whole units from sub-units in "12.345,67 Lei"
const fractionMarker = ","

// ParsePrice reads the whole-unit amount of a currency-styled text such as
// "12.345,67 Lei". Everything after the fraction marker is discarded and
// every non-digit character before it is dropped.
func ParsePrice(text string) (int, error) {
	whole, _, _ := strings.Cut(text, fractionMarker)

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, whole)
	if digits == "" {
		return 0, fmt.Errorf("no digits in price %q", strings.TrimFunc(text, unicode.IsSpace))
	}

	price, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", digits, err)
	}
	return price, nil
}

// DiscountPercentage returns round(100*discount/oldPrice), rounding halves to
// the nearest even integer. It is 0 when there is no discount or no old price.
func DiscountPercentage(oldPrice, discount int) int {
	if discount < 1 || oldPrice <= 0 {
		return 0
	}

	scaled := 100 * discount
	quotient := scaled / oldPrice
	twiceRemainder := 2 * (scaled % oldPrice)

	switch {
	case twiceRemainder > oldPrice:
		quotient++
	case twiceRemainder == oldPrice && quotient%2 == 1:
		quotient++
	}
	return quotient
}
