package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPrice = errors.New("catalog: invalid price")

// ParsePrice accepts a plain non-negative number; a comma works as the decimal separator.
func ParsePrice(text string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if raw == "" {
		return 0, ErrInvalidPrice
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}

	if err := validatePrice(price); err != nil {
		return 0, err
	}

	return price, nil
}

// ParseMenuPrice is the lenient variant used by the special menu wizard:
// everything but digits and separators is dropped first, so "10 💋" is 10.
func ParseMenuPrice(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}

	return ParsePrice(b.String())
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	return nil
}
