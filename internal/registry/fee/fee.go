// Package fee prices name registrations.
//
// Names containing only ASCII characters pay the base tier; any name with a
// multi-byte UTF-8 character pays the vanity tier. The threshold is binary:
// one extended character is enough, and the only way to game it is to pay the
// higher tier.
package fee

import (
	"unicode/utf8"

	id "vanity/pkg/domain"
)

// Multipliers applied to the base price per character class.
const (
	asciiMultiplier  = 4
	vanityMultiplier = 6
)

// Calculator derives registration fees from a fixed base price.
// It is pure: no state beyond the configured base price, no side effects.
type Calculator struct {
	basePrice id.Amount
}

func NewCalculator(basePrice id.Amount) *Calculator {
	return &Calculator{basePrice: basePrice}
}

// BasePrice exposes the configured base price read-only.
func (c *Calculator) BasePrice() id.Amount {
	return c.basePrice
}

// Calculate returns the registration fee for a name. The empty name
// classifies as all-ASCII; non-emptiness is enforced by the registry, not
// here.
func (c *Calculator) Calculate(name string) id.Amount {
	if hasMultiByteRune(name) {
		return c.basePrice * vanityMultiplier
	}
	return c.basePrice * asciiMultiplier
}

// VanityFee returns the upper fee tier. Used for the informational locking
// amount, the worst-case cost of a full acquisition.
func (c *Calculator) VanityFee() id.Amount {
	return c.basePrice * vanityMultiplier
}

// hasMultiByteRune reports whether any rune in s occupies more than one byte
// in UTF-8, i.e. any code point >= 0x80.
func hasMultiByteRune(s string) bool {
	for _, r := range s {
		if utf8.RuneLen(r) > 1 {
			return true
		}
	}
	return false
}
