package domain

import (
	"strconv"

	dErrors "vanity/pkg/domain-errors"
)

// Amount is a monetary value in the registry's base unit. Amounts are exact:
// they travel as decimal strings on the wire and are never derived from
// floating point, so no payment can be silently truncated.
type Amount uint64

// ParseAmount decodes a non-negative decimal string.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount must be a non-negative integer")
	}
	return Amount(v), nil
}

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// MarshalText keeps amounts as strings in JSON, preserving exact values for
// clients that would otherwise read them as floats.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(b []byte) error {
	parsed, err := ParseAmount(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
