package domain

import (
	"encoding/hex"
	"strings"

	dErrors "vanity/pkg/domain-errors"
)

// AccountID identifies a settlement account, the caller identity attested by
// the auth layer. It is opaque to the registry: tickets hash over its raw
// bytes and ownership checks compare it for equality, nothing else.
type AccountID string

// ParseAccountID validates and returns an AccountID.
// Accounts must be non-empty and at most 128 characters after trimming.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	if len(s) > 128 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be 128 characters or less")
	}
	return AccountID(s), nil
}

func (a AccountID) String() string { return string(a) }

// IsZero reports whether the account ID is unset.
func (a AccountID) IsZero() bool { return a == "" }

// TicketLen is the width of a ticket in bytes (Keccak-256 output).
const TicketLen = 32

// encodedTicketLen is the canonical string form: "0x" + 64 hex digits.
const encodedTicketLen = 2 + 2*TicketLen

// Ticket is the opaque commit value binding a name to a claimant. It is an
// equality-comparable key; nothing in the registry parses its contents.
type Ticket [TicketLen]byte

// ParseTicket decodes the canonical 0x-prefixed hex form.
func ParseTicket(s string) (Ticket, error) {
	var t Ticket
	if len(s) != encodedTicketLen || !strings.HasPrefix(s, "0x") {
		return t, dErrors.New(dErrors.CodeInvalidInput, "ticket must be a 0x-prefixed 66-character hex string")
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return t, dErrors.New(dErrors.CodeInvalidInput, "ticket contains non-hex characters")
	}
	copy(t[:], raw)
	return t, nil
}

// String renders the canonical 0x-prefixed hex form.
func (t Ticket) String() string {
	return "0x" + hex.EncodeToString(t[:])
}

// IsZero reports whether the ticket is the all-zero value.
func (t Ticket) IsZero() bool {
	return t == Ticket{}
}

// MarshalText implements encoding.TextMarshaler for JSON responses.
func (t Ticket) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON requests.
func (t *Ticket) UnmarshalText(b []byte) error {
	parsed, err := ParseTicket(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
