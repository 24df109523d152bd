// Package ticket derives reservation tickets.
//
// A ticket is the commit half of the commit-reveal protocol: Keccak-256 over
// the name and the claimant's account. Because the claimant is always part of
// the preimage, a third party who observes a ticket cannot re-reserve the same
// name for themselves and front-run the reveal — their ticket would differ.
package ticket

import (
	"golang.org/x/crypto/sha3"

	id "vanity/pkg/domain"
)

// Compute derives the ticket for (name, claimant). An optional caller-chosen
// salt may be appended to the preimage; the same inputs always produce the
// same ticket.
func Compute(name string, claimant id.AccountID, salt ...[]byte) id.Ticket {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	h.Write([]byte(claimant))
	for _, s := range salt {
		h.Write(s)
	}

	var t id.Ticket
	h.Sum(t[:0])
	return t
}
