package handler

import (
	id "vanity/pkg/domain"
	dErrors "vanity/pkg/domain-errors"
)

// reserveRequest commits a ticket backed by the advance payment.
type reserveRequest struct {
	Ticket  string `json:"ticket"`
	Payment string `json:"payment"`
}

func (r reserveRequest) parse() (id.Ticket, id.Amount, error) {
	ticket, err := id.ParseTicket(r.Ticket)
	if err != nil {
		return id.Ticket{}, 0, err
	}
	payment, err := id.ParseAmount(r.Payment)
	if err != nil {
		return id.Ticket{}, 0, err
	}
	return ticket, payment, nil
}

// buyRequest reveals the name behind a ticket and pays advance plus fee.
type buyRequest struct {
	Ticket  string `json:"ticket"`
	Name    string `json:"name"`
	Payment string `json:"payment"`
}

func (r buyRequest) parse() (id.Ticket, string, id.Amount, error) {
	ticket, err := id.ParseTicket(r.Ticket)
	if err != nil {
		return id.Ticket{}, "", 0, err
	}
	if r.Name == "" {
		return id.Ticket{}, "", 0, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	payment, err := id.ParseAmount(r.Payment)
	if err != nil {
		return id.Ticket{}, "", 0, err
	}
	return ticket, r.Name, payment, nil
}

// nameRequest carries the single name argument of claim and renew.
type nameRequest struct {
	Name string `json:"name"`
}

func (r nameRequest) parse() (string, error) {
	if r.Name == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return r.Name, nil
}
