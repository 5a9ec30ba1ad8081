// Package resolver turns a free-text company name into the domain of its
// website using a domain-suggestion provider.
package resolver

import "context"

// Candidate is one suggestion returned by a provider, ordered by relevance.
type Candidate struct {
	Name   string
	Domain string
	Logo   string
}

// Resolver resolves a company name to a domain.
//
// Resolve fails with serrors.ErrBadRequest for a blank name,
// serrors.ErrNotFound when the provider has no candidate or stays
// unreachable, and serrors.ErrInternal when the provider reply is unusable.
//
//go:generate mockgen -package mockresolver -source=interface.go -destination=mock/mockresolver.go *
type Resolver interface {
	Resolve(ctx context.Context, company string) (string, error)
}
