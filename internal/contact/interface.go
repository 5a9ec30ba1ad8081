package contact

import (
	"contactfinder/pkg/domain"
	"context"
)

// Finder runs a whole contact lookup for one company name.
//
// Find returns a complete bundle or an error carrying one of the serrors
// kinds ErrBadRequest, ErrNotFound, ErrRetrievalFailed or ErrInternal. It never
// returns a partial bundle.
//
//go:generate mockgen -package mockcontact -source=interface.go -destination=mock/mockcontact.go *
type Finder interface {
	Find(ctx context.Context, company string) (*domain.ContactBundle, error)
}
