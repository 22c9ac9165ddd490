// Package users provides the credential store: lookups of users by internal
// id, public UUID or email, plus registration and profile updates.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
)

// Filter selects a single user. Exactly one field must be set.
type Filter struct {
	ID    string
	UUID  string
	Email string
}

func ByID(id string) Filter       { return Filter{ID: id} }
func ByUUID(uuid string) Filter   { return Filter{UUID: uuid} }
func ByEmail(email string) Filter { return Filter{Email: email} }

// Validate rejects filters with no selector or with more than one.
func (f Filter) Validate() error {
	n := 0
	for _, v := range []string{f.ID, f.UUID, f.Email} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: exactly one of id, uuid or email must be set", common.ErrValidation)
	}
	return nil
}

// Patch lists the mutable profile fields. Nil means unchanged.
type Patch struct {
	Name  *string
	Email *string
}

// Repository is the narrow user-store interface used by the services and
// authenticators.
//
// Find returns common.ErrorNotFound when nothing matches. Create assigns the
// internal ID and returns common.ErrAlreadyExists on a duplicate email or
// UUID. Update returns common.ErrorNotFound for an unknown id.
type Repository interface {
	Find(ctx context.Context, f Filter) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, patch Patch) error
	List(ctx context.Context) ([]*models.User, error)
}
