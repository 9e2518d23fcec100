package interfaces

import (
	"context"
	"errors"

	auth_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/auth"
)

// ErrDuplicateUser is returned by Create when the username is already taken.
// Username uniqueness is enforced by the storage layer (unique index /
// constraint), not by in-process locking.
var ErrDuplicateUser = errors.New("username already exists")

type UserRepository interface {
	// Create persists a new user. Fails with ErrDuplicateUser on a
	// username collision.
	Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error)

	// GetByUsername returns (nil, nil) when no user matches.
	GetByUsername(ctx context.Context, username string) (*auth_models.User, error)

	// GetAll returns the public projection of every user.
	GetAll(ctx context.Context) ([]auth_models.UserSummary, error)
}
