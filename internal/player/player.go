// Package player keeps the player registry and the shared admin credential
// in the key-value store.
package player

import (
	"context"
	"errors"
	"time"
)

// ErrPlayerExists is returned when registering a name that is already taken.
var ErrPlayerExists = errors.New("player already exists")

// Player is the registration record stored under the player's name.
type Player struct {
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Registry is the player store. Players are created once and never mutated.
type Registry interface {
	// Register stores p unless the name is taken, in which case it returns
	// ErrPlayerExists. The check and the write are a single conditional write.
	Register(ctx context.Context, p Player) error

	Exists(ctx context.Context, name string) (bool, error)
}
