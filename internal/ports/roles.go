package ports

import (
	"context"

	"mafiaville/internal/domain"
)

// RoleCard is the private role notice sent to one player during setup.
type RoleCard struct {
	PlayerID          string
	Role              domain.Role
	Alignment         domain.Alignment
	Teammates         []string
	ExecutionerTarget string
}

// RoleNotifier delivers role cards. An error means the player could not be reached.
type RoleNotifier interface {
	NotifyRole(ctx context.Context, card RoleCard) error
}

// LastWillSource yields last will lines submitted since the previous call, keyed by author.
type LastWillSource interface {
	DrainLastWills() map[string][]string
}
