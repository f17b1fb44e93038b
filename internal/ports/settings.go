package ports

import (
	"context"

	"mafiaville/internal/domain"
)

// SettingsPort provides read-only engine settings, fetched once per round.
type SettingsPort interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// StaticSettings serves a fixed configuration.
type StaticSettings domain.Settings

// Settings returns the fixed value.
func (s StaticSettings) Settings(context.Context) (domain.Settings, error) {
	return domain.Settings(s), nil
}
