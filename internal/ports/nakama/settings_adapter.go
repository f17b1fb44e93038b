package nakama

import (
	"context"
	"fmt"

	"mafiaville/internal/config"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// StorageSettings implements ports.SettingsPort over a system-owned Nakama
// storage document. A missing document yields the shipped config.
type StorageSettings struct {
	nk       runtime.NakamaModule
	logger   runtime.Logger
	fallback config.GameConfig
}

// NewStorageSettings creates a settings adapter falling back to cfg.
func NewStorageSettings(nk runtime.NakamaModule, logger runtime.Logger, cfg config.GameConfig) *StorageSettings {
	return &StorageSettings{nk: nk, logger: logger, fallback: cfg}
}

// Settings reads the override document once per call.
func (s *StorageSettings) Settings(ctx context.Context) (domain.Settings, error) {
	if s.nk == nil {
		return s.fallback.Settings(), nil
	}
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: StorageCollection,
		Key:        StorageKeySettings,
	}})
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(objects) == 0 || objects[0].GetValue() == "" {
		return s.fallback.Settings(), nil
	}
	cfg, err := config.ParseGameConfig([]byte(objects[0].GetValue()))
	if err != nil {
		return domain.Settings{}, err
	}
	s.logger.Debug("Settings: using stored override (version %s)", objects[0].GetVersion())
	return cfg.Settings(), nil
}

var _ ports.SettingsPort = (*StorageSettings)(nil)
