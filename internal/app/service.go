package app

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"mafiaville/internal/domain"
)

// Service contains Mafiaville use-cases operating on a *domain.GameSession.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotInSetup      = errors.New("game is not accepting role assignment")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrGameNotReady    = errors.New("roles have not been assigned")
	ErrGameOver        = errors.New("game already ended")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrSetupRolledBack = errors.New("role setup rolled back")
	ErrWillTooLong     = errors.New("last will line too long")
	ErrWillFull        = errors.New("last will is full")
)

const (
	maxWillLines   = 10
	maxWillLineLen = 200
)

// AppendLastWill adds a line to a living player's last will.
func (s *Service) AppendLastWill(session *domain.GameSession, playerID, line string) error {
	p, ok := session.Player(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	if session.Phase == domain.PhaseEnded {
		return ErrGameOver
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if len(line) > maxWillLineLen {
		return ErrWillTooLong
	}
	if !p.Alive {
		return ErrUnknownPlayer
	}
	if len(p.LastWill) >= maxWillLines {
		return ErrWillFull
	}
	p.LastWill = append(p.LastWill, line)
	return nil
}

func (s *Service) shuffle(ids []string) {
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}
