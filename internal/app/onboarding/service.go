package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"mafiaville/internal/ports"
)

// Service gives newly created accounts a townsfolk name so they are
// recognisable at the table before they pick their own.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, rng: rng}
}

// OnboardNewUser assigns a generated display name and returns it.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	name := s.townsfolkName()
	if err := s.accounts.UpdateProfile(ctx, userID, "", name); err != nil {
		return "", fmt.Errorf("failed to update profile: %w", err)
	}
	return name, nil
}

func (s *Service) townsfolkName() string {
	titles := []string{"Baker", "Smith", "Tailor", "Miller", "Cooper", "Chandler", "Mason", "Fisher", "Carter", "Weaver"}
	names := []string{"Ada", "Bram", "Cora", "Dell", "Esme", "Finn", "Greta", "Hugo", "Ines", "Jory"}

	title := titles[s.rng.Intn(len(titles))]
	name := names[s.rng.Intn(len(names))]
	return fmt.Sprintf("%s %s %d", name, title, s.rng.Intn(900)+100)
}
