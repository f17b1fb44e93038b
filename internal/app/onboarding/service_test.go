package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

type fakeAccountPort struct {
	updateErr   error
	userID      string
	displayName string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.userID = userID
	f.displayName = displayName
	return f.updateErr
}

func TestOnboardNewUser_SetsDisplayName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	name, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if accounts.userID != "user-1" {
		t.Fatalf("updated user = %q, want user-1", accounts.userID)
	}
	if name == "" || accounts.displayName != name {
		t.Fatalf("display name = %q, returned %q", accounts.displayName, name)
	}
	if len(strings.Fields(name)) != 3 {
		t.Fatalf("unexpected name shape %q", name)
	}
}

func TestOnboardNewUser_DeterministicWithSeed(t *testing.T) {
	a, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	b, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	if a != b {
		t.Fatalf("same seed produced %q and %q", a, b)
	}
}

func TestOnboardNewUser_UpdateFailureReturnsError(t *testing.T) {
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when profile update fails")
	}
}

func TestOnboardNewUser_RequiresUserID(t *testing.T) {
	service := NewService(&fakeAccountPort{}, nil)
	if _, err := service.OnboardNewUser(context.Background(), ""); err == nil {
		t.Fatal("Expected error for empty user id")
	}
}
