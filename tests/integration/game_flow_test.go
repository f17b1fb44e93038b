package integration

import (
	"context"
	"testing"
	"time"
)

// Op codes of the mafiaville match handler.
const (
	opStartGame    = 1
	opGameStarted  = 103
	opRoleAssigned = 105
	opPhaseChanged = 106
)

func TestFullGameStart(t *testing.T) {
	const players = 5
	clients := make([]*TestClient, players)
	for i := range clients {
		clients[i] = NewTestClient(t)
		defer clients[i].Close()
	}

	matchID := clients[0].QuickMatch(t)
	t.Logf("Client 0 created/joined match: %s", matchID)
	for i := 1; i < players; i++ {
		if _, err := clients[i].Socket.JoinMatch(context.Background(), nil, matchID, nil); err != nil {
			t.Fatalf("Client %d failed to join match: %v", i, err)
		}
	}

	// Wait a bit for presences to sync
	time.Sleep(1 * time.Second)

	if _, err := clients[0].Socket.SendMatchState(context.Background(), matchID, opStartGame, []byte("{}"), nil); err != nil {
		t.Fatalf("Failed to send StartGame: %v", err)
	}

	// Role cards go out before the game_started broadcast.
	for i, c := range clients {
		card := c.WaitForMatchState(t, opRoleAssigned, 5*time.Second)
		if role, _ := card["role"].(string); role == "" {
			t.Errorf("Client %d received an empty role card: %v", i, card)
		}

		started := c.WaitForMatchState(t, opGameStarted, 5*time.Second)
		if got, _ := started["players"].([]interface{}); len(got) != players {
			t.Errorf("Client %d saw %d players, want %d", i, len(got), players)
		}

		phase := c.WaitForMatchState(t, opPhaseChanged, 5*time.Second)
		if phase["phase"] != "night" {
			t.Errorf("Client %d first phase = %v, want night", i, phase["phase"])
		}
	}
}
