package domain

// Lobby tracks seats before and during a game. Seats keep their index for the whole match.
type Lobby struct {
	Seats     []string // index => userId or ""
	OwnerSeat int
}

// NewLobby creates a lobby with the given number of seats and no owner.
func NewLobby(capacity int) *Lobby {
	return &Lobby{Seats: make([]string, capacity), OwnerSeat: -1}
}

// LowestAvailableSeat returns the lowest empty seat index or -1 when full.
func (l *Lobby) LowestAvailableSeat() int {
	for i, userID := range l.Seats {
		if userID == "" {
			return i
		}
	}
	return -1
}

// SeatOf returns the seat index of a user or -1.
func (l *Lobby) SeatOf(userID string) int {
	for i, id := range l.Seats {
		if id != "" && id == userID {
			return i
		}
	}
	return -1
}

// OpenSeats counts empty seats.
func (l *Lobby) OpenSeats() int {
	n := 0
	for _, id := range l.Seats {
		if id == "" {
			n++
		}
	}
	return n
}

// Occupied returns seated user ids in seat order.
func (l *Lobby) Occupied() []string {
	out := make([]string, 0, len(l.Seats))
	for _, id := range l.Seats {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Owner returns the owner's user id or "".
func (l *Lobby) Owner() string {
	if l.OwnerSeat < 0 || l.OwnerSeat >= len(l.Seats) {
		return ""
	}
	return l.Seats[l.OwnerSeat]
}
