package brain

// SuspectProfile tracks the evidence a bot has gathered about one player.
type SuspectProfile struct {
	ID       string
	Standing Standing
	// Score accumulates suspicious readings; trusted players keep theirs for reference.
	Score int
}

// NewSuspectProfile initializes a profile for a player.
func NewSuspectProfile(id string) *SuspectProfile {
	return &SuspectProfile{ID: id}
}

// RecordSuspicious adds weight to the score. A trusted reading is never overturned by
// circumstantial evidence, but a direct suspicious reading is.
func (p *SuspectProfile) RecordSuspicious(weight int) {
	if p.Standing == StandingAlly || weight <= 0 {
		return
	}
	p.Score += weight
	if p.Standing == StandingTrusted && weight < 3 {
		return
	}
	p.Standing = StandingSuspected
}

// RecordCleared marks the player as trusted.
func (p *SuspectProfile) RecordCleared() {
	if p.Standing == StandingAlly {
		return
	}
	p.Standing = StandingTrusted
}
