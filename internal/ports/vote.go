package ports

import (
	"context"
	"time"
)

// BallotKind distinguishes the two day votes.
type BallotKind string

const (
	BallotNomination BallotKind = "nomination"
	BallotVerdict    BallotKind = "verdict"
)

// Verdict choices for the execution vote.
const (
	VoteGuilty   = "guilty"
	VoteInnocent = "innocent"
)

// Ballot describes one voting window.
type Ballot struct {
	Kind    BallotKind
	Round   int
	Voters  []string
	Choices []string // candidate ids or verdict choices
	Nominee string   // set for verdict ballots
	Window  time.Duration
}

// VotePort gathers votes among eligible voters.
type VotePort interface {
	// CollectVotes returns voter -> choice pairs gathered within the ballot window.
	CollectVotes(ctx context.Context, ballot Ballot) (map[string]string, error)
}
