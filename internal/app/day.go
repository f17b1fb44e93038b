package app

import (
	"slices"

	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// NominationResult is the outcome of the nomination stage.
type NominationResult struct {
	Counts    map[string]int
	Top       int
	Threshold int
	Nominee   string
}

// Nominated reports whether the day proceeds to an execution vote.
func (r NominationResult) Nominated() bool {
	return r.Nominee != ""
}

// VerdictResult is the outcome of the execution vote.
type VerdictResult struct {
	Nominee  string
	Guilty   int
	Innocent int
	Executed bool
}

// voteWeight is 2 for the revealed, living Mayor and 1 for everyone else.
func voteWeight(session *domain.GameSession, voter string) int {
	if voter != "" && voter == session.RevealedMayor() {
		return 2
	}
	return 1
}

// TallyNomination counts nomination votes. Voters and candidates must be
// living and unsilenced. A nominee needs a unique weighted maximum that,
// without the Mayor's bonus vote, exceeds domain.NominationThreshold.
func (s *Service) TallyNomination(session *domain.GameSession, votes map[string]string) ([]Event, NominationResult) {
	eligible := session.AliveUnsilenced()
	res := NominationResult{
		Counts:    make(map[string]int),
		Threshold: domain.NominationThreshold(session.AliveCount()),
	}
	mayor := session.RevealedMayor()
	mayorChoice := ""
	for voter, candidate := range votes {
		if !slices.Contains(eligible, voter) || !slices.Contains(eligible, candidate) {
			continue
		}
		res.Counts[candidate] += voteWeight(session, voter)
		if voter == mayor {
			mayorChoice = candidate
		}
	}

	leader, top, ok := domain.UniqueLeader(res.Counts)
	res.Top = top
	if ok {
		bonus := 0
		if mayor != "" && mayorChoice == leader {
			bonus = 1
		}
		if top-bonus > res.Threshold {
			res.Nominee = leader
		}
	}
	if session.Current != nil {
		session.Current.Nominee = res.Nominee
	}

	return []Event{{
		Kind: EventNominationDone,
		Payload: NominationPayload{
			Round:     session.Round,
			Counts:    res.Counts,
			Threshold: res.Threshold,
			Nominee:   res.Nominee,
		},
	}}, res
}

// VerdictVoters returns who may vote on the nominee's fate.
func VerdictVoters(session *domain.GameSession, nominee string) []string {
	voters := session.AliveUnsilenced()
	return slices.DeleteFunc(voters, func(id string) bool { return id == nominee })
}

// ResolveVerdict counts guilty and innocent votes. Strictly more guilty
// weight executes the nominee with cause domain.CauseVote.
func (s *Service) ResolveVerdict(session *domain.GameSession, nominee string, votes map[string]string) ([]Event, VerdictResult) {
	res := VerdictResult{Nominee: nominee}
	voters := VerdictVoters(session, nominee)
	for voter, choice := range votes {
		if !slices.Contains(voters, voter) {
			continue
		}
		switch choice {
		case ports.VoteGuilty:
			res.Guilty += voteWeight(session, voter)
		case ports.VoteInnocent:
			res.Innocent += voteWeight(session, voter)
		}
	}

	var events []Event
	payload := VerdictPayload{Round: session.Round, Nominee: nominee}
	if res.Guilty > res.Innocent && session.Kill(nominee) {
		res.Executed = true
		p := session.Players[nominee]
		payload.Will = slices.Clone(p.LastWill)
		payload.Role = p.Role
		if session.Current != nil {
			session.Current.Executed = nominee
			session.Current.Record(domain.Death{Cause: domain.CauseVote, Victims: []string{nominee}})
		}
		events = append(events, onDeath(session, nominee, domain.CauseVote)...)
	}
	payload.Guilty, payload.Innocent, payload.Executed = res.Guilty, res.Innocent, res.Executed

	return append([]Event{{Kind: EventVerdictDone, Payload: payload}}, events...), res
}
