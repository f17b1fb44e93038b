package domain

import "sort"

// NominationThreshold is ceil(alive/2.4) computed in integers.
// A nominee needs strictly more weighted votes than this.
func NominationThreshold(alive int) int {
	if alive <= 0 {
		return 0
	}
	return (5*alive + 11) / 12
}

// MafiaCap is the largest Mafia team allowed for n players.
func MafiaCap(n int) int {
	return n / 3
}

// UniqueLeader returns the candidate with strictly the highest count.
// ok is false on a tie at the top or when nobody received a vote.
func UniqueLeader(counts map[string]int) (leader string, top int, ok bool) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tied := false
	for _, id := range ids {
		c := counts[id]
		switch {
		case c > top:
			leader, top, tied = id, c, false
		case c == top && c > 0:
			tied = true
		}
	}
	if top == 0 || tied {
		return "", top, false
	}
	return leader, top, true
}

// IsSuspicious is what the Detective and PI read: Mafia members and framed players.
func IsSuspicious(p *Player) bool {
	return p.Alignment == AlignmentMafia || p.Framed
}
