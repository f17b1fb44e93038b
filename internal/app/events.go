package app

import (
	"context"
	"time"

	"mafiaville/internal/domain"
)

// EventKind identifies emitted game events for dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventSetupFailed    EventKind = "setup_failed"
	EventRoleAssigned   EventKind = "role_assigned"
	EventPhaseChanged   EventKind = "phase_changed"
	EventJailed         EventKind = "jailed"
	EventMafiaOrder     EventKind = "mafia_order"
	EventNotice         EventKind = "notice"
	EventInvestigation  EventKind = "investigation"
	EventComparison     EventKind = "comparison"
	EventSpyReport      EventKind = "spy_report"
	EventRoleChanged    EventKind = "role_changed"
	EventNightSummary   EventKind = "night_summary"
	EventNominationDone EventKind = "nomination_result"
	EventVerdictDone    EventKind = "verdict_result"
	EventSnapshot       EventKind = "snapshot"
	EventGameEnded      EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// EventSink delivers events produced by the engine. Publish may be called from
// several goroutines while prompts are outstanding.
type EventSink interface {
	Publish(ctx context.Context, events []Event)
}

// NoticeKind is the reason of an actor-facing notice.
type NoticeKind string

const (
	NoticeTargetUnavailable NoticeKind = "target_unavailable"
	NoticeTargetGone        NoticeKind = "target_gone"
	NoticeDistracted        NoticeKind = "distracted"
	NoticeDistractionFailed NoticeKind = "distraction_failed"
	NoticePrisonerVisited   NoticeKind = "prisoner_visited"
	NoticeInvalidChoice     NoticeKind = "invalid_choice"
	NoticeNoResponse        NoticeKind = "no_response"
	NoticeExecutionsRevoked NoticeKind = "executions_revoked"
	NoticeKillFailed        NoticeKind = "kill_failed"
	NoticeHealSaved         NoticeKind = "heal_saved"
	NoticeRevealBlocked     NoticeKind = "reveal_blocked"
	NoticeAttackedButHealed NoticeKind = "attacked_but_healed"
)

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
	Owner  bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	GameID  string
	Players []string
	Mafia   int
	Village int
	Neutral int
}

type SetupFailedPayload struct {
	Unreachable []string
}

type RoleAssignedPayload struct {
	Role              domain.Role
	Alignment         domain.Alignment
	Teammates         []string
	ExecutionerTarget string
}

type PhaseChangedPayload struct {
	Phase    domain.Phase
	Round    int
	Duration time.Duration
}

type JailedPayload struct {
	Round int
}

type MafiaOrderPayload struct {
	OrderedBy string
	Target    string
}

type NoticePayload struct {
	Kind   NoticeKind
	Role   domain.Role
	Target string
}

type InvestigationPayload struct {
	Target     string
	Suspicious bool
}

type ComparisonPayload struct {
	First    string
	Second   string
	SameSide bool
}

type SpyReportPayload struct {
	Target  string
	Visited []string // empty means no visit
}

type RoleChangedPayload struct {
	From domain.Role
	To   domain.Role
}

// DeathReport is the public rendering of one ledger entry.
type DeathReport struct {
	Cause         domain.Cause
	Victims       []string
	SelfInflicted bool
	Wills         map[string][]string
}

type NightSummaryPayload struct {
	Round  int
	Deaths []DeathReport
}

type NominationPayload struct {
	Round     int
	Counts    map[string]int
	Threshold int
	Nominee   string // empty when nobody was nominated
}

type VerdictPayload struct {
	Round    int
	Nominee  string
	Guilty   int
	Innocent int
	Executed bool
	Will     []string
	Role     domain.Role
}

type SnapshotPayload struct {
	Snapshot domain.Snapshot
}

type GameEndedPayload struct {
	Winner    domain.Winner
	WinnerIDs []string
	CoWinners []string
	Roles     map[string]domain.Role
}

func notice(to string, kind NoticeKind, role domain.Role, target string) Event {
	return Event{
		Kind:       EventNotice,
		Payload:    NoticePayload{Kind: kind, Role: role, Target: target},
		Recipients: []string{to},
	}
}
