package nakama

import (
	"errors"
	"fmt"

	"mafiaville/internal/app"
	"mafiaville/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages in both directions are google.protobuf.Struct values in protojson form,
// so clients decode them as plain JSON objects.

var errMalformed = errors.New("malformed message")

func encodeFields(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

func decodeFields(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return s, nil
}

// encodeEvent maps an app event to its op code and wire payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	op, fields, err := eventFields(ev)
	if err != nil {
		return 0, nil, err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return op, data, nil
}

func eventFields(ev app.Event) (int64, map[string]interface{}, error) {
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		return OpPlayerJoined, map[string]interface{}{"user_id": p.UserID, "seat": p.Seat, "owner": p.Owner}, nil
	case app.PlayerLeftPayload:
		return OpPlayerLeft, map[string]interface{}{"user_id": p.UserID}, nil
	case app.GameStartedPayload:
		return OpGameStarted, map[string]interface{}{
			"game_id": p.GameID,
			"players": list(p.Players),
			"mafia":   p.Mafia,
			"village": p.Village,
			"neutral": p.Neutral,
		}, nil
	case app.SetupFailedPayload:
		return OpSetupFailed, map[string]interface{}{"unreachable": list(p.Unreachable)}, nil
	case app.RoleAssignedPayload:
		return OpRoleAssigned, map[string]interface{}{
			"role":               string(p.Role),
			"alignment":          string(p.Alignment),
			"teammates":          list(p.Teammates),
			"executioner_target": p.ExecutionerTarget,
		}, nil
	case app.PhaseChangedPayload:
		return OpPhaseChanged, map[string]interface{}{
			"phase":       string(p.Phase),
			"round":       p.Round,
			"duration_ms": p.Duration.Milliseconds(),
		}, nil
	case app.JailedPayload:
		return OpJailed, map[string]interface{}{"round": p.Round}, nil
	case app.MafiaOrderPayload:
		return OpMafiaOrder, map[string]interface{}{"ordered_by": p.OrderedBy, "target": p.Target}, nil
	case app.NoticePayload:
		return OpNotice, map[string]interface{}{"kind": string(p.Kind), "role": string(p.Role), "target": p.Target}, nil
	case app.InvestigationPayload:
		return OpInvestigation, map[string]interface{}{"target": p.Target, "suspicious": p.Suspicious}, nil
	case app.ComparisonPayload:
		return OpComparison, map[string]interface{}{"first": p.First, "second": p.Second, "same_side": p.SameSide}, nil
	case app.SpyReportPayload:
		return OpSpyReport, map[string]interface{}{"target": p.Target, "visited": list(p.Visited)}, nil
	case app.RoleChangedPayload:
		return OpRoleChanged, map[string]interface{}{"from": string(p.From), "to": string(p.To)}, nil
	case app.NightSummaryPayload:
		deaths := make([]interface{}, 0, len(p.Deaths))
		for _, d := range p.Deaths {
			wills := make(map[string]interface{}, len(d.Wills))
			for id, lines := range d.Wills {
				wills[id] = list(lines)
			}
			deaths = append(deaths, map[string]interface{}{
				"cause":          string(d.Cause),
				"victims":        list(d.Victims),
				"self_inflicted": d.SelfInflicted,
				"wills":          wills,
			})
		}
		return OpNightSummary, map[string]interface{}{"round": p.Round, "deaths": deaths}, nil
	case app.NominationPayload:
		counts := make(map[string]interface{}, len(p.Counts))
		for id, n := range p.Counts {
			counts[id] = n
		}
		return OpNominationResult, map[string]interface{}{
			"round":     p.Round,
			"counts":    counts,
			"threshold": p.Threshold,
			"nominee":   p.Nominee,
		}, nil
	case app.VerdictPayload:
		return OpVerdictResult, map[string]interface{}{
			"round":    p.Round,
			"nominee":  p.Nominee,
			"guilty":   p.Guilty,
			"innocent": p.Innocent,
			"executed": p.Executed,
			"will":     list(p.Will),
			"role":     string(p.Role),
		}, nil
	case app.SnapshotPayload:
		s := p.Snapshot
		return OpSnapshot, map[string]interface{}{
			"round":          s.Round,
			"phase":          string(s.Phase),
			"alive":          list(s.Alive),
			"dead":           list(s.Dead),
			"silenced":       list(s.Silenced),
			"revealed_mayor": s.RevealedMayor,
		}, nil
	case app.GameEndedPayload:
		roles := make(map[string]interface{}, len(p.Roles))
		for id, r := range p.Roles {
			roles[id] = string(r)
		}
		return OpGameEnded, map[string]interface{}{
			"winner":     string(p.Winner),
			"winner_ids": list(p.WinnerIDs),
			"co_winners": list(p.CoWinners),
			"roles":      roles,
		}, nil
	}
	return 0, nil, fmt.Errorf("no wire format for event %s (%T)", ev.Kind, ev.Payload)
}

func encodePrompt(p domain.ActionPrompt) ([]byte, error) {
	options := make([]interface{}, len(p.Options))
	for i, o := range p.Options {
		options[i] = string(o)
	}
	return encodeFields(map[string]interface{}{
		"role":    string(p.Role),
		"options": options,
		"targets": list(p.Targets),
		"note":    p.Note,
	})
}

func encodeBallot(kind string, round int, voters, choices []string, nominee string, windowMs int64) ([]byte, error) {
	return encodeFields(map[string]interface{}{
		"kind":      kind,
		"round":     round,
		"voters":    list(voters),
		"choices":   list(choices),
		"nominee":   nominee,
		"window_ms": windowMs,
	})
}

func encodeError(code int, message string) ([]byte, error) {
	return encodeFields(map[string]interface{}{"code": code, "message": message})
}

// encodeLabel renders the match label used by quick match queries.
func encodeLabel(l domain.LabelPayload) (string, error) {
	data, err := encodeFields(map[string]interface{}{
		"open":    l.Open,
		"game":    l.Game,
		"phase":   l.Phase,
		"players": l.Players,
	})
	return string(data), err
}

// decodeAnswer reads a night action message: {"kind": "...", "targets": [...]}.
func decodeAnswer(data []byte) (domain.Answer, error) {
	s, err := decodeFields(data)
	if err != nil {
		return domain.Answer{}, err
	}
	kind := s.GetFields()["kind"].GetStringValue()
	if kind == "" {
		return domain.Answer{}, fmt.Errorf("%w: missing kind", errMalformed)
	}
	return domain.Answer{Kind: domain.ActionKind(kind), Targets: stringList(s.GetFields()["targets"])}, nil
}

// decodeVote reads a vote message: {"choice": "..."}. An empty choice withdraws the vote.
func decodeVote(data []byte) (string, error) {
	s, err := decodeFields(data)
	if err != nil {
		return "", err
	}
	return s.GetFields()["choice"].GetStringValue(), nil
}

// decodeWill reads a last will line: {"line": "..."}.
func decodeWill(data []byte) (string, error) {
	s, err := decodeFields(data)
	if err != nil {
		return "", err
	}
	line := s.GetFields()["line"].GetStringValue()
	if line == "" {
		return "", fmt.Errorf("%w: empty will line", errMalformed)
	}
	return line, nil
}

func list(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func stringList(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, item := range values {
		out = append(out, item.GetStringValue())
	}
	return out
}

type seatView struct {
	UserID      string
	Seat        int
	DisplayName string
	Bot         bool
	Connected   bool
}

func encodeLobby(seats []seatView, ownerSeat int, phase domain.Phase) ([]byte, error) {
	players := make([]interface{}, 0, len(seats))
	for _, s := range seats {
		players = append(players, map[string]interface{}{
			"user_id":      s.UserID,
			"seat":         s.Seat,
			"display_name": s.DisplayName,
			"bot":          s.Bot,
			"connected":    s.Connected,
		})
	}
	return encodeFields(map[string]interface{}{
		"owner_seat": ownerSeat,
		"phase":      string(phase),
		"players":    players,
	})
}

// encodeStanding answers a voice standing signal.
func encodeStanding(st app.VoiceStanding) (string, error) {
	data, err := encodeFields(map[string]interface{}{
		"seated":    st.Seated,
		"in_game":   st.InGame,
		"alive":     st.Alive,
		"alignment": string(st.Alignment),
	})
	return string(data), err
}

func decodeStanding(data string) (app.VoiceStanding, error) {
	s, err := decodeFields([]byte(data))
	if err != nil {
		return app.VoiceStanding{}, err
	}
	f := s.GetFields()
	return app.VoiceStanding{
		Seated:    f["seated"].GetBoolValue(),
		InGame:    f["in_game"].GetBoolValue(),
		Alive:     f["alive"].GetBoolValue(),
		Alignment: domain.Alignment(f["alignment"].GetStringValue()),
	}, nil
}

// encodeStandingRequest builds the MatchSignal payload asking for a user's voice standing.
func encodeStandingRequest(userID string) (string, error) {
	data, err := encodeFields(map[string]interface{}{"kind": "voice_standing", "user_id": userID})
	return string(data), err
}

func decodeStandingRequest(data string) (string, error) {
	s, err := decodeFields([]byte(data))
	if err != nil {
		return "", err
	}
	f := s.GetFields()
	if f["kind"].GetStringValue() != "voice_standing" || f["user_id"].GetStringValue() == "" {
		return "", fmt.Errorf("%w: unknown signal", errMalformed)
	}
	return f["user_id"].GetStringValue(), nil
}
