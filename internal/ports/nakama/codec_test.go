package nakama

import (
	"errors"
	"testing"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/domain"
)

func TestEncodeEventNightSummary(t *testing.T) {
	op, data, err := encodeEvent(app.Event{
		Kind: app.EventNightSummary,
		Payload: app.NightSummaryPayload{
			Round: 2,
			Deaths: []app.DeathReport{{
				Cause:   domain.CauseMafia,
				Victims: []string{"u3"},
				Wills:   map[string][]string{"u3": {"it was u5"}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("encodeEvent error: %v", err)
	}
	if op != OpNightSummary {
		t.Fatalf("op = %d, want %d", op, OpNightSummary)
	}

	s, err := decodeFields(data)
	if err != nil {
		t.Fatalf("decodeFields error: %v", err)
	}
	if got := s.GetFields()["round"].GetNumberValue(); got != 2 {
		t.Fatalf("round = %v", got)
	}
	deaths := s.GetFields()["deaths"].GetListValue().GetValues()
	if len(deaths) != 1 {
		t.Fatalf("deaths = %v", deaths)
	}
	death := deaths[0].GetStructValue().GetFields()
	if death["cause"].GetStringValue() != string(domain.CauseMafia) {
		t.Fatalf("cause = %v", death["cause"])
	}
	if victims := stringList(death["victims"]); len(victims) != 1 || victims[0] != "u3" {
		t.Fatalf("victims = %v", victims)
	}
	will := stringList(death["wills"].GetStructValue().GetFields()["u3"])
	if len(will) != 1 || will[0] != "it was u5" {
		t.Fatalf("will = %v", will)
	}
}

func TestEncodeEventPhaseDuration(t *testing.T) {
	_, data, err := encodeEvent(app.Event{
		Kind:    app.EventPhaseChanged,
		Payload: app.PhaseChangedPayload{Phase: domain.PhaseNight, Round: 1, Duration: 1500 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("encodeEvent error: %v", err)
	}
	s, _ := decodeFields(data)
	if got := s.GetFields()["duration_ms"].GetNumberValue(); got != 1500 {
		t.Fatalf("duration_ms = %v", got)
	}
}

func TestEncodeEventUnknownPayload(t *testing.T) {
	if _, _, err := encodeEvent(app.Event{Kind: "custom", Payload: struct{}{}}); err == nil {
		t.Fatalf("expected an error for an unmapped payload")
	}
}

func TestDecodeClientMessages(t *testing.T) {
	ans, err := decodeAnswer([]byte(`{"kind":"compare","targets":["u1","u2"]}`))
	if err != nil {
		t.Fatalf("decodeAnswer error: %v", err)
	}
	if ans.Kind != domain.ActionCompare || len(ans.Targets) != 2 || ans.Targets[1] != "u2" {
		t.Fatalf("answer = %+v", ans)
	}

	tests := []struct {
		name string
		run  func() error
	}{
		{name: "AnswerWithoutKind", run: func() error { _, err := decodeAnswer([]byte(`{"targets":["u1"]}`)); return err }},
		{name: "AnswerNotJSON", run: func() error { _, err := decodeAnswer([]byte(`kill u1`)); return err }},
		{name: "EmptyWill", run: func() error { _, err := decodeWill([]byte(`{"line":""}`)); return err }},
		{name: "VoteNotJSON", run: func() error { _, err := decodeVote([]byte(`{`)); return err }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.run(); !errors.Is(err, errMalformed) {
				t.Fatalf("error = %v, want errMalformed", err)
			}
		})
	}

	choice, err := decodeVote([]byte(`{}`))
	if err != nil || choice != "" {
		t.Fatalf("empty vote = %q, %v", choice, err)
	}
}

func TestEncodeLabel(t *testing.T) {
	lobby := domain.NewLobby(6)
	lobby.Seats[0] = "u1"
	label, err := encodeLabel(domain.ComputeLabel(lobby, domain.PhaseLobby))
	if err != nil {
		t.Fatalf("encodeLabel error: %v", err)
	}
	s, err := decodeFields([]byte(label))
	if err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	f := s.GetFields()
	if f["open"].GetNumberValue() != 5 || f["game"].GetStringValue() != domain.GameName || f["phase"].GetStringValue() != "lobby" {
		t.Fatalf("label = %s", label)
	}
}

func TestStandingSignal(t *testing.T) {
	req, err := encodeStandingRequest("u1")
	if err != nil {
		t.Fatalf("encodeStandingRequest error: %v", err)
	}
	if id, err := decodeStandingRequest(req); err != nil || id != "u1" {
		t.Fatalf("decoded request = %q, %v", id, err)
	}

	want := app.VoiceStanding{Seated: true, InGame: true, Alive: true, Alignment: domain.AlignmentMafia}
	reply, err := encodeStanding(want)
	if err != nil {
		t.Fatalf("encodeStanding error: %v", err)
	}
	if got, err := decodeStanding(reply); err != nil || got != want {
		t.Fatalf("standing = %+v, %v", got, err)
	}
}
