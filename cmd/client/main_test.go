package main

import (
	"strings"
	"testing"

	"jokenpo-duel/internal/game/move"
	"jokenpo-duel/internal/network"
	"jokenpo-duel/internal/session"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  move.Move
		ok    bool
	}{
		{"1", move.Rock, true},
		{"2", move.Paper, true},
		{"3", move.Scissors, true},
		{"Scissors", move.Scissors, true},
		{"4", "", false},
		{"lizard", "", false},
	}
	for _, tt := range tests {
		got, ok := parseChoice(tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseChoice(%q) = %q, %t; want %q, %t", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPromptText(t *testing.T) {
	if got := promptText(view{state: StateLobby}); !strings.Contains(got, "1. Find opponent") {
		t.Errorf("lobby prompt = %q", got)
	}
	if got := promptText(view{state: StateWaiting}); !strings.Contains(got, "(Waiting)") {
		t.Errorf("waiting prompt = %q", got)
	}
	if got := promptText(view{state: StateInMatch, round: 2}); !strings.Contains(got, "(Round 2)") {
		t.Errorf("match prompt = %q", got)
	}
}

func TestFormatScores(t *testing.T) {
	scores := session.Scores{{Player: "me", Wins: 2}, {Player: "them", Wins: 1}}
	if got := formatScores(scores, "me"); got != "you=2 them=1" {
		t.Errorf("formatScores = %q", got)
	}
}

func TestServerMessagesDriveState(t *testing.T) {
	st := &clientState{state: StateLobby}
	steps := []struct {
		msgType string
		payload any
		state   string
	}{
		{"welcome", map[string]string{"connectionId": "me"}, StateLobby},
		{string(session.EventWaitingForOpponent), nil, StateWaiting},
		{string(session.EventOpponentFound), session.OpponentFoundPayload{RoomID: "room_x_me", OpponentID: "x"}, StateInMatch},
		{string(session.EventNextRound), session.NextRoundPayload{Round: 2}, StateInMatch},
		{string(session.EventOpponentLeft), nil, StateLobby},
	}
	for _, step := range steps {
		msg, err := network.NewMessage(step.msgType, step.payload)
		if err != nil {
			t.Fatal(err)
		}
		handleServerMessage(st, msg)
		if got := st.snapshot().state; got != step.state {
			t.Fatalf("after %s state = %s, want %s", step.msgType, got, step.state)
		}
	}
	if v := st.snapshot(); v.myID != "me" || v.roomID != "" {
		t.Errorf("final view = %+v", v)
	}
}
