package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		kind   Kind
		want   string
	}{
		{"", KindStarted, "jokenpo.match.started"},
		{"lab.matches", KindCompleted, "lab.matches.completed"},
		{"jokenpo.match", KindAbandoned, "jokenpo.match.abandoned"},
	}
	for _, tt := range tests {
		if got := Subject(tt.prefix, tt.kind); got != tt.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", tt.prefix, tt.kind, got, tt.want)
		}
	}
}

func TestEncodeFillsTimestamp(t *testing.T) {
	winner := "p1"
	data, err := Encode(MatchRecord{
		Kind:    KindCompleted,
		RoomID:  "room_p1_p2",
		Players: []string{"p1", "p2"},
		Scores:  json.RawMessage(`{"p1":2,"p2":1}`),
		Winner:  &winner,
	})
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["kind"] != "completed" || got["winner"] != "p1" {
		t.Errorf("unexpected record %s", data)
	}
	ts, ok := got["timestamp"].(string)
	if !ok {
		t.Fatalf("timestamp missing in %s", data)
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("timestamp %q: %v", ts, err)
	}
	if _, present := got["reason"]; present {
		t.Errorf("reason should be omitted: %s", data)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(MatchRecord{Kind: KindStarted}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
