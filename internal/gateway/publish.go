package gateway

import (
	"encoding/json"
	"log"

	"jokenpo-duel/internal/events"
	"jokenpo-duel/internal/session"
)

// publish transforma os eventos de ciclo de vida de um despacho em registros
// de partida. Um pareamento gera dois opponent_found, mas um único registro.
func (g *Gateway) publish(conn session.ConnectionID, evs []session.Event) {
	seen := make(map[string]bool)
	for _, ev := range evs {
		rec, ok := recordFor(conn, ev)
		if !ok || seen[ev.RoomID+string(rec.Kind)] {
			continue
		}
		seen[ev.RoomID+string(rec.Kind)] = true
		if err := g.publisher.Publish(rec); err != nil {
			log.Printf("[Gateway] WARN: match record %s/%s not published: %v", rec.Kind, rec.RoomID, err)
		}
	}
}

func recordFor(conn session.ConnectionID, ev session.Event) (events.MatchRecord, bool) {
	switch ev.Type {
	case session.EventOpponentFound:
		p, ok := ev.Payload.(session.OpponentFoundPayload)
		if !ok || len(ev.To) == 0 {
			return events.MatchRecord{}, false
		}
		// O primeiro opponent_found vai para o Player1.
		return events.MatchRecord{
			Kind:    events.KindStarted,
			RoomID:  ev.RoomID,
			Players: []string{string(ev.To[0]), string(p.OpponentID)},
		}, true

	case session.EventGameOver:
		p, ok := ev.Payload.(session.GameOverPayload)
		if !ok {
			return events.MatchRecord{}, false
		}
		rec := events.MatchRecord{Kind: events.KindCompleted, RoomID: ev.RoomID}
		for _, s := range p.FinalScores {
			rec.Players = append(rec.Players, string(s.Player))
		}
		if scores, err := json.Marshal(p.FinalScores); err == nil {
			rec.Scores = scores
		}
		if p.FinalWinner != nil {
			w := string(*p.FinalWinner)
			rec.Winner = &w
		}
		return rec, true

	case session.EventOpponentLeft, session.EventOpponentDisconnected:
		reason := "left"
		if ev.Type == session.EventOpponentDisconnected {
			reason = "disconnected"
		}
		players := []string{string(conn)}
		for _, to := range ev.To {
			players = append(players, string(to))
		}
		return events.MatchRecord{
			Kind:    events.KindAbandoned,
			RoomID:  ev.RoomID,
			Players: players,
			Reason:  reason,
		}, true
	}
	return events.MatchRecord{}, false
}
