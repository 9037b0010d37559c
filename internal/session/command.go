package session

import "jokenpo-duel/internal/game/move"

// ConnectionID é a identidade opaca que a camada de transporte dá a cada conexão viva.
type ConnectionID string

// Command é a interface que todo comando aceito pelo Manager implementa.
// O conjunto é fechado: só os tipos deste arquivo são válidos.
type Command interface {
	isCommand()
}

// FindOpponent pede um oponente ao Matchmaker.
type FindOpponent struct{}

func (FindOpponent) isCommand() {}

// SubmitChoice registra a jogada da rodada atual.
type SubmitChoice struct {
	RoomID string
	Move   move.Move
}

func (SubmitChoice) isCommand() {}

// LeaveRoom é a saída voluntária de uma partida.
type LeaveRoom struct {
	RoomID string
}

func (LeaveRoom) isCommand() {}

// Disconnect é emitido pelo transporte quando a conexão cai.
type Disconnect struct{}

func (Disconnect) isCommand() {}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case FindOpponent:
		return "find-opponent"
	case SubmitChoice:
		return "submit-choice"
	case LeaveRoom:
		return "leave-room"
	case Disconnect:
		return "disconnect"
	}
	return "unknown"
}
