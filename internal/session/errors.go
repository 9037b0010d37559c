package session

import "errors"

// Erros internos do núcleo. Nenhum deles atravessa o Dispatch: o Manager
// registra no log e simplesmente não emite eventos.
var (
	// ErrInvalidRoom: roomId inexistente ou sala que já não está ativa.
	ErrInvalidRoom = errors.New("invalid room")

	// ErrDuplicateWaiter: a mesma conexão pediu oponente duas vezes.
	// Não é falha, a conexão continua esperando.
	ErrDuplicateWaiter = errors.New("connection is already waiting for an opponent")

	// ErrUnknownParticipant: a conexão não faz parte da sala indicada.
	ErrUnknownParticipant = errors.New("connection is not a participant of the room")

	// ErrAlreadyInRoom: a conexão pediu oponente enquanto ainda joga outra partida.
	ErrAlreadyInRoom = errors.New("connection is already playing in a room")
)
