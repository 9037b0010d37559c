// move/rule.go
package move

import (
	"errors"
	"fmt"
	"strings"
)

// Move é uma das três jogadas possíveis do Jokenpo.
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// RoundsVersusPlayer é o número fixo de rodadas de uma partida entre dois jogadores.
const RoundsVersusPlayer = 3

// Outcome é o resultado de uma rodada, sempre do ponto de vista de (Player1, Player2).
type Outcome int

const (
	Draw Outcome = iota
	Player1Wins
	Player2Wins
)

var ErrUnknownMove = errors.New("unknown move")

// winConditions define a regra primária do Jokenpo.
// A chave vence o valor. Ex: "rock" vence "scissors".
var winConditions = map[Move]Move{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// All retorna as jogadas válidas numa ordem estável.
func All() []Move {
	return []Move{Rock, Paper, Scissors}
}

// Parse converte o texto vindo do cliente numa Move válida.
func Parse(s string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := winConditions[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMove, s)
	}
	return m, nil
}

func (m Move) Valid() bool {
	_, ok := winConditions[m]
	return ok
}

// Beats informa se m vence other.
func (m Move) Beats(other Move) bool {
	return winConditions[m] == other
}

// Resolve compara a jogada do Player1 (a) com a do Player2 (b).
// Jogadas iguais empatam.
func Resolve(a, b Move) Outcome {
	if a.Beats(b) {
		return Player1Wins
	}
	if b.Beats(a) {
		return Player2Wins
	}
	return Draw
}

// Complement troca os papéis dos jogadores: Resolve(b, a) == Resolve(a, b).Complement().
func (o Outcome) Complement() Outcome {
	switch o {
	case Player1Wins:
		return Player2Wins
	case Player2Wins:
		return Player1Wins
	}
	return Draw
}

func (o Outcome) String() string {
	switch o {
	case Player1Wins:
		return "player1_wins"
	case Player2Wins:
		return "player2_wins"
	}
	return "draw"
}
