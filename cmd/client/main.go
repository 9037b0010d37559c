package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"jokenpo-duel/internal/account"
	"jokenpo-duel/internal/game/move"
	"jokenpo-duel/internal/gateway"
	"jokenpo-duel/internal/network"
	"jokenpo-duel/internal/session"
)

const (
	StateLobby   = "Lobby"
	StateWaiting = "Waiting"
	StateInMatch = "InMatch"
)

// clientState é lido pela goroutine de entrada e escrito pelo readLoop.
type clientState struct {
	mu     sync.Mutex
	state  string
	myID   string
	roomID string
	round  int
}

func (s *clientState) set(fn func(s *clientState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// view é uma cópia do estado, sem o lock.
type view struct {
	state  string
	myID   string
	roomID string
	round  int
}

func (s *clientState) snapshot() view {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view{state: s.state, myID: s.myID, roomID: s.roomID, round: s.round}
}

// Variáveis de ambiente:
//
//	SERVER_ADDRESSES   lista de host:porta separada por vírgulas (failover)
//	JOKENPO_USERNAME   se definido, faz login antes de conectar
//	JOKENPO_PASSWORD
//	JOKENPO_EMAIL      se definido junto com o usuário, cadastra a conta antes
func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addresses := []string{"localhost:8080"}
	if env := os.Getenv("SERVER_ADDRESSES"); env != "" {
		addresses = strings.Split(env, ",")
	}

	conn := connect(addresses)
	if conn == nil {
		log.Fatalf("Could not connect to any of the servers %v. Exiting.", addresses)
	}
	defer conn.Close()

	st := &clientState{state: StateLobby}
	done := make(chan struct{})
	go readLoop(conn, st, done)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			handleUserInput(conn, st, strings.TrimSpace(scanner.Text()))
		}
	}()

	select {
	case <-done:
		log.Println("Disconnected from server.")
	case <-interrupt:
		log.Println("Interrupt received, closing connection.")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

// connect tenta cada endereço até um upgrade dar certo.
func connect(addresses []string) *websocket.Conn {
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)

		header := http.Header{}
		if user := os.Getenv("JOKENPO_USERNAME"); user != "" {
			cookie, err := authenticate("http://"+addr, user)
			if err != nil {
				log.Printf("WARN: login at %s failed: %v", addr, err)
				continue
			}
			header.Set("Cookie", cookie.Name+"="+cookie.Value)
		}

		u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
		log.Printf("Connecting to %s", u.String())
		conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
		if err == nil {
			log.Println("WebSocket connected!")
			return conn
		}
		log.Printf("WARN: failed to connect to %s: %v", addr, err)
		if resp != nil {
			log.Printf("WARN: response status: %s", resp.Status)
		}
	}
	return nil
}

func authenticate(baseURL, user string) (*http.Cookie, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := account.NewClient(baseURL)
	password := os.Getenv("JOKENPO_PASSWORD")
	if email := os.Getenv("JOKENPO_EMAIL"); email != "" {
		if err := c.SignUp(ctx, user, email, password); err != nil && !errors.Is(err, account.ErrUsernameTaken) {
			return nil, err
		}
	}
	return c.Login(ctx, user, password)
}

func readLoop(conn *websocket.Conn, st *clientState, done chan struct{}) {
	defer close(done)
	for {
		var msg network.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("\nRead error: %v", err)
			} else {
				log.Println("\nConnection closed.")
			}
			return
		}
		handleServerMessage(st, msg)
		printPrompt(st)
	}
}

func handleServerMessage(st *clientState, msg network.Message) {
	me := st.snapshot().myID

	switch msg.Type {
	case gateway.MsgWelcome:
		var p gateway.WelcomePayload
		if msg.DecodePayload(&p) == nil {
			st.set(func(s *clientState) { s.myID = p.ConnectionID })
			fmt.Printf("\nWelcome to Jokenpo! Your connection id is %s\n", p.ConnectionID)
		}

	case gateway.MsgError:
		var p gateway.ErrorPayload
		msg.DecodePayload(&p)
		fmt.Printf("\nError: %s\n", p.Error)

	case string(session.EventWaitingForOpponent):
		st.set(func(s *clientState) { s.state = StateWaiting })
		fmt.Println("\nWaiting for an opponent...")

	case string(session.EventOpponentFound):
		var p session.OpponentFoundPayload
		if msg.DecodePayload(&p) == nil {
			st.set(func(s *clientState) { s.state, s.roomID, s.round = StateInMatch, p.RoomID, 1 })
			fmt.Printf("\nOpponent found: %s (room %s)\n", p.OpponentID, p.RoomID)
		}

	case string(session.EventRoundResult):
		var p session.RoundResultPayload
		if msg.DecodePayload(&p) != nil {
			return
		}
		mine, theirs := p.Player1Choice, p.Player2Choice
		if string(p.Player2ID) == me {
			mine, theirs = theirs, mine
		}
		result := "Draw!"
		if p.Winner != nil {
			result = "You lost the round."
			if string(*p.Winner) == me {
				result = "You won the round!"
			}
		}
		fmt.Printf("\nYou played %s, opponent played %s. %s Score: %s\n", mine, theirs, result, formatScores(p.Scores, me))

	case string(session.EventNextRound):
		var p session.NextRoundPayload
		if msg.DecodePayload(&p) == nil {
			st.set(func(s *clientState) { s.round = p.Round })
		}

	case string(session.EventGameOver):
		var p session.GameOverPayload
		if msg.DecodePayload(&p) != nil {
			return
		}
		st.set(func(s *clientState) { s.state, s.roomID = StateLobby, "" })
		switch {
		case p.FinalWinner == nil:
			fmt.Printf("\nGame over: it's a tie! Final score: %s\n", formatScores(p.FinalScores, me))
		case string(*p.FinalWinner) == me:
			fmt.Printf("\nGame over: YOU WIN! Final score: %s\n", formatScores(p.FinalScores, me))
		default:
			fmt.Printf("\nGame over: you lose. Final score: %s\n", formatScores(p.FinalScores, me))
		}

	case string(session.EventOpponentLeft), string(session.EventOpponentDisconnected):
		st.set(func(s *clientState) { s.state, s.roomID = StateLobby, "" })
		fmt.Println("\nYour opponent left the match.")

	default:
		fmt.Printf("\nInfo (%s): %s\n", msg.Type, string(msg.Payload))
	}
}

func formatScores(scores session.Scores, me string) string {
	parts := make([]string, 0, len(scores))
	for _, s := range scores {
		name := string(s.Player)
		if name == me {
			name = "you"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.Wins))
	}
	return strings.Join(parts, " ")
}

func handleUserInput(conn *websocket.Conn, st *clientState, input string) {
	snap := st.snapshot()
	switch snap.state {
	case StateLobby, StateWaiting:
		if input == "1" {
			send(conn, gateway.MsgFindOpponent, nil)
			return
		}
		fmt.Println("Invalid option.")

	case StateInMatch:
		if input == "0" {
			send(conn, gateway.MsgLeaveRoom, gateway.LeaveRoomPayload{RoomID: snap.roomID})
			st.set(func(s *clientState) { s.state, s.roomID = StateLobby, "" })
			printPrompt(st)
			return
		}
		m, ok := parseChoice(input)
		if !ok {
			fmt.Println("Invalid move. Type 1 (rock), 2 (paper), 3 (scissors) or the move name.")
			printPrompt(st)
			return
		}
		send(conn, gateway.MsgSubmitChoice, gateway.SubmitChoicePayload{RoomID: snap.roomID, Move: string(m)})
		fmt.Printf("You chose %s. Waiting for the opponent...\n", m)
	}
}

func parseChoice(input string) (move.Move, bool) {
	switch input {
	case "1":
		return move.Rock, true
	case "2":
		return move.Paper, true
	case "3":
		return move.Scissors, true
	}
	m, err := move.Parse(input)
	return m, err == nil
}

func send(conn *websocket.Conn, msgType string, payload any) {
	msg, err := network.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("Failed to build message: %v", err)
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func printPrompt(st *clientState) {
	fmt.Print(promptText(st.snapshot()))
}

// promptText monta o prompt do estado atual.
func promptText(v view) string {
	switch v.state {
	case StateLobby:
		return `
--- Jokenpo (Lobby) ---
1. Find opponent
-----------------------

(Lobby) Choose an option: `
	case StateWaiting:
		return "\n(Waiting) Press 1 to ask again, or Ctrl+C to quit: "
	case StateInMatch:
		return fmt.Sprintf("\n(Round %d) 1. Rock  2. Paper  3. Scissors  0. Leave: ", v.round)
	}
	return ""
}
