package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"jokenpo-duel/internal/account"
	"jokenpo-duel/internal/game/move"
	"jokenpo-duel/internal/gateway"
	"jokenpo-duel/internal/network"
	"jokenpo-duel/internal/session"
)

const defaultServerAddr = "localhost:8080"

// Variáveis de ambiente:
//
//	SERVER_ADDR     endereço do servidor (host:porta)
//	BOT_LOGIN       "true" cadastra uma conta descartável e entra com ela
//	BOT_LEAVE_RATE  chance (0..1) de abandonar a sala depois de cada rodada
func main() {
	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = defaultServerAddr
	}
	leaveRate, _ := strconv.ParseFloat(os.Getenv("BOT_LEAVE_RATE"), 64)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	header := http.Header{}
	if os.Getenv("BOT_LOGIN") == "true" {
		cookie, err := signUpAndLogin(ctx, "http://"+addr)
		if err != nil {
			log.Printf("Login FAIL: %v", err)
			return
		}
		header.Set("Cookie", cookie.Name+"="+cookie.Value)
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		log.Println("Connection FAIL: could not connect to server:", err)
		return
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	b := &bot{conn: conn, leaveRate: leaveRate}
	if err := b.run(); err != nil && ctx.Err() == nil {
		log.Printf("Bot stopped: %v", err)
	}
}

func signUpAndLogin(ctx context.Context, baseURL string) (*http.Cookie, error) {
	c := account.NewClient(baseURL)
	name := "bot-" + uuid.NewString()[:8]
	password := uuid.NewString()
	if err := c.SignUp(ctx, name, name+"@bots.local", password); err != nil {
		return nil, err
	}
	return c.Login(ctx, name, password)
}

type bot struct {
	conn      *websocket.Conn
	leaveRate float64

	id     string
	roomID string
	played int
	wins   int
}

// run reage às mensagens do servidor: busca oponente, joga rodadas
// aleatórias e volta para a fila quando a partida termina.
func (b *bot) run() error {
	for {
		b.conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
		var msg network.Message
		if err := b.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch session.EventType(msg.Type) {
		case session.EventOpponentFound:
			var p session.OpponentFoundPayload
			if err := msg.DecodePayload(&p); err != nil {
				return err
			}
			b.roomID = p.RoomID
			log.Printf("[%s] Match found in %s against %s.", b.id, p.RoomID, p.OpponentID)
			if err := b.play(); err != nil {
				return err
			}

		case session.EventNextRound:
			if rand.Float64() < b.leaveRate {
				log.Printf("[%s] Leaving %s on purpose.", b.id, b.roomID)
				if err := b.send(gateway.MsgLeaveRoom, gateway.LeaveRoomPayload{RoomID: b.roomID}); err != nil {
					return err
				}
				b.roomID = ""
				if err := b.requeue(); err != nil {
					return err
				}
				continue
			}
			if err := b.play(); err != nil {
				return err
			}

		case session.EventGameOver:
			var p session.GameOverPayload
			if err := msg.DecodePayload(&p); err != nil {
				return err
			}
			b.played++
			if p.FinalWinner != nil && string(*p.FinalWinner) == b.id {
				b.wins++
			}
			log.Printf("[%s] Game over (%d/%d won).", b.id, b.wins, b.played)
			b.roomID = ""
			if err := b.requeue(); err != nil {
				return err
			}

		case session.EventOpponentLeft, session.EventOpponentDisconnected:
			b.roomID = ""
			if err := b.requeue(); err != nil {
				return err
			}

		default:
			if msg.Type == gateway.MsgWelcome {
				var w gateway.WelcomePayload
				if err := msg.DecodePayload(&w); err != nil {
					return err
				}
				b.id = w.ConnectionID
				if err := b.send(gateway.MsgFindOpponent, nil); err != nil {
					return err
				}
			}
		}
	}
}

func (b *bot) play() error {
	moves := move.All()
	m := moves[rand.Intn(len(moves))]
	time.Sleep(time.Duration(200+rand.Intn(800)) * time.Millisecond)
	return b.send(gateway.MsgSubmitChoice, gateway.SubmitChoicePayload{RoomID: b.roomID, Move: string(m)})
}

func (b *bot) requeue() error {
	time.Sleep(time.Duration(1+rand.Intn(3)) * time.Second)
	return b.send(gateway.MsgFindOpponent, nil)
}

func (b *bot) send(msgType string, payload any) error {
	msg, err := network.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.WriteJSON(msg)
}
