package account

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName é o cookie que carrega o token de sessão.
const CookieName = "jokenpo_session"

// Identity é o usuário por trás de uma sessão válida.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type sessionEntry struct {
	identity Identity
	expires  time.Time
}

// Sessions guarda as sessões em memória, por token. É o AuthProvider do
// servidor: o WebSocket só aceita conexões com um cookie válido.
type Sessions struct {
	mu      sync.Mutex
	byToken map[string]sessionEntry
	ttl     time.Duration
	secure  bool
	now     func() time.Time
}

func NewSessions(ttl time.Duration, secureCookie bool) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{
		byToken: make(map[string]sessionEntry),
		ttl:     ttl,
		secure:  secureCookie,
		now:     time.Now,
	}
}

// Create abre uma sessão para u e escreve o cookie na resposta.
func (s *Sessions) Create(w http.ResponseWriter, u User) Identity {
	token := uuid.NewString()
	id := Identity{UserID: u.ID, Username: u.Username}
	expires := s.now().Add(s.ttl)

	s.mu.Lock()
	s.byToken[token] = sessionEntry{identity: id, expires: expires}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Current retorna a identidade da requisição, se o cookie for válido e não expirado.
func (s *Sessions) Current(r *http.Request) (Identity, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Identity{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byToken[c.Value]
	if !ok {
		return Identity{}, false
	}
	if s.now().After(entry.expires) {
		delete(s.byToken, c.Value)
		return Identity{}, false
	}
	return entry.identity, true
}

// CurrentIdentity implementa network.Authenticator.
func (s *Sessions) CurrentIdentity(r *http.Request) (string, bool) {
	id, ok := s.Current(r)
	if !ok {
		return "", false
	}
	return id.Username, true
}

// Destroy encerra a sessão da requisição e apaga o cookie.
func (s *Sessions) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		s.mu.Lock()
		delete(s.byToken, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
	})
}

// Sweep remove sessões expiradas. Retorna quantas foram removidas.
func (s *Sessions) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, entry := range s.byToken {
		if now.After(entry.expires) {
			delete(s.byToken, token)
			removed++
		}
	}
	return removed
}
