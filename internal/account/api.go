package account

import (
	"encoding/json"
	"log"
	"net/http"
)

// ============================================================================
// DTOs (Data Transfer Objects)
// ============================================================================

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Username string `json:"username"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Configuração dos Handlers
// ============================================================================

// RegisterHandlers instala /register, /login, /logout e /me no mux.
// allowedOrigin vazio desliga o CORS.
func RegisterHandlers(mux *http.ServeMux, store *Store, sessions *Sessions, allowedOrigin string) {
	cors := corsMiddleware(allowedOrigin)
	mux.Handle("/register", cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRegister(w, r, store)
	})))
	mux.Handle("/login", cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleLogin(w, r, store, sessions)
	})))
	mux.Handle("/logout", cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleLogout(w, r, sessions)
	})))
	mux.Handle("/me", cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleMe(w, r, sessions)
	})))
}

func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Handlers
// ============================================================================

func handleRegister(w http.ResponseWriter, r *http.Request, store *Store) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrMissingFields)
		return
	}

	u, err := store.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	log.Printf("[Accounts] User %s registered (id=%d).", u.Username, u.ID)
	writeJSON(w, http.StatusCreated, RegisterResponse{ID: u.ID, Username: u.Username})
}

func handleLogin(w http.ResponseWriter, r *http.Request, store *Store, sessions *Sessions) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrMissingFields)
		return
	}

	u, err := store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	id := sessions.Create(w, u)
	log.Printf("[Accounts] User %s logged in.", id.Username)
	writeJSON(w, http.StatusOK, LoginResponse{Username: id.Username})
}

func handleLogout(w http.ResponseWriter, r *http.Request, sessions *Sessions) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func handleMe(w http.ResponseWriter, r *http.Request, sessions *Sessions) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	id, ok := sessions.Current(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not_authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// ============================================================================
// Helpers
// ============================================================================

func statusFor(err error) int {
	switch Code(err) {
	case "missing_fields", "weak_password":
		return http.StatusBadRequest
	case "username_taken", "email_taken":
		return http.StatusConflict
	case "invalid_credentials":
		return http.StatusUnauthorized
	case "not_found":
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := Code(err)
	resp := errorResponse{Error: code}
	if code == "internal" {
		log.Printf("[Accounts] ERROR: %v", err)
		resp.Message = "internal error"
	} else {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Accounts] Failed to encode response: %v", err)
	}
}
