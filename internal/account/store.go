package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// MinPasswordLength é o tamanho mínimo aceito no cadastro.
const MinPasswordLength = 6

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    NOT NULL UNIQUE COLLATE NOCASE,
	email         TEXT    NOT NULL UNIQUE COLLATE NOCASE,
	password_hash BLOB    NOT NULL,
	created_at    INTEGER NOT NULL
);`

// User é uma conta cadastrada. O hash nunca sai deste pacote.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time

	passwordHash []byte
}

// Store guarda as contas num arquivo SQLite.
type Store struct {
	db   *sql.DB
	cost int
}

// Open abre (ou cria) o banco em path e garante a tabela de usuários.
// cost é o custo do bcrypt; valores fora do intervalo usam bcrypt.DefaultCost.
func Open(path string, cost int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}

	log.Printf("[Accounts] Users table ready at %s.", cleanPath)
	return &Store{db: db, cost: cost}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping é usado pelo health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Register cria a conta. Nome de usuário e email são únicos (sem diferenciar maiúsculas).
func (s *Store) Register(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return User{}, ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, hash, now.UnixMilli(),
	)
	if err != nil {
		return User{}, uniqueViolation(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("read user id: %w", err)
	}

	return User{ID: id, Username: username, Email: email, CreatedAt: now, passwordHash: hash}, nil
}

// uniqueViolation traduz a violação de UNIQUE do SQLite para o erro de negócio.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("insert user: %w", err)
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	}
	return fmt.Errorf("insert user: %w", err)
}

// Authenticate confere usuário e senha. Usuário inexistente e senha errada
// retornam o mesmo erro.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrMissingFields
	}

	u, err := s.queryUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (User, error) {
	return s.queryUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) queryUser(ctx context.Context, query string, arg any) (User, error) {
	var (
		u         User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.passwordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}
