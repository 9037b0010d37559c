package account

import "errors"

// Erros de negócio da camada de contas. Cada um tem um código de motivo que
// volta para o cliente no corpo da resposta HTTP.
var (
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrWeakPassword       = errors.New("password is too short")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("user not found")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrMissingFields, "missing_fields"},
	{ErrWeakPassword, "weak_password"},
	{ErrUsernameTaken, "username_taken"},
	{ErrEmailTaken, "email_taken"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrNotFound, "not_found"},
}

// Code retorna o código de motivo de err, ou "internal" para erros inesperados.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
