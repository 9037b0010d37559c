package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client fala com a API de contas. Usado pelo cliente de terminal e pelos bots.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: http.DefaultClient}
}

// SignUp cadastra a conta. Conflitos voltam como ErrUsernameTaken/ErrEmailTaken.
func (c *Client) SignUp(ctx context.Context, username, email, password string) error {
	resp, err := c.post(ctx, "/register", RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

// Login abre uma sessão e devolve o cookie para o upgrade do WebSocket.
func (c *Client) Login(ctx context.Context, username, password string) (*http.Cookie, error) {
	resp, err := c.post(ctx, "/login", LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			return ck, nil
		}
	}
	return nil, fmt.Errorf("login succeeded but no %s cookie was set", CookieName)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}

// decodeError converte o código de motivo do corpo de volta para o erro do pacote.
func decodeError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	for _, c := range codes {
		if c.code == body.Error {
			return c.err
		}
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, body.Error)
}
