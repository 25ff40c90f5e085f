// Package firebase autentica os usuários do painel no Firebase Authentication
// pela API REST do Identity Toolkit.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn devolve nil quando as credenciais são aceitas e *entity.AuthError caso contrário.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return &entity.AuthError{Kind: entity.AuthOther, Err: err}
	}

	url := c.baseURL + "/v1/accounts:signInWithPassword?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &entity.AuthError{Kind: entity.AuthOther, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &entity.AuthError{Kind: entity.AuthOther, Err: fmt.Errorf("firebase indisponível: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	var er errorResponse
	_ = json.Unmarshal(raw, &er)

	code := er.Error.Message
	if code == "" {
		code = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &entity.AuthError{Kind: kindOf(code), Err: fmt.Errorf("firebase: %s", code)}
}

// kindOf mapeia os códigos de erro do Identity Toolkit. Alguns vêm com sufixo
// de detalhe, como em "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
func kindOf(message string) entity.AuthErrorKind {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_NOT_FOUND":
		return entity.AuthUserNotFound
	case "INVALID_PASSWORD":
		return entity.AuthWrongPassword
	case "INVALID_EMAIL":
		return entity.AuthInvalidEmail
	default:
		return entity.AuthOther
	}
}
