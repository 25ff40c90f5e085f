package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dsx-leads/internal/usecase"
)

const (
	DefaultAfterLogin = "/leads"
	authCookieMaxAge  = 86400
)

type AuthHandler struct {
	SignIn        *usecase.SignInUseCase
	SecureCookies bool
}

func NewAuthHandler(signIn *usecase.SignInUseCase, secure bool) *AuthHandler {
	return &AuthHandler{SignIn: signIn, SecureCookies: secure}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

type LoginPageResponse struct {
	From string `json:"from"`
}

type LoginErrorResponse struct {
	Error   entity.AuthErrorKind `json:"error"`
	Message string               `json:"message"`
}

// LoginPage diz ao formulário de login para onde mandar o usuário depois de entrar.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LoginPageResponse{From: safeRedirect(r.URL.Query().Get("from"))})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	err := h.SignIn.Execute(r.Context(), usecase.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		var authErr *entity.AuthError
		if !errors.As(err, &authErr) {
			authErr = &entity.AuthError{Kind: entity.AuthOther, Err: err}
		}
		writeJSON(w, http.StatusUnauthorized, LoginErrorResponse{Error: authErr.Kind, Message: authErr.Message()})
		return
	}

	http.SetCookie(w, h.authCookie(middleware.AuthCookieValue, authCookieMaxAge))
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Redirect: safeRedirect(req.From)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authCookie("", -1))
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Message: "Logout realizado"})
}

func (h *AuthHandler) authCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// safeRedirect só aceita caminhos deste host.
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return DefaultAfterLogin
	}
	return from
}
