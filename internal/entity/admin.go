package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrAdminNotFound = errors.New("administrador não encontrado")

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type AdminRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Upsert(ctx context.Context, admin *Admin) error
}

// AuthErrorKind classifica falhas de login vindas do provedor.
type AuthErrorKind string

const (
	AuthUserNotFound  AuthErrorKind = "user-not-found"
	AuthWrongPassword AuthErrorKind = "wrong-password"
	AuthInvalidEmail  AuthErrorKind = "invalid-email"
	AuthOther         AuthErrorKind = "other"
)

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
	}
	return "auth " + string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Message é o texto mostrado na tela de login.
func (e *AuthError) Message() string {
	switch e.Kind {
	case AuthUserNotFound:
		return "Usuário não encontrado."
	case AuthWrongPassword:
		return "Senha incorreta."
	case AuthInvalidEmail:
		return "E-mail inválido."
	default:
		return "Credenciais inválidas."
	}
}

// AuthErrorKindOf devolve AuthOther para erros sem tipo.
func AuthErrorKindOf(err error) AuthErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return AuthOther
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
