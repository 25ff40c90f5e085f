package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// SignInUseCase confere as credenciais do painel no provedor configurado.
// Falhas sempre voltam como *entity.AuthError para a tela de login mostrar
// uma das suas mensagens fixas.
type SignInUseCase struct {
	Provider AuthProvider
}

var validate = validator.New()

func NewSignInUseCase(provider AuthProvider) *SignInUseCase {
	return &SignInUseCase{Provider: provider}
}

func (uc *SignInUseCase) Execute(ctx context.Context, input SignInInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := validate.Struct(input); err != nil {
		return inputAuthError(err)
	}

	err := uc.Provider.SignIn(ctx, input.Email, input.Password)
	if err == nil {
		log.Printf("🔓 Login no painel: %s", input.Email)
		return nil
	}

	var authErr *entity.AuthError
	if !errors.As(err, &authErr) {
		authErr = &entity.AuthError{Kind: entity.AuthOther, Err: err}
	}
	log.Printf("🔒 Login recusado para %s: %s", input.Email, authErr.Kind)
	return authErr
}

func inputAuthError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Email" {
				return &entity.AuthError{Kind: entity.AuthInvalidEmail, Err: err}
			}
		}
	}
	return &entity.AuthError{Kind: entity.AuthOther, Err: err}
}
