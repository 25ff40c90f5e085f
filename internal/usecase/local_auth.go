package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// LocalAuth confere as credenciais na tabela de admins.
type LocalAuth struct {
	Admins entity.AdminRepositoryInterface
}

func (a *LocalAuth) SignIn(ctx context.Context, email, password string) error {
	admin, err := a.Admins.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrAdminNotFound) {
		return &entity.AuthError{Kind: entity.AuthUserNotFound, Err: err}
	}
	if err != nil {
		return &entity.AuthError{Kind: entity.AuthOther, Err: err}
	}
	if !entity.CheckPassword(password, admin.PasswordHash) {
		return &entity.AuthError{Kind: entity.AuthWrongPassword}
	}
	return nil
}

// CreateAdmin grava (ou atualiza) um administrador com a senha já em bcrypt.
func CreateAdmin(ctx context.Context, admins entity.AdminRepositoryInterface, email, password string) (*entity.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, &DomainError{Code: "WEAK_PASSWORD", Message: "a senha precisa de pelo menos 8 caracteres"}
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, &DomainError{Code: "INVALID_EMAIL", Message: "e-mail inválido"}
	}

	hash, err := entity.HashPassword(password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "falha ao gerar hash", Err: err}
	}

	admin := &entity.Admin{Email: email, PasswordHash: hash}
	if err := admins.Upsert(ctx, admin); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "falha ao gravar administrador", Err: err}
	}
	return admin, nil
}
