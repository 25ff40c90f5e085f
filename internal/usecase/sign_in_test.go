package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// MockAuthProvider - Mock para AuthProvider
type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) SignIn(ctx context.Context, email, password string) error {
	return m.Called(email, password).Error(0)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("Success normalises the e-mail", func(t *testing.T) {
		p := new(MockAuthProvider)
		p.On("SignIn", "admin@dsx.com", "segredo").Return(nil).Once()

		err := NewSignInUseCase(p).Execute(ctx, SignInInput{Email: "  Admin@DSX.com ", Password: "segredo"})
		require.NoError(t, err)
		p.AssertExpectations(t)
	})

	t.Run("Malformed e-mail never reaches the provider", func(t *testing.T) {
		p := new(MockAuthProvider)

		err := NewSignInUseCase(p).Execute(ctx, SignInInput{Email: "admin", Password: "segredo"})

		assert.Equal(t, entity.AuthInvalidEmail, entity.AuthErrorKindOf(err))
		p.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
	})

	t.Run("Missing password", func(t *testing.T) {
		p := new(MockAuthProvider)

		err := NewSignInUseCase(p).Execute(ctx, SignInInput{Email: "admin@dsx.com"})

		assert.Equal(t, entity.AuthOther, entity.AuthErrorKindOf(err))
	})

	t.Run("Provider kinds pass through", func(t *testing.T) {
		kinds := map[entity.AuthErrorKind]string{
			entity.AuthUserNotFound:  "Usuário não encontrado.",
			entity.AuthWrongPassword: "Senha incorreta.",
			entity.AuthInvalidEmail:  "E-mail inválido.",
			entity.AuthOther:         "Credenciais inválidas.",
		}
		for kind, msg := range kinds {
			p := new(MockAuthProvider)
			p.On("SignIn", "admin@dsx.com", "x").Return(&entity.AuthError{Kind: kind}).Once()

			err := NewSignInUseCase(p).Execute(ctx, SignInInput{Email: "admin@dsx.com", Password: "x"})

			var authErr *entity.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, kind, authErr.Kind)
			assert.Equal(t, msg, authErr.Message())
		}
	})

	t.Run("Unknown provider errors become other", func(t *testing.T) {
		p := new(MockAuthProvider)
		p.On("SignIn", mock.Anything, mock.Anything).Return(errors.New("dial tcp: timeout")).Once()

		err := NewSignInUseCase(p).Execute(ctx, SignInInput{Email: "admin@dsx.com", Password: "x"})

		assert.Equal(t, entity.AuthOther, entity.AuthErrorKindOf(err))
		assert.ErrorContains(t, err, "timeout")
	})
}
