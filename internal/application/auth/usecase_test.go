package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-pos/internal/application/auth"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-pos/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func newAuth() *auth.AuthUseCase {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}).
		WithBcryptCost(bcrypt.MinCost)
}

func TestRegisterYLogin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Ana@Example.com ", Password: "secreto123", FirstName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)

	id, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, entity.RoleUser, id.Role)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.com", Password: "secreto123"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "A@B.com", Password: "otroPass99"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_PasswordCorto(t *testing.T) {
	_, err := newAuth().RegisterUser(context.Background(), dto.RegisterRequest{Email: "a@b.com", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.com", Password: "secreto123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "incorrecto"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterAdmin(t *testing.T) {
	u, err := newAuth().RegisterAdmin(context.Background(), dto.RegisterRequest{Email: "root@b.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}
