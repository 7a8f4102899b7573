package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallerpro/repuestos-api/internal/application/auth"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
	"github.com/tallerpro/repuestos-api/pkg/jwt"
)

type stubUsuarios struct {
	user      *entity.Usuario
	lastLogin *time.Time
}

var _ repository.UsuarioRepository = (*stubUsuarios)(nil)

func (s *stubUsuarios) Create(*entity.Usuario) error { return nil }

func (s *stubUsuarios) GetByID(id string) (*entity.Usuario, error) {
	if s.user != nil && s.user.ID == id {
		copia := *s.user
		return &copia, nil
	}
	return nil, nil
}

func (s *stubUsuarios) GetByUsername(username string) (*entity.Usuario, error) {
	if s.user != nil && s.user.Username == username {
		copia := *s.user
		return &copia, nil
	}
	return nil, nil
}

func (s *stubUsuarios) GetByEmail(string) (*entity.Usuario, error) { return nil, nil }
func (s *stubUsuarios) Update(*entity.Usuario) error               { return nil }

func (s *stubUsuarios) UpdateLastLogin(id string, when time.Time) error {
	s.lastLogin = &when
	return nil
}

func (s *stubUsuarios) List(repository.UsuarioFilter) ([]*entity.Usuario, int, error) {
	return nil, 0, nil
}
func (s *stubUsuarios) Delete(string) error            { return nil }
func (s *stubUsuarios) CountSuperAdmins() (int, error) { return 0, nil }
func (s *stubUsuarios) CountTotal() (int, error)       { return 0, nil }

func cuentaBodeguero(t *testing.T, activa bool) *entity.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave-segura-123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.Usuario{
		ID:           "user-1",
		Username:     "bodeguero1",
		PasswordHash: string(hash),
		Role:         entity.RoleEncargadoBodega,
		IsActive:     activa,
		DateJoined:   time.Now(),
	}
}

func nuevoAuth(repo repository.UsuarioRepository) *auth.AuthUseCase {
	return auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     "secreto-de-prueba",
		ExpMinutes: 15,
		Issuer:     "repuestos-api",
	})
}

func TestLogin_CredencialesValidas(t *testing.T) {
	repo := &stubUsuarios{user: cuentaBodeguero(t, true)}
	uc := nuevoAuth(repo)

	out, err := uc.Login(dto.LoginRequest{Username: "bodeguero1", Password: "clave-segura-123"})
	require.NoError(t, err)
	assert.Equal(t, "bodeguero1", out.User.Username)
	assert.NotNil(t, repo.lastLogin, "el login estampa last_login")

	// El token emitido porta la identidad canónica.
	userID, username, role, err := jwt.Parse("secreto-de-prueba", out.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "bodeguero1", username)
	assert.Equal(t, entity.RoleEncargadoBodega, role)
}

// Usuario inexistente y contraseña incorrecta responden igual: no se
// filtra cuál de los dos falló.
func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := nuevoAuth(&stubUsuarios{user: cuentaBodeguero(t, true)})

	_, err := uc.Login(dto.LoginRequest{Username: "noexiste", Password: "clave-segura-123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Username: "bodeguero1", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_CuentaInactiva(t *testing.T) {
	uc := nuevoAuth(&stubUsuarios{user: cuentaBodeguero(t, false)})

	_, err := uc.Login(dto.LoginRequest{Username: "bodeguero1", Password: "clave-segura-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_CamposRequeridos(t *testing.T) {
	uc := nuevoAuth(&stubUsuarios{})

	_, err := uc.Login(dto.LoginRequest{})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "general")
}

func TestVerify(t *testing.T) {
	uc := nuevoAuth(&stubUsuarios{user: cuentaBodeguero(t, true)})

	out, err := uc.Verify("user-1")
	require.NoError(t, err)
	assert.Equal(t, "bodeguero1", out.Username)

	_, err = uc.Verify("user-2")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
