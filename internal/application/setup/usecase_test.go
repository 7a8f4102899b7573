package setup_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/application/setup"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio de usuarios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memUsuarios struct {
	items map[string]*entity.Usuario
}

var _ repository.UsuarioRepository = (*memUsuarios)(nil)

func newMemUsuarios(users ...*entity.Usuario) *memUsuarios {
	m := &memUsuarios{items: map[string]*entity.Usuario{}}
	for _, u := range users {
		copia := *u
		m.items[u.ID] = &copia
	}
	return m
}

func (m *memUsuarios) Create(u *entity.Usuario) error {
	for _, e := range m.items {
		if e.Username == u.Username {
			return domain.ErrUsernameExists
		}
	}
	copia := *u
	m.items[u.ID] = &copia
	return nil
}

func (m *memUsuarios) GetByID(id string) (*entity.Usuario, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copia := *u
	return &copia, nil
}

func (m *memUsuarios) GetByUsername(username string) (*entity.Usuario, error) {
	for _, u := range m.items {
		if u.Username == username {
			copia := *u
			return &copia, nil
		}
	}
	return nil, nil
}

func (m *memUsuarios) GetByEmail(email string) (*entity.Usuario, error) {
	for _, u := range m.items {
		if u.Email == email && email != "" {
			copia := *u
			return &copia, nil
		}
	}
	return nil, nil
}

func (m *memUsuarios) Update(u *entity.Usuario) error {
	if _, ok := m.items[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copia := *u
	m.items[u.ID] = &copia
	return nil
}

func (m *memUsuarios) UpdateLastLogin(id string, when time.Time) error {
	if u, ok := m.items[id]; ok {
		u.LastLogin = &when
	}
	return nil
}

func (m *memUsuarios) List(filter repository.UsuarioFilter) ([]*entity.Usuario, int, error) {
	var out []*entity.Usuario
	for _, u := range m.items {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		copia := *u
		out = append(out, &copia)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, len(out), nil
}

func (m *memUsuarios) Delete(id string) error {
	if _, ok := m.items[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memUsuarios) CountSuperAdmins() (int, error) {
	n := 0
	for _, u := range m.items {
		if u.Role == entity.RoleSuperAdmin {
			n++
		}
	}
	return n, nil
}

func (m *memUsuarios) CountTotal() (int, error) { return len(m.items), nil }

func usuario(id, username, role string) *entity.Usuario {
	return &entity.Usuario{
		ID:         id,
		Username:   username,
		Role:       role,
		IsActive:   true,
		DateJoined: time.Now(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Bootstrap
// ──────────────────────────────────────────────────────────────────────────────

func TestCrearPrimerAdmin_Valido(t *testing.T) {
	repo := newMemUsuarios()
	uc := setup.NewSetupUseCase(repo, time.Minute)

	estado, err := uc.EstadoBootstrap()
	require.NoError(t, err)
	assert.False(t, estado.SuperAdminExists)

	out, err := uc.CrearPrimerAdmin(dto.CreateAdminRequest{
		Username: "admin",
		Password: "clave-segura-123",
		Email:    "admin@taller.cl",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, out.Role)

	// La contraseña queda con hash bcrypt, nunca en claro.
	guardado, _ := repo.GetByUsername("admin")
	require.NotNil(t, guardado)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(guardado.PasswordHash), []byte("clave-segura-123")))

	estado, err = uc.EstadoBootstrap()
	require.NoError(t, err)
	assert.True(t, estado.SuperAdminExists)
}

// El bootstrap es de un solo uso: con super admin existente se rechaza.
func TestCrearPrimerAdmin_SoloUnaVez(t *testing.T) {
	repo := newMemUsuarios(usuario("u1", "root", entity.RoleSuperAdmin))
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.CrearPrimerAdmin(dto.CreateAdminRequest{Username: "otro", Password: "clave-segura-123"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCrearPrimerAdmin_Validaciones(t *testing.T) {
	repo := newMemUsuarios()
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.CrearPrimerAdmin(dto.CreateAdminRequest{
		Username: "ab",
		Password: "corta",
		Email:    "sin-arroba",
	})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "password")
	assert.Contains(t, ve.Fields, "email")
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración de usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestCrearUsuario_RolInvalido(t *testing.T) {
	uc := setup.NewSetupUseCase(newMemUsuarios(), time.Minute)

	_, err := uc.CrearUsuario(dto.CreateUserRequest{
		Username: "tecnico1",
		Password: "clave-segura-123",
		Role:     "JEFE_SUPREMO",
	})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "role")
}

func TestCrearUsuario_UsernameDuplicado(t *testing.T) {
	repo := newMemUsuarios(usuario("u1", "tecnico1", entity.RoleTecnico))
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.CrearUsuario(dto.CreateUserRequest{
		Username: "tecnico1",
		Password: "clave-segura-123",
		Role:     entity.RoleTecnico,
	})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
}

// No se puede degradar al único super administrador.
func TestActualizarUsuario_UltimoSuperAdminNoSeDegrada(t *testing.T) {
	repo := newMemUsuarios(usuario("u1", "root", entity.RoleSuperAdmin))
	uc := setup.NewSetupUseCase(repo, time.Minute)

	rol := entity.RoleTecnico
	_, err := uc.ActualizarUsuario("u1", dto.UpdateUserRequest{Role: &rol})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "role")

	// Con un segundo super admin, la degradación procede.
	require.NoError(t, repo.Create(usuario("u2", "root2", entity.RoleSuperAdmin)))
	out, err := uc.ActualizarUsuario("u1", dto.UpdateUserRequest{Role: &rol})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTecnico, out.Role)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardia de eliminación de cuentas
// ──────────────────────────────────────────────────────────────────────────────

func TestEliminarUsuario_PropiaCuentaBloqueada(t *testing.T) {
	repo := newMemUsuarios(
		usuario("u1", "root", entity.RoleSuperAdmin),
		usuario("u2", "root2", entity.RoleSuperAdmin),
	)
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.EliminarUsuario("u1", entity.RoleSuperAdmin, "u1")
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "general")
}

func TestEliminarUsuario_UltimoSuperAdminProtegido(t *testing.T) {
	repo := newMemUsuarios(usuario("u1", "root", entity.RoleSuperAdmin))
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.EliminarUsuario("u9", entity.RoleSuperAdmin, "u1")
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "general")
}

func TestEliminarUsuario_SinCapacidad(t *testing.T) {
	repo := newMemUsuarios(
		usuario("u1", "root", entity.RoleSuperAdmin),
		usuario("u2", "tecnico", entity.RoleTecnico),
	)
	uc := setup.NewSetupUseCase(repo, time.Minute)

	_, err := uc.EliminarUsuario("u2", entity.RoleTecnico, "u1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Flujo de dos fases para cuentas: texto "ELIMINAR {username}".
func TestEliminacionUsuario_DesafioYConfirmacion(t *testing.T) {
	repo := newMemUsuarios(
		usuario("u1", "root", entity.RoleSuperAdmin),
		usuario("u2", "tecnico1", entity.RoleTecnico),
	)
	uc := setup.NewSetupUseCase(repo, time.Minute)

	desafio, err := uc.SolicitarEliminacion("u1", entity.RoleSuperAdmin, "u2")
	require.NoError(t, err)
	assert.Equal(t, "ELIMINAR tecnico1", desafio.ExpectedText)

	// Texto incorrecto consume el token sin eliminar.
	_, err = uc.ConfirmarEliminacion("u1", entity.RoleSuperAdmin, desafio.Token, "ELIMINAR TECNICO1")
	require.ErrorIs(t, err, domain.ErrConfirmacionInvalida)
	quedo, _ := repo.GetByID("u2")
	assert.NotNil(t, quedo)

	desafio, err = uc.SolicitarEliminacion("u1", entity.RoleSuperAdmin, "u2")
	require.NoError(t, err)
	out, err := uc.ConfirmarEliminacion("u1", entity.RoleSuperAdmin, desafio.Token, desafio.ExpectedText)
	require.NoError(t, err)
	assert.Contains(t, out.Message, "tecnico1")

	quedo, _ = repo.GetByID("u2")
	assert.Nil(t, quedo, "la cuenta debe haberse eliminado")
}

func TestRoles_CatalogoCompleto(t *testing.T) {
	uc := setup.NewSetupUseCase(newMemUsuarios(), time.Minute)

	roles := uc.Roles()
	require.Len(t, roles, len(entity.Roles))
	claves := make([]string, 0, len(roles))
	for _, r := range roles {
		claves = append(claves, r.Key)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Description)
	}
	assert.ElementsMatch(t, entity.Roles, claves)
}
