package setup

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// SetupUseCase bootstrap del primer super-administrador y administración
// de usuarios, incluida la guardia de eliminación de cuentas.
type SetupUseCase struct {
	userRepo   repository.UsuarioRepository
	ttlDesafio time.Duration

	mu       sync.Mutex
	desafios map[string]desafioUsuario
}

type desafioUsuario struct {
	userID       string
	expectedText string
	expira       time.Time
}

// NewSetupUseCase construye el caso de uso.
func NewSetupUseCase(userRepo repository.UsuarioRepository, ttlDesafio time.Duration) *SetupUseCase {
	if ttlDesafio <= 0 {
		ttlDesafio = 5 * time.Minute
	}
	return &SetupUseCase{
		userRepo:   userRepo,
		ttlDesafio: ttlDesafio,
		desafios:   map[string]desafioUsuario{},
	}
}

// EstadoBootstrap indica si ya existe un super-administrador.
func (uc *SetupUseCase) EstadoBootstrap() (*dto.AdminSetupStatusResponse, error) {
	n, err := uc.userRepo.CountSuperAdmins()
	if err != nil {
		return nil, err
	}
	resp := &dto.AdminSetupStatusResponse{SuperAdminExists: n > 0}
	if resp.SuperAdminExists {
		resp.Message = "Super-administrador ya configurado"
	} else {
		resp.Message = "Configuración inicial requerida"
	}
	return resp, nil
}

// EstadoSistema devuelve contadores generales.
func (uc *SetupUseCase) EstadoSistema() (*dto.SystemStatusResponse, error) {
	superAdmins, err := uc.userRepo.CountSuperAdmins()
	if err != nil {
		return nil, err
	}
	total, err := uc.userRepo.CountTotal()
	if err != nil {
		return nil, err
	}
	return &dto.SystemStatusResponse{
		SystemInitialized: superAdmins > 0,
		TotalUsers:        total,
		SuperAdmins:       superAdmins,
	}, nil
}

func (uc *SetupUseCase) validarCredenciales(username, password, email string, excluirID string) *domain.ValidationError {
	ve := domain.NewValidationError()

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		ve.Add("username", "el nombre de usuario es requerido")
	case len(username) < 3:
		ve.Add("username", "el nombre de usuario debe tener al menos 3 caracteres")
	default:
		existente, err := uc.userRepo.GetByUsername(username)
		if err == nil && existente != nil && existente.ID != excluirID {
			ve.Add("username", "este nombre de usuario ya existe")
		}
	}

	switch {
	case password == "":
		ve.Add("password", "la contraseña es requerida")
	case len(password) < 8:
		ve.Add("password", "la contraseña debe tener al menos 8 caracteres")
	}

	if email != "" {
		if !emailRe.MatchString(email) {
			ve.Add("email", "formato de email inválido")
		} else {
			existente, err := uc.userRepo.GetByEmail(email)
			if err == nil && existente != nil && existente.ID != excluirID {
				ve.Add("email", "este email ya está en uso")
			}
		}
	}
	return ve
}

// CrearPrimerAdmin crea el primer SUPER_ADMIN. Se rechaza si ya existe
// uno: el bootstrap es de un solo uso.
func (uc *SetupUseCase) CrearPrimerAdmin(in dto.CreateAdminRequest) (*dto.UserResponse, error) {
	n, err := uc.userRepo.CountSuperAdmins()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrConflict
	}
	if ve := uc.validarCredenciales(in.Username, in.Password, strings.TrimSpace(in.Email), ""); ve.HasErrors() {
		return nil, ve
	}
	return uc.crear(in.Username, in.Password, in.Email, in.FirstName, in.LastName, entity.RoleSuperAdmin, true)
}

// CrearUsuario crea un usuario con rol del catálogo.
func (uc *SetupUseCase) CrearUsuario(in dto.CreateUserRequest) (*dto.UserResponse, error) {
	ve := uc.validarCredenciales(in.Username, in.Password, strings.TrimSpace(in.Email), "")
	if !entity.RolValido(in.Role) {
		ve.Add("role", "debe seleccionar un rol válido")
	}
	if ve.HasErrors() {
		return nil, ve
	}
	activo := true
	if in.IsActive != nil {
		activo = *in.IsActive
	}
	return uc.crear(in.Username, in.Password, in.Email, in.FirstName, in.LastName, in.Role, activo)
}

func (uc *SetupUseCase) crear(username, password, email, firstName, lastName, role string, activo bool) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.Usuario{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         role,
		IsActive:     activo,
		DateJoined:   time.Now(),
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	resp := dto.FromUsuario(user)
	return &resp, nil
}

// ListarUsuarios lista usuarios con búsqueda y filtro por rol.
func (uc *SetupUseCase) ListarUsuarios(filter repository.UsuarioFilter) ([]*entity.Usuario, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Role != "" && !entity.RolValido(filter.Role) {
		return nil, 0, domain.NewValidationError().Add("role", "rol inválido")
	}
	return uc.userRepo.List(filter)
}

// ActualizarUsuario modifica un usuario. No se puede degradar al último
// SUPER_ADMIN del sistema.
func (uc *SetupUseCase) ActualizarUsuario(userID string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	ve := domain.NewValidationError()

	if in.Role != nil && *in.Role != user.Role {
		if !entity.RolValido(*in.Role) {
			ve.Add("role", "rol inválido")
		} else if user.EsSuperAdmin() {
			n, err := uc.userRepo.CountSuperAdmins()
			if err != nil {
				return nil, err
			}
			if n <= 1 {
				ve.Add("role", "no se puede cambiar el rol del último super administrador")
			}
		}
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) != user.Username {
		username := strings.TrimSpace(*in.Username)
		if len(username) < 3 {
			ve.Add("username", "el nombre de usuario debe tener al menos 3 caracteres")
		} else if existente, err := uc.userRepo.GetByUsername(username); err == nil && existente != nil && existente.ID != userID {
			ve.Add("username", "este nombre de usuario ya existe")
		}
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != user.Email {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if !emailRe.MatchString(email) {
				ve.Add("email", "formato de email inválido")
			} else if existente, err := uc.userRepo.GetByEmail(email); err == nil && existente != nil && existente.ID != userID {
				ve.Add("email", "este email ya está en uso")
			}
		}
	}
	if in.NewPassword != nil && *in.NewPassword != "" && len(*in.NewPassword) < 8 {
		ve.Add("new_password", "la nueva contraseña debe tener al menos 8 caracteres")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.NewPassword != nil && *in.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := dto.FromUsuario(user)
	return &resp, nil
}

// validarEliminacionUsuario aplica la guardia: nadie elimina su propia
// cuenta y el último SUPER_ADMIN es intocable.
func (uc *SetupUseCase) validarEliminacionUsuario(requesterID string, target *entity.Usuario) error {
	if requesterID == target.ID {
		return domain.NewValidationError().Add("general", "no puedes eliminar tu propia cuenta")
	}
	if target.EsSuperAdmin() {
		n, err := uc.userRepo.CountSuperAdmins()
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.NewValidationError().Add("general", "no se puede eliminar el último super administrador del sistema")
		}
	}
	return nil
}

// SolicitarEliminacion emite el desafío de confirmación para eliminar
// una cuenta: el texto esperado es "ELIMINAR {username}".
func (uc *SetupUseCase) SolicitarEliminacion(requesterID, requesterRole, targetID string) (*dto.DeleteChallengeResponse, error) {
	if !entity.TieneCapacidad(requesterRole, entity.CapEliminarUsuarios) {
		return nil, domain.ErrForbidden
	}
	target, err := uc.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.validarEliminacionUsuario(requesterID, target); err != nil {
		return nil, err
	}

	token := uuid.New().String()
	expira := time.Now().Add(uc.ttlDesafio)
	expected := "ELIMINAR " + target.Username

	uc.mu.Lock()
	for t, d := range uc.desafios {
		if time.Now().After(d.expira) {
			delete(uc.desafios, t)
		}
	}
	uc.desafios[token] = desafioUsuario{userID: targetID, expectedText: expected, expira: expira}
	uc.mu.Unlock()

	return &dto.DeleteChallengeResponse{Token: token, ExpectedText: expected, ExpiresAt: expira}, nil
}

// ConfirmarEliminacion consume el desafío y elimina la cuenta si el
// texto coincide exactamente y la guardia sigue cumpliéndose.
func (uc *SetupUseCase) ConfirmarEliminacion(requesterID, requesterRole, token, typedText string) (*dto.DeleteResultResponse, error) {
	uc.mu.Lock()
	d, ok := uc.desafios[token]
	if ok {
		delete(uc.desafios, token)
	}
	uc.mu.Unlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if time.Now().After(d.expira) {
		return nil, domain.ErrDesafioExpirado
	}
	if typedText != d.expectedText {
		return nil, domain.ErrConfirmacionInvalida
	}
	return uc.EliminarUsuario(requesterID, requesterRole, d.userID)
}

// EliminarUsuario elimina la cuenta aplicando la guardia del servidor.
func (uc *SetupUseCase) EliminarUsuario(requesterID, requesterRole, targetID string) (*dto.DeleteResultResponse, error) {
	if !entity.TieneCapacidad(requesterRole, entity.CapEliminarUsuarios) {
		return nil, domain.ErrForbidden
	}
	target, err := uc.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.validarEliminacionUsuario(requesterID, target); err != nil {
		return nil, err
	}
	if err := uc.userRepo.Delete(targetID); err != nil {
		return nil, err
	}
	return &dto.DeleteResultResponse{
		Message: "Usuario \"" + target.Username + "\" eliminado exitosamente",
	}, nil
}

// Roles devuelve el catálogo de roles con sus descripciones.
func (uc *SetupUseCase) Roles() []dto.RoleDTO {
	roles := make([]dto.RoleDTO, 0, len(entity.Roles))
	for _, r := range entity.Roles {
		roles = append(roles, dto.RoleDTO{
			Key:         r,
			Name:        entity.NombreRol(r),
			Description: entity.DescripcionRol(r),
		})
	}
	return roles
}
