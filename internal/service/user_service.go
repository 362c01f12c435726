package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"recipe-llm/internal/domain"
	"recipe-llm/internal/repository"
)

// UserService registra usuarios y verifica credenciales sin guardar ni comparar contraseñas en claro.
type UserService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	cost      int
	dummyHash []byte
	now       func() time.Time
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// bcrypt ignora todo lo que supere 72 bytes; lo rechazamos en lugar de truncar en silencio.
const maxPasswordBytes = 72

func NewUserService(logger *zap.Logger, users repository.UserRepository, bcryptCost int) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// Hash de relleno para que un email inexistente cueste lo mismo que una contraseña incorrecta.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		logger.Warn("dummy hash generation failed", zap.Error(err))
	}
	return &UserService{
		logger:    logger,
		users:     users,
		cost:      bcryptCost,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return domain.User{}, ErrInvalidInput
	}
	if len(input.Password) > maxPasswordBytes {
		return domain.User{}, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate devuelve ErrInvalidCredentials tanto para email desconocido como para contraseña incorrecta.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Profile lee el perfil del propio usuario autenticado.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}
