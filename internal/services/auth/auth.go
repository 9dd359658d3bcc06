// Package auth реализует регистрацию и вход пользователей.
//
// Регистрация создаёт учётную запись и профиль по роли: арендатору — профиль
// с бюджетом, поставщику — профиль с адресом и вместимостью. Вход проверяет
// пароль и выдаёт JWT с uid и ролью.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/password"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

type Repository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateTenant(ctx context.Context, t models.Tenant) (int, error)
	CreateProvider(ctx context.Context, p models.Provider) (int, error)
}

type Service struct {
	repo     Repository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

func New(repo Repository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Session — результат успешного входа.
type Session struct {
	Token   string `json:"token"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role"`
}

// Register создаёт учётную запись с bcrypt-хэшем пароля и профиль по роли.
// Возвращает uid нового пользователя.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	const op = "services.auth.Register"

	switch req.Role {
	case models.RoleTenant:
		if req.MonthlyBudget <= 0 {
			return "", errs.New(errs.ErrValidation, "monthly_budget is required for tenants")
		}
	case models.RoleProvider:
		if req.MaxTenants <= 0 {
			return "", errs.New(errs.ErrValidation, "max_tenants is required for providers")
		}
	default:
		return "", errs.New(errs.ErrValidation, "role must be tenant or provider")
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	uid, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", errs.New(errs.ErrPreconditionFailed, "email already registered")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch req.Role {
	case models.RoleTenant:
		_, err = s.repo.CreateTenant(ctx, models.Tenant{
			UserUID:       uid,
			DisplayName:   req.DisplayName,
			KycStatus:     models.KycPending,
			MonthlyBudget: req.MonthlyBudget,
		})
	case models.RoleProvider:
		_, err = s.repo.CreateProvider(ctx, models.Provider{
			UserUID:     uid,
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			Address:     req.Address,
			Area:        req.Area,
			City:        req.City,
			Pincode:     req.Pincode,
			KycStatus:   models.KycPending,
			MaxTenants:  req.MaxTenants,
			IsActive:    true,
			IsAvailable: true,
		})
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registered new user", "uid", uid, "role", req.Role)
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
// Неизвестный e-mail и неверный пароль неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (*Session, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotAuthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, errs.New(errs.ErrNotAuthorized, "invalid credentials")
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{
		Token:   token,
		UserUID: user.UID,
		Role:    user.Role,
	}, nil
}
