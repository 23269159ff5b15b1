package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"
	"github.com/gabrielbaute/octopus-photos/utils"

	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	GetProfile(ctx context.Context, userID uint) (models.User, error)
}

type authService struct {
	users   repositories.UserRepository
	storage StorageService
}

func NewAuthService(users repositories.UserRepository, storage StorageService) AuthService {
	return &authService{users: users, storage: storage}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return models.User{}, newAppError(http.StatusBadRequest, "username and password are required", nil)
	}
	if len(in.Password) < 6 {
		return models.User{}, newAppError(http.StatusBadRequest, "password must be at least 6 characters", nil)
	}

	count, err := s.users.CountByUsername(ctx, username)
	if err != nil {
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to check username", err)
	}
	if count > 0 {
		return models.User{}, newAppError(http.StatusConflict, "username already exists", nil)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to hash password", err)
	}

	user := models.User{
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Password: hashed,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, nil, &user); err != nil {
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to create user", err)
	}

	if _, err := s.storage.InitUserStorage(ctx, user.ID); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, err := s.users.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.User{}, newAppError(http.StatusUnauthorized, "invalid username or password", nil)
		}
		return "", models.User{}, newAppError(http.StatusInternalServerError, "failed to read user", err)
	}
	if !utils.CheckPassword(password, user.Password) {
		return "", models.User{}, newAppError(http.StatusUnauthorized, "invalid username or password", nil)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", models.User{}, newAppError(http.StatusInternalServerError, "failed to generate token", err)
	}
	return token, user, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, newAppError(http.StatusNotFound, "user not found", nil)
		}
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to read user", err)
	}
	return user, nil
}
