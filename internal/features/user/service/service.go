package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/mapper"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/models"
	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

type userService struct {
	repo repository.Store
	log  zerolog.Logger
}

func NewUserService(repo repository.Store) UserService {
	return &userService{
		repo: repo,
		log:  logger.Component("user"),
	}
}

func (s *userService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserResponse, bool, error) {
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.Username = strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if err := validation.Struct(req); err != nil {
		return nil, false, err
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, false, apperrors.NewInvalidInputError("username", err.Error())
	}

	existing, err := s.repo.GetUserByWallet(ctx, req.WalletAddress)
	if err == nil {
		return mapper.ToUserResponse(existing), false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, apperrors.NewDatabaseError("get user by wallet", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		WalletAddress: req.WalletAddress,
		Username:      req.Username,
		Avatar:        req.Avatar,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicateWallet) {
			return nil, false, apperrors.NewDatabaseError("create user", err)
		}
		// параллельная регистрация того же кошелька успела раньше
		existing, err := s.repo.GetUserByWallet(ctx, req.WalletAddress)
		if err != nil {
			return nil, false, apperrors.NewDatabaseError("get user by wallet", err)
		}
		return mapper.ToUserResponse(existing), false, nil
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("wallet", user.WalletAddress).
		Msg("User registered")

	return mapper.ToUserResponse(user), true, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(user), nil
}

func (s *userService) GetUserByWallet(ctx context.Context, wallet string) (*models.UserResponse, error) {
	wallet = strings.TrimSpace(wallet)
	if err := validation.ValidateWallet(wallet); err != nil {
		return nil, apperrors.NewInvalidInputError("wallet_address", err.Error())
	}

	user, err := s.repo.GetUserByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", wallet)
		}
		return nil, apperrors.NewDatabaseError("get user by wallet", err)
	}
	return mapper.ToUserResponse(user), nil
}

func (s *userService) GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfileResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetUserStats(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user stats", err)
	}
	badges, err := s.repo.ListBadges(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list badges", err)
	}

	return mapper.ToUserProfileResponse(user, stats, badges), nil
}

func (s *userService) getUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}
