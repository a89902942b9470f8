package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/mapper"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/models"
	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

type ChallengeService interface {
	CreateChallenge(ctx context.Context, req models.CreateChallengeRequest) (*models.ChallengeResponse, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*models.ChallengeResponse, error)
	ListChallenges(ctx context.Context, activeOnly bool, chain string) (*models.ChallengesResponse, error)
	// SetActive закрывает или снова открывает приём отправок. Остальные поля
	// челленджа после создания не меняются.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.ChallengeResponse, error)
}

type challengeService struct {
	repo repository.ChallengeRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewChallengeService(repo repository.ChallengeRepository) ChallengeService {
	return &challengeService{
		repo: repo,
		now:  time.Now,
		log:  logger.Component("challenge"),
	}
}

func (s *challengeService) CreateChallenge(ctx context.Context, req models.CreateChallengeRequest) (*models.ChallengeResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Chain = strings.ToLower(strings.TrimSpace(req.Chain))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.EndsAt != nil && !req.EndsAt.After(s.now()) {
		return nil, apperrors.NewInvalidInputError("ends_at", "must be in the future")
	}

	testCases := req.TestCases
	if len(testCases) == 0 || string(testCases) == "null" {
		testCases = json.RawMessage("[]")
	} else if !json.Valid(testCases) {
		return nil, apperrors.NewInvalidInputError("test_cases", "must be valid JSON")
	}

	difficulty := domain.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = domain.DifficultyBeginner
	}

	challenge := &domain.Challenge{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Difficulty:  difficulty,
		InitialCode: req.InitialCode,
		TestCases:   testCases,
		Reward:      req.Reward,
		Chain:       req.Chain,
		EndsAt:      req.EndsAt,
		IsActive:    true,
	}
	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return nil, apperrors.NewDatabaseError("create challenge", err)
	}

	s.log.Info().
		Str("challenge_id", challenge.ID.String()).
		Str("category", string(challenge.Category)).
		Str("chain", challenge.Chain).
		Msg("Challenge created")

	return mapper.ToChallengeResponse(challenge), nil
}

func (s *challengeService) GetChallenge(ctx context.Context, id uuid.UUID) (*models.ChallengeResponse, error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return nil, mapError(err, "get challenge", id)
	}
	return mapper.ToChallengeResponse(challenge), nil
}

func (s *challengeService) ListChallenges(ctx context.Context, activeOnly bool, chain string) (*models.ChallengesResponse, error) {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain != "" {
		if err := validation.ValidateChain(chain); err != nil {
			return nil, apperrors.NewInvalidInputError("chain", err.Error())
		}
	}

	list, err := s.repo.ListChallenges(ctx, domain.ChallengeFilter{ActiveOnly: activeOnly, Chain: chain})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list challenges", err)
	}
	return mapper.ToChallengesResponse(list), nil
}

func (s *challengeService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.ChallengeResponse, error) {
	if err := s.repo.SetChallengeActive(ctx, id, active); err != nil {
		return nil, mapError(err, "set challenge active", id)
	}

	s.log.Info().Str("challenge_id", id.String()).Bool("is_active", active).Msg("Challenge status changed")
	return s.GetChallenge(ctx, id)
}

func mapError(err error, operation string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrChallengeNotFound) {
		return apperrors.NewNotFoundError("challenge", id)
	}
	return apperrors.NewDatabaseError(operation, err)
}
