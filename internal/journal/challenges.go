package journal

import (
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeInput is the payload for starting a challenge.
type ChallengeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// StartChallenge begins a new challenge for the user.
func (s *Service) StartChallenge(userID string, in ChallengeInput) (models.Challenge, error) {
	if in.Name == "" {
		return models.Challenge{}, fmt.Errorf("%w: challenge name is required", ErrInvalidInput)
	}

	challenge := models.Challenge{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Duration:    in.Duration,
		Status:      models.ChallengeActive,
		StartedAt:   time.Now(),
	}
	if err := s.db.Create(&challenge).Error; err != nil {
		return models.Challenge{}, fmt.Errorf("failed to start challenge: %w", err)
	}

	s.log.Info("Challenge started",
		zap.String("user", userID),
		zap.String("challenge", challenge.ID),
		zap.String("name", challenge.Name))
	return challenge, nil
}

// ListChallenges returns all of the user's challenges, newest first. The
// caller splits active from history by status.
func (s *Service) ListChallenges(userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// CompleteChallenge marks an active challenge as completed.
func (s *Service) CompleteChallenge(userID, challengeID string) (models.Challenge, error) {
	return s.finishChallenge(userID, challengeID, models.ChallengeCompleted)
}

// AbandonChallenge marks an active challenge as abandoned.
func (s *Service) AbandonChallenge(userID, challengeID string) (models.Challenge, error) {
	return s.finishChallenge(userID, challengeID, models.ChallengeAbandoned)
}

func (s *Service) finishChallenge(userID, challengeID, status string) (models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.Where("user_id = ? AND id = ?", userID, challengeID).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Challenge{}, ErrNotFound
	}
	if err != nil {
		return models.Challenge{}, err
	}
	if challenge.Status != models.ChallengeActive {
		return models.Challenge{}, fmt.Errorf("%w: challenge already %s", ErrInvalidInput, challenge.Status)
	}

	now := time.Now()
	challenge.Status = status
	challenge.FinishedAt = &now
	if err := s.db.Save(&challenge).Error; err != nil {
		return models.Challenge{}, fmt.Errorf("failed to update challenge: %w", err)
	}

	s.log.Info("Challenge finished",
		zap.String("user", userID),
		zap.String("challenge", challengeID),
		zap.String("status", status))
	return challenge, nil
}
