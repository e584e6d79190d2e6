package service

import (
	"errors"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

// Eligibility 描述某个用户此刻能否参加某个测验
type Eligibility struct {
	IsAvailable       bool `json:"isAvailable"`
	CanAttempt        bool `json:"canAttempt"`
	RemainingAttempts int  `json:"remainingAttempts"`
}

type EligibilityService struct {
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.ResultRepository
}

func NewEligibilityService(quizRepo *repository.QuizRepository, resultRepo *repository.ResultRepository) *EligibilityService {
	return &EligibilityService{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
	}
}

// QuizAvailable reports whether now falls inside the quiz's availability
// window. Unset bounds are open.
func QuizAvailable(quiz *model.Quiz, now time.Time) bool {
	if quiz.StartDate != nil && now.Before(*quiz.StartDate) {
		return false
	}
	if quiz.ExpiryDate != nil && now.After(*quiz.ExpiryDate) {
		return false
	}
	return true
}

// AvailabilityError returns the sentinel matching why the window check
// fails, or nil when it passes.
func AvailabilityError(quiz *model.Quiz, now time.Time) error {
	if quiz.StartDate != nil && now.Before(*quiz.StartDate) {
		return util.ErrNotYetAvailable
	}
	if quiz.ExpiryDate != nil && now.After(*quiz.ExpiryDate) {
		return util.ErrExpired
	}
	return nil
}

// RemainingAttempts 计算剩余可尝试次数，下限为 0
func RemainingAttempts(maxAttempts int, priorAttempts int) int {
	remaining := maxAttempts - priorAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Check 是只读的：窗口检查 + 次数检查，不产生任何副作用
func (s *EligibilityService) Check(quizID, userID uint, now time.Time) (*Eligibility, *model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrQuizNotFound
		}
		return nil, nil, err
	}

	prior, err := s.ResultRepo.CountByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, nil, err
	}

	remaining := RemainingAttempts(quiz.MaxAttempts, int(prior))
	return &Eligibility{
		IsAvailable:       QuizAvailable(quiz, now),
		CanAttempt:        remaining > 0,
		RemainingAttempts: remaining,
	}, quiz, nil
}
