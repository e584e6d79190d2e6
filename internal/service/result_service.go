package service

import (
	"errors"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

// SubmitResultInput 是客户端已评分提交的载荷，
// 服务端仍按可用窗口与次数上限把关
type SubmitResultInput struct {
	QuizID         uint    `json:"quizId" binding:"required"`
	Score          float64 `json:"score" binding:"min=0,max=100"`
	TotalQuestions int     `json:"totalQuestions" binding:"required,min=1"`
}

type ResultService struct {
	ResultRepo *repository.ResultRepository
	QuizRepo   *repository.QuizRepository
}

func NewResultService(resultRepo *repository.ResultRepository, quizRepo *repository.QuizRepository) *ResultService {
	return &ResultService{ResultRepo: resultRepo, QuizRepo: quizRepo}
}

// Submit records an attempt outcome submitted directly by the client.
// The availability window and the attempt limit are both enforced here,
// so an expired or used-up quiz cannot be back-filled.
func (s *ResultService) Submit(userID uint, in *SubmitResultInput, now time.Time) (*model.Result, error) {
	quiz, err := s.QuizRepo.FindByID(in.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if err := AvailabilityError(quiz, now); err != nil {
		return nil, err
	}

	result := &model.Result{
		UserID:         userID,
		QuizID:         in.QuizID,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		CompletedAt:    now,
	}
	if err := s.ResultRepo.CreateIfBelowLimit(result, quiz.MaxAttempts); err != nil {
		return nil, err
	}
	return result, nil
}

// AttemptView 是面向用户的单次成绩视图
type AttemptView struct {
	ID                uint      `json:"id"`
	QuizID            uint      `json:"quizId"`
	QuizTitle         string    `json:"quizTitle"`
	Score             float64   `json:"score"`
	TotalQuestions    int       `json:"totalQuestions"`
	Passed            bool      `json:"passed"`
	CompletedAt       time.Time `json:"completedAt"`
	RemainingAttempts int       `json:"remainingAttempts"`
}

// GetUserAttempts 返回某用户在某测验上的全部成绩，
// 附带通过标记和剩余次数
func (s *ResultService) GetUserAttempts(userID, quizID uint) ([]AttemptView, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	results, err := s.ResultRepo.FindByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}

	remaining := RemainingAttempts(quiz.MaxAttempts, len(results))
	views := make([]AttemptView, 0, len(results))
	for i := range results {
		r := &results[i]
		title := quiz.Title
		if r.Quiz != nil {
			title = r.Quiz.Title
		}
		views = append(views, AttemptView{
			ID:                r.ID,
			QuizID:            r.QuizID,
			QuizTitle:         title,
			Score:             r.Score,
			TotalQuestions:    r.TotalQuestions,
			Passed:            r.Passed(),
			CompletedAt:       r.CompletedAt,
			RemainingAttempts: remaining,
		})
	}
	return views, nil
}

func (s *ResultService) GetHistory(userID uint) ([]model.Result, error) {
	return s.ResultRepo.FindByUser(userID)
}

// GetAttempt 查单条成绩：本人、测验创建者或管理员可见
func (s *ResultService) GetAttempt(resultID, requesterID uint, isAdmin bool) (*model.Result, error) {
	result, err := s.ResultRepo.FindByID(resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResultNotFound
		}
		return nil, err
	}

	if isAdmin || result.UserID == requesterID {
		return result, nil
	}
	if result.Quiz != nil && result.Quiz.CreatorID == requesterID {
		return result, nil
	}
	return nil, util.ErrPermissionDenied
}
