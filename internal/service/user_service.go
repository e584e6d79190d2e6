package service

import (
	"errors"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.ResultRepository
}

func NewUserService(userRepo *repository.UserRepository, quizRepo *repository.QuizRepository, resultRepo *repository.ResultRepository) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
	}
}

// Profile 汇总个人主页：用户信息、创建的测验和历史成绩
type Profile struct {
	User    *model.User    `json:"user"`
	Quizzes []model.Quiz   `json:"quizzes"`
	Results []model.Result `json:"results"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	quizzes, err := s.QuizRepo.FindByCreator(userID)
	if err != nil {
		return nil, err
	}
	results, err := s.ResultRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Quizzes: quizzes, Results: results}, nil
}

func (s *UserService) GetUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(page, limit int, role, search string) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.UserRepo.List(page, limit, role, search)
}

// UpdateRole 管理员改角色；目标角色必须合法
func (s *UserService) UpdateRole(userID uint, role model.UserRole) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, util.Validation("unknown role %q", role)
	}

	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	if err := s.UserRepo.UpdateRole(userID, role); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(userID)
}
