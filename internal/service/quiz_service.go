package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionInput 是创建/更新测验时单个题目的载荷
type QuestionInput struct {
	Type          model.QuestionType `json:"type" binding:"required"`
	Text          string             `json:"text" binding:"required"`
	Options       []string           `json:"options"`
	CorrectAnswer []string           `json:"correctAnswer" binding:"required"`
	MediaURL      string             `json:"mediaUrl"`
}

// QuizInput 是创建/更新测验的载荷，题目整体替换
type QuizInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Duration    int             `json:"duration" binding:"required,min=1"`
	MaxAttempts int             `json:"maxAttempts"`
	StartDate   *string         `json:"startDate"`
	ExpiryDate  *string         `json:"expiryDate"`
	Questions   []QuestionInput `json:"questions" binding:"required"`
}

type QuizService struct {
	QuizRepo *repository.QuizRepository
}

func NewQuizService(quizRepo *repository.QuizRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo}
}

// validateQuestion 按题型校验单题，返回首个不满足的规则
func validateQuestion(idx int, in *QuestionInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return util.Validation("question %d: text is required", idx+1)
	}
	if len(in.CorrectAnswer) == 0 {
		return util.Validation("question %d: at least one correct answer is required", idx+1)
	}

	switch in.Type {
	case model.MultipleChoice:
		if len(in.Options) == 0 {
			return util.Validation("question %d: multiple choice needs options", idx+1)
		}
		if len(in.CorrectAnswer) != 1 {
			return util.Validation("question %d: multiple choice needs exactly one correct answer", idx+1)
		}
		if !contains(in.Options, in.CorrectAnswer[0]) {
			return util.Validation("question %d: correct answer must be one of the options", idx+1)
		}
	case model.TrueFalse:
		if len(in.CorrectAnswer) != 1 {
			return util.Validation("question %d: true/false needs exactly one correct answer", idx+1)
		}
		if !strings.EqualFold(in.CorrectAnswer[0], "true") && !strings.EqualFold(in.CorrectAnswer[0], "false") {
			return util.Validation("question %d: true/false answer must be true or false", idx+1)
		}
	case model.MultiAnswer:
		if len(in.Options) == 0 {
			return util.Validation("question %d: multi-answer needs options", idx+1)
		}
		for _, ans := range in.CorrectAnswer {
			if !contains(in.Options, ans) {
				return util.Validation("question %d: correct answer %q must be one of the options", idx+1, ans)
			}
		}
	case model.FillInBlank:
		if len(in.Options) != 0 {
			return util.Validation("question %d: fill-in-blank must not have options", idx+1)
		}
		for _, ans := range in.CorrectAnswer {
			if strings.TrimSpace(ans) == "" {
				return util.Validation("question %d: fill-in-blank answers must not be blank", idx+1)
			}
		}
	default:
		return util.Validation("question %d: unknown question type %q", idx+1, in.Type)
	}
	return nil
}

// attemptLimit 返回落库用的次数上限。载荷省略 maxAttempts（JSON 零值）
// 时按一次处理；负数在 ValidateQuizInput 里已被拒绝。
func (in *QuizInput) attemptLimit() int {
	if in.MaxAttempts == 0 {
		return 1
	}
	return in.MaxAttempts
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidateQuizInput 校验整份测验定义，窗口日期须为 RFC3339 且起止有序
func ValidateQuizInput(in *QuizInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return util.Validation("title is required")
	}
	if in.Duration < 1 {
		return util.Validation("duration must be at least 1 minute")
	}
	if in.MaxAttempts < 0 {
		return util.Validation("maxAttempts must not be negative")
	}
	if len(in.Questions) == 0 {
		return util.Validation("quiz must contain at least one question")
	}

	start, err := util.ParseDatePtr(in.StartDate)
	if err != nil {
		return util.Validation("startDate: %v", err)
	}
	expiry, err := util.ParseDatePtr(in.ExpiryDate)
	if err != nil {
		return util.Validation("expiryDate: %v", err)
	}
	if start != nil && expiry != nil && !start.Before(*expiry) {
		return util.Validation("startDate must be before expiryDate")
	}

	for i := range in.Questions {
		if err := validateQuestion(i, &in.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func buildQuestions(inputs []QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		opts, err := json.Marshal(in.Options)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		correct := in.CorrectAnswer
		if in.Type == model.TrueFalse {
			// 统一存成小写字面量，和前端提交的 true/false 一致
			correct = []string{strings.ToLower(in.CorrectAnswer[0])}
		}
		ans, err := json.Marshal(correct)
		if err != nil {
			return nil, fmt.Errorf("encode answers: %w", err)
		}
		questions = append(questions, model.Question{
			Type:          in.Type,
			Text:          in.Text,
			Options:       string(opts),
			CorrectAnswer: string(ans),
			MediaURL:      in.MediaURL,
			Order:         i,
		})
	}
	return questions, nil
}

// Create 校验并落库一份新测验，题目顺序取自载荷顺序
func (s *QuizService) Create(creatorID uint, in *QuizInput) (*model.Quiz, error) {
	if err := ValidateQuizInput(in); err != nil {
		return nil, err
	}

	start, _ := util.ParseDatePtr(in.StartDate)
	expiry, _ := util.ParseDatePtr(in.ExpiryDate)

	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		CreatorID:   creatorID,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		MaxAttempts: in.attemptLimit(),
		StartDate:   start,
		ExpiryDate:  expiry,
		Questions:   questions,
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Update 整体替换测验；仅创建者或管理员可改
func (s *QuizService) Update(quizID, userID uint, isAdmin bool, in *QuizInput) (*model.Quiz, error) {
	existing, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !isAdmin && existing.CreatorID != userID {
		return nil, util.ErrPermissionDenied
	}

	if err := ValidateQuizInput(in); err != nil {
		return nil, err
	}

	start, _ := util.ParseDatePtr(in.StartDate)
	expiry, _ := util.ParseDatePtr(in.ExpiryDate)

	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Description = in.Description
	existing.Duration = in.Duration
	existing.MaxAttempts = in.attemptLimit()
	existing.StartDate = start
	existing.ExpiryDate = expiry

	if err := s.QuizRepo.Update(existing, questions); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindByIDWithQuestions(quizID)
}

// Delete 删除测验及其题目；历史成绩保留
func (s *QuizService) Delete(quizID, userID uint, isAdmin bool) error {
	existing, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if !isAdmin && existing.CreatorID != userID {
		return util.ErrPermissionDenied
	}
	return s.QuizRepo.Delete(quizID)
}

func (s *QuizService) Get(quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// GetForTaking 返回剥离了正确答案的测验视图
func (s *QuizService) GetForTaking(quizID uint) (*model.Quiz, []model.PublicQuestion, error) {
	quiz, err := s.Get(quizID)
	if err != nil {
		return nil, nil, err
	}
	public := make([]model.PublicQuestion, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		public = append(public, quiz.Questions[i].PublicView())
	}
	return quiz, public, nil
}

func (s *QuizService) ListByCreator(creatorID uint) ([]model.Quiz, error) {
	return s.QuizRepo.FindByCreator(creatorID)
}

func (s *QuizService) ListVisible(userID uint, isAdmin bool) ([]model.Quiz, error) {
	return s.QuizRepo.FindVisibleTo(userID, isAdmin)
}

func (s *QuizService) ListAll() ([]model.Quiz, error) {
	return s.QuizRepo.FindAll()
}

func (s *QuizService) ListPopular(limit int) ([]model.Quiz, error) {
	return s.QuizRepo.FindPopular(limit)
}
