package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

// FindByIDWithQuestions 加载测验及按序排列的题目
func (r *QuizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_order ASC")
	}).First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindByCreator(creatorID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("creator_id = ?", creatorID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) FindAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// FindVisibleTo 返回用户创建过或参加过的测验；管理员看到全部
func (r *QuizRepository) FindVisibleTo(userID uint, isAdmin bool) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.DB.Order("created_at DESC")
	if !isAdmin {
		query = query.Where(
			"creator_id = ? OR id IN (?)",
			userID,
			r.DB.Model(&model.Result{}).Select("quiz_id").Where("user_id = ?", userID),
		)
	}
	err := query.Find(&quizzes).Error
	return quizzes, err
}

// FindPopular 按尝试次数排序
func (r *QuizRepository) FindPopular(limit int) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Joins("LEFT JOIN results ON results.quiz_id = quizzes.id AND results.deleted_at IS NULL").
		Group("quizzes.id").
		Order("COUNT(results.id) DESC").
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, err
}

// Create 在一个事务里写入测验和它的全部题目
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

// Update replaces the quiz metadata and its full question set in one
// transaction. Nullable window columns are written explicitly so that
// clearing a date actually clears it.
func (r *QuizRepository) Update(quiz *model.Quiz, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Quiz{}).Where("id = ?", quiz.ID).
			Select("title", "description", "duration", "max_attempts", "start_date", "expiry_date").
			Updates(quiz).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

func (r *QuizRepository) DeleteQuestionsByQuiz(quizID uint) error {
	return r.DB.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error
}

func (r *QuizRepository) GetQuestionsByQuiz(quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("question_order ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) CountQuestionsByQuiz(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func (r *QuizRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}

func (r *QuizRepository) CountQuestions() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Count(&count).Error
	return count, err
}

// QuestionTypeCount 题型分布统计
type QuestionTypeCount struct {
	Type  model.QuestionType `json:"type"`
	Count int64              `json:"count"`
}

func (r *QuizRepository) CountQuestionsByType() ([]QuestionTypeCount, error) {
	var counts []QuestionTypeCount
	err := r.DB.Model(&model.Question{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Order("type").
		Scan(&counts).Error
	return counts, err
}
