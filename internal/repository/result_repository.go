package repository

import (
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) FindByID(id uint) (*model.Result, error) {
	var result model.Result
	err := r.DB.Preload("User").Preload("Quiz").First(&result, id).Error
	return &result, err
}

func (r *ResultRepository) FindByUser(userID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("user_id = ?", userID).
		Preload("Quiz").
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) FindByUserAndQuiz(userID, quizID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Preload("Quiz").
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

// FindByQuiz 按提交顺序返回，供报表按先到先得规则选出最高分
func (r *ResultRepository) FindByQuiz(quizID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("quiz_id = ?", quizID).
		Preload("User").
		Order("completed_at ASC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Result{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

// CreateIfBelowLimit 在一个事务里用锁定读重新计数后插入，
// 避免并发提交把尝试次数推过 maxAttempts
func (r *ResultRepository) CreateIfBelowLimit(result *model.Result, maxAttempts int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Result{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND quiz_id = ?", result.UserID, result.QuizID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if maxAttempts > 0 && int(count) >= maxAttempts {
			return &util.MaxAttemptsError{Limit: maxAttempts}
		}
		return tx.Create(result).Error
	})
}

func (r *ResultRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Result{}).Count(&count).Error
	return count, err
}

func (r *ResultRepository) AverageScore() (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.Result{}).Select("AVG(score)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *ResultRepository) FindRecent(limit int) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Preload("User").Preload("Quiz").
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// QuizScoreAggregate 每个测验的平均分与尝试数
type QuizScoreAggregate struct {
	QuizID        uint    `json:"quizId"`
	AverageScore  float64 `json:"averageScore"`
	TotalAttempts int64   `json:"totalAttempts"`
}

func (r *ResultRepository) TopQuizzesByAverageScore(limit int) ([]QuizScoreAggregate, error) {
	var aggs []QuizScoreAggregate
	err := r.DB.Model(&model.Result{}).
		Select("quiz_id, AVG(score) as average_score, COUNT(*) as total_attempts").
		Group("quiz_id").
		Order("average_score DESC").
		Limit(limit).
		Scan(&aggs).Error
	return aggs, err
}

// WeeklyCount 按自然周聚合的计数
type WeeklyCount struct {
	Week  time.Time `json:"week"`
	Count int64     `json:"count"`
}

// CountCompletionsByWeek 按周统计提交数（YEARWEEK 以周一为一周起点）
func (r *ResultRepository) CountCompletionsByWeek() ([]WeeklyCount, error) {
	var counts []WeeklyCount
	err := r.DB.Model(&model.Result{}).
		Select("STR_TO_DATE(CONCAT(YEARWEEK(completed_at, 1), ' Monday'), '%X%V %W') as week, COUNT(*) as count").
		Group("week").
		Order("week").
		Scan(&counts).Error
	return counts, err
}

// CountSignupsByWeek 按周统计注册数
func (r *ResultRepository) CountSignupsByWeek() ([]WeeklyCount, error) {
	var counts []WeeklyCount
	err := r.DB.Model(&model.User{}).
		Select("STR_TO_DATE(CONCAT(YEARWEEK(created_at, 1), ' Monday'), '%X%V %W') as week, COUNT(*) as count").
		Group("week").
		Order("week").
		Scan(&counts).Error
	return counts, err
}
