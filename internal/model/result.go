package model

import "time"

// Result 记录一次已提交的测验尝试，创建后不可变
// swagger:model Result
type Result struct {
	BaseModel

	UserID         uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	QuizID         uint      `gorm:"index;type:bigint unsigned" json:"quizId"`
	Score          float64   `gorm:"not null" json:"score"` // 0-100，未四舍五入
	TotalQuestions int       `gorm:"not null" json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Quiz *Quiz `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
}

func (Result) TableName() string {
	return "results"
}

// PassThreshold is the score at and above which reporting views count an
// attempt as passed.
const PassThreshold = 50.0

func (r *Result) Passed() bool {
	return r.Score >= PassThreshold
}
