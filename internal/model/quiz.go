package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel

	CreatorID   uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Duration    int        `gorm:"not null" json:"duration"` // 时长（分钟）
	MaxAttempts int        `gorm:"default:1" json:"maxAttempts"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`

	Creator   *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
