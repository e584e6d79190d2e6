package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	FillInBlank    QuestionType = "FILL_IN_BLANK"
	MultiAnswer    QuestionType = "MULTI_ANSWER"
)

// swagger:model Question
type Question struct {
	BaseModel

	QuizID        uint         `gorm:"index;type:bigint unsigned" json:"quizId"`
	Type          QuestionType `gorm:"type:enum('MULTIPLE_CHOICE','TRUE_FALSE','FILL_IN_BLANK','MULTI_ANSWER');not null" json:"type"`
	Text          string       `gorm:"type:text;not null" json:"text"`
	Options       string       `gorm:"type:json" json:"-"` // FILL_IN_BLANK 为空
	CorrectAnswer string       `gorm:"type:json" json:"-"`
	MediaURL      string       `gorm:"size:255" json:"mediaUrl,omitempty"`
	Order         int          `gorm:"column:question_order" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the JSON options column. A missing or null column
// yields nil, which is what FILL_IN_BLANK questions store.
func (q *Question) OptionList() []string {
	if q.Options == "" || q.Options == "null" {
		return nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
		return nil
	}
	return opts
}

// AnswerList decodes the JSON correct-answer column.
func (q *Question) AnswerList() []string {
	if q.CorrectAnswer == "" || q.CorrectAnswer == "null" {
		return nil
	}
	var ans []string
	if err := json.Unmarshal([]byte(q.CorrectAnswer), &ans); err != nil {
		return nil
	}
	return ans
}

// PublicView strips correctness data before a question is handed to a
// quiz taker. Options are decoded so the client does not see raw JSON.
type PublicQuestion struct {
	ID       uint         `json:"id"`
	QuizID   uint         `json:"quizId"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Options  []string     `json:"options"`
	MediaURL string       `json:"mediaUrl,omitempty"`
	Order    int          `json:"order"`
}

func (q *Question) PublicView() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		QuizID:   q.QuizID,
		Type:     q.Type,
		Text:     q.Text,
		Options:  q.OptionList(),
		MediaURL: q.MediaURL,
		Order:    q.Order,
	}
}
