package model

import "time"

type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionSubmitting SessionState = "submitting"
	SessionSubmitted  SessionState = "submitted"
	SessionAborted    SessionState = "aborted"
)

// Anti-cheat thresholds: an attempt is force-submitted after the third
// integrity violation or the fifth page reload.
const (
	ViolationThreshold = 3
	ReloadThreshold    = 5
)

// AttemptSession is the transient state of one in-progress quiz attempt.
// It lives in the session store (Redis) until the attempt is submitted or
// abandoned; nothing here reaches the relational store before submission.
type AttemptSession struct {
	QuizID               uint                `json:"quizId"`
	UserID               uint                `json:"userId"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	SelectedAnswers      map[uint][]string   `json:"selectedAnswers"`
	TimeRemaining        int                 `json:"timeRemaining"` // 秒
	ViolationCount       int                 `json:"violationCount"`
	ReloadCount          int                 `json:"reloadCount"`
	State                SessionState        `json:"state"`
	StartedAt            time.Time           `json:"startedAt"`
}

func NewAttemptSession(quizID, userID uint, durationMinutes int, now time.Time) *AttemptSession {
	return &AttemptSession{
		QuizID:          quizID,
		UserID:          userID,
		SelectedAnswers: make(map[uint][]string),
		TimeRemaining:   durationMinutes * 60,
		State:           SessionInProgress,
		StartedAt:       now,
	}
}

// Terminal reports whether the session reached a state that permits no
// further mutation.
func (s *AttemptSession) Terminal() bool {
	return s.State == SessionSubmitted || s.State == SessionAborted
}
