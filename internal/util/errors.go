package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrNotYetAvailable    = errors.New("Quiz is not yet available")
	ErrExpired            = errors.New("Quiz has expired")
	ErrSessionNotFound    = errors.New("attempt session not found")
	ErrSessionTerminal    = errors.New("attempt already submitted")
	ErrAnswerRequired     = errors.New("current question must be answered before advancing")
	ErrIndexOutOfRange    = errors.New("question index out of range")
)

// ValidationError 标记创建/更新测验时首个未通过的校验规则
type ValidationError struct {
	Rule string
}

func (e *ValidationError) Error() string {
	return e.Rule
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Rule: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// MaxAttemptsError 携带限额，用于拼出对用户可见的提示
type MaxAttemptsError struct {
	Limit int
}

func (e *MaxAttemptsError) Error() string {
	return fmt.Sprintf("Maximum attempts (%d) reached for this quiz", e.Limit)
}

func IsMaxAttempts(err error) bool {
	var me *MaxAttemptsError
	return errors.As(err, &me)
}
