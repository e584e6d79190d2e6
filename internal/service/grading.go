package service

import (
	"strings"

	"quizhub_backend/internal/model"
)

// GradeQuestion reports whether the submitted answers satisfy the
// question's correctness rule. Correctness is only ever computed here,
// at submission time; nothing is validated while the taker is answering.
func GradeQuestion(q *model.Question, submitted []string) bool {
	correct := q.AnswerList()
	// 按创作校验不可能出现，出现则一律判错
	if len(correct) == 0 {
		return false
	}
	if len(submitted) == 0 {
		return false
	}

	switch q.Type {
	case model.MultipleChoice:
		if len(submitted) != 1 {
			return false
		}
		for _, c := range correct {
			if submitted[0] == c {
				return true
			}
		}
		return false

	case model.TrueFalse:
		// 判断题按 true/false 字面量比较，大小写不敏感
		if len(submitted) != 1 {
			return false
		}
		return strings.EqualFold(submitted[0], correct[0])

	case model.MultiAnswer:
		// 精确集合匹配，与顺序无关，不给部分分
		if len(submitted) != len(correct) {
			return false
		}
		chosen := make(map[string]bool, len(submitted))
		for _, s := range submitted {
			chosen[s] = true
		}
		if len(chosen) != len(correct) {
			return false
		}
		for _, c := range correct {
			if !chosen[c] {
				return false
			}
		}
		return true

	case model.FillInBlank:
		if len(submitted) != 1 {
			return false
		}
		return strings.EqualFold(
			strings.TrimSpace(submitted[0]),
			strings.TrimSpace(correct[0]),
		)
	}

	return false
}

// CalculateScore grades every question against the recorded answers and
// returns the percentage score together with the number answered
// correctly. Unanswered questions count as incorrect. The caller
// guarantees len(questions) > 0: a quiz without questions is rejected at
// authoring time, so no zero-division guard lives here.
func CalculateScore(questions []model.Question, selected map[uint][]string) (float64, int) {
	correctCount := 0
	for i := range questions {
		if GradeQuestion(&questions[i], selected[questions[i].ID]) {
			correctCount++
		}
	}
	return float64(correctCount) / float64(len(questions)) * 100, correctCount
}
