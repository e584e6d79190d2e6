package service

import (
	"strings"
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
)

func validQuizInput() *QuizInput {
	return &QuizInput{
		Title:    "Geography",
		Duration: 10,
		Questions: []QuestionInput{
			{
				Type:          model.MultipleChoice,
				Text:          "Capital of France?",
				Options:       []string{"Paris", "London", "Berlin"},
				CorrectAnswer: []string{"Paris"},
			},
			{
				Type:          model.TrueFalse,
				Text:          "The Earth is flat.",
				CorrectAnswer: []string{"False"},
			},
			{
				Type:          model.FillInBlank,
				Text:          "Largest ocean?",
				CorrectAnswer: []string{"Pacific"},
			},
			{
				Type:          model.MultiAnswer,
				Text:          "Which are rivers?",
				Options:       []string{"Nile", "Andes", "Danube"},
				CorrectAnswer: []string{"Nile", "Danube"},
			},
		},
	}
}

func TestValidateQuizInputAccepts(t *testing.T) {
	if err := ValidateQuizInput(validQuizInput()); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestValidateQuizInputFirstFailingRule(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*QuizInput)
		wantSub string
	}{
		{
			"empty title",
			func(in *QuizInput) { in.Title = "   " },
			"title is required",
		},
		{
			"zero duration",
			func(in *QuizInput) { in.Duration = 0 },
			"duration",
		},
		{
			"no questions",
			func(in *QuizInput) { in.Questions = nil },
			"at least one question",
		},
		{
			"negative max attempts",
			func(in *QuizInput) { in.MaxAttempts = -1 },
			"maxAttempts",
		},
		{
			"no options on multiple choice",
			func(in *QuizInput) { in.Questions[0].Options = nil },
			"question 1",
		},
		{
			"correct answer not among options",
			func(in *QuizInput) { in.Questions[0].CorrectAnswer = []string{"Madrid"} },
			"question 1",
		},
		{
			"two answers on multiple choice",
			func(in *QuizInput) { in.Questions[0].CorrectAnswer = []string{"Paris", "London"} },
			"exactly one correct answer",
		},
		{
			"true/false with foreign value",
			func(in *QuizInput) { in.Questions[1].CorrectAnswer = []string{"Yes"} },
			"must be true or false",
		},
		{
			"fill-in-blank with options",
			func(in *QuizInput) { in.Questions[2].Options = []string{"Pacific"} },
			"must not have options",
		},
		{
			"multi-answer with stray answer",
			func(in *QuizInput) { in.Questions[3].CorrectAnswer = []string{"Nile", "Amazon"} },
			"must be one of the options",
		},
		{
			"question without correct answer",
			func(in *QuizInput) { in.Questions[3].CorrectAnswer = nil },
			"at least one correct answer",
		},
		{
			"unknown type",
			func(in *QuizInput) { in.Questions[0].Type = "ESSAY" },
			"unknown question type",
		},
		{
			"start date parse failure",
			func(in *QuizInput) { s := "not-a-date"; in.StartDate = &s },
			"startDate",
		},
	}

	for _, tc := range cases {
		in := validQuizInput()
		tc.mutate(in)

		err := ValidateQuizInput(in)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !util.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %T", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Fatalf("%s: message %q does not name the rule (%q)", tc.name, err.Error(), tc.wantSub)
		}
	}
}

func TestTrueFalseLiteralsCaseInsensitive(t *testing.T) {
	for _, ans := range []string{"true", "false", "True", "FALSE"} {
		in := validQuizInput()
		in.Questions[1].CorrectAnswer = []string{ans}
		if err := ValidateQuizInput(in); err != nil {
			t.Errorf("answer %q rejected: %v", ans, err)
		}
	}
}

func TestSingleOptionQuestionsAccepted(t *testing.T) {
	in := validQuizInput()
	in.Questions[0].Options = []string{"Paris"}
	in.Questions[3].Options = []string{"Nile"}
	in.Questions[3].CorrectAnswer = []string{"Nile"}
	if err := ValidateQuizInput(in); err != nil {
		t.Fatalf("single-option questions rejected: %v", err)
	}
}

func TestAttemptLimit(t *testing.T) {
	in := validQuizInput()
	if got := in.attemptLimit(); got != 1 {
		t.Fatalf("omitted maxAttempts should default to 1, got %d", got)
	}
	in.MaxAttempts = 3
	if got := in.attemptLimit(); got != 3 {
		t.Fatalf("attemptLimit() = %d, want 3", got)
	}
}

func TestValidateQuizInputDateOrdering(t *testing.T) {
	in := validQuizInput()
	start := "2026-04-10T00:00:00Z"
	expiry := "2026-04-01T00:00:00Z"
	in.StartDate = &start
	in.ExpiryDate = &expiry

	err := ValidateQuizInput(in)
	if err == nil || !strings.Contains(err.Error(), "before expiryDate") {
		t.Fatalf("expected date ordering failure, got %v", err)
	}
}

func TestBuildQuestionsPreservesOrder(t *testing.T) {
	in := validQuizInput()
	questions, err := buildQuestions(in.Questions)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.Order != i {
			t.Fatalf("question %d has order %d", i, q.Order)
		}
	}
	if got := questions[3].AnswerList(); len(got) != 2 || got[0] != "Nile" {
		t.Fatalf("answers not round-tripped: %v", got)
	}
	if questions[2].OptionList() != nil {
		t.Fatal("fill-in-blank must store no options")
	}
	if got := questions[1].AnswerList(); len(got) != 1 || got[0] != "false" {
		t.Fatalf("true/false answer not normalized to lowercase: %v", got)
	}
}
